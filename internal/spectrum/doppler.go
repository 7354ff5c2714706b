package spectrum

import (
	"errors"
	"fmt"
	"strings"
)

// SpeedOfLight in km/s.
const SpeedOfLight = 299_792.458

// Convention is a Doppler convention relating a frequency shift to a velocity.
type Convention string

const (
	Optical Convention = "optical" // v = c (f0 - f) / f
	Radio   Convention = "radio"   // v = c (f0 - f) / f0
)

// ErrUnknownConvention is returned for any convention other than optical or radio.
var ErrUnknownConvention = errors.New("spectrum: unknown velocity convention")

// ParseConvention parses a convention name, case-insensitively.
func ParseConvention(s string) (Convention, error) {
	switch c := Convention(strings.ToLower(strings.TrimSpace(s))); c {
	case Optical, Radio:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q (expected %q or %q)", ErrUnknownConvention, s, Optical, Radio)
	}
}

type dopplerFunc func(x, restFrequency float64) float64

// formulas returns the velocity->frequency and frequency->velocity transforms.
func (c Convention) formulas() (toFrequency, toVelocity dopplerFunc, err error) {
	switch c {
	case Radio:
		toFrequency = func(v, f0 float64) float64 { return f0 * (1 - v/SpeedOfLight) }
		toVelocity = func(f, f0 float64) float64 { return SpeedOfLight * (f0 - f) / f0 }

	case Optical:
		toFrequency = func(v, f0 float64) float64 { return f0 / (1 + v/SpeedOfLight) }
		toVelocity = func(f, f0 float64) float64 { return SpeedOfLight * (f0 - f) / f }

	default:
		err = fmt.Errorf("%w: %q", ErrUnknownConvention, string(c))
	}
	return
}

// Frequency returns the observed frequency (Hz) of a line with the given rest
// frequency (Hz) emitted by a source moving at velocity (km/s).
func (c Convention) Frequency(velocity, restFrequency float64) (float64, error) {
	toFrequency, _, err := c.formulas()
	if err != nil {
		return 0, err
	}
	return toFrequency(velocity, restFrequency), nil
}

// Velocity returns the Doppler velocity (km/s) of frequency (Hz).
func (c Convention) Velocity(frequency, restFrequency float64) (float64, error) {
	_, toVelocity, err := c.formulas()
	if err != nil {
		return 0, err
	}
	return toVelocity(frequency, restFrequency), nil
}

// RestFrequencyOffset is the difference between the rest frequency and the
// frequency at which the line is observed for a source at velocity (km/s).
// Adding it to an observed frequency axis moves the axis into the source frame.
func RestFrequencyOffset(c Convention, restFrequency, velocity float64) (float64, error) {
	f, err := c.Frequency(velocity, restFrequency)
	if err != nil {
		return 0, err
	}
	return restFrequency - f, nil
}
