package spectrum

import (
	"errors"
	"fmt"
	"math"
)

// AxisKind identifies the quantity and unit of the spectral axis.
type AxisKind string

const (
	AxisHz   AxisKind = "Hz"   // Frequency in Hz
	AxisGHz  AxisKind = "GHz"  // Frequency in GHz
	AxisKmps AxisKind = "km/s" // Doppler velocity in km/s
)

var axisScale = map[AxisKind]float64{
	AxisHz:  1,
	AxisGHz: 1e9,
}

// ErrAxisMismatch is returned when an operation is applied to a spectrum whose
// axis does not support it (e.g. a frequency shift on a velocity axis).
var ErrAxisMismatch = errors.New("spectrum: operation not supported on this spectral axis")

// Spectrum represents a one-dimensional spectrum: flux density against a
// spectral coordinate. Operations never modify the receiver, they return
// a new spectrum.
type Spectrum struct {
	X             []float64  `json:"x"`                    // Spectral coordinate of each channel
	Y             []float64  `json:"y"`                    // Flux density of each channel, NaN if blanked
	Axis          AxisKind   `json:"axis"`                 // Unit of X
	Unit          FluxUnit   `json:"unit"`                 // Unit of Y
	RestFrequency float64    `json:"restFrequency"`        // Rest frequency in Hz
	Convention    Convention `json:"convention,omitempty"` // Doppler convention, set on velocity axes
}

// Channel is a single spectral channel.
type Channel struct {
	X float64 `json:"x"` // Spectral coordinate
	Y float64 `json:"y"` // Flux density, NaN if blanked
}

// New creates a spectrum; x and y must be the same length.
func New(x, y []float64, axis AxisKind, unit FluxUnit, restFrequency float64) (*Spectrum, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("spectrum: axis has %d channels but data has %d", len(x), len(y))
	}
	if len(x) == 0 {
		return nil, errors.New("spectrum: no channels")
	}
	return &Spectrum{
		X:             x,
		Y:             y,
		Axis:          axis,
		Unit:          unit,
		RestFrequency: restFrequency,
	}, nil
}

// Len returns the number of channels.
func (s *Spectrum) Len() int {
	return len(s.X)
}

// Clone returns a deep copy of the spectrum.
func (s *Spectrum) Clone() *Spectrum {
	c := *s
	c.X = append([]float64(nil), s.X...)
	c.Y = append([]float64(nil), s.Y...)
	return &c
}

// Channels returns the spectrum as a list of channels.
func (s *Spectrum) Channels() []Channel {
	out := make([]Channel, len(s.X))
	for i := range s.X {
		out[i] = Channel{X: s.X[i], Y: s.Y[i]}
	}
	return out
}

// ChannelWidth returns the approximate (mean) channel spacing in axis units.
// The sign follows the direction of the axis.
func (s *Spectrum) ChannelWidth() float64 {
	n := len(s.X)
	if n < 2 {
		return 0
	}
	return (s.X[n-1] - s.X[0]) / float64(n-1)
}

// Span returns the minimum and maximum spectral coordinate.
func (s *Spectrum) Span() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, x := range s.X {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return lo, hi
}

// FluxRange returns the minimum and maximum finite flux values.
// Both are NaN if the spectrum is fully blanked.
func (s *Spectrum) FluxRange() (lo, hi float64) {
	lo, hi = math.NaN(), math.NaN()
	for _, y := range s.Y {
		if math.IsNaN(y) {
			continue
		}
		if math.IsNaN(lo) || y < lo {
			lo = y
		}
		if math.IsNaN(hi) || y > hi {
			hi = y
		}
	}
	return lo, hi
}

func (s *Spectrum) isFrequency() bool {
	_, ok := axisScale[s.Axis]
	return ok
}

// ShiftFrequency adds offset (Hz) to every channel of a frequency axis.
func (s *Spectrum) ShiftFrequency(offset float64) (*Spectrum, error) {
	if !s.isFrequency() {
		return nil, fmt.Errorf("shifting %s axis: %w", s.Axis, ErrAxisMismatch)
	}

	out := s.Clone()
	shift := offset / axisScale[s.Axis]
	for i := range out.X {
		out.X[i] += shift
	}
	return out, nil
}

// ToVelocity re-expresses a frequency axis as Doppler velocity (km/s) using
// the given convention and the spectrum's rest frequency.
func (s *Spectrum) ToVelocity(c Convention) (*Spectrum, error) {
	if !s.isFrequency() {
		return nil, fmt.Errorf("converting %s axis to velocity: %w", s.Axis, ErrAxisMismatch)
	}
	if s.RestFrequency <= 0 {
		return nil, fmt.Errorf("converting to velocity: invalid rest frequency %g Hz", s.RestFrequency)
	}

	_, toVelocity, err := c.formulas()
	if err != nil {
		return nil, err
	}

	out := s.Clone()
	scale := axisScale[s.Axis]
	for i, x := range s.X {
		out.X[i] = toVelocity(x*scale, s.RestFrequency)
	}
	out.Axis = AxisKmps
	out.Convention = c
	return out, nil
}

// ToFrequency converts a velocity axis back to frequency in the requested
// unit, using the convention the velocity axis was created with.
func (s *Spectrum) ToFrequency(unit AxisKind) (*Spectrum, error) {
	if s.Axis != AxisKmps {
		return nil, fmt.Errorf("converting %s axis to frequency: %w", s.Axis, ErrAxisMismatch)
	}
	scale, ok := axisScale[unit]
	if !ok {
		return nil, fmt.Errorf("converting to %s: %w", unit, ErrAxisMismatch)
	}

	toFrequency, _, err := s.Convention.formulas()
	if err != nil {
		return nil, err
	}

	out := s.Clone()
	for i, v := range s.X {
		out.X[i] = toFrequency(v, s.RestFrequency) / scale
	}
	out.Axis = unit
	out.Convention = ""
	return out, nil
}

// ConvertFlux re-expresses the flux values in the target unit.
func (s *Spectrum) ConvertFlux(to FluxUnit) (*Spectrum, error) {
	factor, err := s.Unit.ConversionFactor(to)
	if err != nil {
		return nil, err
	}

	out := s.Clone()
	for i := range out.Y {
		out.Y[i] *= factor
	}
	out.Unit = to
	return out, nil
}
