package spectrum

import (
	"errors"
	"fmt"
	"strings"
)

// ErrIncompatibleUnit is returned when flux values cannot be converted to the
// requested unit (e.g. brightness temperature to Jansky).
var ErrIncompatibleUnit = errors.New("spectrum: incompatible flux unit")

// FluxUnit is a flux density unit expressed relative to the Jansky.
type FluxUnit struct {
	Name    string  `json:"name"`    // Canonical name, e.g. "mJy/beam"
	Scale   float64 `json:"scale"`   // Value of one unit in Jy
	PerBeam bool    `json:"perBeam"` // Surface brightness per synthesized beam
}

var (
	Jansky             = FluxUnit{Name: "Jy", Scale: 1}
	MilliJansky        = FluxUnit{Name: "mJy", Scale: 1e-3}
	JanskyPerBeam      = FluxUnit{Name: "Jy/beam", Scale: 1, PerBeam: true}
	MilliJanskyPerBeam = FluxUnit{Name: "mJy/beam", Scale: 1e-3, PerBeam: true}
)

var janskyPrefixes = map[string]float64{
	"":  1,
	"k": 1e3,
	"m": 1e-3,
	"u": 1e-6,
	"µ": 1e-6,
	"μ": 1e-6,
	"n": 1e-9,
}

var prefixNames = map[float64]string{
	1:    "",
	1e3:  "k",
	1e-3: "m",
	1e-6: "u",
	1e-9: "n",
}

// ParseFluxUnit parses FITS BUNIT style flux units such as "Jy/beam",
// "JY/BEAM", "mJy beam-1" or "Jy". Units that are not Jansky based return
// ErrIncompatibleUnit.
func ParseFluxUnit(s string) (FluxUnit, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "", "*", "", ".", "", "^", "").Replace(norm)

	var perBeam bool
	for _, suffix := range []string{"/beam", "beam-1"} {
		if strings.HasSuffix(norm, suffix) {
			norm = strings.TrimSuffix(norm, suffix)
			perBeam = true
			break
		}
	}

	if !strings.HasSuffix(norm, "jy") {
		return FluxUnit{}, fmt.Errorf("%w: %q", ErrIncompatibleUnit, s)
	}
	scale, ok := janskyPrefixes[strings.TrimSuffix(norm, "jy")]
	if !ok {
		return FluxUnit{}, fmt.Errorf("%w: %q", ErrIncompatibleUnit, s)
	}

	name := prefixNames[scale] + "Jy"
	if perBeam {
		name += "/beam"
	}
	return FluxUnit{Name: name, Scale: scale, PerBeam: perBeam}, nil
}

// ConversionFactor returns the multiplier converting values in u to values in to.
func (u FluxUnit) ConversionFactor(to FluxUnit) (float64, error) {
	if u.Scale == 0 || to.Scale == 0 || u.PerBeam != to.PerBeam {
		return 0, fmt.Errorf("%w: %s to %s", ErrIncompatibleUnit, u.Name, to.Name)
	}
	return u.Scale / to.Scale, nil
}

// Milli returns the milli-Jansky unit with the same beam dependence.
func (u FluxUnit) Milli() FluxUnit {
	if u.PerBeam {
		return MilliJanskyPerBeam
	}
	return MilliJansky
}

// Label returns a plot axis label for the unit.
func (u FluxUnit) Label() string {
	prefix := prefixNames[u.Scale]
	if u.PerBeam {
		return fmt.Sprintf("Flux Density (%sJy beam⁻¹)", prefix)
	}
	return fmt.Sprintf("Flux Density (%sJy)", prefix)
}

func (u FluxUnit) String() string {
	return u.Name
}
