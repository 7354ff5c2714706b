package cube

import (
	"fmt"
	"strings"

	"github.com/roman-kulish/cube-spectrum/internal/spectrum"
)

// SpectralAxis maps channels to frequency. Reference values are kept in SI
// units: Hz for frequency axes and m/s for velocity axes.
type SpectralAxis struct {
	Type          string  // FREQ, VRAD or VOPT
	RefValue      float64 // CRVAL at RefPixel
	RefPixel      float64 // CRPIX, 1-based
	Delta         float64 // CDELT per channel
	RestFrequency float64 // RESTFRQ in Hz, 0 if not defined
}

var spectralUnits = map[string]float64{
	"":     1,
	"hz":   1,
	"khz":  1e3,
	"mhz":  1e6,
	"ghz":  1e9,
	"m/s":  1,
	"km/s": 1e3,
}

// NewSpectralAxis reads the spectral axis keywords of the given axis number.
func NewSpectralAxis(c Cards, axis int) (SpectralAxis, error) {
	ctype := strings.ToUpper(c.String(axisCard("CTYPE", axis)))
	kind, _, _ := strings.Cut(ctype, "-")

	switch kind {
	case "FREQ", "VRAD", "VOPT":
	case "VELO", "FELO":
		kind = "VOPT"
	default:
		return SpectralAxis{}, fmt.Errorf("cube: unsupported spectral axis type %q", ctype)
	}

	unit := strings.ToLower(c.String(axisCard("CUNIT", axis)))
	scale, ok := spectralUnits[unit]
	if !ok {
		return SpectralAxis{}, fmt.Errorf("cube: unsupported spectral unit %q", unit)
	}

	delta, ok := c.Float(axisCard("CDELT", axis))
	if !ok {
		delta, ok = c.Float(fmt.Sprintf("CD%d_%d", axis, axis))
	}
	if !ok || delta == 0 {
		return SpectralAxis{}, fmt.Errorf("cube: spectral axis has no channel width")
	}

	rest := c.FloatOr("RESTFRQ", c.FloatOr("RESTFREQ", 0))

	return SpectralAxis{
		Type:          kind,
		RefValue:      c.FloatOr(axisCard("CRVAL", axis), 0) * scale,
		RefPixel:      c.FloatOr(axisCard("CRPIX", axis), 1),
		Delta:         delta * scale,
		RestFrequency: rest,
	}, nil
}

// Value returns the world coordinate of zero-based channel i in SI units.
func (a SpectralAxis) Value(i int) float64 {
	return a.RefValue + (float64(i+1)-a.RefPixel)*a.Delta
}

// Frequencies returns the frequency in Hz of channels 0..n-1.
func (a SpectralAxis) Frequencies(n int) ([]float64, error) {
	out := make([]float64, n)

	if a.Type == "FREQ" {
		for i := range out {
			out[i] = a.Value(i)
		}
		return out, nil
	}

	if a.RestFrequency <= 0 {
		return nil, fmt.Errorf("converting %s axis to frequency: %w", a.Type, ErrNoRestFrequency)
	}

	convention := spectrum.Radio
	if a.Type == "VOPT" {
		convention = spectrum.Optical
	}
	for i := range out {
		f, err := convention.Frequency(a.Value(i)/1e3, a.RestFrequency)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}
