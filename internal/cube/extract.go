package cube

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/roman-kulish/cube-spectrum/internal/spectrum"
)

// Footprint selects spatial pixels. Coordinates are 1-based FITS pixel
// coordinates of the pixel centre.
type Footprint interface {
	Contains(x, y float64) bool
}

// Mask is a boolean selection of spatial pixels.
type Mask struct {
	NX, NY int
	Count  int // Number of selected pixels

	bits []bool
}

// NewMask evaluates footprints against every pixel centre of the cube. A pixel
// is selected if it lies in any footprint.
func (c *Cube) NewMask(footprints ...Footprint) *Mask {
	m := &Mask{NX: c.NX, NY: c.NY, bits: make([]bool, c.NX*c.NY)}
	for y := 0; y < c.NY; y++ {
		for x := 0; x < c.NX; x++ {
			for _, fp := range footprints {
				if fp.Contains(float64(x+1), float64(y+1)) {
					m.bits[y*c.NX+x] = true
					m.Count++
					break
				}
			}
		}
	}
	return m
}

// Selected reports whether zero-based pixel (x, y) is in the mask.
func (m *Mask) Selected(x, y int) bool {
	if x < 0 || y < 0 || x >= m.NX || y >= m.NY {
		return false
	}
	return m.bits[y*m.NX+x]
}

// MeanSpectrum averages the spectra of all selected pixels. Blanked (NaN)
// values are excluded per channel. The spectrum axis is frequency in Hz and
// the flux unit is parsed from BUNIT.
func (c *Cube) MeanSpectrum(m *Mask) (*spectrum.Spectrum, error) {
	if m == nil || m.Count == 0 {
		return nil, ErrEmptyMask
	}
	if m.NX != c.NX || m.NY != c.NY {
		return nil, fmt.Errorf("cube: mask %dx%d does not match cube %dx%d", m.NX, m.NY, c.NX, c.NY)
	}

	unit, err := spectrum.ParseFluxUnit(c.Unit)
	if err != nil {
		return nil, err
	}
	freq, err := c.Frequencies()
	if err != nil {
		return nil, err
	}

	sum := make([]float64, c.NZ)
	counts := make([]int, c.NZ)
	var blanked bool

	for y := 0; y < c.NY; y++ {
		for x := 0; x < c.NX; x++ {
			if !m.Selected(x, y) {
				continue
			}
			pix := c.PixelSpectrum(x, y)
			if !blanked && !hasNaN(pix) {
				vecmath.AddBlockInPlace(sum, pix)
				for z := range counts {
					counts[z]++
				}
				continue
			}
			blanked = true
			for z, v := range pix {
				if !math.IsNaN(v) {
					sum[z] += v
					counts[z]++
				}
			}
		}
	}

	for z := range sum {
		if counts[z] == 0 {
			sum[z] = math.NaN()
			continue
		}
		sum[z] /= float64(counts[z])
	}

	s, err := spectrum.New(freq, sum, spectrum.AxisHz, unit, c.Spectral.RestFrequency)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// MeanMap returns the per-pixel mean over all channels, row-major with x
// fastest. Fully blanked pixels are NaN.
func (c *Cube) MeanMap() []float64 {
	out := make([]float64, c.NX*c.NY)
	for p := range out {
		var sum float64
		var n int
		for _, v := range c.data[p*c.NZ : (p+1)*c.NZ] {
			if !math.IsNaN(v) {
				sum += v
				n++
			}
		}
		if n == 0 {
			out[p] = math.NaN()
			continue
		}
		out[p] = sum / float64(n)
	}
	return out
}

func hasNaN(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) {
			return true
		}
	}
	return false
}
