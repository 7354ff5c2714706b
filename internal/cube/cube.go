// Package cube holds spectral data cubes: two celestial axes and one spectral
// axis of flux values, with the coordinate systems needed to map pixels to
// sky positions and channels to frequencies.
package cube

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNotCube is returned when a file holds no three-dimensional image.
	ErrNotCube = errors.New("cube: no 3D image found")

	// ErrNoRestFrequency is returned when a velocity or spectrum conversion
	// needs a rest frequency the cube does not define.
	ErrNoRestFrequency = errors.New("cube: rest frequency not defined")

	// ErrEmptyMask is returned when a footprint selects no pixels.
	ErrEmptyMask = errors.New("cube: footprint selects no pixels")
)

// Cube is a read-only spectral cube. Values are stored pixel-major, so the
// spectrum of one spatial pixel is contiguous in memory.
type Cube struct {
	NX, NY, NZ int // Pixels along RA, Dec and channels along the spectral axis

	Object    string        // OBJECT card, may be empty
	Unit      string        // BUNIT card
	Celestial *CelestialWCS // Pixel <-> sky transform
	Spectral  SpectralAxis  // Channel <-> frequency transform

	data []float64
}

// New creates a cube from values in FITS order (x fastest, then y, then channel).
func New(nx, ny, nz int, values []float64, unit string, celestial *CelestialWCS, spectral SpectralAxis) (*Cube, error) {
	if nx <= 0 || ny <= 0 || nz <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%dx%d", ErrNotCube, nx, ny, nz)
	}
	if len(values) != nx*ny*nz {
		return nil, fmt.Errorf("cube: %d values for %dx%dx%d cube", len(values), nx, ny, nz)
	}
	if celestial == nil {
		return nil, errors.New("cube: celestial coordinate system is required")
	}

	data := make([]float64, len(values))
	plane := nx * ny
	for z := 0; z < nz; z++ {
		for p := 0; p < plane; p++ {
			data[p*nz+z] = values[z*plane+p]
		}
	}

	return &Cube{
		NX:        nx,
		NY:        ny,
		NZ:        nz,
		Unit:      unit,
		Celestial: celestial,
		Spectral:  spectral,
		data:      data,
	}, nil
}

// At returns the value at zero-based pixel (x, y) and channel z.
func (c *Cube) At(x, y, z int) float64 {
	return c.data[(y*c.NX+x)*c.NZ+z]
}

// PixelSpectrum returns the spectrum of zero-based pixel (x, y). The returned
// slice aliases the cube and must not be modified.
func (c *Cube) PixelSpectrum(x, y int) []float64 {
	i := (y*c.NX + x) * c.NZ
	return c.data[i : i+c.NZ : i+c.NZ]
}

// Frequencies returns the frequency (Hz) of every channel.
func (c *Cube) Frequencies() ([]float64, error) {
	return c.Spectral.Frequencies(c.NZ)
}

// DataRange returns the minimum and maximum finite values in the cube.
func (c *Cube) DataRange() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range c.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
