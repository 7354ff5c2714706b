package cube

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/astrogo/fitsio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roman-kulish/cube-spectrum/internal/spectrum"
)

type footprintFunc func(x, y float64) bool

func (f footprintFunc) Contains(x, y float64) bool { return f(x, y) }

var everyPixel = footprintFunc(func(x, y float64) bool { return true })

func celestialCards() []fitsio.Card {
	return []fitsio.Card{
		{Name: "CTYPE1", Value: "RA---TAN"},
		{Name: "CRVAL1", Value: 150.0},
		{Name: "CRPIX1", Value: 1.5},
		{Name: "CDELT1", Value: -1.0 / 3600},
		{Name: "CTYPE2", Value: "DEC--TAN"},
		{Name: "CRVAL2", Value: 2.0},
		{Name: "CRPIX2", Value: 1.5},
		{Name: "CDELT2", Value: 1.0 / 3600},
		{Name: "CTYPE3", Value: "FREQ"},
		{Name: "CUNIT3", Value: "Hz"},
		{Name: "CRVAL3", Value: 230.5e9},
		{Name: "CRPIX3", Value: 1.0},
		{Name: "CDELT3", Value: 1e6},
		{Name: "RESTFRQ", Value: 230.538e9},
		{Name: "BUNIT", Value: "Jy/beam"},
		{Name: "OBJECT", Value: "NGC0001"},
	}
}

// testValues returns 2x2x3 values in FITS order: 10*z + 2*y + x + 1.
func testValues() []float64 {
	values := make([]float64, 12)
	for z := 0; z < 3; z++ {
		for y := 0; y < 2; y++ {
			for x := 0; x < 2; x++ {
				values[z*4+y*2+x] = float64(10*z + 2*y + x + 1)
			}
		}
	}
	return values
}

func writeFITS(t *testing.T, bitpix int, axes []int, data any, cards ...fitsio.Card) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "cube.fits")
	w, err := os.Create(path)
	require.NoError(t, err)
	defer w.Close()

	f, err := fitsio.Create(w)
	require.NoError(t, err)

	img := fitsio.NewImage(bitpix, axes)
	require.NoError(t, img.Header().Append(cards...))
	require.NoError(t, img.Write(data))
	require.NoError(t, f.Write(img))
	require.NoError(t, img.Close())
	require.NoError(t, f.Close())
	return path
}

func testCube(t *testing.T) *Cube {
	t.Helper()
	c, err := Open(writeFITS(t, -64, []int{2, 2, 3}, testValues(), celestialCards()...))
	require.NoError(t, err)
	return c
}

func TestOpen(t *testing.T) {
	c := testCube(t)

	assert.Equal(t, 2, c.NX)
	assert.Equal(t, 2, c.NY)
	assert.Equal(t, 3, c.NZ)
	assert.Equal(t, "NGC0001", c.Object)
	assert.Equal(t, "Jy/beam", c.Unit)
	assert.Equal(t, "TAN", c.Celestial.Projection)
	assert.Equal(t, "FREQ", c.Spectral.Type)
	assert.InDelta(t, 230.538e9, c.Spectral.RestFrequency, 1)

	assert.Equal(t, 22.0, c.At(1, 0, 2))
	assert.Equal(t, []float64{3, 13, 23}, c.PixelSpectrum(0, 1))

	freq, err := c.Frequencies()
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{230.5e9, 230.501e9, 230.502e9}, freq, 1e-3)
}

func TestOpen_PixelTypes(t *testing.T) {
	values := testValues()
	f32 := make([]float32, len(values))
	u8 := make([]byte, len(values))
	i32 := make([]int32, len(values))
	i64 := make([]int64, len(values))
	for i, v := range values {
		f32[i], u8[i], i32[i], i64[i] = float32(v), byte(v), int32(v), int64(v)
	}

	tests := []struct {
		name   string
		bitpix int
		data   any
	}{
		{name: "float64", bitpix: -64, data: values},
		{name: "float32", bitpix: -32, data: f32},
		{name: "uint8", bitpix: 8, data: u8},
		{name: "int32", bitpix: 32, data: i32},
		{name: "int64", bitpix: 64, data: i64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Open(writeFITS(t, tt.bitpix, []int{2, 2, 3}, tt.data, celestialCards()...))
			require.NoError(t, err)

			for z := 0; z < 3; z++ {
				for y := 0; y < 2; y++ {
					for x := 0; x < 2; x++ {
						assert.Equal(t, float64(10*z+2*y+x+1), c.At(x, y, z))
					}
				}
			}
		})
	}
}

func TestOpen_DegenerateStokesAxis(t *testing.T) {
	path := writeFITS(t, -64, []int{2, 2, 3, 1}, testValues(), celestialCards()...)
	c, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 3, c.NZ)
}

func TestOpen_NotCube(t *testing.T) {
	path := writeFITS(t, -64, []int{2, 2}, []float64{1, 2, 3, 4}, celestialCards()[:8]...)
	_, err := Open(path)
	require.ErrorIs(t, err, ErrNotCube)
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.fits"))
	require.Error(t, err)
}

func TestOpen_ScaledIntegers(t *testing.T) {
	raw := make([]int16, 12)
	for i := range raw {
		raw[i] = int16(i)
	}
	raw[5] = -1

	cards := append(celestialCards(),
		fitsio.Card{Name: "BSCALE", Value: 0.5},
		fitsio.Card{Name: "BZERO", Value: 1.0},
		fitsio.Card{Name: "BLANK", Value: -1},
	)
	c, err := Open(writeFITS(t, 16, []int{2, 2, 3}, raw, cards...))
	require.NoError(t, err)

	assert.Equal(t, 1.0, c.At(0, 0, 0))
	assert.Equal(t, 3.0, c.At(0, 0, 1)) // raw 4
	assert.True(t, math.IsNaN(c.At(1, 0, 1)))
}

func TestMeanSpectrum(t *testing.T) {
	c := testCube(t)

	s, err := c.MeanSpectrum(c.NewMask(everyPixel))
	require.NoError(t, err)

	assert.Equal(t, spectrum.AxisHz, s.Axis)
	assert.Equal(t, spectrum.JanskyPerBeam, s.Unit)
	assert.InDeltaSlice(t, []float64{2.5, 12.5, 22.5}, s.Y, 1e-12)
	assert.InDelta(t, 230.538e9, s.RestFrequency, 1)
}

func TestMeanSpectrum_SinglePixel(t *testing.T) {
	c := testCube(t)

	mask := c.NewMask(footprintFunc(func(x, y float64) bool { return x == 2 && y == 1 }))
	require.Equal(t, 1, mask.Count)

	s, err := c.MeanSpectrum(mask)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 12, 22}, s.Y)
}

func TestMeanSpectrum_IgnoresBlanked(t *testing.T) {
	values := testValues()
	values[4+0] = math.NaN() // z=1, pixel (0,0)
	for z := 0; z < 3; z++ {
		values[z*4+3] = math.NaN() // pixel (1,1) fully blanked
	}

	c, err := Open(writeFITS(t, -64, []int{2, 2, 3}, values, celestialCards()...))
	require.NoError(t, err)

	s, err := c.MeanSpectrum(c.NewMask(everyPixel))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{2, 12.5, 22}, s.Y, 1e-12)

	m := c.MeanMap()
	assert.True(t, math.IsNaN(m[3]))
	assert.InDelta(t, 11.0, m[0], 1e-12) // mean of 1 and 21
}

func TestMeanSpectrum_EmptyMask(t *testing.T) {
	c := testCube(t)

	_, err := c.MeanSpectrum(c.NewMask(footprintFunc(func(x, y float64) bool { return false })))
	require.ErrorIs(t, err, ErrEmptyMask)
}

func TestMeanSpectrum_IncompatibleUnit(t *testing.T) {
	c := testCube(t)
	c.Unit = "K"

	_, err := c.MeanSpectrum(c.NewMask(everyPixel))
	require.ErrorIs(t, err, spectrum.ErrIncompatibleUnit)
}

func TestDataRange(t *testing.T) {
	lo, hi := testCube(t).DataRange()
	assert.Equal(t, 1.0, lo)
	assert.Equal(t, 24.0, hi)
}

func TestMeanSpectrum_Deterministic(t *testing.T) {
	path := writeFITS(t, -64, []int{2, 2, 3}, testValues(), celestialCards()...)

	var spectra [2][]float64
	for i := range spectra {
		c, err := Open(path)
		require.NoError(t, err)

		s, err := c.MeanSpectrum(c.NewMask(everyPixel))
		require.NoError(t, err)
		spectra[i] = s.Y
	}
	assert.Equal(t, spectra[0], spectra[1])
}
