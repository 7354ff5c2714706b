package cube

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/astrogo/fitsio"
)

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

// Open reads the first image HDU with three significant axes from a FITS
// file. A trailing degenerate Stokes axis (NAXIS4 = 1) is accepted.
func Open(path string) (c *Cube, err error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening cube: %w", err)
	}
	defer closeWithError(r, &err)

	f, err := fitsio.Open(r)
	if err != nil {
		return nil, fmt.Errorf("reading FITS file '%s': %w", path, err)
	}
	defer closeWithError(f, &err)

	for _, hdu := range f.HDUs() {
		img, ok := hdu.(fitsio.Image)
		if !ok {
			continue
		}
		axes := significantAxes(img.Header().Axes())
		if len(axes) != 3 {
			continue
		}
		return fromImage(img, axes)
	}
	return nil, fmt.Errorf("%w in '%s'", ErrNotCube, path)
}

// significantAxes drops trailing axes of length one beyond the third.
func significantAxes(axes []int) []int {
	n := len(axes)
	for n > 3 && axes[n-1] == 1 {
		n--
	}
	return axes[:n]
}

func headerCards(hdr *fitsio.Header) Cards {
	cards := make(Cards, len(hdr.Keys()))
	for _, key := range hdr.Keys() {
		card := hdr.Get(key)
		if card == nil {
			continue
		}
		cards[strings.ToUpper(key)] = card.Value
	}
	return cards
}

func fromImage(img fitsio.Image, axes []int) (*Cube, error) {
	hdr := img.Header()
	cards := headerCards(hdr)

	values, err := readPixels(img, hdr.Bitpix(), cards)
	if err != nil {
		return nil, err
	}

	celestial, err := NewCelestialWCSFromCards(cards)
	if err != nil {
		return nil, err
	}
	spectral, err := NewSpectralAxis(cards, 3)
	if err != nil {
		return nil, err
	}

	c, err := New(axes[0], axes[1], axes[2], values, cards.String("BUNIT"), celestial, spectral)
	if err != nil {
		return nil, err
	}
	c.Object = cards.String("OBJECT")
	return c, nil
}

// readPixels reads image data as float64, applying BSCALE/BZERO and mapping
// BLANK to NaN for integer images.
func readPixels(img fitsio.Image, bitpix int, cards Cards) ([]float64, error) {
	n := pixelCount(img.Header().Axes())

	var (
		raw []float64
		err error
	)
	switch bitpix {
	case -64:
		raw = make([]float64, n)
		if err = img.Read(&raw); err != nil {
			return nil, fmt.Errorf("reading pixels: %w", err)
		}
		return raw, nil
	case -32:
		raw, err = readAs[float32](img, n)
		if err != nil {
			return nil, err
		}
		return raw, nil
	case 8:
		raw, err = readAs[byte](img, n)
	case 16:
		raw, err = readAs[int16](img, n)
	case 32:
		raw, err = readAs[int32](img, n)
	case 64:
		raw, err = readAs[int64](img, n)
	default:
		return nil, errors.New("cube: unsupported BITPIX " + fmt.Sprint(bitpix))
	}
	if err != nil {
		return nil, err
	}

	scale := cards.FloatOr("BSCALE", 1)
	zero := cards.FloatOr("BZERO", 0)
	blank, hasBlank := cards.Float("BLANK")
	for i, v := range raw {
		if hasBlank && v == blank {
			raw[i] = math.NaN()
			continue
		}
		raw[i] = v*scale + zero
	}
	return raw, nil
}

// pixelCount is the number of values stored for the given axis lengths.
func pixelCount(axes []int) int {
	if len(axes) == 0 {
		return 0
	}
	n := 1
	for _, dim := range axes {
		n *= dim
	}
	return n
}

// readAs reads n pixels stored as T and widens them to float64. The buffer is
// sized up front since fitsio only sets the length of the slice it is given.
func readAs[T byte | int16 | int32 | int64 | float32](img fitsio.Image, n int) ([]float64, error) {
	buf := make([]T, n)
	if err := img.Read(&buf); err != nil {
		return nil, fmt.Errorf("reading pixels: %w", err)
	}
	out := make([]float64, n)
	for i, v := range buf {
		out[i] = float64(v)
	}
	return out, nil
}
