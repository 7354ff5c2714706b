package cube

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const arcsec = 1.0 / 3600

func TestCelestialWCS_ReferencePixel(t *testing.T) {
	for _, proj := range []string{"TAN", "SIN", "ARC", "STG", "ZEA", "CAR"} {
		t.Run(proj, func(t *testing.T) {
			w, err := NewCelestialWCS(proj, [2]float64{150, 2}, [2]float64{64, 64},
				[2][2]float64{{-arcsec, 0}, {0, arcsec}})
			require.NoError(t, err)

			ra, dec, err := w.PixelToWorld(64, 64)
			require.NoError(t, err)
			assert.InDelta(t, 150, ra, 1e-9)
			assert.InDelta(t, 2, dec, 1e-9)
		})
	}
}

func TestCelestialWCS_RoundTrip(t *testing.T) {
	for _, proj := range []string{"TAN", "SIN", "ARC", "STG", "ZEA", "CAR"} {
		t.Run(proj, func(t *testing.T) {
			w, err := NewCelestialWCS(proj, [2]float64{359.99, -30}, [2]float64{50.5, 40},
				[2][2]float64{{-0.1 * arcsec, 0.02 * arcsec}, {0.01 * arcsec, 0.1 * arcsec}})
			require.NoError(t, err)

			for _, p := range [][2]float64{{1, 1}, {100, 80}, {50.5, 1}, {12.25, 77.75}} {
				ra, dec, err := w.PixelToWorld(p[0], p[1])
				require.NoError(t, err)

				x, y, err := w.WorldToPixel(ra, dec)
				require.NoError(t, err)
				assert.InDelta(t, p[0], x, 1e-6)
				assert.InDelta(t, p[1], y, 1e-6)
			}
		})
	}
}

func TestCelestialWCS_RoundTripNearReference(t *testing.T) {
	for _, proj := range []string{"TAN", "SIN", "ARC", "STG", "ZEA"} {
		t.Run(proj, func(t *testing.T) {
			w, err := NewCelestialWCS(proj, [2]float64{150, 2}, [2]float64{1.5, 1.5},
				[2][2]float64{{-arcsec, 0}, {0, arcsec}})
			require.NoError(t, err)

			for _, p := range [][2]float64{{1, 1}, {2, 2}, {1.5, 1.75}, {1.6, 1.5}} {
				ra, dec, err := w.PixelToWorld(p[0], p[1])
				require.NoError(t, err)

				x, y, err := w.WorldToPixel(ra, dec)
				require.NoError(t, err)
				assert.InDelta(t, p[0], x, 1e-8)
				assert.InDelta(t, p[1], y, 1e-8)
			}
		})
	}
}

func TestCelestialWCS_Orientation(t *testing.T) {
	w, err := NewCelestialWCS("TAN", [2]float64{150, 2}, [2]float64{10, 10},
		[2][2]float64{{-arcsec, 0}, {0, arcsec}})
	require.NoError(t, err)

	// RA increases towards lower x, Dec towards higher y.
	ra, dec, err := w.PixelToWorld(9, 11)
	require.NoError(t, err)
	assert.Greater(t, ra, 150.0)
	assert.Greater(t, dec, 2.0)
}

func TestCelestialWCS_PixelScale(t *testing.T) {
	w, err := NewCelestialWCS("TAN", [2]float64{0, 0}, [2]float64{1, 1},
		[2][2]float64{{-2 * arcsec, 0}, {0, 2 * arcsec}})
	require.NoError(t, err)
	assert.InDelta(t, 2*arcsec, w.PixelScale(), 1e-15)
}

func TestCelestialWCS_Singular(t *testing.T) {
	_, err := NewCelestialWCS("TAN", [2]float64{0, 0}, [2]float64{1, 1}, [2][2]float64{})
	require.Error(t, err)
}

func TestNewCelestialWCSFromCards(t *testing.T) {
	tests := []struct {
		name  string
		cards Cards
		cd    [2][2]float64
	}{
		{
			name: "cdelt",
			cards: Cards{
				"CTYPE1": "RA---SIN", "CTYPE2": "DEC--SIN",
				"CDELT1": -0.5, "CDELT2": 0.5,
			},
			cd: [2][2]float64{{-0.5, 0}, {0, 0.5}},
		},
		{
			name: "cd matrix",
			cards: Cards{
				"CTYPE1": "RA---SIN", "CTYPE2": "DEC--SIN",
				"CD1_1": -0.5, "CD1_2": 0.1, "CD2_1": 0.2, "CD2_2": 0.5,
			},
			cd: [2][2]float64{{-0.5, 0.1}, {0.2, 0.5}},
		},
		{
			name: "pc matrix",
			cards: Cards{
				"CTYPE1": "RA---SIN", "CTYPE2": "DEC--SIN",
				"CDELT1": -2, "CDELT2": 2,
				"PC1_1": 1, "PC1_2": 0.5, "PC2_1": 0, "PC2_2": 1,
			},
			cd: [2][2]float64{{-2, -1}, {0, 2}},
		},
		{
			name: "crota2",
			cards: Cards{
				"CTYPE1": "RA---SIN", "CTYPE2": "DEC--SIN",
				"CDELT1": -1, "CDELT2": 1, "CROTA2": 90,
			},
			cd: [2][2]float64{{0, -1}, {-1, 0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := NewCelestialWCSFromCards(tt.cards)
			require.NoError(t, err)
			assert.Equal(t, "SIN", w.Projection)
			for i := range tt.cd {
				assert.InDeltaSlice(t, tt.cd[i][:], w.CD[i][:], 1e-12)
			}
		})
	}
}

func TestNewCelestialWCSFromCards_Errors(t *testing.T) {
	_, err := NewCelestialWCSFromCards(Cards{"CTYPE1": "GLON-TAN", "CTYPE2": "GLAT-TAN", "CDELT1": 1, "CDELT2": 1})
	require.Error(t, err)

	_, err = NewCelestialWCSFromCards(Cards{"CTYPE1": "RA---TAN", "CTYPE2": "DEC--TAN"})
	require.Error(t, err)
}

func TestNewSpectralAxis(t *testing.T) {
	cards := Cards{
		"CTYPE3": "VRAD", "CUNIT3": "km/s",
		"CRVAL3": 0.0, "CRPIX3": 2.0, "CDELT3": 10.0,
		"RESTFRQ": 100e9,
	}
	axis, err := NewSpectralAxis(cards, 3)
	require.NoError(t, err)

	assert.Equal(t, "VRAD", axis.Type)
	assert.Equal(t, 10e3, axis.Delta)
	assert.Equal(t, -10e3, axis.Value(0))

	freq, err := axis.Frequencies(3)
	require.NoError(t, err)
	// f = f0 (1 - v/c)
	assert.InDelta(t, 100e9*(1+10/299792.458), freq[0], 1)
	assert.InDelta(t, 100e9, freq[1], 1e-3)

	delete(cards, "RESTFRQ")
	axis, err = NewSpectralAxis(cards, 3)
	require.NoError(t, err)
	_, err = axis.Frequencies(3)
	require.ErrorIs(t, err, ErrNoRestFrequency)
}

func TestNewSpectralAxis_Errors(t *testing.T) {
	_, err := NewSpectralAxis(Cards{"CTYPE3": "STOKES", "CDELT3": 1.0}, 3)
	require.Error(t, err)

	_, err = NewSpectralAxis(Cards{"CTYPE3": "FREQ", "CUNIT3": "parsec", "CDELT3": 1.0}, 3)
	require.Error(t, err)

	_, err = NewSpectralAxis(Cards{"CTYPE3": "FREQ"}, 3)
	require.Error(t, err)
}
