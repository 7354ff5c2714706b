package spectrum

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const co21 = 230.538e9 // CO J=2-1 rest frequency in Hz

func TestParseConvention(t *testing.T) {
	tests := []struct {
		in      string
		want    Convention
		wantErr bool
	}{
		{in: "optical", want: Optical},
		{in: "radio", want: Radio},
		{in: " Radio ", want: Radio},
		{in: "OPTICAL", want: Optical},
		{in: "relativistic", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseConvention(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnknownConvention))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRestFrequencyOffset_ClosedForm(t *testing.T) {
	const v = 1500.0 // km/s

	radio, err := RestFrequencyOffset(Radio, co21, v)
	require.NoError(t, err)
	assert.InDelta(t, co21*v/SpeedOfLight, radio, 1e-3)

	optical, err := RestFrequencyOffset(Optical, co21, v)
	require.NoError(t, err)
	assert.InDelta(t, co21-co21/(1+v/SpeedOfLight), optical, 1e-3)

	assert.NotEqual(t, radio, optical)
	assert.Greater(t, radio, optical)
}

func TestRestFrequencyOffset_ZeroVelocity(t *testing.T) {
	for _, c := range []Convention{Optical, Radio} {
		off, err := RestFrequencyOffset(c, co21, 0)
		require.NoError(t, err)
		assert.Zero(t, off, c)
	}
}

func TestRestFrequencyOffset_UnknownConvention(t *testing.T) {
	_, err := RestFrequencyOffset(Convention("relativistic"), co21, 100)
	require.ErrorIs(t, err, ErrUnknownConvention)
}

func TestConvention_RoundTrip(t *testing.T) {
	for _, c := range []Convention{Optical, Radio} {
		for _, f := range []float64{229.9e9, 230.538e9, 231.2e9} {
			v, err := c.Velocity(f, co21)
			require.NoError(t, err)

			back, err := c.Frequency(v, co21)
			require.NoError(t, err)
			assert.InEpsilon(t, f, back, 1e-12, "%s %g", c, f)
		}
	}
}
