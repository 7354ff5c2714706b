package region

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ds9File = `# Region file format: DS9 version 4.1
global color=green dashlist=8 3 width=1 font="helvetica 10 normal roman" select=1
fk5
circle(10:00:00.0,+02:00:00.0,1.5") # text={nucleus}
ellipse(150.01,2.01,2",1",30) # color=red
image
box(32,32,10,4,0)
-polygon(1,1,5,1,5,5,1,5)
fk5;point(150.0d,2.0d) # point=cross text="peak"
`

func TestParse(t *testing.T) {
	regions, err := Parse(strings.NewReader(ds9File))
	require.NoError(t, err)
	require.Len(t, regions, 5)

	c := regions[0]
	assert.Equal(t, Circle, c.Shape)
	assert.Equal(t, FK5, c.System)
	assert.InDelta(t, 150.0, c.Points[0].X, 1e-9)
	assert.InDelta(t, 2.0, c.Points[0].Y, 1e-9)
	assert.InDelta(t, 1.5/3600, c.Sizes[0].Value, 1e-12)
	assert.False(t, c.Sizes[0].Pixels)
	assert.Equal(t, "nucleus", c.Text)
	assert.Equal(t, 4, c.Line)

	e := regions[1]
	assert.Equal(t, Ellipse, e.Shape)
	assert.Len(t, e.Sizes, 2)
	assert.Equal(t, 30.0, e.Angle)

	b := regions[2]
	assert.Equal(t, Box, b.Shape)
	assert.Equal(t, Image, b.System)
	assert.Equal(t, []Size{{Value: 10, Pixels: true}, {Value: 4, Pixels: true}}, b.Sizes)

	p := regions[3]
	assert.Equal(t, Polygon, p.Shape)
	assert.True(t, p.Exclude)
	assert.Len(t, p.Points, 4)
	assert.Equal(t, Coord{X: 3, Y: 3}, p.Centre())

	pt := regions[4]
	assert.Equal(t, Point, pt.Shape)
	assert.Equal(t, FK5, pt.System)
	assert.Equal(t, "peak", pt.Text)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		err   error
	}{
		{name: "galactic", input: "galactic\ncircle(10,10,1)", err: ErrUnsupportedSystem},
		{name: "annulus", input: "image\nannulus(10,10,1,2)", err: ErrUnsupportedShape},
		{name: "missing radius", input: "circle(10,10)"},
		{name: "bad number", input: "circle(10,ten,1)"},
		{name: "bad declination", input: "fk5\ncircle(10,95,1)"},
		{name: "polygon too short", input: "polygon(1,1,2,2)"},
		{name: "unterminated", input: "circle(10,10,1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regions.reg")
	require.NoError(t, os.WriteFile(path, []byte(ds9File), 0o644))

	regions, err := ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, regions, 5)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.reg"))
	require.Error(t, err)
}

func TestSexagesimal(t *testing.T) {
	tests := []struct {
		in   string
		lon  bool
		want float64
	}{
		{in: "10:00:00", lon: true, want: 150},
		{in: "10h30m00s", lon: true, want: 157.5},
		{in: "150.25", lon: true, want: 150.25},
		{in: "-00:30:00", want: -0.5},
		{in: "-30d30m00s", want: -30.5},
		{in: "+12.5", want: 12.5},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var got float64
			var err error
			if tt.lon {
				got, err = parseLongitude(tt.in)
			} else {
				got, err = parseLatitude(tt.in)
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in     string
		system System
		want   Size
	}{
		{in: `3"`, system: FK5, want: Size{Value: 3.0 / 3600}},
		{in: "2'", system: FK5, want: Size{Value: 2.0 / 60}},
		{in: "0.5d", system: FK5, want: Size{Value: 0.5}},
		{in: "0.5", system: FK5, want: Size{Value: 0.5}},
		{in: "4p", system: FK5, want: Size{Value: 4, Pixels: true}},
		{in: "4i", system: FK5, want: Size{Value: 4, Pixels: true}},
		{in: "4", system: Image, want: Size{Value: 4, Pixels: true}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseSize(tt.in, tt.system)
			require.NoError(t, err)
			assert.Equal(t, tt.want.Pixels, got.Pixels)
			assert.InDelta(t, tt.want.Value, got.Value, 1e-12)
		})
	}

	_, err := parseSize("-1", Image)
	require.Error(t, err)
}

func TestSelect(t *testing.T) {
	regions, err := Parse(strings.NewReader(ds9File))
	require.NoError(t, err)

	r, err := Select(regions, 2)
	require.NoError(t, err)
	assert.Equal(t, Box, r.Shape)

	for _, idx := range []int{-1, 5} {
		_, err = Select(regions, idx)
		require.ErrorIs(t, err, ErrIndexOutOfRange)
	}
}

func TestRegion_String(t *testing.T) {
	r := Region{Shape: Box, System: Image, Points: []Coord{{X: 32, Y: 32}},
		Sizes: []Size{{Value: 10, Pixels: true}, {Value: 4.5, Pixels: true}}, Angle: 15, Exclude: true}
	assert.Equal(t, "-box(32,32,10,4.5,15)", r.String())

	c := Region{Shape: Circle, System: FK5, Points: []Coord{{X: 150, Y: 2}}, Sizes: []Size{{Value: 1.5 / 3600}}}
	assert.Equal(t, `circle(150,2,1.5")`, c.String())
}
