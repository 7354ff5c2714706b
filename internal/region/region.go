// Package region reads DS9 region files and converts the regions to pixel
// footprints of a cube.
package region

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrIndexOutOfRange is returned when a region index does not exist.
	ErrIndexOutOfRange = errors.New("region: index out of range")

	// ErrUnsupportedSystem is returned for shapes in a coordinate system other
	// than image/physical or equatorial (fk5, icrs, j2000).
	ErrUnsupportedSystem = errors.New("region: unsupported coordinate system")

	// ErrUnsupportedShape is returned for shapes that do not describe an area.
	ErrUnsupportedShape = errors.New("region: unsupported shape")
)

// Shape is the DS9 shape name.
type Shape string

const (
	Circle  Shape = "circle"
	Ellipse Shape = "ellipse"
	Box     Shape = "box"
	Polygon Shape = "polygon"
	Point   Shape = "point"
)

// System is the coordinate system a region is expressed in.
type System string

const (
	Image System = "image" // 1-based pixel coordinates
	FK5   System = "fk5"   // Equatorial J2000 (fk5, icrs, j2000)
)

// Coord is a position: degrees for sky systems, 1-based pixels for Image.
type Coord struct {
	X, Y float64
}

// Size is a length: degrees for sky systems unless Pixels is set.
type Size struct {
	Value  float64
	Pixels bool
}

// Region is one shape read from a region file.
type Region struct {
	Shape   Shape
	System  System
	Points  []Coord // Centre, or the vertices of a polygon
	Sizes   []Size  // Radius; semi-axes of an ellipse; width and height of a box
	Angle   float64 // Rotation in degrees, counter-clockwise from the x axis
	Exclude bool    // Shape was prefixed with "-"
	Text    string  // text={...} property, if any
	Line    int     // Line number in the source file
}

// Centre returns the first point of the region (the mean vertex for polygons).
func (r Region) Centre() Coord {
	if r.Shape != Polygon || len(r.Points) == 0 {
		if len(r.Points) == 0 {
			return Coord{}
		}
		return r.Points[0]
	}

	var c Coord
	for _, p := range r.Points {
		c.X += p.X
		c.Y += p.Y
	}
	c.X /= float64(len(r.Points))
	c.Y /= float64(len(r.Points))
	return c
}

func (r Region) String() string {
	var sb strings.Builder
	if r.Exclude {
		sb.WriteByte('-')
	}
	sb.WriteString(string(r.Shape))
	sb.WriteByte('(')

	var args []string
	for _, p := range r.Points {
		args = append(args, formatFloat(p.X), formatFloat(p.Y))
	}
	for _, s := range r.Sizes {
		switch {
		case s.Pixels || r.System == Image:
			args = append(args, formatFloat(s.Value))
		default:
			args = append(args, formatFloat(s.Value*3600)+`"`)
		}
	}
	if r.Shape == Ellipse || r.Shape == Box {
		args = append(args, formatFloat(r.Angle))
	}
	sb.WriteString(strings.Join(args, ","))
	sb.WriteByte(')')
	return sb.String()
}

func formatFloat(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.6g", v)
}

// Select returns the region at the zero-based index.
func Select(regions []Region, index int) (Region, error) {
	if index < 0 || index >= len(regions) {
		return Region{}, fmt.Errorf("%w: index %d, %d regions", ErrIndexOutOfRange, index, len(regions))
	}
	return regions[index], nil
}
