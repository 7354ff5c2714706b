package region

import (
	"fmt"
	"math"
)

// Transform maps sky coordinates to 1-based pixel coordinates.
type Transform interface {
	WorldToPixel(ra, dec float64) (x, y float64, err error)
	PixelScale() float64 // Degrees per pixel
}

// Footprint is a region expressed in 1-based pixel coordinates.
type Footprint interface {
	// Contains reports whether the pixel centred at (x, y) is selected.
	Contains(x, y float64) bool

	// Centre returns the reference position of the shape.
	Centre() (x, y float64)

	// Outline returns the closed boundary of the shape as a polygon.
	Outline() []Coord
}

const outlineSegments = 64

// Footprint converts the region to pixel coordinates. Sky regions need a
// transform; image regions ignore it.
func (r Region) Footprint(t Transform) (Footprint, error) {
	if r.System != Image && t == nil {
		return nil, fmt.Errorf("region: %s region needs a celestial transform", r.System)
	}

	points := make([]Coord, len(r.Points))
	for i, p := range r.Points {
		if r.System == Image {
			points[i] = p
			continue
		}
		x, y, err := t.WorldToPixel(p.X, p.Y)
		if err != nil {
			return nil, fmt.Errorf("region: converting %s to pixels: %w", r.Shape, err)
		}
		points[i] = Coord{X: x, Y: y}
	}

	sizes := make([]float64, len(r.Sizes))
	for i, s := range r.Sizes {
		if s.Pixels {
			sizes[i] = s.Value
			continue
		}
		if t == nil {
			return nil, fmt.Errorf("region: %s size in degrees needs a celestial transform", r.Shape)
		}
		sizes[i] = s.Value / t.PixelScale()
	}

	angle := r.Angle
	if r.System != Image {
		rot, err := northAngle(t, r.Points[0])
		if err != nil {
			return nil, err
		}
		angle += rot
	}

	switch r.Shape {
	case Circle:
		return &ellipse{cx: points[0].X, cy: points[0].Y, a: sizes[0], b: sizes[0]}, nil
	case Ellipse:
		return &ellipse{cx: points[0].X, cy: points[0].Y, a: sizes[0], b: sizes[1], angle: angle * math.Pi / 180}, nil
	case Box:
		return &box{cx: points[0].X, cy: points[0].Y, w: sizes[0], h: sizes[1], angle: angle * math.Pi / 180}, nil
	case Polygon:
		return &polygon{points: points}, nil
	case Point:
		return &point{x: points[0].X, y: points[0].Y}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedShape, r.Shape)
}

// northAngle returns the angle in degrees by which north deviates from the
// +y pixel axis at c.
func northAngle(t Transform, c Coord) (float64, error) {
	x0, y0, err := t.WorldToPixel(c.X, c.Y)
	if err != nil {
		return 0, err
	}
	x1, y1, err := t.WorldToPixel(c.X, c.Y+1.0/3600)
	if err != nil {
		return 0, err
	}
	return math.Atan2(y1-y0, x1-x0)*180/math.Pi - 90, nil
}

type ellipse struct {
	cx, cy, a, b float64
	angle        float64 // radians
}

func (e *ellipse) Contains(x, y float64) bool {
	if e.a <= 0 || e.b <= 0 {
		return false
	}
	sin, cos := math.Sincos(e.angle)
	dx, dy := x-e.cx, y-e.cy
	u := dx*cos + dy*sin
	v := -dx*sin + dy*cos
	return (u*u)/(e.a*e.a)+(v*v)/(e.b*e.b) <= 1
}

func (e *ellipse) Centre() (float64, float64) {
	return e.cx, e.cy
}

func (e *ellipse) Outline() []Coord {
	sin, cos := math.Sincos(e.angle)
	out := make([]Coord, outlineSegments)
	for i := range out {
		t := 2 * math.Pi * float64(i) / outlineSegments
		u, v := e.a*math.Cos(t), e.b*math.Sin(t)
		out[i] = Coord{X: e.cx + u*cos - v*sin, Y: e.cy + u*sin + v*cos}
	}
	return out
}

type box struct {
	cx, cy, w, h float64
	angle        float64 // radians
}

func (b *box) Contains(x, y float64) bool {
	sin, cos := math.Sincos(b.angle)
	dx, dy := x-b.cx, y-b.cy
	u := dx*cos + dy*sin
	v := -dx*sin + dy*cos
	return math.Abs(u) <= b.w/2 && math.Abs(v) <= b.h/2
}

func (b *box) Centre() (float64, float64) {
	return b.cx, b.cy
}

func (b *box) Outline() []Coord {
	sin, cos := math.Sincos(b.angle)
	corners := [4][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	out := make([]Coord, len(corners))
	for i, c := range corners {
		u, v := c[0]*b.w/2, c[1]*b.h/2
		out[i] = Coord{X: b.cx + u*cos - v*sin, Y: b.cy + u*sin + v*cos}
	}
	return out
}

type polygon struct {
	points []Coord
}

// Contains uses the even-odd rule.
func (p *polygon) Contains(x, y float64) bool {
	inside := false
	n := len(p.points)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := p.points[i], p.points[j]
		if (pi.Y > y) != (pj.Y > y) && x < (pj.X-pi.X)*(y-pi.Y)/(pj.Y-pi.Y)+pi.X {
			inside = !inside
		}
	}
	return inside
}

func (p *polygon) Centre() (float64, float64) {
	var cx, cy float64
	for _, c := range p.points {
		cx += c.X
		cy += c.Y
	}
	n := float64(len(p.points))
	return cx / n, cy / n
}

func (p *polygon) Outline() []Coord {
	return p.points
}

// point selects the single pixel whose area contains it.
type point struct {
	x, y float64
}

func (p *point) Contains(x, y float64) bool {
	return p.x >= x-0.5 && p.x < x+0.5 && p.y >= y-0.5 && p.y < y+0.5
}

func (p *point) Centre() (float64, float64) {
	return p.x, p.y
}

func (p *point) Outline() []Coord {
	return []Coord{
		{X: p.x - 0.5, Y: p.y - 0.5},
		{X: p.x + 0.5, Y: p.y - 0.5},
		{X: p.x + 0.5, Y: p.y + 0.5},
		{X: p.x - 0.5, Y: p.y + 0.5},
	}
}
