// Package preview renders an intensity map of a cube with region footprints
// outlined, to help choose the region to extract.
package preview

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/math/fixed"
)

const (
	fontSize      = 12.0
	targetMapSize = 512 // Preferred size in pixels of the longer map side

	// Default border sizes in pixels
	defaultTopBorder    = 10
	defaultLeftBorder   = 10
	defaultBottomBorder = 80
	defaultRightBorder  = 10
)

// ErrUnsupportedFormat is returned when the output extension is not png or jpeg.
var ErrUnsupportedFormat = errors.New("preview: unsupported image format")

// BorderConfig defines the sizes of white space around the map
type BorderConfig struct {
	Top    int
	Left   int
	Bottom int // Space for information bar
	Right  int
}

// RenderConfig holds all configuration options for the preview image
type RenderConfig struct {
	Scale        int        // Image pixels per cube pixel, 0 to fit targetMapSize
	ColorTheme   ColorTheme // Color scheme for intensities
	FontSize     float64    // Font size in points
	BorderConfig BorderConfig
}

// Map is an intensity image, row-major with x fastest and y = 0 at the bottom.
type Map struct {
	NX, NY int
	Values []float64
}

// Marker is a region outline in 1-based pixel coordinates of the map.
type Marker struct {
	Label    string
	Vertices [][2]float64
	Selected bool // Highlighted outline
}

// Centre returns the mean of the vertices.
func (m Marker) Centre() [2]float64 {
	var c [2]float64
	for _, v := range m.Vertices {
		c[0] += v[0]
		c[1] += v[1]
	}
	n := float64(len(m.Vertices))
	return [2]float64{c[0] / n, c[1] / n}
}

// Info describes the cube in the information bar.
type Info struct {
	Target       string
	NX, NY, NZ   int
	FrequencyMin float64 // Hz
	FrequencyMax float64 // Hz
	Unit         string
	Bounds       Bounds // Filled in by Render
}

// Renderer draws intensity maps
type Renderer struct {
	config RenderConfig
}

// NewRenderer creates a new preview renderer with the given configuration
func NewRenderer(config RenderConfig) *Renderer {
	// Set defaults for zero values
	if config.ColorTheme == "" {
		config.ColorTheme = EnhancedTheme
	}
	if config.FontSize == 0 {
		config.FontSize = fontSize
	}
	if config.BorderConfig.Top == 0 {
		config.BorderConfig.Top = defaultTopBorder
	}
	if config.BorderConfig.Left == 0 {
		config.BorderConfig.Left = defaultLeftBorder
	}
	if config.BorderConfig.Bottom == 0 {
		config.BorderConfig.Bottom = defaultBottomBorder
	}
	if config.BorderConfig.Right == 0 {
		config.BorderConfig.Right = defaultRightBorder
	}
	return &Renderer{config: config}
}

// layout maps continuous 1-based map coordinates to image coordinates.
type layout struct {
	area  image.Rectangle
	scale int
	ny    int
}

func (l layout) point(v [2]float64) fixed.Point26_6 {
	x := float64(l.area.Min.X) + (v[0]-0.5)*float64(l.scale)
	y := float64(l.area.Min.Y) + (float64(l.ny)+0.5-v[1])*float64(l.scale)
	return fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)}
}

// Render draws the map with markers and an information bar
func (r *Renderer) Render(m Map, info Info, markers []Marker) (*image.RGBA, error) {
	if m.NX <= 0 || m.NY <= 0 || len(m.Values) != m.NX*m.NY {
		return nil, fmt.Errorf("preview: invalid %dx%d map with %d values", m.NX, m.NY, len(m.Values))
	}

	scale := r.config.Scale
	if scale <= 0 {
		scale = max(1, targetMapSize/max(m.NX, m.NY))
	}

	b := r.config.BorderConfig
	width, height := m.NX*scale, m.NY*scale
	img := image.NewRGBA(image.Rect(0, 0, width+b.Left+b.Right, height+b.Top+b.Bottom))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	area := image.Rect(b.Left, b.Top, b.Left+width, b.Top+height)
	info.Bounds = PercentileBounds(m.Values)
	cm := NewColorMapper(r.config.ColorTheme, info.Bounds)

	for y := 0; y < m.NY; y++ {
		row := area.Min.Y + (m.NY-1-y)*scale
		for x := 0; x < m.NX; x++ {
			c := image.NewUniform(cm.Color(m.Values[y*m.NX+x]))
			col := area.Min.X + x*scale
			draw.Draw(img, image.Rect(col, row, col+scale, row+scale), c, image.Point{}, draw.Src)
		}
	}

	ann, err := newAnnotator(r.config.FontSize)
	if err != nil {
		return nil, fmt.Errorf("creating annotator: %w", err)
	}
	if err = ann.annotate(img, area, layout{area: area, scale: scale, ny: m.NY}, info, markers); err != nil {
		return nil, fmt.Errorf("drawing annotations: %w", err)
	}
	return img, nil
}

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

// CheckFormat verifies that the path has a png or jpeg extension.
func CheckFormat(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg":
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
}

// Save encodes the image as png or jpeg, chosen by the file extension.
func Save(path string, img image.Image) (err error) {
	if err = CheckFormat(path); err != nil {
		return err
	}

	encode := func(f *os.File) error { return png.Encode(f, img) }
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".jpg" || ext == ".jpeg" {
		encode = func(f *os.File) error { return jpeg.Encode(f, img, &jpeg.Options{Quality: 90}) }
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer closeWithError(out, &err)

	if err = encode(out); err != nil {
		return fmt.Errorf("encoding preview: %w", err)
	}
	return nil
}
