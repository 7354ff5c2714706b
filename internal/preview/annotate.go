package preview

import (
	"fmt"
	"image"
	"image/color"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"github.com/golang/freetype/raster"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

const (
	dpi     = 72.0
	spacing = 1.2
)

var (
	markerColor   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	selectedColor = color.RGBA{R: 255, G: 64, B: 64, A: 255}
	textColor     = color.Black
)

type annotator struct {
	context  *freetype.Context
	fontSize float64
}

func newAnnotator(fontSize float64) (*annotator, error) {
	parsedFont, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	context := freetype.NewContext()
	context.SetDPI(dpi)
	context.SetFont(parsedFont)
	context.SetFontSize(fontSize)
	context.SetHinting(font.HintingFull)

	return &annotator{context: context, fontSize: fontSize}, nil
}

// annotate draws region markers over the map area and the information bar
// below it.
func (a *annotator) annotate(img *image.RGBA, area image.Rectangle, layout layout, info Info, markers []Marker) error {
	a.context.SetClip(img.Bounds())
	a.context.SetDst(img)

	ops := []struct {
		msg string
		fn  func() error
	}{
		{"drawing region markers", func() error { return a.drawMarkers(img, layout, markers) }},
		{"drawing info", func() error { return a.drawInfo(img, area, info) }},
	}
	for _, op := range ops {
		if err := op.fn(); err != nil {
			return fmt.Errorf("%s: %w", op.msg, err)
		}
	}
	return nil
}

func (a *annotator) drawMarkers(img *image.RGBA, l layout, markers []Marker) error {
	size := img.Bounds().Size()

	for _, m := range markers {
		if len(m.Vertices) == 0 {
			continue
		}

		c := color.Color(markerColor)
		if m.Selected {
			c = selectedColor
		}

		var path raster.Path
		first := l.point(m.Vertices[0])
		path.Start(first)
		for _, v := range m.Vertices[1:] {
			path.Add1(l.point(v))
		}
		path.Add1(first)

		r := raster.NewRasterizer(size.X, size.Y)
		raster.Stroke(r, path, fixed.I(1), nil, nil)
		painter := raster.NewRGBAPainter(img)
		painter.SetColor(c)
		r.Rasterize(painter)

		if m.Label == "" {
			continue
		}
		a.context.SetSrc(image.NewUniform(c))
		pt := l.point(m.Centre())
		pt.X += fixed.I(3)
		if _, err := a.context.DrawString(m.Label, pt); err != nil {
			return err
		}
	}
	return nil
}

func (a *annotator) drawInfo(img *image.RGBA, area image.Rectangle, info Info) error {
	a.context.SetSrc(image.NewUniform(textColor))

	lines := []string{
		info.Target,
		fmt.Sprintf("Cube: %d x %d pixels, %d channels", info.NX, info.NY, info.NZ),
		fmt.Sprintf("Band: %s to %s", humanHz(info.FrequencyMin), humanHz(info.FrequencyMax)),
		fmt.Sprintf("Mean intensity: %.4g to %.4g %s", info.Bounds.Min, info.Bounds.Max, info.Unit),
	}

	pt := freetype.Pt(area.Min.X, area.Max.Y+int(a.fontSize*spacing)+4)
	for _, s := range lines {
		if s == "" {
			continue
		}
		if _, err := a.context.DrawString(s, pt); err != nil {
			return err
		}
		pt.Y += a.context.PointToFixed(a.fontSize * spacing)
	}
	return nil
}

func humanHz(hz float64) string {
	v, suffix := humanize.ComputeSI(hz)
	return fmt.Sprintf("%0.4f %sHz", v, suffix)
}
