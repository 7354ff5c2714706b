package render

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const arrowHead = 4 // points

// lineMarkers draws a vertical arrow for each line, from ArrowTip+offset down
// to ArrowTip, with the rotated line name above it.
type lineMarkers struct {
	lines  []LineID
	offset float64
}

func (m *lineMarkers) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	style := draw.LineStyle{Color: color.Black, Width: vg.Points(0.75)}

	for _, l := range m.lines {
		freq := l.FrequencyMHz / 1e3
		if freq < plt.X.Min || freq > plt.X.Max {
			continue
		}

		x := trX(freq)
		tip := vg.Point{X: x, Y: trY(l.ArrowTip)}
		top := vg.Point{X: x, Y: trY(l.ArrowTip + m.offset)}

		c.StrokeLine2(style, top.X, top.Y, tip.X, tip.Y+arrowHead)
		c.FillPolygon(color.Black, []vg.Point{
			tip,
			{X: tip.X - arrowHead/2, Y: tip.Y + arrowHead},
			{X: tip.X + arrowHead/2, Y: tip.Y + arrowHead},
		})

		size := l.Size
		if size <= 0 {
			size = defaultLabelSize
		}
		sty := plt.Y.Label.TextStyle
		sty.Color = color.Black
		sty.Font.Size = vg.Points(size)
		sty.Rotation = math.Pi / 2
		sty.XAlign = draw.XLeft
		sty.YAlign = draw.YCenter
		c.FillText(sty, vg.Point{X: top.X, Y: top.Y + 2}, l.Name)
	}
}

// axesText draws text at a position given as a fraction of the data area.
type axesText struct {
	text string
	x, y float64
	size float64
}

func (a *axesText) Plot(c draw.Canvas, plt *plot.Plot) {
	if a.text == "" {
		return
	}
	sty := plt.X.Label.TextStyle
	sty.Color = color.Black
	sty.Font.Size = vg.Points(a.size)
	sty.Rotation = 0
	sty.XAlign = draw.XLeft
	sty.YAlign = draw.YBottom
	c.FillText(sty, vg.Point{X: c.X(a.x), Y: c.Y(a.y)}, a.text)
}
