// Package render draws an extracted spectrum as a publication-quality plot.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/roman-kulish/cube-spectrum/internal/spectrum"
)

const (
	defaultWidth     = 8 * vg.Inch
	defaultHeight    = 5 * vg.Inch
	defaultFontSize  = 12.0
	defaultLabelSize = 9.0
	defaultLineWidth = 1.0

	xAxisLabel = "Rest Frequency (GHz)"
)

// DefaultLabelOffset is the usual gap between an arrow tip and its label.
const DefaultLabelOffset = 25.0

// ErrUnsupportedFormat is returned for figure paths whose extension does not
// name a supported image format.
var ErrUnsupportedFormat = errors.New("render: unsupported figure format")

var formats = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "svg": true,
	"pdf": true, "eps": true, "tif": true, "tiff": true,
}

// CheckFormat verifies that the figure path has a supported extension.
func CheckFormat(path string) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if !formats[ext] {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
	return nil
}

// Layer identifies one group of plot elements.
type Layer string

const (
	LayerZeroLine   Layer = "zero-line"
	LayerSpectrum   Layer = "spectrum"
	LayerLineIDs    Layer = "line-ids"
	LayerAnnotation Layer = "annotation"
)

// LineID marks a spectral line with a labelled arrow.
type LineID struct {
	Name         string  // Label text
	FrequencyMHz float64 // Rest frequency of the line
	Size         float64 // Label size in points, 0 for the default
	ArrowTip     float64 // Flux value the arrow points to
}

// RenderConfig holds all configuration options for the spectrum plot
type RenderConfig struct {
	// Figure size
	Width  vg.Length
	Height vg.Length

	// Axes
	YMin, YMax float64 // Flux axis bounds
	YLabel     string  // Flux axis label, derived from the flux unit if empty

	// Annotations
	Target      string   // Drawn at axes fraction (0.05, 0.9)
	Lines       []LineID // Optional line identifications
	LabelOffset float64  // Distance between arrow tip and label, in flux units; 0 puts the label on the tip
	FontSize    float64  // Target label size in points

	LineWidth vg.Length // Width of the spectrum line
}

// SpectrumRenderer turns spectra into plots
type SpectrumRenderer struct {
	config RenderConfig
}

// NewSpectrumRenderer creates a renderer with the given configuration
func NewSpectrumRenderer(config RenderConfig) (*SpectrumRenderer, error) {
	if !(config.YMin < config.YMax) {
		return nil, fmt.Errorf("render: y range [%g, %g] is empty", config.YMin, config.YMax)
	}

	// Set defaults for zero values
	if config.Width == 0 {
		config.Width = defaultWidth
	}
	if config.Height == 0 {
		config.Height = defaultHeight
	}
	if config.FontSize == 0 {
		config.FontSize = defaultFontSize
	}
	if config.LineWidth == 0 {
		config.LineWidth = vg.Points(defaultLineWidth)
	}

	return &SpectrumRenderer{config: config}, nil
}

// Figure is a rendered plot that has not been written yet.
type Figure struct {
	Plot   *plot.Plot
	Layers []Layer // Order in which element groups were added

	width, height vg.Length
}

func (f *Figure) add(layer Layer, ps ...plot.Plotter) {
	f.Plot.Add(ps...)
	f.Layers = append(f.Layers, layer)
}

// Save writes the figure; the format follows the file extension.
func (f *Figure) Save(path string) error {
	if err := CheckFormat(path); err != nil {
		return err
	}
	if err := f.Plot.Save(f.width, f.height, path); err != nil {
		return fmt.Errorf("saving figure '%s': %w", path, err)
	}
	return nil
}

// Render builds the plot of a spectrum with a frequency axis in GHz.
// Line identifications are always added before the target annotation so the
// annotation is drawn on top.
func (r *SpectrumRenderer) Render(s *spectrum.Spectrum) (*Figure, error) {
	if s.Axis != spectrum.AxisGHz {
		return nil, fmt.Errorf("rendering %s axis: %w", s.Axis, spectrum.ErrAxisMismatch)
	}

	p := plot.New()
	p.X.Label.Text = xAxisLabel
	p.Y.Label.Text = r.config.YLabel
	if p.Y.Label.Text == "" {
		p.Y.Label.Text = s.Unit.Label()
	}

	fig := &Figure{Plot: p, width: r.config.Width, height: r.config.Height}
	xmin, xmax := s.Span()

	zero, err := plotter.NewLine(plotter.XYs{{X: xmin, Y: 0}, {X: xmax, Y: 0}})
	if err != nil {
		return nil, fmt.Errorf("creating zero line: %w", err)
	}
	zero.LineStyle.Color = color.Black
	zero.LineStyle.Width = vg.Points(0.5)
	fig.add(LayerZeroLine, zero)

	steps, err := r.stepLines(s)
	if err != nil {
		return nil, err
	}
	fig.add(LayerSpectrum, steps...)

	if len(r.config.Lines) > 0 {
		fig.add(LayerLineIDs, &lineMarkers{lines: r.config.Lines, offset: r.config.LabelOffset})
	}
	fig.add(LayerAnnotation, &axesText{text: r.config.Target, x: 0.05, y: 0.9, size: r.config.FontSize})

	p.X.Min, p.X.Max = xmin, xmax
	p.Y.Min, p.Y.Max = r.config.YMin, r.config.YMax
	return fig, nil
}

// stepLines returns one mid-step line per run of finite channels.
func (r *SpectrumRenderer) stepLines(s *spectrum.Spectrum) ([]plot.Plotter, error) {
	var out []plot.Plotter
	var run plotter.XYs

	flush := func() error {
		if len(run) == 0 {
			return nil
		}
		l, err := plotter.NewLine(run)
		if err != nil {
			return fmt.Errorf("creating spectrum line: %w", err)
		}
		l.StepStyle = plotter.MidStep
		l.LineStyle.Color = color.Black
		l.LineStyle.Width = r.config.LineWidth
		out = append(out, l)
		run = nil
		return nil
	}

	for i, y := range s.Y {
		if math.IsNaN(y) || math.IsInf(y, 0) {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		run = append(run, plotter.XY{X: s.X[i], Y: y})
	}
	if err := flush(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, errors.New("render: spectrum has no finite channels")
	}
	return out, nil
}
