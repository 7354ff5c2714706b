package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/roman-kulish/cube-spectrum/internal/cube"
	"github.com/roman-kulish/cube-spectrum/internal/region"
	"github.com/roman-kulish/cube-spectrum/internal/spectrum"
)

// Inspect prints a summary of the cube and the regions it is paired with.
func Inspect(ctx context.Context, config *Config, w io.Writer, logger *slog.Logger) error {
	if err := config.Require(InspectKeys...); err != nil {
		return err
	}

	c, regions, err := loadInputs(config, logger)
	if err != nil {
		return err
	}
	if err = ctx.Err(); err != nil {
		return err
	}

	convention := config.Convention
	if convention == "" {
		convention = spectrum.Radio
	}

	writeCubeTable(w, config.CubeFile, c, convention)
	writeRegionTable(w, c, regions)
	return nil
}

func writeCubeTable(w io.Writer, path string, c *cube.Cube, convention spectrum.Convention) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("%s", path)

	lo, hi := c.DataRange()
	rows := []table.Row{
		{"Object", c.Object},
		{"Dimensions", fmt.Sprintf("%d x %d x %d", c.NX, c.NY, c.NZ)},
		{"Unit", c.Unit},
		{"Pixel scale", fmt.Sprintf("%.3f\"", c.Celestial.PixelScale()*3600)},
		{"Projection", c.Celestial.Projection},
		{"Spectral axis", c.Spectral.Type},
		{"Data range", fmt.Sprintf("%g .. %g", lo, hi)},
	}

	if freq, err := c.Frequencies(); err == nil {
		first, last := freq[0], freq[len(freq)-1]
		rows = append(rows,
			table.Row{"Spectral range", fmt.Sprintf("%s .. %s", humanHz(math.Min(first, last)), humanHz(math.Max(first, last)))},
		)
		if len(freq) > 1 {
			rows = append(rows, table.Row{"Channel width", humanHz(math.Abs(freq[1] - freq[0]))})
		}
	} else {
		rows = append(rows, table.Row{"Spectral range", err.Error()})
	}

	rest := "undefined"
	if c.Spectral.RestFrequency > 0 {
		rest = humanHz(c.Spectral.RestFrequency)
	}
	rows = append(rows, table.Row{"Rest frequency", rest})

	if vRange, ok := velocityRange(c, convention); ok {
		rows = append(rows, table.Row{fmt.Sprintf("Velocity range (%s)", convention), vRange})
	}

	t.AppendRows(rows)
	t.Render()
}

func writeRegionTable(w io.Writer, c *cube.Cube, regions []region.Region) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Shape", "System", "Centre", "Pixel centre", "Sky centre", "Pixels", "Text"})

	for i, reg := range regions {
		centre := reg.Centre()
		row := table.Row{i, reg.Shape, reg.System, fmt.Sprintf("%.6g, %.6g", centre.X, centre.Y)}

		fp, err := reg.Footprint(c.Celestial)
		if err != nil {
			row = append(row, "-", "-", err.Error(), reg.Text)
			t.AppendRow(row)
			continue
		}

		x, y := fp.Centre()
		sky := "-"
		if ra, dec, err := c.Celestial.PixelToWorld(x, y); err == nil {
			sky = fmt.Sprintf("%.6f, %+.6f", ra, dec)
		}
		row = append(row, fmt.Sprintf("%.2f, %.2f", x, y), sky, c.NewMask(fp).Count, reg.Text)
		t.AppendRow(row)
	}

	t.AppendFooter(table.Row{"", "", "", "", "", "Total", len(regions)})
	t.Render()
}

// velocityRange formats the span of the spectral axis in km/s relative to the
// rest frequency of the cube.
func velocityRange(c *cube.Cube, convention spectrum.Convention) (string, bool) {
	if c.Spectral.RestFrequency <= 0 {
		return "", false
	}
	freq, err := c.Frequencies()
	if err != nil {
		return "", false
	}

	first, err := convention.Velocity(freq[0], c.Spectral.RestFrequency)
	if err != nil {
		return "", false
	}
	last, err := convention.Velocity(freq[len(freq)-1], c.Spectral.RestFrequency)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%.2f .. %.2f km/s", math.Min(first, last), math.Max(first, last)), true
}
