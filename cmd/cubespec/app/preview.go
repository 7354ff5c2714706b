package app

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	"github.com/roman-kulish/cube-spectrum/internal/cube"
	"github.com/roman-kulish/cube-spectrum/internal/preview"
	"github.com/roman-kulish/cube-spectrum/internal/region"
)

// RunPreview renders the mean intensity map of the cube with every region
// outlined, the configured one highlighted.
func RunPreview(ctx context.Context, config *Config, logger *slog.Logger) error {
	if err := config.Require(PreviewKeys...); err != nil {
		return err
	}

	c, regions, err := loadInputs(config, logger)
	if err != nil {
		return err
	}

	if err = ctx.Err(); err != nil {
		return err
	}

	info := preview.Info{
		Target: config.Target,
		NX:     c.NX,
		NY:     c.NY,
		NZ:     c.NZ,
		Unit:   c.Unit,
	}
	if info.Target == "" {
		info.Target = c.Object
	}
	if freq, err := c.Frequencies(); err != nil {
		logger.Warn("spectral range unavailable", slog.String("reason", err.Error()))
	} else {
		info.FrequencyMin, info.FrequencyMax = slices.Min(freq), slices.Max(freq)
	}

	markers := regionMarkers(c, regions, config.RegPlot, logger)

	renderer := preview.NewRenderer(preview.RenderConfig{
		ColorTheme: config.ColorTheme,
	})

	logger.Info("rendering preview",
		slog.Group("image",
			slog.String("destination", config.PreviewFile),
			slog.String("theme", string(config.ColorTheme)),
			slog.Int("regions", len(markers)),
		))

	img, err := renderer.Render(preview.Map{NX: c.NX, NY: c.NY, Values: c.MeanMap()}, info, markers)
	if err != nil {
		return fmt.Errorf("rendering preview: %w", err)
	}
	return preview.Save(config.PreviewFile, img)
}

func regionMarkers(c *cube.Cube, regions []region.Region, selected int, logger *slog.Logger) []preview.Marker {
	markers := make([]preview.Marker, 0, len(regions))
	for i, reg := range regions {
		fp, err := reg.Footprint(c.Celestial)
		if err != nil {
			logger.Warn("skipping region", slog.Int("index", i), slog.String("reason", err.Error()))
			continue
		}

		outline := fp.Outline()
		vertices := make([][2]float64, len(outline))
		for j, v := range outline {
			vertices[j] = [2]float64{v.X, v.Y}
		}

		markers = append(markers, preview.Marker{
			Label:    strconv.Itoa(i),
			Vertices: vertices,
			Selected: i == selected,
		})
	}
	return markers
}
