package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"gonum.org/v1/plot/vg"

	"github.com/roman-kulish/cube-spectrum/internal/cube"
	"github.com/roman-kulish/cube-spectrum/internal/region"
	"github.com/roman-kulish/cube-spectrum/internal/render"
	"github.com/roman-kulish/cube-spectrum/internal/spectrum"
	"github.com/roman-kulish/cube-spectrum/internal/storage"
)

// Run extracts the spectrum of the configured region, smooths it and writes
// the plot. Successful runs are recorded in the archive when one is configured.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if err := config.Require(PlotKeys...); err != nil {
		return err
	}

	c, regions, err := loadInputs(config, logger)
	if err != nil {
		return err
	}

	raw, err := extractSpectrum(c, regions, config.RegPlot)
	if err != nil {
		return err
	}

	fluxMin, fluxMax := raw.FluxRange()
	logger.Info("extracted spectrum",
		slog.Int("region", config.RegPlot),
		slog.Int("channels", raw.Len()),
		slog.String("restFrequency", humanHz(raw.RestFrequency)),
		slog.Group("flux",
			slog.String("unit", raw.Unit.Name),
			slog.Float64("min", fluxMin),
			slog.Float64("max", fluxMax),
		))

	if err = ctx.Err(); err != nil {
		return err
	}

	s, err := prepareSpectrum(raw, config, logger)
	if err != nil {
		return err
	}

	renderer, err := render.NewSpectrumRenderer(render.RenderConfig{
		Width:       vg.Length(config.FigWidth) * vg.Inch,
		Height:      vg.Length(config.FigHeight) * vg.Inch,
		YMin:        config.YMinVal,
		YMax:        config.YMaxVal,
		Target:      config.Target,
		Lines:       config.Lines,
		LabelOffset: config.LabelOffset,
	})
	if err != nil {
		return fmt.Errorf("creating spectrum renderer: %w", err)
	}

	fig, err := renderer.Render(s)
	if err != nil {
		return fmt.Errorf("rendering spectrum: %w", err)
	}

	logger.Info("saving figure",
		slog.Group("figure",
			slog.String("destination", config.FigFile),
			slog.String("format", filepath.Ext(config.FigFile)),
			slog.Float64("width", config.FigWidth),
			slog.Float64("height", config.FigHeight),
			slog.Int("lines", len(config.Lines)),
		))

	if err = fig.Save(config.FigFile); err != nil {
		return err
	}

	if config.Archive == "" {
		return nil
	}
	return archiveRun(ctx, config, s, logger)
}

func loadInputs(config *Config, logger *slog.Logger) (*cube.Cube, []region.Region, error) {
	c, err := cube.Open(config.CubeFile)
	if err != nil {
		return nil, nil, fmt.Errorf("reading cube: %w", err)
	}

	lo, hi := c.Spectral.Value(0), c.Spectral.Value(c.NZ-1)
	logger.Info("loaded cube",
		slog.String("path", config.CubeFile),
		slog.Group("cube",
			slog.String("object", c.Object),
			slog.Int("nx", c.NX),
			slog.Int("ny", c.NY),
			slog.Int("nz", c.NZ),
			slog.String("unit", c.Unit),
			slog.String("axis", c.Spectral.Type),
			slog.Float64("first", lo),
			slog.Float64("last", hi),
		))

	regions, err := region.ParseFile(config.RegFile)
	if err != nil {
		return nil, nil, fmt.Errorf("reading regions: %w", err)
	}

	logger.Info("loaded regions", slog.String("path", config.RegFile), slog.Int("count", len(regions)))
	return c, regions, nil
}

// extractSpectrum returns the mean spectrum of region index in mJy/beam (or
// mJy for cubes without a beam) on a frequency axis in Hz.
func extractSpectrum(c *cube.Cube, regions []region.Region, index int) (*spectrum.Spectrum, error) {
	reg, err := region.Select(regions, index)
	if err != nil {
		return nil, err
	}

	fp, err := reg.Footprint(c.Celestial)
	if err != nil {
		return nil, fmt.Errorf("region %d: %w", index, err)
	}

	mask := c.NewMask(fp)
	s, err := c.MeanSpectrum(mask)
	if err != nil {
		return nil, fmt.Errorf("extracting region %d (%s): %w", index, reg, err)
	}

	if s, err = s.ConvertFlux(s.Unit.Milli()); err != nil {
		return nil, fmt.Errorf("converting flux: %w", err)
	}
	return s, nil
}

// prepareSpectrum shifts the frequency axis to the rest frame of the region,
// smooths it on the velocity axis and converts it back to frequency in GHz.
func prepareSpectrum(s *spectrum.Spectrum, config *Config, logger *slog.Logger) (*spectrum.Spectrum, error) {
	if s.RestFrequency <= 0 {
		return nil, cube.ErrNoRestFrequency
	}

	offset, err := spectrum.RestFrequencyOffset(config.Convention, s.RestFrequency, config.VRegion)
	if err != nil {
		return nil, err
	}

	if s, err = s.ShiftFrequency(offset); err != nil {
		return nil, err
	}
	if s, err = s.ToVelocity(config.Convention); err != nil {
		return nil, err
	}

	width := s.ChannelWidth()
	n := spectrum.SmoothingFactor(config.SmoothFact, width)
	logger.Info("smoothing spectrum",
		slog.String("convention", string(config.Convention)),
		slog.String("offset", humanHz(offset)),
		slog.Float64("channelWidth", width),
		slog.Float64("resolution", config.SmoothFact),
		slog.String("kernel", string(config.Kernel)),
		slog.Int("factor", n))

	if s, err = s.Smooth(config.SmoothFact, config.Kernel); err != nil {
		return nil, fmt.Errorf("smoothing spectrum: %w", err)
	}
	if s, err = s.ToFrequency(spectrum.AxisGHz); err != nil {
		return nil, err
	}
	return s, nil
}

func archiveRun(ctx context.Context, config *Config, s *spectrum.Spectrum, logger *slog.Logger) (err error) {
	store := storage.NewSqliteStore(config.Archive)
	defer closeWithError(store, &err)

	run := &storage.Run{
		CubeFile:    config.CubeFile,
		RegionFile:  config.RegFile,
		RegionIndex: config.RegPlot,
		Target:      config.Target,
		Convention:  string(config.Convention),
		FigFile:     config.FigFile,
	}

	runID, err := store.CreateRun(ctx, run, config)
	if err != nil {
		return fmt.Errorf("archiving run: %w", err)
	}
	if err = store.StoreChannels(ctx, runID, s.Channels()); err != nil {
		return fmt.Errorf("archiving spectrum: %w", err)
	}

	logger.Info("archived run",
		slog.String("archive", config.Archive),
		slog.Int64("id", runID),
		slog.String("uuid", run.UUID.String()))
	return nil
}

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

// humanHz formats a frequency with an SI prefix, e.g. "230.538 GHz".
func humanHz(hz float64) string {
	v, prefix := humanize.ComputeSI(hz)
	return fmt.Sprintf("%s %sHz", humanize.Ftoa(v), prefix)
}
