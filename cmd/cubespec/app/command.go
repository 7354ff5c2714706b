package app

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/roman-kulish/cube-spectrum/internal/storage"
)

// NewRootCommand builds the cubespec command tree. The configuration is
// loaded before any subcommand runs and its log level applied to level.
func NewRootCommand(logger *slog.Logger, level *slog.LevelVar) *cobra.Command {
	var (
		configPath string
		config     *Config
	)

	root := &cobra.Command{
		Use:   "cubespec",
		Short: "Plot the spectrum of a region of a spectral line cube",
		Long: `cubespec extracts the mean spectrum of a DS9 region from a FITS cube,
shifts it to the rest frame of the region, smooths it to a velocity
resolution and writes a plot with optional line identifications.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			var err error
			if config, err = LoadConfig(configPath, cmd.Flags()); err != nil {
				return err
			}
			level.Set(config.Level)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the YAML configuration file")
	root.PersistentFlags().String("log-level", "", "Log level [debug, info, warn, error]")

	plotCmd := &cobra.Command{
		Use:   "plot",
		Short: "Extract, smooth and plot the spectrum of a region",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Run(cmd.Context(), config, logger)
		},
	}
	plotCmd.Flags().String("figfile", "", "Output figure; the format follows the extension")
	plotCmd.Flags().Int("regplot", 0, "Zero-based index of the region to extract")
	plotCmd.Flags().String("velconvention", "", "Velocity convention [optical, radio]")
	plotCmd.Flags().Float64("smoothfact", 0, "Spectral resolution to smooth to, in km/s")
	plotCmd.Flags().String("smoothtype", "", "Smoothing kernel [boxcar, hanning, gaussian]")
	plotCmd.Flags().String("archive", "", "Record the run in this SQLite archive")

	previewCmd := &cobra.Command{
		Use:   "preview",
		Short: "Render the mean intensity map with region outlines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return RunPreview(cmd.Context(), config, logger)
		},
	}
	previewCmd.Flags().String("previewfile", "", "Output image [png, jpeg]")
	previewCmd.Flags().Int("regplot", 0, "Region to highlight")
	previewCmd.Flags().String("theme", "", "Color theme [enhanced, classic, grayscale, jungle, thermal, marine]")

	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Describe the cube and its regions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Inspect(cmd.Context(), config, cmd.OutOrStdout(), logger)
		},
	}

	var (
		target string
		since  time.Duration
		limit  int
		runID  int64
	)
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "List runs recorded in the archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("id") {
				return ShowRun(cmd.Context(), config, cmd.OutOrStdout(), runID)
			}

			var opts []storage.QueryOption
			if target != "" {
				opts = append(opts, storage.WithTarget(target))
			}
			if since > 0 {
				opts = append(opts, storage.WithSince(time.Now().Add(-since)))
			}
			if limit > 0 {
				opts = append(opts, storage.WithLimit(limit))
			}
			return ListRuns(cmd.Context(), config, cmd.OutOrStdout(), opts...)
		},
	}
	runsCmd.Flags().String("archive", "", "SQLite archive to read")
	runsCmd.Flags().StringVar(&target, "filter-target", "", "Only list runs of this target")
	runsCmd.Flags().DurationVar(&since, "since", 0, "Only list runs newer than this")
	runsCmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs, 0 for all")
	runsCmd.Flags().Int64Var(&runID, "id", 0, "Show this run and its stored spectrum")

	root.AddCommand(plotCmd, previewCmd, inspectCmd, runsCmd)
	return root
}
