package app

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/roman-kulish/cube-spectrum/internal/storage"
)

// ListRuns prints the archived runs, most recent first.
func ListRuns(ctx context.Context, config *Config, w io.Writer, opts ...storage.QueryOption) (err error) {
	if err = config.Require(RunsKeys...); err != nil {
		return err
	}

	store := storage.NewSqliteStore(config.Archive)
	defer closeWithError(store, &err)

	runs, err := store.Runs(ctx, opts...)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Created", "Target", "Region", "Convention", "Channels", "Figure"})

	for _, r := range runs {
		t.AppendRow(table.Row{
			r.ID,
			humanize.Time(r.CreatedAt),
			r.Target,
			fmt.Sprintf("%s[%d]", r.RegionFile, r.RegionIndex),
			r.Convention,
			r.Channels,
			r.FigFile,
		})
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d runs)\n", len(runs))
	return nil
}

// ShowRun prints one archived run and the spectrum stored with it.
func ShowRun(ctx context.Context, config *Config, w io.Writer, id int64) (err error) {
	if err = config.Require(RunsKeys...); err != nil {
		return err
	}

	store := storage.NewSqliteStore(config.Archive)
	defer closeWithError(store, &err)

	run, err := store.Run(ctx, id)
	if err != nil {
		return fmt.Errorf("reading run %d: %w", id, err)
	}
	channels, err := store.Channels(ctx, id)
	if err != nil {
		return fmt.Errorf("reading spectrum of run %d: %w", id, err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Run %d", run.ID)
	t.AppendRows([]table.Row{
		{"UUID", run.UUID},
		{"Created", run.CreatedAt.Format(time.RFC3339)},
		{"Target", run.Target},
		{"Cube", run.CubeFile},
		{"Region", fmt.Sprintf("%s[%d]", run.RegionFile, run.RegionIndex)},
		{"Convention", run.Convention},
		{"Figure", run.FigFile},
	})
	t.Render()

	t = table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Frequency (GHz)", "Flux"})
	for i, c := range channels {
		flux := "blank"
		if !math.IsNaN(c.Y) {
			flux = fmt.Sprintf("%.4f", c.Y)
		}
		t.AppendRow(table.Row{i, fmt.Sprintf("%.6f", c.X), flux})
	}
	t.AppendFooter(table.Row{"", "Channels", len(channels)})
	t.Render()
	return nil
}
