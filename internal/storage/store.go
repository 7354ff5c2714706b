// Package storage archives plot runs and their extracted spectra.
package storage

import (
	"context"
	"errors"

	"github.com/roman-kulish/cube-spectrum/internal/spectrum"
)

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("storage: run not found")

// Store provides an interface for archiving plot runs.
type Store interface {
	// CreateRun records a new run and returns its ID. The run's ID, UUID and
	// CreatedAt fields are assigned by the store.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeouts
	//   - run: Run metadata
	//   - config: Optional configuration snapshot. Can be string, []byte, or a YAML-serializable value
	CreateRun(ctx context.Context, run *Run, config any) (runID int64, err error)

	// StoreChannels stores the final spectrum of a run in a single transaction.
	StoreChannels(ctx context.Context, runID int64, channels []spectrum.Channel) error

	// Run retrieves a run by its ID.
	Run(ctx context.Context, id int64) (*Run, error)

	// Runs returns archived runs, most recent first.
	Runs(ctx context.Context, opts ...QueryOption) ([]*Run, error)

	// Channels returns the stored spectrum of a run in channel order.
	Channels(ctx context.Context, runID int64) ([]spectrum.Channel, error)

	// Close releases the database connections.
	Close() error
}

var _ Store = (*SqliteStore)(nil)
