package storage

import (
	"database/sql"
	"fmt"
	"math"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/roman-kulish/cube-spectrum/internal/spectrum"
)

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

func rollbackWithError(rb interface{ Rollback() error }, err *error) {
	if cErr := rb.Rollback(); cErr != nil && cErr != sql.ErrTxDone && *err == nil {
		*err = cErr
	}
}

// configSnapshot serializes a configuration value for storage.
func configSnapshot(config any) (sql.NullString, error) {
	switch c := config.(type) {
	case nil:
		return sql.NullString{}, nil
	case string:
		return sql.NullString{String: c, Valid: true}, nil
	case []byte:
		return sql.NullString{String: string(c), Valid: true}, nil
	default:
		p, err := yaml.Marshal(c)
		if err != nil {
			return sql.NullString{}, fmt.Errorf("marshaling config: %w", err)
		}
		return sql.NullString{String: string(p), Valid: true}, nil
	}
}

func toChannelData(runID int64, index int, c spectrum.Channel) channelData {
	return channelData{
		RunID:     runID,
		Index:     index,
		Frequency: c.X,
		Flux: sql.NullFloat64{
			Float64: c.Y,
			Valid:   !math.IsNaN(c.Y),
		},
	}
}

func fromChannelData(d channelData) spectrum.Channel {
	c := spectrum.Channel{X: d.Frequency, Y: math.NaN()}
	if d.Flux.Valid {
		c.Y = d.Flux.Float64
	}
	return c
}

func fromRunData(d runData) (*Run, error) {
	id, err := uuid.Parse(d.UUID)
	if err != nil {
		return nil, fmt.Errorf("parsing run UUID: %w", err)
	}

	run := &Run{
		ID:          d.ID,
		UUID:        id,
		CreatedAt:   d.CreatedAt,
		CubeFile:    d.CubeFile,
		RegionFile:  d.RegionFile,
		RegionIndex: d.RegionIndex,
		Target:      d.Target,
		Convention:  d.Convention,
		FigFile:     d.FigFile,
		Channels:    d.Channels,
	}
	if d.Config.Valid {
		run.Config = &d.Config.String
	}
	return run, nil
}
