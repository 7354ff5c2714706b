package storage

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Run is one archived plot run
type Run struct {
	ID          int64     `yaml:"id"`
	UUID        uuid.UUID `yaml:"uuid"`
	CreatedAt   time.Time `yaml:"createdAt"`
	CubeFile    string    `yaml:"cubeFile"`
	RegionFile  string    `yaml:"regionFile"`
	RegionIndex int       `yaml:"regionIndex"`
	Target      string    `yaml:"target"`
	Convention  string    `yaml:"convention"`
	FigFile     string    `yaml:"figFile"`
	Channels    int       `yaml:"channels"` // Number of stored channels
	Config      *string   `yaml:"config,omitempty"`
}

type runData struct {
	ID          int64
	UUID        string
	CreatedAt   time.Time
	CubeFile    string
	RegionFile  string
	RegionIndex int
	Target      string
	Convention  string
	FigFile     string
	Config      sql.NullString
	Channels    int
}

type channelData struct {
	RunID     int64
	Index     int
	Frequency float64
	Flux      sql.NullFloat64
}
