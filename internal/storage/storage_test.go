package storage

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roman-kulish/cube-spectrum/internal/spectrum"
)

func newTestStore(t *testing.T) *SqliteStore {
	t.Helper()

	s := NewSqliteStore(filepath.Join(t.TempDir(), "runs.db"))
	t.Cleanup(func() {
		assert.NoError(t, s.Close())
	})
	return s
}

func testRun(target string) *Run {
	return &Run{
		CubeFile:    "cube.fits",
		RegionFile:  "regions.reg",
		RegionIndex: 1,
		Target:      target,
		Convention:  "radio",
		FigFile:     "spectrum.png",
	}
}

func TestCreateRun(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	run := testRun("NGC0001")
	config := map[string]any{"smoothfact": 2.5, "convention": "radio"}

	id, err := s.CreateRun(ctx, run, config)
	require.NoError(t, err)
	assert.Equal(t, id, run.ID)
	assert.NotEqual(t, uuid.Nil, run.UUID)
	assert.WithinDuration(t, time.Now(), run.CreatedAt, time.Minute)
	require.NotNil(t, run.Config)
	assert.Contains(t, *run.Config, "smoothfact: 2.5")

	got, err := s.Run(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, run.UUID, got.UUID)
	assert.Equal(t, "NGC0001", got.Target)
	assert.Equal(t, "regions.reg", got.RegionFile)
	assert.Equal(t, 1, got.RegionIndex)
	assert.Equal(t, 0, got.Channels)
	assert.True(t, got.CreatedAt.Equal(run.CreatedAt))
	require.NotNil(t, got.Config)
	assert.Equal(t, *run.Config, *got.Config)
}

func TestCreateRunConfigSnapshot(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.CreateRun(ctx, testRun("a"), nil)
	require.NoError(t, err)
	got, err := s.Run(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got.Config)

	id, err = s.CreateRun(ctx, testRun("b"), []byte("raw: true\n"))
	require.NoError(t, err)
	got, err = s.Run(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got.Config)
	assert.Equal(t, "raw: true\n", *got.Config)
}

func TestRunNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.CreateRun(ctx, testRun("a"), nil)
	require.NoError(t, err)

	_, err = s.Run(ctx, 42)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestStoreChannels(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.CreateRun(ctx, testRun("NGC0001"), nil)
	require.NoError(t, err)

	channels := []spectrum.Channel{
		{X: 230.5, Y: 1.5},
		{X: 230.501, Y: math.NaN()},
		{X: 230.502, Y: -0.25},
	}
	require.NoError(t, s.StoreChannels(ctx, id, channels))

	got, err := s.Channels(ctx, id)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, channels[0], got[0])
	assert.Equal(t, 230.501, got[1].X)
	assert.True(t, math.IsNaN(got[1].Y))
	assert.Equal(t, channels[2], got[2])

	run, err := s.Run(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, run.Channels)
}

func TestStoreChannelsBatches(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.CreateRun(ctx, testRun("NGC0001"), nil)
	require.NoError(t, err)

	n := maxChannelsPerInsert*2 + 17
	channels := make([]spectrum.Channel, n)
	for i := range channels {
		channels[i] = spectrum.Channel{X: float64(i), Y: float64(i) * 0.5}
	}
	require.NoError(t, s.StoreChannels(ctx, id, channels))

	got, err := s.Channels(ctx, id)
	require.NoError(t, err)
	require.Len(t, got, n)
	for i, c := range got {
		assert.Equal(t, channels[i], c)
	}
}

func TestStoreChannelsEmpty(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.CreateRun(ctx, testRun("NGC0001"), nil)
	require.NoError(t, err)
	require.NoError(t, s.StoreChannels(ctx, id, nil))

	got, err := s.Channels(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRuns(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, target := range []string{"NGC0001", "NGC0002", "NGC0001"} {
		_, err := s.CreateRun(ctx, testRun(target), nil)
		require.NoError(t, err)
	}

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Greater(t, runs[0].ID, runs[1].ID)
	assert.Greater(t, runs[1].ID, runs[2].ID)

	runs, err = s.Runs(ctx, WithTarget("NGC0001"))
	require.NoError(t, err)
	require.Len(t, runs, 2)
	for _, r := range runs {
		assert.Equal(t, "NGC0001", r.Target)
	}

	runs, err = s.Runs(ctx, WithLimit(1))
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, int64(3), runs[0].ID)

	runs, err = s.Runs(ctx, WithSince(time.Now().Add(time.Hour)))
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestQueryBuild(t *testing.T) {
	q := newQuery(WithTarget("M82"), WithLimit(5))
	query, args := q.build("SELECT * FROM runs r")

	assert.Equal(t, "SELECT * FROM runs r\nWHERE\n    r.target = ?\nORDER BY r.created_at DESC, r.id DESC\nLIMIT ?", query)
	assert.Equal(t, []any{"M82", 5}, args)
}

func TestCloseIdempotent(t *testing.T) {
	s := NewSqliteStore(filepath.Join(t.TempDir(), "runs.db"))
	_, err := s.CreateRun(context.Background(), testRun("a"), nil)
	require.NoError(t, err)

	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}
