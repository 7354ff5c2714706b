package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/roman-kulish/cube-spectrum/internal/spectrum"
)

// maxChannelsPerInsert keeps batch inserts below SQLite's bound parameter limit.
const maxChannelsPerInsert = 1000

// SqliteStore handles database operations
type SqliteStore struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

// NewSqliteStore creates a store backed by the Sqlite database at dbPath. Connections
// are opened lazily on first use.
func NewSqliteStore(dbPath string) *SqliteStore {
	return &SqliteStore{dbPath: dbPath}
}

func runSQLCommand(db *sql.DB, sql string) error {
	_, err := db.Exec(sql)
	return err
}

func (s *SqliteStore) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on"))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}

		if err = runSQLCommand(db, initSchemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *SqliteStore) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "mode=ro"))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

func (s *SqliteStore) CreateRun(ctx context.Context, run *Run, config any) (runID int64, err error) {
	configData, err := configSnapshot(config)
	if err != nil {
		return
	}

	db, err := s.getWriteDB()
	if err != nil {
		err = fmt.Errorf("getting write connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, insertRunSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	id := uuid.New()
	createdAt := time.Now().UTC()

	result, err := stmt.ExecContext(
		ctx,
		id.String(),
		createdAt,
		run.CubeFile,
		run.RegionFile,
		run.RegionIndex,
		run.Target,
		run.Convention,
		run.FigFile,
		configData,
	)
	if err != nil {
		err = fmt.Errorf("inserting run: %w", err)
		return
	}

	runID, err = result.LastInsertId()
	if err != nil {
		err = fmt.Errorf("getting run ID: %w", err)
		return
	}

	run.ID = runID
	run.UUID = id
	run.CreatedAt = createdAt
	if configData.Valid {
		run.Config = &configData.String
	}
	return
}

func (s *SqliteStore) StoreChannels(ctx context.Context, runID int64, channels []spectrum.Channel) (err error) {
	if len(channels) == 0 {
		return
	}

	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	for start := 0; start < len(channels); start += maxChannelsPerInsert {
		end := min(start+maxChannelsPerInsert, len(channels))
		if err = insertChannels(ctx, tx, runID, start, channels[start:end]); err != nil {
			return
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func insertChannels(ctx context.Context, tx *sql.Tx, runID int64, offset int, channels []spectrum.Channel) error {
	values := make([]any, 0, len(channels)*4)

	// Build batch insert query
	valuesPlaceholder := "(?, ?, ?, ?)"

	var sb strings.Builder

	sb.WriteString(insertChannelsSQL)

	for i, c := range channels {
		data := toChannelData(runID, offset+i, c)
		values = append(values,
			data.RunID,
			data.Index,
			data.Frequency,
			data.Flux,
		)

		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(valuesPlaceholder)
	}

	if _, err := tx.ExecContext(ctx, sb.String(), values...); err != nil {
		return fmt.Errorf("batch inserting channels: %w", err)
	}
	return nil
}

func (s *SqliteStore) Run(ctx context.Context, id int64) (run *Run, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, selectRunSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	var data runData
	err = stmt.QueryRowContext(ctx, id).Scan(scanRunFields(&data)...)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		err = fmt.Errorf("%w: %d", ErrRunNotFound, id)
		return
	case err != nil:
		err = fmt.Errorf("scanning run: %w", err)
		return
	}

	return fromRunData(data)
}

func (s *SqliteStore) Runs(ctx context.Context, opts ...QueryOption) (runs []*Run, err error) {
	q := newQuery(opts...)

	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	query, args := q.build(selectRunsSQL)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		err = fmt.Errorf("querying runs: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var data runData
		if err = rows.Scan(scanRunFields(&data)...); err != nil {
			err = fmt.Errorf("scanning run: %w", err)
			return
		}

		var run *Run
		if run, err = fromRunData(data); err != nil {
			return
		}
		runs = append(runs, run)
	}

	if err = rows.Err(); err != nil {
		err = fmt.Errorf("iterating runs: %w", err)
	}
	return
}

func (s *SqliteStore) Channels(ctx context.Context, runID int64) (channels []spectrum.Channel, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectChannelsSQL, runID)
	if err != nil {
		err = fmt.Errorf("querying channels: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var data channelData
		if err = rows.Scan(&data.RunID, &data.Index, &data.Frequency, &data.Flux); err != nil {
			err = fmt.Errorf("scanning channel: %w", err)
			return
		}
		channels = append(channels, fromChannelData(data))
	}

	if err = rows.Err(); err != nil {
		err = fmt.Errorf("iterating channels: %w", err)
	}
	return
}

func scanRunFields(d *runData) []any {
	return []any{
		&d.ID,
		&d.UUID,
		&d.CreatedAt,
		&d.CubeFile,
		&d.RegionFile,
		&d.RegionIndex,
		&d.Target,
		&d.Convention,
		&d.FigFile,
		&d.Config,
		&d.Channels,
	}
}

func (s *SqliteStore) Close() error {
	s.closeOnce.Do(func() {
		var writeErr, readErr error

		if s.writeDB != nil {
			writeErr = s.writeDB.Close()
			s.writeDB = nil
		}

		if s.readDB != nil {
			readErr = s.readDB.Close()
			s.readDB = nil
		}

		s.closeErr = errors.Join(writeErr, readErr)
	})

	return s.closeErr
}
