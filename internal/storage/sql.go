package storage

import (
	_ "embed"
)

const (
	insertRunSQL = `
INSERT INTO runs (uuid,
                  created_at,
                  cube_file,
                  region_file,
                  region_index,
                  target,
                  convention,
                  fig_file,
                  config)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectRunSQL = `
SELECT
    r.id,
    r.uuid,
    r.created_at,
    r.cube_file,
    r.region_file,
    r.region_index,
    r.target,
    r.convention,
    r.fig_file,
    r.config,
    (SELECT COUNT(*) FROM channels c WHERE c.run_id = r.id)
FROM runs r
WHERE
    r.id = ?`

	selectRunsSQL = `
SELECT
    r.id,
    r.uuid,
    r.created_at,
    r.cube_file,
    r.region_file,
    r.region_index,
    r.target,
    r.convention,
    r.fig_file,
    r.config,
    (SELECT COUNT(*) FROM channels c WHERE c.run_id = r.id)
FROM runs r`

	selectChannelsSQL = `
SELECT
    run_id,
    channel,
    frequency,
    flux
FROM channels
WHERE
    run_id = ?
ORDER BY channel`

	insertChannelsSQL = `
INSERT INTO channels (run_id,
                      channel,
                      frequency,
                      flux)
VALUES `
)

//go:embed schema.sql
var initSchemaSQL string
