package storage

import "fmt"

// migrate creates the archive schema if it doesn't exist.
func (db *DB) migrate() error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	db.logger.Info("database migrations applied")
	return nil
}

var migrations = []string{
	// One row per RouteCurrentData request
	`CREATE TABLE IF NOT EXISTS polls (
		poll_id         TEXT PRIMARY KEY,
		route_id        TEXT NOT NULL,
		polled_at       TEXT NOT NULL,
		stop_time_count INTEGER NOT NULL DEFAULT 0,
		vehicle_count   INTEGER NOT NULL DEFAULT 0
	)`,

	// Coordinates are kept as text so they round-trip exactly
	`CREATE TABLE IF NOT EXISTS vehicle_observations (
		poll_id        TEXT NOT NULL REFERENCES polls(poll_id) ON DELETE CASCADE,
		route_id       TEXT NOT NULL,
		vehicle_number TEXT NOT NULL DEFAULT '',
		latitude       TEXT,
		longitude      TEXT,
		direction      INTEGER NOT NULL DEFAULT 0,
		next_stop      TEXT NOT NULL DEFAULT '',
		final_stop     TEXT NOT NULL DEFAULT ''
	)`,

	// Arrival predictions, one row per stop per poll; times joined by newlines
	`CREATE TABLE IF NOT EXISTS stop_predictions (
		poll_id  TEXT NOT NULL REFERENCES polls(poll_id) ON DELETE CASCADE,
		route_id TEXT NOT NULL,
		stop_id  TEXT NOT NULL,
		times    TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_polls_route ON polls(route_id, polled_at)`,
	`CREATE INDEX IF NOT EXISTS idx_polls_polled_at ON polls(polled_at)`,
	`CREATE INDEX IF NOT EXISTS idx_vehicle_obs_poll ON vehicle_observations(poll_id)`,
	`CREATE INDEX IF NOT EXISTS idx_vehicle_obs_vehicle ON vehicle_observations(route_id, vehicle_number)`,
	`CREATE INDEX IF NOT EXISTS idx_stop_predictions_poll ON stop_predictions(poll_id)`,
}
