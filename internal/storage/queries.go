package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"madmetro/internal/webwatch"
)

// PollRow summarizes one archived poll.
type PollRow struct {
	PollID        string
	RouteID       string
	PolledAt      time.Time
	StopTimeCount int
	VehicleCount  int
}

// VehicleObservation is a vehicle location read back from the archive.
type VehicleObservation struct {
	PollID   string
	PolledAt time.Time
	webwatch.VehicleLocation
}

// RecordPoll stores a RouteCurrentData snapshot and returns its poll ID.
func (db *DB) RecordPoll(ctx context.Context, routeID string, polledAt time.Time, data *webwatch.RouteCurrentData) (string, error) {
	pollID := uuid.NewString()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO polls (poll_id, route_id, polled_at, stop_time_count, vehicle_count) VALUES (?, ?, ?, ?, ?)`,
		pollID, routeID, polledAt.UTC().Format(time.RFC3339), len(data.StopTimes), len(data.Vehicles),
	); err != nil {
		return "", fmt.Errorf("insert poll: %w", err)
	}

	vehStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO vehicle_observations
		  (poll_id, route_id, vehicle_number, latitude, longitude, direction, next_stop, final_stop)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare vehicle insert: %w", err)
	}
	defer vehStmt.Close()

	for _, v := range data.Vehicles {
		if _, err := vehStmt.ExecContext(ctx,
			pollID, v.RouteID, v.Number,
			nullDecimalText(v.Latitude), nullDecimalText(v.Longitude),
			int(v.Direction), v.NextStop, v.FinalStop,
		); err != nil {
			return "", fmt.Errorf("insert vehicle: %w", err)
		}
	}

	stopStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO stop_predictions (poll_id, route_id, stop_id, times) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare stop insert: %w", err)
	}
	defer stopStmt.Close()

	for _, st := range data.StopTimes {
		if _, err := stopStmt.ExecContext(ctx, pollID, st.RouteID, st.StopID, strings.Join(st.Times, "\n")); err != nil {
			return "", fmt.Errorf("insert stop prediction: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit poll: %w", err)
	}
	return pollID, nil
}

// RecentPolls returns the latest polls of a route, newest first.
func (db *DB) RecentPolls(ctx context.Context, routeID string, limit int) ([]PollRow, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT poll_id, route_id, polled_at, stop_time_count, vehicle_count
		FROM polls
		WHERE route_id = ?
		ORDER BY polled_at DESC
		LIMIT ?`, routeID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent polls query: %w", err)
	}
	defer rows.Close()

	var polls []PollRow
	for rows.Next() {
		var p PollRow
		var polledAt string
		if err := rows.Scan(&p.PollID, &p.RouteID, &polledAt, &p.StopTimeCount, &p.VehicleCount); err != nil {
			return nil, fmt.Errorf("scan poll: %w", err)
		}
		p.PolledAt, _ = time.Parse(time.RFC3339, polledAt)
		polls = append(polls, p)
	}
	return polls, rows.Err()
}

// VehicleHistory returns archived locations of one vehicle on a route,
// newest first.
func (db *DB) VehicleHistory(ctx context.Context, routeID, vehicleNumber string, limit int) ([]VehicleObservation, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT v.poll_id, p.polled_at, v.route_id, v.vehicle_number,
		       v.latitude, v.longitude, v.direction, v.next_stop, v.final_stop
		FROM vehicle_observations AS v
		JOIN polls AS p ON p.poll_id = v.poll_id
		WHERE v.route_id = ? AND v.vehicle_number = ?
		ORDER BY p.polled_at DESC
		LIMIT ?`, routeID, vehicleNumber, limit)
	if err != nil {
		return nil, fmt.Errorf("vehicle history query: %w", err)
	}
	defer rows.Close()

	var obs []VehicleObservation
	for rows.Next() {
		var o VehicleObservation
		var polledAt string
		var lat, lon sql.NullString
		var direction int
		if err := rows.Scan(&o.PollID, &polledAt, &o.RouteID, &o.Number,
			&lat, &lon, &direction, &o.NextStop, &o.FinalStop); err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		o.PolledAt, _ = time.Parse(time.RFC3339, polledAt)
		o.Direction = webwatch.Direction(direction)
		o.Latitude = parseNullDecimal(lat)
		o.Longitude = parseNullDecimal(lon)
		obs = append(obs, o)
	}
	return obs, rows.Err()
}

// StopPredictions returns the arrival times archived by a poll.
func (db *DB) StopPredictions(ctx context.Context, pollID string) ([]webwatch.RouteStopTime, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT route_id, stop_id, times
		FROM stop_predictions
		WHERE poll_id = ?
		ORDER BY rowid`, pollID)
	if err != nil {
		return nil, fmt.Errorf("stop predictions query: %w", err)
	}
	defer rows.Close()

	var stopTimes []webwatch.RouteStopTime
	for rows.Next() {
		var st webwatch.RouteStopTime
		var times string
		if err := rows.Scan(&st.RouteID, &st.StopID, &times); err != nil {
			return nil, fmt.Errorf("scan stop prediction: %w", err)
		}
		st.Times = splitTimes(times)
		stopTimes = append(stopTimes, st)
	}
	return stopTimes, rows.Err()
}

// PruneBefore deletes polls older than cutoff along with their rows.
func (db *DB) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := db.ExecContext(ctx,
		`DELETE FROM polls WHERE polled_at < ?`, cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("prune polls: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		db.logger.Info("pruned archived polls", "count", n, "before", cutoff.Format(time.RFC3339))
	}
	return n, nil
}

// splitTimes undoes the newline join of stored arrival times. A stop whose
// blob held only blank entries was stored as "" and reads back empty.
func splitTimes(times string) []string {
	if times == "" {
		return []string{}
	}
	return strings.Split(times, "\n")
}

func nullDecimalText(d decimal.NullDecimal) sql.NullString {
	if !d.Valid {
		return sql.NullString{}
	}
	return sql.NullString{String: webwatch.FormatCoordinate(d.Decimal), Valid: true}
}

func parseNullDecimal(s sql.NullString) decimal.NullDecimal {
	if !s.Valid {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}
