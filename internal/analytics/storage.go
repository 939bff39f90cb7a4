package analytics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mkaczor/gymflow/pkg/postgres"
)

const createTableQuery = `
	CREATE TABLE IF NOT EXISTS hourly_occupancy (
		date        TEXT        NOT NULL,
		hour        SMALLINT    NOT NULL,
		weekday     SMALLINT    NOT NULL,
		occupancy   INTEGER     NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (date, hour)
	)`

const upsertQuery = `
	INSERT INTO hourly_occupancy (date, hour, weekday, occupancy, recorded_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (date, hour) DO UPDATE SET
		weekday     = EXCLUDED.weekday,
		occupancy   = EXCLUDED.occupancy,
		recorded_at = EXCLUDED.recorded_at`

const selectColumns = `SELECT date, hour, weekday, occupancy, recorded_at FROM hourly_occupancy`

// Store persists hourly occupancy readings in PostgreSQL. The (date, hour)
// primary key makes writes idempotent: re-reading the same hour overwrites
// the previous value, last write wins.
type Store struct {
	db     postgres.Client
	logger *slog.Logger
}

// NewStore creates a reading store over an established database client
func NewStore(db postgres.Client, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// EnsureSchema creates the readings table when it does not exist yet
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createTableQuery); err != nil {
		return fmt.Errorf("failed to create hourly_occupancy table: %w", err)
	}
	return nil
}

// Upsert writes one reading, replacing any earlier value for the same
// (date, hour) slot
func (s *Store) Upsert(ctx context.Context, r Reading) error {
	_, err := s.db.Exec(ctx, upsertQuery, r.Date, r.Hour, r.Weekday, r.Occupancy, r.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to upsert reading %s hour %d: %w", r.Date, r.Hour, err)
	}

	s.logger.Debug("Stored occupancy reading",
		"date", r.Date,
		"hour", r.Hour,
		"occupancy", r.Occupancy)
	return nil
}

// ReadingsSince returns all readings with date >= fromDate
func (s *Store) ReadingsSince(ctx context.Context, fromDate string) ([]Reading, error) {
	rows, err := s.db.Query(ctx, selectColumns+` WHERE date >= $1`, fromDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query readings since %s: %w", fromDate, err)
	}
	return scanReadings(rows)
}

// ReadingsBetween returns all readings with fromDate <= date < toDate
func (s *Store) ReadingsBetween(ctx context.Context, fromDate, toDate string) ([]Reading, error) {
	rows, err := s.db.Query(ctx, selectColumns+` WHERE date >= $1 AND date < $2`, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query readings between %s and %s: %w", fromDate, toDate, err)
	}
	return scanReadings(rows)
}

// ReadingAt returns the reading for one (date, hour) slot, nil when absent
func (s *Store) ReadingAt(ctx context.Context, date string, hour int) (*Reading, error) {
	row := s.db.QueryRow(ctx, selectColumns+` WHERE date = $1 AND hour = $2`, date, hour)

	var r Reading
	err := row.Scan(&r.Date, &r.Hour, &r.Weekday, &r.Occupancy, &r.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read slot %s hour %d: %w", date, hour, err)
	}
	return &r, nil
}

// Purge deletes all readings with date < beforeDate and returns how many
// rows were removed
func (s *Store) Purge(ctx context.Context, beforeDate string) (int64, error) {
	result, err := s.db.Exec(ctx, `DELETE FROM hourly_occupancy WHERE date < $1`, beforeDate)
	if err != nil {
		return 0, fmt.Errorf("failed to purge readings before %s: %w", beforeDate, err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged readings: %w", err)
	}

	s.logger.Info("Purged old readings", "before", beforeDate, "deleted", deleted)
	return deleted, nil
}

func scanReadings(rows *sql.Rows) ([]Reading, error) {
	defer rows.Close()

	var readings []Reading
	for rows.Next() {
		var r Reading
		if err := rows.Scan(&r.Date, &r.Hour, &r.Weekday, &r.Occupancy, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		readings = append(readings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate readings: %w", err)
	}
	return readings, nil
}
