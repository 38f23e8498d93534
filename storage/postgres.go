package storage

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/pkg/errors"

	_ "github.com/lib/pq"
)

// PostgresStorage is a Storage backed by Postgres, for deployments that
// run several engine instances and want them to record into one shared
// ledger. Each instance still builds its own Schedule Index. Grounded on the teacher's storage/postgres.go, trimmed the same
// way as SQLiteStorage.
type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(connStr string) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, errors.Wrap(err, "opening postgres ledger")
	}

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS feed (
    sha256 TEXT PRIMARY KEY,
    source_path TEXT NOT NULL,
    window_start TEXT NOT NULL,
    window_end TEXT NOT NULL,
    retrieved_at TIMESTAMPTZ NOT NULL,
    stop_count INTEGER NOT NULL,
    route_count INTEGER NOT NULL,
    trip_count INTEGER NOT NULL
);`)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating feed table")
	}

	return &PostgresStorage{db: db}, nil
}

func (s *PostgresStorage) ListFeeds(filter ListFeedsFilter) ([]*FeedMetadata, error) {
	query := `SELECT sha256, source_path, window_start, window_end, retrieved_at, stop_count, route_count, trip_count FROM feed`
	conditions := []string{}
	params := []interface{}{}
	argN := 1
	if filter.SHA256 != "" {
		conditions = append(conditions, fmtPlaceholder("sha256", argN))
		params = append(params, filter.SHA256)
		argN++
	}
	if filter.SourcePath != "" {
		conditions = append(conditions, fmtPlaceholder("source_path", argN))
		params = append(params, filter.SourcePath)
		argN++
	}
	if len(conditions) > 0 {
		query += " WHERE "
		for i, c := range conditions {
			if i > 0 {
				query += " AND "
			}
			query += c
		}
	}
	query += " ORDER BY retrieved_at DESC"

	rows, err := s.db.Query(query, params...)
	if err != nil {
		return nil, errors.Wrap(err, "querying feed table")
	}
	defer rows.Close()

	feeds := []*FeedMetadata{}
	for rows.Next() {
		f := &FeedMetadata{}
		if err := rows.Scan(&f.SHA256, &f.SourcePath, &f.WindowStart, &f.WindowEnd, &f.RetrievedAt, &f.StopCount, &f.RouteCount, &f.TripCount); err != nil {
			return nil, errors.Wrap(err, "scanning feed row")
		}
		feeds = append(feeds, f)
	}
	return feeds, rows.Err()
}

func (s *PostgresStorage) WriteFeedMetadata(m *FeedMetadata) error {
	retrievedAt := m.RetrievedAt
	if retrievedAt.IsZero() {
		retrievedAt = time.Now()
	}
	_, err := s.db.Exec(`
INSERT INTO feed (sha256, source_path, window_start, window_end, retrieved_at, stop_count, route_count, trip_count)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (sha256) DO UPDATE SET
    source_path=excluded.source_path,
    window_start=excluded.window_start,
    window_end=excluded.window_end,
    retrieved_at=excluded.retrieved_at,
    stop_count=excluded.stop_count,
    route_count=excluded.route_count,
    trip_count=excluded.trip_count
`, m.SHA256, m.SourcePath, m.WindowStart, m.WindowEnd, retrievedAt, m.StopCount, m.RouteCount, m.TripCount)
	return errors.Wrap(err, "writing feed metadata")
}

func (s *PostgresStorage) DeleteFeedMetadata(sha256 string) error {
	_, err := s.db.Exec(`DELETE FROM feed WHERE sha256 = $1`, sha256)
	return errors.Wrap(err, "deleting feed metadata")
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

func fmtPlaceholder(col string, n int) string {
	return col + " = $" + strconv.Itoa(n)
}
