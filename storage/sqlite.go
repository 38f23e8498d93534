package storage

import (
	"database/sql"
	"time"

	"github.com/pkg/errors"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteConfig configures an on-disk or in-memory ledger database.
type SQLiteConfig struct {
	OnDisk    bool
	Directory string
}

// SQLiteStorage is a Storage backed by SQLite, for single-instance
// deployments that want the ledger to survive a process restart.
// Grounded on the teacher's storage/sqlite.go, trimmed to the feed table
// only (the per-row GTFS tables it also maintained are superseded by the
// in-memory Schedule Index; see DESIGN.md).
type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(cfg ...SQLiteConfig) (*SQLiteStorage, error) {
	onDisk := false
	directory := "."
	if len(cfg) > 0 {
		onDisk = cfg[0].OnDisk
		if cfg[0].Directory != "" {
			directory = cfg[0].Directory
		}
	}

	source := ":memory:"
	if onDisk {
		source = directory + "/raptor_ledger.db"
	}

	db, err := sql.Open("sqlite3", source)
	if err != nil {
		return nil, errors.Wrap(err, "opening sqlite ledger")
	}

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS feed (
    sha256 TEXT PRIMARY KEY,
    source_path TEXT NOT NULL,
    window_start TEXT NOT NULL,
    window_end TEXT NOT NULL,
    retrieved_at TIMESTAMP NOT NULL,
    stop_count INTEGER NOT NULL,
    route_count INTEGER NOT NULL,
    trip_count INTEGER NOT NULL
);`)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating feed table")
	}

	return &SQLiteStorage{db: db}, nil
}

func (s *SQLiteStorage) ListFeeds(filter ListFeedsFilter) ([]*FeedMetadata, error) {
	query := `SELECT sha256, source_path, window_start, window_end, retrieved_at, stop_count, route_count, trip_count FROM feed`
	conditions := []string{}
	params := []interface{}{}
	if filter.SHA256 != "" {
		conditions = append(conditions, "sha256 = ?")
		params = append(params, filter.SHA256)
	}
	if filter.SourcePath != "" {
		conditions = append(conditions, "source_path = ?")
		params = append(params, filter.SourcePath)
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

func (s *SQLiteStorage) WriteFeedMetadata(m *FeedMetadata) error {
	retrievedAt := m.RetrievedAt
	if retrievedAt.IsZero() {
		retrievedAt = time.Now()
	}
	_, err := s.db.Exec(`
INSERT INTO feed (sha256, source_path, window_start, window_end, retrieved_at, stop_count, route_count, trip_count)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(sha256) DO UPDATE SET
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

func (s *SQLiteStorage) DeleteFeedMetadata(sha256 string) error {
	_, err := s.db.Exec(`DELETE FROM feed WHERE sha256 = ?`, sha256)
	return errors.Wrap(err, "deleting feed metadata")
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
