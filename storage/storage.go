// Package storage holds the feed ledger the Lifecycle Manager writes to
// after building a Schedule Index (spec.md §4.5).
//
// This is deliberately off the query hot path: RAPTOR queries run against
// the in-memory, array-indexed Schedule Index built by package raptor, not
// against SQL. The ledger's only job is bookkeeping: one row per content
// hash recording the window and row counts it was built with. The Manager
// does not read the ledger back; its skip of an unchanged feed compares
// against the digest and window of the snapshot it currently holds.
package storage

import "time"

// FeedMetadata records one ingested-and-indexed GTFS snapshot.
type FeedMetadata struct {
	// SHA256 of the concatenated GTFS source files, identifying the
	// exact content that was indexed.
	SHA256 string

	// SourcePath is the GTFS directory that was read.
	SourcePath string

	// WindowStart/WindowEnd bound the active trip window (spec.md §3)
	// that was used when this snapshot was built, as raw (non-wrapping)
	// "HH:MM:SS" seconds-since-service-midnight offsets.
	WindowStart string
	WindowEnd   string

	RetrievedAt time.Time

	StopCount  int
	RouteCount int
	TripCount  int
}

// ListFeedsFilter narrows ListFeeds results.
type ListFeedsFilter struct {
	SHA256     string
	SourcePath string
}

// Storage is the feed ledger contract. Implementations: MemoryStorage,
// SQLiteStorage, PostgresStorage.
type Storage interface {
	ListFeeds(filter ListFeedsFilter) ([]*FeedMetadata, error)
	WriteFeedMetadata(metadata *FeedMetadata) error
	DeleteFeedMetadata(sha256 string) error
}
