// Package testutil holds fixture helpers shared across package tests:
// writing a synthetic GTFS feed to disk and standing up a ledger Storage
// backend. Grounded on the teacher's testutil.BuildZip/BuildStorage,
// adapted from an in-memory zip (the teacher parses a GTFS zip) to an
// on-disk directory (parse.ParseDirectory reads a directory).
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/transitcore/raptor/storage"
)

// MinimalFeedFiles returns a small but complete GTFS feed: one agency,
// one route, one two-stop trip, and a calendar active every day. Callers
// may overwrite or add entries before passing the result to WriteGTFSDir.
func MinimalFeedFiles() map[string]string {
	return map[string]string{
		"agency.txt": "\n" +
			"agency_id,agency_name,agency_url,agency_timezone\n" +
			"a,Agency A,http://a.example,America/Los_Angeles",
		"routes.txt": "\n" +
			"route_id,agency_id,route_short_name,route_type\n" +
			"r,a,R1,3",
		"stops.txt": "\n" +
			"stop_id,stop_name,stop_lat,stop_lon\n" +
			"s1,Stop 1,1.0,1.0\n" +
			"s2,Stop 2,1.1,1.1",
		"trips.txt": "\n" +
			"trip_id,route_id,service_id\n" +
			"t,r,svc",
		"stop_times.txt": "\n" +
			"trip_id,stop_id,stop_sequence,arrival_time,departure_time\n" +
			"t,s1,1,08:00:00,08:00:00\n" +
			"t,s2,2,08:10:00,08:10:00",
		"calendar.txt": "\n" +
			"service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date\n" +
			"svc,1,1,1,1,1,1,1,20260101,20261231",
	}
}

// WriteGTFSDir materializes files (name -> file content) into a fresh
// temporary directory and returns its path.
func WriteGTFSDir(t testing.TB, files map[string]string) string {
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

// BuildLedger returns a fresh Storage for the named backend ("memory" or
// "sqlite"); it fails the test immediately for any other name.
func BuildLedger(t testing.TB, backend string) storage.Storage {
	switch backend {
	case "memory":
		return storage.NewMemoryStorage()
	case "sqlite":
		s, err := storage.NewSQLiteStorage()
		require.NoError(t, err)
		return s
	default:
		require.Failf(t, "unknown ledger backend", "%q", backend)
		return nil
	}
}
