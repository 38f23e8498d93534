package storage_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitcore/raptor/storage"
	"github.com/transitcore/raptor/testutil"
)

func backendNames() []string {
	return []string{"memory", "sqlite"}
}

func TestWriteAndListFeeds(t *testing.T) {
	for _, name := range backendNames() {
		t.Run(name, func(t *testing.T) {
			s := testutil.BuildLedger(t, name)

			m := &storage.FeedMetadata{
				SHA256:      "abc123",
				SourcePath:  "/data/gtfs",
				WindowStart: "06:00:00",
				WindowEnd:   "11:00:00",
				RetrievedAt: time.Now(),
				StopCount:   10,
				RouteCount:  2,
				TripCount:   40,
			}
			require.NoError(t, s.WriteFeedMetadata(m))

			feeds, err := s.ListFeeds(storage.ListFeedsFilter{SHA256: "abc123"})
			require.NoError(t, err)
			require.Len(t, feeds, 1)
			assert.Equal(t, "abc123", feeds[0].SHA256)
			assert.Equal(t, 40, feeds[0].TripCount)
		})
	}
}

func TestWriteFeedMetadataUpserts(t *testing.T) {
	for _, name := range backendNames() {
		t.Run(name, func(t *testing.T) {
			s := testutil.BuildLedger(t, name)

			m := &storage.FeedMetadata{SHA256: "h1", SourcePath: "/a", TripCount: 1}
			require.NoError(t, s.WriteFeedMetadata(m))

			m.TripCount = 2
			require.NoError(t, s.WriteFeedMetadata(m))

			feeds, err := s.ListFeeds(storage.ListFeedsFilter{SHA256: "h1"})
			require.NoError(t, err)
			require.Len(t, feeds, 1)
			assert.Equal(t, 2, feeds[0].TripCount)
		})
	}
}

func TestDeleteFeedMetadata(t *testing.T) {
	for _, name := range backendNames() {
		t.Run(name, func(t *testing.T) {
			s := testutil.BuildLedger(t, name)

			require.NoError(t, s.WriteFeedMetadata(&storage.FeedMetadata{SHA256: "h2", SourcePath: "/a"}))
			require.NoError(t, s.DeleteFeedMetadata("h2"))

			feeds, err := s.ListFeeds(storage.ListFeedsFilter{SHA256: "h2"})
			require.NoError(t, err)
			assert.Len(t, feeds, 0)
		})
	}
}
