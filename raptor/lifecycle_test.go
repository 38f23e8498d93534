package raptor

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitcore/raptor/storage"
	"github.com/transitcore/raptor/testutil"
)

func TestManagerRefreshPublishesSnapshot(t *testing.T) {
	dir := testutil.WriteGTFSDir(t, testutil.MinimalFeedFiles())

	m := NewManager(dir, storage.NewMemoryStorage())

	var events []SyncEvent
	m.Observe(func(e SyncEvent) { events = append(events, e) })

	hour := time.Date(2026, 7, 30, 10, 0, 0, 0, time.UTC)
	snap, err := m.Refresh(hour)
	require.NoError(t, err)
	require.NotNil(t, snap)
	require.Len(t, events, 1)

	got, release, err := m.Acquire()
	require.NoError(t, err)
	defer release()
	assert.Same(t, snap, got)
}

func TestManagerRefreshFailureRetainsCurrentSnapshot(t *testing.T) {
	dir := testutil.WriteGTFSDir(t, testutil.MinimalFeedFiles())

	m := NewManager(dir, storage.NewMemoryStorage())
	hour := time.Date(2026, 7, 30, 10, 0, 0, 0, time.UTC)
	first, err := m.Refresh(hour)
	require.NoError(t, err)

	m.SourceDir = filepath.Join(dir, "does-not-exist")
	_, err = m.Refresh(hour.Add(time.Hour))
	require.Error(t, err)

	got, release, err := m.Acquire()
	require.NoError(t, err)
	defer release()
	assert.Same(t, first, got)
}

func TestManagerAcquireBeforeRefreshErrors(t *testing.T) {
	m := NewManager(t.TempDir(), storage.NewMemoryStorage())
	_, _, err := m.Acquire()
	require.Error(t, err)
}
