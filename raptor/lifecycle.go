package raptor

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/transitcore/raptor/gtfstime"
	"github.com/transitcore/raptor/model"
	"github.com/transitcore/raptor/parse"
	"github.com/transitcore/raptor/storage"
)

// SyncEvent is delivered to Manager observers after every refresh that
// publishes a new snapshot (spec §4.5). A refresh that reuses the current
// snapshot because source and window are unchanged delivers no event.
type SyncEvent struct {
	LastSyncedHour time.Time
	WindowStart    gtfstime.Seconds
	WindowEnd      gtfstime.Seconds
}

// refCounted pairs a Snapshot with the in-flight query count that must
// reach zero before it can be retired.
type refCounted struct {
	snapshot *Snapshot
	refs     int32
}

func (r *refCounted) release() {
	atomic.AddInt32(&r.refs, -1)
}

// Manager holds the current Schedule Index behind a single atomic
// reference, rebuilding it on an hourly timer (spec §4.5). It is the
// only writer of that reference; Workers are readers that each acquire
// the snapshot that was current when their query began and release it
// when done, so a retired snapshot is freed once no in-flight query
// still references it (spec §5 "Shared state").
//
// Grounded on the original feed manager's refresh/retry loop: a failed
// reload is logged and retried on the next tick without disturbing the
// snapshot already serving queries.
type Manager struct {
	SourceDir string
	storage   storage.Storage

	current atomic.Value // *refCounted

	mu        sync.Mutex
	observers []func(SyncEvent)

	stop chan struct{}
	done chan struct{}
}

// NewManager constructs a Manager reading GTFS from sourceDir and
// recording feed bookkeeping in the given ledger.
func NewManager(sourceDir string, ledger storage.Storage) *Manager {
	return &Manager{
		SourceDir: sourceDir,
		storage:   ledger,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Observe registers a callback invoked after every refresh that
// publishes a new snapshot.
func (m *Manager) Observe(fn func(SyncEvent)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

// Acquire returns the current snapshot along with a release function the
// caller MUST invoke when done querying it.
func (m *Manager) Acquire() (*Snapshot, func(), error) {
	v := m.current.Load()
	if v == nil {
		return nil, nil, errors.New("no snapshot has been loaded yet")
	}
	rc := v.(*refCounted)
	atomic.AddInt32(&rc.refs, 1)
	return rc.snapshot, rc.release, nil
}

// Refresh rebuilds the Schedule Index for the window
// [hour-1h, hour+4h] and, on success, atomically swaps it in as the
// current snapshot (spec §4.5, §4.1 step 3). A failure is returned to
// the caller but never replaces the snapshot already in place. When the
// source digest and the window both match the current snapshot, that
// snapshot is returned as is and nothing is rebuilt.
func (m *Manager) Refresh(hour time.Time) (*Snapshot, error) {
	windowStart, windowEnd := refreshWindow(hour)

	fs, digest, err := parse.ParseDirectory(m.SourceDir)
	if err != nil {
		return nil, wrapLoadError(err, "parsing GTFS directory")
	}

	if existing := m.currentDigest(); existing != "" && existing == digest {
		// Identical source bytes and window: skip the rebuild, matching
		// the original manager's "feed already in storage" shortcut.
		if rc, ok := m.current.Load().(*refCounted); ok &&
			rc.snapshot.WindowStart == windowStart && rc.snapshot.WindowEnd == windowEnd {
			return rc.snapshot, nil
		}
	}

	snap, err := BuildSnapshot(fs, windowStart, windowEnd, digest)
	if err != nil {
		return nil, wrapLoadError(err, "building schedule index")
	}

	if err := m.recordLedger(fs, digest, windowStart, windowEnd); err != nil {
		log.Printf("raptor: recording feed ledger: %v", err)
	}

	m.current.Store(&refCounted{snapshot: snap})

	event := SyncEvent{LastSyncedHour: hour, WindowStart: windowStart, WindowEnd: windowEnd}
	m.mu.Lock()
	observers := append([]func(SyncEvent){}, m.observers...)
	m.mu.Unlock()
	for _, fn := range observers {
		fn(event)
	}

	return snap, nil
}

func (m *Manager) currentDigest() string {
	rc, ok := m.current.Load().(*refCounted)
	if !ok {
		return ""
	}
	return rc.snapshot.Digest
}

func (m *Manager) recordLedger(fs *model.FeedSet, digest string, windowStart, windowEnd gtfstime.Seconds) error {
	return m.storage.WriteFeedMetadata(&storage.FeedMetadata{
		SHA256:      digest,
		SourcePath:  m.SourceDir,
		WindowStart: windowStart.FormatRaw(),
		WindowEnd:   windowEnd.FormatRaw(),
		RetrievedAt: time.Now(),
		StopCount:   len(fs.Stops),
		RouteCount:  len(fs.Routes),
		TripCount:   len(fs.Trips),
	})
}

// refreshWindow computes the desired [hour-1h, hour+4h] service-time
// window, rounded to hour boundaries (spec §4.5).
func refreshWindow(hour time.Time) (gtfstime.Seconds, gtfstime.Seconds) {
	rounded := hour.Truncate(time.Hour)
	midnight := time.Date(rounded.Year(), rounded.Month(), rounded.Day(), 0, 0, 0, 0, rounded.Location())
	offset := gtfstime.Seconds(rounded.Sub(midnight) / time.Second)
	return offset - 3600, offset + 4*3600
}

// Run starts the hourly refresh loop: a timer fires at wall-clock minute
// 0 within a ±30s jitter (spec §4.5). Call Stop to terminate it.
func (m *Manager) Run(ctx context.Context) {
	go func() {
		defer close(m.done)
		for {
			wait := untilNextHour(time.Now())
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-m.stop:
				timer.Stop()
				return
			case now := <-timer.C:
				if _, err := m.Refresh(now); err != nil {
					log.Printf("raptor: refresh failed, retaining current snapshot: %v", err)
				}
			}
		}
	}()
}

// Stop halts the refresh loop started by Run.
func (m *Manager) Stop() {
	close(m.stop)
	<-m.done
}

func untilNextHour(now time.Time) time.Duration {
	next := now.Truncate(time.Hour).Add(time.Hour)
	jitter := time.Duration(rand.Intn(61)-30) * time.Second
	d := next.Add(jitter).Sub(now)
	if d <= 0 {
		d = time.Minute
	}
	return d
}
