package raptor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitcore/raptor/model"
)

func buildSnapshot(t *testing.T, fs *model.FeedSet) *Snapshot {
	t.Helper()
	snap, err := BuildSnapshot(fs, 0, 200000, "digest")
	require.NoError(t, err)
	return snap
}

// Scenario 1: direct ride, one trip, no transfers.
func TestScenarioDirectRide(t *testing.T) {
	fs := &model.FeedSet{
		Stops:  []model.Stop{stop("A", 0, 0), stop("B", 0, 0.01)},
		Routes: []model.Route{{ID: "r1"}},
		Trips:  []model.Trip{{ID: "t1", RouteID: "r1", ServiceID: "svc"}},
		StopTimes: []model.StopTime{
			stopTime("t1", "A", 1, "08:00:00", "08:00:00"),
			stopTime("t1", "B", 2, "08:20:00", "08:20:00"),
		},
	}
	snap := buildSnapshot(t, fs)
	a, _ := snap.StopByID("A")
	b, _ := snap.StopByID("B")

	j, err := NewWorker(snap).Query(context.Background(), a, b, 7*3600+55*60)
	require.NoError(t, err)
	require.NotNil(t, j)
	require.Len(t, j.Legs, 1)
	assert.Equal(t, LegBoard, j.Legs[0].Kind)
	assert.Equal(t, "08:00:00", j.Legs[0].Departure.Format())
	assert.Equal(t, "08:20:00", j.Legs[0].Arrival.Format())
}

// Scenario 2: one transfer between two trips at the same stop.
func TestScenarioOneTransfer(t *testing.T) {
	fs := &model.FeedSet{
		Stops:  []model.Stop{stop("A", 0, 0), stop("X", 0, 0.01), stop("B", 0, 0.02)},
		Routes: []model.Route{{ID: "r1"}, {ID: "r2"}},
		Trips: []model.Trip{
			{ID: "t1", RouteID: "r1", ServiceID: "svc"},
			{ID: "t2", RouteID: "r2", ServiceID: "svc"},
		},
		StopTimes: []model.StopTime{
			stopTime("t1", "A", 1, "08:00:00", "08:00:00"),
			stopTime("t1", "X", 2, "08:10:00", "08:10:00"),
			stopTime("t2", "X", 1, "08:12:00", "08:12:00"),
			stopTime("t2", "B", 2, "08:30:00", "08:30:00"),
		},
	}
	snap := buildSnapshot(t, fs)
	a, _ := snap.StopByID("A")
	b, _ := snap.StopByID("B")

	j, err := NewWorker(snap).Query(context.Background(), a, b, 7*3600+55*60)
	require.NoError(t, err)
	require.NotNil(t, j)
	require.Len(t, j.Legs, 2)
	assert.Equal(t, LegBoard, j.Legs[0].Kind)
	assert.Equal(t, LegBoard, j.Legs[1].Kind)
	assert.Equal(t, "X", j.Legs[0].ToStopID)
	assert.Equal(t, "X", j.Legs[1].FromStopID)
	assert.Equal(t, "08:10:00", j.Legs[0].Arrival.Format())
	assert.Equal(t, "08:12:00", j.Legs[1].Departure.Format())
}

// Scenario 3: a footpath is needed to reach the only trip-serving stop.
func TestScenarioWalkPlusRide(t *testing.T) {
	fs := &model.FeedSet{
		Stops:  []model.Stop{stop("A", 0, 0), stop("Aprime", 0, 0.001), stop("B", 0, 0.01)},
		Routes: []model.Route{{ID: "r1"}},
		Trips:  []model.Trip{{ID: "t1", RouteID: "r1", ServiceID: "svc"}},
		StopTimes: []model.StopTime{
			stopTime("t1", "Aprime", 1, "08:05:00", "08:05:00"),
			stopTime("t1", "B", 2, "08:25:00", "08:25:00"),
		},
	}
	snap := buildSnapshot(t, fs)
	a, _ := snap.StopByID("A")
	aPrime, _ := snap.StopByID("Aprime")
	b, _ := snap.StopByID("B")

	// Force a deterministic 150s footpath as spec's scenario states,
	// rather than whatever the Haversine default computes for this
	// synthetic coordinate delta.
	snap.Stops[a].Footpaths = []Footpath{{To: aPrime, WalkSeconds: 150}}
	snap.Stops[aPrime].Footpaths = []Footpath{{To: a, WalkSeconds: 150}}

	j, err := NewWorker(snap).Query(context.Background(), a, b, 8*3600)
	require.NoError(t, err)
	require.NotNil(t, j)
	require.Len(t, j.Legs, 2)
	assert.Equal(t, LegWalk, j.Legs[0].Kind)
	assert.Equal(t, "08:00:00", j.Legs[0].Departure.Format())
	assert.Equal(t, "08:02:30", j.Legs[0].Arrival.Format())
	assert.Equal(t, LegBoard, j.Legs[1].Kind)
	assert.Equal(t, "08:05:00", j.Legs[1].Departure.Format())
	assert.Equal(t, "08:25:00", j.Legs[1].Arrival.Format())
}

// Scenario 4: a trip crossing midnight renders correctly and the
// computed duration reflects the real 20-minute ride, not a huge
// negative span.
func TestScenarioMidnightWrap(t *testing.T) {
	fs := &model.FeedSet{
		Stops:  []model.Stop{stop("A", 0, 0), stop("B", 0, 0.01)},
		Routes: []model.Route{{ID: "r1"}},
		Trips:  []model.Trip{{ID: "t1", RouteID: "r1", ServiceID: "svc"}},
		StopTimes: []model.StopTime{
			stopTime("t1", "A", 1, "23:50:00", "23:50:00"),
			stopTime("t1", "B", 2, "24:10:00", "24:10:00"),
		},
	}
	snap := buildSnapshot(t, fs)
	a, _ := snap.StopByID("A")
	b, _ := snap.StopByID("B")

	j, err := NewWorker(snap).Query(context.Background(), a, b, 23*3600+45*60)
	require.NoError(t, err)
	require.NotNil(t, j)
	require.Len(t, j.Legs, 1)
	assert.Equal(t, "00:10:00", j.Legs[0].Arrival.Format())
	assert.Equal(t, 20*60, int(j.DurationSeconds()))
}

// Scenario 6: disconnected stops return no journey, not an error.
func TestScenarioUnreachable(t *testing.T) {
	fs := &model.FeedSet{
		Stops:  []model.Stop{stop("A", 0, 0), stop("B", 10, 10)},
		Routes: []model.Route{{ID: "r1"}},
		Trips:  []model.Trip{{ID: "t1", RouteID: "r1", ServiceID: "svc"}},
		StopTimes: []model.StopTime{
			stopTime("t1", "A", 1, "08:00:00", "08:00:00"),
			stopTime("t1", "A", 2, "08:01:00", "08:01:00"),
		},
	}
	snap := buildSnapshot(t, fs)
	a, _ := snap.StopByID("A")
	b, _ := snap.StopByID("B")

	j, err := NewWorker(snap).Query(context.Background(), a, b, 7*3600+55*60)
	require.NoError(t, err)
	assert.Nil(t, j)
}

func TestQueryUnknownStopIsInvalidStop(t *testing.T) {
	snap := buildSnapshot(t, &model.FeedSet{Stops: []model.Stop{stop("A", 0, 0)}})
	_, err := NewWorker(snap).Query(context.Background(), StopIndex(99), StopIndex(0), 0)
	require.Error(t, err)
	var invalid *InvalidStopError
	assert.ErrorAs(t, err, &invalid)
}

// Board buffer invariant: a transfer must respect the configured
// minimum dwell, even if a trip departs earlier than that.
func TestBoardBufferRespected(t *testing.T) {
	fs := &model.FeedSet{
		Stops:  []model.Stop{stop("A", 0, 0), stop("X", 0, 0.01), stop("B", 0, 0.02)},
		Routes: []model.Route{{ID: "r1"}, {ID: "r2"}},
		Trips: []model.Trip{
			{ID: "t1", RouteID: "r1", ServiceID: "svc"},
			{ID: "too-tight", RouteID: "r2", ServiceID: "svc"},
			{ID: "catchable", RouteID: "r2", ServiceID: "svc"},
		},
		StopTimes: []model.StopTime{
			stopTime("t1", "A", 1, "08:00:00", "08:00:00"),
			stopTime("t1", "X", 2, "08:10:00", "08:10:00"),
			// departs 10s after arrival: inside the 60s default buffer, unusable.
			stopTime("too-tight", "X", 1, "08:10:10", "08:10:10"),
			stopTime("too-tight", "B", 2, "08:20:00", "08:20:00"),
			stopTime("catchable", "X", 1, "08:11:00", "08:11:00"),
			stopTime("catchable", "B", 2, "08:30:00", "08:30:00"),
		},
	}
	snap := buildSnapshot(t, fs)
	a, _ := snap.StopByID("A")
	b, _ := snap.StopByID("B")

	j, err := NewWorker(snap).Query(context.Background(), a, b, 7*3600+55*60)
	require.NoError(t, err)
	require.NotNil(t, j)
	require.Len(t, j.Legs, 2)
	assert.Equal(t, "catchable", j.Legs[1].TripID)
}
