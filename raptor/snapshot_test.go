package raptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitcore/raptor/model"
)

func stop(id string, lat, lon float64) model.Stop {
	return model.Stop{ID: id, Name: "Stop " + id, Lat: lat, Lon: lon}
}

func stopTime(tripID, stopID string, seq uint32, arr, dep string) model.StopTime {
	return model.StopTime{TripID: tripID, StopID: stopID, StopSequence: seq, Arrival: arr, Departure: dep}
}

func TestBuildSnapshotGroupsTripsIntoRoutes(t *testing.T) {
	fs := &model.FeedSet{
		Stops:  []model.Stop{stop("A", 0, 0), stop("B", 0, 0.01)},
		Routes: []model.Route{{ID: "r1", ShortName: "1"}},
		Trips: []model.Trip{
			{ID: "t1", RouteID: "r1", ServiceID: "svc"},
			{ID: "t2", RouteID: "r1", ServiceID: "svc"},
		},
		StopTimes: []model.StopTime{
			stopTime("t1", "A", 1, "08:00:00", "08:00:00"),
			stopTime("t1", "B", 2, "08:10:00", "08:10:00"),
			stopTime("t2", "A", 1, "08:15:00", "08:15:00"),
			stopTime("t2", "B", 2, "08:25:00", "08:25:00"),
		},
	}

	snap, err := BuildSnapshot(fs, 0, 100000, "digest")
	require.NoError(t, err)
	require.Len(t, snap.Routes, 1)
	assert.Len(t, snap.Routes[0].Trips, 2)
	assert.Equal(t, "digest", snap.Digest)

	a, ok := snap.StopByID("A")
	require.True(t, ok)
	b, ok := snap.StopByID("B")
	require.True(t, ok)
	pos, ok := snap.Routes[0].StopPosition(a)
	require.True(t, ok)
	assert.Equal(t, 0, pos)
	pos, ok = snap.Routes[0].StopPosition(b)
	require.True(t, ok)
	assert.Equal(t, 1, pos)
}

func TestBuildSnapshotDistinguishesDifferentStopSequences(t *testing.T) {
	fs := &model.FeedSet{
		Stops:  []model.Stop{stop("A", 0, 0), stop("B", 0, 0.01), stop("C", 0, 0.02)},
		Routes: []model.Route{{ID: "r1"}},
		Trips: []model.Trip{
			{ID: "t1", RouteID: "r1", ServiceID: "svc"},
			{ID: "t2", RouteID: "r1", ServiceID: "svc"},
		},
		StopTimes: []model.StopTime{
			stopTime("t1", "A", 1, "08:00:00", "08:00:00"),
			stopTime("t1", "B", 2, "08:10:00", "08:10:00"),
			stopTime("t2", "A", 1, "08:15:00", "08:15:00"),
			stopTime("t2", "C", 2, "08:25:00", "08:25:00"),
		},
	}

	snap, err := BuildSnapshot(fs, 0, 100000, "digest")
	require.NoError(t, err)
	assert.Len(t, snap.Routes, 2)
}

func TestBuildSnapshotWindowFilter(t *testing.T) {
	fs := &model.FeedSet{
		Stops:  []model.Stop{stop("A", 0, 0), stop("B", 0, 0.01)},
		Routes: []model.Route{{ID: "r1"}},
		Trips: []model.Trip{
			{ID: "early", RouteID: "r1", ServiceID: "svc"},
			{ID: "late", RouteID: "r1", ServiceID: "svc"},
		},
		StopTimes: []model.StopTime{
			stopTime("early", "A", 1, "01:00:00", "01:00:00"),
			stopTime("early", "B", 2, "01:10:00", "01:10:00"),
			stopTime("late", "A", 1, "23:00:00", "23:00:00"),
			stopTime("late", "B", 2, "23:10:00", "23:10:00"),
		},
	}

	snap, err := BuildSnapshot(fs, 3600, 7200, "digest")
	require.NoError(t, err)
	require.Len(t, snap.Routes, 0)
}

func TestDropOvertakingTrips(t *testing.T) {
	fs := &model.FeedSet{
		Stops:  []model.Stop{stop("A", 0, 0), stop("B", 0, 0.01)},
		Routes: []model.Route{{ID: "r1"}},
		Trips: []model.Trip{
			{ID: "first", RouteID: "r1", ServiceID: "svc"},
			{ID: "overtaker", RouteID: "r1", ServiceID: "svc"},
		},
		StopTimes: []model.StopTime{
			stopTime("first", "A", 1, "08:00:00", "08:00:00"),
			stopTime("first", "B", 2, "08:30:00", "08:30:00"),
			// departs later at A but arrives earlier at B: an overtake.
			stopTime("overtaker", "A", 1, "08:05:00", "08:05:00"),
			stopTime("overtaker", "B", 2, "08:10:00", "08:10:00"),
		},
	}

	snap, err := BuildSnapshot(fs, 0, 100000, "digest")
	require.NoError(t, err)
	require.Len(t, snap.Routes, 1)
	assert.Len(t, snap.Routes[0].Trips, 1)
	assert.Equal(t, "first", snap.Trips[snap.Routes[0].Trips[0]].ID)
}
