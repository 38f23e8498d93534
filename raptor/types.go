// Package raptor holds the in-memory schedule index and the round-based
// RAPTOR search that answers earliest-arrival transit queries over it.
//
// Everything in this package after BuildSnapshot returns is read-only:
// stop ids are interned to compact integer indices at load time (spec's
// "replace shared mutable caches with explicit arrays" guidance), and a
// Worker's per-query state (tau_k, tau_best, parent pointers) is owned
// exclusively by that Worker and never touches the Snapshot.
package raptor

import (
	"github.com/transitcore/raptor/geo"
	"github.com/transitcore/raptor/gtfstime"
)

// StopIndex is a stop's position in Snapshot.Stops.
type StopIndex int32

// RouteIndex is a route's position in Snapshot.Routes.
type RouteIndex int32

// TripIndex is a trip's position in Snapshot.Trips.
type TripIndex int32

// Footpath is a precomputed walking connection from one stop to another.
type Footpath struct {
	To          StopIndex
	WalkSeconds int
}

// Stop is the compact, query-time representation of a GTFS stop.
type Stop struct {
	ID        string
	Name      string
	AgencyID  string
	Coord     geo.Coordinate
	Footpaths []Footpath
}

// Route is a RAPTOR route: a set of trips sharing an identical ordered
// stop sequence. Two GTFS trips belong to the same Route iff they visit
// the same stops in the same order; the GTFS route_id is folded into the
// key so two GTFS routes with identical stop patterns remain distinct
// (spec's open-question #3: keep them separate for nicer display labels).
type Route struct {
	Key          string
	GTFSRouteID  string
	ShortName    string
	LongName     string
	StopSequence []StopIndex

	// stopPos maps a StopIndex to its earliest position in StopSequence.
	// A route that revisits a stop keeps only the first occurrence, so
	// boarding is always considered there (spec §3).
	stopPos map[StopIndex]int

	// Trips lists this route's trips sorted ascending by departure at
	// stop_sequence[0] (stable). Invariant 4 (no same-route overtaking)
	// guarantees this same relative order holds at every stop index, so
	// a single sorted list serves route_trips_by_stop_sorted for all i.
	Trips []TripIndex
}

// StopPosition returns the index of stop s within the route's stop
// sequence, and whether the route serves that stop at all.
func (r *Route) StopPosition(s StopIndex) (int, bool) {
	i, ok := r.stopPos[s]
	return i, ok
}

// Trip is a single scheduled vehicle run along a Route. Departures[i]
// and Arrivals[i] are seconds-since-service-midnight at
// Route.StopSequence[i]; hour values may exceed 24 for trips that run
// past local midnight.
type Trip struct {
	ID         string
	Route      RouteIndex
	Departures []gtfstime.Seconds
	Arrivals   []gtfstime.Seconds
	ShapeID    string
}

// Snapshot is the immutable, query-time schedule index built by
// BuildSnapshot. A Worker observes exactly one Snapshot for its entire
// run; the Lifecycle Manager is the only writer of the pointer that
// selects the current Snapshot (see Manager in lifecycle.go).
type Snapshot struct {
	Stops  []Stop
	Routes []Route
	Trips  []Trip

	// Shapes holds the optional polyline geometry of a trip's pattern,
	// keyed by GTFS shape_id.
	Shapes map[string][]geo.Coordinate

	stopIndexByID map[string]StopIndex

	// StopToRoutes lists, for each stop, the routes that serve it.
	StopToRoutes [][]RouteIndex

	WindowStart gtfstime.Seconds
	WindowEnd   gtfstime.Seconds

	// Digest is the sha256 of the GTFS source this snapshot was built
	// from; the lifecycle manager uses it to skip redundant rebuilds.
	Digest string
}

// StopByID resolves a GTFS stop_id to its compact index, reporting false
// if the snapshot has no such stop.
func (s *Snapshot) StopByID(id string) (StopIndex, bool) {
	idx, ok := s.stopIndexByID[id]
	return idx, ok
}
