// Package geo implements the Geo component (spec.md §2): Haversine
// distance and an admissible lower-bound travel time used by the RAPTOR
// Worker's A* pruning step (spec.md §4.3 phase 3).
//
// Grounded on other_examples' astar.go haversineDistance and the
// graph-builder's walkingSpeed/maxWalkDistance constants, generalized
// into a small reusable package instead of a file-local helper.
package geo

import "math"

const earthRadiusMeters = 6371000

// Coordinate identifies a point by latitude/longitude in degrees.
type Coordinate struct {
	Lat float64
	Lon float64
}

// HaversineMeters returns the great-circle distance between a and b in
// meters.
func HaversineMeters(a, b Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// FastestPossibleSpeedMPS is an upper bound on vehicle speed used to
// derive an admissible (never-overestimating) lower bound on travel
// time for A* pruning. It intentionally sits above realistic urban
// transit speeds so the heuristic never prunes a stop that could still
// yield a faster journey.
const FastestPossibleSpeedMPS = 25.0 // ~90 km/h

// LowerBoundTravelSeconds returns an admissible lower bound, in seconds,
// on the time required to travel between a and b by any combination of
// walking and riding. Used by the RAPTOR Worker to prune stops that
// cannot possibly beat the current best arrival at the target
// (spec.md §4.3 phase 3).
func LowerBoundTravelSeconds(a, b Coordinate) int {
	meters := HaversineMeters(a, b)
	return int(meters / FastestPossibleSpeedMPS)
}
