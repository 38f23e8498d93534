package geo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/transitcore/raptor/geo"
)

func TestHaversineZeroDistance(t *testing.T) {
	p := geo.Coordinate{Lat: 40.0, Lon: -73.0}
	assert.InDelta(t, 0, geo.HaversineMeters(p, p), 1e-6)
}

func TestHaversineKnownDistance(t *testing.T) {
	// Roughly 1 degree of latitude is ~111.2km.
	a := geo.Coordinate{Lat: 0, Lon: 0}
	b := geo.Coordinate{Lat: 1, Lon: 0}
	d := geo.HaversineMeters(a, b)
	assert.InDelta(t, 111195, d, 500)
}

func TestLowerBoundNeverOverestimates(t *testing.T) {
	a := geo.Coordinate{Lat: 47.6062, Lon: -122.3321}
	b := geo.Coordinate{Lat: 47.62, Lon: -122.34}
	lb := geo.LowerBoundTravelSeconds(a, b)
	assert.Greater(t, lb, 0)
	// A pedestrian at 1.4 m/s would take much longer than the bound.
	meters := geo.HaversineMeters(a, b)
	walkSeconds := int(meters / 1.4)
	assert.LessOrEqual(t, lb, walkSeconds)
}
