package raptor

import "github.com/transitcore/raptor/geo"

func coord(lat, lon float64) geo.Coordinate {
	return geo.Coordinate{Lat: lat, Lon: lon}
}
