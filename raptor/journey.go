package raptor

import (
	"strconv"

	"github.com/transitcore/raptor/geo"
	"github.com/transitcore/raptor/gtfstime"
)

// LegKind distinguishes a scheduled vehicle leg from a walking transfer
// (spec §9: "model as a tagged variant, not a class hierarchy").
type LegKind int

const (
	LegWalk LegKind = iota
	LegBoard
)

// Leg is one segment of a Journey: either a ride on a single trip between
// a board and alight stop, or a walking transfer between two stops.
type Leg struct {
	Kind LegKind

	FromStopID   string
	FromStopName string
	FromCoord    geo.Coordinate

	ToStopID   string
	ToStopName string
	ToCoord    geo.Coordinate

	Departure gtfstime.Seconds
	Arrival   gtfstime.Seconds

	// The following apply only when Kind == LegBoard.
	TripID      string
	RouteID     string
	RouteLongID string
	BoardIndex  int
	AlightIndex int
	Shape       []geo.Coordinate
}

// Journey is a complete itinerary: a time-ordered, contiguous sequence
// of legs from the query's source to its target.
type Journey struct {
	Legs []Leg
}

// FirstDeparture is the departure time of the journey's first leg.
func (j *Journey) FirstDeparture() gtfstime.Seconds {
	return j.Legs[0].Departure
}

// FirstBoardDeparture is the departure time of the journey's first
// boarding — as opposed to FirstDeparture, which may be an earlier walk
// leg's start. Falls back to FirstDeparture for an all-walk journey.
func (j *Journey) FirstBoardDeparture() gtfstime.Seconds {
	for _, leg := range j.Legs {
		if leg.Kind == LegBoard {
			return leg.Departure
		}
	}
	return j.FirstDeparture()
}

// FinalArrival is the arrival time of the journey's last leg.
func (j *Journey) FinalArrival() gtfstime.Seconds {
	return j.Legs[len(j.Legs)-1].Arrival
}

// DurationSeconds is the journey's total elapsed time. Legs carry raw,
// un-canonicalized seconds-since-service-midnight (H may exceed 24), so
// a direct subtraction already accounts for midnight crossings; the
// wrap-aware gtfstime.DurationSeconds is only needed once values have
// been canonicalized to a 24h clock, which happens solely at Wire().
func (j *Journey) DurationSeconds() gtfstime.Seconds {
	return j.FinalArrival() - j.FirstDeparture()
}

// TransitSignature identifies a journey by its sequence of
// (trip_id, board_index, alight_index) tuples, used by the Range Query
// Orchestrator to detect duplicate journeys across samples (spec §4.4).
func (j *Journey) TransitSignature() string {
	sig := ""
	for _, leg := range j.Legs {
		if leg.Kind != LegBoard {
			continue
		}
		sig += leg.TripID + "|" + strconv.Itoa(leg.BoardIndex) + "|" + strconv.Itoa(leg.AlightIndex) + ";"
	}
	return sig
}

// Coord is a plain {lat, lon} pair for wire serialization.
type Coord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// LegWire is the external wire representation of a Leg (spec §6).
type LegWire struct {
	FromStopID     string      `json:"FromStopId"`
	FromStop       string      `json:"FromStop"`
	FromStopCoords Coord       `json:"FromStopCoords"`
	ToStopID       string      `json:"ToStopId"`
	ToStop         string      `json:"ToStop"`
	ToStopCoords   Coord       `json:"ToStopCoords"`
	DepartureTime  string      `json:"DepartureTime"`
	ArrivalTime    string      `json:"ArrivalTime"`
	RouteID        string      `json:"RouteId"`
	RouteLongID    string      `json:"RouteLongId"`
	Shape          [][]float64 `json:"Shape,omitempty"`
}

// Wire renders the journey's legs in the external format, canonicalizing
// every time to 24h wall-clock via modulo 86,400 (spec §6).
func (j *Journey) Wire() []LegWire {
	out := make([]LegWire, len(j.Legs))
	for i, leg := range j.Legs {
		w := LegWire{
			FromStopID:     leg.FromStopID,
			FromStop:       leg.FromStopName,
			FromStopCoords: Coord{Lat: leg.FromCoord.Lat, Lon: leg.FromCoord.Lon},
			ToStopID:       leg.ToStopID,
			ToStop:         leg.ToStopName,
			ToStopCoords:   Coord{Lat: leg.ToCoord.Lat, Lon: leg.ToCoord.Lon},
			DepartureTime:  leg.Departure.Format(),
			ArrivalTime:    leg.Arrival.Format(),
			RouteID:        leg.RouteID,
			RouteLongID:    leg.RouteLongID,
		}
		if len(leg.Shape) > 0 {
			w.Shape = make([][]float64, len(leg.Shape))
			for j, c := range leg.Shape {
				w.Shape[j] = []float64{c.Lat, c.Lon}
			}
		}
		out[i] = w
	}
	return out
}

// coalesceBoardLegs merges consecutive legs that ride the same trip into
// a single leg spanning from the first board index to the last alight
// index (spec §4.3 "Reconstruction").
func coalesceBoardLegs(legs []Leg) []Leg {
	if len(legs) < 2 {
		return legs
	}
	out := make([]Leg, 0, len(legs))
	out = append(out, legs[0])
	for _, leg := range legs[1:] {
		last := &out[len(out)-1]
		if last.Kind == LegBoard && leg.Kind == LegBoard && last.TripID == leg.TripID {
			last.ToStopID = leg.ToStopID
			last.ToStopName = leg.ToStopName
			last.ToCoord = leg.ToCoord
			last.Arrival = leg.Arrival
			last.AlightIndex = leg.AlightIndex
			if len(leg.Shape) > 0 {
				last.Shape = leg.Shape
			}
			continue
		}
		out = append(out, leg)
	}
	return out
}

// shapeSlice extracts the sub-polyline of shape between the points
// nearest to from and to, inclusive (spec §4.3).
func shapeSlice(shape []geo.Coordinate, from, to geo.Coordinate) []geo.Coordinate {
	if len(shape) == 0 {
		return nil
	}
	fromIdx := nearestIndex(shape, from)
	toIdx := nearestIndex(shape, to)
	if fromIdx > toIdx {
		return nil
	}
	return shape[fromIdx : toIdx+1]
}

func nearestIndex(shape []geo.Coordinate, c geo.Coordinate) int {
	best := 0
	bestDist := geo.HaversineMeters(shape[0], c)
	for i := 1; i < len(shape); i++ {
		d := geo.HaversineMeters(shape[i], c)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}
