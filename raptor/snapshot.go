package raptor

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"github.com/pkg/errors"

	"github.com/transitcore/raptor/geo"
	"github.com/transitcore/raptor/gtfstime"
	"github.com/transitcore/raptor/model"
)

// BuildSnapshot turns a parsed GTFS FeedSet into a queryable Snapshot,
// restricted to trips whose first departure falls within
// [windowStart, windowEnd] (spec §3 "Lifecycle" / §4.1 step 3). digest is
// the sha256 parse.ParseDirectory computed over the source files, carried
// through so the lifecycle manager can tag the snapshot it produces.
func BuildSnapshot(fs *model.FeedSet, windowStart, windowEnd gtfstime.Seconds, digest string) (*Snapshot, error) {
	snap := &Snapshot{
		Shapes:        map[string][]geo.Coordinate{},
		stopIndexByID: map[string]StopIndex{},
		WindowStart:   windowStart,
		WindowEnd:     windowEnd,
		Digest:        digest,
	}

	for _, s := range fs.Stops {
		idx := StopIndex(len(snap.Stops))
		snap.stopIndexByID[s.ID] = idx
		snap.Stops = append(snap.Stops, Stop{
			ID:    s.ID,
			Name:  s.Name,
			Coord: geo.Coordinate{Lat: s.Lat, Lon: s.Lon},
		})
	}

	routesByID := map[string]model.Route{}
	for _, r := range fs.Routes {
		routesByID[r.ID] = r
	}

	stopTimesByTrip := map[string][]model.StopTime{}
	for _, st := range fs.StopTimes {
		stopTimesByTrip[st.TripID] = append(stopTimesByTrip[st.TripID], st)
	}

	tripsByID := map[string]model.Trip{}
	for _, t := range fs.Trips {
		tripsByID[t.ID] = t
	}

	type routeGroup struct {
		route Route
	}
	groups := map[string]*routeGroup{}
	var groupOrder []string

	for _, t := range fs.Trips {
		sts := stopTimesByTrip[t.ID]
		if len(sts) < 2 {
			continue // a trip with fewer than 2 stop_times cannot form a valid leg
		}

		stopSeq := make([]StopIndex, len(sts))
		departures := make([]gtfstime.Seconds, len(sts))
		arrivals := make([]gtfstime.Seconds, len(sts))
		for i, st := range sts {
			idx, ok := snap.stopIndexByID[st.StopID]
			if !ok {
				return nil, errors.Errorf("trip %q references unknown stop %q", t.ID, st.StopID)
			}
			stopSeq[i] = idx

			dep, err := gtfstime.ParseHMS(st.Departure)
			if err != nil {
				return nil, errors.Wrapf(err, "trip %q", t.ID)
			}
			arr, err := gtfstime.ParseHMS(st.Arrival)
			if err != nil {
				return nil, errors.Wrapf(err, "trip %q", t.ID)
			}
			departures[i] = dep
			arrivals[i] = arr
		}

		if departures[0] < windowStart || departures[0] > windowEnd {
			continue // outside the active window: not resident in this snapshot
		}

		key := routeKey(t.RouteID, stopSeq)
		g, ok := groups[key]
		if !ok {
			route := routesByID[t.RouteID]
			g = &routeGroup{route: Route{
				Key:          key,
				GTFSRouteID:  t.RouteID,
				ShortName:    route.ShortName,
				LongName:     route.LongName,
				StopSequence: stopSeq,
			}}
			groups[key] = g
			groupOrder = append(groupOrder, key)
		}

		tripIdx := TripIndex(len(snap.Trips))
		snap.Trips = append(snap.Trips, Trip{
			ID:         t.ID,
			Departures: departures,
			Arrivals:   arrivals,
			ShapeID:    t.ShapeID,
		})
		g.route.Trips = append(g.route.Trips, tripIdx)
	}

	for _, shp := range fs.Shapes {
		snap.Shapes[shp.ShapeID] = append(snap.Shapes[shp.ShapeID], geo.Coordinate{Lat: shp.Lat, Lon: shp.Lon})
	}

	for _, key := range groupOrder {
		g := groups[key]
		route := g.route

		sort.SliceStable(route.Trips, func(i, j int) bool {
			return snap.Trips[route.Trips[i]].Departures[0] < snap.Trips[route.Trips[j]].Departures[0]
		})

		route.Trips = dropOvertakingTrips(snap.Trips, route.Trips)

		route.stopPos = map[StopIndex]int{}
		for i, s := range route.StopSequence {
			if _, seen := route.stopPos[s]; !seen {
				route.stopPos[s] = i
			}
		}

		routeIdx := RouteIndex(len(snap.Routes))
		for _, ti := range route.Trips {
			snap.Trips[ti].Route = routeIdx
		}
		snap.Routes = append(snap.Routes, route)
	}

	snap.StopToRoutes = make([][]RouteIndex, len(snap.Stops))
	for ri, route := range snap.Routes {
		for s := range route.stopPos {
			snap.StopToRoutes[s] = append(snap.StopToRoutes[s], RouteIndex(ri))
		}
	}

	if err := BuildFootpaths(snap, fs.Transfers, DefaultFootpathConfig()); err != nil {
		return nil, err
	}

	return snap, nil
}

// routeKey computes the stable RAPTOR RouteKey for a stop sequence plus
// GTFS route_id: two trips share a Route iff they agree on both.
func routeKey(gtfsRouteID string, stopSeq []StopIndex) string {
	h := sha256.New()
	h.Write([]byte(gtfsRouteID))
	h.Write([]byte{0})
	buf := make([]byte, 4)
	for _, s := range stopSeq {
		buf[0] = byte(s)
		buf[1] = byte(s >> 8)
		buf[2] = byte(s >> 16)
		buf[3] = byte(s >> 24)
		h.Write(buf)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// dropOvertakingTrips enforces invariant 4 (trips on a route never
// overtake one another): given trips sorted by departure at stop index
// 0, it drops any trip whose departure at some later stop index is
// strictly earlier than a predecessor's, logging nothing (the loader is
// silent about these per spec §4.1 "trip dropped").
func dropOvertakingTrips(allTrips []Trip, sorted []TripIndex) []TripIndex {
	if len(sorted) < 2 {
		return sorted
	}
	kept := make([]TripIndex, 0, len(sorted))
	kept = append(kept, sorted[0])
	for _, candidate := range sorted[1:] {
		overtakes := false
		prev := allTrips[kept[len(kept)-1]]
		cur := allTrips[candidate]
		for i := range cur.Departures {
			if cur.Departures[i] < prev.Departures[i] {
				overtakes = true
				break
			}
		}
		if !overtakes {
			kept = append(kept, candidate)
		}
	}
	return kept
}
