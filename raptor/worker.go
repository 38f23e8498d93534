package raptor

import (
	"context"
	"math"
	"sort"

	"github.com/transitcore/raptor/geo"
	"github.com/transitcore/raptor/gtfstime"
)

const infinity = gtfstime.Seconds(math.MaxInt32 / 2)

const noTrip TripIndex = -1

// Worker runs one earliest-arrival RAPTOR query (spec §4.3) against a
// single Snapshot. All of its state — tau_k, tau_best, parent pointers,
// marked sets — is private to the Worker and allocated fresh per query;
// the Snapshot itself is never mutated, so many Workers may run
// concurrently over the same Snapshot.
type Worker struct {
	snap        *Snapshot
	maxRounds   int
	boardBuffer gtfstime.Seconds
}

// NewWorker returns a Worker configured with spec §4.3's defaults:
// 5 rounds, a 60s boarding buffer.
func NewWorker(snap *Snapshot) *Worker {
	return &Worker{snap: snap, maxRounds: 5, boardBuffer: 60}
}

func (w *Worker) WithMaxRounds(k int) *Worker {
	w.maxRounds = k
	return w
}

func (w *Worker) WithBoardBuffer(s gtfstime.Seconds) *Worker {
	w.boardBuffer = s
	return w
}

type parentKind int

const (
	parentNone parentKind = iota
	parentBoard
	parentWalk
)

type parentPointer struct {
	kind        parentKind
	fromStop    StopIndex
	trip        TripIndex
	boardIndex  int
	alightIndex int
	depart      gtfstime.Seconds
	arrive      gtfstime.Seconds
}

// query holds one Worker run's mutable search state.
type query struct {
	snap        *Snapshot
	maxRounds   int
	boardBuffer gtfstime.Seconds

	tauK    [][]gtfstime.Seconds
	tauBest []gtfstime.Seconds
	parent  [][]parentPointer

	source StopIndex
	target StopIndex
}

// Query runs the search from source to target departing no earlier than
// t0, returning nil (not an error) if target is unreachable within the
// worker's round budget. Returns *InvalidStopError for an unknown source
// or target. The context is checked for cancellation between rounds,
// never within a round's inner loops (spec §5 "Cancellation").
func (w *Worker) Query(ctx context.Context, source, target StopIndex, t0 gtfstime.Seconds) (*Journey, error) {
	if int(source) < 0 || int(source) >= len(w.snap.Stops) {
		return nil, &InvalidStopError{StopID: "<unknown>"}
	}
	if int(target) < 0 || int(target) >= len(w.snap.Stops) {
		return nil, &InvalidStopError{StopID: "<unknown>"}
	}

	nStops := len(w.snap.Stops)
	q := &query{
		snap:        w.snap,
		maxRounds:   w.maxRounds,
		boardBuffer: w.boardBuffer,
		source:      source,
		target:      target,
	}
	q.tauK = make([][]gtfstime.Seconds, w.maxRounds+1)
	q.parent = make([][]parentPointer, w.maxRounds+1)
	for k := range q.tauK {
		row := make([]gtfstime.Seconds, nStops)
		for i := range row {
			row[i] = infinity
		}
		q.tauK[k] = row
		q.parent[k] = make([]parentPointer, nStops)
	}
	q.tauBest = make([]gtfstime.Seconds, nStops)
	for i := range q.tauBest {
		q.tauBest[i] = infinity
	}

	q.tauK[0][source] = t0
	q.tauBest[source] = t0

	marked := map[StopIndex]bool{source: true}
	bestRound := -1
	if source == target {
		bestRound = 0
	}

	// Initial footpath relaxation from source, not counted as a boarding.
	walkMarked := map[StopIndex]bool{}
	for _, fp := range w.snap.Stops[source].Footpaths {
		cand := t0 + gtfstime.Seconds(fp.WalkSeconds)
		if cand < q.tauBest[fp.To] {
			q.tauK[0][fp.To] = cand
			q.tauBest[fp.To] = cand
			q.parent[0][fp.To] = parentPointer{kind: parentWalk, fromStop: source, depart: t0, arrive: cand}
			walkMarked[fp.To] = true
			if fp.To == target {
				bestRound = 0
			}
		}
	}
	for s := range walkMarked {
		marked[s] = true
	}

	for k := 1; k <= w.maxRounds; k++ {
		select {
		case <-ctx.Done():
			return w.reconstruct(q, bestRound)
		default:
		}

		if len(marked) == 0 {
			break
		}

		routeStarts := collectRouteStarts(w.snap, marked)
		newMarked := map[StopIndex]bool{}

		for r, iStart := range routeStarts {
			route := &w.snap.Routes[r]
			currentTrip := noTrip
			boardIndex := -1

			for i := iStart; i < len(route.StopSequence); i++ {
				s := route.StopSequence[i]

				// Alight (1): never gated on tauK[k-1][s] — a stop first
				// reached this round has tauK[k-1][s] = infinity, and the
				// arrival here comes from the trip boarded earlier in
				// this same scan, not from the previous round.
				if currentTrip != noTrip {
					arr := w.snap.Trips[currentTrip].Arrivals[i]
					if arr < minSeconds(q.tauBest[s], q.tauBest[target]) {
						q.tauK[k][s] = arr
						q.tauBest[s] = arr
						q.parent[k][s] = parentPointer{
							kind:        parentBoard,
							fromStop:    route.StopSequence[boardIndex],
							trip:        currentTrip,
							boardIndex:  boardIndex,
							alightIndex: i,
							depart:      w.snap.Trips[currentTrip].Departures[boardIndex],
							arrive:      arr,
						}
						newMarked[s] = true
						if s == target {
							bestRound = k
						}
					}
				}

				// Board/improve (2), pruned by the A* lower bound (3): a
				// stop that cannot possibly improve on tauBest[target]
				// via boarding here is skipped, but only for boarding —
				// alighting above must never depend on this check.
				if q.tauK[k-1][s]+gtfstime.Seconds(lowerBoundTo(w.snap, s, target)) >= q.tauBest[target] {
					continue
				}

				prev := q.tauK[k-1][s]
				if prev < infinity {
					// The board buffer models minimum dwell after
					// arriving via a previous leg; it does not apply
					// to the query's own initial instant at its own
					// source stop, or trips sampled by the Range Query
					// Orchestrator at exact departure times could never
					// be boarded.
					buffer := w.boardBuffer
					if k == 1 && s == q.source {
						buffer = 0
					}
					if tripIdx, ok := earliestCatchableTrip(w.snap, route, i, prev+buffer); ok {
						if currentTrip == noTrip || w.snap.Trips[tripIdx].Departures[i] < w.snap.Trips[currentTrip].Departures[i] {
							currentTrip = tripIdx
							boardIndex = i
						}
					}
				}
			}
		}

		relaxMarked := map[StopIndex]bool{}
		for s := range newMarked {
			for _, fp := range w.snap.Stops[s].Footpaths {
				cand := q.tauK[k][s] + gtfstime.Seconds(fp.WalkSeconds)
				if cand < q.tauBest[fp.To] {
					q.tauK[k][fp.To] = cand
					q.tauBest[fp.To] = cand
					q.parent[k][fp.To] = parentPointer{kind: parentWalk, fromStop: s, depart: q.tauK[k][s], arrive: cand}
					relaxMarked[fp.To] = true
					if fp.To == target {
						bestRound = k
					}
				}
			}
		}

		marked = map[StopIndex]bool{}
		for s := range newMarked {
			marked[s] = true
		}
		for s := range relaxMarked {
			marked[s] = true
		}
	}

	return w.reconstruct(q, bestRound)
}

func minSeconds(a, b gtfstime.Seconds) gtfstime.Seconds {
	if a < b {
		return a
	}
	return b
}

// collectRouteStarts implements Phase A: for every marked stop, record
// the smallest stop-sequence index at which each route serving it can be
// boarded.
func collectRouteStarts(snap *Snapshot, marked map[StopIndex]bool) map[RouteIndex]int {
	starts := map[RouteIndex]int{}
	for s := range marked {
		for _, r := range snap.StopToRoutes[s] {
			pos, ok := snap.Routes[r].StopPosition(s)
			if !ok {
				continue
			}
			if cur, exists := starts[r]; !exists || pos < cur {
				starts[r] = pos
			}
		}
	}
	return starts
}

// earliestCatchableTrip finds the earliest trip on route whose departure
// at stopIdx is >= threshold, via binary search over route.Trips (sorted
// by departure at stop_sequence[0]; invariant 4 guarantees the same
// relative order holds at every stop index).
func earliestCatchableTrip(snap *Snapshot, route *Route, stopIdx int, threshold gtfstime.Seconds) (TripIndex, bool) {
	trips := route.Trips
	n := sort.Search(len(trips), func(i int) bool {
		return snap.Trips[trips[i]].Departures[stopIdx] >= threshold
	})
	if n == len(trips) {
		return noTrip, false
	}
	return trips[n], true
}

// lowerBoundTo returns an admissible lower bound, in seconds, on travel
// time from s to target — used to prune stops that cannot possibly
// improve on the current best arrival at target (spec §4.3 Phase B.3).
func lowerBoundTo(snap *Snapshot, s, target StopIndex) int {
	if s == target {
		return 0
	}
	return geo.LowerBoundTravelSeconds(snap.Stops[s].Coord, snap.Stops[target].Coord)
}

// reconstruct walks parent pointers backward from (bestRound, target),
// coalesces same-trip board legs, and returns the forward journey. It
// returns nil (NoJourney, not an error) if target was never reached; it
// returns a CorruptIndexError if parent-pointer tracing cannot reach the
// query's source, per spec §7 "Workers never surface partial or
// inconsistent journeys".
func (w *Worker) reconstruct(q *query, bestRound int) (*Journey, error) {
	if bestRound < 0 {
		return nil, nil
	}

	var legs []Leg
	round, stop := bestRound, q.target

	for steps := 0; !(round == 0 && stop == q.source); steps++ {
		if steps > 2*(w.maxRounds+1)+len(w.snap.Stops) {
			return nil, &CorruptIndexError{Reason: "parent pointer chain did not terminate"}
		}

		p := q.parent[round][stop]
		if p.kind == parentNone {
			return nil, &CorruptIndexError{Reason: "missing parent pointer during reconstruction"}
		}

		switch p.kind {
		case parentBoard:
			trip := w.snap.Trips[p.trip]
			route := w.snap.Routes[trip.Route]
			leg := Leg{
				Kind:         LegBoard,
				FromStopID:   w.snap.Stops[p.fromStop].ID,
				FromStopName: w.snap.Stops[p.fromStop].Name,
				FromCoord:    w.snap.Stops[p.fromStop].Coord,
				ToStopID:     w.snap.Stops[stop].ID,
				ToStopName:   w.snap.Stops[stop].Name,
				ToCoord:      w.snap.Stops[stop].Coord,
				Departure:    p.depart,
				Arrival:      p.arrive,
				TripID:       trip.ID,
				RouteID:      route.GTFSRouteID,
				RouteLongID:  route.LongName,
				BoardIndex:   p.boardIndex,
				AlightIndex:  p.alightIndex,
			}
			if shape, ok := w.snap.Shapes[trip.ShapeID]; ok {
				leg.Shape = shapeSlice(shape, leg.FromCoord, leg.ToCoord)
			}
			legs = append(legs, leg)
			stop = p.fromStop
			round = round - 1

		case parentWalk:
			leg := Leg{
				Kind:         LegWalk,
				FromStopID:   w.snap.Stops[p.fromStop].ID,
				FromStopName: w.snap.Stops[p.fromStop].Name,
				FromCoord:    w.snap.Stops[p.fromStop].Coord,
				ToStopID:     w.snap.Stops[stop].ID,
				ToStopName:   w.snap.Stops[stop].Name,
				ToCoord:      w.snap.Stops[stop].Coord,
				Departure:    p.depart,
				Arrival:      p.arrive,
			}
			legs = append(legs, leg)
			stop = p.fromStop
			// Walk legs are relaxed within the same round they were
			// produced in (Phase C of round k, or the k=0 initial
			// relaxation), so the predecessor stop's own tau is also
			// at this round.
		}
	}

	// Reverse into forward order.
	for i, j := 0, len(legs)-1; i < j; i, j = i+1, j-1 {
		legs[i], legs[j] = legs[j], legs[i]
	}

	return &Journey{Legs: coalesceBoardLegs(legs)}, nil
}
