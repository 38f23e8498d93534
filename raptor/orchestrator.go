package raptor

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/transitcore/raptor/gtfstime"
)

// OrchestratorConfig tunes the Range Query Orchestrator (spec §4.4).
type OrchestratorConfig struct {
	WindowSeconds gtfstime.Seconds
	MaxSamples    int
	TopN          int
	Deadline      time.Duration
	MaxRounds     int
	BoardBuffer   gtfstime.Seconds
}

// DefaultOrchestratorConfig matches spec §4.4's stated defaults.
func DefaultOrchestratorConfig() OrchestratorConfig {
	return OrchestratorConfig{
		WindowSeconds: 3600,
		MaxSamples:    100,
		TopN:          10,
		Deadline:      10 * time.Second,
		MaxRounds:     5,
		BoardBuffer:   60,
	}
}

// FindJourneys samples candidate departure times in
// [earliestDep, earliestDep+window), dispatches a Worker per sample in
// parallel over snap, then dedups and ranks the results (spec §4.4).
// Workers share snap read-only; FindJourneys owns no mutable state
// beyond the per-call result slice it assembles from their outputs.
func FindJourneys(ctx context.Context, snap *Snapshot, source, target StopIndex, earliestDep gtfstime.Seconds, cfg OrchestratorConfig) ([]*Journey, error) {
	if int(source) < 0 || int(source) >= len(snap.Stops) {
		return nil, &InvalidStopError{StopID: "<unknown>"}
	}
	if int(target) < 0 || int(target) >= len(snap.Stops) {
		return nil, &InvalidStopError{StopID: "<unknown>"}
	}

	samples := sampleDepartures(snap, source, earliestDep, cfg.WindowSeconds, cfg.MaxSamples)

	deadlineCtx, cancel := context.WithTimeout(ctx, cfg.Deadline)
	defer cancel()

	var wg sync.WaitGroup
	results := make([]*Journey, len(samples))
	for i, t0 := range samples {
		wg.Add(1)
		go func(i int, t0 gtfstime.Seconds) {
			defer wg.Done()
			worker := NewWorker(snap).WithMaxRounds(cfg.MaxRounds).WithBoardBuffer(cfg.BoardBuffer)
			j, err := worker.Query(deadlineCtx, source, target, t0)
			if err != nil {
				return // a CorruptIndexError from one sample does not fail the others
			}
			results[i] = j
		}(i, t0)
	}
	wg.Wait()

	cutoff := earliestDep + cfg.WindowSeconds
	journeys := make([]*Journey, 0, len(results))
	for _, j := range results {
		if j == nil || len(j.Legs) == 0 {
			continue
		}
		// spec §4.4 step 3: the cut is on the first *boarding's*
		// departure, not the journey's first leg — a walk leg to reach
		// that boarding may start earlier than the window itself.
		if j.FirstBoardDeparture() >= cutoff {
			continue
		}
		journeys = append(journeys, j)
	}

	journeys = dedupeJourneys(journeys)

	sort.SliceStable(journeys, func(i, j int) bool {
		if journeys[i].FirstDeparture() != journeys[j].FirstDeparture() {
			return journeys[i].FirstDeparture() < journeys[j].FirstDeparture()
		}
		return journeys[i].DurationSeconds() < journeys[j].DurationSeconds()
	})

	if cfg.TopN > 0 && len(journeys) > cfg.TopN {
		journeys = journeys[:cfg.TopN]
	}

	return journeys, nil
}

// sampleDepartures enumerates candidate departure instants: every
// departure of every trip at source, or at a stop reachable from source
// by a single footpath (within that footpath's own walk_seconds),
// falling in [earliestDep, earliestDep+window). Capped to maxSamples in
// ascending order (spec §4.4 step 1).
func sampleDepartures(snap *Snapshot, source StopIndex, earliestDep, window gtfstime.Seconds, maxSamples int) []gtfstime.Seconds {
	cutoff := earliestDep + window
	seen := map[gtfstime.Seconds]bool{}
	var times []gtfstime.Seconds

	addFrom := func(stop StopIndex, walkOffset gtfstime.Seconds) {
		for _, r := range snap.StopToRoutes[stop] {
			route := &snap.Routes[r]
			pos, ok := route.StopPosition(stop)
			if !ok {
				continue
			}
			for _, ti := range route.Trips {
				dep := snap.Trips[ti].Departures[pos] - walkOffset
				if dep < earliestDep || dep >= cutoff {
					continue
				}
				if !seen[dep] {
					seen[dep] = true
					times = append(times, dep)
				}
			}
		}
	}

	addFrom(source, 0)
	for _, fp := range snap.Stops[source].Footpaths {
		addFrom(fp.To, gtfstime.Seconds(fp.WalkSeconds))
	}

	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })
	if maxSamples > 0 && len(times) > maxSamples {
		times = times[:maxSamples]
	}
	return times
}

// dedupeJourneys keeps, for each distinct transit signature (or
// first-departure/final-arrival/trip-sequence combination), the journey
// with the earliest first departure, tie-broken by shortest duration
// (spec §4.4 step 4).
func dedupeJourneys(journeys []*Journey) []*Journey {
	best := map[string]*Journey{}
	byTiming := map[string]string{}
	var order []string
	for _, j := range journeys {
		tk := j.FirstDeparture().FormatRaw() + "|" + j.FinalArrival().FormatRaw() + "|"
		for _, leg := range j.Legs {
			if leg.Kind == LegBoard {
				tk += leg.TripID + ";"
			}
		}
		key := j.TransitSignature()
		if k, ok := byTiming[tk]; ok && best[key] == nil {
			key = k
		} else if !ok {
			byTiming[tk] = key
		}
		cur, ok := best[key]
		if !ok {
			best[key] = j
			order = append(order, key)
			continue
		}
		if j.FirstDeparture() < cur.FirstDeparture() ||
			(j.FirstDeparture() == cur.FirstDeparture() && j.DurationSeconds() < cur.DurationSeconds()) {
			best[key] = j
		}
	}
	out := make([]*Journey, 0, len(order))
	for _, k := range order {
		out = append(out, best[k])
	}
	return out
}
