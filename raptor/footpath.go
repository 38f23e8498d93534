package raptor

import (
	"github.com/transitcore/raptor/geo"
	"github.com/transitcore/raptor/model"
	"github.com/transitcore/raptor/parse"
)

// FootpathConfig tunes the Footpath Builder (spec §4.2).
type FootpathConfig struct {
	RadiusMeters       float64
	WalkingSpeedMPS    float64
	MinTransferSeconds int
	MaxTransferSeconds int
}

// DefaultFootpathConfig matches spec §4.2's stated defaults: a 500m
// walking radius at a brisk pedestrian pace, clamped to [60s, 1200s].
func DefaultFootpathConfig() FootpathConfig {
	return FootpathConfig{
		RadiusMeters:       500,
		WalkingSpeedMPS:    1.4,
		MinTransferSeconds: 60,
		MaxTransferSeconds: 1200,
	}
}

// BuildFootpaths populates every Stop.Footpaths in snap with nearby
// walkable neighbours, then applies any transfers.txt overrides on top.
// Footpaths are always kept symmetric, including overrides: a
// transfer_type=3 (not possible) row removes both directions, and a
// minimum-time override sets both directions to the same value.
func BuildFootpaths(snap *Snapshot, transfers []model.Transfer, cfg FootpathConfig) error {
	n := len(snap.Stops)
	walk := make([]map[StopIndex]int, n)
	for i := range walk {
		walk[i] = map[StopIndex]int{}
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := geo.HaversineMeters(snap.Stops[i].Coord, snap.Stops[j].Coord)
			if d > cfg.RadiusMeters {
				continue
			}
			seconds := clampSeconds(int(d/cfg.WalkingSpeedMPS+0.5), cfg.MinTransferSeconds, cfg.MaxTransferSeconds)
			walk[i][StopIndex(j)] = seconds
			walk[j][StopIndex(i)] = seconds
		}
	}

	for _, t := range transfers {
		from, ok := snap.StopByID(t.FromStopID)
		if !ok {
			continue
		}
		to, ok := snap.StopByID(t.ToStopID)
		if !ok {
			continue
		}
		if from == to {
			continue
		}

		switch t.Type {
		case parse.TransferTypeNotPossible:
			delete(walk[from], to)
			delete(walk[to], from)
		case parse.TransferTypeMinimumTime:
			walk[from][to] = t.MinTransferTime
			walk[to][from] = t.MinTransferTime
		default:
			if _, exists := walk[from][to]; !exists {
				walk[from][to] = cfg.MinTransferSeconds
				walk[to][from] = cfg.MinTransferSeconds
			}
		}
	}

	for i := range snap.Stops {
		footpaths := make([]Footpath, 0, len(walk[i]))
		for to, seconds := range walk[i] {
			footpaths = append(footpaths, Footpath{To: to, WalkSeconds: seconds})
		}
		snap.Stops[i].Footpaths = footpaths
	}

	return nil
}

func clampSeconds(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
