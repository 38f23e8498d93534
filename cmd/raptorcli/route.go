package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/transitcore/raptor/gtfstime"
	"github.com/transitcore/raptor/raptor"
)

var routeCmd = &cobra.Command{
	Use:   "route <from_stop_id> <to_stop_id>",
	Short: "Finds journeys between two stops using a freshly built Schedule Index",
	Args:  cobra.ExactArgs(2),
	RunE:  route,
}

var (
	departureTime string
	topN          int
	windowMinutes int
)

func init() {
	routeCmd.Flags().StringVarP(&departureTime, "depart-after", "d", "", "Earliest departure, HH:MM:SS (defaults to now)")
	routeCmd.Flags().IntVarP(&topN, "top", "n", 10, "Maximum number of journeys to return")
	routeCmd.Flags().IntVarP(&windowMinutes, "window", "w", 60, "Range query window, in minutes")
}

func route(cmd *cobra.Command, args []string) error {
	if err := requireGTFSDir(); err != nil {
		return err
	}
	fromID, toID := args[0], args[1]

	ledger, err := openLedger()
	if err != nil {
		return err
	}
	mgr := raptor.NewManager(gtfsDir, ledger)
	if _, err := mgr.Refresh(time.Now()); err != nil {
		return fmt.Errorf("building schedule index: %w", err)
	}

	snap, release, err := mgr.Acquire()
	if err != nil {
		return err
	}
	defer release()

	source, ok := snap.StopByID(fromID)
	if !ok {
		return &raptor.InvalidStopError{StopID: fromID}
	}
	target, ok := snap.StopByID(toID)
	if !ok {
		return &raptor.InvalidStopError{StopID: toID}
	}

	earliest, err := parseDepartAfter(departureTime)
	if err != nil {
		return err
	}

	cfg := raptor.DefaultOrchestratorConfig()
	cfg.TopN = topN
	cfg.WindowSeconds = gtfstime.Seconds(windowMinutes * 60)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Deadline+5*time.Second)
	defer cancel()

	journeys, err := raptor.FindJourneys(ctx, snap, source, target, earliest, cfg)
	if err != nil {
		return err
	}

	type wireJourney struct {
		DurationSeconds int              `json:"DurationSeconds"`
		Legs            []raptor.LegWire `json:"Legs"`
	}
	out := make([]wireJourney, len(journeys))
	for i, j := range journeys {
		out[i] = wireJourney{DurationSeconds: int(j.DurationSeconds()), Legs: j.Wire()}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func parseDepartAfter(s string) (gtfstime.Seconds, error) {
	if s == "" {
		now := time.Now()
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return gtfstime.Seconds(now.Sub(midnight) / time.Second), nil
	}
	return gtfstime.ParseHMS(s)
}
