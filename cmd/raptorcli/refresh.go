package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/transitcore/raptor/raptor"
	"github.com/transitcore/raptor/storage"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Parses GTFS from --gtfs-dir and builds a Schedule Index once",
	RunE:  refresh,
}

var ledgerPath string

func init() {
	refreshCmd.Flags().StringVarP(&ledgerPath, "ledger-dir", "", "", "Directory for an on-disk feed ledger (sqlite); defaults to in-memory")
}

func refresh(cmd *cobra.Command, args []string) error {
	if err := requireGTFSDir(); err != nil {
		return err
	}

	ledger, err := openLedger()
	if err != nil {
		return err
	}

	mgr := raptor.NewManager(gtfsDir, ledger)
	snap, err := mgr.Refresh(time.Now())
	if err != nil {
		return err
	}

	fmt.Printf("built schedule index: %d stops, %d routes, %d trips, window [%s, %s], digest %s\n",
		len(snap.Stops), len(snap.Routes), len(snap.Trips),
		snap.WindowStart.FormatRaw(), snap.WindowEnd.FormatRaw(), snap.Digest)
	return nil
}

func openLedger() (storage.Storage, error) {
	if ledgerPath == "" {
		return storage.NewMemoryStorage(), nil
	}
	return storage.NewSQLiteStorage(storage.SQLiteConfig{OnDisk: true, Directory: ledgerPath})
}
