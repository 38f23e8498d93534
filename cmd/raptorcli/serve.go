package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/transitcore/raptor/raptor"
	"github.com/transitcore/raptor/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the Lifecycle Manager's hourly refresh loop until interrupted",
	RunE:  serve,
}

var postgresDSN string

func init() {
	serveCmd.Flags().StringVarP(&postgresDSN, "postgres-dsn", "", "", "Postgres DSN for the feed ledger; overrides --ledger-dir")
	serveCmd.Flags().StringVarP(&ledgerPath, "ledger-dir", "", "", "Directory for an on-disk feed ledger (sqlite); defaults to in-memory")
}

func serve(cmd *cobra.Command, args []string) error {
	if err := requireGTFSDir(); err != nil {
		return err
	}

	ledger, err := resolveLedger()
	if err != nil {
		return err
	}

	mgr := raptor.NewManager(gtfsDir, ledger)
	mgr.Observe(func(e raptor.SyncEvent) {
		fmt.Printf("synced at %s, window [%s, %s]\n", e.LastSyncedHour.Format(time.RFC3339), e.WindowStart.FormatRaw(), e.WindowEnd.FormatRaw())
	})

	if _, err := mgr.Refresh(time.Now()); err != nil {
		return fmt.Errorf("initial refresh: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mgr.Run(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	cancel()
	mgr.Stop()
	return nil
}

func resolveLedger() (storage.Storage, error) {
	if postgresDSN != "" {
		return storage.NewPostgresStorage(postgresDSN)
	}
	return openLedger()
}
