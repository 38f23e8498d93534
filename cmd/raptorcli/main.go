package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "raptorcli",
	Short:        "RAPTOR transit routing tool",
	Long:         "Builds a Schedule Index from a GTFS feed and answers journey queries against it",
	SilenceUsage: true,
}

var gtfsDir string

func init() {
	rootCmd.PersistentFlags().StringVarP(&gtfsDir, "gtfs-dir", "", "", "Directory containing GTFS static files")
	rootCmd.AddCommand(routeCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func requireGTFSDir() error {
	if gtfsDir == "" {
		return fmt.Errorf("--gtfs-dir is required")
	}
	return nil
}
