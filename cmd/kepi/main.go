package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/homemade/kepi/sync"
)

var (
	configPath     string
	statePath      string
	forceFull      bool
	recordRequests bool
)

var rootCmd = &cobra.Command{
	Use:   "kepi",
	Short: "Replicate BoldDesk tickets and messages for downstream ingestion",
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a sync against the BoldDesk API",
	Long: `Fetches tickets and their messages from the BoldDesk API and emits
one JSON record per line. Repeated runs only fetch records modified since
the watermark persisted in the state file.`,
	RunE: runSync,
}

var streamsCmd = &cobra.Command{
	Use:   "streams",
	Short: "Print the configured streams as CSV",
	RunE:  runStreams,
}

func init() {
	syncCmd.Flags().StringVar(&configPath, "config", "kepi.yaml", "path to the yaml config file")
	syncCmd.Flags().StringVar(&statePath, "state", "", "path to the state file (overrides config)")
	syncCmd.Flags().BoolVar(&forceFull, "full", false, "ignore persisted watermarks and re-sync from the start date")
	syncCmd.Flags().BoolVar(&recordRequests, "record-requests", false, "record API traffic under testdata/.requests")
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(streamsCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	f, err := os.Open(configPath)
	if err != nil {
		return fmt.Errorf("failed to open config %w", err)
	}
	defer f.Close()

	cfg, err := sync.YAMLConfigUnmarshaler{}.Unmarshal(os.LookupEnv, f)
	if err != nil {
		return err
	}
	if statePath != "" {
		cfg.StatePath = statePath
	}
	if cfg.StatePath == "" {
		cfg.StatePath = "kepi.state.json"
	}

	sc := &sync.SyncContext{Config: cfg, RecordRequests: recordRequests}
	engine := sync.NewEngine(
		sync.NewBoldDeskFetcher(sc),
		sync.FileStateStore{Path: cfg.StatePath},
		sync.JSONLinesWriter{Out: cmd.OutOrStdout()},
		cfg.StartDate,
	)
	engine.ForceFull = forceFull

	return engine.Run(context.Background())
}

func runStreams(cmd *cobra.Command, args []string) error {
	doc, err := sync.FormatStreamDocumentationCSV(sync.GenerateStreamDocumentation(sync.Streams()))
	if err != nil {
		return err
	}
	cmd.Print(doc)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("kepi: %v", err)
	}
}
