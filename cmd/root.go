package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pable/go-hoop-metrics/internal/config"
	"github.com/pable/go-hoop-metrics/internal/logging"
	"github.com/pable/go-hoop-metrics/internal/storage"
)

var (
	dbPath   string
	logLevel string

	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "hoopmetrics",
	Short: "Basketball shot-profile tool",
	Long: `Ingest shot-event CSVs, classify every shot into a court zone, build
multi-granularity player profiles and find players with similar shooting profiles.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) { _ = logger.Sync() },
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to SQLite database (default $HOOPMETRICS_DB or ~/.hoopmetrics/shots.db)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (default $LOG_LEVEL or info)")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(similarCmd)
	rootCmd.AddCommand(zonesCmd)
	rootCmd.AddCommand(distanceCmd)
	rootCmd.AddCommand(trendCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(shellCmd)
}

// setup loads configuration and builds the logger before any command runs.
// Flags given on the command line win over the environment.
func setup(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if dbPath == "" {
		dbPath = cfg.DBPath
	}
	if logLevel == "" {
		logLevel = cfg.LogLevel
	}
	l, err := logging.New(logLevel, cfg.LogEncoding)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	logger = l.With(zap.String("cmd", cmd.Name()))
	return nil
}

// openStore opens the database, creating its directory when needed.
func openStore() (*storage.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}
