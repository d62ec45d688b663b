// Package main implements the staats binary: it runs a survey project
// end to end, from catalog and response data to exported tables.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/staats/staats/internal/app"
	"github.com/staats/staats/internal/config"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var (
		configFile  string
		dataDir     string
		inputPath   string
		inputType   string
		inputTable  string
		display     string
		showVersion bool
		showHelp    bool
	)

	flag.StringVar(&configFile, "config", "", "Path to configuration file (YAML or JSON)")
	flag.StringVar(&dataDir, "data-dir", "", "Base directory for all working files")
	flag.StringVar(&inputPath, "input", "", "Response data file (CSV or SQLite)")
	flag.StringVar(&inputType, "input-type", "", "Input type: csv, sqlite")
	flag.StringVar(&inputTable, "table", "", "Table to read (sqlite input only)")
	flag.StringVar(&display, "display", "", "Percentage layout: vertical, horizontal, both")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showHelp, "help", false, "Show help message")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "staats - Survey tabulation pipeline\n\n")
		fmt.Fprintf(os.Stderr, "Usage: staats [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  staats --data-dir /data/staats --input responses.csv\n")
		fmt.Fprintf(os.Stderr, "  staats --input wave1.db --input-type sqlite --table responses\n")
		fmt.Fprintf(os.Stderr, "  staats --config /etc/staats/config.yaml\n")
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  STAATS_DATA_DIR        Base directory for working files\n")
		fmt.Fprintf(os.Stderr, "  STAATS_INPUT_PATH      Response data file\n")
		fmt.Fprintf(os.Stderr, "  STAATS_OUTPUT_DISPLAY  Percentage layout\n")
		fmt.Fprintf(os.Stderr, "  STAATS_STORAGE_TYPE    Publishing target (none, local, s3)\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("staats version %s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	cfg, err := loadConfig(configFile, dataDir, inputPath, inputType, inputTable, display)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	pipeline, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create pipeline: %v", err)
	}

	printBanner(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	runDir, err := pipeline.Run(ctx)
	if err != nil {
		log.Fatalf("Run failed: %v", err)
	}
	log.Printf("Outputs written to %s", runDir)
}

// loadConfig loads configuration from file, environment, and command line flags.
func loadConfig(configFile, dataDir, inputPath, inputType, inputTable, display string) (*config.Config, error) {
	// A local .env is optional.
	_ = godotenv.Load()

	var cfg *config.Config
	var err error

	if configFile != "" {
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		cfg = config.DefaultConfig()
	}

	config.LoadFromEnv(cfg)

	// Command line flags take highest priority.
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if inputPath != "" {
		cfg.Input.Path = inputPath
	}
	if inputType != "" {
		cfg.Input.Type = inputType
	}
	if inputTable != "" {
		cfg.Input.Table = inputTable
	}
	if display != "" {
		cfg.Output.Display = display
	}

	return cfg, nil
}

// printBanner prints the startup banner with configuration summary.
func printBanner(cfg *config.Config) {
	log.Printf("staats %s", version)
	log.Printf("Configuration:")
	log.Printf("  Data Dir: %s", cfg.DataDir)
	log.Printf("  Project:  %s", cfg.Project.Path)
	log.Printf("  Input:    %s (%s)", cfg.Input.Path, cfg.Input.Type)
	log.Printf("  Display:  %s", cfg.Output.Display)
	log.Printf("  Alpha:    %g", cfg.Tabulation.Alpha)
	log.Printf("  Storage:  %s", cfg.Storage.Type)
}
