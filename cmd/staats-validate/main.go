// Package main implements the staats-validate binary: it checks every
// definition in a project catalog without touching the response data.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/staats/staats/internal/app"
	"github.com/staats/staats/internal/config"
)

func main() {
	var (
		configFile string
		dataDir    string
		project    string
	)

	flag.StringVar(&configFile, "config", "", "Path to configuration file (YAML or JSON)")
	flag.StringVar(&dataDir, "data-dir", "", "Base directory for all working files")
	flag.StringVar(&project, "project", "", "Project catalog database path")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "staats-validate - Check a project catalog\n\n")
		fmt.Fprintf(os.Stderr, "Usage: staats-validate [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	_ = godotenv.Load()

	var cfg *config.Config
	var err error
	if configFile != "" {
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			log.Fatalf("Failed to load config file: %v", err)
		}
	} else {
		cfg = config.DefaultConfig()
	}
	config.LoadFromEnv(cfg)

	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if project != "" {
		cfg.Project.Path = project
	}
	// Validation never reads the response data, but the configuration
	// requires an input path.
	if cfg.Input.Path == "" {
		cfg.Input.Path = "unused"
	}

	pipeline, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create pipeline: %v", err)
	}

	problems, err := pipeline.Validate(context.Background())
	if err != nil {
		log.Fatalf("Validation aborted: %v", err)
	}
	if len(problems) == 0 {
		fmt.Println("OK: project is valid")
		return
	}
	for _, problem := range problems {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", problem)
	}
	os.Exit(1)
}
