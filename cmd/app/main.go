// Command app serves /api/signals and /api/backtest and, when
// ingest.schedule is set, runs ingestion followed by analysis on that schedule.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"TazeAI/internal/di"
	"TazeAI/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	checkOnly := flag.Bool("check", false, "validate the config and exit")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if *checkOnly {
		fmt.Printf("config ok: env=%s store=%s tickers=%d profiles=%d\n",
			cfg.Environment, cfg.Store.Backend, len(cfg.Ingest.Tickers), len(cfg.Backtest.Profiles))
		return
	}

	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}
	if err := app.Run(); err != nil {
		cleanup()
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
	cleanup()
}
