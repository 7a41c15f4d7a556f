package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"TazeAI/internal/di"
	"TazeAI/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	tickers := flag.String("tickers", "", "comma separated tickers, overrides ingest.tickers")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	symbols := cfg.Ingest.Tickers
	if *tickers != "" {
		symbols = config.SplitList(*tickers)
	}

	uc, cleanup, err := di.InitializeIngest(cfg)
	if err != nil {
		log.Fatalf("ingest initialization failed: %v", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sum, err := uc.Run(ctx, symbols)
	if sum != nil {
		log.Printf("ingest: ok=%d skipped=%d failed=%d in %s", len(sum.OK), len(sum.Skipped), len(sum.Failed), sum.Duration)
	}
	if err != nil {
		log.Printf("ingest failed: %v", err)
		cleanup()
		os.Exit(1)
	}
}
