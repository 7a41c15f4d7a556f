package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"TazeAI/internal/di"
	"TazeAI/pkg/config"
	"TazeAI/pkg/report"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	tickers := flag.String("tickers", "", "comma separated tickers, default every dataset symbol")
	xlsx := flag.String("xlsx", "", "spreadsheet path, default backtest.report_path; \"-\" disables")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	uc, cleanup, err := di.InitializeBacktest(cfg)
	if err != nil {
		log.Fatalf("backtest initialization failed: %v", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := uc.Run(ctx, config.SplitList(*tickers))
	if err != nil {
		log.Printf("backtest failed: %v", err)
		cleanup()
		os.Exit(1)
	}
	for sym, reason := range res.Skipped {
		log.Printf("skipped %s: %s", sym, reason)
	}

	out := report.Backtest{GeneratedAt: time.Now(), Reports: res.Reports, Summaries: res.Summaries}
	if err := report.WriteText(os.Stdout, out); err != nil {
		log.Printf("print report: %v", err)
	}

	path := *xlsx
	if path == "" {
		path = cfg.Backtest.ReportPath
	}
	if path != "" && path != "-" {
		if err := report.SaveXLSX(path, out); err != nil {
			log.Printf("export report: %v", err)
			cleanup()
			os.Exit(1)
		}
		log.Printf("report written to %s", path)
	}
}
