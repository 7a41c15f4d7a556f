package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"TazeAI/internal/di"
	"TazeAI/internal/usecase"
	"TazeAI/pkg/config"
	"TazeAI/pkg/util"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	until := flag.String("until", "", "last training date (YYYY-MM-DD), default model.train_until or yesterday")
	horizon := flag.Int("horizon", 0, "forward horizon in trading rows, default model.horizon_days")
	output := flag.String("output", "", "artifact path, default model.artifact_path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	p := usecase.TrainParams{
		HorizonDays: cfg.Model.HorizonDays,
		Lambda:      cfg.Model.Lambda,
		Output:      cfg.Model.ArtifactPath,
	}
	if *horizon > 0 {
		p.HorizonDays = *horizon
	}
	if *output != "" {
		p.Output = *output
	}
	if s := firstNonEmpty(*until, cfg.Model.TrainUntil); s != "" {
		if p.TrainUntil, err = util.ParseDate(s); err != nil {
			log.Fatalf("invalid train-until %q: %v", s, err)
		}
	}

	uc, cleanup, err := di.InitializeTrain(cfg)
	if err != nil {
		log.Fatalf("train initialization failed: %v", err)
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
	defer cancel()
	res, err := uc.Run(ctx, p)
	if err != nil {
		log.Printf("train failed: %v", err)
		cleanup()
		os.Exit(1)
	}
	log.Printf("model saved to %s: %d examples, %d features, rmse %.5f",
		res.Path, res.Artifact.Examples, len(res.Artifact.FeatureNames), res.Artifact.RMSEInSample)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
