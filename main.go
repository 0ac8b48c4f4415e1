package main

import (
	"context"
	"flag"
	"os"

	"codecup/config"
	"codecup/engine"
	"codecup/experiments"
	"codecup/experiments/metrics"
	"codecup/searcher"
	"codecup/solution"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	mode := flag.String("mode", "solve", "solve one problem or bench a problem set")
	configPath := flag.String("config", "", "Path to a YAML config file")
	problemName := flag.String("problem", "", "Problem folder name under the dataset")
	dataset := flag.String("dataset", "", "Dataset directory (overrides config)")
	model := flag.String("model", "", "Generator model (overrides config)")
	steps := flag.Int("steps", 0, "Max search steps (overrides config)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if *dataset != "" {
		cfg.Dataset = *dataset
	}
	if *model != "" {
		cfg.Model = *model
	}
	if *steps > 0 {
		cfg.MaxSteps = *steps
	}

	ctx := context.Background()

	switch *mode {
	case "solve":
		if *problemName == "" {
			log.Fatal().Msg("-problem is required in solve mode")
		}
		session := engine.NewSession(cfg)
		if err := session.Solve(ctx, *problemName); err != nil {
			log.Fatal().Err(err).Msg("solve failed")
		}
	case "bench":
		if err := runBenchmark(ctx, cfg); err != nil {
			log.Fatal().Err(err).Msg("benchmark failed")
		}
	default:
		log.Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}

// runBenchmark compares the configured agent against a wider, shallower
// variant over the whole dataset.
func runBenchmark(ctx context.Context, cfg config.Config) error {
	configs := []metrics.AgentConfig{
		{ID: 1, Model: cfg.Model, MaxSteps: cfg.MaxSteps, DepthLimit: cfg.DepthLimit, Branching: cfg.Branching},
		{ID: 2, Model: cfg.Model, MaxSteps: cfg.MaxSteps, DepthLimit: 3, Branching: 3},
	}

	build := func(ac metrics.AgentConfig) (*searcher.MCTS, error) {
		run := cfg
		run.Model = ac.Model
		run.MaxSteps = ac.MaxSteps
		run.DepthLimit = ac.DepthLimit
		run.Branching = ac.Branching
		return engine.BuildSearcher(run, solution.NewManager())
	}

	return experiments.Benchmark(ctx, "step_budget", cfg.Dataset, configs, build)
}
