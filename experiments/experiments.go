package experiments

import (
	"context"
	"fmt"

	"codecup/experiments/metrics"
	"codecup/problem"
	"codecup/searcher"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// BuildFunc constructs a searcher for one agent configuration.
type BuildFunc func(cfg metrics.AgentConfig) (*searcher.MCTS, error)

// Benchmark runs every agent config over the dataset's problems and
// stores the results as CSV. Problem order is shuffled so long runs
// interrupted midway still cover a representative slice.
func Benchmark(ctx context.Context, name, dataset string, configs []metrics.AgentConfig, build BuildFunc) error {
	names, err := problem.ListNames(dataset)
	if err != nil {
		return fmt.Errorf("failed to list problems: %w", err)
	}
	if len(names) == 0 {
		return fmt.Errorf("dataset %s contains no problems", dataset)
	}
	rand.Shuffle(len(names), func(i, j int) {
		names[i], names[j] = names[j], names[i]
	})

	log.Info().Str("experiment", name).Int("problems", len(names)).Int("agents", len(configs)).Msg("starting experiment")

	count := 0
	records := []metrics.SearchRecord{}
	for _, cfg := range configs {
		log.Info().Int("agent", cfg.ID).Msg("starting agent config")

		for _, problemName := range names {
			prob, err := problem.LoadFromFolder(dataset, problemName)
			if err != nil {
				return fmt.Errorf("failed to load problem %s: %w", problemName, err)
			}

			m, err := build(cfg)
			if err != nil {
				return fmt.Errorf("failed to build agent %d: %w", cfg.ID, err)
			}

			_, metric, err := m.Search(ctx, prob)
			if err != nil {
				// One broken run should not sink the whole experiment.
				log.Error().Err(err).Str("problem", problemName).Int("agent", cfg.ID).Msg("search run failed")
				continue
			}

			count++
			records = append(records, metrics.SearchRecord{
				ID:           count,
				Agent:        cfg.ID,
				Problem:      problemName,
				SearchMetric: metric,
			})
			log.Info().Str("problem", problemName).Bool("solved", metric.Solved).Float64("best_reward", metric.BestReward).Msg("completed search run")
		}
	}

	log.Info().Str("experiment", name).Msg("completed experiment")

	writer, err := metrics.NewWriter(name)
	if err != nil {
		return fmt.Errorf("failed to create experiment writer: %w", err)
	}
	if err := writer.WriteAgentConfigs(configs); err != nil {
		return fmt.Errorf("failed to store agent configs: %w", err)
	}
	if err := writer.WriteSearchRecords(records); err != nil {
		return fmt.Errorf("failed to store search records: %w", err)
	}
	log.Info().Int("records", len(records)).Msg("stored experiment results")

	return nil
}
