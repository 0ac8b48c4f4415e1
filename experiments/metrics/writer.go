package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"codecup/searcher"
)

// AgentConfig is one searcher configuration under benchmark.
type AgentConfig struct {
	ID         int
	Model      string
	MaxSteps   int
	DepthLimit int
	Branching  int
}

// SearchRecord is one search run's outcome.
type SearchRecord struct {
	ID      int
	Agent   int // AgentConfig.ID
	Problem string
	searcher.SearchMetric
}

type Writer struct {
	baseDir string
}

// NewWriter creates a timestamped results folder for one experiment.
func NewWriter(name string) (*Writer, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339)
	baseDir := filepath.Join("experiments", name, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) WriteAgentConfigs(configs []AgentConfig) error {
	path := filepath.Join(w.baseDir, "agent_configs.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create agent configs file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	header := []string{"id", "model", "max_steps", "depth_limit", "branching"}
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write agent configs header: %w", err)
	}

	for _, config := range configs {
		row := []string{
			strconv.Itoa(config.ID),
			config.Model,
			strconv.Itoa(config.MaxSteps),
			strconv.Itoa(config.DepthLimit),
			strconv.Itoa(config.Branching),
		}
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write agent config row: %w", err)
		}
	}

	return nil
}

func (w *Writer) WriteSearchRecords(records []SearchRecord) error {
	path := filepath.Join(w.baseDir, "search_records.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create search records file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	header := []string{"id", "agent", "problem", "solved", "steps", "expansions", "simulations", "best_reward", "duration"}
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write search records header: %w", err)
	}

	for _, record := range records {
		row := []string{
			strconv.Itoa(record.ID),
			strconv.Itoa(record.Agent),
			record.Problem,
			strconv.FormatBool(record.Solved),
			strconv.Itoa(record.Steps),
			strconv.Itoa(record.Expansions),
			strconv.Itoa(record.Simulations),
			strconv.FormatFloat(record.BestReward, 'f', 3, 64),
			record.Duration.String(),
		}
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write search record row: %w", err)
		}
	}

	return nil
}
