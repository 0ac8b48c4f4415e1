package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration parses YAML values like "10s" or "2m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds the agent's tunable settings.
type Config struct {
	Model         string   `yaml:"model"`
	FastModel     string   `yaml:"fast_model"`
	Interpreter   string   `yaml:"interpreter"`
	Dataset       string   `yaml:"dataset"`
	Snippets      string   `yaml:"snippets"`
	ExportDir     string   `yaml:"export_dir"`
	MaxSteps      int      `yaml:"max_steps"`
	DepthLimit    int      `yaml:"depth_limit"`
	Branching     int      `yaml:"branching"`
	RetrievalTopK int      `yaml:"retrieval_top_k"`
	SampleTimeout Duration `yaml:"sample_timeout"`
	FullTimeout   Duration `yaml:"full_timeout"`
}

func Default() Config {
	return Config{
		Model:         "gpt-4o",
		FastModel:     "gpt-4o-mini",
		Interpreter:   "python3",
		Dataset:       "dataset",
		ExportDir:     "to_submit",
		MaxSteps:      10,
		DepthLimit:    5,
		Branching:     2,
		RetrievalTopK: 2,
		SampleTimeout: Duration(10 * time.Second),
		FullTimeout:   Duration(2 * time.Minute),
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
