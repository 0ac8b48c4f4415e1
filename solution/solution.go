package solution

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"codecup/searcher"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Solution is one recorded artifact with its evaluation outcome.
type Solution struct {
	ID         string          `yaml:"id"`
	Problem    string          `yaml:"problem"`
	Code       string          `yaml:"-"`
	Reward     float64         `yaml:"reward"`
	SampleRate float64         `yaml:"sample_rate"`
	Status     searcher.Status `yaml:"status"`
	Depth      int             `yaml:"depth"`
	CreatedAt  time.Time       `yaml:"created_at"`
}

// Manager keeps every artifact a search produced, regardless of score.
// It implements searcher.SolutionRegistry.
type Manager struct {
	mu        sync.Mutex
	solutions []Solution
}

func NewManager() *Manager {
	return &Manager{}
}

// Record stores one resolved artifact with its metadata.
func (m *Manager) Record(artifact string, meta searcher.SolutionMeta) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.solutions = append(m.solutions, Solution{
		ID:         uuid.NewString(),
		Problem:    meta.Problem,
		Code:       artifact,
		Reward:     meta.Reward,
		SampleRate: meta.SampleRate,
		Status:     meta.Status,
		Depth:      meta.Depth,
		CreatedAt:  time.Now().UTC(),
	})
}

// All returns a copy of every recorded solution in insertion order.
func (m *Manager) All() []Solution {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Solution, len(m.solutions))
	copy(out, m.solutions)
	return out
}

// Best returns the highest-reward solution for a problem; earlier
// records win ties.
func (m *Manager) Best(problem string) (Solution, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var best Solution
	found := false
	for _, s := range m.solutions {
		if s.Problem != problem {
			continue
		}
		if !found || s.Reward > best.Reward {
			best = s
			found = true
		}
	}
	return best, found
}

// Export writes the best artifact per problem into dir plus a YAML
// manifest of everything recorded. Per-file failures are aggregated so
// one bad problem does not block the rest.
func (m *Manager) Export(dir string) error {
	solutions := m.All()
	if len(solutions) == 0 {
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	problems := make(map[string]bool)
	for _, s := range solutions {
		problems[s.Problem] = true
	}
	names := make([]string, 0, len(problems))
	for name := range problems {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs *multierror.Error
	for _, name := range names {
		best, _ := m.Best(name)
		path := filepath.Join(dir, name+".py")
		if err := os.WriteFile(path, []byte(best.Code), 0644); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("failed to export %s: %w", name, err))
			continue
		}
		log.Info().Str("problem", name).Float64("reward", best.Reward).Msg("exported best solution")
	}

	manifest, err := yaml.Marshal(solutions)
	if err != nil {
		errs = multierror.Append(errs, fmt.Errorf("failed to marshal manifest: %w", err))
	} else if err := os.WriteFile(filepath.Join(dir, "solutions.yaml"), manifest, 0644); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("failed to write manifest: %w", err))
	}

	return errs.ErrorOrNil()
}
