package problem

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// Problem is one competitive-programming task loaded from a dataset
// folder. The full input has no expected output; it only exercises the
// timeout tier.
type Problem struct {
	Name             string
	Description      string
	SampleInputPath  string
	SampleOutputPath string
	FullInputPath    string
}

// Expected files under dataset/<name>/.
const (
	statementFile = "statement.md"
	sampleInFile  = "sample.in"
	sampleOutFile = "sample.out"
	fullInFile    = "full.in"
)

// LoadFromFolder reads the problem statement and resolves the test
// file paths under dataset/<name>/.
func LoadFromFolder(dataset, name string) (*Problem, error) {
	dir := filepath.Join(dataset, name)

	statement, err := os.ReadFile(filepath.Join(dir, statementFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read problem statement: %w", err)
	}

	p := &Problem{
		Name:             name,
		Description:      string(statement),
		SampleInputPath:  filepath.Join(dir, sampleInFile),
		SampleOutputPath: filepath.Join(dir, sampleOutFile),
		FullInputPath:    filepath.Join(dir, fullInFile),
	}

	for _, path := range []string{p.SampleInputPath, p.SampleOutputPath, p.FullInputPath} {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("missing test file for %s: %w", name, err)
		}
	}

	log.Debug().Str("problem", name).Msg("loaded problem folder")
	return p, nil
}

// ListNames returns the problem folder names under dataset in lexical
// order.
func ListNames(dataset string) ([]string, error) {
	entries, err := os.ReadDir(dataset)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}
