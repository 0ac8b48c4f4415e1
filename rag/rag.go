package rag

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// Index is a local snippet index over a handbook directory, ranked by
// term-frequency cosine similarity. It implements
// searcher.RetrievalIndex.
type Index struct {
	snippets []snippet
}

type snippet struct {
	name  string
	body  string
	terms map[string]float64
	norm  float64
}

// Load reads every .md and .txt file under dir into the index.
func Load(dir string) (*Index, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read snippet directory: %w", err)
	}

	index := &Index{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".md" && ext != ".txt" {
			continue
		}
		body, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read snippet %s: %w", entry.Name(), err)
		}
		terms, norm := termVector(string(body))
		index.snippets = append(index.snippets, snippet{
			name:  entry.Name(),
			body:  string(body),
			terms: terms,
			norm:  norm,
		})
	}

	log.Info().Int("snippets", len(index.snippets)).Str("dir", dir).Msg("loaded snippet index")
	return index, nil
}

// Retrieve returns the bodies of the topK snippets most similar to the
// query, best first. Snippets with no term overlap are never returned.
func (ix *Index) Retrieve(ctx context.Context, query string, topK int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if topK <= 0 || len(ix.snippets) == 0 {
		return nil, nil
	}

	qTerms, qNorm := termVector(query)
	if qNorm == 0 {
		return nil, nil
	}

	type scored struct {
		body  string
		score float64
	}
	var ranked []scored
	for _, s := range ix.snippets {
		if s.norm == 0 {
			continue
		}
		var dot float64
		for term, count := range qTerms {
			dot += count * s.terms[term]
		}
		if dot == 0 {
			continue
		}
		ranked = append(ranked, scored{body: s.body, score: dot / (qNorm * s.norm)})
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}

	out := make([]string, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.body)
	}
	return out, nil
}

// termVector counts lowercase terms and returns the vector with its
// Euclidean norm.
func termVector(text string) (map[string]float64, float64) {
	terms := make(map[string]float64)
	for _, field := range strings.Fields(strings.ToLower(text)) {
		word := strings.Trim(field, ".,;:!?()[]{}<>`\"'")
		if len(word) < 2 {
			continue
		}
		terms[word]++
	}

	var sum float64
	for _, count := range terms {
		sum += count * count
	}
	return terms, math.Sqrt(sum)
}
