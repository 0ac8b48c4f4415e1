package solution

import (
	"os"
	"path/filepath"
	"testing"

	"codecup/searcher"

	"github.com/stretchr/testify/require"
)

func TestManagerRecord(t *testing.T) {
	t.Run("every artifact is kept regardless of score", func(t *testing.T) {
		m := NewManager()

		m.Record("print(1)", searcher.SolutionMeta{Problem: "apples", Reward: 0.0, Status: searcher.StatusFailed})
		m.Record("", searcher.SolutionMeta{Problem: "apples", Reward: 0.0, Status: searcher.StatusFailed})
		m.Record("print(2)", searcher.SolutionMeta{Problem: "apples", Reward: 1.0, Status: searcher.StatusOK})

		all := m.All()
		require.Len(t, all, 3, "Zero-reward and empty artifacts are recorded too")
		require.NotEqual(t, all[0].ID, all[1].ID, "Each record gets its own identity")
		require.False(t, all[0].CreatedAt.IsZero())
	})
}

func TestManagerBest(t *testing.T) {
	t.Run("highest reward wins, earliest on ties", func(t *testing.T) {
		m := NewManager()
		m.Record("first", searcher.SolutionMeta{Problem: "apples", Reward: 0.5})
		m.Record("second", searcher.SolutionMeta{Problem: "apples", Reward: 0.5})
		m.Record("other", searcher.SolutionMeta{Problem: "bananas", Reward: 0.9})

		best, ok := m.Best("apples")

		require.True(t, ok)
		require.Equal(t, "first", best.Code, "Ties resolve to the earliest record")
	})

	t.Run("unknown problem has no best", func(t *testing.T) {
		m := NewManager()

		_, ok := m.Best("ghost")

		require.False(t, ok)
	})
}

func TestManagerExport(t *testing.T) {
	t.Run("best artifact per problem plus manifest", func(t *testing.T) {
		m := NewManager()
		m.Record("print('weak')", searcher.SolutionMeta{Problem: "apples", Reward: 0.2})
		m.Record("print('strong')", searcher.SolutionMeta{Problem: "apples", Reward: 1.0})
		m.Record("print('only')", searcher.SolutionMeta{Problem: "bananas", Reward: -0.2})
		dir := t.TempDir()

		require.NoError(t, m.Export(dir))

		apples, err := os.ReadFile(filepath.Join(dir, "apples.py"))
		require.NoError(t, err)
		require.Equal(t, "print('strong')", string(apples), "The best artifact should be exported")
		require.FileExists(t, filepath.Join(dir, "bananas.py"), "Every problem exports its best, even a weak one")

		manifest, err := os.ReadFile(filepath.Join(dir, "solutions.yaml"))
		require.NoError(t, err)
		require.Contains(t, string(manifest), "apples")
		require.Contains(t, string(manifest), "bananas")
		require.NotContains(t, string(manifest), "print('strong')", "Code stays out of the manifest")
	})

	t.Run("nothing recorded exports nothing", func(t *testing.T) {
		m := NewManager()
		dir := t.TempDir()

		require.NoError(t, m.Export(dir))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Empty(t, entries)
	})
}
