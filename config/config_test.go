package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("empty path yields defaults", func(t *testing.T) {
		cfg, err := Load("")

		require.NoError(t, err)
		require.Equal(t, Default(), cfg)
	})

	t.Run("file values override defaults, the rest survive", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "agent.yaml")
		body := "model: gpt-4-turbo\nmax_steps: 20\nsample_timeout: 30s\n"
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))

		cfg, err := Load(path)

		require.NoError(t, err)
		require.Equal(t, "gpt-4-turbo", cfg.Model)
		require.Equal(t, 20, cfg.MaxSteps)
		require.Equal(t, 30*time.Second, cfg.SampleTimeout.Std())
		require.Equal(t, "python3", cfg.Interpreter, "Unset fields keep their defaults")
		require.Equal(t, 2, cfg.Branching, "Unset fields keep their defaults")
	})

	t.Run("missing file fails", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "ghost.yaml"))

		require.Error(t, err)
	})

	t.Run("bad duration fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "agent.yaml")
		require.NoError(t, os.WriteFile(path, []byte("full_timeout: soon\n"), 0644))

		_, err := Load(path)

		require.Error(t, err)
		require.ErrorContains(t, err, "invalid duration")
	})
}
