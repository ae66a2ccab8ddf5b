package migration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "migrate.yaml")
	require.NoError(t, os.WriteFile(path, []byte("activities_catalog: data/activities.json\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, 100, cfg.BatchSize)
	require.Equal(t, 500*time.Millisecond, cfg.RateLimitDelay())
	require.Equal(t, "01/01/2025", cfg.ResponsesSince)
	require.Equal(t, "2025/2026", cfg.DefaultAcademicYear)
	require.Equal(t, "Level 2", cfg.DefaultLevel)
	require.Equal(t, "data/activities.json", cfg.ActivitiesCatalog)
}

func TestLoadConfigOverridesAndExclusions(t *testing.T) {
	raw := `
batch_size: 25
rate_limit_delay_ms: 50
exclude_establishments:
  - 5f0000000000000000000001
  - 5f0000000000000000000002
responses_since: 01/09/2024
`
	path := filepath.Join(t.TempDir(), "migrate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, 25, cfg.BatchSize)
	require.Equal(t, 50*time.Millisecond, cfg.RateLimitDelay())
	require.Equal(t, "01/09/2024", cfg.ResponsesSince)
	require.True(t, cfg.IsExcluded("5f0000000000000000000002"))
	require.False(t, cfg.IsExcluded("5f0000000000000000000003"))
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
