package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/adbudget-cli/internal/advisor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.SkipRows)
	assert.Equal(t, "Total", cfg.TotalMarker)
	assert.Equal(t, "Total: Account", cfg.AccountRow)
	assert.Equal(t, "--", cfg.Placeholder)
	assert.Equal(t, advisor.DefaultRules(), cfg.Rules())
	assert.True(t, cfg.Extended)
	assert.False(t, cfg.Glyphs)
	assert.Equal(t, filepath.Join(home, ".adbudget", "runs"), cfg.RunsDir)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFileAndEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
skip_rows: 0
account_row: "Account total"
near_average_band: 0.1
increase_factor: 1.5
glyphs: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("ADBUDGET_DECREASE_FACTOR", "0.75")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.SkipRows)
	assert.Equal(t, "Account total", cfg.AccountRow)
	assert.True(t, cfg.Glyphs)

	opt := cfg.AdvisorOptions()
	assert.Equal(t, "Account total", opt.AccountRow)
	assert.Equal(t, 0.1, opt.Rules.NearAverageBand)
	assert.Equal(t, 1.5, opt.Rules.IncreaseFactor)
	assert.Equal(t, 0.75, opt.Rules.DecreaseFactor)
	assert.Equal(t, 1.1, opt.Rules.SlightIncreaseFactor)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.TotalMarker = "Sum"
	cfg.IncreaseFactor = 1.3
	require.NoError(t, Save(cfg, path))

	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Sum", back.TotalMarker)
	assert.Equal(t, 1.3, back.IncreaseFactor)
	assert.Equal(t, cfg.RunsDir, back.RunsDir)
}

func TestLoadPersistedIgnoresEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("increase_factor: 1.5\n"), 0o644))
	t.Setenv("ADBUDGET_DECREASE_FACTOR", "0.75")
	t.Setenv("ADBUDGET_LOG_LEVEL", "debug")

	cfg, err := LoadPersisted(path)
	require.NoError(t, err)
	assert.Equal(t, 1.5, cfg.IncreaseFactor)
	assert.Equal(t, advisor.DefaultRules().DecreaseFactor, cfg.DecreaseFactor)
	assert.Equal(t, "info", cfg.LogLevel)

	// a file that does not exist yet is treated as empty
	cfg, err = LoadPersisted(filepath.Join(t.TempDir(), "new.yaml"))
	require.NoError(t, err)
	assert.Equal(t, advisor.DefaultRules(), cfg.Rules())
}
