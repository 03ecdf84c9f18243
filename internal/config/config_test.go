package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "calgroup.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "birthday", cfg.Filter.ExcludeName)
	assert.Equal(t, 24.0, cfg.Filter.MaxHours)
	assert.Equal(t, 5, cfg.TopEvents)

	// The default file was written and is private.
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calgroup.yaml")
	body := `grouping:
  - pattern: "Standup.*"
    replacement: "Standup"
filter:
  exclude_name: "holiday"
chart:
  color: "#336699"
top_events: 3
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Grouping, 1)
	assert.Equal(t, "Standup.*", cfg.Grouping[0].Pattern)
	assert.Equal(t, "holiday", cfg.Filter.ExcludeName)
	assert.Equal(t, "#336699", cfg.Chart.Color)
	assert.Equal(t, 3, cfg.TopEvents)

	// Normalize filled the gaps.
	assert.Equal(t, 24.0, cfg.Filter.MaxHours)
	assert.Greater(t, cfg.Chart.Width, 0)
	assert.Greater(t, cfg.Chart.Height, 0)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calgroup.yaml")
	require.NoError(t, os.WriteFile(path, []byte("grouping: [unclosed"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadEmptyPath(t *testing.T) {
	_, err := Load("")
	require.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calgroup.yaml")

	in := DefaultConfig()
	in.Grouping = []GroupingRule{{Pattern: "1:1.*", Replacement: "One on ones"}}
	in.Chart.Color = "#000000"
	require.NoError(t, Save(path, in))

	out, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, in.Grouping, out.Grouping)
	assert.Equal(t, "#000000", out.Chart.Color)
}

func TestNormalizeFillsZeroValues(t *testing.T) {
	var cfg Config
	cfg.Normalize()

	assert.NotNil(t, cfg.Grouping)
	assert.Equal(t, 24.0, cfg.Filter.MaxHours)
	assert.Equal(t, 900, cfg.Chart.Width)
	assert.Equal(t, 420, cfg.Chart.Height)
	assert.Equal(t, "#db3236", cfg.Chart.Color)
	assert.Equal(t, 5, cfg.TopEvents)
}
