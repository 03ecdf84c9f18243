package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GroupingRule canonicalizes event names: an event whose full name matches
// Pattern is reported under Replacement instead. Rules are checked in the
// order they appear; the first match wins.
type GroupingRule struct {
	Pattern     string `yaml:"pattern" json:"pattern"`
	Replacement string `yaml:"replacement" json:"replacement"`
}

// FilterConfig controls which normalized records survive into aggregation.
type FilterConfig struct {
	// ExcludeName is a regex; records whose name matches it (anywhere,
	// case-insensitive) are dropped. Empty disables name exclusion.
	ExcludeName string `yaml:"exclude_name" json:"exclude_name"`

	// MaxHours drops records at or above this duration. Records with
	// non-positive durations are always dropped by the standard filter.
	MaxHours float64 `yaml:"max_hours" json:"max_hours"`
}

// ChartStyle is the presentation side of one chart: output size and bar
// color. Titles and data come from the pipeline.
type ChartStyle struct {
	Width  int    `yaml:"width" json:"width"`
	Height int    `yaml:"height" json:"height"`
	Color  string `yaml:"color" json:"color"`
}

// Config is the top-level application configuration.
type Config struct {
	// Grouping is the ordered list of name-grouping rules.
	Grouping []GroupingRule `yaml:"grouping" json:"grouping"`

	// Filter is applied to normalized records before aggregation.
	Filter FilterConfig `yaml:"filter" json:"filter"`

	// Chart is the default style for rendered charts.
	Chart ChartStyle `yaml:"chart" json:"chart"`

	// TopEvents is how many event rows the by-name chart shows.
	TopEvents int `yaml:"top_events" json:"top_events"`
}

// DefaultConfig returns an in-memory default configuration matching the
// filters the tool has always applied: birthdays out, day-long and
// zero-length events out, top five events charted.
func DefaultConfig() *Config {
	return &Config{
		Grouping: []GroupingRule{},
		Filter: FilterConfig{
			ExcludeName: "birthday",
			MaxHours:    24,
		},
		Chart: ChartStyle{
			Width:  900,
			Height: 420,
			Color:  "#db3236",
		},
		TopEvents: 5,
	}
}

// Normalize fills in missing/zero values so partially-filled configs still
// behave correctly.
func (c *Config) Normalize() {
	if c.Grouping == nil {
		c.Grouping = []GroupingRule{}
	}
	if c.Filter.MaxHours <= 0 {
		c.Filter.MaxHours = 24
	}
	if c.Chart.Width <= 0 {
		c.Chart.Width = 900
	}
	if c.Chart.Height <= 0 {
		c.Chart.Height = 420
	}
	if c.Chart.Color == "" {
		c.Chart.Color = "#db3236"
	}
	if c.TopEvents <= 0 {
		c.TopEvents = 5
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written there (0600,
//     parent directory created) and returned.
//   - If the file exists, it is unmarshalled and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Return cfg with the error so the caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the configuration to path: parent directory ensured (0700),
// YAML written via temp file + rename, final permissions 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".calgroup-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
