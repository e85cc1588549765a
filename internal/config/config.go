package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/sevanw/episodic/internal/paths"
)

// Config is the full episodic configuration, persisted as TOML at
// ~/.config/episodic/config.toml.
type Config struct {
	Naming   NamingConfig   `mapstructure:"naming"`
	Matching MatchingConfig `mapstructure:"matching"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Scan     ScanConfig     `mapstructure:"scan"`
	Watch    WatchConfig    `mapstructure:"watch"`
	Options  OptionsConfig  `mapstructure:"options"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// NamingConfig controls how destination filenames are rendered
type NamingConfig struct {
	// Template uses {show}, {season:NN}, {episode:NN}, {episode_end:NN},
	// {title} and {ext} placeholders.
	Template string `mapstructure:"template"`
	// Show overrides the series title parsed from filenames when set.
	Show string `mapstructure:"show"`
}

// MatchingConfig carries the fuzzy-match thresholds. These are policy knobs;
// raising accept_threshold trades fewer wrong matches for more reviews.
type MatchingConfig struct {
	AcceptThreshold float64 `mapstructure:"accept_threshold"`
	AmbiguityMargin float64 `mapstructure:"ambiguity_margin"`
	Floor           float64 `mapstructure:"floor"`
	MaxCandidates   int     `mapstructure:"max_candidates"`
}

// CatalogConfig controls episode catalog lookup
type CatalogConfig struct {
	// Provider selects the episode data source. Only "tvmaze" is supported.
	Provider       string `mapstructure:"provider"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// ScanConfig controls directory scanning
type ScanConfig struct {
	// Extensions lists the video file extensions considered, dot included.
	Extensions []string `mapstructure:"extensions"`
	Recursive  bool     `mapstructure:"recursive"`
}

// WatchConfig controls the watch daemon
type WatchConfig struct {
	Directories []string `mapstructure:"directories"`
	// SettleSeconds is how long a new file must stay unchanged before it is
	// picked up; downloads arrive in pieces.
	SettleSeconds int `mapstructure:"settle_seconds"`
}

// OptionsConfig contains general options
type OptionsConfig struct {
	DryRun bool `mapstructure:"dry_run"`
	// RequireApproval gates execution behind the interactive review screen.
	RequireApproval bool `mapstructure:"require_approval"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// DefaultTemplate is the stock naming template.
const DefaultTemplate = "{show} - S{season:NN}E{episode:NN} - {title}{ext}"

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Naming: NamingConfig{
			Template: DefaultTemplate,
			Show:     "",
		},
		Matching: MatchingConfig{
			AcceptThreshold: 0.6,
			AmbiguityMargin: 0.15,
			Floor:           0.3,
			MaxCandidates:   5,
		},
		Catalog: CatalogConfig{
			Provider:       "tvmaze",
			TimeoutSeconds: 10,
		},
		Scan: ScanConfig{
			Extensions: []string{".mkv", ".mp4", ".avi", ".m4v", ".mov", ".wmv", ".ts"},
			Recursive:  true,
		},
		Watch: WatchConfig{
			Directories:   []string{},
			SettleSeconds: 30,
		},
		Options: OptionsConfig{
			DryRun:          false,
			RequireApproval: true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       "",
			MaxSizeMB:  10,
			MaxBackups: 5,
		},
	}
}

// Load loads configuration from file or returns defaults
func Load() (*Config, error) {
	v := viper.New()

	configPath, err := paths.ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("unable to get config path: %w", err)
	}
	v.SetConfigFile(configPath)

	if _, err := os.Stat(configPath); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("unable to read config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to file
func (c *Config) Save() error {
	configFile, err := paths.ConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("unable to create config dir: %w", err)
	}

	return os.WriteFile(configFile, []byte(c.ToTOML()), 0644)
}

// ConfigExists reports whether a config file has been written.
func ConfigExists() bool {
	path, err := paths.ConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

func (c *Config) ToTOML() string {
	return fmt.Sprintf(`# Episodic Configuration
# Generated by: episodic config init

# ============================================================================
# NAMING
# Destination filename template. Placeholders:
#   {show} {season:NN} {episode:NN} {episode_end:NN} {title} {ext}
# ============================================================================
[naming]
template = "%s"

# Fixed series title. Leave empty to use the title parsed from filenames.
show = "%s"

# ============================================================================
# MATCHING
# Fuzzy title match thresholds. Scores range 0.0 - 1.0.
# ============================================================================
[matching]
# Minimum top score for a confident match
accept_threshold = %.2f

# How far the top score must clear the runner-up
ambiguity_margin = %.2f

# Minimum score worth listing as an ambiguous candidate
floor = %.2f

# Candidates shown per ambiguous file
max_candidates = %d

# ============================================================================
# CATALOG
# Episode data source used to verify and title episodes
# ============================================================================
[catalog]
provider = "%s"
timeout_seconds = %d

# ============================================================================
# SCANNING
# ============================================================================
[scan]
extensions = %s
recursive = %v

# ============================================================================
# WATCH MODE
# Directories watched by: episodic watch
# ============================================================================
[watch]
directories = %s
settle_seconds = %d

# ============================================================================
# GENERAL OPTIONS
# ============================================================================
[options]
# Preview mode - never rename anything
dry_run = %v

# Open the interactive review screen before applying a plan
require_approval = %v

# ============================================================================
# LOGGING
# ============================================================================
[logging]
level = "%s"
file = "%s"
max_size_mb = %d
max_backups = %d
`,
		c.Naming.Template,
		c.Naming.Show,
		c.Matching.AcceptThreshold,
		c.Matching.AmbiguityMargin,
		c.Matching.Floor,
		c.Matching.MaxCandidates,
		c.Catalog.Provider,
		c.Catalog.TimeoutSeconds,
		formatStringSlice(c.Scan.Extensions),
		c.Scan.Recursive,
		formatStringSlice(c.Watch.Directories),
		c.Watch.SettleSeconds,
		c.Options.DryRun,
		c.Options.RequireApproval,
		c.Logging.Level,
		c.Logging.File,
		c.Logging.MaxSizeMB,
		c.Logging.MaxBackups,
	)
}

func formatStringSlice(s []string) string {
	if len(s) == 0 {
		return "[]"
	}
	quoted := make([]string, len(s))
	for i, v := range s {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
