package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// AppName names the project config directory and the user config directory.
const AppName = "mrncopy"

// Config represents mrncopy configuration options
type Config struct {
	// IdentifierWidth is the digit count of a well-formed identifier. Folders
	// carrying a digit run of exactly this width are treated as belonging to
	// some other identifier.
	IdentifierWidth int `yaml:"identifier_width" toml:"identifier_width"`

	// ProgressInterval emits a progress line every N directories
	ProgressInterval int `yaml:"progress_interval" toml:"progress_interval"`

	// ArchiveExtensions lists the extensions whose member names are searched
	ArchiveExtensions []string `yaml:"archive_extensions" toml:"archive_extensions"`

	// Exclude lists substrings (or path prefixes) of folders never descended
	Exclude []string `yaml:"exclude" toml:"exclude"`

	// OutputDir receives the match table, duplicates log and walk audit
	OutputDir string `yaml:"output_dir" toml:"output_dir"`

	// CopyDir is the destination root of the copy phase
	CopyDir string `yaml:"copy_dir" toml:"copy_dir"`

	// MatchFile, DuplicatesFile and AuditFile name the artifacts in OutputDir
	MatchFile      string `yaml:"match_file" toml:"match_file"`
	DuplicatesFile string `yaml:"duplicates_file" toml:"duplicates_file"`
	AuditFile      string `yaml:"audit_file" toml:"audit_file"`

	// AuditDB is the sqlite audit database path (empty disables it)
	AuditDB string `yaml:"audit_db" toml:"audit_db"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level" toml:"log_level"`

	// LogDir is the directory where run logs will be written
	LogDir string `yaml:"log_dir" toml:"log_dir"`

	// MaxConcurrency is the number of identifiers copied in parallel
	MaxConcurrency int `yaml:"max_concurrency" toml:"max_concurrency"`

	// DryRun reports what would be copied without writing anything
	DryRun bool `yaml:"dry_run" toml:"dry_run"`

	// Strict turns copy errors into a failing exit status
	Strict bool `yaml:"strict" toml:"strict"`
}

// fileConfig mirrors Config with pointer fields so that keys present in a
// file override defaults even when set to their zero value.
type fileConfig struct {
	IdentifierWidth   *int      `yaml:"identifier_width" toml:"identifier_width"`
	ProgressInterval  *int      `yaml:"progress_interval" toml:"progress_interval"`
	ArchiveExtensions *[]string `yaml:"archive_extensions" toml:"archive_extensions"`
	Exclude           *[]string `yaml:"exclude" toml:"exclude"`
	OutputDir         *string   `yaml:"output_dir" toml:"output_dir"`
	CopyDir           *string   `yaml:"copy_dir" toml:"copy_dir"`
	MatchFile         *string   `yaml:"match_file" toml:"match_file"`
	DuplicatesFile    *string   `yaml:"duplicates_file" toml:"duplicates_file"`
	AuditFile         *string   `yaml:"audit_file" toml:"audit_file"`
	AuditDB           *string   `yaml:"audit_db" toml:"audit_db"`
	LogLevel          *string   `yaml:"log_level" toml:"log_level"`
	LogDir            *string   `yaml:"log_dir" toml:"log_dir"`
	MaxConcurrency    *int      `yaml:"max_concurrency" toml:"max_concurrency"`
	DryRun            *bool     `yaml:"dry_run" toml:"dry_run"`
	Strict            *bool     `yaml:"strict" toml:"strict"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		IdentifierWidth:   7,
		ProgressInterval:  50,
		ArchiveExtensions: []string{".zip"},
		OutputDir:         ".",
		CopyDir:           "FileCopyResults",
		MatchFile:         "FileCopyDirectory.csv",
		DuplicatesFile:    "duplicates.log",
		AuditFile:         "walk-audit.log",
		LogLevel:          "info",
		LogDir:            ".mrncopy/logs",
		MaxConcurrency:    1,
	}
}

// LoadConfig loads configuration from the specified file path.
// A .toml extension selects TOML, anything else is parsed as YAML.
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, &fc)
	} else {
		err = yaml.Unmarshal(data, &fc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.apply(fc)
	return cfg, nil
}

func (c *Config) apply(fc fileConfig) {
	setInt(&c.IdentifierWidth, fc.IdentifierWidth)
	setInt(&c.ProgressInterval, fc.ProgressInterval)
	setInt(&c.MaxConcurrency, fc.MaxConcurrency)
	if fc.ArchiveExtensions != nil {
		c.ArchiveExtensions = *fc.ArchiveExtensions
	}
	if fc.Exclude != nil {
		c.Exclude = *fc.Exclude
	}
	setString(&c.OutputDir, fc.OutputDir)
	setString(&c.CopyDir, fc.CopyDir)
	setString(&c.MatchFile, fc.MatchFile)
	setString(&c.DuplicatesFile, fc.DuplicatesFile)
	setString(&c.AuditFile, fc.AuditFile)
	setString(&c.AuditDB, fc.AuditDB)
	setString(&c.LogLevel, fc.LogLevel)
	setString(&c.LogDir, fc.LogDir)
	if fc.DryRun != nil {
		c.DryRun = *fc.DryRun
	}
	if fc.Strict != nil {
		c.Strict = *fc.Strict
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// userConfigDir is the per-user config directory.
var userConfigDir = func() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// FindConfig returns the config file that applies in dir: .mrncopy/config.yaml
// (or .toml) in dir first, then config.yaml (or .toml) in the user config
// directory. It returns "" when none exists.
func FindConfig(dir string) string {
	candidates := []string{
		filepath.Join(dir, "."+AppName, "config.yaml"),
		filepath.Join(dir, "."+AppName, "config.toml"),
		filepath.Join(userConfigDir(), "config.yaml"),
		filepath.Join(userConfigDir(), "config.toml"),
	}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// LoadConfigFromDir loads the config that FindConfig selects for dir.
// If there is none, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	path := FindConfig(dir)
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// Overrides carries CLI flag values. Non-nil fields override the config.
type Overrides struct {
	IdentifierWidth   *int
	ProgressInterval  *int
	ArchiveExtensions []string
	Exclude           []string
	OutputDir         *string
	CopyDir           *string
	AuditDB           *string
	LogLevel          *string
	LogDir            *string
	MaxConcurrency    *int
	DryRun            *bool
	Strict            *bool
}

// MergeWithFlags merges CLI flags into the configuration.
// Non-nil flag values override configuration values; exclusion tokens from
// flags are appended to those from the file.
func (c *Config) MergeWithFlags(o Overrides) {
	setInt(&c.IdentifierWidth, o.IdentifierWidth)
	setInt(&c.ProgressInterval, o.ProgressInterval)
	setInt(&c.MaxConcurrency, o.MaxConcurrency)
	if o.ArchiveExtensions != nil {
		c.ArchiveExtensions = o.ArchiveExtensions
	}
	if len(o.Exclude) > 0 {
		c.Exclude = append(append([]string(nil), c.Exclude...), o.Exclude...)
	}
	setString(&c.OutputDir, o.OutputDir)
	setString(&c.CopyDir, o.CopyDir)
	setString(&c.AuditDB, o.AuditDB)
	setString(&c.LogLevel, o.LogLevel)
	setString(&c.LogDir, o.LogDir)
	if o.DryRun != nil {
		c.DryRun = *o.DryRun
	}
	if o.Strict != nil {
		c.Strict = *o.Strict
	}
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	if c.IdentifierWidth < 1 {
		return fmt.Errorf("identifier_width must be > 0, got %d", c.IdentifierWidth)
	}
	if c.ProgressInterval < 1 {
		return fmt.Errorf("progress_interval must be > 0, got %d", c.ProgressInterval)
	}
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be > 0, got %d", c.MaxConcurrency)
	}

	for _, ext := range c.ArchiveExtensions {
		if strings.TrimSpace(strings.TrimPrefix(ext, ".")) == "" {
			return fmt.Errorf("archive_extensions contains an empty extension")
		}
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.CopyDir == "" {
		return fmt.Errorf("copy_dir cannot be empty")
	}
	if c.MatchFile == "" {
		return fmt.Errorf("match_file cannot be empty")
	}
	return nil
}
