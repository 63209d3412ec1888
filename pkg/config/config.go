package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// MaxPageSize is the largest page the YouTube playlistItems endpoint serves
const MaxPageSize = 50

// Config holds all configuration options for a relink run
type Config struct {
	// YouTube API settings
	YouTube YouTubeConfig `yaml:"youtube" json:"youtube"`

	// Which substrings get rewritten, and into what
	Rewrite RewriteConfig `yaml:"rewrite" json:"rewrite"`

	// Per-run behaviour
	Run RunConfig `yaml:"run" json:"run"`

	// Durable state locations
	State StateConfig `yaml:"state" json:"state"`

	// Read pacing
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// YouTubeConfig holds YouTube Data API settings
type YouTubeConfig struct {
	APIBaseURL string        `yaml:"api_base_url" json:"api_base_url"`
	PlaylistID string        `yaml:"playlist_id" json:"playlist_id"`
	Account    string        `yaml:"account" json:"account"`
	Timeout    time.Duration `yaml:"timeout" json:"timeout"`
}

// RewriteConfig holds the ordered target substrings and their replacement
type RewriteConfig struct {
	Targets     []string `yaml:"targets" json:"targets"`
	Replacement string   `yaml:"replacement" json:"replacement"`
}

// RunConfig holds per-run limits
type RunConfig struct {
	// MaxPerRun caps processed items per run; 0 means unbounded
	MaxPerRun  int           `yaml:"max_per_run" json:"max_per_run"`
	DryRun     bool          `yaml:"dry_run" json:"dry_run"`
	WriteDelay time.Duration `yaml:"write_delay" json:"write_delay"`
	PageSize   int           `yaml:"page_size" json:"page_size"`
}

// StateConfig holds checkpoint and backup file locations. Empty paths
// resolve to files in the platform data directory.
type StateConfig struct {
	CheckpointFile string `yaml:"checkpoint_file" json:"checkpoint_file"`
	BackupFile     string `yaml:"backup_file" json:"backup_file"`
}

// RateLimitConfig holds read pacing configuration
type RateLimitConfig struct {
	// ReadsPerMinute paces list/get calls; 0 disables pacing
	ReadsPerMinute int `yaml:"reads_per_minute" json:"reads_per_minute"`
	Burst          int `yaml:"burst" json:"burst"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		YouTube: YouTubeConfig{
			APIBaseURL: "https://www.googleapis.com/youtube/v3",
			Timeout:    30 * time.Second,
		},
		Rewrite: RewriteConfig{
			Targets: []string{
				"https://discord.com/invite/fUKMN3q",
				"https://discord.gg/4ZgjkRx",
			},
			Replacement: "https://discord.gg/mrJnesCk2Z",
		},
		Run: RunConfig{
			MaxPerRun:  200,
			DryRun:     false,
			WriteDelay: time.Second,
			PageSize:   MaxPageSize,
		},
		RateLimit: RateLimitConfig{
			ReadsPerMinute: 300,
			Burst:          10,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	if v := os.Getenv("YTRELINK_API_BASE_URL"); v != "" {
		c.YouTube.APIBaseURL = v
	}
	if v := os.Getenv("YTRELINK_PLAYLIST_ID"); v != "" {
		c.YouTube.PlaylistID = v
	}
	if v := os.Getenv("YTRELINK_ACCOUNT"); v != "" {
		c.YouTube.Account = v
	}
	if v := os.Getenv("YTRELINK_TARGETS"); v != "" {
		c.Rewrite.Targets = splitList(v)
	}
	if v := os.Getenv("YTRELINK_REPLACEMENT"); v != "" {
		c.Rewrite.Replacement = v
	}
	if v := os.Getenv("YTRELINK_MAX_PER_RUN"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("YTRELINK_MAX_PER_RUN: %w", err))
		} else {
			c.Run.MaxPerRun = n
		}
	}
	if v := os.Getenv("YTRELINK_DRY_RUN"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("YTRELINK_DRY_RUN: %w", err))
		} else {
			c.Run.DryRun = b
		}
	}
	if v := os.Getenv("YTRELINK_WRITE_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("YTRELINK_WRITE_DELAY: %w", err))
		} else {
			c.Run.WriteDelay = d
		}
	}
	if v := os.Getenv("YTRELINK_CHECKPOINT_FILE"); v != "" {
		c.State.CheckpointFile = v
	}
	if v := os.Getenv("YTRELINK_BACKUP_FILE"); v != "" {
		c.State.BackupFile = v
	}
	if v := os.Getenv("YTRELINK_READS_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("YTRELINK_READS_PER_MINUTE: %w", err))
		} else {
			c.RateLimit.ReadsPerMinute = n
		}
	}
	if v := os.Getenv("YTRELINK_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("YTRELINK_LOG_FILE"); v != "" {
		c.Logging.File = v
	}

	return errors.Join(errs...)
}

// splitList splits a comma separated env value, dropping blanks
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home, _ := os.UserHomeDir()
	locations := []string{
		".ytrelink.yaml",
		".ytrelink.yml",
		"ytrelink.yaml",
	}
	if home != "" {
		locations = append(locations,
			filepath.Join(home, ".config", "ytrelink", "config.yaml"),
			filepath.Join(home, ".config", "ytrelink", "config.yml"),
			filepath.Join(home, ".ytrelink.yaml"),
		)
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.YouTube.APIBaseURL == "" {
		errs = append(errs, errors.New("youtube api base url is required"))
	}
	if c.YouTube.Timeout <= 0 {
		errs = append(errs, errors.New("youtube timeout must be positive"))
	}

	if len(c.Rewrite.Targets) == 0 {
		errs = append(errs, errors.New("at least one rewrite target is required"))
	}
	for i, target := range c.Rewrite.Targets {
		if target == "" {
			errs = append(errs, fmt.Errorf("rewrite target %d is empty", i))
			continue
		}
		if c.Rewrite.Replacement != "" && strings.Contains(c.Rewrite.Replacement, target) {
			errs = append(errs, fmt.Errorf("replacement contains target %q, rewrite would not be idempotent", target))
		}
	}
	if c.Rewrite.Replacement == "" {
		errs = append(errs, errors.New("replacement is required"))
	}

	if c.Run.MaxPerRun < 0 {
		errs = append(errs, errors.New("max per run cannot be negative"))
	}
	if c.Run.WriteDelay < 0 {
		errs = append(errs, errors.New("write delay cannot be negative"))
	}
	if c.Run.PageSize <= 0 || c.Run.PageSize > MaxPageSize {
		errs = append(errs, fmt.Errorf("page size must be between 1 and %d", MaxPageSize))
	}

	if c.RateLimit.ReadsPerMinute < 0 {
		errs = append(errs, errors.New("reads per minute cannot be negative"))
	}
	if c.RateLimit.Burst < 0 {
		errs = append(errs, errors.New("burst cannot be negative"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Only keys present in the map are applied.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if v, ok := flags["playlist"].(string); ok && v != "" {
		c.YouTube.PlaylistID = v
	}
	if v, ok := flags["account"].(string); ok && v != "" {
		c.YouTube.Account = v
	}
	if v, ok := flags["targets"].([]string); ok && len(v) > 0 {
		c.Rewrite.Targets = v
	}
	if v, ok := flags["replacement"].(string); ok && v != "" {
		c.Rewrite.Replacement = v
	}
	if v, ok := flags["max-per-run"].(int); ok && v >= 0 {
		c.Run.MaxPerRun = v
	}
	if v, ok := flags["dry-run"].(bool); ok {
		c.Run.DryRun = v
	}
	if v, ok := flags["write-delay"].(time.Duration); ok && v >= 0 {
		c.Run.WriteDelay = v
	}
	if v, ok := flags["checkpoint-file"].(string); ok && v != "" {
		c.State.CheckpointFile = v
	}
	if v, ok := flags["backup-file"].(string); ok && v != "" {
		c.State.BackupFile = v
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = v
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Missing .env files are fine
	_ = godotenv.Load(".env")
	if home, err := os.UserHomeDir(); err == nil {
		_ = godotenv.Load(filepath.Join(home, ".ytrelink.env"))
	}

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
