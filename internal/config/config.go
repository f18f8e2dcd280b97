package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata" // timezone names must resolve on minimal images

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Source kinds understood by internal/source.
const (
	SourceSample = "sample"
	SourceFile   = "file"
	SourceICS    = "ics"
)

// ICSConfig describes a single ICS subscription feed.
type ICSConfig struct {
	// URL is the ICS subscription endpoint.
	URL string `yaml:"url" json:"url"`
	// ID is an internal identifier used for cache keys and logging.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label.
	Name string `yaml:"name" json:"name"`
}

// SourceConfig selects where the itinerary comes from.
type SourceConfig struct {
	// Kind is one of "sample", "file" or "ics".
	Kind string `yaml:"kind" json:"kind"`

	// Path is the YAML fixture path for kind "file".
	Path string `yaml:"path,omitempty" json:"path,omitempty"`

	// DelayMs simulates backend latency for kind "sample".
	DelayMs int `yaml:"delay_ms,omitempty" json:"delay_ms,omitempty"`

	// ICS lists the feeds for kind "ics".
	ICS []ICSConfig `yaml:"ics,omitempty" json:"ics,omitempty"`
}

// Delay returns DelayMs as a duration.
func (s SourceConfig) Delay() time.Duration {
	return time.Duration(s.DelayMs) * time.Millisecond
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the page and API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone used to decide what "today" is.
	Timezone string `yaml:"timezone" json:"timezone"`

	// WeekStart is the first grid column: "sunday" (default) or "monday".
	WeekStart string `yaml:"week_start" json:"week_start"`

	// RefreshCron is a cron-style schedule (e.g. "*/15 * * * *") for
	// reloading events.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// CacheDir holds the ICS HTTP cache.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// PreviewPath is where -once writes the captured PNG.
	PreviewPath string `yaml:"preview_path" json:"preview_path"`

	Source SourceConfig `yaml:"source" json:"source"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

const (
	defaultListen      = "127.0.0.1:8080"
	defaultTimezone    = "Asia/Makassar"
	defaultWeekStart   = "sunday"
	defaultRefreshCron = "*/15 * * * *"
	defaultLogLevel    = "info"
	defaultCacheDir    = "/var/lib/tripcal/ics-cache"
	defaultPreviewPath = "/var/lib/tripcal/preview.png"
	defaultDelayMs     = 800
)

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      defaultListen,
		Timezone:    defaultTimezone,
		WeekStart:   defaultWeekStart,
		RefreshCron: defaultRefreshCron,
		LogLevel:    defaultLogLevel,
		CacheDir:    defaultCacheDir,
		PreviewPath: defaultPreviewPath,
		Source: SourceConfig{
			Kind:    SourceSample,
			DelayMs: defaultDelayMs,
			ICS:     []ICSConfig{},
		},
		BasicAuth: nil,
	}
}

// Normalize fills in missing/zero values with defaults so that partially
// filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	switch c.WeekStart = strings.ToLower(strings.TrimSpace(c.WeekStart)); c.WeekStart {
	case "monday", "sunday":
		// ok
	default:
		// Unknown value; fall back to sunday to avoid surprising layouts.
		c.WeekStart = defaultWeekStart
	}
	if c.RefreshCron == "" {
		c.RefreshCron = defaultRefreshCron
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.CacheDir == "" {
		c.CacheDir = defaultCacheDir
	}
	if c.PreviewPath == "" {
		c.PreviewPath = defaultPreviewPath
	}
	if c.Source.Kind == "" {
		c.Source.Kind = SourceSample
	}
	c.Source.Kind = strings.ToLower(c.Source.Kind)
	if c.Source.DelayMs < 0 {
		c.Source.DelayMs = 0
	}
	if c.Source.ICS == nil {
		c.Source.ICS = []ICSConfig{}
	}
}

// Validate reports configuration errors Normalize cannot repair.
func (c *Config) Validate() error {
	var errs []error
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone %q: %w", c.Timezone, err))
	}
	switch c.Source.Kind {
	case SourceSample:
	case SourceFile:
		if c.Source.Path == "" {
			errs = append(errs, errors.New("source.path is required for kind file"))
		}
	case SourceICS:
		if len(c.Source.ICS) == 0 {
			errs = append(errs, errors.New("source.ics needs at least one feed for kind ics"))
		}
		for i, f := range c.Source.ICS {
			if f.URL == "" {
				errs = append(errs, fmt.Errorf("source.ics[%d].url is empty", i))
			}
		}
	default:
		errs = append(errs, fmt.Errorf("unknown source kind %q", c.Source.Kind))
	}
	return errors.Join(errs...)
}

// Location resolves Timezone, falling back to time.Local.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// FirstWeekday maps WeekStart to a time.Weekday.
func (c *Config) FirstWeekday() time.Weekday {
	if c.WeekStart == "monday" {
		return time.Monday
	}
	return time.Sunday
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - If the file exists: read YAML and unmarshal into Config
//   - Environment overrides (TRIPCAL_*) are applied last, after loading an
//     optional .env file from the working directory.
//   - The result is normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	cfg, err := loadFile(path)
	if err != nil {
		return cfg, err
	}

	// A missing .env is normal outside development.
	_ = godotenv.Load()
	applyEnv(cfg)
	cfg.Normalize()

	return cfg, nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, fmt.Errorf("write default config: %w", err)
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Normalize()
	return &cfg, nil
}

// applyEnv overrides selected fields from TRIPCAL_* variables.
func applyEnv(c *Config) {
	c.Listen = getEnvOrDefault("TRIPCAL_LISTEN", c.Listen)
	c.Timezone = getEnvOrDefault("TRIPCAL_TIMEZONE", c.Timezone)
	c.LogLevel = getEnvOrDefault("TRIPCAL_LOG_LEVEL", c.LogLevel)
	c.Source.Kind = getEnvOrDefault("TRIPCAL_SOURCE", c.Source.Kind)
	c.Source.Path = getEnvOrDefault("TRIPCAL_SOURCE_PATH", c.Source.Path)
}

// getEnvOrDefault returns the trimmed value of key, or def when unset/blank.
func getEnvOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
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

	tmp, err := os.CreateTemp(dir, ".tripcal-config-*.tmp")
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
