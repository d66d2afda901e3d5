package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when no --config flag is given.
const DefaultPath = "~/.config/monthcal/config.yaml"

// DefaultMaxVisible is the number of events shown per day cell before the
// "+N more" indicator takes over.
const DefaultMaxVisible = 3

var (
	ErrEmptyPath = errors.New("config path is empty")
	ErrNilConfig = errors.New("config is nil")
)

// SourceConfig describes one event source. Exactly one of Path or URL is
// expected; URL sources are always ICS feeds.
type SourceConfig struct {
	// ID is stamped on every event loaded from this source.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label.
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
	// Path is a local events file (.json, .yaml/.yml or .ics). "~" is expanded.
	Path string `yaml:"path,omitempty" json:"path,omitempty"`
	// URL is a remote ICS subscription.
	URL string `yaml:"url,omitempty" json:"url,omitempty"`
	// Format overrides the extension-based format detection for Path.
	Format string `yaml:"format,omitempty" json:"format,omitempty"`
}

// ResolvedPath returns Path with a leading "~" expanded.
func (s SourceConfig) ResolvedPath() (string, error) {
	return homedir.Expand(s.Path)
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the web UI/API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// SnapshotConfig controls PNG captures of the rendered month page.
type SnapshotConfig struct {
	// URL defaults to the /calendar page of Listen.
	URL            string `yaml:"url,omitempty" json:"url,omitempty"`
	Output         string `yaml:"output" json:"output"`
	Width          int    `yaml:"width" json:"width"`
	Height         int    `yaml:"height" json:"height"`
	TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the web UI and API.
	Listen string `yaml:"listen" json:"listen"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// MaxVisible caps the events drawn per day cell.
	MaxVisible int `yaml:"max_visible" json:"max_visible"`

	// Reload is a cron spec (e.g. "*/15 * * * *") for re-reading all
	// sources. Empty disables scheduled reloads.
	Reload string `yaml:"reload" json:"reload"`

	// Watch reloads as soon as a local source file changes.
	Watch bool `yaml:"watch" json:"watch"`

	// CacheDir stores downloaded ICS feeds.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	Sources []SourceConfig `yaml:"sources" json:"sources"`

	// BasicAuth, if set, protects every endpoint except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`

	Snapshot SnapshotConfig `yaml:"snapshot" json:"snapshot"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:     "127.0.0.1:8080",
		LogLevel:   "info",
		MaxVisible: DefaultMaxVisible,
		Reload:     "*/15 * * * *",
		Watch:      true,
		CacheDir:   "~/.cache/monthcal/ics",
		Sources: []SourceConfig{
			{ID: "local", Name: "Events", Path: "~/.config/monthcal/events.yaml"},
		},
		Snapshot: SnapshotConfig{
			Output:         "~/.cache/monthcal/preview.png",
			Width:          1280,
			Height:         960,
			TimeoutSeconds: 30,
		},
	}
}

// Normalize fills in missing/zero values so that partially-filled configs
// still behave.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.MaxVisible <= 0 {
		c.MaxVisible = def.MaxVisible
	}
	if c.CacheDir == "" {
		c.CacheDir = def.CacheDir
	}
	if c.Sources == nil {
		c.Sources = []SourceConfig{}
	}
	for i := range c.Sources {
		s := &c.Sources[i]
		if s.ID == "" {
			switch {
			case s.Name != "":
				s.ID = s.Name
			case s.Path != "":
				s.ID = strings.TrimSuffix(filepath.Base(s.Path), filepath.Ext(s.Path))
			default:
				s.ID = fmt.Sprintf("source-%d", i+1)
			}
		}
	}
	if c.Snapshot.Output == "" {
		c.Snapshot.Output = def.Snapshot.Output
	}
	if c.Snapshot.Width <= 0 {
		c.Snapshot.Width = def.Snapshot.Width
	}
	if c.Snapshot.Height <= 0 {
		c.Snapshot.Height = def.Snapshot.Height
	}
	if c.Snapshot.TimeoutSeconds <= 0 {
		c.Snapshot.TimeoutSeconds = def.Snapshot.TimeoutSeconds
	}
}

// Validate reports configuration that Normalize cannot repair.
func (c *Config) Validate() error {
	var errs []error
	for _, s := range c.Sources {
		if (s.Path == "") == (s.URL == "") {
			errs = append(errs, fmt.Errorf("source %q: exactly one of path or url is required", s.ID))
		}
	}
	if c.BasicAuth != nil && (c.BasicAuth.Username == "") != (c.BasicAuth.Password == "") {
		errs = append(errs, errors.New("basic_auth: username and password must both be set"))
	}
	return errors.Join(errs...)
}

// SnapshotURL is the page captured by snapshots.
func (c *Config) SnapshotURL() string {
	if c.Snapshot.URL != "" {
		return c.Snapshot.URL
	}
	return "http://" + c.Listen + "/calendar"
}

// Expand resolves a leading "~" in p.
func Expand(p string) (string, error) {
	return homedir.Expand(p)
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600
//     perms and returned.
//   - If the file exists, it is unmarshalled, normalized and validated.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
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
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600
// permissions, creating the parent directory (0700) if needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return ErrEmptyPath
	}
	if cfg == nil {
		return ErrNilConfig
	}
	path, err := homedir.Expand(path)
	if err != nil {
		return err
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

	tmp, err := os.CreateTemp(dir, ".monthcal-config-*.tmp")
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

// Save is a convenience method delegating to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
