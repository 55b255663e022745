package config

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/uetop/codify-document/internal/foundation/errors"
	"github.com/uetop/codify-document/internal/site"
)

// CurrentVersion is the only configuration file version understood by this build.
const CurrentVersion = "1"

// Config is the codify-docs tool configuration. Site is the record handed to the
// generator; everything else drives discovery, rendering and checking.
type Config struct {
	Version    string           `yaml:"version" json:"version"`
	Site       *site.SiteConfig `yaml:"site,omitempty" json:"site,omitempty"`
	Docs       DocsConfig       `yaml:"docs" json:"docs"`
	Output     OutputConfig     `yaml:"output" json:"output"`
	Check      CheckConfig      `yaml:"check" json:"check"`
	Watch      WatchConfig      `yaml:"watch" json:"watch"`
	History    HistoryConfig    `yaml:"history" json:"history"`
	Events     EventsConfig     `yaml:"events" json:"events"`
	Monitoring MonitoringConfig `yaml:"monitoring" json:"monitoring"`

	// baseDir is the directory of the loaded file; relative paths resolve against it.
	baseDir string
}

// DocsConfig locates the markdown sources.
type DocsConfig struct {
	Dir       string   `yaml:"dir" json:"dir"`
	PublicDir string   `yaml:"public_dir" json:"public_dir"` // relative to Dir
	Exclude   []string `yaml:"exclude,omitempty" json:"exclude,omitempty"`
}

// OutputConfig controls where and how the generator config is written.
type OutputConfig struct {
	Dir    string       `yaml:"dir" json:"dir"`
	Format OutputFormat `yaml:"format" json:"format"`
}

// CheckConfig tunes link checking.
type CheckConfig struct {
	External    bool   `yaml:"external" json:"external"`
	Timeout     string `yaml:"timeout" json:"timeout"`
	Concurrency int    `yaml:"concurrency" json:"concurrency"`
	// Retries bounds extra attempts for transient external failures.
	Retries      int              `yaml:"retries" json:"retries"`
	RetryBackoff RetryBackoffMode `yaml:"retry_backoff" json:"retry_backoff"`
	RetryDelay   string           `yaml:"retry_delay" json:"retry_delay"`
}

// WatchConfig tunes watch mode.
type WatchConfig struct {
	Debounce string `yaml:"debounce" json:"debounce"`
	Interval string `yaml:"interval" json:"interval"` // periodic full check; 0 disables
}

// HistoryConfig points at the SQLite run history. An empty path disables it.
type HistoryConfig struct {
	Path string `yaml:"path" json:"path"`
}

// EventsConfig enables NATS publishing of check results.
type EventsConfig struct {
	NATSURL string `yaml:"nats_url" json:"nats_url"`
	Subject string `yaml:"subject" json:"subject"`
}

// MonitoringConfig represents metrics and logging configuration.
type MonitoringConfig struct {
	MetricsAddr string        `yaml:"metrics_addr" json:"metrics_addr"`
	Logging     LoggingConfig `yaml:"logging" json:"logging"`
}

// LoggingConfig represents logging configuration.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level" json:"level"`
	Format LogFormat `yaml:"format" json:"format"`
}

// TimeoutDuration returns the per-request timeout (validated on load).
func (c CheckConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// RetryDelayDuration returns the initial retry delay (validated on load).
func (c CheckConfig) RetryDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.RetryDelay)
	return d
}

func (w WatchConfig) DebounceDuration() time.Duration {
	d, _ := time.ParseDuration(w.Debounce)
	return d
}

func (w WatchConfig) IntervalDuration() time.Duration {
	d, _ := time.ParseDuration(w.Interval)
	return d
}

// ResolvePath makes p absolute relative to the configuration file's directory.
func (c *Config) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.baseDir, p)
}

// DocsDir returns the resolved docs directory.
func (c *Config) DocsDir() string { return c.ResolvePath(c.Docs.Dir) }

// PublicDir returns the resolved public asset directory.
func (c *Config) PublicDir() string {
	if filepath.IsAbs(c.Docs.PublicDir) {
		return c.Docs.PublicDir
	}
	return filepath.Join(c.DocsDir(), c.Docs.PublicDir)
}

// OutputDir returns the resolved generator config directory.
func (c *Config) OutputDir() string { return c.ResolvePath(c.Output.Dir) }

// Load reads, normalizes, defaults and validates a configuration file.
// Files ending in .json are decoded as JSON, everything else as YAML.
func Load(configPath string) (*Config, error) {
	cfg, err := Read(configPath)
	if err != nil {
		return nil, err
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read is Load without validation. Callers that report every issue (the
// validate command) run ValidateConfig or SiteConfig.Validate themselves.
func Read(configPath string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError("configuration file not found").WithContext("path", configPath).Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			WithContext("path", configPath).Build()
	}

	cfg, err := Parse(os.ExpandEnv(string(data)), isJSON(configPath))
	if err != nil {
		if classified, ok := errors.AsClassified(err); ok {
			return nil, classified.WithContext("file", configPath)
		}
		return nil, err
	}
	if abs, absErr := filepath.Abs(filepath.Dir(configPath)); absErr == nil {
		cfg.baseDir = abs
	}

	if err := prepare(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes configuration content without normalizing or validating it.
// Unknown keys are rejected so typos in nav or sidebar blocks surface early.
func Parse(content string, asJSON bool) (*Config, error) {
	var cfg Config
	var err error
	if asJSON {
		dec := json.NewDecoder(strings.NewReader(content))
		dec.DisallowUnknownFields()
		err = dec.Decode(&cfg)
	} else {
		dec := yaml.NewDecoder(bytes.NewReader([]byte(content)))
		dec.KnownFields(true)
		err = dec.Decode(&cfg)
	}
	if err == io.EOF {
		return nil, errors.ConfigError("configuration file is empty").Build()
	}
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to decode configuration").Fatal().Build()
	}
	if cfg.Version != CurrentVersion {
		return nil, errors.ConfigError("unsupported configuration version").
			WithContext("version", cfg.Version).
			WithContext("expected", CurrentVersion).
			Build()
	}
	return &cfg, nil
}

// Finalize runs normalization, defaults and validation on a parsed configuration.
func Finalize(cfg *Config) error {
	if err := prepare(cfg); err != nil {
		return err
	}
	return ValidateConfig(cfg)
}

func prepare(cfg *Config) error {
	res, err := NormalizeConfig(cfg)
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		slog.Warn("Config normalization", "detail", w)
	}
	return ApplyDefaults(cfg)
}

// Init writes an example configuration carrying the Codify site record.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).Build()
	}

	example := &Config{Version: CurrentVersion, Site: site.Default()}
	if err := ApplyDefaults(example); err != nil {
		return err
	}

	var data []byte
	var err error
	if isJSON(configPath) {
		data, err = json.MarshalIndent(example, "", "  ")
		data = append(data, '\n')
	} else {
		data, err = yaml.Marshal(example)
	}
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal example config").Build()
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to create config directory").
				WithContext("path", dir).Build()
		}
	}
	// #nosec G306 -- configuration is not secret
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath).Build()
	}
	return nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
