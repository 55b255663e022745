package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/uetop/codify-document/internal/foundation/errors"
	"github.com/uetop/codify-document/internal/site"
)

// ValidateConfig validates tool settings and then the site record. Site warnings
// are logged; the first error-level problem is returned.
func ValidateConfig(cfg *Config) error {
	if err := ValidateSettings(cfg); err != nil {
		return err
	}

	report := cfg.Site.Validate()
	for _, issue := range report.Issues {
		if issue.Severity == site.SeverityWarning {
			slog.Warn("Site configuration warning", "path", issue.Path, "rule", issue.Rule, "detail", issue.Message)
		}
	}
	return report.Err()
}

// ValidateSettings validates everything except the site record.
func ValidateSettings(cfg *Config) error {
	if cfg.Site == nil {
		return errors.ConfigError("site configuration missing").Build()
	}
	if err := validateDurations(cfg); err != nil {
		return err
	}
	if cfg.Output.Format != OutputTS && cfg.Output.Format != OutputJSON {
		return errors.ConfigError("unsupported output format").
			WithContext("path", "output.format").
			WithContext("value", string(cfg.Output.Format)).Build()
	}
	if cfg.Check.Concurrency < 1 {
		return errors.ConfigError("check.concurrency must be at least 1").
			WithContext("path", "check.concurrency").Build()
	}
	if cfg.Check.Retries < 0 {
		return errors.ConfigError("check.retries cannot be negative").
			WithContext("path", "check.retries").Build()
	}
	if cfg.Events.NATSURL != "" && strings.ContainsAny(cfg.Events.Subject, " *>") {
		return errors.ConfigError("events.subject must be a concrete subject without wildcards").
			WithContext("path", "events.subject").
			WithContext("value", cfg.Events.Subject).Build()
	}
	return nil
}

func validateDurations(cfg *Config) error {
	fields := []struct {
		path, value string
		positive    bool
	}{
		{"check.timeout", cfg.Check.Timeout, true},
		{"check.retry_delay", cfg.Check.RetryDelay, true},
		{"watch.debounce", cfg.Watch.Debounce, false},
		{"watch.interval", cfg.Watch.Interval, false},
	}
	for _, f := range fields {
		d, err := time.ParseDuration(f.value)
		if err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "invalid duration").
				WithContext("path", f.path).
				WithContext("value", f.value).Build()
		}
		if d < 0 || (f.positive && d == 0) {
			return errors.ConfigError("duration out of range").
				WithContext("path", f.path).
				WithContext("value", f.value).Build()
		}
	}
	return nil
}
