package config

import (
	"github.com/uetop/codify-document/internal/site"
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// Default values for tool settings.
const (
	DefaultDocsDir      = "docs"
	DefaultPublicDir    = "public"
	DefaultOutputDir    = "docs/.vitepress"
	DefaultCheckTimeout = "10s"
	DefaultConcurrency  = 8
	DefaultDebounce     = "500ms"
	DefaultRetryDelay   = "500ms"
	DefaultSubject      = "codify.docs.check"
)

type siteDefaults struct{}

func (siteDefaults) Domain() string { return "site" }

func (siteDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.Site == nil {
		cfg.Site = site.Default()
		return nil
	}
	if cfg.Site.Base == "" {
		cfg.Site.Base = "/"
	}
	if cfg.Site.Lang == "" {
		cfg.Site.Lang = "en-US"
	}
	if cfg.Site.ThemeConfig.Search.Provider == "" {
		cfg.Site.ThemeConfig.Search.Provider = site.SearchLocal
	}
	return nil
}

type docsDefaults struct{}

func (docsDefaults) Domain() string { return "docs" }

func (docsDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.Docs.Dir == "" {
		cfg.Docs.Dir = DefaultDocsDir
	}
	if cfg.Docs.PublicDir == "" {
		cfg.Docs.PublicDir = DefaultPublicDir
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = DefaultOutputDir
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = OutputTS
	}
	return nil
}

type checkDefaults struct{}

func (checkDefaults) Domain() string { return "check" }

func (checkDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.Check.Timeout == "" {
		cfg.Check.Timeout = DefaultCheckTimeout
	}
	if cfg.Check.Concurrency == 0 {
		cfg.Check.Concurrency = DefaultConcurrency
	}
	if cfg.Check.RetryBackoff == "" {
		cfg.Check.RetryBackoff = RetryBackoffLinear
	}
	if cfg.Check.RetryDelay == "" {
		cfg.Check.RetryDelay = DefaultRetryDelay
	}
	if cfg.Watch.Debounce == "" {
		cfg.Watch.Debounce = DefaultDebounce
	}
	if cfg.Watch.Interval == "" {
		cfg.Watch.Interval = "0s"
	}
	return nil
}

type runtimeDefaults struct{}

func (runtimeDefaults) Domain() string { return "runtime" }

func (runtimeDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.Events.Subject == "" {
		cfg.Events.Subject = DefaultSubject
	}
	if cfg.Monitoring.Logging.Level == "" {
		cfg.Monitoring.Logging.Level = LogLevelInfo
	}
	if cfg.Monitoring.Logging.Format == "" {
		cfg.Monitoring.Logging.Format = LogFormatText
	}
	return nil
}

var defaultAppliers = []DefaultApplier{siteDefaults{}, docsDefaults{}, checkDefaults{}, runtimeDefaults{}}

// ApplyDefaults fills every unset field, domain by domain.
func ApplyDefaults(cfg *Config) error {
	for _, a := range defaultAppliers {
		if err := a.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}
