package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyConfig     = "config"
	KeyPage       = "page"
	KeyRoute      = "route"
	KeyLink       = "link"
	KeyOrigin     = "origin"
	KeySection    = "section"
	KeyRunID      = "run_id"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyFormat     = "format"
	KeySnapshot   = "snapshot"
	KeyError      = "error"
)

func Config(p string) slog.Attr       { return slog.String(KeyConfig, p) }
func Page(p string) slog.Attr         { return slog.String(KeyPage, p) }
func Route(r string) slog.Attr        { return slog.String(KeyRoute, r) }
func Link(l string) slog.Attr         { return slog.String(KeyLink, l) }
func Origin(o string) slog.Attr       { return slog.String(KeyOrigin, o) }
func Section(s string) slog.Attr      { return slog.String(KeySection, s) }
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Format(f string) slog.Attr       { return slog.String(KeyFormat, f) }

// Snapshot logs the first 12 characters of a config snapshot hash.
func Snapshot(s string) slog.Attr {
	if len(s) > 12 {
		s = s[:12]
	}
	return slog.String(KeySnapshot, s)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
