// Package render writes the site record in the form the external generator loads:
// a TypeScript module (config.mts) or plain JSON (config.json).
package render

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/uetop/codify-document/internal/config"
	"github.com/uetop/codify-document/internal/foundation/errors"
	"github.com/uetop/codify-document/internal/logfields"
	"github.com/uetop/codify-document/internal/metrics"
	"github.com/uetop/codify-document/internal/site"
)

const generatedHeader = "// Code generated by codify-docs. DO NOT EDIT.\n"

// LastUpdatedFile is written next to the generator config by WriteLastUpdated.
const LastUpdatedFile = "lastUpdated.json"

// Result describes one written (or skipped) file.
type Result struct {
	Path    string
	Changed bool
	Bytes   int
}

// Renderer writes generator config files into a directory.
type Renderer struct {
	dir      string
	format   config.OutputFormat
	recorder metrics.Recorder
}

// New creates a renderer for dir in the given format.
func New(dir string, format config.OutputFormat) *Renderer {
	return &Renderer{dir: dir, format: format, recorder: metrics.NoopRecorder{}}
}

// WithRecorder injects a metrics recorder.
func (r *Renderer) WithRecorder(rec metrics.Recorder) *Renderer {
	if rec != nil {
		r.recorder = rec
	}
	return r
}

// FileName returns the generator config file name for format.
func FileName(format config.OutputFormat) string {
	if format == config.OutputJSON {
		return "config.json"
	}
	return "config.mts"
}

// Encode serializes the record for format without writing it.
func Encode(s *site.SiteConfig, format config.OutputFormat) ([]byte, error) {
	body, err := encodeJSON(s)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRender, "failed to encode site config").Build()
	}
	switch format {
	case config.OutputJSON:
		return body, nil
	case config.OutputTS:
		var buf bytes.Buffer
		buf.WriteString(generatedHeader)
		buf.WriteString("export default ")
		buf.Write(body)
		return buf.Bytes(), nil
	default:
		return nil, errors.RenderError("unsupported output format").WithContext("format", string(format)).Build()
	}
}

func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Render writes the generator config. The file is left untouched when its
// content would not change.
func (r *Renderer) Render(s *site.SiteConfig) (*Result, error) {
	data, err := Encode(s, r.format)
	if err != nil {
		r.recorder.IncRender(metrics.ResultFailed)
		return nil, err
	}
	res, err := r.write(FileName(r.format), data)
	if err != nil {
		r.recorder.IncRender(metrics.ResultFailed)
		return nil, err
	}
	if res.Changed {
		r.recorder.IncRender(metrics.ResultSuccess)
		slog.Info("Generator config written", logfields.Path(res.Path), logfields.Format(string(r.format)), "bytes", res.Bytes)
	} else {
		r.recorder.IncRender(metrics.ResultUnchanged)
		slog.Debug("Generator config unchanged", logfields.Path(res.Path))
	}
	return res, nil
}

// WriteLastUpdated writes route -> RFC 3339 timestamp pairs as JSON, keys sorted.
func (r *Renderer) WriteLastUpdated(times map[string]time.Time) (*Result, error) {
	out := make(map[string]string, len(times))
	for route, t := range times {
		out[route] = t.UTC().Format(time.RFC3339)
	}
	data, err := encodeJSON(out)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRender, "failed to encode last-updated data").Build()
	}
	return r.write(LastUpdatedFile, data)
}

// write stores data atomically via a temp file in the target directory.
func (r *Renderer) write(name string, data []byte) (*Result, error) {
	path := filepath.Join(r.dir, name)
	res := &Result{Path: path, Bytes: len(data)}

	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, data) {
		return res, nil
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to create output directory").
			WithContext("path", r.dir).Build()
	}

	tmp, err := os.CreateTemp(r.dir, "."+name+".*.tmp")
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to create temp file").
			WithContext("path", r.dir).Build()
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to write temp file").
			WithContext("path", tmpName).Build()
	}
	if err := tmp.Close(); err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to close temp file").
			WithContext("path", tmpName).Build()
	}
	// #nosec G302 -- generated config is read by the site build
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to set file mode").Build()
	}
	if err := os.Rename(tmpName, path); err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to move file into place").
			WithContext("path", path).Build()
	}
	res.Changed = true
	return res, nil
}
