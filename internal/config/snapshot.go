package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// Snapshot computes a stable hash of everything that affects the rendered
// generator config. Watch mode uses it to skip re-rendering when only unrelated
// settings (logging, history, events) changed. Run NormalizeConfig and
// ApplyDefaults first so equivalent spellings hash identically.
func (c *Config) Snapshot() string {
	if c == nil {
		return ""
	}
	h := sha256.New()
	w := func(parts ...string) {
		h.Write([]byte(strings.Join(parts, "=")))
		h.Write([]byte{0})
	}
	w("output.dir", c.Output.Dir)
	w("output.format", string(c.Output.Format))
	if c.Site != nil {
		// Struct field order makes the encoding deterministic.
		data, _ := json.Marshal(c.Site)
		w("site", string(data))
	}
	return hex.EncodeToString(h.Sum(nil))
}
