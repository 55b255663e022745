package docs

import (
	"strings"

	"github.com/inful/mdfp"
	"gopkg.in/yaml.v3"
)

// Fields that change without the content changing.
var volatileFields = map[string]struct{}{
	mdfp.FingerprintField: {},
	"lastUpdated":         {},
	"lastmod":             {},
}

// Fingerprint computes the content fingerprint of a page. Volatile fields are
// excluded and the remaining fields are serialized with sorted keys.
func Fingerprint(fields map[string]any, body []byte) (string, error) {
	hashed := make(map[string]any, len(fields))
	for k, v := range fields {
		if _, skip := volatileFields[k]; skip {
			continue
		}
		hashed[k] = v
	}

	header := ""
	if len(hashed) > 0 {
		out, err := yaml.Marshal(hashed)
		if err != nil {
			return "", err
		}
		header = strings.TrimSuffix(string(out), "\n")
	}
	return mdfp.CalculateFingerprintFromParts(header, string(body)), nil
}
