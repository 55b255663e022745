package render

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uetop/codify-document/internal/config"
	"github.com/uetop/codify-document/internal/site"
)

func TestEncode_TS(t *testing.T) {
	data, err := Encode(site.Default(), config.OutputTS)
	require.NoError(t, err)

	text := string(data)
	assert.True(t, strings.HasPrefix(text, generatedHeader+"export default {\n"))
	assert.Contains(t, text, `"base": "/codify-api/"`)
	assert.Contains(t, text, `"ignoreDeadLinks": true`)
	assert.Contains(t, text, `"provider": "local"`)

	// Everything after the export keyword is the JSON record.
	literal := strings.TrimPrefix(text, generatedHeader+"export default ")
	var decoded site.SiteConfig
	require.NoError(t, json.Unmarshal([]byte(literal), &decoded))
	assert.True(t, site.Default().Equal(&decoded))
}

func TestEncode_JSONRoundTrip(t *testing.T) {
	data, err := Encode(site.Default(), config.OutputJSON)
	require.NoError(t, err)

	var decoded site.SiteConfig
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, site.Default().Equal(&decoded))
}

func TestEncode_DoesNotEscapeHTML(t *testing.T) {
	cfg := site.Default()
	cfg.Description = "Design <-> code"
	cfg.ThemeConfig.Nav[0].Text = "Changes & fixes"

	data, err := Encode(cfg, config.OutputJSON)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Design <-> code")
	assert.Contains(t, string(data), "Changes & fixes")
}

func TestRender_WritesOnceThenSkips(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".vitepress")
	r := New(dir, config.OutputTS)

	res, err := r.Render(site.Default())
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, filepath.Join(dir, "config.mts"), res.Path)

	info, err := os.Stat(res.Path)
	require.NoError(t, err)
	assert.Equal(t, int64(res.Bytes), info.Size())

	again, err := r.Render(site.Default())
	require.NoError(t, err)
	assert.False(t, again.Changed)

	cfg := site.Default()
	cfg.Title = "Codify Docs"
	changed, err := r.Render(cfg)
	require.NoError(t, err)
	assert.True(t, changed.Changed)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestWriteLastUpdated(t *testing.T) {
	dir := t.TempDir()
	r := New(dir, config.OutputJSON)

	when := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("CST", 8*3600))
	res, err := r.WriteLastUpdated(map[string]time.Time{"/guide/intro": when})
	require.NoError(t, err)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	var got map[string]string
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, map[string]string{"/guide/intro": "2024-03-01T04:00:00Z"}, got)
}

func TestWriteLastUpdated_StableOutput(t *testing.T) {
	dir := t.TempDir()
	r := New(dir, config.OutputJSON)
	when := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	times := map[string]time.Time{"/guide/z": when, "/": when, "/guide/a": when}

	first, err := r.WriteLastUpdated(times)
	require.NoError(t, err)
	require.True(t, first.Changed)

	data, err := os.ReadFile(first.Path)
	require.NoError(t, err)
	assert.Less(t, strings.Index(string(data), `"/"`), strings.Index(string(data), `"/guide/a"`))
	assert.Less(t, strings.Index(string(data), `"/guide/a"`), strings.Index(string(data), `"/guide/z"`))

	second, err := r.WriteLastUpdated(times)
	require.NoError(t, err)
	assert.False(t, second.Changed, "identical data is not rewritten")
}
