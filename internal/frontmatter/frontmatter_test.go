package frontmatter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplit_NoHeader(t *testing.T) {
	input := []byte("# Title\n\nHello\n")

	header, body, had, err := Split(input)
	require.NoError(t, err)
	require.False(t, had)
	require.Empty(t, header)
	require.Equal(t, input, body)
}

func TestSplit_YAMLHeader(t *testing.T) {
	header, body, had, err := Split([]byte("---\ntitle: Intro\n---\n# Title\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, "title: Intro\n", string(header))
	require.Equal(t, "# Title\n", string(body))
}

func TestSplit_CRLF(t *testing.T) {
	header, body, had, err := Split([]byte("---\r\ntitle: Intro\r\n---\r\n# Title\r\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, "title: Intro\r\n", string(header))
	require.Equal(t, "# Title\r\n", string(body))
}

func TestSplit_EmptyHeader(t *testing.T) {
	header, body, had, err := Split([]byte("---\n---\n# Title\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Empty(t, header)
	require.Equal(t, "# Title\n", string(body))
}

func TestSplit_HeaderOnlyWithoutTrailingNewline(t *testing.T) {
	header, body, had, err := Split([]byte("---\ntitle: Intro\n---"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, "title: Intro\n", string(header))
	require.Empty(t, body)
}

func TestSplit_Unterminated(t *testing.T) {
	_, _, had, err := Split([]byte("---\ntitle: Intro\n# Title\n"))
	require.Error(t, err)
	require.False(t, had)
	require.True(t, errors.Is(err, ErrUnterminated))
}

func TestParse(t *testing.T) {
	fields, err := Parse([]byte("title: Intro\ntags:\n  - one\n"))
	require.NoError(t, err)
	require.Equal(t, "Intro", String(fields, "title"))
	require.Equal(t, []any{"one"}, fields["tags"])
}

func TestParse_Empty(t *testing.T) {
	fields, err := Parse(nil)
	require.NoError(t, err)
	require.Empty(t, fields)
	require.Equal(t, "", String(fields, "title"))
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte(": not yaml"))
	require.Error(t, err)
}

func TestString_NonString(t *testing.T) {
	require.Equal(t, "", String(map[string]any{"title": 42}, "title"))
}
