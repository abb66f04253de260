package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFormatters(t *testing.T) {
	tests := []struct {
		name      string
		precision int
		value     float64
		expected  string
	}{
		{"precision 2", 2, 3.14159, "3.14"},
		{"precision 0", 0, 3.14159, "3"},
		{"negative value", 1, -42.567, "-42.6"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fmtFloat, fmtInt := createFormatters(tt.precision)
			assert.Equal(t, tt.expected, fmtFloat(tt.value))
			assert.Equal(t, "42", fmtInt(42))
		})
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, map[string]any{"name": "widgets", "stars": 250}))
	assert.Equal(t, "{\n  \"name\": \"widgets\",\n  \"stars\": 250\n}\n", buf.String())

	buf.Reset()
	require.NoError(t, writeCompactJSON(&buf, map[string]any{"name": "widgets", "stars": 250}))
	assert.Equal(t, "{\"name\":\"widgets\",\"stars\":250}\n", buf.String())
}

func TestWriteJSONError(t *testing.T) {
	var buf bytes.Buffer
	err := writeJSON(&buf, make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to encode JSON")
}

func TestWriteCSVWithHeader(t *testing.T) {
	var buf bytes.Buffer
	err := writeCSVWithHeader(&buf, []string{"repository", "note"}, func(w *csv.Writer) error {
		return w.Write([]string{"acme/widgets", "stars, forks"})
	})
	require.NoError(t, err)
	assert.Equal(t, "repository,note\nacme/widgets,\"stars, forks\"\n", buf.String())

	err = writeCSVWithHeader(&buf, []string{"col"}, func(*csv.Writer) error {
		return assert.AnError
	})
	assert.Equal(t, assert.AnError, err)
}

func TestWriteWithFile(t *testing.T) {
	t.Run("stdout", func(t *testing.T) {
		called := false
		err := writeWithFile("", func(io.Writer) error {
			called = true
			return nil
		}, "Wrote test")
		require.NoError(t, err)
		assert.True(t, called)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.json")
		err := writeWithFile(path, func(w io.Writer) error {
			return writeJSON(w, map[string]int{"stars": 1})
		}, "Wrote JSON")
		require.NoError(t, err)

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		var got map[string]int
		require.NoError(t, json.Unmarshal(content, &got))
		assert.Equal(t, 1, got["stars"])
	})

	t.Run("writer error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.txt")
		err := writeWithFile(path, func(io.Writer) error { return assert.AnError }, "Wrote test")
		assert.Equal(t, assert.AnError, err)
	})

	t.Run("invalid path", func(t *testing.T) {
		err := writeWithFile("/nonexistent/path/file.txt", func(io.Writer) error { return nil }, "Wrote test")
		require.Error(t, err)
	})
}

func TestRenderMarkdown(t *testing.T) {
	var buf bytes.Buffer
	err := renderMarkdown(&buf, []string{"Project Name", "Stars"}, [][]string{{"[widgets](https://github.com/acme/widgets)", "250"}})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Project Name")
	assert.Contains(t, out, "[widgets](https://github.com/acme/widgets)")
	assert.Contains(t, out, "250")
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		assert.True(t, strings.HasPrefix(strings.TrimSpace(line), "|"), "markdown row should start with a pipe: %q", line)
	}
}
