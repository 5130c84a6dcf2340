package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"text", FormatText},
		{"JSON", FormatJSON},
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{"toon", FormatTOON},
		{"TOON", FormatTOON},
		{"", FormatText},
		{"html", FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseFormat(tt.input))
		})
	}
}

func TestNewFormatterFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	f, err := NewFormatter(FormatJSON, path, true)
	require.NoError(t, err)
	assert.False(t, f.Colored(), "file output is never colored")

	require.NoError(t, f.Output(map[string]int{"n": 1}))
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"n": 1}`, string(data))
}

func TestNewFormatterBadPath(t *testing.T) {
	_, err := NewFormatter(FormatText, filepath.Join(t.TempDir(), "missing", "out.txt"), false)
	assert.Error(t, err)
}

func TestTableFormats(t *testing.T) {
	table := NewTable("Files", []string{"Path", "Size"}, [][]string{{"a.js", "10"}, {"b|c.js", "20"}}, nil)

	var text bytes.Buffer
	require.NoError(t, NewWriterFormatter(FormatText, &text, false).Output(table))
	assert.Contains(t, text.String(), "Files\n=====")
	assert.Contains(t, text.String(), "a.js")
	assert.Contains(t, text.String(), "b|c.js")

	var md bytes.Buffer
	require.NoError(t, NewWriterFormatter(FormatMarkdown, &md, false).Output(table))
	assert.Contains(t, md.String(), "## Files")
	assert.Contains(t, md.String(), "| Path | Size |")
	assert.Contains(t, md.String(), "| --- | --- |")
	assert.Contains(t, md.String(), `| b\|c.js | 20 |`)

	var js bytes.Buffer
	require.NoError(t, NewWriterFormatter(FormatJSON, &js, false).Output(table))
	var rows []map[string]string
	require.NoError(t, json.Unmarshal(js.Bytes(), &rows))
	assert.Equal(t, []map[string]string{{"Path": "a.js", "Size": "10"}, {"Path": "b|c.js", "Size": "20"}}, rows)
}

func TestOutputRaw(t *testing.T) {
	data := map[string]string{"k": "v"}

	var md bytes.Buffer
	require.NoError(t, NewWriterFormatter(FormatMarkdown, &md, false).Output(data))
	assert.Contains(t, md.String(), "```json")

	var text bytes.Buffer
	require.NoError(t, NewWriterFormatter(FormatText, &text, false).Output(data))
	assert.JSONEq(t, `{"k":"v"}`, text.String())

	var tn bytes.Buffer
	require.NoError(t, NewWriterFormatter(FormatTOON, &tn, false).Output(data))
	assert.Contains(t, tn.String(), "k: v")
}

func TestTableDataOverridesRows(t *testing.T) {
	table := NewTable("Summary", []string{"Category", "Count"}, [][]string{{"Dead files", "2"}}, map[string]int{"dead_files": 2})

	var js bytes.Buffer
	require.NoError(t, NewWriterFormatter(FormatJSON, &js, false).Output(table))
	assert.JSONEq(t, `{"dead_files": 2}`, js.String())
}
