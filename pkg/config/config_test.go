package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ".", cfg.Root)
	assert.Empty(t, cfg.Entry)
	assert.Contains(t, cfg.Include, "**/*.js")
	assert.Equal(t, []string{"**/node_modules/**"}, cfg.Ignore)
	assert.Contains(t, cfg.Resolve.Extensions, ".json")
	assert.False(t, cfg.Scan.Gitignore)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, ".deadfiles/cache", cfg.Cache.Dir)
	assert.Equal(t, 24, cfg.Cache.TTL)
	assert.Equal(t, "text", cfg.Output.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "deadfiles.toml", `
root = "web"
entry = ["src/index.js", "src/worker.js"]
include = "src/**/*.{js,ts}"

[resolve]
extensions = [".ts", ".js"]

[scan]
gitignore = true

[cache]
enabled = false

[output]
format = "json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "web", cfg.Root)
	assert.Equal(t, []string{"src/index.js", "src/worker.js"}, cfg.Entry)
	assert.Equal(t, []string{"src/**/*.{js,ts}"}, cfg.Include, "single value becomes a list")
	assert.Equal(t, []string{"**/node_modules/**"}, cfg.Ignore, "unset keys keep defaults")
	assert.Equal(t, []string{".ts", ".js"}, cfg.Resolve.Extensions)
	assert.True(t, cfg.Scan.Gitignore)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 24, cfg.Cache.TTL)
	assert.Equal(t, "json", cfg.Output.Format)
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "deadfiles.yaml", `
entry: main.js
ignore:
  - "**/node_modules/**"
  - "vendored/**"
output:
  format: markdown
  verbose: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"main.js"}, cfg.Entry)
	assert.Equal(t, []string{"**/node_modules/**", "vendored/**"}, cfg.Ignore)
	assert.Equal(t, "markdown", cfg.Output.Format)
	assert.True(t, cfg.Output.Verbose)
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "deadfiles.json", `{
  "entry": ["a.js"],
  "cache": {"ttl": 1, "dir": "/tmp/dfcache"}
}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.js"}, cfg.Entry)
	assert.Equal(t, 1, cfg.Cache.TTL)
	assert.Equal(t, "/tmp/dfcache", cfg.Cache.Dir)
	assert.True(t, cfg.Cache.Enabled)
}

func TestLoadSchemaViolations(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"unknown key", "deadfiles.toml", "entries = [\"a.js\"]\n"},
		{"wrong type", "deadfiles.toml", "[scan]\ngitignore = \"yes\"\n"},
		{"bad format", "deadfiles.yaml", "output:\n  format: html\n"},
		{"extension without dot", "deadfiles.json", `{"resolve": {"extensions": ["js"]}}`},
		{"negative ttl", "deadfiles.toml", "[cache]\nttl = -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.file, tt.content)
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), path)
		})
	}
}

func TestLoadMalformed(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "deadfiles.toml", "entry = [\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Output.Format = "xml"
	cfg.Resolve.Extensions = []string{"js", "."}
	cfg.Cache.TTL = -2

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output.format")
	assert.Contains(t, err.Error(), `"js"`)
	assert.Contains(t, err.Error(), `"."`)
	assert.Contains(t, err.Error(), "cache.ttl")

	cfg = DefaultConfig()
	cfg.Resolve.Extensions = nil
	assert.ErrorContains(t, cfg.Validate(), "must not be empty")
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	assert.Empty(t, FindConfigFile(dir))

	nested := writeConfig(t, dir, ".deadfiles/deadfiles.yaml", "entry: a.js\n")
	assert.Equal(t, nested, FindConfigFile(dir))

	hidden := writeConfig(t, dir, ".deadfiles.json", "{}")
	assert.Equal(t, hidden, FindConfigFile(dir))

	top := writeConfig(t, dir, "deadfiles.toml", "")
	assert.Equal(t, top, FindConfigFile(dir))
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	result, err := LoadConfig(WithSearchDir(dir))
	require.NoError(t, err)
	assert.Empty(t, result.Source)
	assert.Equal(t, DefaultConfig(), result.Config)

	path := writeConfig(t, dir, "deadfiles.toml", "entry = \"index.js\"\n")
	result, err = LoadConfig(WithSearchDir(dir))
	require.NoError(t, err)
	assert.Equal(t, path, result.Source)
	assert.Equal(t, []string{"index.js"}, result.Config.Entry)

	other := writeConfig(t, t.TempDir(), "custom.yml", "entry: [x.js]\n")
	result, err = LoadConfig(WithPath(other))
	require.NoError(t, err)
	assert.Equal(t, other, result.Source)
	assert.Equal(t, []string{"x.js"}, result.Config.Entry)

	_, err = LoadConfig(WithPath(filepath.Join(dir, "missing.toml")))
	assert.Error(t, err)
}

func TestLoadConfigSemanticError(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "deadfiles.toml", "[resolve]\nextensions = []\n")
	_, err := LoadConfig(WithPath(path))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be empty")
}

func TestSchemaEmbedded(t *testing.T) {
	assert.Contains(t, Schema(), `"additionalProperties": false`)
	_, err := compiledSchema()
	assert.NoError(t, err)
}

func TestLoadEmptyPatternList(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "deadfiles.toml", `
include = "src/**"
ignore = []
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/**"}, cfg.Include)
	assert.NotNil(t, cfg.Ignore)
	assert.Empty(t, cfg.Ignore, "an empty list replaces the default ignore")
}
