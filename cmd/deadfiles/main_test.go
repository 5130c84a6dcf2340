package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/panbanda/deadfiles/internal/testutil"
	"github.com/panbanda/deadfiles/pkg/analyzer/deadfile"
	"github.com/panbanda/deadfiles/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := newApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	err := app.Run(append([]string{"deadfiles"}, args...))
	return stdout.String(), err
}

func writeProject(t *testing.T) string {
	t.Helper()
	root := testutil.TempDir(t)
	testutil.CreateFileTree(t, root, map[string]string{
		"src/main.js":   "import './a';\n",
		"src/a.js":      "",
		"src/b.js":      "",
		"src/c.js":      "",
		"src/unused.ts": "",
	})
	return root
}

func decodeReport(t *testing.T, data string) deadfile.Report {
	t.Helper()
	var report deadfile.Report
	require.NoError(t, json.Unmarshal([]byte(data), &report), data)
	return report
}

func TestDetectJSON(t *testing.T) {
	root := writeProject(t)

	out, err := runApp(t, "--root", root, "--no-cache", "--format", "json", "src/main.js")
	require.NoError(t, err)

	report := decodeReport(t, out)
	assert.Equal(t, testutil.Paths(root, "src/main.js", "src/a.js"), report.Dependencies)
	assert.Equal(t, testutil.Paths(root, "src/b.js", "src/c.js", "src/unused.ts"), report.DeadFiles)
}

func TestDetectEntryFlagAndBraceGlob(t *testing.T) {
	root := writeProject(t)

	out, err := runApp(t, "--root", root, "--no-cache", "-f", "json",
		"--entry", "src/main.js", "--include", "src/{a,b}.js")
	require.NoError(t, err)

	report := decodeReport(t, out)
	assert.Equal(t, testutil.Paths(root, "src/b.js"), report.DeadFiles)
}

func TestDetectText(t *testing.T) {
	root := writeProject(t)

	out, err := runApp(t, "--root", root, "--no-cache", "--no-color", "src/main.js")
	require.NoError(t, err)
	assert.Contains(t, out, "Dead Files")
	assert.Contains(t, out, "src/unused.ts")
}

func TestDetectCheck(t *testing.T) {
	root := writeProject(t)

	_, err := runApp(t, "--root", root, "--no-cache", "--check", "src/main.js")
	assert.ErrorIs(t, err, errDeadFilesFound)

	_, err = runApp(t, "--root", root, "--no-cache", "--check", "--include", "src/a.js", "src/main.js")
	assert.NoError(t, err)
}

func TestDetectOutputFile(t *testing.T) {
	root := writeProject(t)
	outFile := filepath.Join(t.TempDir(), "report.json")

	out, err := runApp(t, "--root", root, "--no-cache", "-f", "json", "-o", outFile, "src/main.js")
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Len(t, decodeReport(t, string(data)).DeadFiles, 3)
}

func TestDetectConfigFile(t *testing.T) {
	root := writeProject(t)
	testutil.WriteFile(t, filepath.Join(root, "deadfiles.yaml"), "entry: src/main.js\nignore:\n  - src/c.js\noutput:\n  format: json\ncache:\n  enabled: false\n")

	out, err := runApp(t, "--root", root)
	require.NoError(t, err)

	report := decodeReport(t, out)
	assert.Equal(t, testutil.Paths(root, "src/b.js", "src/unused.ts"), report.DeadFiles)
}

func TestDetectErrors(t *testing.T) {
	root := writeProject(t)

	_, err := runApp(t, "--root", root, "--no-cache", "--format", "xml", "src/main.js")
	assert.ErrorContains(t, err, "unknown format")

	_, err = runApp(t, "--root", root, "--no-cache", "src/missing.js")
	var entryErr *deadfile.EntryError
	assert.ErrorAs(t, err, &entryErr)

	_, err = runApp(t, "--root", filepath.Join(root, "nope"), "--no-cache", "src/main.js")
	assert.Error(t, err)
}

func TestInitCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".deadfiles", "deadfiles.toml")

	out, err := runApp(t, "init", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Created")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/index.js"}, cfg.Entry)
	assert.Equal(t, config.DefaultConfig().Include, cfg.Include)

	_, err = runApp(t, "init", "-o", path)
	assert.ErrorContains(t, err, "already exists")

	_, err = runApp(t, "init", "-o", path, "--force")
	assert.NoError(t, err)
}

func TestConfigValidateCmd(t *testing.T) {
	dir := t.TempDir()
	valid := filepath.Join(dir, "deadfiles.toml")
	testutil.WriteFile(t, valid, "entry = \"src/index.ts\"\n")

	out, err := runApp(t, "config", "validate", "-c", valid)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration valid")

	invalid := filepath.Join(dir, "bad.toml")
	testutil.WriteFile(t, invalid, "[output]\nformat = \"xml\"\n")

	out, err = runApp(t, "config", "validate", "-c", invalid)
	assert.Error(t, err)
	assert.Contains(t, out, "validation failed")
}

func TestConfigShowCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deadfiles.toml")
	testutil.WriteFile(t, path, "entry = [\"a.js\"]\n")

	out, err := runApp(t, "config", "show", "-c", path)
	require.NoError(t, err)
	assert.Contains(t, out, "# Configuration from: "+path)
	assert.Contains(t, out, "a.js")

	out, err = runApp(t, "config", "show", "-c", path, "-f", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "entry:\n    - a.js")

	_, err = runApp(t, "config", "show", "-c", path, "-f", "ini")
	assert.Error(t, err)
}

func TestMCPManifestCmd(t *testing.T) {
	out, err := runApp(t, "mcp", "manifest")
	require.NoError(t, err)

	var manifest map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &manifest))
	assert.Equal(t, "io.github.panbanda/deadfiles", manifest["name"])
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, isTerminal(&bytes.Buffer{}))
}

func TestCacheCmd(t *testing.T) {
	root := writeProject(t)

	_, err := runApp(t, "--root", root, "--format", "json", "src/main.js")
	require.NoError(t, err)

	out, err := runApp(t, "cache", "stats", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Entries:")
	assert.NotContains(t, out, "Entries: 0\n")

	out, err = runApp(t, "cache", "clear", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Cache cleared")
	assert.NoDirExists(t, filepath.Join(root, ".deadfiles", "cache"))
}

func TestVersionFlag(t *testing.T) {
	out, err := runApp(t, "-v")
	require.NoError(t, err)
	assert.Contains(t, out, "deadfiles version")
}

func TestVerboseListsTraversedFiles(t *testing.T) {
	root := writeProject(t)

	var stdout, stderr bytes.Buffer
	app := newApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	err := app.Run([]string{"deadfiles", "--root", root, "--no-cache", "--verbose", "--format", "json", "src/main.js"})
	require.NoError(t, err)

	assert.Contains(t, stderr.String(), filepath.Join("src", "a.js"))
	report := decodeReport(t, stdout.String())
	assert.Len(t, report.Dependencies, 2)
}
