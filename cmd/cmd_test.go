package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/sweep/cleanup"
	tt "github.com/gnolang/sweep/internal/types"
	"github.com/gnolang/sweep/plugin"
)

const legacySrc = `package main

import (
	"fmt"
	"io/ioutil"
)

func main() {
	data, _ := ioutil.ReadFile("in.txt")
	fmt.Println(len(data))
}
`

// run executes the root command with args. Flag variables are reset first
// since cobra only assigns the flags that are given.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfgFile, ignoreRules, ignorePaths, outPath = "", "", "", ""
	jsonOutput, typeCheck, asPackages, dryRun = false, false, false, false

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func legacyFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.go")
	require.NoError(t, os.WriteFile(path, []byte(legacySrc), 0o644))
	return path
}

func TestFindReportsFindings(t *testing.T) {
	path := legacyFile(t)

	out, err := run(t, "find", path)
	assert.ErrorIs(t, err, ErrFindings)
	assert.Contains(t, out, "ioutil-readfile")
	assert.Contains(t, out, path+":9:")
	assert.Contains(t, out, "Suggestion: os.ReadFile($args$)")
}

func TestRootBehavesLikeFind(t *testing.T) {
	path := legacyFile(t)

	out, err := run(t, path)
	assert.ErrorIs(t, err, ErrFindings)
	assert.Contains(t, out, "ioutil-readfile")
}

func TestFindIgnoreRule(t *testing.T) {
	path := legacyFile(t)

	out, err := run(t, "find", "--ignore", "ioutil-readfile, nolint-deadcode", path)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestFindJSONOutput(t *testing.T) {
	path := legacyFile(t)
	jsonPath := filepath.Join(t.TempDir(), "out.json")

	_, err := run(t, "find", "--json", "-o", jsonPath, path)
	assert.ErrorIs(t, err, ErrFindings)

	raw, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var byFile map[string][]tt.Finding
	require.NoError(t, json.Unmarshal(raw, &byFile))
	require.Len(t, byFile[path], 1)
	assert.Equal(t, "ioutil-readfile", byFile[path][0].Rule)
}

func TestFindWithoutArgs(t *testing.T) {
	_, err := run(t, "find")
	assert.Error(t, err)
}

func TestFixDryRun(t *testing.T) {
	path := legacyFile(t)

	out, err := run(t, "fix", "--dry-run", path)
	require.NoError(t, err)
	assert.Contains(t, out, "+\tdata, _ := os.ReadFile(\"in.txt\")")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, legacySrc, string(raw))
}

func TestFixWrites(t *testing.T) {
	path := legacyFile(t)

	out, err := run(t, "fix", path)
	require.NoError(t, err)
	assert.Contains(t, out, "fixed 1 finding(s)")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `os.ReadFile("in.txt")`)

	_, err = run(t, "find", path)
	assert.NoError(t, err)
}

func TestRulesLists(t *testing.T) {
	out, err := run(t, "rules")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, plugin.Default().Len()+1, len(lines))
	assert.Contains(t, out, "ioutil-readfile")
	assert.Contains(t, out, "WARNING")
}

func TestKindsLists(t *testing.T) {
	out, err := run(t, "kinds")
	require.NoError(t, err)
	assert.Contains(t, strings.Split(out, "\n"), "CallExpr")
}

func TestInitWritesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.yaml")

	out, err := run(t, "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	config, err := cleanup.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "sweep", config.Name)
	assert.Len(t, config.Rules, plugin.Default().Len())
	assert.Equal(t, tt.SeverityWarning, config.Rules["ioutil-readfile"].Severity)
}

func TestConfigSeverityOff(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "sweep.yaml")
	require.NoError(t, cleanup.WriteConfig(cfg, cleanup.Config{
		Rules: map[string]tt.ConfigRule{"ioutil-readfile": {Severity: tt.SeverityOff}},
	}))

	_, err := run(t, "find", "--config", cfg, legacyFile(t))
	assert.NoError(t, err)
}
