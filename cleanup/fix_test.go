package cleanup

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixerDryRun(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "main.go")
	writeFile(t, path, legacySrc)

	engine, err := New("", nil)
	require.NoError(t, err)

	var out bytes.Buffer
	fixer := NewFixer(true, &out)
	fixed, err := fixer.Process(engine, path)
	require.NoError(t, err)
	require.Len(t, fixed, 1)

	diff := out.String()
	assert.Contains(t, diff, "--- a/"+path)
	assert.Contains(t, diff, "-\tdata, err := ioutil.ReadFile(\"in.txt\")")
	assert.Contains(t, diff, "+\tdata, err := os.ReadFile(\"in.txt\")")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, legacySrc, string(raw), "dry run must not touch the file")
}

func TestFixerWrites(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	writeFile(t, path, legacySrc)
	writeFile(t, filepath.Join(dir, "clean.go"), cleanSrc)

	engine, err := New("", nil)
	require.NoError(t, err)

	fixer := NewFixer(false, nil)
	fixed, err := ProcessPath(context.Background(), nil, engine, dir, fixer.Process)
	require.NoError(t, err)
	assert.Len(t, fixed, 1)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	got := string(raw)
	assert.Contains(t, got, `os.ReadFile("in.txt")`)
	assert.NotContains(t, got, "io/ioutil")

	clean, err := os.ReadFile(filepath.Join(dir, "clean.go"))
	require.NoError(t, err)
	assert.Equal(t, cleanSrc, string(clean))

	// a second pass has nothing left to fix
	fixed, err = ProcessPath(context.Background(), nil, engine, dir, fixer.Process)
	require.NoError(t, err)
	assert.Empty(t, fixed)
}

func TestDiff(t *testing.T) {
	t.Parallel()

	diff, err := Diff("f.go", []byte("a\nb\nc\n"), []byte("a\nB\nc\n"))
	require.NoError(t, err)
	assert.Contains(t, diff, "--- a/f.go")
	assert.Contains(t, diff, "+++ b/f.go")
	assert.Contains(t, diff, "-b\n")
	assert.Contains(t, diff, "+B\n")

	diff, err = Diff("f.go", []byte("same\n"), []byte("same\n"))
	require.NoError(t, err)
	assert.Empty(t, diff)
}
