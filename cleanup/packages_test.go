package cleanup

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessPackages(t *testing.T) {
	if testing.Short() {
		t.Skip("loads packages through the go command")
	}
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "go.mod"), "module example.com/legacy\n\ngo 1.21\n")
	writeFile(t, filepath.Join(dir, "main.go"), legacySrc)

	ctx := context.Background()
	pkgs, err := LoadPackages(ctx, dir, "./...")
	require.NoError(t, err)
	require.Len(t, pkgs, 1)
	require.NotNil(t, pkgs[0].TypesInfo)

	engine, err := New("", nil)
	require.NoError(t, err)

	findings, err := ProcessPackages(ctx, nil, engine, pkgs)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "ioutil-readfile", findings[0].Rule)
}
