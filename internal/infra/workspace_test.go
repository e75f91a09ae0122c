package infra

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Vovarama1992/slide_render/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspaceAcquireRelease(t *testing.T) {
	root := t.TempDir()
	m := NewTempWorkspaceManager(root)

	ws, err := m.Acquire()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(ws.Dir), workspacePrefix))

	fi, err := os.Stat(ws.Dir)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())

	// внутри что-то лежит — release обязан убрать всё рекурсивно
	require.NoError(t, os.MkdirAll(filepath.Join(ws.Dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(ws.Dir, "nested", "page-001.jpg"), []byte("x"), 0o644))

	require.NoError(t, m.Release(ws))
	_, err = os.Stat(ws.Dir)
	assert.True(t, os.IsNotExist(err))
}

func TestWorkspacePathsNeverCollide(t *testing.T) {
	root := t.TempDir()
	m := NewTempWorkspaceManager(root)

	const k = 50
	seen := make(map[string]bool, k)
	for i := 0; i < k; i++ {
		ws, err := m.Acquire()
		require.NoError(t, err)
		require.False(t, seen[ws.Dir], "workspace path %s reused", ws.Dir)
		seen[ws.Dir] = true
	}

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Len(t, entries, k)
}

func TestWorkspaceJoinStripsPath(t *testing.T) {
	root := t.TempDir()
	m := NewTempWorkspaceManager(root)

	ws, err := m.Acquire()
	require.NoError(t, err)
	defer func() { require.NoError(t, m.Release(ws)) }()

	got := ws.Join("../escape.pdf")
	assert.Equal(t, filepath.Join(ws.Dir, "escape.pdf"), got)
}

func TestWorkspaceReleaseZeroValueIsNoop(t *testing.T) {
	m := NewTempWorkspaceManager(t.TempDir())
	require.NoError(t, m.Release(ports.Workspace{}))
}
