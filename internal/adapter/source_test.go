package adapter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, root, pkg, class string) string {
	t.Helper()
	dir := filepath.Join(root, pkg, "Classes")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, class+".uc")
	require.NoError(t, os.WriteFile(path, []byte("class "+class+";\n"), 0o644))
	return path
}

func TestSetRootsRejectsMissingDir(t *testing.T) {
	t.Parallel()

	m := NewSourceMap()
	err := m.SetRoots([]string{filepath.Join(t.TempDir(), "nope")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestResolveTriesRootsInOrder(t *testing.T) {
	t.Parallel()

	first := t.TempDir()
	second := t.TempDir()
	want := writeSource(t, second, "XComGame", "XGUnit")

	m := NewSourceMap()
	require.NoError(t, m.SetRoots([]string{first, second}))

	got := m.Resolve("XComGame.XGUnit")
	assert.Equal(t, want, got)
}

func TestResolvePrefersEarlierRoot(t *testing.T) {
	t.Parallel()

	first := t.TempDir()
	second := t.TempDir()
	want := writeSource(t, first, "Core", "Object")
	writeSource(t, second, "Core", "Object")

	m := NewSourceMap()
	require.NoError(t, m.SetRoots([]string{first, second}))
	assert.Equal(t, want, m.Resolve("Core.Object"))
}

func TestResolveCachesFirstHit(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	want := writeSource(t, root, "Engine", "Actor")

	m := NewSourceMap()
	require.NoError(t, m.SetRoots([]string{root}))

	require.Equal(t, want, m.Resolve("Engine.Actor"))

	// Deleting the file does not invalidate the cache; the session keeps
	// one stable answer.
	require.NoError(t, os.Remove(want))
	assert.Equal(t, want, m.Resolve("Engine.Actor"))
}

func TestResolveMissingFallsBackToFirstRoot(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	m := NewSourceMap()
	require.NoError(t, m.SetRoots([]string{root}))

	got := m.Resolve("Ghost.Class")
	assert.Equal(t, filepath.Join(root, "Ghost", "Classes", "Class.uc"), got)
}

func TestClassFromSourcePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{path: "/root/P/Classes/A.uc", want: "P.A"},
		{path: filepath.Join("src", "XComGame", "Classes", "XGUnit.uc"), want: "XComGame.XGUnit"},
		{path: "A.uc", wantErr: true},
		{path: "/A.uc", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			got, err := ClassFromSourcePath(tc.path)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCanonicalizeCase(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	want := writeSource(t, root, "MyPackage", "MyClass")

	// Exact-case input survives untouched.
	assert.Equal(t, want, canonicalizeCase(want))

	// A differently-cased spelling maps back to the on-disk one.
	lower := filepath.Join(root, "mypackage", "classes", "myclass.uc")
	assert.Equal(t, want, canonicalizeCase(lower))
}
