package discover_test

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jayminwest/kotadb-index/internal/discover"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func paths(files []discover.File) []string {
	var out []string
	for _, f := range files {
		out = append(out, f.Path)
	}
	sort.Strings(out)
	return out
}

func TestWalkSkipsIgnoredDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "app.ts"), "export const a = 1;")
	writeFile(t, filepath.Join(root, "node_modules", "dep", "index.js"), "module.exports = {};")
	writeFile(t, filepath.Join(root, ".git", "HEAD"), "ref: refs/heads/main")

	files, err := discover.Walk(context.Background(), root, discover.Options{
		IgnoreDirs: []string{"node_modules", ".git"},
	})
	require.NoError(t, err)
	got := paths(files)
	require.Contains(t, got, "src/app.ts")
	require.NotContains(t, got, "node_modules/dep/index.js")
	require.NotContains(t, got, ".git/HEAD")
}

func TestWalkAppliesIgnoreGlobs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "app.ts"), "export const a = 1;")
	writeFile(t, filepath.Join(root, "src", "app.test.ts"), "test('x', () => {});")

	files, err := discover.Walk(context.Background(), root, discover.Options{
		IgnoreGlobs: []string{"**/*.test.ts"},
	})
	require.NoError(t, err)
	got := paths(files)
	require.Contains(t, got, "src/app.ts")
	require.NotContains(t, got, "src/app.test.ts")
}

func TestWalkSkipsOversizedFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "small.ts"), "const a = 1;")
	writeFile(t, filepath.Join(root, "big.ts"), "const b = '0123456789';")

	files, err := discover.Walk(context.Background(), root, discover.Options{
		MaxFileBytes: 15,
	})
	require.NoError(t, err)
	got := paths(files)
	require.Contains(t, got, "small.ts")
	require.NotContains(t, got, "big.ts")
}

func TestWalkComputesContentHash(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.ts"), "export const a = 1;")

	files, err := discover.Walk(context.Background(), root, discover.Options{})
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.NotEmpty(t, files[0].ContentHash)
	require.Equal(t, int64(len("export const a = 1;")), files[0].SizeBytes)
}
