package resolve_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jayminwest/kotadb-index/internal/resolve"
)

func TestResolveRelativeWithExtensionSearch(t *testing.T) {
	r := resolve.New([]string{
		"/repo/src/widget.ts",
		"/repo/src/widget.js",
		"/repo/src/helpers/index.ts",
	}, nil)

	got := r.Resolve("./widget", "/repo/src/app.ts")
	require.Equal(t, "/repo/src/widget.ts", got, "ts must win over js when both exist")

	got = r.Resolve("./helpers", "/repo/src/app.ts")
	require.Equal(t, "/repo/src/helpers/index.ts", got)
}

func TestResolveRelativeMissingReturnsEmpty(t *testing.T) {
	r := resolve.New([]string{"/repo/src/widget.ts"}, nil)
	require.Empty(t, r.Resolve("./missing", "/repo/src/app.ts"))
}

func TestResolveAbsoluteAndBareReturnEmpty(t *testing.T) {
	r := resolve.New([]string{"/repo/src/widget.ts"}, nil)
	require.Empty(t, r.Resolve("/abs/widget", "/repo/src/app.ts"))
	require.Empty(t, r.Resolve("lodash", "/repo/src/app.ts"))
}

func TestResolveWithPathAlias(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tsconfig.json"), []byte(`{
		"compilerOptions": {
			"baseUrl": ".",
			"paths": { "@api/*": ["src/api/*"] }
		}
	}`), 0o644))

	aliases, err := resolve.LoadPathAliases(dir)
	require.NoError(t, err)
	require.NotNil(t, aliases)

	r := resolve.New([]string{filepath.Join(dir, "src/api/client.ts")}, aliases)
	got := r.Resolve("@api/client", filepath.Join(dir, "src/app.ts"))
	require.Equal(t, filepath.Join(dir, "src/api/client.ts"), got)
}

func TestResolvePrefersRelativeOverAlias(t *testing.T) {
	dir := t.TempDir()
	aliases, err := resolve.LoadPathAliases(dir) // no config file present
	require.NoError(t, err)
	require.Nil(t, aliases)

	// A catch-all alias that would map "./widget" to lib/widget.ts if aliases
	// were consulted for relative specifiers.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tsconfig.json"), []byte(`{
		"compilerOptions": { "baseUrl": ".", "paths": { "*": ["lib/*"] } }
	}`), 0o644))
	aliases, err = resolve.LoadPathAliases(dir)
	require.NoError(t, err)
	require.NotNil(t, aliases)

	r := resolve.New([]string{filepath.Join(dir, "src/widget.ts"), filepath.Join(dir, "lib/widget.ts")}, aliases)
	got := r.Resolve("./widget", filepath.Join(dir, "src/app.ts"))
	require.Equal(t, filepath.Join(dir, "src/widget.ts"), got)
}

func TestLoadPathAliasesFollowsExtends(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tsconfig.base.json"), []byte(`{
		"compilerOptions": { "baseUrl": ".", "paths": { "@core/*": ["src/core/*"] } }
	}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tsconfig.json"), []byte(`{
		"extends": "./tsconfig.base.json",
		"compilerOptions": { "paths": { "@api/*": ["src/api/*"] } }
	}`), 0o644))

	aliases, err := resolve.LoadPathAliases(dir)
	require.NoError(t, err)
	require.NotNil(t, aliases)

	candidates := aliases.Expand("@core/util")
	require.NotEmpty(t, candidates)
	require.Contains(t, candidates[0], filepath.Join("src", "core", "util"))
}
