package wiki

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupWiki creates a wiki tree under a temp dir:
//
//	wiki/index.md
//	wiki/x.md
//	wiki/a/b.md
//	wiki/a/c.md
//	wiki/a/x.md
//	wiki/my note.md
//	wiki/..dots.md
func setupWiki(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "wiki")
	for _, rel := range []string{"index.md", "x.md", "a/b.md", "a/c.md", "a/x.md", "my note.md", "..dots.md"} {
		writeFile(t, filepath.Join(root, filepath.FromSlash(rel)), "# "+rel+"\n")
	}
	return root
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestResolveRelativeToCurrentDocument(t *testing.T) {
	root := setupWiki(t)
	current := filepath.Join(root, "a", "b.md")

	got, err := Resolve("./c.md", current, root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "a", "c.md"), got)
}

func TestResolvePrefersCurrentDirOverRoot(t *testing.T) {
	root := setupWiki(t)
	current := filepath.Join(root, "a", "b.md")

	got, err := Resolve("x.md", current, root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "a", "x.md"), got)

	got, err = Resolve("x.md", "", root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "x.md"), got)
}

func TestResolveTraversalOutsideRoot(t *testing.T) {
	root := setupWiki(t)
	current := filepath.Join(root, "a", "b.md")

	for _, target := range []string{
		"../../../etc/passwd",
		"../../wiki-other/n.md",
		"../..",
		"/etc/passwd",
		"../../x.md",
	} {
		_, err := Resolve(target, current, root)
		assert.ErrorIs(t, err, ErrOutsideRoot, target)
	}
}

func TestResolveSiblingWithSharedPrefix(t *testing.T) {
	root := setupWiki(t)
	evil := root + "-evil"
	writeFile(t, filepath.Join(evil, "n.md"), "x")

	_, err := Resolve(filepath.Join(evil, "n.md"), "", root)
	assert.ErrorIs(t, err, ErrOutsideRoot)

	_, err = Resolve("../wiki-evil/n.md", "", root)
	assert.ErrorIs(t, err, ErrOutsideRoot)
}

func TestResolveDotPrefixedNameIsInside(t *testing.T) {
	root := setupWiki(t)

	got, err := Resolve("..dots.md", "", root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "..dots.md"), got)
}

func TestResolveSymlinkEscape(t *testing.T) {
	root := setupWiki(t)
	outside := t.TempDir()
	writeFile(t, filepath.Join(outside, "secret.md"), "secret")

	if err := os.Symlink(outside, filepath.Join(root, "escape")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(outside, "secret.md"), filepath.Join(root, "secret.md")))

	_, err := Resolve("escape/secret.md", "", root)
	assert.ErrorIs(t, err, ErrOutsideRoot)

	_, err = Resolve("secret.md", "", root)
	assert.ErrorIs(t, err, ErrOutsideRoot)

	_, err = Resolve("escape/missing.md", "", root)
	assert.ErrorIs(t, err, ErrOutsideRoot)
}

func TestResolveSymlinkInsideRoot(t *testing.T) {
	root := setupWiki(t)
	if err := os.Symlink(filepath.Join(root, "a"), filepath.Join(root, "alias")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	got, err := Resolve("alias/c.md", "", root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "a", "c.md"), got)
}

func TestResolveNotFound(t *testing.T) {
	root := setupWiki(t)
	current := filepath.Join(root, "a", "b.md")

	_, err := Resolve("./missing.md", current, root)
	require.ErrorIs(t, err, ErrNotFound)

	var re *ResolveError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, filepath.Join(root, "a", "missing.md"), re.Path)
	assert.Equal(t, "./missing.md", re.Target)
}

func TestResolveDirectoryIsNotFound(t *testing.T) {
	root := setupWiki(t)

	_, err := Resolve("a", "", root)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = Resolve(".", "", root)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveMalformed(t *testing.T) {
	root := setupWiki(t)

	cases := []string{
		"",
		"   ",
		"#heading",
		"https://example.com/a.md",
		"mailto:someone@example.com",
		"bad%zz.md",
		"a\x00b.md",
		"a%00b.md",
	}
	for _, target := range cases {
		_, err := Resolve(target, "", root)
		assert.ErrorIs(t, err, ErrMalformed, "%q", target)
		assert.NotErrorIs(t, err, ErrNotFound, "%q", target)
	}
}

func TestResolveFragmentAndEscapes(t *testing.T) {
	root := setupWiki(t)

	got, err := Resolve("a/c.md#section", "", root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "a", "c.md"), got)

	got, err = Resolve("my%20note.md", "", root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "my note.md"), got)
}

func TestResolveAbsoluteInsideRoot(t *testing.T) {
	root := setupWiki(t)
	target := filepath.Join(root, "a", "c.md")

	got, err := Resolve(target, filepath.Join(root, "index.md"), root)
	require.NoError(t, err)
	assert.Equal(t, target, got)
}

func TestResolveIsIdempotent(t *testing.T) {
	root := setupWiki(t)
	current := filepath.Join(root, "a", "b.md")

	for _, target := range []string{"./c.md", "../index.md", "../../x", "missing.md", ""} {
		p1, err1 := Resolve(target, current, root)
		p2, err2 := Resolve(target, current, root)
		assert.Equal(t, p1, p2, target)
		assert.Equal(t, err1 == nil, err2 == nil, target)
		if err1 != nil {
			assert.Equal(t, err1.Error(), err2.Error(), target)
		}
	}
}

func TestResolvedPathsAreFilesInsideRoot(t *testing.T) {
	root := setupWiki(t)
	current := filepath.Join(root, "a", "b.md")

	targets := []string{
		"c.md", "./x.md", "../x.md", "../index.md", "../a/../a/c.md",
		"../../wiki/index.md", "b.md", "../my%20note.md", "../..dots.md",
		"../a", "../../x.md", "/etc/hosts",
	}
	for _, target := range targets {
		p, err := Resolve(target, current, root)
		if err != nil {
			continue
		}
		info, statErr := os.Stat(p)
		require.NoError(t, statErr, target)
		assert.True(t, info.Mode().IsRegular(), target)

		rel, relErr := filepath.Rel(root, p)
		require.NoError(t, relErr)
		assert.NotEqual(t, "..", rel, target)
		assert.False(t, filepath.IsAbs(rel), target)
		assert.NotContains(t, filepath.ToSlash(rel), "../", target)
	}
}

func TestContainNonExistentPath(t *testing.T) {
	root := setupWiki(t)

	got, err := Contain(root, filepath.Join(root, "new", "dir", "file.md"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "new", "dir", "file.md"), got)

	got, err = Contain(root, root)
	require.NoError(t, err)
	assert.Equal(t, root, got)

	_, err = Contain(root, filepath.Join(root, "..", "elsewhere.md"))
	assert.ErrorIs(t, err, ErrOutsideRoot)
}

func TestContainMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nope")

	_, err := Contain(root, filepath.Join(root, "a.md"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveFileKeepsLiteralNames(t *testing.T) {
	root := setupWiki(t)
	name := filepath.Join(root, "50% off.md")
	writeFile(t, name, "sale\n")

	got, err := ResolveFile(name, root)
	require.NoError(t, err)
	assert.Equal(t, name, got)

	_, err = Resolve(name, "", root)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestResolveFileRejections(t *testing.T) {
	root := setupWiki(t)
	outside := filepath.Join(filepath.Dir(root), "secret.md")
	writeFile(t, outside, "x")

	_, err := ResolveFile(outside, root)
	assert.ErrorIs(t, err, ErrOutsideRoot)

	_, err = ResolveFile(filepath.Join(root, "missing.md"), root)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = ResolveFile(filepath.Join(root, "a"), root)
	assert.ErrorIs(t, err, ErrNotFound)
}
