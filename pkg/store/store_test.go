package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stefanpenner/mdwiki/pkg/wiki"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)
	return s
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestNewStoreRequiresDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.md")
	writeFile(t, file, "x")

	_, err := NewStore(file)
	assert.Error(t, err)

	_, err = NewStore(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestReadWrite(t *testing.T) {
	s := setupTestStore(t)
	path := filepath.Join(s.Root, "note.md")
	writeFile(t, path, "old")

	require.NoError(t, s.Write(path, "new content"))
	got, err := s.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "new content", got)

	// No temp files left behind
	entries, err := os.ReadDir(s.Root)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestReadWriteOutsideRoot(t *testing.T) {
	s := setupTestStore(t)
	outside := filepath.Join(t.TempDir(), "x.md")
	writeFile(t, outside, "secret")

	_, err := s.Read(outside)
	assert.ErrorIs(t, err, wiki.ErrOutsideRoot)

	err = s.Write(filepath.Join(s.Root, "..", "escape.md"), "x")
	assert.ErrorIs(t, err, wiki.ErrOutsideRoot)
}

func TestWriteKeepsPermissions(t *testing.T) {
	s := setupTestStore(t)
	path := filepath.Join(s.Root, "script.md")
	writeFile(t, path, "x")
	require.NoError(t, os.Chmod(path, 0600))

	require.NoError(t, s.Write(path, "y"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoadTree(t *testing.T) {
	s := setupTestStore(t)
	writeFile(t, filepath.Join(s.Root, "zeta.md"), "")
	writeFile(t, filepath.Join(s.Root, "Alpha.md"), "")
	writeFile(t, filepath.Join(s.Root, "notes", "b.md"), "")
	writeFile(t, filepath.Join(s.Root, "notes", "a.md"), "")
	writeFile(t, filepath.Join(s.Root, ".hidden", "x.md"), "")
	writeFile(t, filepath.Join(s.Root, ".git", "HEAD"), "")

	nodes, err := s.LoadTree()
	require.NoError(t, err)

	var names []string
	for _, n := range nodes {
		names = append(names, n.Name)
	}
	assert.Equal(t, []string{".hidden", "notes", "Alpha.md", "zeta.md"}, names)

	notes := nodes[1]
	assert.True(t, notes.IsDir)
	require.Len(t, notes.Children, 2)
	assert.Equal(t, "notes/a.md", notes.Children[0].RelPath)
	assert.Same(t, notes, notes.Children[0].Parent)
	assert.True(t, notes.Children[0].IsMarkdown())
}

func TestCreateFile(t *testing.T) {
	s := setupTestStore(t)

	p, err := s.CreateFile(s.Root, "todo.md")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Root, "todo.md"), p)
	_, err = os.Stat(p)
	assert.NoError(t, err)

	_, err = s.CreateFile(s.Root, "todo.md")
	assert.ErrorIs(t, err, ErrExists)

	_, err = s.CreateFile(s.Root, "")
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = s.CreateFile(s.Root, "../escape.md")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestCreateFolder(t *testing.T) {
	s := setupTestStore(t)

	p, err := s.CreateFolder(s.Root, "projects")
	require.NoError(t, err)
	info, err := os.Stat(p)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = s.CreateFolder(s.Root, "projects")
	assert.ErrorIs(t, err, ErrExists)

	_, err = s.CreateFile(p, "inner.md")
	assert.NoError(t, err)
}

func TestDirOf(t *testing.T) {
	s := setupTestStore(t)
	writeFile(t, filepath.Join(s.Root, "dir", "a.md"), "")

	assert.Equal(t, s.Root, s.DirOf(""))
	assert.Equal(t, filepath.Join(s.Root, "dir"), s.DirOf(filepath.Join(s.Root, "dir")))
	assert.Equal(t, filepath.Join(s.Root, "dir"), s.DirOf(filepath.Join(s.Root, "dir", "a.md")))
}

func TestDelete(t *testing.T) {
	s := setupTestStore(t)
	writeFile(t, filepath.Join(s.Root, "dir", "sub", "a.md"), "")
	writeFile(t, filepath.Join(s.Root, "b.md"), "")

	require.NoError(t, s.Delete(filepath.Join(s.Root, "b.md")))
	require.NoError(t, s.Delete(filepath.Join(s.Root, "dir")))

	_, err := os.Stat(filepath.Join(s.Root, "dir"))
	assert.True(t, os.IsNotExist(err))

	assert.ErrorIs(t, s.Delete(s.Root), ErrRoot)
	assert.Error(t, s.Delete(filepath.Join(s.Root, "missing.md")))
}

func TestRename(t *testing.T) {
	s := setupTestStore(t)
	src := filepath.Join(s.Root, "old.md")
	writeFile(t, src, "body")
	writeFile(t, filepath.Join(s.Root, "taken.md"), "")

	_, err := s.Rename(src, "")
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = s.Rename(src, "old.md")
	assert.ErrorIs(t, err, ErrSameName)

	_, err = s.Rename(src, "old")
	assert.ErrorIs(t, err, ErrSameName)

	_, err = s.Rename(src, "taken.md")
	assert.ErrorIs(t, err, ErrExists)

	_, err = s.Rename(src, "sub/new.md")
	assert.ErrorIs(t, err, ErrInvalidName)

	dst, err := s.Rename(src, "new.md")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Root, "new.md"), dst)
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "body", string(data))
}

func TestMove(t *testing.T) {
	s := setupTestStore(t)
	src := filepath.Join(s.Root, "a.md")
	writeFile(t, src, "body")
	writeFile(t, filepath.Join(s.Root, "dest", "keep.md"), "")

	_, err := s.Move(src, s.Root)
	assert.ErrorIs(t, err, ErrSamePath)

	to, err := s.Move(src, filepath.Join(s.Root, "dest"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Root, "dest", "a.md"), to)
	_, err = os.Stat(src)
	assert.True(t, os.IsNotExist(err))

	writeFile(t, src, "again")
	_, err = s.Move(src, filepath.Join(s.Root, "dest"))
	assert.ErrorIs(t, err, ErrExists)
}

func TestMoveDirectoryIntoItself(t *testing.T) {
	s := setupTestStore(t)
	writeFile(t, filepath.Join(s.Root, "dir", "sub", "a.md"), "")

	_, err := s.Move(filepath.Join(s.Root, "dir"), filepath.Join(s.Root, "dir", "sub"))
	assert.Error(t, err)

	_, err = s.Move(filepath.Join(s.Root, "dir"), t.TempDir())
	assert.ErrorIs(t, err, wiki.ErrOutsideRoot)
}

// symlinkTree lays out notes/real.md and notes/sub/b.md with two links at the
// root pointing into them: alias.md to the file and shortcut to the folder.
func symlinkTree(t *testing.T) *Store {
	t.Helper()
	s := setupTestStore(t)
	writeFile(t, filepath.Join(s.Root, "notes", "real.md"), "real")
	writeFile(t, filepath.Join(s.Root, "notes", "sub", "b.md"), "B")
	if err := os.Symlink(filepath.Join("notes", "real.md"), filepath.Join(s.Root, "alias.md")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join("notes", "sub"), filepath.Join(s.Root, "shortcut")))
	return s
}

func assertSymlink(t *testing.T, path string) {
	t.Helper()
	info, err := os.Lstat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink, "%s should be a symlink", path)
}

func TestDeleteSymlinkKeepsTarget(t *testing.T) {
	s := symlinkTree(t)

	require.NoError(t, s.Delete(filepath.Join(s.Root, "alias.md")))
	require.NoError(t, s.Delete("shortcut"))

	for _, link := range []string{"alias.md", "shortcut"} {
		_, err := os.Lstat(filepath.Join(s.Root, link))
		assert.True(t, os.IsNotExist(err), link)
	}
	data, err := os.ReadFile(filepath.Join(s.Root, "notes", "real.md"))
	require.NoError(t, err)
	assert.Equal(t, "real", string(data))
	_, err = os.Stat(filepath.Join(s.Root, "notes", "sub", "b.md"))
	assert.NoError(t, err)
}

func TestDeleteDanglingSymlink(t *testing.T) {
	s := symlinkTree(t)
	require.NoError(t, os.Remove(filepath.Join(s.Root, "notes", "real.md")))

	require.NoError(t, s.Delete(filepath.Join(s.Root, "alias.md")))
	_, err := os.Lstat(filepath.Join(s.Root, "alias.md"))
	assert.True(t, os.IsNotExist(err))
}

func TestRenameSymlinkRenamesLink(t *testing.T) {
	s := symlinkTree(t)

	dst, err := s.Rename(filepath.Join(s.Root, "alias.md"), "renamed.md")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Root, "renamed.md"), dst)
	assertSymlink(t, dst)
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "real", string(data))
	_, err = os.Stat(filepath.Join(s.Root, "notes", "real.md"))
	assert.NoError(t, err)

	dst, err = s.Rename(filepath.Join(s.Root, "shortcut"), "jump")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Root, "jump"), dst)
	assertSymlink(t, dst)
	_, err = os.Stat(filepath.Join(s.Root, "notes", "sub", "b.md"))
	assert.NoError(t, err)
}

func TestMoveSymlinkMovesLink(t *testing.T) {
	s := symlinkTree(t)
	require.NoError(t, os.Mkdir(filepath.Join(s.Root, "dest"), 0755))

	_, err := s.Move(filepath.Join(s.Root, "alias.md"), s.Root)
	assert.ErrorIs(t, err, ErrSamePath)

	to, err := s.Move(filepath.Join(s.Root, "alias.md"), filepath.Join(s.Root, "dest"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Root, "dest", "alias.md"), to)
	assertSymlink(t, to)

	to, err = s.Move(filepath.Join(s.Root, "shortcut"), filepath.Join(s.Root, "dest"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Root, "dest", "shortcut"), to)
	assertSymlink(t, to)

	_, err = os.Lstat(filepath.Join(s.Root, "alias.md"))
	assert.True(t, os.IsNotExist(err))
	data, err := os.ReadFile(filepath.Join(s.Root, "notes", "real.md"))
	require.NoError(t, err)
	assert.Equal(t, "real", string(data))
	_, err = os.Stat(filepath.Join(s.Root, "notes", "sub", "b.md"))
	assert.NoError(t, err)
}

func TestSymlinkEntryOutsideRoot(t *testing.T) {
	s := setupTestStore(t)
	outside := t.TempDir()
	writeFile(t, filepath.Join(outside, "x.md"), "x")
	if err := os.Symlink(outside, filepath.Join(s.Root, "out")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	err := s.Delete(filepath.Join(s.Root, "out", "x.md"))
	assert.ErrorIs(t, err, wiki.ErrOutsideRoot)
	_, err = os.Stat(filepath.Join(outside, "x.md"))
	assert.NoError(t, err)
}

func TestCopyTree(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "a.md"), "A")
	writeFile(t, filepath.Join(src, "sub", "b.md"), "B")
	dst := filepath.Join(t.TempDir(), "copy")

	require.NoError(t, copyTree(src, dst))
	data, err := os.ReadFile(filepath.Join(dst, "sub", "b.md"))
	require.NoError(t, err)
	assert.Equal(t, "B", string(data))
}

func TestCopyTreeKeepsSymlinks(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "a.md"), "A")
	if err := os.Symlink("a.md", filepath.Join(src, "link.md")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	dst := filepath.Join(t.TempDir(), "copy")

	require.NoError(t, copyTree(src, dst))
	assertSymlink(t, filepath.Join(dst, "link.md"))
	target, err := os.Readlink(filepath.Join(dst, "link.md"))
	require.NoError(t, err)
	assert.Equal(t, "a.md", target)
}
