package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/stefanpenner/mdwiki/pkg/wiki"
)

// TempPrefix starts the names of in-flight atomic writes.
const TempPrefix = ".mdwiki-tmp-"

// Store manages the files of one wiki folder.
type Store struct {
	Root string // absolute
}

// NewStore creates a Store rooted at an existing directory.
func NewStore(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving wiki root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("opening wiki root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("wiki root %s is not a directory", abs)
	}
	return &Store{Root: abs}, nil
}

// safePath rejects any path that escapes the wiki root.
func (s *Store) safePath(path string) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.Root, path)
	}
	p, err := wiki.Contain(s.Root, path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// entryPath locates a tree entry for operations that act on the entry
// itself. Only the parent directory is canonicalised, so a symlink entry
// names the link and not its target.
func (s *Store) entryPath(path string) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.Root, path)
	}
	path = filepath.Clean(path)
	if path == s.Root {
		return s.Root, nil
	}
	dir, err := wiki.Contain(s.Root, filepath.Dir(path))
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	p := filepath.Join(dir, filepath.Base(path))
	if _, err := os.Lstat(p); err != nil {
		return "", fmt.Errorf("%s: %w", s.Rel(p), err)
	}
	return p, nil
}

// Rel returns path relative to the root, slash-separated.
func (s *Store) Rel(path string) string {
	rel, err := filepath.Rel(s.Root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

// Read returns the contents of a wiki file.
func (s *Store) Read(path string) (string, error) {
	p, err := s.safePath(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", s.Rel(p), err)
	}
	return string(data), nil
}

// Write atomically replaces a wiki file: temp file, fsync, rename.
func (s *Store) Write(path, content string) error {
	p, err := s.safePath(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(p)

	perm := os.FileMode(0644)
	if info, err := os.Stat(p); err == nil {
		perm = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, TempPrefix+"*")
	if err != nil {
		return fmt.Errorf("writing %s: %w", s.Rel(p), err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.WriteString(content); err != nil {
		return fmt.Errorf("writing %s: %w", s.Rel(p), err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing %s: %w", s.Rel(p), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", s.Rel(p), err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("writing %s: %w", s.Rel(p), err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		return fmt.Errorf("replacing %s: %w", s.Rel(p), err)
	}
	success = true
	return nil
}

// LoadTree loads the whole wiki hierarchy. Directories sort before files,
// names compare case-insensitively.
func (s *Store) LoadTree() ([]*Node, error) {
	nodes, err := s.loadDir(s.Root, nil)
	if err != nil {
		return nil, fmt.Errorf("reading wiki folder: %w", err)
	}
	return nodes, nil
}

func (s *Store) loadDir(dir string, parent *Node) ([]*Node, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var nodes []*Node
	for _, entry := range entries {
		name := entry.Name()
		if name == ".git" || strings.HasPrefix(name, TempPrefix) {
			continue
		}
		path := filepath.Join(dir, name)
		node := &Node{
			Name:    name,
			Path:    path,
			RelPath: s.Rel(path),
			IsDir:   entry.IsDir(),
			Parent:  parent,
		}
		if node.IsDir {
			children, err := s.loadDir(path, node)
			if err != nil {
				continue // unreadable directories show up empty
			}
			node.Children = children
		}
		nodes = append(nodes, node)
	}

	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].IsDir != nodes[j].IsDir {
			return nodes[i].IsDir
		}
		return strings.ToLower(nodes[i].Name) < strings.ToLower(nodes[j].Name)
	})
	return nodes, nil
}

// DirOf returns the directory new entries go into when path is selected:
// path itself for directories, its parent for files, the root for "".
func (s *Store) DirOf(path string) string {
	if path == "" {
		return s.Root
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return path
	}
	return filepath.Dir(path)
}

// CreateFile creates an empty file named name inside dir.
func (s *Store) CreateFile(dir, name string) (string, error) {
	p, err := s.newEntryPath(dir, name)
	if err != nil {
		return "", err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if errors.Is(err, os.ErrExist) {
		return "", fmt.Errorf("file %s: %w", s.Rel(p), ErrExists)
	}
	if err != nil {
		return "", fmt.Errorf("creating file %s: %w", s.Rel(p), err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("creating file %s: %w", s.Rel(p), err)
	}
	return p, nil
}

// CreateFolder creates a directory named name inside dir.
func (s *Store) CreateFolder(dir, name string) (string, error) {
	p, err := s.newEntryPath(dir, name)
	if err != nil {
		return "", err
	}
	err = os.Mkdir(p, 0755)
	if errors.Is(err, os.ErrExist) {
		return "", fmt.Errorf("folder %s: %w", s.Rel(p), ErrExists)
	}
	if err != nil {
		return "", fmt.Errorf("creating folder %s: %w", s.Rel(p), err)
	}
	return p, nil
}

func (s *Store) newEntryPath(dir, name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	d, err := s.safePath(dir)
	if err != nil {
		return "", err
	}
	return s.safePath(filepath.Join(d, name))
}

// Delete removes a file, or a directory and everything under it.
func (s *Store) Delete(path string) error {
	p, err := s.entryPath(path)
	if err != nil {
		return fmt.Errorf("deleting: %w", err)
	}
	if p == s.Root {
		return ErrRoot
	}
	if err := os.RemoveAll(p); err != nil {
		return fmt.Errorf("deleting %s: %w", s.Rel(p), err)
	}
	return nil
}

// Rename gives path a new name in the same directory. A name equal to the
// current one, with or without its extension, is ErrSameName.
func (s *Store) Rename(path, newName string) (string, error) {
	p, err := s.entryPath(path)
	if err != nil {
		return "", err
	}
	if p == s.Root {
		return "", ErrRoot
	}
	if err := validateName(newName); err != nil {
		return "", err
	}
	base := filepath.Base(p)
	if newName == base || newName == strings.TrimSuffix(base, filepath.Ext(base)) {
		return "", ErrSameName
	}

	dst := filepath.Join(filepath.Dir(p), newName)
	if _, err := os.Lstat(dst); err == nil {
		return "", fmt.Errorf("%s: %w", s.Rel(dst), ErrExists)
	}
	if err := os.Rename(p, dst); err != nil {
		return "", fmt.Errorf("renaming %s: %w", s.Rel(p), err)
	}
	return dst, nil
}

// Move moves src into destDir, keeping its name. When a plain rename fails
// across devices the entry is copied and the source removed.
func (s *Store) Move(src, destDir string) (string, error) {
	from, err := s.entryPath(src)
	if err != nil {
		return "", err
	}
	if from == s.Root {
		return "", ErrRoot
	}
	dir, err := s.safePath(destDir)
	if err != nil {
		return "", err
	}
	to := filepath.Join(dir, filepath.Base(from))

	if to == from {
		return "", ErrSamePath
	}
	if dir == from || strings.HasPrefix(dir, from+string(filepath.Separator)) {
		return "", fmt.Errorf("cannot move %s into itself", s.Rel(from))
	}
	if _, err := os.Lstat(to); err == nil {
		return "", fmt.Errorf("%s: %w", s.Rel(to), ErrExists)
	}

	err = os.Rename(from, to)
	if err == nil {
		return to, nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return "", fmt.Errorf("moving %s: %w", s.Rel(from), err)
	}
	if err := copyTree(from, to); err != nil {
		_ = os.RemoveAll(to)
		return "", fmt.Errorf("moving %s: %w", s.Rel(from), err)
	}
	if err := os.RemoveAll(from); err != nil {
		return "", fmt.Errorf("removing %s after copy: %w", s.Rel(from), err)
	}
	return to, nil
}

func copyTree(src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return err
	}
	if info.Mode()&os.ModeSymlink != 0 {
		target, err := os.Readlink(src)
		if err != nil {
			return err
		}
		return os.Symlink(target, dst)
	}
	if !info.IsDir() {
		return copyFile(src, dst, info.Mode().Perm())
	}
	if err := os.Mkdir(dst, info.Mode().Perm()); err != nil {
		return err
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := copyTree(filepath.Join(src, e.Name()), filepath.Join(dst, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("empty name: %w", ErrInvalidName)
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	return nil
}

func hasMarkdownExt(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return true
	}
	return false
}
