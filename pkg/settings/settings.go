// Package settings persists per-user state: the recently opened wiki folders.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// MaxRecent caps the recent-folders list.
const MaxRecent = 5

// Settings is the on-disk settings document.
type Settings struct {
	RecentFolders []string `yaml:"recent_folders"`
}

// AddRecent moves folder to the front of the recent list, dropping any
// earlier occurrence and anything past MaxRecent.
func (s *Settings) AddRecent(folder string) {
	if folder == "" {
		return
	}
	list := make([]string, 0, MaxRecent)
	list = append(list, folder)
	for _, f := range s.RecentFolders {
		if f != folder && len(list) < MaxRecent {
			list = append(list, f)
		}
	}
	s.RecentFolders = list
}

// MostRecent returns the last opened folder, or "".
func (s *Settings) MostRecent() string {
	if len(s.RecentFolders) == 0 {
		return ""
	}
	return s.RecentFolders[0]
}

// Prune drops recent folders that no longer exist and reports whether
// anything was removed.
func (s *Settings) Prune() bool {
	before := len(s.RecentFolders)
	s.RecentFolders = slices.DeleteFunc(s.RecentFolders, func(f string) bool {
		info, err := os.Stat(f)
		return err != nil || !info.IsDir()
	})
	return len(s.RecentFolders) != before
}

// File is a settings document stored at Path.
type File struct {
	Path string
}

// Load reads the settings. A missing file yields empty settings.
func (f *File) Load() (*Settings, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return &Settings{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing settings %s: %w", f.Path, err)
	}
	if len(s.RecentFolders) > MaxRecent {
		s.RecentFolders = s.RecentFolders[:MaxRecent]
	}
	return &s, nil
}

// Save writes the settings atomically, creating the directory if needed.
func (f *File) Save(s *Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating settings dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.yaml")
	if err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	return nil
}

// Remember records root as the most recently opened wiki folder.
func (f *File) Remember(root string) error {
	s, err := f.Load()
	if err != nil {
		return err
	}
	s.AddRecent(root)
	return f.Save(s)
}

// Recent returns the recent folders, most recent first.
func (f *File) Recent() ([]string, error) {
	s, err := f.Load()
	if err != nil {
		return nil, err
	}
	return s.RecentFolders, nil
}
