package tui

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"github.com/stefanpenner/mdwiki/pkg/store"
)

// FileChangedMsg is sent when the watched wiki folder changes on disk.
type FileChangedMsg struct {
	Root string
}

const debounce = 200 * time.Millisecond

// Watcher watches the directories of one wiki folder at a time. Watch may be
// called again when the user opens another folder.
type Watcher struct {
	fs     *fsnotify.Watcher
	logger *slog.Logger

	mu   sync.Mutex
	root string
	dirs map[string]bool
	done chan struct{}
}

// NewWatcher creates an idle watcher.
func NewWatcher(logger *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fs:     fw,
		logger: logger,
		dirs:   make(map[string]bool),
		done:   make(chan struct{}),
	}, nil
}

// Watch replaces the watched tree with root and every non-hidden directory
// below it.
func (w *Watcher) Watch(root string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for dir := range w.dirs {
		_ = w.fs.Remove(dir)
	}
	w.dirs = make(map[string]bool)
	w.root = root

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != root {
			return filepath.SkipDir
		}
		return w.addLocked(path)
	})
}

func (w *Watcher) addLocked(dir string) error {
	if err := w.fs.Add(dir); err != nil {
		return err
	}
	w.dirs[dir] = true
	return nil
}

// Start delivers debounced FileChangedMsg values through send until Close.
func (w *Watcher) Start(send func(tea.Msg)) {
	go func() {
		var timer *time.Timer
		for {
			select {
			case event, ok := <-w.fs.Events:
				if !ok {
					return
				}
				if strings.HasPrefix(filepath.Base(event.Name), store.TempPrefix) {
					continue
				}

				w.mu.Lock()
				root := w.root
				if event.Op&fsnotify.Create != 0 {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !strings.HasPrefix(info.Name(), ".") {
						if err := w.addLocked(event.Name); err != nil {
							w.logger.Warn("watch new directory", slog.String("dir", event.Name), slog.String("error", err.Error()))
						}
					}
				}
				if event.Op&fsnotify.Remove != 0 {
					delete(w.dirs, event.Name)
				}
				w.mu.Unlock()

				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(debounce, func() {
					send(FileChangedMsg{Root: root})
				})

			case err, ok := <-w.fs.Errors:
				if !ok {
					return
				}
				w.logger.Warn("file watcher", slog.String("error", err.Error()))

			case <-w.done:
				if timer != nil {
					timer.Stop()
				}
				return
			}
		}
	}()
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fs.Close()
}
