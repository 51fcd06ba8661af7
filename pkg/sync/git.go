// Package sync keeps a wiki folder in step with a git remote.
package sync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotRepo is returned for folders without a .git directory.
var ErrNotRepo = errors.New("not a git repository")

// Result reports what a sync did.
type Result struct {
	Committed bool
	Pulled    bool
	Merged    bool // rebase failed and a merge was used instead
}

// Summary is a one-line status message.
func (r Result) Summary() string {
	var parts []string
	if r.Committed {
		parts = append(parts, "committed")
	}
	if r.Merged {
		parts = append(parts, "merged")
	} else if r.Pulled {
		parts = append(parts, "pulled")
	}
	parts = append(parts, "pushed")
	return "Synced: " + strings.Join(parts, ", ")
}

type repo struct {
	ctx    context.Context
	dir    string
	logger *slog.Logger
}

func (r repo) git(args ...string) (string, error) {
	cmd := exec.CommandContext(r.ctx, "git", append([]string{"-C", r.dir}, args...)...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	r.logger.Debug("git", slog.String("args", strings.Join(args, " ")), slog.Bool("ok", err == nil))
	if err != nil {
		return out.String(), fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(out.String()))
	}
	return out.String(), nil
}

func open(ctx context.Context, dir string, logger *slog.Logger) (repo, error) {
	if _, err := os.Stat(filepath.Join(dir, ".git")); err != nil {
		return repo{}, fmt.Errorf("%s: %w", dir, ErrNotRepo)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return repo{ctx: ctx, dir: dir, logger: logger}, nil
}

// SetRemote points origin at remote, replacing any previous origin.
func SetRemote(ctx context.Context, dir, remote string, logger *slog.Logger) error {
	r, err := open(ctx, dir, logger)
	if err != nil {
		return err
	}
	_, _ = r.git("remote", "remove", "origin")
	if _, err := r.git("remote", "add", "origin", remote); err != nil {
		return fmt.Errorf("setting remote: %w", err)
	}
	return nil
}

// SyncRepo commits local changes, pulls (rebase first, merge as fallback)
// when an upstream is configured, and pushes.
func SyncRepo(ctx context.Context, dir string, logger *slog.Logger) (Result, error) {
	var res Result
	r, err := open(ctx, dir, logger)
	if err != nil {
		return res, err
	}

	if _, err := r.git("add", "-A"); err != nil {
		return res, err
	}
	if _, err := r.git("diff", "--cached", "--quiet"); err != nil {
		msg := "sync " + time.Now().Format("2006-01-02 15:04:05")
		if _, err := r.git("commit", "-m", msg); err != nil {
			return res, err
		}
		res.Committed = true
	}

	if _, err := r.git("rev-parse", "--abbrev-ref", "@{u}"); err == nil {
		if _, err := r.git("pull", "--rebase"); err != nil {
			r.logger.Info("rebase failed, trying merge", slog.String("dir", dir))
			_, _ = r.git("rebase", "--abort")
			if _, err := r.git("pull", "--no-rebase"); err != nil {
				_, _ = r.git("merge", "--abort")
				return res, fmt.Errorf("sync failed: could not rebase or merge, resolve conflicts manually: %w", err)
			}
			res.Merged = true
		}
		res.Pulled = true
		if _, err := r.git("push"); err != nil {
			return res, fmt.Errorf("push failed: %w", err)
		}
		return res, nil
	}

	if _, err := r.git("push", "-u", "origin", "HEAD"); err != nil {
		return res, fmt.Errorf("push failed: %w", err)
	}
	return res, nil
}
