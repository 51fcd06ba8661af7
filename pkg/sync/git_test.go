package sync

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	t.Setenv("GIT_AUTHOR_NAME", "test")
	t.Setenv("GIT_AUTHOR_EMAIL", "test@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "test")
	t.Setenv("GIT_COMMITTER_EMAIL", "test@example.com")
	t.Setenv("GIT_CONFIG_GLOBAL", "/dev/null")
}

func run(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := exec.Command("git", append([]string{"-C", dir}, args...)...).CombinedOutput()
	require.NoError(t, err, string(out))
	return string(out)
}

func TestSyncRepoNotARepo(t *testing.T) {
	_, err := SyncRepo(context.Background(), t.TempDir(), nil)
	assert.ErrorIs(t, err, ErrNotRepo)

	err = SetRemote(context.Background(), t.TempDir(), "https://example.com/x.git", nil)
	assert.ErrorIs(t, err, ErrNotRepo)
}

func TestSyncRepoPushesToRemote(t *testing.T) {
	requireGit(t)
	ctx := context.Background()

	remote := t.TempDir()
	run(t, remote, "init", "--bare")

	wiki := t.TempDir()
	run(t, wiki, "init")
	require.NoError(t, SetRemote(ctx, wiki, remote, nil))
	require.NoError(t, os.WriteFile(filepath.Join(wiki, "index.md"), []byte("# Home\n"), 0644))

	res, err := SyncRepo(ctx, wiki, nil)
	require.NoError(t, err)
	assert.True(t, res.Committed)
	assert.False(t, res.Pulled)
	assert.Equal(t, "Synced: committed, pushed", res.Summary())

	log := run(t, remote, "log", "--oneline", "--all")
	assert.True(t, strings.Contains(log, "sync "), log)

	// Second sync has an upstream and nothing new to commit.
	res, err = SyncRepo(ctx, wiki, nil)
	require.NoError(t, err)
	assert.False(t, res.Committed)
	assert.True(t, res.Pulled)
}
