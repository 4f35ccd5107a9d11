package vcs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

func gitCmd(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_NotARepo(t *testing.T) {
	requireGit(t)
	_, err := New(context.Background(), t.TempDir(), discard())
	if !errors.Is(err, ErrNotGitRepo) {
		t.Errorf("err = %v, want ErrNotGitRepo", err)
	}
}

func TestBackupAndSync(t *testing.T) {
	requireGit(t)
	t.Setenv("GIT_AUTHOR_NAME", "test")
	t.Setenv("GIT_AUTHOR_EMAIL", "test@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "test")
	t.Setenv("GIT_COMMITTER_EMAIL", "test@example.com")
	ctx := context.Background()

	remote := filepath.Join(t.TempDir(), "remote.git")
	gitCmd(t, filepath.Dir(remote), "init", "--quiet", "--bare", remote)

	work := filepath.Join(t.TempDir(), "work")
	gitCmd(t, filepath.Dir(work), "clone", "--quiet", remote, work)

	repo, err := New(ctx, work, discard())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if dirty, err := repo.Dirty(ctx); err != nil || dirty {
		t.Fatalf("fresh clone dirty = %v, %v", dirty, err)
	}

	if err := os.WriteFile(filepath.Join(work, "a.md"), []byte("note"), 0o644); err != nil {
		t.Fatal(err)
	}
	committed, err := repo.Commit(ctx, "first")
	if err != nil || !committed {
		t.Fatalf("Commit = %v, %v", committed, err)
	}
	committed, err = repo.Commit(ctx, "nothing")
	if err != nil || committed {
		t.Errorf("empty Commit = %v, %v", committed, err)
	}

	gitCmd(t, work, "push", "--quiet", "-u", "origin", "HEAD")
	if err := os.WriteFile(filepath.Join(work, "b.md"), []byte("note"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := repo.Backup(ctx, "second"); err != nil {
		t.Fatalf("Backup: %v", err)
	}

	other := filepath.Join(t.TempDir(), "other")
	gitCmd(t, filepath.Dir(other), "clone", "--quiet", remote, other)
	if _, err := os.Stat(filepath.Join(other, "b.md")); err != nil {
		t.Fatalf("backup not pushed: %v", err)
	}

	if err := os.WriteFile(filepath.Join(other, "c.md"), []byte("note"), 0o644); err != nil {
		t.Fatal(err)
	}
	gitCmd(t, other, "add", "c.md")
	gitCmd(t, other, "commit", "--quiet", "-m", "third")
	gitCmd(t, other, "push", "--quiet")

	if err := repo.Sync(ctx); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if _, err := os.Stat(filepath.Join(work, "c.md")); err != nil {
		t.Errorf("sync did not pull c.md: %v", err)
	}
}
