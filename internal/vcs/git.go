// Package vcs backs the note directory up to, and syncs it from, a remote
// git repository by running the git binary.
package vcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// ErrNotGitRepo indicates the note directory is not a git repository.
var ErrNotGitRepo = errors.New("not a git repository")

// Repo runs git commands inside one directory.
type Repo struct {
	dir    string
	git    string
	logger *slog.Logger
}

// New returns a Repo for dir. It fails with ErrNotGitRepo when dir is not
// inside a work tree.
func New(ctx context.Context, dir string, logger *slog.Logger) (*Repo, error) {
	r := &Repo{dir: dir, git: "git", logger: logger}
	out, err := r.run(ctx, "rev-parse", "--is-inside-work-tree")
	if err != nil || strings.TrimSpace(out) != "true" {
		return nil, fmt.Errorf("vcs: %s: %w", dir, ErrNotGitRepo)
	}
	return r, nil
}

// Dirty reports whether the work tree has uncommitted changes, untracked
// files included.
func (r *Repo) Dirty(ctx context.Context) (bool, error) {
	out, err := r.run(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// Commit stages everything and commits it with message. It returns false
// without committing when there is nothing to commit.
func (r *Repo) Commit(ctx context.Context, message string) (bool, error) {
	dirty, err := r.Dirty(ctx)
	if err != nil || !dirty {
		return false, err
	}
	if _, err := r.run(ctx, "add", "--all"); err != nil {
		return false, err
	}
	if _, err := r.run(ctx, "commit", "--quiet", "-m", message); err != nil {
		return false, err
	}
	r.logger.Info("vcs: committed", slog.String("dir", r.dir), slog.String("message", message))
	return true, nil
}

// Backup commits pending changes and pushes to the configured upstream.
func (r *Repo) Backup(ctx context.Context, message string) error {
	if _, err := r.Commit(ctx, message); err != nil {
		return err
	}
	if _, err := r.run(ctx, "push", "--quiet"); err != nil {
		return err
	}
	r.logger.Info("vcs: pushed", slog.String("dir", r.dir))
	return nil
}

// Sync pulls from the configured upstream.
func (r *Repo) Sync(ctx context.Context) error {
	if _, err := r.run(ctx, "pull", "--quiet", "--ff-only"); err != nil {
		return err
	}
	r.logger.Info("vcs: pulled", slog.String("dir", r.dir))
	return nil
}

func (r *Repo) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, r.git, append([]string{"-C", r.dir}, args...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("vcs: git %s: %s", args[0], msg)
	}
	return stdout.String(), nil
}
