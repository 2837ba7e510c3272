// Package testhelpers provides real-git fixtures for integration-style
// tests: temporary repositories with helpers for building branch topologies.
package testhelpers

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

const textFileName = "test.txt"

// GitRepo is a throwaway git repository used by tests.
type GitRepo struct {
	Dir string
}

// NewGitRepo initializes a new repository in dir with `main` as the default
// branch and a test user configured.
func NewGitRepo(dir string) (*GitRepo, error) {
	cmd := exec.Command("git",
		"-c", "init.defaultBranch=main",
		"-c", "core.autocrlf=false",
		"init", dir, "-b", "main")
	cmd.Env = append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null")
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("failed to init repo: %w", err)
	}

	repo := &GitRepo{Dir: dir}
	if err := repo.Run("config", "user.name", "Test User"); err != nil {
		return nil, err
	}
	if err := repo.Run("config", "user.email", "test@example.com"); err != nil {
		return nil, err
	}
	return repo, nil
}

// Run executes a git command in the repository.
func (r *GitRepo) Run(args ...string) error {
	_, err := r.RunAndGetOutput(args...)
	return err
}

// RunAndGetOutput executes a git command and returns its trimmed stdout.
func (r *GitRepo) RunAndGetOutput(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	cmd.Env = append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// CreateChange writes a new file so the next commit has content.
func (r *GitRepo) CreateChange(prefix string) error {
	path := filepath.Join(r.Dir, prefix+"_"+textFileName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(prefix+"\n"), 0o644); err != nil {
		return err
	}
	return r.Run("add", ".")
}

// CreateChangeAndCommit writes a file and commits it.
func (r *GitRepo) CreateChangeAndCommit(prefix string) error {
	if err := r.CreateChange(prefix); err != nil {
		return err
	}
	return r.Run("commit", "-m", prefix)
}

// CommitConflictingChange commits new content to a fixed path so two
// branches touching it will conflict on replay.
func (r *GitRepo) CommitConflictingChange(content, message string) error {
	path := filepath.Join(r.Dir, textFileName)
	if err := os.WriteFile(path, []byte(content+"\n"), 0o644); err != nil {
		return err
	}
	if err := r.Run("add", "."); err != nil {
		return err
	}
	return r.Run("commit", "-m", message)
}

// CreateAndCheckoutBranch creates and checks out a branch.
func (r *GitRepo) CreateAndCheckoutBranch(name string) error {
	return r.Run("checkout", "-b", name)
}

// CheckoutBranch checks out an existing branch.
func (r *GitRepo) CheckoutBranch(name string) error {
	return r.Run("checkout", name)
}

// CurrentBranchName returns the checked-out branch name.
func (r *GitRepo) CurrentBranchName() (string, error) {
	return r.RunAndGetOutput("branch", "--show-current")
}

// GetRef resolves a revision to a commit hash.
func (r *GitRepo) GetRef(rev string) (string, error) {
	return r.RunAndGetOutput("rev-parse", rev)
}

// GetCommitCount returns the commit count from..to.
func (r *GitRepo) GetCommitCount(from, to string) (int, error) {
	out, err := r.RunAndGetOutput("rev-list", "--count", from+".."+to)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(out)
}

// AmendCommit rewrites the tip commit, changing its hash.
func (r *GitRepo) AmendCommit() error {
	return r.Run("commit", "--amend", "--no-edit", "--reset-author")
}

// RebaseInProgress reports whether a rebase is mid-flight.
func (r *GitRepo) RebaseInProgress() bool {
	gitDir, err := r.RunAndGetOutput("rev-parse", "--git-dir")
	if err != nil {
		return false
	}
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(r.Dir, gitDir)
	}
	for _, marker := range []string{"rebase-merge", "rebase-apply"} {
		if _, err := os.Stat(filepath.Join(gitDir, marker)); err == nil {
			return true
		}
	}
	return false
}
