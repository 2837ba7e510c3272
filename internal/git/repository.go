package git

import (
	"fmt"
	"os"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	laddrerrors "laddr.dev/laddr/internal/errors"
)

// Client is a handle to one git repository. It combines a go-git repository
// for read-only plumbing (refs, commits, merge bases) with a CommandRunner
// for mutations and queries go-git does not cover.
type Client struct {
	repo   *gogit.Repository
	runner *CommandRunner
	root   string
}

// Open opens the repository containing dir.
func Open(dir string) (*Client, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	repo, err := gogit.PlainOpenWithOptions(absPath, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, laddrerrors.Wrap(laddrerrors.KindNotInRepo, err, "not a git repository: %s", absPath)
	}

	root := absPath
	if wt, err := repo.Worktree(); err == nil {
		root = wt.Filesystem.Root()
	}

	return &Client{
		repo:   repo,
		runner: NewCommandRunner(root),
		root:   root,
	}, nil
}

// OpenFromCwd opens the repository containing the current working directory.
func OpenFromCwd() (*Client, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return Open(cwd)
}

// Root returns the repository's worktree root directory.
func (c *Client) Root() string {
	return c.root
}

// resolveHash resolves any revision expression (branch name, hash, HEAD) to a
// commit hash using go-git.
func (c *Client) resolveHash(rev string) (plumbing.Hash, error) {
	h, err := c.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return plumbing.ZeroHash, laddrerrors.Wrap(laddrerrors.KindGitError, err, "failed to resolve %s", rev)
	}
	return *h, nil
}
