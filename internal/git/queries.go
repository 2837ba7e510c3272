package git

import (
	"context"
	"fmt"
	"strconv"
)

// ResolveCommit resolves a revision expression (branch name, hash, HEAD) to
// a full commit hash.
func (c *Client) ResolveCommit(ctx context.Context, ref string) (string, error) {
	h, err := c.resolveHash(ref)
	if err != nil {
		return "", err
	}
	return h.String(), nil
}

// MergeBase returns the most recent common ancestor of two revisions, or ""
// when the histories are unrelated.
func (c *Client) MergeBase(ctx context.Context, a, b string) (string, error) {
	hashA, err := c.resolveHash(a)
	if err != nil {
		return "", err
	}
	hashB, err := c.resolveHash(b)
	if err != nil {
		return "", err
	}

	commitA, err := c.repo.CommitObject(hashA)
	if err != nil {
		return "", fmt.Errorf("failed to load commit %s: %w", hashA, err)
	}
	commitB, err := c.repo.CommitObject(hashB)
	if err != nil {
		return "", fmt.Errorf("failed to load commit %s: %w", hashB, err)
	}

	bases, err := commitA.MergeBase(commitB)
	if err != nil {
		return "", fmt.Errorf("failed to find merge base of %s and %s: %w", a, b, err)
	}
	if len(bases) == 0 {
		return "", nil
	}
	return bases[0].Hash.String(), nil
}

// CommitCount returns the number of commits reachable from `to` but not from
// `from`, i.e. `git rev-list --count from..to`.
func (c *Client) CommitCount(ctx context.Context, from, to string) (int, error) {
	out, err := c.runner.Run(ctx, "rev-list", "--count", from+".."+to)
	if err != nil {
		return 0, err
	}
	count, err := strconv.Atoi(out)
	if err != nil {
		return 0, fmt.Errorf("unexpected rev-list output %q: %w", out, err)
	}
	return count, nil
}

// IsAncestor reports whether ancestor is reachable from descendant. Equal
// revisions count as ancestors.
func (c *Client) IsAncestor(ctx context.Context, ancestor, descendant string) (bool, error) {
	hashAnc, err := c.resolveHash(ancestor)
	if err != nil {
		return false, err
	}
	hashDesc, err := c.resolveHash(descendant)
	if err != nil {
		return false, err
	}
	if hashAnc == hashDesc {
		return true, nil
	}

	commitAnc, err := c.repo.CommitObject(hashAnc)
	if err != nil {
		return false, fmt.Errorf("failed to load commit %s: %w", hashAnc, err)
	}
	commitDesc, err := c.repo.CommitObject(hashDesc)
	if err != nil {
		return false, fmt.Errorf("failed to load commit %s: %w", hashDesc, err)
	}

	return commitAnc.IsAncestor(commitDesc)
}
