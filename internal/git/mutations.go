package git

import (
	"context"
	"fmt"
	"strings"
)

// StatusEntry is one line of `git status --porcelain`: the two-character
// status code and the path it applies to.
type StatusEntry struct {
	Code string
	Path string
}

// IsConflict reports whether the entry marks an unmerged path left behind by
// a conflicted rebase or merge.
func (e StatusEntry) IsConflict() bool {
	switch e.Code {
	case "UU", "AA", "DD":
		return true
	}
	return false
}

// Checkout checks out an existing branch.
func (c *Client) Checkout(ctx context.Context, branch string) error {
	_, err := c.runner.Run(ctx, "checkout", branch)
	if err != nil {
		return fmt.Errorf("failed to checkout %s: %w", branch, err)
	}
	return nil
}

// CheckoutNew creates and checks out a new branch.
func (c *Client) CheckoutNew(ctx context.Context, branch string) error {
	_, err := c.runner.Run(ctx, "checkout", "-b", branch)
	if err != nil {
		return fmt.Errorf("failed to create branch %s: %w", branch, err)
	}
	return nil
}

// RebaseOnto rebases the checked-out branch onto parent.
func (c *Client) RebaseOnto(ctx context.Context, parent string) error {
	_, err := c.runner.Run(ctx, "rebase", parent)
	return err
}

// MergeIn merges parent into the checked-out branch.
func (c *Client) MergeIn(ctx context.Context, parent string) error {
	_, err := c.runner.Run(ctx, "merge", "--no-edit", parent)
	return err
}

// AbortRebase aborts an in-progress rebase. Safe to call when none is in
// progress; the resulting error is returned as-is.
func (c *Client) AbortRebase(ctx context.Context) error {
	_, err := c.runner.Run(ctx, "rebase", "--abort")
	return err
}

// AbortMerge aborts an in-progress merge.
func (c *Client) AbortMerge(ctx context.Context) error {
	_, err := c.runner.Run(ctx, "merge", "--abort")
	return err
}

// WorkingTreeStatus returns the parsed porcelain status of the working tree.
func (c *Client) WorkingTreeStatus(ctx context.Context) ([]StatusEntry, error) {
	out, err := c.runner.Run(ctx, "status", "--porcelain")
	if err != nil {
		return nil, err
	}
	return ParsePorcelainStatus(out), nil
}

// HasUncommittedChanges reports whether the working tree or index is dirty.
func (c *Client) HasUncommittedChanges(ctx context.Context) (bool, error) {
	entries, err := c.WorkingTreeStatus(ctx)
	if err != nil {
		return false, err
	}
	return len(entries) > 0, nil
}

// ParsePorcelainStatus parses `git status --porcelain` output lines.
func ParsePorcelainStatus(out string) []StatusEntry {
	if out == "" {
		return nil
	}
	var entries []StatusEntry
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 4 {
			continue
		}
		entries = append(entries, StatusEntry{
			Code: strings.ReplaceAll(line[:2], " ", ""),
			Path: strings.TrimSpace(line[3:]),
		})
	}
	return entries
}
