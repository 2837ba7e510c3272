package git

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
)

// Branch describes a local branch: its name, optional upstream, ahead/behind
// counts relative to that upstream, and whether it is currently checked out.
type Branch struct {
	Name     string
	Upstream string
	Ahead    int
	Behind   int
	Current  bool
}

// BranchExists reports whether a local branch with the given name exists.
func (c *Client) BranchExists(ctx context.Context, name string) (bool, error) {
	_, err := c.repo.Reference(plumbing.NewBranchReferenceName(name), false)
	if err == plumbing.ErrReferenceNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CurrentBranch returns the name of the checked-out branch, or "" when HEAD
// is detached.
func (c *Client) CurrentBranch(ctx context.Context) (string, error) {
	head, err := c.repo.Head()
	if err != nil {
		// Unborn HEAD (fresh repo) also lands here.
		return "", nil
	}
	if !head.Name().IsBranch() {
		return "", nil
	}
	return head.Name().Short(), nil
}

// ListBranches returns all local branches with upstream tracking info.
func (c *Client) ListBranches(ctx context.Context) ([]Branch, error) {
	out, err := c.runner.Run(ctx,
		"for-each-ref", "refs/heads",
		"--format=%(refname:short)\t%(upstream:short)\t%(upstream:track,nobracket)\t%(HEAD)")
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}

	var branches []Branch
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Split(line, "\t")
		if len(fields) < 4 {
			continue
		}
		b := Branch{
			Name:     fields[0],
			Upstream: fields[1],
			Current:  fields[3] == "*",
		}
		b.Ahead, b.Behind = parseTrack(fields[2])
		branches = append(branches, b)
	}
	return branches, nil
}

// parseTrack parses for-each-ref upstream:track output, e.g. "ahead 2, behind 1".
func parseTrack(track string) (ahead, behind int) {
	for _, part := range strings.Split(track, ",") {
		part = strings.TrimSpace(part)
		switch {
		case strings.HasPrefix(part, "ahead "):
			ahead, _ = strconv.Atoi(strings.TrimPrefix(part, "ahead "))
		case strings.HasPrefix(part, "behind "):
			behind, _ = strconv.Atoi(strings.TrimPrefix(part, "behind "))
		}
	}
	return ahead, behind
}
