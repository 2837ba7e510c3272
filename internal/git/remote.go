package git

import (
	"context"
	"fmt"
)

// RemoteURL returns the fetch URL of the named remote.
func (c *Client) RemoteURL(ctx context.Context, name string) (string, error) {
	url, err := c.runner.Run(ctx, "remote", "get-url", name)
	if err != nil {
		return "", fmt.Errorf("failed to get URL for remote %s: %w", name, err)
	}
	return url, nil
}

// Push pushes a branch to the named remote with --force-with-lease, the
// safe default for rewritten stack branches.
func (c *Client) Push(ctx context.Context, remote, branch string) error {
	_, err := c.runner.Run(ctx, "push", "--force-with-lease", "--set-upstream", remote, branch)
	if err != nil {
		return fmt.Errorf("failed to push %s: %w", branch, err)
	}
	return nil
}
