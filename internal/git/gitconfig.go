package git

import (
	"context"
	"strings"
)

// git config exit codes we treat as expected outcomes rather than failures.
const (
	configExitMissingKey     = 1
	configExitMissingSection = 5
)

// ConfigGet reads a key from the repository's local git config. A missing
// key is not an error; it returns ("", nil).
func (c *Client) ConfigGet(ctx context.Context, key string) (string, error) {
	out, _, code, err := c.runner.run(ctx, "config", "--local", "--get", key)
	if code == configExitMissingKey {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return out, nil
}

// ConfigSet writes a key to the repository's local git config.
func (c *Client) ConfigSet(ctx context.Context, key, value string) error {
	_, err := c.runner.Run(ctx, "config", "--local", key, value)
	return err
}

// ConfigUnset removes a key from the repository's local git config.
// Unsetting an absent key is not an error.
func (c *Client) ConfigUnset(ctx context.Context, key string) error {
	_, _, code, err := c.runner.run(ctx, "config", "--local", "--unset-all", key)
	if code == configExitMissingKey || code == configExitMissingSection {
		return nil
	}
	return err
}

// ConfigGetRegexp enumerates local config keys matching pattern, returning
// key -> value. No matches yields an empty map.
func (c *Client) ConfigGetRegexp(ctx context.Context, pattern string) (map[string]string, error) {
	out, _, code, err := c.runner.run(ctx, "config", "--local", "--get-regexp", pattern)
	if code == configExitMissingKey {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}

	result := make(map[string]string)
	if out == "" {
		return result, nil
	}
	for _, line := range strings.Split(out, "\n") {
		key, value, found := strings.Cut(line, " ")
		if !found {
			result[line] = ""
			continue
		}
		result[key] = value
	}
	return result, nil
}
