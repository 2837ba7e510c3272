// Package git provides a wrapper around git commands and go-git for
// repository operations: ref resolution, branch listing, topology queries,
// checkout/rebase/merge mutations, and local config access.
package git

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	laddrerrors "laddr.dev/laddr/internal/errors"
)

// DefaultCommandTimeout is the default timeout for git commands
const DefaultCommandTimeout = 5 * time.Minute

// CommandRunner handles execution of git commands in a working directory
type CommandRunner struct {
	workingDir string
}

// NewCommandRunner creates a new CommandRunner
func NewCommandRunner(workingDir string) *CommandRunner {
	return &CommandRunner{workingDir: workingDir}
}

// Run executes a git command and returns its trimmed stdout.
// A non-zero exit is reported as a GIT_ERROR.
func (r *CommandRunner) Run(ctx context.Context, args ...string) (string, error) {
	stdout, _, _, err := r.run(ctx, args...)
	if err != nil {
		return "", err
	}
	return stdout, nil
}

// run executes a git command and returns stdout, stderr and the exit code.
// The returned error is nil for exit code 0 only; callers that treat
// specific non-zero codes as expected (config lookups, ancestry checks)
// inspect the code directly.
func (r *CommandRunner) run(ctx context.Context, args ...string) (string, string, int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultCommandTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	if r.workingDir != "" {
		cmd.Dir = r.workingDir
	}
	cmd.Env = os.Environ()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return "", "", -1, laddrerrors.NewGitCommandError(args, stdout.String(), stderr.String(), err)
		}
	}

	out := strings.TrimSpace(stdout.String())
	if exitCode != 0 {
		return out, stderr.String(), exitCode, laddrerrors.NewGitCommandError(args, stdout.String(), stderr.String(), err)
	}
	return out, stderr.String(), 0, nil
}
