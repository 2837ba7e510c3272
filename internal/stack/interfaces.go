package stack

import (
	"context"

	"laddr.dev/laddr/internal/git"
)

// Querier is the read-only view of the version-control backend consumed by
// detection and drift computation. *git.Client satisfies it.
type Querier interface {
	ResolveCommit(ctx context.Context, ref string) (string, error)
	// MergeBase returns "" (not an error) when the histories are unrelated.
	MergeBase(ctx context.Context, a, b string) (string, error)
	CommitCount(ctx context.Context, from, to string) (int, error)
	BranchExists(ctx context.Context, name string) (bool, error)
	// CurrentBranch returns "" when HEAD is detached.
	CurrentBranch(ctx context.Context) (string, error)
	ListBranches(ctx context.Context) ([]git.Branch, error)
	IsAncestor(ctx context.Context, ancestor, descendant string) (bool, error)
}

// Mutator is the mutating view of the backend consumed by the sync engine.
// *git.Client satisfies it.
type Mutator interface {
	Checkout(ctx context.Context, branch string) error
	CheckoutNew(ctx context.Context, branch string) error
	RebaseOnto(ctx context.Context, parent string) error
	MergeIn(ctx context.Context, parent string) error
	AbortRebase(ctx context.Context) error
	AbortMerge(ctx context.Context) error
	WorkingTreeStatus(ctx context.Context) ([]git.StatusEntry, error)
	HasUncommittedChanges(ctx context.Context) (bool, error)
}

// ConfigStore is the flat key/value store backing explicit stack metadata.
// *git.Client satisfies it with the repository's local git config.
type ConfigStore interface {
	ConfigGet(ctx context.Context, key string) (string, error)
	ConfigSet(ctx context.Context, key, value string) error
	ConfigUnset(ctx context.Context, key string) error
	ConfigGetRegexp(ctx context.Context, pattern string) (map[string]string, error)
}
