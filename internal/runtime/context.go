// Package runtime provides the shared context handed to commands: the git
// client, the relationship store, the sync engine, and the logger.
package runtime

import (
	"fmt"

	"laddr.dev/laddr/internal/config"
	"laddr.dev/laddr/internal/git"
	"laddr.dev/laddr/internal/output"
	"laddr.dev/laddr/internal/stack"
)

// Context bundles the collaborators a command needs.
type Context struct {
	Git      *git.Client
	Store    *stack.RelationshipStore
	Sync     *stack.SyncEngine
	Splog    *output.Splog
	RepoRoot string
	MaxDrift int
}

// NewContext opens the repository containing the working directory and
// wires up the engine. Commands other than `laddr init` require the repo to
// be initialized.
func NewContext(requireInit bool) (*Context, error) {
	client, err := git.OpenFromCwd()
	if err != nil {
		return nil, err
	}

	repoRoot := client.Root()
	if requireInit && !config.IsInitialized(repoRoot) {
		return nil, fmt.Errorf("laddr not initialized. Run 'laddr init' first")
	}

	store := stack.NewRelationshipStore(client, client)
	return &Context{
		Git:      client,
		Store:    store,
		Sync:     stack.NewSyncEngine(store, client, client),
		Splog:    output.NewSplog(),
		RepoRoot: repoRoot,
		MaxDrift: config.GetMaxDriftCommits(repoRoot),
	}, nil
}

// GraphBuilder returns a fresh detection pass builder. A new builder is
// created per call so its memo caches are never reused across passes.
func (c *Context) GraphBuilder() *stack.GraphBuilder {
	return stack.NewGraphBuilder(c.Git, c.Store, c.MaxDrift)
}
