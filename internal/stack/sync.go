package stack

import (
	"context"
	"sort"

	laddrerrors "laddr.dev/laddr/internal/errors"
)

// SyncEngine detects drift between tracked branches and their recorded
// parents and replays branches safely, aborting and rolling back on
// conflict. It never leaves the working tree mid-conflict or on the wrong
// branch.
type SyncEngine struct {
	store *RelationshipStore
	git   Querier
	mut   Mutator
}

// NewSyncEngine creates a sync engine over the given store and backends.
func NewSyncEngine(store *RelationshipStore, querier Querier, mut Mutator) *SyncEngine {
	return &SyncEngine{store: store, git: querier, mut: mut}
}

// GetBranchSyncStatus derives a branch's drift status from its recorded
// base commit and the parent's current head. Nothing is stored.
func (e *SyncEngine) GetBranchSyncStatus(ctx context.Context, branch string, meta *BranchStackMetadata) BranchSyncStatus {
	status := BranchSyncStatus{
		Branch:     branch,
		Parent:     meta.Parent,
		BaseCommit: meta.BaseCommit,
	}

	parentHead, err := e.git.ResolveCommit(ctx, meta.Parent)
	if err != nil {
		status.State = StateError
		status.Err = err.Error()
		return status
	}
	status.ParentHead = parentHead

	if meta.BaseCommit == parentHead {
		status.State = StateSynced
		return status
	}

	ancestor, err := e.git.IsAncestor(ctx, meta.BaseCommit, parentHead)
	if err != nil {
		status.State = StateError
		status.Err = err.Error()
		return status
	}

	if ancestor {
		status.State = StateBehind
		if behind, err := e.git.CommitCount(ctx, meta.BaseCommit, parentHead); err == nil {
			status.CommitsBehind = behind
		}
		return status
	}

	// The base is no longer an ancestor of the parent head: the parent's
	// history was rewritten out from under us.
	status.State = StateDiverged
	mergeBase, err := e.git.MergeBase(ctx, branch, meta.Parent)
	if err == nil && mergeBase != "" && mergeBase != meta.BaseCommit {
		if behind, err := e.git.CommitCount(ctx, mergeBase, parentHead); err == nil {
			status.CommitsBehind = behind
		}
		if ahead, err := e.git.CommitCount(ctx, mergeBase, branch); err == nil {
			status.CommitsAhead = ahead
		}
	}
	return status
}

// orderRootFirst orders a stack's members so every parent precedes its
// dependents, walking the parent chain outward from trunk with an explicit
// queue. Branches whose parent chain never reaches trunk are appended last
// in name order.
func orderRootFirst(trunk string, members map[string]*BranchStackMetadata) []string {
	childrenOf := make(map[string][]string)
	for branch, meta := range members {
		childrenOf[meta.Parent] = append(childrenOf[meta.Parent], branch)
	}
	for _, children := range childrenOf {
		sort.Strings(children)
	}

	var ordered []string
	seen := make(map[string]bool)
	queue := append([]string(nil), childrenOf[trunk]...)
	for len(queue) > 0 {
		branch := queue[0]
		queue = queue[1:]
		if seen[branch] {
			continue
		}
		seen[branch] = true
		ordered = append(ordered, branch)
		queue = append(queue, childrenOf[branch]...)
	}

	var orphans []string
	for branch := range members {
		if !seen[branch] {
			orphans = append(orphans, branch)
		}
	}
	sort.Strings(orphans)
	return append(ordered, orphans...)
}

// GetStackSyncStatus computes drift for every member of a stack, root-first.
func (e *SyncEngine) GetStackSyncStatus(ctx context.Context, stackName string) (*StackSyncStatus, error) {
	meta, err := e.store.GetStackMetadata(ctx, stackName)
	if err != nil {
		return nil, err
	}
	members, err := e.store.GetStackBranches(ctx, stackName)
	if err != nil {
		return nil, err
	}

	result := &StackSyncStatus{Stack: stackName}
	for _, branch := range orderRootFirst(meta.Trunk, members) {
		status := e.GetBranchSyncStatus(ctx, branch, members[branch])
		result.Branches = append(result.Branches, status)
		if status.State == StateBehind || status.State == StateDiverged {
			result.NeedsSync = true
		}
	}
	return result, nil
}

// SyncBranch replays one branch onto its recorded parent: rebase by default,
// merge with opts.Merge. On conflict the in-progress operation is aborted
// and the previously checked-out branch restored, so a failed sync never
// leaves the tree mid-conflict.
func (e *SyncEngine) SyncBranch(ctx context.Context, branch string, opts SyncOptions) (*SyncResult, error) {
	meta, err := e.store.GetBranchStack(ctx, branch)
	if err != nil {
		return nil, err
	}

	if !opts.Force {
		dirty, err := e.mut.HasUncommittedChanges(ctx)
		if err != nil {
			return nil, laddrerrors.Wrap(laddrerrors.KindGitError, err, "failed to check working tree")
		}
		if dirty {
			return nil, laddrerrors.New(laddrerrors.KindUncommittedChanges,
				"working tree has uncommitted changes").
				WithHint("commit or stash your changes, or pass --force")
		}
	}

	// Remember where we were so every exit path can go back.
	original, err := e.git.CurrentBranch(ctx)
	if err != nil {
		return nil, laddrerrors.Wrap(laddrerrors.KindGitError, err, "failed to resolve current branch")
	}

	if err := e.mut.Checkout(ctx, branch); err != nil {
		return nil, laddrerrors.Wrap(laddrerrors.KindGitError, err, "failed to checkout %s", branch)
	}

	replayErr := e.replay(ctx, meta.Parent, opts.Merge)
	if replayErr != nil {
		conflicts := e.collectConflicts(ctx)
		if len(conflicts) > 0 {
			e.abortReplay(ctx, opts.Merge)
			e.restore(ctx, original, branch)
			return nil, laddrerrors.New(laddrerrors.KindSyncConflict,
				"conflicts while syncing %s onto %s", branch, meta.Parent).
				WithConflicts(conflicts).
				WithHint("resolve the conflicts manually, then run laddr restack")
		}
		e.restore(ctx, original, branch)
		return nil, laddrerrors.Wrap(laddrerrors.KindGitError, replayErr, "failed to sync %s", branch)
	}

	newBase, err := e.git.ResolveCommit(ctx, meta.Parent)
	if err != nil {
		e.restore(ctx, original, branch)
		return nil, laddrerrors.Wrap(laddrerrors.KindGitError, err, "failed to resolve %s", meta.Parent)
	}
	if err := e.store.UpdateBranchBase(ctx, branch, newBase); err != nil {
		e.restore(ctx, original, branch)
		return nil, err
	}

	e.restore(ctx, original, branch)
	return &SyncResult{Branch: branch, Success: true, NewBase: newBase}, nil
}

func (e *SyncEngine) replay(ctx context.Context, parent string, merge bool) error {
	if merge {
		return e.mut.MergeIn(ctx, parent)
	}
	return e.mut.RebaseOnto(ctx, parent)
}

func (e *SyncEngine) abortReplay(ctx context.Context, merge bool) {
	if merge {
		_ = e.mut.AbortMerge(ctx)
		return
	}
	_ = e.mut.AbortRebase(ctx)
}

// collectConflicts returns the unmerged paths currently in the tree.
func (e *SyncEngine) collectConflicts(ctx context.Context) []string {
	entries, err := e.mut.WorkingTreeStatus(ctx)
	if err != nil {
		return nil
	}
	var files []string
	for _, entry := range entries {
		if entry.IsConflict() {
			files = append(files, entry.Path)
		}
	}
	return files
}

// restore checks the originally checked-out branch back out. original is ""
// when HEAD was detached before the sync; there is no branch to return to
// then, so the engine stays on the branch it just synced.
func (e *SyncEngine) restore(ctx context.Context, original, current string) {
	if original == "" || original == current {
		return
	}
	_ = e.mut.Checkout(ctx, original)
}

// SyncStack syncs every member of a stack root-first. Branches already in
// sync pass through untouched; branches whose status is error are reported
// as failed without attempting a sync. The first failure halts the rest of
// the sequence so later branches are never replayed onto an unresolved
// parent.
func (e *SyncEngine) SyncStack(ctx context.Context, stackName string, opts SyncOptions) (*StackSyncResult, error) {
	meta, err := e.store.GetStackMetadata(ctx, stackName)
	if err != nil {
		return nil, err
	}
	members, err := e.store.GetStackBranches(ctx, stackName)
	if err != nil {
		return nil, err
	}
	ordered := orderRootFirst(meta.Trunk, members)

	result := &StackSyncResult{Stack: stackName}
	for i, branch := range ordered {
		// Status is computed just before the skip decision, not up front:
		// rebasing a parent rewrites its head, which turns children that
		// were in sync against the old head stale.
		status := e.GetBranchSyncStatus(ctx, branch, members[branch])
		switch status.State {
		case StateSynced:
			result.Results = append(result.Results, SyncResult{Branch: branch, Success: true, Skipped: true})
		case StateError:
			result.Results = append(result.Results, SyncResult{
				Branch: branch,
				Err:    laddrerrors.New(laddrerrors.KindGitError, "cannot sync %s: %s", branch, status.Err),
			})
			result.Halted = true
		default:
			syncResult, err := e.SyncBranch(ctx, branch, opts)
			if err != nil {
				result.Results = append(result.Results, SyncResult{Branch: branch, Err: err})
				result.Halted = true
			} else {
				result.Results = append(result.Results, *syncResult)
			}
		}

		if result.Halted {
			result.Remaining = append(result.Remaining, ordered[i+1:]...)
			break
		}
	}
	return result, nil
}

// RestackBranches force-sets every member's base commit to its parent's
// current head without touching the working tree or history. A pure
// bookkeeping repair for out-of-band rewrites; it can only fail when a
// parent ref cannot be resolved, never with a conflict.
func (e *SyncEngine) RestackBranches(ctx context.Context, stackName string) ([]SyncResult, error) {
	meta, err := e.store.GetStackMetadata(ctx, stackName)
	if err != nil {
		return nil, err
	}
	members, err := e.store.GetStackBranches(ctx, stackName)
	if err != nil {
		return nil, err
	}

	var results []SyncResult
	for _, branch := range orderRootFirst(meta.Trunk, members) {
		parent := members[branch].Parent
		parentHead, err := e.git.ResolveCommit(ctx, parent)
		if err != nil {
			return results, laddrerrors.Wrap(laddrerrors.KindGitError, err, "failed to resolve %s", parent)
		}
		if err := e.store.UpdateBranchBase(ctx, branch, parentHead); err != nil {
			return results, err
		}
		results = append(results, SyncResult{Branch: branch, Success: true, NewBase: parentHead})
	}
	return results, nil
}
