package stack

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	laddrerrors "laddr.dev/laddr/internal/errors"
	"laddr.dev/laddr/internal/git"
)

// syncFixture tracks main <- b1 <- b2 in stack "one" over the fakes.
func syncFixture(t *testing.T) (*SyncEngine, *RelationshipStore, *fakeGit) {
	t.Helper()
	ctx := context.Background()

	fg := newFakeGit()
	fc := newFakeConfig()
	store := NewRelationshipStore(fc, fg)

	fg.addBranch("main", "m1")
	fg.addBranch("b1", "h1")
	fg.addBranch("b2", "h2")
	fg.current = "main"

	_, err := store.InitStack(ctx, "one", "main", "b1")
	require.NoError(t, err)
	_, err = store.AddBranch(ctx, "b2", "b1", "one")
	require.NoError(t, err)

	return NewSyncEngine(store, fg, fg), store, fg
}

func TestGetBranchSyncStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("synced when base equals parent head", func(t *testing.T) {
		engine, _, _ := syncFixture(t)

		status := engine.GetBranchSyncStatus(ctx, "b1", &BranchStackMetadata{
			StackName: "one", Parent: "main", BaseCommit: "m1",
		})
		require.Equal(t, StateSynced, status.State)
		require.Equal(t, 0, status.CommitsBehind)
		require.Equal(t, 0, status.CommitsAhead)
	})

	t.Run("behind when base is a strict ancestor of parent head", func(t *testing.T) {
		engine, _, fg := syncFixture(t)
		fg.setAncestor("m0", "m1")
		fg.setCount("m0", "m1", 3)

		status := engine.GetBranchSyncStatus(ctx, "b1", &BranchStackMetadata{
			StackName: "one", Parent: "main", BaseCommit: "m0",
		})
		require.Equal(t, StateBehind, status.State)
		require.Equal(t, 3, status.CommitsBehind)
	})

	t.Run("diverged when base is no longer an ancestor", func(t *testing.T) {
		engine, _, fg := syncFixture(t)
		// Parent was rebased: old base m0 is not an ancestor of m1.
		fg.setMergeBase("b1", "main", "mb")
		fg.setCount("mb", "m1", 2)
		fg.setCount("mb", "b1", 4)

		status := engine.GetBranchSyncStatus(ctx, "b1", &BranchStackMetadata{
			StackName: "one", Parent: "main", BaseCommit: "m0",
		})
		require.Equal(t, StateDiverged, status.State)
		require.Equal(t, 2, status.CommitsBehind)
		require.Equal(t, 4, status.CommitsAhead)
	})

	t.Run("error when the parent cannot be resolved", func(t *testing.T) {
		engine, _, fg := syncFixture(t)
		fg.resolveErrs["main"] = errors.New("ref is gone")

		status := engine.GetBranchSyncStatus(ctx, "b1", &BranchStackMetadata{
			StackName: "one", Parent: "main", BaseCommit: "m1",
		})
		require.Equal(t, StateError, status.State)
		require.Contains(t, status.Err, "ref is gone")
	})
}

func TestGetStackSyncStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("orders branches root-first", func(t *testing.T) {
		engine, _, _ := syncFixture(t)

		status, err := engine.GetStackSyncStatus(ctx, "one")
		require.NoError(t, err)
		require.Len(t, status.Branches, 2)
		require.Equal(t, "b1", status.Branches[0].Branch)
		require.Equal(t, "b2", status.Branches[1].Branch)
	})

	t.Run("needsSync reflects drift", func(t *testing.T) {
		engine, store, fg := syncFixture(t)

		status, err := engine.GetStackSyncStatus(ctx, "one")
		require.NoError(t, err)
		require.False(t, status.NeedsSync)

		// main moves forward.
		require.NoError(t, store.UpdateBranchBase(ctx, "b1", "m0"))
		fg.setAncestor("m0", "m1")
		fg.setCount("m0", "m1", 1)

		status, err = engine.GetStackSyncStatus(ctx, "one")
		require.NoError(t, err)
		require.True(t, status.NeedsSync)
	})
}

func TestSyncBranch(t *testing.T) {
	ctx := context.Background()

	t.Run("fails NOT_IN_STACK for untracked branches", func(t *testing.T) {
		engine, _, _ := syncFixture(t)

		_, err := engine.SyncBranch(ctx, "ghost", SyncOptions{})
		require.Equal(t, laddrerrors.KindNotInStack, laddrerrors.KindOf(err))
	})

	t.Run("rejects a dirty working tree unless forced", func(t *testing.T) {
		engine, _, fg := syncFixture(t)
		fg.dirty = true

		_, err := engine.SyncBranch(ctx, "b1", SyncOptions{})
		require.Equal(t, laddrerrors.KindUncommittedChanges, laddrerrors.KindOf(err))

		_, err = engine.SyncBranch(ctx, "b1", SyncOptions{Force: true})
		require.NoError(t, err)
	})

	t.Run("updates the stored base and restores the original branch", func(t *testing.T) {
		engine, store, fg := syncFixture(t)
		fg.current = "b2"

		result, err := engine.SyncBranch(ctx, "b1", SyncOptions{})
		require.NoError(t, err)
		require.True(t, result.Success)
		require.Equal(t, "m1", result.NewBase)

		meta, err := store.GetBranchStack(ctx, "b1")
		require.NoError(t, err)
		require.Equal(t, "m1", meta.BaseCommit)

		current, err := fg.CurrentBranch(ctx)
		require.NoError(t, err)
		require.Equal(t, "b2", current)
	})

	t.Run("stays on the synced branch when HEAD was detached", func(t *testing.T) {
		engine, _, fg := syncFixture(t)
		fg.current = ""

		_, err := engine.SyncBranch(ctx, "b1", SyncOptions{})
		require.NoError(t, err)

		// No branch to return to; the sync target is where we end up.
		current, err := fg.CurrentBranch(ctx)
		require.NoError(t, err)
		require.Equal(t, "b1", current)
	})

	t.Run("conflict aborts, rolls back, and reports the files", func(t *testing.T) {
		engine, _, fg := syncFixture(t)
		fg.current = "b2"
		fg.replayErr = errors.New("could not apply")
		fg.statusLines = []git.StatusEntry{
			{Code: "UU", Path: "pkg/auth/login.go"},
			{Code: "M", Path: "README.md"},
			{Code: "AA", Path: "pkg/auth/token.go"},
		}

		_, err := engine.SyncBranch(ctx, "b1", SyncOptions{})
		require.Equal(t, laddrerrors.KindSyncConflict, laddrerrors.KindOf(err))

		var se *laddrerrors.StackError
		require.ErrorAs(t, err, &se)
		require.Equal(t, []string{"pkg/auth/login.go", "pkg/auth/token.go"}, se.Conflicts)

		// The in-progress rebase was aborted and we are back where we were.
		require.Equal(t, []string{"rebase"}, fg.aborted)
		current, err := fg.CurrentBranch(ctx)
		require.NoError(t, err)
		require.Equal(t, "b2", current)
	})

	t.Run("merge conflicts abort the merge", func(t *testing.T) {
		engine, _, fg := syncFixture(t)
		fg.replayErr = errors.New("merge failed")
		fg.statusLines = []git.StatusEntry{{Code: "DD", Path: "gone.go"}}

		_, err := engine.SyncBranch(ctx, "b1", SyncOptions{Merge: true})
		require.Equal(t, laddrerrors.KindSyncConflict, laddrerrors.KindOf(err))
		require.Equal(t, []string{"merge"}, fg.aborted)
	})

	t.Run("non-conflict failure is a GIT_ERROR", func(t *testing.T) {
		engine, _, fg := syncFixture(t)
		fg.current = "b2"
		fg.replayErr = errors.New("fatal: disk on fire")

		_, err := engine.SyncBranch(ctx, "b1", SyncOptions{})
		require.Equal(t, laddrerrors.KindGitError, laddrerrors.KindOf(err))

		// No abort was issued; we are back on the original branch.
		require.Empty(t, fg.aborted)
		current, err := fg.CurrentBranch(ctx)
		require.NoError(t, err)
		require.Equal(t, "b2", current)
	})
}

func TestSyncStack(t *testing.T) {
	ctx := context.Background()

	t.Run("skips branches already in sync", func(t *testing.T) {
		engine, _, _ := syncFixture(t)

		result, err := engine.SyncStack(ctx, "one", SyncOptions{})
		require.NoError(t, err)
		require.Len(t, result.Results, 2)
		require.True(t, result.Results[0].Skipped)
		require.True(t, result.Results[1].Skipped)
		require.False(t, result.Halted)
	})

	t.Run("re-evaluates children after a parent rebase rewrites its head", func(t *testing.T) {
		engine, store, fg := syncFixture(t)
		fg.rebaseAdvances = true

		// b1 is behind main; b2 is in sync with b1's pre-rebase head.
		require.NoError(t, store.UpdateBranchBase(ctx, "b1", "m0"))
		fg.setAncestor("m0", "m1")
		fg.setCount("m0", "m1", 1)

		result, err := engine.SyncStack(ctx, "one", SyncOptions{})
		require.NoError(t, err)
		require.False(t, result.Halted)
		require.Len(t, result.Results, 2)
		for _, branchResult := range result.Results {
			require.True(t, branchResult.Success)
			require.False(t, branchResult.Skipped, "%s must not be skipped", branchResult.Branch)
		}

		// b2's base tracks b1's rewritten head, and nothing reports drift.
		b1Head, err := fg.ResolveCommit(ctx, "b1")
		require.NoError(t, err)
		b2Meta, err := store.GetBranchStack(ctx, "b2")
		require.NoError(t, err)
		require.Equal(t, b1Head, b2Meta.BaseCommit)

		status, err := engine.GetStackSyncStatus(ctx, "one")
		require.NoError(t, err)
		require.False(t, status.NeedsSync)
	})

	t.Run("halts the sequence on the first failure", func(t *testing.T) {
		engine, store, fg := syncFixture(t)

		// Both branches are behind, and the replay fails with a conflict.
		require.NoError(t, store.UpdateBranchBase(ctx, "b1", "m0"))
		require.NoError(t, store.UpdateBranchBase(ctx, "b2", "h0"))
		fg.setAncestor("m0", "m1")
		fg.setCount("m0", "m1", 1)
		fg.setAncestor("h0", "h1")
		fg.setCount("h0", "h1", 1)
		fg.replayErr = errors.New("could not apply")
		fg.statusLines = []git.StatusEntry{{Code: "UU", Path: "x.go"}}

		result, err := engine.SyncStack(ctx, "one", SyncOptions{})
		require.NoError(t, err)
		require.True(t, result.Halted)
		require.Len(t, result.Results, 1)
		require.Equal(t, "b1", result.Results[0].Branch)
		require.Equal(t, laddrerrors.KindSyncConflict, laddrerrors.KindOf(result.Results[0].Err))
		require.Equal(t, []string{"b2"}, result.Remaining)
	})

	t.Run("reports error-status branches without attempting sync", func(t *testing.T) {
		engine, store, fg := syncFixture(t)

		require.NoError(t, store.UpdateBranchBase(ctx, "b1", "m0"))
		fg.resolveErrs["main"] = errors.New("ref is gone")

		result, err := engine.SyncStack(ctx, "one", SyncOptions{})
		require.NoError(t, err)
		require.True(t, result.Halted)
		require.NotNil(t, result.Results[0].Err)
		require.Empty(t, fg.checkouts)
	})
}

func TestRestackBranches(t *testing.T) {
	ctx := context.Background()

	t.Run("force-sets every base to the parent head", func(t *testing.T) {
		engine, store, _ := syncFixture(t)

		require.NoError(t, store.UpdateBranchBase(ctx, "b1", "stale1"))
		require.NoError(t, store.UpdateBranchBase(ctx, "b2", "stale2"))

		results, err := engine.RestackBranches(ctx, "one")
		require.NoError(t, err)
		require.Len(t, results, 2)

		b1, err := store.GetBranchStack(ctx, "b1")
		require.NoError(t, err)
		require.Equal(t, "m1", b1.BaseCommit)
		b2, err := store.GetBranchStack(ctx, "b2")
		require.NoError(t, err)
		require.Equal(t, "h1", b2.BaseCommit)
	})

	t.Run("never reports a conflict, even mid-rewrite", func(t *testing.T) {
		engine, _, fg := syncFixture(t)
		fg.statusLines = []git.StatusEntry{{Code: "UU", Path: "x.go"}}

		_, err := engine.RestackBranches(ctx, "one")
		require.NoError(t, err)
	})

	t.Run("fails only when a parent ref cannot be resolved", func(t *testing.T) {
		engine, _, fg := syncFixture(t)
		fg.resolveErrs["main"] = errors.New("ref is gone")

		_, err := engine.RestackBranches(ctx, "one")
		require.Equal(t, laddrerrors.KindGitError, laddrerrors.KindOf(err))
	})
}
