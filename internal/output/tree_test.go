package output

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"laddr.dev/laddr/internal/stack"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	m.Run()
}

func demoStack() *stack.DetectedStack {
	return &stack.DetectedStack{
		Root:     "main",
		Branches: []string{"main", "feature/a", "feature/b", "feature/c"},
		Nodes: map[string]*stack.StackNode{
			"main":      {Branch: "main", Children: []string{"feature/a", "feature/b"}, Depth: 0},
			"feature/a": {Branch: "feature/a", Parent: "main", Children: []string{"feature/c"}, Depth: 1},
			"feature/b": {Branch: "feature/b", Parent: "main", Depth: 1},
			"feature/c": {Branch: "feature/c", Parent: "feature/a", Depth: 2},
		},
	}
}

func TestRenderStack(t *testing.T) {
	t.Run("draws the tree with connectors", func(t *testing.T) {
		r := NewTreeRenderer("")
		got := r.RenderStack(demoStack())

		want := "main\n" +
			"├─ feature/a\n" +
			"│  └─ feature/c\n" +
			"└─ feature/b\n"
		require.Equal(t, want, got)
	})

	t.Run("marks the current branch", func(t *testing.T) {
		r := NewTreeRenderer("feature/c")
		got := r.RenderStack(demoStack())
		require.Contains(t, got, "feature/c *")
	})

	t.Run("appends labels after the branch name", func(t *testing.T) {
		r := NewTreeRenderer("")
		r.SetLabel("feature/b", "(behind 2)")
		got := r.RenderStack(demoStack())
		require.Contains(t, got, "feature/b (behind 2)")
	})

	t.Run("skips children that belong to another stack", func(t *testing.T) {
		st := demoStack()
		// feature/c is still listed as a child but is no longer a member.
		delete(st.Nodes, "feature/c")

		r := NewTreeRenderer("")
		got := r.RenderStack(st)
		require.NotContains(t, got, "feature/c")
	})
}

func TestRenderForest(t *testing.T) {
	single := &stack.DetectedStack{
		Root:     "experiment",
		Branches: []string{"experiment"},
		Nodes: map[string]*stack.StackNode{
			"experiment": {Branch: "experiment", Depth: 0},
		},
	}

	r := NewTreeRenderer("")
	got := r.RenderForest([]*stack.DetectedStack{demoStack(), single})
	require.Contains(t, got, "main\n")
	require.Contains(t, got, "\nexperiment\n")
}

func TestSyncStateLabel(t *testing.T) {
	require.Equal(t, "(synced)", SyncStateLabel(stack.BranchSyncStatus{State: stack.StateSynced}))
	require.Equal(t, "(behind 3)", SyncStateLabel(stack.BranchSyncStatus{State: stack.StateBehind, CommitsBehind: 3}))
	require.Equal(t, "(diverged +2/-1)", SyncStateLabel(stack.BranchSyncStatus{
		State: stack.StateDiverged, CommitsAhead: 2, CommitsBehind: 1,
	}))
	require.Equal(t, "(error)", SyncStateLabel(stack.BranchSyncStatus{State: stack.StateError}))
}
