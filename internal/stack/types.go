package stack

import "time"

// StackMetadata is the durable record of one explicit stack. Immutable after
// InitStack except for deletion.
type StackMetadata struct {
	Name      string
	Trunk     string
	Root      string
	CreatedAt time.Time
}

// BranchStackMetadata is the durable record tying a branch to its stack.
// BaseCommit is the parent commit the branch forked from at creation or last
// sync; it anchors drift detection.
type BranchStackMetadata struct {
	StackName  string
	Parent     string
	BaseCommit string
}

// BranchRelationship is the heuristic parent/child assignment for one branch
// within a single detection pass. After cycle resolution the parent graph is
// acyclic.
type BranchRelationship struct {
	Branch   string
	Parent   string
	Children []string
}

// StackNode is one branch's position inside a detected stack.
type StackNode struct {
	Branch   string
	Parent   string
	Children []string
	// Depth is the BFS distance from the stack root.
	Depth  int
	Commit string
}

// DetectedStack is a heuristic grouping of branches, rebuilt on every
// detection pass and never persisted.
type DetectedStack struct {
	Root     string
	Branches []string
	Nodes    map[string]*StackNode
}

// SyncState classifies a branch's drift relative to its recorded parent.
type SyncState string

const (
	StateSynced   SyncState = "synced"
	StateBehind   SyncState = "behind"
	StateDiverged SyncState = "diverged"
	StateError    SyncState = "error"
)

// BranchSyncStatus is the derived drift report for one branch. Never stored.
type BranchSyncStatus struct {
	Branch        string
	Parent        string
	BaseCommit    string
	ParentHead    string
	State         SyncState
	CommitsBehind int
	CommitsAhead  int
	Err           string
}

// StackSyncStatus aggregates per-branch statuses in root-first order.
type StackSyncStatus struct {
	Stack     string
	Branches  []BranchSyncStatus
	NeedsSync bool
}

// SyncOptions controls SyncBranch behavior.
type SyncOptions struct {
	// Merge replays the parent with a merge commit instead of a rebase.
	Merge bool
	// Force skips the dirty working tree check.
	Force bool
}

// SyncResult reports the outcome of syncing one branch.
type SyncResult struct {
	Branch  string
	Success bool
	NewBase string
	Skipped bool
	Err     error
}

// StackSyncResult reports the outcome of syncing a whole stack. Remaining
// lists branches left untouched after a fail-fast halt.
type StackSyncResult struct {
	Stack     string
	Results   []SyncResult
	Halted    bool
	Remaining []string
}
