package stack

import (
	"context"
	"sort"

	laddrerrors "laddr.dev/laddr/internal/errors"
)

// GraphBuilder produces a forest of detected stacks for display. Explicitly
// tracked parents take precedence; everything else is inferred by the
// topology heuristic. The result is rebuilt on every call and never
// persisted.
type GraphBuilder struct {
	git      Querier
	store    *RelationshipStore
	maxDrift int
}

// NewGraphBuilder creates a builder over the given backends.
func NewGraphBuilder(git Querier, store *RelationshipStore, maxDrift int) *GraphBuilder {
	return &GraphBuilder{git: git, store: store, maxDrift: maxDrift}
}

// DetectStacks groups all local branches into stacks. Absence of a confident
// parent for a branch is not a failure; such branches become stack roots.
func (b *GraphBuilder) DetectStacks(ctx context.Context) ([]*DetectedStack, error) {
	branches, err := b.git.ListBranches(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(branches))
	for _, branch := range branches {
		names = append(names, branch.Name)
	}
	sort.Strings(names)

	heuristic := NewTopologyHeuristic(b.git, b.maxDrift)
	heuristic.Prefetch(ctx, names)

	relationships := b.assignParents(ctx, heuristic, names)
	resolveCycles(relationships)
	deriveChildren(relationships, names)

	stacks := groupIntoStacks(relationships, names)
	for _, stack := range stacks {
		for _, node := range stack.Nodes {
			if hash, err := heuristic.head(ctx, node.Branch); err == nil {
				node.Commit = hash
			}
		}
	}
	return stacks, nil
}

// assignParents fills in each branch's parent: explicit metadata first,
// heuristic detection second.
func (b *GraphBuilder) assignParents(ctx context.Context, heuristic *TopologyHeuristic, names []string) map[string]*BranchRelationship {
	present := make(map[string]bool, len(names))
	for _, name := range names {
		present[name] = true
	}

	relationships := make(map[string]*BranchRelationship, len(names))
	for _, name := range names {
		rel := &BranchRelationship{Branch: name}
		relationships[name] = rel

		if b.store != nil {
			meta, err := b.store.GetBranchStack(ctx, name)
			if err == nil && meta.Parent != "" && present[meta.Parent] {
				rel.Parent = meta.Parent
				continue
			}
			if err != nil && laddrerrors.KindOf(err) != laddrerrors.KindNotInStack {
				// Config trouble falls back to the heuristic rather than
				// failing the pass.
				rel.Parent = heuristic.DetectParentBranch(ctx, name, names)
				continue
			}
		}
		rel.Parent = heuristic.DetectParentBranch(ctx, name, names)
	}
	return relationships
}

// resolveCycles breaks 2-cycles (A.parent==B and B.parent==A) so the parent
// graph is acyclic. The surviving root is the side with a common trunk name;
// when both or neither qualify, the alphabetically earlier branch survives
// as root and the other keeps its parent pointer.
func resolveCycles(relationships map[string]*BranchRelationship) {
	names := make([]string, 0, len(relationships))
	for name := range relationships {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		rel := relationships[name]
		if rel.Parent == "" {
			continue
		}
		other, ok := relationships[rel.Parent]
		if !ok || other.Parent != name {
			continue
		}

		aTrunk := isCommonTrunkName(rel.Branch)
		bTrunk := isCommonTrunkName(other.Branch)
		switch {
		case aTrunk && !bTrunk:
			rel.Parent = ""
		case bTrunk && !aTrunk:
			other.Parent = ""
		default:
			if rel.Branch < other.Branch {
				rel.Parent = ""
			} else {
				other.Parent = ""
			}
		}
	}
}

// deriveChildren recomputes child lists from parent pointers. Children are
// never stored independently.
func deriveChildren(relationships map[string]*BranchRelationship, names []string) {
	for _, rel := range relationships {
		rel.Children = nil
	}
	for _, name := range names {
		rel := relationships[name]
		if rel.Parent == "" {
			continue
		}
		if parent, ok := relationships[rel.Parent]; ok {
			parent.Children = append(parent.Children, name)
		}
	}
	for _, rel := range relationships {
		sort.Strings(rel.Children)
	}
}

// groupIntoStacks collects branches into display stacks. Roots are branches
// with no parent, plus branches that have both a parent and children: those
// start their own sub-stack so deeply nested chains render as distinct
// units. BFS uses an explicit queue and records depth from the stack root.
func groupIntoStacks(relationships map[string]*BranchRelationship, names []string) []*DetectedStack {
	isSubStackRoot := func(name string) bool {
		rel := relationships[name]
		return rel.Parent != "" && len(rel.Children) > 0
	}

	var roots []string
	for _, name := range names {
		rel := relationships[name]
		if rel.Parent == "" || isSubStackRoot(name) {
			roots = append(roots, name)
		}
	}
	sort.Strings(roots)

	var stacks []*DetectedStack
	for _, root := range roots {
		stack := &DetectedStack{
			Root:  root,
			Nodes: make(map[string]*StackNode),
		}

		type queued struct {
			name  string
			depth int
		}
		queue := []queued{{root, 0}}
		for len(queue) > 0 {
			item := queue[0]
			queue = queue[1:]
			if _, seen := stack.Nodes[item.name]; seen {
				continue
			}

			rel := relationships[item.name]
			stack.Branches = append(stack.Branches, item.name)
			stack.Nodes[item.name] = &StackNode{
				Branch:   item.name,
				Parent:   rel.Parent,
				Children: append([]string(nil), rel.Children...),
				Depth:    item.depth,
			}

			for _, child := range rel.Children {
				// A child that roots its own sub-stack is traversed only
				// when that sub-stack is the one being built.
				if isSubStackRoot(child) && child != root {
					continue
				}
				queue = append(queue, queued{child, item.depth + 1})
			}
		}
		stacks = append(stacks, stack)
	}
	return stacks
}
