package output

import (
	"sort"
	"strconv"
	"strings"

	"laddr.dev/laddr/internal/stack"
)

// TreeRenderer renders detected stacks as indented branch trees. Labels are
// optional per-branch annotations (sync state, PR numbers) appended after
// the branch name.
type TreeRenderer struct {
	currentBranch string
	labels        map[string]string
}

// NewTreeRenderer creates a renderer that highlights currentBranch.
func NewTreeRenderer(currentBranch string) *TreeRenderer {
	return &TreeRenderer{
		currentBranch: currentBranch,
		labels:        make(map[string]string),
	}
}

// SetLabel attaches an annotation to a branch.
func (r *TreeRenderer) SetLabel(branch, label string) {
	r.labels[branch] = label
}

// RenderForest renders all stacks, one tree per stack root.
func (r *TreeRenderer) RenderForest(stacks []*stack.DetectedStack) string {
	var sb strings.Builder
	for i, st := range stacks {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(r.RenderStack(st))
	}
	return sb.String()
}

// RenderStack renders one stack as a tree rooted at its root branch.
func (r *TreeRenderer) RenderStack(st *stack.DetectedStack) string {
	var sb strings.Builder
	r.renderNode(&sb, st, st.Root, "", true, true)
	return sb.String()
}

func (r *TreeRenderer) renderNode(sb *strings.Builder, st *stack.DetectedStack, branch, prefix string, isLast, isRoot bool) {
	node, ok := st.Nodes[branch]
	if !ok {
		return
	}

	if !isRoot {
		sb.WriteString(prefix)
		if isLast {
			sb.WriteString("└─ ")
		} else {
			sb.WriteString("├─ ")
		}
	}
	sb.WriteString(r.branchLine(branch, node.Depth == 0))
	sb.WriteString("\n")

	// Only children that are members of this stack are drawn; sub-stack
	// roots render as their own tree.
	var children []string
	for _, child := range node.Children {
		if _, member := st.Nodes[child]; member {
			children = append(children, child)
		}
	}
	sort.Strings(children)

	childPrefix := prefix
	if !isRoot {
		if isLast {
			childPrefix += "   "
		} else {
			childPrefix += "│  "
		}
	}
	for i, child := range children {
		r.renderNode(sb, st, child, childPrefix, i == len(children)-1, false)
	}
}

func (r *TreeRenderer) branchLine(branch string, isRoot bool) string {
	name := branch
	switch {
	case branch == r.currentBranch:
		name = StyleCurrent.Render(branch) + " *"
	case isRoot:
		name = StyleTrunk.Render(branch)
	}
	if label, ok := r.labels[branch]; ok && label != "" {
		name += " " + StyleDim.Render(label)
	}
	return name
}

// SyncStateLabel formats a branch sync status as a short annotation.
func SyncStateLabel(status stack.BranchSyncStatus) string {
	switch status.State {
	case stack.StateSynced:
		return StyleSynced.Render("(synced)")
	case stack.StateBehind:
		return StyleBehind.Render("(behind " + strconv.Itoa(status.CommitsBehind) + ")")
	case stack.StateDiverged:
		return StyleDiverged.Render("(diverged +" + strconv.Itoa(status.CommitsAhead) + "/-" + strconv.Itoa(status.CommitsBehind) + ")")
	default:
		return StyleDiverged.Render("(error)")
	}
}
