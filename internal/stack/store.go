package stack

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	laddrerrors "laddr.dev/laddr/internal/errors"
)

// Config key shapes. These are the durable on-disk contract shared with
// other tools; do not change them.
//
//	stacks.<name>.trunk   = <branch>
//	stacks.<name>.root    = <branch>
//	stacks.<name>.created = <ISO-8601 timestamp>
//	branch.<name>.stackname   = <stack name>
//	branch.<name>.stackparent = <parent branch>
//	branch.<name>.stackbase   = <commit hash>
const (
	stackSection = "stacks"
	fieldTrunk   = "trunk"
	fieldRoot    = "root"
	fieldCreated = "created"

	branchSection    = "branch"
	fieldStackName   = "stackname"
	fieldStackParent = "stackparent"
	fieldStackBase   = "stackbase"

	createdTimeFormat = time.RFC3339
)

func stackKey(name, field string) string {
	return fmt.Sprintf("%s.%s.%s", stackSection, name, field)
}

func branchKey(branch, field string) string {
	return fmt.Sprintf("%s.%s.%s", branchSection, branch, field)
}

// RelationshipStore is the durable, authoritative record of explicit stacks,
// persisted as flat key/value pairs in the repository's local config. It is
// independent of heuristic detection.
type RelationshipStore struct {
	cfg ConfigStore
	git Querier
}

// NewRelationshipStore creates a store over the given config and query
// backends.
func NewRelationshipStore(cfg ConfigStore, git Querier) *RelationshipStore {
	return &RelationshipStore{cfg: cfg, git: git}
}

// InitStack creates a new stack rooted at rootBranch targeting trunk.
func (s *RelationshipStore) InitStack(ctx context.Context, name, trunk, rootBranch string) (*StackMetadata, error) {
	exists, err := s.git.BranchExists(ctx, trunk)
	if err != nil {
		return nil, laddrerrors.Wrap(laddrerrors.KindGitError, err, "failed to check trunk %s", trunk)
	}
	if !exists {
		return nil, laddrerrors.New(laddrerrors.KindInvalidTrunk, "trunk branch %s does not exist", trunk)
	}

	if existing, err := s.cfg.ConfigGet(ctx, stackKey(name, fieldTrunk)); err != nil {
		return nil, laddrerrors.Wrap(laddrerrors.KindConfigError, err, "failed to read stack %s", name)
	} else if existing != "" {
		return nil, laddrerrors.New(laddrerrors.KindStackExists, "stack %s already exists", name)
	}

	if owner, err := s.cfg.ConfigGet(ctx, branchKey(rootBranch, fieldStackName)); err != nil {
		return nil, laddrerrors.Wrap(laddrerrors.KindConfigError, err, "failed to read branch %s", rootBranch)
	} else if owner != "" {
		return nil, laddrerrors.New(laddrerrors.KindAlreadyInStack, "branch %s already belongs to stack %s", rootBranch, owner)
	}

	// The root's base is the trunk head it forked from.
	baseCommit, err := s.git.ResolveCommit(ctx, trunk)
	if err != nil {
		return nil, laddrerrors.Wrap(laddrerrors.KindGitError, err, "failed to resolve %s", trunk)
	}

	meta := &StackMetadata{
		Name:      name,
		Trunk:     trunk,
		Root:      rootBranch,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}

	writes := [][2]string{
		{stackKey(name, fieldTrunk), trunk},
		{stackKey(name, fieldRoot), rootBranch},
		{stackKey(name, fieldCreated), meta.CreatedAt.Format(createdTimeFormat)},
		{branchKey(rootBranch, fieldStackName), name},
		{branchKey(rootBranch, fieldStackParent), trunk},
		{branchKey(rootBranch, fieldStackBase), baseCommit},
	}
	for _, kv := range writes {
		if err := s.cfg.ConfigSet(ctx, kv[0], kv[1]); err != nil {
			return nil, laddrerrors.Wrap(laddrerrors.KindConfigError, err, "failed to write %s", kv[0])
		}
	}
	return meta, nil
}

// AddBranch records branchName as a child of parentBranch inside stackName.
// The parent must already be tracked in that same stack.
func (s *RelationshipStore) AddBranch(ctx context.Context, branchName, parentBranch, stackName string) (*BranchStackMetadata, error) {
	if trunk, err := s.cfg.ConfigGet(ctx, stackKey(stackName, fieldTrunk)); err != nil {
		return nil, laddrerrors.Wrap(laddrerrors.KindConfigError, err, "failed to read stack %s", stackName)
	} else if trunk == "" {
		return nil, laddrerrors.New(laddrerrors.KindStackNotFound, "stack %s not found", stackName)
	}

	parentStack, err := s.cfg.ConfigGet(ctx, branchKey(parentBranch, fieldStackName))
	if err != nil {
		return nil, laddrerrors.Wrap(laddrerrors.KindConfigError, err, "failed to read branch %s", parentBranch)
	}
	if parentStack == "" {
		return nil, laddrerrors.New(laddrerrors.KindNotInStack, "parent branch %s is not tracked in any stack", parentBranch)
	}
	if parentStack != stackName {
		return nil, laddrerrors.New(laddrerrors.KindConfigError,
			"parent branch %s belongs to stack %s, not %s", parentBranch, parentStack, stackName)
	}

	if owner, err := s.cfg.ConfigGet(ctx, branchKey(branchName, fieldStackName)); err != nil {
		return nil, laddrerrors.Wrap(laddrerrors.KindConfigError, err, "failed to read branch %s", branchName)
	} else if owner != "" {
		return nil, laddrerrors.New(laddrerrors.KindAlreadyInStack, "branch %s already belongs to stack %s", branchName, owner)
	}

	baseCommit, err := s.git.ResolveCommit(ctx, parentBranch)
	if err != nil {
		return nil, laddrerrors.Wrap(laddrerrors.KindGitError, err, "failed to resolve %s", parentBranch)
	}

	meta := &BranchStackMetadata{
		StackName:  stackName,
		Parent:     parentBranch,
		BaseCommit: baseCommit,
	}
	writes := [][2]string{
		{branchKey(branchName, fieldStackName), stackName},
		{branchKey(branchName, fieldStackParent), parentBranch},
		{branchKey(branchName, fieldStackBase), baseCommit},
	}
	for _, kv := range writes {
		if err := s.cfg.ConfigSet(ctx, kv[0], kv[1]); err != nil {
			return nil, laddrerrors.Wrap(laddrerrors.KindConfigError, err, "failed to write %s", kv[0])
		}
	}
	return meta, nil
}

// GetStackMetadata looks up a stack by name.
func (s *RelationshipStore) GetStackMetadata(ctx context.Context, name string) (*StackMetadata, error) {
	trunk, err := s.cfg.ConfigGet(ctx, stackKey(name, fieldTrunk))
	if err != nil {
		return nil, laddrerrors.Wrap(laddrerrors.KindConfigError, err, "failed to read stack %s", name)
	}
	if trunk == "" {
		return nil, laddrerrors.New(laddrerrors.KindStackNotFound, "stack %s not found", name)
	}

	root, err := s.cfg.ConfigGet(ctx, stackKey(name, fieldRoot))
	if err != nil {
		return nil, laddrerrors.Wrap(laddrerrors.KindConfigError, err, "failed to read stack %s", name)
	}
	created, err := s.cfg.ConfigGet(ctx, stackKey(name, fieldCreated))
	if err != nil {
		return nil, laddrerrors.Wrap(laddrerrors.KindConfigError, err, "failed to read stack %s", name)
	}

	meta := &StackMetadata{Name: name, Trunk: trunk, Root: root}
	if created != "" {
		if t, err := time.Parse(createdTimeFormat, created); err == nil {
			meta.CreatedAt = t
		}
	}
	return meta, nil
}

// GetBranchStack looks up a branch's stack membership.
func (s *RelationshipStore) GetBranchStack(ctx context.Context, branch string) (*BranchStackMetadata, error) {
	name, err := s.cfg.ConfigGet(ctx, branchKey(branch, fieldStackName))
	if err != nil {
		return nil, laddrerrors.Wrap(laddrerrors.KindConfigError, err, "failed to read branch %s", branch)
	}
	if name == "" {
		return nil, laddrerrors.New(laddrerrors.KindNotInStack, "branch %s is not tracked in any stack", branch)
	}

	parent, err := s.cfg.ConfigGet(ctx, branchKey(branch, fieldStackParent))
	if err != nil {
		return nil, laddrerrors.Wrap(laddrerrors.KindConfigError, err, "failed to read branch %s", branch)
	}
	base, err := s.cfg.ConfigGet(ctx, branchKey(branch, fieldStackBase))
	if err != nil {
		return nil, laddrerrors.Wrap(laddrerrors.KindConfigError, err, "failed to read branch %s", branch)
	}

	return &BranchStackMetadata{StackName: name, Parent: parent, BaseCommit: base}, nil
}

// GetAllStacks enumerates every tracked stack. Nothing tracked yields an
// empty slice, not an error.
func (s *RelationshipStore) GetAllStacks(ctx context.Context) ([]*StackMetadata, error) {
	entries, err := s.cfg.ConfigGetRegexp(ctx, `^stacks\.`)
	if err != nil {
		return nil, laddrerrors.Wrap(laddrerrors.KindConfigError, err, "failed to enumerate stacks")
	}

	byName := make(map[string]*StackMetadata)
	for key, value := range entries {
		rest := strings.TrimPrefix(key, stackSection+".")
		dot := strings.LastIndex(rest, ".")
		if dot < 0 {
			continue
		}
		name, field := rest[:dot], rest[dot+1:]
		meta, ok := byName[name]
		if !ok {
			meta = &StackMetadata{Name: name}
			byName[name] = meta
		}
		switch field {
		case fieldTrunk:
			meta.Trunk = value
		case fieldRoot:
			meta.Root = value
		case fieldCreated:
			if t, err := time.Parse(createdTimeFormat, value); err == nil {
				meta.CreatedAt = t
			}
		}
	}

	stacks := make([]*StackMetadata, 0, len(byName))
	for _, meta := range byName {
		stacks = append(stacks, meta)
	}
	sort.Slice(stacks, func(i, j int) bool { return stacks[i].Name < stacks[j].Name })
	return stacks, nil
}

// GetStackBranches returns the metadata of every branch tracked in the named
// stack, keyed by branch name. An unknown or empty stack yields an empty map.
func (s *RelationshipStore) GetStackBranches(ctx context.Context, name string) (map[string]*BranchStackMetadata, error) {
	entries, err := s.cfg.ConfigGetRegexp(ctx, `^branch\.`)
	if err != nil {
		return nil, laddrerrors.Wrap(laddrerrors.KindConfigError, err, "failed to enumerate branches")
	}

	all := make(map[string]*BranchStackMetadata)
	for key, value := range entries {
		rest := strings.TrimPrefix(key, branchSection+".")
		dot := strings.LastIndex(rest, ".")
		if dot < 0 {
			continue
		}
		branch, field := rest[:dot], rest[dot+1:]
		meta, ok := all[branch]
		if !ok {
			meta = &BranchStackMetadata{}
			all[branch] = meta
		}
		switch field {
		case fieldStackName:
			meta.StackName = value
		case fieldStackParent:
			meta.Parent = value
		case fieldStackBase:
			meta.BaseCommit = value
		}
	}

	members := make(map[string]*BranchStackMetadata)
	for branch, meta := range all {
		if meta.StackName == name {
			members[branch] = meta
		}
	}
	return members, nil
}

// UpdateBranchBase overwrites the stored base commit for a branch.
func (s *RelationshipStore) UpdateBranchBase(ctx context.Context, branch, newBase string) error {
	if err := s.cfg.ConfigSet(ctx, branchKey(branch, fieldStackBase), newBase); err != nil {
		return laddrerrors.Wrap(laddrerrors.KindConfigError, err, "failed to update base for %s", branch)
	}
	return nil
}

// RemoveBranch deletes a branch's stack metadata. Removing an untracked
// branch is not an error.
func (s *RelationshipStore) RemoveBranch(ctx context.Context, branch string) error {
	for _, field := range []string{fieldStackName, fieldStackParent, fieldStackBase} {
		if err := s.cfg.ConfigUnset(ctx, branchKey(branch, field)); err != nil {
			return laddrerrors.Wrap(laddrerrors.KindConfigError, err, "failed to remove %s", branchKey(branch, field))
		}
	}
	return nil
}

// DeleteStack removes a stack, cascading to every member branch's metadata
// first, then the stack's own records.
func (s *RelationshipStore) DeleteStack(ctx context.Context, name string) error {
	members, err := s.GetStackBranches(ctx, name)
	if err != nil {
		return err
	}
	for branch := range members {
		if err := s.RemoveBranch(ctx, branch); err != nil {
			return err
		}
	}
	for _, field := range []string{fieldTrunk, fieldRoot, fieldCreated} {
		if err := s.cfg.ConfigUnset(ctx, stackKey(name, field)); err != nil {
			return laddrerrors.Wrap(laddrerrors.KindConfigError, err, "failed to remove %s", stackKey(name, field))
		}
	}
	return nil
}

// GetCurrentBranchStack resolves the checked-out branch and returns its
// stack metadata.
func (s *RelationshipStore) GetCurrentBranchStack(ctx context.Context) (string, *BranchStackMetadata, error) {
	branch, err := s.git.CurrentBranch(ctx)
	if err != nil {
		return "", nil, laddrerrors.Wrap(laddrerrors.KindNotInRepo, err, "failed to resolve current branch")
	}
	if branch == "" {
		return "", nil, laddrerrors.New(laddrerrors.KindNotInRepo, "no branch is checked out")
	}
	meta, err := s.GetBranchStack(ctx, branch)
	if err != nil {
		return "", nil, err
	}
	return branch, meta, nil
}
