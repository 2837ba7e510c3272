package stack

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"sync"

	"laddr.dev/laddr/internal/git"
)

// fakeGit is a declarative commit-graph fake implementing Querier and
// Mutator. Tests describe topology facts (heads, merge bases, counts,
// ancestry) and the engine queries them.
type fakeGit struct {
	mu sync.Mutex

	branches   []string
	heads      map[string]string
	mergeBases map[string]string
	counts     map[string]int
	ancestors  map[string]bool
	current    string

	resolveErrs map[string]error

	// mutation recording and scripted failures
	checkouts   []string
	replayErr   error
	dirty       bool
	statusLines []git.StatusEntry
	aborted     []string
	queryCount  int

	// rebaseAdvances makes a successful RebaseOnto rewrite the current
	// branch's head, as a real rebase does.
	rebaseAdvances bool
}

func newFakeGit() *fakeGit {
	return &fakeGit{
		heads:       make(map[string]string),
		mergeBases:  make(map[string]string),
		counts:      make(map[string]int),
		ancestors:   make(map[string]bool),
		resolveErrs: make(map[string]error),
	}
}

func pairKey(a, b string) string { return a + "|" + b }

func (f *fakeGit) addBranch(name, head string) {
	f.branches = append(f.branches, name)
	f.heads[name] = head
	f.heads[head] = head
}

func (f *fakeGit) setMergeBase(a, b, base string) {
	f.mergeBases[pairKey(a, b)] = base
	f.mergeBases[pairKey(b, a)] = base
	f.heads[base] = base
}

func (f *fakeGit) setCount(from, to string, n int) {
	f.counts[pairKey(from, to)] = n
}

func (f *fakeGit) setAncestor(ancestor, descendant string) {
	f.ancestors[pairKey(ancestor, descendant)] = true
}

func (f *fakeGit) ResolveCommit(ctx context.Context, ref string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queryCount++
	if err, ok := f.resolveErrs[ref]; ok {
		return "", err
	}
	if hash, ok := f.heads[ref]; ok {
		return hash, nil
	}
	return "", fmt.Errorf("unknown ref %s", ref)
}

func (f *fakeGit) MergeBase(ctx context.Context, a, b string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queryCount++
	return f.mergeBases[pairKey(a, b)], nil
}

func (f *fakeGit) CommitCount(ctx context.Context, from, to string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queryCount++
	return f.counts[pairKey(from, to)], nil
}

func (f *fakeGit) BranchExists(ctx context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, branch := range f.branches {
		if branch == name {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeGit) CurrentBranch(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current, nil
}

func (f *fakeGit) ListBranches(ctx context.Context) ([]git.Branch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := append([]string(nil), f.branches...)
	sort.Strings(names)
	branches := make([]git.Branch, 0, len(names))
	for _, name := range names {
		branches = append(branches, git.Branch{Name: name, Current: name == f.current})
	}
	return branches, nil
}

func (f *fakeGit) IsAncestor(ctx context.Context, ancestor, descendant string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ancestor == descendant {
		return true, nil
	}
	return f.ancestors[pairKey(ancestor, descendant)], nil
}

func (f *fakeGit) Checkout(ctx context.Context, branch string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkouts = append(f.checkouts, branch)
	f.current = branch
	return nil
}

func (f *fakeGit) CheckoutNew(ctx context.Context, branch string) error {
	return f.Checkout(ctx, branch)
}

func (f *fakeGit) RebaseOnto(ctx context.Context, parent string) error {
	if f.replayErr != nil {
		return f.replayErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rebaseAdvances && f.current != "" {
		newHead := f.heads[f.current] + "+" + f.heads[parent]
		f.heads[f.current] = newHead
		f.heads[newHead] = newHead
	}
	return nil
}

func (f *fakeGit) MergeIn(ctx context.Context, parent string) error {
	return f.replayErr
}

func (f *fakeGit) AbortRebase(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.aborted = append(f.aborted, "rebase")
	f.statusLines = nil
	return nil
}

func (f *fakeGit) AbortMerge(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.aborted = append(f.aborted, "merge")
	f.statusLines = nil
	return nil
}

func (f *fakeGit) WorkingTreeStatus(ctx context.Context) ([]git.StatusEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusLines, nil
}

func (f *fakeGit) HasUncommittedChanges(ctx context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dirty, nil
}

// fakeConfig is an in-memory ConfigStore.
type fakeConfig struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeConfig() *fakeConfig {
	return &fakeConfig{data: make(map[string]string)}
}

func (f *fakeConfig) ConfigGet(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data[key], nil
}

func (f *fakeConfig) ConfigSet(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return nil
}

func (f *fakeConfig) ConfigUnset(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

func (f *fakeConfig) ConfigGetRegexp(ctx context.Context, pattern string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	result := make(map[string]string)
	for key, value := range f.data {
		if re.MatchString(key) {
			result[key] = value
		}
	}
	return result, nil
}
