package stack

import (
	"context"
	"sort"
	"sync"
)

// commonTrunkNames are candidate parents tried first, in order, when
// guessing what a branch forked from.
var commonTrunkNames = []string{"main", "master", "develop", "dev"}

// DefaultMaxDriftCommits bounds how far a candidate parent may have moved
// past the divergence point before it stops being a plausible parent.
// Tunable via repo config.
const DefaultMaxDriftCommits = 50

func isCommonTrunkName(name string) bool {
	for _, trunk := range commonTrunkNames {
		if name == trunk {
			return true
		}
	}
	return false
}

// TopologyHeuristic infers unrecorded parent/child relationships between
// branches purely from commit-graph topology. All queries issued during one
// detection pass are memoized on the instance; create a fresh instance per
// pass and discard it afterwards.
type TopologyHeuristic struct {
	git      Querier
	maxDrift int

	mu         sync.Mutex
	heads      map[string]string
	mergeBases map[string]string
	counts     map[string]int
}

// NewTopologyHeuristic creates a heuristic over the given backend. A
// maxDrift of 0 selects DefaultMaxDriftCommits.
func NewTopologyHeuristic(git Querier, maxDrift int) *TopologyHeuristic {
	if maxDrift <= 0 {
		maxDrift = DefaultMaxDriftCommits
	}
	return &TopologyHeuristic{
		git:        git,
		maxDrift:   maxDrift,
		heads:      make(map[string]string),
		mergeBases: make(map[string]string),
		counts:     make(map[string]int),
	}
}

func (h *TopologyHeuristic) head(ctx context.Context, ref string) (string, error) {
	h.mu.Lock()
	if hash, ok := h.heads[ref]; ok {
		h.mu.Unlock()
		return hash, nil
	}
	h.mu.Unlock()

	hash, err := h.git.ResolveCommit(ctx, ref)
	if err != nil {
		return "", err
	}
	h.mu.Lock()
	h.heads[ref] = hash
	h.mu.Unlock()
	return hash, nil
}

func (h *TopologyHeuristic) mergeBase(ctx context.Context, a, b string) (string, error) {
	// Merge base is symmetric; normalize the key so both orders hit.
	key := a + "\x00" + b
	if b < a {
		key = b + "\x00" + a
	}
	h.mu.Lock()
	if base, ok := h.mergeBases[key]; ok {
		h.mu.Unlock()
		return base, nil
	}
	h.mu.Unlock()

	base, err := h.git.MergeBase(ctx, a, b)
	if err != nil {
		return "", err
	}
	h.mu.Lock()
	h.mergeBases[key] = base
	h.mu.Unlock()
	return base, nil
}

func (h *TopologyHeuristic) count(ctx context.Context, from, to string) (int, error) {
	key := from + "\x00" + to
	h.mu.Lock()
	if n, ok := h.counts[key]; ok {
		h.mu.Unlock()
		return n, nil
	}
	h.mu.Unlock()

	n, err := h.git.CommitCount(ctx, from, to)
	if err != nil {
		return 0, err
	}
	h.mu.Lock()
	h.counts[key] = n
	h.mu.Unlock()
	return n, nil
}

// Prefetch warms the memo caches for a detection pass over the given
// branches. Queries are issued as a scatter/gather batch: all pairwise merge
// bases and head resolutions first, then the commit counts that depend on
// them. Individual failures are discarded; the corresponding candidates are
// simply skipped later.
func (h *TopologyHeuristic) Prefetch(ctx context.Context, branches []string) {
	var wg sync.WaitGroup
	for _, branch := range branches {
		wg.Add(1)
		go func(branch string) {
			defer wg.Done()
			_, _ = h.head(ctx, branch)
		}(branch)
	}
	for i, a := range branches {
		for _, b := range branches[i+1:] {
			wg.Add(1)
			go func(a, b string) {
				defer wg.Done()
				_, _ = h.mergeBase(ctx, a, b)
			}(a, b)
		}
	}
	wg.Wait()

	// Second round: distances from each merge base to both sides.
	for i, a := range branches {
		for _, b := range branches[i+1:] {
			base, err := h.mergeBase(ctx, a, b)
			if err != nil || base == "" {
				continue
			}
			wg.Add(2)
			go func(base, to string) {
				defer wg.Done()
				_, _ = h.count(ctx, base, to)
			}(base, a)
			go func(base, to string) {
				defer wg.Done()
				_, _ = h.count(ctx, base, b)
			}(base, b)
		}
	}
	wg.Wait()
}

// candidate parent priorities, best first.
const (
	priorityExactMatch = 0
	priorityTrunkName  = 1
	priorityOther      = 2
)

type parentCandidate struct {
	name             string
	priority         int
	distanceFromBase int
}

// DetectParentBranch guesses which of allBranches the given branch forked
// from. Returns "" when no candidate is convincing; detection itself never
// fails.
func (h *TopologyHeuristic) DetectParentBranch(ctx context.Context, branch string, allBranches []string) string {
	present := make(map[string]bool, len(allBranches))
	for _, name := range allBranches {
		present[name] = true
	}

	// Common trunk names first, then everything else.
	var candidates []string
	for _, trunk := range commonTrunkNames {
		if trunk != branch && present[trunk] {
			candidates = append(candidates, trunk)
		}
	}
	for _, name := range allBranches {
		if name == branch || isCommonTrunkName(name) {
			continue
		}
		candidates = append(candidates, name)
	}

	var accepted []parentCandidate
	for _, candidate := range candidates {
		base, err := h.mergeBase(ctx, branch, candidate)
		if err != nil || base == "" {
			continue
		}
		candidateHead, err := h.head(ctx, candidate)
		if err != nil {
			continue
		}
		isExactMatch := candidateHead == base

		distanceFromBase, err := h.count(ctx, base, branch)
		if err != nil {
			continue
		}
		// A branch with no commits past a stale base is not meaningfully
		// "ahead" of that candidate.
		if distanceFromBase == 0 && !isExactMatch {
			continue
		}

		if isExactMatch {
			accepted = append(accepted, parentCandidate{candidate, priorityExactMatch, distanceFromBase})
			continue
		}

		distanceToCandidate, err := h.count(ctx, base, candidate)
		if err != nil {
			continue
		}
		if distanceToCandidate > h.maxDrift {
			continue
		}

		priority := priorityOther
		if isCommonTrunkName(candidate) {
			priority = priorityTrunkName
		}
		accepted = append(accepted, parentCandidate{candidate, priority, distanceFromBase})
	}

	if len(accepted) == 0 {
		return ""
	}
	sort.SliceStable(accepted, func(i, j int) bool {
		if accepted[i].priority != accepted[j].priority {
			return accepted[i].priority < accepted[j].priority
		}
		return accepted[i].distanceFromBase < accepted[j].distanceFromBase
	})
	return accepted[0].name
}
