package testhelpers

import (
	"testing"
)

// Scene is a test fixture: a temporary git repository seeded with an
// initial commit on main, cleaned up automatically.
type Scene struct {
	Dir  string
	Repo *GitRepo
}

// SceneSetup customizes a scene after the initial commit.
type SceneSetup func(*Scene) error

// NewScene creates a fresh repository with one commit on main and runs the
// optional setup.
func NewScene(t *testing.T, setup SceneSetup) *Scene {
	t.Helper()

	dir := t.TempDir()
	repo, err := NewGitRepo(dir)
	if err != nil {
		t.Fatalf("failed to create git repo: %v", err)
	}

	scene := &Scene{Dir: dir, Repo: repo}
	if err := repo.CreateChangeAndCommit("initial"); err != nil {
		t.Fatalf("failed to create initial commit: %v", err)
	}

	if setup != nil {
		if err := setup(scene); err != nil {
			t.Fatalf("scene setup failed: %v", err)
		}
	}
	return scene
}

// StackScene builds the common fixture used across tests: main plus a chain
// of branches, each with one commit, each forked from the previous.
func StackScene(t *testing.T, branches ...string) *Scene {
	t.Helper()

	return NewScene(t, func(s *Scene) error {
		for _, branch := range branches {
			if err := s.Repo.CreateAndCheckoutBranch(branch); err != nil {
				return err
			}
			if err := s.Repo.CreateChangeAndCommit(branch); err != nil {
				return err
			}
		}
		return nil
	})
}
