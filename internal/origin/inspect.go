package origin

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Snapshot describes the main branch of an origin
type Snapshot struct {
	Head    string
	Commits int
}

// Empty reports whether the origin has no commits on main
func (s *Snapshot) Empty() bool {
	return s.Head == ""
}

// Opener opens a repository on disk
type Opener interface {
	PlainOpen(path string) (*git.Repository, error)
}

// GoGitOpener implements Opener using go-git
type GoGitOpener struct{}

// PlainOpen calls git.PlainOpen
func (GoGitOpener) PlainOpen(path string) (*git.Repository, error) {
	return git.PlainOpen(path)
}

// Inspect reads the head of main and the number of commits reachable from it
func Inspect(path string) (*Snapshot, error) {
	return InspectWith(GoGitOpener{}, path)
}

// InspectWith is Inspect with an explicit Opener
func InspectWith(opener Opener, path string) (*Snapshot, error) {
	repo, err := opener.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("open origin: %w", err)
	}

	ref, err := repo.Reference(plumbing.NewBranchReferenceName(DefaultBranch), true)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return &Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", DefaultBranch, err)
	}

	iter, err := repo.Log(&git.LogOptions{From: ref.Hash()})
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	defer iter.Close()

	snap := &Snapshot{Head: ref.Hash().String()}
	err = iter.ForEach(func(*object.Commit) error {
		snap.Commits++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk log: %w", err)
	}
	return snap, nil
}
