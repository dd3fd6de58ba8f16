// Package gitinfo reads commit metadata from the repository under analysis.
package gitinfo

import (
	"fmt"

	"github.com/go-git/go-git/v5"
)

// Reader resolves the current HEAD commit of a repository.
type Reader struct{}

// New creates a commit info reader.
func New() *Reader {
	return &Reader{}
}

// Hash returns the full HEAD commit hash of the repository at root.
// A missing or empty repository yields an error rather than a zero hash.
func (r *Reader) Hash(root string) (string, error) {
	repo, err := git.PlainOpen(root)
	if err != nil {
		return "", fmt.Errorf("opening repository at %s: %w", root, err)
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolving HEAD: %w", err)
	}
	return head.Hash().String(), nil
}
