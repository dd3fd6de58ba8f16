package gitinfo_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/cxxlint/cxxlint/internal/adapters/outbound/gitinfo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.cpp"), []byte("int a;\n"), 0o644))
	_, err = wt.Add("a.cpp")
	require.NoError(t, err)
	commit, err := wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	hash, err := gitinfo.New().Hash(dir)
	require.NoError(t, err)
	assert.Equal(t, commit.String(), hash)
}

func TestHash_NotARepository(t *testing.T) {
	_, err := gitinfo.New().Hash(t.TempDir())
	assert.Error(t, err)
}
