package gitdiff_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/cxxlint/cxxlint/internal/adapters/outbound/gitdiff"
	"github.com/cxxlint/cxxlint/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const typicalDiff = `diff --git a/src/render.cpp b/src/render.cpp
--- a/src/render.cpp
+++ b/src/render.cpp
@@ -3,7 +3,7 @@



-#include <render/animation.hpp>
+#include <render/animations.hpp>



`

func TestParseUnifiedDiff_Typical(t *testing.T) {
	scope := gitdiff.ParseUnifiedDiff(typicalDiff)
	require.Contains(t, scope, "src/render.cpp")

	changes := scope["src/render.cpp"]
	assert.Equal(t, []int{6}, changes.AddedLines)
	assert.Equal(t, []domain.LineRange{{First: 6, Last: 6}}, changes.AddedRanges)
	assert.Equal(t, []domain.LineRange{{First: 3, Last: 9}}, changes.Chunks)
}

func TestParseUnifiedDiff_MultipleHunks(t *testing.T) {
	diff := `diff --git a/a.cpp b/a.cpp
--- a/a.cpp
+++ b/a.cpp
@@ -1,3 +1,4 @@
 line one
+inserted two
 line three
 line four
@@ -95,4 +96,6 @@
 context
 context
+new 98
+new 99
 context
 context
`
	scope := gitdiff.ParseUnifiedDiff(diff)
	require.Contains(t, scope, "a.cpp")

	changes := scope["a.cpp"]
	assert.Equal(t, []int{2, 98, 99}, changes.AddedLines)
	assert.Equal(t, []domain.LineRange{{First: 2, Last: 2}, {First: 98, Last: 99}}, changes.AddedRanges)
	assert.Equal(t, []domain.LineRange{{First: 1, Last: 4}, {First: 96, Last: 101}}, changes.Chunks)
}

func TestParseUnifiedDiff_SkipsBinaryAndDeleted(t *testing.T) {
	diff := `diff --git a/icon.png b/icon.png
new file mode 100644
Binary files /dev/null and b/icon.png differ
diff --git a/gone.cpp b/gone.cpp
deleted file mode 100644
--- a/gone.cpp
+++ /dev/null
@@ -1,3 +0,0 @@
-int a;
-int b;
-int c;
`
	scope := gitdiff.ParseUnifiedDiff(diff)
	assert.Empty(t, scope)
}

func TestParseUnifiedDiff_RenameWithoutChanges(t *testing.T) {
	diff := `diff --git a/old name.cpp b/new name.cpp
similarity index 100%
rename from old name.cpp
rename to new name.cpp
`
	scope := gitdiff.ParseUnifiedDiff(diff)
	assert.Empty(t, scope, "a rename with no hunks has no changed lines")
}

func TestChanges_FromDiffFile(t *testing.T) {
	dir := t.TempDir()
	diffPath := filepath.Join(dir, "event.patch")
	require.NoError(t, os.WriteFile(diffPath, []byte(typicalDiff), 0o644))

	cfg := domain.DefaultConfig()
	cfg.DiffFile = diffPath

	scope, err := gitdiff.New(log.New(io.Discard)).Changes(cfg)
	require.NoError(t, err)
	assert.Contains(t, scope, "src/render.cpp")
}

func TestChanges_FromRepository(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	commit := func(content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "main.cpp"), []byte(content), 0o644))
		_, err := wt.Add("main.cpp")
		require.NoError(t, err)
		_, err = wt.Commit("update", &git.CommitOptions{
			Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
		})
		require.NoError(t, err)
	}

	commit("int main() {\n  return 0;\n}\n")
	commit("int main() {\n  int x = 1;\n  return x;\n}\n")

	cfg := domain.DefaultConfig()
	cfg.RepoRoot = dir

	scope, err := gitdiff.New(log.New(io.Discard)).Changes(cfg)
	require.NoError(t, err)
	require.Contains(t, scope, "main.cpp")
	assert.Contains(t, scope["main.cpp"].AddedLines, 2)
}
