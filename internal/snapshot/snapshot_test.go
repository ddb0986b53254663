package snapshot

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embedk/fwbuild/internal/gitops"
	"github.com/embedk/fwbuild/internal/ui"
)

func setupTestRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	runTestGit(t, dir, "init", "-b", "main")
	runTestGit(t, dir, "config", "user.email", "test@example.com")
	runTestGit(t, dir, "config", "user.name", "Test User")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# repo\n"), 0644))
	runTestGit(t, dir, "add", ".")
	runTestGit(t, dir, "commit", "-m", "initial commit")
	return dir
}

func runTestGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v failed: %s", args, string(output))
}

// TestRollback_RestoresPosition verifies the full snapshot/rollback
// cycle: branch switch, extra commit and dirty work tree are all undone.
func TestRollback_RestoresPosition(t *testing.T) {
	dir := setupTestRepo(t)
	git := gitops.NewCLI(dir)

	var buf strings.Builder
	m := New(git, ui.NewOutput(&buf, false, false))

	originalHead, err := git.Head()
	require.NoError(t, err)

	require.NoError(t, m.Snapshot())
	assert.True(t, m.Armed())
	assert.Equal(t, "main", m.Branch())

	// Mutate: new branch, new commit, dirty file.
	require.NoError(t, git.CheckoutNew("A10", "main"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fw.c"), []byte("int main(){}\n"), 0644))
	require.NoError(t, git.StageAll())
	_, err = git.Commit("work", false)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scratch"), []byte("x\n"), 0644))

	require.NoError(t, m.Rollback())
	assert.False(t, m.Armed(), "rollback consumes the snapshot")

	branch, err := git.CurrentBranch()
	require.NoError(t, err)
	assert.Equal(t, "main", branch)

	head, err := git.Head()
	require.NoError(t, err)
	assert.Equal(t, originalHead, head)
}

// TestRollback_WithoutSnapshot pins the defensive-rollback contract:
// no error, but a warning is emitted.
func TestRollback_WithoutSnapshot(t *testing.T) {
	dir := setupTestRepo(t)

	var buf strings.Builder
	m := New(gitops.NewCLI(dir), ui.NewOutput(&buf, false, false))

	require.NoError(t, m.Rollback())
	assert.Contains(t, buf.String(), "no snapshot is armed")
}

// TestSnapshot_Supersedes verifies that a second snapshot replaces the
// first rather than stacking: rollback restores the later position.
func TestSnapshot_Supersedes(t *testing.T) {
	dir := setupTestRepo(t)
	git := gitops.NewCLI(dir)

	var buf strings.Builder
	m := New(git, ui.NewOutput(&buf, false, false))

	require.NoError(t, m.Snapshot())

	require.NoError(t, git.CheckoutNew("A10", "main"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fw.c"), []byte("int main(){}\n"), 0644))
	require.NoError(t, git.StageAll())
	laterHead, err := git.Commit("work", false)
	require.NoError(t, err)

	require.NoError(t, m.Snapshot()) // supersedes the main snapshot

	require.NoError(t, os.WriteFile(filepath.Join(dir, "more.c"), []byte("void f(){}\n"), 0644))
	require.NoError(t, m.Rollback())

	branch, err := git.CurrentBranch()
	require.NoError(t, err)
	assert.Equal(t, "A10", branch)

	head, err := git.Head()
	require.NoError(t, err)
	assert.Equal(t, laterHead, head)
}
