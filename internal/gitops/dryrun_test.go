package gitops

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDryRun_SuppressesMutations verifies that no mutating operation
// reaches the repository while reads still answer truthfully.
func TestDryRun_SuppressesMutations(t *testing.T) {
	dir := setupTestRepo(t)
	real := NewCLI(dir)

	var out strings.Builder
	g := NewDryRun(real, &out)

	headBefore, err := real.Head()
	require.NoError(t, err)

	require.NoError(t, g.CheckoutNew("A10", "main"))
	require.NoError(t, g.Merge("A9"))
	require.NoError(t, g.StageAll())
	hash, err := g.Commit("build A10.3[F|t|+]", false)
	require.NoError(t, err)
	assert.Empty(t, hash, "dry-run commit must not produce a hash")
	require.NoError(t, g.Tag("vA10.3", "A10.3[F|t|+]", false))
	require.NoError(t, g.ResetHard(headBefore))
	require.NoError(t, g.Push("A10"))

	// The real repository is untouched.
	assert.False(t, real.BranchExists("A10"))
	assert.False(t, real.TagExists("vA10.3"))
	headAfter, err := real.Head()
	require.NoError(t, err)
	assert.Equal(t, headBefore, headAfter)

	// Reads pass through.
	assert.True(t, g.IsRepo())
	branch, err := g.CurrentBranch()
	require.NoError(t, err)
	assert.Equal(t, "main", branch)

	// Every suppressed mutation left an intent line.
	printed := out.String()
	for _, want := range []string{
		"[dry-run] git checkout -b A10 main",
		"[dry-run] git merge --no-edit A9",
		"[dry-run] git add -A",
		`[dry-run] git commit -m "build A10.3[F|t|+]"`,
		"[dry-run] git tag -a vA10.3",
		"[dry-run] git reset --hard",
		"[dry-run] git push --set-upstream origin A10",
	} {
		assert.Contains(t, printed, want)
	}
}
