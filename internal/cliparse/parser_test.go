package cliparse

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/routerd/routerd/internal/clitree"
	"github.com/stretchr/testify/require"
)

func loadTestForest(t *testing.T) *clitree.Forest {
	t.Helper()

	modeData, err := os.ReadFile(filepath.Join("..", "..", "testdata", "cli", "reze.cli_mode.json"))
	require.NoError(t, err)
	modeDoc, err := clitree.ParseModeDoc(modeData)
	require.NoError(t, err)

	forest, err := clitree.BuildForest(modeDoc)
	require.NoError(t, err)

	cliData, err := os.ReadFile(filepath.Join("..", "..", "testdata", "cli", "show.cli.json"))
	require.NoError(t, err)
	cliDoc, err := clitree.ParseCliDoc(cliData)
	require.NoError(t, err)

	require.NoError(t, clitree.LoadCliDoc(forest, cliDoc))
	for _, tree := range forest.Modes {
		tree.SortChildren()
	}
	return forest
}

func TestScenario1ShowIPOspfInterfaceComplete(t *testing.T) {
	forest := loadTestForest(t)
	root := forest.Get("EXEC-MODE").Root

	res := ParseExecute(root, "show ip ospf interface", 15)
	require.Equal(t, Complete, res.Status)
	require.NotNil(t, res.Executable)
	require.Equal(t, "interface", res.Executable.Display)
	require.Empty(t, res.Params)
}

func TestScenario2SingleLetterAmbiguous(t *testing.T) {
	forest := loadTestForest(t)
	root := forest.Get("EXEC-MODE").Root

	res := ParseExecute(root, "s i o i", 15)
	require.Equal(t, Ambiguous, res.Status)
}

func TestScenario3IpDisambiguatesComplete(t *testing.T) {
	forest := loadTestForest(t)
	root := forest.Get("EXEC-MODE").Root

	res := ParseExecute(root, "s ip o i", 15)
	require.Equal(t, Complete, res.Status)
	require.Equal(t, "interface", res.Executable.Display)
}

func TestScenario4RepeatGroupAnyOrderComplete(t *testing.T) {
	forest := loadTestForest(t)
	root := forest.Get("EXEC-MODE").Root

	res := ParseExecute(root, "a b c e f g x", 15)
	require.Equal(t, Complete, res.Status)
	require.Equal(t, "x", res.Executable.Display)
}

func TestIncompleteWhenTrieNotExhausted(t *testing.T) {
	forest := loadTestForest(t)
	root := forest.Get("EXEC-MODE").Root

	res := ParseExecute(root, "show ip", 15)
	require.Equal(t, Incomplete, res.Status)
}

func TestUnrecognizedPosition(t *testing.T) {
	forest := loadTestForest(t)
	root := forest.Get("EXEC-MODE").Root

	res := ParseExecute(root, "bogus", 15)
	require.Equal(t, Unrecognized, res.Status)
}

func TestPrivilegeFiltering(t *testing.T) {
	forest := loadTestForest(t)
	root := forest.Get("EXEC-MODE").Root

	// "show" subtree is declared with privilege 1; a privilege-0 user should
	// not see it as a candidate at all.
	res := ParseExecute(root, "show", 0)
	require.Equal(t, Unrecognized, res.Status)
}
