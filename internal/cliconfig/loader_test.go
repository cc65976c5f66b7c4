package cliconfig

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadForestFromFixtureDirectory(t *testing.T) {
	cfg := &Config{CliDefinition: filepath.Join("..", "..", "testdata", "cli")}

	forest, err := LoadForest(cfg)
	require.NoError(t, err)
	require.Equal(t, "EXEC-MODE", forest.Initial)

	tree := forest.Get("EXEC-MODE")
	require.NotNil(t, tree)
	require.NotEmpty(t, tree.Root.Next)
}
