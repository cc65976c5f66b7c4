package cliconfig

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/routerd/routerd/internal/clitree"
	"github.com/routerd/routerd/internal/rerror"
)

// LoadForest builds the full command forest from cfg.CliDefinition: the mode
// tree in reze.cli_mode.json, plus every other *.cli.json file in the same
// directory loaded into it.
func LoadForest(cfg *Config) (*clitree.Forest, error) {
	dir := cfg.CliDefinition

	modeData, err := os.ReadFile(filepath.Join(dir, "reze.cli_mode.json"))
	if err != nil {
		return nil, rerror.Init("failed to read reze.cli_mode.json", err)
	}
	modeDoc, err := clitree.ParseModeDoc(modeData)
	if err != nil {
		return nil, rerror.Init("failed to parse reze.cli_mode.json", err)
	}

	forest, err := clitree.BuildForest(modeDoc)
	if err != nil {
		return nil, rerror.Init("failed to build mode forest", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, rerror.Init("failed to read cli definition directory", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".cli.json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, rerror.Init("failed to read "+name, err)
		}
		doc, err := clitree.ParseCliDoc(data)
		if err != nil {
			return nil, rerror.Init("failed to parse "+name, err)
		}
		if err := clitree.LoadCliDoc(forest, doc); err != nil {
			return nil, rerror.Init("failed to load "+name, err)
		}
	}

	for _, tree := range forest.Modes {
		tree.SortChildren()
	}

	return forest, nil
}
