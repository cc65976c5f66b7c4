package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/routerd/routerd/internal/cliconfig"
	"github.com/routerd/routerd/internal/clishell"
	"github.com/routerd/routerd/internal/logger"
	"github.com/routerd/routerd/internal/remoteclient"
)

// defaultConfigFile is used when -c is not given: the shell looks for its
// config document in the working directory it was started from.
const defaultConfigFile = "./reze_cli_config.json"

// runShell loads reze_cli_config.json, builds the command forest and the
// remote clients it names, and runs the interactive shell until the operator
// exits or disconnects.
func runShell(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		path = defaultConfigFile
	}

	cfg, err := cliconfig.Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("cli config file not found, using defaults", "path", path)
			cfg = cliconfig.Default()
		} else {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	if debug {
		cfg.Debug = true
	}

	if err := logger.Init(logger.Config{
		Level:  levelFor(cfg.Debug),
		Format: "text",
		Output: "stderr",
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	forest, err := cliconfig.LoadForest(cfg)
	if err != nil {
		return fmt.Errorf("failed to load command definitions from %s: %w", cfg.CliDefinition, err)
	}

	remotes := make(map[string]*remoteclient.Client, len(cfg.Remote))
	for name, remote := range cfg.Remote {
		sock, ok := remote.UDSSocketFile()
		if !ok {
			logger.Warn("remote has no usable unix socket, skipping", "remote", name, "transport", remote.Transport)
			continue
		}
		remotes[name] = remoteclient.New(name, remote.Prefix, sock)
	}

	sh := clishell.New(forest, remotes)
	return sh.Run()
}

func levelFor(debug bool) string {
	if debug {
		return "debug"
	}
	return "info"
}
