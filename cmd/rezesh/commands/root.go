// Package commands implements rezesh's cobra command surface.
package commands

import "github.com/spf13/cobra"

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var (
	configFile string
	debug      bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "rezesh",
	Short: "rezesh is the router operator shell",
	Long: `rezesh is the interactive, mode-aware operator shell for routerd: a
trie-driven command parser with TAB completion and "?" help, dispatching
config and exec actions over the same UNIX domain sockets routerd listens
on.

Running rezesh with no subcommand starts the shell directly.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runShell,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	rootCmd.Version = Version
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to reze_cli_config.json (default: ./reze_cli_config.json)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")

	rootCmd.AddCommand(versionCmd)
}
