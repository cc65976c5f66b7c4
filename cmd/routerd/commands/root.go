// Package commands implements routerd's cobra command surface.
package commands

import "github.com/spf13/cobra"

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var logLevel string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "routerd",
	Short: "routerd is the router daemon",
	Long: `routerd runs the single-process router daemon: the nexus supervisor,
its protocol workers, and their kernel-facing drivers, reachable over the
config and exec UNIX domain sockets rezesh talks to.

Use "routerd [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
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
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "log level override (DEBUG|INFO|WARN|ERROR)")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(versionCmd)
}
