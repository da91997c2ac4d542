package cmd

import (
	"github.com/spf13/cobra"
)

// ConfigCmd is the top-level config command.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and change the local config",
	Long: `Provides commands for the local config file that holds the server address
and the keys of every project.

The file is chosen with --config, then $DOTENVPULL_CONFIG, then
./dotenvpull_config.json.

Examples:
  # Show the server address and projects
  dotenvpull config show

  # Point the local config at another server
  dotenvpull config set-url https://env.example.com`,
}

func init() {
	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configSetURLCmd)
}
