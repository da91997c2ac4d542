package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/dotenvpull/internal/ui"
	"github.com/PolarWolf314/dotenvpull/internal/workflows"
	"github.com/spf13/cobra"
)

var configSetURLCmd = &cobra.Command{
	Use:   "set-url <url>",
	Short: "Point the local config at another server",
	Long: `Sets the api_url of the local config. Existing project entries are kept,
but their access keys only work on the server that issued them.

Example:
  dotenvpull config set-url https://env.example.com`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting config set-url command")

		apiURL, err := workflows.SetURL(context.Background(), workflows.SetURLOptions{
			Common: common(),
			URL:    args[0],
		})
		if err != nil {
			fmt.Println(failure("Failed to set the server address", err, ""))
			return reported(err)
		}

		fmt.Println(ui.Succeeded("Server address set to " + ui.Path.Sprint(apiURL)))
		return nil
	},
}
