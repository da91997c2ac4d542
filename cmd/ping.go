package cmd

import (
	"context"

	"github.com/PolarWolf314/dotenvpull/internal/ui"
	"github.com/PolarWolf314/dotenvpull/internal/workflows"
	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the configured server is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting ping command")

		spinner, cleanup := startSpinner("Contacting server...")
		defer cleanup()

		result, err := workflows.Ping(context.Background(), workflows.PingOptions{Common: common()})
		if err != nil {
			spinner.FinalMSG = failure("Server is not available", err, "")
			return reported(err)
		}

		spinner.FinalMSG = ui.Succeeded("Server at " + ui.Path.Sprint(result.APIURL) + " is up " + ui.Muted.Sprint("store: "+result.Store))
		return nil
	},
}
