package cmd

import (
	"context"

	"github.com/PolarWolf314/dotenvpull/internal/ui"
	"github.com/PolarWolf314/dotenvpull/internal/workflows"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <project>",
	Short: "Remove a stored file from the server and the local config",
	Long: `Deletes the project's record on the server, then removes its entry from the
local config. If the server cannot be reached the local entry is kept so the
command can be retried.

Example:
  dotenvpull delete my-app`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	projectID := args[0]
	Logger.Infof("Starting delete command for project %s", projectID)

	spinner, cleanup := startSpinner("Deleting " + projectID + "...")
	defer cleanup()

	_, err := workflows.Delete(context.Background(), workflows.DeleteOptions{
		Common:    common(),
		ProjectID: projectID,
	})
	if err != nil {
		spinner.FinalMSG = failure("Failed to delete "+ui.Highlight.Sprint(projectID), err, "")
		return reported(err)
	}

	spinner.FinalMSG = ui.Succeeded("Deleted " + ui.Highlight.Sprint(projectID) + " from the server and the local config")
	return nil
}
