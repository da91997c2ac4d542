package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/dotenvpull/internal/ui"
	"github.com/PolarWolf314/dotenvpull/internal/workflows"
	"github.com/spf13/cobra"
)

var shareAllProjects bool

func init() {
	shareCmd.Flags().BoolVarP(&shareAllProjects, "include-all-projects", "a", false, "share the whole local config instead of one project")
}

// resetShareCommandState resets the share command's global state for testing.
func resetShareCommandState() {
	shareAllProjects = false
}

var shareCmd = &cobra.Command{
	Use:   "share <project>",
	Short: "Hand a project to someone else through a one-time share",
	Long: `Encrypts the project's access key and encryption key under a new one-time
key and publishes them on the server under a random share code. The
recipient runs the printed getshared command; the share is destroyed the
first time it is fetched.

With --include-all-projects the whole local config is shared and replaces
the recipient's config.

The printed command contains the decryption key. Send it over a channel
you trust.

Examples:
  dotenvpull share my-app
  dotenvpull share my-app --include-all-projects`,
	Args: cobra.ExactArgs(1),
	RunE: runShare,
}

func runShare(cmd *cobra.Command, args []string) error {
	projectID := args[0]
	Logger.Infof("Starting share command for project %s", projectID)

	spinner, cleanup := startSpinner("Sharing " + projectID + "...")
	defer cleanup()

	result, err := workflows.Share(context.Background(), workflows.ShareOptions{
		Common:      common(),
		ProjectID:   projectID,
		AllProjects: shareAllProjects,
	})
	if err != nil {
		spinner.FinalMSG = failure("Failed to share "+ui.Highlight.Sprint(projectID), err,
			"A share for this project is already waiting to be fetched")
		return reported(err)
	}

	scope := "1 project"
	if shareAllProjects {
		scope = fmt.Sprintf("all %d projects", result.ProjectsCount)
	}

	spinner.FinalMSG = ui.Lines(
		ui.Succeeded("Shared "+ui.Highlight.Sprint(projectID)+" "+ui.Muted.Sprint(scope)),
		ui.Hint("Send this command to the recipient over a trusted channel:"),
		"  "+ui.Code.Sprint(result.Command()),
		ui.Hint("It works once"),
	)
	return nil
}
