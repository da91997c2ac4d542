package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/dotenvpull/internal/ui"
	"github.com/PolarWolf314/dotenvpull/internal/workflows"
	"github.com/spf13/cobra"
)

var updateValidate bool

func init() {
	updateCmd.Flags().BoolVar(&updateValidate, "validate", false, "reject files that are not valid dotenv syntax")
}

// resetUpdateCommandState resets the update command's global state for testing.
func resetUpdateCommandState() {
	updateValidate = false
}

var updateCmd = &cobra.Command{
	Use:   "update <project> <file>",
	Short: "Replace a stored file",
	Long: `Encrypts a file with the project's existing key and replaces the ciphertext
on the server. The access key and the encryption key stay the same, so
teammates who received the project keep access.

Examples:
  dotenvpull update my-app .env
  cat .env | dotenvpull update my-app -`,
	Args: cobra.ExactArgs(2),
	RunE: runUpdate,
}

func runUpdate(cmd *cobra.Command, args []string) error {
	projectID, filePath := args[0], args[1]
	Logger.Infof("Starting update command for project %s", projectID)

	spinner, cleanup := startSpinner("Updating " + projectID + "...")
	defer cleanup()

	result, err := workflows.Update(context.Background(), workflows.UpdateOptions{
		Common:    common(),
		ProjectID: projectID,
		FilePath:  filePath,
		Validate:  updateValidate,
	})
	if err != nil {
		spinner.FinalMSG = failure("Failed to update "+ui.Highlight.Sprint(projectID), err, "")
		return reported(err)
	}

	lines := []string{
		ui.Succeeded("Updated " + ui.Highlight.Sprint(projectID) + " " + ui.Muted.Sprintf("%d bytes", result.Bytes)),
	}
	if updateValidate {
		lines = append(lines, ui.Hint(fmt.Sprintf("%d variables validated", result.Variables)))
	}
	spinner.FinalMSG = ui.Lines(lines...)
	return nil
}
