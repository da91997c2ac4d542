package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/PolarWolf314/dotenvpull/internal/ui"
	"github.com/PolarWolf314/dotenvpull/internal/workflows"
	"github.com/spf13/cobra"
)

var pullForce bool

func init() {
	pullCmd.Flags().BoolVarP(&pullForce, "force", "f", false, "overwrite the output file if it exists")
}

// resetPullCommandState resets the pull command's global state for testing.
func resetPullCommandState() {
	pullForce = false
}

var pullCmd = &cobra.Command{
	Use:   "pull <project> <output>",
	Short: "Fetch and decrypt a stored file",
	Long: `Fetches the project's ciphertext from the server, decrypts it with the key
in the local config and writes the result to the output file.

An existing output file is never overwritten unless --force is given.
Use '-' as the output to write to stdout.

Examples:
  dotenvpull pull my-app .env
  dotenvpull pull my-app .env --force
  dotenvpull pull my-app - | grep DATABASE_URL`,
	Args: cobra.ExactArgs(2),
	RunE: runPull,
}

func runPull(cmd *cobra.Command, args []string) error {
	projectID, outputPath := args[0], args[1]
	Logger.Infof("Starting pull command for project %s", projectID)

	spinner, cleanup := startSpinner("Pulling " + projectID + "...")
	defer cleanup()

	result, err := workflows.Pull(context.Background(), workflows.PullOptions{
		Common:     common(),
		ProjectID:  projectID,
		OutputPath: outputPath,
		Force:      pullForce,
		Stdout:     os.Stdout,
	})
	if err != nil {
		spinner.FinalMSG = failure("Failed to pull "+ui.Highlight.Sprint(projectID), err, "")
		return reported(err)
	}

	if outputPath == workflows.StdioPath {
		// Stdout carries the plaintext only.
		return nil
	}

	spinner.FinalMSG = ui.Succeeded(fmt.Sprintf("Wrote %s to %s %s",
		ui.Highlight.Sprint(projectID), ui.Path.Sprint(result.OutputPath), ui.Muted.Sprintf("%d bytes", result.Bytes)))
	return nil
}
