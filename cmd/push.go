package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/dotenvpull/internal/secrets"
	"github.com/PolarWolf314/dotenvpull/internal/ui"
	"github.com/PolarWolf314/dotenvpull/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	pushValidate bool
	pushCipher   string
)

func init() {
	pushCmd.Flags().BoolVar(&pushValidate, "validate", false, "reject files that are not valid dotenv syntax")
	pushCmd.Flags().StringVar(&pushCipher, "cipher", string(secrets.DefaultSuite), "cipher suite (aes-256-gcm or chacha20-poly1305)")
}

// resetPushCommandState resets the push command's global state for testing.
func resetPushCommandState() {
	pushValidate = false
	pushCipher = string(secrets.DefaultSuite)
}

var pushCmd = &cobra.Command{
	Use:   "push <project> <file>",
	Short: "Encrypt a file and store it on the server",
	Long: `Encrypts a file under a freshly generated key and stores the ciphertext on
the server. The access key returned by the server and the encryption key are
saved in the local config; neither can be recovered if that file is lost.

Use '-' as the file to read from stdin.

Examples:
  dotenvpull push my-app .env
  dotenvpull push my-app .env --validate
  cat .env | dotenvpull push my-app -`,
	Args: cobra.ExactArgs(2),
	RunE: runPush,
}

func runPush(cmd *cobra.Command, args []string) error {
	projectID, filePath := args[0], args[1]
	Logger.Infof("Starting push command for project %s", projectID)

	spinner, cleanup := startSpinner("Pushing " + projectID + "...")
	defer cleanup()

	result, err := workflows.Push(context.Background(), workflows.PushOptions{
		Common:    common(),
		ProjectID: projectID,
		FilePath:  filePath,
		Validate:  pushValidate,
		Suite:     secrets.Suite(pushCipher),
	})
	if err != nil {
		spinner.FinalMSG = failure("Failed to push "+ui.Highlight.Sprint(projectID), err,
			"Use "+ui.Code.Sprint("dotenvpull update "+projectID+" "+filePath)+" to replace the stored file")
		return reported(err)
	}

	Logger.Debugf("Pushed %d bytes to %s", result.Bytes, result.APIURL)

	lines := []string{
		ui.Succeeded("Pushed " + ui.Highlight.Sprint(projectID) + " to " + ui.Path.Sprint(result.APIURL)),
	}
	if pushValidate {
		lines = append(lines, ui.Hint(fmt.Sprintf("%d variables validated", result.Variables)))
	}
	lines = append(lines, ui.Hint("The encryption key is only stored in your local config; keep a backup"))
	spinner.FinalMSG = ui.Lines(lines...)
	return nil
}
