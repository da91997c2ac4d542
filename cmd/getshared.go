package cmd

import (
	"context"
	"fmt"
	"strings"

	kerrors "github.com/PolarWolf314/dotenvpull/internal/errors"
	"github.com/PolarWolf314/dotenvpull/internal/ui"
	"github.com/PolarWolf314/dotenvpull/internal/utils"
	"github.com/PolarWolf314/dotenvpull/internal/workflows"
	"github.com/spf13/cobra"
)

var getSharedCmd = &cobra.Command{
	Use:   "getshared <share_code> <project> <api_url> [encryption_key]",
	Short: "Fetch a one-time share into the local config",
	Long: `Fetches and destroys a share created with 'dotenvpull share' and writes the
project into the local config. A share of a whole config replaces the local
config; a single project is merged and all other entries are kept.

When the encryption key is omitted it is read from the terminal without
echo, or from the first line of stdin.

Examples:
  dotenvpull getshared <code> my-app https://env.example.com <key>
  dotenvpull getshared <code> my-app https://env.example.com`,
	Args: cobra.RangeArgs(3, 4),
	RunE: runGetShared,
}

func runGetShared(cmd *cobra.Command, args []string) error {
	shareCode, projectID, apiURL := args[0], args[1], args[2]
	Logger.Infof("Starting getshared command for project %s", projectID)

	var key string
	if len(args) == 4 {
		key = args[3]
	} else {
		var err error
		if key, err = readShareKey(); err != nil {
			fmt.Println(ui.Failed("Failed to read the encryption key", err))
			return reported(err)
		}
	}

	spinner, cleanup := startSpinner("Fetching share for " + projectID + "...")
	defer cleanup()

	result, err := workflows.GetShared(context.Background(), workflows.GetSharedOptions{
		Common:        common(),
		ShareCode:     shareCode,
		ProjectID:     projectID,
		APIURL:        apiURL,
		EncryptionKey: key,
	})
	if err != nil {
		spinner.FinalMSG = failure("Failed to fetch the share for "+ui.Highlight.Sprint(projectID), err, "")
		return reported(err)
	}

	var lines []string
	if result.Mode == workflows.ModeReplace {
		lines = append(lines,
			ui.Succeeded(fmt.Sprintf("Replaced the local config with %d shared projects", len(result.Projects))),
			ui.Hint("Projects: "+utils.FormatList(result.Projects)))
	} else {
		lines = append(lines, ui.Succeeded("Added "+ui.Highlight.Sprint(projectID)+" to the local config"))
	}
	if result.APIURLMismatch {
		lines = append(lines, ui.Warning.Sprint("!")+" The local config points at "+ui.Path.Sprint(result.APIURL)+
			", not at the server this share came from")
		lines = append(lines, ui.Hint("Run "+ui.Code.Sprint("dotenvpull config set-url "+apiURL)+" if the project lives there"))
	}
	lines = append(lines, ui.Hint("Run "+ui.Code.Sprint("dotenvpull pull "+projectID+" .env")+" to fetch the file"))

	spinner.FinalMSG = ui.Lines(lines...)
	return nil
}

func readShareKey() (string, error) {
	if utils.IsTerminal() {
		return utils.ReadSecret("Encryption key: ")
	}

	data, err := utils.ReadStdin()
	if err != nil {
		return "", err
	}
	key, _, _ := strings.Cut(string(data), "\n")
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("%w: no encryption key given", kerrors.ErrInvalidArgument)
	}
	return key, nil
}
