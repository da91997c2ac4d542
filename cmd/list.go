package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/dotenvpull/internal/ui"
	"github.com/PolarWolf314/dotenvpull/internal/workflows"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the projects in the local config",
	Long: `Prints the project ids of the local config, one per line, in lexical order.
Keys are never printed.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting list command")

	result, err := workflows.List(context.Background(), workflows.ListOptions{Common: common()})
	if err != nil {
		fmt.Println(failure("Failed to read the local config", err, ""))
		return reported(err)
	}

	Logger.Debugf("Read %d projects from %s", len(result.Projects), result.ConfigPath)

	if len(result.Projects) == 0 {
		fmt.Println(ui.Hint("No projects yet. Run " + ui.Code.Sprint("dotenvpull push <project> <file>") + " to add one"))
		return nil
	}

	for _, id := range result.Projects {
		fmt.Println(id)
	}
	return nil
}
