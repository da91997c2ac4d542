package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/PolarWolf314/dotenvpull/internal/configs"
	"github.com/PolarWolf314/dotenvpull/internal/secrets"
	"github.com/PolarWolf314/dotenvpull/internal/utils"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var configShowJSON bool

func init() {
	configShowCmd.Flags().BoolVar(&configShowJSON, "json", false, "output in JSON format")
}

// resetConfigShowState resets the config show command's global state for testing.
func resetConfigShowState() {
	configShowJSON = false
}

// configSummary is what config show prints. Keys are left out.
type configSummary struct {
	ConfigPath string           `json:"config_path"`
	Exists     bool             `json:"exists"`
	APIURL     string           `json:"api_url"`
	Projects   []projectSummary `json:"projects"`
}

type projectSummary struct {
	ID     string `json:"id"`
	Cipher string `json:"cipher"`
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the local config without its keys",
	Long: `Displays the server address and the projects of the local config.
Access keys and encryption keys are never printed.

Examples:
  dotenvpull config show
  dotenvpull config show --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting config show command")

		path := configs.ResolveLocalConfigPath(configPath)
		Logger.Debugf("Loading local config from %s", path)

		cfg, err := configs.LoadLocalConfig(path)
		if err != nil {
			fmt.Println(failure("Failed to load the local config", err, ""))
			return reported(err)
		}
		exists, err := utils.FileExists(path)
		if err != nil {
			return Logger.ErrorfAndReturn("Failed to check %s: %v", path, err)
		}

		summary := configSummary{
			ConfigPath: path,
			Exists:     exists,
			APIURL:     cfg.APIURL,
			Projects:   []projectSummary{},
		}
		for _, id := range cfg.ProjectIDs() {
			suite := secrets.DefaultSuite
			if s, err := cfg.Projects[id].Suite(); err == nil {
				suite = s
			}
			summary.Projects = append(summary.Projects, projectSummary{ID: id, Cipher: string(suite)})
		}

		if configShowJSON {
			output, err := json.MarshalIndent(summary, "", "  ")
			if err != nil {
				return Logger.ErrorfAndReturn("Failed to marshal config to JSON: %v", err)
			}
			fmt.Println(string(output))
			return nil
		}

		outputConfigText(summary)
		return nil
	},
}

func outputConfigText(s configSummary) {
	location := s.ConfigPath
	if !s.Exists {
		location += " (not created yet)"
	}
	fmt.Println(color.CyanString("Local Configuration") + " (" + location + "):")
	fmt.Println()
	fmt.Printf("  %-10s %s\n", "Server:", color.GreenString(s.APIURL))

	if len(s.Projects) == 0 {
		fmt.Printf("  %-10s %s\n", "Projects:", color.YellowString("none"))
		return
	}

	fmt.Println()
	fmt.Println(color.CyanString("Projects:"))
	for _, p := range s.Projects {
		fmt.Printf("  %s → %s\n", color.YellowString(p.ID), p.Cipher)
	}
}
