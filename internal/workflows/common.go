package workflows

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/PolarWolf314/dotenvpull/internal/audit"
	"github.com/PolarWolf314/dotenvpull/internal/client"
	"github.com/PolarWolf314/dotenvpull/internal/configs"
	kerrors "github.com/PolarWolf314/dotenvpull/internal/errors"
	"github.com/PolarWolf314/dotenvpull/internal/utils"
)

// StdioPath selects stdin or stdout instead of a file.
const StdioPath = "-"

// Common holds the settings shared by every workflow.
type Common struct {
	// ConfigPath is the local config file. Empty means the default path.
	ConfigPath string

	// HTTPClient overrides the client used to reach the server.
	HTTPClient *http.Client

	// Timeout bounds every request to the server. Zero keeps the client
	// default. Ignored when HTTPClient is set.
	Timeout time.Duration
}

func (c Common) configPath() string {
	if c.ConfigPath == "" {
		return configs.DefaultLocalConfigPath
	}
	return c.ConfigPath
}

func (c Common) loadConfig() (*configs.LocalConfig, error) {
	return configs.LoadLocalConfig(c.configPath())
}

func (c Common) saveConfig(cfg *configs.LocalConfig) error {
	return configs.SaveLocalConfig(c.configPath(), cfg)
}

func (c Common) newClient(apiURL string) (*client.Client, error) {
	var opts []client.Option
	switch {
	case c.HTTPClient != nil:
		opts = append(opts, client.WithHTTPClient(c.HTTPClient))
	case c.Timeout > 0:
		opts = append(opts, client.WithTimeout(c.Timeout))
	}
	return client.New(apiURL, opts...)
}

func (c Common) audit(entry audit.Entry) {
	audit.Log(audit.LogPath(c.configPath()), entry)
}

func validateProjectID(projectID string) error {
	if err := utils.ValidateProjectID(projectID); err != nil {
		return fmt.Errorf("%w: %v", kerrors.ErrInvalidArgument, err)
	}
	return nil
}

// readInput returns content if set, stdin for StdioPath, or the file at path.
func readInput(path string, content []byte) ([]byte, error) {
	if content != nil {
		return content, nil
	}
	if path == StdioPath {
		return utils.ReadStdin()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
