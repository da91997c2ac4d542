package workflows

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PolarWolf314/dotenvpull/internal/audit"
	"github.com/PolarWolf314/dotenvpull/internal/configs"
	kerrors "github.com/PolarWolf314/dotenvpull/internal/errors"
	"github.com/PolarWolf314/dotenvpull/internal/secrets"
	"github.com/PolarWolf314/dotenvpull/internal/utils"
)

// Merge modes of GetShared.
const (
	ModeMerge   = "merge"
	ModeReplace = "replace"
)

// GetSharedOptions configures the getshared workflow.
type GetSharedOptions struct {
	Common

	ShareCode string
	ProjectID string

	// APIURL is the server the share was published on.
	APIURL string

	// EncryptionKey is the base64 share key printed by Share.
	EncryptionKey string
}

// GetSharedResult contains the outcome of a getshared operation.
type GetSharedResult struct {
	ProjectID string

	// Mode is ModeReplace when the share carried a whole config.
	Mode string

	// Projects lists the project ids written to the local config.
	Projects []string

	// APIURL is the server address of the local config after the merge.
	APIURL string

	// APIURLMismatch is set when a single project was merged into a config
	// that points at a different server than the one the share came from.
	APIURLMismatch bool
}

// GetShared consumes a share and writes it into the local config. A share
// carrying a whole config (it has api_url) replaces the local config;
// otherwise the single project entry is merged and all other entries are
// kept.
//
// The key is decoded before the server is contacted, since a consumed share
// cannot be fetched again.
func GetShared(ctx context.Context, opts GetSharedOptions) (*GetSharedResult, error) {
	if opts.ShareCode == "" {
		return nil, fmt.Errorf("%w: share code cannot be empty", kerrors.ErrInvalidArgument)
	}
	if err := validateProjectID(opts.ProjectID); err != nil {
		return nil, err
	}

	key, err := secrets.DecodeKey(opts.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("share key: %w", err)
	}

	c, err := opts.newClient(opts.APIURL)
	if err != nil {
		return nil, err
	}

	// Load before consuming so a broken local config does not burn the share.
	local, err := opts.loadConfig()
	if err != nil {
		return nil, err
	}
	localExists, err := utils.FileExists(opts.configPath())
	if err != nil {
		return nil, fmt.Errorf("failed to check %s: %w", opts.configPath(), err)
	}

	sealed, err := c.GetShared(ctx, opts.ProjectID, opts.ShareCode)
	if err != nil {
		return nil, fmt.Errorf("fetching share for project %q: %w", opts.ProjectID, err)
	}

	payload, err := secrets.Open(sealed, key)
	if err != nil {
		return nil, fmt.Errorf("opening share for project %q: %w", opts.ProjectID, err)
	}

	result := &GetSharedResult{ProjectID: opts.ProjectID}

	if configs.HasAPIURL(payload) {
		shared, err := configs.ParseLocalConfig(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: shared config: %v", kerrors.ErrEncoding, err)
		}
		local = shared
		result.Mode = ModeReplace
		result.Projects = shared.ProjectIDs()
	} else {
		entry, err := sharedEntry(payload, opts.ProjectID)
		if err != nil {
			return nil, err
		}
		if !localExists {
			local.APIURL = c.BaseURL()
		}
		local.SetProject(opts.ProjectID, entry)
		result.Mode = ModeMerge
		result.Projects = []string{opts.ProjectID}
		result.APIURLMismatch = strings.TrimRight(local.APIURL, "/") != c.BaseURL()
	}

	if err := opts.saveConfig(local); err != nil {
		return nil, err
	}
	result.APIURL = local.APIURL

	opts.audit(audit.Entry{
		Operation: "getshared",
		Project:   opts.ProjectID,
		APIURL:    c.BaseURL(),
		Mode:      result.Mode,
	})

	return result, nil
}

// sharedEntry extracts and validates the entry for projectID from a
// single-project share.
func sharedEntry(payload []byte, projectID string) (configs.ProjectEntry, error) {
	var entries map[string]configs.ProjectEntry
	if err := json.Unmarshal(payload, &entries); err != nil {
		return configs.ProjectEntry{}, fmt.Errorf("%w: shared payload: %v", kerrors.ErrEncoding, err)
	}

	entry, ok := entries[projectID]
	if !ok {
		return configs.ProjectEntry{}, fmt.Errorf("%w: share does not contain project %q", kerrors.ErrEncoding, projectID)
	}

	check := configs.NewLocalConfig()
	check.SetProject(projectID, entry)
	if err := check.Validate(); err != nil {
		return configs.ProjectEntry{}, fmt.Errorf("%w: shared entry: %v", kerrors.ErrEncoding, err)
	}
	return entry, nil
}
