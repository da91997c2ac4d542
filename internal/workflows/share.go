package workflows

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PolarWolf314/dotenvpull/internal/audit"
	"github.com/PolarWolf314/dotenvpull/internal/configs"
	"github.com/PolarWolf314/dotenvpull/internal/secrets"
)

// ShareOptions configures the share workflow.
type ShareOptions struct {
	Common

	ProjectID string

	// AllProjects shares the whole local config, api_url included. The
	// share is still published under ProjectID.
	AllProjects bool
}

// ShareResult is everything the recipient needs. ShareCode and
// EncryptionKey must reach them over a channel of the caller's choosing.
type ShareResult struct {
	ShareCode     string
	ProjectID     string
	APIURL        string
	EncryptionKey string

	// ProjectsCount is the number of project entries in the share.
	ProjectsCount int
}

// Command returns the getshared invocation the recipient should run.
func (r ShareResult) Command() string {
	return strings.Join([]string{"dotenvpull", "getshared", r.ShareCode, r.ProjectID, r.APIURL, r.EncryptionKey}, " ")
}

// Share seals the project entry, or the whole config, under a fresh key
// that is distinct from any stored project key, and publishes it under a
// fresh one-time share code.
func Share(ctx context.Context, opts ShareOptions) (*ShareResult, error) {
	if err := validateProjectID(opts.ProjectID); err != nil {
		return nil, err
	}

	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, err
	}

	var payload []byte
	var count int
	if opts.AllProjects {
		payload, err = json.Marshal(cfg)
		count = len(cfg.Projects)
	} else {
		var entry configs.ProjectEntry
		entry, err = cfg.Project(opts.ProjectID)
		if err != nil {
			return nil, err
		}
		payload, err = json.Marshal(map[string]configs.ProjectEntry{opts.ProjectID: entry})
		count = 1
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode share payload: %w", err)
	}

	shareKey, err := secrets.GenerateKey()
	if err != nil {
		return nil, err
	}
	shareCode, err := secrets.GenerateShareCode()
	if err != nil {
		return nil, err
	}

	sealed, err := secrets.Seal(payload, shareKey)
	if err != nil {
		return nil, err
	}

	c, err := opts.newClient(cfg.APIURL)
	if err != nil {
		return nil, err
	}

	if err := c.Share(ctx, opts.ProjectID, shareCode, sealed); err != nil {
		return nil, fmt.Errorf("sharing project %q: %w", opts.ProjectID, err)
	}

	entry := audit.Entry{
		Operation: "share",
		Project:   opts.ProjectID,
		APIURL:    cfg.APIURL,
	}
	if opts.AllProjects {
		entry.ProjectsCount = count
	}
	opts.audit(entry)

	return &ShareResult{
		ShareCode:     shareCode,
		ProjectID:     opts.ProjectID,
		APIURL:        c.BaseURL(),
		EncryptionKey: secrets.EncodeKey(shareKey),
		ProjectsCount: count,
	}, nil
}
