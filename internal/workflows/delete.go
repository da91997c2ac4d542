package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/dotenvpull/internal/audit"
)

// DeleteOptions configures the delete workflow.
type DeleteOptions struct {
	Common

	ProjectID string
}

// DeleteResult contains the outcome of a delete operation.
type DeleteResult struct {
	ProjectID string
}

// Delete removes the project's record from the server and then its local
// entry. If the server call fails the local entry is kept, so the command
// can be retried.
func Delete(ctx context.Context, opts DeleteOptions) (*DeleteResult, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, err
	}

	entry, err := cfg.Project(opts.ProjectID)
	if err != nil {
		return nil, err
	}

	c, err := opts.newClient(cfg.APIURL)
	if err != nil {
		return nil, err
	}

	if err := c.Delete(ctx, entry.AccessKey); err != nil {
		return nil, fmt.Errorf("deleting project %q: %w", opts.ProjectID, err)
	}

	cfg.RemoveProject(opts.ProjectID)
	if err := opts.saveConfig(cfg); err != nil {
		return nil, fmt.Errorf("project %q was deleted on the server but the local config was not updated: %w", opts.ProjectID, err)
	}

	opts.audit(audit.Entry{
		Operation: "delete",
		Project:   opts.ProjectID,
		APIURL:    cfg.APIURL,
	})

	return &DeleteResult{ProjectID: opts.ProjectID}, nil
}
