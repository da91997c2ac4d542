package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/dotenvpull/internal/audit"
	kerrors "github.com/PolarWolf314/dotenvpull/internal/errors"
	"github.com/PolarWolf314/dotenvpull/internal/secrets"
)

// UpdateOptions configures the update workflow.
type UpdateOptions struct {
	Common

	ProjectID string

	// FilePath is the new file, or StdioPath for stdin.
	FilePath string

	// Content is uploaded instead of FilePath when non-nil.
	Content []byte

	Validate bool
}

// UpdateResult contains the outcome of an update operation.
type UpdateResult struct {
	ProjectID string
	Bytes     int
	Variables int
}

// Update reseals a file under the project's stored key and replaces the
// ciphertext on the server. Neither the key nor the access key changes.
func Update(ctx context.Context, opts UpdateOptions) (*UpdateResult, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, err
	}

	entry, err := cfg.Project(opts.ProjectID)
	if err != nil {
		return nil, err
	}

	plaintext, err := readInput(opts.FilePath, opts.Content)
	if err != nil {
		return nil, err
	}

	result := &UpdateResult{ProjectID: opts.ProjectID, Bytes: len(plaintext)}

	if opts.Validate {
		n, err := validateDotenv(opts.FilePath, plaintext)
		if err != nil {
			return nil, err
		}
		result.Variables = n
	}

	key, err := entry.Key()
	if err != nil {
		return nil, fmt.Errorf("%w: project %q: %v", kerrors.ErrConfig, opts.ProjectID, err)
	}
	suite, err := entry.Suite()
	if err != nil {
		return nil, fmt.Errorf("%w: project %q: %v", kerrors.ErrConfig, opts.ProjectID, err)
	}

	sealed, err := secrets.SealWith(suite, plaintext, key)
	if err != nil {
		return nil, err
	}

	c, err := opts.newClient(cfg.APIURL)
	if err != nil {
		return nil, err
	}

	if err := c.Update(ctx, entry.AccessKey, opts.ProjectID, sealed); err != nil {
		return nil, fmt.Errorf("updating project %q: %w", opts.ProjectID, err)
	}

	opts.audit(audit.Entry{
		Operation: "update",
		Project:   opts.ProjectID,
		APIURL:    cfg.APIURL,
	})

	return result, nil
}
