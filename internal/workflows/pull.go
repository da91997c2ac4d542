package workflows

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/PolarWolf314/dotenvpull/internal/audit"
	kerrors "github.com/PolarWolf314/dotenvpull/internal/errors"
	"github.com/PolarWolf314/dotenvpull/internal/secrets"
	"github.com/PolarWolf314/dotenvpull/internal/utils"
)

const outputPermissions os.FileMode = 0600

// PullOptions configures the pull workflow.
type PullOptions struct {
	Common

	ProjectID string

	// OutputPath is the destination file, or StdioPath for Stdout.
	OutputPath string

	// Force overwrites an existing destination.
	Force bool

	// Stdout receives the plaintext when OutputPath is StdioPath.
	Stdout io.Writer
}

// PullResult contains the outcome of a pull operation.
type PullResult struct {
	ProjectID  string
	OutputPath string
	Bytes      int
}

// Pull fetches the project's ciphertext, opens it with the local key and
// writes the plaintext to the destination.
//
// Returns ErrUnknownProject if the project is not in the local config.
// Returns ErrDestinationExists, without contacting the server, if the
// destination exists and Force is not set.
// Returns ErrAuthenticationFailure if the stored payload does not open
// under the local key.
func Pull(ctx context.Context, opts PullOptions) (*PullResult, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, err
	}

	entry, err := cfg.Project(opts.ProjectID)
	if err != nil {
		return nil, err
	}

	toStdout := opts.OutputPath == StdioPath
	if !toStdout && !opts.Force {
		exists, err := utils.FileExists(opts.OutputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to check %s: %w", opts.OutputPath, err)
		}
		if exists {
			return nil, fmt.Errorf("%w: %s", kerrors.ErrDestinationExists, opts.OutputPath)
		}
	}

	key, err := entry.Key()
	if err != nil {
		return nil, fmt.Errorf("%w: project %q: %v", kerrors.ErrConfig, opts.ProjectID, err)
	}
	suite, err := entry.Suite()
	if err != nil {
		return nil, fmt.Errorf("%w: project %q: %v", kerrors.ErrConfig, opts.ProjectID, err)
	}

	c, err := opts.newClient(cfg.APIURL)
	if err != nil {
		return nil, err
	}

	sealed, err := c.Pull(ctx, entry.AccessKey)
	if err != nil {
		return nil, fmt.Errorf("pulling project %q: %w", opts.ProjectID, err)
	}

	plaintext, err := secrets.OpenWith(suite, sealed, key)
	if err != nil {
		return nil, fmt.Errorf("opening project %q: %w", opts.ProjectID, err)
	}

	if toStdout {
		w := opts.Stdout
		if w == nil {
			w = os.Stdout
		}
		if _, err := w.Write(plaintext); err != nil {
			return nil, fmt.Errorf("failed to write output: %w", err)
		}
	} else if err := utils.WriteFileAtomic(opts.OutputPath, plaintext, outputPermissions); err != nil {
		return nil, err
	}

	opts.audit(audit.Entry{
		Operation:  "pull",
		Project:    opts.ProjectID,
		APIURL:     cfg.APIURL,
		OutputPath: opts.OutputPath,
	})

	return &PullResult{
		ProjectID:  opts.ProjectID,
		OutputPath: opts.OutputPath,
		Bytes:      len(plaintext),
	}, nil
}
