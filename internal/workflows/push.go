package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/dotenvpull/internal/audit"
	"github.com/PolarWolf314/dotenvpull/internal/configs"
	kerrors "github.com/PolarWolf314/dotenvpull/internal/errors"
	"github.com/PolarWolf314/dotenvpull/internal/secrets"
)

// PushOptions configures the push workflow.
type PushOptions struct {
	Common

	ProjectID string

	// FilePath is the file to upload, or StdioPath for stdin.
	FilePath string

	// Content is uploaded instead of FilePath when non-nil.
	Content []byte

	// Validate rejects files that do not parse as dotenv.
	Validate bool

	// Suite selects the cipher. Empty means the default suite.
	Suite secrets.Suite
}

// PushResult contains the outcome of a push operation.
type PushResult struct {
	ProjectID string
	APIURL    string

	// Bytes is the plaintext size.
	Bytes int

	// Variables is set when Validate was requested.
	Variables int
}

// Push seals a file under a freshly generated key, stores the ciphertext on
// the server and records the returned access key and the key locally.
//
// Returns ErrConflict if the project is already known locally or on the
// server; the caller should use Update instead.
func Push(ctx context.Context, opts PushOptions) (*PushResult, error) {
	if err := validateProjectID(opts.ProjectID); err != nil {
		return nil, err
	}

	suite, err := secrets.ParseSuite(string(opts.Suite))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidArgument, err)
	}

	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, err
	}
	if _, ok := cfg.Projects[opts.ProjectID]; ok {
		return nil, fmt.Errorf("%w: project %q is already in the local config", kerrors.ErrConflict, opts.ProjectID)
	}

	plaintext, err := readInput(opts.FilePath, opts.Content)
	if err != nil {
		return nil, err
	}

	result := &PushResult{
		ProjectID: opts.ProjectID,
		APIURL:    cfg.APIURL,
		Bytes:     len(plaintext),
	}

	if opts.Validate {
		n, err := validateDotenv(opts.FilePath, plaintext)
		if err != nil {
			return nil, err
		}
		result.Variables = n
	}

	key, err := secrets.GenerateKey()
	if err != nil {
		return nil, err
	}
	sealed, err := secrets.SealWith(suite, plaintext, key)
	if err != nil {
		return nil, err
	}

	c, err := opts.newClient(cfg.APIURL)
	if err != nil {
		return nil, err
	}

	accessKey, err := c.Push(ctx, opts.ProjectID, sealed)
	if err != nil {
		return nil, fmt.Errorf("pushing project %q: %w", opts.ProjectID, err)
	}

	entry := configs.ProjectEntry{
		AccessKey:     accessKey,
		EncryptionKey: secrets.EncodeKey(key),
	}
	if suite != secrets.DefaultSuite {
		entry.Cipher = string(suite)
	}
	cfg.SetProject(opts.ProjectID, entry)

	if err := opts.saveConfig(cfg); err != nil {
		// Without the local entry the stored record can never be opened.
		if delErr := c.Delete(ctx, accessKey); delErr != nil {
			return nil, fmt.Errorf("%w (the server record for %q could not be removed: %v)", err, opts.ProjectID, delErr)
		}
		return nil, err
	}

	opts.audit(audit.Entry{
		Operation: "push",
		Project:   opts.ProjectID,
		APIURL:    cfg.APIURL,
	})

	return result, nil
}
