package store

import (
	"context"
	"fmt"
	"time"

	kerrors "github.com/PolarWolf314/dotenvpull/internal/errors"

	"github.com/google/uuid"
)

// SecretRecord is a stored project secret.
type SecretRecord struct {
	ProjectID  string `json:"project_id"`
	Ciphertext []byte `json:"ciphertext"`
	AccessKey  string `json:"access_key"`
}

// ShareRecord is a pending one-time share.
type ShareRecord struct {
	ProjectID  string    `json:"project_id"`
	ShareCode  string    `json:"share_code"`
	Ciphertext []byte    `json:"ciphertext"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store is the persistence contract of the server. All ciphertext is opaque.
type Store interface {
	// Create stores a new secret for projectID and returns its access key.
	// Returns ErrConflict if the project already has a secret.
	Create(ctx context.Context, projectID string, ciphertext []byte) (string, error)

	// Read returns the ciphertext stored under accessKey.
	Read(ctx context.Context, accessKey string) ([]byte, error)

	// Update replaces the ciphertext stored under accessKey. The key is not rotated.
	Update(ctx context.Context, accessKey string, ciphertext []byte) error

	// Delete removes the secret stored under accessKey.
	Delete(ctx context.Context, accessKey string) error

	// Publish stores a share for projectID. Returns ErrConflict if one is pending.
	Publish(ctx context.Context, projectID, shareCode string, ciphertext []byte) error

	// Consume returns the share matching both projectID and shareCode and
	// deletes it in the same step.
	Consume(ctx context.Context, projectID, shareCode string) ([]byte, error)

	// Ping reports ErrStorageUnavailable if the backend cannot be reached.
	Ping(ctx context.Context) error

	Close(ctx context.Context) error

	Type() Type
}

// Type names a storage backend.
type Type string

const (
	TypeMemory Type = "memory"
	TypeFile   Type = "file"
	TypeMongo  Type = "mongo"
)

// Config selects and configures a backend.
type Config struct {
	Type Type

	// DataDir is the directory of the file backend.
	DataDir string

	// MongoURI and MongoDatabase configure the mongo backend.
	MongoURI      string
	MongoDatabase string

	// ShareTTL expires pending shares. Zero keeps them until consumed.
	ShareTTL time.Duration

	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

func (c Config) clock() func() time.Time {
	if c.Clock != nil {
		return c.Clock
	}
	return time.Now
}

// NewStore creates the backend named by cfg.Type.
func NewStore(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Type {
	case TypeMemory, "":
		return NewMemoryStore(cfg), nil
	case TypeFile:
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("%w: file store requires a data directory", kerrors.ErrConfig)
		}
		return NewFileStore(cfg)
	case TypeMongo:
		if cfg.MongoURI == "" || cfg.MongoDatabase == "" {
			return nil, fmt.Errorf("%w: mongo store requires a URI and a database name", kerrors.ErrConfig)
		}
		return NewMongoStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: unsupported store type %q", kerrors.ErrConfig, cfg.Type)
	}
}

// NewAccessKey mints a random, unguessable access key (UUIDv4, 122 random bits).
func NewAccessKey() string {
	return uuid.NewString()
}

func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", kerrors.ErrStorageUnavailable, op, err)
}

func requireArgs(op string, args ...string) error {
	for _, a := range args {
		if a == "" {
			return fmt.Errorf("%w: %s: missing required argument", kerrors.ErrBadRequest, op)
		}
	}
	return nil
}

func expired(createdAt time.Time, ttl time.Duration, now time.Time) bool {
	return ttl > 0 && !createdAt.IsZero() && now.Sub(createdAt) >= ttl
}
