package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	kerrors "github.com/PolarWolf314/dotenvpull/internal/errors"
	"github.com/PolarWolf314/dotenvpull/internal/utils"
)

const (
	fileStoreName               = "dotenvpull-store.json"
	lockFileName                = ".dotenvpull.lock"
	filePermissions os.FileMode = 0600
	dirPermissions  os.FileMode = 0700
)

// FileStore keeps both namespaces in one JSON document under DataDir.
// Every operation reloads the document, so the file can be inspected or
// backed up between requests. A FileStore holds a lock on its data directory
// until Close, so a second store on the same directory fails to open.
type FileStore struct {
	mu       sync.Mutex
	path     string
	lock     *os.File
	shareTTL time.Duration
	now      func() time.Time
}

func NewFileStore(cfg Config) (*FileStore, error) {
	if err := os.MkdirAll(cfg.DataDir, dirPermissions); err != nil {
		return nil, storageError("creating data directory", err)
	}

	lock, err := lockDataDir(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	fs := &FileStore{
		path:     filepath.Join(cfg.DataDir, fileStoreName),
		lock:     lock,
		shareTTL: cfg.ShareTTL,
		now:      cfg.clock(),
	}

	if err := fs.Ping(context.Background()); err != nil {
		_ = fs.Close(context.Background())
		return nil, err
	}
	return fs, nil
}

func lockDataDir(dir string) (*os.File, error) {
	f, err := os.OpenFile(filepath.Join(dir, lockFileName), os.O_CREATE|os.O_RDWR, filePermissions)
	if err != nil {
		return nil, storageError("opening lock file", err)
	}

	held, err := lockFile(f)
	if err != nil {
		f.Close()
		return nil, storageError("locking data directory", err)
	}
	if held {
		f.Close()
		return nil, fmt.Errorf("%w: data directory %s is in use by another dotenvpull server", kerrors.ErrStorageUnavailable, dir)
	}
	return f, nil
}

func (fs *FileStore) load() (*state, error) {
	data, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		return newState(), nil
	}
	if err != nil {
		return nil, storageError("reading store file", err)
	}

	st := newState()
	if err := json.Unmarshal(data, st); err != nil {
		return nil, storageError("decoding store file", err)
	}
	st.ensureMaps()
	return st, nil
}

func (fs *FileStore) save(st *state) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode store file: %w", err)
	}
	if err := utils.WriteFileAtomic(fs.path, data, filePermissions); err != nil {
		return storageError("writing store file", err)
	}
	return nil
}

// mutate runs fn against the current document under the lock and saves the
// document when fn reports a change.
func (fs *FileStore) mutate(fn func(st *state) (changed bool, err error)) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	st, err := fs.load()
	if err != nil {
		return err
	}

	changed, opErr := fn(st)
	if changed {
		if err := fs.save(st); err != nil {
			return err
		}
	}
	return opErr
}

func (fs *FileStore) Create(ctx context.Context, projectID string, ciphertext []byte) (string, error) {
	if err := requireArgs("create", projectID); err != nil {
		return "", err
	}

	var accessKey string
	err := fs.mutate(func(st *state) (bool, error) {
		key, err := st.create(projectID, ciphertext)
		if err != nil {
			return false, err
		}
		accessKey = key
		return true, nil
	})
	if err != nil {
		return "", err
	}
	return accessKey, nil
}

func (fs *FileStore) Read(ctx context.Context, accessKey string) ([]byte, error) {
	if err := requireArgs("read", accessKey); err != nil {
		return nil, err
	}

	var ciphertext []byte
	err := fs.mutate(func(st *state) (bool, error) {
		c, err := st.read(accessKey)
		ciphertext = c
		return false, err
	})
	return ciphertext, err
}

func (fs *FileStore) Update(ctx context.Context, accessKey string, ciphertext []byte) error {
	if err := requireArgs("update", accessKey); err != nil {
		return err
	}
	return fs.mutate(func(st *state) (bool, error) {
		err := st.update(accessKey, ciphertext)
		return err == nil, err
	})
}

func (fs *FileStore) Delete(ctx context.Context, accessKey string) error {
	if err := requireArgs("delete", accessKey); err != nil {
		return err
	}
	return fs.mutate(func(st *state) (bool, error) {
		err := st.delete(accessKey)
		return err == nil, err
	})
}

func (fs *FileStore) Publish(ctx context.Context, projectID, shareCode string, ciphertext []byte) error {
	if err := requireArgs("publish", projectID, shareCode); err != nil {
		return err
	}
	return fs.mutate(func(st *state) (bool, error) {
		err := st.publish(projectID, shareCode, ciphertext, fs.now(), fs.shareTTL)
		return err == nil, err
	})
}

func (fs *FileStore) Consume(ctx context.Context, projectID, shareCode string) ([]byte, error) {
	if err := requireArgs("consume", projectID, shareCode); err != nil {
		return nil, err
	}

	var ciphertext []byte
	err := fs.mutate(func(st *state) (bool, error) {
		c, changed, err := st.consume(projectID, shareCode, fs.now(), fs.shareTTL)
		ciphertext = c
		return changed, err
	})
	if err != nil {
		return nil, err
	}
	return ciphertext, nil
}

// Ping checks that the store file, if present, can be read and decoded.
func (fs *FileStore) Ping(ctx context.Context) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	_, err := fs.load()
	return err
}

// Close releases the data directory. It is safe to call more than once.
func (fs *FileStore) Close(ctx context.Context) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.lock == nil {
		return nil
	}
	lock := fs.lock
	fs.lock = nil

	unlockErr := unlockFile(lock)
	if err := lock.Close(); err != nil {
		return storageError("closing lock file", err)
	}
	if unlockErr != nil {
		return storageError("unlocking data directory", unlockErr)
	}
	return nil
}

func (fs *FileStore) Type() Type { return TypeFile }
