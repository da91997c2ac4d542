package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps records in process memory. Records are lost on restart.
type MemoryStore struct {
	mu       sync.Mutex
	state    *state
	shareTTL time.Duration
	now      func() time.Time
}

func NewMemoryStore(cfg Config) *MemoryStore {
	return &MemoryStore{
		state:    newState(),
		shareTTL: cfg.ShareTTL,
		now:      cfg.clock(),
	}
}

func (m *MemoryStore) Create(ctx context.Context, projectID string, ciphertext []byte) (string, error) {
	if err := requireArgs("create", projectID); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.create(projectID, ciphertext)
}

func (m *MemoryStore) Read(ctx context.Context, accessKey string) ([]byte, error) {
	if err := requireArgs("read", accessKey); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.read(accessKey)
}

func (m *MemoryStore) Update(ctx context.Context, accessKey string, ciphertext []byte) error {
	if err := requireArgs("update", accessKey); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.update(accessKey, ciphertext)
}

func (m *MemoryStore) Delete(ctx context.Context, accessKey string) error {
	if err := requireArgs("delete", accessKey); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.delete(accessKey)
}

func (m *MemoryStore) Publish(ctx context.Context, projectID, shareCode string, ciphertext []byte) error {
	if err := requireArgs("publish", projectID, shareCode); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.publish(projectID, shareCode, ciphertext, m.now(), m.shareTTL)
}

func (m *MemoryStore) Consume(ctx context.Context, projectID, shareCode string) ([]byte, error) {
	if err := requireArgs("consume", projectID, shareCode); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ciphertext, _, err := m.state.consume(projectID, shareCode, m.now(), m.shareTTL)
	return ciphertext, err
}

func (m *MemoryStore) Ping(ctx context.Context) error { return nil }

func (m *MemoryStore) Close(ctx context.Context) error { return nil }

func (m *MemoryStore) Type() Type { return TypeMemory }
