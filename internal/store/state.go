package store

import (
	"crypto/subtle"
	"time"

	kerrors "github.com/PolarWolf314/dotenvpull/internal/errors"
)

// state holds both namespaces. It is not safe for concurrent use; backends
// serialise access to it.
type state struct {
	// Secrets is keyed by access key.
	Secrets map[string]SecretRecord `json:"secrets"`
	// Shares is keyed by project id.
	Shares map[string]ShareRecord `json:"shares"`
}

func newState() *state {
	return &state{
		Secrets: make(map[string]SecretRecord),
		Shares:  make(map[string]ShareRecord),
	}
}

func (s *state) ensureMaps() {
	if s.Secrets == nil {
		s.Secrets = make(map[string]SecretRecord)
	}
	if s.Shares == nil {
		s.Shares = make(map[string]ShareRecord)
	}
}

func (s *state) create(projectID string, ciphertext []byte) (string, error) {
	for _, rec := range s.Secrets {
		if rec.ProjectID == projectID {
			return "", kerrors.ErrConflict
		}
	}

	accessKey := NewAccessKey()
	s.Secrets[accessKey] = SecretRecord{
		ProjectID:  projectID,
		Ciphertext: clone(ciphertext),
		AccessKey:  accessKey,
	}
	return accessKey, nil
}

func (s *state) read(accessKey string) ([]byte, error) {
	rec, ok := s.Secrets[accessKey]
	if !ok {
		return nil, kerrors.ErrNotFound
	}
	return clone(rec.Ciphertext), nil
}

func (s *state) update(accessKey string, ciphertext []byte) error {
	rec, ok := s.Secrets[accessKey]
	if !ok {
		return kerrors.ErrNotFound
	}
	rec.Ciphertext = clone(ciphertext)
	s.Secrets[accessKey] = rec
	return nil
}

func (s *state) delete(accessKey string) error {
	if _, ok := s.Secrets[accessKey]; !ok {
		return kerrors.ErrNotFound
	}
	delete(s.Secrets, accessKey)
	return nil
}

// publish replaces an expired share for the project, if any.
func (s *state) publish(projectID, shareCode string, ciphertext []byte, now time.Time, ttl time.Duration) error {
	if rec, ok := s.Shares[projectID]; ok && !expired(rec.CreatedAt, ttl, now) {
		return kerrors.ErrConflict
	}

	s.Shares[projectID] = ShareRecord{
		ProjectID:  projectID,
		ShareCode:  shareCode,
		Ciphertext: clone(ciphertext),
		CreatedAt:  now.UTC(),
	}
	return nil
}

// consume returns changed=true whenever the share map was modified, including
// when an expired share was purged.
func (s *state) consume(projectID, shareCode string, now time.Time, ttl time.Duration) (ciphertext []byte, changed bool, err error) {
	rec, ok := s.Shares[projectID]
	if !ok {
		return nil, false, kerrors.ErrNotFound
	}

	if expired(rec.CreatedAt, ttl, now) {
		delete(s.Shares, projectID)
		return nil, true, kerrors.ErrNotFound
	}

	if subtle.ConstantTimeCompare([]byte(rec.ShareCode), []byte(shareCode)) != 1 {
		return nil, false, kerrors.ErrNotFound
	}

	delete(s.Shares, projectID)
	return rec.Ciphertext, true, nil
}

func clone(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return append([]byte(nil), b...)
}
