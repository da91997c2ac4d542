package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	kerrors "github.com/PolarWolf314/dotenvpull/internal/errors"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	// KeySize is the size of every encryption key in bytes.
	KeySize = 32
	// NonceSize is the size of the nonce prepended to sealed payloads.
	NonceSize = 12
	// shareCodeSize is the number of random bytes behind a share code.
	shareCodeSize = 32
)

// Suite names an AEAD construction with a 256-bit key and 96-bit nonce.
type Suite string

const (
	SuiteAESGCM           Suite = "aes-256-gcm"
	SuiteChaCha20Poly1305 Suite = "chacha20-poly1305"

	DefaultSuite = SuiteAESGCM
)

// ParseSuite maps a suite name to a Suite. The empty string is the default suite.
func ParseSuite(name string) (Suite, error) {
	switch Suite(name) {
	case "":
		return DefaultSuite, nil
	case SuiteAESGCM, SuiteChaCha20Poly1305:
		return Suite(name), nil
	default:
		return "", fmt.Errorf("unsupported cipher suite %q", name)
	}
}

func (s Suite) aead(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d bytes", kerrors.ErrInvalidKeyLength, KeySize, len(key))
	}

	switch s {
	case SuiteAESGCM, "":
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, fmt.Errorf("failed to create AES cipher: %w", err)
		}
		return cipher.NewGCM(block)
	case SuiteChaCha20Poly1305:
		return chacha20poly1305.New(key)
	default:
		return nil, fmt.Errorf("unsupported cipher suite %q", string(s))
	}
}

// Seal encrypts plaintext under key with the default suite.
func Seal(plaintext, key []byte) ([]byte, error) {
	return SealWith(DefaultSuite, plaintext, key)
}

// Open decrypts a payload produced by Seal.
func Open(sealed, key []byte) ([]byte, error) {
	return OpenWith(DefaultSuite, sealed, key)
}

// SealWith encrypts plaintext under key and returns nonce || ciphertext || tag.
func SealWith(suite Suite, plaintext, key []byte) ([]byte, error) {
	aead, err := suite.aead(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, NonceSize, NonceSize+len(plaintext)+aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// OpenWith splits the nonce off sealed and authenticates and decrypts the rest.
func OpenWith(suite Suite, sealed, key []byte) ([]byte, error) {
	aead, err := suite.aead(key)
	if err != nil {
		return nil, err
	}

	if len(sealed) < NonceSize {
		return nil, fmt.Errorf("%w: payload is %d bytes, shorter than the nonce", kerrors.ErrAuthenticationFailure, len(sealed))
	}

	plaintext, err := aead.Open(nil, sealed[:NonceSize], sealed[NonceSize:], nil)
	if err != nil {
		return nil, kerrors.ErrAuthenticationFailure
	}

	return plaintext, nil
}

// GenerateKey returns a new random 256-bit key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("failed to generate encryption key: %w", err)
	}
	return key, nil
}

// GenerateShareCode returns a fresh single-use share code. Codes never start
// with '-' so they cannot be mistaken for a command line flag.
func GenerateShareCode() (string, error) {
	code := make([]byte, shareCodeSize)
	for {
		if _, err := io.ReadFull(rand.Reader, code); err != nil {
			return "", fmt.Errorf("failed to generate share code: %w", err)
		}
		if encoded := base64.RawURLEncoding.EncodeToString(code); !strings.HasPrefix(encoded, "-") {
			return encoded, nil
		}
	}
}

// EncodeSealed encodes a sealed payload for a JSON field or config file.
func EncodeSealed(sealed []byte) string {
	return base64.StdEncoding.EncodeToString(sealed)
}

// DecodeSealed reverses EncodeSealed.
func DecodeSealed(encoded string) ([]byte, error) {
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: sealed payload is not valid base64: %v", kerrors.ErrEncoding, err)
	}
	return sealed, nil
}

// EncodeKey encodes a key for the local config or for sharing out of band.
func EncodeKey(key []byte) string {
	return base64.StdEncoding.EncodeToString(key)
}

// DecodeKey decodes a base64 key and checks its length.
func DecodeKey(encoded string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: encryption key is not valid base64: %v", kerrors.ErrEncoding, err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d bytes", kerrors.ErrInvalidKeyLength, KeySize, len(key))
	}
	return key, nil
}
