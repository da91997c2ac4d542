// Package secrets provides the cryptographic primitives of dotenvpull.
//
// # Envelope Encryption
//
// Every payload is encrypted on the client under a key that never leaves the
// client in plaintext form:
//
//  1. A random 256-bit key is generated per project on push
//  2. The file is sealed with an AEAD under that key
//  3. Only the sealed bytes, base64 encoded, are sent to the server
//
// A share is sealed under its own freshly generated key, distinct from every
// project key. The share key travels out of band with the share code.
//
// # Sealed Format
//
//	sealed = nonce (12 bytes) || ciphertext || tag (16 bytes)
//
// The nonce is drawn from crypto/rand on every call. Two suites produce this
// format: AES-256-GCM (the default) and ChaCha20-Poly1305. Opening fails with
// ErrAuthenticationFailure on any tag mismatch and never returns partial
// plaintext.
//
// # Encodings
//
// Sealed payloads and keys are carried as standard padded base64. Share codes
// are URL-safe base64 without padding so they survive headers and shells.
package secrets
