// Package store persists the encrypted payloads held by the dotenvpull server.
//
// The server never sees plaintext or keys: every record carries opaque sealed
// bytes. Two record kinds live in separate namespaces:
//
//   - SecretRecord: one per project, created by push and addressed afterwards
//     only by its access key. Update replaces the ciphertext in place; delete
//     removes it.
//   - ShareRecord: one pending share per project, addressed by the pair
//     (project id, share code) and destroyed atomically by its first
//     successful read.
//
// # Atomicity
//
// Create and Publish check for an existing record and insert as one step.
// Consume finds and deletes as one step, so two concurrent reads of the same
// share see exactly one success and one ErrNotFound. The memory and file
// backends get this from a mutex; the mongo backend from unique indexes and
// FindOneAndDelete.
//
// # Errors
//
// Backends return ErrConflict, ErrNotFound and ErrBadRequest from the
// internal/errors package for record state, and wrap every failure of the
// underlying persistence layer in ErrStorageUnavailable. A storage failure is
// never reported as ErrNotFound.
package store
