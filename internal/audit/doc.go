// Package audit keeps a local trail of client operations.
//
// Every workflow that talks to the server (push, pull, update, delete,
// share, getshared) appends one entry to a JSON Lines file next to the
// local config:
//
//	dotenvpull_config.json -> dotenvpull_config.audit.jsonl
//
// Each entry contains:
//   - Timestamp (RFC3339 with microseconds, UTC)
//   - Operation name
//   - Project id and server address
//   - Operation-specific details (output path, merge mode)
//
// Keys, access keys and share codes are never written to the log.
//
// # Failure Handling
//
// Audit logging is best-effort. If logging fails (permissions, disk full,
// etc.), the operation continues without error.
//
// # Reading Logs
//
// Use ReadEntries() to parse the audit log for `dotenvpull log`.
// Malformed entries are silently skipped to handle partial writes.
package audit
