// Package errors provides typed error values for dotenvpull.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching. The same
// values are used on both sides of the wire: the server maps them to HTTP
// status codes and error codes, and the client maps responses back to them.
//
// # Error Categories
//
//   - Protocol errors: record state on the server (ErrConflict, ErrNotFound, ErrBadRequest)
//   - Crypto errors: sealing and opening payloads (ErrAuthenticationFailure, ErrEncoding)
//   - Infrastructure errors: transient failures, safe to retry (ErrStorageUnavailable, ErrTransport)
//   - Client state errors: local configuration (ErrUnknownProject, ErrDestinationExists, ErrConfig, ErrInvalidArgument)
//
// # Usage
//
// Wrap errors with the project and operation involved:
//
//	return fmt.Errorf("pushing project %s: %w", projectID, errors.ErrConflict)
//
// Handle errors in the CLI layer:
//
//	if errors.Is(err, kerrors.ErrConflict) {
//	    // suggest `dotenvpull update`
//	}
package errors
