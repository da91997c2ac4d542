// Package workflows provides high-level orchestration for dotenvpull commands.
//
// Workflows coordinate the local config, the cipher and the server client to
// implement complete user-facing features. Each workflow handles a single
// command's business logic, independent of CLI concerns like flag parsing,
// spinners, and output formatting.
//
// # Design Philosophy
//
// The cmd/ package should be a thin layer that:
//   - Parses command-line flags and arguments
//   - Calls the appropriate workflow function
//   - Formats the result for display
//
// Workflows handle everything else:
//   - Loading the local config
//   - Sealing before upload and opening after download
//   - Saving the local config after the server confirmed the change
//   - Recording audit trail entries
//
// # Available Workflows
//
//   - Push: Seals a file under a fresh key and stores it on the server
//   - Pull: Fetches and opens a stored file
//   - Update: Reseals a file under the project's existing key
//   - Delete: Deletes the stored file, then forgets the project locally
//   - Share: Publishes a one-time copy of project entries under a fresh key
//   - GetShared: Consumes a share and merges it into the local config
//   - List, Log, Ping, SetURL: local inspection and settings
//
// # Error Handling
//
// Workflows return typed errors from the internal/errors package, allowing
// the CLI layer to provide appropriate user-facing messages without string
// matching:
//
//	result, err := workflows.Push(ctx, opts)
//	if errors.Is(err, kerrors.ErrConflict) {
//	    // suggest `dotenvpull update`
//	}
//
// # Context Usage
//
// All workflow functions accept a context.Context as their first parameter.
// It bounds the network calls to the server.
package workflows
