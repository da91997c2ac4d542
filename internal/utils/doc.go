// Package utils provides shared helpers for dotenvpull.
//
// # Filesystem Utilities
//
//   - WriteFileAtomic: writes through a temp file and rename, so readers never see a partial file
//   - FileExists: reports whether a path exists
//
// # String Utilities
//
//   - FormatList: formats names for human-readable output
//   - ValidateProjectID: rejects ids that cannot be stored in the local config
//
// # I/O and Terminal Utilities
//
//   - ReadStdin: reads piped input
//   - ReadSecret: prompts for a value without echoing it
//   - IsTerminal: checks whether stdin is a terminal
package utils
