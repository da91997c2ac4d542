//go:build !unix && !windows

package store

import "os"

// Platforms without file locks rely on the operator running one server per data directory.
func lockFile(f *os.File) (held bool, err error) { return false, nil }

func unlockFile(f *os.File) error { return nil }
