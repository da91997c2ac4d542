package store

import "os"

func writeRaw(path string, data []byte) error {
	return os.WriteFile(path, data, 0600)
}
