package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const timestampFormat = "2006-01-02T15:04:05.000000Z"

// Entry represents a single audit log entry.
type Entry struct {
	Timestamp string `json:"ts"` // RFC3339 with microseconds.
	Operation string `json:"op"` // Operation name.
	Project   string `json:"project,omitempty"`
	APIURL    string `json:"api_url,omitempty"`

	// Optional fields depending on operation.
	OutputPath    string `json:"output_path,omitempty"`    // For pull.
	Mode          string `json:"mode,omitempty"`           // For getshared (merge/replace).
	ProjectsCount int    `json:"projects_count,omitempty"` // For share with all projects.
}

// Time parses the entry timestamp. The zero time is returned for malformed values.
func (e Entry) Time() time.Time {
	t, err := time.Parse(timestampFormat, e.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// LogPath returns the audit log that belongs to the local config at configPath.
func LogPath(configPath string) string {
	if configPath == "" {
		return ""
	}
	base := strings.TrimSuffix(configPath, filepath.Ext(configPath))
	return base + ".audit.jsonl"
}

// Log appends an entry to the audit log at logPath.
// If logging fails, the error is dropped. Operations should not fail just
// because audit logging failed.
func Log(logPath string, entry Entry) {
	if logPath == "" {
		return
	}

	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(timestampFormat)
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	_, _ = f.Write(append(data, '\n'))
}

// ReadEntries reads all entries from the audit log.
// Returns an empty slice if the log doesn't exist.
func ReadEntries(logPath string) ([]Entry, error) {
	if logPath == "" {
		return nil, nil
	}

	data, err := os.ReadFile(logPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into audit entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	var entries []Entry
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var entry Entry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
