package workflows

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PolarWolf314/dotenvpull/internal/audit"
	kerrors "github.com/PolarWolf314/dotenvpull/internal/errors"
)

const dateFormat = "2006-01-02"

// LogOptions configures the log workflow.
type LogOptions struct {
	Common

	// Limit is the maximum number of entries to return. 0 means no limit.
	Limit int

	// Reverse orders entries from most recent to oldest when true.
	Reverse bool

	// Project filters entries by project id.
	Project string

	// Operations filters entries by operation types (comma-separated).
	Operations string

	// Since filters entries after this date (YYYY-MM-DD format).
	Since string

	// Until filters entries before this date (YYYY-MM-DD format).
	Until string
}

// LogResult contains the outcome of a log operation.
type LogResult struct {
	// LogPath is the audit log that was read.
	LogPath string

	// Entries are the filtered audit log entries.
	Entries []audit.Entry

	// TotalEntriesBeforeFilter is the count of entries before filtering.
	TotalEntriesBeforeFilter int
}

// Log reads and filters the audit log that belongs to the local config.
// A missing log yields no entries.
//
// Returns ErrInvalidArgument if a date is not in YYYY-MM-DD format.
func Log(ctx context.Context, opts LogOptions) (*LogResult, error) {
	var since, until time.Time
	var err error
	if opts.Since != "" {
		if since, err = time.Parse(dateFormat, opts.Since); err != nil {
			return nil, fmt.Errorf("%w: --since date format invalid, use YYYY-MM-DD", kerrors.ErrInvalidArgument)
		}
	}
	if opts.Until != "" {
		if until, err = time.Parse(dateFormat, opts.Until); err != nil {
			return nil, fmt.Errorf("%w: --until date format invalid, use YYYY-MM-DD", kerrors.ErrInvalidArgument)
		}
		// Include the entire day.
		until = until.Add(24*time.Hour - time.Nanosecond)
	}

	logPath := audit.LogPath(opts.configPath())
	entries, err := audit.ReadEntries(logPath)
	if err != nil {
		return nil, fmt.Errorf("reading audit log: %w", err)
	}

	result := &LogResult{
		LogPath:                  logPath,
		TotalEntriesBeforeFilter: len(entries),
	}

	filtered := entries

	if opts.Project != "" {
		filtered = filterEntries(filtered, func(e audit.Entry) bool {
			return e.Project == opts.Project
		})
	}

	if opts.Operations != "" {
		ops := make(map[string]bool)
		for _, op := range strings.Split(opts.Operations, ",") {
			ops[strings.ToLower(strings.TrimSpace(op))] = true
		}
		filtered = filterEntries(filtered, func(e audit.Entry) bool {
			return ops[strings.ToLower(e.Operation)]
		})
	}

	if !since.IsZero() {
		filtered = filterEntries(filtered, func(e audit.Entry) bool {
			t := e.Time()
			return !t.IsZero() && !t.Before(since)
		})
	}

	if !until.IsZero() {
		filtered = filterEntries(filtered, func(e audit.Entry) bool {
			t := e.Time()
			return !t.IsZero() && !t.After(until)
		})
	}

	if opts.Reverse {
		for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
			filtered[i], filtered[j] = filtered[j], filtered[i]
		}
	}

	// The limit keeps the most recent entries in either order.
	if opts.Limit > 0 && len(filtered) > opts.Limit {
		if opts.Reverse {
			filtered = filtered[:opts.Limit]
		} else {
			filtered = filtered[len(filtered)-opts.Limit:]
		}
	}

	result.Entries = filtered
	return result, nil
}

func filterEntries(entries []audit.Entry, keep func(audit.Entry) bool) []audit.Entry {
	var result []audit.Entry
	for _, e := range entries {
		if keep(e) {
			result = append(result, e)
		}
	}
	return result
}

// FormatDateTime formats an entry timestamp as YYYY-MM-DD HH:MM:SS.
func FormatDateTime(ts string) string {
	t := audit.Entry{Timestamp: ts}.Time()
	if t.IsZero() {
		if len(ts) >= 19 {
			return ts[:19]
		}
		return ts
	}
	return t.Format("2006-01-02 15:04:05")
}

// FormatDetails summarizes the operation-specific fields of an entry.
func FormatDetails(e audit.Entry) string {
	switch e.Operation {
	case "pull":
		return e.OutputPath
	case "getshared":
		return e.Mode
	case "share":
		if e.ProjectsCount > 0 {
			return fmt.Sprintf("all projects (%d)", e.ProjectsCount)
		}
		return ""
	default:
		return ""
	}
}
