package utils

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/PolarWolf314/dotenvpull/internal/ui"
)

// MaxProjectIDLength bounds project ids so they fit in a header.
const MaxProjectIDLength = 128

// ReservedConfigKey is the member of the local config that holds the server address.
const ReservedConfigKey = "api_url"

// FormatList formats names into an indented bullet list.
func FormatList(items []string) string {
	var b strings.Builder
	for _, item := range items {
		b.WriteString("    - ")
		b.WriteString(ui.Highlight.Sprint(item))
		b.WriteString("\n")
	}
	return b.String()
}

// ValidateProjectID checks that id can be used as a config key and a header value.
func ValidateProjectID(id string) error {
	if id == "" {
		return fmt.Errorf("project id cannot be empty")
	}
	if id == ReservedConfigKey {
		return fmt.Errorf("project id %q is reserved", id)
	}
	if len(id) > MaxProjectIDLength {
		return fmt.Errorf("project id too long (max %d characters)", MaxProjectIDLength)
	}
	for _, r := range id {
		if unicode.IsSpace(r) || unicode.IsControl(r) || r > unicode.MaxASCII {
			return fmt.Errorf("project id %q contains invalid characters", id)
		}
	}
	return nil
}
