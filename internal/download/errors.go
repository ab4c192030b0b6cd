package download

import (
	"errors"
	"fmt"
	"strings"
)

// Operations reported in Error
const (
	OpList  = "list"
	OpFetch = "fetch"
)

var (
	// ErrYtdlpNotInstalled indicates the yt-dlp executable could not be found or installed
	ErrYtdlpNotInstalled = errors.New("yt-dlp not installed")

	// ErrFormatUnavailable indicates no alternative of a format spec matched the listing
	ErrFormatUnavailable = errors.New("requested format not available")

	// ErrUnknownBackend indicates a backend name that is not supported
	ErrUnknownBackend = errors.New("unknown download backend")
)

// Error wraps a failed list or fetch call.
type Error struct {
	Op      string
	Backend string
	URL     string
	Spec    string // empty for list
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Backend)
	b.WriteString(" ")
	b.WriteString(e.Op)
	if e.Spec != "" {
		fmt.Fprintf(&b, " [%s]", e.Spec)
	}
	fmt.Fprintf(&b, " %s: %v", e.URL, e.Err)
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// lastLine returns the last non-empty line of s, used to surface tool stderr
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
