package download

import (
	"errors"
	"testing"
)

func TestError_Message(t *testing.T) {
	err := &Error{Op: OpFetch, Backend: BackendYtdlp, URL: "https://example.com/v", Spec: "137/best", Err: errors.New("exit status 1")}
	expected := "yt-dlp fetch [137/best] https://example.com/v: exit status 1"
	if err.Error() != expected {
		t.Errorf("Error() = %q, expected %q", err.Error(), expected)
	}

	listErr := &Error{Op: OpList, Backend: BackendNative, URL: "u", Err: errors.New("boom")}
	if listErr.Error() != "native list u: boom" {
		t.Errorf("Error() = %q", listErr.Error())
	}
}

func TestError_Unwrap(t *testing.T) {
	err := &Error{Op: OpFetch, Err: ErrFormatUnavailable}
	if !errors.Is(err, ErrFormatUnavailable) {
		t.Error("Expected errors.Is to see the wrapped sentinel")
	}
}

func TestLastLine(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"one", "one"},
		{"WARNING: x\nERROR: Video unavailable\n\n", "ERROR: Video unavailable"},
		{"  \n  \n", ""},
	}

	for _, test := range tests {
		if got := lastLine(test.input); got != test.expected {
			t.Errorf("lastLine(%q) = %q, expected %q", test.input, got, test.expected)
		}
	}
}
