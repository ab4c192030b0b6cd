package platform

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// ErrExecutableNotFound indicates an external tool could not be resolved
var ErrExecutableNotFound = errors.New("executable not found")

// lookPath allows swapping PATH lookup in tests
var lookPath = exec.LookPath

// ResolveExecutable resolves an external tool with the precedence
// explicit option > environment value > PATH lookup of name.
// An explicit or environment value must point at an existing file.
func ResolveExecutable(explicit, envValue, name string) (string, error) {
	for _, candidate := range []string{explicit, envValue} {
		if candidate == "" {
			continue
		}
		return checkExecutable(candidate)
	}

	path, err := lookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s not in PATH", ErrExecutableNotFound, name)
	}
	return path, nil
}

// checkExecutable accepts a file path or a bare command name
func checkExecutable(candidate string) (string, error) {
	info, err := os.Stat(candidate)
	if err == nil {
		if info.IsDir() {
			return "", fmt.Errorf("%w: %s is a directory", ErrExecutableNotFound, candidate)
		}
		return candidate, nil
	}

	// Bare names such as "ffmpeg7" go through PATH
	if path, lerr := lookPath(candidate); lerr == nil {
		return path, nil
	}
	return "", fmt.Errorf("%w: %s", ErrExecutableNotFound, candidate)
}
