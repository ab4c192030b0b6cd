package pipeline

import (
	"errors"
	"fmt"

	"github.com/ytget/yt-merger/internal/model"
)

var (
	// ErrNoFormats is returned when the extractor reports no formats at all
	ErrNoFormats = errors.New("no formats available")

	// ErrNoVideoFormats is returned when no format has a vertical resolution
	ErrNoVideoFormats = errors.New("no video formats available")
)

// StepError records the state a run was in when it failed
type StepError struct {
	State model.RunState
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.State, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
