package formats

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ytget/yt-merger/internal/model"
)

// Format spec constants understood by both download backends
const (
	// FallbackSpec is appended to a concrete id and used alone when nothing was chosen
	FallbackSpec = "best"

	// AudioSpec selects the best audio-only stream, or the best stream overall
	AudioSpec = "bestaudio/best"

	// SpecSeparator separates alternatives in a format spec
	SpecSeparator = "/"
)

// ErrEmptyChoice is returned by ParseChoice for blank input
var ErrEmptyChoice = errors.New("empty choice")

// Select resolves a 1-based menu choice against the listing. It returns the
// identifier at position choice-1, or ok=false when choice is out of range.
func Select(listing model.Listing, choice int) (id string, ok bool) {
	index := choice - 1
	if index < 0 || index >= len(listing) {
		return "", false
	}
	return listing[index].ID, true
}

// ParseChoice parses a line of operator input into a 1-based menu choice.
func ParseChoice(text string) (int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, ErrEmptyChoice
	}
	choice, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("invalid choice %q: %w", text, err)
	}
	return choice, nil
}

// VideoSpec builds the format spec for the video fetch: the chosen id with a
// generic fallback, or the generic spec alone when nothing was chosen.
func VideoSpec(id string, ok bool) string {
	if !ok || id == "" {
		return FallbackSpec
	}
	return id + SpecSeparator + FallbackSpec
}

// SplitSpec returns the alternatives of a format spec in preference order.
func SplitSpec(spec string) []string {
	parts := strings.Split(spec, SpecSeparator)
	alternatives := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			alternatives = append(alternatives, p)
		}
	}
	return alternatives
}
