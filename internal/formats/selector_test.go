package formats

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ytget/yt-merger/internal/model"
)

func TestSelect_InRange(t *testing.T) {
	video := FilterVideo(sampleListing())

	for choice := 1; choice <= len(video); choice++ {
		id, ok := Select(video, choice)
		if !ok {
			t.Fatalf("Select(%d) reported no selection", choice)
		}
		if id != video[choice-1].ID {
			t.Errorf("Select(%d) = %s, expected %s", choice, id, video[choice-1].ID)
		}
	}
}

func TestSelect_OutOfRange(t *testing.T) {
	video := FilterVideo(sampleListing())

	for _, choice := range []int{-5, -1, 0, len(video) + 1, 9, 1 << 30} {
		id, ok := Select(video, choice)
		if ok || id != "" {
			t.Errorf("Select(%d) = (%q, %v), expected no selection", choice, id, ok)
		}
	}

	if _, ok := Select(nil, 1); ok {
		t.Error("Select on empty listing should report no selection")
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		input    string
		expected int
		wantErr  bool
	}{
		{"1", 1, false},
		{"  3 \n", 3, false},
		{"-2", -2, false},
		{"", 0, true},
		{"   ", 0, true},
		{"abc", 0, true},
		{"1.5", 0, true},
		{"1 2", 0, true},
	}

	for _, test := range tests {
		got, err := ParseChoice(test.input)
		if (err != nil) != test.wantErr {
			t.Errorf("ParseChoice(%q) error = %v, wantErr %v", test.input, err, test.wantErr)
			continue
		}
		if got != test.expected {
			t.Errorf("ParseChoice(%q) = %d, expected %d", test.input, got, test.expected)
		}
	}

	if _, err := ParseChoice(""); !errors.Is(err, ErrEmptyChoice) {
		t.Errorf("ParseChoice(\"\") error = %v, expected ErrEmptyChoice", err)
	}
}

func TestVideoSpec(t *testing.T) {
	if spec := VideoSpec("137", true); spec != "137/best" {
		t.Errorf("VideoSpec(137, true) = %s, expected 137/best", spec)
	}
	if spec := VideoSpec("", false); spec != "best" {
		t.Errorf("VideoSpec(\"\", false) = %s, expected best", spec)
	}
	if spec := VideoSpec("137", false); spec != "best" {
		t.Errorf("VideoSpec(137, false) = %s, expected best", spec)
	}
}

func TestSplitSpec(t *testing.T) {
	tests := []struct {
		spec     string
		expected []string
	}{
		{"137/best", []string{"137", "best"}},
		{AudioSpec, []string{"bestaudio", "best"}},
		{"best", []string{"best"}},
		{" 22 / / best ", []string{"22", "best"}},
	}

	for _, test := range tests {
		if got := SplitSpec(test.spec); !reflect.DeepEqual(got, test.expected) {
			t.Errorf("SplitSpec(%q) = %v, expected %v", test.spec, got, test.expected)
		}
	}
}

// Listing with one 1080p video and one audio-only stream; choosing entry 1
// yields the video id, choosing 9 falls back to the generic spec.
func TestScenario_SingleVideoFormat(t *testing.T) {
	listing := model.Listing{
		{ID: "137", Label: "1080p", Height: model.IntPtr(1080), Bitrate: model.FloatPtr(500)},
		{ID: "140", Label: "audio only", Bitrate: model.FloatPtr(128)},
	}

	video := FilterVideo(listing)
	if len(video) != 1 || video[0].ID != "137" {
		t.Fatalf("FilterVideo() = %v, expected [137]", video.IDs())
	}

	id, ok := Select(video, 1)
	if !ok || id != "137" {
		t.Errorf("Select(1) = (%q, %v), expected (137, true)", id, ok)
	}
	if spec := VideoSpec(id, ok); spec != "137/best" {
		t.Errorf("VideoSpec = %s, expected 137/best", spec)
	}

	id, ok = Select(video, 9)
	if ok {
		t.Errorf("Select(9) = %q, expected no selection", id)
	}
	if spec := VideoSpec(id, ok); spec != FallbackSpec {
		t.Errorf("VideoSpec = %s, expected %s", spec, FallbackSpec)
	}
}
