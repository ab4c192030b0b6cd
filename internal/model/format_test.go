package model

import (
	"reflect"
	"testing"
)

func TestFormat_String(t *testing.T) {
	tests := []struct {
		format   Format
		expected string
	}{
		{
			Format{ID: "137", Label: "137 - 1920x1080 (1080p)", Height: IntPtr(1080), Bitrate: FloatPtr(500)},
			"137: 137 - 1920x1080 (1080p) - 1080p - 500 kbps",
		},
		{
			Format{ID: "140", Label: "140 - audio only", Bitrate: FloatPtr(129.5)},
			"140: 140 - audio only - N/Ap - 129.5 kbps",
		},
		{
			Format{ID: "18", Label: "360p"},
			"18: 360p - N/Ap - N/A kbps",
		},
	}

	for _, test := range tests {
		result := test.format.String()
		if result != test.expected {
			t.Errorf("Format.String() = %q, expected %q", result, test.expected)
		}
	}
}

func TestFormat_IsVideo(t *testing.T) {
	if !(Format{ID: "137", Height: IntPtr(1080)}).IsVideo() {
		t.Error("Expected format with height to be video")
	}
	if (Format{ID: "140"}).IsVideo() {
		t.Error("Expected format without height not to be video")
	}
	if !(Format{ID: "0", Height: IntPtr(0)}).IsVideo() {
		t.Error("Expected zero height to still count as present")
	}
}

func TestFormat_SizeString(t *testing.T) {
	if got := (Format{}).SizeString(); got != NotAvailable {
		t.Errorf("SizeString() = %s, expected %s", got, NotAvailable)
	}
	if got := (Format{Filesize: 2_000_000}).SizeString(); got != "2.0 MB" {
		t.Errorf("SizeString() = %s, expected 2.0 MB", got)
	}
}

func TestListing_IDs(t *testing.T) {
	listing := Listing{{ID: "137"}, {ID: "22"}, {ID: "140"}}
	expected := []string{"137", "22", "140"}

	if ids := listing.IDs(); !reflect.DeepEqual(ids, expected) {
		t.Errorf("IDs() = %v, expected %v", ids, expected)
	}
}
