package model

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
)

// NotAvailable is displayed in place of a missing format attribute
const NotAvailable = "N/A"

// Format describes one downloadable media stream as reported by the extractor
type Format struct {
	ID       string   // opaque identifier, unique within a listing
	Label    string   // human readable description from the extractor
	Height   *int     // vertical resolution, nil for audio-only streams
	Bitrate  *float64 // average bitrate in kbps, nil if unknown
	Ext      string   // container extension, may be empty
	MimeType string   // e.g. "audio/webm; codecs=opus", empty when the extractor has none
	Filesize int64    // size in bytes, 0 if unknown
}

// Listing is an ordered set of formats for one URL, in extractor order
type Listing []Format

// IsVideo returns true if the format carries a vertical resolution
func (f Format) IsVideo() bool {
	return f.Height != nil
}

// HeightString returns the resolution as a plain number or "N/A"
func (f Format) HeightString() string {
	if f.Height == nil {
		return NotAvailable
	}
	return strconv.Itoa(*f.Height)
}

// BitrateString returns the average bitrate or "N/A"
func (f Format) BitrateString() string {
	if f.Bitrate == nil {
		return NotAvailable
	}
	return strconv.FormatFloat(*f.Bitrate, 'f', -1, 64)
}

// SizeString returns a humanized file size or "N/A"
func (f Format) SizeString() string {
	if f.Filesize <= 0 {
		return NotAvailable
	}
	return humanize.Bytes(uint64(f.Filesize))
}

// String renders the format the way the selection menu shows it
func (f Format) String() string {
	return fmt.Sprintf("%s: %s - %sp - %s kbps", f.ID, f.Label, f.HeightString(), f.BitrateString())
}

// IDs returns the format identifiers in listing order
func (l Listing) IDs() []string {
	ids := make([]string, 0, len(l))
	for _, f := range l {
		ids = append(ids, f.ID)
	}
	return ids
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int {
	return &v
}

// FloatPtr returns a pointer to v
func FloatPtr(v float64) *float64 {
	return &v
}
