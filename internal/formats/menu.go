package formats

import (
	"fmt"
	"io"

	"github.com/ytget/yt-merger/internal/model"
)

// RenderMenu writes one 1-based line per format. Missing attributes are
// printed as "N/A" rather than omitted; known sizes are appended.
func RenderMenu(w io.Writer, listing model.Listing) error {
	for i, f := range listing {
		line := fmt.Sprintf("%d. %s", i+1, f.String())
		if f.Filesize > 0 {
			line += " (" + f.SizeString() + ")"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
