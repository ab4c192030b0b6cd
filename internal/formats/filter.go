package formats

import (
	"github.com/ytget/yt-merger/internal/model"
)

// FilterVideo returns the formats that carry a vertical resolution, in
// listing order. An empty result is valid and means nothing can be offered.
func FilterVideo(listing model.Listing) model.Listing {
	video := make(model.Listing, 0, len(listing))
	for _, f := range listing {
		if f.IsVideo() {
			video = append(video, f)
		}
	}
	return video
}
