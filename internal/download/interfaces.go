package download

import (
	"context"

	"github.com/ytget/yt-merger/internal/model"
)

// Lister lists the formats available for a URL.
type Lister interface {
	ListFormats(ctx context.Context, url string) (model.Listing, error)
}

// Fetcher downloads the stream matching formatSpec to outputPath.
// formatSpec is either "<id>/best" or a generic spec such as "bestaudio/best".
type Fetcher interface {
	Fetch(ctx context.Context, url, formatSpec, outputPath string) error
}

// Backend is a collaborator that can both list and fetch.
type Backend interface {
	Lister
	Fetcher

	// SetProgressCallback registers a callback for fetch progress updates
	SetProgressCallback(func(model.Progress))

	// Name returns the backend identifier used in configuration
	Name() string
}
