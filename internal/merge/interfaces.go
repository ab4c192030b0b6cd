package merge

import (
	"context"

	"github.com/ytget/yt-merger/internal/model"
)

// Merger combines a local video file and a local audio file into one output.
type Merger interface {
	Merge(ctx context.Context, videoPath, audioPath, outputPath string) error
	SetProgressCallback(func(model.Progress))
}
