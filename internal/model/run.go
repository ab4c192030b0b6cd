package model

import (
	"fmt"
	"strings"
	"time"
)

// PipelineRun represents one fetch-video, fetch-audio, merge attempt for a URL
type PipelineRun struct {
	ID         string
	URL        string
	OutputDir  string // directory receiving the final files
	StagingDir string // per-run working directory inside OutputDir
	VideoPath  string // final path of the video stream
	AudioPath  string // final path of the audio stream
	OutputPath string // final path of the merged file
	FormatSpec string // format spec used for the video fetch
	State      RunState
	LastError  string // last error message if any
	StartedAt  time.Time
	FinishedAt time.Time
}

// Progress is a snapshot of a running download or merge
type Progress struct {
	Stage           RunState
	DownloadedBytes int64
	TotalBytes      int64
	Percent         int // 0 to 100, -1 if unknown
	ETASec          int // ETA in seconds, -1 if unknown
}

// Succeeded returns true if the run reached Done
func (r *PipelineRun) Succeeded() bool {
	return r.State == RunStateDone
}

// Duration returns how long the run took, or has taken so far
func (r *PipelineRun) Duration() time.Duration {
	if r.StartedAt.IsZero() {
		return 0
	}
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// GetETAString returns ETA formatted as hh:mm:ss, or "—" if unknown
func (p Progress) GetETAString() string {
	if p.ETASec <= 0 {
		return "—"
	}

	hours := p.ETASec / 3600
	minutes := (p.ETASec % 3600) / 60
	seconds := p.ETASec % 60

	var b strings.Builder
	if hours > 0 {
		b.WriteString(fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds))
		return b.String()
	}
	b.WriteString(fmt.Sprintf("%02d:%02d", minutes, seconds))
	return b.String()
}
