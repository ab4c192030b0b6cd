package download

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/ytget/yt-merger/internal/formats"
	"github.com/ytget/yt-merger/internal/logger"
	"github.com/ytget/yt-merger/internal/model"
)

// Backend names accepted by NewBackend
const (
	BackendYtdlp  = "yt-dlp"
	BackendNative = "native"
)

// DefaultProgressInterval is how often yt-dlp progress is reported
const DefaultProgressInterval = 500 * time.Millisecond

// Service lists and fetches formats through the yt-dlp executable
type Service struct {
	executable     string // empty means let go-ytdlp resolve it
	ffmpegLocation string
	interval       time.Duration
	onProgress     func(model.Progress)
	log            *slog.Logger
}

// NewService creates a yt-dlp backed service. executable may be empty.
func NewService(executable, ffmpegLocation string, log *slog.Logger) *Service {
	return &Service{
		executable:     executable,
		ffmpegLocation: ffmpegLocation,
		interval:       DefaultProgressInterval,
		log:            logger.For(log, logger.ComponentDownload).With("backend", BackendYtdlp),
	}
}

// Name returns the backend identifier
func (s *Service) Name() string {
	return BackendYtdlp
}

// SetProgressCallback sets the callback function for fetch progress
func (s *Service) SetProgressCallback(callback func(model.Progress)) {
	s.onProgress = callback
}

// ListFormats runs yt-dlp in quiet single-JSON mode and decodes the formats
func (s *Service) ListFormats(ctx context.Context, url string) (model.Listing, error) {
	cmd := s.command().
		Quiet().
		NoPlaylist().
		SkipDownload().
		DumpSingleJSON()

	s.log.Debug("listing formats", "url", url)
	result, err := cmd.Run(ctx, url)
	if err != nil {
		return nil, s.wrap(OpList, url, "", result, err)
	}

	listing, err := ParseListing([]byte(result.Stdout))
	if err != nil {
		return nil, &Error{Op: OpList, Backend: BackendYtdlp, URL: url, Err: err}
	}
	s.log.Debug("formats listed", "url", url, "count", len(listing))
	return listing, nil
}

// Fetch downloads formatSpec to outputPath, overwriting any existing file
func (s *Service) Fetch(ctx context.Context, url, formatSpec, outputPath string) error {
	cmd := s.command().
		NoPlaylist().
		ForceOverwrites().
		Format(formatSpec).
		Output(outputPath)

	if s.ffmpegLocation != "" {
		cmd = cmd.FFmpegLocation(s.ffmpegLocation)
	}

	if s.onProgress != nil {
		stage := stageFor(formatSpec)
		cmd.ProgressFunc(s.interval, func(update ytdlp.ProgressUpdate) {
			s.onProgress(progressFromUpdate(stage, &update))
		})
	}

	s.log.Info("fetching", "url", url, "format", formatSpec, "output", outputPath)
	result, err := cmd.Run(ctx, url)
	if err != nil {
		return s.wrap(OpFetch, url, formatSpec, result, err)
	}
	return nil
}

// command returns a fresh yt-dlp command bound to the configured executable
func (s *Service) command() *ytdlp.Command {
	cmd := ytdlp.New().NoWarnings()
	if s.executable != "" {
		cmd = cmd.SetExecutable(s.executable)
	}
	return cmd
}

// wrap converts a go-ytdlp failure into an Error carrying the stderr tail
func (s *Service) wrap(op, url, spec string, result *ytdlp.Result, err error) error {
	if result != nil {
		if line := lastLine(result.Stderr); line != "" {
			err = fmt.Errorf("%w: %s", err, line)
		}
	}
	return &Error{Op: op, Backend: BackendYtdlp, URL: url, Spec: spec, Err: err}
}

// progressFromUpdate maps a yt-dlp progress update to a model snapshot
func progressFromUpdate(stage model.RunState, update *ytdlp.ProgressUpdate) model.Progress {
	p := model.Progress{
		Stage:           stage,
		DownloadedBytes: int64(update.DownloadedBytes),
		TotalBytes:      int64(update.TotalBytes),
		Percent:         -1,
		ETASec:          -1,
	}
	if p.TotalBytes > 0 {
		p.Percent = int(float64(p.DownloadedBytes) / float64(p.TotalBytes) * 100)
	}
	if eta := update.ETA(); eta > 0 {
		p.ETASec = int(eta.Seconds())
	}
	return p
}

// stageFor guesses which fetch a spec belongs to, for progress labelling
func stageFor(formatSpec string) model.RunState {
	if formatSpec == formats.AudioSpec {
		return model.RunStateDownloadingAudio
	}
	return model.RunStateDownloadingVideo
}

// ytdlpInfo is the subset of yt-dlp's -J output used here
type ytdlpInfo struct {
	ID      string        `json:"id"`
	Title   string        `json:"title"`
	Formats []ytdlpFormat `json:"formats"`
}

// ytdlpFormat is a single entry of the formats array
type ytdlpFormat struct {
	FormatID       string   `json:"format_id"`
	Format         string   `json:"format"`
	Ext            string   `json:"ext"`
	Height         *float64 `json:"height"`
	TBR            *float64 `json:"tbr"`
	Filesize       *float64 `json:"filesize"`
	FilesizeApprox *float64 `json:"filesize_approx"`
}

// ParseListing decodes yt-dlp single-JSON output into a listing.
// Heights that are null or absent stay nil; those are audio-only streams.
func ParseListing(data []byte) (model.Listing, error) {
	var info ytdlpInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parse yt-dlp output: %w", err)
	}

	listing := make(model.Listing, 0, len(info.Formats))
	for _, f := range info.Formats {
		if f.FormatID == "" {
			continue
		}
		format := model.Format{
			ID:      f.FormatID,
			Label:   f.Format,
			Ext:     f.Ext,
			Bitrate: f.TBR,
		}
		if format.Label == "" {
			format.Label = f.FormatID
		}
		if f.Height != nil {
			format.Height = model.IntPtr(int(*f.Height))
		}
		switch {
		case f.Filesize != nil:
			format.Filesize = int64(*f.Filesize)
		case f.FilesizeApprox != nil:
			format.Filesize = int64(*f.FilesizeApprox)
		}
		listing = append(listing, format)
	}
	return listing, nil
}

// EnsureExecutable returns a usable yt-dlp path. When path is empty and
// install is set, yt-dlp is downloaded into go-ytdlp's cache.
func EnsureExecutable(ctx context.Context, path string, install bool, log *slog.Logger) (string, error) {
	if path != "" {
		return path, nil
	}
	if !install {
		return "", ErrYtdlpNotInstalled
	}

	resolved, err := ytdlp.Install(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrYtdlpNotInstalled, err)
	}
	if log != nil {
		log.Info("yt-dlp installed", "executable", resolved.Executable, "version", resolved.Version)
	}
	return resolved.Executable, nil
}

// NewBackend creates the backend registered under name
func NewBackend(name, ytdlpPath, ffmpegLocation string, log *slog.Logger) (Backend, error) {
	switch name {
	case "", BackendYtdlp:
		return NewService(ytdlpPath, ffmpegLocation, log), nil
	case BackendNative:
		return NewNativeService(nil, log), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, name)
	}
}
