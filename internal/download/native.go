package download

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/ytget/ytdlp/v2"

	"github.com/ytget/yt-merger/internal/formats"
	"github.com/ytget/yt-merger/internal/logger"
	"github.com/ytget/yt-merger/internal/model"
)

// Selectors understood by the native extractor
const (
	nativeItagPrefix = "itag="
	nativeBest       = "best"
	nativeBestAudio  = "bestaudio"
	nativeBestVideo  = "bestvideo"
	audioMimePrefix  = "audio/"
)

var qualityHeightRe = regexp.MustCompile(`([0-9]{3,4})p`)

// NativeService lists and fetches formats with the pure-Go YouTube extractor.
// It only understands YouTube URLs.
type NativeService struct {
	httpClient *http.Client
	onProgress func(model.Progress)
	log        *slog.Logger
}

// NewNativeService creates a native backend. httpClient may be nil.
func NewNativeService(httpClient *http.Client, log *slog.Logger) *NativeService {
	return &NativeService{
		httpClient: httpClient,
		log:        logger.For(log, logger.ComponentDownload).With("backend", BackendNative),
	}
}

// Name returns the backend identifier
func (n *NativeService) Name() string {
	return BackendNative
}

// SetProgressCallback sets the callback function for fetch progress
func (n *NativeService) SetProgressCallback(callback func(model.Progress)) {
	n.onProgress = callback
}

// ListFormats resolves the video metadata and maps every format
func (n *NativeService) ListFormats(ctx context.Context, url string) (model.Listing, error) {
	n.log.Debug("listing formats", "url", url)
	_, info, err := n.downloader().ResolveURL(ctx, url)
	if err != nil {
		return nil, &Error{Op: OpList, Backend: BackendNative, URL: url, Err: err}
	}

	listing := make(model.Listing, 0, len(info.Formats))
	for _, f := range info.Formats {
		listing = append(listing, nativeFormat(f))
	}
	n.log.Debug("formats listed", "url", url, "count", len(listing))
	return listing, nil
}

// Fetch translates formatSpec into a native selector and downloads it
func (n *NativeService) Fetch(ctx context.Context, url, formatSpec, outputPath string) error {
	listing, err := n.ListFormats(ctx, url)
	if err != nil {
		return err
	}

	selector, err := nativeSelector(listing, formatSpec)
	if err != nil {
		return &Error{Op: OpFetch, Backend: BackendNative, URL: url, Spec: formatSpec, Err: err}
	}

	d := n.downloader().WithFormat(selector, "").WithOutputPath(outputPath)
	if n.onProgress != nil {
		stage := stageFor(formatSpec)
		d = d.WithProgress(func(p ytdlp.Progress) {
			n.onProgress(model.Progress{
				Stage:           stage,
				DownloadedBytes: p.DownloadedSize,
				TotalBytes:      p.TotalSize,
				Percent:         int(p.Percent),
				ETASec:          -1,
			})
		})
	}

	n.log.Info("fetching", "url", url, "format", formatSpec, "selector", selector, "output", outputPath)
	if _, err := d.Download(ctx, url); err != nil {
		return &Error{Op: OpFetch, Backend: BackendNative, URL: url, Spec: formatSpec, Err: err}
	}
	return nil
}

func (n *NativeService) downloader() *ytdlp.Downloader {
	d := ytdlp.New()
	if n.httpClient != nil {
		d = d.WithHTTPClient(n.httpClient)
	}
	return d
}

// nativeFormat maps an extractor format to a model format. The extractor
// has no explicit height, so it is read from the quality label ("1080p60").
func nativeFormat(f ytdlp.Format) model.Format {
	format := model.Format{
		ID:       strconv.Itoa(f.Itag),
		Label:    strings.TrimSpace(f.Quality + " " + f.MimeType),
		Ext:      mimeSubtype(f.MimeType),
		MimeType: f.MimeType,
		Filesize: f.Size,
	}
	if format.Label == "" {
		format.Label = format.ID
	}
	if !isAudioMime(f.MimeType) {
		if m := qualityHeightRe.FindStringSubmatch(f.Quality); len(m) == 2 {
			if h, err := strconv.Atoi(m[1]); err == nil {
				format.Height = model.IntPtr(h)
			}
		}
	}
	if f.Bitrate > 0 {
		format.Bitrate = model.FloatPtr(float64(f.Bitrate) / 1000)
	}
	return format
}

// nativeSelector picks the first alternative of formatSpec that the
// listing can satisfy and returns it in the extractor's selector syntax.
func nativeSelector(listing model.Listing, formatSpec string) (string, error) {
	for _, alt := range formats.SplitSpec(formatSpec) {
		switch alt {
		case nativeBest:
			if len(listing) > 0 {
				return nativeBest, nil
			}
		case nativeBestAudio:
			if id, ok := bestAudio(listing); ok {
				return nativeItagPrefix + id, nil
			}
		case nativeBestVideo:
			if id, ok := bestVideo(listing); ok {
				return nativeItagPrefix + id, nil
			}
		default:
			for _, f := range listing {
				if f.ID == alt {
					return nativeItagPrefix + alt, nil
				}
			}
		}
	}
	return "", fmt.Errorf("%w: %s", ErrFormatUnavailable, formatSpec)
}

// bestAudio returns the audio-only format with the highest bitrate.
// A missing height is not enough: video formats without a quality label
// have none either.
func bestAudio(listing model.Listing) (string, bool) {
	var best *model.Format
	for i := range listing {
		f := &listing[i]
		if !isAudioMime(f.MimeType) {
			continue
		}
		if best == nil || bitrateOf(*f) > bitrateOf(*best) {
			best = f
		}
	}
	if best == nil {
		return "", false
	}
	return best.ID, true
}

// bestVideo returns the video format with the greatest height, then bitrate
func bestVideo(listing model.Listing) (string, bool) {
	var best *model.Format
	for i := range listing {
		f := &listing[i]
		if !f.IsVideo() {
			continue
		}
		if best == nil || *f.Height > *best.Height ||
			(*f.Height == *best.Height && bitrateOf(*f) > bitrateOf(*best)) {
			best = f
		}
	}
	if best == nil {
		return "", false
	}
	return best.ID, true
}

func bitrateOf(f model.Format) float64 {
	if f.Bitrate == nil {
		return 0
	}
	return *f.Bitrate
}

func isAudioMime(mime string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mime)), audioMimePrefix)
}

// mimeSubtype returns "mp4" for `video/mp4; codecs="avc1"`
func mimeSubtype(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	if _, sub, ok := strings.Cut(mime, "/"); ok {
		return sub
	}
	return ""
}
