package merge

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/alessio/shellescape"

	"github.com/ytget/yt-merger/internal/logger"
	"github.com/ytget/yt-merger/internal/model"
)

// FFmpeg constants for merge settings
const (
	// Video stream is copied as is
	VideoCodecCopy = "copy"

	// Audio codec used when none is configured
	DefaultAudioCodec = "aac"

	// Allows experimental encoders on older ffmpeg builds
	StrictLevel = "experimental"

	// Executable and I/O constants
	FFmpegCommand       = "ffmpeg"
	FFprobeCommand      = "ffprobe"
	FFprobeLogLevel     = "error"
	FFprobeShowEntries  = "format=duration"
	FFprobeOutputFormat = "csv=p=0"
	ProgressPipeTarget  = "pipe:2"
	ProgressTimePrefix  = "out_time_us="

	// Number of non-progress stderr lines kept for error reports
	stderrTailLines = 8

	// Longest stderr line the progress parser accepts
	maxStderrLine = 1024 * 1024
)

// execCommand allows swapping the process launcher in tests
var execCommand = exec.CommandContext

// ErrFFmpegNotFound indicates the ffmpeg executable could not be started
var ErrFFmpegNotFound = errors.New("ffmpeg not found")

// Error describes a failed ffmpeg run
type Error struct {
	ExitCode int    // -1 if the process did not exit normally
	Stderr   string // last diagnostic lines written by ffmpeg
	Err      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("ffmpeg merge failed (exit %d): %v", e.ExitCode, e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Service handles merge operations
type Service struct {
	ffmpegPath  string
	ffprobePath string // empty disables progress percentages
	audioCodec  string
	onProgress  func(model.Progress) // callback for progress updates
	log         *slog.Logger
}

// NewService creates a new merge service. ffmpegPath must be resolved by the
// caller; ffprobePath is optional.
func NewService(ffmpegPath, ffprobePath, audioCodec string, log *slog.Logger) *Service {
	if ffmpegPath == "" {
		ffmpegPath = FFmpegCommand
	}
	if audioCodec == "" {
		audioCodec = DefaultAudioCodec
	}
	return &Service{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		audioCodec:  audioCodec,
		log:         logger.For(log, logger.ComponentMerge),
	}
}

// SetProgressCallback sets the callback function for merge progress
func (s *Service) SetProgressCallback(callback func(model.Progress)) {
	s.onProgress = callback
}

// BuildFFmpegArgs builds the ffmpeg command arguments
func (s *Service) BuildFFmpegArgs(videoPath, audioPath, outputPath string) []string {
	return []string{
		"-y",            // Overwrite output file
		"-i", videoPath, // Video input
		"-i", audioPath, // Audio input
		"-c:v", VideoCodecCopy, // Keep video as is
		"-c:a", s.audioCodec, // Re-encode audio
		"-strict", StrictLevel,
		"-progress", ProgressPipeTarget, // Progress to stderr
		"-nostats",
		outputPath,
	}
}

// Merge runs ffmpeg and waits for it. Partial output is removed on failure;
// the inputs are left alone either way.
func (s *Service) Merge(ctx context.Context, videoPath, audioPath, outputPath string) error {
	for _, input := range []string{videoPath, audioPath} {
		if _, err := os.Stat(input); err != nil {
			return &Error{ExitCode: -1, Err: fmt.Errorf("input file does not exist: %s", input)}
		}
	}

	// Duration is only needed for percentages
	var duration float64
	if s.ffprobePath != "" && s.onProgress != nil {
		d, err := s.getVideoDuration(ctx, videoPath)
		if err != nil {
			s.log.Debug("duration unavailable", "path", videoPath, "error", err)
		}
		duration = d
	}

	args := s.BuildFFmpegArgs(videoPath, audioPath, outputPath)
	s.log.Debug("running ffmpeg", "command", shellescape.QuoteCommand(append([]string{s.ffmpegPath}, args...)))

	cmd := execCommand(ctx, s.ffmpegPath, args...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return &Error{ExitCode: -1, Err: fmt.Errorf("failed to create stderr pipe: %w", err)}
	}

	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			err = fmt.Errorf("%w: %s: %v", ErrFFmpegNotFound, s.ffmpegPath, err)
		}
		return &Error{ExitCode: -1, Err: err}
	}

	tail := s.monitorProgress(stderr, duration)

	if err := cmd.Wait(); err != nil {
		if rmErr := os.Remove(outputPath); rmErr != nil && !os.IsNotExist(rmErr) {
			s.log.Debug("failed to remove partial output", "path", outputPath, "error", rmErr)
		}
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return &Error{ExitCode: exitCode, Stderr: strings.Join(tail, "\n"), Err: err}
	}

	s.notifyProgress(model.Progress{Stage: model.RunStateMerging, Percent: 100, ETASec: -1})
	return nil
}

// getVideoDuration gets the duration of a media file using ffprobe
func (s *Service) getVideoDuration(ctx context.Context, filePath string) (float64, error) {
	cmd := execCommand(ctx, s.ffprobePath, "-v", FFprobeLogLevel, "-show_entries", FFprobeShowEntries, "-of", FFprobeOutputFormat, filePath)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("failed to run ffprobe: %w", err)
	}

	durationStr := strings.TrimSpace(string(output))
	duration, err := strconv.ParseFloat(durationStr, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}

	return duration, nil
}

// monitorProgress consumes ffmpeg stderr until EOF. It reports progress
// lines and returns the last diagnostic lines for error reporting.
func (s *Service) monitorProgress(stderr io.Reader, totalDuration float64) []string {
	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStderrLine)
	var tail []string

	// ffmpeg blocks on a full pipe, so whatever the scanner leaves is drained
	defer func() {
		if _, err := io.Copy(io.Discard, stderr); err != nil {
			s.log.Debug("failed to drain ffmpeg stderr", "error", err)
		}
	}()

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		// Parse progress line: out_time_us=123456
		if strings.HasPrefix(line, ProgressTimePrefix) {
			timeStr := strings.TrimPrefix(line, ProgressTimePrefix)
			timeMicroseconds, err := strconv.ParseInt(timeStr, 10, 64)
			if err != nil || totalDuration <= 0 {
				continue
			}

			progress := float64(timeMicroseconds) / 1000000.0 / totalDuration
			if progress > 1.0 {
				progress = 1.0
			}
			s.notifyProgress(model.Progress{Stage: model.RunStateMerging, Percent: int(progress * 100), ETASec: -1})
			continue
		}

		// Other -progress keys are noise
		if isProgressKey(line) {
			continue
		}

		tail = append(tail, line)
		if len(tail) > stderrTailLines {
			tail = tail[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		s.log.Debug("stopped parsing ffmpeg stderr", "error", err)
	}

	return tail
}

// notifyProgress calls the progress callback if set
func (s *Service) notifyProgress(p model.Progress) {
	if s.onProgress != nil {
		s.onProgress(p)
	}
}

// isProgressKey reports whether line is a key=value line of -progress output
func isProgressKey(line string) bool {
	key, _, ok := strings.Cut(line, "=")
	if !ok || key == "" || strings.ContainsAny(key, " :") {
		return false
	}
	return true
}
