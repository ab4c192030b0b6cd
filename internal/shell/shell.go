package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/ytget/yt-merger/internal/formats"
	"github.com/ytget/yt-merger/internal/logger"
	"github.com/ytget/yt-merger/internal/model"
	"github.com/ytget/yt-merger/internal/pipeline"
)

// Main menu entries
const (
	MenuRun  = "1"
	MenuExit = "2"
)

// ANSI escapes, only written when color is enabled
const (
	colorRed   = "\x1b[31m"
	colorGreen = "\x1b[32m"
	colorReset = "\x1b[0m"
	clearLine  = "\r\x1b[K"
)

// Runner runs the pipeline for one URL
type Runner interface {
	Run(ctx context.Context, url, outputDir string, chooser pipeline.Chooser) (*model.PipelineRun, error)
}

// Shell is the interactive menu loop on top of a Runner
type Shell struct {
	in        *bufio.Scanner
	out       io.Writer
	runner    Runner
	outputDir string
	loc       *Localization
	color     bool
	afterRun  func(*model.PipelineRun, error)
	log       *slog.Logger

	mu             sync.Mutex // guards out while progress arrives from other goroutines
	progressActive bool
}

// New creates a shell reading operator input from in and writing to out
func New(in io.Reader, out io.Writer, runner Runner, outputDir string, loc *Localization, log *slog.Logger) *Shell {
	if loc == nil {
		loc = NewLocalization()
	}
	return &Shell{
		in:        bufio.NewScanner(in),
		out:       out,
		runner:    runner,
		outputDir: outputDir,
		loc:       loc,
		log:       logger.For(log, logger.ComponentShell),
	}
}

// SetColor enables ANSI colors for results
func (s *Shell) SetColor(enabled bool) {
	s.color = enabled
}

// SetAfterRunCallback sets the function called after every pipeline run
func (s *Shell) SetAfterRunCallback(callback func(*model.PipelineRun, error)) {
	s.afterRun = callback
}

// Loop shows the main menu until the operator exits, input ends or ctx is
// cancelled. Only a cancelled context is reported as an error.
func (s *Shell) Loop(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.println("")
		s.println(s.text(KeyMenuTitle))
		s.println(s.text(KeyMenuRun))
		s.println(s.text(KeyMenuExit))

		choice, ok := s.prompt(KeyMenuPrompt)
		if !ok {
			s.println("")
			return nil
		}

		switch strings.TrimSpace(choice) {
		case MenuRun:
			url, ok := s.prompt(KeyURLPrompt)
			if !ok {
				s.println("")
				return nil
			}
			url = strings.TrimSpace(url)
			if url == "" {
				s.println(s.text(KeyURLEmpty))
				continue
			}
			s.printf(s.text(KeyURLReceived)+"\n", url)
			s.runOnce(ctx, url)
		case MenuExit:
			s.println(s.text(KeyExiting))
			return nil
		default:
			s.println(s.text(KeyInvalidMenuChoice))
		}
	}
}

// runOnce runs the pipeline and reports the outcome
func (s *Shell) runOnce(ctx context.Context, url string) {
	run, err := s.runner.Run(ctx, url, s.outputDir, s)
	s.endProgress()

	if err != nil {
		s.ReportError(run, err)
	} else {
		s.success(s.text(KeyMergeCompleted))
		s.printf(s.text(KeySavedTo)+"\n", run.OutputPath)
	}

	if s.afterRun != nil {
		s.afterRun(run, err)
	}
}

// Choose renders the format menu and reads the operator's number.
// ok is false for blank, non-numeric or missing input.
func (s *Shell) Choose(ctx context.Context, listing model.Listing) (int, bool) {
	s.endProgress()
	s.println(s.text(KeyFormatsHeader))
	s.mu.Lock()
	err := formats.RenderMenu(s.out, listing)
	s.mu.Unlock()
	if err != nil {
		s.log.Warn("failed to render format menu", "error", err)
	}

	line, ok := s.prompt(KeyFormatPrompt)
	if !ok {
		s.println("")
		s.println(s.text(KeyInvalidFormat))
		return 0, false
	}

	choice, err := formats.ParseChoice(line)
	if err != nil {
		s.log.Debug("unparsable format choice", "input", line, "error", err)
		s.println(s.text(KeyInvalidFormat))
		return 0, false
	}
	if _, valid := formats.Select(listing, choice); !valid {
		s.println(s.text(KeyInvalidFormat))
	}
	return choice, true
}

// OnStateChange announces the long-running steps of a run
func (s *Shell) OnStateChange(run *model.PipelineRun) {
	switch run.State {
	case model.RunStateDownloadingVideo:
		s.endProgress()
		s.printf(s.text(KeyDownloadingVideo)+"\n", run.URL)
	case model.RunStateDownloadingAudio:
		s.endProgress()
		s.printf(s.text(KeyDownloadingAudio)+"\n", run.URL)
	case model.RunStateMerging:
		s.endProgress()
		s.printf(s.text(KeyMerging)+"\n", run.OutputPath)
	}
}

// OnProgress redraws a single status line. Safe for concurrent use.
func (s *Shell) OnProgress(p model.Progress) {
	line := s.formatProgress(p)
	if line == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.color {
		fmt.Fprint(s.out, clearLine+line)
	} else {
		fmt.Fprint(s.out, "\r"+line)
	}
	s.progressActive = true
}

// formatProgress renders "video  42%  12 MB / 30 MB  ETA 00:12"
func (s *Shell) formatProgress(p model.Progress) string {
	var stage string
	switch p.Stage {
	case model.RunStateDownloadingVideo:
		stage = s.text(KeyStageVideo)
	case model.RunStateDownloadingAudio:
		stage = s.text(KeyStageAudio)
	case model.RunStateMerging:
		stage = s.text(KeyStageMerge)
	default:
		return ""
	}

	parts := []string{stage}
	if p.Percent >= 0 {
		parts = append(parts, fmt.Sprintf("%3d%%", p.Percent))
	}
	if p.TotalBytes > 0 {
		parts = append(parts, humanize.Bytes(uint64(p.DownloadedBytes))+" / "+humanize.Bytes(uint64(p.TotalBytes)))
	} else if p.DownloadedBytes > 0 {
		parts = append(parts, humanize.Bytes(uint64(p.DownloadedBytes)))
	}
	if p.ETASec > 0 {
		parts = append(parts, "ETA "+p.GetETAString())
	}
	return strings.Join(parts, "  ")
}

// ReportError prints a human message for a failed run
func (s *Shell) ReportError(run *model.PipelineRun, err error) {
	var stepErr *pipeline.StepError
	switch {
	case errors.Is(err, pipeline.ErrNoFormats):
		s.failure(s.text(KeyNoFormats))
	case errors.Is(err, pipeline.ErrNoVideoFormats):
		s.failure(s.text(KeyNoVideoFormats))
	case errors.As(err, &stepErr):
		switch stepErr.State {
		case model.RunStateListing:
			s.failure(fmt.Sprintf(s.text(KeyListError), stepErr.Err))
		case model.RunStateDownloadingVideo:
			s.failure(fmt.Sprintf(s.text(KeyVideoError), stepErr.Err))
		case model.RunStateDownloadingAudio:
			s.failure(fmt.Sprintf(s.text(KeyAudioError), stepErr.Err))
		case model.RunStateMerging:
			s.failure(fmt.Sprintf(s.text(KeyMergeError), stepErr.Err))
			if run != nil && run.StagingDir != "" {
				s.printf(s.text(KeySourcesKept)+"\n", run.StagingDir)
			}
		default:
			s.failure(fmt.Sprintf(s.text(KeyError), stepErr.Err))
		}
	default:
		s.failure(fmt.Sprintf(s.text(KeyError), err))
	}
}

// prompt writes the localized prompt and reads one line
func (s *Shell) prompt(key string) (string, bool) {
	s.print(s.text(key))
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			s.log.Warn("failed to read input", "error", err)
		}
		return "", false
	}
	return s.in.Text(), true
}

// endProgress terminates an active progress line
func (s *Shell) endProgress() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.progressActive {
		fmt.Fprintln(s.out)
		s.progressActive = false
	}
}

func (s *Shell) text(key string) string {
	return s.loc.GetText(key)
}

func (s *Shell) success(msg string) {
	s.colored(colorGreen, msg)
}

func (s *Shell) failure(msg string) {
	s.colored(colorRed, msg)
}

func (s *Shell) colored(color, msg string) {
	if s.color {
		msg = color + msg + colorReset
	}
	s.println(msg)
}

func (s *Shell) print(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprint(s.out, msg)
}

func (s *Shell) println(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.out, msg)
}

func (s *Shell) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}
