package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/ytget/yt-merger/internal/config"
	"github.com/ytget/yt-merger/internal/download"
	"github.com/ytget/yt-merger/internal/logger"
	"github.com/ytget/yt-merger/internal/merge"
	"github.com/ytget/yt-merger/internal/metrics"
	"github.com/ytget/yt-merger/internal/model"
	"github.com/ytget/yt-merger/internal/pipeline"
	"github.com/ytget/yt-merger/internal/platform"
	"github.com/ytget/yt-merger/internal/shell"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

// Exit codes
const (
	exitOK     = 0
	exitFatal  = 1
	exitConfig = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	settings, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(os.Stderr, "yt-merger: %v\n", err)
		return exitConfig
	}

	base := logger.New(settings.LogLevel, settings.LogFormat, os.Stderr)
	log := logger.For(base, logger.ComponentApp)

	// The first signal cancels running tools; stop() restores the default
	// handler so a second one terminates a process blocked on input.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	context.AfterFunc(ctx, stop)

	ffmpegPath, err := settings.FFmpeg.Resolve()
	if err != nil {
		log.Error("ffmpeg is required; set -ffmpeg or "+config.EnvFFmpeg, "error", err)
		return exitFatal
	}

	ffprobePath, err := settings.FFprobe.Resolve()
	if err != nil {
		log.Info("ffprobe not found, merge progress disabled", "error", err)
		ffprobePath = ""
	}

	backend, err := newBackend(ctx, settings, ffmpegPath, base)
	if err != nil {
		log.Error("download backend unavailable", "backend", settings.Backend, "error", err)
		return exitFatal
	}

	merger := merge.NewService(ffmpegPath, ffprobePath, settings.AudioCodec, base)

	var m *metrics.Metrics
	if settings.MetricsFile != "" {
		m = metrics.New()
	}

	orchestrator := pipeline.NewOrchestrator(backend, backend, merger, base)
	orchestrator.SetKeepSources(settings.KeepSources)
	orchestrator.SetMetrics(m)

	loc := shell.NewLocalization()
	loc.SetLanguage(settings.Language)

	sh := shell.New(os.Stdin, colorable.NewColorableStdout(), orchestrator, settings.OutputDir, loc, base)
	sh.SetColor(isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()))

	orchestrator.SetStateCallback(sh.OnStateChange)
	backend.SetProgressCallback(sh.OnProgress)
	merger.SetProgressCallback(sh.OnProgress)
	sh.SetAfterRunCallback(afterRun(settings, m, log))

	log.Info("yt-merger starting",
		"version", version,
		"backend", backend.Name(),
		"ffmpeg", ffmpegPath,
		"ffprobe", ffprobePath,
		"output_dir", settings.OutputDir,
	)

	if err := sh.Loop(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info("interrupted")
			return exitOK
		}
		log.Error("shell stopped", "error", err)
		return exitFatal
	}
	return exitOK
}

// newBackend resolves yt-dlp when the backend needs it and builds the backend
func newBackend(ctx context.Context, settings *config.Settings, ffmpegPath string, log *slog.Logger) (download.Backend, error) {
	var ytdlpPath string
	if settings.Backend == config.BackendYtdlp {
		path, err := settings.Ytdlp.Resolve()
		if err != nil {
			// Falls back to go-ytdlp's managed install when allowed
			path, err = download.EnsureExecutable(ctx, "", settings.InstallYtdlp, log)
			if err != nil {
				return nil, err
			}
		}
		ytdlpPath = path
	}
	return download.NewBackend(settings.Backend, ytdlpPath, ffmpegPath, log)
}

// afterRun writes metrics and reveals the merged file after each run
func afterRun(settings *config.Settings, m *metrics.Metrics, log *slog.Logger) func(*model.PipelineRun, error) {
	return func(run *model.PipelineRun, runErr error) {
		if err := m.WriteToTextfile(settings.MetricsFile); err != nil {
			log.Warn("failed to write metrics", "path", settings.MetricsFile, "error", err)
		}
		if runErr != nil || !settings.Reveal {
			return
		}
		if err := platform.OpenFileInManager(run.OutputPath); err != nil {
			log.Warn("failed to reveal output", "path", run.OutputPath, "error", err)
		}
	}
}
