package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ytget/yt-merger/internal/download"
	"github.com/ytget/yt-merger/internal/formats"
	"github.com/ytget/yt-merger/internal/logger"
	"github.com/ytget/yt-merger/internal/merge"
	"github.com/ytget/yt-merger/internal/metrics"
	"github.com/ytget/yt-merger/internal/model"
	"github.com/ytget/yt-merger/internal/platform"
)

// Fixed file names inside the staging and output directories
const (
	VideoFileName  = "video.mp4"
	AudioFileName  = "audio.mp4"
	OutputFileName = "output.mp4"
)

// RunIDPrefix prefixes every run identifier
const RunIDPrefix = "run-"

// previousPrefix names replaced outputs while they are parked in staging
const previousPrefix = "previous-"

// Stream labels used for fetch metrics
const (
	streamVideo = "video"
	streamAudio = "audio"
)

// Chooser presents the filtered listing to the operator and returns the
// 1-based choice. ok is false when the operator gave no usable number.
type Chooser interface {
	Choose(ctx context.Context, listing model.Listing) (choice int, ok bool)
}

// ChooserFunc adapts a function to the Chooser interface
type ChooserFunc func(ctx context.Context, listing model.Listing) (int, bool)

// Choose calls f
func (f ChooserFunc) Choose(ctx context.Context, listing model.Listing) (int, bool) {
	return f(ctx, listing)
}

// Orchestrator sequences the collaborators of one run
type Orchestrator struct {
	lister      download.Lister
	fetcher     download.Fetcher
	merger      merge.Merger
	keepSources bool
	metrics     *metrics.Metrics
	onState     func(*model.PipelineRun)
	newRunID    func() string
	log         *slog.Logger
}

// NewOrchestrator creates an orchestrator. Sources are kept next to the
// merged file by default.
func NewOrchestrator(lister download.Lister, fetcher download.Fetcher, merger merge.Merger, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		lister:      lister,
		fetcher:     fetcher,
		merger:      merger,
		keepSources: true,
		newRunID:    NewRunID,
		log:         logger.For(log, logger.ComponentPipeline),
	}
}

// SetKeepSources controls whether video.mp4 and audio.mp4 are promoted
func (o *Orchestrator) SetKeepSources(keep bool) {
	o.keepSources = keep
}

// SetMetrics sets the metrics sink; nil disables metrics
func (o *Orchestrator) SetMetrics(m *metrics.Metrics) {
	o.metrics = m
}

// SetStateCallback sets the function called after every state transition
func (o *Orchestrator) SetStateCallback(callback func(*model.PipelineRun)) {
	o.onState = callback
}

// NewRunID returns a time-ordered run identifier
func NewRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return RunIDPrefix + uuid.NewString()
	}
	return RunIDPrefix + id.String()
}

// Run executes the pipeline for url. The returned run is never nil; on
// failure it ends in Failed and the error is also returned.
func (o *Orchestrator) Run(ctx context.Context, url, outputDir string, chooser Chooser) (*model.PipelineRun, error) {
	run := &model.PipelineRun{
		ID:         o.newRunID(),
		URL:        url,
		OutputDir:  outputDir,
		OutputPath: filepath.Join(outputDir, OutputFileName),
		State:      model.RunStateIdle,
		StartedAt:  time.Now(),
	}
	log := o.log.With(logger.KeyRunID, run.ID)
	log.Info("run started", "url", url, "output_dir", outputDir)

	if err := platform.CreateDirectoryIfNotExists(outputDir); err != nil {
		return o.fail(run, log, err)
	}

	// Listing
	o.setState(run, log, model.RunStateListing)
	listing, err := o.lister.ListFormats(ctx, url)
	if err != nil {
		return o.fail(run, log, err)
	}
	if len(listing) == 0 {
		return o.fail(run, log, ErrNoFormats)
	}

	// Filtering
	o.setState(run, log, model.RunStateFiltering)
	videos := formats.FilterVideo(listing)
	log.Debug("formats filtered", "total", len(listing), "video", len(videos))
	if len(videos) == 0 {
		return o.fail(run, log, ErrNoVideoFormats)
	}

	// Selecting
	o.setState(run, log, model.RunStateSelecting)
	id, ok := "", false
	if choice, given := chooser.Choose(ctx, videos); given {
		id, ok = formats.Select(videos, choice)
		if !ok {
			log.Warn("invalid selection, using default", "choice", choice, "count", len(videos))
		}
	} else {
		log.Warn("invalid selection, using default", "count", len(videos))
	}
	run.FormatSpec = formats.VideoSpec(id, ok)
	log.Info("format selected", "format", run.FormatSpec)

	stagingDir, err := platform.CreateStagingDir(outputDir, run.ID)
	if err != nil {
		return o.fail(run, log, err)
	}
	run.StagingDir = stagingDir
	stagedVideo := filepath.Join(stagingDir, VideoFileName)
	stagedAudio := filepath.Join(stagingDir, AudioFileName)
	stagedOutput := filepath.Join(stagingDir, OutputFileName)

	// Video
	o.setState(run, log, model.RunStateDownloadingVideo)
	err = o.fetcher.Fetch(ctx, url, run.FormatSpec, stagedVideo)
	o.metrics.ObserveFetch(streamVideo, err)
	if err != nil {
		o.discardStaging(run, log)
		return o.fail(run, log, err)
	}

	// Audio
	o.setState(run, log, model.RunStateDownloadingAudio)
	err = o.fetcher.Fetch(ctx, url, formats.AudioSpec, stagedAudio)
	o.metrics.ObserveFetch(streamAudio, err)
	if err != nil {
		o.discardStaging(run, log)
		return o.fail(run, log, err)
	}

	// Merging
	o.setState(run, log, model.RunStateMerging)
	if err := o.merger.Merge(ctx, stagedVideo, stagedAudio, stagedOutput); err != nil {
		o.metrics.IncMergeFailures()
		log.Error("merge failed, sources kept", "staging_dir", stagingDir)
		return o.fail(run, log, err)
	}

	if err := o.promote(run, log, stagedVideo, stagedAudio, stagedOutput); err != nil {
		log.Error("promotion failed, staging kept", "staging_dir", stagingDir)
		return o.fail(run, log, err)
	}
	o.discardStaging(run, log)

	run.FinishedAt = time.Now()
	o.setState(run, log, model.RunStateDone)
	o.metrics.ObserveRun(metrics.ResultSuccess, run.Duration())
	log.Info("run finished", "output", run.OutputPath, "duration", run.Duration().Round(time.Millisecond))
	return run, nil
}

// promote moves the merged file, and the sources when kept, out of staging.
// Files being replaced are parked in staging first; if any rename fails the
// moves are undone so the output directory keeps the previous set.
func (o *Orchestrator) promote(run *model.PipelineRun, log *slog.Logger, stagedVideo, stagedAudio, stagedOutput string) error {
	var moves []*promotion
	if o.keepSources {
		moves = append(moves,
			&promotion{src: stagedVideo, dst: filepath.Join(run.OutputDir, VideoFileName)},
			&promotion{src: stagedAudio, dst: filepath.Join(run.OutputDir, AudioFileName)},
		)
	}
	moves = append(moves, &promotion{src: stagedOutput, dst: run.OutputPath})

	for _, m := range moves {
		m.previous = filepath.Join(run.StagingDir, previousPrefix+filepath.Base(m.dst))
		if _, err := os.Lstat(m.dst); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			o.rollback(moves, log)
			return err
		}
		if err := platform.PromoteFile(m.dst, m.previous); err != nil {
			o.rollback(moves, log)
			return err
		}
		m.parked = true
	}

	for _, m := range moves {
		if err := platform.PromoteFile(m.src, m.dst); err != nil {
			o.rollback(moves, log)
			return err
		}
		m.moved = true
	}

	if o.keepSources {
		run.VideoPath = moves[0].dst
		run.AudioPath = moves[1].dst
	}
	return nil
}

// promotion is one staged file on its way into the output directory
type promotion struct {
	src, dst string
	previous string // where the replaced file is parked
	parked   bool
	moved    bool
}

// rollback returns promoted files to staging and restores parked ones
func (o *Orchestrator) rollback(moves []*promotion, log *slog.Logger) {
	for i := len(moves) - 1; i >= 0; i-- {
		m := moves[i]
		if m.moved {
			if err := platform.PromoteFile(m.dst, m.src); err != nil {
				log.Warn("failed to return file to staging", "path", m.dst, "error", err)
			}
		}
		if m.parked {
			if err := platform.PromoteFile(m.previous, m.dst); err != nil {
				log.Warn("failed to restore previous file", "path", m.dst, "parked", m.previous, "error", err)
			}
		}
	}
}

// discardStaging removes the staging directory, logging but not failing
func (o *Orchestrator) discardStaging(run *model.PipelineRun, log *slog.Logger) {
	if run.StagingDir == "" {
		return
	}
	if err := platform.RemoveStagingDir(run.StagingDir); err != nil {
		log.Warn("failed to remove staging directory", "staging_dir", run.StagingDir, "error", err)
		return
	}
	run.StagingDir = ""
}

// fail moves the run to Failed and wraps err with the state it failed in
func (o *Orchestrator) fail(run *model.PipelineRun, log *slog.Logger, err error) (*model.PipelineRun, error) {
	stepErr := &StepError{State: run.State, Err: err}
	run.LastError = err.Error()
	run.FinishedAt = time.Now()
	o.setState(run, log, model.RunStateFailed)
	o.metrics.ObserveRun(metrics.ResultFailed, run.Duration())
	log.Error("run failed", "state", stepErr.State, "error", err)
	return run, stepErr
}

func (o *Orchestrator) setState(run *model.PipelineRun, log *slog.Logger, state model.RunState) {
	log.Debug("state changed", "from", run.State, "to", state)
	run.State = state
	if o.onState != nil {
		o.onState(run)
	}
}
