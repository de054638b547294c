package triage

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shotsort/internal/classifier"
	"shotsort/internal/errors"
	"shotsort/internal/logging"
	"shotsort/pkg/imgutil"
)

// logEvery is the progress log interval when verbose logging is off.
const logEvery = 50

// Classifier is what the engine needs from a loaded model.
type Classifier interface {
	Ready() bool
	Classify(ctx context.Context, path string, verbose bool) (classifier.Result, error)
}

// Engine runs triage batches. At most one run is active per engine.
type Engine struct {
	clf      Classifier
	logger   *zap.SugaredLogger
	now      func() time.Time
	copyFile func(src, dst string) error
	runID    func() string
	manifest bool
	active   atomic.Bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now for elapsed time measurement.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithCopier replaces the metadata-preserving file copy.
func WithCopier(copyFile func(src, dst string) error) Option {
	return func(e *Engine) {
		if copyFile != nil {
			e.copyFile = copyFile
		}
	}
}

// WithManifest toggles writing shotsort_manifest.json after each run.
func WithManifest(enabled bool) Option {
	return func(e *Engine) {
		e.manifest = enabled
	}
}

// WithRunID replaces the random run identifier generator.
func WithRunID(next func() string) Option {
	return func(e *Engine) {
		if next != nil {
			e.runID = next
		}
	}
}

// NewEngine builds an engine around a classifier.
func NewEngine(clf Classifier, logger *zap.SugaredLogger, opts ...Option) *Engine {
	if logger == nil {
		logger = logging.Nop()
	}
	e := &Engine{
		clf:      clf,
		logger:   logger,
		now:      time.Now,
		copyFile: copyPreserving,
		runID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Active reports whether a run is in progress.
func (e *Engine) Active() bool {
	return e.active.Load()
}

// Run processes cfg synchronously, sending one event per image to updates
// when it is non-nil. Sends block, so the receiver must keep draining.
// Run does not close updates.
func (e *Engine) Run(ctx context.Context, cfg RunConfig, updates chan<- ProgressEvent) (SummaryReport, error) {
	if !e.active.CompareAndSwap(false, true) {
		return SummaryReport{}, errAlreadyRunning()
	}
	defer e.active.Store(false)
	return e.run(ctx, cfg, updates)
}

// Start launches a run in the background. The returned channel yields one
// Completion and is then closed; updates, when non-nil, is closed before the
// Completion is delivered. A second Start while a run is active fails with
// ErrState and leaves the active run untouched.
func (e *Engine) Start(ctx context.Context, cfg RunConfig, updates chan<- ProgressEvent) (<-chan Completion, error) {
	if !e.active.CompareAndSwap(false, true) {
		return nil, errAlreadyRunning()
	}

	done := make(chan Completion, 1)
	go func() {
		defer close(done)
		report, err := e.run(ctx, cfg, updates)
		if updates != nil {
			close(updates)
		}
		e.active.Store(false)
		done <- Completion{Report: report, Err: err}
	}()
	return done, nil
}

func errAlreadyRunning() error {
	return errors.WithHint(
		errors.Mark(errors.New("a triage run is already in progress"), errors.ErrState),
		"wait for the current run to finish",
	)
}

func (e *Engine) run(ctx context.Context, cfg RunConfig, updates chan<- ProgressEvent) (SummaryReport, error) {
	// Runs are not cancellable once started; backend timeouts still bound
	// each call.
	ctx = context.WithoutCancel(ctx)
	runID := e.runID()
	logger := e.logger.With(logging.FieldRunID, runID)

	if err := cfg.Validate(); err != nil {
		return SummaryReport{}, err
	}
	if e.clf == nil || !e.clf.Ready() {
		return SummaryReport{}, errors.WithHint(
			errors.Mark(errors.New("classifier is not ready"), errors.ErrState),
			"wait for the model to finish loading before starting a run",
		)
	}

	started := e.now()
	dests := cfg.Destinations()
	logger.Infow("starting triage",
		"input", cfg.InputDir,
		"output", cfg.OutputDir,
		"threshold", cfg.ConfidenceThreshold,
	)

	if err := createFolders(dests); err != nil {
		logger.Errorw("cannot create output folders", logging.FieldError, err)
		return SummaryReport{}, err
	}
	lock, err := lockOutput(cfg.OutputDir)
	if err != nil {
		return SummaryReport{}, err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warnw("cannot release output lock", logging.FieldError, err)
		}
	}()

	files, err := Discover(cfg.InputDir)
	if err != nil {
		logger.Errorw("cannot list input folder", logging.FieldPath, cfg.InputDir, logging.FieldError, err)
	}
	if len(files) == 0 {
		logger.Warnw("no images found", logging.FieldPath, cfg.InputDir)
		return BuildSummary(NewRunStats(0), e.now().Sub(started), dests), nil
	}
	logger.Infow("found images", logging.FieldCount, len(files))

	stats := NewRunStats(len(files))
	records := make([]Record, 0, len(files))
	for i, name := range files {
		rec := e.process(ctx, cfg, dests, name, logger)
		stats.record(rec.Outcome)
		records = append(records, rec)

		if updates != nil {
			updates <- newProgressEvent(i, len(files), rec.Outcome)
		}
		if !cfg.Verbose && (i%logEvery == 0 || i == len(files)-1) {
			logger.Infof("processed %d/%d images", i+1, len(files))
		}
	}

	report := BuildSummary(stats, e.now().Sub(started), dests)
	logSummary(logger, report)

	if e.manifest {
		path, err := WriteManifest(cfg.OutputDir, Manifest{
			RunID:      runID,
			StartedAt:  started,
			InputDir:   cfg.InputDir,
			OutputDir:  cfg.OutputDir,
			Threshold:  cfg.ConfidenceThreshold,
			Stats:      stats,
			ElapsedMS:  report.Elapsed.Milliseconds(),
			Throughput: report.Throughput,
			Records:    records,
		})
		if err != nil {
			logger.Warnw("cannot write manifest", logging.FieldError, err)
		} else {
			logger.Debugw("manifest written", logging.FieldPath, path)
		}
	}

	return report, nil
}

// process classifies and copies one image. Failures are logged and folded
// into an OutcomeError record; they never stop the run.
func (e *Engine) process(ctx context.Context, cfg RunConfig, dests Destinations, name string, logger *zap.SugaredLogger) Record {
	src := filepath.Join(cfg.InputDir, name)
	rec := Record{Name: name}

	res, err := e.clf.Classify(ctx, src, cfg.Verbose)
	if err != nil {
		logger.Errorw("cannot classify image", logging.FieldFile, name, logging.FieldError, err)
		rec.Outcome = OutcomeError
		rec.Error = err.Error()
		return rec
	}
	rec.Label = res.Label.String()
	rec.Confidence = res.Confidence
	rec.Scores = res.Scores

	dest := Route(res, cfg.ConfidenceThreshold)
	target := filepath.Join(dests.Path(dest), name)
	if err := e.copyFile(src, target); err != nil {
		err = errors.Mark(errors.Wrapf(err, "copy %s", name), errors.ErrCopy)
		logger.Errorw("cannot copy image", logging.FieldFile, name, logging.FieldError, err)
		rec.Outcome = OutcomeError
		rec.Error = err.Error()
		return rec
	}
	rec.Outcome = outcomeFor(dest)
	rec.Destination = dest.Folder()

	if e.manifest {
		camera, err := imgutil.ReadCameraFile(src)
		if err != nil {
			logger.Debugw("cannot read camera metadata", logging.FieldFile, name, logging.FieldError, err)
		} else if !camera.Empty() {
			rec.Camera = camera.Device()
			rec.Taken = camera.Taken
		}
	}
	return rec
}

// createFolders makes the three destination folders, including missing
// parents. Existing folders are fine.
func createFolders(dests Destinations) error {
	for _, dir := range dests.All() {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.WithHint(
				errors.Mark(errors.Wrapf(err, "create %s", dir), errors.ErrSetup),
				"check that the output directory is writable",
			)
		}
	}
	return nil
}

func logSummary(logger *zap.SugaredLogger, report SummaryReport) {
	stats := report.Stats
	logger.Infow("triage complete",
		"total", stats.Total,
		"clean", stats.Clean,
		"code", stats.Code,
		"uncertain", stats.Uncertain,
		"errors", stats.Errors,
		logging.FieldDurationMS, report.Elapsed.Milliseconds(),
		"images_per_second", report.Throughput,
	)
	if stats.Errors > 0 {
		logger.Warnf("%d images could not be sorted", stats.Errors)
	}
}
