// Package classifier wraps an external zero-shot image classifier.
//
// A Classifier starts Unloaded, moves to Loading when LoadAsync is called and
// ends in Ready or Failed once the backend finishes initialising. Only the
// load goroutine moves it out of Loading. Classify is valid only in Ready and
// is serialised: the backend is treated as a single exclusive resource.
package classifier

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"shotsort/internal/errors"
)

// State is the readiness of a Classifier.
type State int32

const (
	StateUnloaded State = iota
	StateLoading
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Backend produces one probability per prompt for an image.
type Backend interface {
	Name() string
	// Load performs one-time initialisation and blocks until it completes.
	Load(ctx context.Context) error
	// Scores returns len(prompts) probabilities for the image at path.
	Scores(ctx context.Context, path string, prompts []string) ([]float64, error)
}

// Classifier gates a Backend behind explicit readiness and serialised access.
type Classifier struct {
	backend     Backend
	logger      *zap.SugaredLogger
	loadTimeout time.Duration

	state atomic.Int32
	mu    sync.Mutex
}

// Option customizes the classifier.
type Option func(*Classifier)

// WithLoadTimeout bounds backend initialisation. Zero means no limit.
func WithLoadTimeout(d time.Duration) Option {
	return func(c *Classifier) {
		c.loadTimeout = d
	}
}

// New constructs an unloaded classifier over backend.
func New(backend Backend, logger *zap.SugaredLogger, opts ...Option) *Classifier {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	c := &Classifier{backend: backend, logger: logger}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current readiness state.
func (c *Classifier) State() State {
	return State(c.state.Load())
}

// Ready reports whether Classify may be called.
func (c *Classifier) Ready() bool {
	return c.State() == StateReady
}

// LoadAsync starts backend initialisation on its own goroutine. The returned
// channel receives exactly one value (nil on success) and is then closed.
// Loading again after a failure is allowed; loading while Loading or Ready is
// rejected with ErrState.
func (c *Classifier) LoadAsync(ctx context.Context) <-chan error {
	result := make(chan error, 1)

	if !c.state.CompareAndSwap(int32(StateUnloaded), int32(StateLoading)) &&
		!c.state.CompareAndSwap(int32(StateFailed), int32(StateLoading)) {
		result <- errors.Mark(errors.Newf("classifier load: already %s", c.State()), errors.ErrState)
		close(result)
		return result
	}

	go func() {
		defer close(result)

		loadCtx := ctx
		if c.loadTimeout > 0 {
			var cancel context.CancelFunc
			loadCtx, cancel = context.WithTimeout(ctx, c.loadTimeout)
			defer cancel()
		}

		started := time.Now()
		c.logger.Infow("loading classifier", "backend", c.backend.Name())

		if err := c.backend.Load(loadCtx); err != nil {
			c.state.Store(int32(StateFailed))
			c.logger.Errorw("classifier load failed", "backend", c.backend.Name(), "error", err)
			result <- errors.Mark(errors.Wrapf(err, "load %s classifier", c.backend.Name()), errors.ErrModelLoad)
			return
		}

		c.state.Store(int32(StateReady))
		c.logger.Infow("classifier ready",
			"backend", c.backend.Name(),
			"duration_ms", time.Since(started).Milliseconds(),
		)
		result <- nil
	}()

	return result
}

// Classify scores the image at path. Undecodable files and backend failures
// are marked ErrClassification; calling before the classifier is ready fails
// with ErrState.
func (c *Classifier) Classify(ctx context.Context, path string, verbose bool) (Result, error) {
	if !c.Ready() {
		return Result{}, errors.Mark(
			errors.Newf("classify %s: classifier is %s", filepath.Base(path), c.State()),
			errors.ErrState,
		)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	name := filepath.Base(path)

	if _, err := checkImage(path); err != nil {
		return Result{}, errors.Mark(errors.Wrapf(err, "decode %s", name), errors.ErrClassification)
	}

	probs, err := c.backend.Scores(ctx, path, Prompts)
	if err != nil {
		return Result{}, errors.Mark(errors.Wrapf(err, "score %s", name), errors.ErrClassification)
	}

	result, err := Score(probs)
	if err != nil {
		return Result{}, errors.Wrapf(err, "score %s", name)
	}

	if verbose {
		c.logger.Info(result.Describe(name))
	}
	return result, nil
}
