package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"shotsort/internal/classifier"
	"shotsort/internal/config"
	"shotsort/internal/errors"
	"shotsort/internal/logging"
)

// app bundles what every classifying command needs.
type app struct {
	cfg        *config.Config
	cfgPath    string
	cfgExists  bool
	session    *logging.Session
	logger     *zap.SugaredLogger
	classifier *classifier.Classifier
}

func loadConfig() (*config.Config, string, bool, error) {
	cfg, path, exists, err := config.Load(configPath)
	if err != nil {
		return nil, "", false, err
	}
	return cfg, path, exists, nil
}

func newApp(cfg *config.Config, path string, exists bool) (*app, error) {
	session, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Dir:    cfg.Paths.LogDir,
	})
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:       cfg,
		cfgPath:   path,
		cfgExists: exists,
		session:   session,
		logger:    session.Logger,
	}
	if exists {
		a.logger.Debugw("config loaded", logging.FieldPath, path)
	}
	return a, nil
}

func (a *app) Close() {
	a.session.Close()
}

func buildBackend(c config.Classifier) (classifier.Backend, error) {
	requestTimeout := time.Duration(c.RequestTimeoutSeconds) * time.Second
	switch c.Backend {
	case config.BackendExec:
		return classifier.NewExecBackend(c.Command,
			classifier.WithArgs(c.Args...),
			classifier.WithWarmupArgs(c.WarmupArgs...),
			classifier.WithCommandTimeout(requestTimeout),
		), nil
	case config.BackendHTTP:
		var opts []classifier.HTTPOption
		if requestTimeout > 0 {
			opts = append(opts, classifier.WithHTTPClient(&http.Client{Timeout: requestTimeout}))
		}
		return classifier.NewHTTPBackend(c.Endpoint, opts...), nil
	default:
		return nil, errors.Mark(errors.Newf("unsupported classifier backend %q", c.Backend), errors.ErrSetup)
	}
}

// loadClassifier builds the configured backend and blocks until it is ready.
func (a *app) loadClassifier(ctx context.Context) error {
	backend, err := buildBackend(a.cfg.Classifier)
	if err != nil {
		return err
	}

	clf := classifier.New(backend, a.logger.With(logging.FieldComponent, "classifier"),
		classifier.WithLoadTimeout(time.Duration(a.cfg.Classifier.LoadTimeoutSeconds)*time.Second),
	)
	fmt.Fprintln(os.Stderr, dimStyle.Render(fmt.Sprintf("Loading %s classifier...", backend.Name())))
	if err := <-clf.LoadAsync(ctx); err != nil {
		return err
	}
	a.classifier = clf
	return nil
}

func resolveInputDir(args []string, cfg *config.Config) (string, error) {
	if len(args) > 0 {
		return config.ExpandPath(args[0])
	}
	if cfg.Paths.InputDir != "" {
		return cfg.Paths.InputDir, nil
	}
	return "", errors.WithHint(
		errors.Mark(errors.New("no input directory given"), errors.ErrSetup),
		"pass a folder as argument or set paths.input_dir in the config",
	)
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
