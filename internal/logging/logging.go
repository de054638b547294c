// Package logging builds the zap logger used across shotsort.
//
// A session logs to two sinks: a human-readable console stream on stderr and
// a JSON file named shotsort_YYYYMMDD_HHMMSS.log inside the log directory.
// The console sink can be muted while the progress UI owns the terminal.
package logging

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"shotsort/internal/errors"
)

// Standard field names.
const (
	FieldRunID      = "run_id"
	FieldFile       = "file"
	FieldPath       = "path"
	FieldComponent  = "component"
	FieldBackend    = "backend"
	FieldError      = "error"
	FieldCount      = "count"
	FieldDurationMS = "duration_ms"
)

// Options describes logger construction parameters.
type Options struct {
	Level string
	// Format of the console sink: "console" or "json".
	Format string
	// Dir receives the session log file. Empty disables file output.
	Dir string
	// Quiet mutes the console sink; the file sink still records everything.
	Quiet bool
	// Now stamps the file name; defaults to time.Now.
	Now func() time.Time
}

// Session is a constructed logger plus the file it writes to.
type Session struct {
	Logger  *zap.SugaredLogger
	LogFile string
	console *zap.AtomicLevel
	base    zapcore.Level
	file    *os.File
}

// New constructs a logger from opts. Call Close when done to flush the file sink.
func New(opts Options) (*Session, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	consoleLevel := zap.NewAtomicLevelAt(level)
	if opts.Quiet {
		consoleLevel.SetLevel(zapcore.FatalLevel + 1)
	}

	var consoleEncoder zapcore.Encoder
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "console":
		consoleEncoder = zapcore.NewConsoleEncoder(consoleEncoderConfig())
	case "json":
		consoleEncoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	default:
		return nil, errors.Newf("log format: unsupported value %q", opts.Format)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stderr), consoleLevel),
	}

	session := &Session{console: &consoleLevel, base: level}

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "ensure log directory")
		}
		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}
		session.LogFile = filepath.Join(opts.Dir, FileName(now()))
		file, err := os.OpenFile(session.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, errors.Wrap(err, "open log file")
		}
		session.file = file
		fileEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(file), level))
	}

	session.Logger = zap.New(zapcore.NewTee(cores...)).Sugar()
	return session, nil
}

// MuteConsole silences the console sink until UnmuteConsole is called.
func (s *Session) MuteConsole() {
	s.console.SetLevel(zapcore.FatalLevel + 1)
}

// UnmuteConsole restores the console sink to the configured level.
func (s *Session) UnmuteConsole() {
	s.console.SetLevel(s.base)
}

// Close flushes buffered entries and releases the log file.
func (s *Session) Close() {
	_ = s.Logger.Sync()
	if s.file != nil {
		_ = s.file.Close()
		s.file = nil
	}
}

// FileName returns the session log file name for t.
func FileName(t time.Time) string {
	return "shotsort_" + t.Format("20060102_150405") + ".log"
}

// ParseLevel maps a config level string to a zap level.
func ParseLevel(value string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, errors.Newf("log level: unsupported value %q", value)
	}
}

// Nop returns a logger that discards everything.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func consoleEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeCaller = nil
	cfg.CallerKey = ""
	cfg.StacktraceKey = ""
	return cfg
}
