package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"strings"
	"time"

	"shotsort/internal/errors"
)

var (
	commandContext = exec.CommandContext
	lookPath       = exec.LookPath
)

// scoreRequest is sent to helpers and inference servers.
type scoreRequest struct {
	Image    string   `json:"image"`
	Filename string   `json:"filename,omitempty"`
	Prompts  []string `json:"prompts"`
}

// scoreResponse is what helpers and inference servers reply with.
type scoreResponse struct {
	Probs []float64 `json:"probs"`
	Error string    `json:"error,omitempty"`
}

// ExecBackend runs a helper process per image. The helper receives a JSON
// scoreRequest on stdin (image holds the path), the image path as its last
// argument, and must print a JSON scoreResponse on stdout.
type ExecBackend struct {
	command    string
	args       []string
	warmupArgs []string
	timeout    time.Duration
	resolved   string
}

// ExecOption customizes the exec backend.
type ExecOption func(*ExecBackend)

// WithArgs sets arguments placed before the image path.
func WithArgs(args ...string) ExecOption {
	return func(b *ExecBackend) {
		b.args = append([]string(nil), args...)
	}
}

// WithWarmupArgs sets arguments for a one-off run during Load, typically used
// to fetch model weights before the first image.
func WithWarmupArgs(args ...string) ExecOption {
	return func(b *ExecBackend) {
		b.warmupArgs = append([]string(nil), args...)
	}
}

// WithCommandTimeout bounds a single helper invocation.
func WithCommandTimeout(d time.Duration) ExecOption {
	return func(b *ExecBackend) {
		b.timeout = d
	}
}

// NewExecBackend constructs a backend that shells out to command.
func NewExecBackend(command string, opts ...ExecOption) *ExecBackend {
	b := &ExecBackend{command: strings.TrimSpace(command)}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *ExecBackend) Name() string {
	return "exec"
}

// Load resolves the helper binary and runs the warm-up arguments, if any.
func (b *ExecBackend) Load(ctx context.Context) error {
	if b.command == "" {
		return errors.New("exec backend: command is empty")
	}
	resolved, err := lookPath(b.command)
	if err != nil {
		return errors.WithHintf(
			errors.Wrapf(err, "find classifier helper %q", b.command),
			"install the helper or point classifier.command at it",
		)
	}
	b.resolved = resolved

	if len(b.warmupArgs) == 0 {
		return nil
	}
	cmd := commandContext(ctx, b.resolved, b.warmupArgs...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return errors.Wrapf(err, "classifier warm-up: %s", strings.TrimSpace(string(output)))
	}
	return nil
}

// Scores runs the helper for one image.
func (b *ExecBackend) Scores(ctx context.Context, path string, prompts []string) ([]float64, error) {
	if b.resolved == "" {
		return nil, errors.Mark(errors.New("exec backend: not loaded"), errors.ErrState)
	}
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(scoreRequest{Image: path, Prompts: prompts})
	if err != nil {
		return nil, errors.Wrap(err, "encode helper request")
	}

	args := append(append([]string(nil), b.args...), path)
	cmd := commandContext(ctx, b.resolved, args...) //nolint:gosec
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, errors.Wrapf(err, "classifier helper: %s", strings.TrimSpace(stderr.String()))
	}

	return decodeScores(stdout.Bytes(), len(prompts))
}

func decodeScores(data []byte, want int) ([]float64, error) {
	var resp scoreResponse
	if err := json.Unmarshal(bytes.TrimSpace(data), &resp); err != nil {
		return nil, errors.Wrap(err, "parse classifier response")
	}
	if resp.Error != "" {
		return nil, errors.Newf("classifier reported: %s", resp.Error)
	}
	if len(resp.Probs) != want {
		return nil, errors.Newf("classifier returned %d scores for %d prompts", len(resp.Probs), want)
	}
	return resp.Probs, nil
}
