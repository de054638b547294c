package classifier

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shotsort/internal/errors"
)

const (
	defaultHTTPTimeout  = 60 * time.Second
	defaultPollInterval = 2 * time.Second
	maxErrorBody        = 512
)

// HTTPBackend talks to an inference server exposing GET /health and
// POST /classify. The image travels base64-encoded in a scoreRequest.
type HTTPBackend struct {
	endpoint     string
	httpClient   *http.Client
	pollInterval time.Duration
}

// HTTPOption customizes the HTTP backend.
type HTTPOption func(*HTTPBackend)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(b *HTTPBackend) {
		if client != nil {
			b.httpClient = client
		}
	}
}

// WithPollInterval sets the delay between health probes during Load.
func WithPollInterval(d time.Duration) HTTPOption {
	return func(b *HTTPBackend) {
		if d > 0 {
			b.pollInterval = d
		}
	}
}

// NewHTTPBackend constructs a backend for the server at endpoint.
func NewHTTPBackend(endpoint string, opts ...HTTPOption) *HTTPBackend {
	b := &HTTPBackend{
		endpoint:     strings.TrimRight(strings.TrimSpace(endpoint), "/"),
		httpClient:   &http.Client{Timeout: defaultHTTPTimeout},
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *HTTPBackend) Name() string {
	return "http"
}

// Load polls the health endpoint until the server answers 200 or ctx ends.
// The server may still be loading weights when shotsort starts.
func (b *HTTPBackend) Load(ctx context.Context) error {
	if b.endpoint == "" {
		return errors.New("http backend: endpoint is empty")
	}

	var lastErr error
	for {
		lastErr = b.health(ctx)
		if lastErr == nil {
			return nil
		}

		timer := time.NewTimer(b.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.WithHintf(
				errors.Wrapf(lastErr, "inference server at %s not healthy", b.endpoint),
				"start the server or check classifier.endpoint",
			)
		case <-timer.C:
		}
	}
}

func (b *HTTPBackend) health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.endpoint+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return errors.Newf("health: http %d", resp.StatusCode)
	}
	return nil
}

// Scores uploads one image and returns the server's prompt probabilities.
func (b *HTTPBackend) Scores(ctx context.Context, path string, prompts []string) ([]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(scoreRequest{
		Image:    base64.StdEncoding.EncodeToString(data),
		Filename: filepath.Base(path),
		Prompts:  prompts,
	})
	if err != nil {
		return nil, errors.Wrap(err, "encode classify request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint+"/classify", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "classify request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read classify response")
	}
	if resp.StatusCode != http.StatusOK {
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, errors.Newf("classify: http %d: %s", resp.StatusCode, snippet)
	}

	return decodeScores(body, len(prompts))
}
