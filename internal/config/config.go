package config

import (
	_ "embed"
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"shotsort/internal/errors"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths holds the folders a run reads from and writes to.
type Paths struct {
	InputDir  string `toml:"input_dir"`
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
}

// Triage holds routing policy and run behaviour.
type Triage struct {
	ConfidenceThreshold float64 `toml:"confidence_threshold"`
	Verbose             bool    `toml:"verbose"`
	WriteManifest       bool    `toml:"write_manifest"`
	// RememberFolders writes the folders of a successful run back to the
	// config file as the next defaults.
	RememberFolders bool `toml:"remember_folders"`
}

// Classifier selects and configures the inference backend.
type Classifier struct {
	// Backend is "exec" or "http".
	Backend string `toml:"backend"`
	// Command and Args describe the helper process for the exec backend.
	// The image path is appended as the final argument.
	Command    string   `toml:"command"`
	Args       []string `toml:"args"`
	WarmupArgs []string `toml:"warmup_args"`
	// Endpoint is the base URL of the inference server for the http backend.
	Endpoint string `toml:"endpoint"`
	// LoadTimeoutSeconds bounds model initialisation.
	LoadTimeoutSeconds int `toml:"load_timeout_seconds"`
	// RequestTimeoutSeconds bounds a single classification call.
	RequestTimeoutSeconds int `toml:"request_timeout_seconds"`
}

// Logging controls log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config encapsulates all configuration values for shotsort.
type Config struct {
	Paths      Paths      `toml:"paths"`
	Triage     Triage     `toml:"triage"`
	Classifier Classifier `toml:"classifier"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// SampleConfig returns the commented sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// Load locates, parses, and validates a configuration file. A missing file is
// not an error; defaults are returned together with the path that would be used.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, errors.Wrap(err, "open config")
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, errors.WithHintf(errors.Wrap(err, "parse config"), "check the TOML syntax in %s", resolvedPath)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// Save writes cfg to path as TOML, creating parent directories.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("save config: nil config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create config directory")
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(cfg); err != nil {
		return errors.Wrap(err, "encode config")
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(err, "write config")
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(err, "replace config")
	}
	return nil
}

// WriteSample writes the sample configuration to path. An existing file is
// only replaced when overwrite is set.
func WriteSample(path string, overwrite bool) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return errors.WithHint(errors.Newf("config already exists at %s", path), "pass --force to overwrite it")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create config directory")
	}
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

// Resolve reports which config file Load would read and whether it exists.
func Resolve(path string) (string, bool, error) {
	return resolveConfigPath(path)
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, errors.Wrap(err, "stat config")
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	var err error
	for _, p := range []*string{&c.Paths.InputDir, &c.Paths.OutputDir, &c.Paths.LogDir} {
		*p = strings.TrimSpace(*p)
		if *p == "" {
			continue
		}
		if *p, err = expandPath(*p); err != nil {
			return err
		}
	}

	c.Classifier.Backend = strings.ToLower(strings.TrimSpace(c.Classifier.Backend))
	c.Classifier.Command = strings.TrimSpace(c.Classifier.Command)
	c.Classifier.Endpoint = strings.TrimRight(strings.TrimSpace(c.Classifier.Endpoint), "/")
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	return nil
}

// Validate checks value ranges and backend requirements.
func (c *Config) Validate() error {
	t := c.Triage.ConfidenceThreshold
	if t < 0 || t > 1 {
		return invalid(fmt.Sprintf("triage.confidence_threshold must be within [0,1], got %v", t))
	}

	switch c.Classifier.Backend {
	case BackendExec:
		if c.Classifier.Command == "" {
			return invalid("classifier.command is required for the exec backend")
		}
	case BackendHTTP:
		if c.Classifier.Endpoint == "" {
			return invalid("classifier.endpoint is required for the http backend")
		}
	default:
		return invalid(fmt.Sprintf("classifier.backend: unsupported value %q", c.Classifier.Backend))
	}

	if c.Classifier.LoadTimeoutSeconds < 0 || c.Classifier.RequestTimeoutSeconds < 0 {
		return invalid("classifier timeouts must not be negative")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalid(fmt.Sprintf("logging.level: unsupported value %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return invalid(fmt.Sprintf("logging.format: unsupported value %q", c.Logging.Format))
	}
	return nil
}

func invalid(msg string) error {
	return errors.Mark(errors.Newf("config: %s", msg), errors.ErrSetup)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "resolve home directory")
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", errors.Wrapf(err, "resolve absolute path for %q", cleaned)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
