package config

// Backend names.
const (
	BackendExec = "exec"
	BackendHTTP = "http"
)

const (
	defaultConfigPath            = "~/.config/shotsort/config.toml"
	projectConfigName            = "shotsort.toml"
	defaultOutputDir             = "sorted"
	defaultLogDir                = "logs"
	defaultConfidenceThreshold   = 0.6
	defaultBackend               = BackendExec
	defaultCommand               = "shotsort-clip"
	defaultEndpoint              = "http://127.0.0.1:8765"
	defaultLoadTimeoutSeconds    = 600
	defaultRequestTimeoutSeconds = 60
	defaultLogLevel              = "info"
	defaultLogFormat             = "console"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Triage: Triage{
			ConfidenceThreshold: defaultConfidenceThreshold,
			Verbose:             true,
			WriteManifest:       true,
			RememberFolders:     true,
		},
		Classifier: Classifier{
			Backend:               defaultBackend,
			Command:               defaultCommand,
			Endpoint:              defaultEndpoint,
			LoadTimeoutSeconds:    defaultLoadTimeoutSeconds,
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
