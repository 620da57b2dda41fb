package models

// Config holds the application configuration
type Config struct {
	Identity IdentityConfig `json:"identity"`
	Database DatabaseConfig `json:"database"`
	Tracing  TracingConfig  `json:"tracing"`
	LogLevel string         `json:"log_level"`
}

// IdentityConfig holds the local device identities used to resolve
// message directionality
type IdentityConfig struct {
	// OwnJID is the phone-number identity of this device
	OwnJID string `json:"own_jid"`
	// OwnLID is the hidden (LID) identity of this device, if assigned
	OwnLID string `json:"own_lid"`
}

// DatabaseConfig holds database related configurations
type DatabaseConfig struct {
	Path string `json:"path"`
}

// TracingConfig holds OpenTelemetry related configurations
type TracingConfig struct {
	Enabled      bool    `json:"enabled"`
	UseStdout    bool    `json:"use_stdout"`
	OTLPEndpoint string  `json:"otlp_endpoint"`
	SampleRate   float64 `json:"sample_rate"`
	Environment  string  `json:"environment"`
}

// ConfigError represents a configuration validation failure
type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string {
	return e.Message
}
