package config

import "time"

// Config holds paperforge configuration.
// Stored at: {home}/config.yaml
type Config struct {
	Backends BackendsCfg `mapstructure:"backends" yaml:"backends"`
	Pipeline PipelineCfg `mapstructure:"pipeline" yaml:"pipeline"`
	Server   ServerCfg   `mapstructure:"server" yaml:"server"`
}

// BackendCfg configures one LLM backend.
type BackendCfg struct {
	Model   string        `mapstructure:"model" yaml:"model"`
	APIKey  string        `mapstructure:"api_key" yaml:"api_key"` // supports ${ENV_VAR} syntax
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// BackendsCfg holds the two independent LLM backends.
// Generation produces document content; citations extracts bibliographies.
type BackendsCfg struct {
	Generation BackendCfg `mapstructure:"generation" yaml:"generation"`
	Citations  BackendCfg `mapstructure:"citations" yaml:"citations"`
}

// PipelineCfg tunes the generation pipeline.
type PipelineCfg struct {
	// CitationCount is the fixed number of bibliography entries requested
	// per extraction call.
	CitationCount int `mapstructure:"citation_count" yaml:"citation_count"`
	// MaxExtractChars caps PDF text extraction per document.
	MaxExtractChars int `mapstructure:"max_extract_chars" yaml:"max_extract_chars"`
	// RetryAttempts is the total attempt budget per generation request.
	RetryAttempts int `mapstructure:"retry_attempts" yaml:"retry_attempts"`
	// RetryMinDelay is the initial backoff delay; it doubles per attempt.
	RetryMinDelay time.Duration `mapstructure:"retry_min_delay" yaml:"retry_min_delay"`
	// RetryMaxDelay caps the backoff delay.
	RetryMaxDelay time.Duration `mapstructure:"retry_max_delay" yaml:"retry_max_delay"`
}

// ServerCfg configures the HTTP shell.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Backends: BackendsCfg{
			Generation: BackendCfg{
				Model:   "deepseek-r1-distill-llama-70b",
				APIKey:  "${GROQ_API_KEY}",
				BaseURL: "https://api.groq.com/openai/v1",
				Timeout: 120 * time.Second,
			},
			Citations: BackendCfg{
				Model:   "gemini-1.5-flash",
				APIKey:  "${GOOGLE_API_KEY}",
				BaseURL: "https://generativelanguage.googleapis.com/v1beta",
				Timeout: 120 * time.Second,
			},
		},
		Pipeline: PipelineCfg{
			CitationCount:   15,
			MaxExtractChars: 1_000_000,
			RetryAttempts:   5,
			RetryMinDelay:   4 * time.Second,
			RetryMaxDelay:   10 * time.Second,
		},
		Server: ServerCfg{
			Host: "127.0.0.1",
			Port: "8080",
		},
	}
}
