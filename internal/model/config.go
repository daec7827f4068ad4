package model

import "time"

// Config is the full service configuration.
// Hierarchy (highest to lowest priority): CLI flags, LEXICLARUS_* env vars,
// config file (~/.lexiclarus/config.yaml), defaults.
type Config struct {
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Simplifier SimplifierConfig `yaml:"simplifier" mapstructure:"simplifier"`
	LLM        LLMConfig        `yaml:"llm" mapstructure:"llm"`
	Chunking   ChunkingConfig   `yaml:"chunking" mapstructure:"chunking"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// ServerConfig configures the HTTP boundary.
type ServerConfig struct {
	Addr           string        `yaml:"addr" mapstructure:"addr"`
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"` // overall deadline per analysis request
	MaxUploadBytes int64         `yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
}

// SimplifierConfig configures the remote simplification endpoint and the
// dispatcher in front of it.
type SimplifierConfig struct {
	BaseURL           string        `yaml:"base_url" mapstructure:"base_url"`
	Token             string        `yaml:"token" mapstructure:"token"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxConcurrent     int64         `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	MaxAttempts       int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoff    time.Duration `yaml:"initial_backoff" mapstructure:"initial_backoff"`
	BatchSize         int           `yaml:"batch_size" mapstructure:"batch_size"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"` // 0 = unlimited
	CacheTTL          time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`                     // 0 = cache disabled
	CacheDir          string        `yaml:"cache_dir" mapstructure:"cache_dir"`                     // "" = memory only
}

// LLMConfig configures the optional generative provider. An empty Provider
// disables it and switches every consumer to its heuristic fallback.
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // "openai", "ollama", ""
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// ChunkingConfig bounds the text chunks sent for clause segmentation.
type ChunkingConfig struct {
	TokenBudget int    `yaml:"token_budget" mapstructure:"token_budget"`
	Encoding    string `yaml:"encoding" mapstructure:"encoding"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	JSON  bool   `yaml:"json" mapstructure:"json"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8000",
			RequestTimeout: 5 * time.Minute,
			MaxUploadBytes: 20 << 20,
		},
		Simplifier: SimplifierConfig{
			Timeout:        120 * time.Second,
			MaxConcurrent:  5,
			MaxAttempts:    3,
			InitialBackoff: time.Second,
			BatchSize:      5,
			CacheTTL:       time.Hour,
		},
		LLM: LLMConfig{
			Provider:  "", // Disabled by default
			Timeout:   30,
			MaxTokens: 1024,
		},
		Chunking: ChunkingConfig{
			TokenBudget: 512,
			Encoding:    "cl100k_base",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
