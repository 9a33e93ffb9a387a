package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the complete gateway configuration
// The structure matches the config.yaml file and can be overridden by LEXI_* environment variables

type Config struct {
	Server  ServerConfig  `json:"server" mapstructure:"server"`
	Auth    AuthConfig    `json:"auth" mapstructure:"auth"`
	Gemini  GeminiConfig  `json:"gemini" mapstructure:"gemini"`
	Session SessionConfig `json:"session" mapstructure:"session"`
	Audit   AuditConfig   `json:"audit" mapstructure:"audit"`
	Log     LogConfig     `json:"log" mapstructure:"log"`
}

// ServerConfig contains HTTP server configuration

type ServerConfig struct {
	Addr         string        `json:"addr" mapstructure:"addr"`
	ReadTimeout  time.Duration `json:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" mapstructure:"write_timeout"`
	// RateLimit is the number of requests per minute allowed per client. Zero disables limiting.
	RateLimit   int      `json:"rate_limit" mapstructure:"rate_limit"`
	CORSOrigins []string `json:"cors_origins" mapstructure:"cors_origins"`
}

// AuthConfig contains bearer-token authentication configuration

type AuthConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Token   string `json:"token" mapstructure:"token"`
}

// GeminiConfig contains the model provider configuration

type GeminiConfig struct {
	APIKey         string        `json:"api_key" mapstructure:"api_key"`
	BaseURL        string        `json:"base_url" mapstructure:"base_url"`
	AnalysisModel  string        `json:"analysis_model" mapstructure:"analysis_model"`
	ChatModel      string        `json:"chat_model" mapstructure:"chat_model"`
	SpeechModel    string        `json:"speech_model" mapstructure:"speech_model"`
	Voice          string        `json:"voice" mapstructure:"voice"`
	ThinkingBudget int32         `json:"thinking_budget" mapstructure:"thinking_budget"`
	RequestTimeout time.Duration `json:"request_timeout" mapstructure:"request_timeout"`
}

// SessionConfig contains in-memory session limits

type SessionConfig struct {
	TTL             time.Duration `json:"ttl" mapstructure:"ttl"`
	JanitorInterval time.Duration `json:"janitor_interval" mapstructure:"janitor_interval"`
	MaxUploadBytes  int64         `json:"max_upload_bytes" mapstructure:"max_upload_bytes"`
}

type AuditConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" mapstructure:"path"`
}

type LogConfig struct {
	Level       string `json:"level" mapstructure:"level"`
	Development bool   `json:"development" mapstructure:"development"`
}

// apiKeyFallbacks are read, in order, when LEXI_GEMINI_API_KEY is not set.
var apiKeyFallbacks = []string{"GEMINI_API_KEY", "API_KEY"}

// Load loads the configuration from file and environment variables
func Load() (*Config, error) {
	// Load .env first (ignore error if not present)
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.lexinegotiate")
	v.SetEnvPrefix("LEXI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Gemini.APIKey == "" {
		for _, name := range apiKeyFallbacks {
			if key := os.Getenv(name); key != "" {
				cfg.Gemini.APIKey = key
				break
			}
		}
	}
	cfg.Audit.Path = resolvePath(cfg.Audit.Path)
	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	// Analysis with a large thinking budget can take minutes.
	v.SetDefault("server.write_timeout", "5m")
	v.SetDefault("server.rate_limit", 60)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.token", "")

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.base_url", "")
	v.SetDefault("gemini.analysis_model", "gemini-3-pro-preview")
	v.SetDefault("gemini.chat_model", "gemini-3-pro-preview")
	v.SetDefault("gemini.speech_model", "gemini-2.5-flash-preview-tts")
	v.SetDefault("gemini.voice", "Kore")
	v.SetDefault("gemini.thinking_budget", 32768)
	v.SetDefault("gemini.request_timeout", "0s")

	// Session defaults
	v.SetDefault("session.ttl", "2h")
	v.SetDefault("session.janitor_interval", "5m")
	v.SetDefault("session.max_upload_bytes", 20<<20)

	v.SetDefault("audit.enabled", true)
	v.SetDefault("audit.path", "~/.lexinegotiate/audit.db")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// resolvePath resolves ~ to home directory and cleans the path
func resolvePath(p string) string {
	if p == "" || p == ":memory:" {
		return p
	}
	if p[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			p = filepath.Join(home, p[1:])
		}
	}
	return filepath.Clean(p)
}
