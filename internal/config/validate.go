package config

import (
	"errors"
	"fmt"
	"net"

	"go.uber.org/zap/zapcore"
)

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	// Validate server configuration
	if c.Server.Addr == "" {
		return errors.New("server address cannot be empty")
	}

	// Validate address format and port
	if _, err := net.ResolveTCPAddr("tcp", c.Server.Addr); err != nil {
		return fmt.Errorf("invalid server address: %v", err)
	}
	if c.Server.RateLimit < 0 {
		return errors.New("server rate_limit cannot be negative")
	}

	// Validate auth configuration
	if c.Auth.Enabled && c.Auth.Token == "" {
		return errors.New("auth token cannot be empty when auth is enabled")
	}

	// Validate model configuration
	if c.Gemini.APIKey == "" {
		return errors.New("gemini api key is missing: set LEXI_GEMINI_API_KEY, GEMINI_API_KEY or API_KEY")
	}
	for name, model := range map[string]string{
		"analysis_model": c.Gemini.AnalysisModel,
		"chat_model":     c.Gemini.ChatModel,
		"speech_model":   c.Gemini.SpeechModel,
	} {
		if model == "" {
			return fmt.Errorf("gemini %s cannot be empty", name)
		}
	}
	if c.Gemini.Voice == "" {
		return errors.New("gemini voice cannot be empty")
	}
	if c.Gemini.ThinkingBudget < 0 {
		return errors.New("gemini thinking_budget cannot be negative")
	}
	if c.Gemini.RequestTimeout < 0 {
		return errors.New("gemini request_timeout cannot be negative")
	}

	// Validate session configuration
	if c.Session.TTL <= 0 {
		return errors.New("session ttl must be positive")
	}
	if c.Session.MaxUploadBytes <= 0 {
		return errors.New("session max_upload_bytes must be positive")
	}

	if c.Audit.Enabled && c.Audit.Path == "" {
		return errors.New("audit path cannot be empty when audit is enabled")
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %v", err)
	}

	return nil
}
