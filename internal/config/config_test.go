package config

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, name := range []string{"LEXI_GEMINI_API_KEY", "GEMINI_API_KEY", "API_KEY", "LEXI_SERVER_ADDR", "LEXI_GEMINI_VOICE"} {
		t.Setenv(name, "")
	}
	return home
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 5*time.Minute, cfg.Server.WriteTimeout)
	assert.Equal(t, "gemini-3-pro-preview", cfg.Gemini.AnalysisModel)
	assert.Equal(t, "gemini-2.5-flash-preview-tts", cfg.Gemini.SpeechModel)
	assert.Equal(t, "Kore", cfg.Gemini.Voice)
	assert.Equal(t, int32(32768), cfg.Gemini.ThinkingBudget)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, int64(20<<20), cfg.Session.MaxUploadBytes)
	assert.Equal(t, filepath.Join(home, ".lexinegotiate", "audit.db"), cfg.Audit.Path)
	assert.Empty(t, cfg.Gemini.APIKey)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("LEXI_SERVER_ADDR", "127.0.0.1:9999")
	t.Setenv("LEXI_GEMINI_VOICE", "Puck")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", cfg.Server.Addr)
	assert.Equal(t, "Puck", cfg.Gemini.Voice)
}

func TestLoadAPIKeyFallbacks(t *testing.T) {
	isolate(t)
	t.Setenv("API_KEY", "from-api-key")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-api-key", cfg.Gemini.APIKey)

	t.Setenv("GEMINI_API_KEY", "from-gemini")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "from-gemini", cfg.Gemini.APIKey)

	t.Setenv("LEXI_GEMINI_API_KEY", "from-lexi")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "from-lexi", cfg.Gemini.APIKey)
}

func TestLoadConfigFile(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".lexinegotiate")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	yaml := "gemini:\n  chat_model: gemini-2.5-flash\nsession:\n  ttl: 10m\naudit:\n  path: ':memory:'\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.ChatModel)
	assert.Equal(t, "gemini-3-pro-preview", cfg.Gemini.AnalysisModel)
	assert.Equal(t, 10*time.Minute, cfg.Session.TTL)
	assert.Equal(t, ":memory:", cfg.Audit.Path)
}

func validConfig(t *testing.T) *Config {
	t.Helper()
	isolate(t)
	t.Setenv("GEMINI_API_KEY", "secret")
	cfg, err := Load()
	require.NoError(t, err)
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, "server address"},
		{"bad addr", func(c *Config) { c.Server.Addr = ":notaport" }, "invalid server address"},
		{"auth without token", func(c *Config) { c.Auth.Enabled = true }, "auth token"},
		{"missing key", func(c *Config) { c.Gemini.APIKey = "" }, "api key"},
		{"missing model", func(c *Config) { c.Gemini.SpeechModel = "" }, "speech_model"},
		{"missing voice", func(c *Config) { c.Gemini.Voice = "" }, "voice"},
		{"zero ttl", func(c *Config) { c.Session.TTL = 0 }, "ttl"},
		{"zero upload", func(c *Config) { c.Session.MaxUploadBytes = 0 }, "max_upload_bytes"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigAPIRedactsSecrets(t *testing.T) {
	cfg := validConfig(t)
	cfg.Auth = AuthConfig{Enabled: true, Token: "tok"}
	api := NewConfigAPI(cfg)

	rec := httptest.NewRecorder()
	api.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/configure", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got Config
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "***", got.Gemini.APIKey)
	assert.Equal(t, "***", got.Auth.Token)
	assert.Equal(t, "secret", cfg.Gemini.APIKey)
}

func TestConfigAPIValidate(t *testing.T) {
	cfg := validConfig(t)
	api := NewConfigAPI(cfg)

	body, err := json.Marshal(cfg.Redacted())
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	api.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/configure/validate", strings.NewReader(string(body))))
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	bad := *cfg
	bad.Session.TTL = 0
	body, err = json.Marshal(&bad)
	require.NoError(t, err)
	rec = httptest.NewRecorder()
	api.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/configure/validate", strings.NewReader(string(body))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ttl")
}
