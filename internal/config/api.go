package config

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
)

const redacted = "***"

// ConfigAPI provides HTTP endpoints to view and check configuration
type ConfigAPI struct {
	cfg    *Config
	mu     sync.RWMutex
	router *mux.Router
}

func NewConfigAPI(cfg *Config) *ConfigAPI {
	api := &ConfigAPI{
		cfg:    cfg,
		router: mux.NewRouter(),
	}
	api.Register(api.router)
	return api
}

func (api *ConfigAPI) Router() *mux.Router {
	return api.router
}

// Register mounts the configuration routes on r.
func (api *ConfigAPI) Register(r *mux.Router) {
	r.HandleFunc("/configure", api.getConfig).Methods("GET")
	r.HandleFunc("/configure/", api.getConfig).Methods("GET")
	r.HandleFunc("/configure/validate", api.validateConfig).Methods("POST")
}

func (api *ConfigAPI) getConfig(w http.ResponseWriter, r *http.Request) {
	api.mu.RLock()
	defer api.mu.RUnlock()
	safeCfg := api.cfg.Redacted()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(safeCfg)
}

// validateConfig checks a candidate configuration. Secrets left redacted are
// taken from the running configuration.
func (api *ConfigAPI) validateConfig(w http.ResponseWriter, r *http.Request) {
	var cfg Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, fmt.Sprintf("invalid config payload: %v", err), http.StatusBadRequest)
		return
	}

	api.mu.RLock()
	if cfg.Gemini.APIKey == redacted {
		cfg.Gemini.APIKey = api.cfg.Gemini.APIKey
	}
	if cfg.Auth.Token == redacted {
		cfg.Auth.Token = api.cfg.Auth.Token
	}
	api.mu.RUnlock()

	if err := cfg.Validate(); err != nil {
		http.Error(w, fmt.Sprintf("invalid configuration: %v", err), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"valid": true, "message": "configuration is valid"})
}

// Redacted returns a copy with secrets masked.
func (c *Config) Redacted() *Config {
	copyCfg := *c
	copyCfg.Server.CORSOrigins = append([]string(nil), c.Server.CORSOrigins...)
	if copyCfg.Gemini.APIKey != "" {
		copyCfg.Gemini.APIKey = redacted
	}
	if copyCfg.Auth.Token != "" {
		copyCfg.Auth.Token = redacted
	}
	return &copyCfg
}
