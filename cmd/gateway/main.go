package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ericksa/lexinegotiate/internal/audit"
	"github.com/ericksa/lexinegotiate/internal/config"
	"github.com/ericksa/lexinegotiate/internal/coordinator"
	"github.com/ericksa/lexinegotiate/internal/logging"
	"github.com/ericksa/lexinegotiate/internal/middleware"
	"github.com/ericksa/lexinegotiate/internal/negotiate"
	"github.com/ericksa/lexinegotiate/internal/provider"
	"github.com/ericksa/lexinegotiate/internal/server"
	"github.com/ericksa/lexinegotiate/internal/session"
	"github.com/ericksa/lexinegotiate/internal/workers"
	"github.com/ericksa/lexinegotiate/pkg/mcp"
)

const (
	shutdownTimeout      = 30 * time.Second
	rateLimiterSweepTick = 30 * time.Minute
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("gateway stopped with error", zap.Error(err))
		os.Exit(1)
	}
}

// gateway is the wired application.
type gateway struct {
	router  http.Handler
	store   *session.Store
	limiter *middleware.RateLimiter
	auditor *audit.Auditor
}

func (g *gateway) Close() {
	g.auditor.Close()
}

// build wires every component from cfg.
func build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*gateway, error) {
	var auditor *audit.Auditor
	if cfg.Audit.Enabled {
		if cfg.Audit.Path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.Audit.Path), 0o755); err != nil {
				return nil, fmt.Errorf("create audit directory: %w", err)
			}
		}
		var err error
		auditor, err = audit.Open(cfg.Audit.Path, logger)
		if err != nil {
			return nil, err
		}
	}

	gemini, err := provider.NewGemini(ctx, provider.GeminiOptions{
		APIKey:         cfg.Gemini.APIKey,
		BaseURL:        cfg.Gemini.BaseURL,
		AnalysisModel:  cfg.Gemini.AnalysisModel,
		ChatModel:      cfg.Gemini.ChatModel,
		SpeechModel:    cfg.Gemini.SpeechModel,
		ThinkingBudget: cfg.Gemini.ThinkingBudget,
		RequestTimeout: cfg.Gemini.RequestTimeout,
	}, logger)
	if err != nil {
		auditor.Close()
		return nil, err
	}

	analyzer := negotiate.NewAnalyzer(gemini, logger)
	coach := negotiate.NewCoach(gemini, logger)
	speaker := negotiate.NewSpeaker(gemini, cfg.Gemini.Voice, logger)

	store := session.NewStore(cfg.Session.TTL, logger)
	coord := coordinator.New(store, analyzer, coach, speaker, auditor, logger)

	tools := mcp.NewHandler(map[string]mcp.Worker{
		"analysis": workers.NewAnalysisWorker(analyzer),
		"coach":    workers.NewCoachWorker(coach),
		"speech":   workers.NewSpeechWorker(speaker),
	}, auditor, logger)

	srv := server.New(server.Options{
		Coordinator:    coord,
		Tools:          tools,
		Config:         cfg,
		MaxUploadBytes: cfg.Session.MaxUploadBytes,
		Logger:         logger,
	})

	// Set up router
	router := mux.NewRouter()
	router.Use(middleware.Recoverer(logger))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))
	router.Use(middleware.Auth(cfg.Auth))

	g := &gateway{router: router, store: store, auditor: auditor}
	if cfg.Server.RateLimit > 0 {
		g.limiter = middleware.NewRateLimiter(cfg.Server.RateLimit, time.Minute)
		router.Use(middleware.RateLimit(g.limiter))
	}
	srv.Register(router)
	return g, nil
}

// run serves until ctx is cancelled, then shuts down gracefully.
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	g, err := build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer g.Close()

	httpSrv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      g.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		logger.Info("starting LexiNegotiate gateway", zap.String("addr", cfg.Server.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		return g.store.RunJanitor(ctx, cfg.Session.JanitorInterval)
	})
	if g.limiter != nil {
		eg.Go(func() error {
			return g.limiter.Run(ctx, rateLimiterSweepTick)
		})
	}
	eg.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := eg.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
