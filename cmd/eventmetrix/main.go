package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	mathrand "math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/example/eventmetrix/internal/application"
	"github.com/example/eventmetrix/internal/config"
	httptransport "github.com/example/eventmetrix/internal/http"
	"github.com/example/eventmetrix/internal/metrics"
	"github.com/example/eventmetrix/internal/persistence"
	"github.com/example/eventmetrix/internal/persistence/sqlite"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("failed to load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	language, err := bootstrapLanguage(context.Background(), storage, cfg.Language)
	if err != nil {
		logger.Error("failed to bootstrap language preference", "error", err)
		os.Exit(1)
	}
	logger.Info("language preference loaded", "language", language)

	metrics.Register()

	idGenerator := generateID
	tokenGenerator := func() string { return randomHex(32) }
	now := time.Now

	synth := application.NewSynthesizer(mathrand.IntN, now)

	authService := application.NewAuthServiceWithLogger(storage, storage, idGenerator, tokenGenerator, now, cfg.SessionTTL, cfg.LoginDelay, logger)
	eventService := application.NewEventServiceWithLogger(storage, storage, synth, idGenerator, now, logger)
	analyticsService := application.NewAnalyticsServiceWithLogger(storage, storage, mathrand.IntN, now, logger)
	teamService := application.NewTeamServiceWithLogger(storage, idGenerator, logger)

	eventService.SetInvalidator(analyticsService.InvalidateSummary)

	authHandler := httptransport.NewAuthHandler(authService, logger)
	eventHandler := httptransport.NewEventHandler(eventService, logger)
	teamHandler := httptransport.NewTeamHandler(teamService, language, logger)
	analyticsHandler := httptransport.NewAnalyticsHandler(analyticsService, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:      authHandler,
		Events:    eventHandler,
		Teams:     teamHandler,
		Analytics: analyticsHandler,
		Health:    http.HandlerFunc(healthz),
		Metrics:   promhttp.Handler(),
	})

	protected := httptransport.RequireSession(authService, logger)(router)
	split := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicPath(r.URL.Path) {
			router.ServeHTTP(w, r)
			return
		}
		protected.ServeHTTP(w, r)
	})

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Session-Token"},
		AllowCredentials: true,
	})

	handler := httptransport.RequestLogger(logger)(corsMiddleware.Handler(split))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("eventmetrix API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// isPublicPath reports whether the path is reachable without a session.
func isPublicPath(path string) bool {
	switch path {
	case "/auth/login", "/auth/register", "/catalog", "/healthz", "/metrics":
		return true
	}
	return strings.HasPrefix(path, "/auth/")
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// bootstrapLanguage reads the persisted preference, seeding the configured
// default on first run.
func bootstrapLanguage(ctx context.Context, store *sqlite.Store, fallback string) (string, error) {
	language, err := store.GetLanguage(ctx)
	if err == nil {
		return language, nil
	}
	if !errors.Is(err, persistence.ErrNotFound) {
		return "", err
	}
	if err := store.PutLanguage(ctx, fallback); err != nil {
		return "", err
	}
	return fallback, nil
}

// generateID favors time-ordered UUIDs so collection blobs stay roughly
// append-ordered, falling back to random hex when entropy is unavailable.
func generateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return randomHex(16)
	}
	return id.String()
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
