// Command devserver runs a fake authentication backend implementing
// the same wire formats the client consumes, so front-end hosts can be
// developed against short-lived tokens without the real API. Every
// account accepts the password "password"; the account
// "locked@example.com" is permanently locked and "2fa@example.com"
// always demands a second factor (any 6-digit code passes).
package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

type config struct {
	Addr       string        `env:"DEVSERVER_ADDR" envDefault:":8085"`
	SigningKey string        `env:"DEVSERVER_SIGNING_KEY" envDefault:"devserver-local-signing-key"`
	TokenTTL   time.Duration `env:"DEVSERVER_TOKEN_TTL" envDefault:"2m"`

	// RefreshFailures makes the first N refresh calls fail, to exercise
	// the client's backoff and forced-logout paths.
	RefreshFailures int `env:"DEVSERVER_REFRESH_FAILURES" envDefault:"0"`
}

func main() {
	_ = godotenv.Load()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(log)

	srv := newServer(cfg, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", srv.handleLogin)
		r.Post("/register", srv.handleRegister)
		r.Post("/2fa/setup", srv.handleTwoFactorSetup)
		r.Post("/2fa/verify", srv.handleTwoFactorVerify)
		r.Post("/2fa/disable", srv.handleTwoFactorDisable)
		r.Post("/refresh", srv.handleRefresh)
		r.Post("/forgot-password", srv.handleForgotPassword)
		r.Post("/google", srv.handleGoogle)
		r.Get("/me", srv.handleMe)
	})

	log.Info("devserver listening", "addr", cfg.Addr, "token_ttl", cfg.TokenTTL)
	if err := http.ListenAndServe(cfg.Addr, r); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
			)
		})
	}
}
