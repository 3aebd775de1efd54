package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/shoplist/internal/auth"
	"github.com/mmynk/shoplist/internal/config"
	"github.com/mmynk/shoplist/internal/metrics"
	"github.com/mmynk/shoplist/internal/router"
	"github.com/mmynk/shoplist/internal/storage"
	"github.com/mmynk/shoplist/internal/storage/postgres"
	"github.com/mmynk/shoplist/internal/storage/sqlite"
	"github.com/mmynk/shoplist/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "driver", cfg.DBDriver)

	promoteAdmins(ctx, store, cfg.AdminUsers)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiresIn)
	engine := router.New(router.Deps{
		Store:         store,
		JWTManager:    jwtManager,
		Authenticator: auth.NewPasswordAuthenticator(store),
		Metrics:       metrics.New(),
		Logger:        logger,
	})

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})

	// h2c serves HTTP/2 without TLS alongside HTTP/1.1.
	handler := h2c.NewHandler(c.Handler(engine), &http2.Server{})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "address", srv.Addr, "url", fmt.Sprintf("http://localhost%s", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Graceful shutdown failed", "error", err)
		}
	}
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		return postgres.New(ctx, cfg.DatabaseURL)
	default:
		return sqlite.New(cfg.DBPath)
	}
}

// promoteAdmins grants the admin flag to the configured usernames.
// Usernames that are not registered yet are skipped.
func promoteAdmins(ctx context.Context, store storage.UserStore, userNames []string) {
	for _, name := range userNames {
		err := store.SetAdmin(ctx, name, true)
		switch {
		case errors.Is(err, storage.ErrUserNotFound):
			slog.Warn("Admin user not registered, skipping", "user_name", name)
		case err != nil:
			slog.Error("Failed to promote admin", "user_name", name, "error", err)
		default:
			slog.Info("Admin privileges granted", "user_name", name)
		}
	}
}
