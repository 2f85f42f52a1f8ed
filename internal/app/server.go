package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/GoArmGo/PhotoGallery/internal/auth"
	"github.com/GoArmGo/PhotoGallery/internal/handler"
	"github.com/GoArmGo/PhotoGallery/internal/handler/respond"
	"github.com/GoArmGo/PhotoGallery/internal/metrics"
)

// shutdownTimeout: сколько ждать завершения активных запросов
const shutdownTimeout = 30 * time.Second

// Pinger проверяет доступность базы для /healthz
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterDeps: все, что нужно для сборки роутера
type RouterDeps struct {
	PhotoHandler       *handler.PhotoHandler
	Verifier           auth.TokenVerifier
	Metrics            *metrics.Metrics
	DB                 Pinger
	RequestTimeout     time.Duration
	RateLimitPerMinute int
	Logger             *slog.Logger
}

// NewRouter собирает chi-роутер с middleware, служебными эндпоинтами и API галереи
func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(d.Metrics.Middleware)

	// служебные эндпоинты без аутентификации и лимитов
	r.Get("/healthz", healthz(d.DB, d.Logger))
	r.Handle("/metrics", d.Metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(auth.Authenticate(d.Verifier, d.Logger))
		r.Use(handler.RequestLogger(d.Logger))
		r.Use(httprate.Limit(
			d.RateLimitPerMinute,
			time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
		))
		r.Use(middleware.Timeout(d.RequestTimeout))

		d.PhotoHandler.Routes(r, auth.RequireAuth(d.Logger))
	})

	return r
}

func healthz(db Pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			logger.Error("health check failed", "error", err)
			respond.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"}, logger)
			return
		}
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"}, logger)
	}
}

// runServer обслуживает запросы, пока не отменен ctx, затем дожидается активных запросов
func runServer(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server started", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка при запуске сервера: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received, stopping http server")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("http server stopped")
	return nil
}
