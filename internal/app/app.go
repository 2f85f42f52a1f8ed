package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/GoArmGo/PhotoGallery/internal/config"
)

// Closer: ресурс, который нужно освободить при остановке
type Closer interface {
	Close() error
}

type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	handler http.Handler
	db      Closer
}

func NewApp(cfg *config.Config, logger *slog.Logger, handler http.Handler, db Closer) *App {
	return &App{
		cfg:     cfg,
		logger:  logger,
		handler: handler,
		db:      db,
	}
}

// Logger возвращает основной логгер приложения
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Run запускает HTTP-сервер и блокируется до SIGINT/SIGTERM или ошибки сервера
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Info("starting photo gallery", "port", a.cfg.ServerPort, "storage", a.cfg.StorageBackend)

	err := runServer(ctx, ":"+a.cfg.ServerPort, a.handler, a.logger)

	// ресурсы закрываются и при ошибке сервера
	if closeErr := a.Shutdown(); closeErr != nil {
		a.logger.Error("shutdown failed", "error", closeErr)
	}
	return err
}

// Shutdown закрывает все ресурсы приложения
func (a *App) Shutdown() error {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			return fmt.Errorf("ошибка закрытия БД: %w", err)
		}
	}
	return nil
}
