package di

import (
	"context"

	"github.com/GoArmGo/PhotoGallery/internal/adapter/storage/imagefile"
	"github.com/GoArmGo/PhotoGallery/internal/adapter/storage/local"
	"github.com/GoArmGo/PhotoGallery/internal/adapter/storage/minio"
	"github.com/GoArmGo/PhotoGallery/internal/app"
	"github.com/GoArmGo/PhotoGallery/internal/auth"
	"github.com/GoArmGo/PhotoGallery/internal/config"
	"github.com/GoArmGo/PhotoGallery/internal/core/ports"
	"github.com/GoArmGo/PhotoGallery/internal/database/client"
	"github.com/GoArmGo/PhotoGallery/internal/database/postgres"
	"github.com/GoArmGo/PhotoGallery/internal/database/storage"
	"github.com/GoArmGo/PhotoGallery/internal/handler"
	"github.com/GoArmGo/PhotoGallery/internal/logger"
	"github.com/GoArmGo/PhotoGallery/internal/metrics"
	"github.com/GoArmGo/PhotoGallery/internal/usecase"
)

// BuildApp инициализирует все зависимости и возвращает готовый объект App.
func BuildApp(ctx context.Context) (*app.App, error) {
	// 1. Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	slogger := logger.NewSlog(logger.SlogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	slogger.Info("logger initialized", "level", cfg.LogLevel, "format", cfg.LogFormat)

	// 2. Инициализация PostgreSQL клиента и схемы
	dbClient, err := client.NewClient(ctx, cfg.DatabaseURL, slogger)
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := postgres.ApplyMigrations(dbClient.DB.DB, slogger); err != nil {
			_ = dbClient.Close()
			return nil, err
		}
	}

	// 3. Инициализация хранилищ
	photoStorage := storage.NewPhotoStorage(dbClient.DB, slogger)
	userStorage := storage.NewUserStorage(dbClient.DB, slogger)
	interactionStorage := postgres.NewInteractionStorage(dbClient.Gorm, slogger)

	// 4. Файловое хранилище: локальный диск или S3 / MinIO
	validator := imagefile.NewValidator(cfg.MaxUploadBytes)
	var fileStorage ports.FileStorage
	switch cfg.StorageBackend {
	case config.StorageBackendS3:
		s3Store, err := minio.NewMinioClient(ctx, cfg, validator, slogger)
		if err != nil {
			_ = dbClient.Close()
			return nil, err
		}
		fileStorage = s3Store
	default:
		localStore, err := local.NewStore(cfg.LocalStorageDir, validator, slogger)
		if err != nil {
			_ = dbClient.Close()
			return nil, err
		}
		fileStorage = localStore
	}

	// 5. Инициализация бизнес-логики (usecases)
	photoUseCase := usecase.NewPhotoUseCase(photoStorage, interactionStorage, userStorage, fileStorage, slogger)
	interactionUseCase := usecase.NewInteractionUseCase(photoStorage, interactionStorage, userStorage, slogger)

	// 6. HTTP: метрики, проверка токенов, обработчики
	m := metrics.New()
	uploadLimiter := make(chan struct{}, cfg.UploadConcurrency)
	photoHandler := handler.NewPhotoHandler(
		photoUseCase,
		interactionUseCase,
		auth.ContextProvider{},
		uploadLimiter,
		cfg.MaxUploadBytes,
		cfg.PublicBaseURL,
		m,
		slogger,
	)

	router := app.NewRouter(app.RouterDeps{
		PhotoHandler:       photoHandler,
		Verifier:           auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer),
		Metrics:            m,
		DB:                 dbClient,
		RequestTimeout:     cfg.RequestTimeout,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             slogger,
	})

	slogger.Info("dependencies initialized", "storage_backend", cfg.StorageBackend)
	return app.NewApp(cfg, slogger, router, dbClient), nil
}

