package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	StorageBackendLocal = "local"
	StorageBackendS3    = "s3"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL    string        `env:"DATABASE_URL,required,notEmpty"`
	ServerPort     string        `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat      string        `env:"LOG_FORMAT" envDefault:"json"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	AutoMigrate    bool          `env:"AUTO_MIGRATE" envDefault:"true"`

	// Проверка JWT, выпуском токенов занимается внешний сервис
	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`
	JWTIssuer string `env:"JWT_ISSUER"`

	StorageBackend  string `env:"STORAGE_BACKEND" envDefault:"local"`
	LocalStorageDir string `env:"LOCAL_STORAGE_DIR" envDefault:"./uploads"`
	// PublicBaseURL: внешний адрес API, из него строятся ссылки /photos/{id}/file
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`

	MaxUploadBytes     int64 `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`
	UploadConcurrency  int   `env:"UPLOAD_CONCURRENCY" envDefault:"5"`
	RateLimitPerMinute int   `env:"RATE_LIMIT_PER_MINUTE" envDefault:"120"`

	// Настройки для MinIO, обязательны только при STORAGE_BACKEND=s3
	MinioEndpoint        string `env:"MINIO_ENDPOINT"`
	MinioAccessKeyID     string `env:"MINIO_ACCESS_KEY_ID"`
	MinioSecretAccessKey string `env:"MINIO_SECRET_ACCESS_KEY"`
	MinioUseSSL          bool   `env:"MINIO_USE_SSL"`
	MinioBucketName      string `env:"MINIO_BUCKET_NAME"`
	MinioRegion          string `env:"MINIO_REGION" envDefault:"us-east-1"`
	// PresignTTL: срок жизни подписанной ссылки на объект
	PresignTTL time.Duration `env:"PRESIGN_TTL" envDefault:"15m"`
}

// LoadConfig загружает конфигурацию из переменных окружения.
// В режиме разработки пытается загрузить .env файл.
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); !os.IsNotExist(err) {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("ошибка загрузки .env файла: %w", err)
		}
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга конфигурации из окружения: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет взаимозависимые параметры, которые не выразить тегами
func (c *Config) Validate() error {
	var errs []error

	switch c.StorageBackend {
	case StorageBackendLocal:
		if c.LocalStorageDir == "" {
			errs = append(errs, errors.New("LOCAL_STORAGE_DIR не может быть пустым"))
		}
	case StorageBackendS3:
		required := map[string]string{
			"MINIO_ENDPOINT":          c.MinioEndpoint,
			"MINIO_ACCESS_KEY_ID":     c.MinioAccessKeyID,
			"MINIO_SECRET_ACCESS_KEY": c.MinioSecretAccessKey,
			"MINIO_BUCKET_NAME":       c.MinioBucketName,
		}
		for _, key := range []string{"MINIO_ENDPOINT", "MINIO_ACCESS_KEY_ID", "MINIO_SECRET_ACCESS_KEY", "MINIO_BUCKET_NAME"} {
			if required[key] == "" {
				errs = append(errs, fmt.Errorf("%s обязателен при STORAGE_BACKEND=s3", key))
			}
		}
		if c.PresignTTL <= 0 {
			errs = append(errs, errors.New("PRESIGN_TTL должен быть положительным"))
		}
	default:
		errs = append(errs, fmt.Errorf("неизвестный STORAGE_BACKEND %q (используйте local или s3)", c.StorageBackend))
	}

	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES должен быть положительным"))
	}
	if c.UploadConcurrency <= 0 {
		errs = append(errs, errors.New("UPLOAD_CONCURRENCY должен быть положительным"))
	}
	if c.RateLimitPerMinute <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE должен быть положительным"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT должен быть положительным"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("некорректная конфигурация: %w", errors.Join(errs...))
	}
	return nil
}
