package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/GoArmGo/PhotoGallery/internal/adapter/storage/imagefile"
	appconfig "github.com/GoArmGo/PhotoGallery/internal/config"
	"github.com/GoArmGo/PhotoGallery/internal/domain"
)

// Client представляет собой клиент для взаимодействия с MinIO (S3-совместимым хранилищем).
// Реализует ports.FileStorage; путь хранения: ключ объекта в бакете.
// Бакет приватный, файлы отдаются временными подписанными ссылками
type Client struct {
	s3Client   *s3.Client
	uploader   *manager.Uploader
	presigner  *s3.PresignClient
	presignTTL time.Duration
	bucketName string
	validator  *imagefile.Validator
	logger     *slog.Logger
}

// NewMinioClient создает клиент по конфигурации и гарантирует наличие бакета
func NewMinioClient(ctx context.Context, cfg *appconfig.Config, validator *imagefile.Validator, logger *slog.Logger) (*Client, error) {
	endpoint := endpointURL(cfg.MinioEndpoint, cfg.MinioUseSSL)

	cfgAws, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.MinioRegion),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.MinioAccessKeyID, cfg.MinioSecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for MinIO: %w", err)
	}

	s3Client := s3.NewFromConfig(cfgAws, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	c := newClient(s3Client, cfg.MinioBucketName, cfg.PresignTTL, validator, logger)
	if err := c.ensureBucket(ctx, cfg.MinioRegion); err != nil {
		return nil, err
	}
	return c, nil
}

func newClient(s3Client *s3.Client, bucket string, presignTTL time.Duration, validator *imagefile.Validator, logger *slog.Logger) *Client {
	return &Client{
		s3Client:   s3Client,
		uploader:   manager.NewUploader(s3Client),
		presigner:  s3.NewPresignClient(s3Client),
		presignTTL: presignTTL,
		bucketName: bucket,
		validator:  validator,
		logger:     logger,
	}
}

func endpointURL(endpoint string, useSSL bool) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return strings.TrimRight(endpoint, "/")
	}
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}

// ensureBucket создает бакет, если его еще нет
func (c *Client) ensureBucket(ctx context.Context, region string) error {
	headCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := c.s3Client.HeadBucket(headCtx, &s3.HeadBucketInput{Bucket: aws.String(c.bucketName)})
	if err == nil {
		c.logger.Info("bucket already exists", "bucket", c.bucketName)
		return nil
	}

	c.logger.Warn("bucket not found, creating", "bucket", c.bucketName, "error", err)

	input := &s3.CreateBucketInput{Bucket: aws.String(c.bucketName)}
	// us-east-1 нельзя передавать как LocationConstraint
	if region != "" && region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(region),
		}
	}
	if _, err := c.s3Client.CreateBucket(ctx, input); err != nil {
		return fmt.Errorf("failed to create bucket '%s': %w", c.bucketName, err)
	}

	waiter := s3.NewBucketExistsWaiter(c.s3Client)
	if err := waiter.Wait(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.bucketName)}, 30*time.Second); err != nil {
		return fmt.Errorf("failed waiting for bucket '%s' to be created: %w", c.bucketName, err)
	}

	c.logger.Info("bucket created", "bucket", c.bucketName)
	return nil
}

func (c *Client) ValidateFile(_ context.Context, in domain.UploadPhotoInput) (domain.FileInfo, error) {
	return c.validator.Validate(in)
}

// SaveFile загружает файл в бакет и возвращает ключ объекта
func (c *Client) SaveFile(ctx context.Context, key string, content []byte, contentType string) (string, error) {
	start := time.Now()

	_, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		c.logger.Error("failed to upload object", "bucket", c.bucketName, "key", key, "error", err)
		return "", fmt.Errorf("failed to upload file %s to bucket %s: %w", key, c.bucketName, err)
	}

	c.logger.Info("object uploaded",
		"bucket", c.bucketName,
		"key", key,
		"size", len(content),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return key, nil
}

// DeleteFile удаляет объект; S3 не считает удаление отсутствующего объекта ошибкой
func (c *Client) DeleteFile(ctx context.Context, key string) error {
	_, err := c.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		c.logger.Error("failed to delete object", "bucket", c.bucketName, "key", key, "error", err)
		return fmt.Errorf("failed to delete file %s from bucket %s: %w", key, c.bucketName, err)
	}
	c.logger.Info("object deleted", "bucket", c.bucketName, "key", key)
	return nil
}

// OpenFile проверяет наличие объекта и выдает подписанную GET-ссылку на presignTTL
func (c *Client) OpenFile(ctx context.Context, key string) (*domain.FileObject, error) {
	head, err := c.s3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return nil, domain.ErrFileNotFound
		}
		c.logger.Error("failed to stat object", "bucket", c.bucketName, "key", key, "error", err)
		return nil, fmt.Errorf("failed to stat file %s in bucket %s: %w", key, c.bucketName, err)
	}

	req, err := c.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(c.presignTTL))
	if err != nil {
		c.logger.Error("failed to presign object", "bucket", c.bucketName, "key", key, "error", err)
		return nil, fmt.Errorf("failed to presign file %s in bucket %s: %w", key, c.bucketName, err)
	}

	c.logger.Debug("object presigned", "bucket", c.bucketName, "key", key, "ttl", c.presignTTL)
	return &domain.FileObject{
		ContentType: aws.ToString(head.ContentType),
		Size:        aws.ToInt64(head.ContentLength),
		ModTime:     aws.ToTime(head.LastModified),
		RedirectURL: req.URL,
	}, nil
}
