// Package local хранит файлы фотографий на локальном диске через afero
package local

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/GoArmGo/PhotoGallery/internal/adapter/storage/imagefile"
	"github.com/GoArmGo/PhotoGallery/internal/domain"
)

// Store реализует ports.FileStorage поверх afero.Fs.
// Файлы наружу не раздаются напрямую: только через OpenFile после проверки доступа
type Store struct {
	fs        afero.Fs
	validator *imagefile.Validator
	logger    *slog.Logger
}

// NewStore создает хранилище в каталоге dir на диске
func NewStore(dir string, validator *imagefile.Validator, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("не удалось создать каталог хранилища %s: %w", dir, err)
	}
	return NewStoreFs(afero.NewBasePathFs(afero.NewOsFs(), dir), validator, logger), nil
}

// NewStoreFs создает хранилище поверх произвольной afero.Fs
func NewStoreFs(fs afero.Fs, validator *imagefile.Validator, logger *slog.Logger) *Store {
	return &Store{fs: fs, validator: validator, logger: logger}
}

func (s *Store) ValidateFile(_ context.Context, in domain.UploadPhotoInput) (domain.FileInfo, error) {
	return s.validator.Validate(in)
}

// SaveFile записывает содержимое по ключу и возвращает ключ как путь хранения
func (s *Store) SaveFile(ctx context.Context, key string, content []byte, contentType string) (string, error) {
	start := time.Now()

	clean, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := fsName(clean)
	if err := s.fs.MkdirAll(path.Dir(name), 0o755); err != nil {
		return "", fmt.Errorf("не удалось создать каталог для %s: %w", clean, err)
	}
	if err := afero.WriteFile(s.fs, name, content, 0o644); err != nil {
		s.logger.Error("failed to write file", "key", clean, "error", err)
		return "", fmt.Errorf("ошибка записи файла %s: %w", clean, err)
	}

	s.logger.Info("file saved",
		"key", clean,
		"content_type", contentType,
		"size", len(content),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return clean, nil
}

// DeleteFile удаляет файл; отсутствующий файл не ошибка
func (s *Store) DeleteFile(_ context.Context, storagePath string) error {
	clean, err := cleanKey(storagePath)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(fsName(clean)); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Error("failed to delete file", "key", clean, "error", err)
		return fmt.Errorf("ошибка удаления файла %s: %w", clean, err)
	}
	s.logger.Info("file deleted", "key", clean)
	return nil
}

// OpenFile открывает сохраненный файл на чтение. Каталоги не отдаются,
// закрыть Content обязан вызывающий
func (s *Store) OpenFile(ctx context.Context, storagePath string) (*domain.FileObject, error) {
	clean, err := cleanKey(storagePath)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := s.fs.Open(fsName(clean))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrFileNotFound
		}
		return nil, fmt.Errorf("ошибка открытия файла %s: %w", clean, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("ошибка чтения сведений о файле %s: %w", clean, err)
	}
	if info.IsDir() {
		_ = f.Close()
		s.logger.Warn("refused to open directory as file", "key", clean)
		return nil, domain.ErrFileNotFound
	}

	return &domain.FileObject{
		Content:     f,
		ContentType: mime.TypeByExtension(path.Ext(clean)),
		Size:        info.Size(),
		ModTime:     info.ModTime(),
	}, nil
}

// fsName: абсолютное имя внутри fs; MemMapFs требует ведущий слеш
func fsName(key string) string {
	return "/" + key
}

// cleanKey не дает ключу выйти за пределы корня хранилища
func cleanKey(key string) (string, error) {
	clean := strings.TrimPrefix(path.Clean("/"+key), "/")
	if clean == "" || clean != strings.TrimPrefix(key, "/") {
		return "", fmt.Errorf("недопустимый ключ файла %q", key)
	}
	return clean, nil
}
