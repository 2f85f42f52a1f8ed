package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/GoArmGo/PhotoGallery/internal/domain"
)

const photoColumns = `p.id, p.owner_id, p.title, p.description, p.storage_path, p.is_public, p.upload_order, p.created_at, p.updated_at`

// summarySelect: фото с именем владельца и счетчиками лайков и избранного
const summarySelect = `
	SELECT ` + photoColumns + `,
		COALESCE(u.display_name, '') AS owner_name,
		(SELECT COUNT(*) FROM likes l WHERE l.photo_id = p.id) AS like_count,
		(SELECT COUNT(*) FROM favorites f WHERE f.photo_id = p.id) AS favorite_count
	FROM photos p
	LEFT JOIN users u ON u.id = p.owner_id`

// orderBy сопоставляет ключ сортировки с ORDER BY.
// upload_order уникален, поэтому порядок стабилен между страницами
var orderBy = map[domain.SortKey]string{
	domain.SortNewest:        "p.upload_order DESC",
	domain.SortOldest:        "p.upload_order ASC",
	domain.SortMostLiked:     "like_count DESC, p.upload_order DESC",
	domain.SortMostFavorited: "favorite_count DESC, p.upload_order DESC",
}

// PhotoStorage реализует ports.PhotoStorage поверх sqlx
type PhotoStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewPhotoStorage(db *sqlx.DB, logger *slog.Logger) *PhotoStorage {
	return &PhotoStorage{db: db, logger: logger}
}

// CreatePhoto сохраняет метаданные фотографии в базе данных
func (s *PhotoStorage) CreatePhoto(ctx context.Context, photo *domain.Photo) error {
	start := time.Now()

	if photo.ID == uuid.Nil {
		photo.ID = uuid.New()
	}

	query := `
	INSERT INTO photos (id, owner_id, title, description, storage_path, is_public)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING upload_order, created_at, updated_at
	`

	err := s.db.QueryRowxContext(ctx, query,
		photo.ID, photo.OwnerID, photo.Title, photo.Description, photo.StoragePath, photo.IsPublic,
	).Scan(&photo.UploadOrder, &photo.CreatedAt, &photo.UpdatedAt)
	if err != nil {
		s.logger.Error("failed to create photo", "owner_id", photo.OwnerID, "error", err)
		return fmt.Errorf("ошибка при сохранении фото: %w", err)
	}

	s.logger.Info("photo saved successfully",
		"id", photo.ID,
		"owner_id", photo.OwnerID,
		"upload_order", photo.UploadOrder,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// GetPhotoByID получает фото по ID; отсутствующее фото: nil без ошибки
func (s *PhotoStorage) GetPhotoByID(ctx context.Context, id uuid.UUID) (*domain.Photo, error) {
	start := time.Now()

	var photo domain.Photo
	query := `SELECT ` + photoColumns + ` FROM photos p WHERE p.id = $1`

	if err := s.db.GetContext(ctx, &photo, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("photo not found by id", "id", id)
			return nil, nil
		}
		s.logger.Error("failed to get photo by id", "id", id, "error", err)
		return nil, fmt.Errorf("ошибка при получении фото по ID: %w", err)
	}

	s.logger.Debug("photo retrieved by id",
		"id", id,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &photo, nil
}

// GetPhotoSummary получает фото вместе со счетчиками
func (s *PhotoStorage) GetPhotoSummary(ctx context.Context, id uuid.UUID) (*domain.PhotoSummary, error) {
	var summary domain.PhotoSummary
	query := summarySelect + ` WHERE p.id = $1`

	if err := s.db.GetContext(ctx, &summary, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("photo summary not found", "id", id)
			return nil, nil
		}
		s.logger.Error("failed to get photo summary", "id", id, "error", err)
		return nil, fmt.Errorf("ошибка при получении сводки фото: %w", err)
	}
	return &summary, nil
}

// SetStoragePath записывает путь файла, сохраненного после вставки строки
func (s *PhotoStorage) SetStoragePath(ctx context.Context, id uuid.UUID, path string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE photos SET storage_path = $2, updated_at = NOW() WHERE id = $1`, id, path)
	if err != nil {
		s.logger.Error("failed to set storage path", "id", id, "error", err)
		return fmt.Errorf("ошибка при сохранении пути файла: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("фото %s не найдено для обновления: %w", id, sql.ErrNoRows)
	}
	return nil
}

// UpdatePhotoFields обновляет только переданные поля одним UPDATE с условием на владельца.
// Пустые строки очищают текстовые поля
func (s *PhotoStorage) UpdatePhotoFields(ctx context.Context, id, ownerID uuid.UUID, in domain.UpdatePhotoInput) (*domain.Photo, error) {
	start := time.Now()

	args := []any{id, ownerID}
	var sets []string
	set := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}
	if in.Title != nil {
		set("title", domain.NormalizeText(*in.Title))
	}
	if in.Description != nil {
		set("description", domain.NormalizeText(*in.Description))
	}
	if in.IsPublic != nil {
		set("is_public", *in.IsPublic)
	}
	sets = append(sets, "updated_at = NOW()")

	query := `UPDATE photos p SET ` + strings.Join(sets, ", ") +
		` WHERE p.id = $1 AND p.owner_id = $2 RETURNING ` + photoColumns

	photo, err := s.updateReturning(ctx, query, args...)
	if err != nil {
		s.logger.Error("failed to update photo", "id", id, "error", err)
		return nil, fmt.Errorf("ошибка при обновлении фото: %w", err)
	}
	if photo != nil {
		s.logger.Info("photo updated",
			"id", id,
			"columns", len(sets)-1,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	return photo, nil
}

// TogglePrivacy инвертирует is_public в самой базе, поэтому параллельные вызовы не теряют друг друга
func (s *PhotoStorage) TogglePrivacy(ctx context.Context, id, ownerID uuid.UUID) (*domain.Photo, error) {
	query := `UPDATE photos p SET is_public = NOT p.is_public, updated_at = NOW()
	WHERE p.id = $1 AND p.owner_id = $2
	RETURNING ` + photoColumns

	photo, err := s.updateReturning(ctx, query, id, ownerID)
	if err != nil {
		s.logger.Error("failed to toggle privacy", "id", id, "error", err)
		return nil, fmt.Errorf("ошибка при смене приватности: %w", err)
	}
	if photo != nil {
		s.logger.Info("photo privacy toggled", "id", id, "is_public", photo.IsPublic)
	}
	return photo, nil
}

// updateReturning выполняет UPDATE ... RETURNING; ни одной строки: nil без ошибки
func (s *PhotoStorage) updateReturning(ctx context.Context, query string, args ...any) (*domain.Photo, error) {
	var photo domain.Photo
	if err := s.db.GetContext(ctx, &photo, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &photo, nil
}

// DeletePhoto удаляет фото одним запросом, лайки и избранное удаляются каскадом
func (s *PhotoStorage) DeletePhoto(ctx context.Context, id uuid.UUID) error {
	start := time.Now()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM photos WHERE id = $1`, id); err != nil {
		s.logger.Error("failed to delete photo", "id", id, "error", err)
		return fmt.Errorf("ошибка при удалении фото: %w", err)
	}

	s.logger.Info("photo deleted", "id", id, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// ListPhotos возвращает страницу сводок по фильтру и сортировке
func (s *PhotoStorage) ListPhotos(ctx context.Context, filter domain.PhotoFilter, sortKey domain.SortKey, limit, offset int) ([]domain.PhotoSummary, error) {
	start := time.Now()

	order, ok := orderBy[sortKey]
	if !ok {
		return nil, domain.ErrUnsupportedSort{Key: string(sortKey)}
	}

	where, args := buildWhere(filter)
	n := len(args)
	query := summarySelect + where +
		` ORDER BY ` + order +
		` LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	args = append(args, limit, offset)

	photos := []domain.PhotoSummary{}
	if err := s.db.SelectContext(ctx, &photos, query, args...); err != nil {
		s.logger.Error("failed to list photos", "sort", sortKey, "limit", limit, "offset", offset, "error", err)
		return nil, fmt.Errorf("ошибка при получении списка фото: %w", err)
	}

	s.logger.Debug("listed photos",
		"sort", sortKey,
		"limit", limit,
		"offset", offset,
		"count", len(photos),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return photos, nil
}

// CountPhotos считает фото по тому же фильтру, что и ListPhotos
func (s *PhotoStorage) CountPhotos(ctx context.Context, filter domain.PhotoFilter) (int64, error) {
	where, args := buildWhere(filter)

	var total int64
	if err := s.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM photos p`+where, args...); err != nil {
		s.logger.Error("failed to count photos", "error", err)
		return 0, fmt.Errorf("ошибка при подсчете фото: %w", err)
	}
	return total, nil
}

// buildWhere собирает условие выборки с позиционными параметрами
func buildWhere(filter domain.PhotoFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.OwnerID != uuid.Nil {
		conds = append(conds, "p.owner_id = "+arg(filter.OwnerID))
	}
	if filter.PublicOnly {
		conds = append(conds, "p.is_public")
	}
	if filter.VisibleTo != uuid.Nil {
		conds = append(conds, "(p.is_public OR p.owner_id = "+arg(filter.VisibleTo)+")")
	}
	if filter.LikedBy != uuid.Nil {
		conds = append(conds, "EXISTS (SELECT 1 FROM likes lb WHERE lb.photo_id = p.id AND lb.user_id = "+arg(filter.LikedBy)+")")
	}
	if filter.FavoritedBy != uuid.Nil {
		conds = append(conds, "EXISTS (SELECT 1 FROM favorites fb WHERE fb.photo_id = p.id AND fb.user_id = "+arg(filter.FavoritedBy)+")")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
