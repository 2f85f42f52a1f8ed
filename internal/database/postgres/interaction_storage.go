package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/GoArmGo/PhotoGallery/internal/core/ports"
	"github.com/GoArmGo/PhotoGallery/internal/domain"
)

// interactionRecord: строка таблицы likes или favorites, таблица выбирается по виду
type interactionRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	PhotoID   uuid.UUID `gorm:"type:uuid;not null"`
	UserID    uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt time.Time
}

// InteractionStorage реализует ports.InteractionStorage поверх GORM
type InteractionStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewInteractionStorage(db *gorm.DB, logger *slog.Logger) *InteractionStorage {
	return &InteractionStorage{db: db, logger: logger}
}

func tableFor(kind domain.InteractionKind) (string, error) {
	switch kind {
	case domain.KindLike:
		return "likes", nil
	case domain.KindFavorite:
		return "favorites", nil
	default:
		return "", fmt.Errorf("неизвестный вид взаимодействия %q", kind)
	}
}

// Exists проверяет наличие записи пользователя для фото
func (s *InteractionStorage) Exists(ctx context.Context, kind domain.InteractionKind, photoID, userID uuid.UUID) (bool, error) {
	table, err := tableFor(kind)
	if err != nil {
		return false, err
	}

	var n int64
	err = s.db.WithContext(ctx).Table(table).
		Where("photo_id = ? AND user_id = ?", photoID, userID).
		Limit(1).
		Count(&n).Error
	if err != nil {
		s.logger.Error("failed to check interaction", "kind", kind, "photo_id", photoID, "user_id", userID, "error", err)
		return false, fmt.Errorf("ошибка при проверке %s: %w", kind, err)
	}
	return n > 0, nil
}

// Add в одной транзакции читает фото под FOR SHARE, проверяет rule и вставляет запись.
// Блокировка не дает смене приватности или удалению фото проскочить между проверкой и вставкой.
// Нарушение уникальности (photo_id, user_id) дает domain.ErrDuplicate
func (s *InteractionStorage) Add(ctx context.Context, in *domain.Interaction, rule ports.InteractionRule) error {
	start := time.Now()

	table, err := tableFor(in.Kind)
	if err != nil {
		return err
	}

	rec := interactionRecord{
		ID:      uuid.New(),
		PhotoID: in.PhotoID,
		UserID:  in.UserID,
	}
	var ruleErr error
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var photo domain.Photo
		if err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
			Where("id = ?", in.PhotoID).
			First(&photo).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrPhotoNotFound
			}
			return fmt.Errorf("ошибка при блокировке фото: %w", err)
		}

		if rule != nil {
			if ruleErr = rule(&photo); ruleErr != nil {
				return ruleErr
			}
		}

		return tx.Table(table).Create(&rec).Error
	})
	if err != nil {
		switch {
		case ruleErr != nil:
			return ruleErr
		case isUniqueViolation(err):
			s.logger.Warn("duplicate interaction rejected", "kind", in.Kind, "photo_id", in.PhotoID, "user_id", in.UserID)
			return domain.ErrDuplicate
		case errors.Is(err, domain.ErrPhotoNotFound), isForeignKeyViolation(err):
			s.logger.Warn("interaction target photo is gone", "kind", in.Kind, "photo_id", in.PhotoID)
			return domain.ErrPhotoNotFound
		}
		s.logger.Error("failed to add interaction", "kind", in.Kind, "photo_id", in.PhotoID, "error", err)
		return fmt.Errorf("ошибка при сохранении %s: %w", in.Kind, err)
	}

	in.ID = rec.ID
	in.CreatedAt = rec.CreatedAt

	s.logger.Info("interaction saved",
		"kind", in.Kind,
		"photo_id", in.PhotoID,
		"user_id", in.UserID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Remove удаляет запись и сообщает, была ли она
func (s *InteractionStorage) Remove(ctx context.Context, kind domain.InteractionKind, photoID, userID uuid.UUID) (bool, error) {
	table, err := tableFor(kind)
	if err != nil {
		return false, err
	}

	result := s.db.WithContext(ctx).Table(table).
		Where("photo_id = ? AND user_id = ?", photoID, userID).
		Delete(&interactionRecord{})
	if result.Error != nil {
		s.logger.Error("failed to remove interaction", "kind", kind, "photo_id", photoID, "error", result.Error)
		return false, fmt.Errorf("ошибка при удалении %s: %w", kind, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Count считает записи данного вида для фото
func (s *InteractionStorage) Count(ctx context.Context, kind domain.InteractionKind, photoID uuid.UUID) (int64, error) {
	table, err := tableFor(kind)
	if err != nil {
		return 0, err
	}

	var n int64
	if err := s.db.WithContext(ctx).Table(table).Where("photo_id = ?", photoID).Count(&n).Error; err != nil {
		s.logger.Error("failed to count interactions", "kind", kind, "photo_id", photoID, "error", err)
		return 0, fmt.Errorf("ошибка при подсчете %s: %w", kind, err)
	}
	return n, nil
}

// isUniqueViolation распознает нарушение уникальности у postgres и sqlite
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

// isForeignKeyViolation распознает вставку со ссылкой на уже удаленное фото
func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "foreign key constraint") ||
		strings.Contains(msg, "23503")
}
