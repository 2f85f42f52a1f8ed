package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/GoArmGo/PhotoGallery/internal/domain"
)

// UserStorage реализует ports.UserStorage поверх sqlx
type UserStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewUserStorage(db *sqlx.DB, logger *slog.Logger) *UserStorage {
	return &UserStorage{db: db, logger: logger}
}

// GetOrCreateUser создает строку пользователя при первом обращении
// и обновляет email и имя, если они пришли в токене
func (s *UserStorage) GetOrCreateUser(ctx context.Context, principal domain.Principal) (*domain.User, error) {
	start := time.Now()

	query := `
	INSERT INTO users (id, email, display_name)
	VALUES ($1, $2, $3)
	ON CONFLICT (id) DO UPDATE SET
		email = COALESCE(NULLIF(EXCLUDED.email, ''), users.email),
		display_name = COALESCE(NULLIF(EXCLUDED.display_name, ''), users.display_name),
		updated_at = CASE
			WHEN (EXCLUDED.email <> '' AND EXCLUDED.email <> users.email)
			  OR (EXCLUDED.display_name <> '' AND EXCLUDED.display_name <> users.display_name)
			THEN NOW() ELSE users.updated_at END
	RETURNING id, email, display_name, created_at, updated_at
	`

	var user domain.User
	if err := s.db.GetContext(ctx, &user, query, principal.ID, principal.Email, principal.Name); err != nil {
		s.logger.Error("failed to upsert user", "user_id", principal.ID, "error", err)
		return nil, fmt.Errorf("ошибка при получении пользователя: %w", err)
	}

	s.logger.Debug("user ensured",
		"user_id", user.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &user, nil
}
