package domain

import (
	"time"

	"github.com/google/uuid"
)

// User представляет модель пользователя в системе.
// Соответствует таблице 'users' в базе данных.
// Идентичность принадлежит внешней подсистеме аутентификации
type User struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Email       string    `json:"email" db:"email"`
	DisplayName string    `json:"display_name" db:"display_name"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Principal: аутентифицированная личность, извлеченная из токена запроса
type Principal struct {
	ID    uuid.UUID
	Email string
	Name  string
}

// Anonymous сообщает, что запрос пришел без аутентификации
func (p Principal) Anonymous() bool {
	return p.ID == uuid.Nil
}
