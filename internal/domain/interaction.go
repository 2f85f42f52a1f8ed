package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrDuplicate возвращается хранилищем, когда уникальное ограничение
// (photo_id, user_id) уже занято
var ErrDuplicate = errors.New("duplicate record")

// InteractionKind различает лайки и избранное, которые хранятся
// в отдельных таблицах с одинаковой схемой
type InteractionKind string

const (
	KindLike     InteractionKind = "like"
	KindFavorite InteractionKind = "favorite"
)

// Interaction: запись о лайке или добавлении в избранное
type Interaction struct {
	ID        uuid.UUID       `json:"id"`
	Kind      InteractionKind `json:"kind"`
	PhotoID   uuid.UUID       `json:"photo_id"`
	UserID    uuid.UUID       `json:"user_id"`
	CreatedAt time.Time       `json:"created_at"`
}
