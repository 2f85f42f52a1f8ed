package domain

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Photo представляет модель фотографии в системе,
// соответствует таблице photos в бд.
// Связи с пользователями хранятся только через идентификаторы
type Photo struct {
	ID          uuid.UUID `json:"id" db:"id"`
	OwnerID     uuid.UUID `json:"owner_id" db:"owner_id"`
	Title       *string   `json:"title,omitempty" db:"title"`
	Description *string   `json:"description,omitempty" db:"description"`
	StoragePath string    `json:"-" db:"storage_path"`
	IsPublic    bool      `json:"is_public" db:"is_public"`
	UploadOrder int64     `json:"upload_order" db:"upload_order"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

func (Photo) TableName() string {
	return "photos"
}

// PhotoSummary: фото вместе с именем владельца и счетчиками взаимодействий.
// Используется в списках и как ответ на изменения
type PhotoSummary struct {
	Photo
	OwnerName     string `json:"owner_name" db:"owner_name"`
	LikeCount     int64  `json:"like_count" db:"like_count"`
	FavoriteCount int64  `json:"favorite_count" db:"favorite_count"`
	URL           string `json:"url" db:"-"`
}

// PhotoDetail: детальная карточка фото для конкретного запрашивающего
type PhotoDetail struct {
	PhotoSummary
	LikedByMe     bool `json:"liked_by_me"`
	FavoritedByMe bool `json:"favorited_by_me"`
}

// PhotoFilter описывает выборку фотографий. Один и тот же фильтр
// используется и для списка, и для подсчета, чтобы метаданные страницы совпадали
type PhotoFilter struct {
	// OwnerID ограничивает выборку фото одного владельца
	OwnerID uuid.UUID
	// PublicOnly оставляет только публичные фото
	PublicOnly bool
	// LikedBy / FavoritedBy: фото, которые отметил пользователь
	LikedBy     uuid.UUID
	FavoritedBy uuid.UUID
	// VisibleTo оставляет публичные фото и собственные фото этого пользователя
	VisibleTo uuid.UUID
}

// UploadPhotoInput: данные для загрузки новой фотографии
type UploadPhotoInput struct {
	Filename    string
	ContentType string
	Size        int64
	Content     []byte
	Title       *string
	Description *string
	IsPublic    bool
}

// UpdatePhotoInput: частичное обновление: nil означает "не трогать поле"
type UpdatePhotoInput struct {
	Title       *string
	Description *string
	IsPublic    *bool
}

// IsEmpty сообщает, что обновлять нечего
func (in UpdatePhotoInput) IsEmpty() bool {
	return in.Title == nil && in.Description == nil && in.IsPublic == nil
}

// NormalizeText обрезает пробелы; пустая строка очищает поле
func NormalizeText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// ErrPhotoNotFound: фото удалено или не существовало к моменту записи
var ErrPhotoNotFound = errors.New("photo not found")

// ErrFileNotFound: в хранилище нет файла по этому пути
var ErrFileNotFound = errors.New("file not found")

// FileObject: файл фото для отдачи клиенту. Локальное хранилище открывает
// содержимое, S3 выдает временную подписанную ссылку в RedirectURL
type FileObject struct {
	Content     io.ReadSeekCloser
	ContentType string
	Size        int64
	ModTime     time.Time
	RedirectURL string
}

// FileInfo: результат проверки загруженного файла
type FileInfo struct {
	ContentType string
	Ext         string
	Width       int
	Height      int
}
