package ports

import (
	"context"

	"github.com/GoArmGo/PhotoGallery/internal/domain"
	"github.com/google/uuid"
)

// PhotoStorage определяет методы для взаимодействия с хранилищем метаданных фотографий.
// Отсутствующая запись возвращается как nil без ошибки
type PhotoStorage interface {
	// CreatePhoto сохраняет метаданные и заполняет ID, UploadOrder и временные метки
	CreatePhoto(ctx context.Context, photo *domain.Photo) error
	GetPhotoByID(ctx context.Context, id uuid.UUID) (*domain.Photo, error)
	GetPhotoSummary(ctx context.Context, id uuid.UUID) (*domain.PhotoSummary, error)
	// SetStoragePath записывает итоговый путь файла после загрузки
	SetStoragePath(ctx context.Context, id uuid.UUID, path string) error
	// UpdatePhotoFields одним запросом меняет только заданные поля фото владельца.
	// nil без ошибки, если строки с таким id и владельцем нет
	UpdatePhotoFields(ctx context.Context, id, ownerID uuid.UUID, in domain.UpdatePhotoInput) (*domain.Photo, error)
	// TogglePrivacy инвертирует is_public на стороне базы; nil без ошибки, если строки нет
	TogglePrivacy(ctx context.Context, id, ownerID uuid.UUID) (*domain.Photo, error)
	// DeletePhoto удаляет фото; лайки и избранное удаляются каскадно
	DeletePhoto(ctx context.Context, id uuid.UUID) error
	ListPhotos(ctx context.Context, filter domain.PhotoFilter, sort domain.SortKey, limit, offset int) ([]domain.PhotoSummary, error)
	CountPhotos(ctx context.Context, filter domain.PhotoFilter) (int64, error)
}

// InteractionRule проверяет бизнес-правила по фото, прочитанному под блокировкой
type InteractionRule func(photo *domain.Photo) error

// InteractionStorage определяет методы для лайков и избранного.
// Уникальность (photo_id, user_id) гарантирует хранилище: повторная вставка
// возвращает domain.ErrDuplicate
type InteractionStorage interface {
	Exists(ctx context.Context, kind domain.InteractionKind, photoID, userID uuid.UUID) (bool, error)
	// Add в одной транзакции блокирует строку фото, вызывает rule, проверяет
	// дубликат и вставляет запись. Ошибка rule возвращается как есть,
	// отсутствующее фото дает domain.ErrPhotoNotFound
	Add(ctx context.Context, interaction *domain.Interaction, rule InteractionRule) error
	// Remove сообщает, была ли запись удалена
	Remove(ctx context.Context, kind domain.InteractionKind, photoID, userID uuid.UUID) (bool, error)
	Count(ctx context.Context, kind domain.InteractionKind, photoID uuid.UUID) (int64, error)
}

// UserStorage определяет методы для взаимодействия с хранилищем пользователей
type UserStorage interface {
	// GetOrCreateUser гарантирует наличие строки пользователя для principal
	GetOrCreateUser(ctx context.Context, principal domain.Principal) (*domain.User, error)
}

// FileStorage определяет интерфейс для работы с файловым хранилищем (локальный диск, S3, MinIO)
type FileStorage interface {
	// ValidateFile проверяет размер и тип файла; ошибка валидации: *apperr.AppError
	ValidateFile(ctx context.Context, in domain.UploadPhotoInput) (domain.FileInfo, error)
	// SaveFile сохраняет содержимое под ключом и возвращает путь хранения
	SaveFile(ctx context.Context, key string, content []byte, contentType string) (string, error)
	// DeleteFile удаляет файл по пути хранения; отсутствие файла ошибкой не считается
	DeleteFile(ctx context.Context, path string) error
	// OpenFile готовит файл к отдаче; отсутствующий файл дает domain.ErrFileNotFound
	OpenFile(ctx context.Context, path string) (*domain.FileObject, error)
}

// PrincipalProvider возвращает аутентифицированного пользователя запроса.
// Нулевой domain.Principal означает анонимный запрос
type PrincipalProvider interface {
	Principal(ctx context.Context) domain.Principal
}
