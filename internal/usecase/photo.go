package usecase

import (
	"context"

	"github.com/GoArmGo/PhotoGallery/internal/domain"
	"github.com/GoArmGo/PhotoGallery/internal/pagination"
	"github.com/google/uuid"
)

// Ограничения на текстовые поля фото
const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 1000
)

// PhotoUseCase определяет бизнес-логику галереи: загрузка, просмотр,
// изменение и удаление фото с учетом прав владельца и приватности.
// requesterID == uuid.Nil означает анонимный запрос
type PhotoUseCase interface {
	// UploadPhoto проверяет файл, сохраняет метаданные, затем файл под ID фото,
	// затем итоговый путь хранения
	UploadPhoto(ctx context.Context, owner domain.Principal, in domain.UploadPhotoInput) (*domain.PhotoSummary, error)

	// GetPhoto возвращает фото, если запрашивающий может его видеть
	GetPhoto(ctx context.Context, id, requesterID uuid.UUID) (*domain.PhotoDetail, error)

	// UpdatePhoto применяет заданные поля; доступно только владельцу
	UpdatePhoto(ctx context.Context, id, requesterID uuid.UUID, in domain.UpdatePhotoInput) (*domain.PhotoSummary, error)

	// DeletePhoto удаляет файл и метаданные вместе с лайками и избранным
	DeletePhoto(ctx context.Context, id, requesterID uuid.UUID) error

	// TogglePrivacy переключает флаг публичности
	TogglePrivacy(ctx context.Context, id, requesterID uuid.UUID) (*domain.PhotoSummary, error)

	// OpenPhotoFile возвращает содержимое или подписанную ссылку на файл фото,
	// если запрашивающий может видеть фото
	OpenPhotoFile(ctx context.Context, id, requesterID uuid.UUID) (*domain.FileObject, error)

	// ListMyPhotos: все фото владельца, включая приватные
	ListMyPhotos(ctx context.Context, ownerID uuid.UUID, sortBy string, page pagination.Request) (pagination.Page[domain.PhotoSummary], error)

	// ListPublicPhotos: публичная лента
	ListPublicPhotos(ctx context.Context, sortBy string, page pagination.Request) (pagination.Page[domain.PhotoSummary], error)

	// ListUserPublicPhotos: публичные фото конкретного пользователя, новые первыми
	ListUserPublicPhotos(ctx context.Context, userID uuid.UUID, page pagination.Request) (pagination.Page[domain.PhotoSummary], error)
}

// InteractionUseCase определяет правила лайков и избранного.
//
// Лайк: публичная оценка: нельзя лайкнуть свое фото и приватное фото.
// Избранное: личная закладка: свое фото можно добавить всегда,
// чужое только если оно публичное
type InteractionUseCase interface {
	Like(ctx context.Context, photoID uuid.UUID, user domain.Principal) error
	Unlike(ctx context.Context, photoID, userID uuid.UUID) error
	Favorite(ctx context.Context, photoID uuid.UUID, user domain.Principal) error
	Unfavorite(ctx context.Context, photoID, userID uuid.UUID) error

	// LikeCount возвращает число лайков фото, видимого запрашивающему
	LikeCount(ctx context.Context, photoID, requesterID uuid.UUID) (int64, error)
	IsLikedBy(ctx context.Context, photoID, userID uuid.UUID) (bool, error)
	IsFavoritedBy(ctx context.Context, photoID, userID uuid.UUID) (bool, error)

	LikedPhotos(ctx context.Context, userID uuid.UUID, sortBy string, page pagination.Request) (pagination.Page[domain.PhotoSummary], error)
	FavoritedPhotos(ctx context.Context, userID uuid.UUID, sortBy string, page pagination.Request) (pagination.Page[domain.PhotoSummary], error)
}
