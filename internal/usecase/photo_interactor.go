package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/GoArmGo/PhotoGallery/internal/apperr"
	"github.com/GoArmGo/PhotoGallery/internal/core/access"
	"github.com/GoArmGo/PhotoGallery/internal/core/ports"
	"github.com/GoArmGo/PhotoGallery/internal/domain"
	"github.com/GoArmGo/PhotoGallery/internal/pagination"
	"github.com/google/uuid"
)

// photoUseCase implements PhotoUseCase
type photoUseCase struct {
	photoStorage       ports.PhotoStorage
	interactionStorage ports.InteractionStorage
	userStorage        ports.UserStorage
	fileStorage        ports.FileStorage
	logger             *slog.Logger
}

// NewPhotoUseCase создает новый экземпляр PhotoUseCase
func NewPhotoUseCase(
	photoStorage ports.PhotoStorage,
	interactionStorage ports.InteractionStorage,
	userStorage ports.UserStorage,
	fileStorage ports.FileStorage,
	logger *slog.Logger,
) PhotoUseCase {
	return &photoUseCase{
		photoStorage:       photoStorage,
		interactionStorage: interactionStorage,
		userStorage:        userStorage,
		fileStorage:        fileStorage,
		logger:             logger,
	}
}

// UploadPhoto загружает фото в два этапа: сначала метаданные (чтобы получить ID),
// затем файл под ключом с этим ID, затем итоговый путь хранения.
// При сбое после записи метаданных уже сохраненное откатывается
func (uc *photoUseCase) UploadPhoto(ctx context.Context, owner domain.Principal, in domain.UploadPhotoInput) (*domain.PhotoSummary, error) {
	if owner.Anonymous() {
		return nil, apperr.Unauthenticated("Authentication required to upload photos")
	}
	if err := validateText(in.Title, in.Description); err != nil {
		return nil, err
	}

	// 1. Проверка файла файловым хранилищем
	info, err := uc.fileStorage.ValidateFile(ctx, in)
	if err != nil {
		if apperr.As(err) != nil {
			return nil, err
		}
		return nil, apperr.Internal(fmt.Errorf("usecase: ошибка проверки файла: %w", err))
	}

	user, err := uc.userStorage.GetOrCreateUser(ctx, owner)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("usecase: ошибка получения пользователя %s: %w", owner.ID, err))
	}

	// 2. Метаданные без пути хранения
	photo := &domain.Photo{
		OwnerID:     owner.ID,
		Title:       trimmed(in.Title),
		Description: trimmed(in.Description),
		IsPublic:    in.IsPublic,
	}
	if err := uc.photoStorage.CreatePhoto(ctx, photo); err != nil {
		return nil, apperr.Internal(fmt.Errorf("usecase: ошибка сохранения метаданных фото: %w", err))
	}

	// 3. Файл под ключом, построенным из ID фото
	key := fmt.Sprintf("photos/%s/%s%s", owner.ID, photo.ID, info.Ext)
	path, err := uc.fileStorage.SaveFile(ctx, key, in.Content, info.ContentType)
	if err != nil {
		uc.rollbackUpload(ctx, photo.ID, "")
		return nil, apperr.Internal(fmt.Errorf("usecase: ошибка сохранения файла фото %s: %w", photo.ID, err))
	}

	// 4. Итоговый путь хранения
	photo.StoragePath = path
	if err := uc.photoStorage.SetStoragePath(ctx, photo.ID, path); err != nil {
		uc.rollbackUpload(ctx, photo.ID, path)
		return nil, apperr.Internal(fmt.Errorf("usecase: ошибка сохранения пути фото %s: %w", photo.ID, err))
	}

	uc.logger.Info("photo uploaded",
		"photo_id", photo.ID,
		"owner_id", owner.ID,
		"content_type", info.ContentType,
		"width", info.Width,
		"height", info.Height,
	)

	return &domain.PhotoSummary{
		Photo:     *photo,
		OwnerName: user.DisplayName,
	}, nil
}

// rollbackUpload убирает частично сохраненную загрузку. Выполняется даже если
// запрос уже отменен
func (uc *photoUseCase) rollbackUpload(ctx context.Context, photoID uuid.UUID, path string) {
	ctx = context.WithoutCancel(ctx)
	if path != "" {
		if err := uc.fileStorage.DeleteFile(ctx, path); err != nil {
			uc.logger.Error("failed to remove file during upload rollback", "photo_id", photoID, "path", path, "error", err)
		}
	}
	if err := uc.photoStorage.DeletePhoto(ctx, photoID); err != nil {
		uc.logger.Error("failed to remove metadata during upload rollback", "photo_id", photoID, "error", err)
	}
}

// GetPhoto получает детали фото из бд с проверкой видимости
func (uc *photoUseCase) GetPhoto(ctx context.Context, id, requesterID uuid.UUID) (*domain.PhotoDetail, error) {
	summary, err := uc.photoStorage.GetPhotoSummary(ctx, id)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("usecase: ошибка при получении фото %s: %w", id, err))
	}
	if summary == nil {
		return nil, apperr.NotFound("Photo")
	}
	if err := access.RequireView(&summary.Photo, requesterID); err != nil {
		return nil, err
	}

	detail := &domain.PhotoDetail{PhotoSummary: *summary}

	if requesterID != uuid.Nil {
		detail.LikedByMe, err = uc.interactionStorage.Exists(ctx, domain.KindLike, id, requesterID)
		if err != nil {
			return nil, apperr.Internal(fmt.Errorf("usecase: ошибка проверки лайка фото %s: %w", id, err))
		}
		detail.FavoritedByMe, err = uc.interactionStorage.Exists(ctx, domain.KindFavorite, id, requesterID)
		if err != nil {
			return nil, apperr.Internal(fmt.Errorf("usecase: ошибка проверки избранного фото %s: %w", id, err))
		}
	}

	return detail, nil
}

// UpdatePhoto применяет частичное обновление. В базу уходят только заданные поля,
// поэтому параллельные правки разных полей не затирают друг друга
func (uc *photoUseCase) UpdatePhoto(ctx context.Context, id, requesterID uuid.UUID, in domain.UpdatePhotoInput) (*domain.PhotoSummary, error) {
	if err := validateText(in.Title, in.Description); err != nil {
		return nil, err
	}

	if _, err := uc.loadForMutation(ctx, id, requesterID, "update"); err != nil {
		return nil, err
	}

	if !in.IsEmpty() {
		photo, err := uc.photoStorage.UpdatePhotoFields(ctx, id, requesterID, in)
		if err != nil {
			return nil, apperr.Internal(fmt.Errorf("usecase: ошибка при обновлении фото %s: %w", id, err))
		}
		// фото удалили между проверкой и записью
		if photo == nil {
			return nil, apperr.NotFound("Photo")
		}
		uc.logger.Info("photo updated", "photo_id", id, "owner_id", requesterID)
	}

	return uc.summary(ctx, id)
}

// DeletePhoto удаляет файл, затем метаданные
func (uc *photoUseCase) DeletePhoto(ctx context.Context, id, requesterID uuid.UUID) error {
	photo, err := uc.loadForMutation(ctx, id, requesterID, "delete")
	if err != nil {
		return err
	}

	if photo.StoragePath != "" {
		if err := uc.fileStorage.DeleteFile(ctx, photo.StoragePath); err != nil {
			return apperr.Internal(fmt.Errorf("usecase: ошибка удаления файла фото %s: %w", id, err))
		}
	}
	if err := uc.photoStorage.DeletePhoto(ctx, id); err != nil {
		return apperr.Internal(fmt.Errorf("usecase: ошибка удаления фото %s: %w", id, err))
	}

	uc.logger.Info("photo deleted", "photo_id", id, "owner_id", requesterID)
	return nil
}

// OpenPhotoFile отдает файл фото с той же проверкой видимости, что и GetPhoto
func (uc *photoUseCase) OpenPhotoFile(ctx context.Context, id, requesterID uuid.UUID) (*domain.FileObject, error) {
	photo, err := uc.photoStorage.GetPhotoByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("usecase: ошибка при получении фото %s: %w", id, err))
	}
	if err := access.RequireView(photo, requesterID); err != nil {
		return nil, err
	}
	if photo.StoragePath == "" {
		return nil, apperr.NotFound("Photo file")
	}

	file, err := uc.fileStorage.OpenFile(ctx, photo.StoragePath)
	if err != nil {
		if errors.Is(err, domain.ErrFileNotFound) {
			uc.logger.Warn("photo file is missing in storage", "photo_id", id, "path", photo.StoragePath)
			return nil, apperr.NotFound("Photo file")
		}
		return nil, apperr.Internal(fmt.Errorf("usecase: ошибка открытия файла фото %s: %w", id, err))
	}
	return file, nil
}

// TogglePrivacy переключает публичность фото. Инверсия выполняется в хранилище,
// два параллельных переключения возвращают исходное значение
func (uc *photoUseCase) TogglePrivacy(ctx context.Context, id, requesterID uuid.UUID) (*domain.PhotoSummary, error) {
	if _, err := uc.loadForMutation(ctx, id, requesterID, "change privacy of"); err != nil {
		return nil, err
	}

	photo, err := uc.photoStorage.TogglePrivacy(ctx, id, requesterID)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("usecase: ошибка смены приватности фото %s: %w", id, err))
	}
	if photo == nil {
		return nil, apperr.NotFound("Photo")
	}

	uc.logger.Info("photo privacy toggled", "photo_id", id, "is_public", photo.IsPublic)
	return uc.summary(ctx, id)
}

func (uc *photoUseCase) ListMyPhotos(ctx context.Context, ownerID uuid.UUID, sortBy string, page pagination.Request) (pagination.Page[domain.PhotoSummary], error) {
	if ownerID == uuid.Nil {
		return pagination.Page[domain.PhotoSummary]{}, apperr.Unauthenticated("Authentication required")
	}
	return listPage(ctx, uc.photoStorage, domain.PhotoFilter{OwnerID: ownerID}, sortBy, page)
}

func (uc *photoUseCase) ListPublicPhotos(ctx context.Context, sortBy string, page pagination.Request) (pagination.Page[domain.PhotoSummary], error) {
	return listPage(ctx, uc.photoStorage, domain.PhotoFilter{PublicOnly: true}, sortBy, page)
}

func (uc *photoUseCase) ListUserPublicPhotos(ctx context.Context, userID uuid.UUID, page pagination.Request) (pagination.Page[domain.PhotoSummary], error) {
	filter := domain.PhotoFilter{OwnerID: userID, PublicOnly: true}
	return listPage(ctx, uc.photoStorage, filter, string(domain.SortNewest), page)
}

// loadForMutation загружает фото и проверяет, что запрашивающий: владелец
func (uc *photoUseCase) loadForMutation(ctx context.Context, id, requesterID uuid.UUID, action string) (*domain.Photo, error) {
	if requesterID == uuid.Nil {
		return nil, apperr.Unauthenticated("Authentication required")
	}
	photo, err := uc.photoStorage.GetPhotoByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("usecase: ошибка при получении фото %s: %w", id, err))
	}
	if err := access.RequireMutate(photo, requesterID, action); err != nil {
		return nil, err
	}
	return photo, nil
}

func (uc *photoUseCase) summary(ctx context.Context, id uuid.UUID) (*domain.PhotoSummary, error) {
	summary, err := uc.photoStorage.GetPhotoSummary(ctx, id)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("usecase: ошибка при получении фото %s: %w", id, err))
	}
	if summary == nil {
		return nil, apperr.NotFound("Photo")
	}
	return summary, nil
}

func validateText(title, description *string) error {
	if title != nil && utf8.RuneCountInString(*title) > MaxTitleLength {
		return apperr.Validation(fmt.Sprintf("title must be at most %d characters", MaxTitleLength))
	}
	if description != nil && utf8.RuneCountInString(*description) > MaxDescriptionLength {
		return apperr.Validation(fmt.Sprintf("description must be at most %d characters", MaxDescriptionLength))
	}
	return nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	return domain.NormalizeText(*s)
}
