package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/PhotoGallery/internal/apperr"
	"github.com/GoArmGo/PhotoGallery/internal/core/access"
	"github.com/GoArmGo/PhotoGallery/internal/core/ports"
	"github.com/GoArmGo/PhotoGallery/internal/domain"
	"github.com/GoArmGo/PhotoGallery/internal/pagination"
	"github.com/google/uuid"
)

// interactionUseCase implements InteractionUseCase.
// Правила лайка и избранного проверяются внутри транзакции хранилища по
// заблокированной строке фото; дубликаты отсекает уникальное ограничение
type interactionUseCase struct {
	photoStorage       ports.PhotoStorage
	interactionStorage ports.InteractionStorage
	userStorage        ports.UserStorage
	logger             *slog.Logger
}

// NewInteractionUseCase создает новый экземпляр InteractionUseCase
func NewInteractionUseCase(
	photoStorage ports.PhotoStorage,
	interactionStorage ports.InteractionStorage,
	userStorage ports.UserStorage,
	logger *slog.Logger,
) InteractionUseCase {
	return &interactionUseCase{
		photoStorage:       photoStorage,
		interactionStorage: interactionStorage,
		userStorage:        userStorage,
		logger:             logger,
	}
}

// Like ставит лайк публичному чужому фото
func (uc *interactionUseCase) Like(ctx context.Context, photoID uuid.UUID, user domain.Principal) error {
	if user.Anonymous() {
		return apperr.Unauthenticated("Authentication required to like photos")
	}

	return uc.add(ctx, domain.KindLike, photoID, user, "Photo already liked", func(photo *domain.Photo) error {
		if !photo.IsPublic {
			return apperr.InvalidOperation("Cannot like private photos")
		}
		if photo.OwnerID == user.ID {
			return apperr.InvalidOperation("Cannot like your own photo")
		}
		return nil
	})
}

// Unlike снимает лайк
func (uc *interactionUseCase) Unlike(ctx context.Context, photoID, userID uuid.UUID) error {
	return uc.remove(ctx, domain.KindLike, photoID, userID, "Photo is not liked")
}

// Favorite добавляет фото в избранное. Владелец может добавить свое фото
// независимо от приватности, остальные только публичные
func (uc *interactionUseCase) Favorite(ctx context.Context, photoID uuid.UUID, user domain.Principal) error {
	if user.Anonymous() {
		return apperr.Unauthenticated("Authentication required to favorite photos")
	}

	return uc.add(ctx, domain.KindFavorite, photoID, user, "Photo already favorited", func(photo *domain.Photo) error {
		if !photo.IsPublic && photo.OwnerID != user.ID {
			return apperr.InvalidOperation("Cannot favorite another user's private photo")
		}
		return nil
	})
}

// Unfavorite убирает фото из избранного
func (uc *interactionUseCase) Unfavorite(ctx context.Context, photoID, userID uuid.UUID) error {
	return uc.remove(ctx, domain.KindFavorite, photoID, userID, "Photo is not favorited")
}

func (uc *interactionUseCase) LikeCount(ctx context.Context, photoID, requesterID uuid.UUID) (int64, error) {
	photo, err := uc.photo(ctx, photoID)
	if err != nil {
		return 0, err
	}
	if err := access.RequireView(photo, requesterID); err != nil {
		return 0, err
	}

	count, err := uc.interactionStorage.Count(ctx, domain.KindLike, photoID)
	if err != nil {
		return 0, apperr.Internal(fmt.Errorf("usecase: ошибка подсчета лайков фото %s: %w", photoID, err))
	}
	return count, nil
}

func (uc *interactionUseCase) IsLikedBy(ctx context.Context, photoID, userID uuid.UUID) (bool, error) {
	return uc.exists(ctx, domain.KindLike, photoID, userID)
}

func (uc *interactionUseCase) IsFavoritedBy(ctx context.Context, photoID, userID uuid.UUID) (bool, error) {
	return uc.exists(ctx, domain.KindFavorite, photoID, userID)
}

// LikedPhotos: фото, которые лайкнул пользователь и которые ему все еще видны
func (uc *interactionUseCase) LikedPhotos(ctx context.Context, userID uuid.UUID, sortBy string, page pagination.Request) (pagination.Page[domain.PhotoSummary], error) {
	if userID == uuid.Nil {
		return pagination.Page[domain.PhotoSummary]{}, apperr.Unauthenticated("Authentication required")
	}
	filter := domain.PhotoFilter{LikedBy: userID, VisibleTo: userID}
	return listPage(ctx, uc.photoStorage, filter, sortBy, page)
}

// FavoritedPhotos: избранные фото пользователя, включая его собственные приватные
func (uc *interactionUseCase) FavoritedPhotos(ctx context.Context, userID uuid.UUID, sortBy string, page pagination.Request) (pagination.Page[domain.PhotoSummary], error) {
	if userID == uuid.Nil {
		return pagination.Page[domain.PhotoSummary]{}, apperr.Unauthenticated("Authentication required")
	}
	filter := domain.PhotoFilter{FavoritedBy: userID, VisibleTo: userID}
	return listPage(ctx, uc.photoStorage, filter, sortBy, page)
}

// add: общая часть лайка и избранного. rule выполняется хранилищем по
// заблокированной строке фото, поэтому смена приватности или удаление
// не проскакивают между проверкой и вставкой
func (uc *interactionUseCase) add(ctx context.Context, kind domain.InteractionKind, photoID uuid.UUID, user domain.Principal, duplicateMsg string, rule ports.InteractionRule) error {
	if _, err := uc.userStorage.GetOrCreateUser(ctx, user); err != nil {
		return apperr.Internal(fmt.Errorf("usecase: ошибка получения пользователя %s: %w", user.ID, err))
	}

	err := uc.interactionStorage.Add(ctx, &domain.Interaction{
		Kind:    kind,
		PhotoID: photoID,
		UserID:  user.ID,
	}, rule)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPhotoNotFound):
			return apperr.NotFound("Photo")
		case errors.Is(err, domain.ErrDuplicate):
			return apperr.Conflict(duplicateMsg)
		case apperr.As(err) != nil:
			return err
		}
		return apperr.Internal(fmt.Errorf("usecase: ошибка сохранения %s для фото %s: %w", kind, photoID, err))
	}

	uc.logger.Info("interaction added", "kind", kind, "photo_id", photoID, "user_id", user.ID)
	return nil
}

func (uc *interactionUseCase) remove(ctx context.Context, kind domain.InteractionKind, photoID, userID uuid.UUID, missingMsg string) error {
	if userID == uuid.Nil {
		return apperr.Unauthenticated("Authentication required")
	}
	if _, err := uc.photo(ctx, photoID); err != nil {
		return err
	}

	exists, err := uc.interactionStorage.Exists(ctx, kind, photoID, userID)
	if err != nil {
		return apperr.Internal(fmt.Errorf("usecase: ошибка проверки %s для фото %s: %w", kind, photoID, err))
	}
	if !exists {
		return apperr.InvalidOperation(missingMsg)
	}

	removed, err := uc.interactionStorage.Remove(ctx, kind, photoID, userID)
	if err != nil {
		return apperr.Internal(fmt.Errorf("usecase: ошибка удаления %s для фото %s: %w", kind, photoID, err))
	}
	// запись успели удалить параллельным запросом
	if !removed {
		return apperr.InvalidOperation(missingMsg)
	}

	uc.logger.Info("interaction removed", "kind", kind, "photo_id", photoID, "user_id", userID)
	return nil
}

func (uc *interactionUseCase) exists(ctx context.Context, kind domain.InteractionKind, photoID, userID uuid.UUID) (bool, error) {
	if _, err := uc.photo(ctx, photoID); err != nil {
		return false, err
	}
	if userID == uuid.Nil {
		return false, nil
	}
	ok, err := uc.interactionStorage.Exists(ctx, kind, photoID, userID)
	if err != nil {
		return false, apperr.Internal(fmt.Errorf("usecase: ошибка проверки %s для фото %s: %w", kind, photoID, err))
	}
	return ok, nil
}

// photo загружает фото или возвращает NotFound
func (uc *interactionUseCase) photo(ctx context.Context, photoID uuid.UUID) (*domain.Photo, error) {
	photo, err := uc.photoStorage.GetPhotoByID(ctx, photoID)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("usecase: ошибка при получении фото %s: %w", photoID, err))
	}
	if photo == nil {
		return nil, apperr.NotFound("Photo")
	}
	return photo, nil
}
