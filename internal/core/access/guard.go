// Package access решает, какие операции над фото разрешены запрашивающему.
// Функции чистые: без побочных эффектов и обращений к хранилищу.
package access

import (
	"github.com/google/uuid"

	"github.com/GoArmGo/PhotoGallery/internal/apperr"
	"github.com/GoArmGo/PhotoGallery/internal/domain"
)

// CanView: публичное фото видят все, приватное только владелец.
// uuid.Nil означает анонимного пользователя
func CanView(photo *domain.Photo, requesterID uuid.UUID) bool {
	return photo.IsPublic || isOwner(photo, requesterID)
}

// CanMutate: изменять, удалять и переключать приватность может только владелец
func CanMutate(photo *domain.Photo, requesterID uuid.UUID) bool {
	return isOwner(photo, requesterID)
}

func isOwner(photo *domain.Photo, requesterID uuid.UUID) bool {
	return requesterID != uuid.Nil && photo.OwnerID == requesterID
}

// RequireView переводит решение в ошибку: NotFound если записи нет,
// Unauthorized если фото приватное и запрашивающий не владелец
func RequireView(photo *domain.Photo, requesterID uuid.UUID) error {
	if photo == nil {
		return apperr.NotFound("Photo")
	}
	if !CanView(photo, requesterID) {
		return apperr.Unauthorized("You do not have permission to view this photo: it is private")
	}
	return nil
}

// RequireMutate: то же для изменяющих операций; action попадает в сообщение
func RequireMutate(photo *domain.Photo, requesterID uuid.UUID, action string) error {
	if photo == nil {
		return apperr.NotFound("Photo")
	}
	if !CanMutate(photo, requesterID) {
		return apperr.Unauthorized("You do not have permission to " + action + " this photo: only the owner can")
	}
	return nil
}
