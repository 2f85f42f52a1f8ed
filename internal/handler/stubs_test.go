package handler_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/GoArmGo/PhotoGallery/internal/domain"
	"github.com/GoArmGo/PhotoGallery/internal/pagination"
)

type listResult = pagination.Page[domain.PhotoSummary]

// photoStub: PhotoUseCase на функциях; незаданная функция означает, что вызов не ожидается
type photoStub struct {
	upload     func(ctx context.Context, owner domain.Principal, in domain.UploadPhotoInput) (*domain.PhotoSummary, error)
	get        func(ctx context.Context, id, requesterID uuid.UUID) (*domain.PhotoDetail, error)
	openFile   func(ctx context.Context, id, requesterID uuid.UUID) (*domain.FileObject, error)
	update     func(ctx context.Context, id, requesterID uuid.UUID, in domain.UpdatePhotoInput) (*domain.PhotoSummary, error)
	del        func(ctx context.Context, id, requesterID uuid.UUID) error
	toggle     func(ctx context.Context, id, requesterID uuid.UUID) (*domain.PhotoSummary, error)
	mine       func(ctx context.Context, ownerID uuid.UUID, sortBy string, page pagination.Request) (listResult, error)
	public     func(ctx context.Context, sortBy string, page pagination.Request) (listResult, error)
	userPublic func(ctx context.Context, userID uuid.UUID, page pagination.Request) (listResult, error)
}

func (s *photoStub) UploadPhoto(ctx context.Context, owner domain.Principal, in domain.UploadPhotoInput) (*domain.PhotoSummary, error) {
	return s.upload(ctx, owner, in)
}

func (s *photoStub) GetPhoto(ctx context.Context, id, requesterID uuid.UUID) (*domain.PhotoDetail, error) {
	return s.get(ctx, id, requesterID)
}

func (s *photoStub) OpenPhotoFile(ctx context.Context, id, requesterID uuid.UUID) (*domain.FileObject, error) {
	return s.openFile(ctx, id, requesterID)
}

func (s *photoStub) UpdatePhoto(ctx context.Context, id, requesterID uuid.UUID, in domain.UpdatePhotoInput) (*domain.PhotoSummary, error) {
	return s.update(ctx, id, requesterID, in)
}

func (s *photoStub) DeletePhoto(ctx context.Context, id, requesterID uuid.UUID) error {
	return s.del(ctx, id, requesterID)
}

func (s *photoStub) TogglePrivacy(ctx context.Context, id, requesterID uuid.UUID) (*domain.PhotoSummary, error) {
	return s.toggle(ctx, id, requesterID)
}

func (s *photoStub) ListMyPhotos(ctx context.Context, ownerID uuid.UUID, sortBy string, page pagination.Request) (listResult, error) {
	return s.mine(ctx, ownerID, sortBy, page)
}

func (s *photoStub) ListPublicPhotos(ctx context.Context, sortBy string, page pagination.Request) (listResult, error) {
	return s.public(ctx, sortBy, page)
}

func (s *photoStub) ListUserPublicPhotos(ctx context.Context, userID uuid.UUID, page pagination.Request) (listResult, error) {
	return s.userPublic(ctx, userID, page)
}

// interactionStub: InteractionUseCase на функциях
type interactionStub struct {
	like        func(ctx context.Context, photoID uuid.UUID, user domain.Principal) error
	unlike      func(ctx context.Context, photoID, userID uuid.UUID) error
	favorite    func(ctx context.Context, photoID uuid.UUID, user domain.Principal) error
	unfavorite  func(ctx context.Context, photoID, userID uuid.UUID) error
	likeCount   func(ctx context.Context, photoID, requesterID uuid.UUID) (int64, error)
	isLiked     func(ctx context.Context, photoID, userID uuid.UUID) (bool, error)
	isFavorited func(ctx context.Context, photoID, userID uuid.UUID) (bool, error)
	liked       func(ctx context.Context, userID uuid.UUID, sortBy string, page pagination.Request) (listResult, error)
	favorited   func(ctx context.Context, userID uuid.UUID, sortBy string, page pagination.Request) (listResult, error)
}

func (s *interactionStub) Like(ctx context.Context, photoID uuid.UUID, user domain.Principal) error {
	return s.like(ctx, photoID, user)
}

func (s *interactionStub) Unlike(ctx context.Context, photoID, userID uuid.UUID) error {
	return s.unlike(ctx, photoID, userID)
}

func (s *interactionStub) Favorite(ctx context.Context, photoID uuid.UUID, user domain.Principal) error {
	return s.favorite(ctx, photoID, user)
}

func (s *interactionStub) Unfavorite(ctx context.Context, photoID, userID uuid.UUID) error {
	return s.unfavorite(ctx, photoID, userID)
}

func (s *interactionStub) LikeCount(ctx context.Context, photoID, requesterID uuid.UUID) (int64, error) {
	return s.likeCount(ctx, photoID, requesterID)
}

func (s *interactionStub) IsLikedBy(ctx context.Context, photoID, userID uuid.UUID) (bool, error) {
	return s.isLiked(ctx, photoID, userID)
}

func (s *interactionStub) IsFavoritedBy(ctx context.Context, photoID, userID uuid.UUID) (bool, error) {
	return s.isFavorited(ctx, photoID, userID)
}

func (s *interactionStub) LikedPhotos(ctx context.Context, userID uuid.UUID, sortBy string, page pagination.Request) (listResult, error) {
	return s.liked(ctx, userID, sortBy, page)
}

func (s *interactionStub) FavoritedPhotos(ctx context.Context, userID uuid.UUID, sortBy string, page pagination.Request) (listResult, error) {
	return s.favorited(ctx, userID, sortBy, page)
}
