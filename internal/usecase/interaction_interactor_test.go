package usecase_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoArmGo/PhotoGallery/internal/apperr"
	"github.com/GoArmGo/PhotoGallery/internal/domain"
	"github.com/GoArmGo/PhotoGallery/internal/pagination"
	"github.com/GoArmGo/PhotoGallery/internal/usecase"
)

func newInteractionUseCase(f *fixture) usecase.InteractionUseCase {
	return usecase.NewInteractionUseCase(f.photos, f.interactions, f.users, discardLogger())
}

// seedPhoto загружает фото через usecase, чтобы владелец попал в хранилище пользователей
func seedPhoto(t *testing.T, f *fixture, owner domain.Principal, isPublic bool) *domain.PhotoSummary {
	t.Helper()
	photo, err := newPhotoUseCase(f).UploadPhoto(context.Background(), owner, pngUpload(isPublic))
	require.NoError(t, err)
	return photo
}

func TestLikeRules(t *testing.T) {
	f := newFixture()
	ledger := newInteractionUseCase(f)
	ctx := context.Background()
	owner := newPrincipal()
	fan := newPrincipal()

	public := seedPhoto(t, f, owner, true)
	private := seedPhoto(t, f, owner, false)

	t.Run("like_then_duplicate_conflicts", func(t *testing.T) {
		require.NoError(t, ledger.Like(ctx, public.ID, fan))

		liked, err := ledger.IsLikedBy(ctx, public.ID, fan.ID)
		require.NoError(t, err)
		assert.True(t, liked)

		assertCode(t, ledger.Like(ctx, public.ID, fan), apperr.CodeConflict)
	})

	t.Run("own_photo_rejected", func(t *testing.T) {
		assertCode(t, ledger.Like(ctx, public.ID, owner), apperr.CodeInvalidOperation)
	})

	t.Run("private_photo_rejected", func(t *testing.T) {
		err := ledger.Like(ctx, private.ID, fan)
		assertCode(t, err, apperr.CodeInvalidOperation)
		assert.Contains(t, err.Error(), "private")
	})

	t.Run("own_private_photo_rejected", func(t *testing.T) {
		assertCode(t, ledger.Like(ctx, private.ID, owner), apperr.CodeInvalidOperation)
	})

	t.Run("missing_photo", func(t *testing.T) {
		assertCode(t, ledger.Like(ctx, uuid.New(), fan), apperr.CodeNotFound)
	})

	t.Run("anonymous", func(t *testing.T) {
		assertCode(t, ledger.Like(ctx, public.ID, domain.Principal{}), apperr.CodeUnauthenticated)
	})
}

func TestUnlike(t *testing.T) {
	f := newFixture()
	ledger := newInteractionUseCase(f)
	ctx := context.Background()
	photo := seedPhoto(t, f, newPrincipal(), true)
	fan := newPrincipal()

	assertCode(t, ledger.Unlike(ctx, photo.ID, fan.ID), apperr.CodeInvalidOperation)

	require.NoError(t, ledger.Like(ctx, photo.ID, fan))
	require.NoError(t, ledger.Unlike(ctx, photo.ID, fan.ID))

	liked, err := ledger.IsLikedBy(ctx, photo.ID, fan.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	assertCode(t, ledger.Unlike(ctx, uuid.New(), fan.ID), apperr.CodeNotFound)
}

func TestFavoriteRules(t *testing.T) {
	f := newFixture()
	ledger := newInteractionUseCase(f)
	ctx := context.Background()
	owner := newPrincipal()
	other := newPrincipal()

	private := seedPhoto(t, f, owner, false)
	public := seedPhoto(t, f, owner, true)

	require.NoError(t, ledger.Favorite(ctx, private.ID, owner), "owner may favorite own private photo")
	require.NoError(t, ledger.Favorite(ctx, public.ID, owner), "owner may favorite own public photo")
	assertCode(t, ledger.Favorite(ctx, private.ID, other), apperr.CodeInvalidOperation)
	require.NoError(t, ledger.Favorite(ctx, public.ID, other))
	assertCode(t, ledger.Favorite(ctx, public.ID, other), apperr.CodeConflict)

	favorited, err := ledger.IsFavoritedBy(ctx, private.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, favorited)

	assertCode(t, ledger.Unfavorite(ctx, private.ID, other.ID), apperr.CodeInvalidOperation)
	require.NoError(t, ledger.Unfavorite(ctx, public.ID, other.ID))

	favorited, err = ledger.IsFavoritedBy(ctx, public.ID, other.ID)
	require.NoError(t, err)
	assert.False(t, favorited)
}

func TestDuplicateInsertRaceBecomesConflict(t *testing.T) {
	f := newFixture()
	ledger := newInteractionUseCase(f)
	ctx := context.Background()
	photo := seedPhoto(t, f, newPrincipal(), true)
	fan := newPrincipal()

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = ledger.Like(ctx, photo.ID, fan)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assertCode(t, err, apperr.CodeConflict)
	}
	assert.Equal(t, 1, succeeded)

	count, err := f.interactions.Count(ctx, domain.KindLike, photo.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestLikeRechecksRulesAgainstCurrentPhoto(t *testing.T) {
	f := newFixture()
	ledger := newInteractionUseCase(f)
	photos := newPhotoUseCase(f)
	ctx := context.Background()
	owner := newPrincipal()
	fan := newPrincipal()
	photo := seedPhoto(t, f, owner, true)

	// владелец скрывает фото, пока лайк уже в работе
	var once sync.Once
	f.users.beforeGetOrCreate = func() {
		once.Do(func() {
			_, err := photos.TogglePrivacy(ctx, photo.ID, owner.ID)
			require.NoError(t, err)
		})
	}

	assertCode(t, ledger.Like(ctx, photo.ID, fan), apperr.CodeInvalidOperation)
	assertCode(t, ledger.Favorite(ctx, photo.ID, fan), apperr.CodeInvalidOperation)
	assert.Empty(t, f.interactions.rows)
}

func TestFavoriteOfConcurrentlyDeletedPhotoIsNotFound(t *testing.T) {
	f := newFixture()
	ledger := newInteractionUseCase(f)
	photos := newPhotoUseCase(f)
	ctx := context.Background()
	owner := newPrincipal()
	photo := seedPhoto(t, f, owner, true)

	f.users.beforeGetOrCreate = func() {
		_ = photos.DeletePhoto(ctx, photo.ID, owner.ID)
	}

	assertCode(t, ledger.Favorite(ctx, photo.ID, newPrincipal()), apperr.CodeNotFound)
	assert.Empty(t, f.interactions.rows)
}

func TestLikeCount(t *testing.T) {
	f := newFixture()
	ledger := newInteractionUseCase(f)
	ctx := context.Background()
	owner := newPrincipal()
	photo := seedPhoto(t, f, owner, true)

	for i := 0; i < 3; i++ {
		require.NoError(t, ledger.Like(ctx, photo.ID, newPrincipal()))
	}

	count, err := ledger.LikeCount(ctx, photo.ID, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	private := seedPhoto(t, f, owner, false)
	_, err = ledger.LikeCount(ctx, private.ID, uuid.New())
	assertCode(t, err, apperr.CodeUnauthorized)

	count, err = ledger.LikeCount(ctx, private.ID, owner.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = ledger.LikeCount(ctx, uuid.New(), owner.ID)
	assertCode(t, err, apperr.CodeNotFound)
}

func TestLikedAndFavoritedPhotos(t *testing.T) {
	f := newFixture()
	ledger := newInteractionUseCase(f)
	photos := newPhotoUseCase(f)
	ctx := context.Background()
	author := newPrincipal()
	me := newPrincipal()

	a := seedPhoto(t, f, author, true)
	b := seedPhoto(t, f, author, true)
	mine := seedPhoto(t, f, me, false)

	require.NoError(t, ledger.Like(ctx, a.ID, me))
	require.NoError(t, ledger.Like(ctx, b.ID, me))
	require.NoError(t, ledger.Like(ctx, b.ID, newPrincipal()))
	require.NoError(t, ledger.Favorite(ctx, mine.ID, me))
	require.NoError(t, ledger.Favorite(ctx, a.ID, me))

	liked, err := ledger.LikedPhotos(ctx, me.ID, "mostLiked", pagination.Request{Page: 0, Size: 12})
	require.NoError(t, err)
	require.Len(t, liked.Items, 2)
	assert.Equal(t, b.ID, liked.Items[0].ID)
	assert.Equal(t, int64(2), liked.Items[0].LikeCount)

	favorited, err := ledger.FavoritedPhotos(ctx, me.ID, "", pagination.Request{Page: 0, Size: 12})
	require.NoError(t, err)
	assert.Equal(t, int64(2), favorited.TotalItems)

	// фото, ставшее приватным, пропадает из чужих списков
	_, err = photos.TogglePrivacy(ctx, a.ID, author.ID)
	require.NoError(t, err)

	liked, err = ledger.LikedPhotos(ctx, me.ID, "newest", pagination.Request{Page: 0, Size: 12})
	require.NoError(t, err)
	assert.Equal(t, int64(1), liked.TotalItems)

	favorited, err = ledger.FavoritedPhotos(ctx, me.ID, "newest", pagination.Request{Page: 0, Size: 12})
	require.NoError(t, err)
	require.Equal(t, int64(1), favorited.TotalItems)
	assert.Equal(t, mine.ID, favorited.Items[0].ID)

	_, err = ledger.FavoritedPhotos(ctx, me.ID, "random", pagination.Request{Page: 0, Size: 12})
	assertCode(t, err, apperr.CodeValidation)

	_, err = ledger.LikedPhotos(ctx, uuid.Nil, "newest", pagination.Request{Page: 0, Size: 12})
	assertCode(t, err, apperr.CodeUnauthenticated)
}
