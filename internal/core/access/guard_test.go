package access_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/GoArmGo/PhotoGallery/internal/apperr"
	"github.com/GoArmGo/PhotoGallery/internal/core/access"
	"github.com/GoArmGo/PhotoGallery/internal/domain"
)

func TestCanView(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()

	for _, isPublic := range []bool{true, false} {
		photo := &domain.Photo{ID: uuid.New(), OwnerID: owner, IsPublic: isPublic}
		for _, requester := range []uuid.UUID{owner, other, uuid.Nil} {
			want := isPublic || requester == owner
			assert.Equal(t, want, access.CanView(photo, requester),
				"public=%v requester_is_owner=%v anonymous=%v", isPublic, requester == owner, requester == uuid.Nil)
		}
	}
}

func TestCanMutate(t *testing.T) {
	owner := uuid.New()
	photo := &domain.Photo{ID: uuid.New(), OwnerID: owner, IsPublic: true}

	assert.True(t, access.CanMutate(photo, owner))
	assert.False(t, access.CanMutate(photo, uuid.New()))
	assert.False(t, access.CanMutate(photo, uuid.Nil))
}

func TestRequireView(t *testing.T) {
	owner := uuid.New()
	private := &domain.Photo{ID: uuid.New(), OwnerID: owner}

	assert.True(t, apperr.HasCode(access.RequireView(nil, owner), apperr.CodeNotFound))
	assert.True(t, apperr.HasCode(access.RequireView(private, uuid.New()), apperr.CodeUnauthorized))
	assert.True(t, apperr.HasCode(access.RequireView(private, uuid.Nil), apperr.CodeUnauthorized))
	assert.NoError(t, access.RequireView(private, owner))
}

func TestRequireMutate(t *testing.T) {
	owner := uuid.New()
	photo := &domain.Photo{ID: uuid.New(), OwnerID: owner, IsPublic: true}

	err := access.RequireMutate(photo, uuid.New(), "delete")
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))
	assert.Contains(t, err.Error(), "delete")

	assert.True(t, apperr.HasCode(access.RequireMutate(nil, owner, "update"), apperr.CodeNotFound))
	assert.NoError(t, access.RequireMutate(photo, owner, "update"))
}
