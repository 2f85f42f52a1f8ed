package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/GoArmGo/PhotoGallery/internal/domain"
	"github.com/GoArmGo/PhotoGallery/internal/handler/respond"
	"github.com/GoArmGo/PhotoGallery/internal/metrics"
)

func (h *PhotoHandler) Like(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, domain.KindLike, "add", http.StatusCreated, func(ctx context.Context, id uuid.UUID) error {
		return h.interactionUseCase.Like(ctx, id, h.principals.Principal(ctx))
	})
}

func (h *PhotoHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, domain.KindLike, "remove", http.StatusNoContent, func(ctx context.Context, id uuid.UUID) error {
		return h.interactionUseCase.Unlike(ctx, id, h.principals.Principal(ctx).ID)
	})
}

func (h *PhotoHandler) Favorite(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, domain.KindFavorite, "add", http.StatusCreated, func(ctx context.Context, id uuid.UUID) error {
		return h.interactionUseCase.Favorite(ctx, id, h.principals.Principal(ctx))
	})
}

func (h *PhotoHandler) Unfavorite(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, domain.KindFavorite, "remove", http.StatusNoContent, func(ctx context.Context, id uuid.UUID) error {
		return h.interactionUseCase.Unfavorite(ctx, id, h.principals.Principal(ctx).ID)
	})
}

// mutate выполняет изменение лайка или избранного и считает исход в метриках
func (h *PhotoHandler) mutate(
	w http.ResponseWriter,
	r *http.Request,
	kind domain.InteractionKind,
	action string,
	successStatus int,
	apply func(ctx context.Context, id uuid.UUID) error,
) {
	id, err := photoID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	err = apply(r.Context(), id)
	h.metrics.Interactions.WithLabelValues(string(kind), action, metrics.Outcome(err)).Inc()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.WriteHeader(successStatus)
}

// LikeCount: число лайков фото, видимого запрашивающему.
func (h *PhotoHandler) LikeCount(w http.ResponseWriter, r *http.Request) {
	id, err := photoID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	count, err := h.interactionUseCase.LikeCount(r.Context(), id, h.requester(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]int64{"count": count}, h.logger)
}

// IsLiked: отметил ли запрашивающий фото лайком; для анонима всегда false.
func (h *PhotoHandler) IsLiked(w http.ResponseWriter, r *http.Request) {
	h.check(w, r, "liked", h.interactionUseCase.IsLikedBy)
}

// IsFavorited: добавил ли запрашивающий фото в избранное.
func (h *PhotoHandler) IsFavorited(w http.ResponseWriter, r *http.Request) {
	h.check(w, r, "favorited", h.interactionUseCase.IsFavoritedBy)
}

func (h *PhotoHandler) check(w http.ResponseWriter, r *http.Request, field string, query func(ctx context.Context, photoID, userID uuid.UUID) (bool, error)) {
	id, err := photoID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ok, err := query(r.Context(), id, h.requester(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]bool{field: ok}, h.logger)
}
