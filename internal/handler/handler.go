package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/GoArmGo/PhotoGallery/internal/apperr"
	"github.com/GoArmGo/PhotoGallery/internal/core/ports"
	"github.com/GoArmGo/PhotoGallery/internal/domain"
	"github.com/GoArmGo/PhotoGallery/internal/handler/respond"
	"github.com/GoArmGo/PhotoGallery/internal/metrics"
	"github.com/GoArmGo/PhotoGallery/internal/pagination"
	"github.com/GoArmGo/PhotoGallery/internal/usecase"
)

// multipartOverhead: запас на заголовки и текстовые поля multipart-формы
const multipartOverhead = 1 << 20

// PhotoHandler: обработчик HTTP-запросов для работы с фотографиями.
type PhotoHandler struct {
	photoUseCase       usecase.PhotoUseCase
	interactionUseCase usecase.InteractionUseCase
	principals         ports.PrincipalProvider
	uploadLimiter      chan struct{}
	maxUploadBytes     int64
	publicBaseURL      string
	metrics            *metrics.Metrics
	logger             *slog.Logger
}

// NewPhotoHandler создаёт новый экземпляр PhotoHandler.
// uploadLimiter ограничивает число одновременных загрузок,
// publicBaseURL: префикс ссылок на файлы; пустой дает относительные ссылки
func NewPhotoHandler(
	photos usecase.PhotoUseCase,
	interactions usecase.InteractionUseCase,
	principals ports.PrincipalProvider,
	uploadLimiter chan struct{},
	maxUploadBytes int64,
	publicBaseURL string,
	m *metrics.Metrics,
	logger *slog.Logger,
) *PhotoHandler {
	return &PhotoHandler{
		photoUseCase:       photos,
		interactionUseCase: interactions,
		principals:         principals,
		uploadLimiter:      uploadLimiter,
		maxUploadBytes:     maxUploadBytes,
		publicBaseURL:      strings.TrimRight(publicBaseURL, "/"),
		metrics:            m,
		logger:             logger,
	}
}

// Routes регистрирует маршруты /photos. requireAuth оборачивает маршруты,
// которым нужен аутентифицированный пользователь
func (h *PhotoHandler) Routes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Route("/photos", func(r chi.Router) {
		r.Get("/public", h.ListPublicPhotos)
		r.Get("/user/{id}/public", h.ListUserPublicPhotos)
		r.Get("/{id}", h.GetPhoto)
		r.Get("/{id}/file", h.GetPhotoFile)
		r.Get("/{id}/likes", h.LikeCount)
		r.Get("/{id}/like", h.IsLiked)
		r.Get("/{id}/favorite", h.IsFavorited)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Post("/", h.UploadPhoto)
			r.Get("/mine", h.ListMyPhotos)
			r.Get("/liked", h.ListLikedPhotos)
			r.Get("/favorited", h.ListFavoritedPhotos)
			r.Put("/{id}", h.UpdatePhoto)
			r.Delete("/{id}", h.DeletePhoto)
			r.Put("/{id}/toggle-privacy", h.TogglePrivacy)
			r.Post("/{id}/like", h.Like)
			r.Delete("/{id}/like", h.Unlike)
			r.Post("/{id}/favorite", h.Favorite)
			r.Delete("/{id}/favorite", h.Unfavorite)
		})
	})
}

// UploadPhoto: загружает фото из multipart-формы (file, title, description, is_public).
func (h *PhotoHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	owner := h.principals.Principal(r.Context())

	release, err := h.acquireUploadSlot(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer release()

	in, err := h.parseUpload(w, r)
	if err != nil {
		h.metrics.Uploads.WithLabelValues(metrics.Outcome(err)).Inc()
		h.fail(w, r, err)
		return
	}

	h.logger.Info("processing upload",
		"owner_id", owner.ID,
		"filename", in.Filename,
		"size", in.Size,
	)

	photo, err := h.photoUseCase.UploadPhoto(r.Context(), owner, in)
	h.metrics.Uploads.WithLabelValues(metrics.Outcome(err)).Inc()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.logger.Info("photo uploaded", "photo_id", photo.ID, "owner_id", owner.ID)
	photo.URL = h.fileURL(photo.ID)
	respond.JSON(w, http.StatusCreated, photo, h.logger)
}

// acquireUploadSlot ждет свободный слот загрузки, пока жив запрос
func (h *PhotoHandler) acquireUploadSlot(ctx context.Context) (func(), error) {
	select {
	case h.uploadLimiter <- struct{}{}:
		h.metrics.UploadsInFlight.Inc()
		return func() {
			h.metrics.UploadsInFlight.Dec()
			<-h.uploadLimiter
		}, nil
	case <-ctx.Done():
		return nil, apperr.Internal(ctx.Err())
	}
}

func (h *PhotoHandler) parseUpload(w http.ResponseWriter, r *http.Request) (domain.UploadPhotoInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.UploadPhotoInput{}, apperr.Validation("File too large")
		}
		return domain.UploadPhotoInput{}, apperr.Validation("Request must be multipart/form-data with a file field")
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		return domain.UploadPhotoInput{}, apperr.Validation("File is required")
	}
	defer file.Close()

	// на байт больше лимита, чтобы валидатор увидел превышение
	content, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		return domain.UploadPhotoInput{}, apperr.Internal(err)
	}

	in := domain.UploadPhotoInput{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        int64(len(content)),
		Content:     content,
		Title:       formValue(r, "title"),
		Description: formValue(r, "description"),
	}

	if raw := formValue(r, "is_public"); raw != nil {
		isPublic, err := strconv.ParseBool(*raw)
		if err != nil {
			return domain.UploadPhotoInput{}, apperr.Validation("is_public must be a boolean")
		}
		in.IsPublic = isPublic
	}
	return in, nil
}

// formValue возвращает nil, если поле не передано
func formValue(r *http.Request, key string) *string {
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

// GetPhoto: детальная карточка фото.
func (h *PhotoHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := photoID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	photo, err := h.photoUseCase.GetPhoto(r.Context(), id, h.requester(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	photo.URL = h.fileURL(photo.ID)
	respond.JSON(w, http.StatusOK, photo, h.logger)
}

// GetPhotoFile: файл фото с той же проверкой видимости, что и карточка.
// S3 отвечает редиректом на подписанную ссылку, локальный диск отдается напрямую
func (h *PhotoHandler) GetPhotoFile(w http.ResponseWriter, r *http.Request) {
	id, err := photoID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	file, err := h.photoUseCase.OpenPhotoFile(r.Context(), id, h.requester(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "private")
	if file.RedirectURL != "" {
		http.Redirect(w, r, file.RedirectURL, http.StatusFound)
		return
	}
	defer file.Content.Close()

	if file.ContentType != "" {
		w.Header().Set("Content-Type", file.ContentType)
	}
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeContent(w, r, "", file.ModTime, file.Content)
}

// updatePhotoRequest: тело PUT /photos/{id}; отсутствующее поле не меняется,
// пустая строка очищает заголовок или описание
type updatePhotoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	IsPublic    *bool   `json:"is_public"`
}

// UpdatePhoto: частичное обновление фото владельцем.
func (h *PhotoHandler) UpdatePhoto(w http.ResponseWriter, r *http.Request) {
	id, err := photoID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req updatePhotoRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		h.fail(w, r, apperr.Validation("Invalid JSON body"))
		return
	}

	in := domain.UpdatePhotoInput{Title: req.Title, Description: req.Description, IsPublic: req.IsPublic}
	if in.IsEmpty() {
		h.fail(w, r, apperr.Validation("At least one of title, description, is_public is required"))
		return
	}

	photo, err := h.photoUseCase.UpdatePhoto(r.Context(), id, h.requester(r), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	photo.URL = h.fileURL(photo.ID)
	respond.JSON(w, http.StatusOK, photo, h.logger)
}

// DeletePhoto: удаляет фото вместе с файлом.
func (h *PhotoHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	id, err := photoID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.photoUseCase.DeletePhoto(r.Context(), id, h.requester(r)); err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.Info("photo deleted", "photo_id", id)
	respond.NoContent(w)
}

// TogglePrivacy: переключает публичность фото.
func (h *PhotoHandler) TogglePrivacy(w http.ResponseWriter, r *http.Request) {
	id, err := photoID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	photo, err := h.photoUseCase.TogglePrivacy(r.Context(), id, h.requester(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	photo.URL = h.fileURL(photo.ID)
	respond.JSON(w, http.StatusOK, photo, h.logger)
}

func (h *PhotoHandler) ListMyPhotos(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func(ctx context.Context, page pagination.Request) (pagination.Page[domain.PhotoSummary], error) {
		return h.photoUseCase.ListMyPhotos(ctx, h.requester(r), sortBy(r), page)
	})
}

func (h *PhotoHandler) ListPublicPhotos(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func(ctx context.Context, page pagination.Request) (pagination.Page[domain.PhotoSummary], error) {
		return h.photoUseCase.ListPublicPhotos(ctx, sortBy(r), page)
	})
}

func (h *PhotoHandler) ListUserPublicPhotos(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, apperr.Validation("Invalid user id"))
		return
	}
	h.list(w, r, func(ctx context.Context, page pagination.Request) (pagination.Page[domain.PhotoSummary], error) {
		return h.photoUseCase.ListUserPublicPhotos(ctx, userID, page)
	})
}

func (h *PhotoHandler) ListLikedPhotos(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func(ctx context.Context, page pagination.Request) (pagination.Page[domain.PhotoSummary], error) {
		return h.interactionUseCase.LikedPhotos(ctx, h.requester(r), sortBy(r), page)
	})
}

func (h *PhotoHandler) ListFavoritedPhotos(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func(ctx context.Context, page pagination.Request) (pagination.Page[domain.PhotoSummary], error) {
		return h.interactionUseCase.FavoritedPhotos(ctx, h.requester(r), sortBy(r), page)
	})
}

type listFunc func(ctx context.Context, page pagination.Request) (pagination.Page[domain.PhotoSummary], error)

// list: общая часть постраничных списков
func (h *PhotoHandler) list(w http.ResponseWriter, r *http.Request, fetch listFunc) {
	page, err := pagination.FromRequest(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := fetch(r.Context(), page)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	for i := range result.Items {
		result.Items[i].URL = h.fileURL(result.Items[i].ID)
	}
	respond.JSON(w, http.StatusOK, result, h.logger)
}

// fileURL: ссылка на защищенную отдачу файла, а не на само хранилище
func (h *PhotoHandler) fileURL(id uuid.UUID) string {
	return h.publicBaseURL + "/photos/" + id.String() + "/file"
}

func (h *PhotoHandler) requester(r *http.Request) uuid.UUID {
	return h.principals.Principal(r.Context()).ID
}

func (h *PhotoHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	respond.Error(w, r, err, h.logger)
}

func photoID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, apperr.Validation("Invalid photo id")
	}
	return id, nil
}

func sortBy(r *http.Request) string {
	return r.URL.Query().Get("sortBy")
}
