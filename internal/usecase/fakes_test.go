package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/GoArmGo/PhotoGallery/internal/apperr"
	"github.com/GoArmGo/PhotoGallery/internal/core/ports"
	"github.com/GoArmGo/PhotoGallery/internal/domain"
)

var errStorageDown = errors.New("storage unavailable")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type interactionKey struct {
	kind    domain.InteractionKind
	photoID uuid.UUID
	userID  uuid.UUID
}

// memInteractions: in-memory InteractionStorage с уникальностью по ключу
type memInteractions struct {
	mu   sync.Mutex
	rows map[interactionKey]domain.Interaction
	// photos: Add держит photos.mu, как транзакция держит блокировку строки фото
	photos *memPhotos
}

func newMemInteractions() *memInteractions {
	return &memInteractions{rows: map[interactionKey]domain.Interaction{}}
}

func (m *memInteractions) Exists(_ context.Context, kind domain.InteractionKind, photoID, userID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[interactionKey{kind, photoID, userID}]
	return ok, nil
}

func (m *memInteractions) Add(_ context.Context, in *domain.Interaction, rule ports.InteractionRule) error {
	m.photos.mu.Lock()
	defer m.photos.mu.Unlock()
	photo, ok := m.photos.photos[in.PhotoID]
	if !ok {
		return domain.ErrPhotoNotFound
	}
	if rule != nil {
		if err := rule(&photo); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	key := interactionKey{in.Kind, in.PhotoID, in.UserID}
	if _, ok := m.rows[key]; ok {
		return domain.ErrDuplicate
	}
	in.ID = uuid.New()
	in.CreatedAt = time.Now()
	m.rows[key] = *in
	return nil
}

func (m *memInteractions) Remove(_ context.Context, kind domain.InteractionKind, photoID, userID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := interactionKey{kind, photoID, userID}
	if _, ok := m.rows[key]; !ok {
		return false, nil
	}
	delete(m.rows, key)
	return true, nil
}

func (m *memInteractions) Count(_ context.Context, kind domain.InteractionKind, photoID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k := range m.rows {
		if k.kind == kind && k.photoID == photoID {
			n++
		}
	}
	return n, nil
}

func (m *memInteractions) deletePhoto(photoID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.rows {
		if k.photoID == photoID {
			delete(m.rows, k)
		}
	}
}

func (m *memInteractions) has(kind domain.InteractionKind, photoID, userID uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[interactionKey{kind, photoID, userID}]
	return ok
}

// memUsers: in-memory UserStorage
type memUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]domain.User
	// beforeGetOrCreate вызывается в начале GetOrCreateUser, чтобы вклинить параллельное действие
	beforeGetOrCreate func()
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[uuid.UUID]domain.User{}}
}

func (m *memUsers) GetOrCreateUser(_ context.Context, p domain.Principal) (*domain.User, error) {
	if m.beforeGetOrCreate != nil {
		m.beforeGetOrCreate()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[p.ID]; ok {
		return &u, nil
	}
	u := domain.User{ID: p.ID, Email: p.Email, DisplayName: p.Name, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.users[p.ID] = u
	return &u, nil
}

func (m *memUsers) name(id uuid.UUID) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id].DisplayName
}

// memPhotos: in-memory PhotoStorage; фильтры и сортировки повторяют SQL-реализацию
type memPhotos struct {
	mu           sync.Mutex
	photos       map[uuid.UUID]domain.Photo
	seq          int64
	interactions *memInteractions
	users        *memUsers

	createErr error
	updateErr error
	listCalls int
}

func newMemPhotos(interactions *memInteractions, users *memUsers) *memPhotos {
	return &memPhotos{photos: map[uuid.UUID]domain.Photo{}, interactions: interactions, users: users}
}

func (m *memPhotos) CreatePhoto(_ context.Context, p *domain.Photo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.seq++
	p.ID = uuid.New()
	p.UploadOrder = m.seq
	p.CreatedAt = time.Now().Add(time.Duration(m.seq) * time.Millisecond)
	p.UpdatedAt = p.CreatedAt
	m.photos[p.ID] = *p
	return nil
}

func (m *memPhotos) GetPhotoByID(_ context.Context, id uuid.UUID) (*domain.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.photos[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *memPhotos) GetPhotoSummary(ctx context.Context, id uuid.UUID) (*domain.PhotoSummary, error) {
	p, _ := m.GetPhotoByID(ctx, id)
	if p == nil {
		return nil, nil
	}
	s := m.summarize(ctx, *p)
	return &s, nil
}

func (m *memPhotos) summarize(ctx context.Context, p domain.Photo) domain.PhotoSummary {
	likes, _ := m.interactions.Count(ctx, domain.KindLike, p.ID)
	favs, _ := m.interactions.Count(ctx, domain.KindFavorite, p.ID)
	return domain.PhotoSummary{Photo: p, OwnerName: m.users.name(p.OwnerID), LikeCount: likes, FavoriteCount: favs}
}

func (m *memPhotos) SetStoragePath(_ context.Context, id uuid.UUID, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	p, ok := m.photos[id]
	if !ok {
		return errors.New("no rows updated")
	}
	p.StoragePath = path
	p.UpdatedAt = time.Now()
	m.photos[id] = p
	return nil
}

func (m *memPhotos) UpdatePhotoFields(_ context.Context, id, ownerID uuid.UUID, in domain.UpdatePhotoInput) (*domain.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	p, ok := m.photos[id]
	if !ok || p.OwnerID != ownerID {
		return nil, nil
	}
	if in.Title != nil {
		p.Title = domain.NormalizeText(*in.Title)
	}
	if in.Description != nil {
		p.Description = domain.NormalizeText(*in.Description)
	}
	if in.IsPublic != nil {
		p.IsPublic = *in.IsPublic
	}
	p.UpdatedAt = time.Now()
	m.photos[id] = p
	return &p, nil
}

func (m *memPhotos) TogglePrivacy(_ context.Context, id, ownerID uuid.UUID) (*domain.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	p, ok := m.photos[id]
	if !ok || p.OwnerID != ownerID {
		return nil, nil
	}
	p.IsPublic = !p.IsPublic
	p.UpdatedAt = time.Now()
	m.photos[id] = p
	return &p, nil
}

func (m *memPhotos) DeletePhoto(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	delete(m.photos, id)
	m.mu.Unlock()
	m.interactions.deletePhoto(id)
	return nil
}

func (m *memPhotos) matching(filter domain.PhotoFilter) []domain.Photo {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Photo
	for _, p := range m.photos {
		if filter.OwnerID != uuid.Nil && p.OwnerID != filter.OwnerID {
			continue
		}
		if filter.PublicOnly && !p.IsPublic {
			continue
		}
		if filter.VisibleTo != uuid.Nil && !p.IsPublic && p.OwnerID != filter.VisibleTo {
			continue
		}
		if filter.LikedBy != uuid.Nil && !m.interactions.has(domain.KindLike, p.ID, filter.LikedBy) {
			continue
		}
		if filter.FavoritedBy != uuid.Nil && !m.interactions.has(domain.KindFavorite, p.ID, filter.FavoritedBy) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (m *memPhotos) ListPhotos(ctx context.Context, filter domain.PhotoFilter, key domain.SortKey, limit, offset int) ([]domain.PhotoSummary, error) {
	m.listCalls++
	var items []domain.PhotoSummary
	for _, p := range m.matching(filter) {
		items = append(items, m.summarize(ctx, p))
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch key {
		case domain.SortOldest:
			return a.UploadOrder < b.UploadOrder
		case domain.SortMostLiked:
			if a.LikeCount != b.LikeCount {
				return a.LikeCount > b.LikeCount
			}
		case domain.SortMostFavorited:
			if a.FavoriteCount != b.FavoriteCount {
				return a.FavoriteCount > b.FavoriteCount
			}
		}
		return a.UploadOrder > b.UploadOrder
	})
	if offset >= len(items) {
		return nil, nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end], nil
}

func (m *memPhotos) CountPhotos(_ context.Context, filter domain.PhotoFilter) (int64, error) {
	return int64(len(m.matching(filter))), nil
}

// memFiles: in-memory FileStorage
type memFiles struct {
	mu        sync.Mutex
	files     map[string][]byte
	saveErr   error
	deleteErr error
}

func newMemFiles() *memFiles {
	return &memFiles{files: map[string][]byte{}}
}

func (m *memFiles) ValidateFile(_ context.Context, in domain.UploadPhotoInput) (domain.FileInfo, error) {
	if len(in.Content) == 0 {
		return domain.FileInfo{}, apperr.Validation("file is empty")
	}
	if in.ContentType != "image/png" {
		return domain.FileInfo{}, apperr.Validation("unsupported file type")
	}
	return domain.FileInfo{ContentType: "image/png", Ext: ".png", Width: 1, Height: 1}, nil
}

func (m *memFiles) SaveFile(_ context.Context, key string, content []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return "", m.saveErr
	}
	m.files[key] = content
	return key, nil
}

func (m *memFiles) DeleteFile(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.files, path)
	return nil
}

type nopReadSeekCloser struct{ *bytes.Reader }

func (nopReadSeekCloser) Close() error { return nil }

func (m *memFiles) OpenFile(_ context.Context, path string) (*domain.FileObject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.files[path]
	if !ok {
		return nil, domain.ErrFileNotFound
	}
	return &domain.FileObject{
		Content:     nopReadSeekCloser{bytes.NewReader(content)},
		ContentType: "image/png",
		Size:        int64(len(content)),
	}, nil
}

func (m *memFiles) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}

// fixture собирает оба usecase поверх общих in-memory хранилищ
type fixture struct {
	photos       *memPhotos
	interactions *memInteractions
	users        *memUsers
	files        *memFiles
}

func newFixture() *fixture {
	interactions := newMemInteractions()
	users := newMemUsers()
	photos := newMemPhotos(interactions, users)
	interactions.photos = photos
	return &fixture{
		photos:       photos,
		interactions: interactions,
		users:        users,
		files:        newMemFiles(),
	}
}

func newPrincipal() domain.Principal {
	return domain.Principal{ID: uuid.New(), Email: gofakeit.Email(), Name: gofakeit.Name()}
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func pngUpload(isPublic bool) domain.UploadPhotoInput {
	return domain.UploadPhotoInput{
		Filename:    "photo.png",
		ContentType: "image/png",
		Size:        4,
		Content:     []byte{0x89, 'P', 'N', 'G'},
		Title:       strPtr(gofakeit.Sentence(3)),
		Description: strPtr(gofakeit.Sentence(10)),
		IsPublic:    isPublic,
	}
}
