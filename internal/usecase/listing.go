package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/GoArmGo/PhotoGallery/internal/apperr"
	"github.com/GoArmGo/PhotoGallery/internal/core/ports"
	"github.com/GoArmGo/PhotoGallery/internal/domain"
	"github.com/GoArmGo/PhotoGallery/internal/pagination"
)

// parseSort переводит неизвестный ключ сортировки в ошибку валидации
// до того, как выполнится хоть один запрос
func parseSort(raw string) (domain.SortKey, error) {
	key, err := domain.ParseSortKey(raw)
	if err != nil {
		var unsupported domain.ErrUnsupportedSort
		if errors.As(err, &unsupported) {
			return "", apperr.Validation(unsupported.Error())
		}
		return "", err
	}
	return key, nil
}

// listPage выбирает страницу и общее количество по одному и тому же фильтру,
// чтобы метаданные совпадали со списком
func listPage(
	ctx context.Context,
	photos ports.PhotoStorage,
	filter domain.PhotoFilter,
	sortBy string,
	req pagination.Request,
) (pagination.Page[domain.PhotoSummary], error) {
	sort, err := parseSort(sortBy)
	if err != nil {
		return pagination.Page[domain.PhotoSummary]{}, err
	}
	if err := req.Validate(); err != nil {
		return pagination.Page[domain.PhotoSummary]{}, err
	}

	total, err := photos.CountPhotos(ctx, filter)
	if err != nil {
		return pagination.Page[domain.PhotoSummary]{}, apperr.Internal(fmt.Errorf("usecase: ошибка подсчета фото: %w", err))
	}

	var items []domain.PhotoSummary
	if int64(req.Offset()) < total {
		items, err = photos.ListPhotos(ctx, filter, sort, req.Size, req.Offset())
		if err != nil {
			return pagination.Page[domain.PhotoSummary]{}, apperr.Internal(fmt.Errorf("usecase: ошибка получения списка фото: %w", err))
		}
	}

	return pagination.Paginate(items, req.Page, total, req.Size), nil
}
