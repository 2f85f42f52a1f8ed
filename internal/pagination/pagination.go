// Package pagination вычисляет метаданные страницы и разбирает параметры
// page/size из запроса. Страницы нумеруются с нуля.
package pagination

import (
	"math"
	"net/http"
	"strconv"

	"github.com/GoArmGo/PhotoGallery/internal/apperr"
)

const (
	// DefaultSize: размер страницы, если size не указан
	DefaultSize = 12
	// MaxSize: верхняя граница размера страницы
	MaxSize = 100
	// MaxPage: верхняя граница номера страницы; Page*Size не выходит за int32
	MaxPage = math.MaxInt32 / MaxSize
)

// Page: страница результатов вместе с производными метаданными
type Page[T any] struct {
	Items       []T   `json:"items"`
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
	PageSize    int   `json:"page_size"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

// Paginate собирает Page из уже выбранных элементов.
//
// totalCount и pageSize должны быть теми же, что использовались при выборке items:
// метаданные не пересчитываются по len(items), последняя страница законно короче.
func Paginate[T any](items []T, page int, totalCount int64, pageSize int) Page[T] {
	totalPages := 0
	if pageSize > 0 && totalCount > 0 {
		totalPages = int((totalCount + int64(pageSize) - 1) / int64(pageSize))
	}
	if items == nil {
		items = []T{}
	}

	return Page[T]{
		Items:       items,
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalItems:  totalCount,
		PageSize:    pageSize,
		HasNext:     page < totalPages-1,
		HasPrevious: page > 0,
	}
}

// Map преобразует элементы страницы, сохраняя метаданные
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, len(p.Items))
	for i, item := range p.Items {
		out[i] = fn(item)
	}
	return Page[U]{
		Items:       out,
		CurrentPage: p.CurrentPage,
		TotalPages:  p.TotalPages,
		TotalItems:  p.TotalItems,
		PageSize:    p.PageSize,
		HasNext:     p.HasNext,
		HasPrevious: p.HasPrevious,
	}
}

// Request: запрошенная страница
type Request struct {
	Page int
	Size int
}

// Offset: значение OFFSET для SQL
func (r Request) Offset() int {
	return r.Page * r.Size
}

// Validate проверяет границы page и size
func (r Request) Validate() error {
	if r.Page < 0 {
		return apperr.Validation("page must be zero or greater")
	}
	if r.Page > MaxPage {
		return apperr.Validation("page must be at most " + strconv.Itoa(MaxPage))
	}
	if r.Size < 1 || r.Size > MaxSize {
		return apperr.Validation("size must be between 1 and " + strconv.Itoa(MaxSize))
	}
	return nil
}

// FromRequest разбирает параметры page и size. Отсутствующие параметры
// получают значения по умолчанию, некорректные возвращают ошибку валидации
func FromRequest(r *http.Request) (Request, error) {
	page, err := intParam(r, "page", 0)
	if err != nil {
		return Request{}, err
	}
	size, err := intParam(r, "size", DefaultSize)
	if err != nil {
		return Request{}, err
	}

	req := Request{Page: page, Size: size}
	if err := req.Validate(); err != nil {
		return Request{}, err
	}
	return req, nil
}

func intParam(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation(key + " must be an integer")
	}
	return n, nil
}
