package domain

import "fmt"

// SortKey: закрытый набор вариантов сортировки списков фото
type SortKey string

const (
	SortNewest        SortKey = "newest"
	SortOldest        SortKey = "oldest"
	SortMostLiked     SortKey = "mostLiked"
	SortMostFavorited SortKey = "mostFavorited"
)

// ErrUnsupportedSort: неизвестный ключ сортировки
type ErrUnsupportedSort struct {
	Key string
}

func (e ErrUnsupportedSort) Error() string {
	return fmt.Sprintf("unsupported sort key %q (allowed: newest, oldest, mostLiked, mostFavorited)", e.Key)
}

// ParseSortKey разбирает параметр sortBy. Отсутствующий параметр означает newest,
// любое другое неизвестное значение: ошибка
func ParseSortKey(raw string) (SortKey, error) {
	switch SortKey(raw) {
	case "":
		return SortNewest, nil
	case SortNewest, SortOldest, SortMostLiked, SortMostFavorited:
		return SortKey(raw), nil
	default:
		return "", ErrUnsupportedSort{Key: raw}
	}
}
