// Package apperr описывает таксономию ошибок галереи.
//
// Каждая бизнес-ошибка, покидающая usecase-слой, является *AppError с
// машиночитаемым кодом и безопасным для клиента сообщением. Инфраструктурные
// сбои оборачиваются через Internal: причина логируется, но клиенту не уходит.
package apperr

import (
	"errors"
	"net/http"
)

// Коды ошибок
const (
	CodeNotFound         = "NOT_FOUND"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeUnauthenticated  = "UNAUTHENTICATED"
	CodeInvalidOperation = "INVALID_OPERATION"
	CodeConflict         = "CONFLICT"
	CodeValidation       = "VALIDATION_ERROR"
	CodeInternal         = "INTERNAL_ERROR"
)

// AppError: ошибка с кодом, сообщением и HTTP-статусом
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"error"`
	HTTPStatus int    `json:"-"`
	// Cause только для логов сервера
	Cause error `json:"-"`
}

func (e *AppError) Error() string { return e.Message }

func (e *AppError) Unwrap() error { return e.Cause }

// NotFound: записи с таким идентификатором нет
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// Unauthorized: запись существует, но у запрашивающего нет прав.
// Сообщение должно объяснять причину отказа
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// Unauthenticated: эндпоинт требует аутентификации, а principal отсутствует
func Unauthenticated(msg string) *AppError {
	return &AppError{
		Code:       CodeUnauthenticated,
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// InvalidOperation: нарушение бизнес-правила
func InvalidOperation(msg string) *AppError {
	return &AppError{
		Code:       CodeInvalidOperation,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
	}
}

// Conflict: дубликат лайка или избранного
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// Validation: некорректный ввод, отклоненный до бизнес-правил
func Validation(msg string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
	}
}

// Internal оборачивает непредвиденную инфраструктурную ошибку
func Internal(cause error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// As достает *AppError из цепочки ошибок, nil если его нет
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// HasCode сообщает, что err является *AppError с указанным кодом
func HasCode(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}

// From приводит любую ошибку к *AppError, неизвестные становятся Internal
func From(err error) *AppError {
	if ae := As(err); ae != nil {
		return ae
	}
	return Internal(err)
}
