// Package respond пишет JSON-ответы и ошибки в едином формате
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/GoArmGo/PhotoGallery/internal/apperr"
)

// ErrorBody: тело ответа с ошибкой
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// JSON: отправляет JSON-ответ клиенту.
func JSON(w http.ResponseWriter, code int, payload any, logger *slog.Logger) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		logger.Error("failed to marshal JSON response", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err = w.Write(response); err != nil {
		logger.Error("failed to write HTTP response", "error", err)
	}
}

// Error переводит ошибку в HTTP-статус и тело {"error", "code"}.
// Причина внутренних ошибок попадает только в лог
func Error(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	ae := apperr.From(err)
	if ae.HTTPStatus >= http.StatusInternalServerError {
		logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"code", ae.Code,
			"error", err,
		)
	} else {
		logger.Warn("request rejected",
			"method", r.Method,
			"path", r.URL.Path,
			"code", ae.Code,
			"message", ae.Message,
		)
	}
	JSON(w, ae.HTTPStatus, ErrorBody{Error: ae.Message, Code: ae.Code}, logger)
}

// NoContent: ответ без тела
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
