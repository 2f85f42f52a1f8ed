package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/GoArmGo/PhotoGallery/internal/apperr"
	"github.com/GoArmGo/PhotoGallery/internal/domain"
	"github.com/GoArmGo/PhotoGallery/internal/handler/respond"
)

// TokenVerifier: то, что нужно middleware от проверяющего токены
type TokenVerifier interface {
	Verify(token string) (domain.Principal, error)
}

// Authenticate извлекает Bearer-токен. Запрос без заголовка проходит анонимно,
// неверный токен отклоняется с 401
func Authenticate(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
				respond.Error(w, r, apperr.Unauthenticated("Invalid authorization format"), logger)
				return
			}

			principal, err := verifier.Verify(strings.TrimSpace(token))
			if err != nil {
				logger.Debug("token rejected", "error", err)
				respond.Error(w, r, apperr.Unauthenticated("Invalid or expired token"), logger)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireAuth пропускает только аутентифицированные запросы.
// Регистрируется после Authenticate
func RequireAuth(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if FromContext(r.Context()).Anonymous() {
				respond.Error(w, r, apperr.Unauthenticated("Authentication required"), logger)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
