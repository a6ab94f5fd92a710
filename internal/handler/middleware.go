package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"banking-online/internal/service"
)

// ctxKey — собственный тип ключа контекста, чтобы не пересекаться
// с ключами других пакетов.
type ctxKey int

const userIDKey ctxKey = iota

// UserIDFromContext возвращает идентификатор пользователя,
// сохраненный в контексте запроса AuthMiddleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}

// AuthMiddleware проверяет наличие и валидность JWT токена в заголовке Authorization
func AuthMiddleware(authService *service.AuthService, logger *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Error("Отсутствует заголовок Authorization")
				http.Error(w, "Заголовок Authorization обязателен", http.StatusUnauthorized)
				return
			}

			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				logger.Error("Неверный формат заголовка Authorization")
				http.Error(w, "Неверный формат заголовка Authorization", http.StatusUnauthorized)
				return
			}

			userID, err := authService.ParseToken(token)
			if err != nil {
				logger.WithError(err).Error("Неверный токен")
				http.Error(w, "Неверный токен", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
