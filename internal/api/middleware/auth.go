package middleware

import (
	"context"
	"net/http"
	"strconv"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// HeaderUserID заголовок с идентификатором пользователя
// Аутентификация выполняется внешним шлюзом; сервис доверяет заголовку
const HeaderUserID = "X-User-ID"

// Auth извлекает ID пользователя из заголовка и кладет его в контекст
// Запросы без валидного заголовка проходят дальше - обязательность
// проверяет сам обработчик через GetUserID
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if raw := r.Header.Get(HeaderUserID); raw != "" {
			if userID, err := strconv.ParseInt(raw, 10, 64); err == nil && userID > 0 {
				r = r.WithContext(context.WithValue(r.Context(), userIDKey, userID))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// GetUserID возвращает ID пользователя из контекста запроса
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}
