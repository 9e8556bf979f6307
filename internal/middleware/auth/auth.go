// Package auth - идентификация по query-параметру user_id.
// Фронтенд работает в цеху с общих планшетов, сессий и паролей нет,
// работник выбирает себя кодом при входе.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"produkcja/internal/storage"

	"produkcja/http-server/respond"
)

type ctxKey struct{}

type UserStorage interface {
	GetUserByID(ctx context.Context, id int64) (*storage.User, error)
}

// Identify кладёт пользователя из ?user_id= в контекст запроса.
// Запрос без user_id или с неизвестным id отклоняется.
func Identify(log *slog.Logger, users UserStorage) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "auth.Identify"

			idStr := r.URL.Query().Get("user_id")
			if idStr == "" {
				respond.ErrStatus(w, r, http.StatusUnauthorized, "user_id is required")
				return
			}
			id, err := strconv.ParseInt(idStr, 10, 64)
			if err != nil {
				respond.ErrStatus(w, r, http.StatusUnauthorized, "invalid user_id")
				return
			}

			user, err := users.GetUserByID(r.Context(), id)
			if err != nil {
				respond.Err(log, w, r, op, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireAdmin пускает дальше только администраторов.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := FromContext(r.Context())
		if user == nil || !user.IsAdmin() {
			respond.ErrStatus(w, r, http.StatusForbidden, "wymagane uprawnienia administratora")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithUser кладёт пользователя в контекст запроса.
func WithUser(ctx context.Context, user *storage.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, user)
}

// FromContext возвращает пользователя, положенного Identify, или nil.
func FromContext(ctx context.Context) *storage.User {
	user, _ := ctx.Value(ctxKey{}).(*storage.User)
	return user
}
