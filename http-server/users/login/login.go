package login

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/render"

	"produkcja/http-server/respond"
	"produkcja/internal/storage"
)

type UserByCode interface {
	GetUserByCode(ctx context.Context, code string) (*storage.User, error)
}

// Login ищет пользователя по коду. Код нечувствителен к регистру.
func Login(log *slog.Logger, users UserByCode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.users.Login"

		var req storage.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
			respond.ErrStatus(w, r, http.StatusBadRequest, "invalid request payload")
			return
		}

		code := strings.ToLower(strings.TrimSpace(req.Code))
		if code == "" {
			respond.ErrStatus(w, r, http.StatusBadRequest, "kod jest wymagany")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		user, err := users.GetUserByCode(ctx, code)
		if err != nil {
			respond.ErrStatus(w, r, http.StatusUnauthorized, "nieprawidłowy kod")
			return
		}

		log.Info("вход по коду", slog.Int64("user_id", user.ID), slog.String("role", user.Role))

		render.JSON(w, r, user)
	}
}
