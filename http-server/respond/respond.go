// Package respond - единый формат ответов об ошибках для всех обработчиков.
package respond

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"produkcja/internal/apperr"
)

type errResponse struct {
	Error     string `json:"error"`
	Remaining *int   `json:"remaining,omitempty"`
}

// Err пишет ошибку с кодом из apperr.HTTPStatus. Внутренние ошибки
// логируются и наружу уходят обезличенными. Для превышения лимита
// в ответ добавляется остаток, чтобы фронтенд подставил его в форму.
func Err(log *slog.Logger, w http.ResponseWriter, r *http.Request, op string, err error) {
	status := apperr.HTTPStatus(err)

	resp := errResponse{Error: err.Error()}
	if status == http.StatusInternalServerError {
		log.Error("внутренняя ошибка", slog.String("op", op), slog.String("error", err.Error()))
		resp.Error = "internal server error"
	}

	var capErr *apperr.CapacityError
	if errors.As(err, &capErr) {
		remaining := capErr.Remaining
		resp.Remaining = &remaining
	}

	render.Status(r, status)
	render.JSON(w, r, resp)
}

// ErrStatus - ошибка с явным кодом, для случаев до вызова сервиса
// (битый id, невалидный JSON).
func ErrStatus(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, errResponse{Error: msg})
}
