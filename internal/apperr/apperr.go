// Package apperr - единая таксономия ошибок уровня запроса.
// Все ошибки восстановимы: хендлер переводит их в статус и сообщение,
// процесс не падает.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError - некорректный ввод: неположительное количество,
// отсутствующее обязательное поле и т.п.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validation(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// PermissionError - у актора нет роли или этапа в allowed_action_types.
type PermissionError struct {
	Msg string
}

func (e *PermissionError) Error() string { return e.Msg }

func Permission(format string, args ...any) error {
	return &PermissionError{Msg: fmt.Sprintf(format, args...)}
}

// CapacityError - запись превысила бы требуемое количество позиции.
// Remaining сообщает, сколько ещё можно записать.
type CapacityError struct {
	Remaining int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("przekroczono limit, maksymalnie można: %d", e.Remaining)
}

// ConfigurationError - некорректная конфигурация стоимости
// (отрицательный коэффициент, неизвестный тип края).
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return e.Msg }

func Configuration(format string, args ...any) error {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

// ErrNotFound - запрошенной строки нет. Хранилище заворачивает в него
// sql.ErrNoRows, чтобы хендлеры не зависели от database/sql.
var ErrNotFound = errors.New("not found")

// HTTPStatus - единое соответствие таксономии и кодов ответа.
func HTTPStatus(err error) int {
	var (
		ve *ValidationError
		pe *PermissionError
		ce *CapacityError
		ge *ConfigurationError
	)
	switch {
	case errors.As(err, &ve), errors.As(err, &ge):
		return http.StatusUnprocessableEntity
	case errors.As(err, &pe):
		return http.StatusForbidden
	case errors.As(err, &ce):
		return http.StatusConflict
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
