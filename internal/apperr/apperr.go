package apperr

import (
	"errors"
	"net/http"
)

// Kind — категория ошибки, которую видит клиент.
type Kind string

const (
	Conflict     Kind = "conflict"
	Unauthorized Kind = "unauthorized"
	NotFound     Kind = "not_found"
	Validation   Kind = "validation"
	Internal     Kind = "internal"
)

// Error — ошибка уровня воркфлоу. Message безопасен для клиента,
// Err (если есть) остаётся только в логах.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf достаёт категорию; всё неразмеченное считается внутренней ошибкой.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// ClientMessage — текст, который можно показать клиенту.
// Для неразмеченных ошибок детали не раскрываются.
func ClientMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "внутренняя ошибка сервера"
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case Conflict:
		return http.StatusConflict
	case Unauthorized:
		return http.StatusUnauthorized
	case NotFound:
		return http.StatusNotFound
	case Validation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
