// Package apperrors описывает доменные ошибки сервиса и их HTTP-коды.
package apperrors

import (
	"errors"
	"net/http"
)

// Code машинно-читаемый код ошибки
type Code string

const (
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeForbidden       Code = "FORBIDDEN"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeStorageFailure  Code = "STORAGE_FAILURE"
)

// HTTPStatus возвращает HTTP-статус для кода
func (c Code) HTTPStatus() int {
	switch c {
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeInvalidInput, CodeInvalidState:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Error доменная ошибка с кодом и сообщением для пользователя
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is сравнивает ошибки по коду
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// Шаблоны для errors.Is
var (
	ErrUnauthenticated = &Error{Code: CodeUnauthenticated}
	ErrInvalidInput    = &Error{Code: CodeInvalidInput}
	ErrNotFound        = &Error{Code: CodeNotFound}
	ErrForbidden       = &Error{Code: CodeForbidden}
	ErrInvalidState    = &Error{Code: CodeInvalidState}
	ErrStorageFailure  = &Error{Code: CodeStorageFailure}
)

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func Unauthenticated(message string) *Error { return New(CodeUnauthenticated, message) }
func InvalidInput(message string) *Error    { return New(CodeInvalidInput, message) }
func NotFound(message string) *Error        { return New(CodeNotFound, message) }
func Forbidden(message string) *Error       { return New(CodeForbidden, message) }
func InvalidState(message string) *Error    { return New(CodeInvalidState, message) }

// Storage оборачивает ошибку хранилища
func Storage(message string, cause error) *Error {
	return Wrap(CodeStorageFailure, message, cause)
}

// CodeOf возвращает код ошибки, для неизвестных ошибок STORAGE_FAILURE
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeStorageFailure
}

// PublicMessage возвращает текст, который можно показать пользователю
func PublicMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Code != CodeStorageFailure && appErr.Message != "" {
		return appErr.Message
	}
	return "Внутренняя ошибка сервера"
}
