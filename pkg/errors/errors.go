package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Сообщения сентинелов уходят в UI как есть, поэтому они на английском.
var (
	// JWT и токены
	ErrInvalidSigningMethod = fmt.Errorf("invalid token signing method")
	ErrInvalidToken         = fmt.Errorf("invalid token")
	ErrTokenExpired         = fmt.Errorf("token has expired")
	ErrTokenNotYetValid     = fmt.Errorf("token is not valid yet")

	// Авторизация
	ErrEmptyAuthHeader    = fmt.Errorf("authorization header is missing")
	ErrInvalidAuthHeader  = fmt.Errorf("authorization header has invalid format")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrUnauthorized       = fmt.Errorf("unauthorized")
	ErrForbidden          = fmt.Errorf("forbidden")
	ErrSessionNotFound    = fmt.Errorf("session not found or expired")
	ErrAccountLocked      = fmt.Errorf("too many failed login attempts, try again later")

	// Контекст
	ErrSessionNotFoundInContext = fmt.Errorf("session is missing from request context")
	ErrUnidentifiedUser         = fmt.Errorf("current user is not identified yet")

	// Редакторы и действия
	ErrCardNotLoaded        = fmt.Errorf("card data is still loading")
	ErrCardNotEditing       = fmt.Errorf("card is not in edit mode")
	ErrProfileLocked        = fmt.Errorf("profile is in full edit mode")
	ErrActionInProgress     = fmt.Errorf("action is already in progress")
	ErrConfirmationRequired = fmt.Errorf("confirmation is required")
	ErrInvalidTransition    = fmt.Errorf("action is not available in the current state")
	ErrUnknownResource      = fmt.Errorf("unknown resource")
	ErrUnknownField         = fmt.Errorf("unknown field")

	// Общие
	ErrNotFound   = fmt.Errorf("record not found")
	ErrBadRequest = fmt.Errorf("bad request")
	ErrUpstream   = fmt.Errorf("backend is unavailable")
)

// statusBySentinel - HTTP-коды для сентинелов, которые проходят через ErrorResponse без обёртки.
var statusBySentinel = map[error]int{
	ErrInvalidSigningMethod:     http.StatusUnauthorized,
	ErrInvalidToken:             http.StatusUnauthorized,
	ErrTokenExpired:             http.StatusUnauthorized,
	ErrTokenNotYetValid:         http.StatusUnauthorized,
	ErrEmptyAuthHeader:          http.StatusUnauthorized,
	ErrInvalidAuthHeader:        http.StatusUnauthorized,
	ErrInvalidCredentials:       http.StatusUnauthorized,
	ErrUnauthorized:             http.StatusUnauthorized,
	ErrSessionNotFound:          http.StatusUnauthorized,
	ErrSessionNotFoundInContext: http.StatusUnauthorized,
	ErrForbidden:                http.StatusForbidden,
	ErrAccountLocked:            http.StatusTooManyRequests,
	ErrUnidentifiedUser:         http.StatusBadRequest,
	ErrCardNotLoaded:            http.StatusConflict,
	ErrCardNotEditing:           http.StatusConflict,
	ErrProfileLocked:            http.StatusConflict,
	ErrActionInProgress:         http.StatusConflict,
	ErrConfirmationRequired:     http.StatusPreconditionRequired,
	ErrInvalidTransition:        http.StatusConflict,
	ErrUnknownResource:          http.StatusNotFound,
	ErrUnknownField:             http.StatusBadRequest,
	ErrNotFound:                 http.StatusNotFound,
	ErrBadRequest:               http.StatusBadRequest,
	ErrUpstream:                 http.StatusBadGateway,
}

// StatusFor возвращает HTTP-код для известного сентинела (0 если ошибка неизвестна).
func StatusFor(err error) int {
	for sentinel, code := range statusBySentinel {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return 0
}

// HttpError - ошибка, которая уже знает свой HTTP-код и текст для пользователя.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Context map[string]interface{}
	Details interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, context map[string]interface{}) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Context: context}
}

func NewBadRequestError(message string) *HttpError {
	return &HttpError{Code: http.StatusBadRequest, Message: message}
}

// FieldErrors - карта "поле -> сообщения", в формате ошибок бэкенда.
type FieldErrors map[string][]string

// First оставляет только первое сообщение по каждому полю.
func (f FieldErrors) First() map[string]string {
	out := make(map[string]string, len(f))
	for field, msgs := range f {
		if len(msgs) > 0 {
			out[field] = msgs[0]
		}
	}
	return out
}

const (
	SourceClient = "client"
	SourceServer = "server"
)

// ValidationError - ошибки по полям. Source показывает, кто их нашёл:
// локальная проверка (запрос на бэкенд не отправлялся) или бэкенд.
type ValidationError struct {
	Source  string
	Message string
	Fields  FieldErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s (%d fields)", e.Message, len(e.Fields))
}

func NewClientValidationError(fields FieldErrors) *ValidationError {
	return &ValidationError{Source: SourceClient, Message: "Please fix the errors below.", Fields: fields}
}

func NewServerValidationError(fields FieldErrors) *ValidationError {
	return &ValidationError{Source: SourceServer, Message: "Please fix the errors below.", Fields: fields}
}
