package commonerrors

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCategory string

const (
	CategoryValidation   ErrorCategory = "VALIDATION"
	CategoryNotFound     ErrorCategory = "NOT_FOUND"
	CategoryConflict     ErrorCategory = "CONFLICT"
	CategoryUnauthorized ErrorCategory = "UNAUTHORIZED"
	CategoryInternal     ErrorCategory = "INTERNAL"
)

type DomainError interface {
	error
	Code() string
	Category() ErrorCategory
	HTTPStatus() int
	Message() string
	Unwrap() error
	WithCause(cause error) DomainError
}

type domainError struct {
	code     string
	category ErrorCategory
	status   int
	message  string
	cause    error
}

func (e *domainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *domainError) Code() string {
	return e.code
}

func (e *domainError) Category() ErrorCategory {
	return e.category
}

func (e *domainError) HTTPStatus() int {
	return e.status
}

func (e *domainError) Message() string {
	return e.message
}

func (e *domainError) Unwrap() error {
	return e.cause
}

func (e *domainError) WithCause(cause error) DomainError {
	return &domainError{
		code:     e.code,
		category: e.category,
		status:   e.status,
		message:  e.message,
		cause:    cause,
	}
}

// Is makes sentinel comparison work across WithCause copies.
func (e *domainError) Is(target error) bool {
	var de *domainError
	if errors.As(target, &de) {
		return de.code == e.code
	}
	return false
}

func NewDomainError(code string, category ErrorCategory, status int, message string) DomainError {
	return &domainError{
		code:     code,
		category: category,
		status:   status,
		message:  message,
	}
}

func AsDomainError(err error) (DomainError, bool) {
	var de DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

var (
	ErrMissingRequiredEnv = NewDomainError(
		"MISSING_REQUIRED_ENV",
		CategoryValidation,
		http.StatusInternalServerError,
		"missing required environment variable",
	)

	ErrInvalidJWTSecret = NewDomainError(
		"INVALID_JWT_SECRET",
		CategoryValidation,
		http.StatusInternalServerError,
		"JWT_SECRET must be at least 32 bytes",
	)

	ErrUserNotFound = NewDomainError(
		"USER_NOT_FOUND",
		CategoryNotFound,
		http.StatusNotFound,
		"user not found",
	)

	ErrUsernameTaken = NewDomainError(
		"USERNAME_TAKEN",
		CategoryConflict,
		http.StatusConflict,
		"username already exists",
	)

	ErrEmptyMessage = NewDomainError(
		"EMPTY_MESSAGE",
		CategoryValidation,
		http.StatusBadRequest,
		"message body is empty",
	)

	ErrMessageTooLong = NewDomainError(
		"MESSAGE_TOO_LONG",
		CategoryValidation,
		http.StatusBadRequest,
		"message body exceeds maximum length",
	)

	ErrKeywordTooLong = NewDomainError(
		"KEYWORD_TOO_LONG",
		CategoryValidation,
		http.StatusBadRequest,
		"search keyword exceeds maximum length",
	)

	ErrInvalidCredentials = NewDomainError(
		"INVALID_CREDENTIALS",
		CategoryUnauthorized,
		http.StatusUnauthorized,
		"invalid username or password",
	)

	ErrWrongPassword = NewDomainError(
		"WRONG_PASSWORD",
		CategoryUnauthorized,
		http.StatusUnauthorized,
		"current password is incorrect",
	)

	ErrInvalidToken = NewDomainError(
		"INVALID_TOKEN",
		CategoryUnauthorized,
		http.StatusUnauthorized,
		"token is not valid",
	)

	ErrInvalidRefreshToken = NewDomainError(
		"INVALID_REFRESH_TOKEN",
		CategoryUnauthorized,
		http.StatusUnauthorized,
		"invalid refresh token",
	)

	ErrRefreshTokenExpired = NewDomainError(
		"REFRESH_TOKEN_EXPIRED",
		CategoryUnauthorized,
		http.StatusUnauthorized,
		"refresh token expired",
	)

	ErrAvatarTooLarge = NewDomainError(
		"AVATAR_TOO_LARGE",
		CategoryValidation,
		http.StatusBadRequest,
		"avatar file exceeds maximum size",
	)

	ErrInvalidAvatarType = NewDomainError(
		"INVALID_AVATAR_TYPE",
		CategoryValidation,
		http.StatusBadRequest,
		"avatar must be a png, jpeg or webp image",
	)

	ErrEmptyUUID = NewDomainError(
		"EMPTY_UUID",
		CategoryValidation,
		http.StatusBadRequest,
		"uuid cannot be empty",
	)

	ErrInternalError = NewDomainError(
		"INTERNAL_ERROR",
		CategoryInternal,
		http.StatusInternalServerError,
		"internal server error",
	)

	ErrThreadFetchFailed = NewDomainError(
		"THREAD_FETCH_FAILED",
		CategoryInternal,
		http.StatusInternalServerError,
		"failed to fetch talk thread",
	)

	ErrMessageSendFailed = NewDomainError(
		"MESSAGE_SEND_FAILED",
		CategoryInternal,
		http.StatusInternalServerError,
		"failed to send message",
	)

	ErrFriendsRankFailed = NewDomainError(
		"FRIENDS_RANK_FAILED",
		CategoryInternal,
		http.StatusInternalServerError,
		"failed to rank friends",
	)

	ErrUserGetFailed = NewDomainError(
		"USER_GET_FAILED",
		CategoryInternal,
		http.StatusInternalServerError,
		"failed to get user",
	)

	ErrProfileUpdateFailed = NewDomainError(
		"PROFILE_UPDATE_FAILED",
		CategoryInternal,
		http.StatusInternalServerError,
		"failed to update profile",
	)
)
