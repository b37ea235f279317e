// Package server provides the HTTP REST API for the recommendation backend.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/learntube/internal/recommend"
	"github.com/jonathan/learntube/internal/schemas"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrPasswordMismatch indicates current password is incorrect
type ErrPasswordMismatch struct{}

func (e *ErrPasswordMismatch) Error() string {
	return "current password is incorrect"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus maps an error to the HTTP status code it should produce.
func HTTPStatus(err error) int {
	var (
		emailExists      *ErrEmailAlreadyExists
		invalidCreds     *ErrInvalidCredentials
		passwordMismatch *ErrPasswordMismatch
		userNotFound     *ErrUserNotFound
		validation       *ErrValidation
		schemaValidation *schemas.ValidationError
		noEmbedding      *recommend.ErrUserEmbeddingNotFound
		videoNotFound    *recommend.ErrVideoNotFound
	)

	switch {
	case errors.As(err, &emailExists):
		return http.StatusConflict
	case errors.As(err, &invalidCreds), errors.As(err, &passwordMismatch):
		return http.StatusUnauthorized
	case errors.As(err, &userNotFound), errors.As(err, &noEmbedding), errors.As(err, &videoNotFound):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &schemaValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
