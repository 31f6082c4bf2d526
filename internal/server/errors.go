package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/career-admin/internal/assistant"
	"github.com/jonathan/career-admin/internal/db"
	"github.com/jonathan/career-admin/internal/llm"
)

// StatusClientClosedRequest is the non-standard status logged when the caller
// went away before the response was ready.
const StatusClientClosedRequest = 499

// Error kinds written in the "error" field of JSON error bodies
const (
	kindValidation    = "validation_error"
	kindUnauthorized  = "invalid_credentials"
	kindNotFound      = "not_found"
	kindRateLimited   = "rate_limited"
	kindTimeout       = "timeout"
	kindCanceled      = "canceled"
	kindProvider      = "provider_error"
	kindUnavailable   = "data_unavailable"
	kindInternal      = "internal_error"
	kindUnsupported   = "streaming_unsupported"
	kindRateLimitHTTP = "rate_limit_exceeded"
)

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid username or password"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// apiError is a classified failure ready to be written as a JSON body
type apiError struct {
	Status  int
	Kind    string
	Message string
}

// classify maps an error from any layer to a status, kind and user-facing message.
// Unclassified errors become a generic 500 so internals never reach the client.
func classify(err error) apiError {
	var (
		valErr   *ErrValidation
		credErr  *ErrInvalidCredentials
		fieldErr validator.ValidationErrors
	)

	switch {
	case errors.As(err, &valErr):
		return apiError{http.StatusBadRequest, kindValidation, valErr.Error()}
	case errors.As(err, &fieldErr):
		return apiError{http.StatusBadRequest, kindValidation, validationMessage(fieldErr)}
	case errors.Is(err, llm.ErrInvalidRequest):
		return apiError{http.StatusBadRequest, kindValidation, err.Error()}
	case errors.As(err, &credErr):
		return apiError{http.StatusUnauthorized, kindUnauthorized, credErr.Error()}
	case errors.Is(err, db.ErrNotFound):
		return apiError{http.StatusNotFound, kindNotFound, "Record not found."}
	case errors.Is(err, assistant.ErrCareerDataUnavailable):
		return apiError{http.StatusServiceUnavailable, kindUnavailable, "Career data could not be loaded. Please try again."}
	}

	switch llm.KindOf(err) {
	case llm.KindRateLimited:
		return apiError{http.StatusTooManyRequests, kindRateLimited, "The AI service is busy. Please wait a minute and try again."}
	case llm.KindTimeout:
		return apiError{http.StatusGatewayTimeout, kindTimeout, "The AI service took too long to respond. Please try again."}
	case llm.KindCanceled:
		return apiError{StatusClientClosedRequest, kindCanceled, "The request was canceled."}
	case llm.KindProvider:
		return apiError{http.StatusBadGateway, kindProvider, "The AI service returned an error. Please try again."}
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apiError{http.StatusGatewayTimeout, kindTimeout, "The request took too long. Please try again."}
	case errors.Is(err, context.Canceled):
		return apiError{StatusClientClosedRequest, kindCanceled, "The request was canceled."}
	}

	return apiError{http.StatusInternalServerError, kindInternal, "Internal server error."}
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	return classify(err).Status
}

// validationMessage reports the first failing field
func validationMessage(errs validator.ValidationErrors) string {
	if len(errs) == 0 {
		return "validation error: invalid request"
	}
	fe := errs[0]
	return fmt.Sprintf("validation error: %s - %s", fe.Namespace(), fe.Tag())
}
