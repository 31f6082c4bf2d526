package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/career-admin/internal/assistant"
	"github.com/jonathan/career-admin/internal/db"
	"github.com/jonathan/career-admin/internal/llm"
)

func TestErrInvalidCredentials(t *testing.T) {
	err := &ErrInvalidCredentials{}
	assert.Equal(t, "invalid username or password", err.Error())
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(err))
}

func TestErrValidation(t *testing.T) {
	err := &ErrValidation{Field: "limit", Message: "must be positive"}
	assert.Equal(t, "validation error: limit - must be positive", err.Error())
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))

	bare := &ErrValidation{Message: "request body is empty"}
	assert.Equal(t, "validation error: request body is empty", bare.Error())
}

func TestHTTPStatus(t *testing.T) {
	llmErr := func(kind llm.ErrorKind) error {
		return &llm.Error{Kind: kind, Provider: llm.ProviderGemini, Err: errors.New("upstream")}
	}

	tests := []struct {
		name     string
		err      error
		expected int
		kind     string
	}{
		{"validation", &ErrValidation{Field: "id"}, http.StatusBadRequest, kindValidation},
		{"invalid completion request", fmt.Errorf("%w: no messages", llm.ErrInvalidRequest), http.StatusBadRequest, kindValidation},
		{"bad credentials", &ErrInvalidCredentials{}, http.StatusUnauthorized, kindUnauthorized},
		{"not found", fmt.Errorf("update: %w", db.ErrNotFound), http.StatusNotFound, kindNotFound},
		{"career data", fmt.Errorf("%w: boom", assistant.ErrCareerDataUnavailable), http.StatusServiceUnavailable, kindUnavailable},
		{"provider rate limit", llmErr(llm.KindRateLimited), http.StatusTooManyRequests, kindRateLimited},
		{"provider timeout", llmErr(llm.KindTimeout), http.StatusGatewayTimeout, kindTimeout},
		{"client canceled", llmErr(llm.KindCanceled), StatusClientClosedRequest, kindCanceled},
		{"provider failure", llmErr(llm.KindProvider), http.StatusBadGateway, kindProvider},
		{"wrapped provider failure", fmt.Errorf("draft: %w", llmErr(llm.KindProvider)), http.StatusBadGateway, kindProvider},
		{"bare deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, kindTimeout},
		{"bare cancel", context.Canceled, StatusClientClosedRequest, kindCanceled},
		{"unknown", errors.New("pq: connection reset"), http.StatusInternalServerError, kindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			assert.Equal(t, tt.expected, got.Status)
			assert.Equal(t, tt.kind, got.Kind)
			assert.NotEmpty(t, got.Message)
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}

func TestClassify_HidesInternalDetail(t *testing.T) {
	got := classify(errors.New("dial tcp 10.0.0.5:5432: connection refused"))
	assert.NotContains(t, got.Message, "10.0.0.5")
}

func TestClassify_ValidatorErrors(t *testing.T) {
	type body struct {
		Name string `validate:"required"`
	}
	err := validator.New().Struct(body{})
	require.Error(t, err)

	got := classify(err)
	assert.Equal(t, http.StatusBadRequest, got.Status)
	assert.Contains(t, got.Message, "Name")
	assert.Contains(t, got.Message, "required")
}
