// internal/api/error_codes.go
package api

import (
	"net/http"

	apperrors "github.com/Corphon/LessonPlanner/internal/errors"
)

// API error codes
const (
	// generic
	ErrorBadRequest    = "BAD_REQUEST"
	ErrorNotFound      = "NOT_FOUND"
	ErrorInternalError = "INTERNAL_ERROR"

	// pipeline
	ErrorInvalidRequest  = "INVALID_REQUEST"
	ErrorProviderTimeout = "PROVIDER_TIMEOUT"
	ErrorProviderError   = "PROVIDER_ERROR"
	ErrorNoValidJSON     = "NO_VALID_JSON"
	ErrorPolicyViolation = "POLICY_VIOLATION"
	ErrorRateLimited     = "RATE_LIMIT_EXCEEDED"

	// progress
	ErrorTaskNotFound = "TASK_NOT_FOUND"

	// service health
	ErrorLLMServiceUnavailable = "LLM_SERVICE_UNAVAILABLE"
)

// statusFor maps an error type to its HTTP status.
func statusFor(t apperrors.ErrorType) int {
	switch t {
	case apperrors.ErrorTypeInvalidRequest:
		return http.StatusBadRequest
	case apperrors.ErrorTypeProviderTimeout:
		return http.StatusGatewayTimeout
	case apperrors.ErrorTypeProviderError, apperrors.ErrorTypeNoValidJSON:
		return http.StatusBadGateway
	case apperrors.ErrorTypePolicyViolation:
		return http.StatusUnprocessableEntity
	case apperrors.ErrorTypeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
