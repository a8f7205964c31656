// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies a failure of the generation pipeline.
type ErrorType string

const (
	ErrorTypeInvalidRequest  ErrorType = "invalid_request"
	ErrorTypeProviderTimeout ErrorType = "provider_timeout"
	ErrorTypeProviderError   ErrorType = "provider_error"
	ErrorTypeNoValidJSON     ErrorType = "no_valid_json"
	ErrorTypePolicyViolation ErrorType = "policy_violation"
	ErrorTypeRateLimited     ErrorType = "rate_limited"
	ErrorTypeInternal        ErrorType = "internal"
)

// FieldError is one diagnostic produced by request validation.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// AppError is the error returned by every pipeline stage that can abort a request.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
	Code    string
	Details map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail attaches a diagnostic value and returns the same error.
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewAppError builds an AppError with the code derived from its type.
func NewAppError(errType ErrorType, message string, originalError error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     originalError,
		Code:    generateErrorCode(errType),
	}
}

// NewInvalidRequestError carries one FieldError per violated field.
func NewInvalidRequestError(message string, fields []FieldError) *AppError {
	return NewAppError(ErrorTypeInvalidRequest, message, nil).WithDetail("fields", fields)
}

func NewProviderTimeoutError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeProviderTimeout, message, originalError)
}

func NewProviderError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeProviderError, message, originalError)
}

// NewNoValidJSONError keeps a truncated sample of the cleaned model output.
func NewNoValidJSONError(sample string) *AppError {
	return NewAppError(ErrorTypeNoValidJSON, "model output contains no valid JSON", nil).WithDetail("sample", sample)
}

func NewPolicyViolationError(message string) *AppError {
	return NewAppError(ErrorTypePolicyViolation, message, nil)
}

func NewRateLimitedError(message string) *AppError {
	return NewAppError(ErrorTypeRateLimited, message, nil)
}

func NewInternalError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeInternal, message, originalError)
}

// TypeOf returns the ErrorType of err, or ErrorTypeInternal for foreign errors.
func TypeOf(err error) ErrorType {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError.Type
	}
	return ErrorTypeInternal
}

func IsInvalidRequest(err error) bool  { return is(err, ErrorTypeInvalidRequest) }
func IsProviderTimeout(err error) bool { return is(err, ErrorTypeProviderTimeout) }
func IsProviderError(err error) bool   { return is(err, ErrorTypeProviderError) }
func IsNoValidJSON(err error) bool     { return is(err, ErrorTypeNoValidJSON) }
func IsPolicyViolation(err error) bool { return is(err, ErrorTypePolicyViolation) }
func IsRateLimited(err error) bool     { return is(err, ErrorTypeRateLimited) }

// Retryable reports whether the caller may resubmit the same request.
func Retryable(err error) bool {
	return IsProviderTimeout(err) || IsProviderError(err)
}

// WrapError wraps a foreign error as an internal AppError and leaves AppErrors untouched.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	var appError *AppError
	if errors.As(err, &appError) {
		return err
	}
	return NewInternalError(message, err)
}

func is(err error, t ErrorType) bool {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError.Type == t
	}
	return false
}

func generateErrorCode(errType ErrorType) string {
	switch errType {
	case ErrorTypeInvalidRequest:
		return "INVALID_REQUEST"
	case ErrorTypeProviderTimeout:
		return "PROVIDER_TIMEOUT"
	case ErrorTypeProviderError:
		return "PROVIDER_ERROR"
	case ErrorTypeNoValidJSON:
		return "NO_VALID_JSON"
	case ErrorTypePolicyViolation:
		return "POLICY_VIOLATION"
	case ErrorTypeRateLimited:
		return "RATE_LIMIT_EXCEEDED"
	case ErrorTypeInternal:
		return "INTERNAL_ERROR"
	default:
		return "UNKNOWN_ERROR"
	}
}
