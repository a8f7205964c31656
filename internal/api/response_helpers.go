// internal/api/response_helpers.go
package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/Corphon/LessonPlanner/internal/errors"
	"github.com/gin-gonic/gin"
)

// APIResponse is the envelope of every JSON endpoint except /api/generar,
// which returns the pipeline result as is.
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"requestId,omitempty"`
}

// APIError is the error body: {code, message, details}.
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ResponseHelper writes envelopes.
type ResponseHelper struct{}

func NewResponseHelper() *ResponseHelper {
	return &ResponseHelper{}
}

// Success writes a 200 envelope.
func (rh *ResponseHelper) Success(c *gin.Context, data interface{}, message ...string) {
	response := &APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
		RequestID: rh.getRequestID(c),
	}
	if len(message) > 0 {
		response.Message = message[0]
	}
	c.JSON(http.StatusOK, response)
}

// sanitizeErrorMessage hides messages that may carry credentials.
func sanitizeErrorMessage(message string) string {
	lower := strings.ToLower(message)
	for _, pattern := range []string{"api_key", "apikey", "secret", "token", "password", "authorization"} {
		if strings.Contains(lower, pattern) {
			return "An internal error occurred"
		}
	}
	return message
}

// Error writes a failure envelope.
func (rh *ResponseHelper) Error(c *gin.Context, statusCode int, errorCode, message string, details ...interface{}) {
	apiError := &APIError{
		Code:    errorCode,
		Message: sanitizeErrorMessage(message),
	}
	if len(details) > 0 && details[0] != nil {
		apiError.Details = details[0]
	}

	c.JSON(statusCode, &APIResponse{
		Success:   false,
		Error:     apiError,
		Timestamp: time.Now(),
		RequestID: rh.getRequestID(c),
	})
}

// AppError maps a pipeline error onto its status and code. Foreign errors
// become a bare 500 so internals never reach the client.
func (rh *ResponseHelper) AppError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		rh.InternalError(c, "Error interno del servidor")
		return
	}

	message := appErr.Message
	var details interface{}
	if appErr.Type == apperrors.ErrorTypeInternal {
		message = "Error interno del servidor"
	} else if len(appErr.Details) > 0 {
		details = appErr.Details
	}
	rh.Error(c, statusFor(appErr.Type), appErr.Code, message, details)
}

func (rh *ResponseHelper) BadRequest(c *gin.Context, message string, details ...interface{}) {
	rh.Error(c, http.StatusBadRequest, ErrorBadRequest, message, details...)
}

func (rh *ResponseHelper) NotFound(c *gin.Context, code, message string) {
	rh.Error(c, http.StatusNotFound, code, message)
}

func (rh *ResponseHelper) InternalError(c *gin.Context, message string, details ...interface{}) {
	rh.Error(c, http.StatusInternalServerError, ErrorInternalError, message, details...)
}

func (rh *ResponseHelper) getRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
