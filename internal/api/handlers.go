// internal/api/handlers.go
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/Corphon/LessonPlanner/internal/errors"
	"github.com/Corphon/LessonPlanner/internal/models"
	"github.com/Corphon/LessonPlanner/internal/services"
	"github.com/Corphon/LessonPlanner/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const taskIDHeader = "X-Task-ID"

// Handler serves the HTTP endpoints.
type Handler struct {
	LessonService     *services.LessonService
	InstrumentService *services.InstrumentService
	ProgressService   *services.ProgressService
	LLMService        *services.LLMService
	UsageService      *services.UsageService
	Metrics           *utils.MetricsCollector
	Hub               *ProgressHub
	Response          *ResponseHelper
	logger            *utils.Logger
}

func NewHandler(
	lessonService *services.LessonService,
	instrumentService *services.InstrumentService,
	progressService *services.ProgressService,
	llmService *services.LLMService,
	usageService *services.UsageService,
	metrics *utils.MetricsCollector,
	hub *ProgressHub,
	logger *utils.Logger,
) *Handler {
	if logger == nil {
		logger = utils.GetLogger()
	}
	return &Handler{
		LessonService:     lessonService,
		InstrumentService: instrumentService,
		ProgressService:   progressService,
		LLMService:        llmService,
		UsageService:      usageService,
		Metrics:           metrics,
		Hub:               hub,
		Response:          NewResponseHelper(),
		logger:            logger,
	}
}

// GenerateLesson runs the pipeline for one form submission. The body is
// decoded loosely here; strict validation happens in the service.
func (h *Handler) GenerateLesson(c *gin.Context) {
	taskID := strings.TrimSpace(c.GetHeader(taskIDHeader))
	if taskID == "" {
		taskID = uuid.NewString()
	}
	c.Header(taskIDHeader, taskID)
	tracker := h.ProgressService.CreateTracker(taskID)

	var payload map[string]interface{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		tracker.Fail("cuerpo JSON inválido")
		h.Response.AppError(c, apperrors.NewInvalidRequestError("cuerpo JSON inválido", []apperrors.FieldError{
			{Field: "body", Rule: "json", Message: err.Error()},
		}))
		return
	}

	result, err := h.LessonService.Generate(c.Request.Context(), payload, services.GenerateOptions{
		RequestID: c.GetString(requestIDKey),
		Tracker:   tracker,
	})
	h.UsageService.RecordGeneration(outcome(err))
	if err != nil {
		h.Response.AppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(apperrors.TypeOf(err))
}

// GenerateInstrument renders an assessment instrument.
func (h *Handler) GenerateInstrument(c *gin.Context) {
	var req models.InstrumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.AppError(c, bindingError(err))
		return
	}

	instrument, err := h.InstrumentService.Generate(req)
	if err != nil {
		h.Response.AppError(c, err)
		return
	}
	h.Response.Success(c, instrument)
}

// bindingError turns gin binding failures into an invalid_request error.
func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewInvalidRequestError("cuerpo JSON inválido", []apperrors.FieldError{
			{Field: "body", Rule: "json", Message: err.Error()},
		})
	}
	fields := make([]apperrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
		msg := fmt.Sprintf("%s no cumple la regla %s", field, fe.Tag())
		if fe.Param() != "" {
			msg = fmt.Sprintf("%s no cumple la regla %s=%s", field, fe.Tag(), fe.Param())
		}
		fields = append(fields, apperrors.FieldError{Field: field, Rule: fe.Tag(), Message: msg})
	}
	return apperrors.NewInvalidRequestError("solicitud inválida", fields)
}

// GetCatalog returns the reference data used to populate the form.
func (h *Handler) GetCatalog(c *gin.Context) {
	catalog := h.LessonService.Catalog()
	h.Response.Success(c, gin.H{
		"areas":    catalog.Areas,
		"enfoques": catalog.Enfoques,
		"valores":  catalog.Valores,
	})
}

// Health reports provider readiness. An unready provider answers 503.
func (h *Handler) Health(c *gin.Context) {
	status := http.StatusOK
	state := "ok"
	if !h.LLMService.IsReady() {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}

	body := gin.H{
		"status": state,
		"llm": gin.H{
			"provider": h.LLMService.GetProviderName(),
			"ready":    h.LLMService.IsReady(),
			"state":    h.LLMService.GetReadyState(),
		},
		"progress_tasks": h.ProgressService.Len(),
		"timestamp":      time.Now().Format(time.RFC3339),
	}
	if h.Hub != nil {
		body["websocket"] = h.Hub.GetStatus()
	}
	c.JSON(status, body)
}

// GetMetrics dumps the in-process counters and histograms.
func (h *Handler) GetMetrics(c *gin.Context) {
	h.Response.Success(c, h.Metrics.GetMetrics())
}

// GetUsage returns the persisted generation counters.
func (h *Handler) GetUsage(c *gin.Context) {
	if h.UsageService == nil {
		h.Response.NotFound(c, ErrorNotFound, "estadísticas de uso deshabilitadas")
		return
	}
	h.Response.Success(c, h.UsageService.GetUsageStats())
}

// SubscribeProgress streams a task's progress as server-sent events.
func (h *Handler) SubscribeProgress(c *gin.Context) {
	taskID := c.Param("taskId")

	tracker, exists := h.ProgressService.GetTracker(taskID)
	if !exists {
		h.Response.NotFound(c, ErrorTaskNotFound, "la tarea no existe")
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	clientGone := c.Request.Context().Done()

	updateChan := tracker.Subscribe()
	defer tracker.Unsubscribe(updateChan)

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	fmt.Fprintf(c.Writer, "event: connected\ndata: {\"taskId\":%q}\n\n", taskID)
	c.Writer.Flush()

	for {
		select {
		case <-clientGone:
			return
		case update, ok := <-updateChan:
			if !ok {
				return
			}
			data, _ := json.Marshal(update)
			fmt.Fprintf(c.Writer, "event: progress\ndata: %s\n\n", data)
			c.Writer.Flush()

			if update.Status == services.StatusCompleted || update.Status == services.StatusFailed {
				return
			}
		case <-ticker.C:
			fmt.Fprintf(c.Writer, "event: heartbeat\ndata: {\"time\":%d}\n\n", time.Now().Unix())
			c.Writer.Flush()
		}
	}
}

// ProgressWebSocket streams a task's progress over a websocket.
func (h *Handler) ProgressWebSocket(c *gin.Context) {
	taskID := c.Param("taskId")

	tracker, exists := h.ProgressService.GetTracker(taskID)
	if !exists {
		h.Response.NotFound(c, ErrorTaskNotFound, "la tarea no existe")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "task_id", taskID, "error", err)
		return
	}
	h.Hub.Serve(conn, tracker)
}
