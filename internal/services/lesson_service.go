// internal/services/lesson_service.go
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Corphon/LessonPlanner/internal/curriculum"
	apperrors "github.com/Corphon/LessonPlanner/internal/errors"
	"github.com/Corphon/LessonPlanner/internal/jsonrecovery"
	"github.com/Corphon/LessonPlanner/internal/models"
	"github.com/Corphon/LessonPlanner/internal/observability"
	"github.com/Corphon/LessonPlanner/internal/policy"
	"github.com/Corphon/LessonPlanner/internal/prompt"
	"github.com/Corphon/LessonPlanner/internal/storage"
	"github.com/Corphon/LessonPlanner/internal/structure"
	"github.com/Corphon/LessonPlanner/internal/utils"
	"github.com/Corphon/LessonPlanner/internal/validation"
)

// ProviderField names the optional request key that selects a model backend.
// It is removed before strict validation.
const ProviderField = "provider"

// minFallbackCapacidades is how many allowed capacities replace an empty list.
const minFallbackCapacidades = 2

// EngineSource yields the policy engine to use for one request.
type EngineSource interface {
	Engine() *policy.Engine
}

// StaticEngine is an EngineSource that never changes.
type StaticEngine struct{ E *policy.Engine }

func (s StaticEngine) Engine() *policy.Engine { return s.E }

// MarkersStore persists the final markers.
type MarkersStore interface {
	Upsert(ctx context.Context, requestID, tema string, markers models.MarkersRecord) error
}

// GenerateResult is the successful response of a generation.
type GenerateResult struct {
	Success   bool                   `json:"success"`
	Data      *models.LessonDocument `json:"data"`
	Markers   models.MarkersRecord   `json:"markers"`
	RequestID string                 `json:"requestId"`
}

// GenerateOptions carries per-request extras.
type GenerateOptions struct {
	RequestID string
	Tracker   *ProgressTracker
}

// LessonService runs the generation pipeline: validation, curriculum
// lookup, prompt, model call, JSON recovery, value purge, structure repair
// and markers assembly.
type LessonService struct {
	validator   *validation.Validator
	catalog     *curriculum.Catalog
	policy      EngineSource
	llm         *LLMService
	recoverer   *jsonrecovery.Recoverer
	diagnostics *storage.DiagnosticsSink
	store       MarkersStore
	logger      *utils.Logger
	metrics     *utils.PipelineMetrics
}

// LessonDeps lists the collaborators of a LessonService. Only LLM is
// required; the rest fall back to defaults or are disabled.
type LessonDeps struct {
	Validator   *validation.Validator
	Catalog     *curriculum.Catalog
	Policy      EngineSource
	LLM         *LLMService
	Recoverer   *jsonrecovery.Recoverer
	Diagnostics *storage.DiagnosticsSink
	Store       MarkersStore
	Logger      *utils.Logger
	Metrics     *utils.PipelineMetrics
}

func NewLessonService(deps LessonDeps) *LessonService {
	s := &LessonService{
		validator:   deps.Validator,
		catalog:     deps.Catalog,
		policy:      deps.Policy,
		llm:         deps.LLM,
		recoverer:   deps.Recoverer,
		diagnostics: deps.Diagnostics,
		store:       deps.Store,
		logger:      deps.Logger,
		metrics:     deps.Metrics,
	}
	if s.validator == nil {
		s.validator = validation.New()
	}
	if s.catalog == nil {
		s.catalog = curriculum.Default()
	}
	if s.policy == nil {
		s.policy = StaticEngine{E: policy.NewEngine(nil)}
	}
	if s.recoverer == nil {
		s.recoverer = jsonrecovery.New()
	}
	if s.logger == nil {
		s.logger = utils.GetLogger()
	}
	if s.metrics == nil {
		s.metrics = utils.NewPipelineMetrics(nil)
	}
	return s
}

// Catalog returns the curriculum in use.
func (s *LessonService) Catalog() *curriculum.Catalog { return s.catalog }

// Generate runs the whole pipeline for one raw request payload. Every
// failure is terminal and returned as an AppError.
func (s *LessonService) Generate(ctx context.Context, payload map[string]interface{}, opts GenerateOptions) (res *GenerateResult, err error) {
	requestID := opts.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	tracker := opts.Tracker
	log := s.logger.With("request_id", requestID)

	ctx, span := observability.StartSpan(ctx, "lesson.generate", requestID)
	defer func() {
		observability.EndSpan(span, err)
		if err != nil {
			s.metrics.RecordOutcome(string(apperrors.TypeOf(err)))
			tracker.Fail(failureMessage(err))
			return
		}
		s.metrics.RecordOutcome("ok")
		tracker.Complete("")
	}()

	providerName, payload := splitProvider(payload)

	var req *models.LessonRequest
	err = s.stage(ctx, log, requestID, "validate", func(context.Context) error {
		var verr error
		req, verr = s.validator.Validate(payload)
		return verr
	})
	if err != nil {
		return nil, err
	}
	tracker.Advance(StageValidated)

	var match curriculum.Match
	var p prompt.Prompt
	err = s.stage(ctx, log, requestID, "prompt", func(context.Context) error {
		var lerr error
		match, lerr = s.catalog.Lookup(req.Area, req.Competencia, curriculum.Hints{
			Capacidades: req.Capacidades,
			Tema:        req.Tema,
		})
		if lerr != nil {
			return lerr
		}
		p = prompt.Build(req, match)
		return nil
	})
	if err != nil {
		return nil, err
	}
	tracker.Advance(StagePrompt)

	var raw string
	tracker.Advance(StageModel)
	err = s.stage(ctx, log, requestID, "model", func(ctx context.Context) error {
		var cerr error
		raw, cerr = s.llm.Complete(ctx, providerName, p.System, p.User)
		return cerr
	})
	if err != nil {
		return nil, err
	}

	var recovered *jsonrecovery.Result
	err = s.stage(ctx, log, requestID, "recover", func(context.Context) error {
		var rerr error
		recovered, rerr = s.recoverer.Recover(raw)
		return rerr
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordRecovery(recovered.Strategy)
	log.Debug("model output recovered", "strategy", recovered.Strategy)
	tracker.Advance(StageRecovered)

	engine := s.policy.Engine()
	var doc *models.LessonDocument
	_ = s.stage(ctx, log, requestID, "policy", func(context.Context) error {
		tree, _ := engine.PurgeDeep(recovered.Object, req.Valor, models.MarkerValor).(map[string]interface{})
		doc = models.DecodeLesson(tree)
		pinCurriculum(doc, match)
		return nil
	})
	tracker.Advance(StagePolicy)

	_ = s.stage(ctx, log, requestID, "structure", func(context.Context) error {
		structure.Enforce(&doc.Row().Momentos, req.Tema)
		return nil
	})
	tracker.Advance(StageStructure)

	var markers models.MarkersRecord
	_ = s.stage(ctx, log, requestID, "markers", func(context.Context) error {
		markers = NewMarkersBuilder(engine, s.catalog).Build(doc, req)
		return nil
	})

	s.persist(ctx, log, requestID, req, doc, markers)

	return &GenerateResult{Success: true, Data: doc, Markers: markers, RequestID: requestID}, nil
}

// stage runs fn inside a span and records its timing.
func (s *LessonService) stage(ctx context.Context, log *utils.Logger, requestID, name string, fn func(context.Context) error) error {
	ctx, span := observability.StartSpan(ctx, "lesson."+name, requestID)
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	observability.EndSpan(span, err)
	s.metrics.RecordStage(name, elapsed, err)

	if err != nil {
		log.Warn("stage failed", "stage", name, "elapsed_ms", elapsed.Milliseconds(),
			"error_type", string(apperrors.TypeOf(err)), "error", err)
		return err
	}
	log.Info("stage finished", "stage", name, "elapsed_ms", elapsed.Milliseconds())
	return nil
}

// persist writes the diagnostics record and upserts the markers. Both are
// best effort.
func (s *LessonService) persist(ctx context.Context, log *utils.Logger, requestID string, req *models.LessonRequest, doc *models.LessonDocument, markers models.MarkersRecord) {
	s.diagnostics.Write(&models.SessionRecord{
		Success:   true,
		RequestID: requestID,
		Request:   req,
		Data:      doc,
		Markers:   markers,
	})
	if s.store == nil {
		return
	}
	if err := s.store.Upsert(ctx, requestID, req.Tema, markers); err != nil {
		log.Warn("markers upsert failed", "error", err)
	}
}

// pinCurriculum overwrites area and competency with the canonical values and
// keeps only allowed capacities, defaulting to the first two.
func pinCurriculum(doc *models.LessonDocument, match curriculum.Match) {
	doc.Datos.Area = match.Area
	doc.Datos.Competencia = match.Competencia

	got := doc.Datos.Capacidades
	if len(got) == 0 {
		got = doc.Row().Capacidades
	}
	caps := curriculum.FilterCapacidades(got, match.Capacidades)
	if len(caps) == 0 {
		n := minFallbackCapacidades
		if n > len(match.Capacidades) {
			n = len(match.Capacidades)
		}
		caps = append([]string(nil), match.Capacidades[:n]...)
	}
	doc.Datos.Capacidades = caps
	doc.Row().Capacidades = nil
}

// splitProvider removes the provider selector from a copy of payload.
func splitProvider(payload map[string]interface{}) (string, map[string]interface{}) {
	out := make(map[string]interface{}, len(payload))
	name := ""
	for k, v := range payload {
		if k == ProviderField {
			if s, ok := v.(string); ok {
				name = strings.TrimSpace(s)
			}
			continue
		}
		out[k] = v
	}
	return name, out
}

func failureMessage(err error) string {
	var ae *apperrors.AppError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}
