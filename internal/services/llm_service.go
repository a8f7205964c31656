// internal/services/llm_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	apperrors "github.com/Corphon/LessonPlanner/internal/errors"
	"github.com/Corphon/LessonPlanner/internal/llm"
	"github.com/Corphon/LessonPlanner/internal/utils"
)

// DefaultLLMTimeout bounds one model round trip.
const DefaultLLMTimeout = 240 * time.Second

// LLMOptions selects and configures the model backend.
type LLMOptions struct {
	Provider    string
	Configs     map[string]map[string]string
	Timeout     time.Duration
	Temperature float32
}

// LLMService sends prompts to the configured provider under a hard timeout.
type LLMService struct {
	providerMutex sync.RWMutex
	provider      llm.Provider
	providerName  string
	overrides     map[string]llm.Provider
	configs       map[string]map[string]string
	timeout       time.Duration
	temperature   float32
	readyState    string
	logger        *utils.Logger
	metrics       *utils.PipelineMetrics
}

// NewLLMService builds the default provider. A provider that fails to
// initialize leaves the service not ready instead of failing startup.
func NewLLMService(opts LLMOptions, logger *utils.Logger, metrics *utils.PipelineMetrics) *LLMService {
	s := createBaseLLMService(opts, logger, metrics)
	s.providerName = opts.Provider

	provider, err := llm.GetProvider(opts.Provider, s.configs[opts.Provider])
	if err != nil {
		s.readyState = fmt.Sprintf("Initialization failed: %v", err)
		s.logger.Warn("model provider not ready", "provider", opts.Provider, "error", err)
		return s
	}
	s.provider = provider
	s.readyState = "Ready"
	return s
}

// NewLLMServiceWithProvider wraps an already initialized provider.
func NewLLMServiceWithProvider(p llm.Provider, opts LLMOptions, logger *utils.Logger, metrics *utils.PipelineMetrics) *LLMService {
	s := createBaseLLMService(opts, logger, metrics)
	s.provider = p
	s.providerName = p.GetName()
	s.readyState = "Ready"
	return s
}

func createBaseLLMService(opts LLMOptions, logger *utils.Logger, metrics *utils.PipelineMetrics) *LLMService {
	if logger == nil {
		logger = utils.GetLogger()
	}
	if metrics == nil {
		metrics = utils.NewPipelineMetrics(nil)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultLLMTimeout
	}
	configs := opts.Configs
	if configs == nil {
		configs = map[string]map[string]string{}
	}
	return &LLMService{
		overrides:   make(map[string]llm.Provider),
		configs:     configs,
		timeout:     timeout,
		temperature: opts.Temperature,
		readyState:  "Uninitialized",
		logger:      logger,
		metrics:     metrics,
	}
}

func (s *LLMService) IsReady() bool {
	s.providerMutex.RLock()
	defer s.providerMutex.RUnlock()
	return s.provider != nil
}

func (s *LLMService) GetReadyState() string {
	s.providerMutex.RLock()
	defer s.providerMutex.RUnlock()
	return s.readyState
}

func (s *LLMService) GetProviderName() string {
	s.providerMutex.RLock()
	defer s.providerMutex.RUnlock()
	return s.providerName
}

// Timeout returns the per-call deadline.
func (s *LLMService) Timeout() time.Duration { return s.timeout }

// resolve returns the provider for name. Unknown or empty names select the
// default provider.
func (s *LLMService) resolve(name string) (llm.Provider, string, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	s.providerMutex.RLock()
	def, defName := s.provider, s.providerName
	cached, hit := s.overrides[name]
	s.providerMutex.RUnlock()

	if name == "" || name == defName || !llm.IsRegistered(name) {
		if def == nil {
			return nil, defName, apperrors.NewProviderError("model provider is not configured", nil)
		}
		return def, defName, nil
	}
	if hit {
		return cached, name, nil
	}

	p, err := llm.GetProvider(name, s.configs[name])
	if err != nil {
		return nil, name, apperrors.NewProviderError("model provider unavailable", err)
	}
	s.providerMutex.Lock()
	s.overrides[name] = p
	s.providerMutex.Unlock()
	return p, name, nil
}

// Complete sends one system and user prompt pair and returns the raw text.
// Exceeding the deadline yields a provider_timeout error and partial output
// is discarded.
func (s *LLMService) Complete(ctx context.Context, providerName, system, user string) (string, error) {
	if s == nil {
		return "", apperrors.NewProviderError("model provider is not configured", nil)
	}
	p, name, err := s.resolve(providerName)
	if err != nil {
		return "", err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	resp, err := p.CompleteText(callCtx, llm.CompletionRequest{
		Prompt:       user,
		SystemPrompt: system,
		Temperature:  s.temperature,
		JSONMode:     true,
	})
	elapsed := time.Since(start)
	s.metrics.RecordProviderCall(name, elapsed, err)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			s.logger.Warn("model call timed out", "provider", name, "elapsed_ms", elapsed.Milliseconds())
			return "", apperrors.NewProviderTimeoutError(
				fmt.Sprintf("model did not answer within %s", s.timeout), err)
		}
		s.logger.Warn("model call failed", "provider", name, "error", err)
		return "", apperrors.NewProviderError("model provider call failed", err)
	}
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		return "", apperrors.NewProviderError("model returned an empty answer", nil)
	}

	s.logger.Debug("model call finished", "provider", name, "model", resp.ModelName,
		"elapsed_ms", elapsed.Milliseconds(), "chars", len(resp.Text))
	return resp.Text, nil
}
