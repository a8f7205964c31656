// internal/llm/providers/cohere/cohere.go
package cohere

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/Corphon/LessonPlanner/internal/llm"
)

const (
	defaultBaseURL   = "https://api.cohere.ai/v1"
	defaultModel     = "command-a-03-2025"
	defaultMaxTokens = 1200
)

// fallbackModels are tried in order when the configured model is retired.
var fallbackModels = []string{
	"command-a-03-2025",
	"command-r-08-2024",
	"command-r-plus-08-2024",
}

var retiredModel = regexp.MustCompile(`(?i)was removed|unknown model|not found`)

func init() {
	llm.Register("cohere", func() llm.Provider {
		return &Provider{
			recommendedModels: append([]string(nil), fallbackModels...),
			baseURL:           defaultBaseURL,
		}
	})
}

type Provider struct {
	apiKey            string
	baseURL           string
	client            *http.Client
	defaultModel      string
	recommendedModels []string
}

// ResolveModel maps retired aliases onto their dated snapshots.
func ResolveModel(raw string) string {
	raw = strings.TrimSpace(raw)
	switch strings.ToLower(raw) {
	case "":
		return defaultModel
	case "command-r-plus":
		return "command-r-plus-08-2024"
	case "command-r":
		return "command-r-08-2024"
	}
	return raw
}

func (p *Provider) Initialize(config map[string]string) error {
	apiKey, exists := config["api_key"]
	if !exists || apiKey == "" {
		return errors.New("cohere API key not provided")
	}

	p.apiKey = apiKey
	p.client = &http.Client{}
	p.defaultModel = ResolveModel(config["default_model"])

	if baseURL, exists := config["base_url"]; exists && baseURL != "" {
		p.baseURL = strings.TrimRight(baseURL, "/")
	}
	return nil
}

func (p *Provider) GetName() string {
	return "cohere"
}

func (p *Provider) GetSupportedModels() []string {
	return p.recommendedModels
}

// CompleteText calls the chat endpoint. When the configured model has been
// retired it tries each fallback model once.
func (p *Provider) CompleteText(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}

	resp, err := p.chat(ctx, model, req)
	if err == nil || !retiredModel.MatchString(err.Error()) {
		return resp, err
	}

	firstErr := err
	for _, m := range fallbackModels {
		if m == model {
			continue
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if resp, err := p.chat(ctx, m, req); err == nil {
			return resp, nil
		}
	}
	return nil, firstErr
}

func (p *Provider) chat(ctx context.Context, model string, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	requestBody := map[string]interface{}{
		"model":             model,
		"temperature":       req.Temperature,
		"message":           req.Prompt,
		"chat_history":      []interface{}{},
		"prompt_truncation": "auto",
		"connectors":        []interface{}{},
		"max_tokens":        maxTokens,
	}
	if req.SystemPrompt != "" {
		requestBody["preamble"] = req.SystemPrompt
	}
	if req.JSONMode {
		requestBody["response_format"] = map[string]string{"type": "json_object"}
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat", bytes.NewReader(jsonData))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	if httpResp.StatusCode != http.StatusOK {
		var errorResp struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		msg := string(body)
		if json.Unmarshal(body, &errorResp) == nil {
			if errorResp.Message != "" {
				msg = errorResp.Message
			} else if errorResp.Error != "" {
				msg = errorResp.Error
			}
		}
		return nil, &llm.APIError{Provider: p.GetName(), StatusCode: httpResp.StatusCode, Message: msg}
	}

	var response struct {
		Text         string `json:"text"`
		OutputText   string `json:"output_text"`
		FinishReason string `json:"finish_reason"`
		Meta         struct {
			BilledUnits struct {
				InputTokens  int `json:"input_tokens"`
				OutputTokens int `json:"output_tokens"`
			} `json:"billed_units"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("decode cohere response: %w", err)
	}

	text := response.Text
	if text == "" {
		text = response.OutputText
	}
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("cohere returned an empty answer")
	}

	return &llm.CompletionResponse{
		Text:         strings.TrimSpace(text),
		FinishReason: response.FinishReason,
		TokensUsed:   response.Meta.BilledUnits.InputTokens + response.Meta.BilledUnits.OutputTokens,
		ModelName:    model,
		ProviderName: p.GetName(),
	}, nil
}
