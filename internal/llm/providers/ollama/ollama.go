// internal/llm/providers/ollama/ollama.go
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Corphon/LessonPlanner/internal/llm"
)

const (
	defaultHost  = "http://localhost:11434"
	defaultModel = "mistral"
)

func init() {
	factory := func() llm.Provider {
		return &Provider{
			recommendedModels: []string{"mistral", "llama3.1", "qwen2.5"},
			host:              defaultHost,
		}
	}
	llm.Register("ollama", factory)
	llm.Register("ollama-mistral", factory)
}

// Provider talks to a local Ollama server. No API key is needed.
type Provider struct {
	host              string
	client            *http.Client
	defaultModel      string
	recommendedModels []string
}

func (p *Provider) Initialize(config map[string]string) error {
	p.client = &http.Client{}
	p.defaultModel = defaultModel
	if model := strings.TrimSpace(config["default_model"]); model != "" {
		p.defaultModel = model
	}
	if host := strings.TrimSpace(config["base_url"]); host != "" {
		p.host = strings.TrimRight(host, "/")
	}
	return nil
}

func (p *Provider) GetName() string {
	return "ollama"
}

func (p *Provider) GetSupportedModels() []string {
	return p.recommendedModels
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (p *Provider) CompleteText(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}

	messages := []chatMessage{{Role: "user", Content: req.Prompt}}
	if req.SystemPrompt != "" {
		messages = append([]chatMessage{{Role: "system", Content: req.SystemPrompt}}, messages...)
	}

	requestBody := map[string]interface{}{
		"model":       model,
		"messages":    messages,
		"temperature": req.Temperature,
		"stream":      false,
	}
	if req.JSONMode {
		requestBody["format"] = "json"
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.host+"/api/chat", bytes.NewReader(jsonData))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	var response struct {
		Model   string      `json:"model"`
		Message chatMessage `json:"message"`
		Done    bool        `json:"done"`
		Error   string      `json:"error"`

		DoneReason      string `json:"done_reason"`
		PromptEvalCount int    `json:"prompt_eval_count"`
		EvalCount       int    `json:"eval_count"`
	}
	decodeErr := json.Unmarshal(body, &response)

	if httpResp.StatusCode != http.StatusOK {
		msg := string(body)
		if decodeErr == nil && response.Error != "" {
			msg = response.Error
		}
		return nil, &llm.APIError{Provider: p.GetName(), StatusCode: httpResp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode ollama response: %w", decodeErr)
	}
	if strings.TrimSpace(response.Message.Content) == "" {
		return nil, errors.New("ollama returned an empty answer")
	}

	return &llm.CompletionResponse{
		Text:         strings.TrimSpace(response.Message.Content),
		FinishReason: response.DoneReason,
		TokensUsed:   response.PromptEvalCount + response.EvalCount,
		ModelName:    model,
		ProviderName: p.GetName(),
	}, nil
}
