// internal/llm/providers/gemini/gemini.go
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/Corphon/LessonPlanner/internal/llm"
)

const defaultModel = "gemini-1.5-flash"

func init() {
	llm.Register("gemini", func() llm.Provider {
		return &Provider{
			recommendedModels: []string{"gemini-1.5-flash", "gemini-1.5-pro", "gemini-2.0-flash"},
		}
	})
}

// Provider uses the Gemini SDK. A client is opened per call so the provider
// holds no connection state between requests.
type Provider struct {
	apiKey            string
	endpoint          string
	defaultModel      string
	recommendedModels []string
}

func (p *Provider) Initialize(config map[string]string) error {
	apiKey, exists := config["api_key"]
	if !exists || apiKey == "" {
		return errors.New("gemini API key not provided")
	}
	p.apiKey = apiKey
	p.defaultModel = defaultModel
	if model := strings.TrimSpace(config["default_model"]); model != "" {
		p.defaultModel = model
	}
	p.endpoint = strings.TrimSpace(config["base_url"])
	return nil
}

func (p *Provider) GetName() string {
	return "gemini"
}

func (p *Provider) GetSupportedModels() []string {
	return p.recommendedModels
}

func (p *Provider) CompleteText(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}

	opts := []option.ClientOption{option.WithAPIKey(p.apiKey)}
	if p.endpoint != "" {
		opts = append(opts, option.WithEndpoint(p.endpoint))
	}
	cl, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(model)
	m.SetTemperature(req.Temperature)
	if req.MaxTokens > 0 {
		m.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if req.JSONMode {
		m.ResponseMIMEType = "application/json"
	}
	if req.SystemPrompt != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.SystemPrompt)},
		}
	}

	resp, err := m.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	text := extractText(resp)
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("gemini returned an empty answer")
	}

	out := &llm.CompletionResponse{
		Text:         strings.TrimSpace(text),
		ModelName:    model,
		ProviderName: p.GetName(),
	}
	if len(resp.Candidates) > 0 {
		out.FinishReason = resp.Candidates[0].FinishReason.String()
	}
	if resp.UsageMetadata != nil {
		out.TokensUsed = int(resp.UsageMetadata.TotalTokenCount)
	}
	return out, nil
}

// extractText concatenates the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	return text.String()
}
