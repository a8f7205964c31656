package gemini

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Corphon/LessonPlanner/internal/llm"
)

func TestInitialize(t *testing.T) {
	_, err := llm.GetProvider("gemini", map[string]string{})
	assert.Error(t, err)

	p, err := llm.GetProvider("gemini", map[string]string{"api_key": "k"})
	require.NoError(t, err)
	assert.Equal(t, defaultModel, p.(*Provider).defaultModel)
	assert.Equal(t, "gemini", p.GetName())
}

func TestExtractText(t *testing.T) {
	assert.Equal(t, "", extractText(nil))
	assert.Equal(t, "", extractText(&genai.GenerateContentResponse{}))

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{
				genai.Text(`{"datos":`),
				&genai.Blob{MIMEType: "image/png"},
				genai.Text(`{}}`),
			}},
		}},
	}
	assert.Equal(t, `{"datos":{}}`, extractText(resp))
}
