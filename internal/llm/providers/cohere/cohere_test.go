package cohere

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Corphon/LessonPlanner/internal/llm"
)

func TestResolveModel(t *testing.T) {
	assert.Equal(t, "command-a-03-2025", ResolveModel(""))
	assert.Equal(t, "command-r-08-2024", ResolveModel("Command-R"))
	assert.Equal(t, "command-r-plus-08-2024", ResolveModel("command-r-plus"))
	assert.Equal(t, "custom", ResolveModel(" custom "))
}

func TestInitializeRequiresKey(t *testing.T) {
	_, err := llm.GetProvider("cohere", map[string]string{})
	assert.Error(t, err)
}

func TestCompleteTextSendsChatRequest(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat", r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"text":" {\"ok\":true} ","finish_reason":"COMPLETE"}`))
	}))
	defer srv.Close()

	p, err := llm.GetProvider("cohere", map[string]string{"api_key": "k", "base_url": srv.URL})
	require.NoError(t, err)

	resp, err := p.CompleteText(context.Background(), llm.CompletionRequest{
		Prompt: "user", SystemPrompt: "sys", Temperature: 0.2, JSONMode: true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, resp.Text)
	assert.Equal(t, "command-a-03-2025", resp.ModelName)

	assert.Equal(t, "user", got["message"])
	assert.Equal(t, "sys", got["preamble"])
	assert.Equal(t, float64(1200), got["max_tokens"])
	assert.Equal(t, map[string]interface{}{"type": "json_object"}, got["response_format"])
}

func TestCompleteTextFallsBackOnRetiredModel(t *testing.T) {
	var mu sync.Mutex
	var models []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		models = append(models, body.Model)
		mu.Unlock()
		if body.Model == "command-r-08-2024" {
			_, _ = w.Write([]byte(`{"text":"{}"}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"model 'x' was removed"}`))
	}))
	defer srv.Close()

	p, err := llm.GetProvider("cohere", map[string]string{"api_key": "k", "base_url": srv.URL, "default_model": "old"})
	require.NoError(t, err)

	resp, err := p.CompleteText(context.Background(), llm.CompletionRequest{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "command-r-08-2024", resp.ModelName)
	assert.Equal(t, []string{"old", "command-a-03-2025", "command-r-08-2024"}, models)
}

func TestCompleteTextSurfacesOtherErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid api token"}`))
	}))
	defer srv.Close()

	p, err := llm.GetProvider("cohere", map[string]string{"api_key": "k", "base_url": srv.URL})
	require.NoError(t, err)

	_, err = p.CompleteText(context.Background(), llm.CompletionRequest{Prompt: "p"})
	var apiErr *llm.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, 1, calls)
}
