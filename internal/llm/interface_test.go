package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	initErr error
	cfg     map[string]string
}

func (s *stubProvider) Initialize(config map[string]string) error {
	s.cfg = config
	return s.initErr
}
func (s *stubProvider) GetName() string              { return "stub" }
func (s *stubProvider) GetSupportedModels() []string { return []string{"stub-1"} }
func (s *stubProvider) CompleteText(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	return &CompletionResponse{Text: req.Prompt}, nil
}

func TestRegistry(t *testing.T) {
	Register("stub-ok", func() Provider { return &stubProvider{} })
	Register("stub-bad", func() Provider { return &stubProvider{initErr: errors.New("no key")} })

	assert.True(t, IsRegistered("stub-ok"))
	assert.False(t, IsRegistered("nope"))
	assert.Contains(t, ListProviders(), "stub-ok")
	assert.Equal(t, []string{"stub-1"}, GetSupportedModelsForProvider("stub-ok"))
	assert.Empty(t, GetSupportedModelsForProvider("nope"))

	p, err := GetProvider("stub-ok", map[string]string{"api_key": "k"})
	require.NoError(t, err)
	assert.Equal(t, "k", p.(*stubProvider).cfg["api_key"])

	_, err = GetProvider("stub-bad", nil)
	assert.ErrorContains(t, err, "no key")

	_, err = GetProvider("nope", nil)
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestAPIError(t *testing.T) {
	err := &APIError{Provider: "cohere", StatusCode: 404, Message: "model not found"}
	assert.Equal(t, "cohere API error (404): model not found", err.Error())
}
