package llm

import (
	"context"
	"testing"

	"github.com/agenthands/healthrisk/internal/config"
	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	ctx := context.Background()
	log := testr.New(t)

	c, err := NewClient(ctx, config.LLMConfig{}, log)
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = NewClient(ctx, config.LLMConfig{Provider: "OpenAI", Model: "gpt-4o-mini", APIKey: "k"}, log)
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, c)

	c, err = NewClient(ctx, config.LLMConfig{Provider: "claude", Model: "claude-3-5-haiku-latest", APIKey: "k"}, log)
	require.NoError(t, err)
	assert.IsType(t, &ClaudeClient{}, c)

	c, err = NewClient(ctx, config.LLMConfig{Provider: "ollama", Model: "llama3", BaseURL: "http://ollama:11434/"}, log)
	require.NoError(t, err)
	oc, ok := c.(*OpenAIClient)
	require.True(t, ok)
	assert.Equal(t, "llama3", oc.model)

	_, err = NewClient(ctx, config.LLMConfig{Provider: "watson", Model: "x"}, log)
	assert.Error(t, err)
}
