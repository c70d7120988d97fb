package factory

import (
	"testing"

	"ai-memory-capture/pkg/llm/ollama"
	llmopenai "ai-memory-capture/pkg/llm/openai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMProvider(t *testing.T) {
	p, err := NewLLMProvider(ProviderConfig{Type: "ollama", Model: "llama3"})
	require.NoError(t, err)
	o, ok := p.(*ollama.OllamaProvider)
	require.True(t, ok)
	assert.Equal(t, "http://localhost:11434", o.BaseURL)

	p, err = NewLLMProvider(ProviderConfig{Type: "openai", Model: "gpt-3.5-turbo", APIKey: "k"})
	require.NoError(t, err)
	_, ok = p.(*llmopenai.OpenAIProvider)
	assert.True(t, ok)

	_, err = NewLLMProvider(ProviderConfig{Type: "openai"})
	assert.Error(t, err)

	_, err = NewLLMProvider(ProviderConfig{Type: "gemini"})
	assert.Error(t, err)
}
