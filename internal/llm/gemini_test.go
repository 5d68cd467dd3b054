package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiContents(t *testing.T) {
	contents := geminiContents([]Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
	})
	require.Len(t, contents, 2)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "model", contents[1].Role)
	assert.Equal(t, "hello", contents[1].Parts[0].Text)
}

func TestGeminiGenerate(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content":      map[string]any{"role": "model", "parts": []map[string]any{{"text": "Blocks snap together like LEGO! 🧱"}}},
				"finishReason": "MAX_TOKENS",
			}},
			"usageMetadata": map[string]any{"promptTokenCount": 12, "candidatesTokenCount": 8, "totalTokenCount": 20},
		})
	}))
	t.Cleanup(server.Close)

	p, err := NewGemini(context.Background(), ProviderConfig{APIKey: "g-key", Model: "gemini-2.0-flash", BaseURL: server.URL})
	require.NoError(t, err)

	resp, err := p.Generate(context.Background(), Request{
		System:    "You are Sathi.",
		Messages:  []Message{{Role: RoleUser, Content: "What is a sprite?"}},
		MaxTokens: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, "Blocks snap together like LEGO! 🧱", resp.Text)
	assert.True(t, resp.Truncated)
	assert.Equal(t, 12, resp.InputTokens)
	assert.True(t, strings.HasSuffix(path, "models/gemini-2.0-flash:generateContent"), path)
	assert.Equal(t, "gemini/gemini-2.0-flash", p.Name())
}
