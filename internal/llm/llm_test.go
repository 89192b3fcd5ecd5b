package llm

import (
	"context"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	f, err := os.Create(p)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return p
}

func TestLoadImage(t *testing.T) {
	dir := t.TempDir()
	img, err := LoadImage(writePNG(t, dir, "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, "png", img.Format())

	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("just text"), 0o644))
	_, err = LoadImage(txt)
	assert.Error(t, err)

	_, err = LoadImage(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
}

func TestCleanResponse(t *testing.T) {
	tests := map[string]string{
		"  plain text  ":                 "plain text",
		"```\nfenced\n```":               "fenced",
		"```markdown\nWelcome all.\n```": "Welcome all.",
		"":                               "",
	}
	for in, want := range tests {
		assert.Equal(t, want, CleanResponse(in), "input %q", in)
	}
}

func TestOpenAICompleter_Complete(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"This slide shows revenue."}}]}`))
	}))
	defer srv.Close()

	c, err := NewOpenAICompleter("sk-test", "gpt-4o-mini", NarratorSystemPrompt, option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	require.NoError(t, err)

	text, err := c.Complete(context.Background(), NarrationUserPrompt, []string{writePNG(t, t.TempDir(), "slide.png")})
	require.NoError(t, err)
	assert.Equal(t, "This slide shows revenue.", text)

	messages, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	user := messages[1].(map[string]any)
	parts := user["content"].([]any)
	require.Len(t, parts, 2)
	assert.Equal(t, "image_url", parts[1].(map[string]any)["type"])
}

func TestOpenAICompleter_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer srv.Close()

	c, err := NewOpenAICompleter("sk-test", "", "", option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "hi", nil)
	assert.Error(t, err)
}

func TestNewOpenAICompleter_RequiresKey(t *testing.T) {
	_, err := NewOpenAICompleter("", "", "")
	assert.Error(t, err)
}
