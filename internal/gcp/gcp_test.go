package gcp

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"cloud.google.com/go/vertexai/genai"
	"github.com/Lllllllleong/slidecast/internal/models"
	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("SLIDECAST_TEST_KEY", "set")
	assert.Equal(t, "set", GetEnv("SLIDECAST_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", GetEnv("SLIDECAST_TEST_MISSING", "fallback"))
}

func TestIsPreconditionFailed(t *testing.T) {
	wrapped := fmt.Errorf("failed to close GCS writer: %w", &googleapi.Error{Code: http.StatusPreconditionFailed})
	assert.True(t, isPreconditionFailed(wrapped))
	assert.False(t, isPreconditionFailed(&googleapi.Error{Code: http.StatusServiceUnavailable}))
	assert.False(t, isPreconditionFailed(errors.New("network down")))
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t,
		"https://storage.googleapis.com/demo/videos/slides%20one.mp4",
		publicURL("demo", "videos/slides one.mp4"))
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "video/mp4", contentTypeFor("videos/a.MP4"))
	assert.Equal(t, "application/pdf", contentTypeFor("uploads/deck.pdf"))
	assert.Equal(t, "application/octet-stream", contentTypeFor("notes"))
}

func TestSortByCreated(t *testing.T) {
	now := time.Now()
	entries := []models.VideoEntry{
		{Name: "c", CreatedAt: now.Add(2 * time.Minute)},
		{Name: "a", CreatedAt: now},
		{Name: "b", CreatedAt: now.Add(time.Minute)},
	}
	sortByCreated(entries)
	assert.Equal(t, "a", entries[0].Name)
	assert.Equal(t, "b", entries[1].Name)
	assert.Equal(t, "c", entries[2].Name)
}

func TestExtractText(t *testing.T) {
	assert.Equal(t, "", extractText(nil))
	assert.Equal(t, "", extractText(&genai.GenerateContentResponse{}))

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{
				genai.Text("```\nWelcome to the quarterly review. "),
				genai.Text("Revenue grew.\n```"),
			}},
		}},
	}
	assert.Equal(t, "Welcome to the quarterly review. Revenue grew.", extractText(resp))
}
