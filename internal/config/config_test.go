package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PROJECT_ID", "demo-project")
	t.Setenv("VIDEO_BUCKET", "demo-videos")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "demo-project", cfg.ProjectID)
	assert.Equal(t, "vertex", cfg.LLMProvider)
	assert.Equal(t, "demo-videos", cfg.UploadBucket)
	assert.Equal(t, "videos/", cfg.VideoPrefix)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, int64(200*1024*1024), cfg.MaxUploadBytes)
	assert.Equal(t, 90*time.Second, cfg.NarrationTimeout)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PROJECT_ID", "demo-project")
	t.Setenv("VIDEO_BUCKET", "demo-videos")
	t.Setenv("WORKERS", "4")
	t.Setenv("SYNTHESIS_TIMEOUT", "15s")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:3000, https://app.example.com")
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 15*time.Second, cfg.SynthesisTimeout)
	assert.Equal(t, "openai", cfg.LLMProvider)
	assert.Equal(t, []string{"http://localhost:3000", "https://app.example.com"}, cfg.AllowedOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing project", env: map[string]string{"PROJECT_ID": "", "VIDEO_BUCKET": "b"}},
		{name: "missing bucket", env: map[string]string{"PROJECT_ID": "p", "VIDEO_BUCKET": ""}},
		{name: "bad workers", env: map[string]string{"PROJECT_ID": "p", "VIDEO_BUCKET": "b", "WORKERS": "many"}},
		{name: "zero workers", env: map[string]string{"PROJECT_ID": "p", "VIDEO_BUCKET": "b", "WORKERS": "0"}},
		{name: "bad timeout", env: map[string]string{"PROJECT_ID": "p", "VIDEO_BUCKET": "b", "MEDIA_TIMEOUT": "soon"}},
		{name: "unknown provider", env: map[string]string{"PROJECT_ID": "p", "VIDEO_BUCKET": "b", "LLM_PROVIDER": "local"}},
		{name: "openai without key", env: map[string]string{"PROJECT_ID": "p", "VIDEO_BUCKET": "b", "LLM_PROVIDER": "openai", "OPENAI_API_KEY": ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadLocal_NoBucketsNeeded(t *testing.T) {
	t.Setenv("PROJECT_ID", "")
	t.Setenv("VIDEO_BUCKET", "")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := LoadLocal()
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.LLMProvider)
	assert.Empty(t, cfg.VideoBucket)

	_, err = Load()
	assert.Error(t, err)
}

func TestLoadLocal_VertexNeedsProject(t *testing.T) {
	t.Setenv("PROJECT_ID", "")
	t.Setenv("VIDEO_BUCKET", "")
	t.Setenv("LLM_PROVIDER", "vertex")

	_, err := LoadLocal()
	assert.Error(t, err)
}
