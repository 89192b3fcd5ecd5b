package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Lllllllleong/slidecast/internal/gcp"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the slidecast services.
type Config struct {
	ProjectID      string
	VertexAIRegion string
	VertexModel    string

	// LLMProvider selects the completion backend: "vertex" or "openai".
	LLMProvider  string
	OpenAIAPIKey string
	OpenAIModel  string

	VideoBucket       string
	VideoPrefix       string
	UploadBucket      string
	UploadPrefix      string
	SignedURLTTL      time.Duration
	RendersCollection string
	UploadsCollection string

	WorkflowID       string
	WorkflowLocation string

	FFmpegPath   string
	AudioBitrate string
	PiperPath    string
	PiperModel   string

	WorkRoot         string
	Workers          int
	NarrationTimeout time.Duration
	SynthesisTimeout time.Duration
	MediaTimeout     time.Duration

	MaxUploadBytes  int64
	AllowedOrigins  []string
	PromptImageRoot string
}

// Load reads configuration for the cloud services. A .env file in the
// working directory is applied first when present.
func Load() (*Config, error) {
	return load(true)
}

// LoadLocal reads configuration for the command line tool, which publishes
// to a local directory and needs no buckets.
func LoadLocal() (*Config, error) {
	return load(false)
}

func load(cloud bool) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Could not load .env file", "error", err)
	}

	projectID := gcp.GetEnv("PROJECT_ID", "")
	videoBucket := gcp.GetEnv("VIDEO_BUCKET", "")
	if cloud {
		if projectID == "" {
			return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
		}
		if videoBucket == "" {
			return nil, fmt.Errorf("VIDEO_BUCKET environment variable must be set")
		}
	}

	cfg := &Config{
		ProjectID:         projectID,
		VertexAIRegion:    gcp.GetEnv("VERTEX_AI_REGION", "us-central1"),
		VertexModel:       gcp.GetEnv("VERTEX_MODEL", "gemini-1.5-pro"),
		LLMProvider:       strings.ToLower(gcp.GetEnv("LLM_PROVIDER", "vertex")),
		OpenAIAPIKey:      gcp.GetEnv("OPENAI_API_KEY", ""),
		OpenAIModel:       gcp.GetEnv("OPENAI_MODEL", "gpt-4o-mini"),
		VideoBucket:       videoBucket,
		VideoPrefix:       gcp.GetEnv("VIDEO_PREFIX", "videos/"),
		UploadBucket:      gcp.GetEnv("UPLOAD_BUCKET", videoBucket),
		UploadPrefix:      gcp.GetEnv("UPLOAD_PREFIX", "uploads/"),
		RendersCollection: gcp.GetEnv("RENDERS_COLLECTION", "renders"),
		UploadsCollection: gcp.GetEnv("UPLOADS_COLLECTION", "uploaded_files"),
		WorkflowID:        gcp.GetEnv("WORKFLOW_ID", "slidecast-render"),
		WorkflowLocation:  gcp.GetEnv("WORKFLOW_LOCATION", "us-central1"),
		FFmpegPath:        gcp.GetEnv("FFMPEG_PATH", "ffmpeg"),
		AudioBitrate:      gcp.GetEnv("AUDIO_BITRATE", "192k"),
		PiperPath:         gcp.GetEnv("PIPER_PATH", "piper"),
		PiperModel:        gcp.GetEnv("PIPER_MODEL", ""),
		WorkRoot:          gcp.GetEnv("WORK_ROOT", filepath.Join(os.TempDir(), "slidecast")),
		PromptImageRoot:   gcp.GetEnv("PROMPT_IMAGE_ROOT", filepath.Join(os.TempDir(), "slidecast-images")),
		AllowedOrigins:    splitList(gcp.GetEnv("ALLOWED_ORIGINS", "*")),
	}
	if cfg.LLMProvider != "vertex" && cfg.LLMProvider != "openai" {
		return nil, fmt.Errorf("LLM_PROVIDER must be \"vertex\" or \"openai\", got %q", cfg.LLMProvider)
	}
	if cfg.LLMProvider == "openai" && cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY must be set when LLM_PROVIDER is openai")
	}
	if cfg.LLMProvider == "vertex" && projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID must be set when LLM_PROVIDER is vertex")
	}

	var err error
	if cfg.Workers, err = intEnv("WORKERS", 1); err != nil {
		return nil, err
	}
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("WORKERS must be at least 1, got %d", cfg.Workers)
	}
	maxMB, err := intEnv("MAX_UPLOAD_MB", 200)
	if err != nil {
		return nil, err
	}
	cfg.MaxUploadBytes = int64(maxMB) * 1024 * 1024

	if cfg.SignedURLTTL, err = durationEnv("SIGNED_URL_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.NarrationTimeout, err = durationEnv("NARRATION_TIMEOUT", 90*time.Second); err != nil {
		return nil, err
	}
	if cfg.SynthesisTimeout, err = durationEnv("SYNTHESIS_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.MediaTimeout, err = durationEnv("MEDIA_TIMEOUT", 5*time.Minute); err != nil {
		return nil, err
	}
	return cfg, nil
}

func intEnv(key string, fallback int) (int, error) {
	raw := gcp.GetEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := gcp.GetEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 90s: %w", key, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
