package services

import (
	"context"
	"time"

	"github.com/Lllllllleong/slidecast/internal/models"
)

// Completer answers a text prompt about zero or more images.
type Completer interface {
	Complete(ctx context.Context, prompt string, imagePaths []string) (string, error)
}

// SpeechEngine speaks text into an audio file.
type SpeechEngine interface {
	Synthesize(ctx context.Context, text, out string) error
}

// MediaTool performs the audio/video encoding operations.
type MediaTool interface {
	Mux(ctx context.Context, image, audio, out string) error
	Concat(ctx context.Context, manifest, out string) error
	Silence(ctx context.Context, d time.Duration, sampleRate int, out string) error
}

// DocumentReader parses and rasterises a PDF held in memory.
type DocumentReader interface {
	PageCount(doc []byte) (int, error)
	Rasterize(ctx context.Context, doc []byte, dpi float64, dir string) ([]string, error)
}

// Publisher is the blob store finished videos are handed to.
type Publisher interface {
	Put(ctx context.Context, localPath, key string) (string, error)
	List(ctx context.Context, prefix string) ([]models.VideoEntry, error)
	Delete(ctx context.Context, key string) (bool, error)
}

// Tracker records render progress. Failures are logged, never fatal.
type Tracker interface {
	Start(ctx context.Context, runID, sourceName string) error
	Transition(ctx context.Context, runID, status string, fields map[string]interface{}) error
}
