// Package app assembles the slidecast services from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"cloud.google.com/go/storage"
	"github.com/Lllllllleong/slidecast/internal/api"
	"github.com/Lllllllleong/slidecast/internal/config"
	"github.com/Lllllllleong/slidecast/internal/gcp"
	"github.com/Lllllllleong/slidecast/internal/llm"
	"github.com/Lllllllleong/slidecast/internal/media"
	"github.com/Lllllllleong/slidecast/internal/pdf"
	"github.com/Lllllllleong/slidecast/internal/services"
	"github.com/Lllllllleong/slidecast/internal/tts"
)

// Core holds the process-wide collaborators shared by every request.
type Core struct {
	Narrator services.Completer
	Prompter services.Completer
	Speech   *tts.Piper
	Media    *media.FFmpeg

	closers []func() error
}

// NewCore builds the completion, speech and media backends selected by cfg.
// The speech engine is initialised before NewCore returns.
func NewCore(ctx context.Context, cfg *config.Config) (*Core, error) {
	c := &Core{}
	switch cfg.LLMProvider {
	case "openai":
		narrator, err := llm.NewOpenAICompleter(cfg.OpenAIAPIKey, cfg.OpenAIModel, llm.NarratorSystemPrompt)
		if err != nil {
			return nil, err
		}
		prompter, err := llm.NewOpenAICompleter(cfg.OpenAIAPIKey, cfg.OpenAIModel, "")
		if err != nil {
			return nil, err
		}
		c.Narrator, c.Prompter = narrator, prompter
	default:
		vertex, err := gcp.NewVertexClient(ctx, cfg.ProjectID, cfg.VertexAIRegion, cfg.VertexModel)
		if err != nil {
			return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
		}
		c.closers = append(c.closers, vertex.Close)
		c.Narrator, c.Prompter = vertex.Narrator(), vertex.Prompter()
	}

	c.Speech = tts.NewPiper(tts.PiperConfig{BinaryPath: cfg.PiperPath, ModelPath: cfg.PiperModel})
	if err := c.Speech.Init(); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize speech engine: %w", err)
	}
	c.closers = append(c.closers, c.Speech.Close)

	c.Media = media.NewFFmpeg(media.Config{
		Binary:       cfg.FFmpegPath,
		AudioBitrate: cfg.AudioBitrate,
		Timeout:      cfg.MediaTimeout,
	}, nil)
	return c, nil
}

// Pipeline builds a render pipeline publishing through publisher.
func (c *Core) Pipeline(cfg *config.Config, publisher services.Publisher, tracker services.Tracker) *services.Pipeline {
	return services.NewPipeline(
		services.NewExtractor(pdf.NewReader()),
		services.NewNarrator(c.Narrator, cfg.NarrationTimeout),
		services.NewSynthesizer(c.Speech, c.Media, cfg.SynthesisTimeout),
		services.NewComposer(c.Media),
		services.NewAssembler(c.Media),
		publisher,
		tracker,
		services.PipelineConfig{WorkRoot: cfg.WorkRoot, Workers: cfg.Workers, VideoPrefix: cfg.VideoPrefix},
	)
}

// PromptService builds the prompt endpoints' service.
func (c *Core) PromptService(cfg *config.Config) *services.Prompter {
	return services.NewPrompter(c.Prompter, c.Speech, services.PrompterConfig{
		ImageRoot:        cfg.PromptImageRoot,
		WorkRoot:         cfg.WorkRoot,
		Timeout:          cfg.NarrationTimeout,
		SynthesisTimeout: cfg.SynthesisTimeout,
	})
}

// Close releases every backend. It is safe to call more than once.
func (c *Core) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// NewCloudHandler wires the HTTP API against GCS, Firestore and the
// configured model provider.
func NewCloudHandler(ctx context.Context, cfg *config.Config) (http.Handler, *Core, error) {
	core, err := NewCore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		core.Close()
		return nil, nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	core.closers = append(core.closers, storageClient.Close)

	firestoreClient, err := gcp.NewFirestoreClient(ctx, cfg.ProjectID)
	if err != nil {
		core.Close()
		return nil, nil, err
	}
	core.closers = append(core.closers, firestoreClient.Close)

	videos := gcp.NewObjectStore(storageClient, cfg.VideoBucket, cfg.SignedURLTTL)
	uploads := gcp.NewObjectStore(storageClient, cfg.UploadBucket, cfg.SignedURLTTL)
	tracker := gcp.NewRenderTracker(firestoreClient, cfg.RendersCollection)
	uploadLog := gcp.NewUploadLog(firestoreClient, cfg.UploadsCollection)

	server := &api.Server{
		Renderer: core.Pipeline(cfg, videos, tracker),
		Prompter: core.PromptService(cfg),
		Uploader: services.NewUploader(uploads, uploadLog, cfg.UploadPrefix, cfg.WorkRoot),
		Library:  services.NewLibrary(videos, cfg.VideoPrefix),
		ReadObject: func(ctx context.Context, bucket, object string) ([]byte, error) {
			return gcp.ReadObject(ctx, storageClient, bucket, object, cfg.MaxUploadBytes)
		},
		Config: api.Config{AllowedOrigins: cfg.AllowedOrigins, MaxUploadBytes: cfg.MaxUploadBytes},
	}
	slog.Info("Slidecast API initialized.",
		"llmProvider", cfg.LLMProvider,
		"videoBucket", cfg.VideoBucket,
		"uploadBucket", cfg.UploadBucket,
		"workers", cfg.Workers)
	return api.NewRouter(server), core, nil
}
