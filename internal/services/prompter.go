package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Lllllllleong/slidecast/internal/models"
	"github.com/google/uuid"
)

// PrompterConfig holds settings for the prompt endpoints.
type PrompterConfig struct {
	// ImageRoot confines the image paths a caller may reference.
	ImageRoot        string
	WorkRoot         string
	Timeout          time.Duration
	SynthesisTimeout time.Duration
}

// Prompter answers free-form text+image prompts, optionally spoken.
type Prompter struct {
	completer Completer
	engine    SpeechEngine
	config    PrompterConfig
}

func NewPrompter(completer Completer, engine SpeechEngine, config PrompterConfig) *Prompter {
	return &Prompter{completer: completer, engine: engine, config: config}
}

// Prompt returns the model's answer.
func (p *Prompter) Prompt(ctx context.Context, req models.PromptRequest) (string, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return "", InvalidInput("prompt is required")
	}
	images, err := p.resolveImages(req.Images)
	if err != nil {
		return "", err
	}

	callCtx := ctx
	if p.config.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, p.config.Timeout)
		defer cancel()
	}
	text, err := p.completer.Complete(callCtx, prompt, images)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCompletion, err)
	}
	return text, nil
}

// PromptWithSpeech returns the answer spoken as WAV bytes. Unlike a render,
// a synthesis failure here is reported to the caller.
func (p *Prompter) PromptWithSpeech(ctx context.Context, req models.PromptRequest) ([]byte, error) {
	text, err := p.Prompt(ctx, req)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, fmt.Errorf("%w: model returned no text to speak", ErrCompletion)
	}

	if err := os.MkdirAll(p.config.WorkRoot, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	out := filepath.Join(p.config.WorkRoot, "reply_"+uuid.NewString()+".wav")
	defer func() {
		if err := os.Remove(out); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("Failed to remove reply audio.", "path", out, "error", err)
		}
	}()

	callCtx := ctx
	if p.config.SynthesisTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, p.config.SynthesisTimeout)
		defer cancel()
	}
	if err := p.engine.Synthesize(callCtx, text, out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesis, err)
	}
	audio, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("failed to read reply audio: %w", err)
	}
	return audio, nil
}

// resolveImages maps caller paths onto ImageRoot and rejects anything that
// escapes it or does not exist.
func (p *Prompter) resolveImages(paths []string) ([]string, error) {
	root, err := filepath.Abs(p.config.ImageRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve image root: %w", err)
	}
	resolved := make([]string, 0, len(paths))
	for _, raw := range paths {
		if strings.TrimSpace(raw) == "" {
			return nil, InvalidInput("image path cannot be empty")
		}
		candidate := raw
		if !filepath.IsAbs(candidate) {
			candidate = filepath.Join(root, candidate)
		}
		candidate = filepath.Clean(candidate)
		rel, err := filepath.Rel(root, candidate)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil, InvalidInput("image %q is outside the image directory", raw)
		}
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			return nil, InvalidInput("image %q does not exist", raw)
		}
		resolved = append(resolved, candidate)
	}
	return resolved, nil
}
