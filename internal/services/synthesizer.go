package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// Silent placeholder used whenever speech synthesis fails.
const (
	FallbackDuration   = 2 * time.Second
	FallbackSampleRate = 22050
)

// SpeechResult describes the audio produced for one slide.
type SpeechResult struct {
	Path     string
	Fallback bool
	// Reason is the synthesis error that triggered the fallback.
	Reason error
}

// Synthesizer produces an audio track for every slide: real speech when the
// engine succeeds, a silent placeholder otherwise.
type Synthesizer struct {
	engine  SpeechEngine
	media   MediaTool
	timeout time.Duration
}

// NewSynthesizer creates a synthesizer. A zero timeout disables the per-call deadline.
func NewSynthesizer(engine SpeechEngine, media MediaTool, timeout time.Duration) *Synthesizer {
	return &Synthesizer{engine: engine, media: media, timeout: timeout}
}

// Synthesize writes audio for text to out. Engine failures never surface;
// only a broken silence generator or a cancelled ctx returns an error.
func (s *Synthesizer) Synthesize(ctx context.Context, text, out string) (SpeechResult, error) {
	reason := s.speak(ctx, text, out)
	if reason == nil {
		return SpeechResult{Path: out}, nil
	}
	if ctx.Err() != nil {
		return SpeechResult{}, ctx.Err()
	}

	if err := os.Remove(out); err != nil && !errors.Is(err, os.ErrNotExist) {
		return SpeechResult{}, fmt.Errorf("failed to remove partial audio %s: %w", out, err)
	}
	slog.Warn("Speech synthesis failed, using silent placeholder.", "audioPath", out, "error", reason)
	if err := s.media.Silence(ctx, FallbackDuration, FallbackSampleRate, out); err != nil {
		return SpeechResult{}, fmt.Errorf("failed to generate silent placeholder: %w", err)
	}
	return SpeechResult{Path: out, Fallback: true, Reason: reason}, nil
}

func (s *Synthesizer) speak(ctx context.Context, text, out string) error {
	if text == "" {
		return fmt.Errorf("%w: nothing to say", ErrSynthesis)
	}
	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	if err := s.engine.Synthesize(callCtx, text, out); err != nil {
		return fmt.Errorf("%w: %v", ErrSynthesis, err)
	}
	return nil
}
