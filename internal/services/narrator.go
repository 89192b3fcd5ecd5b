package services

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Lllllllleong/slidecast/internal/llm"
)

// Narrator asks the completion service what to say over a slide.
type Narrator struct {
	completer Completer
	prompt    string
	timeout   time.Duration
}

// NewNarrator creates a narrator. A zero timeout disables the per-call deadline.
func NewNarrator(completer Completer, timeout time.Duration) *Narrator {
	return &Narrator{completer: completer, prompt: llm.NarrationUserPrompt, timeout: timeout}
}

// Narrate returns the narration for one slide. Every failure is fatal for the run.
func (n *Narrator) Narrate(ctx context.Context, slide Slide) (string, error) {
	if _, err := os.Stat(slide.ImagePath); err != nil {
		return "", stageError(ErrNarration, StageNarrating, slide.Index, fmt.Errorf("slide image missing: %w", err))
	}

	callCtx := ctx
	if n.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}
	text, err := n.completer.Complete(callCtx, n.prompt, []string{slide.ImagePath})
	if err != nil {
		return "", stageError(ErrNarration, StageNarrating, slide.Index, err)
	}
	return strings.TrimSpace(text), nil
}
