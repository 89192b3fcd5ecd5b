// Package tts wraps the Piper text-to-speech engine.
package tts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// ErrNotInitialized is returned when Synthesize is called before Init or after Close.
var ErrNotInitialized = errors.New("tts engine not initialized")

// PiperConfig holds settings for the Piper CLI.
type PiperConfig struct {
	BinaryPath string
	ModelPath  string
	// Speaker selects a voice in multi-speaker models. Empty uses the default.
	Speaker string
}

// Piper is a process-wide speech engine. It is created once, initialised
// explicitly and shared by all renders; every call runs its own subprocess.
type Piper struct {
	cfg PiperConfig

	mu     sync.RWMutex
	binary string
	ready  bool
}

// NewPiper creates an engine. Call Init before use.
func NewPiper(cfg PiperConfig) *Piper {
	if cfg.BinaryPath == "" {
		cfg.BinaryPath = "piper"
	}
	return &Piper{cfg: cfg}
}

// Init resolves the binary and checks the voice model is readable.
func (p *Piper) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	binary, err := exec.LookPath(p.cfg.BinaryPath)
	if err != nil {
		return fmt.Errorf("piper binary %q not found: %w", p.cfg.BinaryPath, err)
	}
	if p.cfg.ModelPath == "" {
		return fmt.Errorf("piper model path must be set")
	}
	if _, err := os.Stat(p.cfg.ModelPath); err != nil {
		return fmt.Errorf("piper model %q not readable: %w", p.cfg.ModelPath, err)
	}
	p.binary = binary
	p.ready = true
	return nil
}

// Synthesize speaks text into a WAV file at out.
func (p *Piper) Synthesize(ctx context.Context, text, out string) error {
	p.mu.RLock()
	binary, ready := p.binary, p.ready
	p.mu.RUnlock()
	if !ready {
		return ErrNotInitialized
	}

	args := []string{"--model", p.cfg.ModelPath, "--output_file", out}
	if p.cfg.Speaker != "" {
		args = append(args, "--speaker", p.cfg.Speaker)
	}
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdin = strings.NewReader(text)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("piper did not finish: %w", ctx.Err())
		}
		return fmt.Errorf("piper failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	info, err := os.Stat(out)
	if err != nil {
		return fmt.Errorf("piper produced no output: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("piper produced an empty file")
	}
	return nil
}

// Close releases the engine. Later Synthesize calls fail.
func (p *Piper) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ready = false
	return nil
}
