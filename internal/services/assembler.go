package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Assembler concatenates clips, in the given order, without re-encoding.
type Assembler struct {
	media MediaTool
}

func NewAssembler(media MediaTool) *Assembler {
	return &Assembler{media: media}
}

// Assemble writes the manifest for clips and joins them into out.
func (a *Assembler) Assemble(ctx context.Context, clips []string, manifest, out string) error {
	if len(clips) == 0 {
		return stageError(ErrAssembly, StageAssembling, -1, fmt.Errorf("no clips to concatenate"))
	}
	for i, clip := range clips {
		if _, err := os.Stat(clip); err != nil {
			return stageError(ErrAssembly, StageAssembling, i, fmt.Errorf("clip missing: %w", err))
		}
	}

	body, err := buildManifest(clips)
	if err != nil {
		return stageError(ErrAssembly, StageAssembling, -1, err)
	}
	if err := os.WriteFile(manifest, []byte(body), 0o644); err != nil {
		return stageError(ErrAssembly, StageAssembling, -1, fmt.Errorf("failed to write manifest: %w", err))
	}
	if err := a.media.Concat(ctx, manifest, out); err != nil {
		return stageError(ErrAssembly, StageAssembling, -1, err)
	}
	return nil
}

// buildManifest renders an ffmpeg concat list with absolute, quoted paths.
func buildManifest(clips []string) (string, error) {
	var b strings.Builder
	for _, clip := range clips {
		abs, err := filepath.Abs(clip)
		if err != nil {
			return "", fmt.Errorf("failed to resolve clip path %s: %w", clip, err)
		}
		b.WriteString("file '")
		b.WriteString(strings.ReplaceAll(abs, "'", `'\''`))
		b.WriteString("'\n")
	}
	return b.String(), nil
}
