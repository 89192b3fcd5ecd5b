package services

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Stage is a state of the render state machine.
type Stage string

const (
	StageExtracting   Stage = "EXTRACTING"
	StageNarrating    Stage = "NARRATING"
	StageSynthesizing Stage = "SYNTHESIZING"
	StageComposing    Stage = "COMPOSING"
	StageAssembling   Stage = "ASSEMBLING"
	StagePublishing   Stage = "PUBLISHING"
	StageDone         Stage = "DONE"
	StageAborted      Stage = "ABORTED"
)

// Slide is one page of the deck and the artifacts derived from it.
type Slide struct {
	Index       int
	ImagePath   string
	Narration   string
	AudioPath   string
	ClipPath    string
	SilentAudio bool
}

// Run is the scratch state of a single render. Everything under Dir belongs
// to the run.
type Run struct {
	ID        string
	Dir       string
	Slides    []Slide
	FinalPath string
}

func newRun(root, id string) (*Run, error) {
	if id == "" {
		id = uuid.NewString()
	} else if _, err := uuid.Parse(id); err != nil {
		return nil, InvalidInput("run id %q is not a UUID", id)
	}
	dir := filepath.Join(root, id)
	if err := os.MkdirAll(filepath.Join(dir, "slides"), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create run directory: %w", err)
	}
	return &Run{ID: id, Dir: dir}, nil
}

// SlidesDir holds the per-slide images, audio and clips.
func (r *Run) SlidesDir() string { return filepath.Join(r.Dir, "slides") }

// ManifestPath is the concat manifest location.
func (r *Run) ManifestPath() string { return filepath.Join(r.Dir, "concat.txt") }

func (r *Run) audioPath(i int) string {
	return filepath.Join(r.SlidesDir(), fmt.Sprintf("audio_%03d.wav", i))
}

func (r *Run) clipPath(i int) string {
	return filepath.Join(r.SlidesDir(), fmt.Sprintf("clip_%03d.mp4", i))
}

// videoFileName names the final video after the render time and run ID.
func videoFileName(runID string, now time.Time) string {
	short := runID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("slides_%s_%s.mp4", now.UTC().Format("20060102_150405"), short)
}

// cleanup removes everything the run created. When keep is non-empty that
// single file is left in place and the run directory survives with it.
func (r *Run) cleanup(keep string) error {
	if keep == "" {
		return os.RemoveAll(r.Dir)
	}
	entries, err := os.ReadDir(r.Dir)
	if err != nil {
		return err
	}
	var firstErr error
	for _, e := range entries {
		p := filepath.Join(r.Dir, e.Name())
		if p == keep {
			continue
		}
		if err := os.RemoveAll(p); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
