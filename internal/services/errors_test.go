package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageError_MatchesKindAndCause(t *testing.T) {
	cause := errors.New("quota exceeded")
	err := stageError(ErrNarration, StageNarrating, 3, cause)

	assert.ErrorIs(t, err, ErrNarration)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrSynthesis)
	assert.Equal(t, "NARRATING: narration failed (slide 3): quota exceeded", err.Error())
	assert.Equal(t, "PUBLISHING: publishing failed: denied",
		stageError(ErrPublish, StagePublishing, -1, errors.New("denied")).Error())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, ErrInvalidInput, KindOf(InvalidInput("bad %s", "thing")))
	assert.Equal(t, ErrAssembly, KindOf(fmt.Errorf("wrapped: %w", stageError(ErrAssembly, StageAssembling, -1, errors.New("x")))))
	assert.Nil(t, KindOf(errors.New("boom")))
	assert.Nil(t, KindOf(context.Canceled))
}

func TestNewRun(t *testing.T) {
	root := t.TempDir()

	run, err := newRun(root, "")
	require.NoError(t, err)
	assert.DirExists(t, run.SlidesDir())
	assert.Equal(t, filepath.Join(run.Dir, "concat.txt"), run.ManifestPath())
	assert.Equal(t, filepath.Join(run.SlidesDir(), "audio_007.wav"), run.audioPath(7))
	assert.Equal(t, filepath.Join(run.SlidesDir(), "clip_012.mp4"), run.clipPath(12))

	_, err = newRun(root, "not-a-uuid")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRunCleanup(t *testing.T) {
	run, err := newRun(t.TempDir(), "")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(run.SlidesDir(), "page_000.png"), []byte("x"), 0o644))
	final := filepath.Join(run.Dir, "slides_x.mp4")
	require.NoError(t, os.WriteFile(final, []byte("video"), 0o644))

	require.NoError(t, run.cleanup(final))
	assert.FileExists(t, final)
	assert.NoDirExists(t, run.SlidesDir())

	require.NoError(t, run.cleanup(""))
	assert.NoDirExists(t, run.Dir)
}

func TestVideoFileName(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))
	assert.Equal(t, "slides_20260102_020405_0f8fad5b.mp4",
		videoFileName("0f8fad5b-d9cb-469f-a165-70867728950e", at))
}
