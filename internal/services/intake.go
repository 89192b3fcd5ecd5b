package services

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/Lllllllleong/slidecast/internal/models"
	"github.com/google/uuid"
)

// GCSEvent is the payload of a GCS object finalize event.
type GCSEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}

// RenderRegistry is the intake's view of the render records.
type RenderRegistry interface {
	FindByHash(ctx context.Context, fileHash string) (string, bool, error)
	Queue(ctx context.Context, runID string, rec models.RenderRecord) error
	Transition(ctx context.Context, runID, status string, fields map[string]interface{}) error
}

// WorkflowStarter launches the render workflow.
type WorkflowStarter interface {
	Start(ctx context.Context, payload interface{}) (string, error)
}

// ObjectHasher fingerprints a stored object.
type ObjectHasher func(ctx context.Context, bucket, object string) (string, error)

// Intake queues a render for every new deck dropped into the upload bucket.
type Intake struct {
	hash     ObjectHasher
	registry RenderRegistry
	starter  WorkflowStarter
}

func NewIntake(hash ObjectHasher, registry RenderRegistry, starter WorkflowStarter) *Intake {
	return &Intake{hash: hash, registry: registry, starter: starter}
}

// Process handles one finalize event. Non-PDF objects and duplicates are skipped.
func (i *Intake) Process(ctx context.Context, e GCSEvent) error {
	logCtx := slog.With("gcsBucket", e.Bucket, "gcsObject", e.Name)
	if !strings.EqualFold(path.Ext(e.Name), ".pdf") {
		logCtx.Info("Ignoring non-PDF object.")
		return nil
	}

	fileHash, err := i.hash(ctx, e.Bucket, e.Name)
	if err != nil {
		logCtx.Error("Failed to calculate file hash", "error", err)
		return fmt.Errorf("failed to calculate file hash: %w", err)
	}
	logCtx = logCtx.With("fileHash", fileHash)

	existing, found, err := i.registry.FindByHash(ctx, fileHash)
	if err != nil {
		logCtx.Error("Failed to check for duplicate", "error", err)
		return err
	}
	if found {
		logCtx.Info("Duplicate deck detected. Skipping.", "existingRunId", existing)
		return nil
	}

	runID := uuid.NewString()
	logCtx = logCtx.With("runId", runID)
	rec := models.RenderRecord{SourceName: path.Base(e.Name), FileHash: fileHash}
	if err := i.registry.Queue(ctx, runID, rec); err != nil {
		logCtx.Error("Failed to create render record", "error", err)
		return err
	}

	execName, err := i.starter.Start(ctx, models.RenderObjectRequest{
		RunID:      runID,
		Bucket:     e.Bucket,
		Object:     e.Name,
		SourceName: rec.SourceName,
	})
	if err != nil {
		logCtx.Error("Failed to trigger workflow", "error", err)
		if uerr := i.registry.Transition(ctx, runID, models.StatusFailed, map[string]interface{}{"errorDetails": err.Error()}); uerr != nil {
			logCtx.Error("CRITICAL: Failed to mark render as FAILED after a workflow error.", "updateError", uerr)
		}
		return err
	}
	logCtx.Info("Hand-off to workflow complete.", "execution", execName)
	return nil
}
