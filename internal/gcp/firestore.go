package gcp

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/Lllllllleong/slidecast/internal/models"
)

// NewFirestoreClient creates and returns a new Firestore client for the given project ID.
// It centralizes client creation for all services.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return client, nil
}

// RenderTracker stores one RenderRecord per run, keyed by run ID.
type RenderTracker struct {
	client     *firestore.Client
	collection string
}

// NewRenderTracker creates a tracker writing into collection.
func NewRenderTracker(client *firestore.Client, collection string) *RenderTracker {
	return &RenderTracker{client: client, collection: collection}
}

// Start marks the run as extracting, creating the record when the run was
// not queued by the intake function.
func (t *RenderTracker) Start(ctx context.Context, runID, sourceName string) error {
	now := time.Now()
	data := map[string]interface{}{
		"status":     models.StatusExtracting,
		"sourceName": sourceName,
		"updatedAt":  now,
	}
	snap, err := t.client.Collection(t.collection).Doc(runID).Get(ctx)
	if err != nil || !snap.Exists() {
		data["createdAt"] = now
	}
	if _, err := t.client.Collection(t.collection).Doc(runID).Set(ctx, data, firestore.MergeAll); err != nil {
		return fmt.Errorf("failed to start render record %s: %w", runID, err)
	}
	return nil
}

// Transition records a new status together with any extra fields.
func (t *RenderTracker) Transition(ctx context.Context, runID, status string, fields map[string]interface{}) error {
	updates := []firestore.Update{
		{Path: "status", Value: status},
		{Path: "updatedAt", Value: time.Now()},
	}
	for path, value := range fields {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}
	if _, err := t.client.Collection(t.collection).Doc(runID).Update(ctx, updates); err != nil {
		return fmt.Errorf("failed to update render record %s to %s: %w", runID, status, err)
	}
	return nil
}

// Queue creates a QUEUED record for a deck waiting on the workflow.
func (t *RenderTracker) Queue(ctx context.Context, runID string, rec models.RenderRecord) error {
	rec.Status = models.StatusQueued
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	if _, err := t.client.Collection(t.collection).Doc(runID).Create(ctx, rec); err != nil {
		return fmt.Errorf("failed to create render record %s: %w", runID, err)
	}
	return nil
}

// FindByHash returns the ID of a render already created for the same file.
func (t *RenderTracker) FindByHash(ctx context.Context, fileHash string) (string, bool, error) {
	docs, err := t.client.Collection(t.collection).Where("fileHash", "==", fileHash).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return "", false, fmt.Errorf("failed to query for duplicates: %w", err)
	}
	if len(docs) > 0 {
		return docs[0].Ref.ID, true, nil
	}
	return "", false, nil
}

// UploadLog records decks received through the upload endpoint.
type UploadLog struct {
	client     *firestore.Client
	collection string
}

// NewUploadLog creates a log writing into collection.
func NewUploadLog(client *firestore.Client, collection string) *UploadLog {
	return &UploadLog{client: client, collection: collection}
}

// Record adds one upload entry.
func (l *UploadLog) Record(ctx context.Context, f models.UploadedFile) error {
	if _, _, err := l.client.Collection(l.collection).Add(ctx, f); err != nil {
		return fmt.Errorf("failed to record upload %s: %w", f.Filename, err)
	}
	return nil
}
