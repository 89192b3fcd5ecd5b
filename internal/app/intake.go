package app

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/Lllllllleong/slidecast/internal/config"
	"github.com/Lllllllleong/slidecast/internal/gcp"
	"github.com/Lllllllleong/slidecast/internal/services"
)

// NewCloudIntake wires the deck intake against GCS, Firestore and Workflows.
// The returned func closes every client.
func NewCloudIntake(ctx context.Context, cfg *config.Config) (*services.Intake, func() error, error) {
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	firestoreClient, err := gcp.NewFirestoreClient(ctx, cfg.ProjectID)
	if err != nil {
		storageClient.Close()
		return nil, nil, err
	}
	starter, err := gcp.NewWorkflowStarter(ctx, cfg.ProjectID, cfg.WorkflowLocation, cfg.WorkflowID)
	if err != nil {
		firestoreClient.Close()
		storageClient.Close()
		return nil, nil, err
	}

	hash := func(ctx context.Context, bucket, object string) (string, error) {
		return gcp.HashObject(ctx, storageClient, bucket, object)
	}
	intake := services.NewIntake(hash, gcp.NewRenderTracker(firestoreClient, cfg.RendersCollection), starter)
	closeAll := func() error {
		return errors.Join(starter.Close(), firestoreClient.Close(), storageClient.Close())
	}
	return intake, closeAll, nil
}
