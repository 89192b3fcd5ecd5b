package models

import "time"

// Render status values, in the order a successful run moves through them.
const (
	StatusQueued     = "QUEUED"
	StatusExtracting = "EXTRACTING"
	StatusNarrating  = "NARRATING"
	StatusAssembling = "ASSEMBLING"
	StatusPublishing = "PUBLISHING"
	StatusDone       = "DONE"
	StatusFailed     = "FAILED"
)

// RenderRecord tracks one slide-to-video run in Firestore.
// The document ID is the run ID.
type RenderRecord struct {
	Status       string    `firestore:"status,omitempty"`
	SourceName   string    `firestore:"sourceName,omitempty"`
	FileHash     string    `firestore:"fileHash,omitempty"`
	PageCount    int       `firestore:"pageCount,omitempty"`
	FileName     string    `firestore:"fileName,omitempty"`
	DownloadURL  string    `firestore:"downloadUrl,omitempty"`
	SizeBytes    int64     `firestore:"sizeBytes,omitempty"`
	SilentSlides int       `firestore:"silentSlides,omitempty"`
	ErrorKind    string    `firestore:"errorKind,omitempty"`
	ErrorDetails string    `firestore:"errorDetails,omitempty"`
	CreatedAt    time.Time `firestore:"createdAt,omitempty"`
	UpdatedAt    time.Time `firestore:"updatedAt,omitempty"`
}

// UploadedFile is the metadata stored for every deck received via /api/upload.
type UploadedFile struct {
	Filename   string    `firestore:"filename"`
	GCSObject  string    `firestore:"gcsObject"`
	GCSURL     string    `firestore:"gcsUrl"`
	Size       int64     `firestore:"size"`
	UploadedAt time.Time `firestore:"uploadedAt"`
}
