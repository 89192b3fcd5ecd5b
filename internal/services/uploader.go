package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/Lllllllleong/slidecast/internal/models"
)

// AllowedUploadExtensions are the deck formats accepted by Upload.
var AllowedUploadExtensions = map[string]bool{".pdf": true, ".ppt": true, ".pptx": true}

// UploadRecorder stores metadata about received uploads.
type UploadRecorder interface {
	Record(ctx context.Context, f models.UploadedFile) error
}

// Uploader stores decks in the upload bucket and logs their metadata.
type Uploader struct {
	store    Publisher
	recorder UploadRecorder
	prefix   string
	workRoot string
	now      func() time.Time
}

func NewUploader(store Publisher, recorder UploadRecorder, prefix, workRoot string) *Uploader {
	return &Uploader{store: store, recorder: recorder, prefix: prefix, workRoot: workRoot, now: time.Now}
}

// Upload saves body under a sanitized version of filename and returns its URL.
func (u *Uploader) Upload(ctx context.Context, filename string, body io.Reader) (*models.UploadResponse, error) {
	if filename == "" {
		return nil, InvalidInput("empty filename")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !AllowedUploadExtensions[ext] {
		return nil, InvalidInput("file type not allowed")
	}
	safeName := SecureFilename(filename)
	if safeName == "" {
		return nil, InvalidInput("invalid filename %q", filename)
	}
	logCtx := slog.With("filename", safeName)

	if err := os.MkdirAll(u.workRoot, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	local, err := os.CreateTemp(u.workRoot, "upload-*"+ext)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(local.Name())

	size, err := io.Copy(local, body)
	closeErr := local.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to save upload: %w", err)
	}
	if closeErr != nil {
		return nil, fmt.Errorf("failed to save upload: %w", closeErr)
	}
	if size == 0 {
		return nil, InvalidInput("uploaded file is empty")
	}

	now := u.now().UTC()
	key := fmt.Sprintf("%s%s_%s", u.prefix, now.Format("20060102T150405"), safeName)
	publicURL, err := u.store.Put(ctx, local.Name(), key)
	if err != nil {
		logCtx.Error("Failed to store upload.", "error", err, "gcsObject", key)
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	if u.recorder != nil {
		rec := models.UploadedFile{Filename: safeName, GCSObject: key, GCSURL: publicURL, Size: size, UploadedAt: now}
		if err := u.recorder.Record(ctx, rec); err != nil {
			logCtx.Error("Failed to record upload metadata.", "error", err)
			return nil, err
		}
	}
	logCtx.Info("Upload stored.", "gcsObject", key, "size", size)
	return &models.UploadResponse{Success: true, PublicURL: publicURL}, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// SecureFilename reduces a client supplied name to a safe single path component.
func SecureFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = unsafeFilenameChars.ReplaceAllString(strings.TrimSpace(name), "_")
	name = strings.Trim(name, "._")

	const maxLength = 100
	if len(name) > maxLength {
		ext := filepath.Ext(name)
		name = strings.Trim(name[:maxLength-len(ext)], "._") + ext
	}
	return name
}
