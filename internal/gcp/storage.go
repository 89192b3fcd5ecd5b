package gcp

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/Lllllllleong/slidecast/internal/models"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
)

// ErrObjectExists is returned by Put when the destination key is already taken.
var ErrObjectExists = errors.New("object already exists")

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// ObjectStore publishes local files into one bucket and lists or deletes them.
type ObjectStore struct {
	client       *storage.Client
	bucket       string
	signedURLTTL time.Duration
	maxRetries   int
	backoff      time.Duration
}

// NewObjectStore creates a store for bucket. Objects are referenced by V4
// signed URLs valid for signedURLTTL.
func NewObjectStore(client *storage.Client, bucket string, signedURLTTL time.Duration) *ObjectStore {
	return &ObjectStore{
		client:       client,
		bucket:       bucket,
		signedURLTTL: signedURLTTL,
		maxRetries:   4,
		backoff:      time.Second,
	}
}

// Bucket returns the bucket name.
func (s *ObjectStore) Bucket() string { return s.bucket }

// Put uploads localPath to key and returns a retrievable reference.
// Existing objects are never overwritten.
func (s *ObjectStore) Put(ctx context.Context, localPath, key string) (string, error) {
	if err := s.uploadFile(ctx, localPath, key); err != nil {
		return "", err
	}
	return s.reference(key), nil
}

// List returns every object under prefix, oldest first.
func (s *ObjectStore) List(ctx context.Context, prefix string) ([]models.VideoEntry, error) {
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	var entries []models.VideoEntry
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects in gs://%s/%s: %w", s.bucket, prefix, err)
		}
		if strings.HasSuffix(attrs.Name, "/") {
			continue
		}
		entries = append(entries, models.VideoEntry{
			Name:      path.Base(attrs.Name),
			Size:      attrs.Size,
			CreatedAt: attrs.Created,
			Reference: s.reference(attrs.Name),
		})
	}
	sortByCreated(entries)
	return entries, nil
}

// Delete removes key. It reports false when the object did not exist.
func (s *ObjectStore) Delete(ctx context.Context, key string) (bool, error) {
	err := s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to delete gs://%s/%s: %w", s.bucket, key, err)
	}
	return true, nil
}

// reference prefers a signed URL and falls back to the public object URL
// when the credentials cannot sign (e.g. user credentials in local runs).
func (s *ObjectStore) reference(key string) string {
	signed, err := s.client.Bucket(s.bucket).SignedURL(key, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: time.Now().Add(s.signedURLTTL),
	})
	if err == nil {
		return signed
	}
	slog.Warn("Could not sign object URL, using public URL.", "gcsObject", key, "error", err)
	return publicURL(s.bucket, key)
}

func (s *ObjectStore) uploadFile(ctx context.Context, localPath, destObject string) error {
	backoff := s.backoff
	var lastErr error

	for i := 0; i < s.maxRetries; i++ {
		err := func() error {
			localFileReader, err := os.Open(localPath)
			if err != nil {
				return fmt.Errorf("could not open local file %s: %w", localPath, err)
			}
			defer localFileReader.Close()

			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
			defer cancel()

			gcsWriter := s.client.Bucket(s.bucket).Object(destObject).
				If(storage.Conditions{DoesNotExist: true}).NewWriter(writeCtx)
			gcsWriter.ContentType = contentTypeFor(destObject)

			if _, err := io.Copy(gcsWriter, localFileReader); err != nil {
				_ = gcsWriter.Close()
				return fmt.Errorf("io.Copy to GCS failed: %w", err)
			}
			if err := gcsWriter.Close(); err != nil {
				return fmt.Errorf("failed to close GCS writer (finalize upload): %w", err)
			}
			return nil
		}()

		if err == nil {
			return nil
		}
		if isPreconditionFailed(err) {
			return fmt.Errorf("gs://%s/%s: %w", s.bucket, destObject, ErrObjectExists)
		}

		lastErr = err
		slog.Warn(
			"Upload failed, will retry.",
			"gcsObject", destObject,
			"attempt", i+1,
			"maxRetries", s.maxRetries,
			"backoff", backoff.String(),
			"error", err,
		)

		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			slog.Error("Context cancelled during backoff. Aborting retries.", "gcsObject", destObject, "error", ctx.Err())
			return ctx.Err()
		}
	}
	slog.Error("Upload failed after all retries.", "gcsObject", destObject, "error", lastErr)
	return fmt.Errorf("upload for %s failed after all retries: %w", destObject, lastErr)
}

// ReadObject downloads an object into memory, refusing objects above limit bytes.
func ReadObject(ctx context.Context, client *storage.Client, bucket, object string, limit int64) ([]byte, error) {
	reader, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get GCS object reader for gs://%s/%s: %w", bucket, object, err)
	}
	defer reader.Close()
	if limit > 0 && reader.Attrs.Size > limit {
		return nil, fmt.Errorf("gs://%s/%s is %d bytes, limit is %d", bucket, object, reader.Attrs.Size, limit)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read gs://%s/%s: %w", bucket, object, err)
	}
	return data, nil
}

// HashObject streams an object through sha256.
func HashObject(ctx context.Context, client *storage.Client, bucket, object string) (string, error) {
	reader, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get GCS object reader for gs://%s/%s: %w", bucket, object, err)
	}
	defer reader.Close()
	hash := sha256.New()
	if _, err := io.Copy(hash, reader); err != nil {
		return "", fmt.Errorf("failed to hash gs://%s/%s: %w", bucket, object, err)
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

func isPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed
}

func publicURL(bucket, key string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, (&url.URL{Path: key}).EscapedPath())
}

func contentTypeFor(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".mp4":
		return "video/mp4"
	case ".pdf":
		return "application/pdf"
	case ".ppt":
		return "application/vnd.ms-powerpoint"
	case ".pptx":
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	default:
		return "application/octet-stream"
	}
}

func sortByCreated(entries []models.VideoEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
}
