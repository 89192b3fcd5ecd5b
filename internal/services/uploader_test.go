package services

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/Lllllllleong/slidecast/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorderLog struct {
	records []models.UploadedFile
	err     error
}

func (r *recorderLog) Record(ctx context.Context, f models.UploadedFile) error {
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, f)
	return nil
}

func TestUpload_StoresAndRecords(t *testing.T) {
	store := newFakePublisher()
	log := &recorderLog{}
	work := t.TempDir()
	u := NewUploader(store, log, "uploads/", work)
	u.now = func() time.Time { return time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC) }

	resp, err := u.Upload(context.Background(), "Q3 review (final).pptx", strings.NewReader("deck bytes"))
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "https://videos.example.com/uploads/20260506T070809_Q3_review_final_.pptx", resp.PublicURL)
	assert.Equal(t, int64(10), store.objects["uploads/20260506T070809_Q3_review_final_.pptx"])

	require.Len(t, log.records, 1)
	assert.Equal(t, "Q3_review_final_.pptx", log.records[0].Filename)
	assert.Equal(t, int64(10), log.records[0].Size)

	entries, err := os.ReadDir(work)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpload_Rejects(t *testing.T) {
	u := NewUploader(newFakePublisher(), nil, "uploads/", t.TempDir())

	_, err := u.Upload(context.Background(), "", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = u.Upload(context.Background(), "notes.txt", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = u.Upload(context.Background(), "deck.pdf", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpload_StoreFailure(t *testing.T) {
	store := newFakePublisher()
	store.putErr = errors.New("403")
	log := &recorderLog{}

	_, err := NewUploader(store, log, "uploads/", t.TempDir()).Upload(context.Background(), "deck.pdf", strings.NewReader("%PDF"))
	require.Error(t, err)
	assert.Empty(t, log.records)
}

func TestSecureFilename(t *testing.T) {
	assert.Equal(t, "passwd", SecureFilename("../../etc/passwd"))
	assert.Equal(t, "deck.pdf", SecureFilename(`C:\Users\me\deck.pdf`))
	assert.Equal(t, "my_slides.pdf", SecureFilename("  my slides.pdf "))
	assert.Equal(t, "", SecureFilename("..."))

	long := SecureFilename(strings.Repeat("a", 150) + ".pdf")
	assert.Len(t, long, 100)
	assert.True(t, strings.HasSuffix(long, ".pdf"))
}
