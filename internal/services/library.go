package services

import (
	"context"
	"strings"

	"github.com/Lllllllleong/slidecast/internal/models"
)

// Library lists and deletes previously published videos.
type Library struct {
	publisher Publisher
	prefix    string
}

func NewLibrary(publisher Publisher, prefix string) *Library {
	return &Library{publisher: publisher, prefix: prefix}
}

func (l *Library) List(ctx context.Context) ([]models.VideoEntry, error) {
	return l.publisher.List(ctx, l.prefix)
}

// Delete removes a video by file name and reports whether it existed.
func (l *Library) Delete(ctx context.Context, name string) (bool, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return false, InvalidInput("invalid video name %q", name)
	}
	return l.publisher.Delete(ctx, l.prefix+name)
}
