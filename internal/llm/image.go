// Package llm holds the provider-neutral pieces of the completion services
// and the OpenAI implementation.
package llm

import (
	"fmt"
	"net/http"
	"os"
	"strings"
)

// Image is an encoded image ready to attach to a completion request.
type Image struct {
	MIMEType string
	Data     []byte
}

// Format returns the short format name, e.g. "png" for image/png.
func (i Image) Format() string {
	return strings.TrimPrefix(i.MIMEType, "image/")
}

// LoadImage reads an image file and sniffs its MIME type.
func LoadImage(path string) (Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Image{}, fmt.Errorf("failed to read image %s: %w", path, err)
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return Image{}, fmt.Errorf("file %s is not an image (detected %s)", path, mime)
	}
	return Image{MIMEType: mime, Data: data}, nil
}

// LoadImages loads every path in order.
func LoadImages(paths []string) ([]Image, error) {
	images := make([]Image, 0, len(paths))
	for _, p := range paths {
		img, err := LoadImage(p)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}

// CleanResponse trims whitespace and any code fence the model wrapped around its answer.
func CleanResponse(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
