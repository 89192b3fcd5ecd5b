// Package pdf parses slide decks and renders their pages to images.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func init() {
	// pdfcpu would otherwise create a config directory under $HOME.
	api.DisableConfigDir()
}

// Reader validates PDFs with pdfcpu and rasterises them with MuPDF.
type Reader struct {
	conf *model.Configuration
}

func NewReader() *Reader {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Reader{conf: conf}
}

// PageCount validates doc and returns its number of pages.
func (r *Reader) PageCount(doc []byte) (int, error) {
	if len(doc) == 0 {
		return 0, fmt.Errorf("document is empty")
	}
	if err := api.Validate(bytes.NewReader(doc), r.conf); err != nil {
		return 0, fmt.Errorf("not a valid PDF: %w", err)
	}
	n, err := api.PageCount(bytes.NewReader(doc), r.conf)
	if err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	return n, nil
}

// Rasterize renders every page at dpi into dir as page_NNN.png and returns
// the paths in page order.
func (r *Reader) Rasterize(ctx context.Context, doc []byte, dpi float64, dir string) ([]string, error) {
	d, err := fitz.NewFromMemory(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer d.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}

	pageCount := d.NumPage()
	paths := make([]string, 0, pageCount)
	for page := 0; page < pageCount; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := d.ImageDPI(page, dpi)
		if err != nil {
			return nil, fmt.Errorf("failed to render page %d: %w", page+1, err)
		}

		out := filepath.Join(dir, fmt.Sprintf("page_%03d.png", page))
		f, err := os.Create(out)
		if err != nil {
			return nil, fmt.Errorf("failed to create image for page %d: %w", page+1, err)
		}
		err = png.Encode(f, img)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, fmt.Errorf("failed to encode page %d: %w", page+1, err)
		}
		paths = append(paths, out)
	}
	return paths, nil
}
