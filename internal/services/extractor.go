package services

import (
	"context"
	"fmt"
)

// SlideDPI is the rasterisation density for extracted pages.
const SlideDPI = 200

// Extractor turns a PDF into one image per page, in page order.
type Extractor struct {
	reader DocumentReader
	dpi    float64
}

// NewExtractor creates an extractor rendering at SlideDPI.
func NewExtractor(reader DocumentReader) *Extractor {
	return &Extractor{reader: reader, dpi: SlideDPI}
}

// Extract validates doc and writes one image per page into dir.
func (e *Extractor) Extract(ctx context.Context, doc []byte, dir string) ([]Slide, error) {
	pageCount, err := e.reader.PageCount(doc)
	if err != nil {
		return nil, stageError(ErrInvalidDocument, StageExtracting, -1, err)
	}
	if pageCount == 0 {
		return nil, stageError(ErrEmptyDocument, StageExtracting, -1, fmt.Errorf("document has no pages"))
	}

	paths, err := e.reader.Rasterize(ctx, doc, e.dpi, dir)
	if err != nil {
		return nil, stageError(ErrInvalidDocument, StageExtracting, -1, err)
	}
	if len(paths) == 0 {
		return nil, stageError(ErrEmptyDocument, StageExtracting, -1, fmt.Errorf("no pages were rendered"))
	}
	if len(paths) != pageCount {
		return nil, stageError(ErrInvalidDocument, StageExtracting, -1,
			fmt.Errorf("rendered %d pages but document reports %d", len(paths), pageCount))
	}

	slides := make([]Slide, len(paths))
	for i, p := range paths {
		slides[i] = Slide{Index: i, ImagePath: p}
	}
	return slides, nil
}
