package services

import "context"

// Composer pairs a slide image with its audio track.
type Composer struct {
	media MediaTool
}

func NewComposer(media MediaTool) *Composer {
	return &Composer{media: media}
}

// Compose writes a clip lasting exactly as long as the audio.
func (c *Composer) Compose(ctx context.Context, slide Slide, out string) error {
	if err := c.media.Mux(ctx, slide.ImagePath, slide.AudioPath, out); err != nil {
		return stageError(ErrMux, StageComposing, slide.Index, err)
	}
	return nil
}
