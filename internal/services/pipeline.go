package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Lllllllleong/slidecast/internal/models"
	"golang.org/x/sync/errgroup"
)

// PipelineConfig holds settings for the render pipeline.
type PipelineConfig struct {
	WorkRoot    string
	Workers     int
	VideoPrefix string
}

// Pipeline turns a slide deck into a published, narrated video.
type Pipeline struct {
	extractor   *Extractor
	narrator    *Narrator
	synthesizer *Synthesizer
	composer    *Composer
	assembler   *Assembler
	publisher   Publisher
	tracker     Tracker
	config      PipelineConfig
	now         func() time.Time
}

// RenderRequest is the input of one run.
type RenderRequest struct {
	// RunID is optional; a new UUID is generated when empty.
	RunID      string
	Document   []byte
	SourceName string
}

// RenderResult describes the published video.
type RenderResult struct {
	RunID         string
	DownloadURL   string
	FileName      string
	FileSizeBytes int64
	Timestamp     time.Time
	SlideCount    int
	SilentSlides  int
}

// Response converts the result to its JSON payload.
func (r *RenderResult) Response() models.RenderResponse {
	return models.RenderResponse{
		DownloadURL:   r.DownloadURL,
		FileName:      r.FileName,
		FileSizeBytes: r.FileSizeBytes,
		Timestamp:     r.Timestamp,
	}
}

// NewPipeline wires the stages together. tracker may be nil.
func NewPipeline(extractor *Extractor, narrator *Narrator, synthesizer *Synthesizer, composer *Composer,
	assembler *Assembler, publisher Publisher, tracker Tracker, config PipelineConfig) *Pipeline {
	if config.Workers < 1 {
		config.Workers = 1
	}
	return &Pipeline{
		extractor:   extractor,
		narrator:    narrator,
		synthesizer: synthesizer,
		composer:    composer,
		assembler:   assembler,
		publisher:   publisher,
		tracker:     tracker,
		config:      config,
		now:         time.Now,
	}
}

// Render runs the whole pipeline for one deck. Every artifact of the run is
// removed before it returns, except the final video when publishing failed.
func (p *Pipeline) Render(ctx context.Context, req RenderRequest) (result *RenderResult, err error) {
	if len(req.Document) == 0 {
		return nil, InvalidInput("document is empty")
	}
	run, err := newRun(p.config.WorkRoot, req.RunID)
	if err != nil {
		return nil, err
	}
	logCtx := slog.With("runId", run.ID, "sourceName", req.SourceName)
	logCtx.Info("Starting render.", "documentBytes", len(req.Document), "workers", p.config.Workers)

	if p.tracker != nil {
		if terr := p.tracker.Start(ctx, run.ID, req.SourceName); terr != nil {
			logCtx.Error("Failed to record render start.", "error", terr)
		}
	}

	keep := ""
	defer func() {
		if cerr := run.cleanup(keep); cerr != nil {
			logCtx.Error("Failed to clean up run artifacts.", "dir", run.Dir, "error", cerr)
		}
		if err != nil {
			p.abort(ctx, logCtx, run, keep, err)
		}
	}()

	slides, err := p.extractor.Extract(ctx, req.Document, run.SlidesDir())
	if err != nil {
		return nil, err
	}
	run.Slides = slides
	logCtx.Info("Slides extracted.", "slideCount", len(slides))
	p.transition(ctx, logCtx, run.ID, models.StatusNarrating, map[string]interface{}{"pageCount": len(slides)})

	if err := p.processSlides(ctx, logCtx, run); err != nil {
		return nil, err
	}

	p.transition(ctx, logCtx, run.ID, models.StatusAssembling, nil)
	clips := make([]string, len(run.Slides))
	silent := 0
	for i, s := range run.Slides {
		clips[i] = s.ClipPath
		if s.SilentAudio {
			silent++
		}
	}
	fileName := videoFileName(run.ID, p.now())
	run.FinalPath = filepath.Join(run.Dir, fileName)
	if err := p.assembler.Assemble(ctx, clips, run.ManifestPath(), run.FinalPath); err != nil {
		return nil, err
	}
	info, err := os.Stat(run.FinalPath)
	if err != nil {
		return nil, stageError(ErrAssembly, StageAssembling, -1, err)
	}

	p.transition(ctx, logCtx, run.ID, models.StatusPublishing, nil)
	reference, err := p.publisher.Put(ctx, run.FinalPath, p.config.VideoPrefix+fileName)
	if err != nil {
		keep = run.FinalPath
		return nil, stageError(ErrPublish, StagePublishing, -1, err)
	}

	result = &RenderResult{
		RunID:         run.ID,
		DownloadURL:   reference,
		FileName:      fileName,
		FileSizeBytes: info.Size(),
		Timestamp:     p.now().UTC(),
		SlideCount:    len(run.Slides),
		SilentSlides:  silent,
	}
	p.transition(ctx, logCtx, run.ID, models.StatusDone, map[string]interface{}{
		"fileName":     result.FileName,
		"downloadUrl":  result.DownloadURL,
		"sizeBytes":    result.FileSizeBytes,
		"silentSlides": result.SilentSlides,
	})
	logCtx.Info("Render complete.", "fileName", fileName, "sizeBytes", info.Size(), "silentSlides", silent)
	return result, nil
}

// processSlides runs narrate → synthesize → compose for every slide on a
// bounded pool. Each worker writes only its own slide, so order is kept.
func (p *Pipeline) processSlides(ctx context.Context, logCtx *slog.Logger, run *Run) error {
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(p.config.Workers)
	for i := range run.Slides {
		slide := &run.Slides[i]
		eg.Go(func() error {
			return p.processSlide(gctx, logCtx.With("slide", slide.Index), run, slide)
		})
	}
	return eg.Wait()
}

func (p *Pipeline) processSlide(ctx context.Context, logCtx *slog.Logger, run *Run, slide *Slide) error {
	narration, err := p.narrator.Narrate(ctx, *slide)
	if err != nil {
		return err
	}
	slide.Narration = narration
	if narration == "" {
		logCtx.Warn("Narration is empty. Slide will be silent.")
	}

	speech, err := p.synthesizer.Synthesize(ctx, narration, run.audioPath(slide.Index))
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return stageError(ErrMux, StageSynthesizing, slide.Index, err)
	}
	slide.AudioPath = speech.Path
	slide.SilentAudio = speech.Fallback

	clip := run.clipPath(slide.Index)
	if err := p.composer.Compose(ctx, *slide, clip); err != nil {
		return err
	}
	slide.ClipPath = clip
	logCtx.Info("Slide processed.", "narrationChars", len(narration), "silent", speech.Fallback)
	return nil
}

func (p *Pipeline) transition(ctx context.Context, logCtx *slog.Logger, runID, status string, fields map[string]interface{}) {
	logCtx.Info("Render stage changed.", "status", status)
	if p.tracker == nil {
		return
	}
	if err := p.tracker.Transition(ctx, runID, status, fields); err != nil {
		logCtx.Error("Failed to record render status.", "status", status, "error", err)
	}
}

func (p *Pipeline) abort(ctx context.Context, logCtx *slog.Logger, run *Run, kept string, cause error) {
	kind := "unexpected"
	if k := KindOf(cause); k != nil {
		kind = k.Error()
	}
	logCtx.Error("Render aborted.", "errorKind", kind, "error", cause, "keptVideo", kept)
	fields := map[string]interface{}{
		"errorKind":    kind,
		"errorDetails": fmt.Sprint(cause),
	}
	// The caller's ctx may already be cancelled; the failure must still be recorded.
	p.transition(context.WithoutCancel(ctx), logCtx, run.ID, models.StatusFailed, fields)
}
