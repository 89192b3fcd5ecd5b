package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Lllllllleong/slidecast/internal/models"
)

// fakeReader pretends every document has pages pages.
type fakeReader struct {
	pages     int
	countErr  error
	rasterErr error
}

func (r *fakeReader) PageCount(doc []byte) (int, error) {
	if r.countErr != nil {
		return 0, r.countErr
	}
	return r.pages, nil
}

func (r *fakeReader) Rasterize(ctx context.Context, doc []byte, dpi float64, dir string) ([]string, error) {
	if r.rasterErr != nil {
		return nil, r.rasterErr
	}
	paths := make([]string, 0, r.pages)
	for i := 0; i < r.pages; i++ {
		p := filepath.Join(dir, fmt.Sprintf("page_%03d.png", i))
		if err := os.WriteFile(p, []byte(fmt.Sprintf("image-%d", i)), 0o644); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// fakeCompleter narrates a slide by naming its image file.
type fakeCompleter struct {
	mu      sync.Mutex
	calls   int
	failOn  string
	replies map[string]string
	delay   time.Duration
}

func (c *fakeCompleter) Complete(ctx context.Context, prompt string, imagePaths []string) (string, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()

	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if len(imagePaths) == 0 {
		return "answer: " + prompt, nil
	}
	name := filepath.Base(imagePaths[0])
	if c.failOn != "" && name == c.failOn {
		return "", errors.New("model unavailable")
	}
	if reply, ok := c.replies[name]; ok {
		return reply, nil
	}
	return "Narration for " + name, nil
}

// fakeEngine writes the spoken text into the output file.
type fakeEngine struct {
	mu    sync.Mutex
	texts []string
	fail  map[string]bool
}

func (e *fakeEngine) Synthesize(ctx context.Context, text, out string) error {
	e.mu.Lock()
	e.texts = append(e.texts, text)
	e.mu.Unlock()
	if e.fail[text] {
		_ = os.WriteFile(out, []byte("half written"), 0o644)
		return errors.New("voice crashed")
	}
	return os.WriteFile(out, []byte("speech:"+text), 0o644)
}

func (e *fakeEngine) spoken() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.texts...)
}

// fakeMedia encodes by concatenating the text content of its inputs.
type fakeMedia struct {
	mu             sync.Mutex
	silences       []string
	silenceSawFile bool
	muxErr         error
	concatErr      error
	silenceErr     error
}

func (m *fakeMedia) Mux(ctx context.Context, image, audio, out string) error {
	if m.muxErr != nil {
		return m.muxErr
	}
	img, err := os.ReadFile(image)
	if err != nil {
		return err
	}
	aud, err := os.ReadFile(audio)
	if err != nil {
		return err
	}
	return os.WriteFile(out, []byte(string(img)+"+"+string(aud)), 0o644)
}

func (m *fakeMedia) Concat(ctx context.Context, manifest, out string) error {
	if m.concatErr != nil {
		return m.concatErr
	}
	body, err := os.ReadFile(manifest)
	if err != nil {
		return err
	}
	var parts []string
	for _, line := range strings.Split(strings.TrimSpace(string(body)), "\n") {
		p := strings.TrimSuffix(strings.TrimPrefix(line, "file '"), "'")
		p = strings.ReplaceAll(p, `'\''`, "'")
		clip, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		parts = append(parts, string(clip))
	}
	return os.WriteFile(out, []byte(strings.Join(parts, "\n")), 0o644)
}

func (m *fakeMedia) Silence(ctx context.Context, d time.Duration, sampleRate int, out string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := os.Stat(out); err == nil {
		m.silenceSawFile = true
	}
	if m.silenceErr != nil {
		return m.silenceErr
	}
	desc := fmt.Sprintf("silence:%s:%d", d, sampleRate)
	m.silences = append(m.silences, desc)
	return os.WriteFile(out, []byte(desc), 0o644)
}

// fakePublisher keeps published objects in memory.
type fakePublisher struct {
	mu      sync.Mutex
	puts    int
	objects map[string]int64
	putErr  error
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{objects: map[string]int64{}}
}

func (p *fakePublisher) Put(ctx context.Context, localPath, key string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.puts++
	if p.putErr != nil {
		return "", p.putErr
	}
	info, err := os.Stat(localPath)
	if err != nil {
		return "", err
	}
	p.objects[key] = info.Size()
	return "https://videos.example.com/" + key, nil
}

func (p *fakePublisher) List(ctx context.Context, prefix string) ([]models.VideoEntry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var entries []models.VideoEntry
	for key, size := range p.objects {
		if strings.HasPrefix(key, prefix) {
			entries = append(entries, models.VideoEntry{Name: path.Base(key), Size: size, Reference: "https://videos.example.com/" + key})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (p *fakePublisher) Delete(ctx context.Context, key string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.objects[key]; !ok {
		return false, nil
	}
	delete(p.objects, key)
	return true, nil
}

// fakeTracker records every status a run goes through.
type fakeTracker struct {
	mu       sync.Mutex
	statuses []string
	fields   map[string]map[string]interface{}
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{fields: map[string]map[string]interface{}{}}
}

func (t *fakeTracker) Start(ctx context.Context, runID, sourceName string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.statuses = append(t.statuses, models.StatusExtracting)
	return nil
}

func (t *fakeTracker) Transition(ctx context.Context, runID, status string, fields map[string]interface{}) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.statuses = append(t.statuses, status)
	t.fields[status] = fields
	return nil
}
