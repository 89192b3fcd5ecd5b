// Package media drives the ffmpeg binary for every audio/video operation the
// render pipeline needs.
package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Runner executes a command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.Bytes(), err
}

// Config holds ffmpeg settings shared by every invocation.
type Config struct {
	Binary       string
	AudioBitrate string
	// Timeout bounds each subprocess. Zero means no limit beyond ctx.
	Timeout time.Duration
}

// FFmpeg implements muxing, concatenation and silence generation.
// It holds no per-call state and is safe for concurrent use.
type FFmpeg struct {
	cfg Config
	run Runner
}

// NewFFmpeg creates an FFmpeg tool. A nil runner uses os/exec.
func NewFFmpeg(cfg Config, run Runner) *FFmpeg {
	if cfg.Binary == "" {
		cfg.Binary = "ffmpeg"
	}
	if cfg.AudioBitrate == "" {
		cfg.AudioBitrate = "192k"
	}
	if run == nil {
		run = execRunner
	}
	return &FFmpeg{cfg: cfg, run: run}
}

// Mux loops a still image over an audio track. The clip ends when the audio
// ends and both frame dimensions are rounded up to even numbers.
func (f *FFmpeg) Mux(ctx context.Context, image, audio, out string) error {
	return f.produce(ctx, out, func(tmp string) []string {
		return []string{
			"-y", "-loop", "1", "-i", image, "-i", audio,
			"-c:v", "libx264", "-tune", "stillimage", "-pix_fmt", "yuv420p",
			"-vf", "scale=ceil(iw/2)*2:ceil(ih/2)*2",
			"-c:a", "aac", "-b:a", f.cfg.AudioBitrate,
			"-shortest", tmp,
		}
	})
}

// Concat joins clips listed in manifest without re-encoding.
func (f *FFmpeg) Concat(ctx context.Context, manifest, out string) error {
	return f.produce(ctx, out, func(tmp string) []string {
		return []string{"-y", "-f", "concat", "-safe", "0", "-i", manifest, "-c", "copy", tmp}
	})
}

// Silence writes a silent mono WAV of the given length and sample rate.
func (f *FFmpeg) Silence(ctx context.Context, d time.Duration, sampleRate int, out string) error {
	seconds := strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
	return f.produce(ctx, out, func(tmp string) []string {
		return []string{
			"-y", "-f", "lavfi", "-i", fmt.Sprintf("anullsrc=r=%d:cl=mono", sampleRate),
			"-t", seconds, "-acodec", "pcm_s16le", tmp,
		}
	})
}

// produce runs ffmpeg against a temporary sibling of out and renames it into
// place only on success, so out is never observed half written.
func (f *FFmpeg) produce(ctx context.Context, out string, args func(tmp string) []string) error {
	tmp := partialPath(out)
	if f.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.cfg.Timeout)
		defer cancel()
	}
	output, err := f.run(ctx, f.cfg.Binary, args(tmp)...)
	if err != nil {
		_ = os.Remove(tmp)
		if ctx.Err() != nil {
			return fmt.Errorf("ffmpeg did not finish: %w", ctx.Err())
		}
		return fmt.Errorf("ffmpeg failed: %w: %s", err, tail(output, 512))
	}
	if err := os.Rename(tmp, out); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to move ffmpeg output into place: %w", err)
	}
	return nil
}

// partialPath keeps the extension so ffmpeg can still infer the container.
func partialPath(out string) string {
	ext := filepath.Ext(out)
	return strings.TrimSuffix(out, ext) + ".partial" + ext
}

func tail(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	if len(s) > n {
		s = "..." + s[len(s)-n:]
	}
	return s
}
