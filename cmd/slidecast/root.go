package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Lllllllleong/slidecast/internal/app"
	"github.com/Lllllllleong/slidecast/internal/config"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	workers int
)

var rootCmd = &cobra.Command{
	Use:   "slidecast",
	Short: "Turn slide decks into narrated videos",
	Long: `slidecast renders a PDF slide deck into a narrated MP4: every page is
described by a vision model, spoken with Piper and joined with ffmpeg.
Videos are published into a local directory.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().IntVarP(&workers, "workers", "w", 0, "slides processed in parallel (default from WORKERS)")
}

// signalContext is cancelled on Ctrl-C so runs clean up their work directory.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// loadCore reads the local configuration and starts the backends.
func loadCore(ctx context.Context) (*config.Config, *app.Core, error) {
	cfg, err := config.LoadLocal()
	if err != nil {
		return nil, nil, err
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	core, err := app.NewCore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, core, nil
}
