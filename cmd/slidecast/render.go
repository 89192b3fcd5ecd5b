package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Lllllllleong/slidecast/internal/localstore"
	"github.com/Lllllllleong/slidecast/internal/services"
	"github.com/spf13/cobra"
)

var renderOut string

var renderCmd = &cobra.Command{
	Use:   "render <deck.pdf>",
	Short: "Render a PDF deck into a narrated video",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "slidecast-videos", "directory the video is published to")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	doc, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read deck: %w", err)
	}
	store, err := localstore.New(renderOut)
	if err != nil {
		return err
	}
	cfg, core, err := loadCore(ctx)
	if err != nil {
		return err
	}
	defer core.Close()

	cfg.VideoPrefix = ""
	pipeline := core.Pipeline(cfg, store, nil)
	result, err := pipeline.Render(ctx, services.RenderRequest{Document: doc, SourceName: filepath.Base(args[0])})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result.Response())
}
