package main

import (
	"fmt"
	"os"

	"github.com/Lllllllleong/slidecast/internal/models"
	"github.com/spf13/cobra"
)

var (
	speakTo   string
	imageRoot string
)

var promptCmd = &cobra.Command{
	Use:   "prompt <text> [image...]",
	Short: "Ask the model about zero or more images",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPrompt,
}

func init() {
	promptCmd.Flags().StringVar(&speakTo, "speak", "", "write the spoken answer to this WAV file")
	promptCmd.Flags().StringVar(&imageRoot, "image-root", ".", "directory images must live under")
	rootCmd.AddCommand(promptCmd)
}

func runPrompt(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, core, err := loadCore(ctx)
	if err != nil {
		return err
	}
	defer core.Close()

	cfg.PromptImageRoot = imageRoot
	prompter := core.PromptService(cfg)
	req := models.PromptRequest{Prompt: args[0], Images: args[1:]}

	if speakTo == "" {
		text, err := prompter.Prompt(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	}

	audio, err := prompter.PromptWithSpeech(ctx, req)
	if err != nil {
		return err
	}
	if err := os.WriteFile(speakTo, audio, 0o644); err != nil {
		return fmt.Errorf("write audio: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d bytes to %s\n", len(audio), speakTo)
	return nil
}
