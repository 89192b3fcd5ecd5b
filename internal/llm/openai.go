package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAICompleter answers text+image prompts with the OpenAI chat API.
type OpenAICompleter struct {
	client       openai.Client
	model        string
	systemPrompt string
}

// NewOpenAICompleter creates a completer. systemPrompt may be empty.
func NewOpenAICompleter(apiKey, model, systemPrompt string, opts ...option.RequestOption) (*OpenAICompleter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("NewOpenAICompleter: apiKey cannot be empty")
	}
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &OpenAICompleter{
		client:       openai.NewClient(opts...),
		model:        model,
		systemPrompt: systemPrompt,
	}, nil
}

// Complete sends the prompt followed by the images as one user message.
func (c *OpenAICompleter) Complete(ctx context.Context, prompt string, imagePaths []string) (string, error) {
	images, err := LoadImages(imagePaths)
	if err != nil {
		return "", err
	}

	parts := []openai.ChatCompletionContentPartUnionParam{openai.TextContentPart(prompt)}
	for _, img := range images {
		dataURL := fmt.Sprintf("data:%s;base64,%s", img.MIMEType, base64.StdEncoding.EncodeToString(img.Data))
		parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL}))
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if c.systemPrompt != "" {
		messages = append(messages, openai.SystemMessage(c.systemPrompt))
	}
	messages = append(messages, openai.UserMessage(parts))

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}
	text := CleanResponse(resp.Choices[0].Message.Content)
	if text == "" {
		slog.Warn("OpenAI returned empty content.", "model", c.model, "finishReason", resp.Choices[0].FinishReason)
	}
	return text, nil
}
