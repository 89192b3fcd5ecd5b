package gcp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"github.com/Lllllllleong/slidecast/internal/llm"
)

// VertexClient holds all pre-configured generative models for our app.
type VertexClient struct {
	NarratorModel *genai.GenerativeModel
	PromptModel   *genai.GenerativeModel
	baseClient    *genai.Client
}

// NewVertexClient creates a new client holding all necessary models.
func NewVertexClient(ctx context.Context, projectID, region, modelName string) (*VertexClient, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexClient: projectID and region cannot be empty")
	}
	if modelName == "" {
		modelName = "gemini-1.5-pro"
	}

	baseClient, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	// --- Configure the narrator model ---
	narratorModel := baseClient.GenerativeModel(modelName)
	narratorModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(llm.NarratorSystemPrompt)},
	}
	narratorModel.GenerationConfig = genai.GenerationConfig{
		Temperature: genai.Ptr[float32](0.4),
	}

	// --- Configure the free-form prompt model ---
	promptModel := baseClient.GenerativeModel(modelName)

	return &VertexClient{
		NarratorModel: narratorModel,
		PromptModel:   promptModel,
		baseClient:    baseClient,
	}, nil
}

// Narrator returns the completion service used for slide narration.
func (c *VertexClient) Narrator() *VertexCompleter {
	return &VertexCompleter{model: c.NarratorModel}
}

// Prompter returns the completion service used by the prompt endpoints.
func (c *VertexClient) Prompter() *VertexCompleter {
	return &VertexCompleter{model: c.PromptModel}
}

func (c *VertexClient) Close() error {
	if c.baseClient != nil {
		return c.baseClient.Close()
	}
	return nil
}

// VertexCompleter answers a prompt with inline images using one Gemini model.
type VertexCompleter struct {
	model *genai.GenerativeModel
}

// Complete sends the images followed by the prompt and returns the model text.
func (c *VertexCompleter) Complete(ctx context.Context, prompt string, imagePaths []string) (string, error) {
	images, err := llm.LoadImages(imagePaths)
	if err != nil {
		return "", err
	}
	parts := make([]genai.Part, 0, len(images)+1)
	for _, img := range images {
		parts = append(parts, genai.ImageData(img.Format(), img.Data))
	}
	parts = append(parts, genai.Text(prompt))

	resp, err := c.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content from gemini: %w", err)
	}
	return extractText(resp), nil
}

// extractText parses the model's response and robustly extracts text content.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return ""
	}

	var content strings.Builder
	var textPartsFound int
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			content.WriteString(string(txt))
			textPartsFound++
		}
	}
	if textPartsFound > 1 {
		slog.Warn("Gemini response contained several text parts; they have been concatenated.", "parts", textPartsFound)
	}
	return llm.CleanResponse(content.String())
}
