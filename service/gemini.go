package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"handbookbot-backend/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiGenerator implements Generator with the Gemini API
type GeminiGenerator struct {
	client *genai.Client
}

// NewGeminiGenerator creates a Gemini client authenticated with apiKey
func NewGeminiGenerator(ctx context.Context, apiKey string) (*GeminiGenerator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingCredential
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiGenerator{client: client}, nil
}

// Generate sends the system instruction and the assembled contents as a single turn
func (g *GeminiGenerator) Generate(ctx context.Context, req models.CompletionRequest) (string, error) {
	model := g.client.GenerativeModel(req.Model)
	model.SystemInstruction = genai.NewUserContent(genai.Text(req.SystemInstruction))

	resp, err := model.GenerateContent(ctx, genai.Text(req.Contents))
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil {
			return "", fmt.Errorf("API blocked prompt: %s", resp.PromptFeedback.BlockReason)
		}
		return "", fmt.Errorf("API returned no candidates")
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason != genai.FinishReasonStop && candidate.FinishReason != genai.FinishReasonUnspecified {
		log.Printf("Warning: Candidate finished with reason: %s", candidate.FinishReason)
	}
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("API candidate has no parts (finish reason: %s)", candidate.FinishReason)
	}

	var responseText strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			responseText.WriteString(string(text))
		}
	}

	return responseText.String(), nil
}

// Close releases the underlying client
func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}
