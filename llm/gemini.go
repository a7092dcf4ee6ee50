package llm

import (
	"context"
	"fmt"
	"os"
	"time"

	"google.golang.org/genai"

	"nutri-lens/config"
)

// GeminiClient implements Generator on the Gemini API.
type GeminiClient struct {
	client *genai.Client
	cfg    config.LLMConfig
}

func NewGeminiClient(ctx context.Context, cfg config.LLMConfig) (*GeminiClient, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is not set")
	}
	if cfg.Provider != "google" {
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiClient{client: client, cfg: cfg}, nil
}

func (g *GeminiClient) GenerateJSON(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	modelName := g.cfg.ModelFor(req.Task)

	if t := g.cfg.Timeout(); t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}

	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	for _, img := range req.Images {
		parts = append(parts, genai.NewPartFromBytes(img.Data, img.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	genCfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   req.Schema,
	}
	if req.Instruction != "" {
		genCfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.Instruction}}}
	}
	if g.cfg.MaxOutputTokens > 0 {
		genCfg.MaxOutputTokens = g.cfg.MaxOutputTokens
	}

	result, err := g.client.Models.GenerateContent(ctx, modelName, contents, genCfg)
	if err != nil {
		return nil, fmt.Errorf("gemini %s: %w", req.Task, err)
	}
	if result == nil {
		return nil, fmt.Errorf("gemini %s: empty result", req.Task)
	}

	resp := &Response{
		Text:         result.Text(),
		ModelName:    modelName,
		ModelVersion: result.ModelVersion,
		Latency:      time.Since(start),
	}
	if result.UsageMetadata != nil {
		resp.InputTokens = int64(result.UsageMetadata.PromptTokenCount)
		resp.OutputTokens = int64(result.UsageMetadata.CandidatesTokenCount)
		resp.TotalTokens = int64(result.UsageMetadata.TotalTokenCount)
	}
	if resp.Text == "" {
		return resp, fmt.Errorf("gemini %s: empty response text", req.Task)
	}
	return resp, nil
}
