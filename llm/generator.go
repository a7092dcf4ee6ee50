// Package llm is the single generative-model capability used by extraction,
// personalization and analysis: instruction, prompt and images in, JSON text out.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// Tasks name the callers; they select the model and label usage logs.
const (
	TaskClassifier  = "classifier"
	TaskExtraction  = "extraction"
	TaskSeed        = "seed"
	TaskPersonalize = "personalize"
	TaskAnalysis    = "analysis"
)

// Image is a downloaded image ready to be sent inline.
type Image struct {
	MIMEType string
	Data     []byte
}

type Request struct {
	Task        string
	Instruction string
	Prompt      string
	Images      []Image
	// Schema constrains the JSON response when set.
	Schema *genai.Schema
}

type Response struct {
	Text         string
	ModelName    string
	ModelVersion string
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
	Latency      time.Duration
}

// Generator performs one generative call that must answer with JSON.
type Generator interface {
	GenerateJSON(ctx context.Context, req Request) (*Response, error)
}

// DecodeJSON unmarshals the response text into T. A markdown code fence
// around the JSON is tolerated.
func DecodeJSON[T any](resp *Response) (T, error) {
	var out T
	if resp == nil {
		return out, fmt.Errorf("empty response")
	}
	text := stripFence(resp.Text)
	if text == "" {
		return out, fmt.Errorf("empty response")
	}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		var zero T
		return zero, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
