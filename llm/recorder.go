package llm

import (
	"context"
	"fmt"
	"time"

	"nutri-lens/config"
	"nutri-lens/models"
)

// AILogSink persists usage records.
type AILogSink interface {
	Insert(ctx context.Context, log models.AILog) error
}

// Recorder writes an ai_logs entry for every call made through it.
type Recorder struct {
	next        Generator
	sink        AILogSink
	promptBytes int
}

// WithRecorder wraps next. promptBytes caps the stored prompt; 0 stores it whole.
func WithRecorder(next Generator, sink AILogSink, promptBytes int) *Recorder {
	return &Recorder{next: next, sink: sink, promptBytes: promptBytes}
}

func (r *Recorder) GenerateJSON(ctx context.Context, req Request) (*Response, error) {
	requestedAt := time.Now()
	resp, err := r.next.GenerateJSON(ctx, req)
	completedAt := time.Now()

	entry := models.AILog{
		Task:        req.Task,
		ImageCount:  len(req.Images),
		DurationMs:  completedAt.Sub(requestedAt).Milliseconds(),
		InputPrompt: truncate(fmt.Sprintf("%s\n\n%s", req.Instruction, req.Prompt), r.promptBytes),
		RequestedAt: requestedAt,
		CompletedAt: completedAt,
	}
	if resp != nil {
		entry.ModelName = resp.ModelName
		entry.ModelVersion = resp.ModelVersion
		entry.InputTokens = resp.InputTokens
		entry.OutputTokens = resp.OutputTokens
		entry.TotalTokens = resp.TotalTokens
		entry.OutputResponse = resp.Text
	}
	if err != nil {
		msg := err.Error()
		entry.ErrorMessage = &msg
	}

	// usage logging must not fail the call
	if logErr := r.sink.Insert(context.WithoutCancel(ctx), entry); logErr != nil {
		config.Logger.Warnf("failed to insert AI log (task=%s): %v", req.Task, logErr)
	}
	return resp, err
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}
