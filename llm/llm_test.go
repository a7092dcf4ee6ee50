package llm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutri-lens/config"
	"nutri-lens/errs"
	"nutri-lens/models"
)

type stubGenerator struct {
	resp  *Response
	err   error
	calls int
}

func (s *stubGenerator) GenerateJSON(ctx context.Context, req Request) (*Response, error) {
	s.calls++
	return s.resp, s.err
}

type memorySink struct {
	mu   sync.Mutex
	logs []models.AILog
	err  error
}

func (m *memorySink) Insert(ctx context.Context, log models.AILog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return m.err
}

func TestDecodeJSONToleratesFence(t *testing.T) {
	type edible struct {
		Edible bool `json:"edible"`
	}
	out, err := DecodeJSON[edible](&Response{Text: "```json\n{\"edible\": true}\n```"})
	require.NoError(t, err)
	assert.True(t, out.Edible)

	out, err = DecodeJSON[edible](&Response{Text: `{"edible": false}`})
	require.NoError(t, err)
	assert.False(t, out.Edible)
}

func TestDecodeJSONRejectsGarbage(t *testing.T) {
	_, err := DecodeJSON[map[string]any](&Response{Text: "not json"})
	assert.Error(t, err)

	_, err = DecodeJSON[map[string]any](&Response{Text: "  "})
	assert.Error(t, err)

	_, err = DecodeJSON[map[string]any](nil)
	assert.Error(t, err)
}

func TestQuotaLimiterDailyLimit(t *testing.T) {
	l := NewQuotaLimiter(config.LLMQuotaConfig{RequestsPerDay: 2})
	day := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return day }

	for i := 0; i < 2; i++ {
		ok, err := l.WaitAndReserve(context.Background())
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := l.WaitAndReserve(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	day = day.Add(24 * time.Hour)
	ok, err = l.WaitAndReserve(context.Background())
	require.NoError(t, err)
	assert.True(t, ok, "counter resets on a new day")
}

func TestQuotaLimiterHonorsCancellation(t *testing.T) {
	l := NewQuotaLimiter(config.LLMQuotaConfig{RequestsPerMinute: 1})

	ok, err := l.WaitAndReserve(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	ok, err = l.WaitAndReserve(ctx)
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLimitedReturnsQuotaExceeded(t *testing.T) {
	stub := &stubGenerator{resp: &Response{Text: "{}"}}
	l := NewQuotaLimiter(config.LLMQuotaConfig{RequestsPerDay: 1})
	g := WithQuota(stub, l)

	_, err := g.GenerateJSON(context.Background(), Request{Task: TaskExtraction})
	require.NoError(t, err)

	_, err = g.GenerateJSON(context.Background(), Request{Task: TaskExtraction})
	assert.ErrorIs(t, err, errs.ErrQuotaExceeded)
	assert.Equal(t, 1, stub.calls)
}

func TestRecorderLogsSuccessAndFailure(t *testing.T) {
	sink := &memorySink{}

	ok := WithRecorder(&stubGenerator{resp: &Response{Text: `{"a":1}`, ModelName: "m", TotalTokens: 42}}, sink, 8)
	_, err := ok.GenerateJSON(context.Background(), Request{
		Task:   TaskClassifier,
		Prompt: "a very long prompt that is truncated",
		Images: []Image{{MIMEType: "image/png"}, {MIMEType: "image/jpeg"}},
	})
	require.NoError(t, err)

	failing := WithRecorder(&stubGenerator{err: errors.New("deadline")}, sink, 0)
	_, err = failing.GenerateJSON(context.Background(), Request{Task: TaskExtraction})
	require.Error(t, err)

	require.Len(t, sink.logs, 2)
	assert.Equal(t, TaskClassifier, sink.logs[0].Task)
	assert.Equal(t, 2, sink.logs[0].ImageCount)
	assert.Equal(t, int64(42), sink.logs[0].TotalTokens)
	assert.Len(t, sink.logs[0].InputPrompt, 8)
	assert.Nil(t, sink.logs[0].ErrorMessage)

	require.NotNil(t, sink.logs[1].ErrorMessage)
	assert.Equal(t, "deadline", *sink.logs[1].ErrorMessage)
}

func TestRecorderIgnoresSinkFailure(t *testing.T) {
	sink := &memorySink{err: errors.New("mongo down")}
	g := WithRecorder(&stubGenerator{resp: &Response{Text: "{}"}}, sink, 0)

	resp, err := g.GenerateJSON(context.Background(), Request{Task: TaskSeed})
	require.NoError(t, err)
	assert.Equal(t, "{}", resp.Text)
}
