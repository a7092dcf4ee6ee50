// Package testsupport holds in-memory stand-ins for the model and the stores.
package testsupport

import (
	"context"
	"encoding/json"
	"sync"

	"nutri-lens/llm"
)

// Generator answers each task with a canned response and counts calls.
type Generator struct {
	mu        sync.Mutex
	responses map[string]string
	errs      map[string]error
	calls     map[string]int
	requests  []llm.Request
}

func NewGenerator() *Generator {
	return &Generator{
		responses: map[string]string{},
		errs:      map[string]error{},
		calls:     map[string]int{},
	}
}

// Respond sets the raw text returned for task.
func (g *Generator) Respond(task, text string) *Generator {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.responses[task] = text
	return g
}

// RespondJSON marshals v and returns it for task.
func (g *Generator) RespondJSON(task string, v any) *Generator {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return g.Respond(task, string(b))
}

// Fail makes every call for task return err.
func (g *Generator) Fail(task string, err error) *Generator {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.errs[task] = err
	return g
}

func (g *Generator) GenerateJSON(ctx context.Context, req llm.Request) (*llm.Response, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls[req.Task]++
	g.requests = append(g.requests, req)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := g.errs[req.Task]; ok {
		return nil, err
	}
	return &llm.Response{Text: g.responses[req.Task], ModelName: "fake-model"}, nil
}

// Calls returns how many times task was requested.
func (g *Generator) Calls(task string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[task]
}

// TotalCalls returns the number of requests across all tasks.
func (g *Generator) TotalCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

// LastRequest returns the most recent request for task.
func (g *Generator) LastRequest(task string) (llm.Request, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := len(g.requests) - 1; i >= 0; i-- {
		if g.requests[i].Task == task {
			return g.requests[i], true
		}
	}
	return llm.Request{}, false
}
