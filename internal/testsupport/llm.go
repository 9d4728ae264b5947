package testsupport

import (
	"context"
	"sync"
)

// LLMCall records one query made against a FakeLLM.
type LLMCall struct {
	System string
	Prompt string
	Title  string
}

// FakeLLM is a scripted llm.Service implementation. Responses and Errors are
// keyed by query title; unmatched titles fall back to Default.
type FakeLLM struct {
	Unloaded  bool
	Default   string
	Responses map[string]string
	Errors    map[string]error

	mu    sync.Mutex
	calls []LLMCall
}

func (f *FakeLLM) Loaded() bool { return !f.Unloaded }

func (f *FakeLLM) QuickQuery(_ context.Context, system, prompt, title string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, LLMCall{System: system, Prompt: prompt, Title: title})
	f.mu.Unlock()
	if err, ok := f.Errors[title]; ok {
		return "", err
	}
	if response, ok := f.Responses[title]; ok {
		return response, nil
	}
	return f.Default, nil
}

// QuickQueryJSON records and resolves identically to QuickQuery; the fake
// does not distinguish response formats.
func (f *FakeLLM) QuickQueryJSON(ctx context.Context, system, prompt, title string) (string, error) {
	return f.QuickQuery(ctx, system, prompt, title)
}

// Calls returns a copy of every recorded query.
func (f *FakeLLM) Calls() []LLMCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]LLMCall(nil), f.calls...)
}
