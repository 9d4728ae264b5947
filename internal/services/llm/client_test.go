package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func completionBody(content string) map[string]any {
	return map[string]any{
		"choices": []any{
			map[string]any{
				"message": map[string]any{"content": content},
			},
		},
	}
}

func TestQuickQueryJSONReturnsContent(t *testing.T) {
	var gotTitle string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTitle = r.Header.Get("X-Title")
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.ResponseFormat["type"] != jsonResponseType {
			t.Fatalf("expected json response format, got %v", req.ResponseFormat)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Fatalf("unexpected messages: %+v", req.Messages)
		}
		if err := json.NewEncoder(w).Encode(completionBody(`["alpha"]`)); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	content, err := client.QuickQueryJSON(context.Background(), "extract things", "some context", "Lookout Projects")
	if err != nil {
		t.Fatalf("QuickQueryJSON returned error: %v", err)
	}
	if content != `["alpha"]` {
		t.Fatalf("unexpected content: %q", content)
	}
	if gotTitle != "Lookout Projects" {
		t.Fatalf("expected title header, got %q", gotTitle)
	}
}

func TestQuickQueryOmitsResponseFormat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		// Strict providers reject JSON mode on plain-text prompts, so the
		// field must be absent entirely.
		if _, ok := raw["response_format"]; ok {
			t.Fatalf("plain query sent response_format: %s", raw["response_format"])
		}
		if err := json.NewEncoder(w).Encode(completionBody("Long stretch on the parser today.")); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	content, err := client.QuickQuery(context.Background(), "summarize", "recent activity", "wellness insight")
	if err != nil {
		t.Fatalf("QuickQuery returned error: %v", err)
	}
	if content != "Long stretch on the parser today." {
		t.Fatalf("unexpected content: %q", content)
	}
}

func TestQuickQueryRequiresAPIKey(t *testing.T) {
	client := NewClient(Config{Model: "demo"})
	if client.Loaded() {
		t.Fatal("expected unloaded client without key")
	}
	if _, err := client.QuickQuery(context.Background(), "s", "p", "op"); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestQuickQueryRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if err := json.NewEncoder(w).Encode(completionBody("ok")); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL, Model: "demo"},
		WithSleeper(func(time.Duration) {}),
	)
	content, err := client.QuickQuery(context.Background(), "s", "p", "op")
	if err != nil {
		t.Fatalf("QuickQuery returned error: %v", err)
	}
	if content != "ok" {
		t.Fatalf("unexpected content: %q", content)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls.Load())
	}
}

func TestQuickQueryDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(
		Config{APIKey: "bad", BaseURL: server.URL, Model: "demo"},
		WithSleeper(func(time.Duration) {}),
	)
	if _, err := client.QuickQuery(context.Background(), "s", "p", "op"); err == nil {
		t.Fatal("expected error for unauthorized response")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected single attempt, got %d", calls.Load())
	}
}

func TestHealthCheckHandlesCodeFence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := completionBody("```json\n{\"ok\":true}\n```")
		if err := json.NewEncoder(w).Encode(body); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo"})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
}

func TestDecodeLLMJSON(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    []string
		wantErr bool
	}{
		{"plain array", `["a","b"]`, []string{"a", "b"}, false},
		{"code fence", "```json\n[\"a\"]\n```", []string{"a"}, false},
		{"surrounding prose", `Here you go: ["a","b"] hope that helps`, []string{"a", "b"}, false},
		{"empty", "", nil, true},
		{"not json", "no brackets here", nil, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got []string
			err := DecodeLLMJSON(tc.payload, &got)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected decode error")
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeLLMJSON failed: %v", err)
			}
			if strings.Join(got, ",") != strings.Join(tc.want, ",") {
				t.Fatalf("unexpected result: %v", got)
			}
		})
	}
}
