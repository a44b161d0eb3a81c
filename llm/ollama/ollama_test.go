package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kbukum/fraudguard/llm"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestComplete(t *testing.T) {
	var gotReq ollamaChatRequest
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(ollamaChatResponse{
			Model:   "llama3",
			Message: ollamaChatMessage{Role: "assistant", Content: "hello"},
			Done:    true,
		})
	})

	p := NewProvider(llm.Config{BaseURL: srv.URL, Model: "llama3"})
	resp, err := p.Complete(context.Background(), llm.CompletionRequest{
		SystemPrompt: "be brief",
		Messages:     []llm.Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "hello" {
		t.Fatalf("expected hello, got %q", resp.Content)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" {
		t.Fatalf("expected system message first, got %v", gotReq.Messages)
	}
	if gotReq.Stream {
		t.Fatal("expected non-streaming request")
	}
}

func TestCompleteStructured_JSONFormat(t *testing.T) {
	var gotReq ollamaChatRequest
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(ollamaChatResponse{
			Message: ollamaChatMessage{Content: `{"is_flagged": true}`},
			Done:    true,
		})
	})

	p := NewProvider(llm.Config{BaseURL: srv.URL})
	resp, err := p.CompleteStructured(context.Background(), llm.CompletionRequest{
		Messages: []llm.Message{{Role: "user", Content: "check"}},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotReq.Format != "json" {
		t.Fatalf("expected json format mode, got %v", gotReq.Format)
	}
	if resp.Content != `{"is_flagged": true}` {
		t.Fatalf("unexpected content: %q", resp.Content)
	}
}

func TestComplete_ServerError(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	p := NewProvider(llm.Config{BaseURL: srv.URL})
	if _, err := p.Complete(context.Background(), llm.CompletionRequest{}); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestIsAvailable(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	p := NewProvider(llm.Config{BaseURL: srv.URL})
	if !p.IsAvailable(context.Background()) {
		t.Fatal("expected provider available")
	}

	down := NewProvider(llm.Config{BaseURL: "http://127.0.0.1:1"})
	if down.IsAvailable(context.Background()) {
		t.Fatal("expected provider unavailable")
	}
}
