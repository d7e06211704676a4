package summarizer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGeminiUnavailableWithoutKey(t *testing.T) {
	g := NewGemini(GeminiConfig{})
	if g.IsAvailable() {
		t.Fatalf("gateway without key must not report available")
	}
	if _, err := g.Generate(context.Background(), "text", "title"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestGeminiGenerateSuccess(t *testing.T) {
	var gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		if !strings.Contains(r.URL.Path, "gemini-2.0-flash-exp:generateContent") {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Fatalf("missing api key query parameter")
		}

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		gotPrompt = req.Contents[0].Parts[0].Text

		resp := map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{
					{"text": "  Two sentence summary.  "},
				}}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	g := NewGemini(GeminiConfig{APIKey: "test-key", BaseURL: srv.URL})
	summary, err := g.Generate(context.Background(), "Notification body text.", "Circular 42")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if summary != "Two sentence summary." {
		t.Fatalf("summary = %q", summary)
	}
	if !strings.Contains(gotPrompt, "Title: Circular 42") {
		t.Fatalf("prompt missing title: %s", gotPrompt)
	}
	if !strings.Contains(gotPrompt, "Notification body text.") {
		t.Fatalf("prompt missing content: %s", gotPrompt)
	}
}

func TestGeminiGenerateTruncatesLongInput(t *testing.T) {
	var gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		json.NewDecoder(r.Body).Decode(&req)
		gotPrompt = req.Contents[0].Parts[0].Text
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{{"text": "ok"}}}},
			},
		})
	}))
	defer srv.Close()

	long := strings.Repeat("x", 3*maxPromptChars)
	g := NewGemini(GeminiConfig{APIKey: "k", BaseURL: srv.URL})
	if _, err := g.Generate(context.Background(), long, "t"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(gotPrompt) >= 2*maxPromptChars {
		t.Fatalf("prompt was not truncated: %d chars", len(gotPrompt))
	}
}

func TestGeminiGenerateErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "quota exhausted"},
		})
	}))
	defer srv.Close()

	g := NewGemini(GeminiConfig{APIKey: "k", BaseURL: srv.URL})
	_, err := g.Generate(context.Background(), "text", "title")
	if err == nil || !strings.Contains(err.Error(), "quota exhausted") {
		t.Fatalf("expected quota error, got %v", err)
	}
}

func TestGeminiGenerateEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer srv.Close()

	g := NewGemini(GeminiConfig{APIKey: "k", BaseURL: srv.URL})
	if _, err := g.Generate(context.Background(), "text", "title"); err == nil {
		t.Fatalf("expected error for empty candidate list")
	}
}
