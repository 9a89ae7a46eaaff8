package generate

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	autodoc "github.com/autodoc-ai/autodoc"
)

func chatReply(content string) string {
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

func TestGenerateSuccess(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotBody, _ = io.ReadAll(r.Body)
		io.WriteString(w, chatReply("# A fine comment"))
	}))
	defer srv.Close()

	g := NewGenerator(srv.URL, "", "llama3", 1024, 0, 10*time.Second)
	out, err := g.Generate(context.Background(), "system text", "def f():\n    return 1")
	if err != nil {
		t.Fatal(err)
	}
	if out != "# A fine comment" {
		t.Errorf("got %q", out)
	}

	var req chatRequest
	if err := json.Unmarshal(gotBody, &req); err != nil {
		t.Fatal(err)
	}
	if req.Model != "llama3" {
		t.Errorf("model = %q", req.Model)
	}
	if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
		t.Fatalf("unexpected messages: %+v", req.Messages)
	}
	// The full source must survive into the prompt unmodified.
	if !strings.Contains(req.Messages[1].Content, "def f():\n    return 1") {
		t.Error("user message does not contain the source text")
	}
}

func TestGenerateSendsZeroTemperature(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		io.WriteString(w, chatReply("ok"))
	}))
	defer srv.Close()

	g := NewGenerator(srv.URL, "", "llama3", 1024, 0, 10*time.Second)
	if _, err := g.Generate(context.Background(), "s", "u"); err != nil {
		t.Fatal(err)
	}

	// Temperature 0 means deterministic generation and must reach the
	// server; a missing key would let the server default apply instead.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(gotBody, &raw); err != nil {
		t.Fatal(err)
	}
	temp, ok := raw["temperature"]
	if !ok {
		t.Fatal("request body has no temperature key")
	}
	if string(temp) != "0" {
		t.Errorf("temperature = %s, want 0", temp)
	}
}

func TestGenerateOmitsEmptySystemPrompt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req chatRequest
		json.Unmarshal(body, &req)
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("expected single user message, got %+v", req.Messages)
		}
		io.WriteString(w, chatReply("ok"))
	}))
	defer srv.Close()

	g := NewGenerator(srv.URL, "", "llama3", 0, 0, 10*time.Second)
	if _, err := g.Generate(context.Background(), "", "just user"); err != nil {
		t.Fatal(err)
	}
}

func TestGenerateTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	g := NewGenerator(srv.URL, "", "llama3", 0, 0, time.Second)
	_, err := g.Generate(context.Background(), "s", "u")
	if err == nil {
		t.Fatal("expected error")
	}
	if autodoc.ErrCode(err) != autodoc.CodeTransport {
		t.Errorf("expected transport code, got %q", autodoc.ErrCode(err))
	}
}

func TestGenerateServiceStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "model not found"}}`, http.StatusNotFound)
	}))
	defer srv.Close()

	g := NewGenerator(srv.URL, "", "missing-model", 0, 0, time.Second)
	_, err := g.Generate(context.Background(), "s", "u")
	if err == nil {
		t.Fatal("expected error")
	}
	if autodoc.ErrCode(err) != autodoc.CodeService {
		t.Errorf("expected service code, got %q", autodoc.ErrCode(err))
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("expected status in message, got %v", err)
	}
}

func TestGenerateErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"error": {"message": "context length exceeded"}}`)
	}))
	defer srv.Close()

	g := NewGenerator(srv.URL, "", "llama3", 0, 0, time.Second)
	_, err := g.Generate(context.Background(), "s", "u")
	if err == nil {
		t.Fatal("expected error")
	}
	if autodoc.ErrCode(err) != autodoc.CodeService {
		t.Errorf("expected service code, got %q", autodoc.ErrCode(err))
	}
	if !strings.Contains(err.Error(), "context length exceeded") {
		t.Errorf("expected payload message, got %v", err)
	}
}

func TestGenerateEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"choices": []}`)
	}))
	defer srv.Close()

	g := NewGenerator(srv.URL, "", "llama3", 0, 0, time.Second)
	_, err := g.Generate(context.Background(), "s", "u")
	if err == nil {
		t.Fatal("expected error for empty choices")
	}
	if autodoc.ErrCode(err) != autodoc.CodeService {
		t.Errorf("expected service code, got %q", autodoc.ErrCode(err))
	}
}

func TestGenerateSendsAPIKeyWhenSet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sekrit" {
			t.Errorf("Authorization = %q", got)
		}
		io.WriteString(w, chatReply("ok"))
	}))
	defer srv.Close()

	g := NewGenerator(srv.URL, "sekrit", "llama3", 0, 0, time.Second)
	if _, err := g.Generate(context.Background(), "s", "u"); err != nil {
		t.Fatal(err)
	}
}
