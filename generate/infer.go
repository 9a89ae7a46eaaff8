package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	autodoc "github.com/autodoc-ai/autodoc"
)

// Generator performs text generation via an OpenAI-compatible
// /v1/chat/completions API. Local servers (Ollama, LM Studio, vLLM) expose
// this surface; the API key is optional for them.
//
// One call is one blocking request/response exchange. There is no retry,
// no backoff, and no streaming.
type Generator struct {
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	client      *http.Client
}

// NewGenerator creates a generator. timeout bounds the whole exchange.
func NewGenerator(baseURL, apiKey, model string, maxTokens int, temperature float64, timeout time.Duration) *Generator {
	return &Generator{
		baseURL:     baseURL,
		apiKey:      apiKey,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		client:      &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
	// Temperature is always sent: zero means deterministic output, not
	// "use the server default".
	Temperature float64 `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *apiError    `json:"error,omitempty"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Generate sends one chat completion request and returns the response text.
// Connectivity failures carry CodeTransport; error payloads, non-200
// statuses, and empty responses carry CodeService.
func (g *Generator) Generate(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: userMessage})

	reqBody := chatRequest{
		Model:       g.model,
		Messages:    messages,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", g.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", autodoc.E(autodoc.CodeTransport, "generate", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", autodoc.E(autodoc.CodeTransport, "generate", err)
	}

	if resp.StatusCode != 200 {
		return "", autodoc.E(autodoc.CodeService, "generate",
			fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body)))
	}

	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", autodoc.E(autodoc.CodeService, "generate",
			fmt.Errorf("failed to parse response: %w (body: %s)", err, string(body)))
	}

	if result.Error != nil {
		return "", autodoc.E(autodoc.CodeService, "generate",
			fmt.Errorf("API error: %s", result.Error.Message))
	}

	if len(result.Choices) == 0 {
		return "", autodoc.E(autodoc.CodeService, "generate",
			fmt.Errorf("no choices in response"))
	}

	return result.Choices[0].Message.Content, nil
}
