package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// errInferenceDisabled is returned when no API key is configured.
var errInferenceDisabled = errors.New("OPENAI_API_KEY not set")

// inferenceClient talks to an OpenAI-compatible chat completions endpoint.
// Uses raw net/http to avoid pulling in the OpenAI SDK; baseURL is
// overridable so tests can point it at an httptest server.
type inferenceClient struct {
	baseURL string
	apiKey  string
	model   string
	timeout time.Duration
}

func newInferenceClient(cfg config) *inferenceClient {
	return &inferenceClient{
		baseURL: cfg.OpenAIBaseURL,
		apiKey:  cfg.OpenAIAPIKey,
		model:   cfg.OpenAIModel,
		timeout: 60 * time.Second,
	}
}

/* ─── Wire types ─────────────────────────────────────────────────────── */

// chatMessage is a single message in the chat completions request. Content
// is either a string or a []contentPart for multimodal input.
type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

func textMessage(role, text string) chatMessage {
	return chatMessage{Role: role, Content: text}
}

// imageMessage builds a user message carrying an inline base64 image.
func imageMessage(text, mimeType, base64Data string) chatMessage {
	return chatMessage{
		Role: "user",
		Content: []contentPart{
			{Type: "image_url", ImageURL: &imageURL{URL: "data:" + mimeType + ";base64," + base64Data}},
			{Type: "text", Text: text},
		},
	}
}

// completionRequest is the request body for the chat completions API.
type completionRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`
}

/* ─── Calls ──────────────────────────────────────────────────────────── */

// complete sends a chat completions request and returns the content of the
// first choice. jsonMode asks the model for a JSON object.
func (ic *inferenceClient) complete(ctx context.Context, messages []chatMessage, jsonMode bool) (string, error) {
	if ic == nil || ic.apiKey == "" {
		return "", errInferenceDisabled
	}

	reqBody := completionRequest{
		Model:       ic.model,
		Messages:    messages,
		Temperature: 0,
	}
	if jsonMode {
		reqBody.ResponseFormat = map[string]any{"type": "json_object"}
	} else {
		reqBody.Temperature = 0.7
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", ic.baseURL+"/v1/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+ic.apiKey)

	timeout := ic.timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("inference returned status %d: %s", resp.StatusCode, string(respBytes))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBytes, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return result.Choices[0].Message.Content, nil
}

// completeJSON runs a JSON-mode completion and decodes the content into out.
func (ic *inferenceClient) completeJSON(ctx context.Context, messages []chatMessage, out any) error {
	content, err := ic.complete(ctx, messages, true)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("parse model output: %w", err)
	}
	return nil
}
