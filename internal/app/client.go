package app

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Generator produces one model segment per call. Stream invokes onChunk for
// each text delta as it arrives and returns the complete segment text.
type Generator interface {
	Stream(ctx context.Context, prompt string, onChunk func(string)) (string, error)
}

// Client streams completions from an Anthropic-style messages endpoint.
type Client struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
	HTTP      *http.Client
}

type messagesRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens,omitempty"`
	Stream    bool          `json:"stream"`
	Messages  []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// streamEvent covers the SSE payloads we care about. Anything that is not a
// text delta or an error is skipped.
type streamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func NewClient(apiKey, model, baseURL string, maxTokens int) *Client {
	if model == "" {
		model = "minimax-m2.1"
	}
	if baseURL == "" {
		baseURL = "https://api.minimax.io/anthropic/v1/messages"
	}
	if maxTokens <= 0 {
		maxTokens = 8192
	}
	return &Client{
		APIKey:    apiKey,
		Model:     model,
		BaseURL:   baseURL,
		MaxTokens: maxTokens,
		HTTP:      &http.Client{Timeout: 300 * time.Second},
	}
}

func (c *Client) Stream(ctx context.Context, prompt string, onChunk func(string)) (string, error) {
	if c.APIKey == "" {
		return "", errors.New("api key is required")
	}
	reqBody := messagesRequest{
		Model:     c.Model,
		MaxTokens: c.MaxTokens,
		Stream:    true,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	request.Header.Set("Authorization", "Bearer "+c.APIKey)
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("x-api-key", c.APIKey)
	request.Header.Set("anthropic-version", "2023-06-01")
	request.Header.Set("Accept", "text/event-stream")

	resp, err := c.HTTP.Do(request)
	if err != nil {
		return "", fmt.Errorf("api request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", c.readErrorResponse(resp)
	}

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" || data == "[DONE]" {
			continue
		}
		var evt streamEvent
		if err := json.Unmarshal([]byte(data), &evt); err != nil {
			continue
		}
		switch evt.Type {
		case "content_block_delta":
			if evt.Delta.Type == "text_delta" && evt.Delta.Text != "" {
				full.WriteString(evt.Delta.Text)
				if onChunk != nil {
					onChunk(evt.Delta.Text)
				}
			}
		case "error":
			if evt.Error != nil {
				return full.String(), fmt.Errorf("api stream error: %s", evt.Error.Message)
			}
			return full.String(), errors.New("api stream error")
		}
	}
	if err := scanner.Err(); err != nil {
		return full.String(), fmt.Errorf("stream interrupted: %v", err)
	}
	return full.String(), nil
}

func (c *Client) readErrorResponse(resp *http.Response) error {
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	body := buf.Bytes()

	var errResp struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &errResp)
	if errResp.Error != nil && errResp.Error.Message != "" {
		return fmt.Errorf("api error: status %d, message: %s", resp.StatusCode, errResp.Error.Message)
	}
	if errResp.Message != "" {
		return fmt.Errorf("api error: status %d, message: %s", resp.StatusCode, errResp.Message)
	}
	return fmt.Errorf("api error: status %d, response: %s", resp.StatusCode, buf.String())
}
