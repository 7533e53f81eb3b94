// Package openaiutil is a minimal OpenAI chat-completions client used to
// turn a finished dashboard JSON into a short plain-language narrative.
package openaiutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const defaultSystemPrompt = "You are a careful analyst reviewing district water-conservation " +
	"performance data. Summarize the provided JSON for a district administrator in plain " +
	"language. Do not invent numbers that are not in the data."

type Config struct {
	APIKey       string
	Model        string
	BaseURL      string
	MaxTokens    int
	Temperature  float64
	SystemPrompt string
}

type request struct {
	Model               string    `json:"model"`
	MaxCompletionTokens int       `json:"max_completion_tokens,omitempty"`
	Temperature         float64   `json:"temperature,omitempty"`
	Messages            []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type response struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func Generate(ctx context.Context, cfg Config, userContent string) (string, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return "", fmt.Errorf("OpenAI API key missing; set openai.api_key or openai.api_key_env")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gpt-4o-mini"
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	systemPrompt := strings.TrimSpace(cfg.SystemPrompt)
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}

	reqBody := request{
		Model:               model,
		MaxCompletionTokens: cfg.MaxTokens,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userContent},
		},
	}
	if cfg.Temperature > 0 {
		reqBody.Temperature = cfg.Temperature
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal OpenAI request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build OpenAI request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call OpenAI: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read OpenAI response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("OpenAI HTTP %s: %s", resp.Status, string(body))
	}

	var oaResp response
	if err := json.Unmarshal(body, &oaResp); err != nil {
		return "", fmt.Errorf("parse OpenAI response: %w", err)
	}
	if oaResp.Error != nil {
		return "", fmt.Errorf("OpenAI error: %s", oaResp.Error.Message)
	}
	if len(oaResp.Choices) == 0 {
		return "", fmt.Errorf("OpenAI response had no choices")
	}
	return strings.TrimSpace(oaResp.Choices[0].Message.Content), nil
}
