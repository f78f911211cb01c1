// Package openai is an OpenAI-compatible fallback provider. It has no
// safety-setting controls, so the rendered prompt alone carries the
// category constraints.
package openai

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

	"showdown/internal/ai"
)

type Client struct {
	APIKey  string
	BaseURL string
	Model   string
	http    *http.Client
}

func New(apiKey, baseURL, model string) *Client {
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Client{
		APIKey:  apiKey,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		http:    &http.Client{Timeout: 20 * time.Second},
	}
}

func (c *Client) Available() bool { return c.APIKey != "" }

const promptSystem = `Respond with a JSON object of the form {"prompt": string, "timerInSeconds": number}. Include timerInSeconds only if the task has a specific time limit.`

const wildcardSystem = `Respond with a JSON object of the form {"challenge": string, "points": number, "timerInSeconds": number}. points must be an integer between 15 and 30. Include timerInSeconds only if the task has a specific time limit.`

func (c *Client) Generate(ctx context.Context, req ai.GenerateRequest) (*ai.GenerateResult, error) {
	if c.APIKey == "" {
		return nil, errors.New("missing OPENAI_API_KEY")
	}
	system := promptSystem
	if req.Wildcard {
		system = wildcardSystem
	}
	payload := map[string]any{
		"model": c.Model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": req.Prompt},
		},
		"temperature":     0.8,
		"max_tokens":      200,
		"response_format": map[string]string{"type": "json_object"},
	}
	b, _ := json.Marshal(payload)

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/v1/chat/completions", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if len(out.Choices) == 0 {
		return nil, errors.New("no choices")
	}

	var parsed struct {
		Prompt         string `json:"prompt"`
		Challenge      string `json:"challenge"`
		Points         int    `json:"points"`
		TimerInSeconds int    `json:"timerInSeconds"`
	}
	if err := json.Unmarshal([]byte(out.Choices[0].Message.Content), &parsed); err != nil {
		return nil, fmt.Errorf("openai returned malformed JSON: %w", err)
	}

	result := &ai.GenerateResult{TimerSeconds: parsed.TimerInSeconds}
	if req.Wildcard {
		result.Text = strings.TrimSpace(parsed.Challenge)
		result.Points = parsed.Points
	} else {
		result.Text = strings.TrimSpace(parsed.Prompt)
	}
	if result.Text == "" {
		return nil, errors.New("openai returned an empty prompt")
	}
	return result, nil
}

func (c *Client) GenerateStream(ctx context.Context, req ai.GenerateRequest, emit func(string) error) error {
	if c.APIKey == "" {
		return errors.New("missing OPENAI_API_KEY")
	}
	payload := map[string]any{
		"model": c.Model,
		"messages": []map[string]string{
			{"role": "user", "content": req.Prompt},
		},
		"temperature": 0.8,
		"max_tokens":  200,
		"stream":      true,
	}
	b, _ := json.Marshal(payload)

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/v1/chat/completions", bytes.NewReader(b))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp.StatusCode); err != nil {
		return err
	}

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
		var chunk struct {
			Choices []struct {
				Delta struct {
					Content string `json:"content"`
				} `json:"delta"`
			} `json:"choices"`
		}
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		for _, choice := range chunk.Choices {
			if choice.Delta.Content == "" {
				continue
			}
			if err := emit(choice.Delta.Content); err != nil {
				return err
			}
		}
	}
	return scanner.Err()
}

func checkStatus(status int) error {
	if status == http.StatusTooManyRequests {
		return fmt.Errorf("openai status %d: %w", status, ai.ErrQuotaExhausted)
	}
	if status/100 != 2 {
		return fmt.Errorf("openai status %d", status)
	}
	return nil
}
