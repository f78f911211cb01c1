package gemini

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"showdown/internal/ai"
	"showdown/internal/audio"
)

// Gemini TTS returns raw 16-bit mono PCM at 24kHz.
const (
	ttsSampleRate = 24000
	ttsChannels   = 1
	ttsBitDepth   = 16
)

type Client struct {
	APIKey   string
	BaseURL  string
	Model    string
	TTSModel string
	http     *http.Client
}

func New(apiKey, baseURL, model, ttsModel string) *Client {
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	if ttsModel == "" {
		ttsModel = "gemini-2.5-flash-preview-tts"
	}
	return &Client{
		APIKey:   apiKey,
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Model:    model,
		TTSModel: ttsModel,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

// Available reports whether the client is configured with an API key.
func (c *Client) Available() bool { return c.APIKey != "" }

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func promptSchema(wildcard bool) map[string]any {
	if wildcard {
		return map[string]any{
			"type": "OBJECT",
			"properties": map[string]any{
				"challenge":      map[string]any{"type": "STRING"},
				"points":         map[string]any{"type": "INTEGER"},
				"timerInSeconds": map[string]any{"type": "INTEGER"},
			},
			"required": []string{"challenge", "points"},
		}
	}
	return map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"prompt":         map[string]any{"type": "STRING"},
			"timerInSeconds": map[string]any{"type": "INTEGER"},
		},
		"required": []string{"prompt"},
	}
}

func (c *Client) Generate(ctx context.Context, req ai.GenerateRequest) (*ai.GenerateResult, error) {
	if c.APIKey == "" {
		return nil, errors.New("missing GEMINI_API_KEY")
	}
	payload := map[string]any{
		"contents":       []content{{Role: "user", Parts: []part{{Text: req.Prompt}}}},
		"safetySettings": req.Safety,
		"generationConfig": map[string]any{
			"responseMimeType": "application/json",
			"responseSchema":   promptSchema(req.Wildcard),
			"temperature":      1.0,
		},
	}

	var out generateResponse
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.BaseURL, c.Model)
	if err := c.post(ctx, url, payload, &out); err != nil {
		return nil, err
	}
	text, err := firstText(&out)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Prompt         string `json:"prompt"`
		Challenge      string `json:"challenge"`
		Points         int    `json:"points"`
		TimerInSeconds int    `json:"timerInSeconds"`
	}
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("gemini returned malformed JSON: %w", err)
	}

	result := &ai.GenerateResult{TimerSeconds: parsed.TimerInSeconds}
	if req.Wildcard {
		result.Text = strings.TrimSpace(parsed.Challenge)
		result.Points = parsed.Points
	} else {
		result.Text = strings.TrimSpace(parsed.Prompt)
	}
	if result.Text == "" {
		return nil, errors.New("gemini returned an empty prompt")
	}
	return result, nil
}

func (c *Client) GenerateStream(ctx context.Context, req ai.GenerateRequest, emit func(string) error) error {
	if c.APIKey == "" {
		return errors.New("missing GEMINI_API_KEY")
	}
	payload := map[string]any{
		"contents":       []content{{Role: "user", Parts: []part{{Text: req.Prompt}}}},
		"safetySettings": req.Safety,
	}
	b, _ := json.Marshal(payload)

	url := fmt.Sprintf("%s/v1beta/models/%s:streamGenerateContent?alt=sse", c.BaseURL, c.Model)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.APIKey)

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
		var chunk generateResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue // skip keep-alives and partial frames
		}
		for _, cand := range chunk.Candidates {
			for _, p := range cand.Content.Parts {
				if p.Text == "" {
					continue
				}
				if err := emit(p.Text); err != nil {
					return err
				}
			}
		}
	}
	return scanner.Err()
}

// Synthesize generates speech for the prompt text. The voice is the
// opposite of the player's gender: a male-sounding voice for a female
// player and vice versa.
func (c *Client) Synthesize(ctx context.Context, text string, gender string) (string, error) {
	if c.APIKey == "" {
		return "", errors.New("missing GEMINI_API_KEY")
	}
	voice := "Vega"
	if gender == "female" {
		voice = "Rigel"
	}
	payload := map[string]any{
		"contents": []content{{Role: "user", Parts: []part{{Text: text}}}},
		"generationConfig": map[string]any{
			"responseModalities": []string{"AUDIO"},
			"speechConfig": map[string]any{
				"voiceConfig": map[string]any{
					"prebuiltVoiceConfig": map[string]any{"voiceName": voice},
				},
			},
		},
	}

	var out generateResponse
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.BaseURL, c.TTSModel)
	if err := c.post(ctx, url, payload, &out); err != nil {
		return "", err
	}

	var raw string
	for _, cand := range out.Candidates {
		for _, p := range cand.Content.Parts {
			if p.InlineData != nil && p.InlineData.Data != "" {
				raw = p.InlineData.Data
			}
		}
	}
	if raw == "" {
		return "", errors.New("no audio media was returned from the TTS model")
	}

	pcm, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", fmt.Errorf("failed to decode audio data: %w", err)
	}
	wav := audio.EncodeWAV(pcm, ttsChannels, ttsSampleRate, ttsBitDepth)
	return audio.DataURI(wav), nil
}

func (c *Client) post(ctx context.Context, url string, payload any, out any) error {
	b, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp.StatusCode); err != nil {
		return err
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func checkStatus(status int) error {
	if status == http.StatusTooManyRequests {
		return fmt.Errorf("gemini status %d: %w", status, ai.ErrQuotaExhausted)
	}
	if status/100 != 2 {
		return fmt.Errorf("gemini status %d", status)
	}
	return nil
}

func firstText(out *generateResponse) (string, error) {
	for _, cand := range out.Candidates {
		for _, p := range cand.Content.Parts {
			if p.Text != "" {
				return p.Text, nil
			}
		}
	}
	return "", errors.New("no candidates")
}
