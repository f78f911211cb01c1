package ai

import (
	"context"
	"errors"
)

// ErrQuotaExhausted marks rate-limit/quota failures so callers can
// degrade features for the rest of the session instead of retrying.
var ErrQuotaExhausted = errors.New("ai quota exhausted")

// HarmCategory and Threshold follow the Gemini safety-setting wire
// names. Providers that have no safety controls ignore them.
type (
	HarmCategory string
	Threshold    string
)

const (
	HarmHateSpeech       HarmCategory = "HARM_CATEGORY_HATE_SPEECH"
	HarmSexuallyExplicit HarmCategory = "HARM_CATEGORY_SEXUALLY_EXPLICIT"
	HarmDangerousContent HarmCategory = "HARM_CATEGORY_DANGEROUS_CONTENT"
	HarmHarassment       HarmCategory = "HARM_CATEGORY_HARASSMENT"
)

const (
	BlockMediumAndAbove Threshold = "BLOCK_MEDIUM_AND_ABOVE"
	BlockOnlyHigh       Threshold = "BLOCK_ONLY_HIGH"
	BlockNone           Threshold = "BLOCK_NONE"
)

type SafetySetting struct {
	Category  HarmCategory `json:"category"`
	Threshold Threshold    `json:"threshold"`
}

// GenerateRequest carries a fully rendered prompt plus the safety
// policy matching its category and intensity.
type GenerateRequest struct {
	Prompt   string
	Safety   []SafetySetting
	Wildcard bool // expect a challenge/points payload instead of a plain prompt
}

// GenerateResult is the structured model output for one turn.
type GenerateResult struct {
	Text         string
	Points       int // set only for wildcard responses
	TimerSeconds int // 0 when the task has no time limit
}

type Provider interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
	// GenerateStream relays raw text chunks as they arrive.
	GenerateStream(ctx context.Context, req GenerateRequest, emit func(chunk string) error) error
}

// Speaker synthesizes speech for a prompt, returning a playable
// base64 data URI. The player's gender selects the voice.
type Speaker interface {
	Synthesize(ctx context.Context, text string, gender string) (string, error)
}
