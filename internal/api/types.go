package api

import "github.com/samcharles93/scribe/internal/decode"

// GenerateRequest is the body of POST /v1/generate. Unset fields take the
// server defaults.
type GenerateRequest struct {
	Prompt    *string `json:"prompt,omitempty"`
	PromptIDs []int   `json:"prompt_ids,omitempty"`

	Strategy *string `json:"strategy,omitempty"`
	Device   *string `json:"device,omitempty"`

	NumTokens *int    `json:"num_tokens,omitempty"`
	End       *string `json:"end,omitempty"`
	EndIDs    []int   `json:"end_ids,omitempty"`
	MaxLength *int    `json:"max_length,omitempty"`
	MinLength *int    `json:"min_length,omitempty"`

	Temperature       *float64 `json:"temperature,omitempty"`
	TopK              *int     `json:"top_k,omitempty"`
	TopP              *float64 `json:"top_p,omitempty"`
	RepetitionPenalty *float64 `json:"repetition_penalty,omitempty"`
	Seed              *int64   `json:"seed,omitempty"`

	Stream *bool `json:"stream,omitempty"`
}

type GenerateResponse struct {
	ID         string           `json:"id"`
	Object     string           `json:"object"`
	Created    int64            `json:"created"`
	Strategy   string           `json:"strategy"`
	Device     string           `json:"device"`
	Text       string           `json:"text"`
	TokenIDs   []int            `json:"token_ids"`
	StopReason string           `json:"stop_reason"`
	Seed       *int64           `json:"seed,omitempty"`
	Warnings   []decode.Warning `json:"warnings"`
	Usage      Usage            `json:"usage"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type TokenizeRequest struct {
	Text string `json:"text"`
}

type TokenizeResponse struct {
	TokenIDs []int `json:"token_ids"`
	Count    int   `json:"count"`
}

type DetokenizeRequest struct {
	TokenIDs []int `json:"token_ids"`
}

type DetokenizeResponse struct {
	Text string `json:"text"`
}

type DevicesResponse struct {
	Devices     []string `json:"devices"`
	CPUFeatures []string `json:"cpu_features"`
	VocabSize   int      `json:"vocab_size,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Param   string `json:"param,omitempty"`
	Code    string `json:"code,omitempty"`
}

// TokenEvent is the payload of a generation.token SSE event.
type TokenEvent struct {
	ID    string `json:"id"`
	Index int    `json:"index"`
	Token int    `json:"token_id"`
	Text  string `json:"text"`
}
