package api

import (
	"context"
	"fmt"
	"time"

	"github.com/samcharles93/scribe/internal/decode"
	"github.com/samcharles93/scribe/internal/inference"
)

type GenerationService struct {
	provider EngineProvider
	clock    func() time.Time
}

func NewGenerationService(provider EngineProvider) *GenerationService {
	return &GenerationService{provider: provider, clock: time.Now}
}

// StreamWriter receives tokens while a generation runs.
type StreamWriter interface {
	SetID(id string)
	EmitToken(index, id int, text string) error
}

func (s *GenerationService) Generate(ctx context.Context, req *GenerateRequest, stream StreamWriter) (*GenerateResponse, error) {
	if err := validateGenerateRequest(req); err != nil {
		return nil, err
	}

	resp := &GenerateResponse{
		ID:       newGenerationID(),
		Object:   "generation",
		Created:  s.clock().Unix(),
		Warnings: []decode.Warning{},
	}

	var streamFn inference.StreamFunc
	if stream != nil {
		stream.SetID(resp.ID)
		streamFn = func(tok inference.Token) {
			// A failed write means the client went away; the request context
			// ends the generation.
			_ = stream.EmitToken(tok.Index, tok.ID, tok.Text)
		}
	}

	err := s.provider.WithEngine(ctx, func(engine inference.Engine, defaults inference.GenDefaults) error {
		r := inference.ResolveRequest(toRequestOptions(req), defaults)
		result, err := engine.Generate(ctx, &r, streamFn)
		if err != nil {
			return err
		}
		resp.Strategy = result.Strategy
		resp.Device = result.Device
		resp.Text = result.Text
		resp.TokenIDs = result.TokenIDs
		resp.StopReason = string(result.StopReason)
		resp.Seed = result.Seed
		if len(result.Warnings) > 0 {
			resp.Warnings = result.Warnings
		}
		resp.Usage = Usage{
			PromptTokens:     result.PromptTokens,
			CompletionTokens: len(result.TokenIDs),
			TotalTokens:      result.PromptTokens + len(result.TokenIDs),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if resp.TokenIDs == nil {
		resp.TokenIDs = []int{}
	}
	return resp, nil
}

func (s *GenerationService) Tokenize(ctx context.Context, text string) ([]int, error) {
	var ids []int
	err := s.provider.WithEngine(ctx, func(engine inference.Engine, _ inference.GenDefaults) error {
		var err error
		ids, err = engine.Tokenize(text)
		return err
	})
	return ids, err
}

func (s *GenerationService) Detokenize(ctx context.Context, ids []int) (string, error) {
	if err := validateTokenIDs("token_ids", ids); err != nil {
		return "", err
	}
	var text string
	err := s.provider.WithEngine(ctx, func(engine inference.Engine, _ inference.GenDefaults) error {
		var err error
		text, err = engine.Detokenize(ids)
		if err != nil {
			return newInvalidRequest(err.Error())
		}
		return nil
	})
	return text, err
}

func (s *GenerationService) VocabSize(ctx context.Context) int {
	n := 0
	_ = s.provider.WithEngine(ctx, func(engine inference.Engine, _ inference.GenDefaults) error {
		n = engine.VocabSize()
		return nil
	})
	return n
}

func validateGenerateRequest(req *GenerateRequest) error {
	if req == nil {
		return newInvalidRequest("request body is required")
	}
	if req.Prompt != nil && *req.Prompt != "" && len(req.PromptIDs) > 0 {
		return newInvalidRequest("prompt and prompt_ids are mutually exclusive")
	}
	if req.End != nil && *req.End != "" && len(req.EndIDs) > 0 {
		return newInvalidRequest("end and end_ids are mutually exclusive")
	}
	if err := validateTokenIDs("prompt_ids", req.PromptIDs); err != nil {
		return err
	}
	return validateTokenIDs("end_ids", req.EndIDs)
}

func validateTokenIDs(field string, ids []int) error {
	for i, id := range ids {
		if id < 0 {
			return newInvalidRequest(fmt.Sprintf("%s[%d]: token ids must be non-negative, got %d", field, i, id))
		}
	}
	return nil
}

func toRequestOptions(req *GenerateRequest) inference.RequestOptions {
	return inference.RequestOptions{
		Prompt:            req.Prompt,
		PromptIDs:         req.PromptIDs,
		Strategy:          req.Strategy,
		Device:            req.Device,
		NumTokens:         req.NumTokens,
		End:               req.End,
		EndIDs:            req.EndIDs,
		MaxLength:         req.MaxLength,
		MinLength:         req.MinLength,
		Temperature:       req.Temperature,
		TopK:              req.TopK,
		TopP:              req.TopP,
		RepetitionPenalty: req.RepetitionPenalty,
		Seed:              req.Seed,
	}
}
