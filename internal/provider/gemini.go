package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/ericksa/lexinegotiate/internal/contract"
	"github.com/ericksa/lexinegotiate/internal/fault"
)

const jsonMIMEType = "application/json"

// GeminiOptions configures the Gemini-backed providers.
type GeminiOptions struct {
	APIKey         string
	BaseURL        string
	AnalysisModel  string
	ChatModel      string
	SpeechModel    string
	ThinkingBudget int32
	// RequestTimeout bounds every model call. Zero leaves calls unbounded.
	RequestTimeout time.Duration
	HTTPClient     *http.Client
}

// Gemini implements AnalysisProvider, ChatProvider and SpeechProvider on the
// Gemini API.
type Gemini struct {
	client *genai.Client
	opts   GeminiOptions
	logger *zap.Logger
}

var (
	_ AnalysisProvider = (*Gemini)(nil)
	_ ChatProvider     = (*Gemini)(nil)
	_ SpeechProvider   = (*Gemini)(nil)
)

// NewGemini creates a Gemini client. The API key is required.
func NewGemini(ctx context.Context, opts GeminiOptions, logger *zap.Logger) (*Gemini, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cc := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: opts.BaseURL,
		},
	}
	if opts.RequestTimeout > 0 {
		timeout := opts.RequestTimeout
		cc.HTTPOptions.Timeout = &timeout
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Gemini{client: client, opts: opts, logger: logger.Named("gemini")}, nil
}

func (g *Gemini) thinking() *genai.ThinkingConfig {
	if g.opts.ThinkingBudget <= 0 {
		return nil
	}
	return &genai.ThinkingConfig{ThinkingBudget: genai.Ptr(g.opts.ThinkingBudget)}
}

// GenerateAnalysis sends the multimodal parts with a response-schema constraint.
func (g *Gemini) GenerateAnalysis(ctx context.Context, req AnalysisRequest) (string, error) {
	const op = "generate analysis"

	contents := []*genai.Content{genai.NewContentFromParts(toGenaiParts(req.Parts), genai.RoleUser)}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: jsonMIMEType,
		ResponseSchema:   toGenaiSchema(req.Schema),
		ThinkingConfig:   g.thinking(),
	}

	resp, err := g.generate(ctx, op, g.opts.AnalysisModel, contents, config)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// SendChat replays the history, then sends the new user message.
func (g *Gemini) SendChat(ctx context.Context, req ChatRequest) (string, error) {
	const op = "send chat"

	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, turn := range req.History {
		role := genai.RoleUser
		if turn.Role == contract.RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, genai.Role(role)))
	}
	contents = append(contents, genai.NewContentFromText(req.Message, genai.RoleUser))

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.SystemInstruction, genai.RoleUser),
		ResponseMIMEType:  jsonMIMEType,
		ThinkingConfig:    g.thinking(),
	}

	resp, err := g.generate(ctx, op, g.opts.ChatModel, contents, config)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// GenerateSpeech requests audio output with a prebuilt voice. A response
// without inline data yields an Audio with nil Data.
func (g *Gemini) GenerateSpeech(ctx context.Context, req SpeechRequest) (*Audio, error) {
	const op = "generate speech"

	contents := []*genai.Content{genai.NewContentFromText(req.Text, genai.RoleUser)}
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: req.Voice},
			},
		},
	}

	resp, err := g.generate(ctx, op, g.opts.SpeechModel, contents, config)
	if err != nil {
		return nil, err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return &Audio{}, nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return &Audio{MIMEType: part.InlineData.MIMEType, Data: part.InlineData.Data}, nil
		}
	}
	return &Audio{}, nil
}

func (g *Gemini) generate(ctx context.Context, op, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, model, contents, config)
	g.logger.Debug("model call finished",
		zap.String("op", op),
		zap.String("model", model),
		zap.Duration("elapsed", time.Since(start)),
		zap.Bool("ok", err == nil))
	if err != nil {
		return nil, classify(op, err)
	}
	if reason, blocked := refusal(resp); blocked {
		return nil, &fault.Error{
			Kind:    fault.KindContentRefusal,
			Op:      op,
			Message: "the model declined to process this content (" + reason + ")",
		}
	}
	return resp, nil
}

func refusal(resp *genai.GenerateContentResponse) (string, bool) {
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" && fb.BlockReason != genai.BlockedReasonUnspecified {
		return string(fb.BlockReason), true
	}
	if len(resp.Candidates) == 0 {
		return "", false
	}
	switch reason := resp.Candidates[0].FinishReason; reason {
	case genai.FinishReasonSafety,
		genai.FinishReasonProhibitedContent,
		genai.FinishReasonBlocklist,
		genai.FinishReasonSPII,
		genai.FinishReasonImageSafety:
		return string(reason), true
	}
	return "", false
}

func classify(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fault.Wrap(fault.KindTransportFailure, op, err, "the request to the model was cancelled or timed out")
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &fault.Error{
			Kind:    fault.KindTransportFailure,
			Op:      op,
			Message: fmt.Sprintf("the model service rejected the request (status %d)", apiErr.Code),
			Status:  apiErr.Code,
			Err:     err,
		}
	}
	return fault.Wrap(fault.KindTransportFailure, op, err, "the model service could not be reached")
}

func toGenaiParts(parts []Part) []*genai.Part {
	out := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.InlineData != nil {
			out = append(out, &genai.Part{InlineData: &genai.Blob{MIMEType: p.InlineData.MIMEType, Data: p.InlineData.Data}})
			continue
		}
		out = append(out, genai.NewPartFromText(p.Text))
	}
	return out
}

func toGenaiSchema(s *contract.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Minimum: s.Minimum,
		Maximum: s.Maximum,
	}
	switch s.Type {
	case contract.TypeObject:
		out.Type = genai.TypeObject
		out.Properties = make(map[string]*genai.Schema, len(s.Fields))
		for _, f := range s.Fields {
			out.Properties[f.Name] = toGenaiSchema(f.Schema)
			out.PropertyOrdering = append(out.PropertyOrdering, f.Name)
		}
		out.Required = s.Required()
	case contract.TypeArray:
		out.Type = genai.TypeArray
		out.Items = toGenaiSchema(s.Items)
	case contract.TypeString:
		out.Type = genai.TypeString
		if len(s.Enum) > 0 {
			out.Format = "enum"
			out.Enum = s.Enum
		}
	case contract.TypeInteger:
		out.Type = genai.TypeInteger
	default:
		out.Type = genai.TypeNumber
	}
	return out
}
