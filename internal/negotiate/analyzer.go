// Package negotiate turns user input into model requests and model output
// into validated domain values: contract analysis, coaching replies and
// spoken negotiation scripts.
package negotiate

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ericksa/lexinegotiate/internal/contract"
	"github.com/ericksa/lexinegotiate/internal/fault"
	"github.com/ericksa/lexinegotiate/internal/provider"
)

// Input is what the user submitted for analysis. Image is a data URI.
type Input struct {
	Text  string
	Image string
}

// Blank reports whether neither text nor image carries content.
func (in Input) Blank() bool {
	return strings.TrimSpace(in.Text) == "" && strings.TrimSpace(in.Image) == ""
}

// Analyzer runs a single analysis call. It holds no per-request state and is
// safe for concurrent use.
type Analyzer struct {
	provider provider.AnalysisProvider
	logger   *zap.Logger
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(p provider.AnalysisProvider, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{provider: p, logger: logger.Named("analyzer")}
}

// BuildRequest assembles the parts in order: inline image, instruction,
// then the pasted text.
func BuildRequest(in Input) (provider.AnalysisRequest, error) {
	if in.Blank() {
		return provider.AnalysisRequest{}, fault.New(fault.KindInputMissing, "analyze", "paste contract text or upload an image or PDF first")
	}

	parts := make([]provider.Part, 0, 3)
	if strings.TrimSpace(in.Image) != "" {
		mimeType, data, err := ParseDataURI(strings.TrimSpace(in.Image))
		if err != nil {
			return provider.AnalysisRequest{}, err
		}
		parts = append(parts, provider.Part{InlineData: &provider.Blob{MIMEType: mimeType, Data: data}})
	}
	parts = append(parts, provider.TextPart(AnalysisPrompt()))
	if strings.TrimSpace(in.Text) != "" {
		parts = append(parts, provider.TextPart(AdditionalTextHeader+in.Text))
	}

	return provider.AnalysisRequest{Parts: parts, Schema: contract.AnalysisSchema()}, nil
}

// Analyze sends the input to the model and returns the validated analysis.
func (a *Analyzer) Analyze(ctx context.Context, in Input) (*contract.ContractAnalysis, error) {
	req, err := BuildRequest(in)
	if err != nil {
		return nil, err
	}
	withImage := req.HasInlineData()

	start := time.Now()
	raw, err := a.provider.GenerateAnalysis(ctx, req)
	if err != nil {
		a.logger.Warn("analysis call failed",
			zap.Bool("image", withImage),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("kind", string(fault.KindOf(err))))
		return nil, flagImage(classifyProviderError("analyze", err), withImage)
	}

	analysis, err := contract.DecodeAnalysis(raw)
	if err != nil {
		a.logger.Warn("analysis response rejected",
			zap.Int("bytes", len(raw)),
			zap.String("kind", string(fault.KindOf(err))))
		return nil, flagImage(err, withImage)
	}

	a.logger.Debug("analysis complete",
		zap.Bool("image", withImage),
		zap.Int("clauses", len(analysis.Clauses)),
		zap.Int("risk_score", analysis.RiskScore),
		zap.Duration("elapsed", time.Since(start)))
	return analysis, nil
}

// classifyProviderError makes sure every provider failure carries a kind.
func classifyProviderError(op string, err error) error {
	var fe *fault.Error
	if errors.As(err, &fe) {
		return err
	}
	return fault.Wrap(fault.KindTransportFailure, op, err, "the model service could not be reached")
}

// flagImage marks err as image-related so callers can suggest pasting text
// instead.
func flagImage(err error, withImage bool) error {
	if !withImage {
		return err
	}
	var fe *fault.Error
	if !errors.As(err, &fe) {
		return err
	}
	flagged := *fe
	flagged.Image = true
	return &flagged
}
