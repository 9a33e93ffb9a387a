package workers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ericksa/lexinegotiate/internal/contract"
	"github.com/ericksa/lexinegotiate/internal/dashboard"
	"github.com/ericksa/lexinegotiate/internal/fault"
	"github.com/ericksa/lexinegotiate/internal/negotiate"
)

// AnalysisWorker analyzes contracts and renders the results.
type AnalysisWorker struct {
	analyzer Analyzer
}

func NewAnalysisWorker(analyzer Analyzer) *AnalysisWorker {
	return &AnalysisWorker{analyzer: analyzer}
}

func (w *AnalysisWorker) GetTools() []ToolDef {
	return []ToolDef{
		{Name: "analyze", Description: "Analyze a contract given as text and/or an image or PDF data URI; returns the risk analysis"},
		{Name: "dashboard", Description: "Render the dashboard view (gauge, totals, clause cards) of an analysis"},
		{Name: "memo", Description: "Render a Markdown negotiation memo for an analysis or one of its clauses"},
		{Name: "email_link", Description: "Build a Gmail or Outlook compose URL for a clause email draft"},
		{Name: "share", Description: "Build the share summary of an analysis"},
	}
}

func (w *AnalysisWorker) Execute(ctx context.Context, name string, input json.RawMessage) ([]byte, error) {
	switch toolName("analysis", name) {
	case "analyze":
		return w.analyze(ctx, input)
	case "dashboard":
		return w.dashboard(ctx, input)
	case "memo":
		return w.memo(ctx, input)
	case "email_link":
		return w.emailLink(ctx, input)
	case "share":
		return w.share(ctx, input)
	default:
		return nil, unknownTool("analysis", name)
	}
}

func (w *AnalysisWorker) analyze(ctx context.Context, input json.RawMessage) ([]byte, error) {
	var req struct {
		Text  string `json:"text"`
		Image string `json:"image"`
	}
	if err := decode("analyze", input, &req); err != nil {
		return nil, err
	}
	analysis, err := w.analyzer.Analyze(ctx, negotiate.Input{Text: req.Text, Image: req.Image})
	if err != nil {
		return nil, err
	}
	return json.Marshal(analysis)
}

func (w *AnalysisWorker) dashboard(ctx context.Context, input json.RawMessage) ([]byte, error) {
	var req struct {
		Analysis *contract.ContractAnalysis `json:"analysis"`
	}
	if err := decode("dashboard", input, &req); err != nil {
		return nil, err
	}
	if err := requireAnalysis("dashboard", req.Analysis); err != nil {
		return nil, err
	}
	return json.Marshal(dashboard.NewAnalysisView(req.Analysis, ""))
}

// findClause looks up clauseID in a.
func findClause(op string, a *contract.ContractAnalysis, clauseID string) (contract.Clause, error) {
	c, ok := a.Clause(clauseID)
	if !ok {
		return contract.Clause{}, fault.New(fault.KindNotFound, op, fmt.Sprintf("clause %q not found", clauseID))
	}
	return c, nil
}

func (w *AnalysisWorker) memo(ctx context.Context, input json.RawMessage) ([]byte, error) {
	var req struct {
		Analysis *contract.ContractAnalysis `json:"analysis"`
		ClauseID string                     `json:"clause_id"`
	}
	if err := decode("memo", input, &req); err != nil {
		return nil, err
	}
	if err := requireAnalysis("memo", req.Analysis); err != nil {
		return nil, err
	}
	if req.ClauseID == "" {
		return json.Marshal(map[string]string{"markdown": dashboard.Memo(req.Analysis)})
	}
	c, err := findClause("memo", req.Analysis, req.ClauseID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]string{"markdown": dashboard.ClauseMemo(c)})
}

func (w *AnalysisWorker) emailLink(ctx context.Context, input json.RawMessage) ([]byte, error) {
	var req struct {
		Analysis *contract.ContractAnalysis `json:"analysis"`
		ClauseID string                     `json:"clause_id"`
		Tone     contract.Tone              `json:"tone"`
		Client   dashboard.MailClient       `json:"client"`
	}
	if err := decode("email_link", input, &req); err != nil {
		return nil, err
	}
	if err := requireAnalysis("email_link", req.Analysis); err != nil {
		return nil, err
	}
	c, err := findClause("email_link", req.Analysis, req.ClauseID)
	if err != nil {
		return nil, err
	}
	link, err := dashboard.NewEmailLink(c, req.Tone, req.Client)
	if err != nil {
		return nil, err
	}
	return json.Marshal(link)
}

func (w *AnalysisWorker) share(ctx context.Context, input json.RawMessage) ([]byte, error) {
	var req struct {
		Analysis *contract.ContractAnalysis `json:"analysis"`
		URL      string                     `json:"url"`
	}
	if err := decode("share", input, &req); err != nil {
		return nil, err
	}
	if err := requireAnalysis("share", req.Analysis); err != nil {
		return nil, err
	}
	p := dashboard.NewSharePayload(req.Analysis, req.URL)
	return json.Marshal(map[string]string{
		"title":          p.Title,
		"text":           p.Text,
		"url":            p.URL,
		"clipboard_text": p.ClipboardText(),
	})
}
