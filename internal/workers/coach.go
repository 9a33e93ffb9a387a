package workers

import (
	"context"
	"encoding/json"

	"github.com/ericksa/lexinegotiate/internal/contract"
	"github.com/ericksa/lexinegotiate/internal/negotiate"
)

// CoachWorker runs stateless chat turns against the negotiation coach.
// Callers carry the history themselves.
type CoachWorker struct {
	coach Coach
}

func NewCoachWorker(coach Coach) *CoachWorker {
	return &CoachWorker{coach: coach}
}

func (w *CoachWorker) GetTools() []ToolDef {
	return []ToolDef{
		{Name: "ask", Description: "Ask the negotiation coach a question, optionally grounded in an analysis and prior turns"},
		{Name: "starter_questions", Description: "List the suggested opening questions"},
	}
}

func (w *CoachWorker) Execute(ctx context.Context, name string, input json.RawMessage) ([]byte, error) {
	switch toolName("coach", name) {
	case "ask":
		return w.ask(ctx, input)
	case "starter_questions":
		return json.Marshal(negotiate.StarterQuestions)
	default:
		return nil, unknownTool("coach", name)
	}
}

func (w *CoachWorker) ask(ctx context.Context, input json.RawMessage) ([]byte, error) {
	var req struct {
		Message  string                     `json:"message"`
		History  []contract.Turn            `json:"history"`
		Analysis *contract.ContractAnalysis `json:"analysis"`
	}
	if err := decode("ask", input, &req); err != nil {
		return nil, err
	}
	reply, err := w.coach.Converse(ctx, req.History, req.Message, negotiate.ContractContext(req.Analysis))
	if err != nil {
		return nil, err
	}
	return json.Marshal(reply)
}
