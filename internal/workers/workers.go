// Package workers exposes the analysis, coaching and speech operations as
// stateless tools. Each worker lists its tools and executes them on JSON
// input, for the /tools HTTP routes and the MCP server alike.
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ericksa/lexinegotiate/internal/contract"
	"github.com/ericksa/lexinegotiate/internal/fault"
	"github.com/ericksa/lexinegotiate/internal/negotiate"
)

type ToolDef struct {
	Name        string
	Description string
}

// Analyzer runs one contract analysis.
type Analyzer interface {
	Analyze(ctx context.Context, in negotiate.Input) (*contract.ContractAnalysis, error)
}

// Coach answers one chat turn.
type Coach interface {
	Converse(ctx context.Context, history []contract.Turn, message, contractContext string) (contract.Reply, error)
}

// Speaker reads a script aloud.
type Speaker interface {
	Synthesize(ctx context.Context, script string) (*negotiate.AudioBuffer, error)
}

// toolName strips the worker prefix, so both "analyze" and
// "analysis_analyze" reach the same tool.
func toolName(worker, name string) string {
	return strings.TrimPrefix(name, worker+"_")
}

func decode(op string, input json.RawMessage, v any) error {
	if len(input) == 0 {
		input = json.RawMessage(`{}`)
	}
	if err := json.Unmarshal(input, v); err != nil {
		return fault.Wrap(fault.KindInputMissing, op, err, "invalid tool input")
	}
	return nil
}

func unknownTool(worker, name string) error {
	return fault.New(fault.KindNotFound, worker, fmt.Sprintf("tool not found: %s", name))
}

// requireAnalysis rejects tool calls that need an analysis but got none.
func requireAnalysis(op string, a *contract.ContractAnalysis) error {
	if a == nil {
		return fault.New(fault.KindInputMissing, op, "analysis is required")
	}
	return nil
}
