package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/ericksa/lexinegotiate/internal/audit"
	"github.com/ericksa/lexinegotiate/internal/fault"
	"github.com/ericksa/lexinegotiate/internal/workers"
)

const (
	serverName    = "LexiNegotiate Gateway"
	serverVersion = "1.0.0"
)

type Worker interface {
	GetTools() []workers.ToolDef
	Execute(ctx context.Context, name string, input json.RawMessage) ([]byte, error)
}

// Handler serves the worker tools over MCP (streamable HTTP) and over
// plain HTTP via ExecuteTool.
type Handler struct {
	audit   *audit.Auditor
	logger  *zap.Logger
	workers map[string]Worker
	server  *mcp.Server
	http    http.Handler
}

// NewHandler registers every tool of ws, named "<worker>_<tool>". auditor may be nil.
func NewHandler(ws map[string]Worker, auditor *audit.Auditor, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		audit:   auditor,
		logger:  logger.Named("mcp"),
		workers: ws,
	}
	h.initMCPServer()
	return h
}

func (h *Handler) initMCPServer() {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, nil)

	for _, name := range h.workerNames() {
		worker := h.workers[name]
		for _, tool := range worker.GetTools() {
			toolName := fmt.Sprintf("%s_%s", name, tool.Name)
			mcp.AddTool(server, &mcp.Tool{
				Name:        toolName,
				Description: tool.Description,
			}, h.wrapTool(worker, toolName))
		}
	}

	h.server = server
	h.http = mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return server }, nil)
}

func (h *Handler) workerNames() []string {
	names := make([]string, 0, len(h.workers))
	for name := range h.workers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (h *Handler) wrapTool(w Worker, toolName string) func(ctx context.Context, req *mcp.CallToolRequest, input map[string]any) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input map[string]any) (*mcp.CallToolResult, any, error) {
		inputBytes, err := json.Marshal(input)
		if err != nil {
			return nil, nil, err
		}
		result, err := h.execute(ctx, w, toolName, inputBytes)
		if err != nil {
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{
					&mcp.TextContent{Text: err.Error()},
				},
			}, nil, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: string(result)},
			},
		}, nil, nil
	}
}

func (h *Handler) execute(ctx context.Context, w Worker, toolName string, input json.RawMessage) ([]byte, error) {
	start := time.Now()
	result, err := w.Execute(ctx, toolName, input)
	entry := audit.Entry{Operation: "tool:" + toolName, Duration: time.Since(start)}
	if err != nil {
		entry.Outcome = string(fault.KindOf(err))
		h.logger.Debug("tool failed", zap.String("tool", toolName), zap.Error(err))
	}
	h.audit.Log(context.WithoutCancel(ctx), entry)
	return result, err
}

// Server returns the underlying MCP server, e.g. to run it over stdio.
func (h *Handler) Server() *mcp.Server {
	return h.server
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.http == nil {
		http.Error(w, "MCP server not initialized", http.StatusInternalServerError)
		return
	}
	h.http.ServeHTTP(w, r)
}

// Tools lists the full names of every registered tool.
func (h *Handler) Tools() []workers.ToolDef {
	var tools []workers.ToolDef
	for _, name := range h.workerNames() {
		for _, tool := range h.workers[name].GetTools() {
			tools = append(tools, workers.ToolDef{Name: name + "_" + tool.Name, Description: tool.Description})
		}
	}
	return tools
}

// ExecuteTool runs "<worker>_<tool>".
func (h *Handler) ExecuteTool(ctx context.Context, toolName string, args json.RawMessage) ([]byte, error) {
	for name, worker := range h.workers {
		fullPrefix := name + "_"
		if len(toolName) > len(fullPrefix) && strings.HasPrefix(toolName, fullPrefix) {
			return h.execute(ctx, worker, toolName, args)
		}
	}
	return nil, fault.New(fault.KindNotFound, "tool", fmt.Sprintf("tool not found: %s", toolName))
}
