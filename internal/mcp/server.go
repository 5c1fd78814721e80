package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dwizi/quantumx/internal/expr"
	"github.com/dwizi/quantumx/internal/fallback"
)

const (
	serverName = "quantumx"

	ToolEvaluate  = "evaluate_expression"
	ToolSummarize = "summarize_text"
	ToolExtract   = "extract_items"
	ToolDispatch  = "dispatch_fallback"
)

// NewServer exposes the offline heuristics as MCP tools.
func NewServer(version string, logger *slog.Logger) *sdkmcp.Server {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "mcp")
	if strings.TrimSpace(version) == "" {
		version = "dev"
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{Name: serverName, Version: version}, nil)
	server.AddTool(&sdkmcp.Tool{
		Name:        ToolEvaluate,
		Description: "Evaluate a plain arithmetic expression (+ - * / % ** and parentheses).",
		InputSchema: objectSchema(map[string]any{"expression": stringProperty()}, "expression"),
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
		var args struct {
			Expression string `json:"expression"`
		}
		if err := decodeArgs(req, &args); err != nil {
			return nil, err
		}
		value, err := expr.Evaluate(args.Expression)
		if err != nil {
			logger.Info("expression rejected", "tool", ToolEvaluate, "error", err)
			return errorResult(describeExprError(err)), nil
		}
		return textResult(value.String()), nil
	})
	server.AddTool(&sdkmcp.Tool{
		Name:        ToolSummarize,
		Description: "Keep the first sentences of a text as a quick summary.",
		InputSchema: objectSchema(map[string]any{
			"text":          stringProperty(),
			"max_sentences": map[string]any{"type": "integer", "minimum": 1},
		}, "text"),
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
		var args struct {
			Text         string `json:"text"`
			MaxSentences int    `json:"max_sentences"`
		}
		if err := decodeArgs(req, &args); err != nil {
			return nil, err
		}
		return textResult(fallback.Summarize(args.Text, args.MaxSentences)), nil
	})
	server.AddTool(&sdkmcp.Tool{
		Name:        ToolExtract,
		Description: "Extract list items from free text and format them as a checklist.",
		InputSchema: objectSchema(map[string]any{"text": stringProperty()}, "text"),
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
		var args struct {
			Text string `json:"text"`
		}
		if err := decodeArgs(req, &args); err != nil {
			return nil, err
		}
		items := fallback.ExtractItems(args.Text)
		if len(items) == 0 {
			return errorResult("no items found"), nil
		}
		return textResult(fallback.FormatChecklist(items)), nil
	})
	server.AddTool(&sdkmcp.Tool{
		Name:        ToolDispatch,
		Description: "Answer a chat message with the offline fallback rules.",
		InputSchema: objectSchema(map[string]any{"message": stringProperty()}, "message"),
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
		var args struct {
			Message string `json:"message"`
		}
		if err := decodeArgs(req, &args); err != nil {
			return nil, err
		}
		reply, rule := fallback.Route(args.Message)
		logger.Debug("fallback dispatched", "rule", rule)
		return &sdkmcp.CallToolResult{
			Content:           []sdkmcp.Content{&sdkmcp.TextContent{Text: reply}},
			StructuredContent: map[string]any{"reply": reply, "rule": string(rule)},
		}, nil
	})
	return server
}

// ServeStdio runs the tool server over stdin/stdout until ctx ends or the
// client disconnects.
func ServeStdio(ctx context.Context, version string, logger *slog.Logger) error {
	server := NewServer(version, logger)
	if err := server.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run mcp server: %w", err)
	}
	return nil
}

// Handler serves the same tools over streamable HTTP.
func Handler(server *sdkmcp.Server) http.Handler {
	return sdkmcp.NewStreamableHTTPHandler(func(*http.Request) *sdkmcp.Server { return server }, nil)
}

func decodeArgs(req *sdkmcp.CallToolRequest, out any) error {
	if req == nil || req.Params == nil || len(req.Params.Arguments) == 0 {
		return nil
	}
	if err := json.Unmarshal(req.Params.Arguments, out); err != nil {
		return fmt.Errorf("decode arguments: %w", err)
	}
	return nil
}

func describeExprError(err error) string {
	switch {
	case errors.Is(err, expr.ErrDisallowed):
		return "expression not allowed: only numbers, + - * / % ** and parentheses"
	case errors.Is(err, expr.ErrArithmetic):
		return "arithmetic error: " + err.Error()
	default:
		return "invalid expression: " + err.Error()
	}
}

func textResult(text string) *sdkmcp.CallToolResult {
	return &sdkmcp.CallToolResult{Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: text}}}
}

func errorResult(text string) *sdkmcp.CallToolResult {
	result := textResult(text)
	result.IsError = true
	return result
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func stringProperty() map[string]any {
	return map[string]any{"type": "string"}
}
