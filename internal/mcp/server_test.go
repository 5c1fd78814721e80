package mcp

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func connectTestSession(t *testing.T) *sdkmcp.ClientSession {
	t.Helper()
	server := NewServer("test", slog.New(slog.NewTextHandler(io.Discard, nil)))
	httpServer := httptest.NewServer(Handler(server))
	t.Cleanup(httpServer.Close)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "quantumx-test", Version: "0.0.0"}, nil)
	session, err := client.Connect(context.Background(), &sdkmcp.StreamableClientTransport{Endpoint: httpServer.URL}, nil)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func callText(t *testing.T, session *sdkmcp.ClientSession, name string, args map[string]any) (string, bool) {
	t.Helper()
	result, err := session.CallTool(context.Background(), &sdkmcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("call %s: %v", name, err)
	}
	parts := []string{}
	for _, content := range result.Content {
		if text, ok := content.(*sdkmcp.TextContent); ok {
			parts = append(parts, text.Text)
		}
	}
	return strings.Join(parts, "\n"), result.IsError
}

func TestServerListsTools(t *testing.T) {
	session := connectTestSession(t)
	result, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	found := map[string]bool{}
	for _, tool := range result.Tools {
		found[tool.Name] = true
	}
	for _, name := range []string{ToolEvaluate, ToolSummarize, ToolExtract, ToolDispatch} {
		if !found[name] {
			t.Fatalf("expected tool %s, got %v", name, found)
		}
	}
}

func TestEvaluateExpressionTool(t *testing.T) {
	session := connectTestSession(t)

	text, isError := callText(t, session, ToolEvaluate, map[string]any{"expression": "2 + 2 * 3"})
	if isError || text != "8" {
		t.Fatalf("unexpected result: %q error=%v", text, isError)
	}

	text, isError = callText(t, session, ToolEvaluate, map[string]any{"expression": "__import__('os')"})
	if !isError || !strings.Contains(text, "not allowed") {
		t.Fatalf("expected sandbox rejection, got %q error=%v", text, isError)
	}

	_, isError = callText(t, session, ToolEvaluate, map[string]any{"expression": "1/0"})
	if !isError {
		t.Fatal("expected division by zero to be reported as tool error")
	}
}

func TestHeuristicTools(t *testing.T) {
	session := connectTestSession(t)

	text, _ := callText(t, session, ToolExtract, map[string]any{"text": "lista: pão, leite"})
	if text != "Perfeito! Aqui está sua lista de tarefas:\n- [ ] pão\n- [ ] leite" {
		t.Fatalf("unexpected checklist: %q", text)
	}

	_, isError := callText(t, session, ToolExtract, map[string]any{"text": "lista"})
	if !isError {
		t.Fatal("expected empty extraction to be a tool error")
	}

	text, _ = callText(t, session, ToolSummarize, map[string]any{
		"text":          "Primeira frase longa aqui. Segunda frase. Terceira.",
		"max_sentences": 1,
	})
	if text != "Resumo rápido:\nPrimeira frase longa aqui." {
		t.Fatalf("unexpected summary: %q", text)
	}

	text, _ = callText(t, session, ToolDispatch, map[string]any{"message": "calcule 3*3"})
	if text != "Resultado de `3*3`: **9**" {
		t.Fatalf("unexpected dispatch reply: %q", text)
	}
}
