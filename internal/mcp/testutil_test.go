package mcp

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Fuabioo/hhdt/internal/config"
	"github.com/Fuabioo/hhdt/internal/envelope"
	"github.com/Fuabioo/hhdt/internal/metrics"
	"github.com/Fuabioo/hhdt/internal/source"
)

// newTestServer creates a server with default config and its own registry.
func newTestServer(t *testing.T) (*Server, *metrics.Metrics) {
	t.Helper()

	m := metrics.NewMetrics()
	srv, err := NewServer(config.DefaultConfig(), WithMetrics(m))
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return srv, m
}

// newTestRequest creates a CallToolRequest for testing
func newTestRequest(arguments map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: arguments,
		},
	}
}

// getResultText extracts the text from a CallToolResult for testing
func getResultText(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return ""
	}
	if textContent, ok := mcp.AsTextContent(result.Content[0]); ok {
		return textContent.Text
	}
	return ""
}

// successValue parses the tool result as a success package and returns its
// payload as an object.
func successValue(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()

	if result.IsError {
		t.Fatalf("unexpected error result: %s", getResultText(result))
	}
	pkg, err := envelope.Parse(getResultText(result))
	if err != nil {
		t.Fatalf("result is not a package: %v", err)
	}
	if pkg.Type() != envelope.TypeSuccess {
		t.Fatalf("result type = %q, want success", pkg.Type())
	}
	value, ok := pkg.Value().(map[string]any)
	if !ok {
		t.Fatalf("result payload = %T, want object", pkg.Value())
	}
	return value
}

// failureError parses the tool result as an error package and returns the
// rebuilt error.
func failureError(t *testing.T, result *mcp.CallToolResult) *source.Error {
	t.Helper()

	if !result.IsError {
		t.Fatalf("expected error result, got: %s", getResultText(result))
	}
	pkg, err := envelope.Parse(getResultText(result))
	if err != nil {
		t.Fatalf("result is not a package: %v", err)
	}
	rerr, ok := pkg.Value().(*source.Error)
	if !ok {
		t.Fatalf("result payload = %T, want *source.Error", pkg.Value())
	}
	return rerr
}
