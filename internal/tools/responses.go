package tools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// TextResult wraps a rendered report into an MCP tool result. Reports carry
// their own success/error status line, so the result itself is never marked
// as a protocol-level error for captured session outcomes.
func TextResult(report string) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{&mcp.TextContent{Text: report}},
	}
}

// ErrorResult wraps a rendered error report and marks the result as failed.
func ErrorResult(report string) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{&mcp.TextContent{Text: report}},
		IsError: true,
	}
}
