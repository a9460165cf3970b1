// Package tools provides the tool registration framework and the uniform
// report rendering shared by the request adapter.
package tools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ServerTool pairs an MCP tool schema with its registration function.
type ServerTool struct {
	Tool         *mcp.Tool
	RegisterFunc func(server *mcp.Server)
}

// Context contains common dependencies needed by tools.
type Context struct {
	Logger    Logger
	Validator Validator
}

// Logger defines the logging interface for tools.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	WithTool(toolName string) Logger
}

// Validator defines the notebook path validation interface.
type Validator interface {
	ValidatePath(path string) error
	SanitizePath(path string) (string, error)
}
