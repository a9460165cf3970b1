package tools

import (
	"fmt"
	"strings"

	"github.com/nbserve/jupyter-mcp/internal/errors"
)

// Detail is one key/value line of a report's details mapping.
type Detail struct {
	Key   string
	Value string
}

// Report renders the uniform success report external callers parse: a status
// line naming the operation, a message, and an optional details mapping.
func Report(tool, message string, details ...Detail) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "### Tool '%s' succeeded\n\n", tool)
	fmt.Fprintf(&sb, "**Message:** %s\n", message)
	if len(details) > 0 {
		sb.WriteString("\n**Details:**\n")
		for _, d := range details {
			fmt.Fprintf(&sb, "- **%s**: `%s`\n", d.Key, d.Value)
		}
	}
	return sb.String()
}

// ReportBlock renders a success report whose payload is a fenced block,
// used for cell output and other multi-line content.
func ReportBlock(tool, label, content string, details ...Detail) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "### Tool '%s' succeeded\n", tool)
	if len(details) > 0 {
		sb.WriteString("\n**Details:**\n")
		for _, d := range details {
			fmt.Fprintf(&sb, "- **%s**: `%s`\n", d.Key, d.Value)
		}
	}
	fmt.Fprintf(&sb, "\n**%s:**\n```\n%s\n```\n", label, content)
	return sb.String()
}

// ReportFailure renders the uniform error report: status line, error kind,
// and the error message in a fenced block.
func ReportFailure(tool, kind, message string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "### Tool '%s' failed\n\n", tool)
	fmt.Fprintf(&sb, "**Error kind:** `%s`\n\n", kind)
	fmt.Fprintf(&sb, "**Error message:**\n```\n%s\n```\n", message)
	return sb.String()
}

// ReportError renders an error report, classifying err with the session's
// failure taxonomy.
func ReportError(tool string, err error) string {
	return ReportFailure(tool, errors.Kind(err), err.Error())
}
