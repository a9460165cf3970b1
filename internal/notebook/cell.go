package notebook

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Cell kinds.
const (
	CellCode     = "code"
	CellMarkdown = "markdown"
)

// Output record types.
const (
	OutputStream        = "stream"
	OutputExecuteResult = "execute_result"
	OutputDisplayData   = "display_data"
	OutputError         = "error"
)

// SlideTypes is the closed set of presentation-mode tags a cell may carry.
var SlideTypes = []string{"slide", "subslide", "fragment", "skip", "notes"}

// Cell represents one unit of a notebook document.
type Cell struct {
	ID             string          `json:"id,omitempty"`
	CellType       string          `json:"cell_type"`
	Source         MultilineString `json:"source"`
	Metadata       map[string]any  `json:"metadata"`
	Outputs        []Output        `json:"outputs,omitempty"`
	ExecutionCount *int            `json:"execution_count,omitempty"`
}

// Output is one structured result fragment from executing a code cell,
// tagged by OutputType. Stream records carry Name and Text; execute_result
// and display_data carry a MIME-typed Data mapping; error records carry
// Ename, Evalue and Traceback.
type Output struct {
	OutputType     string          `json:"output_type"`
	Name           string          `json:"name,omitempty"`
	Text           MultilineString `json:"text,omitempty"`
	Data           map[string]any  `json:"data,omitempty"`
	Metadata       map[string]any  `json:"metadata,omitempty"`
	ExecutionCount *int            `json:"execution_count,omitempty"`
	Ename          string          `json:"ename,omitempty"`
	Evalue         string          `json:"evalue,omitempty"`
	Traceback      []string        `json:"traceback,omitempty"`
}

// NewCodeCell creates an unexecuted code cell with the given source.
func NewCodeCell(source string) Cell {
	return Cell{
		ID:       uuid.NewString()[:8],
		CellType: CellCode,
		Source:   MultilineString(source),
		Metadata: map[string]any{},
		Outputs:  []Output{},
	}
}

// NewMarkdownCell creates a markdown cell with the given source.
func NewMarkdownCell(source string) Cell {
	return Cell{
		ID:       uuid.NewString()[:8],
		CellType: CellMarkdown,
		Source:   MultilineString(source),
		Metadata: map[string]any{},
	}
}

// normalize enforces the per-kind invariants: markdown cells never carry
// outputs or an execution count, code cells always serialize an outputs list.
func (c *Cell) normalize() {
	if c.Metadata == nil {
		c.Metadata = map[string]any{}
	}
	switch c.CellType {
	case CellMarkdown:
		c.Outputs = nil
		c.ExecutionCount = nil
	case CellCode:
		if c.Outputs == nil {
			c.Outputs = []Output{}
		}
	}
}

// HasOutput reports whether the cell has any output records.
func (c *Cell) HasOutput() bool {
	return len(c.Outputs) > 0
}

// TextOutput concatenates all text-bearing output records in record order:
// stream text plus the text/plain payloads of execute_result and
// display_data records.
func (c *Cell) TextOutput() string {
	if c.CellType != CellCode {
		return ""
	}

	var sb strings.Builder
	for _, out := range c.Outputs {
		switch out.OutputType {
		case OutputStream:
			sb.WriteString(out.Text.String())
		case OutputExecuteResult, OutputDisplayData:
			sb.WriteString(dataText(out.Data["text/plain"]))
		}
	}
	return sb.String()
}

// ImageData returns the first image/{format} payload among the cell's
// execute_result and display_data records.
func (c *Cell) ImageData(format string) (string, bool) {
	mimeType := "image/" + format
	for _, out := range c.Outputs {
		if out.OutputType != OutputExecuteResult && out.OutputType != OutputDisplayData {
			continue
		}
		if payload, ok := out.Data[mimeType]; ok {
			return dataText(payload), true
		}
	}
	return "", false
}

// SlideType returns the cell's presentation-mode tag, or "" when unset.
func (c *Cell) SlideType() string {
	slideshow, ok := c.Metadata["slideshow"].(map[string]any)
	if !ok {
		return ""
	}
	t, _ := slideshow["slide_type"].(string)
	return t
}

// SetSlideType sets the presentation-mode tag, or clears it when t is empty.
// The tag must belong to SlideTypes.
func (c *Cell) SetSlideType(t string) error {
	if t == "" {
		delete(c.Metadata, "slideshow")
		return nil
	}

	valid := false
	for _, candidate := range SlideTypes {
		if t == candidate {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid slide type %q, valid types are: %s or none", t, strings.Join(SlideTypes, ", "))
	}

	if c.Metadata == nil {
		c.Metadata = map[string]any{}
	}
	c.Metadata["slideshow"] = map[string]any{"slide_type": t}
	return nil
}

// dataText renders a MIME payload value as text. Payloads decode from JSON
// as either a string or a list of line fragments.
func dataText(v any) string {
	switch payload := v.(type) {
	case string:
		return payload
	case []any:
		var sb strings.Builder
		for _, line := range payload {
			if s, ok := line.(string); ok {
				sb.WriteString(s)
			}
		}
		return sb.String()
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", payload)
	}
}
