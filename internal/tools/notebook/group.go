// Package notebook exposes the notebook session's operations as MCP tools.
package notebook

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/nbserve/jupyter-mcp/internal/errors"
	"github.com/nbserve/jupyter-mcp/internal/session"
	"github.com/nbserve/jupyter-mcp/internal/tools"
)

// Group owns the process's single session and serializes access to it.
// The transport may deliver calls concurrently; the session is single-owner,
// so every operation takes the group's mutex for its full duration.
type Group struct {
	mu        sync.Mutex
	sess      *session.Session
	logger    tools.Logger
	validator tools.Validator
}

// NewGroup creates a tool group around the given session.
func NewGroup(sess *session.Session, toolCtx *tools.Context) *Group {
	return &Group{
		sess:      sess,
		logger:    toolCtx.Logger,
		validator: toolCtx.Validator,
	}
}

// Session returns the underlying session. Callers must not use it
// concurrently with tool invocations.
func (g *Group) Session() *session.Session {
	return g.sess
}

// OpenNotebook validates the path, then opens or creates the notebook and
// starts a kernel for it.
func (g *Group) OpenNotebook(ctx context.Context, path string) (string, bool) {
	const name = "open_notebook"

	sanitized, err := g.validator.SanitizePath(path)
	if err != nil {
		return tools.ReportError(name, errors.Validation("invalid notebook path: %v", err)), false
	}
	if err := g.validator.ValidatePath(sanitized); err != nil {
		return tools.ReportError(name, errors.Validation("path validation failed: %v", err)), false
	}
	if !strings.HasSuffix(strings.ToLower(sanitized), ".ipynb") {
		return tools.ReportError(name, errors.Validation("file must have .ipynb extension: %s", path)), false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.sess.Open(ctx, sanitized); err != nil {
		return tools.ReportError(name, err), false
	}
	g.logger.Info("Notebook opened", "path", sanitized)
	return tools.Report(name, "Notebook opened and kernel started",
		tools.Detail{Key: "Path", Value: g.sess.Path()},
	), true
}

// SaveNotebook flushes the in-memory document to disk.
func (g *Group) SaveNotebook() (string, bool) {
	const name = "save_notebook"

	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.sess.Save(); err != nil {
		return tools.ReportError(name, err), false
	}
	return tools.Report(name, "Notebook saved",
		tools.Detail{Key: "Path", Value: g.sess.Path()},
	), true
}

// RunCell executes one code cell. Execution failures come back from the
// session as diagnostic text and still render as success reports.
func (g *Group) RunCell(ctx context.Context, index int) (string, bool) {
	const name = "run_cell"

	g.mu.Lock()
	defer g.mu.Unlock()

	out, err := g.sess.ExecuteCell(ctx, index)
	if err != nil {
		return tools.ReportError(name, err), false
	}
	return tools.ReportBlock(name, "Output", out,
		tools.Detail{Key: "Cell index", Value: strconv.Itoa(index)},
	), true
}

// RunCells executes an explicit index list and renders the batch result:
// success flag, last executed index, stderr warnings, and the last cell's
// output.
func (g *Group) RunCells(ctx context.Context, indices []int) (string, bool) {
	const name = "run_cells"

	g.mu.Lock()
	defer g.mu.Unlock()

	res, err := g.sess.ExecuteIndices(ctx, indices)
	if err != nil {
		return tools.ReportError(name, err), false
	}

	details := []tools.Detail{
		{Key: "Success", Value: strconv.FormatBool(res.Success)},
		{Key: "Last executed index", Value: formatIndex(res.LastIndex)},
	}
	if res.Err != "" {
		details = append(details, tools.Detail{Key: "Error", Value: res.Err})
	}
	for _, w := range res.Warnings {
		details = append(details, tools.Detail{
			Key:   fmt.Sprintf("Warning (cell %d)", w.Index),
			Value: strconv.Quote(strings.TrimSpace(w.Text)),
		})
	}
	return tools.ReportBlock(name, "Last cell output", res.Output, details...), true
}

// RunAllCells executes every code cell top to bottom.
func (g *Group) RunAllCells(ctx context.Context) (string, bool) {
	const name = "run_all_cells"

	g.mu.Lock()
	defer g.mu.Unlock()

	diag, err := g.sess.ExecuteAll(ctx)
	if err != nil {
		return tools.ReportError(name, err), false
	}
	if diag != "" {
		return tools.ReportBlock(name, "Diagnostics", diag), true
	}
	return tools.Report(name, "All code cells executed",
		tools.Detail{Key: "Path", Value: g.sess.Path()},
	), true
}

// InsertCell inserts a new cell without executing it.
func (g *Group) InsertCell(source, cellType string, index *int) (string, bool) {
	const name = "insert_cell"

	g.mu.Lock()
	defer g.mu.Unlock()

	at, err := g.sess.InsertCell(source, cellType, index)
	if err != nil {
		return tools.ReportError(name, err), false
	}
	return tools.Report(name, "Cell inserted",
		tools.Detail{Key: "Index", Value: strconv.Itoa(at)},
		tools.Detail{Key: "Cell type", Value: cellType},
	), true
}

// InsertAndRunCell inserts a new cell and executes it when it is code.
func (g *Group) InsertAndRunCell(ctx context.Context, source, cellType string, index *int) (string, bool) {
	const name = "insert_and_run_cell"

	g.mu.Lock()
	defer g.mu.Unlock()

	at, out, err := g.sess.InsertAndExecuteCell(ctx, source, cellType, index)
	if err != nil {
		return tools.ReportError(name, err), false
	}
	return tools.ReportBlock(name, "Output", out,
		tools.Detail{Key: "Index", Value: strconv.Itoa(at)},
		tools.Detail{Key: "Cell type", Value: cellType},
	), true
}

// ListCells renders every cell with index, type, source, and output preview.
func (g *Group) ListCells() (string, bool) {
	const name = "list_cells"

	g.mu.Lock()
	defer g.mu.Unlock()

	text, err := g.sess.DescribeCells()
	if err != nil {
		return tools.ReportError(name, err), false
	}
	return tools.ReportBlock(name, "Cells", text), true
}

// NotebookInfo reports the code and markdown cell index lists.
func (g *Group) NotebookInfo() (string, bool) {
	const name = "notebook_info"

	g.mu.Lock()
	defer g.mu.Unlock()

	code, md, err := g.sess.DescribeNotebook()
	if err != nil {
		return tools.ReportError(name, err), false
	}
	return tools.Report(name, "Notebook structure",
		tools.Detail{Key: "Path", Value: g.sess.Path()},
		tools.Detail{Key: "Total cells", Value: strconv.Itoa(len(code) + len(md))},
		tools.Detail{Key: "Code cells", Value: formatIndices(code)},
		tools.Detail{Key: "Markdown cells", Value: formatIndices(md)},
	), true
}

// CellOutput returns a bounded window of a code cell's text output.
func (g *Group) CellOutput(index, offset, limit int) (string, bool) {
	const name = "cell_output"

	g.mu.Lock()
	defer g.mu.Unlock()

	text, err := g.sess.TextWindow(index, offset, limit)
	if err != nil {
		return tools.ReportError(name, err), false
	}
	return tools.ReportBlock(name, "Output", text,
		tools.Detail{Key: "Cell index", Value: strconv.Itoa(index)},
		tools.Detail{Key: "Offset", Value: strconv.Itoa(offset)},
		tools.Detail{Key: "Limit", Value: strconv.Itoa(limit)},
	), true
}

// CellImage returns the first image output of a code cell as base64 data.
func (g *Group) CellImage(index int, format string) (string, bool) {
	const name = "cell_image"

	g.mu.Lock()
	defer g.mu.Unlock()

	data, found, err := g.sess.ImageOutput(index, format)
	if err != nil {
		return tools.ReportError(name, err), false
	}
	if !found {
		return tools.ReportError(name, errors.Validation("cell %d has no %s image output", index, format)), false
	}
	return tools.ReportBlock(name, "Image data (base64)", data,
		tools.Detail{Key: "Cell index", Value: strconv.Itoa(index)},
		tools.Detail{Key: "Format", Value: format},
	), true
}

// EditCell replaces a cell's source. Prior outputs stay attached until the
// cell is re-run.
func (g *Group) EditCell(index int, newSource string) (string, bool) {
	const name = "edit_cell"

	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.sess.EditCell(index, newSource); err != nil {
		return tools.ReportError(name, err), false
	}
	return tools.Report(name, "Cell source replaced; existing outputs are kept until the cell is re-run",
		tools.Detail{Key: "Cell index", Value: strconv.Itoa(index)},
	), true
}

// SetSlideType updates a cell's slideshow metadata. The literal "none"
// clears the tag, same as an empty value.
func (g *Group) SetSlideType(index int, slideType string) (string, bool) {
	const name = "set_slide_type"

	if strings.EqualFold(slideType, "none") {
		slideType = ""
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.sess.SetSlideType(index, slideType); err != nil {
		return tools.ReportError(name, err), false
	}
	value := slideType
	if value == "" {
		value = "(cleared)"
	}
	return tools.Report(name, "Slide type updated",
		tools.Detail{Key: "Cell index", Value: strconv.Itoa(index)},
		tools.Detail{Key: "Slide type", Value: value},
	), true
}

// DeleteCell removes a cell from the in-memory document only. The report
// states explicitly that the file on disk is unchanged until save_notebook.
func (g *Group) DeleteCell(index int) (string, bool) {
	const name = "delete_cell"

	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.sess.DeleteCell(index); err != nil {
		return tools.ReportError(name, err), false
	}
	return tools.Report(name, "Cell deleted. The notebook was NOT saved; call save_notebook to persist the deletion",
		tools.Detail{Key: "Cell index", Value: strconv.Itoa(index)},
		tools.Detail{Key: "Persisted", Value: "false"},
	), true
}

func formatIndex(index *int) string {
	if index == nil {
		return "none"
	}
	return strconv.Itoa(*index)
}

func formatIndices(indices []int) string {
	if len(indices) == 0 {
		return "[]"
	}
	parts := make([]string, len(indices))
	for i, idx := range indices {
		parts[i] = strconv.Itoa(idx)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
