package dispatch

import (
	"context"
	"fmt"
	"sort"

	"github.com/nbserve/jupyter-mcp/internal/session"
	"github.com/nbserve/jupyter-mcp/internal/tools"
	"github.com/nbserve/jupyter-mcp/internal/tools/notebook"
)

// handlerFunc decodes a request's parameters and executes exactly one
// operation on the tool group, returning the rendered report.
type handlerFunc func(ctx context.Context, g *notebook.Group, p Params) (string, bool)

// Dispatcher routes decoded requests to notebook operations. The method set
// is a fixed table built at construction; unknown names are rejected up
// front rather than resolved dynamically.
type Dispatcher struct {
	group    *notebook.Group
	handlers map[string]handlerFunc
}

// NewDispatcher builds a dispatcher over the given tool group.
func NewDispatcher(group *notebook.Group) *Dispatcher {
	return &Dispatcher{
		group: group,
		handlers: map[string]handlerFunc{
			"open_notebook":       handleOpenNotebook,
			"save_notebook":       handleSaveNotebook,
			"run_cell":            handleRunCell,
			"run_cells":           handleRunCells,
			"run_all_cells":       handleRunAllCells,
			"insert_cell":         handleInsertCell,
			"insert_and_run_cell": handleInsertAndRunCell,
			"list_cells":          handleListCells,
			"notebook_info":       handleNotebookInfo,
			"cell_output":         handleCellOutput,
			"cell_image":          handleCellImage,
			"edit_cell":           handleEditCell,
			"set_slide_type":      handleSetSlideType,
			"delete_cell":         handleDeleteCell,
		},
	}
}

// Methods returns the supported method names in sorted order.
func (d *Dispatcher) Methods() []string {
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch parses and executes one request block, returning the rendered
// report and whether the operation succeeded. Every failure, including an
// unparseable block or an unknown method, comes back as a failure report
// rather than an error.
func (d *Dispatcher) Dispatch(ctx context.Context, text string) (string, bool) {
	req, err := Parse(text)
	if err != nil {
		return tools.ReportError("call", err), false
	}

	handler, ok := d.handlers[req.Method]
	if !ok {
		return tools.ReportFailure(req.Method, "ValidationError",
			fmt.Sprintf("unknown method: %s", req.Method)), false
	}
	return handler(ctx, d.group, req.Params)
}

func handleOpenNotebook(ctx context.Context, g *notebook.Group, p Params) (string, bool) {
	path, err := p.Require("notebook_path")
	if err != nil {
		return tools.ReportError("open_notebook", err), false
	}
	return g.OpenNotebook(ctx, path)
}

func handleSaveNotebook(_ context.Context, g *notebook.Group, _ Params) (string, bool) {
	return g.SaveNotebook()
}

func handleRunCell(ctx context.Context, g *notebook.Group, p Params) (string, bool) {
	index, err := p.Int("cell_index")
	if err != nil {
		return tools.ReportError("run_cell", err), false
	}
	return g.RunCell(ctx, index)
}

func handleRunCells(ctx context.Context, g *notebook.Group, p Params) (string, bool) {
	indices, err := p.IntList("indices")
	if err != nil {
		return tools.ReportError("run_cells", err), false
	}
	return g.RunCells(ctx, indices)
}

func handleRunAllCells(ctx context.Context, g *notebook.Group, _ Params) (string, bool) {
	return g.RunAllCells(ctx)
}

func handleInsertCell(_ context.Context, g *notebook.Group, p Params) (string, bool) {
	source, err := p.Require("source")
	if err != nil {
		return tools.ReportError("insert_cell", err), false
	}
	index, err := p.OptionalInt("index")
	if err != nil {
		return tools.ReportError("insert_cell", err), false
	}
	return g.InsertCell(source, p.Enum("cell_type", "code", "markdown"), index)
}

func handleInsertAndRunCell(ctx context.Context, g *notebook.Group, p Params) (string, bool) {
	source, err := p.Require("source")
	if err != nil {
		return tools.ReportError("insert_and_run_cell", err), false
	}
	index, err := p.OptionalInt("index")
	if err != nil {
		return tools.ReportError("insert_and_run_cell", err), false
	}
	return g.InsertAndRunCell(ctx, source, p.Enum("cell_type", "code", "markdown"), index)
}

func handleListCells(_ context.Context, g *notebook.Group, _ Params) (string, bool) {
	return g.ListCells()
}

func handleNotebookInfo(_ context.Context, g *notebook.Group, _ Params) (string, bool) {
	return g.NotebookInfo()
}

func handleCellOutput(_ context.Context, g *notebook.Group, p Params) (string, bool) {
	index, err := p.Int("cell_index")
	if err != nil {
		return tools.ReportError("cell_output", err), false
	}
	offset, err := p.IntOr("offset", 0)
	if err != nil {
		return tools.ReportError("cell_output", err), false
	}
	limit, err := p.IntOr("limit", session.DefaultOutputWindow)
	if err != nil {
		return tools.ReportError("cell_output", err), false
	}
	return g.CellOutput(index, offset, limit)
}

func handleCellImage(_ context.Context, g *notebook.Group, p Params) (string, bool) {
	index, err := p.Int("cell_index")
	if err != nil {
		return tools.ReportError("cell_image", err), false
	}
	return g.CellImage(index, p.String("format", "png"))
}

func handleEditCell(_ context.Context, g *notebook.Group, p Params) (string, bool) {
	index, err := p.Int("cell_index")
	if err != nil {
		return tools.ReportError("edit_cell", err), false
	}
	source, err := p.Require("new_source")
	if err != nil {
		return tools.ReportError("edit_cell", err), false
	}
	return g.EditCell(index, source)
}

func handleSetSlideType(_ context.Context, g *notebook.Group, p Params) (string, bool) {
	index, err := p.Int("cell_index")
	if err != nil {
		return tools.ReportError("set_slide_type", err), false
	}
	return g.SetSlideType(index, p.String("slide_type", ""))
}

func handleDeleteCell(_ context.Context, g *notebook.Group, p Params) (string, bool) {
	index, err := p.Int("cell_index")
	if err != nil {
		return tools.ReportError("delete_cell", err), false
	}
	return g.DeleteCell(index)
}
