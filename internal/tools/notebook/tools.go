package notebook

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nbserve/jupyter-mcp/internal/prompts"
	"github.com/nbserve/jupyter-mcp/internal/session"
	"github.com/nbserve/jupyter-mcp/internal/tools"
)

// OpenNotebookArgs represents the arguments for the open_notebook tool.
type OpenNotebookArgs struct {
	NotebookPath string `json:"notebook_path"`
}

// RunCellArgs represents the arguments for the run_cell tool.
type RunCellArgs struct {
	CellIndex int `json:"cell_index"`
}

// RunCellsArgs represents the arguments for the run_cells tool.
type RunCellsArgs struct {
	Indices []int `json:"indices"`
}

// SaveNotebookArgs represents the arguments for the save_notebook tool.
type SaveNotebookArgs struct{}

// InsertCellArgs represents the arguments for the insert_cell and
// insert_and_run_cell tools.
type InsertCellArgs struct {
	Source   string  `json:"source"`
	CellType *string `json:"cell_type,omitempty"`
	Index    *int    `json:"index,omitempty"`
}

// ListCellsArgs represents the arguments for the list_cells tool.
type ListCellsArgs struct{}

// NotebookInfoArgs represents the arguments for the notebook_info tool.
type NotebookInfoArgs struct{}

// RunAllCellsArgs represents the arguments for the run_all_cells tool.
type RunAllCellsArgs struct{}

// CellOutputArgs represents the arguments for the cell_output tool.
type CellOutputArgs struct {
	CellIndex int  `json:"cell_index"`
	Offset    *int `json:"offset,omitempty"`
	Limit     *int `json:"limit,omitempty"`
}

// CellImageArgs represents the arguments for the cell_image tool.
type CellImageArgs struct {
	CellIndex int     `json:"cell_index"`
	Format    *string `json:"format,omitempty"`
}

// EditCellArgs represents the arguments for the edit_cell tool.
type EditCellArgs struct {
	CellIndex int    `json:"cell_index"`
	NewSource string `json:"new_source"`
}

// SetSlideTypeArgs represents the arguments for the set_slide_type tool.
type SetSlideTypeArgs struct {
	CellIndex int    `json:"cell_index"`
	SlideType string `json:"slide_type"`
}

// DeleteCellArgs represents the arguments for the delete_cell tool.
type DeleteCellArgs struct {
	CellIndex int `json:"cell_index"`
}

// newServerTool wires a typed handler behind the map-based wrapper the SDK
// registration expects, converting arguments with a JSON round-trip.
func newServerTool[T any](name, description string, handler func(ctx context.Context, args T) (string, bool)) *tools.ServerTool {
	wrapper := func(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[map[string]any]) (*mcp.CallToolResultFor[any], error) {
		var args T
		data, err := json.Marshal(params.Arguments)
		if err != nil {
			return tools.ErrorResult(tools.ReportFailure(name, "ValidationError", "failed to marshal arguments: "+err.Error())), nil
		}
		if err := json.Unmarshal(data, &args); err != nil {
			return tools.ErrorResult(tools.ReportFailure(name, "ValidationError", "failed to unmarshal arguments: "+err.Error())), nil
		}

		report, ok := handler(ctx, args)
		if !ok {
			return tools.ErrorResult(report), nil
		}
		return tools.TextResult(report), nil
	}

	tool := &mcp.Tool{
		Name:        name,
		Description: description,
	}

	return &tools.ServerTool{
		Tool: tool,
		RegisterFunc: func(server *mcp.Server) {
			mcp.AddTool(server, tool, wrapper)
		},
	}
}

// CreateOpenNotebookTool creates the open_notebook tool.
func CreateOpenNotebookTool(g *Group) *tools.ServerTool {
	return newServerTool("open_notebook", prompts.OpenNotebookToolDoc,
		func(ctx context.Context, args OpenNotebookArgs) (string, bool) {
			return g.OpenNotebook(ctx, args.NotebookPath)
		})
}

// CreateSaveNotebookTool creates the save_notebook tool.
func CreateSaveNotebookTool(g *Group) *tools.ServerTool {
	return newServerTool("save_notebook", prompts.SaveNotebookToolDoc,
		func(_ context.Context, _ SaveNotebookArgs) (string, bool) {
			return g.SaveNotebook()
		})
}

// CreateRunCellTool creates the run_cell tool.
func CreateRunCellTool(g *Group) *tools.ServerTool {
	return newServerTool("run_cell", prompts.RunCellToolDoc,
		func(ctx context.Context, args RunCellArgs) (string, bool) {
			return g.RunCell(ctx, args.CellIndex)
		})
}

// CreateRunCellsTool creates the run_cells tool.
func CreateRunCellsTool(g *Group) *tools.ServerTool {
	return newServerTool("run_cells", prompts.RunCellsToolDoc,
		func(ctx context.Context, args RunCellsArgs) (string, bool) {
			return g.RunCells(ctx, args.Indices)
		})
}

// CreateRunAllCellsTool creates the run_all_cells tool.
func CreateRunAllCellsTool(g *Group) *tools.ServerTool {
	return newServerTool("run_all_cells", prompts.RunAllCellsToolDoc,
		func(ctx context.Context, _ RunAllCellsArgs) (string, bool) {
			return g.RunAllCells(ctx)
		})
}

// CreateInsertCellTool creates the insert_cell tool.
func CreateInsertCellTool(g *Group) *tools.ServerTool {
	return newServerTool("insert_cell", prompts.InsertCellToolDoc,
		func(_ context.Context, args InsertCellArgs) (string, bool) {
			return g.InsertCell(args.Source, cellTypeOrDefault(args.CellType), args.Index)
		})
}

// CreateInsertAndRunCellTool creates the insert_and_run_cell tool.
func CreateInsertAndRunCellTool(g *Group) *tools.ServerTool {
	return newServerTool("insert_and_run_cell", prompts.InsertAndRunCellToolDoc,
		func(ctx context.Context, args InsertCellArgs) (string, bool) {
			return g.InsertAndRunCell(ctx, args.Source, cellTypeOrDefault(args.CellType), args.Index)
		})
}

// CreateListCellsTool creates the list_cells tool.
func CreateListCellsTool(g *Group) *tools.ServerTool {
	return newServerTool("list_cells", prompts.ListCellsToolDoc,
		func(_ context.Context, _ ListCellsArgs) (string, bool) {
			return g.ListCells()
		})
}

// CreateNotebookInfoTool creates the notebook_info tool.
func CreateNotebookInfoTool(g *Group) *tools.ServerTool {
	return newServerTool("notebook_info", prompts.NotebookInfoToolDoc,
		func(_ context.Context, _ NotebookInfoArgs) (string, bool) {
			return g.NotebookInfo()
		})
}

// CreateCellOutputTool creates the cell_output tool.
func CreateCellOutputTool(g *Group) *tools.ServerTool {
	return newServerTool("cell_output", prompts.CellOutputToolDoc,
		func(_ context.Context, args CellOutputArgs) (string, bool) {
			offset := 0
			if args.Offset != nil {
				offset = *args.Offset
			}
			limit := session.DefaultOutputWindow
			if args.Limit != nil {
				limit = *args.Limit
			}
			return g.CellOutput(args.CellIndex, offset, limit)
		})
}

// CreateCellImageTool creates the cell_image tool.
func CreateCellImageTool(g *Group) *tools.ServerTool {
	return newServerTool("cell_image", prompts.CellImageToolDoc,
		func(_ context.Context, args CellImageArgs) (string, bool) {
			format := "png"
			if args.Format != nil && *args.Format != "" {
				format = *args.Format
			}
			return g.CellImage(args.CellIndex, format)
		})
}

// CreateEditCellTool creates the edit_cell tool.
func CreateEditCellTool(g *Group) *tools.ServerTool {
	return newServerTool("edit_cell", prompts.EditCellToolDoc,
		func(_ context.Context, args EditCellArgs) (string, bool) {
			return g.EditCell(args.CellIndex, args.NewSource)
		})
}

// CreateSetSlideTypeTool creates the set_slide_type tool.
func CreateSetSlideTypeTool(g *Group) *tools.ServerTool {
	return newServerTool("set_slide_type", prompts.SetSlideTypeToolDoc,
		func(_ context.Context, args SetSlideTypeArgs) (string, bool) {
			return g.SetSlideType(args.CellIndex, args.SlideType)
		})
}

// CreateDeleteCellTool creates the delete_cell tool.
func CreateDeleteCellTool(g *Group) *tools.ServerTool {
	return newServerTool("delete_cell", prompts.DeleteCellToolDoc,
		func(_ context.Context, args DeleteCellArgs) (string, bool) {
			return g.DeleteCell(args.CellIndex)
		})
}

func cellTypeOrDefault(cellType *string) string {
	if cellType == nil || *cellType == "" {
		return "code"
	}
	return *cellType
}
