package notebook

import (
	"github.com/nbserve/jupyter-mcp/internal/tools"
)

// CreateDocumentTools creates the tools that open, inspect, edit, and
// persist the notebook document.
func CreateDocumentTools(g *Group) []*tools.ServerTool {
	return []*tools.ServerTool{
		CreateOpenNotebookTool(g),
		CreateSaveNotebookTool(g),
		CreateInsertCellTool(g),
		CreateEditCellTool(g),
		CreateDeleteCellTool(g),
		CreateSetSlideTypeTool(g),
		CreateListCellsTool(g),
		CreateNotebookInfoTool(g),
	}
}

// CreateExecutionTools creates the tools that drive the kernel and read
// execution outputs.
func CreateExecutionTools(g *Group) []*tools.ServerTool {
	return []*tools.ServerTool{
		CreateRunCellTool(g),
		CreateRunCellsTool(g),
		CreateRunAllCellsTool(g),
		CreateInsertAndRunCellTool(g),
		CreateCellOutputTool(g),
		CreateCellImageTool(g),
	}
}
