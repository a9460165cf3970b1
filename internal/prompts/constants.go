// Package prompts contains the description strings for all notebook tools.
package prompts

// Session lifecycle tool descriptions
const (
	// OpenNotebookToolDoc is the description for the open_notebook tool
	OpenNotebookToolDoc = `Opens an existing notebook or creates a new one at the given path, and starts a kernel for it.

All subsequent tools operate on this notebook. If another notebook was open, it is saved first.

Parameters:
- notebook_path (string): path of the .ipynb notebook file.

Returns a markdown report with a success or error status line.`

	// SaveNotebookToolDoc is the description for the save_notebook tool
	SaveNotebookToolDoc = `Saves the current state of the notebook to its file.

Most mutating tools persist automatically; this tool exists to flush changes made by tools that do not, such as delete_cell.`
)

// Execution tool descriptions
const (
	// RunCellToolDoc is the description for the run_cell tool
	RunCellToolDoc = `Executes the code cell at the given index without altering any other cell's executed state.

If the kernel connection is lost, it is restarted once and the execution retried once; the retry outcome is reported in the result text. Errors raised by the cell's code are reported as diagnostic text, not as a tool failure.

Parameters:
- cell_index (integer): index of the code cell to execute.

Returns the cell's text output (paged to the default window).`

	// RunCellsToolDoc is the description for the run_cells tool
	RunCellsToolDoc = `Executes the given cell indices sequentially in the order given.

Markdown cells are skipped. Execution stops at the first out-of-range index or the first cell whose code raises. Stderr output accumulates as warnings without stopping the batch. Partial progress is always persisted.

Parameters:
- indices (JSON array of integers): cell indices to execute, e.g. [0, 1, 3].

Returns a report with the batch status, last executed index, warnings, and the last cell's output.`

	// RunAllCellsToolDoc is the description for the run_all_cells tool
	RunAllCellsToolDoc = `Executes every code cell in the notebook from top to bottom.

If the kernel connection is lost, the kernel is restarted once and the whole batch re-run once. The notebook is saved on completion either way.`
)

// Cell editing tool descriptions
const (
	// InsertCellToolDoc is the description for the insert_cell tool
	InsertCellToolDoc = `Inserts a new cell with the given source into the notebook without executing it, then saves the notebook.

Parameters:
- source (string): source code or content of the new cell.
- cell_type (string): "code" or "markdown". Defaults to "code".
- index (string): insert position, or "none"/empty to append at the end.

Returns the index the cell was inserted at.`

	// InsertAndRunCellToolDoc is the description for the insert_and_run_cell tool
	InsertAndRunCellToolDoc = `Inserts a new cell and, if it is a code cell, executes it immediately, then saves the notebook.

An execution failure is reported in the result text; the insertion itself still succeeds.

Parameters:
- source (string): source code or content of the new cell.
- cell_type (string): "code" or "markdown". Defaults to "code".
- index (string): insert position, or "none"/empty to append at the end.`

	// EditCellToolDoc is the description for the edit_cell tool
	EditCellToolDoc = `Replaces the source of an existing cell, then saves the notebook.

The cell is not re-executed and prior outputs are kept: they become stale until the cell is re-run.

Parameters:
- cell_index (integer): index of the cell to edit.
- new_source (string): the complete new source of the cell.`

	// DeleteCellToolDoc is the description for the delete_cell tool
	DeleteCellToolDoc = `Deletes the cell at the given index.

IMPORTANT: this tool does NOT save the notebook. Call save_notebook afterwards to persist the deletion; this allows batching several deletes before one flush.

Parameters:
- cell_index (integer): index of the cell to delete.`

	// SetSlideTypeToolDoc is the description for the set_slide_type tool
	SetSlideTypeToolDoc = `Sets the presentation slide type of a cell in its metadata, then saves the notebook.

Parameters:
- cell_index (integer): index of the cell.
- slide_type (string): one of "slide", "subslide", "fragment", "skip", "notes", or "none"/empty to clear.`
)

// Inspection tool descriptions
const (
	// ListCellsToolDoc is the description for the list_cells tool
	ListCellsToolDoc = `Lists every cell of the current notebook in markdown: index, type, source, and a truncated preview of code cell output.`

	// NotebookInfoToolDoc is the description for the notebook_info tool
	NotebookInfoToolDoc = `Reports basic notebook information: the index lists of code cells and markdown cells.`

	// CellOutputToolDoc is the description for the cell_output tool
	CellOutputToolDoc = `Retrieves the text output of a code cell as a bounded window.

The report states the full concatenated output length followed by the requested slice, so arbitrarily large output can be paged through safely.

Parameters:
- cell_index (integer): index of the cell.
- offset (integer): start position in the concatenated output. Defaults to 0.
- limit (integer): maximum slice length. Defaults to 3000; -1 returns everything from offset onward.`

	// CellImageToolDoc is the description for the cell_image tool
	CellImageToolDoc = `Retrieves the first image output of a code cell as base64-encoded data.

Parameters:
- cell_index (integer): index of the cell.
- format (string): image format such as "png" or "jpeg". Defaults to "png".`
)
