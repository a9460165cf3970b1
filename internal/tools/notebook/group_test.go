package notebook

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbserve/jupyter-mcp/internal/kernel"
	"github.com/nbserve/jupyter-mcp/internal/logging"
	nbformat "github.com/nbserve/jupyter-mcp/internal/notebook"
	"github.com/nbserve/jupyter-mcp/internal/security"
	"github.com/nbserve/jupyter-mcp/internal/session"
	"github.com/nbserve/jupyter-mcp/internal/tools"
)

type fakeConn struct{}

func (fakeConn) Execute(context.Context, string) ([]nbformat.Output, error) {
	return []nbformat.Output{{
		OutputType: nbformat.OutputStream,
		Name:       "stdout",
		Text:       "ok\n",
	}}, nil
}

func (fakeConn) Close(context.Context) error { return nil }

type fakeLauncher struct{}

func (fakeLauncher) Launch(context.Context) (kernel.Connection, error) { return fakeConn{}, nil }

type testLogger struct {
	*logging.Logger
}

func (l testLogger) WithTool(toolName string) tools.Logger {
	return testLogger{Logger: l.Logger.WithTool(toolName)}
}

func newTestGroup(t *testing.T) (*Group, string) {
	t.Helper()

	logger := logging.NewLogger("error")
	sess := session.New(fakeLauncher{}, logger)
	group := NewGroup(sess, &tools.Context{
		Logger:    testLogger{Logger: logger},
		Validator: security.NewDefaultValidator(),
	})
	return group, filepath.Join(t.TempDir(), "test.ipynb")
}

func TestOpenNotebookRejectsNonNotebookExtension(t *testing.T) {
	g, _ := newTestGroup(t)

	report, ok := g.OpenNotebook(context.Background(), "/home/user/script.py")
	assert.False(t, ok)
	assert.Contains(t, report, ".ipynb")
	assert.Contains(t, report, "ValidationError")
}

func TestOpenNotebookRejectsRestrictedPath(t *testing.T) {
	g, _ := newTestGroup(t)

	report, ok := g.OpenNotebook(context.Background(), "/etc/evil.ipynb")
	assert.False(t, ok)
	assert.Contains(t, report, "ValidationError")
}

func TestOpenNotebookSucceeds(t *testing.T) {
	g, path := newTestGroup(t)

	report, ok := g.OpenNotebook(context.Background(), path)
	require.True(t, ok, report)
	assert.Contains(t, report, "### Tool 'open_notebook' succeeded")
	assert.Contains(t, report, path)
}

func TestDeleteCellReportWarnsAboutPersistence(t *testing.T) {
	g, path := newTestGroup(t)

	_, ok := g.OpenNotebook(context.Background(), path)
	require.True(t, ok)
	_, ok = g.InsertCell("x = 1", "code", nil)
	require.True(t, ok)

	report, ok := g.DeleteCell(0)
	require.True(t, ok, report)
	assert.Contains(t, report, "NOT saved")
	assert.Contains(t, report, "- **Persisted**: `false`")
}

func TestRunCellRendersOutputBlock(t *testing.T) {
	g, path := newTestGroup(t)

	_, ok := g.OpenNotebook(context.Background(), path)
	require.True(t, ok)
	_, ok = g.InsertCell("print('ok')", "code", nil)
	require.True(t, ok)

	report, ok := g.RunCell(context.Background(), 0)
	require.True(t, ok, report)
	assert.Contains(t, report, "**Output:**")
	assert.Contains(t, report, "total length: 3")
}

func TestRunCellInvalidIndexFails(t *testing.T) {
	g, path := newTestGroup(t)

	_, ok := g.OpenNotebook(context.Background(), path)
	require.True(t, ok)

	report, ok := g.RunCell(context.Background(), 3)
	assert.False(t, ok)
	assert.Contains(t, report, "### Tool 'run_cell' failed")
	assert.Contains(t, report, "ValidationError")
}

func TestCellImageMissingPayload(t *testing.T) {
	g, path := newTestGroup(t)

	_, ok := g.OpenNotebook(context.Background(), path)
	require.True(t, ok)
	_, ok = g.InsertCell("plot()", "code", nil)
	require.True(t, ok)

	report, ok := g.CellImage(0, "png")
	assert.False(t, ok)
	assert.Contains(t, report, "no png image output")
}

func TestSetSlideTypeNoneClears(t *testing.T) {
	g, path := newTestGroup(t)

	_, ok := g.OpenNotebook(context.Background(), path)
	require.True(t, ok)
	_, ok = g.InsertCell("# deck", "markdown", nil)
	require.True(t, ok)

	report, ok := g.SetSlideType(0, "slide")
	require.True(t, ok, report)

	report, ok = g.SetSlideType(0, "None")
	require.True(t, ok, report)
	assert.Contains(t, report, "(cleared)")

	onDisk, err := nbformat.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "", onDisk.Cells[0].SlideType())
}

func TestNotebookInfoListsIndices(t *testing.T) {
	g, path := newTestGroup(t)

	_, ok := g.OpenNotebook(context.Background(), path)
	require.True(t, ok)
	for _, c := range []struct{ src, kind string }{
		{"a()", "code"}, {"# doc", "markdown"}, {"b()", "code"},
	} {
		_, ok = g.InsertCell(c.src, c.kind, nil)
		require.True(t, ok)
	}

	report, ok := g.NotebookInfo()
	require.True(t, ok, report)
	assert.Contains(t, report, "- **Code cells**: `[0, 2]`")
	assert.Contains(t, report, "- **Markdown cells**: `[1]`")
	assert.Contains(t, report, "- **Total cells**: `3`")
}
