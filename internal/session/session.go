// Package session implements the notebook/kernel execution session: one
// document, at most one live kernel connection, and the recovery policy that
// keeps them consistent across partial failures.
//
// A Session is single-owner. It holds no internal locking; callers must not
// issue concurrent operations against the same instance. The request adapter
// serializes access with one mutex.
package session

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/nbserve/jupyter-mcp/internal/collections"
	"github.com/nbserve/jupyter-mcp/internal/errors"
	"github.com/nbserve/jupyter-mcp/internal/kernel"
	"github.com/nbserve/jupyter-mcp/internal/logging"
	"github.com/nbserve/jupyter-mcp/internal/notebook"
)

// DefaultOutputWindow is the default slice length for text output paging.
const DefaultOutputWindow = 3000

// outputPreviewBudget caps the per-cell output preview in DescribeCells.
const outputPreviewBudget = 200

// Session owns exactly one notebook document and at most one live kernel
// connection. Code cells execute only while a connection exists; the session
// (re)establishes the connection on demand.
type Session struct {
	launcher kernel.Launcher
	logger   *logging.Logger

	path string
	nb   *notebook.Notebook
	conn kernel.Connection

	// backup mirrors the cell list across connection (re)starts, during
	// which the document is temporarily emptied. It is never persisted.
	backup []notebook.Cell

	execCount int
}

// New creates a session that launches kernels through the given launcher.
func New(launcher kernel.Launcher, logger *logging.Logger) *Session {
	return &Session{
		launcher: launcher,
		logger:   logger,
	}
}

// Path returns the currently bound notebook path, or "" when none is open.
func (s *Session) Path() string {
	return s.path
}

// IsOpen reports whether a document is bound to the session.
func (s *Session) IsOpen() bool {
	return s.nb != nil
}

// Open binds the session to a notebook path. A previously open document is
// flushed first. An existing file is loaded; a missing one is created empty
// and persisted eagerly so the path always exists once opened. Either way a
// kernel connection is (re)established.
func (s *Session) Open(ctx context.Context, path string) error {
	if s.nb != nil && s.path != path {
		if err := s.persist(); err != nil {
			s.logger.Warn("Failed to flush previous notebook", "path", s.path, "error", err)
		}
	}

	if _, err := os.Stat(path); err == nil {
		nb, err := notebook.Load(path)
		if err != nil {
			return errors.IO(err, "opening notebook %s", path)
		}
		s.nb = nb
		s.backup = nb.Cells
	} else if os.IsNotExist(err) {
		s.nb = notebook.New()
		s.backup = nil
		if err := s.nb.Save(path); err != nil {
			return errors.IO(err, "creating notebook %s", path)
		}
	} else {
		return errors.IO(err, "opening notebook %s", path)
	}

	s.path = path
	s.logger.Info("Notebook opened", "path", path, "cells", len(s.nb.Cells))

	return s.StartKernel(ctx)
}

// StartKernel is the idempotent connection bring-up and the canonical
// recovery path. The cell list is snapshotted into the backup buffer and
// emptied so a fresh connection never sees stale cells during warm-up, any
// existing connection is torn down best-effort, and the cells are restored
// once the new connection is live.
func (s *Session) StartKernel(ctx context.Context) error {
	if s.nb == nil {
		return errors.ErrNotOpen
	}

	if s.backup == nil {
		s.backup = s.nb.Cells
	}
	s.nb.Cells = []notebook.Cell{}
	defer func() {
		s.nb.Cells = s.backup
	}()

	if s.conn != nil {
		if err := s.conn.Close(ctx); err != nil {
			s.logger.Warn("Kernel teardown failed", "error", err)
		}
		s.conn = nil
	}

	conn, err := s.launcher.Launch(ctx)
	if err != nil {
		return err
	}
	s.conn = conn
	return nil
}

// RestartKernel replaces the current connection with a fresh one.
func (s *Session) RestartKernel(ctx context.Context) error {
	return s.StartKernel(ctx)
}

// ShutdownKernel tears down the connection best-effort. Teardown failures
// are logged and discarded; a failed teardown must not block bringing up a
// fresh connection later.
func (s *Session) ShutdownKernel(ctx context.Context) {
	if s.conn == nil {
		return
	}
	if err := s.conn.Close(ctx); err != nil {
		s.logger.Warn("Kernel teardown failed", "error", err)
	}
	s.conn = nil
}

// Close flushes the document and shuts the kernel down at process teardown.
func (s *Session) Close(ctx context.Context) {
	if s.nb != nil {
		s.persistLogged()
	}
	s.ShutdownKernel(ctx)
}

// ExecuteCell runs the code cell at index without altering any other cell's
// executed state. Kernel-side execution errors and a second connection loss
// are reported in the returned string, not raised; validation failures are
// returned as errors before any connection work happens.
func (s *Session) ExecuteCell(ctx context.Context, index int) (string, error) {
	if err := s.requireCodeCell(index); err != nil {
		return "", err
	}
	if err := s.ensureKernel(ctx); err != nil {
		return "", err
	}

	err := s.runCell(ctx, index)
	var execErr *kernel.ExecError
	switch {
	case err == nil:

	case errors.As(err, &execErr):
		s.persistLogged()
		return fmt.Sprintf("cell execution error: %v", execErr), nil

	case errors.Is(err, errors.ErrConnectionLost):
		s.logger.Warn("Kernel connection lost, restarting", "cell", index)
		if rerr := s.RestartKernel(ctx); rerr != nil {
			return fmt.Sprintf("kernel connection lost and restart failed: %v", rerr), nil
		}
		retryErr := s.runCell(ctx, index)
		switch {
		case retryErr == nil:
		case errors.As(retryErr, &execErr):
			s.persistLogged()
			return fmt.Sprintf("cell execution error: %v", execErr), nil
		default:
			return fmt.Sprintf("retrying cell %d failed: %v", index, retryErr), nil
		}

	default:
		return fmt.Sprintf("executing cell %d failed: %v", index, err), nil
	}

	s.persistLogged()
	return s.TextWindow(index, 0, DefaultOutputWindow)
}

// Warning is per-cell stderr output accumulated during a batch execution.
type Warning struct {
	Index int
	Text  string
}

// BatchResult reports the outcome of executing an explicit index list.
// Failures here are terminal for the batch, never retried.
type BatchResult struct {
	Success   bool
	LastIndex *int
	Err       string
	Warnings  []Warning
	Output    string
}

// ExecuteIndices runs the given indices sequentially in the order given,
// skipping markdown cells. It stops at the first out-of-range index or the
// first execution failure. The document is persisted at the end regardless
// of success so partial progress survives a crash; a persistence failure is
// recorded in Err without rolling back.
func (s *Session) ExecuteIndices(ctx context.Context, indices []int) (BatchResult, error) {
	result := BatchResult{Success: true}
	if err := s.requireOpen(); err != nil {
		return result, err
	}
	if err := s.ensureKernel(ctx); err != nil {
		return result, err
	}

	for _, idx := range indices {
		if idx < 0 || idx >= len(s.nb.Cells) {
			result.Success = false
			result.Err = fmt.Sprintf("cell index out of range: %d", idx)
			break
		}
		if s.nb.Cells[idx].CellType != notebook.CellCode {
			continue
		}

		if err := s.runCell(ctx, idx); err != nil {
			last := idx
			result.Success = false
			result.LastIndex = &last
			result.Err = fmt.Sprintf("executing cell %d: %v", idx, err)
			break
		}

		last := idx
		result.LastIndex = &last

		for _, out := range s.nb.Cells[idx].Outputs {
			if out.OutputType == notebook.OutputStream && out.Name == "stderr" {
				result.Warnings = append(result.Warnings, Warning{Index: idx, Text: out.Text.String()})
			}
		}
	}

	if err := s.persist(); err != nil && result.Err == "" {
		result.Err = err.Error()
	}

	if result.LastIndex != nil {
		result.Output = s.nb.Cells[*result.LastIndex].TextOutput()
	}
	return result, nil
}

// ExecuteAll runs every code cell top to bottom as one batch. On a
// connection loss the kernel is restarted and the whole batch re-run once;
// in-code failures and a second loss are reported in the returned string.
// The document is persisted on completion either way.
func (s *Session) ExecuteAll(ctx context.Context) (string, error) {
	if err := s.requireOpen(); err != nil {
		return "", err
	}
	if err := s.ensureKernel(ctx); err != nil {
		return "", err
	}

	report := ""
	err := s.runAllCells(ctx)
	var execErr *kernel.ExecError
	switch {
	case err == nil:

	case errors.As(err, &execErr):
		report = fmt.Sprintf("cell execution error: %v", err)

	case errors.Is(err, errors.ErrConnectionLost):
		s.logger.Warn("Kernel connection lost during batch, restarting")
		if rerr := s.RestartKernel(ctx); rerr != nil {
			report = fmt.Sprintf("kernel connection lost and restart failed: %v", rerr)
			break
		}
		if retryErr := s.runAllCells(ctx); retryErr != nil {
			report = fmt.Sprintf("re-running all cells failed: %v", retryErr)
		}

	default:
		report = fmt.Sprintf("running all cells failed: %v", err)
	}

	if perr := s.persist(); perr != nil && report == "" {
		report = perr.Error()
	}
	return report, nil
}

// runAllCells is the batch pass. The gateway protocol has no bulk execute
// primitive, so the batch is a sequential pass stopping at the first
// failure, matching the per-cell semantics.
func (s *Session) runAllCells(ctx context.Context) error {
	for i := range s.nb.Cells {
		if s.nb.Cells[i].CellType != notebook.CellCode {
			continue
		}
		if err := s.runCell(ctx, i); err != nil {
			return fmt.Errorf("cell %d: %w", i, err)
		}
	}
	return nil
}

// InsertCell inserts a new cell without executing it and persists the
// document. A nil index appends; an explicit index must be within [0, len].
// The backup buffer is refreshed so a later kernel restart round-trips the
// new cell. Returns the inserted cell's index.
func (s *Session) InsertCell(source, kind string, index *int) (int, error) {
	if err := s.requireOpen(); err != nil {
		return 0, err
	}
	cell, err := newCell(source, kind)
	if err != nil {
		return 0, err
	}

	pos := len(s.nb.Cells)
	if index != nil {
		if *index < 0 || *index > len(s.nb.Cells) {
			return 0, errors.Validation("invalid insert position: %d", *index)
		}
		pos = *index
	}

	s.nb.Cells = collections.Insert(s.nb.Cells, pos, cell)
	s.backup = s.nb.Cells

	if err := s.persist(); err != nil {
		return pos, err
	}
	return pos, nil
}

// InsertAndExecuteCell inserts a new cell and, for code cells, immediately
// executes it with the same retry-once policy as ExecuteCell. An ultimate
// execution failure is reported in the returned string, never raised:
// insertion itself succeeds once validation passes.
func (s *Session) InsertAndExecuteCell(ctx context.Context, source, kind string, index *int) (int, string, error) {
	pos, err := s.InsertCell(source, kind, index)
	if err != nil {
		if !errors.Is(err, errors.ErrPersistence) {
			return 0, "", err
		}
		s.logger.Warn("Failed to persist notebook after insert", "error", err)
	}

	if kind != notebook.CellCode {
		return pos, "", nil
	}

	report, err := s.ExecuteCell(ctx, pos)
	if err != nil {
		// Validation cannot fail for a cell we just inserted; treat
		// anything else as a reported outcome.
		report = fmt.Sprintf("executing inserted cell %d failed: %v", pos, err)
		s.logger.Warn("Inserted cell execution failed", "cell", pos, "error", err)
	}
	return pos, report, nil
}

// EditCell replaces a cell's source in place. Prior outputs are kept and
// become stale until the cell is re-run; callers decide when to re-execute.
func (s *Session) EditCell(index int, newSource string) error {
	if err := s.requireIndex(index); err != nil {
		return err
	}
	s.nb.Cells[index].Source = notebook.MultilineString(newSource)
	return s.persist()
}

// DeleteCell removes the cell at index. It does NOT persist: callers batch
// deletes and flush once with Save.
func (s *Session) DeleteCell(index int) error {
	if err := s.requireIndex(index); err != nil {
		return err
	}
	s.nb.Cells = append(s.nb.Cells[:index], s.nb.Cells[index+1:]...)
	s.backup = s.nb.Cells
	return nil
}

// Save flushes the document to its path.
func (s *Session) Save() error {
	return s.persist()
}

// SetSlideType sets or clears (empty tag) a cell's presentation-mode tag and
// persists the document.
func (s *Session) SetSlideType(index int, tag string) error {
	if err := s.requireIndex(index); err != nil {
		return err
	}
	if err := s.nb.Cells[index].SetSlideType(tag); err != nil {
		return errors.Validation("%v", err)
	}
	return s.persist()
}

// TextWindow returns a header line reporting the full concatenated output
// length of the cell at index, followed by the slice [offset, offset+limit).
// A negative offset clamps to zero, an offset past the end yields an empty
// slice, and a negative limit means everything from offset onward.
func (s *Session) TextWindow(index, offset, limit int) (string, error) {
	if err := s.requireIndex(index); err != nil {
		return "", err
	}

	text := s.nb.Cells[index].TextOutput()
	full := len(text)

	if offset < 0 {
		offset = 0
	}
	slice := ""
	if offset < full {
		end := full
		if limit >= 0 && offset+limit < full {
			end = offset + limit
		}
		slice = text[offset:end]
	}

	return fmt.Sprintf("total length: %d\n%s", full, slice), nil
}

// ImageOutput returns the first image payload of the given format among the
// cell's output records.
func (s *Session) ImageOutput(index int, format string) (string, bool, error) {
	if err := s.requireIndex(index); err != nil {
		return "", false, err
	}
	data, ok := s.nb.Cells[index].ImageData(format)
	return data, ok, nil
}

// DescribeCells renders a markdown summary of every cell: index, type,
// source, and a head/tail-truncated preview of its text output.
func (s *Session) DescribeCells() (string, error) {
	if err := s.requireOpen(); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("## Cells\n\n")
	for i := range s.nb.Cells {
		cell := &s.nb.Cells[i]
		fmt.Fprintf(&sb, "### Cell %d\n\n", i)
		fmt.Fprintf(&sb, "- **Type**: %s\n", cell.CellType)
		fmt.Fprintf(&sb, "- **Source**:\n\n```\n%s\n```\n\n", cell.Source)
		if cell.CellType == notebook.CellCode {
			if cell.HasOutput() {
				fmt.Fprintf(&sb, "- **Output**:\n\n```\n%s\n```\n\n", previewText(cell.TextOutput()))
			} else {
				sb.WriteString("- **Output**: none\n\n")
			}
		}
		sb.WriteString("---\n\n")
	}
	return sb.String(), nil
}

// DescribeNotebook partitions cell indices by kind.
func (s *Session) DescribeNotebook() (codeCells, markdownCells []int, err error) {
	if err := s.requireOpen(); err != nil {
		return nil, nil, err
	}
	for i := range s.nb.Cells {
		switch s.nb.Cells[i].CellType {
		case notebook.CellCode:
			codeCells = append(codeCells, i)
		case notebook.CellMarkdown:
			markdownCells = append(markdownCells, i)
		}
	}
	return codeCells, markdownCells, nil
}

// ensureKernel starts a connection when none exists.
func (s *Session) ensureKernel(ctx context.Context) error {
	if s.conn != nil {
		return nil
	}
	return s.StartKernel(ctx)
}

// runCell executes one cell against the live connection and records its
// outputs. Outputs are recorded both on success and on an in-code error,
// since the error record is part of the cell's output.
func (s *Session) runCell(ctx context.Context, index int) error {
	cell := &s.nb.Cells[index]

	outputs, err := s.conn.Execute(ctx, cell.Source.String())

	var execErr *kernel.ExecError
	if err == nil || errors.As(err, &execErr) {
		s.execCount++
		count := s.execCount
		cell.Outputs = outputs
		cell.ExecutionCount = &count
	}
	return err
}

func (s *Session) persist() error {
	if s.nb == nil || s.path == "" {
		return errors.ErrNotOpen
	}
	if err := s.nb.Save(s.path); err != nil {
		return errors.Persistence(err)
	}
	return nil
}

// persistLogged reports persistence failures through the log only; the
// in-memory effect of the surrounding operation is kept either way.
func (s *Session) persistLogged() {
	if err := s.persist(); err != nil {
		s.logger.Warn("Failed to persist notebook", "path", s.path, "error", err)
	}
}

func (s *Session) requireOpen() error {
	if s.nb == nil {
		return errors.ErrNotOpen
	}
	return nil
}

func (s *Session) requireIndex(index int) error {
	if err := s.requireOpen(); err != nil {
		return err
	}
	if index < 0 || index >= len(s.nb.Cells) {
		return errors.Validation("cell index out of range: %d", index)
	}
	return nil
}

func (s *Session) requireCodeCell(index int) error {
	if err := s.requireIndex(index); err != nil {
		return err
	}
	if s.nb.Cells[index].CellType != notebook.CellCode {
		return errors.Validation("cell %d is not a code cell", index)
	}
	return nil
}

func newCell(source, kind string) (notebook.Cell, error) {
	switch kind {
	case notebook.CellCode:
		return notebook.NewCodeCell(source), nil
	case notebook.CellMarkdown:
		return notebook.NewMarkdownCell(source), nil
	default:
		return notebook.Cell{}, errors.Validation("unsupported cell type: %s", kind)
	}
}

// previewText truncates long output to its head and tail for cell listings.
func previewText(text string) string {
	if len(text) <= outputPreviewBudget {
		return text
	}
	half := outputPreviewBudget / 2
	return text[:half] + "..." + text[len(text)-half:]
}
