package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nbserve/jupyter-mcp/internal/config"
	"github.com/nbserve/jupyter-mcp/internal/dispatch"
	"github.com/nbserve/jupyter-mcp/internal/kernel"
	"github.com/nbserve/jupyter-mcp/internal/logging"
	"github.com/nbserve/jupyter-mcp/internal/security"
	"github.com/nbserve/jupyter-mcp/internal/session"
	"github.com/nbserve/jupyter-mcp/internal/tools"
	"github.com/nbserve/jupyter-mcp/internal/tools/notebook"
)

// callCmd executes one request block read from stdin against a local
// session and prints the rendered report. The block format is
// line-oriented: "$method:" names the operation and each "$pram:" line
// opens a parameter whose value spans the following lines.
var callCmd = &cobra.Command{
	Use:   "call",
	Short: "Execute one request block from stdin",
	Long: `call reads a request block from stdin, executes it against a local
notebook session, and prints the report.

Example input:

  $method:insert_and_run_cell
  $pram:source
  print("hello")
  $pram:index
  None

The known methods match the MCP tool names.`,
	RunE: runCall,
}

func runCall(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.NewLogger(cfg.Logging.Level)

	input, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("failed to read request from stdin: %w", err)
	}
	if strings.TrimSpace(string(input)) == "" {
		return fmt.Errorf("empty request: expected a $method: block on stdin")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	launcher := kernel.NewGatewayLauncher(cfg.Gateway, logger)
	sess := session.New(launcher, logger)
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		sess.Close(shutdownCtx)
	}()

	toolCtx := &tools.Context{
		Logger:    &callLogger{logger},
		Validator: security.NewDefaultValidator(),
	}
	group := notebook.NewGroup(sess, toolCtx)

	if cfg.Notebook.Path != "" {
		if err := sess.Open(ctx, cfg.Notebook.Path); err != nil {
			logger.Warn("Failed to open default notebook", "path", cfg.Notebook.Path, "error", err)
		}
	}

	report, ok := dispatch.NewDispatcher(group).Dispatch(ctx, string(input))
	fmt.Println(report)
	if !ok {
		cmd.SilenceUsage = true
		return fmt.Errorf("request failed")
	}
	return nil
}

// callLogger adapts logging.Logger to the tools.Logger interface.
type callLogger struct {
	*logging.Logger
}

func (l *callLogger) WithTool(toolName string) tools.Logger {
	return &callLogger{Logger: l.Logger.WithTool(toolName)}
}
