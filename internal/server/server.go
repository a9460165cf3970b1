// Package server implements the MCP server exposing the notebook session.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nbserve/jupyter-mcp/internal/collections"
	"github.com/nbserve/jupyter-mcp/internal/config"
	"github.com/nbserve/jupyter-mcp/internal/kernel"
	"github.com/nbserve/jupyter-mcp/internal/logging"
	"github.com/nbserve/jupyter-mcp/internal/security"
	"github.com/nbserve/jupyter-mcp/internal/session"
	"github.com/nbserve/jupyter-mcp/internal/tools"
	"github.com/nbserve/jupyter-mcp/internal/tools/notebook"
	"github.com/nbserve/jupyter-mcp/pkg/version"
)

// loggerAdapter wraps logging.Logger to implement tools.Logger interface.
// This avoids circular dependency between logging and tools packages.
type loggerAdapter struct {
	*logging.Logger
}

// WithTool implements tools.Logger interface.
func (a *loggerAdapter) WithTool(toolName string) tools.Logger {
	return &loggerAdapter{Logger: a.Logger.WithTool(toolName)}
}

// Server represents the jupyter-mcp server.
type Server struct {
	mcpServer *mcp.Server
	registry  *tools.Registry
	group     *notebook.Group
	logger    *logging.Logger
	validator security.Validator
	cfg       *config.Config
}

// Options configures the server instance.
type Options struct {
	Config    *config.Config
	Logger    *logging.Logger
	Validator security.Validator
	// Launcher overrides the kernel backend, used by tests.
	Launcher kernel.Launcher
}

// New creates a new jupyter-mcp server with the given options.
func New(opts *Options) (*Server, error) {
	if opts.Config == nil {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		opts.Config = cfg
	}

	if opts.Logger == nil {
		opts.Logger = logging.NewLogger(opts.Config.Logging.Level)
	}

	if opts.Validator == nil {
		opts.Validator = security.NewDefaultValidator()
	}

	launcher := opts.Launcher
	if launcher == nil {
		launcher = kernel.NewGatewayLauncher(opts.Config.Gateway, opts.Logger)
	}

	sess := session.New(launcher, opts.Logger)

	toolCtx := &tools.Context{
		Logger:    &loggerAdapter{Logger: opts.Logger},
		Validator: opts.Validator,
	}
	group := notebook.NewGroup(sess, toolCtx)

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "jupyter-mcp",
		Version: version.GetVersion().Version,
	}, nil)

	server := &Server{
		mcpServer: mcpServer,
		registry:  tools.NewRegistry(),
		group:     group,
		logger:    opts.Logger,
		validator: opts.Validator,
		cfg:       opts.Config,
	}

	if err := server.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return server, nil
}

// Start validates the registry and opens the configured default notebook.
// A bootstrap failure is logged, not fatal: the gateway may come up later,
// and open_notebook recovers the session on demand.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting jupyter-mcp server",
		slog.String("version", version.GetVersion().Version),
		slog.Int("tools", s.registry.Count()),
	)

	if err := s.registry.Validate(); err != nil {
		return fmt.Errorf("tool registry validation failed: %w", err)
	}

	s.bootstrapNotebook(ctx)
	return nil
}

// bootstrapNotebook opens the configured default notebook and runs the
// configured initialization code in it.
func (s *Server) bootstrapNotebook(ctx context.Context) {
	nbCfg := s.cfg.Notebook
	if nbCfg.Path == "" {
		return
	}

	if nbCfg.Fresh {
		if err := os.Remove(nbCfg.Path); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("Failed to remove existing notebook", "path", nbCfg.Path, "error", err)
		}
	}

	sess := s.group.Session()
	if err := sess.Open(ctx, nbCfg.Path); err != nil {
		s.logger.Warn("Failed to open default notebook at startup",
			"path", nbCfg.Path, "error", err)
		return
	}
	s.logger.Info("Default notebook opened", "path", sess.Path())

	if nbCfg.InitCode == "" {
		return
	}
	index := 0
	if _, report, err := sess.InsertAndExecuteCell(ctx, nbCfg.InitCode, "code", &index); err != nil {
		s.logger.Warn("Initialization code failed", "error", err)
	} else if report != "" {
		s.logger.Debug("Initialization code executed", "report_length", len(report))
	}
}

// Stop shuts the server down, saving the notebook and releasing the kernel.
// Teardown failures are logged and discarded; Stop never propagates them.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping jupyter-mcp server")

	s.group.Session().Close(ctx)

	select {
	case <-ctx.Done():
		s.logger.Warn("Server stop timed out")
		return ctx.Err()
	default:
		s.logger.Info("Server stopped successfully")
		return nil
	}
}

// GetRegistry returns the tool registry.
func (s *Server) GetRegistry() *tools.Registry {
	return s.registry
}

// Group returns the notebook tool group.
func (s *Server) Group() *notebook.Group {
	return s.group
}

// registerTools registers all notebook tools with the server.
func (s *Server) registerTools() error {
	s.logger.Debug("Registering tools with MCP server")

	documentTools := notebook.CreateDocumentTools(s.group)
	executionTools := notebook.CreateExecutionTools(s.group)

	allTools := collections.Concat(documentTools, executionTools)

	var toolNames []string
	for _, tool := range allTools {
		if err := s.registry.Register(tool); err != nil {
			return err
		}
		tool.RegisterFunc(s.mcpServer)
		toolNames = append(toolNames, tool.Tool.Name)

		s.logger.Debug("Registered tool", "name", tool.Tool.Name)
	}

	s.logger.Info("Successfully registered tools",
		slog.Int("count", len(allTools)),
		slog.Any("tools", toolNames),
	)

	return nil
}

// Serve runs the MCP server with the specified transport.
// It connects the MCP server to the transport and waits for either
// the session to complete or the context to be cancelled.
func (s *Server) Serve(ctx context.Context, transport mcp.Transport) error {
	s.logger.Info("Starting MCP server transport",
		slog.String("transport", fmt.Sprintf("%T", transport)),
	)

	mcpSession, err := s.mcpServer.Connect(ctx, transport)
	if err != nil {
		return fmt.Errorf("failed to connect MCP server: %w", err)
	}

	sessionDone := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("MCP session goroutine panicked",
					slog.Any("panic", r))
				sessionDone <- fmt.Errorf("session panicked: %v", r)
			}
		}()
		sessionDone <- mcpSession.Wait()
	}()

	select {
	case err := <-sessionDone:
		s.logger.Info("MCP session finished")
		return err
	case <-ctx.Done():
		s.logger.Info("MCP server shutting down due to context cancellation")
		return ctx.Err()
	}
}
