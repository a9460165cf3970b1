// Package kernel provides the execution backend abstraction used by the
// session core, together with a client for Jupyter kernel gateways.
package kernel

import (
	"context"
	"fmt"

	"github.com/nbserve/jupyter-mcp/internal/notebook"
)

// Connection is one live execution backend. Execute runs a unit of code and
// returns its ordered output records. Failures inside user code surface as
// *ExecError; transport failures wrap errors.ErrConnectionLost so the
// session can apply its retry-once policy.
type Connection interface {
	Execute(ctx context.Context, code string) ([]notebook.Output, error)
	Close(ctx context.Context) error
}

// Launcher establishes backend connections on demand.
type Launcher interface {
	Launch(ctx context.Context) (Connection, error)
}

// ExecError reports an exception raised by user code inside the kernel.
// It is a reported outcome, not a transport failure.
type ExecError struct {
	Ename     string
	Evalue    string
	Traceback []string
}

func (e *ExecError) Error() string {
	if e.Evalue == "" {
		return e.Ename
	}
	return fmt.Sprintf("%s: %s", e.Ename, e.Evalue)
}
