package kernel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/nbserve/jupyter-mcp/internal/config"
	"github.com/nbserve/jupyter-mcp/internal/errors"
	"github.com/nbserve/jupyter-mcp/internal/logging"
	"github.com/nbserve/jupyter-mcp/internal/notebook"
)

// GatewayLauncher starts kernels on a Jupyter kernel gateway and connects to
// their channels websocket.
type GatewayLauncher struct {
	baseURL    string
	token      string
	kernelName string
	client     *retryablehttp.Client
	dialer     *websocket.Dialer
	logger     *logging.Logger
}

// NewGatewayLauncher creates a launcher for the configured gateway.
func NewGatewayLauncher(cfg config.GatewayConfig, logger *logging.Logger) *GatewayLauncher {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.Logger = nil

	return &GatewayLauncher{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		token:      cfg.Token,
		kernelName: cfg.KernelName,
		client:     client,
		dialer: &websocket.Dialer{
			HandshakeTimeout: cfg.ConnectTimeout,
		},
		logger: logger,
	}
}

// kernelInfo is the gateway's kernel resource representation.
type kernelInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Launch starts a kernel via the gateway REST API and dials its channels
// websocket. A successful dial confirms the kernel is live.
func (l *GatewayLauncher) Launch(ctx context.Context) (Connection, error) {
	body, err := json.Marshal(map[string]string{"name": l.kernelName})
	if err != nil {
		return nil, fmt.Errorf("failed to encode kernel request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+"/api/kernels", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build kernel request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	l.authorize(req.Header)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, errors.ConnectionLost(err, "starting kernel %q", l.kernelName)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, errors.ConnectionLost(nil, "starting kernel %q: gateway returned %s", l.kernelName, resp.Status)
	}

	var info kernelInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, errors.ConnectionLost(err, "decoding kernel response")
	}

	wsURL := httpToWS(l.baseURL) + "/api/kernels/" + info.ID + "/channels"
	header := http.Header{}
	l.authorize(header)

	ws, _, err := l.dialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return nil, errors.ConnectionLost(err, "connecting to kernel %s channels", info.ID)
	}

	l.logger.WithKernel(info.ID).Info("Kernel started", "name", l.kernelName)

	return &GatewayConnection{
		kernelID: info.ID,
		session:  uuid.NewString(),
		ws:       ws,
		launcher: l,
		logger:   l.logger.WithKernel(info.ID),
	}, nil
}

func (l *GatewayLauncher) authorize(h http.Header) {
	if l.token != "" {
		h.Set("Authorization", "token "+l.token)
	}
}

// httpToWS converts the gateway base URL to its websocket scheme.
func httpToWS(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	default:
		return base
	}
}

// GatewayConnection is one live kernel reached through a gateway's channels
// websocket.
type GatewayConnection struct {
	kernelID string
	session  string
	ws       *websocket.Conn
	launcher *GatewayLauncher
	logger   *logging.Logger
}

// Execute sends an execute_request and accumulates the iopub output records
// published for it until the kernel returns to idle and the shell reply
// arrives. An error reply yields *ExecError together with the outputs
// captured so far; websocket failures wrap ErrConnectionLost.
func (c *GatewayConnection) Execute(ctx context.Context, code string) ([]notebook.Output, error) {
	req, err := newExecuteRequest(c.session, code)
	if err != nil {
		return nil, fmt.Errorf("failed to build execute request: %w", err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = c.ws.SetReadDeadline(deadline)
	}

	if err := c.ws.WriteJSON(req); err != nil {
		return nil, errors.ConnectionLost(err, "sending execute request")
	}

	var (
		outputs []notebook.Output
		execErr *ExecError
		idle    bool
		replied bool
	)

	for !(idle && replied) {
		var msg message
		if err := c.ws.ReadJSON(&msg); err != nil {
			return outputs, errors.ConnectionLost(err, "reading kernel message")
		}

		if msg.ParentHeader.MsgID != req.Header.MsgID {
			continue
		}

		switch msg.Header.MsgType {
		case "stream":
			var content streamContent
			if err := json.Unmarshal(msg.Content, &content); err != nil {
				continue
			}
			outputs = append(outputs, notebook.Output{
				OutputType: notebook.OutputStream,
				Name:       content.Name,
				Text:       notebook.MultilineString(content.Text),
			})

		case "execute_result", "display_data":
			var content dataContent
			if err := json.Unmarshal(msg.Content, &content); err != nil {
				continue
			}
			out := notebook.Output{
				OutputType: msg.Header.MsgType,
				Data:       content.Data,
				Metadata:   content.Metadata,
			}
			if msg.Header.MsgType == "execute_result" {
				out.ExecutionCount = content.ExecutionCount
			}
			outputs = append(outputs, out)

		case "error":
			var content errorContent
			if err := json.Unmarshal(msg.Content, &content); err != nil {
				continue
			}
			execErr = &ExecError{
				Ename:     content.Ename,
				Evalue:    content.Evalue,
				Traceback: content.Traceback,
			}
			outputs = append(outputs, notebook.Output{
				OutputType: notebook.OutputError,
				Ename:      content.Ename,
				Evalue:     content.Evalue,
				Traceback:  content.Traceback,
			})

		case "status":
			var content statusContent
			if err := json.Unmarshal(msg.Content, &content); err != nil {
				continue
			}
			if content.ExecutionState == "idle" {
				idle = true
			}

		case "execute_reply":
			replied = true
			var content replyContent
			if err := json.Unmarshal(msg.Content, &content); err != nil {
				continue
			}
			if content.Status == "error" && execErr == nil {
				execErr = &ExecError{
					Ename:     content.Ename,
					Evalue:    content.Evalue,
					Traceback: content.Traceback,
				}
			}
		}
	}

	if execErr != nil {
		return outputs, execErr
	}
	return outputs, nil
}

// Close tears down the channels websocket and deletes the gateway kernel.
func (c *GatewayConnection) Close(ctx context.Context) error {
	wsErr := c.ws.Close()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodDelete, c.launcher.baseURL+"/api/kernels/"+c.kernelID, nil)
	if err != nil {
		return errors.Join(wsErr, err)
	}
	c.launcher.authorize(req.Header)

	resp, err := c.launcher.client.Do(req)
	if err != nil {
		return errors.Join(wsErr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return errors.Join(wsErr, fmt.Errorf("deleting kernel %s: gateway returned %s", c.kernelID, resp.Status))
	}

	c.logger.Info("Kernel shut down")
	return wsErr
}
