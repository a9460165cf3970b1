package kernel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbserve/jupyter-mcp/internal/config"
	"github.com/nbserve/jupyter-mcp/internal/errors"
	"github.com/nbserve/jupyter-mcp/internal/logging"
	"github.com/nbserve/jupyter-mcp/internal/notebook"
)

// fakeGateway scripts the kernel gateway's REST API and channels websocket.
type fakeGateway struct {
	upgrader websocket.Upgrader

	started  int
	deleted  int
	authSeen string

	// respond handles one execute request received on the channels socket.
	respond func(ws *websocket.Conn, req message)
}

func (g *fakeGateway) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/kernels", func(w http.ResponseWriter, r *http.Request) {
		g.started++
		g.authSeen = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(kernelInfo{ID: "k1", Name: "python3"})
	})

	mux.HandleFunc("DELETE /api/kernels/k1", func(w http.ResponseWriter, r *http.Request) {
		g.deleted++
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /api/kernels/k1/channels", func(w http.ResponseWriter, r *http.Request) {
		ws, err := g.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		go func() {
			defer ws.Close()
			for {
				var req message
				if err := ws.ReadJSON(&req); err != nil {
					return
				}
				if g.respond != nil {
					g.respond(ws, req)
				}
			}
		}()
	})

	return mux
}

// publish builds a channel message answering the given parent.
func publish(parent header, msgType, channel string, content any) message {
	raw, _ := json.Marshal(content)
	return message{
		Header: header{
			MsgID:   parent.MsgID + "-" + msgType,
			Session: "kernel-session",
			MsgType: msgType,
			Version: protocolVersion,
		},
		ParentHeader: parent,
		Metadata:     map[string]any{},
		Content:      raw,
		Channel:      channel,
	}
}

func newTestLauncher(t *testing.T, g *fakeGateway, token string) (*GatewayLauncher, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(g.handler())
	t.Cleanup(srv.Close)

	cfg := config.GatewayConfig{
		URL:            srv.URL,
		Token:          token,
		KernelName:     "python3",
		ConnectTimeout: 5 * time.Second,
	}
	return NewGatewayLauncher(cfg, logging.NewLogger("error")), srv
}

func TestLaunchExecuteAndClose(t *testing.T) {
	gw := &fakeGateway{}
	gw.respond = func(ws *websocket.Conn, req message) {
		// An unrelated message must be skipped by the client.
		noise := publish(header{MsgID: "other-request"}, "stream", "iopub",
			streamContent{Name: "stdout", Text: "not yours\n"})
		_ = ws.WriteJSON(noise)

		count := 1
		for _, msg := range []message{
			publish(req.Header, "stream", "iopub", streamContent{Name: "stdout", Text: "hi\n"}),
			publish(req.Header, "execute_result", "iopub", dataContent{
				Data:           map[string]any{"text/plain": "2"},
				Metadata:       map[string]any{},
				ExecutionCount: &count,
			}),
			publish(req.Header, "status", "iopub", statusContent{ExecutionState: "idle"}),
			publish(req.Header, "execute_reply", "shell", replyContent{Status: "ok"}),
		} {
			_ = ws.WriteJSON(msg)
		}
	}

	launcher, _ := newTestLauncher(t, gw, "secret")

	conn, err := launcher.Launch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, gw.started)
	assert.Equal(t, "token secret", gw.authSeen)

	outputs, err := conn.Execute(context.Background(), "1+1")
	require.NoError(t, err)
	require.Len(t, outputs, 2)

	assert.Equal(t, notebook.OutputStream, outputs[0].OutputType)
	assert.Equal(t, "stdout", outputs[0].Name)
	assert.Equal(t, "hi\n", outputs[0].Text.String())

	assert.Equal(t, notebook.OutputExecuteResult, outputs[1].OutputType)
	assert.Equal(t, "2", outputs[1].Data["text/plain"])
	require.NotNil(t, outputs[1].ExecutionCount)
	assert.Equal(t, 1, *outputs[1].ExecutionCount)

	require.NoError(t, conn.Close(context.Background()))
	assert.Equal(t, 1, gw.deleted)
}

func TestExecuteReturnsExecError(t *testing.T) {
	gw := &fakeGateway{}
	gw.respond = func(ws *websocket.Conn, req message) {
		for _, msg := range []message{
			publish(req.Header, "error", "iopub", errorContent{
				Ename:     "ZeroDivisionError",
				Evalue:    "division by zero",
				Traceback: []string{"Traceback..."},
			}),
			publish(req.Header, "status", "iopub", statusContent{ExecutionState: "idle"}),
			publish(req.Header, "execute_reply", "shell", replyContent{
				Status: "error",
				Ename:  "ZeroDivisionError",
				Evalue: "division by zero",
			}),
		} {
			_ = ws.WriteJSON(msg)
		}
	}

	launcher, _ := newTestLauncher(t, gw, "")

	conn, err := launcher.Launch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gw.authSeen, "no Authorization header without a token")

	outputs, err := conn.Execute(context.Background(), "1/0")

	var execErr *ExecError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "ZeroDivisionError", execErr.Ename)
	assert.Equal(t, "ZeroDivisionError: division by zero", execErr.Error())

	// The error record is still captured as cell output.
	require.Len(t, outputs, 1)
	assert.Equal(t, notebook.OutputError, outputs[0].OutputType)
	assert.Equal(t, "division by zero", outputs[0].Evalue)
}

func TestExecuteSocketLossIsConnectionLost(t *testing.T) {
	gw := &fakeGateway{}
	gw.respond = func(ws *websocket.Conn, _ message) {
		_ = ws.Close()
	}

	launcher, _ := newTestLauncher(t, gw, "")

	conn, err := launcher.Launch(context.Background())
	require.NoError(t, err)

	_, err = conn.Execute(context.Background(), "x")
	assert.ErrorIs(t, err, errors.ErrConnectionLost)
}

func TestLaunchRejectedByGateway(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/kernels", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := config.GatewayConfig{URL: srv.URL, KernelName: "python3", ConnectTimeout: time.Second}
	launcher := NewGatewayLauncher(cfg, logging.NewLogger("error"))

	_, err := launcher.Launch(context.Background())
	assert.ErrorIs(t, err, errors.ErrConnectionLost)
}

func TestHTTPToWS(t *testing.T) {
	assert.Equal(t, "ws://host:8888", httpToWS("http://host:8888"))
	assert.Equal(t, "wss://host", httpToWS("https://host"))
}
