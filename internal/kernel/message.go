package kernel

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// protocolVersion is the Jupyter messaging protocol version spoken over the
// kernel channels websocket.
const protocolVersion = "5.3"

// header identifies one message on the kernel channels.
type header struct {
	MsgID    string `json:"msg_id"`
	Username string `json:"username"`
	Session  string `json:"session"`
	Date     string `json:"date,omitempty"`
	MsgType  string `json:"msg_type"`
	Version  string `json:"version"`
}

// message is the envelope exchanged over the channels websocket. Content is
// kept raw on the read path and decoded per msg_type.
type message struct {
	Header       header          `json:"header"`
	ParentHeader header          `json:"parent_header"`
	Metadata     map[string]any  `json:"metadata"`
	Content      json.RawMessage `json:"content"`
	Channel      string          `json:"channel"`
}

// executeRequestContent is the shell execute_request payload.
type executeRequestContent struct {
	Code            string         `json:"code"`
	Silent          bool           `json:"silent"`
	StoreHistory    bool           `json:"store_history"`
	UserExpressions map[string]any `json:"user_expressions"`
	AllowStdin      bool           `json:"allow_stdin"`
	StopOnError     bool           `json:"stop_on_error"`
}

// streamContent is the iopub stream payload.
type streamContent struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// dataContent is the iopub execute_result / display_data payload.
type dataContent struct {
	Data           map[string]any `json:"data"`
	Metadata       map[string]any `json:"metadata"`
	ExecutionCount *int           `json:"execution_count"`
}

// errorContent is the iopub error / shell error-reply payload.
type errorContent struct {
	Ename     string   `json:"ename"`
	Evalue    string   `json:"evalue"`
	Traceback []string `json:"traceback"`
}

// statusContent is the iopub kernel status payload.
type statusContent struct {
	ExecutionState string `json:"execution_state"`
}

// replyContent is the shell execute_reply payload.
type replyContent struct {
	Status    string   `json:"status"`
	Ename     string   `json:"ename"`
	Evalue    string   `json:"evalue"`
	Traceback []string `json:"traceback"`
}

// newExecuteRequest builds a shell execute_request message for the given
// client session.
func newExecuteRequest(session, code string) (message, error) {
	content, err := json.Marshal(executeRequestContent{
		Code:            code,
		StoreHistory:    true,
		UserExpressions: map[string]any{},
		StopOnError:     true,
	})
	if err != nil {
		return message{}, err
	}

	return message{
		Header: header{
			MsgID:    uuid.NewString(),
			Username: "jupyter-mcp",
			Session:  session,
			Date:     time.Now().UTC().Format(time.RFC3339),
			MsgType:  "execute_request",
			Version:  protocolVersion,
		},
		Metadata: map[string]any{},
		Content:  content,
		Channel:  "shell",
	}, nil
}
