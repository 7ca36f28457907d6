// Package ipc is the unix-socket control channel between the glide CLI and
// the daemon. Requests and responses are single-line JSON.
package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/glidewm/glide/internal/manager"
)

// CommandType enumerates control requests.
type CommandType string

const (
	CommandPing        CommandType = "PING"
	CommandGetStatus   CommandType = "GET_STATUS"
	CommandLayout      CommandType = "LAYOUT_COMMAND"
	CommandReload      CommandType = "RELOAD"
	CommandRecordStart CommandType = "RECORD_START"
	CommandRecordStop  CommandType = "RECORD_STOP"
)

// Request is an IPC request from client to daemon.
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response is an IPC response from daemon to client.
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// PingPayload carries an arbitrary message echoed back reversed.
type PingPayload struct {
	Message string `json:"message,omitempty"`
}

// PingData is the PING response body.
type PingData struct {
	Message string `json:"message"`
}

// StatusData is the GET_STATUS response body.
type StatusData struct {
	DaemonRunning bool   `json:"daemon_running"`
	ActiveSpace   uint64 `json:"active_space"`
	SpaceCount    int    `json:"space_count"`
	WindowCount   int    `json:"window_count"`
	LayoutMode    string `json:"layout_mode"`
	Animating     bool   `json:"animating"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Tree          string `json:"tree,omitempty"`
}

// LayoutPayload carries a layout command.
type LayoutPayload struct {
	Command manager.Command `json:"command"`
}

// RecordPayload names the trace file for RECORD_START.
type RecordPayload struct {
	Path string `json:"path"`
}

// NewOKResponse creates a successful response with optional data.
func NewOKResponse(data interface{}) (*Response, error) {
	var raw json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		raw = bytes
	}
	return &Response{Status: "OK", Data: raw}, nil
}

// NewErrorResponse creates an error response.
func NewErrorResponse(errMsg string) *Response {
	return &Response{Status: "ERROR", Error: errMsg}
}

// ParseRequest parses a request from JSON bytes.
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes.
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
