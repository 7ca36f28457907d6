package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/glidewm/glide/internal/manager"
	"github.com/glidewm/glide/internal/runtimepath"
)

// Client talks to a running glide daemon over the control socket.
type Client struct {
	timeout time.Duration
}

// NewClient creates a control client.
func NewClient() *Client {
	return &Client{timeout: 2 * time.Second}
}

func (c *Client) roundTrip(req *Request) (*Response, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, err
	}
	conn, err := net.DialTimeout("unix", socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("daemon not running (connect %s): %w", socketPath, err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(c.timeout))

	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Write(append(data, '\n')); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	var resp Response
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, fmt.Errorf("invalid response: %w", err)
	}
	if resp.Status != "OK" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}
	return &resp, nil
}

func (c *Client) request(cmd CommandType, payload interface{}) (*Response, error) {
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		req.Payload = data
	}
	return c.roundTrip(req)
}

// Ping round-trips a message; the daemon echoes it reversed.
func (c *Client) Ping(message string) (string, error) {
	resp, err := c.request(CommandPing, PingPayload{Message: message})
	if err != nil {
		return "", err
	}
	var data PingData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return "", err
	}
	return data.Message, nil
}

// GetStatus fetches the daemon status snapshot.
func (c *Client) GetStatus() (*StatusData, error) {
	resp, err := c.request(CommandGetStatus, nil)
	if err != nil {
		return nil, err
	}
	var data StatusData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// SendCommand forwards a layout command to the daemon.
func (c *Client) SendCommand(cmd manager.Command) error {
	_, err := c.request(CommandLayout, LayoutPayload{Command: cmd})
	return err
}

// Reload asks the daemon to reload its configuration.
func (c *Client) Reload() error {
	_, err := c.request(CommandReload, nil)
	return err
}

// RecordStart begins recording reactor input to a trace file.
func (c *Client) RecordStart(path string) error {
	_, err := c.request(CommandRecordStart, RecordPayload{Path: path})
	return err
}

// RecordStop finishes an in-progress recording.
func (c *Client) RecordStop() error {
	_, err := c.request(CommandRecordStop, nil)
	return err
}
