package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/glidewm/glide/internal/manager"
	"github.com/glidewm/glide/internal/reactor"
	"github.com/glidewm/glide/internal/replay"
	"github.com/glidewm/glide/internal/runtimepath"
)

// Server handles control requests from glide CLI clients.
type Server struct {
	socketPath string
	listener   net.Listener
	logger     *log.Logger
	reactor    *reactor.Reactor
	startTime  time.Time

	mu           sync.Mutex
	recorder     *replay.Recorder
	shuttingDown bool
}

// NewServer creates a control server bound to the runtime socket path.
func NewServer(r *reactor.Reactor, logger *log.Logger) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve control socket path: %w", err)
	}
	os.Remove(socketPath)
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		socketPath: socketPath,
		logger:     logger,
		reactor:    r,
		startTime:  time.Now(),
	}, nil
}

// Start begins listening for connections.
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create control socket: %w", err)
	}
	s.listener = listener
	if err := os.Chmod(s.socketPath, 0o600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}
	s.logger.Info("control server listening", "socket", s.socketPath)
	go s.acceptLoop()
	return nil
}

// Stop shuts the server down and removes the socket.
func (s *Server) Stop() {
	s.mu.Lock()
	s.shuttingDown = true
	if s.recorder != nil {
		s.reactor.SetRecorder(nil)
		s.recorder.Close()
		s.recorder = nil
	}
	s.mu.Unlock()
	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.mu.Lock()
			done := s.shuttingDown
			s.mu.Unlock()
			if done {
				return
			}
			s.logger.Warn("control accept error", "err", err)
			continue
		}
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("control read error", "err", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.send(conn, NewErrorResponse(fmt.Sprintf("invalid request: %v", err)))
		return
	}

	s.send(conn, s.handleRequest(req))
}

func (s *Server) handleRequest(req *Request) *Response {
	switch req.Command {
	case CommandPing:
		var payload PingPayload
		if len(req.Payload) > 0 {
			if err := json.Unmarshal(req.Payload, &payload); err != nil {
				return NewErrorResponse(fmt.Sprintf("invalid ping payload: %v", err))
			}
		}
		runes := []rune(payload.Message)
		for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
			runes[i], runes[j] = runes[j], runes[i]
		}
		resp, _ := NewOKResponse(PingData{Message: string(runes)})
		return resp

	case CommandGetStatus:
		status := s.reactor.CurrentStatus()
		resp, _ := NewOKResponse(StatusData{
			DaemonRunning: true,
			ActiveSpace:   uint64(status.ActiveSpace),
			SpaceCount:    status.SpaceCount,
			WindowCount:   status.WindowCount,
			LayoutMode:    status.LayoutMode,
			Animating:     status.Animating,
			UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
			Tree:          status.DebugTree,
		})
		return resp

	case CommandLayout:
		var payload LayoutPayload
		if err := json.Unmarshal(req.Payload, &payload); err != nil {
			return NewErrorResponse(fmt.Sprintf("invalid layout payload: %v", err))
		}
		if payload.Command.Op == "" {
			return NewErrorResponse("command op is required")
		}
		s.reactor.Post(reactor.CommandEvent{Command: payload.Command})
		resp, _ := NewOKResponse(nil)
		return resp

	case CommandReload:
		s.reactor.Post(reactor.CommandEvent{Command: manager.Command{Op: manager.OpReloadConfig}})
		resp, _ := NewOKResponse(nil)
		return resp

	case CommandRecordStart:
		var payload RecordPayload
		if err := json.Unmarshal(req.Payload, &payload); err != nil {
			return NewErrorResponse(fmt.Sprintf("invalid record payload: %v", err))
		}
		if payload.Path == "" {
			return NewErrorResponse("trace path is required")
		}
		rec, err := replay.NewRecorder(payload.Path)
		if err != nil {
			return NewErrorResponse(err.Error())
		}
		s.mu.Lock()
		if s.recorder != nil {
			s.mu.Unlock()
			rec.Close()
			return NewErrorResponse("already recording")
		}
		s.recorder = rec
		s.mu.Unlock()
		s.reactor.SetRecorder(rec)
		s.logger.Info("trace recording started", "path", payload.Path)
		resp, _ := NewOKResponse(nil)
		return resp

	case CommandRecordStop:
		s.mu.Lock()
		rec := s.recorder
		s.recorder = nil
		s.mu.Unlock()
		if rec == nil {
			return NewErrorResponse("not recording")
		}
		s.reactor.SetRecorder(nil)
		if err := rec.Close(); err != nil {
			return NewErrorResponse(err.Error())
		}
		resp, _ := NewOKResponse(nil)
		return resp
	}
	return NewErrorResponse(fmt.Sprintf("unknown command: %s", req.Command))
}

func (s *Server) send(conn net.Conn, resp *Response) {
	data, err := resp.Marshal()
	if err != nil {
		s.logger.Warn("failed to marshal response", "err", err)
		return
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		s.logger.Warn("failed to send response", "err", err)
	}
}
