package replay

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/glidewm/glide/internal/config"
	"github.com/glidewm/glide/internal/manager"
	"github.com/glidewm/glide/internal/reactor"
	"github.com/glidewm/glide/internal/sys"
)

// CaptureSink collects requests in emission order.
type CaptureSink struct {
	Requests []sys.Request
}

func (s *CaptureSink) Dispatch(req sys.Request) {
	s.Requests = append(s.Requests, req)
}

// Run replays a trace against a fresh reactor and returns the request
// stream it produced. Identical traces produce identical streams.
func Run(path string, cfg *config.Config) ([]sys.Request, error) {
	events, err := ReadTrace(path)
	if err != nil {
		return nil, err
	}

	sink := &CaptureSink{}
	logger := log.New(io.Discard)
	r := reactor.New(cfg, manager.New(), sink, logger)
	for _, te := range events {
		r.HandleEvent(te.Event, te.At)
	}
	return sink.Requests, nil
}

// FormatRequests renders a request stream in a stable one-line-per-request
// form suitable for byte comparison and printing.
func FormatRequests(requests []sys.Request) string {
	var b strings.Builder
	for _, req := range requests {
		switch req.Kind {
		case sys.ReqSetWindowFrame:
			fmt.Fprintf(&b, "%s %s %s txn=%d\n", req.Kind, req.Window, req.Frame, req.Txn)
		case sys.ReqRaiseWindow:
			fmt.Fprintf(&b, "%s %s seq=%d\n", req.Kind, req.Window, req.Sequence)
		default:
			fmt.Fprintf(&b, "%s %s\n", req.Kind, req.Window)
		}
	}
	return b.String()
}
