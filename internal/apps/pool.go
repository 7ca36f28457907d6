// Package apps runs one worker goroutine per application process. Workers
// receive frame requests from the reactor in order and apply them through
// the window server; results and failures flow back as reactor events.
package apps

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/glidewm/glide/internal/sys"
)

// Pool routes reactor requests to per-application workers. It implements
// the reactor's Sink interface; requests for one application preserve
// emission order.
type Pool struct {
	server    sys.WindowServer
	txns      *sys.TxnTable
	logger    *log.Logger
	onFailure func(sys.WindowID)

	mu      sync.Mutex
	workers map[int32]chan sys.Request
	wg      sync.WaitGroup
	closed  bool
}

// NewPool creates a worker pool. onFailure is invoked (from a worker
// goroutine) when a frame write fails; the caller turns it into a reactor
// event.
func NewPool(server sys.WindowServer, txns *sys.TxnTable, logger *log.Logger, onFailure func(sys.WindowID)) *Pool {
	if logger == nil {
		logger = log.Default()
	}
	return &Pool{
		server:    server,
		txns:      txns,
		logger:    logger,
		onFailure: onFailure,
		workers:   make(map[int32]chan sys.Request),
	}
}

// Dispatch routes a request to the worker owning the window's application,
// starting one on first use.
func (p *Pool) Dispatch(req sys.Request) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	ch, ok := p.workers[req.Window.PID]
	if !ok {
		ch = make(chan sys.Request, 64)
		p.workers[req.Window.PID] = ch
		p.wg.Add(1)
		go p.run(req.Window.PID, ch)
	}
	p.mu.Unlock()
	ch <- req
}

// Close shuts every worker down after its queue drains.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	for _, ch := range p.workers {
		close(ch)
	}
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Pool) run(pid int32, ch <-chan sys.Request) {
	defer p.wg.Done()
	for req := range ch {
		p.handle(pid, req)
	}
}

func (p *Pool) handle(pid int32, req sys.Request) {
	switch req.Kind {
	case sys.ReqSetWindowFrame:
		observed, err := p.server.SetWindowFrame(req.Window, req.Frame)
		if err != nil {
			p.logger.Debug("frame write failed", "pid", pid, "window", req.Window, "err", err)
			if p.onFailure != nil {
				p.onFailure(req.Window)
			}
			return
		}
		p.txns.MarkSeen(req.Window, req.Txn)
		if observed != req.Frame {
			p.logger.Debug("app constrained frame",
				"window", req.Window, "want", req.Frame, "got", observed)
		}

	case sys.ReqBeginWindowAnimation:
		p.txns.SetSuspended(req.Window, true)

	case sys.ReqEndWindowAnimation:
		p.txns.SetSuspended(req.Window, false)

	case sys.ReqRaiseWindow:
		if err := p.server.RaiseWindow(req.Window); err != nil {
			p.logger.Debug("raise failed", "window", req.Window, "err", err)
		}

	case sys.ReqStartObserving, sys.ReqStopObserving:
		// Observation subscriptions are managed by the event source; the
		// table entry is enough bookkeeping here.
		if req.Kind == sys.ReqStopObserving {
			p.txns.Forget(req.Window)
		}
	}
}
