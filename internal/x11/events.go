package x11

import (
	"sort"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/charmbracelet/log"

	"github.com/glidewm/glide/internal/manager"
	"github.com/glidewm/glide/internal/reactor"
	"github.com/glidewm/glide/internal/sys"
)

// EventSource pumps X property and configure notifications into the
// reactor. Observed geometry events are stamped with the last transaction
// the worker applied so the reactor can reject its own echoes.
type EventSource struct {
	conn    *Connection
	reactor *reactor.Reactor
	txns    *sys.TxnTable
	logger  *log.Logger
	known   map[xproto.Window]bool
}

// NewEventSource wires the connection's X events to the reactor.
func NewEventSource(conn *Connection, r *reactor.Reactor, txns *sys.TxnTable, logger *log.Logger) *EventSource {
	if logger == nil {
		logger = log.Default()
	}
	return &EventSource{
		conn:    conn,
		reactor: r,
		txns:    txns,
		logger:  logger,
		known:   make(map[xproto.Window]bool),
	}
}

// Start subscribes to root window events and performs the initial sweep of
// screens and windows.
func (s *EventSource) Start() error {
	if err := xwindowListen(s.conn); err != nil {
		return err
	}

	xevent.PropertyNotifyFun(s.onRootProperty).Connect(s.conn.XUtil, s.conn.Root)
	xevent.ConfigureNotifyFun(s.onConfigure).Connect(s.conn.XUtil, s.conn.Root)
	xevent.DestroyNotifyFun(s.onDestroy).Connect(s.conn.XUtil, s.conn.Root)

	s.publishScreens()
	s.publishWindows()
	return nil
}

func xwindowListen(c *Connection) error {
	return xproto.ChangeWindowAttributesChecked(
		c.XUtil.Conn(),
		c.Root,
		xproto.CwEventMask,
		[]uint32{xproto.EventMaskPropertyChange | xproto.EventMaskSubstructureNotify},
	).Check()
}

// publishScreens sends the current screen/space arrangement.
func (s *EventSource) publishScreens() {
	screens, err := s.conn.Screens()
	if err != nil {
		s.logger.Warn("failed to read screens", "err", err)
		return
	}
	s.reactor.Post(reactor.ScreenParametersChanged{Screens: screens})
}

// publishWindows sweeps the EWMH client list and reports windows grouped by
// application.
func (s *EventSource) publishWindows() {
	clients, err := ewmh.ClientListGet(s.conn.XUtil)
	if err != nil {
		s.logger.Warn("failed to read client list", "err", err)
		return
	}

	type appKey struct {
		space sys.SpaceID
		pid   int32
	}
	byApp := make(map[appKey][]manager.WindowWithInfo)
	seen := make(map[xproto.Window]bool)

	for _, xid := range clients {
		seen[xid] = true
		wid, err := s.conn.windowID(xid)
		if err != nil {
			continue
		}
		space, err := s.conn.windowSpace(xid)
		if err != nil {
			continue
		}
		frame, err := s.conn.windowFrame(xid)
		if err != nil {
			continue
		}
		info := s.conn.windowInfo(xid)
		key := appKey{space: space, pid: wid.PID}
		byApp[key] = append(byApp[key], manager.WindowWithInfo{ID: wid, Info: info, Frame: frame})

		if !s.known[xid] {
			s.known[xid] = true
			s.listenToWindow(xid)
		}
	}

	pidSet := make(map[int32]bool)
	for key, windows := range byApp {
		pidSet[key.pid] = true
		s.reactor.Post(reactor.AppWindowsUpdated{Space: key.space, PID: key.pid, Windows: windows})
	}
	pids := make([]int32, 0, len(pidSet))
	for pid := range pidSet {
		pids = append(pids, pid)
	}
	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })
	s.reactor.Post(reactor.AppsRunning{PIDs: pids})

	// Windows gone from the client list were destroyed without a
	// DestroyNotify reaching us.
	for xid := range s.known {
		if !seen[xid] {
			delete(s.known, xid)
			if wid, ok := s.conn.forgetWindow(xid); ok {
				s.txns.Forget(wid)
				s.reactor.Post(reactor.WindowDestroyed{Window: wid})
			}
		}
	}
}

func (s *EventSource) listenToWindow(xid xproto.Window) {
	err := xproto.ChangeWindowAttributesChecked(
		s.conn.XUtil.Conn(),
		xid,
		xproto.CwEventMask,
		[]uint32{xproto.EventMaskStructureNotify},
	).Check()
	if err != nil {
		s.logger.Debug("failed to listen to window", "xid", xid, "err", err)
	}
}

func (s *EventSource) onRootProperty(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
	name, err := atomName(xu, ev.Atom)
	if err != nil {
		return
	}
	switch name {
	case "_NET_CURRENT_DESKTOP":
		space, err := s.conn.CurrentSpace()
		if err != nil {
			return
		}
		screens, err := s.conn.Screens()
		if err != nil || len(screens) == 0 {
			return
		}
		s.reactor.Post(reactor.SpaceChanged{Space: space, Screen: screens[0].Frame})
		s.publishWindows()

	case "_NET_CLIENT_LIST":
		s.publishWindows()

	case "_NET_ACTIVE_WINDOW":
		xid, err := ewmh.ActiveWindowGet(xu)
		if err != nil || xid == 0 {
			return
		}
		wid, err := s.conn.windowID(xid)
		if err != nil {
			return
		}
		s.reactor.Post(reactor.WindowFocused{Window: wid})

	case "_NET_DESKTOP_GEOMETRY", "_NET_WORKAREA":
		s.publishScreens()
	}
}

func (s *EventSource) onConfigure(_ *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
	wid, err := s.conn.windowID(ev.Window)
	if err != nil {
		return
	}
	if s.txns.Suspended(wid) {
		// The reactor is animating this window; its own writes echo
		// back as configure events and must not feed the model.
		return
	}
	s.reactor.Post(reactor.WindowFrameChanged{
		Window:      wid,
		Frame:       sys.NewRect(int(ev.X), int(ev.Y), int(ev.Width), int(ev.Height)),
		LastSeenTxn: s.txns.LastSeen(wid),
	})
}

func (s *EventSource) onDestroy(_ *xgbutil.XUtil, ev xevent.DestroyNotifyEvent) {
	delete(s.known, ev.Window)
	if wid, ok := s.conn.forgetWindow(ev.Window); ok {
		s.txns.Forget(wid)
		s.reactor.Post(reactor.WindowDestroyed{Window: wid})
	}
}

func atomName(xu *xgbutil.XUtil, atom xproto.Atom) (string, error) {
	reply, err := xproto.GetAtomName(xu.Conn(), atom).Reply()
	if err != nil {
		return "", err
	}
	return reply.Name, nil
}
