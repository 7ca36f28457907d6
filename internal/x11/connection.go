// Package x11 is the EWMH-backed window system layer: it implements the
// sys boundary against an X server, mapping virtual desktops to spaces and
// pumping X events into the reactor.
package x11

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/glidewm/glide/internal/sys"
)

// Connection manages the X11 connection and the window-id registry.
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	mu       sync.Mutex
	byXID    map[xproto.Window]sys.WindowID
	byWindow map[sys.WindowID]xproto.Window
	nextSlot map[int32]uint32
}

// NewConnection connects to the X server and initializes the extensions the
// backend needs.
func NewConnection() (*Connection, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}

	// Key bindings need the keybind module initialized up front.
	keybind.Initialize(xu)

	return &Connection{
		XUtil:    xu,
		Root:     xu.RootWin(),
		byXID:    make(map[xproto.Window]sys.WindowID),
		byWindow: make(map[sys.WindowID]xproto.Window),
		nextSlot: make(map[int32]uint32),
	}, nil
}

// EventLoop runs the X event loop. Blocks until the connection closes.
func (c *Connection) EventLoop() {
	xevent.Main(c.XUtil)
}

// Close disconnects from the X server.
func (c *Connection) Close() {
	xevent.Quit(c.XUtil)
	c.XUtil.Conn().Close()
}

// windowID returns the stable (pid, slot) identifier for an X window,
// registering it on first sight.
func (c *Connection) windowID(xid xproto.Window) (sys.WindowID, error) {
	c.mu.Lock()
	if wid, ok := c.byXID[xid]; ok {
		c.mu.Unlock()
		return wid, nil
	}
	c.mu.Unlock()

	pid, err := ewmh.WmPidGet(c.XUtil, xid)
	if err != nil || pid == 0 {
		// Some clients never set _NET_WM_PID; treat each as its own
		// single-window process keyed by the X id.
		pid = uint(xid)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if wid, ok := c.byXID[xid]; ok {
		return wid, nil
	}
	p := int32(pid)
	c.nextSlot[p]++
	wid := sys.NewWindowID(p, c.nextSlot[p])
	c.byXID[xid] = wid
	c.byWindow[wid] = xid
	return wid, nil
}

// xid resolves a WindowID back to the X window.
func (c *Connection) xid(wid sys.WindowID) (xproto.Window, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	xid, ok := c.byWindow[wid]
	if !ok {
		return 0, fmt.Errorf("unknown window %v", wid)
	}
	return xid, nil
}

// forgetWindow drops a destroyed window from the registry and returns its
// identifier, if it was known.
func (c *Connection) forgetWindow(xid xproto.Window) (sys.WindowID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	wid, ok := c.byXID[xid]
	if ok {
		delete(c.byXID, xid)
		delete(c.byWindow, wid)
	}
	return wid, ok
}
