package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/glidewm/glide/internal/sys"
)

// SetWindowFrame applies a frame through EWMH and reads back the geometry
// the window ended up with. Implements sys.WindowServer.
func (c *Connection) SetWindowFrame(wid sys.WindowID, frame sys.Rect) (sys.Rect, error) {
	xid, err := c.xid(wid)
	if err != nil {
		return sys.Rect{}, err
	}
	if err := c.unmaximize(xid); err != nil {
		// Not every client supports the maximized states; carry on.
		_ = err
	}

	win := xwindow.New(c.XUtil, xid)
	if err := ewmh.MoveresizeWindow(c.XUtil, xid, frame.X, frame.Y, frame.Width, frame.Height); err != nil {
		// Some window managers ignore the EWMH request; configure the
		// window directly.
		win.MoveResize(frame.X, frame.Y, frame.Width, frame.Height)
	}

	geom, err := win.DecorGeometry()
	if err != nil {
		return frame, nil
	}
	return sys.NewRect(geom.X(), geom.Y(), geom.Width(), geom.Height()), nil
}

// RaiseWindow activates and raises a window via _NET_ACTIVE_WINDOW. The
// message is built by hand because the xgbutil helper panics on this
// library version (uint vs int type assertion).
func (c *Connection) RaiseWindow(wid sys.WindowID) error {
	xid, err := c.xid(wid)
	if err != nil {
		return err
	}
	return c.sendRootMessage(xid, "_NET_ACTIVE_WINDOW", []uint32{2, 0, 0, 0, 0})
}

// MoveWindowToSpace moves a window to another virtual desktop via
// _NET_WM_DESKTOP.
func (c *Connection) MoveWindowToSpace(wid sys.WindowID, space sys.SpaceID) error {
	xid, err := c.xid(wid)
	if err != nil {
		return err
	}
	return c.sendRootMessage(xid, "_NET_WM_DESKTOP", []uint32{uint32(space), 2, 0, 0, 0})
}

func (c *Connection) sendRootMessage(window xproto.Window, atom string, data []uint32) error {
	atomReply, err := xproto.InternAtom(c.XUtil.Conn(), false, uint16(len(atom)), atom).Reply()
	if err != nil {
		return fmt.Errorf("failed to intern %s: %w", atom, err)
	}
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: window,
		Type:   atomReply.Atom,
		Data:   xproto.ClientMessageDataUnionData32New(data),
	}
	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}

func (c *Connection) unmaximize(xid xproto.Window) error {
	states, err := ewmh.WmStateGet(c.XUtil, xid)
	if err != nil {
		return err
	}
	for _, state := range states {
		if state == "_NET_WM_STATE_MAXIMIZED_HORZ" || state == "_NET_WM_STATE_MAXIMIZED_VERT" {
			ewmh.WmStateReq(c.XUtil, xid, 0, state)
		}
	}
	return nil
}

// windowInfo reads the properties the layout manager uses to classify a
// window.
func (c *Connection) windowInfo(xid xproto.Window) sys.WindowInfo {
	info := sys.WindowInfo{IsStandard: true, IsResizable: true}

	if types, err := ewmh.WmWindowTypeGet(c.XUtil, xid); err == nil {
		for _, t := range types {
			switch t {
			case "_NET_WM_WINDOW_TYPE_NORMAL":
			case "_NET_WM_WINDOW_TYPE_DIALOG", "_NET_WM_WINDOW_TYPE_UTILITY",
				"_NET_WM_WINDOW_TYPE_SPLASH":
				info.IsStandard = false
			case "_NET_WM_WINDOW_TYPE_DESKTOP", "_NET_WM_WINDOW_TYPE_DOCK",
				"_NET_WM_WINDOW_TYPE_NOTIFICATION", "_NET_WM_WINDOW_TYPE_MENU",
				"_NET_WM_WINDOW_TYPE_TOOLBAR":
				info.HasLayer = true
				info.Layer = 1
			}
		}
	}

	if hints, err := icccm.WmNormalHintsGet(c.XUtil, xid); err == nil {
		fixedW := hints.MinWidth != 0 && hints.MinWidth == hints.MaxWidth
		fixedH := hints.MinHeight != 0 && hints.MinHeight == hints.MaxHeight
		if fixedW && fixedH {
			info.IsResizable = false
		}
	}

	if name, err := ewmh.WmNameGet(c.XUtil, xid); err == nil {
		info.Title = name
	}
	if class, err := icccm.WmClassGet(c.XUtil, xid); err == nil {
		info.AppID = class.Class
	}
	return info
}

// windowFrame reads a window's decorated geometry.
func (c *Connection) windowFrame(xid xproto.Window) (sys.Rect, error) {
	geom, err := xwindow.New(c.XUtil, xid).DecorGeometry()
	if err != nil {
		return sys.Rect{}, err
	}
	return sys.NewRect(geom.X(), geom.Y(), geom.Width(), geom.Height()), nil
}

// windowSpace returns the desktop a window is on; sticky windows report the
// current desktop.
func (c *Connection) windowSpace(xid xproto.Window) (sys.SpaceID, error) {
	desktop, err := ewmh.WmDesktopGet(c.XUtil, xid)
	if err != nil {
		return 0, fmt.Errorf("failed to get window desktop: %w", err)
	}
	if desktop == 0xFFFFFFFF {
		current, err := ewmh.CurrentDesktopGet(c.XUtil)
		if err != nil {
			return 0, err
		}
		return sys.SpaceID(current), nil
	}
	return sys.SpaceID(desktop), nil
}
