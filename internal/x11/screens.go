package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/glidewm/glide/internal/sys"
)

// CurrentSpace returns the active virtual desktop.
func (c *Connection) CurrentSpace() (sys.SpaceID, error) {
	desktop, err := ewmh.CurrentDesktopGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to get current desktop: %w", err)
	}
	return sys.SpaceID(desktop), nil
}

// Screens reports the active monitors with the current space. X11 shows one
// desktop across all monitors, so every screen carries the same space.
func (c *Connection) Screens() ([]sys.Screen, error) {
	space, err := c.CurrentSpace()
	if err != nil {
		return nil, err
	}

	if err := randr.Init(c.XUtil.Conn()); err != nil {
		// No RandR: fall back to the root window geometry.
		setup := c.XUtil.Screen()
		return []sys.Screen{{
			Frame: sys.NewRect(0, 0, int(setup.WidthInPixels), int(setup.HeightInPixels)),
			Space: space,
		}}, nil
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var screens []sys.Screen
	for _, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}
		frame := sys.NewRect(int(info.X), int(info.Y), int(info.Width), int(info.Height))
		screens = append(screens, sys.Screen{Frame: c.applyWorkArea(frame), Space: space})
	}
	if len(screens) == 0 {
		setup := c.XUtil.Screen()
		screens = []sys.Screen{{
			Frame: sys.NewRect(0, 0, int(setup.WidthInPixels), int(setup.HeightInPixels)),
			Space: space,
		}}
	}
	return screens, nil
}

// applyWorkArea intersects a monitor frame with the EWMH work area so
// panels and docks are left alone.
func (c *Connection) applyWorkArea(frame sys.Rect) sys.Rect {
	areas, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(areas) == 0 {
		return frame
	}
	desktop, err := ewmh.CurrentDesktopGet(c.XUtil)
	if err != nil || int(desktop) >= len(areas) {
		desktop = 0
	}
	wa := areas[desktop]
	work := sys.NewRect(int(wa.X), int(wa.Y), int(wa.Width), int(wa.Height))

	x1 := max(frame.X, work.X)
	y1 := max(frame.Y, work.Y)
	x2 := min(frame.MaxX(), work.MaxX())
	y2 := min(frame.MaxY(), work.MaxY())
	if x2 <= x1 || y2 <= y1 {
		return frame
	}
	return sys.NewRect(x1, y1, x2-x1, y2-y1)
}
