// Package manager translates high-level commands and cleaned-up window
// events into layout tree operations, and produces per-window target frames.
// It sits between the reactor and the layout model.
package manager

import (
	"sort"
	"time"

	"github.com/glidewm/glide/internal/config"
	"github.com/glidewm/glide/internal/layout"
	"github.com/glidewm/glide/internal/sys"
)

// LayoutMode selects how a space is arranged.
type LayoutMode string

const (
	ModeTree   LayoutMode = "tree"
	ModeScroll LayoutMode = "scroll"
)

// EventResponse tells the reactor which windows to raise and focus after a
// command or event. A zero FocusWindow means focus does not move.
type EventResponse struct {
	// RaiseWindows are raised quietly, without focus events.
	RaiseWindows []sys.WindowID
	// FocusWindow is raised last and focused.
	FocusWindow sys.WindowID
	// Exit requests daemon shutdown (save-and-exit).
	Exit bool
	// ReloadConfig requests a config reload from disk.
	ReloadConfig bool
	// ConfigPath is a config file to load (config-update).
	ConfigPath string
}

type spaceState struct {
	mapping   *layout.SpaceLayoutMapping
	mode      LayoutMode
	viewport  *layout.ViewportState
	centering config.CenteringMode // "" = use config default
	disabled  bool
	// pendingColumn is a column index to bring on screen at the next
	// layout pass, set on focus changes in scroll mode.
	pendingColumn *int
}

// floatingInfo is the state kept per floating window: its explicit frame
// plus enough context to put it back where it was when it re-tiles.
type floatingInfo struct {
	Frame sys.Rect
	// prevAnchor/nextAnchor are the tiled neighbors at float time; used
	// so that toggling floating twice restores the original position.
	prevAnchor sys.WindowID
	nextAnchor sys.WindowID
	weight     float64
}

// Manager owns the layout tree and all per-space layout state.
type Manager struct {
	tree   *layout.LayoutTree
	spaces map[sys.SpaceID]*spaceState

	// floating windows and their explicit frames
	floating       map[sys.WindowID]floatingInfo
	activeFloating map[sys.SpaceID]map[sys.WindowID]bool

	focused           sys.WindowID
	lastFloatingFocus sys.WindowID

	drag *dragState
}

// New creates an empty manager.
func New() *Manager {
	return &Manager{
		tree:           layout.NewTree(),
		spaces:         make(map[sys.SpaceID]*spaceState),
		floating:       make(map[sys.WindowID]floatingInfo),
		activeFloating: make(map[sys.SpaceID]map[sys.WindowID]bool),
	}
}

// Tree exposes the underlying layout tree for tests and debug dumps.
func (m *Manager) Tree() *layout.LayoutTree { return m.tree }

// FocusedWindow returns the window the manager believes is focused.
func (m *Manager) FocusedWindow() (sys.WindowID, bool) {
	return m.focused, !m.focused.IsZero()
}

func (m *Manager) space(id sys.SpaceID) (*spaceState, bool) {
	st, ok := m.spaces[id]
	return st, ok
}

func (m *Manager) layoutFor(id sys.SpaceID) (layout.LayoutID, bool) {
	st, ok := m.spaces[id]
	if !ok || st.disabled {
		return 0, false
	}
	return st.mapping.ActiveLayout(), true
}

// SpaceDisabled reports whether tiling is off for a space.
func (m *Manager) SpaceDisabled(id sys.SpaceID) bool {
	st, ok := m.spaces[id]
	return ok && st.disabled
}

// SpaceExposed records that a space became visible at a screen size,
// creating or re-keying its layout.
func (m *Manager) SpaceExposed(id sys.SpaceID, size sys.Size) {
	st, ok := m.spaces[id]
	if !ok {
		st = &spaceState{
			mapping:  layout.NewSpaceLayoutMapping(size, m.tree),
			mode:     ModeTree,
			viewport: layout.NewViewport(size.Width),
		}
		m.spaces[id] = st
		return
	}
	st.mapping.ActivateSize(size, m.tree)
	st.viewport.SetScreenWidth(size.Width)
}

// windowClass mirrors the original's window classification: untracked
// windows are ignored entirely, non-resizable or non-standard ones float by
// default.
type windowClass int

const (
	classUntracked windowClass = iota
	classFloatByDefault
	classRegular
)

func classify(info sys.WindowInfo) windowClass {
	switch {
	case info.HasLayer && info.Layer != 0:
		return classUntracked
	case !info.IsStandard, !info.IsResizable:
		return classFloatByDefault
	default:
		return classRegular
	}
}

// WindowWithInfo pairs a window with its discovery metadata.
type WindowWithInfo struct {
	ID    sys.WindowID
	Info  sys.WindowInfo
	Frame sys.Rect
}

// WindowsOnScreenUpdated reconciles the set of pid's windows on a space,
// preserving windows already in the layout.
func (m *Manager) WindowsOnScreenUpdated(id sys.SpaceID, pid int32, windows []WindowWithInfo) {
	l, ok := m.layoutFor(id)
	if !ok {
		return
	}
	if !m.lastFloatingFocus.IsZero() && m.lastFloatingFocus.PID == pid {
		found := false
		for _, w := range windows {
			if w.ID == m.lastFloatingFocus {
				found = true
				break
			}
		}
		if !found {
			m.lastFloatingFocus = sys.WindowID{}
		}
	}

	active := m.activeFloatingFor(id)
	for wid := range active {
		if wid.PID == pid {
			delete(active, wid)
		}
	}

	var tiled []sys.WindowID
	for _, w := range windows {
		if info, isFloating := m.floating[w.ID]; isFloating {
			active[w.ID] = true
			info.Frame = w.Frame
			m.floating[w.ID] = info
			continue
		}
		if _, inLayout := m.tree.WindowNode(l, w.ID); inLayout {
			tiled = append(tiled, w.ID)
			continue
		}
		switch classify(w.Info) {
		case classFloatByDefault:
			m.addFloating(w.ID, id, w.Frame)
		case classRegular:
			tiled = append(tiled, w.ID)
		}
	}
	m.tree.SetWindowsForApp(l, pid, tiled)
}

// WindowAdded inserts a newly discovered window behind the selection.
func (m *Manager) WindowAdded(id sys.SpaceID, w WindowWithInfo) {
	l, ok := m.layoutFor(id)
	if !ok {
		return
	}
	switch classify(w.Info) {
	case classFloatByDefault:
		m.addFloating(w.ID, id, w.Frame)
	case classRegular:
		if _, exists := m.tree.WindowNode(l, w.ID); exists {
			return
		}
		m.tree.AddWindowAfter(l, m.tree.Selection(l), w.ID)
	}
}

// WindowRemoved drops a destroyed window from every layout and the floating
// set.
func (m *Manager) WindowRemoved(wid sys.WindowID) {
	m.tree.RemoveWindow(wid)
	delete(m.floating, wid)
	for _, active := range m.activeFloating {
		delete(active, wid)
	}
	if m.focused == wid {
		m.focused = sys.WindowID{}
	}
	if m.lastFloatingFocus == wid {
		m.lastFloatingFocus = sys.WindowID{}
	}
}

// AppClosed removes every window of a terminated process.
func (m *Manager) AppClosed(pid int32) {
	m.tree.RemoveWindowsForApp(pid)
	for wid := range m.floating {
		if wid.PID == pid {
			delete(m.floating, wid)
		}
	}
	for _, active := range m.activeFloating {
		for wid := range active {
			if wid.PID == pid {
				delete(active, wid)
			}
		}
	}
}

// AppsRunningUpdated drops windows of processes that are gone, used after
// restoring saved state.
func (m *Manager) AppsRunningUpdated(alive map[int32]bool) {
	m.tree.RetainWindows(func(wid sys.WindowID) bool {
		return alive[wid.PID]
	})
	for wid := range m.floating {
		if !alive[wid.PID] {
			delete(m.floating, wid)
		}
	}
}

// WindowFocused records an externally observed focus change.
func (m *Manager) WindowFocused(spaces []sys.SpaceID, wid sys.WindowID) {
	m.focused = wid
	if _, isFloating := m.floating[wid]; isFloating {
		m.lastFloatingFocus = wid
		return
	}
	for _, space := range spaces {
		l, ok := m.layoutFor(space)
		if !ok {
			continue
		}
		if node, ok := m.tree.WindowNode(l, wid); ok {
			m.tree.Select(node)
			m.recenterOn(space, node, time.Time{})
		}
	}
}

// WindowFrameChanged folds an externally observed move/resize back into the
// model: floating frames update directly; tiled frames become weight
// adjustments; a frame matching the screen toggles fullscreen.
func (m *Manager) WindowFrameChanged(wid sys.WindowID, oldFrame, newFrame sys.Rect, screens []sys.Screen, cfg *config.Config) {
	if info, isFloating := m.floating[wid]; isFloating {
		info.Frame = newFrame
		m.floating[wid] = info
		return
	}
	for _, screen := range screens {
		l, ok := m.layoutFor(screen.Space)
		if !ok {
			continue
		}
		node, ok := m.tree.WindowNode(l, wid)
		if !ok {
			continue
		}
		if !screen.Frame.ContainsSize(oldFrame.Size()) || !screen.Frame.ContainsSize(newFrame.Size()) {
			// Out-of-bounds sizes show up when the system itself
			// fullscreens the window; they do not reflect layout
			// state.
			continue
		}
		if newFrame == screen.Frame {
			m.tree.SetFullscreen(node, true)
		} else if m.tree.IsFullscreen(node) {
			m.tree.SetFullscreen(node, false)
		} else {
			m.applyFrameResize(l, node, oldFrame, newFrame, screen.Frame, cfg)
		}
	}
}

// MouseMovedOverWindow implements focus-follows-mouse constrained to the
// same window class: floating to floating, tiled to tiled.
func (m *Manager) MouseMovedOverWindow(space sys.SpaceID, wid sys.WindowID) EventResponse {
	if m.focused.IsZero() {
		return EventResponse{}
	}
	l, ok := m.layoutFor(space)
	if !ok {
		return EventResponse{}
	}
	_, overFloating := m.floating[wid]
	_, curFloating := m.floating[m.focused]
	if overFloating != curFloating {
		return EventResponse{}
	}
	if !overFloating {
		if _, inLayout := m.tree.WindowNode(l, wid); !inLayout {
			return EventResponse{}
		}
	}
	if wid == m.focused {
		return EventResponse{}
	}
	return EventResponse{FocusWindow: wid}
}

func (m *Manager) activeFloatingFor(id sys.SpaceID) map[sys.WindowID]bool {
	active, ok := m.activeFloating[id]
	if !ok {
		active = make(map[sys.WindowID]bool)
		m.activeFloating[id] = active
	}
	return active
}

func (m *Manager) addFloating(wid sys.WindowID, space sys.SpaceID, frame sys.Rect) {
	m.floating[wid] = floatingInfo{Frame: frame}
	m.activeFloatingFor(space)[wid] = true
}

func (m *Manager) removeFloating(wid sys.WindowID, space sys.SpaceID) {
	delete(m.floating, wid)
	delete(m.activeFloatingFor(space), wid)
}

// floatingOnSpace returns the space's floating windows in stable order.
func (m *Manager) floatingOnSpace(space sys.SpaceID) []sys.WindowID {
	active := m.activeFloatingFor(space)
	out := make([]sys.WindowID, 0, len(active))
	for wid := range active {
		out = append(out, wid)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// recenterOn records the column containing node as the viewport's target
// when the space is in scroll mode; the next layout pass scrolls to it. The
// now argument is not used.
func (m *Manager) recenterOn(space sys.SpaceID, node layout.NodeID, now time.Time) {
	st, ok := m.spaces[space]
	if !ok || st.mode != ModeScroll {
		return
	}
	// Column centering happens during layout calculation, where column
	// geometry is known; here we only remember the target column.
	l := st.mapping.ActiveLayout()
	root := m.tree.Root(l)
	column := node
	for {
		parent, ok := m.tree.Map().Parent(column)
		if !ok || parent == root {
			break
		}
		column = parent
	}
	idx := 0
	for i, child := range m.tree.Map().Children(root) {
		if child == column {
			idx = i
			break
		}
	}
	st.pendingColumn = &idx
	_ = now
}
