package manager

import (
	"time"

	"github.com/glidewm/glide/internal/config"
	"github.com/glidewm/glide/internal/layout"
	"github.com/glidewm/glide/internal/sys"
)

// HandleCommand applies a user command against the layout of the given
// space. Commands that cannot apply (no adjacent sibling, unknown window)
// return an empty response rather than an error.
func (m *Manager) HandleCommand(space sys.SpaceID, haveSpace bool, visible []sys.SpaceID, cmd Command, screen sys.Rect, cfg *config.Config, now time.Time) EventResponse {
	switch cmd.Op {
	case OpSaveAndExit:
		return EventResponse{Exit: true}
	case OpReloadConfig:
		return EventResponse{ReloadConfig: true}
	case OpConfigUpdate:
		return EventResponse{ConfigPath: cmd.Path}
	}

	_, isFloating := m.floating[m.focused]

	// toggle-floating works even when the space is unmanaged.
	if cmd.Op == OpToggleFloating {
		if m.focused.IsZero() {
			return EventResponse{}
		}
		return m.toggleFloating(m.focused, space, haveSpace, screen)
	}

	if !haveSpace {
		return EventResponse{}
	}
	st, ok := m.spaces[space]
	if !ok {
		return EventResponse{}
	}

	if cmd.Op == OpToggleSpaceManaged {
		st.disabled = !st.disabled
		return EventResponse{}
	}
	if st.disabled {
		return EventResponse{}
	}

	if cmd.ModifiesLayout() {
		st.mapping.PrepareModify(m.tree)
	}
	l := st.mapping.ActiveLayout()

	switch cmd.Op {
	case OpToggleFocusFloat:
		return m.toggleFocusFloating(space, l, isFloating)
	case OpFocusFloatingNext, OpFocusFloatingPrev:
		return m.cycleFloating(space, cmd.Op == OpFocusFloatingNext)
	}

	// Remaining commands act on the tiled layout only.
	if isFloating {
		return EventResponse{}
	}

	switch cmd.Op {
	case OpFocus:
		dir, _ := cmd.Direction()
		target, found := m.tree.Traverse(m.tree.Selection(l), dir)
		if !found {
			next, ok := nextSpace(space, visible, dir)
			if !ok {
				return EventResponse{}
			}
			nl, ok := m.layoutFor(next)
			if !ok {
				return EventResponse{}
			}
			target = m.tree.Selection(nl)
		}
		raise := m.tree.SelectReturningSurfacedWindows(target)
		focus, _ := m.tree.WindowAt(target)
		m.recenterOn(space, target, now)
		return EventResponse{RaiseWindows: raise, FocusWindow: focus}

	case OpFocusWindow:
		wid, ok := cmd.TargetWindow()
		if !ok {
			return EventResponse{}
		}
		if node, ok := m.tree.WindowNode(l, wid); ok {
			raise := m.tree.SelectReturningSurfacedWindows(node)
			m.recenterOn(space, node, now)
			return EventResponse{RaiseWindows: raise, FocusWindow: wid}
		}
		if _, floating := m.floating[wid]; floating {
			m.lastFloatingFocus = wid
			return EventResponse{FocusWindow: wid}
		}
		return EventResponse{}

	case OpSwap:
		dir, _ := cmd.Direction()
		sel := m.tree.Selection(l)
		target, ok := m.tree.Traverse(sel, dir)
		if !ok {
			return EventResponse{}
		}
		if _, isLeaf := m.tree.WindowAt(sel); !isLeaf {
			return EventResponse{}
		}
		if _, isLeaf := m.tree.WindowAt(target); !isLeaf {
			return EventResponse{}
		}
		m.tree.SwapWindows(sel, target)
		// Selection and focus follow the window to its new node.
		wid, _ := m.tree.WindowAt(target)
		m.tree.Select(target)
		return EventResponse{FocusWindow: wid}

	case OpMove:
		dir, _ := cmd.Direction()
		sel := m.tree.Selection(l)
		if !m.tree.MoveNode(l, sel, dir) {
			if next, ok := nextSpace(space, visible, dir); ok {
				if nl, ok := m.layoutFor(next); ok && nl != l {
					m.tree.MoveNodeAfter(m.tree.Selection(nl), sel)
					m.tree.Select(sel)
				}
			}
		}
		return EventResponse{}

	case OpSplit:
		kind := layout.KindHorizontal
		if cmd.Axis == "vertical" {
			kind = layout.KindVertical
		}
		sel := m.tree.Selection(l)
		m.tree.NestInContainer(l, sel, kind)
		return EventResponse{}

	case OpGroup:
		kind := layout.KindTabbed
		if cmd.Kind == "stacked" {
			kind = layout.KindStacked
		}
		sel := m.tree.Selection(l)
		if parent, ok := m.tree.Map().Parent(sel); ok {
			m.tree.SetContainerKind(parent, kind)
		}
		return EventResponse{}

	case OpUngroup:
		sel := m.tree.Selection(l)
		if parent, ok := m.tree.Map().Parent(sel); ok {
			if m.tree.ContainerKind(parent).IsGroup() {
				m.tree.SetContainerKind(parent, m.tree.LastUngroupedKind(parent))
			}
		}
		return EventResponse{}

	case OpToggleFullscreen:
		node := m.tree.Selection(l)
		if m.tree.ToggleFullscreen(node) {
			var raise []sys.WindowID
			for _, n := range m.tree.Map().Preorder(node) {
				if wid, ok := m.tree.WindowAt(n); ok {
					raise = append(raise, wid)
				}
			}
			return EventResponse{RaiseWindows: raise}
		}
		return EventResponse{}

	case OpResize:
		dir, _ := cmd.Direction()
		node := m.tree.Selection(l)
		m.resizeEdge(l, node, dir, cmd.Px, screen, cfg)
		return EventResponse{}

	case OpSetWeight:
		node := m.tree.Selection(l)
		weight := m.tree.Weight(node) + cmd.Weight
		if weight < 0.05 {
			weight = 0.05
		}
		m.tree.SetWeight(node, weight)
		return EventResponse{}

	case OpBalance:
		sel := m.tree.Selection(l)
		if parent, ok := m.tree.Map().Parent(sel); ok {
			m.tree.Balance(parent)
		}
		return EventResponse{}

	case OpPromote:
		m.tree.Promote(m.tree.Selection(l))
		return EventResponse{}

	case OpDemote:
		m.tree.Demote(m.tree.Selection(l))
		return EventResponse{}

	case OpMoveToSpace:
		target := sys.SpaceID(cmd.Space)
		if target == space {
			return EventResponse{}
		}
		tl, ok := m.layoutFor(target)
		if !ok {
			return EventResponse{}
		}
		sel := m.tree.Selection(l)
		wid, isLeaf := m.tree.WindowAt(sel)
		if !isLeaf {
			return EventResponse{}
		}
		if _, already := m.tree.WindowNode(tl, wid); already {
			return EventResponse{}
		}
		m.tree.MoveNodeAfter(m.tree.Selection(tl), sel)
		return EventResponse{}

	case OpScroll:
		return m.scrollCommand(st, cmd, cfg, now)

	case OpSetCenteringMode:
		switch config.CenteringMode(cmd.Mode) {
		case config.CenterAlways, config.CenterOnOverflow, config.CenterNever:
			st.centering = config.CenteringMode(cmd.Mode)
		}
		return EventResponse{}

	case OpSetLayoutMode:
		st.mode = LayoutMode(cmd.Mode)
		return EventResponse{}
	}
	return EventResponse{}
}

// nextSpace picks the neighboring space in the visible-space order, with
// wraparound.
func nextSpace(space sys.SpaceID, visible []sys.SpaceID, dir layout.Direction) (sys.SpaceID, bool) {
	if len(visible) <= 1 {
		return 0, false
	}
	idx := -1
	for i, s := range visible {
		if s == space {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, false
	}
	step := 1
	if !dir.Forward() {
		step = -1
	}
	next := (idx + step + len(visible)) % len(visible)
	return visible[next], true
}

func (m *Manager) toggleFloating(wid sys.WindowID, space sys.SpaceID, haveSpace bool, screen sys.Rect) EventResponse {
	if info, isFloating := m.floating[wid]; isFloating {
		if haveSpace {
			if l, ok := m.layoutFor(space); ok {
				node := m.retileWindow(l, wid, info)
				m.tree.Select(node)
				if info.weight > 0 {
					m.tree.SetWeight(node, info.weight)
				}
			}
			m.removeFloating(wid, space)
		} else {
			delete(m.floating, wid)
		}
		m.lastFloatingFocus = sys.WindowID{}
		return EventResponse{}
	}

	// Float the window at a centered default frame, remembering its tiled
	// neighbors and weight so toggling back restores the layout.
	frame := sys.Rect{
		X:      screen.X + screen.Width/4,
		Y:      screen.Y + screen.Height/4,
		Width:  screen.Width / 2,
		Height: screen.Height / 2,
	}
	info := floatingInfo{Frame: frame}
	if haveSpace {
		if l, ok := m.layoutFor(space); ok {
			if node, ok := m.tree.WindowNode(l, wid); ok {
				info.weight = m.tree.Weight(node)
				info.prevAnchor, info.nextAnchor = m.neighborWindows(node)
			}
		}
	}
	m.floating[wid] = info
	if haveSpace {
		m.activeFloatingFor(space)[wid] = true
	}
	m.tree.RemoveWindow(wid)
	m.lastFloatingFocus = wid
	return EventResponse{}
}

// neighborWindows finds the windows of the leaves flanking node among its
// siblings, used as re-tile anchors.
func (m *Manager) neighborWindows(node layout.NodeID) (prev, next sys.WindowID) {
	nm := m.tree.Map()
	if sib, ok := nm.PrevSibling(node); ok {
		prev = m.edgeLeafWindow(sib, false)
	}
	if sib, ok := nm.NextSibling(node); ok {
		next = m.edgeLeafWindow(sib, true)
	}
	return prev, next
}

// edgeLeafWindow descends to the first (or last) leaf of a subtree.
func (m *Manager) edgeLeafWindow(node layout.NodeID, first bool) sys.WindowID {
	nm := m.tree.Map()
	for {
		if wid, ok := m.tree.WindowAt(node); ok {
			return wid
		}
		var child layout.NodeID
		var ok bool
		if first {
			child, ok = nm.FirstChild(node)
		} else {
			child, ok = nm.LastChild(node)
		}
		if !ok {
			return sys.WindowID{}
		}
		node = child
	}
}

// retileWindow puts a previously floating window back into the layout,
// preferring its recorded neighbors over the current selection.
func (m *Manager) retileWindow(l layout.LayoutID, wid sys.WindowID, info floatingInfo) layout.NodeID {
	if !info.prevAnchor.IsZero() {
		if anchor, ok := m.tree.WindowNode(l, info.prevAnchor); ok {
			return m.tree.AddWindowAfter(l, anchor, wid)
		}
	}
	if !info.nextAnchor.IsZero() {
		if anchor, ok := m.tree.WindowNode(l, info.nextAnchor); ok {
			return m.tree.AddWindowBefore(l, anchor, wid)
		}
	}
	return m.tree.AddWindowAfter(l, m.tree.Selection(l), wid)
}

// toggleFocusFloating flips focus between the floating set and the tiled
// layer, raising the windows of the destination layer.
func (m *Manager) toggleFocusFloating(space sys.SpaceID, l layout.LayoutID, isFloating bool) EventResponse {
	if isFloating {
		sel := m.tree.Selection(l)
		raise := m.tree.VisibleWindowsUnder(m.tree.Root(l))
		focus, hasFocus := m.tree.WindowAt(sel)
		if !hasFocus && len(raise) > 0 {
			focus = raise[len(raise)-1]
			raise = raise[:len(raise)-1]
		}
		out := raise[:0]
		for _, w := range raise {
			if w != focus {
				out = append(out, w)
			}
		}
		return EventResponse{RaiseWindows: out, FocusWindow: focus}
	}

	floating := m.floatingOnSpace(space)
	if len(floating) == 0 {
		return EventResponse{}
	}
	focus := m.lastFloatingFocus
	var raise []sys.WindowID
	for _, wid := range floating {
		if wid != focus {
			raise = append(raise, wid)
		}
	}
	if focus.IsZero() {
		focus = raise[len(raise)-1]
		raise = raise[:len(raise)-1]
	}
	return EventResponse{RaiseWindows: raise, FocusWindow: focus}
}

// cycleFloating focuses the next or previous floating window on the space.
func (m *Manager) cycleFloating(space sys.SpaceID, forward bool) EventResponse {
	floating := m.floatingOnSpace(space)
	if len(floating) == 0 {
		return EventResponse{}
	}
	idx := 0
	for i, wid := range floating {
		if wid == m.focused {
			if forward {
				idx = (i + 1) % len(floating)
			} else {
				idx = (i - 1 + len(floating)) % len(floating)
			}
			break
		}
	}
	target := floating[idx]
	m.lastFloatingFocus = target
	return EventResponse{FocusWindow: target}
}

// scrollCommand steps the viewport one column in the given direction.
func (m *Manager) scrollCommand(st *spaceState, cmd Command, cfg *config.Config, now time.Time) EventResponse {
	if st.mode != ModeScroll {
		return EventResponse{}
	}
	dir, _ := cmd.Direction()
	if dir.Orientation() != layout.Horizontal {
		return EventResponse{}
	}
	l := st.mapping.ActiveLayout()
	count := m.tree.Map().ChildCount(m.tree.Root(l))
	if count == 0 {
		return EventResponse{}
	}
	step := 1
	if dir == layout.Left {
		step = -1
	}
	idx := st.viewport.ActiveColumn() + step
	if idx < 0 {
		idx = 0
	}
	if idx >= count {
		idx = count - 1
	}
	st.pendingColumn = &idx

	// Focus the selected leaf of the target column.
	if column, ok := m.tree.Map().ChildAt(m.tree.Root(l), idx); ok {
		raise := m.tree.SelectReturningSurfacedWindows(column)
		focus, _ := m.tree.WindowAt(m.tree.Selection(l))
		return EventResponse{RaiseWindows: raise, FocusWindow: focus}
	}
	return EventResponse{}
}
