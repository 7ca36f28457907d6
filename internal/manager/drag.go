package manager

import (
	"github.com/glidewm/glide/internal/config"
	"github.com/glidewm/glide/internal/layout"
	"github.com/glidewm/glide/internal/sys"
)

// Edges names the window edges engaged by an interactive drag.
type Edges struct {
	Horizontal layout.Direction // Left or Right, "" if none
	Vertical   layout.Direction // Up or Down, "" if none
}

// DetectEdges decides which edges of a window frame a cursor near its border
// is grabbing. When a dimension is smaller than twice the threshold the
// bands do not overlap: the side nearer the cursor wins.
func DetectEdges(frame sys.Rect, cursor sys.Point, threshold int) Edges {
	var edges Edges

	leftDist := cursor.X - frame.X
	rightDist := frame.MaxX() - cursor.X
	if frame.Width < 2*threshold {
		if leftDist <= rightDist {
			edges.Horizontal = layout.Left
		} else {
			edges.Horizontal = layout.Right
		}
	} else if leftDist >= 0 && leftDist < threshold {
		edges.Horizontal = layout.Left
	} else if rightDist >= 0 && rightDist < threshold {
		edges.Horizontal = layout.Right
	}

	topDist := cursor.Y - frame.Y
	bottomDist := frame.MaxY() - cursor.Y
	if frame.Height < 2*threshold {
		if topDist <= bottomDist {
			edges.Vertical = layout.Up
		} else {
			edges.Vertical = layout.Down
		}
	} else if topDist >= 0 && topDist < threshold {
		edges.Vertical = layout.Up
	} else if bottomDist >= 0 && bottomDist < threshold {
		edges.Vertical = layout.Down
	}

	return edges
}

type dragState struct {
	space  sys.SpaceID
	window sys.WindowID
	edges  Edges
	last   sys.Point
}

// DragThreshold is the pixel band around a window border that engages an
// interactive resize.
const DragThreshold = 12

// DragBegin starts an interactive resize if the cursor grabs an edge of the
// focused window's frame. Returns false when the click is not on a border.
func (m *Manager) DragBegin(space sys.SpaceID, wid sys.WindowID, frame sys.Rect, cursor sys.Point) bool {
	edges := DetectEdges(frame, cursor, DragThreshold)
	if edges.Horizontal == "" && edges.Vertical == "" {
		return false
	}
	if _, isFloating := m.floating[wid]; isFloating {
		return false
	}
	m.drag = &dragState{space: space, window: wid, edges: edges, last: cursor}
	return true
}

// DragUpdate applies the cursor movement since the last update as edge
// resizes. This is an interactive modification, so the space layout
// diverges copy-on-write.
func (m *Manager) DragUpdate(cursor sys.Point, screen sys.Rect, cfg *config.Config) bool {
	if m.drag == nil {
		return false
	}
	st, ok := m.spaces[m.drag.space]
	if !ok || st.disabled {
		return false
	}
	dx := cursor.X - m.drag.last.X
	dy := cursor.Y - m.drag.last.Y
	m.drag.last = cursor
	if dx == 0 && dy == 0 {
		return false
	}

	st.mapping.PrepareModify(m.tree)
	l := st.mapping.ActiveLayout()
	node, ok := m.tree.WindowNode(l, m.drag.window)
	if !ok {
		m.drag = nil
		return false
	}

	changed := false
	if m.drag.edges.Horizontal == layout.Left && dx != 0 {
		changed = m.resizeEdge(l, node, layout.Left, -dx, screen, cfg) || changed
	}
	if m.drag.edges.Horizontal == layout.Right && dx != 0 {
		changed = m.resizeEdge(l, node, layout.Right, dx, screen, cfg) || changed
	}
	if m.drag.edges.Vertical == layout.Up && dy != 0 {
		changed = m.resizeEdge(l, node, layout.Up, -dy, screen, cfg) || changed
	}
	if m.drag.edges.Vertical == layout.Down && dy != 0 {
		changed = m.resizeEdge(l, node, layout.Down, dy, screen, cfg) || changed
	}
	return changed
}

// DragEnd finishes an interactive resize.
func (m *Manager) DragEnd() {
	m.drag = nil
}

// Dragging reports whether an interactive resize is in progress.
func (m *Manager) Dragging() bool { return m.drag != nil }
