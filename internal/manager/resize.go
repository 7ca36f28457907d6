package manager

import (
	"github.com/glidewm/glide/internal/config"
	"github.com/glidewm/glide/internal/layout"
	"github.com/glidewm/glide/internal/sys"
)

// resizeEdge grows the node's edge by deltaPx, converting pixels to weight
// by the inverse of the calculator's distribution:
// Δw = (Δpx / parent.extent) * parent.total, clamped so neither the node
// nor the sibling drops below the minimum window size.
func (m *Manager) resizeEdge(l layout.LayoutID, node layout.NodeID, edge layout.Direction, deltaPx int, screen sys.Rect, cfg *config.Config) bool {
	if deltaPx == 0 {
		return false
	}
	rects := m.tree.NodeRects(l, screen, cfg)
	nm := m.tree.Map()

	cur := node
	for {
		parent, ok := nm.Parent(cur)
		if !ok {
			return false
		}
		if m.tree.ContainerKind(parent).Orientation() == edge.Orientation() && !m.tree.ContainerKind(parent).IsGroup() {
			var sibling layout.NodeID
			var found bool
			if edge.Forward() {
				sibling, found = nm.NextSibling(cur)
			} else {
				sibling, found = nm.PrevSibling(cur)
			}
			if found {
				return m.takePixels(parent, cur, sibling, deltaPx, rects, cfg)
			}
		}
		cur = parent
	}
}

func (m *Manager) takePixels(parent, node, sibling layout.NodeID, deltaPx int, rects map[layout.NodeID]sys.Rect, cfg *config.Config) bool {
	parentRect, ok := rects[parent]
	if !ok {
		return false
	}
	extent := parentRect.Width
	if m.tree.ContainerKind(parent).Orientation() == layout.Vertical {
		extent = parentRect.Height
	}
	if extent <= 0 {
		return false
	}

	total := m.tree.Total(parent)
	delta := float64(deltaPx) / float64(extent) * total
	floor := float64(cfg.MinWindowSize) / float64(extent) * total

	// Clamp so both weights stay at or above the floor.
	if maxGrow := m.tree.Weight(sibling) - floor; delta > maxGrow {
		delta = maxGrow
	}
	if maxShrink := m.tree.Weight(node) - floor; -delta > maxShrink {
		delta = -maxShrink
	}
	if delta == 0 {
		return false
	}
	m.tree.TakeShare(node, sibling, delta)
	return true
}

// applyFrameResize converts an externally observed frame change into edge
// resizes on each moved edge.
func (m *Manager) applyFrameResize(l layout.LayoutID, node layout.NodeID, oldFrame, newFrame sys.Rect, screen sys.Rect, cfg *config.Config) {
	if dx := oldFrame.X - newFrame.X; dx != 0 {
		m.resizeEdge(l, node, layout.Left, dx, screen, cfg)
	}
	if dx := newFrame.MaxX() - oldFrame.MaxX(); dx != 0 {
		m.resizeEdge(l, node, layout.Right, dx, screen, cfg)
	}
	if dy := oldFrame.Y - newFrame.Y; dy != 0 {
		m.resizeEdge(l, node, layout.Up, dy, screen, cfg)
	}
	if dy := newFrame.MaxY() - oldFrame.MaxY(); dy != 0 {
		m.resizeEdge(l, node, layout.Down, dy, screen, cfg)
	}
}
