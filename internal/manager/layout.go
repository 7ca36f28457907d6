package manager

import (
	"time"

	"github.com/glidewm/glide/internal/config"
	"github.com/glidewm/glide/internal/layout"
	"github.com/glidewm/glide/internal/sys"
)

// CalculateLayout produces the target frame for every window on a space:
// tiled windows from the tree (or scroll strip), then floating windows at
// their explicit frames. Returns nil for unknown or unmanaged spaces.
func (m *Manager) CalculateLayout(space sys.SpaceID, screen sys.Rect, cfg *config.Config, now time.Time) []layout.WindowFrame {
	st, ok := m.spaces[space]
	if !ok || st.disabled {
		return nil
	}
	l := st.mapping.ActiveLayout()

	var frames []layout.WindowFrame
	if st.mode == ModeScroll {
		frames = m.scrollFrames(st, l, screen, cfg, now)
	} else {
		frames = m.tree.CalculateLayout(l, screen, cfg)
	}

	for _, wid := range m.floatingOnSpace(space) {
		frames = append(frames, layout.WindowFrame{Window: wid, Rect: m.floating[wid].Frame, Visible: true})
	}
	return frames
}

func (m *Manager) scrollFrames(st *spaceState, l layout.LayoutID, screen sys.Rect, cfg *config.Config, now time.Time) []layout.WindowFrame {
	strip, columns := m.tree.CalculateScrollLayout(l, screen, cfg)
	if len(columns) == 0 {
		return nil
	}

	if st.pendingColumn != nil {
		idx := *st.pendingColumn
		st.pendingColumn = nil
		if idx >= 0 && idx < len(columns) {
			mode := st.centering
			if mode == "" {
				mode = cfg.Scroll.CenteringMode
			}
			col := columns[idx]
			st.viewport.EnsureColumnVisible(idx, float64(col.X), float64(col.Width),
				mode, float64(cfg.InnerGap), cfg.Animation, now)
		}
	}

	st.viewport.Tick(now)
	offset := st.viewport.Offset(now)
	return layout.ApplyViewportToFrames(strip, offset, screen)
}

// ViewportAnimating reports whether the space's scroll viewport needs more
// animation ticks.
func (m *Manager) ViewportAnimating(space sys.SpaceID, now time.Time) bool {
	st, ok := m.spaces[space]
	if !ok || st.mode != ModeScroll {
		return false
	}
	return st.viewport.IsAnimating(now)
}

// ScrollBy folds a raw wheel delta into whole column steps and targets the
// resulting column.
func (m *Manager) ScrollBy(space sys.SpaceID, delta float64, screen sys.Rect, cfg *config.Config, now time.Time) bool {
	st, ok := m.spaces[space]
	if !ok || st.disabled || st.mode != ModeScroll {
		return false
	}
	l := st.mapping.ActiveLayout()
	_, columns := m.tree.CalculateScrollLayout(l, screen, cfg)
	if len(columns) == 0 {
		return false
	}
	steps := st.viewport.AccumulateScroll(delta, layout.AverageColumnWidth(columns))
	if steps == 0 {
		return false
	}
	idx := st.viewport.ActiveColumn() + steps
	if idx < 0 {
		idx = 0
	}
	if idx >= len(columns) {
		idx = len(columns) - 1
	}
	st.pendingColumn = &idx
	if column, ok := m.tree.Map().ChildAt(m.tree.Root(l), idx); ok {
		m.tree.Select(column)
	}
	return true
}

// SpaceMode returns the layout mode of a space.
func (m *Manager) SpaceMode(space sys.SpaceID) LayoutMode {
	if st, ok := m.spaces[space]; ok {
		return st.mode
	}
	return ModeTree
}

// DebugTree renders the active layout of a space for logging.
func (m *Manager) DebugTree(space sys.SpaceID) string {
	l, ok := m.layoutFor(space)
	if !ok {
		return "(no layout)"
	}
	return m.tree.DrawTree(l)
}
