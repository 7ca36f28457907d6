package layout

import (
	"math"

	"github.com/glidewm/glide/internal/config"
	"github.com/glidewm/glide/internal/sys"
)

// hiddenX is where off-layout windows are parked so workers always have an
// explicit target frame.
const hiddenX = -10000

// Frame pairs a window with its target rect and visibility. Generic so the
// viewport math stays inside the model.
type Frame[W comparable] struct {
	Window  W
	Rect    sys.Rect
	Visible bool
}

// WindowFrame is the concrete frame type emitted by the calculator.
type WindowFrame = Frame[sys.WindowID]

// GroupInfo describes one tabbed/stacked container in the emitted layout.
type GroupInfo struct {
	Node          NodeID
	Kind          ContainerKind
	BarFrame      sys.Rect
	Count         int
	SelectedIndex int
	Visible       bool
	Selected      bool
}

// hiddenRect parks a frame offscreen, preserving its size.
func hiddenRect(r sys.Rect) sys.Rect {
	return sys.Rect{X: hiddenX, Y: r.Y, Width: r.Width, Height: r.Height}
}

type calcState struct {
	t         *LayoutTree
	cfg       *config.Config
	innerGap  int
	frames    []WindowFrame
	groups    *[]GroupInfo
	nodeRects map[NodeID]sys.Rect
}

// CalculateLayout walks layout l under the screen rectangle and returns one
// frame per tracked window. The output order is stable for identical input.
func (t *LayoutTree) CalculateLayout(l LayoutID, screen sys.Rect, cfg *config.Config) []WindowFrame {
	frames, _ := t.calculate(l, screen, cfg, false)
	return frames
}

// CalculateLayoutAndGroups additionally reports tab/stack group metadata.
func (t *LayoutTree) CalculateLayoutAndGroups(l LayoutID, screen sys.Rect, cfg *config.Config) ([]WindowFrame, []GroupInfo) {
	return t.calculate(l, screen, cfg, true)
}

func (t *LayoutTree) calculate(l LayoutID, screen sys.Rect, cfg *config.Config, wantGroups bool) ([]WindowFrame, []GroupInfo) {
	root := t.Root(l)
	outer := config.ClampGap(cfg.OuterGap, min(screen.Width, screen.Height))
	content := screen.Inset(outer)

	st := &calcState{
		t:        t,
		cfg:      cfg,
		innerGap: config.ClampGap(cfg.InnerGap, min(screen.Width, screen.Height)),
	}
	var groups []GroupInfo
	if wantGroups {
		st.groups = &groups
	}
	st.apply(root, content, true, true)

	if fs := t.firstFullscreen(root); !fs.IsZero() {
		st.overrideFullscreen(fs, content)
	}
	return st.frames, groups
}

// NodeRects returns the rect assigned to every node of the layout,
// containers included. The layout manager uses it to convert pixel resize
// deltas into weight deltas.
func (t *LayoutTree) NodeRects(l LayoutID, screen sys.Rect, cfg *config.Config) map[NodeID]sys.Rect {
	root := t.Root(l)
	outer := config.ClampGap(cfg.OuterGap, min(screen.Width, screen.Height))
	st := &calcState{
		t:         t,
		cfg:       cfg,
		innerGap:  config.ClampGap(cfg.InnerGap, min(screen.Width, screen.Height)),
		nodeRects: make(map[NodeID]sys.Rect),
	}
	st.apply(root, screen.Inset(outer), true, true)
	return st.nodeRects
}

// firstFullscreen finds the first fullscreen-marked node in preorder.
func (t *LayoutTree) firstFullscreen(root NodeID) NodeID {
	var find func(n NodeID) NodeID
	find = func(n NodeID) NodeID {
		if t.sizing.isFullscreen(n) {
			return n
		}
		for _, child := range t.nodes.Children(n) {
			if fs := find(child); !fs.IsZero() {
				return fs
			}
		}
		return NodeID{}
	}
	return find(root)
}

// overrideFullscreen re-emits the fullscreen subtree over the full content
// rect and hides everything else.
func (st *calcState) overrideFullscreen(fs NodeID, content sys.Rect) {
	inside := make(map[sys.WindowID]bool)
	for _, n := range st.t.nodes.Preorder(fs) {
		if wid, ok := st.t.windows.windowAt(n); ok {
			inside[wid] = true
		}
	}
	for i := range st.frames {
		if !inside[st.frames[i].Window] {
			st.frames[i].Rect = hiddenRect(st.frames[i].Rect)
			st.frames[i].Visible = false
		}
	}

	fsFrames := st.frames
	st.frames = nil
	groups := st.groups
	st.groups = nil
	st.apply(fs, content, true, true)
	st.groups = groups
	replaced := make(map[sys.WindowID]WindowFrame, len(st.frames))
	for _, f := range st.frames {
		replaced[f.Window] = f
	}
	st.frames = fsFrames
	for i := range st.frames {
		if f, ok := replaced[st.frames[i].Window]; ok {
			st.frames[i] = f
		}
	}
}

func (st *calcState) apply(node NodeID, rect sys.Rect, visible, selected bool) {
	if st.nodeRects != nil {
		st.nodeRects[node] = rect
	}

	if wid, ok := st.t.windows.windowAt(node); ok {
		frame := rect
		if !visible {
			frame = hiddenRect(rect)
		}
		st.frames = append(st.frames, WindowFrame{Window: wid, Rect: frame, Visible: visible})
		return
	}

	kind := st.t.sizing.kind(node)
	children := st.t.nodes.Children(node)
	if len(children) == 0 {
		return
	}

	if kind.IsGroup() {
		st.applyGroup(node, kind, children, rect, visible, selected)
		return
	}

	localSel, _ := st.t.selection.localSelection(st.t.nodes, node)
	total := st.t.sizing.total(node)
	if total <= 0 {
		total = float64(len(children))
	}

	gap := st.innerGap
	horizontal := kind.Orientation() == Horizontal
	extent := rect.Width
	if !horizontal {
		extent = rect.Height
	}
	extent -= gap * (len(children) - 1)
	if extent < 0 {
		extent = 0
	}

	// Rounded-and-carry distribution: accumulate fractional shares so the
	// emitted integer extents sum exactly to the container's extent.
	pos := rect.X
	if !horizontal {
		pos = rect.Y
	}
	acc := 0.0
	carried := 0
	for _, child := range children {
		acc += float64(extent) * st.t.sizing.size(child) / total
		span := int(math.Round(acc)) - carried
		carried += span

		var childRect sys.Rect
		if horizontal {
			childRect = sys.Rect{X: pos, Y: rect.Y, Width: span, Height: rect.Height}
		} else {
			childRect = sys.Rect{X: rect.X, Y: pos, Width: rect.Width, Height: span}
		}
		st.apply(child, childRect, visible, selected && localSel == child)
		pos += span + gap
	}
}

func (st *calcState) applyGroup(node NodeID, kind ContainerKind, children []NodeID, rect sys.Rect, visible, selected bool) {
	thickness := st.cfg.GroupBarThickness()
	content := rect
	bar := sys.Rect{}
	if thickness > 0 && thickness < rect.Height {
		bar = sys.Rect{X: rect.X, Y: rect.Y, Width: rect.Width, Height: thickness}
		content = sys.Rect{X: rect.X, Y: rect.Y + thickness, Width: rect.Width, Height: rect.Height - thickness}
	}

	sel, hasSel := st.t.selection.localSelection(st.t.nodes, node)
	if !hasSel {
		sel = children[0]
	}
	selectedIndex := 0
	for i, child := range children {
		isSel := child == sel
		if isSel {
			selectedIndex = i
		}
		st.apply(child, content, visible && isSel, selected && isSel)
	}

	if st.groups != nil {
		*st.groups = append(*st.groups, GroupInfo{
			Node:          node,
			Kind:          kind,
			BarFrame:      bar,
			Count:         len(children),
			SelectedIndex: selectedIndex,
			Visible:       visible,
			Selected:      selected,
		})
	}
}
