package layout

import (
	"fmt"

	"github.com/glidewm/glide/internal/sys"
)

type windowKey struct {
	layout LayoutID
	wid    sys.WindowID
}

type windowEntry struct {
	wid    sys.WindowID
	layout LayoutID
}

// windows maintains the two-way leaf-node ↔ window mapping, one bijection
// per layout.
type windows struct {
	at    map[NodeID]windowEntry
	nodes map[windowKey]NodeID
}

func newWindows() windows {
	return windows{
		at:    make(map[NodeID]windowEntry),
		nodes: make(map[windowKey]NodeID),
	}
}

func (w *windows) handleEvent(_ *NodeMap, ev treeEvent) {
	if ev.kind != evRemovedFromForest {
		return
	}
	if entry, ok := w.at[ev.node]; ok {
		delete(w.at, ev.node)
		delete(w.nodes, windowKey{layout: entry.layout, wid: entry.wid})
	}
}

// set binds a leaf node to a window. Binding a window already present in the
// layout is a programming error.
func (w *windows) set(l LayoutID, node NodeID, wid sys.WindowID) {
	key := windowKey{layout: l, wid: wid}
	if existing, ok := w.nodes[key]; ok {
		panic(fmt.Sprintf("layout: window %v is already at %v in layout %d", wid, existing, l))
	}
	if entry, ok := w.at[node]; ok {
		panic(fmt.Sprintf("layout: node %v already holds window %v", node, entry.wid))
	}
	w.at[node] = windowEntry{wid: wid, layout: l}
	w.nodes[key] = node
}

// windowAt returns the window bound to node, if any.
func (w *windows) windowAt(node NodeID) (sys.WindowID, bool) {
	entry, ok := w.at[node]
	return entry.wid, ok
}

// node returns the leaf bound to wid within layout l.
func (w *windows) node(l LayoutID, wid sys.WindowID) (NodeID, bool) {
	n, ok := w.nodes[windowKey{layout: l, wid: wid}]
	return n, ok
}

// nodesForWindow returns the leaf bound to wid in every layout.
func (w *windows) nodesForWindow(wid sys.WindowID) []NodeID {
	var out []NodeID
	for key, node := range w.nodes {
		if key.wid == wid {
			out = append(out, node)
		}
	}
	return out
}

// windowsForApp returns the windows of pid bound in layout l.
func (w *windows) windowsForApp(l LayoutID, pid int32) []sys.WindowID {
	var out []sys.WindowID
	for key := range w.nodes {
		if key.layout == l && key.wid.PID == pid {
			out = append(out, key.wid)
		}
	}
	return out
}

// swap exchanges the windows bound to two leaves of the same layout.
func (w *windows) swap(a, b NodeID) {
	ea, oka := w.at[a]
	eb, okb := w.at[b]
	if !oka || !okb {
		panic(fmt.Sprintf("layout: swap of non-leaf nodes %v, %v", a, b))
	}
	w.at[a], w.at[b] = eb, ea
	w.nodes[windowKey{layout: ea.layout, wid: ea.wid}] = b
	w.nodes[windowKey{layout: eb.layout, wid: eb.wid}] = a
}
