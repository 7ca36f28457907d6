// Package layout implements the layout model: a slot-map backed container
// tree with sizing, selection, and window observers, the frame calculator,
// the scroll viewport, and the copy-on-write space↔layout mapping.
package layout

import (
	"fmt"
	"strings"

	"github.com/glidewm/glide/internal/sys"
)

// LayoutID identifies one layout (tree root plus observer state) within a
// LayoutTree. Several layouts may coexist; windows bind per layout.
type LayoutID uint32

type treeEventKind int

const (
	evAddedToForest treeEventKind = iota
	evAddedToParent
	evRemovingFromParent
	evRemovedChild
	evRemovedFromForest
	evCopied
)

type treeEvent struct {
	kind   treeEventKind
	node   NodeID
	parent NodeID
	src    NodeID
	dest   NodeID
}

// LayoutTree owns the node forest and the three observers. All mutation goes
// through it so observers see every structural event in a fixed order.
type LayoutTree struct {
	nodes      *NodeMap
	roots      map[LayoutID]NodeID
	nextLayout LayoutID

	sizing    sizing
	selection selection
	windows   windows

	// detachedLive counts Detached values that have been neither
	// reattached nor removed. A nonzero count at a consistency check is a
	// programming error.
	detachedLive int
}

// NewTree creates an empty layout tree.
func NewTree() *LayoutTree {
	return &LayoutTree{
		nodes:     newNodeMap(),
		roots:     make(map[LayoutID]NodeID),
		sizing:    newSizing(),
		selection: newSelection(),
		windows:   newWindows(),
	}
}

// Map exposes read-only node relationships.
func (t *LayoutTree) Map() *NodeMap { return t.nodes }

func (t *LayoutTree) dispatch(ev treeEvent) {
	// Observers run in a fixed order and must not mutate the tree.
	t.sizing.handleEvent(t.nodes, ev)
	t.selection.handleEvent(t.nodes, ev)
	t.windows.handleEvent(t.nodes, ev)
}

// CreateLayout allocates a new layout with an empty horizontal root.
func (t *LayoutTree) CreateLayout() LayoutID {
	t.nextLayout++
	l := t.nextLayout
	root := t.newNode()
	t.sizing.setKind(root, KindHorizontal)
	t.roots[l] = root
	return l
}

// Root returns the root container of a layout.
func (t *LayoutTree) Root(l LayoutID) NodeID {
	root, ok := t.roots[l]
	if !ok {
		panic(fmt.Sprintf("layout: unknown layout %d", l))
	}
	return root
}

// Layouts returns the live layout ids.
func (t *LayoutTree) Layouts() []LayoutID {
	out := make([]LayoutID, 0, len(t.roots))
	for l := range t.roots {
		out = append(out, l)
	}
	return out
}

// layoutOf resolves the layout a node belongs to by walking to its root.
func (t *LayoutTree) layoutOf(node NodeID) (LayoutID, bool) {
	top := node
	for {
		parent, ok := t.nodes.Parent(top)
		if !ok {
			break
		}
		top = parent
	}
	for l, root := range t.roots {
		if root == top {
			return l, true
		}
	}
	return 0, false
}

// RemoveLayout removes a layout and its whole subtree.
func (t *LayoutTree) RemoveLayout(l LayoutID) {
	root := t.Root(l)
	t.removeFromForest(root)
	delete(t.roots, l)
}

// CloneLayout deep-copies a layout, including sizing, selection, and window
// bindings. Used by the copy-on-write space mapping.
func (t *LayoutTree) CloneLayout(src LayoutID) LayoutID {
	srcRoot := t.Root(src)
	t.nextLayout++
	dst := t.nextLayout

	remap := make(map[NodeID]NodeID)
	dstRoot := t.cloneSubtree(srcRoot, NodeID{}, remap)
	t.roots[dst] = dstRoot

	// Selection entries refer to node ids, so fix them up through the
	// remap table. Window bindings are per layout and re-bound directly.
	for oldNode, newNode := range remap {
		if sel, ok := t.selection.localSelection(t.nodes, oldNode); ok {
			t.selection.selected[newNode] = remap[sel]
		}
		if wid, ok := t.windows.windowAt(oldNode); ok {
			t.windows.set(dst, newNode, wid)
		}
	}
	return dst
}

func (t *LayoutTree) cloneSubtree(src, newParent NodeID, remap map[NodeID]NodeID) NodeID {
	dest := t.nodes.alloc()
	t.dispatch(treeEvent{kind: evAddedToForest, node: dest})
	t.dispatch(treeEvent{kind: evCopied, src: src, dest: dest})
	remap[src] = dest
	if !newParent.IsZero() {
		// Link without the added_to_parent sizing event; the copied info
		// already carries the right share, so only the parent total
		// needs restoring, which evCopied on the parent handled.
		t.nodes.link(dest, newParent, NodeID{})
	}
	for _, child := range t.nodes.Children(src) {
		t.cloneSubtree(child, dest, remap)
	}
	return dest
}

func (t *LayoutTree) newNode() NodeID {
	node := t.nodes.alloc()
	t.dispatch(treeEvent{kind: evAddedToForest, node: node})
	return node
}

// attach links child under parent before the given sibling (zero = append)
// and fires added_to_parent.
func (t *LayoutTree) attach(child, parent, before NodeID) {
	t.nodes.link(child, parent, before)
	t.dispatch(treeEvent{kind: evAddedToParent, node: child, parent: parent})
}

// detachRaw unlinks child from its parent, firing removal events but not
// compaction.
func (t *LayoutTree) detachRaw(child NodeID) NodeID {
	parent, ok := t.nodes.Parent(child)
	if !ok {
		panic(fmt.Sprintf("layout: detach of unattached node %v", child))
	}
	t.dispatch(treeEvent{kind: evRemovingFromParent, node: child, parent: parent})
	t.nodes.unlink(child)
	t.dispatch(treeEvent{kind: evRemovedChild, node: child, parent: parent})
	return parent
}

// removeFromForest releases an unattached subtree, leaves first.
func (t *LayoutTree) removeFromForest(node NodeID) {
	for _, child := range t.nodes.Children(node) {
		t.nodes.unlink(child)
		t.removeFromForest(child)
	}
	t.dispatch(treeEvent{kind: evRemovedFromForest, node: node})
	t.nodes.release(node)
}

// compact restores tree minimality after parent lost a child: empty
// non-root containers are removed and sole children are promoted, cascading
// upward.
func (t *LayoutTree) compact(parent NodeID) {
	for !parent.IsZero() && !t.isRoot(parent) {
		switch t.nodes.ChildCount(parent) {
		case 0:
			grandparent := t.detachRaw(parent)
			t.removeFromForest(parent)
			parent = grandparent
		case 1:
			only, _ := t.nodes.FirstChild(parent)
			grandparent, _ := t.nodes.Parent(parent)
			anchor, _ := t.nodes.NextSibling(parent)

			// The promoted child keeps its own weight rather than
			// inheriting the vanished parent's.
			keepSize := t.sizing.size(only)
			wasSelected := false
			if sel, ok := t.selection.localSelection(t.nodes, grandparent); ok {
				wasSelected = sel == parent
			}

			t.detachRaw(only)
			t.detachRaw(parent)
			t.removeFromForest(parent)
			t.attach(only, grandparent, anchor)
			t.sizing.setSize(t.nodes, only, keepSize)
			if wasSelected {
				t.selection.selected[grandparent] = only
			}
			parent = grandparent
		default:
			return
		}
	}
}

func (t *LayoutTree) isRoot(node NodeID) bool {
	if _, ok := t.nodes.Parent(node); ok {
		return false
	}
	for _, root := range t.roots {
		if root == node {
			return true
		}
	}
	return false
}

// AddContainer creates a container of the given kind appended under parent.
func (t *LayoutTree) AddContainer(parent NodeID, kind ContainerKind) NodeID {
	node := t.newNode()
	t.sizing.setKind(node, kind)
	t.attach(node, parent, NodeID{})
	return node
}

// AddWindow creates a leaf bound to wid appended under parent.
func (t *LayoutTree) AddWindow(l LayoutID, parent NodeID, wid sys.WindowID) NodeID {
	node := t.newNode()
	t.windows.set(l, node, wid)
	t.attach(node, parent, NodeID{})
	return node
}

// AddWindowAfter creates a leaf bound to wid inserted directly after
// sibling. If sibling is a childless container (such as an empty root or a
// fresh split), the window is added under it instead.
func (t *LayoutTree) AddWindowAfter(l LayoutID, sibling NodeID, wid sys.WindowID) NodeID {
	if _, isLeaf := t.windows.windowAt(sibling); !isLeaf && t.nodes.ChildCount(sibling) == 0 {
		return t.AddWindow(l, sibling, wid)
	}
	parent, ok := t.nodes.Parent(sibling)
	if !ok {
		return t.AddWindow(l, sibling, wid)
	}
	node := t.newNode()
	t.windows.set(l, node, wid)
	after, _ := t.nodes.NextSibling(sibling)
	t.attach(node, parent, after)
	return node
}

// AddWindowBefore creates a leaf bound to wid inserted directly before
// sibling.
func (t *LayoutTree) AddWindowBefore(l LayoutID, sibling NodeID, wid sys.WindowID) NodeID {
	parent, ok := t.nodes.Parent(sibling)
	if !ok {
		return t.AddWindow(l, sibling, wid)
	}
	node := t.newNode()
	t.windows.set(l, node, wid)
	t.attach(node, parent, sibling)
	return node
}

// WindowAt returns the window bound to node, if any.
func (t *LayoutTree) WindowAt(node NodeID) (sys.WindowID, bool) {
	return t.windows.windowAt(node)
}

// WindowNode returns the leaf bound to wid in layout l.
func (t *LayoutTree) WindowNode(l LayoutID, wid sys.WindowID) (NodeID, bool) {
	return t.windows.node(l, wid)
}

// RemoveWindow removes wid's leaf from every layout it appears in.
func (t *LayoutTree) RemoveWindow(wid sys.WindowID) {
	for _, node := range t.windows.nodesForWindow(wid) {
		t.Remove(node)
	}
}

// RemoveWindowsForApp removes every window of pid from every layout.
func (t *LayoutTree) RemoveWindowsForApp(pid int32) {
	var keys []windowKey
	for key := range t.windows.nodes {
		if key.wid.PID == pid {
			keys = append(keys, key)
		}
	}
	for _, key := range keys {
		if node, ok := t.windows.node(key.layout, key.wid); ok {
			t.Remove(node)
		}
	}
}

// RetainWindows removes windows whose id fails the keep predicate, across
// all layouts. Used when restoring saved state.
func (t *LayoutTree) RetainWindows(keep func(sys.WindowID) bool) {
	var drop []sys.WindowID
	seen := make(map[sys.WindowID]bool)
	for key := range t.windows.nodes {
		if !seen[key.wid] {
			seen[key.wid] = true
			if !keep(key.wid) {
				drop = append(drop, key.wid)
			}
		}
	}
	for _, wid := range drop {
		t.RemoveWindow(wid)
	}
}

// SetWindowsForApp reconciles the set of pid's windows in layout l against
// wids: missing windows are added after the selection, absent ones removed.
func (t *LayoutTree) SetWindowsForApp(l LayoutID, pid int32, wids []sys.WindowID) {
	want := make(map[sys.WindowID]bool, len(wids))
	for _, wid := range wids {
		want[wid] = true
	}
	for _, existing := range t.windows.windowsForApp(l, pid) {
		if !want[existing] {
			if node, ok := t.windows.node(l, existing); ok {
				t.Remove(node)
			}
		}
	}
	for _, wid := range wids {
		if _, ok := t.windows.node(l, wid); !ok {
			t.AddWindowAfter(l, t.Selection(l), wid)
		}
	}
}

// Remove detaches node and releases its subtree, compacting ancestors.
func (t *LayoutTree) Remove(node NodeID) {
	if t.isRoot(node) {
		panic(fmt.Sprintf("layout: cannot remove layout root %v; use RemoveLayout", node))
	}
	parent := t.detachRaw(node)
	t.removeFromForest(node)
	t.compact(parent)
}

// Detached is a subtree detached from the tree but still owned by it. It
// must be reattached or removed; queries against it are invalid until then.
type Detached struct {
	t    *LayoutTree
	node NodeID
	used bool
}

// Detach removes node from its parent and returns ownership of the subtree.
func (t *LayoutTree) Detach(node NodeID) *Detached {
	if t.isRoot(node) {
		panic(fmt.Sprintf("layout: cannot detach layout root %v", node))
	}
	parent := t.detachRaw(node)
	t.compact(parent)
	t.detachedLive++
	return &Detached{t: t, node: node}
}

func (d *Detached) consume() NodeID {
	if d.used {
		panic("layout: detached subtree used twice")
	}
	d.used = true
	d.t.detachedLive--
	return d.node
}

// InsertUnder reattaches the subtree as a child of parent at index.
func (d *Detached) InsertUnder(parent NodeID, index int) NodeID {
	node := d.consume()
	before, _ := d.t.nodes.ChildAt(parent, index)
	d.t.attach(node, parent, before)
	return node
}

// InsertAfter reattaches the subtree directly after sibling.
func (d *Detached) InsertAfter(sibling NodeID) NodeID {
	node := d.consume()
	parent, ok := d.t.nodes.Parent(sibling)
	if !ok {
		// Sibling is a root; land inside it instead.
		d.t.attach(node, sibling, NodeID{})
		return node
	}
	after, _ := d.t.nodes.NextSibling(sibling)
	d.t.attach(node, parent, after)
	return node
}

// InsertBefore reattaches the subtree directly before sibling.
func (d *Detached) InsertBefore(sibling NodeID) NodeID {
	node := d.consume()
	parent, ok := d.t.nodes.Parent(sibling)
	if !ok {
		d.t.attach(node, sibling, NodeID{})
		return node
	}
	d.t.attach(node, parent, sibling)
	return node
}

// Remove releases the detached subtree entirely.
func (d *Detached) Remove() {
	node := d.consume()
	d.t.removeFromForest(node)
}

// Select makes node the selected child of each of its ancestors.
func (t *LayoutTree) Select(node NodeID) {
	t.selection.selectNode(t.nodes, node)
}

// Selection returns the current leaf of layout l (or the deepest selectable
// node when the layout is empty).
func (t *LayoutTree) Selection(l LayoutID) NodeID {
	return t.selection.current(t.nodes, t.Root(l))
}

// SelectReturningSurfacedWindows selects node and reports the windows made
// visible by group selection changes, selected child last.
func (t *LayoutTree) SelectReturningSurfacedWindows(node NodeID) []sys.WindowID {
	t.Select(node)
	leaf := t.selection.current(t.nodes, node)
	windows := t.VisibleWindowsUnder(node)
	// Move the focused leaf's window to the end so it is raised last.
	if wid, ok := t.windows.windowAt(leaf); ok {
		out := make([]sys.WindowID, 0, len(windows))
		for _, w := range windows {
			if w != wid {
				out = append(out, w)
			}
		}
		return append(out, wid)
	}
	return windows
}

// VisibleWindowsUnder lists the windows beneath node that are visible given
// the current group selections.
func (t *LayoutTree) VisibleWindowsUnder(node NodeID) []sys.WindowID {
	var out []sys.WindowID
	var walk func(n NodeID)
	walk = func(n NodeID) {
		if wid, ok := t.windows.windowAt(n); ok {
			out = append(out, wid)
			return
		}
		if t.sizing.kind(n).IsGroup() {
			if sel, ok := t.selection.localSelection(t.nodes, n); ok {
				walk(sel)
			} else if first, ok := t.nodes.FirstChild(n); ok {
				walk(first)
			}
			return
		}
		for _, child := range t.nodes.Children(n) {
			walk(child)
		}
	}
	walk(node)
	return out
}

// Traverse finds the leaf reached by moving focus from `from` in the given
// direction, per the selection-path rules: ascend until a container whose
// axis matches the direction has an adjacent sibling, then descend by
// selected child.
func (t *LayoutTree) Traverse(from NodeID, dir Direction) (NodeID, bool) {
	node := from
	for {
		parent, ok := t.nodes.Parent(node)
		if !ok {
			return NodeID{}, false
		}
		if t.sizing.kind(parent).Orientation() == dir.Orientation() {
			var sibling NodeID
			var found bool
			if dir.Forward() {
				sibling, found = t.nodes.NextSibling(node)
			} else {
				sibling, found = t.nodes.PrevSibling(node)
			}
			if found {
				return t.selection.current(t.nodes, sibling), true
			}
		}
		node = parent
	}
}

// ContainerKind returns the kind of a container node.
func (t *LayoutTree) ContainerKind(node NodeID) ContainerKind {
	return t.sizing.kind(node)
}

// SetContainerKind changes a container's arrangement.
func (t *LayoutTree) SetContainerKind(node NodeID, kind ContainerKind) {
	if _, isLeaf := t.windows.windowAt(node); isLeaf {
		panic(fmt.Sprintf("layout: cannot set kind of leaf %v", node))
	}
	t.sizing.setKind(node, kind)
}

// LastUngroupedKind returns the container's kind before it became a group.
func (t *LayoutTree) LastUngroupedKind(node NodeID) ContainerKind {
	return t.sizing.lastUngroupedKind(node)
}

// NestInContainer wraps node in a new container of the given kind, placed at
// node's position with node's weight. A node that is the sole child of its
// parent is not wrapped; the parent's kind changes instead.
func (t *LayoutTree) NestInContainer(l LayoutID, node NodeID, kind ContainerKind) NodeID {
	parent, ok := t.nodes.Parent(node)
	if !ok {
		// Splitting the root just reorients it.
		t.sizing.setKind(node, kind)
		return node
	}
	if t.nodes.ChildCount(parent) == 1 {
		t.sizing.setKind(parent, kind)
		return parent
	}

	keepSize := t.sizing.size(node)
	after, _ := t.nodes.NextSibling(node)
	wasSelected := false
	if sel, ok := t.selection.localSelection(t.nodes, parent); ok {
		wasSelected = sel == node
	}

	t.detachRaw(node)
	container := t.newNode()
	t.sizing.setKind(container, kind)
	t.attach(container, parent, after)
	t.sizing.setSize(t.nodes, container, keepSize)
	t.attach(node, container, NodeID{})
	if wasSelected {
		t.selection.selected[parent] = container
	}
	t.selection.selected[container] = node
	return container
}

// MoveNode moves node one step in the given direction within its layout,
// returning false when no in-layout move is possible (the caller may then
// move it across spaces).
func (t *LayoutTree) MoveNode(l LayoutID, node NodeID, dir Direction) bool {
	if t.isRoot(node) || !t.nodes.Contains(node) {
		return false
	}
	orient := dir.Orientation()
	root := t.Root(l)

	cur := node
	sawOrientation := false
	for {
		parent, ok := t.nodes.Parent(cur)
		if !ok {
			break
		}
		if t.sizing.kind(parent).Orientation() == orient {
			sawOrientation = true
			var sibling NodeID
			var found bool
			if dir.Forward() {
				sibling, found = t.nodes.NextSibling(cur)
			} else {
				sibling, found = t.nodes.PrevSibling(cur)
			}
			if found {
				t.moveRelative(node, cur, sibling, dir)
				t.Select(node)
				return true
			}
		}
		cur = parent
	}

	if sawOrientation {
		return false
	}

	// No ancestor runs along this axis: reorient the root by nesting its
	// children in a container and placing the node beside it.
	t.reorientRoot(l, root, node, dir)
	t.Select(node)
	return true
}

func (t *LayoutTree) moveRelative(node, cur, sibling NodeID, dir Direction) {
	_, siblingIsLeaf := t.windows.windowAt(sibling)
	d := t.Detach(node)
	if cur == node && !siblingIsLeaf && t.nodes.Contains(sibling) && !t.sizing.kind(sibling).IsGroup() {
		// Enter the adjacent container at its near edge.
		if dir.Forward() {
			d.InsertUnder(sibling, 0)
		} else {
			d.InsertUnder(sibling, t.nodes.ChildCount(sibling))
		}
		return
	}
	anchor := sibling
	if cur != node {
		anchor = cur
	}
	if !t.nodes.Contains(anchor) {
		// The anchor was compacted away; fall back to the sibling or
		// the other anchor, whichever survived.
		if t.nodes.Contains(sibling) {
			anchor = sibling
		} else {
			anchor = cur
		}
	}
	if dir.Forward() {
		d.InsertAfter(anchor)
	} else {
		d.InsertBefore(anchor)
	}
}

func (t *LayoutTree) reorientRoot(l LayoutID, root, node NodeID, dir Direction) {
	var others []NodeID
	for _, child := range t.nodes.Children(root) {
		if child != node {
			others = append(others, child)
		}
	}

	if len(others) > 1 {
		// Gather the current arrangement into one container, flip the
		// root's axis, and place the node beside it.
		inner := t.newNode()
		t.sizing.setKind(inner, t.sizing.kind(root))
		for _, child := range others {
			keep := t.sizing.size(child)
			t.Detach(child).InsertUnder(inner, t.nodes.ChildCount(inner))
			t.sizing.setSize(t.nodes, child, keep)
		}
		t.sizing.setKind(root, KindFor(dir.Orientation()))
		t.attach(inner, root, NodeID{})
	} else {
		t.sizing.setKind(root, KindFor(dir.Orientation()))
	}

	d := t.Detach(node)
	if dir.Forward() {
		d.InsertUnder(root, t.nodes.ChildCount(root))
	} else {
		d.InsertUnder(root, 0)
	}
}

// MoveNodeAfter detaches node and reattaches it after sibling, rebinding
// window entries when the destination is a different layout. Used for
// cross-space moves.
func (t *LayoutTree) MoveNodeAfter(sibling, node NodeID) {
	if l, ok := t.layoutOf(sibling); ok {
		t.rebindLayout(node, l)
	}
	if _, isLeaf := t.windows.windowAt(sibling); !isLeaf && t.nodes.ChildCount(sibling) == 0 {
		t.Detach(node).InsertUnder(sibling, 0)
		return
	}
	t.Detach(node).InsertAfter(sibling)
}

// rebindLayout re-keys the window bindings of node's subtree to layout l.
func (t *LayoutTree) rebindLayout(node NodeID, l LayoutID) {
	for _, n := range t.nodes.Preorder(node) {
		entry, ok := t.windows.at[n]
		if !ok || entry.layout == l {
			continue
		}
		delete(t.windows.nodes, windowKey{layout: entry.layout, wid: entry.wid})
		entry.layout = l
		t.windows.at[n] = entry
		t.windows.nodes[windowKey{layout: l, wid: entry.wid}] = n
	}
}

// TakeShare transfers weight between two siblings, clamped so neither goes
// negative.
func (t *LayoutTree) TakeShare(node, from NodeID, share float64) {
	t.sizing.takeShare(t.nodes, node, from, share)
}

// Promote moves node up one level, becoming a sibling of its former parent.
func (t *LayoutTree) Promote(node NodeID) bool {
	parent, ok := t.nodes.Parent(node)
	if !ok || t.isRoot(parent) {
		return false
	}
	grandparent, _ := t.nodes.Parent(parent)
	after, _ := t.nodes.NextSibling(parent)
	d := t.Detach(node)
	switch {
	case t.nodes.Contains(parent):
		d.InsertAfter(parent)
	case !after.IsZero():
		// The parent was compacted away and its remaining child took its
		// place; land right after that child.
		d.InsertBefore(after)
	default:
		d.InsertUnder(grandparent, t.nodes.ChildCount(grandparent))
	}
	t.Select(node)
	return true
}

// Demote moves node into an adjacent container sibling, preferring the
// previous one.
func (t *LayoutTree) Demote(node NodeID) bool {
	target := NodeID{}
	if prev, ok := t.nodes.PrevSibling(node); ok {
		if _, isLeaf := t.windows.windowAt(prev); !isLeaf {
			target = prev
		}
	}
	if target.IsZero() {
		if next, ok := t.nodes.NextSibling(node); ok {
			if _, isLeaf := t.windows.windowAt(next); !isLeaf {
				target = next
			}
		}
	}
	if target.IsZero() {
		return false
	}
	t.Detach(node).InsertUnder(target, t.nodes.ChildCount(target))
	t.Select(node)
	return true
}

// SwapWindows exchanges the windows of two leaves, leaving the tree shape
// and weights untouched.
func (t *LayoutTree) SwapWindows(a, b NodeID) {
	t.windows.swap(a, b)
}

// Balance gives every child of container an equal weight.
func (t *LayoutTree) Balance(container NodeID) {
	children := t.nodes.Children(container)
	for _, child := range children {
		t.sizing.setSize(t.nodes, child, 1.0)
	}
}

// SetWeight overrides a node's weight directly.
func (t *LayoutTree) SetWeight(node NodeID, weight float64) {
	t.sizing.setSize(t.nodes, node, weight)
}

// Weight returns a node's weight.
func (t *LayoutTree) Weight(node NodeID) float64 { return t.sizing.size(node) }

// Total returns a container's stored child-weight total.
func (t *LayoutTree) Total(node NodeID) float64 { return t.sizing.total(node) }

// IsFullscreen reports the node's fullscreen mark.
func (t *LayoutTree) IsFullscreen(node NodeID) bool { return t.sizing.isFullscreen(node) }

// SetFullscreen marks or unmarks a node fullscreen.
func (t *LayoutTree) SetFullscreen(node NodeID, fullscreen bool) {
	t.sizing.setFullscreen(node, fullscreen)
}

// ToggleFullscreen flips the node's fullscreen mark and returns the new
// state.
func (t *LayoutTree) ToggleFullscreen(node NodeID) bool {
	return t.sizing.toggleFullscreen(node)
}

// DrawTree renders a layout as an indented diagram for debug logging.
func (t *LayoutTree) DrawTree(l LayoutID) string {
	var b strings.Builder
	var walk func(node NodeID, depth int)
	walk = func(node NodeID, depth int) {
		b.WriteString(strings.Repeat("  ", depth))
		if wid, ok := t.windows.windowAt(node); ok {
			fmt.Fprintf(&b, "%v %s %s\n", node, wid, t.sizing.debug(node, false))
			return
		}
		fmt.Fprintf(&b, "%v %s\n", node, t.sizing.debug(node, true))
		for _, child := range t.nodes.Children(node) {
			walk(child, depth+1)
		}
	}
	walk(t.Root(l), 0)
	return b.String()
}

// CheckInvariants verifies the structural invariants of a layout. Intended
// for tests and debug builds.
func (t *LayoutTree) CheckInvariants(l LayoutID) error {
	if t.detachedLive != 0 {
		return fmt.Errorf("%d detached subtrees neither reattached nor removed", t.detachedLive)
	}
	root := t.Root(l)
	var check func(node NodeID) error
	check = func(node NodeID) error {
		if _, isLeaf := t.windows.windowAt(node); isLeaf {
			if t.nodes.ChildCount(node) != 0 {
				return fmt.Errorf("leaf %v has children", node)
			}
			return nil
		}
		count := t.nodes.ChildCount(node)
		if node != root && count < 2 {
			return fmt.Errorf("container %v has %d children", node, count)
		}
		sum := 0.0
		for _, child := range t.nodes.Children(node) {
			sum += t.sizing.size(child)
			if err := check(child); err != nil {
				return err
			}
		}
		if diff := sum - t.sizing.total(node); diff > 1e-4 || diff < -1e-4 {
			return fmt.Errorf("container %v total %v != sum %v", node, t.sizing.total(node), sum)
		}
		return nil
	}
	return check(root)
}
