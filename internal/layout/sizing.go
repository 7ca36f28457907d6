package layout

import "fmt"

// layoutInfo is the sizing observer's per-node state.
type layoutInfo struct {
	// size is this node's share of its parent's principal axis.
	size float64
	// total is the sum of all children's sizes.
	total float64
	// kind is the container arrangement; unused for leaves.
	kind ContainerKind
	// lastUngrouped remembers the kind before the container became a
	// group, so ungroup can restore it.
	lastUngrouped ContainerKind
	fullscreen    bool
}

// sizing tracks per-node weights and per-container totals. It subscribes to
// tree events and keeps the invariant total == Σ children.size.
type sizing struct {
	info map[NodeID]*layoutInfo
}

func newSizing() sizing {
	return sizing{info: make(map[NodeID]*layoutInfo)}
}

func (s *sizing) handleEvent(m *NodeMap, ev treeEvent) {
	switch ev.kind {
	case evAddedToForest:
		s.info[ev.node] = &layoutInfo{kind: KindHorizontal, lastUngrouped: KindHorizontal}
	case evAddedToParent:
		parent := s.get(ev.parent)
		// The node is already linked, so the prior child count is one
		// less. New children take an equal share of the existing
		// distribution; the first child takes 1.0.
		before := m.ChildCount(ev.parent) - 1
		share := 1.0
		if before > 0 {
			share = parent.total / float64(before)
		}
		s.get(ev.node).size = share
		parent.total += share
	case evRemovingFromParent:
		s.get(ev.parent).total -= s.get(ev.node).size
	case evRemovedFromForest:
		delete(s.info, ev.node)
	case evCopied:
		src := *s.get(ev.src)
		s.info[ev.dest] = &src
	}
}

func (s *sizing) get(node NodeID) *layoutInfo {
	info, ok := s.info[node]
	if !ok {
		panic(fmt.Sprintf("layout: no sizing info for %v", node))
	}
	return info
}

func (s *sizing) size(node NodeID) float64  { return s.get(node).size }
func (s *sizing) total(node NodeID) float64 { return s.get(node).total }

func (s *sizing) kind(node NodeID) ContainerKind { return s.get(node).kind }

func (s *sizing) setKind(node NodeID, kind ContainerKind) {
	info := s.get(node)
	info.kind = kind
	if !kind.IsGroup() {
		info.lastUngrouped = kind
	}
}

func (s *sizing) lastUngroupedKind(node NodeID) ContainerKind {
	return s.get(node).lastUngrouped
}

// proportion returns node's fraction of its parent's axis.
func (s *sizing) proportion(m *NodeMap, node NodeID) (float64, bool) {
	parent, ok := m.Parent(node)
	if !ok {
		return 0, false
	}
	total := s.get(parent).total
	if total <= 0 {
		return 0, false
	}
	return s.get(node).size / total, true
}

// setSize overrides a node's weight, keeping the parent total consistent.
func (s *sizing) setSize(m *NodeMap, node NodeID, size float64) {
	if size < 0 {
		size = 0
	}
	info := s.get(node)
	if parent, ok := m.Parent(node); ok {
		s.get(parent).total += size - info.size
	}
	info.size = size
}

// takeShare moves up to share weight from one sibling to another, clamped so
// neither weight goes negative.
func (s *sizing) takeShare(m *NodeMap, node, from NodeID, share float64) {
	np, _ := m.Parent(node)
	fp, _ := m.Parent(from)
	if np != fp {
		panic(fmt.Sprintf("layout: takeShare across parents: %v, %v", node, from))
	}
	ni, fi := s.get(node), s.get(from)
	if share > fi.size {
		share = fi.size
	}
	if share < -ni.size {
		share = -ni.size
	}
	fi.size -= share
	ni.size += share
}

func (s *sizing) isFullscreen(node NodeID) bool { return s.get(node).fullscreen }

func (s *sizing) setFullscreen(node NodeID, fullscreen bool) {
	s.get(node).fullscreen = fullscreen
}

func (s *sizing) toggleFullscreen(node NodeID) bool {
	info := s.get(node)
	info.fullscreen = !info.fullscreen
	return info.fullscreen
}

func (s *sizing) debug(node NodeID, isContainer bool) string {
	info := s.get(node)
	if isContainer {
		return fmt.Sprintf("%s [size %.2f total %.2f]", info.kind, info.size, info.total)
	}
	return fmt.Sprintf("[size %.2f]", info.size)
}
