package layout

// selection remembers, for each container, the child that was last selected.
// The current leaf of a layout is found by descending selected children from
// the root.
type selection struct {
	selected map[NodeID]NodeID
}

func newSelection() selection {
	return selection{selected: make(map[NodeID]NodeID)}
}

func (s *selection) handleEvent(m *NodeMap, ev treeEvent) {
	switch ev.kind {
	case evAddedToParent:
		if _, ok := s.selected[ev.parent]; !ok {
			s.selected[ev.parent] = ev.node
		}
	case evRemovingFromParent:
		if s.selected[ev.parent] == ev.node {
			// Fall back to a neighbor so the selection path stays
			// valid after the removal.
			if next, ok := m.NextSibling(ev.node); ok {
				s.selected[ev.parent] = next
			} else if prev, ok := m.PrevSibling(ev.node); ok {
				s.selected[ev.parent] = prev
			} else {
				delete(s.selected, ev.parent)
			}
		}
	case evRemovedFromForest:
		delete(s.selected, ev.node)
	}
}

// localSelection returns the selected child of node, validated to still be a
// child of node.
func (s *selection) localSelection(m *NodeMap, node NodeID) (NodeID, bool) {
	sel, ok := s.selected[node]
	if !ok || !m.Contains(sel) {
		return NodeID{}, false
	}
	if parent, ok := m.Parent(sel); !ok || parent != node {
		return NodeID{}, false
	}
	return sel, true
}

// current descends from node by selected children to the deepest selectable
// node (a leaf, or a childless container).
func (s *selection) current(m *NodeMap, node NodeID) NodeID {
	for {
		child, ok := s.localSelection(m, node)
		if !ok {
			if first, ok := m.FirstChild(node); ok {
				node = first
				continue
			}
			return node
		}
		node = child
	}
}

// selectNode records node as the selected child of every ancestor.
func (s *selection) selectNode(m *NodeMap, node NodeID) {
	for {
		parent, ok := m.Parent(node)
		if !ok {
			return
		}
		s.selected[parent] = node
		node = parent
	}
}
