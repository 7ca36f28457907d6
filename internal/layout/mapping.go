package layout

import (
	"github.com/glidewm/glide/internal/sys"
)

type layoutEntry struct {
	layout   LayoutID
	modified bool
}

// SpaceLayoutMapping tracks the layouts of one space, keyed by screen size.
// Sizes share a layout by reference until the user makes an interactive
// modification at that size; layouts with no remaining references are
// removed from the tree.
type SpaceLayoutMapping struct {
	active  sys.Size
	entries map[sys.Size]*layoutEntry
	refs    map[LayoutID]int
}

// NewSpaceLayoutMapping creates the mapping for a space first seen at the
// given screen size.
func NewSpaceLayoutMapping(size sys.Size, tree *LayoutTree) *SpaceLayoutMapping {
	l := tree.CreateLayout()
	return &SpaceLayoutMapping{
		active:  size,
		entries: map[sys.Size]*layoutEntry{size: {layout: l}},
		refs:    map[LayoutID]int{l: 1},
	}
}

// ActiveLayout returns the layout for the current screen size.
func (m *SpaceLayoutMapping) ActiveLayout() LayoutID {
	return m.entries[m.active].layout
}

// ActiveSize returns the current screen size.
func (m *SpaceLayoutMapping) ActiveSize() sys.Size { return m.active }

// ActivateSize switches the mapping to a screen size. Sizes never modified
// re-share whatever layout was last active, so only explicitly modified
// sizes diverge.
func (m *SpaceLayoutMapping) ActivateSize(size sys.Size, tree *LayoutTree) {
	if size == m.active {
		return
	}
	if entry, ok := m.entries[size]; ok && entry.modified {
		m.active = size
		return
	}
	current := m.entries[m.active].layout
	if old, ok := m.entries[size]; ok && old.layout != current {
		m.unref(old.layout, tree)
	}
	if existing, ok := m.entries[size]; ok && existing.layout == current {
		m.active = size
		return
	}
	m.entries[size] = &layoutEntry{layout: current}
	m.refs[current]++
	m.active = size
}

// PrepareModify must be called before a structural modification at the
// current size. A layout shared with other sizes is cloned copy-on-write so
// the change stays local to this size.
func (m *SpaceLayoutMapping) PrepareModify(tree *LayoutTree) LayoutID {
	entry := m.entries[m.active]
	if m.refs[entry.layout] > 1 {
		clone := tree.CloneLayout(entry.layout)
		m.refs[entry.layout]--
		entry.layout = clone
		m.refs[clone] = 1
	}
	entry.modified = true
	return entry.layout
}

// LayoutForSize returns the layout stored for a screen size, if any.
func (m *SpaceLayoutMapping) LayoutForSize(size sys.Size) (LayoutID, bool) {
	entry, ok := m.entries[size]
	if !ok {
		return 0, false
	}
	return entry.layout, true
}

// Modified reports whether the active size holds an explicit modification.
func (m *SpaceLayoutMapping) Modified() bool {
	return m.entries[m.active].modified
}

// LayoutIDs returns every layout referenced by this mapping.
func (m *SpaceLayoutMapping) LayoutIDs() []LayoutID {
	out := make([]LayoutID, 0, len(m.refs))
	for l := range m.refs {
		out = append(out, l)
	}
	return out
}

// Release drops every layout of this mapping from the tree; the mapping
// must not be used afterward.
func (m *SpaceLayoutMapping) Release(tree *LayoutTree) {
	for l := range m.refs {
		tree.RemoveLayout(l)
	}
	m.refs = nil
	m.entries = nil
}

func (m *SpaceLayoutMapping) unref(l LayoutID, tree *LayoutTree) {
	m.refs[l]--
	if m.refs[l] <= 0 {
		delete(m.refs, l)
		tree.RemoveLayout(l)
	}
}
