package manager

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/glidewm/glide/internal/layout"
	"github.com/glidewm/glide/internal/sys"
)

// savedNode is the on-disk form of one tree node.
type savedNode struct {
	Kind       string      `yaml:"kind,omitempty"`
	Size       float64     `yaml:"size"`
	Window     string      `yaml:"window,omitempty"`
	Selected   bool        `yaml:"selected,omitempty"`
	Fullscreen bool        `yaml:"fullscreen,omitempty"`
	Children   []savedNode `yaml:"children,omitempty"`
}

type savedWindow struct {
	Window string   `yaml:"window"`
	Frame  sys.Rect `yaml:"frame"`
}

type savedSpace struct {
	Space    uint64        `yaml:"space"`
	Width    int           `yaml:"width"`
	Height   int           `yaml:"height"`
	Mode     string        `yaml:"mode"`
	Root     savedNode     `yaml:"root"`
	Floating []savedWindow `yaml:"floating,omitempty"`
}

type savedState struct {
	Spaces []savedSpace `yaml:"spaces"`
}

func windowKeyString(wid sys.WindowID) string {
	return fmt.Sprintf("%d/%d", wid.PID, wid.Slot)
}

func parseWindowKey(s string) (sys.WindowID, error) {
	pidStr, slotStr, ok := strings.Cut(s, "/")
	if !ok {
		return sys.WindowID{}, fmt.Errorf("bad window key %q", s)
	}
	pid, err := strconv.ParseInt(pidStr, 10, 32)
	if err != nil {
		return sys.WindowID{}, fmt.Errorf("bad window key %q: %w", s, err)
	}
	slot, err := strconv.ParseUint(slotStr, 10, 32)
	if err != nil {
		return sys.WindowID{}, fmt.Errorf("bad window key %q: %w", s, err)
	}
	return sys.NewWindowID(int32(pid), uint32(slot)), nil
}

// SaveState writes the active layout of every space to a yaml state file so
// a restarted daemon can pick up where it left off.
func (m *Manager) SaveState(path string) error {
	var state savedState
	for space, st := range m.spaces {
		l := st.mapping.ActiveLayout()
		size := st.mapping.ActiveSize()
		saved := savedSpace{
			Space:  uint64(space),
			Width:  size.Width,
			Height: size.Height,
			Mode:   string(st.mode),
			Root:   m.snapshotNode(l, m.tree.Root(l)),
		}
		for _, wid := range m.floatingOnSpace(space) {
			saved.Floating = append(saved.Floating, savedWindow{
				Window: windowKeyString(wid),
				Frame:  m.floating[wid].Frame,
			})
		}
		state.Spaces = append(state.Spaces, saved)
	}

	data, err := yaml.Marshal(&state)
	if err != nil {
		return fmt.Errorf("failed to encode layout state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (m *Manager) snapshotNode(l layout.LayoutID, node layout.NodeID) savedNode {
	saved := savedNode{Size: m.tree.Weight(node), Fullscreen: m.tree.IsFullscreen(node)}
	if wid, ok := m.tree.WindowAt(node); ok {
		saved.Window = windowKeyString(wid)
		return saved
	}
	saved.Kind = string(m.tree.ContainerKind(node))
	sel := m.tree.Selection(l)
	for _, child := range m.tree.Map().Children(node) {
		childSaved := m.snapshotNode(l, child)
		childSaved.Selected = m.tree.Map().IsAncestor(child, sel)
		saved.Children = append(saved.Children, childSaved)
	}
	return saved
}

// LoadState restores layouts saved by SaveState. Windows whose process is
// not in the alive set are dropped after the rebuild.
func (m *Manager) LoadState(path string, alive map[int32]bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var state savedState
	if err := yaml.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("failed to parse layout state: %w", err)
	}

	for _, saved := range state.Spaces {
		space := sys.SpaceID(saved.Space)
		m.SpaceExposed(space, sys.Size{Width: saved.Width, Height: saved.Height})
		st := m.spaces[space]
		if saved.Mode == string(ModeScroll) {
			st.mode = ModeScroll
		}
		l := st.mapping.ActiveLayout()
		root := m.tree.Root(l)
		if kind := layout.ContainerKind(saved.Root.Kind); kind != "" {
			m.tree.SetContainerKind(root, kind)
		}
		for _, child := range saved.Root.Children {
			if err := m.restoreNode(l, root, child); err != nil {
				return err
			}
		}
		for _, fw := range saved.Floating {
			wid, err := parseWindowKey(fw.Window)
			if err != nil {
				return err
			}
			m.addFloating(wid, space, fw.Frame)
		}
	}

	if alive != nil {
		m.AppsRunningUpdated(alive)
	}
	return nil
}

func (m *Manager) restoreNode(l layout.LayoutID, parent layout.NodeID, saved savedNode) error {
	var node layout.NodeID
	if saved.Window != "" {
		wid, err := parseWindowKey(saved.Window)
		if err != nil {
			return err
		}
		node = m.tree.AddWindow(l, parent, wid)
	} else {
		node = m.tree.AddContainer(parent, layout.ContainerKind(saved.Kind))
		for _, child := range saved.Children {
			if err := m.restoreNode(l, node, child); err != nil {
				return err
			}
		}
	}
	if saved.Size > 0 {
		m.tree.SetWeight(node, saved.Size)
	}
	if saved.Fullscreen {
		m.tree.SetFullscreen(node, true)
	}
	if saved.Selected {
		m.tree.Select(node)
	}
	return nil
}
