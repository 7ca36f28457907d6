package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glidewm/glide/internal/config"
	"github.com/glidewm/glide/internal/sys"
)

func calcConfig(inner, outer int) *config.Config {
	cfg := config.Default()
	cfg.InnerGap = inner
	cfg.OuterGap = outer
	cfg.GroupBars.Enabled = false
	return cfg
}

func framesByWindow(frames []WindowFrame) map[sys.WindowID]WindowFrame {
	out := make(map[sys.WindowID]WindowFrame, len(frames))
	for _, f := range frames {
		out[f.Window] = f
	}
	return out
}

func TestSingleWindowWithOuterGap(t *testing.T) {
	tree := NewTree()
	l := tree.CreateLayout()
	tree.AddWindow(l, tree.Root(l), wid(1, 1))

	frames := tree.CalculateLayout(l, sys.NewRect(0, 0, 1000, 800), calcConfig(0, 8))
	require.Len(t, frames, 1)
	assert.Equal(t, sys.NewRect(8, 8, 984, 784), frames[0].Rect)
	assert.True(t, frames[0].Visible)
}

func TestHorizontalSplitEqualWeights(t *testing.T) {
	tree := NewTree()
	l := tree.CreateLayout()
	root := tree.Root(l)
	tree.AddWindow(l, root, wid(1, 1))
	tree.AddWindow(l, root, wid(1, 2))

	frames := tree.CalculateLayout(l, sys.NewRect(0, 0, 1000, 800), calcConfig(10, 0))
	byWin := framesByWindow(frames)
	assert.Equal(t, sys.NewRect(0, 0, 495, 800), byWin[wid(1, 1)].Rect)
	assert.Equal(t, sys.NewRect(505, 0, 495, 800), byWin[wid(1, 2)].Rect)
}

func TestStackedSelectionAndBar(t *testing.T) {
	tree := NewTree()
	l := tree.CreateLayout()
	root := tree.Root(l)
	tree.SetContainerKind(root, KindStacked)
	tree.AddWindow(l, root, wid(1, 1))
	n2 := tree.AddWindow(l, root, wid(1, 2))
	tree.Select(n2)

	cfg := calcConfig(0, 0)
	cfg.GroupBars.Enabled = true
	cfg.GroupBars.Thickness = 20

	frames, groups := tree.CalculateLayoutAndGroups(l, sys.NewRect(0, 0, 600, 400), cfg)
	byWin := framesByWindow(frames)

	selected := byWin[wid(1, 2)]
	assert.Equal(t, sys.NewRect(0, 20, 600, 380), selected.Rect)
	assert.True(t, selected.Visible)

	hidden := byWin[wid(1, 1)]
	assert.False(t, hidden.Visible)
	assert.Equal(t, -10000, hidden.Rect.X)
	assert.Equal(t, 600, hidden.Rect.Width)

	require.Len(t, groups, 1)
	assert.Equal(t, KindStacked, groups[0].Kind)
	assert.Equal(t, 2, groups[0].Count)
	assert.Equal(t, 1, groups[0].SelectedIndex)
	assert.Equal(t, sys.NewRect(0, 0, 600, 20), groups[0].BarFrame)
}

func TestProportionalNestedLayout(t *testing.T) {
	tree := NewTree()
	l := tree.CreateLayout()
	root := tree.Root(l)
	tree.AddWindow(l, root, wid(1, 1))
	inner := tree.AddContainer(root, KindVertical)
	tree.AddWindow(l, inner, wid(1, 2))
	tree.AddWindow(l, inner, wid(1, 3))
	tree.AddWindow(l, root, wid(1, 4))

	frames := tree.CalculateLayout(l, sys.NewRect(0, 0, 3000, 1000), calcConfig(0, 0))
	byWin := framesByWindow(frames)
	assert.Equal(t, sys.NewRect(0, 0, 1000, 1000), byWin[wid(1, 1)].Rect)
	assert.Equal(t, sys.NewRect(1000, 0, 1000, 500), byWin[wid(1, 2)].Rect)
	assert.Equal(t, sys.NewRect(1000, 500, 1000, 500), byWin[wid(1, 3)].Rect)
	assert.Equal(t, sys.NewRect(2000, 0, 1000, 1000), byWin[wid(1, 4)].Rect)
}

// Uneven weights must still fill the container to the pixel.
func TestRoundedCarryDistributionSumsExactly(t *testing.T) {
	tree := NewTree()
	l := tree.CreateLayout()
	root := tree.Root(l)
	n1 := tree.AddWindow(l, root, wid(1, 1))
	tree.AddWindow(l, root, wid(1, 2))
	n3 := tree.AddWindow(l, root, wid(1, 3))
	tree.SetWeight(n1, 1.3)
	tree.SetWeight(n3, 0.61)

	screen := sys.NewRect(0, 0, 1001, 500)
	inner := 7
	frames := tree.CalculateLayout(l, screen, calcConfig(inner, 0))
	require.Len(t, frames, 3)

	total := 0
	for _, f := range frames {
		total += f.Rect.Width
	}
	assert.Equal(t, screen.Width-2*inner, total)

	// Frames tile left to right without gaps beyond the configured one.
	assert.Equal(t, 0, frames[0].Rect.X)
	assert.Equal(t, frames[0].Rect.MaxX()+inner, frames[1].Rect.X)
	assert.Equal(t, frames[1].Rect.MaxX()+inner, frames[2].Rect.X)
}

func TestFullscreenHidesSiblings(t *testing.T) {
	tree := NewTree()
	l := tree.CreateLayout()
	root := tree.Root(l)
	tree.AddWindow(l, root, wid(1, 1))
	n2 := tree.AddWindow(l, root, wid(1, 2))
	tree.AddWindow(l, root, wid(1, 3))
	tree.SetFullscreen(n2, true)

	frames := tree.CalculateLayout(l, sys.NewRect(0, 0, 900, 600), calcConfig(4, 6))
	byWin := framesByWindow(frames)

	assert.Equal(t, sys.NewRect(6, 6, 888, 588), byWin[wid(1, 2)].Rect)
	assert.True(t, byWin[wid(1, 2)].Visible)
	assert.False(t, byWin[wid(1, 1)].Visible)
	assert.False(t, byWin[wid(1, 3)].Visible)
	assert.Equal(t, -10000, byWin[wid(1, 1)].Rect.X)
}

func TestLayoutOutputIsStable(t *testing.T) {
	tree := NewTree()
	l := tree.CreateLayout()
	root := tree.Root(l)
	for slot := uint32(1); slot <= 5; slot++ {
		tree.AddWindow(l, root, wid(2, slot))
	}

	screen := sys.NewRect(0, 0, 1280, 720)
	cfg := calcConfig(5, 5)
	first := tree.CalculateLayout(l, screen, cfg)
	second := tree.CalculateLayout(l, screen, cfg)
	assert.Equal(t, first, second)
}

func TestEmittedPerWindowExactlyOnce(t *testing.T) {
	tree := NewTree()
	l := tree.CreateLayout()
	root := tree.Root(l)
	group := tree.AddContainer(root, KindTabbed)
	tree.AddWindow(l, group, wid(1, 1))
	tree.AddWindow(l, group, wid(1, 2))
	tree.AddWindow(l, root, wid(1, 3))

	frames := tree.CalculateLayout(l, sys.NewRect(0, 0, 800, 600), calcConfig(0, 0))
	seen := make(map[sys.WindowID]int)
	for _, f := range frames {
		seen[f.Window]++
	}
	assert.Len(t, seen, 3)
	for w, n := range seen {
		assert.Equal(t, 1, n, "window %v emitted %d times", w, n)
	}
}
