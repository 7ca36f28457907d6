package manager

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glidewm/glide/internal/config"
	"github.com/glidewm/glide/internal/layout"
	"github.com/glidewm/glide/internal/sys"
)

var (
	testSpace  = sys.SpaceID(1)
	testScreen = sys.NewRect(0, 0, 1000, 800)
	testNow    = time.Unix(100, 0)
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.InnerGap = 0
	cfg.OuterGap = 0
	cfg.GroupBars.Enabled = false
	return cfg
}

func regularInfo() sys.WindowInfo {
	return sys.WindowInfo{IsStandard: true, IsResizable: true, HasLayer: true, Layer: 0}
}

func win(pid int32, slot uint32) WindowWithInfo {
	return WindowWithInfo{
		ID:    sys.NewWindowID(pid, slot),
		Info:  regularInfo(),
		Frame: sys.NewRect(0, 0, 100, 100),
	}
}

func exposed(t *testing.T, windows int) *Manager {
	t.Helper()
	m := New()
	m.SpaceExposed(testSpace, testScreen.Size())
	for i := 1; i <= windows; i++ {
		m.WindowAdded(testSpace, win(1, uint32(i)))
	}
	return m
}

func (m *Manager) cmd(t *testing.T, cfg *config.Config, words ...string) EventResponse {
	t.Helper()
	cmd, err := ParseCommand(words)
	require.NoError(t, err)
	return m.HandleCommand(testSpace, true, []sys.SpaceID{testSpace}, cmd, testScreen, cfg, testNow)
}

func layoutByWindow(m *Manager, cfg *config.Config) map[sys.WindowID]layout.WindowFrame {
	out := make(map[sys.WindowID]layout.WindowFrame)
	for _, f := range m.CalculateLayout(testSpace, testScreen, cfg, testNow) {
		out[f.Window] = f
	}
	return out
}

func TestWindowsAreTiledSideBySide(t *testing.T) {
	cfg := testConfig()
	m := exposed(t, 2)

	frames := layoutByWindow(m, cfg)
	assert.Equal(t, sys.NewRect(0, 0, 500, 800), frames[sys.NewWindowID(1, 1)].Rect)
	assert.Equal(t, sys.NewRect(500, 0, 500, 800), frames[sys.NewWindowID(1, 2)].Rect)
}

func TestNonResizableWindowFloatsByDefault(t *testing.T) {
	cfg := testConfig()
	m := exposed(t, 1)

	floating := win(1, 2)
	floating.Info.IsResizable = false
	floating.Frame = sys.NewRect(10, 10, 300, 200)
	m.WindowAdded(testSpace, floating)

	frames := layoutByWindow(m, cfg)
	assert.Equal(t, sys.NewRect(0, 0, 1000, 800), frames[sys.NewWindowID(1, 1)].Rect,
		"tiled window keeps the full screen")
	assert.Equal(t, sys.NewRect(10, 10, 300, 200), frames[sys.NewWindowID(1, 2)].Rect,
		"floating window keeps its own frame")
}

func TestFocusMovesBetweenWindows(t *testing.T) {
	cfg := testConfig()
	m := exposed(t, 3)
	m.WindowFocused([]sys.SpaceID{testSpace}, sys.NewWindowID(1, 1))

	resp := m.cmd(t, cfg, "focus", "right")
	assert.Equal(t, sys.NewWindowID(1, 2), resp.FocusWindow)

	m.WindowFocused([]sys.SpaceID{testSpace}, resp.FocusWindow)
	resp = m.cmd(t, cfg, "focus", "left")
	assert.Equal(t, sys.NewWindowID(1, 1), resp.FocusWindow)

	resp = m.cmd(t, cfg, "focus", "up")
	assert.True(t, resp.FocusWindow.IsZero(), "no vertical neighbor")
}

// Toggling floating twice returns the layout and selection to the original
// state.
func TestToggleFloatingTwiceIsIdentity(t *testing.T) {
	cfg := testConfig()
	m := exposed(t, 3)
	m.WindowFocused([]sys.SpaceID{testSpace}, sys.NewWindowID(1, 2))

	before := layoutByWindow(m, cfg)

	m.cmd(t, cfg, "toggle-floating")
	mid := layoutByWindow(m, cfg)
	assert.NotEqual(t, before[sys.NewWindowID(1, 1)], mid[sys.NewWindowID(1, 1)],
		"floating the middle window re-tiles the rest")

	m.cmd(t, cfg, "toggle-floating")
	after := layoutByWindow(m, cfg)
	assert.Equal(t, before, after)

	l, ok := m.layoutFor(testSpace)
	require.True(t, ok)
	sel := m.Tree().Selection(l)
	wid, _ := m.Tree().WindowAt(sel)
	assert.Equal(t, sys.NewWindowID(1, 2), wid, "selection back on the re-tiled window")
}

func TestSplitThenUngroupIsNoOpOnLayout(t *testing.T) {
	cfg := testConfig()
	m := exposed(t, 2)
	m.WindowFocused([]sys.SpaceID{testSpace}, sys.NewWindowID(1, 1))

	before := layoutByWindow(m, cfg)
	m.cmd(t, cfg, "split", "vertical")
	m.cmd(t, cfg, "ungroup")
	after := layoutByWindow(m, cfg)
	assert.Equal(t, before, after)
}

func TestResizeCommandMovesEdge(t *testing.T) {
	cfg := testConfig()
	m := exposed(t, 2)
	m.WindowFocused([]sys.SpaceID{testSpace}, sys.NewWindowID(1, 1))

	m.cmd(t, cfg, "resize", "right", "100")

	frames := layoutByWindow(m, cfg)
	assert.Equal(t, 600, frames[sys.NewWindowID(1, 1)].Rect.Width)
	assert.Equal(t, 400, frames[sys.NewWindowID(1, 2)].Rect.Width)
}

func TestResizeClampsToMinWindowSize(t *testing.T) {
	cfg := testConfig()
	cfg.MinWindowSize = 100
	m := exposed(t, 2)
	m.WindowFocused([]sys.SpaceID{testSpace}, sys.NewWindowID(1, 1))

	m.cmd(t, cfg, "resize", "right", "2000")

	frames := layoutByWindow(m, cfg)
	assert.Equal(t, 900, frames[sys.NewWindowID(1, 1)].Rect.Width)
	assert.Equal(t, 100, frames[sys.NewWindowID(1, 2)].Rect.Width)
}

func TestSwapExchangesWindows(t *testing.T) {
	cfg := testConfig()
	m := exposed(t, 2)
	m.WindowFocused([]sys.SpaceID{testSpace}, sys.NewWindowID(1, 1))

	resp := m.cmd(t, cfg, "swap", "right")
	assert.Equal(t, sys.NewWindowID(1, 1), resp.FocusWindow)

	frames := layoutByWindow(m, cfg)
	assert.Equal(t, 0, frames[sys.NewWindowID(1, 2)].Rect.X)
	assert.Equal(t, 500, frames[sys.NewWindowID(1, 1)].Rect.X)
}

func TestMoveToOtherSpace(t *testing.T) {
	cfg := testConfig()
	m := exposed(t, 2)
	other := sys.SpaceID(2)
	m.SpaceExposed(other, testScreen.Size())
	m.WindowFocused([]sys.SpaceID{testSpace}, sys.NewWindowID(1, 1))

	cmd, err := ParseCommand([]string{"move-to-space", "2"})
	require.NoError(t, err)
	m.HandleCommand(testSpace, true, []sys.SpaceID{testSpace, other}, cmd, testScreen, cfg, testNow)

	l1, _ := m.layoutFor(testSpace)
	l2, _ := m.layoutFor(other)
	_, onFirst := m.Tree().WindowNode(l1, sys.NewWindowID(1, 1))
	_, onSecond := m.Tree().WindowNode(l2, sys.NewWindowID(1, 1))
	assert.False(t, onFirst)
	assert.True(t, onSecond)
}

func TestCommandModificationDivergesLayoutPerScreenSize(t *testing.T) {
	cfg := testConfig()
	m := exposed(t, 2)
	m.WindowFocused([]sys.SpaceID{testSpace}, sys.NewWindowID(1, 1))

	// Second screen size shares the layout until modified.
	big := sys.Size{Width: 2000, Height: 1200}
	m.SpaceExposed(testSpace, big)
	m.WindowsOnScreenUpdated(testSpace, 1, []WindowWithInfo{win(1, 1), win(1, 2)})
	shared, _ := m.layoutFor(testSpace)

	m.cmd(t, cfg, "move", "up")
	modified, _ := m.layoutFor(testSpace)
	assert.NotEqual(t, shared, modified, "modification clones the shared layout")
}

func TestToggleSpaceManagedStopsTiling(t *testing.T) {
	cfg := testConfig()
	m := exposed(t, 2)

	m.cmd(t, cfg, "toggle-space-managed")
	assert.Nil(t, m.CalculateLayout(testSpace, testScreen, cfg, testNow))

	m.cmd(t, cfg, "toggle-space-managed")
	assert.Len(t, m.CalculateLayout(testSpace, testScreen, cfg, testNow), 2)
}

func TestDetectEdgesDegenerateGeometry(t *testing.T) {
	// Narrower than twice the threshold: the nearer side wins.
	frame := sys.NewRect(0, 0, 16, 300)
	edges := DetectEdges(frame, sys.Point{X: 5, Y: 150}, 12)
	assert.Equal(t, layout.Left, edges.Horizontal)

	edges = DetectEdges(frame, sys.Point{X: 12, Y: 150}, 12)
	assert.Equal(t, layout.Right, edges.Horizontal)

	// Regular geometry: only the border bands engage.
	frame = sys.NewRect(0, 0, 400, 300)
	edges = DetectEdges(frame, sys.Point{X: 200, Y: 150}, 12)
	assert.Empty(t, string(edges.Horizontal))
	assert.Empty(t, string(edges.Vertical))

	edges = DetectEdges(frame, sys.Point{X: 395, Y: 5}, 12)
	assert.Equal(t, layout.Right, edges.Horizontal)
	assert.Equal(t, layout.Up, edges.Vertical)
}

func TestInteractiveDragResizes(t *testing.T) {
	cfg := testConfig()
	m := exposed(t, 2)
	m.WindowFocused([]sys.SpaceID{testSpace}, sys.NewWindowID(1, 1))

	// Grab the shared edge at x=500 from the left window's side.
	frames := layoutByWindow(m, cfg)
	left := frames[sys.NewWindowID(1, 1)].Rect
	require.True(t, m.DragBegin(testSpace, sys.NewWindowID(1, 1), left, sys.Point{X: 495, Y: 400}))

	changed := m.DragUpdate(sys.Point{X: 595, Y: 400}, testScreen, cfg)
	assert.True(t, changed)
	m.DragEnd()

	frames = layoutByWindow(m, cfg)
	assert.Equal(t, 600, frames[sys.NewWindowID(1, 1)].Rect.Width)
}

func TestScrollModeLaysOutColumnsThroughViewport(t *testing.T) {
	cfg := testConfig()
	cfg.Scroll.CenteringMode = config.CenterNever
	m := exposed(t, 4)
	m.cmd(t, cfg, "set-layout-mode", "scroll")

	frames := m.CalculateLayout(testSpace, testScreen, cfg, testNow)
	require.Len(t, frames, 4)

	// Four half-screen columns do not fit; the strip overflows and the
	// viewport clips it.
	visible := 0
	for _, f := range frames {
		if f.Visible {
			visible++
		}
	}
	assert.Greater(t, visible, 0)
	assert.Less(t, visible, 4)
}

func TestSaveAndLoadStateRoundTrip(t *testing.T) {
	cfg := testConfig()
	m := exposed(t, 3)
	m.WindowFocused([]sys.SpaceID{testSpace}, sys.NewWindowID(1, 2))
	m.cmd(t, cfg, "resize", "right", "100")

	path := t.TempDir() + "/layout.yaml"
	require.NoError(t, m.SaveState(path))

	restored := New()
	require.NoError(t, restored.LoadState(path, map[int32]bool{1: true}))
	assert.Equal(t, layoutByWindow(m, cfg), layoutByWindow(restored, cfg))

	// Dead apps are dropped on restore.
	fresh := New()
	require.NoError(t, fresh.LoadState(path, map[int32]bool{}))
	assert.Empty(t, fresh.CalculateLayout(testSpace, testScreen, cfg, testNow))
}

func TestMouseFocusConstrainedToSameClass(t *testing.T) {
	m := exposed(t, 2)
	floating := win(1, 3)
	floating.Info.IsResizable = false
	m.WindowAdded(testSpace, floating)

	m.WindowFocused([]sys.SpaceID{testSpace}, sys.NewWindowID(1, 1))

	resp := m.MouseMovedOverWindow(testSpace, sys.NewWindowID(1, 2))
	assert.Equal(t, sys.NewWindowID(1, 2), resp.FocusWindow, "tiled to tiled moves focus")

	resp = m.MouseMovedOverWindow(testSpace, sys.NewWindowID(1, 3))
	assert.True(t, resp.FocusWindow.IsZero(), "tiled to floating is suppressed")
}
