package reactor

import (
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glidewm/glide/internal/config"
	"github.com/glidewm/glide/internal/manager"
	"github.com/glidewm/glide/internal/sys"
)

type captureSink struct {
	requests []sys.Request
}

func (s *captureSink) Dispatch(req sys.Request) {
	s.requests = append(s.requests, req)
}

func (s *captureSink) framesFor(wid sys.WindowID) []sys.Request {
	var out []sys.Request
	for _, req := range s.requests {
		if req.Kind == sys.ReqSetWindowFrame && req.Window == wid {
			out = append(out, req)
		}
	}
	return out
}

func (s *captureSink) reset() { s.requests = nil }

var (
	testScreen = sys.NewRect(0, 0, 1000, 800)
	testSpace  = sys.SpaceID(1)
)

func reactorConfig() *config.Config {
	cfg := config.Default()
	cfg.InnerGap = 0
	cfg.OuterGap = 0
	cfg.Animate = false
	cfg.GroupBars.Enabled = false
	return cfg
}

func newTestReactor(cfg *config.Config) (*Reactor, *captureSink) {
	sink := &captureSink{}
	r := New(cfg, manager.New(), sink, log.New(io.Discard))
	return r, sink
}

func at(s int) time.Time { return time.Unix(int64(s), 0) }

func discover(r *Reactor, wid sys.WindowID, now time.Time) {
	r.HandleEvent(WindowDiscovered{
		Space:  testSpace,
		Window: wid,
		Frame:  sys.NewRect(0, 0, 100, 100),
		Info:   sys.WindowInfo{IsStandard: true, IsResizable: true, HasLayer: true},
	}, now)
}

func setup(t *testing.T, cfg *config.Config, windows int) (*Reactor, *captureSink) {
	t.Helper()
	r, sink := newTestReactor(cfg)
	r.HandleEvent(ScreenParametersChanged{
		Screens: []sys.Screen{{Frame: testScreen, Space: testSpace}},
	}, at(0))
	for i := 1; i <= windows; i++ {
		discover(r, sys.NewWindowID(1, uint32(i)), at(i))
	}
	return r, sink
}

func TestDiscoveredWindowsGetFrames(t *testing.T) {
	cfg := reactorConfig()
	r, sink := setup(t, cfg, 2)
	_ = r

	w1 := sink.framesFor(sys.NewWindowID(1, 1))
	w2 := sink.framesFor(sys.NewWindowID(1, 2))
	require.NotEmpty(t, w1)
	require.NotEmpty(t, w2)
	assert.Equal(t, sys.NewRect(0, 0, 500, 800), w1[len(w1)-1].Frame)
	assert.Equal(t, sys.NewRect(500, 0, 500, 800), w2[len(w2)-1].Frame)
}

// Scenario: the reactor wrote frame txn=N; an inbound event carrying an
// older last-seen txn must be dropped without touching the model.
func TestStaleFrameEventIsDropped(t *testing.T) {
	cfg := reactorConfig()
	r, sink := setup(t, cfg, 2)

	w1 := sys.NewWindowID(1, 1)
	frames := sink.framesFor(w1)
	require.NotEmpty(t, frames)
	current := r.txn[w1]
	require.Greater(t, uint64(current), uint64(0))

	sink.reset()
	r.HandleEvent(WindowFrameChanged{
		Window:      w1,
		Frame:       sys.NewRect(0, 0, 123, 456),
		LastSeenTxn: current - 1,
	}, at(10))

	assert.Empty(t, sink.requests, "stale event must not produce requests")
	assert.Equal(t, current, r.txn[w1], "transaction unchanged")
}

func TestFreshFrameEventResizesLayout(t *testing.T) {
	cfg := reactorConfig()
	r, sink := setup(t, cfg, 2)

	w1 := sys.NewWindowID(1, 1)
	current := r.txn[w1]

	sink.reset()
	// The user dragged w1's right edge 100px outward.
	r.HandleEvent(WindowFrameChanged{
		Window:      w1,
		Frame:       sys.NewRect(0, 0, 600, 800),
		LastSeenTxn: current,
	}, at(10))

	w2 := sink.framesFor(sys.NewWindowID(1, 2))
	require.NotEmpty(t, w2, "the sibling re-tiles")
	assert.Equal(t, sys.NewRect(600, 0, 400, 800), w2[len(w2)-1].Frame)
}

func TestTransactionsIncreasePerWrite(t *testing.T) {
	cfg := reactorConfig()
	r, sink := setup(t, cfg, 1)

	w1 := sys.NewWindowID(1, 1)
	first := r.txn[w1]
	discover(r, sys.NewWindowID(1, 2), at(5))
	second := r.txn[w1]
	assert.Greater(t, uint64(second), uint64(first))

	var last sys.TransactionID
	for _, req := range sink.framesFor(w1) {
		assert.Greater(t, uint64(req.Txn), uint64(last))
		last = req.Txn
	}
}

func TestUnknownWindowEventIsIgnored(t *testing.T) {
	cfg := reactorConfig()
	r, sink := setup(t, cfg, 1)

	sink.reset()
	r.HandleEvent(WindowFrameChanged{
		Window: sys.NewWindowID(99, 1),
		Frame:  sys.NewRect(0, 0, 10, 10),
	}, at(10))
	for _, req := range sink.requests {
		assert.NotEqual(t, sys.NewWindowID(99, 1), req.Window)
	}
}

func TestCoalescingEmitsOnlyFinalFrame(t *testing.T) {
	cfg := reactorConfig()
	r, sink := setup(t, cfg, 1)
	sink.reset()

	// Three discoveries queued before the reactor yields end up in one
	// batch; intermediate tilings for w1 must not be emitted.
	r.processBatch([]Envelope{
		{Event: WindowDiscovered{Space: testSpace, Window: sys.NewWindowID(1, 2),
			Info: sys.WindowInfo{IsStandard: true, IsResizable: true, HasLayer: true}}, Time: at(10)},
		{Event: WindowDiscovered{Space: testSpace, Window: sys.NewWindowID(1, 3),
			Info: sys.WindowInfo{IsStandard: true, IsResizable: true, HasLayer: true}}, Time: at(10)},
		{Event: WindowDiscovered{Space: testSpace, Window: sys.NewWindowID(1, 4),
			Info: sys.WindowInfo{IsStandard: true, IsResizable: true, HasLayer: true}}, Time: at(10)},
	})

	frames := sink.framesFor(sys.NewWindowID(1, 1))
	require.Len(t, frames, 1, "one write per window per batch")
	assert.Equal(t, sys.NewRect(0, 0, 250, 800), frames[0].Frame)
}

func TestFocusBeforeSpaceChangeIsSuppressed(t *testing.T) {
	cfg := reactorConfig()
	r, _ := setup(t, cfg, 2)

	w2 := sys.NewWindowID(1, 2)
	r.processBatch([]Envelope{
		{Event: WindowFocused{Window: w2}, Time: at(10)},
		{Event: SpaceChanged{Space: sys.SpaceID(2), Screen: testScreen}, Time: at(10)},
	})

	focused, ok := r.mgr.FocusedWindow()
	if ok {
		assert.NotEqual(t, w2, focused, "focus from the departed space must not apply")
	}
}

func TestCommandFlowsThroughReactor(t *testing.T) {
	cfg := reactorConfig()
	r, sink := setup(t, cfg, 2)
	r.HandleEvent(WindowFocused{Window: sys.NewWindowID(1, 1)}, at(5))

	sink.reset()
	cmd, err := manager.ParseCommand([]string{"focus", "right"})
	require.NoError(t, err)
	r.HandleEvent(CommandEvent{Command: cmd}, at(10))

	var raised []sys.WindowID
	for _, req := range sink.requests {
		if req.Kind == sys.ReqRaiseWindow {
			raised = append(raised, req.Window)
		}
	}
	require.NotEmpty(t, raised)
	assert.Equal(t, sys.NewWindowID(1, 2), raised[len(raised)-1])
}

func TestAnimationInterpolatesFrames(t *testing.T) {
	cfg := reactorConfig()
	cfg.Animate = true
	cfg.Animation.DurationMS = 100
	r, sink := setup(t, cfg, 1)

	w1 := sys.NewWindowID(1, 1)
	sink.reset()

	// A second window halves w1. With animation on, the move is deferred
	// to ticks.
	discover(r, sys.NewWindowID(1, 2), at(10))

	var begun bool
	for _, req := range sink.requests {
		if req.Kind == sys.ReqBeginWindowAnimation && req.Window == w1 {
			begun = true
		}
	}
	assert.True(t, begun, "animation must begin for the moving window")

	r.HandleEvent(AnimationTick{}, at(10).Add(50*time.Millisecond))
	mid := sink.framesFor(w1)
	require.NotEmpty(t, mid)
	midFrame := mid[len(mid)-1].Frame
	assert.Greater(t, midFrame.Width, 500, "halfway through the shrink")
	assert.Less(t, midFrame.Width, 1000)

	r.HandleEvent(AnimationTick{}, at(10).Add(200*time.Millisecond))
	final := sink.framesFor(w1)
	assert.Equal(t, sys.NewRect(0, 0, 500, 800), final[len(final)-1].Frame)

	var ended bool
	for _, req := range sink.requests {
		if req.Kind == sys.ReqEndWindowAnimation && req.Window == w1 {
			ended = true
		}
	}
	assert.True(t, ended)
	assert.False(t, r.anims.active())
}

func TestRepeatedFrameFailureEvictsWindow(t *testing.T) {
	cfg := reactorConfig()
	r, _ := setup(t, cfg, 2)

	w1 := sys.NewWindowID(1, 1)
	for i := 0; i < 3; i++ {
		r.HandleEvent(RequestFailed{Window: w1}, at(10+i))
		// A layout pass happens between failures.
		discover(r, sys.NewWindowID(1, uint32(10+i)), at(10+i))
	}

	status := r.CurrentStatus()
	_ = status
	l := r.mgr
	frames := l.CalculateLayout(testSpace, testScreen, cfg, at(20))
	for _, f := range frames {
		assert.NotEqual(t, w1, f.Window, "evicted window must leave the layout")
	}
}

func TestShutdownDrainsAnimations(t *testing.T) {
	cfg := reactorConfig()
	cfg.Animate = true
	cfg.Animation.DurationMS = 1000
	r, sink := setup(t, cfg, 1)

	discover(r, sys.NewWindowID(1, 2), at(10))
	require.True(t, r.anims.active())

	sink.reset()
	r.HandleEvent(Shutdown{}, at(11))

	w1 := sink.framesFor(sys.NewWindowID(1, 1))
	require.NotEmpty(t, w1)
	assert.Equal(t, sys.NewRect(0, 0, 500, 800), w1[len(w1)-1].Frame,
		"shutdown commits the animation target")
	assert.True(t, r.stopped)
}
