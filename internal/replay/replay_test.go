package replay

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glidewm/glide/internal/config"
	"github.com/glidewm/glide/internal/manager"
	"github.com/glidewm/glide/internal/reactor"
	"github.com/glidewm/glide/internal/sys"
)

func testTrace(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trace.jsonl")
	rec, err := NewRecorder(path)
	require.NoError(t, err)

	base := time.Unix(50, 0)
	screen := sys.NewRect(0, 0, 1000, 800)
	info := sys.WindowInfo{IsStandard: true, IsResizable: true, HasLayer: true}

	events := []reactor.Event{
		reactor.ScreenParametersChanged{Screens: []sys.Screen{{Frame: screen, Space: 1}}},
		reactor.WindowDiscovered{Space: 1, Window: sys.NewWindowID(1, 1), Info: info},
		reactor.WindowDiscovered{Space: 1, Window: sys.NewWindowID(1, 2), Info: info},
		reactor.WindowFocused{Window: sys.NewWindowID(1, 1)},
		reactor.CommandEvent{Command: manager.Command{Op: manager.OpFocus, Dir: "right"}},
		reactor.CommandEvent{Command: manager.Command{Op: manager.OpResize, Dir: "right", Px: 100}},
		reactor.WindowDestroyed{Window: sys.NewWindowID(1, 2)},
		reactor.Shutdown{},
	}
	for i, ev := range events {
		require.NoError(t, rec.Record(base.Add(time.Duration(i)*100*time.Millisecond), ev))
	}
	require.NoError(t, rec.Close())
	return path
}

func TestTraceRoundTrip(t *testing.T) {
	path := testTrace(t)
	events, err := ReadTrace(path)
	require.NoError(t, err)
	require.Len(t, events, 8)

	assert.IsType(t, reactor.ScreenParametersChanged{}, events[0].Event)
	assert.IsType(t, reactor.Shutdown{}, events[7].Event)

	cmd, ok := events[5].Event.(reactor.CommandEvent)
	require.True(t, ok)
	assert.Equal(t, manager.OpResize, cmd.Command.Op)
	assert.Equal(t, 100, cmd.Command.Px)

	assert.Equal(t, 700*time.Millisecond, events[7].At.Sub(events[0].At))
}

// Replaying the same trace twice must produce byte-identical request
// streams.
func TestReplayIsDeterministic(t *testing.T) {
	path := testTrace(t)
	cfg := config.Default()
	cfg.Animate = false

	first, err := Run(path, cfg)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := Run(path, cfg)
	require.NoError(t, err)

	assert.Equal(t, FormatRequests(first), FormatRequests(second))
}

func TestReplayProducesFrames(t *testing.T) {
	path := testTrace(t)
	cfg := config.Default()
	cfg.Animate = false
	cfg.InnerGap = 0
	cfg.OuterGap = 0

	requests, err := Run(path, cfg)
	require.NoError(t, err)

	var sawFrame, sawRaise bool
	for _, req := range requests {
		switch req.Kind {
		case sys.ReqSetWindowFrame:
			sawFrame = true
		case sys.ReqRaiseWindow:
			sawRaise = true
		}
	}
	assert.True(t, sawFrame)
	assert.True(t, sawRaise)
}

func TestReadTraceRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("not json\n"), 0o644))
	_, err := ReadTrace(path)
	assert.Error(t, err)
}
