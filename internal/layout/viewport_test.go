package layout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glidewm/glide/internal/config"
	"github.com/glidewm/glide/internal/sys"
)

var testAnim = config.Animation{Response: 0.5, Damping: 1.0}

func TestViewportAlreadyVisibleDoesNotScroll(t *testing.T) {
	vp := NewViewport(1920)
	vp.SnapTo(0)
	vp.EnsureColumnVisible(0, 100, 500, config.CenterNever, 0, testAnim, time.Unix(0, 0))
	assert.Equal(t, 0.0, vp.TargetOffset())
}

func TestViewportScrollsLeftToRevealColumn(t *testing.T) {
	vp := NewViewport(1920)
	vp.SnapTo(500)
	vp.EnsureColumnVisible(0, 100, 500, config.CenterNever, 0, testAnim, time.Unix(0, 0))
	assert.Equal(t, 100.0, vp.TargetOffset())
}

func TestViewportCentersAlways(t *testing.T) {
	vp := NewViewport(1000)
	vp.SnapTo(0)
	vp.EnsureColumnVisible(2, 2000, 400, config.CenterAlways, 0, testAnim, time.Unix(0, 0))
	assert.InDelta(t, 2000+200-500, vp.TargetOffset(), 1e-9)
}

func TestViewportSettlesToStatic(t *testing.T) {
	now := time.Unix(0, 0)
	vp := NewViewport(1000)
	vp.AnimateTo(10, testAnim, now)
	assert.True(t, vp.IsAnimating(now.Add(20*time.Millisecond)))

	later := now.Add(3 * time.Second)
	vp.Tick(later)
	assert.False(t, vp.IsAnimating(later))
	assert.Equal(t, 10.0, vp.Offset(later))
}

func TestAccumulateScrollFoldsIntoSteps(t *testing.T) {
	vp := NewViewport(1000)
	assert.Equal(t, 0, vp.AccumulateScroll(200, 640))
	assert.Equal(t, 0, vp.AccumulateScroll(300, 640))
	assert.Equal(t, 1, vp.AccumulateScroll(200, 640))
	assert.Equal(t, 0, vp.AccumulateScroll(0, 0), "zero column width never steps")
}

func TestApplyViewportShiftsAndHides(t *testing.T) {
	screen := sys.NewRect(0, 0, 1920, 1080)
	frames := make([]WindowFrame, 0, 5)
	for i := 0; i < 5; i++ {
		frames = append(frames, WindowFrame{
			Window:  wid(1, uint32(i+1)),
			Rect:    sys.NewRect(i*640, 0, 640, 1080),
			Visible: true,
		})
	}

	out := ApplyViewportToFrames(frames, 960, screen)
	require.Len(t, out, 5)

	for _, f := range out {
		assert.Equal(t, 640, f.Rect.Width)
		assert.Equal(t, 1080, f.Rect.Height)
	}

	// Column 0 (0..640 - 960 → -960..-320) is fully off screen to the left.
	assert.False(t, out[0].Visible)
	assert.Equal(t, -640, out[0].Rect.X)

	// Column 2 (1280-960=320) is on screen, shifted.
	assert.True(t, out[2].Visible)
	assert.Equal(t, 320, out[2].Rect.X)

	// Column 4 (2560-960=1600..2240) overlaps the right edge, so it stays
	// visible.
	assert.True(t, out[4].Visible)
	assert.Equal(t, 1600, out[4].Rect.X)
}
