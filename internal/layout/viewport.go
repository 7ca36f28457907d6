package layout

import (
	"math"
	"time"

	"github.com/glidewm/glide/internal/config"
	"github.com/glidewm/glide/internal/sys"
)

// ViewportState is the horizontal scroll state of a scroll-mode layout: a
// static offset or a spring animating toward a target.
type ViewportState struct {
	offset float64
	spring *SpringAnimation

	activeColumn   int
	screenWidth    float64
	userScrolling  bool
	scrollProgress float64
}

// NewViewport creates a viewport for a screen width.
func NewViewport(screenWidth int) *ViewportState {
	return &ViewportState{screenWidth: float64(screenWidth)}
}

// SetScreenWidth updates the viewport extent after a screen change.
func (v *ViewportState) SetScreenWidth(width int) {
	v.screenWidth = float64(width)
}

// ActiveColumn returns the index of the last focused column.
func (v *ViewportState) ActiveColumn() int { return v.activeColumn }

// Offset returns the scroll offset at a timestamp.
func (v *ViewportState) Offset(now time.Time) float64 {
	if v.spring != nil {
		return v.spring.ValueAt(now)
	}
	return v.offset
}

// TargetOffset returns where the viewport is headed.
func (v *ViewportState) TargetOffset() float64 {
	if v.spring != nil {
		return v.spring.Target()
	}
	return v.offset
}

// SnapTo sets the offset immediately, cancelling any animation.
func (v *ViewportState) SnapTo(offset float64) {
	v.offset = offset
	v.spring = nil
}

// AnimateTo springs toward target. A running spring is retargeted so
// position and velocity carry over.
func (v *ViewportState) AnimateTo(target float64, anim config.Animation, now time.Time) {
	if v.spring != nil {
		v.spring.Retarget(target, now)
		return
	}
	v.spring = NewSpring(v.offset, target, 0, anim.Response, anim.Damping, now)
}

// IsAnimating reports whether the spring is still in motion.
func (v *ViewportState) IsAnimating(now time.Time) bool {
	return v.spring != nil && !v.spring.IsComplete(now)
}

// Tick settles a completed spring into a static offset.
func (v *ViewportState) Tick(now time.Time) {
	if v.spring != nil && v.spring.IsComplete(now) {
		v.offset = v.spring.Target()
		v.spring = nil
		v.userScrolling = false
	}
}

// EnsureColumnVisible scrolls so the column at columnX..columnX+columnWidth
// is on screen, according to the centering mode.
func (v *ViewportState) EnsureColumnVisible(index int, columnX, columnWidth float64, mode config.CenteringMode, gap float64, anim config.Animation, now time.Time) {
	v.activeColumn = index
	v.userScrolling = false
	current := v.TargetOffset()

	var target float64
	switch mode {
	case config.CenterAlways:
		target = columnX + columnWidth/2 - v.screenWidth/2
	case config.CenterOnOverflow:
		if columnWidth > v.screenWidth {
			target = columnX + columnWidth/2 - v.screenWidth/2
		} else {
			target = v.edgeFit(columnX, columnWidth, current, gap)
		}
	default:
		target = v.edgeFit(columnX, columnWidth, current, gap)
	}

	if math.Abs(target-current) > 0.5 {
		v.AnimateTo(target, anim, now)
	}
}

// edgeFit returns the smallest scroll that brings the column fully on
// screen, or the current offset when it already is.
func (v *ViewportState) edgeFit(colX, colW, current, gap float64) float64 {
	viewLeft := current
	viewRight := current + v.screenWidth
	if colX >= viewLeft && colX+colW <= viewRight {
		return current
	}
	padding := math.Max(0, math.Min((v.screenWidth-colW)/2, gap))
	if colX < viewLeft {
		return colX - padding
	}
	return colX + colW + padding - v.screenWidth
}

// AccumulateScroll folds raw wheel deltas into whole column steps.
func (v *ViewportState) AccumulateScroll(delta, avgColumnWidth float64) int {
	if avgColumnWidth <= 0 {
		return 0
	}
	v.userScrolling = true
	v.scrollProgress += delta
	steps := int(math.Trunc(v.scrollProgress / avgColumnWidth))
	if steps != 0 {
		v.scrollProgress -= float64(steps) * avgColumnWidth
	}
	return steps
}

// ApplyViewportToFrames shifts every frame left by offset and replaces
// frames that land entirely outside the screen with a hidden rect just past
// the nearer edge.
func ApplyViewportToFrames[W comparable](frames []Frame[W], offset float64, screen sys.Rect) []Frame[W] {
	shift := int(math.Round(offset))
	viewLeft := screen.X
	viewRight := screen.X + screen.Width

	out := make([]Frame[W], 0, len(frames))
	for _, f := range frames {
		if !f.Visible {
			out = append(out, f)
			continue
		}
		shifted := f.Rect
		shifted.X = screen.X + f.Rect.X - shift
		switch {
		case shifted.MaxX() > viewLeft && shifted.X < viewRight:
			out = append(out, Frame[W]{Window: f.Window, Rect: shifted, Visible: true})
		case shifted.MaxX() <= viewLeft:
			hidden := shifted
			hidden.X = viewLeft - shifted.Width
			out = append(out, Frame[W]{Window: f.Window, Rect: hidden, Visible: false})
		default:
			hidden := shifted
			hidden.X = viewRight
			out = append(out, Frame[W]{Window: f.Window, Rect: hidden, Visible: false})
		}
	}
	return out
}
