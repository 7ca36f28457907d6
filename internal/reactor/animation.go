package reactor

import (
	"math"
	"sort"
	"time"

	"github.com/glidewm/glide/internal/sys"
)

// windowAnim interpolates one window's frame from its current position to a
// target over a fixed duration.
type windowAnim struct {
	window   sys.WindowID
	from     sys.Rect
	to       sys.Rect
	start    time.Time
	duration time.Duration
}

// animator drives all in-flight window frame animations. It has no clock of
// its own; the reactor feeds it timestamps from AnimationTick events.
type animator struct {
	anims map[sys.WindowID]*windowAnim
}

func newAnimator() *animator {
	return &animator{anims: make(map[sys.WindowID]*windowAnim)}
}

func (a *animator) active() bool { return len(a.anims) > 0 }

// start begins (or redirects) an animation for a window. Returns true when
// this is a new animation so the caller can emit BeginWindowAnimation.
func (a *animator) start(window sys.WindowID, from, to sys.Rect, now time.Time, duration time.Duration) bool {
	if anim, ok := a.anims[window]; ok {
		anim.from = a.frameAt(anim, now)
		anim.to = to
		anim.start = now
		anim.duration = duration
		return false
	}
	a.anims[window] = &windowAnim{
		window:   window,
		from:     from,
		to:       to,
		start:    now,
		duration: duration,
	}
	return true
}

// cancel drops a window's animation, returning its target if one was
// running.
func (a *animator) cancel(window sys.WindowID) (sys.Rect, bool) {
	anim, ok := a.anims[window]
	if !ok {
		return sys.Rect{}, false
	}
	delete(a.anims, window)
	return anim.to, true
}

// frameUpdate is one interpolated step.
type frameUpdate struct {
	window sys.WindowID
	frame  sys.Rect
	done   bool
}

// windows returns the animating windows in a stable order so emission
// order never depends on map iteration.
func (a *animator) windows() []sys.WindowID {
	out := make([]sys.WindowID, 0, len(a.anims))
	for window := range a.anims {
		out = append(out, window)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// tick advances every animation to now, removing finished ones.
func (a *animator) tick(now time.Time) []frameUpdate {
	if len(a.anims) == 0 {
		return nil
	}
	updates := make([]frameUpdate, 0, len(a.anims))
	for _, window := range a.windows() {
		anim := a.anims[window]
		frame := a.frameAt(anim, now)
		done := !now.Before(anim.start.Add(anim.duration))
		if done {
			frame = anim.to
			delete(a.anims, window)
		}
		updates = append(updates, frameUpdate{window: window, frame: frame, done: done})
	}
	return updates
}

// drain finishes every animation at its target immediately.
func (a *animator) drain() []frameUpdate {
	updates := make([]frameUpdate, 0, len(a.anims))
	for _, window := range a.windows() {
		updates = append(updates, frameUpdate{window: window, frame: a.anims[window].to, done: true})
		delete(a.anims, window)
	}
	return updates
}

func (a *animator) frameAt(anim *windowAnim, now time.Time) sys.Rect {
	if anim.duration <= 0 {
		return anim.to
	}
	t := now.Sub(anim.start).Seconds() / anim.duration.Seconds()
	if t <= 0 {
		return anim.from
	}
	if t >= 1 {
		return anim.to
	}
	p := easeInOut(t)
	lerp := func(a, b int) int {
		return a + int(math.Round(float64(b-a)*p))
	}
	return sys.Rect{
		X:      lerp(anim.from.X, anim.to.X),
		Y:      lerp(anim.from.Y, anim.to.Y),
		Width:  lerp(anim.from.Width, anim.to.Width),
		Height: lerp(anim.from.Height, anim.to.Height),
	}
}

// easeInOut is a smoothstep curve over [0,1].
func easeInOut(t float64) float64 {
	return t * t * (3 - 2*t)
}
