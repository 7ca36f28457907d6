// Package reactor is the single-writer event loop that owns the layout
// model. All outside input arrives as events on one ordered channel; the
// reactor mutates the model, recomputes layouts, diffs frames against what
// was last sent, and emits per-application requests tagged with
// transaction ids.
package reactor

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/glidewm/glide/internal/config"
	"github.com/glidewm/glide/internal/layout"
	"github.com/glidewm/glide/internal/manager"
	"github.com/glidewm/glide/internal/sys"
)

// Envelope pairs an event with the monotonic time it was observed. The
// reactor itself never reads the wall clock; replay feeds recorded times.
type Envelope struct {
	Event Event
	Time  time.Time
}

// Sink receives the reactor's outbound requests in emission order.
type Sink interface {
	Dispatch(req sys.Request)
}

// Recorder captures reactor inputs for later replay.
type Recorder interface {
	Record(now time.Time, ev Event) error
}

// Status is a snapshot of reactor state for the control socket.
type Status struct {
	ActiveSpace sys.SpaceID
	SpaceCount  int
	WindowCount int
	TrackedTxns int
	Animating   bool
	LayoutMode  string
	DebugTree   string
}

// Reactor owns the layout manager and serializes all model mutation.
type Reactor struct {
	logger *log.Logger
	mgr    *manager.Manager
	sink   Sink
	events chan Envelope

	cfg *config.Config

	txn       map[sys.WindowID]sys.TransactionID
	targets   map[sys.WindowID]sys.Rect
	lastSent  map[sys.WindowID]sys.Rect
	observed  map[sys.WindowID]sys.Rect
	observing map[sys.WindowID]bool
	untracked map[sys.WindowID]bool
	failures  map[sys.WindowID]int

	screens []sys.Screen
	active  sys.SpaceID

	anims    *animator
	raiseSeq uint64
	stopped  bool

	// side effects requested by commands, wired by the daemon
	OnExit         func()
	OnReloadConfig func(path string)

	recMu    sync.Mutex
	recorder Recorder

	statusMu sync.Mutex
	status   Status
}

// New creates a reactor around a manager and request sink.
func New(cfg *config.Config, mgr *manager.Manager, sink Sink, logger *log.Logger) *Reactor {
	if logger == nil {
		logger = log.Default()
	}
	return &Reactor{
		logger:    logger,
		mgr:       mgr,
		sink:      sink,
		events:    make(chan Envelope, 256),
		cfg:       cfg,
		txn:       make(map[sys.WindowID]sys.TransactionID),
		targets:   make(map[sys.WindowID]sys.Rect),
		lastSent:  make(map[sys.WindowID]sys.Rect),
		observed:  make(map[sys.WindowID]sys.Rect),
		observing: make(map[sys.WindowID]bool),
		untracked: make(map[sys.WindowID]bool),
		failures:  make(map[sys.WindowID]int),
		anims:     newAnimator(),
	}
}

// Post enqueues an event stamped with the current time. Safe from any
// goroutine.
func (r *Reactor) Post(ev Event) {
	r.events <- Envelope{Event: ev, Time: time.Now()}
}

// PostAt enqueues an event with an explicit timestamp.
func (r *Reactor) PostAt(ev Event, now time.Time) {
	r.events <- Envelope{Event: ev, Time: now}
}

// SetRecorder installs or removes the trace recorder.
func (r *Reactor) SetRecorder(rec Recorder) {
	r.recMu.Lock()
	r.recorder = rec
	r.recMu.Unlock()
}

// AnimationsActive reports whether the reactor wants animation ticks.
func (r *Reactor) AnimationsActive() bool {
	r.statusMu.Lock()
	defer r.statusMu.Unlock()
	return r.status.Animating
}

// CurrentStatus returns the latest status snapshot.
func (r *Reactor) CurrentStatus() Status {
	r.statusMu.Lock()
	defer r.statusMu.Unlock()
	return r.status
}

// Run processes events until the context is cancelled or a Shutdown event
// drains the reactor. Events already queued when one is received are
// handled in the same batch so redundant frame writes coalesce; a queued
// animation tick closes the batch, and a tick received first is handled
// alone.
func (r *Reactor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-r.events:
			batch := []Envelope{env}
			if _, isTick := env.Event.(AnimationTick); !isTick {
			drain:
				for {
					select {
					case next := <-r.events:
						batch = append(batch, next)
						if _, tick := next.Event.(AnimationTick); tick {
							break drain
						}
					default:
						break drain
					}
				}
			}
			r.processBatch(batch)
			if r.stopped {
				return
			}
		}
	}
}

// HandleEvent processes a single event synchronously. Replay uses this to
// drive a reactor deterministically.
func (r *Reactor) HandleEvent(ev Event, now time.Time) {
	r.processBatch([]Envelope{{Event: ev, Time: now}})
}

func (r *Reactor) processBatch(batch []Envelope) {
	// A space change supersedes focus events from the prior space that
	// are still queued ahead of it.
	lastSpaceChange := -1
	for i, env := range batch {
		if _, ok := env.Event.(SpaceChanged); ok {
			lastSpaceChange = i
		}
	}

	var now time.Time
	dirty := false
	for i, env := range batch {
		now = env.Time
		if lastSpaceChange > i {
			if _, isFocus := env.Event.(WindowFocused); isFocus {
				r.logger.Debug("dropping focus event superseded by space change")
				continue
			}
		}
		r.record(env)
		if r.applyEvent(env.Event, env.Time) {
			dirty = true
		}
		if r.stopped {
			r.updateStatus()
			return
		}
	}

	if dirty {
		r.emitLayouts(now)
	}
	r.tickAnimations(now)
	r.updateStatus()
}

func (r *Reactor) record(env Envelope) {
	r.recMu.Lock()
	rec := r.recorder
	r.recMu.Unlock()
	if rec == nil {
		return
	}
	if err := rec.Record(env.Time, env.Event); err != nil {
		r.logger.Warn("trace record failed", "err", err)
		r.SetRecorder(nil)
	}
}

// applyEvent mutates the model for one event and reports whether layouts
// must be recomputed.
func (r *Reactor) applyEvent(ev Event, now time.Time) bool {
	switch e := ev.(type) {
	case ScreenParametersChanged:
		r.screens = e.Screens
		if len(e.Screens) > 0 {
			r.active = e.Screens[0].Space
		}
		for _, screen := range e.Screens {
			r.mgr.SpaceExposed(screen.Space, screen.Frame.Size())
		}
		return true

	case SpaceChanged:
		r.active = e.Space
		replaced := false
		for i := range r.screens {
			if r.screens[i].Frame == e.Screen {
				r.screens[i].Space = e.Space
				replaced = true
			}
		}
		if !replaced {
			r.screens = append(r.screens, sys.Screen{Frame: e.Screen, Space: e.Space})
		}
		r.mgr.SpaceExposed(e.Space, e.Screen.Size())
		r.cancelOffSpaceAnimations()
		return true

	case WindowDiscovered:
		r.mgr.WindowAdded(e.Space, manager.WindowWithInfo{ID: e.Window, Info: e.Info, Frame: e.Frame})
		r.observed[e.Window] = e.Frame
		r.observe(e.Window)
		return true

	case AppWindowsUpdated:
		r.mgr.WindowsOnScreenUpdated(e.Space, e.PID, e.Windows)
		for _, w := range e.Windows {
			r.observed[w.ID] = w.Frame
			r.observe(w.ID)
		}
		return true

	case AppsRunning:
		alive := make(map[int32]bool, len(e.PIDs))
		for _, pid := range e.PIDs {
			alive[pid] = true
		}
		r.mgr.AppsRunningUpdated(alive)
		return true

	case AppTerminated:
		r.mgr.AppClosed(e.PID)
		for wid := range r.observing {
			if wid.PID == e.PID {
				r.unobserve(wid)
				r.forget(wid)
			}
		}
		return true

	case WindowDestroyed:
		r.mgr.WindowRemoved(e.Window)
		r.unobserve(e.Window)
		r.forget(e.Window)
		return true

	case WindowFocused:
		r.mgr.WindowFocused(r.visibleSpaces(), e.Window)
		return true

	case WindowMainChanged:
		r.mgr.WindowFocused(r.visibleSpaces(), e.Window)
		return true

	case WindowFrameChanged:
		if e.LastSeenTxn < r.txn[e.Window] {
			// Stale read of our own write; ignoring it prevents
			// feedback loops through the async accessibility layer.
			r.logger.Debug("dropping stale frame event",
				"window", e.Window, "seen", e.LastSeenTxn, "txn", r.txn[e.Window])
			return false
		}
		// The model's belief about the current frame is the last write;
		// fall back to the last observation for windows never placed.
		old, known := r.lastSent[e.Window]
		if !known {
			old = r.observed[e.Window]
		}
		r.observed[e.Window] = e.Frame
		r.mgr.WindowFrameChanged(e.Window, old, e.Frame, r.screens, r.cfg)
		return true

	case MouseMoved:
		if r.mgr.Dragging() {
			return r.mgr.DragUpdate(e.Pos, r.activeScreen(), r.cfg)
		}
		if r.cfg.FocusFollowsMouse {
			if wid, space, ok := r.windowAt(e.Pos); ok {
				resp := r.mgr.MouseMovedOverWindow(space, wid)
				r.applyResponse(resp, now)
			}
		}
		return false

	case MouseClicked:
		if e.Pressed {
			if wid, space, ok := r.windowAt(e.Pos); ok {
				if frame, sent := r.lastSent[wid]; sent {
					r.mgr.DragBegin(space, wid, frame, e.Pos)
				}
			}
			return false
		}
		dragging := r.mgr.Dragging()
		r.mgr.DragEnd()
		return dragging

	case ScrollWheel:
		delta := e.DeltaX
		if delta == 0 {
			delta = e.DeltaY
		}
		return r.mgr.ScrollBy(r.active, delta, r.activeScreen(), r.cfg, now)

	case CommandEvent:
		resp := r.mgr.HandleCommand(r.active, r.hasActiveSpace(), r.visibleSpaces(),
			e.Command, r.activeScreen(), r.cfg, now)
		r.applyResponse(resp, now)
		return true

	case ConfigChanged:
		if e.Config != nil {
			r.cfg = e.Config
		}
		return true

	case AnimationTick:
		return false

	case RequestFailed:
		r.failures[e.Window]++
		if r.failures[e.Window] > 2 {
			r.logger.Warn("window repeatedly rejects frames; removing from layout",
				"window", e.Window)
			r.mgr.WindowRemoved(e.Window)
			r.forget(e.Window)
			return true
		}
		// Skip the window for one cycle, then re-emit from scratch.
		r.untracked[e.Window] = true
		delete(r.targets, e.Window)
		delete(r.lastSent, e.Window)
		return false

	case Shutdown:
		for _, update := range r.anims.drain() {
			r.sendFrame(update.window, update.frame)
			r.dispatch(sys.Request{Kind: sys.ReqEndWindowAnimation, Window: update.window})
		}
		r.stopped = true
		return false
	}
	return false
}

// emitLayouts recomputes every visible space and emits frame requests for
// targets that changed.
func (r *Reactor) emitLayouts(now time.Time) {
	for _, screen := range r.screens {
		frames := r.mgr.CalculateLayout(screen.Space, screen.Frame, r.cfg, now)
		for _, frame := range frames {
			r.applyTarget(frame, now)
		}
	}
	// Untracked windows got their one skipped cycle.
	for wid := range r.untracked {
		delete(r.untracked, wid)
	}
}

func (r *Reactor) applyTarget(frame layout.WindowFrame, now time.Time) {
	wid := frame.Window
	if r.untracked[wid] {
		return
	}
	prev, hadTarget := r.targets[wid]
	if hadTarget && prev == frame.Rect {
		return
	}
	r.targets[wid] = frame.Rect

	last, placed := r.lastSent[wid]
	animate := r.cfg.AnimationEnabled() && frame.Visible && placed && last != frame.Rect
	if !animate {
		if _, was := r.anims.cancel(wid); was {
			r.dispatch(sys.Request{Kind: sys.ReqEndWindowAnimation, Window: wid})
		}
		r.sendFrame(wid, frame.Rect)
		return
	}

	duration := time.Duration(r.cfg.Animation.DurationMS) * time.Millisecond
	if r.anims.start(wid, last, frame.Rect, now, duration) {
		r.dispatch(sys.Request{Kind: sys.ReqBeginWindowAnimation, Window: wid})
	}
}

// tickAnimations advances window animations and animating scroll viewports.
func (r *Reactor) tickAnimations(now time.Time) {
	for _, update := range r.anims.tick(now) {
		r.sendFrame(update.window, update.frame)
		if update.done {
			r.dispatch(sys.Request{Kind: sys.ReqEndWindowAnimation, Window: update.window})
		}
	}

	for _, screen := range r.screens {
		if !r.mgr.ViewportAnimating(screen.Space, now) {
			continue
		}
		for _, frame := range r.mgr.CalculateLayout(screen.Space, screen.Frame, r.cfg, now) {
			wid := frame.Window
			if r.untracked[wid] {
				continue
			}
			if last, ok := r.lastSent[wid]; !ok || last != frame.Rect {
				r.targets[wid] = frame.Rect
				r.sendFrame(wid, frame.Rect)
			}
		}
	}
}

// sendFrame emits a SetWindowFrame with a fresh transaction id.
func (r *Reactor) sendFrame(wid sys.WindowID, frame sys.Rect) {
	if last, ok := r.lastSent[wid]; ok && last == frame {
		return
	}
	r.txn[wid]++
	r.lastSent[wid] = frame
	r.dispatch(sys.Request{
		Kind:   sys.ReqSetWindowFrame,
		Window: wid,
		Frame:  frame,
		Txn:    r.txn[wid],
	})
}

func (r *Reactor) applyResponse(resp manager.EventResponse, now time.Time) {
	for _, wid := range resp.RaiseWindows {
		r.raiseSeq++
		r.dispatch(sys.Request{Kind: sys.ReqRaiseWindow, Window: wid, Sequence: r.raiseSeq})
	}
	if !resp.FocusWindow.IsZero() {
		r.raiseSeq++
		r.dispatch(sys.Request{Kind: sys.ReqRaiseWindow, Window: resp.FocusWindow, Sequence: r.raiseSeq})
		r.mgr.WindowFocused(r.visibleSpaces(), resp.FocusWindow)
	}
	if resp.Exit {
		if r.OnExit != nil {
			r.OnExit()
		}
		r.applyEvent(Shutdown{}, now)
	}
	if resp.ReloadConfig && r.OnReloadConfig != nil {
		r.OnReloadConfig("")
	}
	if resp.ConfigPath != "" && r.OnReloadConfig != nil {
		r.OnReloadConfig(resp.ConfigPath)
	}
}

func (r *Reactor) dispatch(req sys.Request) {
	if r.sink != nil {
		r.sink.Dispatch(req)
	}
}

func (r *Reactor) observe(wid sys.WindowID) {
	if r.observing[wid] {
		return
	}
	r.observing[wid] = true
	r.dispatch(sys.Request{Kind: sys.ReqStartObserving, Window: wid})
}

func (r *Reactor) unobserve(wid sys.WindowID) {
	if !r.observing[wid] {
		return
	}
	delete(r.observing, wid)
	r.dispatch(sys.Request{Kind: sys.ReqStopObserving, Window: wid})
}

func (r *Reactor) forget(wid sys.WindowID) {
	delete(r.txn, wid)
	delete(r.targets, wid)
	delete(r.lastSent, wid)
	delete(r.observed, wid)
	delete(r.untracked, wid)
	delete(r.failures, wid)
	if _, was := r.anims.cancel(wid); was {
		r.dispatch(sys.Request{Kind: sys.ReqEndWindowAnimation, Window: wid})
	}
}

// cancelOffSpaceAnimations ends animations for windows that are no longer
// on a visible space after a space change.
func (r *Reactor) cancelOffSpaceAnimations() {
	visible := r.visibleSpaces()
	for _, wid := range r.anims.windows() {
		onScreen := false
		for _, space := range visible {
			frames := r.mgr.CalculateLayout(space, r.screenFor(space), r.cfg, time.Time{})
			for _, f := range frames {
				if f.Window == wid {
					onScreen = true
					break
				}
			}
			if onScreen {
				break
			}
		}
		if !onScreen {
			r.anims.cancel(wid)
			r.dispatch(sys.Request{Kind: sys.ReqEndWindowAnimation, Window: wid})
		}
	}
}

func (r *Reactor) visibleSpaces() []sys.SpaceID {
	out := make([]sys.SpaceID, 0, len(r.screens))
	for _, screen := range r.screens {
		out = append(out, screen.Space)
	}
	return out
}

func (r *Reactor) hasActiveSpace() bool { return len(r.screens) > 0 }

func (r *Reactor) activeScreen() sys.Rect {
	return r.screenFor(r.active)
}

func (r *Reactor) screenFor(space sys.SpaceID) sys.Rect {
	for _, screen := range r.screens {
		if screen.Space == space {
			return screen.Frame
		}
	}
	if len(r.screens) > 0 {
		return r.screens[0].Frame
	}
	return sys.Rect{}
}

// windowAt hit-tests the cursor against the frames last sent plus observed
// floating frames. Ties break toward the smallest window id so results are
// stable.
func (r *Reactor) windowAt(pos sys.Point) (sys.WindowID, sys.SpaceID, bool) {
	for _, screen := range r.screens {
		if !screen.Frame.Contains(pos) {
			continue
		}
		var best sys.WindowID
		found := false
		consider := func(wid sys.WindowID, frame sys.Rect) {
			if !frame.Contains(pos) {
				return
			}
			if !found || wid.Less(best) {
				best = wid
				found = true
			}
		}
		for wid, frame := range r.lastSent {
			consider(wid, frame)
		}
		for wid, frame := range r.observed {
			if _, sent := r.lastSent[wid]; !sent {
				consider(wid, frame)
			}
		}
		if found {
			return best, screen.Space, true
		}
	}
	return sys.WindowID{}, 0, false
}

func (r *Reactor) updateStatus() {
	animating := r.anims.active()
	if !animating {
		for _, screen := range r.screens {
			if r.mgr.ViewportAnimating(screen.Space, time.Now()) {
				animating = true
				break
			}
		}
	}
	status := Status{
		ActiveSpace: r.active,
		SpaceCount:  len(r.screens),
		WindowCount: len(r.observing),
		TrackedTxns: len(r.txn),
		Animating:   animating,
		LayoutMode:  string(r.mgr.SpaceMode(r.active)),
		DebugTree:   r.mgr.DebugTree(r.active),
	}
	r.statusMu.Lock()
	r.status = status
	r.statusMu.Unlock()
}
