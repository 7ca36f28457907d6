// Package sys defines the boundary between the layout core and the host
// window system: identifiers, geometry, the requests the reactor emits to
// per-application workers, and the interfaces a concrete backend implements.
package sys

import (
	"fmt"
	"sync"
)

// WindowID identifies a window as a (process id, window slot) pair. Slots are
// assigned by the backend and are stable for the lifetime of the window.
type WindowID struct {
	PID  int32  `json:"pid" yaml:"pid"`
	Slot uint32 `json:"slot" yaml:"slot"`
}

func NewWindowID(pid int32, slot uint32) WindowID {
	return WindowID{PID: pid, Slot: slot}
}

func (w WindowID) IsZero() bool { return w == WindowID{} }

func (w WindowID) String() string { return fmt.Sprintf("%d/%d", w.PID, w.Slot) }

// Less imposes the ordering used for stable output sequences.
func (w WindowID) Less(o WindowID) bool {
	if w.PID != o.PID {
		return w.PID < o.PID
	}
	return w.Slot < o.Slot
}

// SpaceID identifies a virtual desktop. Values are opaque and assigned by the
// host window system.
type SpaceID uint64

// TransactionID is a per-window monotonic counter tagging reactor-initiated
// writes. Window geometry observed by the backend is reported together with
// the last transaction the worker has seen, letting the reactor discard
// stale reads.
type TransactionID uint64

// WindowInfo carries the properties the layout manager uses to decide whether
// a newly discovered window is tiled, floated, or ignored.
type WindowInfo struct {
	AppID       string
	Title       string
	Layer       int
	HasLayer    bool
	IsStandard  bool
	IsResizable bool
}

// Request is a message from the reactor to the worker that owns a window's
// application. Exactly one field group is meaningful per Kind.
type Request struct {
	Kind     RequestKind
	Window   WindowID
	Frame    Rect
	Txn      TransactionID
	Sequence uint64
}

type RequestKind int

const (
	ReqSetWindowFrame RequestKind = iota
	ReqBeginWindowAnimation
	ReqEndWindowAnimation
	ReqRaiseWindow
	ReqStartObserving
	ReqStopObserving
)

func (k RequestKind) String() string {
	switch k {
	case ReqSetWindowFrame:
		return "set_window_frame"
	case ReqBeginWindowAnimation:
		return "begin_window_animation"
	case ReqEndWindowAnimation:
		return "end_window_animation"
	case ReqRaiseWindow:
		return "raise_window"
	case ReqStartObserving:
		return "start_observing"
	case ReqStopObserving:
		return "stop_observing"
	}
	return fmt.Sprintf("request(%d)", int(k))
}

// WindowServer is the synchronous surface a backend exposes to per-app
// workers. Implementations live outside the model; x11 provides the EWMH
// one.
type WindowServer interface {
	// SetWindowFrame applies a frame and returns the geometry actually
	// observed afterward, which may differ if the app constrained it.
	SetWindowFrame(id WindowID, frame Rect) (Rect, error)
	RaiseWindow(id WindowID) error
	MoveWindowToSpace(id WindowID, space SpaceID) error
}

// Screen describes one display and the space currently shown on it.
type Screen struct {
	Frame Rect
	Space SpaceID
}

// TxnTable is shared between app workers and the event source: workers
// record the transaction of each frame write, and the event source stamps
// observed geometry events with the last transaction seen for that window.
// It also tracks animation suppression, so observation-side feedback can be
// paused while the reactor drives a window.
type TxnTable struct {
	mu        sync.Mutex
	seen      map[WindowID]TransactionID
	suspended map[WindowID]bool
}

func NewTxnTable() *TxnTable {
	return &TxnTable{
		seen:      make(map[WindowID]TransactionID),
		suspended: make(map[WindowID]bool),
	}
}

// MarkSeen records that the worker applied a write tagged txn.
func (t *TxnTable) MarkSeen(id WindowID, txn TransactionID) {
	t.mu.Lock()
	t.seen[id] = txn
	t.mu.Unlock()
}

// LastSeen returns the latest transaction applied for a window.
func (t *TxnTable) LastSeen(id WindowID) TransactionID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seen[id]
}

// SetSuspended pauses or resumes feedback for a window during animation.
func (t *TxnTable) SetSuspended(id WindowID, suspended bool) {
	t.mu.Lock()
	if suspended {
		t.suspended[id] = true
	} else {
		delete(t.suspended, id)
	}
	t.mu.Unlock()
}

// Suspended reports whether feedback for a window is paused.
func (t *TxnTable) Suspended(id WindowID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.suspended[id]
}

// Forget drops all state for a window.
func (t *TxnTable) Forget(id WindowID) {
	t.mu.Lock()
	delete(t.seen, id)
	delete(t.suspended, id)
	t.mu.Unlock()
}
