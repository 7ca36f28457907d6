package reactor

import (
	"encoding/json"
	"fmt"

	"github.com/glidewm/glide/internal/config"
	"github.com/glidewm/glide/internal/manager"
	"github.com/glidewm/glide/internal/sys"
)

// Event is one input to the reactor. Events arrive on a single ordered
// channel and are processed strictly in arrival order.
type Event interface {
	kind() string
}

// ScreenParametersChanged reports the current displays and the spaces shown
// on them.
type ScreenParametersChanged struct {
	Screens []sys.Screen `json:"screens"`
}

// SpaceChanged reports that a screen switched to a different space.
type SpaceChanged struct {
	Space  sys.SpaceID `json:"space"`
	Screen sys.Rect    `json:"screen"`
}

// WindowDiscovered reports a new window on a space.
type WindowDiscovered struct {
	Space  sys.SpaceID    `json:"space"`
	Window sys.WindowID   `json:"window"`
	Frame  sys.Rect       `json:"frame"`
	Info   sys.WindowInfo `json:"info"`
}

// AppWindowsUpdated replaces the known window set of one application on a
// space, used on startup and after space changes.
type AppWindowsUpdated struct {
	Space   sys.SpaceID              `json:"space"`
	PID     int32                    `json:"pid"`
	Windows []manager.WindowWithInfo `json:"windows"`
}

// AppTerminated reports that an application exited.
type AppTerminated struct {
	PID int32 `json:"pid"`
}

// AppsRunning reports the full set of live application processes, used
// after restoring saved state to drop windows of dead apps.
type AppsRunning struct {
	PIDs []int32 `json:"pids"`
}

// WindowDestroyed reports that a window went away.
type WindowDestroyed struct {
	Window sys.WindowID `json:"window"`
}

// WindowFocused reports an externally observed focus change.
type WindowFocused struct {
	Window sys.WindowID `json:"window"`
}

// WindowMainChanged reports the app's main window changed; treated like a
// focus change for layout purposes.
type WindowMainChanged struct {
	Window sys.WindowID `json:"window"`
}

// WindowFrameChanged reports an externally observed move or resize,
// together with the last transaction the worker had seen for the window
// when it read the frame.
type WindowFrameChanged struct {
	Window      sys.WindowID      `json:"window"`
	Frame       sys.Rect          `json:"frame"`
	LastSeenTxn sys.TransactionID `json:"last_seen_txn"`
}

// MouseMoved reports cursor movement.
type MouseMoved struct {
	Pos sys.Point `json:"pos"`
}

// MouseClicked reports a button press or release.
type MouseClicked struct {
	Pos     sys.Point `json:"pos"`
	Pressed bool      `json:"pressed"`
}

// ScrollWheel reports wheel movement.
type ScrollWheel struct {
	DeltaX float64 `json:"delta_x"`
	DeltaY float64 `json:"delta_y"`
}

// CommandEvent carries a user command from a key binding, the CLI, or MCP.
type CommandEvent struct {
	Command manager.Command `json:"command"`
}

// ConfigChanged swaps in a new validated configuration.
type ConfigChanged struct {
	Config *config.Config `json:"config"`
}

// AnimationTick drives window and viewport animation frames.
type AnimationTick struct{}

// RequestFailed reports that an app worker could not apply a frame.
type RequestFailed struct {
	Window sys.WindowID `json:"window"`
}

// Shutdown asks the reactor to finish in-flight animations and stop.
type Shutdown struct{}

func (ScreenParametersChanged) kind() string { return "screen_parameters_changed" }
func (SpaceChanged) kind() string            { return "space_changed" }
func (WindowDiscovered) kind() string        { return "window_discovered" }
func (AppWindowsUpdated) kind() string       { return "app_windows_updated" }
func (AppTerminated) kind() string           { return "app_terminated" }
func (AppsRunning) kind() string             { return "apps_running" }
func (WindowDestroyed) kind() string         { return "window_destroyed" }
func (WindowFocused) kind() string           { return "window_focused" }
func (WindowMainChanged) kind() string       { return "window_main_changed" }
func (WindowFrameChanged) kind() string      { return "window_frame_changed" }
func (MouseMoved) kind() string              { return "mouse_moved" }
func (MouseClicked) kind() string            { return "mouse_clicked" }
func (ScrollWheel) kind() string             { return "scroll_wheel" }
func (CommandEvent) kind() string            { return "command" }
func (ConfigChanged) kind() string           { return "config_changed" }
func (AnimationTick) kind() string           { return "animation_tick" }
func (RequestFailed) kind() string           { return "request_failed" }
func (Shutdown) kind() string                { return "shutdown" }

// EventKind returns the stable name of an event, used by the trace format.
func EventKind(ev Event) string { return ev.kind() }

var eventDecoders = map[string]func() Event{
	"screen_parameters_changed": func() Event { return &ScreenParametersChanged{} },
	"space_changed":             func() Event { return &SpaceChanged{} },
	"window_discovered":         func() Event { return &WindowDiscovered{} },
	"app_windows_updated":       func() Event { return &AppWindowsUpdated{} },
	"app_terminated":            func() Event { return &AppTerminated{} },
	"apps_running":              func() Event { return &AppsRunning{} },
	"window_destroyed":          func() Event { return &WindowDestroyed{} },
	"window_focused":            func() Event { return &WindowFocused{} },
	"window_main_changed":       func() Event { return &WindowMainChanged{} },
	"window_frame_changed":      func() Event { return &WindowFrameChanged{} },
	"mouse_moved":               func() Event { return &MouseMoved{} },
	"mouse_clicked":             func() Event { return &MouseClicked{} },
	"scroll_wheel":              func() Event { return &ScrollWheel{} },
	"command":                   func() Event { return &CommandEvent{} },
	"config_changed":            func() Event { return &ConfigChanged{} },
	"animation_tick":            func() Event { return &AnimationTick{} },
	"request_failed":            func() Event { return &RequestFailed{} },
	"shutdown":                  func() Event { return &Shutdown{} },
}

// EncodeEvent marshals an event payload for the trace format.
func EncodeEvent(ev Event) (json.RawMessage, error) {
	return json.Marshal(ev)
}

// DecodeEvent rebuilds an event from its kind and payload.
func DecodeEvent(kind string, data json.RawMessage) (Event, error) {
	mk, ok := eventDecoders[kind]
	if !ok {
		return nil, fmt.Errorf("unknown event kind %q", kind)
	}
	ev := mk()
	if len(data) > 0 {
		if err := json.Unmarshal(data, ev); err != nil {
			return nil, fmt.Errorf("failed to decode %s event: %w", kind, err)
		}
	}
	return deref(ev), nil
}

// deref unwraps the pointer types produced by the decoder table so decoded
// events compare equal to the originals.
func deref(ev Event) Event {
	switch e := ev.(type) {
	case *ScreenParametersChanged:
		return *e
	case *SpaceChanged:
		return *e
	case *WindowDiscovered:
		return *e
	case *AppWindowsUpdated:
		return *e
	case *AppTerminated:
		return *e
	case *AppsRunning:
		return *e
	case *WindowDestroyed:
		return *e
	case *WindowFocused:
		return *e
	case *WindowMainChanged:
		return *e
	case *WindowFrameChanged:
		return *e
	case *MouseMoved:
		return *e
	case *MouseClicked:
		return *e
	case *ScrollWheel:
		return *e
	case *CommandEvent:
		return *e
	case *ConfigChanged:
		return *e
	case *AnimationTick:
		return *e
	case *RequestFailed:
		return *e
	case *Shutdown:
		return *e
	}
	return ev
}
