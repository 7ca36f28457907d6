package manager

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/glidewm/glide/internal/layout"
	"github.com/glidewm/glide/internal/sys"
)

// Op names the layout commands accepted from key bindings, the CLI, and the
// control socket.
type Op string

const (
	OpFocus              Op = "focus"
	OpFocusWindow        Op = "focus-window"
	OpFocusFloatingNext  Op = "focus-floating-next"
	OpFocusFloatingPrev  Op = "focus-floating-prev"
	OpToggleFocusFloat   Op = "toggle-focus-floating"
	OpSwap               Op = "swap"
	OpMove               Op = "move"
	OpSplit              Op = "split"
	OpGroup              Op = "group"
	OpUngroup            Op = "ungroup"
	OpToggleFloating     Op = "toggle-floating"
	OpToggleFullscreen   Op = "toggle-fullscreen"
	OpResize             Op = "resize"
	OpSetWeight          Op = "set-weight"
	OpBalance            Op = "balance"
	OpPromote            Op = "promote"
	OpDemote             Op = "demote"
	OpMoveToSpace        Op = "move-to-space"
	OpToggleSpaceManaged Op = "toggle-space-managed"
	OpScroll             Op = "scroll"
	OpSetCenteringMode   Op = "set-centering-mode"
	OpSetLayoutMode      Op = "set-layout-mode"
	OpSaveAndExit        Op = "save-and-exit"
	OpReloadConfig       Op = "reload-config"
	OpConfigUpdate       Op = "config-update"
)

// Command is one user-level layout command. Fields beyond Op are populated
// per operation; the flat shape keeps the wire encoding trivial.
type Command struct {
	Op     Op      `json:"op" yaml:"op"`
	Dir    string  `json:"dir,omitempty" yaml:"dir,omitempty"`
	Axis   string  `json:"axis,omitempty" yaml:"axis,omitempty"`
	Kind   string  `json:"kind,omitempty" yaml:"kind,omitempty"`
	Px     int     `json:"px,omitempty" yaml:"px,omitempty"`
	Weight float64 `json:"weight,omitempty" yaml:"weight,omitempty"`
	Space  uint64  `json:"space,omitempty" yaml:"space,omitempty"`
	Mode   string  `json:"mode,omitempty" yaml:"mode,omitempty"`
	Path   string  `json:"path,omitempty" yaml:"path,omitempty"`
	Window string  `json:"window,omitempty" yaml:"window,omitempty"`
}

// Direction returns the parsed direction field.
func (c Command) Direction() (layout.Direction, bool) {
	return layout.ParseDirection(c.Dir)
}

// TargetWindow parses the "pid/slot" window field.
func (c Command) TargetWindow() (sys.WindowID, bool) {
	pidStr, slotStr, ok := strings.Cut(c.Window, "/")
	if !ok {
		return sys.WindowID{}, false
	}
	pid, err1 := strconv.ParseInt(pidStr, 10, 32)
	slot, err2 := strconv.ParseUint(slotStr, 10, 32)
	if err1 != nil || err2 != nil {
		return sys.WindowID{}, false
	}
	return sys.NewWindowID(int32(pid), uint32(slot)), true
}

// ModifiesLayout reports whether the command is an explicit structural
// modification that should diverge a shared copy-on-write layout.
func (c Command) ModifiesLayout() bool {
	switch c.Op {
	case OpMove, OpSplit, OpGroup, OpUngroup, OpResize, OpSetWeight, OpBalance,
		OpPromote, OpDemote, OpSwap:
		return true
	}
	return false
}

// ParseCommand turns command words ("focus left", "resize right 40") into a
// Command.
func ParseCommand(words []string) (Command, error) {
	if len(words) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}
	op := Op(words[0])
	args := words[1:]

	need := func(n int, what string) error {
		if len(args) != n {
			return fmt.Errorf("%s requires %s", op, what)
		}
		return nil
	}

	switch op {
	case OpFocus, OpSwap, OpMove, OpScroll:
		if err := need(1, "a direction (left/right/up/down)"); err != nil {
			return Command{}, err
		}
		if _, ok := layout.ParseDirection(args[0]); !ok {
			return Command{}, fmt.Errorf("unknown direction %q", args[0])
		}
		return Command{Op: op, Dir: args[0]}, nil

	case OpSplit:
		if err := need(1, "an axis (horizontal/vertical)"); err != nil {
			return Command{}, err
		}
		if args[0] != "horizontal" && args[0] != "vertical" {
			return Command{}, fmt.Errorf("unknown axis %q", args[0])
		}
		return Command{Op: op, Axis: args[0]}, nil

	case OpGroup:
		if err := need(1, "a kind (tabbed/stacked)"); err != nil {
			return Command{}, err
		}
		if args[0] != "tabbed" && args[0] != "stacked" {
			return Command{}, fmt.Errorf("unknown group kind %q", args[0])
		}
		return Command{Op: op, Kind: args[0]}, nil

	case OpResize:
		if err := need(2, "an edge and a pixel delta"); err != nil {
			return Command{}, err
		}
		if _, ok := layout.ParseDirection(args[0]); !ok {
			return Command{}, fmt.Errorf("unknown edge %q", args[0])
		}
		px, err := strconv.Atoi(args[1])
		if err != nil {
			return Command{}, fmt.Errorf("bad pixel delta %q", args[1])
		}
		return Command{Op: op, Dir: args[0], Px: px}, nil

	case OpSetWeight:
		if err := need(1, "a weight delta"); err != nil {
			return Command{}, err
		}
		delta, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return Command{}, fmt.Errorf("bad weight delta %q", args[0])
		}
		return Command{Op: op, Weight: delta}, nil

	case OpMoveToSpace:
		if err := need(1, "a space id"); err != nil {
			return Command{}, err
		}
		space, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return Command{}, fmt.Errorf("bad space id %q", args[0])
		}
		return Command{Op: op, Space: space}, nil

	case OpFocusWindow:
		if err := need(1, "a window id (pid/slot)"); err != nil {
			return Command{}, err
		}
		cmd := Command{Op: op, Window: args[0]}
		if _, ok := cmd.TargetWindow(); !ok {
			return Command{}, fmt.Errorf("bad window id %q", args[0])
		}
		return cmd, nil

	case OpSetCenteringMode:
		if err := need(1, "a mode (always/on_overflow/never)"); err != nil {
			return Command{}, err
		}
		return Command{Op: op, Mode: args[0]}, nil

	case OpSetLayoutMode:
		if err := need(1, "a mode (tree/scroll)"); err != nil {
			return Command{}, err
		}
		if args[0] != "tree" && args[0] != "scroll" {
			return Command{}, fmt.Errorf("unknown layout mode %q", args[0])
		}
		return Command{Op: op, Mode: args[0]}, nil

	case OpConfigUpdate:
		if err := need(1, "a config path"); err != nil {
			return Command{}, err
		}
		return Command{Op: op, Path: args[0]}, nil

	case OpUngroup, OpToggleFloating, OpToggleFullscreen, OpBalance,
		OpPromote, OpDemote, OpToggleSpaceManaged, OpSaveAndExit,
		OpReloadConfig, OpFocusFloatingNext, OpFocusFloatingPrev,
		OpToggleFocusFloat:
		if len(args) != 0 {
			return Command{}, fmt.Errorf("%s takes no arguments", op)
		}
		return Command{Op: op}, nil
	}
	return Command{}, fmt.Errorf("unknown command %q", words[0])
}

// Words renders the command back to its word form.
func (c Command) Words() []string {
	words := []string{string(c.Op)}
	switch c.Op {
	case OpFocus, OpSwap, OpMove, OpScroll:
		words = append(words, c.Dir)
	case OpSplit:
		words = append(words, c.Axis)
	case OpGroup:
		words = append(words, c.Kind)
	case OpResize:
		words = append(words, c.Dir, strconv.Itoa(c.Px))
	case OpSetWeight:
		words = append(words, strconv.FormatFloat(c.Weight, 'g', -1, 64))
	case OpMoveToSpace:
		words = append(words, strconv.FormatUint(c.Space, 10))
	case OpFocusWindow:
		words = append(words, c.Window)
	case OpSetCenteringMode, OpSetLayoutMode:
		words = append(words, c.Mode)
	case OpConfigUpdate:
		words = append(words, c.Path)
	}
	return words
}
