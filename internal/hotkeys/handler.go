// Package hotkeys registers global X key bindings that post layout
// commands to the reactor.
package hotkeys

import (
	"fmt"
	"strings"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/charmbracelet/log"

	"github.com/glidewm/glide/internal/manager"
	"github.com/glidewm/glide/internal/reactor"
	"github.com/glidewm/glide/internal/x11"
)

// Handler manages the global keyboard shortcuts.
type Handler struct {
	xu      *xgbutil.XUtil
	root    xproto.Window
	reactor *reactor.Reactor
	logger  *log.Logger
	bound   []string
}

var ignoreModsOnce sync.Once

// NewHandler creates a hotkey handler on an X connection.
func NewHandler(conn *x11.Connection, r *reactor.Reactor, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	ignoreModsOnce.Do(func() {
		configureIgnoreMods(conn.XUtil)
	})
	return &Handler{
		xu:      conn.XUtil,
		root:    conn.Root,
		reactor: r,
		logger:  logger,
	}
}

// Bind registers every key sequence in the config keys map. Unparseable
// commands are skipped with a warning; the rest still bind.
func (h *Handler) Bind(keys map[string]string) error {
	h.unbindAll()
	var firstErr error
	for sequence, words := range keys {
		cmd, err := manager.ParseCommand(strings.Fields(words))
		if err != nil {
			h.logger.Warn("bad command in key binding", "key", sequence, "command", words, "err", err)
			continue
		}
		if err := h.bind(sequence, cmd); err != nil {
			h.logger.Warn("failed to bind key", "key", sequence, "err", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to bind %q: %w", sequence, err)
			}
		}
	}
	return firstErr
}

func (h *Handler) bind(sequence string, cmd manager.Command) error {
	err := keybind.KeyPressFun(func(_ *xgbutil.XUtil, _ xevent.KeyPressEvent) {
		h.reactor.Post(reactor.CommandEvent{Command: cmd})
	}).Connect(h.xu, h.root, sequence, true)
	if err != nil {
		return err
	}
	h.bound = append(h.bound, sequence)
	return nil
}

// unbindAll detaches every binding, used before a rebind on config reload.
func (h *Handler) unbindAll() {
	if len(h.bound) == 0 {
		return
	}
	keybind.Detach(h.xu, h.root)
	h.bound = nil
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
