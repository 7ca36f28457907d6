package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches the config file and delivers reloaded configs on a channel.
// Editors replace the file rather than writing in place, so the parent
// directory is watched and events are debounced.
type Watcher struct {
	path     string
	debounce time.Duration
	fw       *fsnotify.Watcher
	updates  chan *Config
	errs     chan error
}

// NewWatcher starts watching path. Updates() delivers each successfully
// loaded config; load failures go to Errors() and the previous config stays
// in effect.
func NewWatcher(path string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}
	return &Watcher{
		path:     path,
		debounce: 50 * time.Millisecond,
		fw:       fw,
		updates:  make(chan *Config, 1),
		errs:     make(chan error, 1),
	}, nil
}

func (w *Watcher) Updates() <-chan *Config { return w.updates }
func (w *Watcher) Errors() <-chan error    { return w.errs }

// Run blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	defer w.fw.Close()

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			select {
			case w.errs <- err:
			default:
			}
		case <-fire:
			fire = nil
			cfg, err := LoadFromPath(w.path)
			if err != nil {
				select {
				case w.errs <- err:
				default:
				}
				continue
			}
			select {
			case w.updates <- cfg:
			default:
				// Drop the stale pending config in favor of this one.
				select {
				case <-w.updates:
				default:
				}
				select {
				case w.updates <- cfg:
				default:
				}
			}
		}
	}
}
