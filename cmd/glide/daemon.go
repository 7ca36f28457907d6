package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/glidewm/glide/internal/apps"
	"github.com/glidewm/glide/internal/config"
	"github.com/glidewm/glide/internal/hotkeys"
	"github.com/glidewm/glide/internal/ipc"
	"github.com/glidewm/glide/internal/manager"
	"github.com/glidewm/glide/internal/reactor"
	"github.com/glidewm/glide/internal/replay"
	"github.com/glidewm/glide/internal/sys"
	"github.com/glidewm/glide/internal/x11"
)

const tickInterval = 16 * time.Millisecond

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "Config file path (default: ~/.config/glide/config.yaml)")
	tracePath := fs.String("record", "", "Record reactor input to a trace file from startup")
	verbose := fs.Bool("verbose", false, "Debug logging")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: glide daemon [--config PATH] [--record FILE] [--verbose]")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "glide",
	})
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load configuration", "err", err)
		return 1
	}
	logger.Info("configuration loaded",
		"inner_gap", cfg.InnerGap, "outer_gap", cfg.OuterGap, "animate", cfg.Animate)

	conn, err := x11.NewConnection()
	if err != nil {
		logger.Error("failed to connect to display", "err", err)
		return 1
	}
	defer conn.Close()

	mgr := manager.New()
	restoreState(mgr, logger)

	txns := sys.NewTxnTable()
	var r *reactor.Reactor
	pool := apps.NewPool(conn, txns, logger.WithPrefix("apps"), func(wid sys.WindowID) {
		r.Post(reactor.RequestFailed{Window: wid})
	})
	defer pool.Close()

	r = reactor.New(cfg, mgr, pool, logger.WithPrefix("reactor"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r.OnExit = func() {
		saveState(mgr, logger)
		cancel()
	}
	r.OnReloadConfig = func(path string) {
		newCfg, err := loadConfigOrDefaultPath(path, *configPath)
		if err != nil {
			logger.Warn("config reload failed; keeping previous config", "err", err)
			return
		}
		r.Post(reactor.ConfigChanged{Config: newCfg})
	}

	if *tracePath != "" {
		rec, err := replay.NewRecorder(*tracePath)
		if err != nil {
			logger.Error("failed to start trace recording", "err", err)
			return 1
		}
		defer rec.Close()
		r.SetRecorder(rec)
		logger.Info("recording reactor input", "path", *tracePath)
	}

	// Control socket.
	server, err := ipc.NewServer(r, logger.WithPrefix("ipc"))
	if err != nil {
		logger.Error("failed to create control server", "err", err)
		return 1
	}
	if err := server.Start(); err != nil {
		logger.Error("failed to start control server", "err", err)
		return 1
	}
	defer server.Stop()

	// X event pump.
	source := x11.NewEventSource(conn, r, txns, logger.WithPrefix("x11"))
	if err := source.Start(); err != nil {
		logger.Error("failed to subscribe to X events", "err", err)
		return 1
	}

	// Key bindings.
	keys := hotkeys.NewHandler(conn, r, logger.WithPrefix("keys"))
	if err := keys.Bind(cfg.Keys); err != nil {
		logger.Warn("some key bindings failed", "err", err)
	}

	// Config file watcher.
	watchPath := *configPath
	if watchPath == "" {
		if p, err := config.Path(); err == nil {
			watchPath = p
		}
	}
	if watchPath != "" {
		if watcher, err := config.NewWatcher(watchPath); err == nil {
			go watcher.Run(ctx)
			go func() {
				for {
					select {
					case <-ctx.Done():
						return
					case newCfg := <-watcher.Updates():
						logger.Info("config file changed; applying")
						keys.Bind(newCfg.Keys)
						r.Post(reactor.ConfigChanged{Config: newCfg})
					case err := <-watcher.Errors():
						logger.Warn("config watch error; keeping previous config", "err", err)
					}
				}
			}()
		} else {
			logger.Warn("config watching disabled", "err", err)
		}
	}

	// Animation ticks only while something is animating.
	go func() {
		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if r.AnimationsActive() {
					r.Post(reactor.AnimationTick{})
				}
			}
		}
	}()

	// Reactor loop.
	reactorDone := make(chan struct{})
	go func() {
		defer close(reactorDone)
		r.Run(ctx)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		for sig := range sigCh {
			switch sig {
			case syscall.SIGHUP:
				logger.Info("SIGHUP received; reloading config")
				r.OnReloadConfig("")
			case os.Interrupt, syscall.SIGTERM:
				logger.Info("shutting down")
				r.Post(reactor.Shutdown{})
				saveState(mgr, logger)
				// Give the reactor a moment to drain, then stop the
				// event loop.
				go func() {
					select {
					case <-reactorDone:
					case <-time.After(2 * time.Second):
					}
					cancel()
					conn.Close()
				}()
			}
		}
	}()

	logger.Info("glide daemon started")
	conn.EventLoop()
	<-reactorDone
	return 0
}

func loadConfigOrDefaultPath(path, fallback string) (*config.Config, error) {
	if path == "" {
		path = fallback
	}
	return loadConfig(path)
}

func restoreState(mgr *manager.Manager, logger *log.Logger) {
	path, err := config.StatePath()
	if err != nil {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	// Restore everything, then let the first client-list sweep drop
	// windows that no longer exist.
	if err := mgr.LoadState(path, nil); err != nil {
		logger.Warn("failed to restore layout state", "err", err)
		return
	}
	logger.Info("layout state restored", "path", path)
}

func saveState(mgr *manager.Manager, logger *log.Logger) {
	path, err := config.StatePath()
	if err != nil {
		return
	}
	if err := mgr.SaveState(path); err != nil {
		logger.Warn("failed to save layout state", "err", err)
		return
	}
	logger.Info("layout state saved", "path", path)
}
