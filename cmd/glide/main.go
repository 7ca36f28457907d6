package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/glidewm/glide/internal/config"
	"github.com/glidewm/glide/internal/ipc"
	"github.com/glidewm/glide/internal/manager"
	"github.com/glidewm/glide/internal/mcp"
	"github.com/glidewm/glide/internal/replay"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "command":
		os.Exit(runCommand(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "record":
		os.Exit(runRecord(os.Args[2:]))
	case "replay":
		os.Exit(runReplay(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "ping":
		os.Exit(runPing(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: glide <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon               Start the glide daemon (foreground)")
	fmt.Fprintln(w, "  status               Show daemon status")
	fmt.Fprintln(w, "  command <words...>   Send a layout command (e.g. 'focus left')")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate      Validate configuration")
	fmt.Fprintln(w, "  config print         Print effective configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  record start <file>  Start recording reactor input to a trace")
	fmt.Fprintln(w, "  record stop          Stop the running recording")
	fmt.Fprintln(w, "  replay <file>        Replay a trace offline, printing the request stream")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve            Start MCP server (stdio transport)")
	fmt.Fprintln(w, "  ping [msg]           Check that the daemon is running")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'glide <command> --help' for command-specific options.")
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: glide status")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("daemon_running: %v\n", status.DaemonRunning)
	fmt.Printf("active_space:   %d\n", status.ActiveSpace)
	fmt.Printf("space_count:    %d\n", status.SpaceCount)
	fmt.Printf("window_count:   %d\n", status.WindowCount)
	fmt.Printf("layout_mode:    %s\n", status.LayoutMode)
	fmt.Printf("animating:      %v\n", status.Animating)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	if status.Tree != "" {
		fmt.Printf("tree:\n%s", status.Tree)
	}
	return 0
}

func runCommand(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage: glide command <words...>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Examples:")
		fmt.Fprintln(os.Stderr, "  glide command focus left")
		fmt.Fprintln(os.Stderr, "  glide command split vertical")
		fmt.Fprintln(os.Stderr, "  glide command resize right 40")
		fmt.Fprintln(os.Stderr, "  glide command toggle-floating")
		return 2
	}

	cmd, err := manager.ParseCommand(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if err := ipc.NewClient().SendCommand(cmd); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  glide config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  glide config print [--path PATH]")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/glide/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if _, err := loadConfig(*path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/glide/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		cfg, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		data, err := cfg.Marshal()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFromPath(path)
}

func runRecord(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  glide record start <file>")
		fmt.Fprintln(os.Stderr, "  glide record stop")
		return 2
	}

	client := ipc.NewClient()
	switch args[0] {
	case "start":
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, "record start requires <file>")
			return 2
		}
		if err := client.RecordStart(args[1]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	case "stop":
		if err := client.RecordStop(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown record subcommand: %s\n", args[0])
		return 2
	}
}

func runReplay(args []string) int {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "Config file to replay under (default: embedded defaults)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: glide replay [--config PATH] <file>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Replay a recorded trace against a fresh layout engine and print")
		fmt.Fprintln(os.Stderr, "the request stream it produces.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadFromPath(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	requests, err := replay.Run(fs.Arg(0), cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Print(replay.FormatRequests(requests))
	return 0
}

func runMCP(args []string) int {
	if len(args) == 0 || args[0] != "serve" {
		fmt.Fprintln(os.Stderr, "Usage: glide mcp serve")
		return 2
	}
	server := mcp.NewServer()
	if err := server.Run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runPing(args []string) int {
	msg := strings.Join(args, " ")
	reply, err := ipc.NewClient().Ping(msg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if msg != "" {
		fmt.Printf("pong: %s\n", reply)
	} else {
		fmt.Println("pong")
	}
	return 0
}
