// Package main provides the calc command.
//
// calc drives a handheld-style calculator engine from the command line, a
// line-oriented REPL, an HTTP API, an MCP server or a watched tape file.
//
// Usage:
//
//	calc eval <keys...>    Press keys and print the display
//	calc repl              Read keys from stdin, print the display after each line
//	calc watch <tape>      Re-run a tape file whenever it changes
//	calc serve             Start the HTTP API (default)
//	calc status            Show service status
//	calc stop              Stop the running service
//	calc mcp               Start MCP server (stdio mode)
//	calc version           Show version
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/calc/internal/api"
	"github.com/ternarybob/calc/internal/config"
	"github.com/ternarybob/calc/internal/keypad"
	"github.com/ternarybob/calc/internal/logger"
	"github.com/ternarybob/calc/internal/mcp"
	"github.com/ternarybob/calc/internal/service"
	"github.com/ternarybob/calc/internal/tape"
	"github.com/ternarybob/calc/pkg/calc"
)

// version is set via -ldflags at build time
var version = "dev"

func main() {
	api.SetVersion(version)

	if len(os.Args) < 2 {
		if err := cmdServe(); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	var err error
	switch os.Args[1] {
	case "eval":
		err = cmdEval(os.Args[2:], os.Stdout)
	case "repl":
		err = cmdRepl(os.Stdin, os.Stdout)
	case "watch":
		err = cmdWatch(os.Args[2:])
	case "serve", "start":
		err = cmdServe()
	case "status":
		err = cmdStatus()
	case "stop":
		err = cmdStop()
	case "mcp", "mcp-server":
		err = cmdMCP()
	case "version", "-v", "--version":
		fmt.Printf("calc version %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`calc - immediate-execution calculator

Usage:
  calc [command]

Commands:
  eval <keys...>  Press keys and print the display (e.g. calc eval 2 + 3 x 4 =)
  repl            Read whitespace-separated keys from stdin
  watch <tape>    Re-run a tape file whenever it changes
  serve           Start the HTTP API (default)
  status          Show service status
  stop            Stop the running service
  mcp             Start MCP server (stdio mode)
  version         Show version information
  help            Show this help

Keys:
  0-9 .           Enter a digit or decimal point
  + - * / x       Choose an operation (evaluated left to right)
  =               Compute
  C               Clear

Configuration:
  Config file: ~/.calc/config.yaml (config.toml also accepted; CALC_CONFIG overrides)`)
}

func loadConfig() *config.Config {
	cfg, err := config.Load(config.DefaultConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "[calc] Warning: %v, using defaults\n", err)
		cfg = config.DefaultConfig()
	}
	return cfg
}

// newKeypad builds the calculator described by cfg.
func newKeypad(cfg *config.Config, log arbor.ILogger) *keypad.Keypad {
	return keypad.New(calc.New(
		calc.WithMaxDigits(cfg.Display.MaxDigits),
		calc.WithLogger(log),
	))
}

func cmdEval(args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("eval: no keys given")
	}

	// "calc eval '2 + 3 ='" and "calc eval 2 + 3 =" are equivalent
	keys := strings.Fields(strings.Join(args, " "))

	cfg := loadConfig()
	log := logger.SetupLogger(cfg)
	defer logger.Stop()

	snap, err := newKeypad(cfg, log).PressAll(keys)
	if err != nil {
		return fmt.Errorf("eval: %w", err)
	}
	fmt.Fprintln(out, snap.Display)
	return nil
}

func cmdRepl(in io.Reader, out io.Writer) error {
	cfg := loadConfig()
	log := logger.SetupLogger(cfg)
	defer logger.Stop()
	pad := newKeypad(cfg, log)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		keys := strings.Fields(scanner.Text())
		if len(keys) == 0 {
			continue
		}
		if keys[0] == "quit" || keys[0] == "exit" {
			return nil
		}

		snap, err := pad.PressAll(keys)
		if err != nil {
			fmt.Fprintf(out, "? %v\n", err)
			continue
		}
		fmt.Fprintln(out, snap.Display)
	}
	return scanner.Err()
}

func cmdWatch(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("watch: expected exactly one tape file")
	}

	cfg := loadConfig()
	log := logger.SetupLogger(cfg)
	defer logger.Stop()

	w, err := tape.NewWatcher(args[0], func(r tape.Result) {
		if r.Err != nil {
			fmt.Printf("%s: %v\n", r.Path, r.Err)
			return
		}
		fmt.Printf("%s: %s\n", r.Path, r.Snapshot.Display)
	},
		tape.WithCalculatorOptions(calc.WithMaxDigits(cfg.Display.MaxDigits)),
		tape.WithWatcherLogger(log),
	)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	if err := w.Start(); err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	return w.Stop()
}

func cmdServe() error {
	cfg := loadConfig()
	if !cfg.API.Enabled {
		return fmt.Errorf("api disabled in configuration")
	}

	log := logger.SetupLogger(cfg)
	defer logger.Stop()

	if running, pid := service.IsRunning(cfg); running {
		return fmt.Errorf("service already running (PID %d)", pid)
	}

	apiServer := api.NewServer(cfg, newKeypad(cfg, log))
	daemon := service.NewDaemon(cfg, log)

	if err := daemon.Start(apiServer.Handler()); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	fmt.Printf("calc v%s started on %s\n", version, daemon.Addr())
	fmt.Printf("API: http://%s/calculator\n", daemon.Addr())
	if cfg.MCP.Enabled {
		fmt.Printf("MCP: http://%s/mcp\n", daemon.Addr())
	}

	daemon.Wait()
	return nil
}

func cmdStatus() error {
	cfg := loadConfig()

	if running, pid := service.IsRunning(cfg); running {
		fmt.Printf("calc: running (PID %d)\n", pid)
		fmt.Printf("Address: %s\n", cfg.Address())
	} else {
		fmt.Println("calc: stopped")
	}
	return nil
}

func cmdStop() error {
	cfg := loadConfig()

	running, pid := service.IsRunning(cfg)
	if !running {
		fmt.Println("calc is not running")
		return nil
	}

	fmt.Printf("Stopping calc (PID %d)...\n", pid)
	if err := service.StopRunning(cfg); err != nil {
		return err
	}

	fmt.Println("calc stopped")
	return nil
}

func cmdMCP() error {
	cfg := loadConfig()

	// stdout carries the protocol, so only log to file
	cfg.Logging.Output = []string{"file"}
	log := logger.SetupLogger(cfg)
	defer logger.Stop()

	return mcp.NewServer(newKeypad(cfg, log), version).ServeStdio()
}
