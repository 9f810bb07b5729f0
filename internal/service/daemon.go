// Package service manages the calc HTTP service lifecycle.
package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/calc/internal/config"
)

// ErrAlreadyRunning is returned by Start on a running daemon.
var ErrAlreadyRunning = errors.New("daemon already running")

// Daemon runs the HTTP server and owns its PID file.
type Daemon struct {
	cfg      *config.Config
	logger   arbor.ILogger
	server   *http.Server
	listener net.Listener
	stopCh   chan struct{}
	stopOnce sync.Once
	mu       sync.Mutex
	running  bool
}

// NewDaemon creates a new daemon instance.
func NewDaemon(cfg *config.Config, logger arbor.ILogger) *Daemon {
	return &Daemon{
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

// Start binds the configured address and serves handler in the background.
func (d *Daemon) Start(handler http.Handler) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return ErrAlreadyRunning
	}

	if err := d.cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	ln, err := net.Listen("tcp", d.cfg.Address())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", d.cfg.Address(), err)
	}
	d.listener = ln

	if err := d.writePID(); err != nil {
		ln.Close()
		return fmt.Errorf("write PID: %w", err)
	}

	d.server = &http.Server{
		Handler:     handler,
		ReadTimeout: 30 * time.Second,
		// No WriteTimeout: /mcp streams responses; API routes carry their own timeout.
		IdleTimeout: 120 * time.Second,
	}
	d.running = true

	go func() {
		d.logger.Info().Str("address", ln.Addr().String()).Msg("Starting server")
		if err := d.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.logger.Error().Err(err).Msg("Server error")
		}
	}()

	return nil
}

// Addr returns the bound address, or nil before Start.
func (d *Daemon) Addr() net.Addr {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.listener == nil {
		return nil
	}
	return d.listener.Addr()
}

// Wait blocks until a termination signal or Stop, then shuts down.
func (d *Daemon) Wait() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		d.logger.Info().Str("signal", sig.String()).Msg("Received signal, shutting down")
	case <-d.stopCh:
		d.logger.Info().Msg("Stop requested, shutting down")
	}

	d.shutdown()
}

// Stop shuts the server down and releases a pending Wait. It does not
// depend on Wait running.
func (d *Daemon) Stop() {
	d.mu.Lock()
	running := d.running
	d.mu.Unlock()
	if !running {
		return
	}

	d.stopOnce.Do(func() { close(d.stopCh) })
	d.shutdown()
}

func (d *Daemon) shutdown() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := d.server.Shutdown(ctx); err != nil {
		d.logger.Warn().Err(err).Msg("Server shutdown error")
	}

	d.removePID()
	d.running = false
}

func (d *Daemon) writePID() error {
	pidPath := d.cfg.PIDPath()
	if err := os.MkdirAll(filepath.Dir(pidPath), 0755); err != nil {
		return fmt.Errorf("create PID directory: %w", err)
	}
	return os.WriteFile(pidPath, []byte(strconv.Itoa(os.Getpid())), 0644)
}

func (d *Daemon) removePID() {
	_ = os.Remove(d.cfg.PIDPath())
}

// IsRunning reports whether the PID file names a live process.
// A stale PID file is removed.
func IsRunning(cfg *config.Config) (bool, int) {
	pidPath := cfg.PIDPath()

	data, err := os.ReadFile(pidPath)
	if err != nil {
		return false, 0
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return false, 0
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false, 0
	}

	if err := process.Signal(syscall.Signal(0)); err != nil {
		_ = os.Remove(pidPath)
		return false, 0
	}

	return true, pid
}

// StopRunning sends SIGTERM to a running daemon, killing it if it has not
// exited after three seconds.
func StopRunning(cfg *config.Config) error {
	running, pid := IsRunning(cfg)
	if !running {
		return fmt.Errorf("daemon not running")
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find process: %w", err)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("send signal: %w", err)
	}

	for i := 0; i < 30; i++ {
		time.Sleep(100 * time.Millisecond)
		if running, _ := IsRunning(cfg); !running {
			return nil
		}
	}

	if err := process.Kill(); err != nil {
		return fmt.Errorf("kill process: %w", err)
	}
	_ = os.Remove(cfg.PIDPath())

	return nil
}
