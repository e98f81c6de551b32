// Package indexer supervises the external indexing process. The
// supervisor is the only owner of the process handle; nothing else may
// signal or restart the indexer.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/chainreport/indexerd/internal/config"
	"github.com/chainreport/indexerd/internal/domain"
)

// State tracks the supervisor's lifecycle.
type State string

const (
	StateStopped  State = "stopped"
	StateStarting State = "starting"
	StateRunning  State = "running"
	StateStopping State = "stopping"
)

// Supervisor spawns the indexer with its fixed start command and
// enforces graceful-then-forced termination on restart. Lifecycle
// operations serialize on one mutex: overlapping restarts queue instead
// of racing two fresh processes into existence.
type Supervisor struct {
	binary       string
	projectDir   string
	logFile      string
	graceTimeout time.Duration
	settleDelay  time.Duration
	log          *slog.Logger

	mu sync.Mutex // serializes Start/Stop/Restart

	handleMu sync.Mutex // guards cmd, done, state
	cmd      *exec.Cmd
	done     chan struct{}
	state    State
	stopping bool
}

// NewSupervisor creates the supervisor from runtime configuration.
func NewSupervisor(cfg *config.RuntimeConfig, log *slog.Logger) *Supervisor {
	return &Supervisor{
		binary:       cfg.IndexerBinary,
		projectDir:   cfg.ProjectRoot,
		logFile:      cfg.IndexerLogFile,
		graceTimeout: cfg.GraceTimeout,
		settleDelay:  cfg.SettleDelay,
		log:          log,
		state:        StateStopped,
	}
}

// Running reports whether a live process handle is held.
func (s *Supervisor) Running() bool {
	s.handleMu.Lock()
	defer s.handleMu.Unlock()
	return s.cmd != nil
}

// State returns the current lifecycle state.
func (s *Supervisor) CurrentState() State {
	s.handleMu.Lock()
	defer s.handleMu.Unlock()
	return s.state
}

// Start spawns the indexer process. Starting while a process is already
// held is an error; Restart is the supported path for that.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startLocked(ctx)
}

// Stop terminates any held process, gracefully then forcibly.
func (s *Supervisor) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopLocked(ctx)
}

// Restart stops the held process, waits for actual exit plus the settle
// delay, then starts a fresh one. The ordering guarantees the old
// process never overlaps the new one on ports or files.
func (s *Supervisor) Restart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.stopLocked(ctx); err != nil {
		return err
	}

	select {
	case <-time.After(s.settleDelay):
	case <-ctx.Done():
		return ctx.Err()
	}

	return s.startLocked(ctx)
}

func (s *Supervisor) startLocked(ctx context.Context) error {
	s.handleMu.Lock()
	if s.cmd != nil {
		s.handleMu.Unlock()
		return &domain.ProcessError{Op: "start", Err: fmt.Errorf("indexer already running (pid %d)", s.cmd.Process.Pid)}
	}
	s.state = StateStarting
	s.handleMu.Unlock()

	logFile, err := os.OpenFile(s.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		s.setStopped()
		return &domain.ProcessError{Op: "start", Err: fmt.Errorf("failed to open log file: %w", err)}
	}

	// Fixed start command; the indexer reads the manifest on boot.
	cmd := exec.Command(s.binary, "start", "all")
	cmd.Dir = s.projectDir
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	if err := cmd.Start(); err != nil {
		logFile.Close()
		s.setStopped()
		return &domain.ProcessError{Op: "start", Err: err}
	}

	done := make(chan struct{})

	s.handleMu.Lock()
	s.cmd = cmd
	s.done = done
	s.state = StateRunning
	s.handleMu.Unlock()

	s.log.Info("indexer started", "pid", cmd.Process.Pid, "binary", s.binary)

	go s.monitor(cmd, done, logFile)

	return nil
}

// monitor waits for the process to exit and clears the held handle so a
// later restart never references a dead process.
func (s *Supervisor) monitor(cmd *exec.Cmd, done chan struct{}, logFile *os.File) {
	err := cmd.Wait()
	logFile.Close()
	close(done)

	s.handleMu.Lock()
	defer s.handleMu.Unlock()
	if s.cmd != cmd {
		return
	}
	s.cmd = nil
	s.done = nil
	s.state = StateStopped
	if !s.stopping {
		s.log.Warn("indexer exited unexpectedly", "pid", cmd.Process.Pid, "error", err)
	}
}

func (s *Supervisor) stopLocked(ctx context.Context) error {
	s.handleMu.Lock()
	cmd := s.cmd
	done := s.done
	if cmd == nil {
		s.handleMu.Unlock()
		return nil
	}
	s.state = StateStopping
	s.stopping = true
	s.handleMu.Unlock()

	pid := cmd.Process.Pid
	s.log.Info("stopping indexer", "pid", pid)

	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
		// Process may already be gone; the monitor clears the handle.
		s.log.Debug("signal delivery failed", "pid", pid, "error", err)
	}

	// Race the exit acknowledgement against the grace timeout.
	select {
	case <-done:
	case <-time.After(s.graceTimeout):
		s.log.Warn("indexer ignored graceful termination, killing", "pid", pid, "timeout", s.graceTimeout)
		if err := cmd.Process.Kill(); err != nil {
			s.log.Debug("kill failed", "pid", pid, "error", err)
		}
		// Wait for actual exit before proceeding.
		<-done
	}

	// Clear the handle here rather than leaving it to the monitor, so
	// the caller can start a fresh process the moment this returns. The
	// monitor's own clear is guarded by a handle comparison and
	// tolerates losing this race.
	s.handleMu.Lock()
	if s.cmd == cmd {
		s.cmd = nil
		s.done = nil
		s.state = StateStopped
	}
	s.stopping = false
	s.handleMu.Unlock()

	s.log.Info("indexer stopped", "pid", pid)
	return nil
}

func (s *Supervisor) setStopped() {
	s.handleMu.Lock()
	s.state = StateStopped
	s.handleMu.Unlock()
}
