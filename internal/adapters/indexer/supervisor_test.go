package indexer

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainreport/indexerd/internal/config"
)

// writeScript installs a fake indexer binary. The supervisor always
// invokes it as `<binary> start all`; the scripts ignore the arguments.
func writeScript(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "fake-indexer")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755))
	return path
}

func newTestSupervisor(t *testing.T, script string) *Supervisor {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.RuntimeConfig{
		ProjectRoot:    dir,
		IndexerBinary:  script,
		IndexerLogFile: filepath.Join(dir, "indexer.log"),
		GraceTimeout:   300 * time.Millisecond,
		SettleDelay:    100 * time.Millisecond,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSupervisor(cfg, log)
}

func TestSupervisor_StartAndStop(t *testing.T) {
	script := writeScript(t, t.TempDir(), "trap 'exit 0' TERM\nwhile true; do sleep 0.1; done\n")
	s := newTestSupervisor(t, script)
	ctx := context.Background()

	require.NoError(t, s.Start(ctx))
	assert.True(t, s.Running())
	assert.Equal(t, StateRunning, s.CurrentState())

	require.NoError(t, s.Stop(ctx))
	assert.False(t, s.Running())
	assert.Equal(t, StateStopped, s.CurrentState())
}

func TestSupervisor_StartWhileRunningFails(t *testing.T) {
	script := writeScript(t, t.TempDir(), "trap 'exit 0' TERM\nwhile true; do sleep 0.1; done\n")
	s := newTestSupervisor(t, script)
	ctx := context.Background()

	require.NoError(t, s.Start(ctx))
	defer func() { _ = s.Stop(ctx) }()

	err := s.Start(ctx)
	require.Error(t, err)
}

func TestSupervisor_UnexpectedExitClearsHandle(t *testing.T) {
	script := writeScript(t, t.TempDir(), "exit 0\n")
	s := newTestSupervisor(t, script)

	require.NoError(t, s.Start(context.Background()))

	require.Eventually(t, func() bool { return !s.Running() },
		2*time.Second, 10*time.Millisecond,
		"handle should be cleared after the process exits on its own")

	// A restart after the unexpected exit must not reference the dead
	// handle.
	require.NoError(t, s.Restart(context.Background()))
	require.Eventually(t, func() bool { return !s.Running() }, 2*time.Second, 10*time.Millisecond)
}

func TestSupervisor_RestartGraceful(t *testing.T) {
	script := writeScript(t, t.TempDir(), "trap 'exit 0' TERM\nwhile true; do sleep 0.1; done\n")
	s := newTestSupervisor(t, script)
	ctx := context.Background()

	require.NoError(t, s.Start(ctx))

	start := time.Now()
	require.NoError(t, s.Restart(ctx))
	elapsed := time.Since(start)

	assert.True(t, s.Running())
	// A polite process exits well before the grace timeout; the settle
	// delay still applies.
	assert.Less(t, elapsed, 300*time.Millisecond+200*time.Millisecond)
	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond)

	require.NoError(t, s.Stop(ctx))
}

func TestSupervisor_RestartForcesStubbornProcess(t *testing.T) {
	// Ignores TERM entirely; only SIGKILL ends it.
	script := writeScript(t, t.TempDir(), "trap '' TERM\nwhile true; do sleep 0.1; done\n")
	s := newTestSupervisor(t, script)
	ctx := context.Background()

	require.NoError(t, s.Start(ctx))

	start := time.Now()
	require.NoError(t, s.Restart(ctx))
	elapsed := time.Since(start)

	// Forced termination at the grace mark, then the settle delay.
	assert.GreaterOrEqual(t, elapsed, 400*time.Millisecond)
	assert.True(t, s.Running())

	require.NoError(t, s.Stop(ctx))
}

func TestSupervisor_ConcurrentRestartsSerialize(t *testing.T) {
	dir := t.TempDir()
	pidsFile := filepath.Join(dir, "pids")
	script := writeScript(t, dir,
		"echo $$ >> "+pidsFile+"\ntrap 'exit 0' TERM\nwhile true; do sleep 0.1; done\n")
	s := newTestSupervisor(t, script)
	ctx := context.Background()

	require.NoError(t, s.Start(ctx))

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Restart(ctx)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.True(t, s.Running())

	// Each spawn records its pid: one initial start plus two restarts.
	// Only the last process may still be alive.
	data, err := os.ReadFile(pidsFile)
	require.NoError(t, err)
	pids := strings.Fields(string(data))
	require.Len(t, pids, 3)

	alive := 0
	for _, raw := range pids {
		pid, err := strconv.Atoi(raw)
		require.NoError(t, err)
		if syscall.Kill(pid, 0) == nil {
			alive++
		}
	}
	assert.Equal(t, 1, alive)

	require.NoError(t, s.Stop(ctx))
}

func TestSupervisor_StartImmediatelyAfterStop(t *testing.T) {
	script := writeScript(t, t.TempDir(), "trap 'exit 0' TERM\nwhile true; do sleep 0.1; done\n")
	s := newTestSupervisor(t, script)
	ctx := context.Background()

	// The handle must be free the moment Stop returns; no settling
	// window is allowed between an observed exit and the next Start.
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Start(ctx))
		require.NoError(t, s.Stop(ctx))
		assert.Equal(t, StateStopped, s.CurrentState())
	}
}

func TestSupervisor_StopWhenNotRunningIsNoop(t *testing.T) {
	script := writeScript(t, t.TempDir(), "exit 0\n")
	s := newTestSupervisor(t, script)
	require.NoError(t, s.Stop(context.Background()))
}
