package client

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"time"
)

const (
	probeTimeout = 500 * time.Millisecond
	startupWait  = 5 * time.Second
)

// IsRunning reports whether anything accepts connections on the broker port.
func IsRunning(port int) bool {
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("127.0.0.1:%d", port), probeTimeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// EnsureServer starts a detached broker on the given port unless one is
// already running, then waits for it to accept connections. The spawned
// process outlives the caller.
func EnsureServer(port int) error {
	if IsRunning(port) {
		return nil
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate own binary: %w", err)
	}

	cmd := exec.Command(exe, "serve", "--port", fmt.Sprintf("%d", port))
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	configureDetached(cmd)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start broker: %w", err)
	}
	// The child is on its own from here; Release avoids a zombie entry.
	if err := cmd.Process.Release(); err != nil {
		slog.Warn("failed to release broker process handle", "error", err)
	}

	deadline := time.Now().Add(startupWait)
	for time.Now().Before(deadline) {
		if IsRunning(port) {
			slog.Debug("broker started", "port", port)
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("broker did not start listening on port %d", port)
}
