//go:build !windows

package client

import (
	"os/exec"
	"syscall"
)

func configureDetached(cmd *exec.Cmd) {
	// New session so the broker survives the caller's terminal closing.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
