//go:build !windows

package taschcli

import (
	"os/exec"
	"syscall"
)

// detach puts the daemon in its own process group so it outlives the CLI.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
