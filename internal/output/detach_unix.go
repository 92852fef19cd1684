//go:build unix

package output

import (
	"os/exec"
	"syscall"
)

// detachProcess starts cmd in its own session so it survives the terminal
func detachProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
