//go:build !unix

package output

import "os/exec"

func detachProcess(cmd *exec.Cmd) {}
