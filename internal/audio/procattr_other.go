//go:build !unix

package audio

import (
	"os"
	"os/exec"
)

func detach(cmd *exec.Cmd) {}

func killGroup(proc *os.Process) error {
	return proc.Kill()
}
