//go:build unix

package audio

import (
	"os"
	"os/exec"
	"syscall"
)

// detach moves the encoder into its own process group so a terminal Ctrl+C
// reaches only us and the encoder is stopped through Stop.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killGroup kills the encoder and anything it spawned. Children holding the
// stderr pipe would otherwise keep the watcher waiting.
func killGroup(proc *os.Process) error {
	if err := syscall.Kill(-proc.Pid, syscall.SIGKILL); err != nil {
		return proc.Kill()
	}
	return nil
}
