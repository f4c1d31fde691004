//go:build unix

package search

import "syscall"

// isProcessRunning probes pid with signal 0
func isProcessRunning(pid int) bool {
	err := syscall.Kill(pid, syscall.Signal(0))
	if err == nil {
		return true
	}

	// ESRCH = "no such process"
	if err == syscall.ESRCH {
		return false
	}

	// EPERM means the process exists but belongs to someone else
	if err == syscall.EPERM {
		return true
	}

	return false
}
