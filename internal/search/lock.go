package search

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	lockFileName     = "index.lock"
	defaultLockWait  = 5 * time.Second
	defaultLockRetry = 500 * time.Millisecond
)

// Lock is an inter-process lock file holding the owner's PID. Indexer runs
// and the MCP server share one search directory through it.
type Lock struct {
	Path      string
	Timeout   time.Duration
	RetryWait time.Duration
}

// NewLock returns the lock guarding the index under dir.
func NewLock(dir string) *Lock {
	return &Lock{
		Path:      filepath.Join(dir, lockFileName),
		Timeout:   defaultLockWait,
		RetryWait: defaultLockRetry,
	}
}

func (l *Lock) owner() (int, bool, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to read lock file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, true, nil
	}
	return pid, true, nil
}

// cleanStale removes the lock file if its owner is gone or unreadable.
func (l *Lock) cleanStale() error {
	pid, exists, err := l.owner()
	if err != nil || !exists {
		return err
	}
	if pid == 0 {
		log.Printf("Warning: Corrupted lock file (invalid PID), removing...")
		return os.Remove(l.Path)
	}
	if isProcessRunning(pid) {
		return fmt.Errorf("lock held by running process %d", pid)
	}
	log.Printf("Stale lock detected (PID %d not running), cleaning...", pid)
	return os.Remove(l.Path)
}

// Acquire takes the lock, waiting up to Timeout for a live owner to let go.
// Re-acquiring a lock this process already holds succeeds immediately.
func (l *Lock) Acquire() error {
	ourPID := os.Getpid()
	if pid, exists, _ := l.owner(); exists && pid == ourPID {
		return nil
	}

	start := time.Now()
	for {
		if err := l.cleanStale(); err != nil {
			elapsed := time.Since(start)
			if elapsed >= l.Timeout {
				return fmt.Errorf("timeout waiting for index lock after %v: %w", elapsed.Round(time.Millisecond), err)
			}
			log.Printf("Index locked by another process, waiting... (%v elapsed)", elapsed.Round(100*time.Millisecond))
			time.Sleep(l.RetryWait)
			continue
		}

		if err := os.MkdirAll(filepath.Dir(l.Path), 0755); err != nil {
			return fmt.Errorf("failed to create lock directory: %w", err)
		}
		if err := os.WriteFile(l.Path, []byte(strconv.Itoa(ourPID)), 0644); err != nil {
			return fmt.Errorf("failed to create lock file: %w", err)
		}
		log.Printf("✓ Index lock acquired (PID %d)", ourPID)
		return nil
	}
}

// Release removes the lock file if this process owns it.
func (l *Lock) Release() error {
	pid, exists, err := l.owner()
	if err != nil || !exists {
		return err
	}
	if pid != 0 && pid != os.Getpid() {
		log.Printf("Warning: Lock file contains different PID (%d vs %d), not removing", pid, os.Getpid())
		return nil
	}
	if err := os.Remove(l.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	log.Printf("✓ Index lock released")
	return nil
}
