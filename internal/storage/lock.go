package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
)

// LockFileName is the exclusive lock file inside the workspace directory
const LockFileName = ".lock"

// ErrLocked is returned when another live process holds the workspace lock
var ErrLocked = errors.New("workspace is locked by another process")

// ExclusiveLock is the lock file format. While it is present and its process
// is alive, no other projctl process edits the workspace's snapshot.
type ExclusiveLock struct {
	Holder    string    `json:"holder"`
	PID       int       `json:"pid"`
	Hostname  string    `json:"hostname"`
	StartedAt time.Time `json:"started_at"`
	Version   string    `json:"version"`
}

// Lock files that do not parse yet are treated as being written for this long
// before they count as stale. A replace guard older than this was abandoned.
const lockWriteGrace = 10 * time.Second

// AcquireExclusiveLock creates the lock file in workspaceDir. Creation is
// exclusive, so of two racing processes only one gets the lock. A lock left
// behind by a dead process on this host is replaced.
// Returns the lock file path for cleanup on shutdown.
func AcquireExclusiveLock(workspaceDir, version string) (lockPath string, err error) {
	lockPath = filepath.Join(workspaceDir, LockFileName)

	hostname, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("failed to get hostname: %w", err)
	}

	lock := ExclusiveLock{
		Holder:    uuid.NewString(),
		PID:       os.Getpid(),
		Hostname:  hostname,
		StartedAt: time.Now(),
		Version:   version,
	}

	data, err := json.MarshalIndent(lock, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal lock: %w", err)
	}

	for attempt := 0; ; attempt++ {
		err := createLockFile(lockPath, data)
		if err == nil {
			return lockPath, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("failed to create exclusive lock: %w", err)
		}
		if attempt > 0 {
			if err := checkLockHolder(lockPath); err != nil {
				return "", err
			}
			return "", fmt.Errorf("%w: lock was taken while replacing a stale one", ErrLocked)
		}
		if err := clearStaleLock(lockPath); err != nil {
			return "", err
		}
	}
}

func createLockFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}

// clearStaleLock removes the lock at path if its holder is gone and returns
// ErrLocked if it is still held. Removal happens under a second exclusive
// guard file so a stale lock is only ever removed by one process.
func clearStaleLock(path string) error {
	if err := checkLockHolder(path); err != nil {
		return err
	}

	guard := path + ".replace"
	if err := createLockFile(guard, nil); err != nil {
		if !errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("failed to replace stale lock: %w", err)
		}
		if info, statErr := os.Stat(guard); statErr == nil && time.Since(info.ModTime()) > lockWriteGrace {
			_ = os.Remove(guard)
		}
		return fmt.Errorf("%w: another process is replacing a stale lock", ErrLocked)
	}
	defer func() { _ = os.Remove(guard) }()

	// The lock may have changed hands before the guard was taken
	if err := checkLockHolder(path); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stale lock: %w", err)
	}
	return nil
}

// checkLockHolder returns ErrLocked when the lock at path belongs to a live
// process, and nil when it is missing or stale.
func checkLockHolder(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read lock: %w", err)
	}

	var existing ExclusiveLock
	if err := json.Unmarshal(data, &existing); err != nil {
		// Created but not written yet
		if info, statErr := os.Stat(path); statErr == nil && time.Since(info.ModTime()) < lockWriteGrace {
			return fmt.Errorf("%w: lock file is being written", ErrLocked)
		}
		return nil
	}
	if existing.PID == os.Getpid() && sameHost(existing.Hostname) {
		return fmt.Errorf("%w: already held by this process (since %s)",
			ErrLocked, existing.StartedAt.Format(time.RFC3339))
	}
	if isProcessAlive(existing.PID, existing.Hostname) {
		return fmt.Errorf("%w: PID %d on %s, started %s",
			ErrLocked, existing.PID, existing.Hostname, existing.StartedAt.Format(time.RFC3339))
	}
	return nil
}

// ReadExclusiveLock returns the current lock, or nil when none is held
func ReadExclusiveLock(workspaceDir string) (*ExclusiveLock, error) {
	data, err := os.ReadFile(filepath.Join(workspaceDir, LockFileName))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read lock: %w", err)
	}
	var lock ExclusiveLock
	if err := json.Unmarshal(data, &lock); err != nil {
		return nil, fmt.Errorf("invalid lock file: %w", err)
	}
	return &lock, nil
}

// ReleaseExclusiveLock removes the exclusive lock file.
// Should be called on shutdown (use defer).
func ReleaseExclusiveLock(lockPath string) error {
	if lockPath == "" {
		return nil
	}

	if err := os.Remove(lockPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove exclusive lock: %w", err)
	}

	return nil
}

func sameHost(hostname string) bool {
	current, err := os.Hostname()
	return err == nil && strings.EqualFold(hostname, current)
}

// isProcessAlive checks if a process with the given PID exists on the given
// hostname. Processes on other hosts cannot be checked and count as alive.
func isProcessAlive(pid int, hostname string) bool {
	if !sameHost(hostname) {
		return true
	}

	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	// Signal 0 checks for existence without delivering anything
	err = process.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}

	// EPERM: the process exists but belongs to someone else
	return errors.Is(err, syscall.EPERM)
}
