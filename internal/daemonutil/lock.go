// Package daemonutil is a reusable single-instance guard for any process
// embedding the mascara engine: a lock file recording which PID owns a
// given instance directory, staleness detection against both a dead PID
// and a rebuilt binary, and socket/log housekeeping. Nothing here is
// part of the wire protocol; it exists for the cmd/mascara-echo demo and
// any daemon built on top of this module.
package daemonutil

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// LockInfo records which process owns one daemon instance: its PID, the
// transport address it bound, and the build time of the binary that
// wrote the lock (used to detect a stale daemon left over from an older
// build).
type LockInfo struct {
	PID       int    `json:"pid"`
	Addr      string `json:"addr"`
	BuildTime int64  `json:"buildTime"`
	Instance  string `json:"instance"`
}

// SocketPath derives a Unix-domain-socket path for instance, deterministic
// per instance name and stable across runs, placed in the system temp
// directory.
func SocketPath(instance string) string {
	hash := md5.Sum([]byte(instance))
	return filepath.Join(os.TempDir(), fmt.Sprintf("mascara-%x.sock", hash))
}

// LockPath returns the lock file path for instance, rooted in dir (the
// daemon's own state directory).
func LockPath(dir, instance string) string {
	return filepath.Join(dir, instance+".lock")
}

// LogPath returns the log file path for instance under dir/logs,
// creating that directory if needed.
func LogPath(dir, instance string) string {
	logDir := filepath.Join(dir, "logs")
	os.MkdirAll(logDir, 0755)
	return filepath.Join(logDir, instance+".log")
}

// WriteLockFile records pid and addr as the current owner of instance.
func WriteLockFile(dir, instance string, pid int, addr string) error {
	buildTime, err := GetBuildTime()
	if err != nil {
		return err
	}

	info := LockInfo{PID: pid, Addr: addr, BuildTime: buildTime, Instance: instance}
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(LockPath(dir, instance), data, 0644)
}

// ReadLockFile reads instance's lock file, returning (nil, nil) if none
// exists (no daemon has ever claimed this instance).
func ReadLockFile(dir, instance string) (*LockInfo, error) {
	data, err := os.ReadFile(LockPath(dir, instance))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var info LockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// RemoveLockFile deletes instance's lock file; a missing file is not an
// error.
func RemoveLockFile(dir, instance string) error {
	err := os.Remove(LockPath(dir, instance))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// IsProcessAlive reports whether pid names a live process, by sending it
// signal 0 (a permission/existence check with no side effect).
func IsProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	return syscall.Kill(pid, 0) == nil
}

// IsStale reports whether the daemon that wrote info should be replaced:
// either its process has died, or the current binary is newer than the
// one that wrote the lock.
func IsStale(info *LockInfo) bool {
	if !IsProcessAlive(info.PID) {
		return true
	}
	buildTime, err := GetBuildTime()
	if err != nil {
		return false
	}
	return buildTime > info.BuildTime
}

// CleanupSocket removes a leftover Unix socket file so a replacement
// daemon can bind the same address; a missing file is not an error.
func CleanupSocket(addr string) error {
	err := os.Remove(addr)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// GetBuildTime returns the modification time of the running executable,
// used as a cheap proxy for "which build is this".
func GetBuildTime() (int64, error) {
	execPath, err := os.Executable()
	if err != nil {
		return 0, err
	}
	stat, err := os.Stat(execPath)
	if err != nil {
		return 0, err
	}
	return stat.ModTime().Unix(), nil
}

// TruncateLogFile keeps only the last 10% of logPath's content once it
// exceeds maxSize, prefixing the kept content with a truncation marker.
func TruncateLogFile(logPath string, maxSize int64) error {
	stat, err := os.Stat(logPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if stat.Size() <= maxSize {
		return nil
	}

	keepSize := maxSize / 10
	file, err := os.OpenFile(logPath, os.O_RDWR, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := file.Seek(stat.Size()-keepSize, io.SeekStart); err != nil {
		return err
	}
	remaining := make([]byte, keepSize)
	n, err := file.Read(remaining)
	if err != nil && err != io.EOF {
		return err
	}

	tempPath := logPath + ".tmp"
	header := fmt.Sprintf("=== log truncated at %s ===\n", time.Now().Format(time.RFC3339))
	content := append([]byte(header), remaining[:n]...)
	if err := os.WriteFile(tempPath, content, 0644); err != nil {
		return err
	}
	return os.Rename(tempPath, logPath)
}
