package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tasched/tasched/pkg/taschlib"
)

const pidFileName = "daemon.pid"

// ErrDaemonAlreadyRunning is returned when the PID file names a live
// process.
var ErrDaemonAlreadyRunning = errors.New("daemon already running")

// checkPidFile removes a PID file left by a daemon that is gone.
func checkPidFile() error {
	pid, err := ReadPidFile()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err == nil && isProcessRunning(pid) {
		return fmt.Errorf("%w (PID %d)", ErrDaemonAlreadyRunning, pid)
	}
	return RemovePidFile()
}

func getPidFilePath() string {
	return filepath.Join(taschlib.ConfigDir, pidFileName)
}

// WritePidFile writes the current process ID to the PID file.
func WritePidFile() error {
	return os.WriteFile(getPidFilePath(), []byte(strconv.Itoa(os.Getpid())), 0644)
}

func ReadPidFile() (int, error) {
	data, err := os.ReadFile(getPidFilePath())
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID in file: %w", err)
	}
	if pid <= 0 {
		return 0, fmt.Errorf("invalid PID: %d", pid)
	}
	return pid, nil
}

// RemovePidFile removes the PID file. A missing file is not an error.
func RemovePidFile() error {
	if err := os.Remove(getPidFilePath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
