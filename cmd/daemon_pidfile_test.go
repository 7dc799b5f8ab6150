package cmd

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestGetPidFilePath(t *testing.T) {
	dir := useConfigDir(t)
	path := getPidFilePath()
	if filepath.Dir(path) != dir {
		t.Fatalf("expected path in %s, got %s", dir, path)
	}
	if filepath.Base(path) != pidFileName {
		t.Fatalf("expected base name %s, got %s", pidFileName, filepath.Base(path))
	}
}

func TestWritePidFile(t *testing.T) {
	useConfigDir(t)
	if err := WritePidFile(); err != nil {
		t.Fatalf("WritePidFile: %v", err)
	}
	pid, err := ReadPidFile()
	if err != nil {
		t.Fatalf("ReadPidFile: %v", err)
	}
	if pid != os.Getpid() {
		t.Fatalf("expected PID %d, got %d", os.Getpid(), pid)
	}
}

func TestReadPidFile_NotExist(t *testing.T) {
	useConfigDir(t)
	_, err := ReadPidFile()
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}

func TestReadPidFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"garbage", "not-a-pid"},
		{"negative", "-5"},
		{"zero", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useConfigDir(t)
			if err := os.WriteFile(getPidFilePath(), []byte(tt.content), 0644); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			if _, err := ReadPidFile(); err == nil {
				t.Fatalf("expected error for %q", tt.content)
			}
		})
	}
}

func TestReadPidFile_TrimsWhitespace(t *testing.T) {
	useConfigDir(t)
	if err := os.WriteFile(getPidFilePath(), []byte("1234\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	pid, err := ReadPidFile()
	if err != nil || pid != 1234 {
		t.Fatalf("ReadPidFile = %d, %v", pid, err)
	}
}

func TestRemovePidFile(t *testing.T) {
	useConfigDir(t)
	if err := WritePidFile(); err != nil {
		t.Fatalf("WritePidFile: %v", err)
	}
	if err := RemovePidFile(); err != nil {
		t.Fatalf("RemovePidFile: %v", err)
	}
	if _, err := os.Stat(getPidFilePath()); !errors.Is(err, fs.ErrNotExist) {
		t.Fatal("expected file to be removed")
	}
	if err := RemovePidFile(); err != nil {
		t.Fatalf("second RemovePidFile: %v", err)
	}
}

func TestCheckPidFile(t *testing.T) {
	useConfigDir(t)
	if err := checkPidFile(); err != nil {
		t.Fatalf("no PID file: %v", err)
	}

	if err := os.WriteFile(getPidFilePath(), []byte("999999999"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := checkPidFile(); err != nil {
		t.Fatalf("stale PID file: %v", err)
	}
	if _, err := os.Stat(getPidFilePath()); !errors.Is(err, fs.ErrNotExist) {
		t.Fatal("expected stale PID file to be removed")
	}

	if err := os.WriteFile(getPidFilePath(), []byte("garbage"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := checkPidFile(); err != nil {
		t.Fatalf("invalid PID file: %v", err)
	}

	if err := WritePidFile(); err != nil {
		t.Fatalf("WritePidFile: %v", err)
	}
	if err := checkPidFile(); !errors.Is(err, ErrDaemonAlreadyRunning) {
		t.Fatalf("expected ErrDaemonAlreadyRunning, got %v", err)
	}
}

func TestIsProcessRunning(t *testing.T) {
	if !isProcessRunning(os.Getpid()) {
		t.Fatal("expected current process to be running")
	}
	if isProcessRunning(999999999) {
		t.Fatal("expected process 999999999 to not be running")
	}
}
