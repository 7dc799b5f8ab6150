package common

import (
	"path/filepath"
	"testing"
)

func TestSocketPath(t *testing.T) {
	t.Setenv(SocketPathEnv, "")
	if got := SocketPath(); filepath.Base(got) != DefaultSocketName {
		t.Errorf("default socket path = %s", got)
	}
	t.Setenv(SocketPathEnv, "/run/tasched/custom.sock")
	if got := SocketPath(); got != "/run/tasched/custom.sock" {
		t.Errorf("socket path = %s", got)
	}
}

func TestTCPPort(t *testing.T) {
	tests := []struct {
		env  string
		want int
	}{
		{"", DefaultTCPPort},
		{"5000", 5000},
		{"0", DefaultTCPPort},
		{"70000", DefaultTCPPort},
		{"abc", DefaultTCPPort},
	}
	for _, tt := range tests {
		t.Setenv(TCPPortEnv, tt.env)
		if got := TCPPort(); got != tt.want {
			t.Errorf("TCPPort() with %q = %d, want %d", tt.env, got, tt.want)
		}
	}
}

func TestFlags(t *testing.T) {
	t.Setenv(ForceTCPEnv, "1")
	t.Setenv(DebugEnv, "0")
	if !ForceTCP() {
		t.Error("ForceTCP() = false with TASCHED_FORCE_TCP=1")
	}
	if DebugMode() {
		t.Error("DebugMode() = true with TASCHED_DEBUG=0")
	}
}
