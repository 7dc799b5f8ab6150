//go:build windows

package server

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/Microsoft/go-winio"
	"github.com/tasched/tasched/common"
)

func TestPipePath(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"", `\\.\pipe\tasched`},
		{"tasched-test", `\\.\pipe\tasched-test`},
		{`\\.\pipe\tasched-production`, `\\.\pipe\tasched-production`},
	}
	for _, tt := range tests {
		t.Setenv(common.PipeNameEnv, tt.env)
		if got := pipePath(); got != tt.want {
			t.Errorf("pipePath() with %q = %q, want %q", tt.env, got, tt.want)
		}
	}
}

func TestPipeCarriesRunFrames(t *testing.T) {
	t.Setenv(common.PipeNameEnv, fmt.Sprintf("tasched-test-%d", os.Getpid()))
	l, err := winio.ListenPipe(pipePath(), &winio.PipeConfig{SecurityDescriptor: pipeSecurityDescriptor})
	if err != nil {
		t.Fatalf("ListenPipe: %v", err)
	}
	defer l.Close()

	go func() {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		sc := NewSyncConn(conn)
		defer conn.Close()
		b, err := sc.Read()
		if err != nil {
			return
		}
		req, err := ParseRequest(b)
		if err != nil {
			_ = sc.Write(InitError(err))
			return
		}
		_ = sc.Write(MakeResult(req.Method, map[string]string{"state": "idle"}))
	}()

	timeout := 2 * time.Second
	conn, err := winio.DialPipe(pipePath(), &timeout)
	if err != nil {
		t.Fatalf("DialPipe: %v", err)
	}
	defer conn.Close()
	sc := NewSyncConn(conn)
	if err := sc.Write([]byte(`{"method":"status"}`)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	b, err := sc.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if want := `{"ok":true,"update":{"type":"status","message":{"state":"idle"}}}`; string(b) != want {
		t.Errorf("reply = %s, want %s", b, want)
	}
}
