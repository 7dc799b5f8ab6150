//go:build !windows

package server

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tasched/tasched/common"
)

// getTestSocketPath returns a Unix socket path for testing.
func getTestSocketPath(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	return filepath.Join(tmpDir, "test.sock")
}

// setupTestListener configures environment for Unix socket testing.
func setupTestListener(t *testing.T, sockPath string) {
	t.Helper()
	_ = os.Remove(sockPath)
	t.Setenv(common.SocketPathEnv, sockPath)
	t.Setenv(common.ForceTCPEnv, "")
}

// createTestListener creates a Unix socket listener for tests.
func createTestListener(t *testing.T) (net.Listener, string, error) {
	t.Helper()
	tmpDir, err := os.MkdirTemp("/tmp", "tsd")
	if err != nil {
		return nil, "", err
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })
	socketPath := filepath.Join(tmpDir, "t.sock")

	_ = os.Remove(socketPath)
	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, "", err
	}

	return listener, socketPath, nil
}

func TestCreateListenerUnixSocket(t *testing.T) {
	tmpDir := t.TempDir()
	sockPath := tmpDir + "/test.sock"
	t.Setenv(common.SocketPathEnv, sockPath)

	s := &Server{
		log:  log.New(io.Discard, "", 0),
		port: 0,
	}
	l, err := s.createListener()
	if err != nil {
		t.Fatalf("createListener: %v", err)
	}
	defer l.Close()

	if l.Addr().Network() != "unix" {
		t.Fatalf("expected unix socket, got %s", l.Addr().Network())
	}
}

func TestCreateListenerTCPFallback(t *testing.T) {
	// Use an invalid path to force TCP fallback
	t.Setenv(common.SocketPathEnv, "/nonexistent/path/test.sock")

	s := &Server{
		log:  log.New(io.Discard, "", 0),
		port: 0, // port 0 lets OS pick available port
	}
	l, err := s.createListener()
	if err != nil {
		t.Fatalf("createListener: %v", err)
	}
	defer l.Close()

	if l.Addr().Network() != "tcp" {
		t.Fatalf("expected tcp socket, got %s", l.Addr().Network())
	}
}

func TestServerServesOverUnixSocket(t *testing.T) {
	l, sockPath, err := createTestListener(t)
	if err != nil {
		t.Skipf("unix sockets unavailable: %v", err)
	}
	l.Close()
	_ = os.Remove(sockPath)
	t.Setenv(common.SocketPathEnv, sockPath)
	t.Setenv(common.ForceTCPEnv, "")

	s := NewServer(log.New(io.Discard, "", 0), nil, nil, 0)
	s.RegisterHandler(common.UPDATE_VERSION, func(*SyncConn, *Pool, json.RawMessage) (common.UpdateType, any, error) {
		return common.UPDATE_VERSION, &common.VersionResponse{Version: "1.2.3"}, nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	var conn net.Conn
	deadline := time.Now().Add(2 * time.Second)
	for {
		conn, err = net.Dial("unix", sockPath)
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("dial: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	defer conn.Close()

	sconn := NewSyncConn(conn)
	req, _ := json.Marshal(Request{Method: common.UPDATE_VERSION})
	if err := sconn.Write(req); err != nil {
		t.Fatalf("Write: %v", err)
	}
	b, err := sconn.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	var resp struct {
		Ok     bool `json:"ok"`
		Update struct {
			Message common.VersionResponse `json:"message"`
		} `json:"update"`
	}
	if err := json.Unmarshal(b, &resp); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !resp.Ok || resp.Update.Message.Version != "1.2.3" {
		t.Fatalf("unexpected response: %s", b)
	}
}
