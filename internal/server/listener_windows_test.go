//go:build windows

package server

import (
	"io"
	"log"
	"strings"
	"testing"

	"github.com/tasched/tasched/common"
)

func TestCreatePipeListener(t *testing.T) {
	t.Setenv(common.PipeNameEnv, "tasched-test-listener")
	t.Setenv(common.ForceTCPEnv, "")

	s := NewServer(log.New(io.Discard, "", 0), nil, nil, 0)
	l, err := s.createListener()
	if err != nil {
		t.Fatalf("createListener() failed: %v", err)
	}
	defer l.Close()

	if !strings.HasPrefix(l.Addr().String(), `\\.\pipe\`) {
		t.Errorf("listener address = %q; want pipe path", l.Addr().String())
	}
	if l.Addr().Network() != "pipe" {
		t.Errorf("listener network = %q; want %q", l.Addr().Network(), "pipe")
	}
}

func TestCreateListenerForceTCP(t *testing.T) {
	t.Setenv(common.ForceTCPEnv, "1")

	s := NewServer(log.New(io.Discard, "", 0), nil, nil, 0)
	l, err := s.createListener()
	if err != nil {
		t.Fatalf("createListener() failed: %v", err)
	}
	defer l.Close()

	if l.Addr().Network() != "tcp" {
		t.Errorf("listener network = %q; want tcp", l.Addr().Network())
	}
}
