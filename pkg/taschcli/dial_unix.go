//go:build !windows

package taschcli

import (
	"fmt"
	"net"

	"github.com/tasched/tasched/common"
)

// dial connects to the daemon over the unix socket, falling back to TCP.
// With TASCHED_FORCE_TCP=1 only TCP is tried.
func dial() (net.Conn, error) {
	if common.ForceTCP() {
		debugLog("TCP forced, connecting to %s", tcpAddress())
		return dialFunc("tcp", tcpAddress())
	}
	debugLog("Attempting connection via Unix socket at %s", socketPath())
	conn, unixErr := dialFunc("unix", socketPath())
	if unixErr != nil {
		debugLog("Unix socket connection failed: %v, falling back to TCP", unixErr)
		conn, err := dialFunc("tcp", tcpAddress())
		if err != nil {
			return nil, fmt.Errorf("failed to connect: unix socket error: %v; tcp error: %w", unixErr, err)
		}
		debugLog("Successfully connected via TCP fallback to %s", tcpAddress())
		return conn, nil
	}
	debugLog("Successfully connected via Unix socket")
	return conn, nil
}
