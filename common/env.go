// Package common provides shared types and constants used across the tasched
// client-server communication layer.
package common

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
)

// Environment variable names for configuration.
const (
	// SocketPathEnv is the environment variable for custom socket path.
	SocketPathEnv = "TASCHED_SOCKET_PATH"

	// TCPPortEnv is the environment variable for custom TCP port.
	TCPPortEnv = "TASCHED_TCP_PORT"

	// ForceTCPEnv is the environment variable to force TCP connections.
	ForceTCPEnv = "TASCHED_FORCE_TCP"

	// DebugEnv is the environment variable to enable debug logging.
	DebugEnv = "TASCHED_DEBUG"

	// PipeNameEnv overrides the windows named pipe name.
	PipeNameEnv = "TASCHED_PIPE_NAME"

	// RPCSecretEnv supplies the JSON-RPC bearer secret.
	RPCSecretEnv = "TASCHED_RPC_SECRET"

	// DaemonURIEnv points the CLI at a daemon (unix://, tcp:// or pipe://).
	DaemonURIEnv = "TASCHED_DAEMON_URI"
)

// SocketPath returns the unix socket path of the daemon.
func SocketPath() string {
	if path := os.Getenv(SocketPathEnv); path != "" {
		return path
	}
	return filepath.Join(os.TempDir(), DefaultSocketName)
}

// TCPPort returns the TCP port from environment or DefaultTCPPort.
func TCPPort() int {
	if port := os.Getenv(TCPPortEnv); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			if p >= 1 && p <= 65535 {
				return p
			}
			DebugLog("invalid TCP port %d, using default %d", p, DefaultTCPPort)
		}
	}
	return DefaultTCPPort
}

// ForceTCP returns true if TASCHED_FORCE_TCP=1
func ForceTCP() bool {
	return os.Getenv(ForceTCPEnv) == "1"
}

// DebugMode returns true if TASCHED_DEBUG=1
func DebugMode() bool {
	return os.Getenv(DebugEnv) == "1"
}

// DebugLog logs only if DebugMode() is true
func DebugLog(format string, args ...any) {
	if DebugMode() {
		log.Printf(format, args...)
	}
}
