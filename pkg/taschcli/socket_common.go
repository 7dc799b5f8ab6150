package taschcli

import (
	"fmt"
	"net"

	"github.com/tasched/tasched/common"
)

// dialFunc dials a single transport. Tests replace it.
var dialFunc = func(network, address string) (net.Conn, error) {
	return net.DialTimeout(network, address, common.DefaultDialTimeout)
}

// tcpAddress returns "localhost:{port}"
func tcpAddress() string {
	return fmt.Sprintf("%s:%d", common.TCPHost, common.TCPPort())
}

func debugLog(format string, args ...any) {
	common.DebugLog(format, args...)
}
