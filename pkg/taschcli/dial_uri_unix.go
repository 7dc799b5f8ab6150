//go:build !windows

package taschcli

import (
	"fmt"
	"net"
)

func dialURI(uri *DaemonURI) (net.Conn, error) {
	switch uri.Scheme {
	case SchemeUnix, SchemeTCP:
		debugLog("Connecting via %s to %s", uri.Scheme, uri.Address)
		conn, err := dialFunc(uri.Scheme, uri.Address)
		if err != nil {
			return nil, fmt.Errorf("%s connection failed: %w", uri.Scheme, err)
		}
		return conn, nil
	case SchemePipe:
		return nil, ErrPipeNotSupported
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, uri.Scheme)
	}
}
