package taschcli

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"runtime"
	"strconv"
	"strings"

	"github.com/tasched/tasched/common"
)

// DaemonURI is a parsed TASCHED_DAEMON_URI value.
type DaemonURI struct {
	Scheme  string
	Address string
}

const (
	SchemeUnix = "unix"
	SchemeTCP  = "tcp"
	SchemePipe = "pipe"
)

var (
	ErrEmptyURI          = errors.New("daemon URI cannot be empty")
	ErrUnsupportedScheme = errors.New("unsupported URI scheme")
	ErrInvalidPath       = errors.New("invalid path in URI")
	ErrPipeNotSupported  = errors.New("pipe:// scheme only supported on Windows")
	ErrUnixNotSupported  = errors.New("unix:// scheme not supported on Windows")
)

const pipePrefix = `\\.\pipe\`

// ParseDaemonURI accepts unix:///abs/path, tcp://host[:port] and
// pipe://name. A tcp URI without a port gets common.DefaultTCPPort.
func ParseDaemonURI(raw string) (*DaemonURI, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrEmptyURI
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	switch strings.ToLower(u.Scheme) {
	case SchemeUnix:
		if runtime.GOOS == "windows" {
			return nil, ErrUnixNotSupported
		}
		// unix://relative/path puts "relative" in Host.
		if u.Host != "" || !strings.HasPrefix(u.Path, "/") {
			return nil, ErrInvalidPath
		}
		return &DaemonURI{Scheme: SchemeUnix, Address: u.Path}, nil
	case SchemeTCP:
		addr, err := tcpURIAddress(u.Host)
		if err != nil {
			return nil, err
		}
		return &DaemonURI{Scheme: SchemeTCP, Address: addr}, nil
	case SchemePipe:
		if runtime.GOOS != "windows" {
			return nil, ErrPipeNotSupported
		}
		if u.Host == "" {
			return nil, ErrInvalidPath
		}
		name := u.Host
		if !strings.HasPrefix(name, pipePrefix) {
			name = pipePrefix + name
		}
		return &DaemonURI{Scheme: SchemePipe, Address: name}, nil
	default:
		return nil, ErrUnsupportedScheme
	}
}

func tcpURIAddress(host string) (string, error) {
	if host == "" {
		return "", ErrInvalidPath
	}
	_, port, err := parseHostPort(host)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	if port == "" {
		return fmt.Sprintf("%s:%d", host, common.DefaultTCPPort), nil
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return "", fmt.Errorf("%w: invalid port", ErrInvalidPath)
	}
	if n < 1 || n > 65535 {
		return "", fmt.Errorf("%w: port out of range", ErrInvalidPath)
	}
	return host, nil
}

// parseHostPort splits host:port. The port is empty when absent; a bare
// IPv6 address without brackets is treated as a host.
func parseHostPort(hostport string) (string, string, error) {
	if strings.HasPrefix(hostport, "[") {
		end := strings.Index(hostport, "]")
		if end == -1 {
			return "", "", errors.New("missing closing bracket in IPv6 address")
		}
		rest := hostport[end+1:]
		if rest == "" {
			return hostport, "", nil
		}
		if rest[0] != ':' {
			return "", "", errors.New("invalid format after IPv6 address")
		}
		return hostport[:end+1], rest[1:], nil
	}
	switch strings.Count(hostport, ":") {
	case 0:
		return hostport, "", nil
	case 1:
		host, port, err := net.SplitHostPort(hostport)
		return host, port, err
	default:
		return hostport, "", nil
	}
}
