package taschcli

import "net"

// NewClientForTesting wraps conn without dialing a daemon.
func NewClientForTesting(conn net.Conn) *Client {
	return newClient(conn)
}

// ReadForTesting exposes the frame reader.
func ReadForTesting(conn net.Conn) ([]byte, error) {
	return read(conn)
}

// WriteForTesting exposes the frame writer.
func WriteForTesting(conn net.Conn, data []byte) error {
	return write(conn, data)
}
