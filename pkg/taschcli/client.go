package taschcli

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"

	"github.com/tasched/tasched/common"
)

// Client talks to the daemon over its framed JSON socket.
type Client struct {
	mu     *sync.RWMutex
	d      *Dispatcher
	conn   net.Conn
	listen bool
}

// NewClient connects to the daemon, spawning it first if nothing answers.
// TASCHED_DAEMON_URI selects an explicit endpoint and skips the spawn.
func NewClient() (*Client, error) {
	if uri := os.Getenv(common.DaemonURIEnv); uri != "" {
		return NewClientWithURI(uri)
	}
	if err := ensureDaemonFunc(); err != nil {
		return nil, fmt.Errorf("error starting daemon: %w", err)
	}
	conn, err := dial()
	if err != nil {
		return nil, fmt.Errorf("error connecting to server: %w", err)
	}
	return newClient(conn), nil
}

// NewClientWithURI connects to the daemon at uri. It does not spawn a
// daemon.
func NewClientWithURI(uri string) (*Client, error) {
	parsed, err := ParseDaemonURI(uri)
	if err != nil {
		return nil, err
	}
	conn, err := dialURIFunc(parsed)
	if err != nil {
		return nil, fmt.Errorf("error connecting to server: %w", err)
	}
	return newClient(conn), nil
}

// dialURIFunc is replaced in tests.
var dialURIFunc = dialURI

func newClient(conn net.Conn) *Client {
	return &Client{
		conn: conn,
		mu:   &sync.RWMutex{},
		d: &Dispatcher{
			Handlers: make(map[common.UpdateType][]Handler),
		},
	}
}

// AddHandler registers h for pushed updates of type utype.
func (c *Client) AddHandler(utype common.UpdateType, h Handler) {
	c.mu.Lock()
	c.d.Handlers[utype] = append(c.d.Handlers[utype], h)
	c.mu.Unlock()
}

// RemoveHandler drops every handler registered for utype.
func (c *Client) RemoveHandler(utype common.UpdateType) {
	c.mu.Lock()
	delete(c.d.Handlers, utype)
	c.mu.Unlock()
}

// Listen dispatches pushed updates until a handler returns ErrDisconnect,
// Disconnect is called or the connection fails.
func (c *Client) Listen() (err error) {
	c.mu.Lock()
	c.listen = true
	c.mu.Unlock()
	defer c.conn.Close()
	for {
		var buf []byte
		buf, err = read(c.conn)
		if err != nil {
			c.mu.RLock()
			stopped := !c.listen
			c.mu.RUnlock()
			if stopped {
				return nil
			}
			return fmt.Errorf("error reading: %w", err)
		}
		c.mu.RLock()
		err = c.d.process(buf)
		c.mu.RUnlock()
		if err != nil {
			if errors.Is(err, ErrDisconnect) {
				return nil
			}
			return fmt.Errorf("error processing: %w", err)
		}
	}
}

// Disconnect stops a running Listen and closes the connection.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	c.listen = false
	c.mu.Unlock()
	return c.conn.Close()
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// invoke sends one request and waits for its reply. Pushed updates that
// arrive first, such as events on an attached connection, go to the
// dispatcher.
func (c *Client) invoke(method common.UpdateType, message any) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	buf, err := json.Marshal(&Request{
		Method:  method,
		Message: message,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke %s: %w", method, err)
	}
	if err = write(c.conn, buf); err != nil {
		return nil, fmt.Errorf("failed to invoke %s: %w", method, err)
	}
	for {
		buf, err = read(c.conn)
		if err != nil {
			return nil, fmt.Errorf("failed to invoke %s: %w", method, err)
		}
		var res Response
		if err = json.Unmarshal(buf, &res); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", method, err)
		}
		if !res.Ok {
			return nil, errors.New(res.Error)
		}
		if res.Update == nil {
			return nil, nil
		}
		if res.Update.Type != method {
			_ = c.d.dispatch(res.Update)
			continue
		}
		return res.Update.Message, nil
	}
}
