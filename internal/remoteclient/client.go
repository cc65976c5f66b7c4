// Package remoteclient implements the UDS client side of the wire protocol
// used by rezesh's remote actions: connect with a fixed backoff, write the
// request line and body as two separate sends, and read back one response
// line.
package remoteclient

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/routerd/routerd/internal/evloop"
	"github.com/routerd/routerd/internal/logger"
	"github.com/routerd/routerd/internal/rerror"
)

// ReconnectBackoff is the fixed delay between connect attempts after a
// dropped or refused connection.
const ReconnectBackoff = 5 * time.Second

// Client is a single named remote's UDS connection: "config", "exec", or any
// other entry from the CLI config's remote map.
type Client struct {
	Name   string
	Prefix string

	path string

	mu   sync.Mutex
	conn net.Conn
}

// New builds a client for the UNIX socket at path. It does not connect.
func New(name, prefix, path string) *Client {
	return &Client{Name: name, Prefix: prefix, path: path}
}

func (c *Client) connectLocked() error {
	if c.conn != nil {
		return nil
	}
	conn, err := net.DialTimeout("unix", c.path, 2*time.Second)
	if err != nil {
		return rerror.RemoteIO("connect to "+c.Name+" failed", err)
	}
	c.conn = conn
	return nil
}

func (c *Client) dropLocked() {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

// Connect establishes the connection now, synchronously, for the shell's
// one-shot synchronous remote calls.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked()
}

// Connected reports whether the underlying stream is currently live.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Call sends one request and blocks for its single-line response. The
// request line and the body are two distinct Write calls, matching the
// original's send(request) then send(body) pair rather than one buffered
// write.
func (c *Client) Call(method, path, body string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.connectLocked(); err != nil {
		return "", err
	}

	reqLine := fmt.Sprintf("%s %s\n\n", strings.ToUpper(method), path)
	if _, err := c.conn.Write([]byte(reqLine)); err != nil {
		c.dropLocked()
		return "", rerror.RemoteIO("write request line to "+c.Name+" failed", err)
	}
	if _, err := c.conn.Write([]byte(body + "\n")); err != nil {
		c.dropLocked()
		return "", rerror.RemoteIO("write body to "+c.Name+" failed", err)
	}

	reader := bufio.NewReader(c.conn)
	line, err := reader.ReadString('\n')
	if err != nil {
		c.dropLocked()
		return "", rerror.RemoteIO("read response from "+c.Name+" failed", err)
	}
	return strings.TrimRight(line, "\n"), nil
}

// ScheduleReconnect is the asynchronous, event-loop-driven mode: on failure
// it registers a one-shot timer after ReconnectBackoff that retries the
// connection and reschedules itself until it succeeds.
func (c *Client) ScheduleReconnect(loop *evloop.Loop) {
	loop.RegisterTimer(ReconnectBackoff, func() {
		if err := c.Connect(); err != nil {
			logger.Warn("remote reconnect failed", logger.Err(err))
			c.ScheduleReconnect(loop)
		}
	})
}

// Close drops the connection, if any.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropLocked()
	return nil
}
