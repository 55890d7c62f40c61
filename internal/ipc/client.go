package ipc

import (
	"fmt"
	"net"
	"strings"
	"time"
)

// DefaultTimeout bounds a single request round trip.
const DefaultTimeout = 5 * time.Second

// Client sends command lines to the daemon socket. Each request uses a
// fresh connection, mirroring the daemon's strict request/reply
// alternation.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient returns a client for the given daemon socket.
func NewClient(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    DefaultTimeout,
	}
}

// Send transmits one command line and returns the daemon's reply.
func (c *Client) Send(commandLine string) (string, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		if isConnectionRefused(err) {
			return "", fmt.Errorf("regmsg daemon is not running (socket: %s)", c.socketPath)
		}
		return "", fmt.Errorf("failed to connect to daemon: %w", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(c.timeout)
	if err := conn.SetDeadline(deadline); err != nil {
		return "", fmt.Errorf("failed to set deadline: %w", err)
	}

	if err := WriteFrame(conn, commandLine); err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	reply, err := ReadFrame(conn)
	if err != nil {
		return "", fmt.Errorf("failed to read reply: %w", err)
	}
	return reply, nil
}

func isConnectionRefused(err error) bool {
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "no such file or directory")
}
