package ipc

import (
	"bytes"
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/regmsg/internal/command"
)

func testServer(t *testing.T) (*Server, string) {
	t.Helper()

	registry := command.NewRegistry()
	registry.Register("ping", &command.SimpleHandler{
		Desc: "test ping",
		Fn:   func() (string, error) { return "pong", nil },
	})
	registry.Register("echo", &command.ArgHandler{
		Name: "echo",
		Desc: "test echo",
		N:    1,
		Fn:   func(args []string) error { return nil },
	})

	socketPath := filepath.Join(t.TempDir(), "regmsgd.sock")
	server := NewServer(socketPath, registry)
	require.NoError(t, server.Start())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("server did not shut down")
		}
		server.Stop()
	})

	return server, socketPath
}

func TestServerRequestReply(t *testing.T) {
	_, socketPath := testServer(t)
	client := NewClient(socketPath)

	reply, err := client.Send("ping")
	require.NoError(t, err)
	assert.Equal(t, "pong", reply)

	reply, err = client.Send("echo hello")
	require.NoError(t, err)
	assert.Equal(t, "echo executed successfully", reply)
}

func TestServerErrorReplies(t *testing.T) {
	_, socketPath := testServer(t)
	client := NewClient(socketPath)

	tests := []struct {
		line string
		want string
	}{
		{line: "nope", want: "Error: Unknown command: nope"},
		{line: "", want: "Error: Empty command"},
		{line: "echo one two", want: "Error: Invalid arguments: echo expects 1 arguments, got 2"},
	}

	for _, tt := range tests {
		reply, err := client.Send(tt.line)
		require.NoError(t, err)
		assert.Equal(t, tt.want, reply)
	}
}

func TestServerMultipleRequestsPerConnection(t *testing.T) {
	_, socketPath := testServer(t)

	conn, err := net.Dial("unix", socketPath)
	require.NoError(t, err)
	defer conn.Close()

	for i := 0; i < 3; i++ {
		require.NoError(t, WriteFrame(conn, "ping"))
		reply, err := ReadFrame(conn)
		require.NoError(t, err)
		assert.Equal(t, "pong", reply)
	}
}

func TestServerRejectsOversizedFrame(t *testing.T) {
	_, socketPath := testServer(t)

	conn, err := net.Dial("unix", socketPath)
	require.NoError(t, err)
	defer conn.Close()

	// Hand-craft a length prefix over the limit; no payload follows.
	_, err = conn.Write([]byte{0xff, 0xff, 0xff, 0xff})
	require.NoError(t, err)

	reply, err := ReadFrame(conn)
	require.NoError(t, err)
	assert.Contains(t, reply, "Error: Message too large")

	// The connection is dropped after a framing violation.
	_, err = ReadFrame(conn)
	assert.Error(t, err)
}

func TestServerReplacesStaleSocket(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "regmsgd.sock")
	require.NoError(t, os.WriteFile(socketPath, nil, 0600))

	server := NewServer(socketPath, command.NewRegistry())
	require.NoError(t, server.Start())
	server.Stop()

	_, err := os.Stat(socketPath)
	assert.True(t, os.IsNotExist(err))
}

// flakyWriter fails whole write calls until its failure budget is
// spent, then delegates to the buffer.
type flakyWriter struct {
	failures int
	attempts int
	buf      bytes.Buffer
}

func (w *flakyWriter) Write(p []byte) (int, error) {
	w.attempts++
	if w.failures > 0 {
		w.failures--
		return 0, errors.New("send buffer full")
	}
	return w.buf.Write(p)
}

func TestSendReplyRetries(t *testing.T) {
	server := NewServer("", command.NewRegistry())

	t.Run("transient failures then delivery", func(t *testing.T) {
		w := &flakyWriter{failures: 2}
		server.sendReply(w, "pong")

		reply, err := ReadFrame(&w.buf)
		require.NoError(t, err)
		assert.Equal(t, "pong", reply)
	})

	t.Run("gives up after three attempts", func(t *testing.T) {
		w := &flakyWriter{failures: replyAttempts}
		server.sendReply(w, "pong")

		assert.Equal(t, replyAttempts, w.attempts)
		assert.Zero(t, w.buf.Len())
	})
}

func TestClientDaemonNotRunning(t *testing.T) {
	client := NewClient(filepath.Join(t.TempDir(), "missing.sock"))

	_, err := client.Send("ping")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "regmsg daemon is not running")
}
