// Package ipc carries request/reply frames between the regmsg clients
// and the daemon over a Unix socket.
package ipc

import (
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf8"
)

// MaxMessageSize bounds a single frame payload.
const MaxMessageSize = 1 << 20 // 1MB

// Frames are a 4-byte big-endian length prefix followed by a UTF-8
// payload. The codec lives here so a structured envelope can replace
// the raw text without touching the server loop.

// WriteFrame sends one length-prefixed message.
func WriteFrame(w io.Writer, payload string) error {
	data := []byte(payload)
	if len(data) > MaxMessageSize {
		return fmt.Errorf("Message too large: %d bytes (max: %d)", len(data), MaxMessageSize)
	}
	length := uint32(len(data))
	if err := binary.Write(w, binary.BigEndian, length); err != nil {
		return fmt.Errorf("failed to write message length: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return nil
}

// ReadFrame receives one length-prefixed message, enforcing the size
// bound and UTF-8 validity before the payload reaches a dispatcher.
func ReadFrame(r io.Reader) (string, error) {
	var length uint32
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return "", err
	}
	if length > MaxMessageSize {
		return "", fmt.Errorf("Message too large: %d bytes (max: %d)", length, MaxMessageSize)
	}
	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return "", fmt.Errorf("failed to read message: %w", err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("Invalid UTF-8 message")
	}
	return string(data), nil
}
