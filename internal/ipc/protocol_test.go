package ipc

import (
	"bytes"
	"encoding/binary"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	tests := []string{
		"listCommands",
		"setMode 1920x1080@60 --screen HDMI-A-1",
		"",
		"unicode: héllo wörld",
	}

	for _, payload := range tests {
		var buf bytes.Buffer
		require.NoError(t, WriteFrame(&buf, payload))

		got, err := ReadFrame(&buf)
		require.NoError(t, err)
		assert.Equal(t, payload, got)
	}
}

func TestWriteFrameTooLarge(t *testing.T) {
	var buf bytes.Buffer
	err := WriteFrame(&buf, strings.Repeat("a", MaxMessageSize+1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Message too large")
	assert.Zero(t, buf.Len())
}

func TestReadFrameOversizedLength(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.BigEndian, uint32(MaxMessageSize+1)))

	_, err := ReadFrame(&buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Message too large")
}

func TestReadFrameInvalidUTF8(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte{0xff, 0xfe, 0xfd}
	require.NoError(t, binary.Write(&buf, binary.BigEndian, uint32(len(payload))))
	buf.Write(payload)

	_, err := ReadFrame(&buf)
	require.Error(t, err)
	assert.Equal(t, "Invalid UTF-8 message", err.Error())
}

func TestReadFrameTruncatedPayload(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.BigEndian, uint32(10)))
	buf.WriteString("short")

	_, err := ReadFrame(&buf)
	require.Error(t, err)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReadFrameEOF(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader(nil))
	assert.ErrorIs(t, err, io.EOF)
}
