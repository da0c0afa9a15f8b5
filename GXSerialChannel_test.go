package gxxws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceiveBuffer(t *testing.T) {
	b := newReceiveBuffer()
	b.Append([]byte("STATUS"))
	b.Append(nil)
	b.Append([]byte("=1\r\n"))
	assert.Equal(t, 10, b.Available())

	p := make([]byte, 4)
	assert.Equal(t, 4, b.Read(p))
	assert.Equal(t, "STAT", string(p))
	assert.Equal(t, 6, b.Available())

	p = make([]byte, 16)
	n := b.Read(p)
	assert.Equal(t, "US=1\r\n", string(p[:n]))
	assert.Zero(t, b.Available())

	b.Append([]byte("x"))
	b.Reset()
	assert.Zero(t, b.Read(p))
}

func TestSerialChannelClosed(t *testing.T) {
	c := NewGXSerialChannel(NewGXSerialSettings("COM1"))
	assert.False(t, c.IsOpen())

	_, err := c.Write([]byte("STATUS\r\n"))
	assert.ErrorIs(t, err, ErrNotOpen)
	_, err = c.Read(make([]byte, 8))
	assert.ErrorIs(t, err, ErrNotOpen)
	n, err := c.BytesToRead()
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, c.DiscardBuffers())
	require.NoError(t, c.Close())
}

func TestSerialChannelConfigure(t *testing.T) {
	c := NewGXSerialChannel(NewGXSerialSettings("COM1"))
	require.NoError(t, c.Configure(NewGXSerialSettings("COM2")))
	assert.Equal(t, "COM2", c.Settings().Port)
}

func TestSerialChannelOpenValidates(t *testing.T) {
	c := NewGXSerialChannel(NewGXSerialSettings(""))
	assert.EqualError(t, c.Open(), "no serial port selected")
	assert.False(t, c.IsOpen())
}

func TestSerialChannelByteCounters(t *testing.T) {
	c := NewGXSerialChannel(NewGXSerialSettings("COM1"))
	c.bytesSent.Add(3)
	c.bytesReceived.Add(5)
	assert.Equal(t, uint64(3), c.BytesSent())
	assert.Equal(t, uint64(5), c.BytesReceived())
	c.ResetByteCounters()
	assert.Zero(t, c.BytesSent())
	assert.Zero(t, c.BytesReceived())
}

func TestSerialChannelImplementsSerialChannel(t *testing.T) {
	var _ SerialChannel = (*GXSerialChannel)(nil)
	var _ LineTransport = (*GXSerialPort)(nil)
	var _ CommandTransport = (*GXComPort)(nil)
}
