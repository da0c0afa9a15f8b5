//go:build !linux && !windows

package gxxws

import (
	"testing"
	"time"

	"github.com/Gurux/gxcommon-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

type fakeSerialPort struct {
	serial.Port
	mode    *serial.Mode
	timeout time.Duration
	resets  int
	data    []byte
	closed  bool
}

func (f *fakeSerialPort) SetMode(mode *serial.Mode) error {
	f.mode = mode
	return nil
}

func (f *fakeSerialPort) SetReadTimeout(t time.Duration) error {
	f.timeout = t
	return nil
}

func (f *fakeSerialPort) ResetInputBuffer() error {
	f.resets++
	return nil
}

func (f *fakeSerialPort) ResetOutputBuffer() error {
	return nil
}

func (f *fakeSerialPort) Read(p []byte) (int, error) {
	n := copy(p, f.data)
	f.data = f.data[n:]
	return n, nil
}

func (f *fakeSerialPort) Write(p []byte) (int, error) {
	return len(p), nil
}

func (f *fakeSerialPort) Close() error {
	f.closed = true
	return nil
}

func TestPortHandler(t *testing.T) {
	fake := &fakeSerialPort{data: []byte("STATUS=0\r\n")}
	var name string
	var mode *serial.Mode
	old := openSerial
	openSerial = func(n string, m *serial.Mode) (serial.Port, error) {
		name, mode = n, m
		return fake, nil
	}
	t.Cleanup(func() { openSerial = old })

	settings := NewGXSerialSettings("/dev/cu.usbserial")
	settings.Parity = gxcommon.ParityEven
	var p port
	require.NoError(t, openPort(&p, settings))
	assert.True(t, p.isOpen())
	assert.Equal(t, "/dev/cu.usbserial", name)
	assert.Equal(t, &serial.Mode{BaudRate: 115200, DataBits: 8, Parity: serial.EvenParity, StopBits: serial.OneStopBit}, mode)
	assert.Equal(t, readPollInterval, fake.timeout)
	assert.Equal(t, 1, fake.resets)

	data, err := p.read()
	require.NoError(t, err)
	assert.Equal(t, "STATUS=0\r\n", string(data))

	settings.StopBits = gxcommon.StopBitsTwo
	require.NoError(t, p.configure(settings))
	assert.Equal(t, serial.TwoStopBits, fake.mode.StopBits)

	require.NoError(t, p.close())
	assert.True(t, fake.closed)
	assert.False(t, p.isOpen())
	_, err = p.read()
	assert.ErrorIs(t, err, ErrNotOpen)
}
