package gxxws

import (
	"bytes"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
)

// fakeChannel is a SerialChannel that keeps the data in memory.
//
// Bytes given to deliver are available immediately and the data received
// handler is called on the calling goroutine. Chunks added with script become
// available one by one, a new chunk every time BytesToRead finds the input
// empty.
type fakeChannel struct {
	mu       sync.Mutex
	open     bool
	settings GXSerialSettings
	in       []byte
	script   [][]byte
	repeat   []byte
	written  bytes.Buffer
	onData   func()
	opened   int
	closed   int
	discards int
	openErr  error
	writeErr error
}

func (f *fakeChannel) Open() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.openErr != nil {
		return f.openErr
	}
	f.open = true
	f.opened++
	return nil
}

func (f *fakeChannel) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = false
	f.closed++
	return nil
}

func (f *fakeChannel) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

func (f *fakeChannel) Configure(settings GXSerialSettings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings = settings
	return nil
}

func (f *fakeChannel) Write(data []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	return f.written.Write(data)
}

func (f *fakeChannel) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := copy(p, f.in)
	f.in = f.in[n:]
	return n, nil
}

func (f *fakeChannel) BytesToRead() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.in) == 0 {
		switch {
		case len(f.script) != 0:
			f.in = append(f.in, f.script[0]...)
			f.script = f.script[1:]
		case f.repeat != nil:
			f.in = append(f.in, f.repeat...)
		}
	}
	return len(f.in), nil
}

func (f *fakeChannel) DiscardBuffers() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.in = nil
	f.discards++
	return nil
}

func (f *fakeChannel) SetOnDataReceived(handler func()) {
	f.mu.Lock()
	f.onData = handler
	f.mu.Unlock()
}

// deliver makes data available and calls the data received handler.
func (f *fakeChannel) deliver(data string) {
	f.mu.Lock()
	f.in = append(f.in, data...)
	cb := f.onData
	f.mu.Unlock()
	if cb != nil {
		cb()
	}
}

func (f *fakeChannel) sent() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.written.String()
}

// mockLineTransport is a LineTransport mock.
type mockLineTransport struct {
	mock.Mock
}

func (m *mockLineTransport) Configure(settings GXSerialSettings) bool {
	return m.Called(settings).Bool(0)
}

func (m *mockLineTransport) Open() error {
	return m.Called().Error(0)
}

func (m *mockLineTransport) Close() error {
	return m.Called().Error(0)
}

func (m *mockLineTransport) IsOpen() bool {
	return m.Called().Bool(0)
}

func (m *mockLineTransport) Send(text string) error {
	return m.Called(text).Error(0)
}

func (m *mockLineTransport) Receive(expectedLength int) ([]byte, error) {
	ret := m.Called(expectedLength)
	var data []byte
	if ret.Get(0) != nil {
		data = ret.Get(0).([]byte)
	}
	return data, ret.Error(1)
}

// mockCommandTransport is a CommandTransport mock.
type mockCommandTransport struct {
	mock.Mock
}

func (m *mockCommandTransport) Configure(settings GXSerialSettings) bool {
	return m.Called(settings).Bool(0)
}

func (m *mockCommandTransport) Open() error {
	return m.Called().Error(0)
}

func (m *mockCommandTransport) Close() error {
	return m.Called().Error(0)
}

func (m *mockCommandTransport) IsOpen() bool {
	return m.Called().Bool(0)
}

func (m *mockCommandTransport) Send(cmd GXCommand) error {
	return m.Called(cmd).Error(0)
}

func (m *mockCommandTransport) ReceiveMatching(pattern GXCommand, timeout time.Duration) ([]GXCommand, error) {
	ret := m.Called(pattern, timeout)
	var cmds []GXCommand
	if ret.Get(0) != nil {
		cmds = ret.Get(0).([]GXCommand)
	}
	return cmds, ret.Error(1)
}

// mustCommand creates a command or panics.
func mustCommand(function, args string) GXCommand {
	cmd, err := NewGXCommand(function, args)
	if err != nil {
		panic(err)
	}
	return cmd
}

// noSleep replaces the settle time wait in tests.
func noSleep(time.Duration) {}
