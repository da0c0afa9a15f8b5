package gxxws

// --------------------------------------------------------------------------
//
//	Gurux Ltd
//
// Filename:        $HeadURL$
//
// Version:         $Revision$,
//
//	$Date$
//	$Author$
//
// # Copyright (c) Gurux Ltd
//
// ---------------------------------------------------------------------------
//
//	DESCRIPTION
//
// This file is a part of Gurux Device Framework.
//
// Gurux Device Framework is Open Source software; you can redistribute it
// and/or modify it under the terms of the GNU General Public License
// as published by the Free Software Foundation; version 2 of the License.
// Gurux Device Framework is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU General Public License for more details.
//
// More information of Gurux products: https://www.gurux.org
//
// This code is licensed under the GNU General Public License v2.
// Full text may be retrieved at http://www.gnu.org/licenses/gpl-2.0.txt
// ---------------------------------------------------------------------------

import (
	"sync"
	"time"

	"github.com/Gurux/gxcommon-go"
	"github.com/google/uuid"
)

const (
	// DefaultReceiveTimeout is the time Receive waits for a complete reply.
	DefaultReceiveTimeout = 3000 * time.Millisecond
	// DefaultSleepTime is the time between two polls.
	DefaultSleepTime = 10 * time.Millisecond
	// receiveBufferSize is the size of the buffer that Receive fills.
	receiveBufferSize = 2048
	// cr ends a reply in the polling mode.
	cr = 0x0D
)

// GXSerialPort is the polling transport.
//
// Replies are read on the caller's goroutine. Receive polls the channel until
// enough bytes are received, a carriage return is received or the receive
// timeout elapses.
type GXSerialPort struct {
	tracer

	channel SerialChannel

	mu              sync.Mutex
	settings        GXSerialSettings
	connected       bool
	session         string
	receiveTimeout  time.Duration
	sleepTime       time.Duration
	clearBeforeRead bool
}

// NewGXSerialPort creates a polling transport that uses the given channel.
func NewGXSerialPort(name string, channel SerialChannel, settings GXSerialSettings) *GXSerialPort {
	return &GXSerialPort{
		tracer:          newTracer(name),
		channel:         channel,
		settings:        settings,
		receiveTimeout:  DefaultReceiveTimeout,
		sleepTime:       DefaultSleepTime,
		clearBeforeRead: true,
	}
}

// Name returns the name of the port.
func (s *GXSerialPort) Name() string {
	return s.name
}

// Address returns the serial port name.
func (s *GXSerialPort) Address() string {
	return s.Settings().Port
}

// Settings returns the serial settings.
func (s *GXSerialPort) Settings() GXSerialSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Configure sets the serial settings. It returns false and does nothing if
// the port is open.
func (s *GXSerialPort) Configure(settings GXSerialSettings) bool {
	if s.channel.IsOpen() {
		return false
	}
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
	return true
}

// Session returns the id of the current connection. It is empty until the
// port is opened for the first time.
func (s *GXSerialPort) Session() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// IsOpen returns true if the channel is open.
func (s *GXSerialPort) IsOpen() bool {
	return s.channel.IsOpen()
}

// IsConnected returns true after a successful Open until Close.
func (s *GXSerialPort) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// ReceiveTimeout returns the time Receive waits for a reply.
func (s *GXSerialPort) ReceiveTimeout() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.receiveTimeout
}

// SetReceiveTimeout sets the time Receive waits for a reply.
func (s *GXSerialPort) SetReceiveTimeout(value time.Duration) {
	s.mu.Lock()
	s.receiveTimeout = value
	s.mu.Unlock()
}

// SleepTime returns the time between two polls.
func (s *GXSerialPort) SleepTime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sleepTime
}

// SetSleepTime sets the time between two polls. Values that are not
// positive are ignored.
func (s *GXSerialPort) SetSleepTime(value time.Duration) {
	if value <= 0 {
		return
	}
	s.mu.Lock()
	s.sleepTime = value
	s.mu.Unlock()
}

// ClearBeforeRead returns true if ReadWithClear discards stale bytes before
// sending.
func (s *GXSerialPort) ClearBeforeRead() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearBeforeRead
}

// SetClearBeforeRead sets whether ReadWithClear discards stale bytes.
func (s *GXSerialPort) SetClearBeforeRead(value bool) {
	s.mu.Lock()
	s.clearBeforeRead = value
	s.mu.Unlock()
}

// Open configures and opens the channel. Errors from the channel are
// returned as they are.
func (s *GXSerialPort) Open() error {
	if s.channel.IsOpen() {
		return nil
	}
	settings := s.Settings()
	s.statef(gxcommon.MediaStateOpening)
	s.tracem(gxcommon.TraceTypesInfo, "msg.opening", settings.Port)
	err := s.channel.Configure(settings)
	if err == nil {
		err = s.channel.Open()
	}
	if err != nil {
		s.tracem(gxcommon.TraceTypesError, "msg.open_failed", settings.Port, err)
		s.errorf(err)
		s.statef(gxcommon.MediaStateClosed)
		return err
	}
	session := uuid.NewString()
	s.mu.Lock()
	s.connected = true
	s.session = session
	s.mu.Unlock()
	s.tracem(gxcommon.TraceTypesInfo, "msg.opened", settings.Port, session)
	s.statef(gxcommon.MediaStateOpen)
	return nil
}

// Close closes the channel.
func (s *GXSerialPort) Close() error {
	if !s.channel.IsOpen() {
		return nil
	}
	port := s.Settings().Port
	s.statef(gxcommon.MediaStateClosing)
	s.tracem(gxcommon.TraceTypesInfo, "msg.closing", port)
	if err := s.channel.Close(); err != nil {
		s.errorf(err)
		return err
	}
	s.mu.Lock()
	s.connected = false
	s.mu.Unlock()
	s.tracem(gxcommon.TraceTypesInfo, "msg.closed", port)
	s.statef(gxcommon.MediaStateClosed)
	return nil
}

// Send writes text and the line terminator. Empty text is not sent.
func (s *GXSerialPort) Send(text string) error {
	if text == "" {
		return nil
	}
	s.tracef(gxcommon.TraceTypesSent, "TX: %s", text)
	_, err := s.channel.Write([]byte(text + Terminator))
	return err
}

// Receive reads a reply.
//
// It returns when expectedLength bytes are received, when the last received
// byte is a carriage return or when no more bytes are available. A
// *TimeoutError is returned if the receive timeout elapses first.
func (s *GXSerialPort) Receive(expectedLength int) ([]byte, error) {
	s.mu.Lock()
	timeout := s.receiveTimeout
	sleep := s.sleepTime
	s.mu.Unlock()

	buf := make([]byte, receiveBufferSize)
	offset := 0
	start := time.Now()
	for {
		if elapsed := time.Since(start); elapsed > timeout {
			return nil, &TimeoutError{
				Operation: s.printer().Sprintf("msg.receive", expectedLength),
				Timeout:   timeout,
				Elapsed:   elapsed,
				Received:  offset,
			}
		}
		count, err := s.channel.BytesToRead()
		if err != nil {
			return nil, err
		}
		if count == 0 {
			return s.received(buf[:offset]), nil
		}
		if offset == len(buf) {
			return s.received(buf), nil
		}
		n, err := s.channel.Read(buf[offset:min(offset+count, len(buf))])
		if err != nil {
			return nil, err
		}
		offset += n
		if offset != 0 && (offset >= expectedLength || buf[offset-1] == cr) {
			return s.received(buf[:offset]), nil
		}
		time.Sleep(sleep)
	}
}

func (s *GXSerialPort) received(data []byte) []byte {
	if len(data) != 0 {
		s.tracef(gxcommon.TraceTypesReceived, "RX: %q", data)
	}
	return data
}

// ReadWithClear discards stale bytes if ClearBeforeRead is set, sends text
// and receives the reply.
func (s *GXSerialPort) ReadWithClear(text string, expectedLength int) ([]byte, error) {
	if s.ClearBeforeRead() {
		if err := s.ClearBuffer(); err != nil {
			return nil, err
		}
	}
	if err := s.Send(text); err != nil {
		return nil, err
	}
	return s.Receive(expectedLength)
}

// ClearBuffer reads and discards the bytes that are available. A
// *TimeoutError is returned if bytes keep arriving until the receive timeout
// elapses.
func (s *GXSerialPort) ClearBuffer() error {
	timeout := s.ReceiveTimeout()
	buf := make([]byte, receiveBufferSize)
	discarded := 0
	start := time.Now()
	for {
		if elapsed := time.Since(start); elapsed > timeout {
			return &TimeoutError{
				Operation: s.printer().Sprintf("msg.clear_buffer"),
				Timeout:   timeout,
				Elapsed:   elapsed,
				Received:  discarded,
			}
		}
		count, err := s.channel.BytesToRead()
		if err != nil || count == 0 {
			return err
		}
		n, err := s.channel.Read(buf[:min(count, len(buf))])
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		discarded += n
	}
}
