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
	"bytes"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Gurux/gxcommon-go"
	"github.com/google/uuid"
)

// GXComPort is the event driven transport.
//
// Bytes received from the channel are split to lines and every line is
// parsed to a GXCommand. Received commands are delivered to the handlers
// added with OnCommandReceived and queued. Callers wait for a command with
// Receive or ReceiveMatching.
type GXComPort struct {
	tracer

	channel SerialChannel

	// Serializes Open and Close.
	opMu sync.Mutex
	// Guards state, settings and session.
	stateMu  sync.Mutex
	state    gxcommon.MediaState
	open     atomic.Bool
	settings GXSerialSettings
	session  string

	// Closing guard shared by Close and the data received handler.
	portMu  sync.Mutex
	closing bool

	// Received bytes that do not yet form a complete line.
	lineMu sync.Mutex
	line   []byte

	queue            *commandQueue
	received         commandEvent
	sent             commandEvent
	unsubscribeQueue func()
}

// NewGXComPort creates an event driven transport that uses the given channel.
func NewGXComPort(name string, channel SerialChannel, settings GXSerialSettings) *GXComPort {
	return &GXComPort{
		tracer:   newTracer(name),
		channel:  channel,
		settings: settings,
		state:    gxcommon.MediaStateClosed,
		queue:    newCommandQueue(DefaultQueueCapacity),
	}
}

// Name returns the name of the port.
func (c *GXComPort) Name() string {
	return c.name
}

// Address returns the serial port name.
func (c *GXComPort) Address() string {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.settings.Port
}

// Session returns the id of the current connection. It is empty until the
// port is opened for the first time.
func (c *GXComPort) Session() string {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.session
}

// State returns the media state.
func (c *GXComPort) State() gxcommon.MediaState {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.state
}

// Settings returns the serial settings.
func (c *GXComPort) Settings() GXSerialSettings {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.settings
}

// Configure sets the serial settings. It returns false and does nothing if
// the port is open.
func (c *GXComPort) Configure(settings GXSerialSettings) bool {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	if c.open.Load() {
		return false
	}
	c.settings = settings
	return true
}

// IsOpen returns true if the port is open.
func (c *GXComPort) IsOpen() bool {
	return c.open.Load()
}

// OnCommandReceived adds a handler that is called for every received
// command. The returned function removes the handler.
func (c *GXComPort) OnCommandReceived(handler CommandHandler) func() {
	return c.received.add(handler)
}

// OnCommandSent adds a handler that is called after a command is sent.
// The returned function removes the handler.
func (c *GXComPort) OnCommandSent(handler CommandHandler) func() {
	return c.sent.add(handler)
}

func (c *GXComPort) setState(state gxcommon.MediaState) {
	c.stateMu.Lock()
	c.state = state
	c.stateMu.Unlock()
	c.statef(state)
}

// Open opens the channel, discards buffered data and starts queuing
// received commands.
func (c *GXComPort) Open() error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	if c.open.Load() {
		return nil
	}
	settings := c.Settings()
	c.setState(gxcommon.MediaStateOpening)
	c.tracem(gxcommon.TraceTypesInfo, "msg.opening", settings.Port)
	err := c.channel.Configure(settings)
	if err == nil {
		err = c.channel.Open()
	}
	if err == nil {
		if err = c.channel.DiscardBuffers(); err != nil {
			_ = c.channel.Close()
		}
	}
	if err != nil {
		c.tracem(gxcommon.TraceTypesError, "msg.open_failed", settings.Port, err)
		c.errorf(err)
		c.setState(gxcommon.MediaStateClosed)
		return err
	}
	c.portMu.Lock()
	c.closing = false
	c.portMu.Unlock()
	c.lineMu.Lock()
	c.line = c.line[:0]
	c.lineMu.Unlock()
	session := uuid.NewString()
	c.stateMu.Lock()
	c.session = session
	c.stateMu.Unlock()
	c.unsubscribeQueue = c.received.add(c.enqueue)
	c.channel.SetOnDataReceived(c.dataReceived)
	c.open.Store(true)
	c.tracem(gxcommon.TraceTypesInfo, "msg.opened", settings.Port, session)
	c.setState(gxcommon.MediaStateOpen)
	return nil
}

// Close stops handling received data and closes the channel.
func (c *GXComPort) Close() error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	if !c.open.Load() {
		return nil
	}
	port := c.Address()
	c.tracem(gxcommon.TraceTypesInfo, "msg.closing", port)
	c.setState(gxcommon.MediaStateClosing)
	if c.unsubscribeQueue != nil {
		c.unsubscribeQueue()
		c.unsubscribeQueue = nil
	}
	c.channel.SetOnDataReceived(nil)
	c.portMu.Lock()
	c.closing = true
	c.portMu.Unlock()
	err := c.channel.Close()
	c.open.Store(false)
	c.tracem(gxcommon.TraceTypesInfo, "msg.closed", port)
	c.setState(gxcommon.MediaStateClosed)
	return err
}

// Send writes the command to the line.
func (c *GXComPort) Send(cmd GXCommand) error {
	c.tracef(gxcommon.TraceTypesSent, "TX: %s", strings.TrimSuffix(cmd.String(), Terminator))
	if _, err := c.channel.Write(cmd.Bytes()); err != nil {
		return err
	}
	c.sent.raise(c, cmd)
	return nil
}

// Receive returns the oldest received command. If no command is queued it
// waits for one at most timeout. False is returned if nothing was received.
func (c *GXComPort) Receive(timeout time.Duration) (GXCommand, bool) {
	return c.queue.Pop(timeout)
}

// ReceiveMatching waits until a command that equals the pattern is received.
//
// All queued commands up to and including the first match are removed and
// returned in the order they were received. The last returned command always
// equals the pattern. A *TimeoutError is returned if no matching command is
// received in timeout; the queue is left untouched in that case.
func (c *GXComPort) ReceiveMatching(pattern GXCommand, timeout time.Duration) ([]GXCommand, error) {
	start := time.Now()
	ret, ok := c.queue.PopUntil(pattern, start.Add(timeout))
	if !ok {
		return nil, &TimeoutError{
			Operation: c.printer().Sprintf("msg.wait_for_command", pattern.Function(), timeout.Milliseconds()),
			Timeout:   timeout,
			Elapsed:   time.Since(start),
		}
	}
	return ret, nil
}

// Pending returns the amount of queued commands.
func (c *GXComPort) Pending() int {
	return c.queue.Len()
}

// Flush clears the queue and discards the buffers of the channel.
func (c *GXComPort) Flush() error {
	c.queue.Clear()
	c.portMu.Lock()
	defer c.portMu.Unlock()
	return c.channel.DiscardBuffers()
}

// enqueue is the received handler that feeds the queue.
func (c *GXComPort) enqueue(_ *GXComPort, cmd GXCommand) {
	c.queue.Push(cmd)
}

// dataReceived is called by the channel when new bytes are available.
func (c *GXComPort) dataReceived() {
	var data []byte
	c.portMu.Lock()
	if !c.closing {
		data = c.readExisting()
	}
	c.portMu.Unlock()
	if len(data) == 0 {
		return
	}

	c.lineMu.Lock()
	defer c.lineMu.Unlock()
	c.line = append(c.line, data...)
	terminator := []byte(Terminator)
	for {
		idx := bytes.Index(c.line, terminator)
		if idx == -1 {
			break
		}
		line := strings.TrimSpace(string(c.line[:idx]))
		c.line = append(c.line[:0], c.line[idx+len(terminator):]...)
		if line == "" {
			continue
		}
		cmd, err := ParseCommand(line)
		if err != nil {
			c.tracem(gxcommon.TraceTypesError, "msg.invalid_line", line, err)
			continue
		}
		c.tracef(gxcommon.TraceTypesReceived, "RX: %s", line)
		c.received.raise(c, cmd)
	}
}

func (c *GXComPort) readExisting() []byte {
	count, err := c.channel.BytesToRead()
	if err != nil {
		c.errorf(err)
		return nil
	}
	if count <= 0 {
		return nil
	}
	buf := make([]byte, count)
	n, err := c.channel.Read(buf)
	if err != nil {
		c.errorf(err)
		return nil
	}
	return buf[:n]
}
