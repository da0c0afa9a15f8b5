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
	"errors"
	"sync"
	"sync/atomic"
)

// SerialChannel is the byte oriented serial line that the transports use.
//
// Read never blocks: it returns at most BytesToRead bytes. The handler set
// with SetOnDataReceived is called from the channel's own goroutine every
// time new bytes become available.
type SerialChannel interface {
	// Open opens the channel with the configured settings.
	Open() error
	// Close closes the channel.
	Close() error
	// IsOpen returns true if the channel is open.
	IsOpen() bool
	// Configure sets the serial settings.
	Configure(settings GXSerialSettings) error
	// Write writes data to the line.
	Write(data []byte) (int, error)
	// Read reads received bytes.
	Read(p []byte) (int, error)
	// BytesToRead returns the amount of received unread bytes.
	BytesToRead() (int, error)
	// DiscardBuffers discards both the input and the output buffer.
	DiscardBuffers() error
	// SetOnDataReceived sets the data received handler.
	SetOnDataReceived(handler func())
}

// GXSerialChannel is a SerialChannel for a physical serial port.
type GXSerialChannel struct {
	settings GXSerialSettings

	mu sync.RWMutex
	wg sync.WaitGroup

	stop chan struct{}

	bytesSent     atomic.Uint64
	bytesReceived atomic.Uint64

	//Called when new data is received.
	onData func()
	//Called when the reader fails.
	onErr func(err error)

	received *receiveBuffer
	s        port
}

// NewGXSerialChannel creates a serial channel with the given settings.
func NewGXSerialChannel(settings GXSerialSettings) *GXSerialChannel {
	return &GXSerialChannel{settings: settings, received: newReceiveBuffer()}
}

// GetPortNames returns list of available serial ports.
func GetPortNames() ([]string, error) {
	return getPortNames()
}

// Settings returns the used serial settings.
func (c *GXSerialChannel) Settings() GXSerialSettings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings
}

// Configure sets the serial settings. Settings of an open port are updated
// immediately.
func (c *GXSerialChannel) Configure(settings GXSerialSettings) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.s.isOpen() {
		if err := c.s.configure(settings); err != nil {
			return err
		}
	}
	c.settings = settings
	return nil
}

// IsOpen implements SerialChannel.
func (c *GXSerialChannel) IsOpen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.s.isOpen()
}

// SetOnDataReceived implements SerialChannel.
func (c *GXSerialChannel) SetOnDataReceived(handler func()) {
	c.mu.Lock()
	c.onData = handler
	c.mu.Unlock()
}

// SetOnError sets the handler that is called when reading from the port fails.
func (c *GXSerialChannel) SetOnError(handler func(err error)) {
	c.mu.Lock()
	c.onErr = handler
	c.mu.Unlock()
}

// Open implements SerialChannel.
func (c *GXSerialChannel) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.s.isOpen() {
		return nil
	}
	if err := c.settings.Validate(); err != nil {
		return err
	}
	if err := openPort(&c.s, c.settings); err != nil {
		return err
	}
	c.received.Reset()
	c.stop = make(chan struct{})
	c.wg.Add(1)
	go c.reader(c.stop)
	return nil
}

// Close implements SerialChannel.
func (c *GXSerialChannel) Close() error {
	c.mu.Lock()
	if !c.s.isOpen() {
		c.mu.Unlock()
		return nil
	}
	close(c.stop)
	c.s.interrupt()
	c.mu.Unlock()
	// The reader calls the handlers, so the lock is not held while waiting.
	c.wg.Wait()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s.close()
}

// Write implements SerialChannel.
func (c *GXSerialChannel) Write(data []byte) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.s.isOpen() {
		return 0, ErrNotOpen
	}
	n, err := c.s.write(data)
	c.bytesSent.Add(uint64(n))
	return n, err
}

// Read implements SerialChannel.
func (c *GXSerialChannel) Read(p []byte) (int, error) {
	if !c.IsOpen() {
		return 0, ErrNotOpen
	}
	return c.received.Read(p), nil
}

// BytesToRead implements SerialChannel.
func (c *GXSerialChannel) BytesToRead() (int, error) {
	if !c.IsOpen() {
		return 0, nil
	}
	return c.received.Available(), nil
}

// DiscardBuffers implements SerialChannel.
func (c *GXSerialChannel) DiscardBuffers() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	c.received.Reset()
	if !c.s.isOpen() {
		return nil
	}
	return c.s.discard()
}

// BytesSent returns the amount of bytes written to the port.
func (c *GXSerialChannel) BytesSent() uint64 {
	return c.bytesSent.Load()
}

// BytesReceived returns the amount of bytes read from the port.
func (c *GXSerialChannel) BytesReceived() uint64 {
	return c.bytesReceived.Load()
}

// ResetByteCounters resets the sent and received byte counters.
func (c *GXSerialChannel) ResetByteCounters() {
	c.bytesSent.Store(0)
	c.bytesReceived.Store(0)
}

func (c *GXSerialChannel) reader(stop chan struct{}) {
	defer c.wg.Done()
	for {
		ret, err := c.s.read()
		if err != nil {
			select {
			case <-stop:
			default:
				c.mu.RLock()
				cb := c.onErr
				c.mu.RUnlock()
				if cb != nil && !errors.Is(err, ErrNotOpen) {
					cb(err)
				}
			}
			return
		}
		if len(ret) != 0 {
			c.bytesReceived.Add(uint64(len(ret)))
			c.received.Append(ret)
			c.mu.RLock()
			cb := c.onData
			c.mu.RUnlock()
			if cb != nil {
				cb()
			}
		}
		select {
		case <-stop:
			return
		default:
		}
	}
}
