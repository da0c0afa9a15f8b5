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
	"fmt"
	"strings"
	"time"
)

// LineTransport is the polling transport that a device can use.
// GXSerialPort implements it.
type LineTransport interface {
	Configure(settings GXSerialSettings) bool
	Open() error
	Close() error
	IsOpen() bool
	// Send writes text as one line.
	Send(text string) error
	// Receive reads a reply of at most expectedLength bytes.
	Receive(expectedLength int) ([]byte, error)
}

// CommandTransport is the event driven transport that a device can use.
// GXComPort implements it.
type CommandTransport interface {
	Configure(settings GXSerialSettings) bool
	Open() error
	Close() error
	IsOpen() bool
	// Send writes the command.
	Send(cmd GXCommand) error
	// ReceiveMatching waits until a command equal to the pattern is received.
	ReceiveMatching(pattern GXCommand, timeout time.Duration) ([]GXCommand, error)
}

// request is one command sent to the device and what is expected back.
type request struct {
	function string
	// settle is the time waited before the reply is read in polling mode.
	settle time.Duration
	// expect is the reply pattern in event driven mode.
	expect GXCommand
	// wait is the time the reply is waited in event driven mode.
	wait time.Duration
	// length is the expected reply length in polling mode.
	length int
}

// reply is the value part of a device reply.
type reply struct {
	value string
	// raw is the reply as it was received.
	raw string
}

// deviceTransport is the transport bound to a device. Either the polling or
// the event driven variant is used.
type deviceTransport interface {
	configure(settings GXSerialSettings) bool
	open() error
	close() error
	isOpen() bool
	session() string
	execute(req request) (reply, error)
}

// sessioner is implemented by transports that have a session id.
type sessioner interface {
	Session() string
}

type pollingTransport struct {
	t LineTransport
	// sleep waits the settle time.
	sleep func(time.Duration)
}

func (p *pollingTransport) configure(settings GXSerialSettings) bool {
	return p.t.Configure(settings)
}

func (p *pollingTransport) open() error {
	return p.t.Open()
}

func (p *pollingTransport) close() error {
	return p.t.Close()
}

func (p *pollingTransport) isOpen() bool {
	return p.t.IsOpen()
}

func (p *pollingTransport) session() string {
	if s, ok := p.t.(sessioner); ok {
		return s.Session()
	}
	return ""
}

func (p *pollingTransport) execute(req request) (reply, error) {
	if err := p.t.Send(req.function); err != nil {
		return reply{}, err
	}
	p.sleep(req.settle)
	data, err := p.t.Receive(req.length)
	if err != nil {
		return reply{}, err
	}
	raw := string(data)
	response := strings.TrimSpace(strings.TrimRight(raw, "\x00"))
	if response == "" {
		return reply{raw: raw}, &DeviceError{Code: ErrorCodeNoResponse}
	}
	_, value, found := strings.Cut(response, argumentSeparator)
	if !found {
		return reply{raw: response}, &DeviceError{
			Code:     ErrorCodeDecode,
			Response: response,
			Err:      fmt.Errorf("%w: reply %q has no value", ErrInvalidFormat, response),
		}
	}
	return reply{value: strings.TrimSpace(value), raw: response}, nil
}

type eventTransport struct {
	t CommandTransport
}

func (e *eventTransport) configure(settings GXSerialSettings) bool {
	return e.t.Configure(settings)
}

func (e *eventTransport) open() error {
	return e.t.Open()
}

func (e *eventTransport) close() error {
	return e.t.Close()
}

func (e *eventTransport) isOpen() bool {
	return e.t.IsOpen()
}

func (e *eventTransport) session() string {
	if s, ok := e.t.(sessioner); ok {
		return s.Session()
	}
	return ""
}

func (e *eventTransport) execute(req request) (reply, error) {
	cmd, err := NewGXCommand(req.function, "")
	if err != nil {
		return reply{}, err
	}
	if err = e.t.Send(cmd); err != nil {
		return reply{}, err
	}
	ret, err := e.t.ReceiveMatching(req.expect, req.wait)
	if err != nil {
		return reply{}, err
	}
	last, ok := lastMatching(ret, req.expect)
	if !ok {
		return reply{}, &DeviceError{Code: ErrorCodeNoResponse}
	}
	raw := last.Function()
	if last.Args() != "" {
		raw += argumentSeparator + last.Args()
	}
	return reply{value: strings.TrimSpace(last.Args()), raw: raw}, nil
}
