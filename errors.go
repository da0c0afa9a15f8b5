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
	"fmt"
	"time"

	"github.com/Gurux/gxcommon-go"
)

var (
	// ErrInvalidFormat is returned when a command or a connection string is
	// malformed.
	ErrInvalidFormat = fmt.Errorf("invalid format: %w", gxcommon.ErrInvalidArgument)

	// ErrTimeout matches every *TimeoutError.
	ErrTimeout = errors.New("timeout")

	// ErrNotSupported is returned when the operation is not available with
	// the used transport or device.
	ErrNotSupported = errors.New("operation not supported")

	// ErrNotOpen is returned by a channel that is used before it is opened.
	ErrNotOpen = errors.New("serial port is not open")
)

// TimeoutError is returned when the expected data is not received in time.
type TimeoutError struct {
	// Operation names the receive that timed out.
	Operation string
	// Timeout is the requested wait time.
	Timeout time.Duration
	// Elapsed is the time that was waited.
	Elapsed time.Duration
	// Received is the amount of bytes received before the timeout.
	Received int
}

func (e *TimeoutError) Error() string {
	if e.Received != 0 {
		return fmt.Sprintf("%s timed out after %d ms (%d ms): %d bytes received",
			e.Operation, e.Elapsed.Milliseconds(), e.Timeout.Milliseconds(), e.Received)
	}
	return fmt.Sprintf("%s timed out after %d ms (%d ms)",
		e.Operation, e.Elapsed.Milliseconds(), e.Timeout.Milliseconds())
}

// Is reports ErrTimeout as a match.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// DeviceErrorCode classifies device errors.
type DeviceErrorCode int

const (
	// ErrorCodeExecuteCommand wraps a transport failure while executing a command.
	ErrorCodeExecuteCommand DeviceErrorCode = iota
	// ErrorCodeCommunicationClosed means the transport is not open.
	ErrorCodeCommunicationClosed
	// ErrorCodeNoResponse means the device did not reply.
	ErrorCodeNoResponse
	// ErrorCodeNotOK means the device did not acknowledge the command.
	ErrorCodeNotOK
	// ErrorCodeDecode means the reply could not be decoded.
	ErrorCodeDecode
	// ErrorCodeConnection means the connection string is invalid.
	ErrorCodeConnection
)

// String implements fmt.Stringer.
func (c DeviceErrorCode) String() string {
	switch c {
	case ErrorCodeExecuteCommand:
		return "ExecuteCommand"
	case ErrorCodeCommunicationClosed:
		return "CommunicationClosed"
	case ErrorCodeNoResponse:
		return "NoResponse"
	case ErrorCodeNotOK:
		return "NotOK"
	case ErrorCodeDecode:
		return "Decode"
	case ErrorCodeConnection:
		return "Connection"
	}
	return fmt.Sprintf("DeviceErrorCode(%d)", int(c))
}

// DeviceError is returned by GXXwsDevice when a command fails.
type DeviceError struct {
	Code DeviceErrorCode
	// Message is the localized description.
	Message string
	// Response is the raw device reply, if any.
	Response string
	// Err is the original error.
	Err error
}

func (e *DeviceError) Error() string {
	switch {
	case e.Err != nil && e.Message == "":
		return e.Err.Error()
	case e.Err != nil:
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

// IsDeviceError returns true if err is a *DeviceError with the given code.
func IsDeviceError(err error, code DeviceErrorCode) bool {
	var de *DeviceError
	return errors.As(err, &de) && de.Code == code
}
