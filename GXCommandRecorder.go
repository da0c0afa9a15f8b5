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
	"io"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Direction tells whether a captured command was sent or received.
type Direction uint8

const (
	// DirectionSent is a command written to the device.
	DirectionSent Direction = iota + 1
	// DirectionReceived is a command read from the device.
	DirectionReceived
)

// String implements fmt.Stringer.
func (d Direction) String() string {
	switch d {
	case DirectionSent:
		return "TX"
	case DirectionReceived:
		return "RX"
	}
	return fmt.Sprintf("Direction(%d)", uint8(d))
}

// CaptureRecord is one captured command.
type CaptureRecord struct {
	Time      time.Time `cbor:"1,keyasint"`
	Session   string    `cbor:"2,keyasint,omitempty"`
	Direction Direction `cbor:"3,keyasint"`
	Function  string    `cbor:"4,keyasint"`
	Args      string    `cbor:"5,keyasint,omitempty"`
}

// Command returns the captured command.
func (r CaptureRecord) Command() (GXCommand, error) {
	return NewGXCommand(r.Function, r.Args)
}

var (
	captureEncMode cbor.EncMode
	captureDecMode cbor.DecMode
)

func init() {
	var err error
	encOpts := cbor.EncOptions{
		Sort:        cbor.SortCanonical,
		IndefLength: cbor.IndefLengthForbidden,
		Time:        cbor.TimeRFC3339Nano,
	}
	if captureEncMode, err = encOpts.EncMode(); err != nil {
		panic(fmt.Sprintf("failed to create capture CBOR encoder mode: %v", err))
	}
	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyQuiet,
		IndefLength: cbor.IndefLengthAllowed,
	}
	if captureDecMode, err = decOpts.DecMode(); err != nil {
		panic(fmt.Sprintf("failed to create capture CBOR decoder mode: %v", err))
	}
}

// GXCommandRecorder writes the commands that a GXComPort sends and receives
// to w as a stream of CBOR records. It is safe for concurrent use.
type GXCommandRecorder struct {
	mu      sync.Mutex
	encoder *cbor.Encoder
	err     error
	now     func() time.Time
	detach  []func()
}

// NewGXCommandRecorder creates a recorder that writes to w.
func NewGXCommandRecorder(w io.Writer) *GXCommandRecorder {
	return &GXCommandRecorder{encoder: captureEncMode.NewEncoder(w), now: time.Now}
}

// Attach starts capturing the commands of the port.
func (r *GXCommandRecorder) Attach(port *GXComPort) {
	sent := port.OnCommandSent(func(sender *GXComPort, cmd GXCommand) {
		r.Record(sender.Session(), DirectionSent, cmd)
	})
	received := port.OnCommandReceived(func(sender *GXComPort, cmd GXCommand) {
		r.Record(sender.Session(), DirectionReceived, cmd)
	})
	r.mu.Lock()
	r.detach = append(r.detach, sent, received)
	r.mu.Unlock()
}

// Record writes one record. The first write error stops the recording and is
// returned by Err.
func (r *GXCommandRecorder) Record(session string, direction Direction, cmd GXCommand) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return
	}
	r.err = r.encoder.Encode(CaptureRecord{
		Time:      r.now(),
		Session:   session,
		Direction: direction,
		Function:  cmd.Function(),
		Args:      cmd.Args(),
	})
}

// Err returns the first write error.
func (r *GXCommandRecorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Detach stops capturing from every attached port.
func (r *GXCommandRecorder) Detach() {
	r.mu.Lock()
	detach := r.detach
	r.detach = nil
	r.mu.Unlock()
	for _, it := range detach {
		it()
	}
}

// ReadCapture reads all records from r.
func ReadCapture(r io.Reader) ([]CaptureRecord, error) {
	decoder := captureDecMode.NewDecoder(r)
	var ret []CaptureRecord
	for {
		var record CaptureRecord
		if err := decoder.Decode(&record); err != nil {
			if errors.Is(err, io.EOF) {
				return ret, nil
			}
			return ret, err
		}
		ret = append(ret, record)
	}
}
