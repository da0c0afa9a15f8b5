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
	"sync"

	"github.com/Gurux/gxcommon-go"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// TraceEventHandler is called when a transport sends or receives data or
// reports what it is doing. Sender is the name of the transport.
type TraceEventHandler func(sender string, e gxcommon.TraceEventArgs)

// MediaStateHandler is called when the state of a transport changes.
type MediaStateHandler func(sender string, e gxcommon.MediaStateEventArgs)

// ErrorEventHandler is called when a transport fails outside of a call,
// for example in the reader goroutine.
type ErrorEventHandler func(sender string, err error)

// tracer holds the trace settings and the event handlers of a transport.
type tracer struct {
	name string

	mu sync.RWMutex
	// The trace level specifies which types of trace messages are emitted.
	traceLevel gxcommon.TraceLevel
	onTrace    TraceEventHandler
	onState    MediaStateHandler
	onErr      ErrorEventHandler
	// Printer for localized messages.
	p *message.Printer
}

func newTracer(name string) tracer {
	return tracer{name: name, p: newPrinter(defaultLanguage)}
}

// GetTrace returns the used trace level.
func (t *tracer) GetTrace() gxcommon.TraceLevel {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.traceLevel
}

// SetTrace sets the used trace level.
func (t *tracer) SetTrace(traceLevel gxcommon.TraceLevel) {
	t.mu.Lock()
	t.traceLevel = traceLevel
	t.mu.Unlock()
}

// SetOnTrace sets the trace handler.
func (t *tracer) SetOnTrace(value TraceEventHandler) {
	t.mu.Lock()
	t.onTrace = value
	t.mu.Unlock()
}

// SetOnMediaStateChange sets the state change handler.
func (t *tracer) SetOnMediaStateChange(value MediaStateHandler) {
	t.mu.Lock()
	t.onState = value
	t.mu.Unlock()
}

// SetOnError sets the error handler.
func (t *tracer) SetOnError(value ErrorEventHandler) {
	t.mu.Lock()
	t.onErr = value
	t.mu.Unlock()
}

// Localize messages for the specified language.
// No errors is returned if language is not supported.
func (t *tracer) Localize(tag language.Tag) {
	t.mu.Lock()
	t.p = newPrinter(tag)
	t.mu.Unlock()
}

func (t *tracer) printer() *message.Printer {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.p
}

func (t *tracer) tracef(traceType gxcommon.TraceTypes, fmtStr string, a ...any) {
	t.mu.RLock()
	trace := !(int(t.traceLevel) < int(traceType))
	cb := t.onTrace
	t.mu.RUnlock()
	if cb != nil && trace {
		cb(t.name, *gxcommon.NewTraceEventArgs(traceType, fmt.Sprintf(fmtStr, a...), ""))
	}
}

// tracem traces a localized message.
func (t *tracer) tracem(traceType gxcommon.TraceTypes, key string, a ...any) {
	t.mu.RLock()
	trace := !(int(t.traceLevel) < int(traceType))
	cb := t.onTrace
	p := t.p
	t.mu.RUnlock()
	if cb != nil && trace {
		cb(t.name, *gxcommon.NewTraceEventArgs(traceType, p.Sprintf(key, a...), ""))
	}
}

func (t *tracer) statef(state gxcommon.MediaState) {
	t.mu.RLock()
	cb := t.onState
	t.mu.RUnlock()
	if cb != nil {
		cb(t.name, *gxcommon.NewMediaStateEventArgs(state))
	}
}

func (t *tracer) errorf(err error) {
	t.mu.RLock()
	cb := t.onErr
	t.mu.RUnlock()
	if cb != nil {
		cb(t.name, err)
	}
}
