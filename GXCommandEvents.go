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
)

// CommandHandler is called when a command is received or sent.
type CommandHandler func(sender *GXComPort, cmd GXCommand)

type subscription struct {
	id      uint64
	handler CommandHandler
}

// commandEvent is a list of command handlers. Handlers are called
// synchronously in the order they were added. The list has its own lock and
// handlers are called without holding it.
type commandEvent struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers []subscription
}

// add adds a handler and returns a function that removes it.
func (e *commandEvent) add(handler CommandHandler) func() {
	e.mu.Lock()
	e.nextID++
	id := e.nextID
	e.handlers = append(e.handlers, subscription{id: id, handler: handler})
	e.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() { e.remove(id) })
	}
}

func (e *commandEvent) remove(id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, it := range e.handlers {
		if it.id == id {
			e.handlers = append(e.handlers[:i:i], e.handlers[i+1:]...)
			return
		}
	}
}

func (e *commandEvent) raise(sender *GXComPort, cmd GXCommand) {
	e.mu.RLock()
	handlers := e.handlers
	e.mu.RUnlock()
	for _, it := range handlers {
		it.handler(sender, cmd)
	}
}
