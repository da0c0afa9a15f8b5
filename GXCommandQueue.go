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
)

// DefaultQueueCapacity is the amount of received commands that are kept.
const DefaultQueueCapacity = 50

// commandQueue is a bounded FIFO of received commands. When the queue is
// full the oldest command is dropped.
//
// Waiters take the current wait channel under the lock and block on it
// after releasing the lock. Push closes the channel and replaces it.
type commandQueue struct {
	mu       sync.Mutex
	items    []GXCommand
	capacity int
	wait     chan struct{}
}

func newCommandQueue(capacity int) *commandQueue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &commandQueue{
		items:    make([]GXCommand, 0, capacity),
		capacity: capacity,
		wait:     make(chan struct{}),
	}
}

// Push appends a command and wakes up the waiters. It returns true if the
// oldest command was dropped.
func (q *commandQueue) Push(cmd GXCommand) bool {
	q.mu.Lock()
	evicted := false
	if len(q.items) == q.capacity {
		q.items = append(q.items[:0], q.items[1:]...)
		evicted = true
	}
	q.items = append(q.items, cmd)
	old := q.wait
	q.wait = make(chan struct{})
	q.mu.Unlock()
	close(old)
	return evicted
}

// Len returns the amount of queued commands.
func (q *commandQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Clear removes all queued commands.
func (q *commandQueue) Clear() {
	q.mu.Lock()
	q.items = q.items[:0]
	q.mu.Unlock()
}

// Pop removes the oldest command. If the queue is empty it waits for one
// push at most maxWait.
func (q *commandQueue) Pop(maxWait time.Duration) (GXCommand, bool) {
	q.mu.Lock()
	if len(q.items) == 0 {
		ch := q.wait
		q.mu.Unlock()
		if !waitSignal(ch, maxWait) {
			return GXCommand{}, false
		}
		q.mu.Lock()
	}
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return GXCommand{}, false
	}
	return q.dequeue(), true
}

// PopUntil removes commands up to and including the first command that equals
// the pattern. Nothing is removed if no queued command matches. The queue is
// searched again after every push until the deadline.
func (q *commandQueue) PopUntil(pattern GXCommand, deadline time.Time) ([]GXCommand, bool) {
	for {
		q.mu.Lock()
		if q.contains(pattern) {
			var ret []GXCommand
			for len(q.items) != 0 {
				cmd := q.dequeue()
				ret = append(ret, cmd)
				if cmd.Equals(pattern) {
					break
				}
			}
			q.mu.Unlock()
			return ret, true
		}
		ch := q.wait
		q.mu.Unlock()
		rem := time.Until(deadline)
		if rem <= 0 {
			return nil, false
		}
		waitSignal(ch, rem)
	}
}

func (q *commandQueue) contains(pattern GXCommand) bool {
	for _, it := range q.items {
		if it.Equals(pattern) {
			return true
		}
	}
	return false
}

func (q *commandQueue) dequeue() GXCommand {
	cmd := q.items[0]
	q.items[0] = GXCommand{}
	q.items = q.items[1:]
	return cmd
}

// waitSignal waits until ch is closed or maxWait elapses.
func waitSignal(ch <-chan struct{}, maxWait time.Duration) bool {
	if maxWait <= 0 {
		select {
		case <-ch:
			return true
		default:
			return false
		}
	}
	timer := time.NewTimer(maxWait)
	defer timer.Stop()
	select {
	case <-ch:
		return true
	case <-timer.C:
		return false
	}
}
