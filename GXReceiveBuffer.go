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

// receiveBuffer holds bytes that the reader goroutine has received but that
// nobody has read yet.
type receiveBuffer struct {
	mu  sync.Mutex
	buf []byte
}

func newReceiveBuffer() *receiveBuffer {
	return &receiveBuffer{}
}

// Append adds received bytes to the end of the buffer.
func (b *receiveBuffer) Append(p []byte) {
	if len(p) == 0 {
		return
	}
	b.mu.Lock()
	b.buf = append(b.buf, p...)
	b.mu.Unlock()
}

// Available returns the amount of unread bytes.
func (b *receiveBuffer) Available() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buf)
}

// Read moves at most len(p) bytes from the buffer to p.
func (b *receiveBuffer) Read(p []byte) int {
	b.mu.Lock()
	n := copy(p, b.buf)
	if n == len(b.buf) {
		//Clear buffer
		b.buf = b.buf[:0]
	} else {
		b.buf = append(b.buf[:0], b.buf[n:]...)
	}
	b.mu.Unlock()
	return n
}

// Reset discards all unread bytes.
func (b *receiveBuffer) Reset() {
	b.mu.Lock()
	b.buf = b.buf[:0]
	b.mu.Unlock()
}
