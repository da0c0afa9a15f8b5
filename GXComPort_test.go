package gxxws

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Gurux/gxcommon-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOpenComPort(t *testing.T) (*GXComPort, *fakeChannel) {
	t.Helper()
	ch := &fakeChannel{}
	c := NewGXComPort("xws", ch, NewGXSerialSettings("COM1"))
	require.NoError(t, c.Open())
	t.Cleanup(func() { _ = c.Close() })
	return c, ch
}

func TestComPortOpenClose(t *testing.T) {
	ch := &fakeChannel{}
	c := NewGXComPort("xws", ch, NewGXSerialSettings("COM1"))
	var states []gxcommon.MediaState
	c.SetOnMediaStateChange(func(sender string, e gxcommon.MediaStateEventArgs) {
		assert.Equal(t, "xws", sender)
		states = append(states, e.State())
	})
	assert.Equal(t, gxcommon.MediaStateClosed, c.State())
	assert.Empty(t, c.Session())

	require.NoError(t, c.Open())
	assert.True(t, c.IsOpen())
	assert.Equal(t, "COM1", ch.settings.Port)
	assert.Equal(t, 1, ch.discards)
	assert.NotEmpty(t, c.Session())
	assert.False(t, c.Configure(NewGXSerialSettings("COM2")))

	// Open is idempotent.
	require.NoError(t, c.Open())
	assert.Equal(t, 1, ch.opened)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.False(t, c.IsOpen())
	assert.Equal(t, 1, ch.closed)
	assert.True(t, c.Configure(NewGXSerialSettings("COM2")))
	assert.Equal(t, "COM2", c.Address())

	assert.Equal(t, []gxcommon.MediaState{
		gxcommon.MediaStateOpening,
		gxcommon.MediaStateOpen,
		gxcommon.MediaStateClosing,
		gxcommon.MediaStateClosed,
	}, states)
}

func TestComPortOpenFails(t *testing.T) {
	openErr := errors.New("access denied")
	ch := &fakeChannel{openErr: openErr}
	c := NewGXComPort("xws", ch, NewGXSerialSettings("COM1"))
	var reported error
	c.SetOnError(func(sender string, err error) { reported = err })
	err := c.Open()
	assert.Same(t, openErr, err)
	assert.Same(t, openErr, reported)
	assert.False(t, c.IsOpen())
	assert.Equal(t, gxcommon.MediaStateClosed, c.State())
}

func TestComPortSend(t *testing.T) {
	c, ch := newOpenComPort(t)
	var sent []GXCommand
	remove := c.OnCommandSent(func(sender *GXComPort, cmd GXCommand) {
		assert.Same(t, c, sender)
		sent = append(sent, cmd)
	})
	require.NoError(t, c.Send(mustCommand("STATUS", "")))
	assert.Equal(t, "STATUS\r\n", ch.sent())
	assert.Equal(t, []GXCommand{mustCommand("STATUS", "")}, sent)

	remove()
	remove()
	require.NoError(t, c.Send(mustCommand("ERROR", "")))
	assert.Len(t, sent, 1)
}

func TestComPortSendFails(t *testing.T) {
	c, ch := newOpenComPort(t)
	writeErr := errors.New("write failed")
	ch.writeErr = writeErr
	called := false
	c.OnCommandSent(func(*GXComPort, GXCommand) { called = true })
	assert.Same(t, writeErr, c.Send(mustCommand("STATUS", "")))
	assert.False(t, called)
}

func TestComPortSplitsLines(t *testing.T) {
	c, ch := newOpenComPort(t)
	var received []GXCommand
	c.OnCommandReceived(func(_ *GXComPort, cmd GXCommand) {
		received = append(received, cmd)
	})

	ch.deliver("STAT")
	assert.Empty(t, received)
	ch.deliver("US=1\r\n\r\n  ERROR=0  \r\nUPTI")
	ch.deliver("ME=999 hours 12 minutes\r\n")

	assert.Equal(t, []GXCommand{
		mustCommand("STATUS", "1"),
		mustCommand("ERROR", "0"),
		mustCommand("UPTIME", "999 hours 12 minutes"),
	}, received)
	assert.Equal(t, 3, c.Pending())
}

func TestComPortDropsInvalidLines(t *testing.T) {
	c, ch := newOpenComPort(t)
	level, err := gxcommon.TraceLevelParse("Verbose")
	require.NoError(t, err)
	c.SetTrace(level)
	var traces []string
	c.SetOnTrace(func(_ string, e gxcommon.TraceEventArgs) {
		traces = append(traces, e.String())
	})
	ch.deliver("=1\r\nA=1=2\r\nSTATUS=2\r\n")
	// Two invalid lines and one received command.
	assert.Len(t, traces, 3)
	assert.Equal(t, 1, c.Pending())
	cmd, ok := c.Receive(0)
	require.True(t, ok)
	assert.Equal(t, mustCommand("STATUS", "2"), cmd)
}

func TestComPortReceive(t *testing.T) {
	c, ch := newOpenComPort(t)
	_, ok := c.Receive(10 * time.Millisecond)
	assert.False(t, ok)

	go func() {
		time.Sleep(10 * time.Millisecond)
		ch.deliver("STATUS=0\r\n")
	}()
	cmd, ok := c.Receive(time.Second)
	require.True(t, ok)
	assert.Equal(t, mustCommand("STATUS", "0"), cmd)
}

func TestComPortReceiveMatching(t *testing.T) {
	c, ch := newOpenComPort(t)
	ch.deliver("ERROR=0\r\nHEAD_TEMP=31.5\r\n")
	go func() {
		time.Sleep(10 * time.Millisecond)
		ch.deliver("STATUS=3\r\nSTATUS=4\r\n")
	}()
	pattern, err := PartialCommand("STATUS")
	require.NoError(t, err)
	ret, err := c.ReceiveMatching(pattern, time.Second)
	require.NoError(t, err)
	assert.Equal(t, []GXCommand{
		mustCommand("ERROR", "0"),
		mustCommand("HEAD_TEMP", "31.5"),
		mustCommand("STATUS", "3"),
	}, ret)
	assert.Equal(t, 1, c.Pending())
}

func TestComPortReceiveMatchingTimeout(t *testing.T) {
	c, ch := newOpenComPort(t)
	ch.deliver("ERROR=0\r\n")
	ret, err := c.ReceiveMatching(mustCommand("TURN_ON", "OK"), 20*time.Millisecond)
	assert.Nil(t, ret)
	require.ErrorIs(t, err, ErrTimeout)
	var te *TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "WaitForCommand(TURN_ON, 20ms)", te.Operation)
	assert.Equal(t, 20*time.Millisecond, te.Timeout)
	assert.GreaterOrEqual(t, te.Elapsed, 20*time.Millisecond)
	assert.Equal(t, 1, c.Pending())
}

func TestComPortQueueIsBounded(t *testing.T) {
	c, ch := newOpenComPort(t)
	for i := 0; i < DefaultQueueCapacity+1; i++ {
		ch.deliver("STATUS=0\r\n")
	}
	assert.Equal(t, DefaultQueueCapacity, c.Pending())
}

func TestComPortFlush(t *testing.T) {
	c, ch := newOpenComPort(t)
	ch.deliver("STATUS=0\r\n")
	require.NoError(t, c.Flush())
	assert.Zero(t, c.Pending())
	assert.Equal(t, 2, ch.discards)
}

func TestComPortCloseStopsReceiving(t *testing.T) {
	c, ch := newOpenComPort(t)
	require.NoError(t, c.Close())
	ch.deliver("STATUS=0\r\n")
	assert.Zero(t, c.Pending())
}

func TestComPortConcurrentSubscribers(t *testing.T) {
	c, ch := newOpenComPort(t)
	var mu sync.Mutex
	count := 0
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			remove := c.OnCommandReceived(func(*GXComPort, GXCommand) {
				mu.Lock()
				count++
				mu.Unlock()
			})
			remove()
		}()
	}
	wg.Wait()
	ch.deliver("STATUS=0\r\n")
	mu.Lock()
	assert.Zero(t, count)
	mu.Unlock()
	assert.Equal(t, 1, c.Pending())
}
