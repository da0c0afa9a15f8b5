package gxxws

import (
	"errors"
	"testing"

	"github.com/Gurux/gxcommon-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGXCommand(t *testing.T) {
	cmd, err := NewGXCommand("STATUS", "1")
	require.NoError(t, err)
	assert.Equal(t, "STATUS", cmd.Function())
	assert.Equal(t, "1", cmd.Args())
	assert.False(t, cmd.IsPartial())
	assert.False(t, cmd.IsWildcard())
	assert.False(t, cmd.IsZero())
	assert.True(t, GXCommand{}.IsZero())
}

func TestNewGXCommandInvalid(t *testing.T) {
	tests := []struct {
		name     string
		function string
		args     string
	}{
		{"empty function", "", "1"},
		{"separator in function", "A=B", ""},
		{"separator in args", "STATUS", "1=2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGXCommand(tt.function, tt.args)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidFormat)
			assert.True(t, errors.Is(err, gxcommon.ErrInvalidArgument))
		})
	}
}

func TestCommandString(t *testing.T) {
	tests := []struct {
		name string
		cmd  GXCommand
		want string
	}{
		{"function", mustCommand("STATUS", ""), "STATUS\r\n"},
		{"args", mustCommand("STATUS", "1"), "STATUS=(1)\r\n"},
		{"wildcard", mustCommand("STATUS", Wildcard), "STATUS=(*)\r\n"},
	}
	partial, err := NewGXCommandWithOptions(CommandOptionsPartial, "UPTIME", "999")
	require.NoError(t, err)
	tests = append(tests, struct {
		name string
		cmd  GXCommand
		want string
	}{"partial", partial, "UPTIME=(999...)\r\n"})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cmd.String())
			assert.Equal(t, []byte(tt.want), tt.cmd.Bytes())
		})
	}
}

func TestParseCommand(t *testing.T) {
	cmd, err := ParseCommand("UPTIME=999 hours 12 minutes")
	require.NoError(t, err)
	assert.Equal(t, "UPTIME", cmd.Function())
	assert.Equal(t, "999 hours 12 minutes", cmd.Args())

	cmd, err = ParseCommand("TURN_ON")
	require.NoError(t, err)
	assert.Equal(t, "TURN_ON", cmd.Function())
	assert.Empty(t, cmd.Args())

	_, err = ParseCommand("=1")
	assert.ErrorIs(t, err, ErrInvalidFormat)
	_, err = ParseCommand("A=1=2")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestCommandEquals(t *testing.T) {
	partial, err := PartialCommand("STATUS")
	require.NoError(t, err)

	assert.True(t, mustCommand("STATUS", "1").Equals(mustCommand("STATUS", "1")))
	assert.False(t, mustCommand("STATUS", "1").Equals(mustCommand("STATUS", "2")))
	assert.False(t, mustCommand("STATUS", "1").Equals(mustCommand("ERROR", "1")))

	// Partial and wildcard ignore the arguments on both sides.
	assert.True(t, partial.Equals(mustCommand("STATUS", "4")))
	assert.True(t, mustCommand("STATUS", "4").Equals(partial))
	assert.True(t, mustCommand("STATUS", Wildcard).Equals(mustCommand("STATUS", "3")))
	assert.True(t, mustCommand("STATUS", "3").Equals(mustCommand("STATUS", Wildcard)))
	assert.False(t, partial.Equals(mustCommand("ERROR", "0")))
	assert.False(t, mustCommand("STATUS", Wildcard).Equals(mustCommand("ERROR", "0")))
}

func TestCommandCompare(t *testing.T) {
	assert.Negative(t, mustCommand("ERROR", "9").Compare(mustCommand("STATUS", "0")))
	assert.Negative(t, mustCommand("STATUS", Wildcard).Compare(mustCommand("STATUS", "0")))
	assert.Positive(t, mustCommand("STATUS", "0").Compare(mustCommand("STATUS", Wildcard)))
	assert.Zero(t, mustCommand("STATUS", Wildcard).Compare(mustCommand("STATUS", Wildcard)))
	assert.Negative(t, mustCommand("STATUS", "1").Compare(mustCommand("STATUS", "2")))
}

func TestSortCommands(t *testing.T) {
	cmds := []GXCommand{
		mustCommand("STATUS", "2"),
		mustCommand("ERROR", "0"),
		mustCommand("STATUS", Wildcard),
		mustCommand("STATUS", "1"),
	}
	SortCommands(cmds)
	assert.Equal(t, []GXCommand{
		mustCommand("ERROR", "0"),
		mustCommand("STATUS", Wildcard),
		mustCommand("STATUS", "1"),
		mustCommand("STATUS", "2"),
	}, cmds)
}

func TestLastMatching(t *testing.T) {
	partial, err := PartialCommand("STATUS")
	require.NoError(t, err)
	cmds := []GXCommand{
		mustCommand("STATUS", "1"),
		mustCommand("ERROR", "0"),
		mustCommand("STATUS", "3"),
		mustCommand("UPTIME", "1 hours 0 minutes"),
	}
	last, ok := lastMatching(cmds, partial)
	require.True(t, ok)
	assert.Equal(t, "3", last.Args())

	_, ok = lastMatching(cmds, mustCommand("TURN_ON", "OK"))
	assert.False(t, ok)
}
