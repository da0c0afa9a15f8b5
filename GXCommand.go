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
	"slices"
	"strings"
)

const (
	// Wildcard is an argument value that matches any argument of a command
	// with the same function.
	Wildcard = "???"

	// Terminator ends every line sent to or received from the device.
	Terminator = "\r\n"

	// argumentSeparator separates the function from the arguments.
	argumentSeparator = "="
)

// CommandOptions are modifiers for a GXCommand.
type CommandOptions int

const (
	// CommandOptionsNone means that no modifiers apply.
	CommandOptionsNone CommandOptions = 0
	// CommandOptionsPartial means that the command may be trailed by zero or
	// more arguments that are not specified. Arguments are not compared.
	CommandOptionsPartial CommandOptions = 0x01
)

// GXCommand is one protocol message: a function name and an optional
// argument string.
//
// A command is also used as a pattern when waiting for a response. A pattern
// with the partial option or with Wildcard arguments matches every command
// that has the same function.
type GXCommand struct {
	function string
	args     string
	options  CommandOptions
}

// NewGXCommand creates a command without modifiers.
func NewGXCommand(function string, args string) (GXCommand, error) {
	return NewGXCommandWithOptions(CommandOptionsNone, function, args)
}

// NewGXCommandWithOptions creates a command with the given modifiers.
func NewGXCommandWithOptions(options CommandOptions, function string, args string) (GXCommand, error) {
	if function == "" {
		return GXCommand{}, fmt.Errorf("%w: command function is empty", ErrInvalidFormat)
	}
	if strings.Contains(function, argumentSeparator) {
		return GXCommand{}, fmt.Errorf("%w: command function %q may not contain %s", ErrInvalidFormat, function, argumentSeparator)
	}
	if strings.Contains(args, argumentSeparator) {
		return GXCommand{}, fmt.Errorf("%w: command arguments %q may not contain %s", ErrInvalidFormat, args, argumentSeparator)
	}
	return GXCommand{function: function, args: args, options: options}, nil
}

// PartialCommand returns a pattern that matches every command with the given
// function.
func PartialCommand(function string) (GXCommand, error) {
	return NewGXCommandWithOptions(CommandOptionsPartial, function, "")
}

// ParseCommand parses one received line.
// Text before the first '=' is the function and text after it the arguments.
func ParseCommand(line string) (GXCommand, error) {
	function, args, _ := strings.Cut(line, argumentSeparator)
	return NewGXCommand(function, args)
}

// Function returns the function name.
func (c GXCommand) Function() string {
	return c.function
}

// Args returns the arguments.
func (c GXCommand) Args() string {
	return c.args
}

// Options returns the command modifiers.
func (c GXCommand) Options() CommandOptions {
	return c.options
}

// IsPartial returns true if arguments are ignored when commands are compared.
func (c GXCommand) IsPartial() bool {
	return c.options&CommandOptionsPartial == CommandOptionsPartial
}

// IsWildcard returns true if the arguments are the Wildcard marker.
func (c GXCommand) IsWildcard() bool {
	return c.args == Wildcard
}

// IsZero returns true for the zero value.
func (c GXCommand) IsZero() bool {
	return c.function == ""
}

// String returns the command in the wire format, terminator included.
func (c GXCommand) String() string {
	var b strings.Builder
	b.WriteString(c.function)
	if c.IsWildcard() {
		b.WriteString(argumentSeparator)
		b.WriteString("(*)")
	} else if c.args != "" {
		b.WriteString(argumentSeparator)
		b.WriteString("(")
		b.WriteString(c.args)
		if c.IsPartial() {
			b.WriteString("...")
		}
		b.WriteString(")")
	}
	b.WriteString(Terminator)
	return b.String()
}

// Bytes returns String as ASCII bytes.
func (c GXCommand) Bytes() []byte {
	return []byte(c.String())
}

// Equals compares two commands.
//
// Function is always compared. Arguments are compared only when neither
// command is partial and neither has Wildcard arguments.
func (c GXCommand) Equals(other GXCommand) bool {
	if c.function != other.function {
		return false
	}
	if c.IsPartial() || other.IsPartial() {
		return true
	}
	if c.IsWildcard() || other.IsWildcard() {
		return true
	}
	return c.args == other.args
}

// Compare orders commands by function, then wildcard arguments before
// concrete ones, then by arguments.
func (c GXCommand) Compare(other GXCommand) int {
	if ret := strings.Compare(c.function, other.function); ret != 0 {
		return ret
	}
	if c.IsWildcard() && !other.IsWildcard() {
		return -1
	}
	if !c.IsWildcard() && other.IsWildcard() {
		return 1
	}
	return strings.Compare(c.args, other.args)
}

// SortCommands sorts commands using Compare.
func SortCommands(commands []GXCommand) {
	slices.SortStableFunc(commands, GXCommand.Compare)
}

// lastMatching returns the last command that equals the pattern.
func lastMatching(commands []GXCommand, pattern GXCommand) (GXCommand, bool) {
	for i := len(commands) - 1; i >= 0; i-- {
		if commands[i].Equals(pattern) {
			return commands[i], true
		}
	}
	return GXCommand{}, false
}
