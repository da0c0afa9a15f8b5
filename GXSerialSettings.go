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
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Gurux/gxcommon-go"
)

const (
	// DefaultBaudRate is the baud rate of the XWS light sources.
	DefaultBaudRate gxcommon.BaudRate = 115200
	// DefaultDataBits is the default amount of data bits.
	DefaultDataBits = 8
)

// GXSerialSettings holds the serial port settings.
type GXSerialSettings struct {
	Port     string
	BaudRate gxcommon.BaudRate
	DataBits int
	StopBits gxcommon.StopBits
	Parity   gxcommon.Parity
}

// NewGXSerialSettings returns the default settings of the light source for
// the given port.
func NewGXSerialSettings(port string) GXSerialSettings {
	return GXSerialSettings{
		Port:     port,
		BaudRate: DefaultBaudRate,
		DataBits: DefaultDataBits,
		StopBits: gxcommon.StopBitsOne,
		Parity:   gxcommon.ParityNone,
	}
}

// ParseConnectionString parses settings from
// "portName,baudRate,dataBits,stopBits,parity".
//
// Stop bits are given as 1, 2, One or Two and parity as None, Odd, Even,
// Mark or Space.
func ParseConnectionString(value string) (GXSerialSettings, error) {
	elems := strings.Split(value, ",")
	if len(elems) != 5 {
		return GXSerialSettings{}, fmt.Errorf("%w: connection string %q has %d fields, want 5", ErrInvalidFormat, value, len(elems))
	}
	for i := range elems {
		elems[i] = strings.TrimSpace(elems[i])
	}
	var s GXSerialSettings
	s.Port = elems[0]
	if s.Port == "" {
		return GXSerialSettings{}, fmt.Errorf("%w: connection string %q has no port name", ErrInvalidFormat, value)
	}
	baudRate, err := strconv.Atoi(elems[1])
	if err != nil {
		return GXSerialSettings{}, fmt.Errorf("%w: invalid baud rate %q", ErrInvalidFormat, elems[1])
	}
	s.BaudRate = gxcommon.BaudRate(baudRate)
	s.DataBits, err = strconv.Atoi(elems[2])
	if err != nil {
		return GXSerialSettings{}, fmt.Errorf("%w: invalid data bits %q", ErrInvalidFormat, elems[2])
	}
	s.StopBits, err = parseStopBits(elems[3])
	if err != nil {
		return GXSerialSettings{}, err
	}
	s.Parity, err = gxcommon.ParityParse(elems[4])
	if err != nil {
		return GXSerialSettings{}, fmt.Errorf("%w: invalid parity %q: %v", ErrInvalidFormat, elems[4], err)
	}
	return s, nil
}

func parseStopBits(value string) (gxcommon.StopBits, error) {
	switch strings.ToLower(value) {
	case "1", "one":
		return gxcommon.StopBitsOne, nil
	case "2", "two":
		return gxcommon.StopBitsTwo, nil
	}
	return gxcommon.StopBitsOne, fmt.Errorf("%w: invalid stop bits %q", ErrInvalidFormat, value)
}

func stopBitsText(value gxcommon.StopBits) string {
	if value == gxcommon.StopBitsTwo {
		return "2"
	}
	return "1"
}

// ConnectionString returns the settings in the connection string format.
func (s GXSerialSettings) ConnectionString() string {
	return fmt.Sprintf("%s,%d,%d,%s,%s", s.Port, s.BaudRate, s.DataBits, stopBitsText(s.StopBits), s.Parity)
}

// String implements fmt.Stringer.
func (s GXSerialSettings) String() string {
	return fmt.Sprintf("%s %s %d %s %s", s.Port, s.BaudRate, s.DataBits, s.StopBits, s.Parity)
}

// Validate checks that the settings can be used to open a port.
func (s GXSerialSettings) Validate() error {
	if s.Port == "" {
		return errors.New(newPrinter(defaultLanguage).Sprintf("msg.no_serial_port_selected"))
	}
	if s.DataBits < 5 || s.DataBits > 8 {
		return fmt.Errorf("invalid databits %d (must be 5..8)", s.DataBits)
	}
	if s.BaudRate <= 0 {
		return fmt.Errorf("invalid baud rate %d", s.BaudRate)
	}
	return nil
}

func xmlEscape(s string) string {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return s
	}
	return buf.String()
}

// GetSettings returns the settings as XML elements.
func (s GXSerialSettings) GetSettings() string {
	var b strings.Builder
	if s.Port != "" {
		fmt.Fprintf(&b, "<Port>%s</Port>\n", xmlEscape(s.Port))
	}
	if s.BaudRate != 0 {
		fmt.Fprintf(&b, "<Bps>%d</Bps>\n", s.BaudRate)
	}
	if s.DataBits != 0 {
		fmt.Fprintf(&b, "<ByteSize>%d</ByteSize>\n", s.DataBits)
	}
	fmt.Fprintf(&b, "<StopBits>%s</StopBits>\n", stopBitsText(s.StopBits))
	if s.Parity != gxcommon.ParityNone {
		fmt.Fprintf(&b, "<Parity>%s</Parity>\n", s.Parity)
	}
	return b.String()
}

// SetSettings reads the settings from XML elements written by GetSettings.
// Missing elements keep their current value.
func (s *GXSerialSettings) SetSettings(value string) error {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	dec := xml.NewDecoder(strings.NewReader("<root>" + value + "</root>"))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local == "root" {
			continue
		}
		var v string
		if err := dec.DecodeElement(&v, &se); err != nil {
			return err
		}
		switch se.Name.Local {
		case "Port":
			s.Port = v
		case "Bps":
			s.BaudRate, err = gxcommon.BaudRateParse(v)
			if err != nil {
				return err
			}
		case "ByteSize":
			s.DataBits, err = strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid ByteSize value: %w", err)
			}
		case "StopBits":
			s.StopBits, err = parseStopBits(v)
			if err != nil {
				return err
			}
		case "Parity":
			s.Parity, err = gxcommon.ParityParse(v)
			if err != nil {
				return err
			}
		}
	}
	return nil
}
