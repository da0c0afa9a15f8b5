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
	"io"
	"slices"

	"gopkg.in/yaml.v3"
)

// NoFaults is the only entry returned when the fault word is zero.
const NoFaults = "NONE"

// offlineBit is set in the fault word when the module is offline.
const offlineBit = 23

// Fault is one bit of the fault word.
type Fault struct {
	Bit  uint   `yaml:"bit"`
	Name string `yaml:"name"`
}

// GXFaultCatalog maps the bits of the fault word to fault names.
type GXFaultCatalog struct {
	faults []Fault
}

// NewGXFaultCatalog creates a catalog. Faults are ordered by bit.
func NewGXFaultCatalog(faults ...Fault) (*GXFaultCatalog, error) {
	ret := slices.Clone(faults)
	slices.SortFunc(ret, func(a, b Fault) int {
		return int(a.Bit) - int(b.Bit)
	})
	for i, it := range ret {
		if it.Bit > 31 {
			return nil, fmt.Errorf("%w: fault bit %d is out of range", ErrInvalidFormat, it.Bit)
		}
		if it.Name == "" {
			return nil, fmt.Errorf("%w: fault bit %d has no name", ErrInvalidFormat, it.Bit)
		}
		if i != 0 && ret[i-1].Bit == it.Bit {
			return nil, fmt.Errorf("%w: fault bit %d is defined twice", ErrInvalidFormat, it.Bit)
		}
	}
	return &GXFaultCatalog{faults: ret}, nil
}

func mustFaultCatalog(names ...string) *GXFaultCatalog {
	faults := make([]Fault, 0, len(names))
	for i, it := range names[:len(names)-1] {
		faults = append(faults, Fault{Bit: uint(i), Name: it})
	}
	faults = append(faults, Fault{Bit: offlineBit, Name: names[len(names)-1]})
	ret, err := NewGXFaultCatalog(faults...)
	if err != nil {
		panic(err)
	}
	return ret
}

// DefaultFaultCatalog describes the faults in text. The last entry is the
// offline bit.
var DefaultFaultCatalog = mustFaultCatalog(
	"TEC overcurrent channel #1",
	"TEC overcurrent channel #2",
	"Abnormal system voltage",
	"TEC temperature sensor shorted",
	"TEC temperature sensor open",
	"TEC FAN1 fail",
	"TEC FAN2 fail",
	"LASER fail (setpoint not reached)",
	"HDC fail (maybe head interface cable’s not attached)",
	"TEC link fail",
	"LASER link fail",
	"HDC link fail",
	"Plasma start fail (photodiode feedback)",
	"Plasma down (while in active mode)",
	"LASER overheat (> 35 *C)",
	"Optical head overheat (> 80 *C)",
	"LASER start fail (photodiode feedback)",
	"firmware error",
	"hardware error",
	"unknown error",
	"offline",
)

// FaultCodeCatalog names the faults with fault codes.
var FaultCodeCatalog = mustFaultCatalog(
	"TEC_CH1_OC",
	"TEC_CH2_OC",
	"ABNOR_SYS_VOL",
	"TEC_TEMP_SHORTED",
	"TEC_TEMP_OPEN",
	"TEC_FAN1_FAIL",
	"TEC_FAN2_FAIL",
	"LASER_FAIL",
	"HDC_FAIL",
	"TEC_LINK_FAIL",
	"LASER_LINK_FAIL",
	"HDC_LINK_FAIL",
	"PLASMA_START_FAIL",
	"PLASMA_DOWN",
	"LASER_OVERHEAT",
	"OPTICAL_HEAD_OVERHEAT",
	"LASER_START_FAIL",
	"FW_ERROR",
	"HW_ERROR",
	"UNK_ERROR",
	"OFFLINE",
)

// LoadFaultCatalog reads a catalog in YAML:
//
//	faults:
//	  - bit: 0
//	    name: TEC overcurrent channel #1
func LoadFaultCatalog(r io.Reader) (*GXFaultCatalog, error) {
	var doc struct {
		Faults []Fault `yaml:"faults"`
	}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to read fault catalog: %w", err)
	}
	return NewGXFaultCatalog(doc.Faults...)
}

// Faults returns the faults ordered by bit.
func (c *GXFaultCatalog) Faults() []Fault {
	return slices.Clone(c.faults)
}

// Decode returns the names of the bits that are set in the word, lowest bit
// first. Bits that are not in the catalog are ignored. NoFaults is returned
// for zero.
func (c *GXFaultCatalog) Decode(word uint32) []string {
	if word == 0 {
		return []string{NoFaults}
	}
	var ret []string
	for _, it := range c.faults {
		if word&(1<<it.Bit) != 0 {
			ret = append(ret, it.Name)
		}
	}
	return ret
}

// MarshalYAML writes the catalog in the format LoadFaultCatalog reads.
func (c *GXFaultCatalog) MarshalYAML() (any, error) {
	return struct {
		Faults []Fault `yaml:"faults"`
	}{Faults: c.faults}, nil
}
