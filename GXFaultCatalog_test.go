package gxxws

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultFaultCatalog(t *testing.T) {
	faults := DefaultFaultCatalog.Faults()
	require.Len(t, faults, 21)
	assert.Equal(t, Fault{Bit: 0, Name: "TEC overcurrent channel #1"}, faults[0])
	assert.Equal(t, Fault{Bit: 19, Name: "unknown error"}, faults[19])
	assert.Equal(t, Fault{Bit: 23, Name: "offline"}, faults[20])

	assert.Equal(t, []string{"TEC overcurrent channel #1"}, DefaultFaultCatalog.Decode(0x01))
	assert.Equal(t, []string{NoFaults}, DefaultFaultCatalog.Decode(0))
	assert.Equal(t, []string{"firmware error", "offline"}, DefaultFaultCatalog.Decode(1<<17|1<<23))
	assert.Equal(t, []string{"HDC fail (maybe head interface cable\u2019s not attached)"}, DefaultFaultCatalog.Decode(1<<8))
	// Bits 20..22 are not defined.
	assert.Empty(t, DefaultFaultCatalog.Decode(1<<20))
}

func TestFaultCodeCatalog(t *testing.T) {
	assert.Equal(t, []string{"TEC_CH2_OC", "PLASMA_DOWN", "UNK_ERROR"}, FaultCodeCatalog.Decode(1<<1|1<<13|1<<19))
	assert.Equal(t, []string{"OFFLINE"}, FaultCodeCatalog.Decode(0x800000))
}

func TestLoadFaultCatalog(t *testing.T) {
	doc := `
faults:
  - bit: 2
    name: lamp fail
  - bit: 0
    name: overheat
`
	c, err := LoadFaultCatalog(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, []Fault{{Bit: 0, Name: "overheat"}, {Bit: 2, Name: "lamp fail"}}, c.Faults())
	assert.Equal(t, []string{"overheat", "lamp fail"}, c.Decode(0x05))
}

func TestLoadFaultCatalogInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"duplicate bit", "faults:\n  - {bit: 1, name: a}\n  - {bit: 1, name: b}\n"},
		{"bit out of range", "faults:\n  - {bit: 32, name: a}\n"},
		{"no name", "faults:\n  - {bit: 3}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFaultCatalog(strings.NewReader(tt.doc))
			assert.ErrorIs(t, err, ErrInvalidFormat)
		})
	}

	_, err := LoadFaultCatalog(strings.NewReader("faults: [\n"))
	assert.Error(t, err)
}

func TestFaultCatalogMarshalYAML(t *testing.T) {
	data, err := yaml.Marshal(FaultCodeCatalog)
	require.NoError(t, err)
	c, err := LoadFaultCatalog(strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.Equal(t, FaultCodeCatalog.Faults(), c.Faults())
}

func TestDeviceFaultCatalog(t *testing.T) {
	d := NewPollingDevice(ModelXWS65, &mockLineTransport{})
	assert.Same(t, DefaultFaultCatalog, d.FaultCatalog())
	custom, err := NewGXFaultCatalog(Fault{Bit: 0, Name: "custom"})
	require.NoError(t, err)
	d.SetFaultCatalog(custom)
	assert.Same(t, custom, d.FaultCatalog())
	d.SetFaultCatalog(nil)
	assert.Same(t, DefaultFaultCatalog, d.FaultCatalog())
	assert.Same(t, FaultCodeCatalog, NewPollingDevice(ModelXWS30, &mockLineTransport{}).FaultCatalog())
}
