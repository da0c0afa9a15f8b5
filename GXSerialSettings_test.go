package gxxws

import (
	"testing"

	"github.com/Gurux/gxcommon-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGXSerialSettings(t *testing.T) {
	s := NewGXSerialSettings("/dev/ttyUSB0")
	assert.Equal(t, "/dev/ttyUSB0", s.Port)
	assert.Equal(t, DefaultBaudRate, s.BaudRate)
	assert.Equal(t, DefaultDataBits, s.DataBits)
	assert.Equal(t, gxcommon.StopBitsOne, s.StopBits)
	assert.Equal(t, gxcommon.ParityNone, s.Parity)
	require.NoError(t, s.Validate())
}

func TestParseConnectionStringFields(t *testing.T) {
	s, err := ParseConnectionString(" COM3 , 9600 , 7 , Two , Even ")
	require.NoError(t, err)
	assert.Equal(t, "COM3", s.Port)
	assert.Equal(t, gxcommon.BaudRate(9600), s.BaudRate)
	assert.Equal(t, 7, s.DataBits)
	assert.Equal(t, gxcommon.StopBitsTwo, s.StopBits)
	assert.Equal(t, gxcommon.ParityEven, s.Parity)
}

func TestParseConnectionStringInvalid(t *testing.T) {
	tests := []string{
		"",
		"a,b,c",
		"COM1,115200,8,1,None,extra",
		",115200,8,1,None",
		"COM1,fast,8,1,None",
		"COM1,115200,eight,1,None",
		"COM1,115200,8,3,None",
		"COM1,115200,8,1,Sometimes",
	}
	for _, tt := range tests {
		t.Run(tt, func(t *testing.T) {
			_, err := ParseConnectionString(tt)
			assert.ErrorIs(t, err, ErrInvalidFormat)
		})
	}
}

func TestConnectionStringRoundTrip(t *testing.T) {
	s := NewGXSerialSettings("COM1")
	s.StopBits = gxcommon.StopBitsTwo
	ret, err := ParseConnectionString(s.ConnectionString())
	require.NoError(t, err)
	assert.Equal(t, s, ret)
}

func TestSettingsValidate(t *testing.T) {
	s := NewGXSerialSettings("")
	assert.EqualError(t, s.Validate(), "no serial port selected")
	s.Port = "COM1"
	s.DataBits = 9
	assert.Error(t, s.Validate())
	s.DataBits = 8
	s.BaudRate = 0
	assert.Error(t, s.Validate())
}

func TestSettingsXML(t *testing.T) {
	s := NewGXSerialSettings("COM<1>")
	s.Parity = gxcommon.ParityOdd
	s.StopBits = gxcommon.StopBitsTwo
	xml := s.GetSettings()
	assert.Contains(t, xml, "<Port>COM&lt;1&gt;</Port>")
	assert.Contains(t, xml, "<Bps>115200</Bps>")
	assert.Contains(t, xml, "<StopBits>2</StopBits>")

	var ret GXSerialSettings
	require.NoError(t, ret.SetSettings(xml))
	assert.Equal(t, s, ret)

	// Missing elements keep their value.
	ret = NewGXSerialSettings("COM1")
	require.NoError(t, ret.SetSettings("<Port>COM2</Port>"))
	assert.Equal(t, "COM2", ret.Port)
	assert.Equal(t, DefaultBaudRate, ret.BaudRate)
	require.NoError(t, ret.SetSettings(" "))
	assert.Error(t, ret.SetSettings("<ByteSize>x</ByteSize>"))
}
