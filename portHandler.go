//go:build !linux && !windows

package gxxws

import (
	"errors"
	"fmt"
	"time"

	"github.com/Gurux/gxcommon-go"
	"go.bug.st/serial"
)

// readPollInterval bounds how long a read blocks before the reader checks
// whether the port is closing.
const readPollInterval = 100 * time.Millisecond

// port uses go.bug.st/serial on platforms without a native handler.
type port struct {
	p serial.Port
}

// allow tests to override the serial library.
var openSerial = func(name string, mode *serial.Mode) (serial.Port, error) {
	return serial.Open(name, mode)
}

func (p *port) isOpen() bool {
	return p.p != nil
}

func getPortNames() ([]string, error) {
	return serial.GetPortsList()
}

func toMode(settings GXSerialSettings) (*serial.Mode, error) {
	mode := &serial.Mode{
		BaudRate: int(settings.BaudRate),
		DataBits: settings.DataBits,
	}
	switch settings.Parity {
	case gxcommon.ParityNone:
		mode.Parity = serial.NoParity
	case gxcommon.ParityOdd:
		mode.Parity = serial.OddParity
	case gxcommon.ParityEven:
		mode.Parity = serial.EvenParity
	case gxcommon.ParityMark:
		mode.Parity = serial.MarkParity
	case gxcommon.ParitySpace:
		mode.Parity = serial.SpaceParity
	default:
		return nil, errors.New("invalid parity")
	}
	switch settings.StopBits {
	case gxcommon.StopBitsOne:
		mode.StopBits = serial.OneStopBit
	case gxcommon.StopBitsTwo:
		mode.StopBits = serial.TwoStopBits
	default:
		return nil, errors.New("invalid stopbits (must be one or two)")
	}
	return mode, nil
}

func openPort(p *port, settings GXSerialSettings) error {
	mode, err := toMode(settings)
	if err != nil {
		return err
	}
	sp, err := openSerial(settings.Port, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", settings.Port, err)
	}
	if err := sp.SetReadTimeout(readPollInterval); err != nil {
		_ = sp.Close()
		return err
	}
	p.p = sp
	if err := p.discard(); err != nil {
		_ = p.close()
		return err
	}
	return nil
}

func (p *port) configure(settings GXSerialSettings) error {
	mode, err := toMode(settings)
	if err != nil {
		return err
	}
	return p.p.SetMode(mode)
}

func (p *port) discard() error {
	if err := p.p.ResetInputBuffer(); err != nil {
		return err
	}
	return p.p.ResetOutputBuffer()
}

// read returns nil without an error when the read timeout expires.
func (p *port) read() ([]byte, error) {
	sp := p.p
	if sp == nil {
		return nil, ErrNotOpen
	}
	buf := make([]byte, 256)
	n, err := sp.Read(buf)
	if err != nil {
		var pe *serial.PortError
		if errors.As(err, &pe) && pe.Code() == serial.PortClosed {
			return nil, ErrNotOpen
		}
		return nil, err
	}
	return buf[:n], nil
}

func (p *port) write(data []byte) (int, error) {
	return p.p.Write(data)
}

// interrupt does nothing. The reader notices the stop request when the
// read timeout expires.
func (p *port) interrupt() {
}

func (p *port) close() error {
	if p.p == nil {
		return nil
	}
	err := p.p.Close()
	p.p = nil
	return err
}
