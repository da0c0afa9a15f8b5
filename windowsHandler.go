//go:build windows

package gxxws

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unsafe"

	"github.com/Gurux/gxcommon-go"
	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

type port struct {
	h       windows.Handle
	ovRead  windows.Overlapped
	ovWrite windows.Overlapped
	closing windows.Handle
}

func (p *port) isOpen() bool {
	return p != nil && p.h != 0 && p.h != windows.InvalidHandle
}

// getPortNames retrieves the list of available serial port names from the registry.
func getPortNames() ([]string, error) {
	const path = `HARDWARE\DEVICEMAP\SERIALCOMM`
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, path, registry.QUERY_VALUE)
	if err != nil {
		if err == registry.ErrNotExist {
			return []string{}, nil
		}
		return nil, err
	}
	defer func() {
		_ = key.Close()
	}()
	valueNames, err := key.ReadValueNames(-1)
	if err != nil {
		return nil, err
	}
	var ports []string
	for _, name := range valueNames {
		if port, _, err := key.GetStringValue(name); err == nil {
			ports = append(ports, port)
		}
	}
	return ports, nil
}

const (
	dcbFBinary         = 1 << 0
	dcbFParity         = 1 << 1
	dcbFErrorChar      = 1 << 10
	dcbFNull           = 1 << 11
	dcbFAbortOnError   = 1 << 14
	dcbFDtrControlMask = 0x3 << 4  // bits 4-5
	dcbFRtsControlMask = 0x3 << 12 // bits 12-13
)

func setFlag(d *windows.DCB, flag uint32, on bool) {
	if on {
		d.Flags |= flag
	} else {
		d.Flags &^= flag
	}
}

func (p *port) configure(settings GXSerialSettings) error {
	var d windows.DCB
	d.DCBlength = uint32(unsafe.Sizeof(d))
	if err := windows.GetCommState(p.h, &d); err != nil {
		return fmt.Errorf("GetCommState failed: %w", err)
	}
	d.BaudRate = uint32(settings.BaudRate)
	d.ByteSize = byte(settings.DataBits)
	switch settings.Parity {
	case gxcommon.ParityNone:
		d.Parity = windows.NOPARITY
	case gxcommon.ParityOdd:
		d.Parity = windows.ODDPARITY
	case gxcommon.ParityEven:
		d.Parity = windows.EVENPARITY
	case gxcommon.ParityMark:
		d.Parity = windows.MARKPARITY
	case gxcommon.ParitySpace:
		d.Parity = windows.SPACEPARITY
	default:
		return gxcommon.ErrInvalidArgument
	}
	switch settings.StopBits {
	case gxcommon.StopBitsOne:
		d.StopBits = windows.ONESTOPBIT
	case gxcommon.StopBitsTwo:
		d.StopBits = windows.TWOSTOPBITS
	default:
		return gxcommon.ErrInvalidArgument
	}
	setFlag(&d, dcbFParity, d.Parity != windows.NOPARITY)
	setFlag(&d, dcbFBinary, true)
	setFlag(&d, dcbFNull, false)
	setFlag(&d, dcbFErrorChar, false)
	setFlag(&d, dcbFAbortOnError, false)
	// RTS and DTR control disabled.
	d.Flags &^= dcbFRtsControlMask | dcbFDtrControlMask
	if err := windows.SetCommState(p.h, &d); err != nil {
		return fmt.Errorf("SetCommState failed: %w", err)
	}
	return nil
}

func openPort(p *port, settings GXSerialSettings) error {
	if strings.TrimSpace(settings.Port) == "" {
		return errors.New("invalid serial port name")
	}
	*p = port{}
	closing, err := windows.CreateEvent(nil, 1, 0, nil) // manual-reset
	if err != nil {
		return fmt.Errorf("CreateEvent(closing) failed: %w", err)
	}
	p.closing = closing

	h, err := windows.CreateFile(
		windows.StringToUTF16Ptr(`\\.\`+settings.Port),
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		0,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_FLAG_OVERLAPPED,
		0,
	)
	if err != nil {
		_ = p.close()
		return fmt.Errorf("failed to open port %q: %w", settings.Port, err)
	}
	p.h = h

	if p.ovRead.HEvent, err = windows.CreateEvent(nil, 0, 0, nil); err != nil {
		_ = p.close()
		return fmt.Errorf("CreateEvent(read) failed: %w", err)
	}
	if p.ovWrite.HEvent, err = windows.CreateEvent(nil, 0, 0, nil); err != nil {
		_ = p.close()
		return fmt.Errorf("CreateEvent(write) failed: %w", err)
	}
	if err := p.configure(settings); err != nil {
		_ = p.close()
		return fmt.Errorf("failed to update serial port settings: %w", err)
	}
	if err := p.discard(); err != nil {
		_ = p.close()
		return err
	}
	return nil
}

// discard purges both the input and the output queue of the driver.
func (p *port) discard() error {
	if err := windows.PurgeComm(p.h,
		windows.PURGE_TXCLEAR|windows.PURGE_TXABORT|windows.PURGE_RXCLEAR|windows.PURGE_RXABORT,
	); err != nil {
		return fmt.Errorf("PurgeComm failed: %w", err)
	}
	return nil
}

// ClearCommError + COMSTAT.cbInQue
func (p *port) getBytesToRead() (int, error) {
	var flags uint32
	var st windows.ComStat
	if err := windows.ClearCommError(p.h, &flags, &st); err != nil {
		if err == windows.ERROR_INVALID_HANDLE {
			return 0, nil
		}
		return 0, fmt.Errorf("getBytesToRead failed: %w", err)
	}
	return int(st.CBInQue), nil
}

func (p *port) isClosing() bool {
	r, err := windows.WaitForSingleObject(p.closing, 0)
	return p.closing == 0 || (r == windows.WAIT_OBJECT_0 && err == nil)
}

// read blocks until data is available or the port is interrupted.
func (p *port) read() ([]byte, error) {
	if !p.isOpen() {
		return nil, ErrNotOpen
	}
	count, err := p.getBytesToRead()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		count = 1
	}
	buf := make([]byte, count)
	var n uint32
	_ = windows.ResetEvent(p.ovRead.HEvent)
	err = windows.ReadFile(p.h, buf, &n, &p.ovRead)
	if err == nil {
		return buf[:n], nil
	}
	if !errors.Is(err, windows.ERROR_IO_PENDING) {
		if p.isClosing() {
			return nil, nil
		}
		return nil, fmt.Errorf("read failed: %w", err)
	}
	handles := []windows.Handle{p.closing, p.ovRead.HEvent}
	idx, werr := windows.WaitForMultipleObjects(handles, false, windows.INFINITE)
	if werr != nil {
		if p.isClosing() {
			return nil, nil
		}
		return nil, fmt.Errorf("read wait failed: %w", werr)
	}
	if idx == windows.WAIT_OBJECT_0 {
		return nil, nil
	}
	if gerr := windows.GetOverlappedResult(p.h, &p.ovRead, &n, true); gerr != nil {
		if errors.Is(gerr, windows.ERROR_OPERATION_ABORTED) || p.isClosing() {
			return nil, nil
		}
		return nil, fmt.Errorf("read failed: %w", gerr)
	}
	return buf[:n], nil
}

func (p *port) write(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, nil
	}
	var n uint32
	_ = windows.ResetEvent(p.ovWrite.HEvent)
	err := windows.WriteFile(p.h, data, &n, &p.ovWrite)
	if err == nil {
		return len(data), nil
	}
	if !errors.Is(err, windows.ERROR_IO_PENDING) {
		return 0, fmt.Errorf("write failed: %w", err)
	}
	timeout := uint32(time.Second / time.Millisecond)
	handles := []windows.Handle{p.closing, p.ovWrite.HEvent}
	idx, werr := windows.WaitForMultipleObjects(handles, false, timeout)
	if werr != nil {
		return 0, fmt.Errorf("write wait failed: %w", werr)
	}
	if idx == windows.WAIT_OBJECT_0 {
		return 0, ErrNotOpen
	}
	if gerr := windows.GetOverlappedResult(p.h, &p.ovWrite, &n, true); gerr != nil {
		return 0, fmt.Errorf("write failed: %w", gerr)
	}
	return int(n), nil
}

// interrupt wakes up a blocking read.
func (p *port) interrupt() {
	if p.closing != 0 {
		_ = windows.SetEvent(p.closing)
	}
	if p.isOpen() {
		_ = windows.CancelIoEx(p.h, nil)
	}
}

func (p *port) close() error {
	p.interrupt()
	if p.ovRead.HEvent != 0 {
		_ = windows.CloseHandle(p.ovRead.HEvent)
		p.ovRead.HEvent = 0
	}
	if p.ovWrite.HEvent != 0 {
		_ = windows.CloseHandle(p.ovWrite.HEvent)
		p.ovWrite.HEvent = 0
	}
	if p.h != 0 {
		_ = windows.CloseHandle(p.h)
		p.h = 0
	}
	if p.closing != 0 {
		_ = windows.CloseHandle(p.closing)
		p.closing = 0
	}
	return nil
}
