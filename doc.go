// Package gxxws controls XWS optical illumination modules over a serial line.
//
// The module speaks an ASCII line protocol. Every line is FUNCTION or
// FUNCTION=ARGS and ends with CR LF. The package has two transports for it
// and a device layer on top of them.
//
// Features
//
//   - GXCommand: one protocol message that also works as a reply pattern
//     (wildcard arguments or partial match).
//   - GXSerialPort: polling transport. A request is written and the reply is
//     polled on the caller's goroutine until enough bytes or a carriage
//     return is received.
//   - GXComPort: event driven transport. Received lines are parsed to
//     commands, delivered to handlers and kept in a bounded queue that
//     callers wait on with Receive and ReceiveMatching.
//   - GXXwsDevice: turn on/off, status, faults, laser current, uptime and
//     temperatures of XWS_30 and XWS_65 modules.
//   - GXSerialChannel: the serial port itself (Linux, Windows and, through
//     go.bug.st/serial, other platforms).
//   - Tracing: gxcommon trace, state and error callbacks on the transports
//     and slog logging on the device.
//   - GXFaultCatalog: fault word decoding, loadable from YAML.
//   - GXCommandRecorder: CBOR capture of sent and received commands.
//
// # Construction
//
//	settings := gxxws.NewGXSerialSettings("COM1")
//	channel := gxxws.NewGXSerialChannel(settings)
//	port := gxxws.NewGXComPort("xws", channel, settings)
//	device := gxxws.NewEventDevice(gxxws.ModelXWS65, port)
//
//	if err := device.ConnectServer("COM1,115200,8,1,None"); err != nil {
//	    // handle connect error
//	}
//	defer device.DisconnectServer()
//
//	status, err := device.GetStatus()
//
// Use NewGXSerialPort and NewPollingDevice for the polling transport.
//
// # Errors and timeouts
//
// Malformed commands and connection strings return ErrInvalidFormat. A reply
// that is not received in time returns a *TimeoutError that matches
// ErrTimeout. Device failures are returned as *DeviceError. Error messages
// are localized with Localize.
//
// # Notes
//
// Command handlers are called on the reader goroutine of the channel.
// Long-running work in handlers should be offloaded to a separate goroutine.
package gxxws
