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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// DefaultResponseLength is the reply length that is read in polling mode.
	DefaultResponseLength = 20
	// DefaultWaitTime is the settle time in polling mode and the reply wait
	// time in event driven mode.
	DefaultWaitTime = 5000 * time.Millisecond
	// DefaultErrorSettleTime is the settle time of GetError in polling mode.
	DefaultErrorSettleTime = 150 * time.Millisecond
)

// Device functions.
const (
	functionTurnOn    = "TURN_ON"
	functionTurnOff   = "TURN_OFF"
	functionLaserCur  = "LASER_CUR"
	functionUptime    = "UPTIME"
	functionLaserTemp = "LASER_TEMP"
	functionHeadTemp  = "HEAD_TEMP"
	functionStatus    = "STATUS"
	functionError     = "ERROR"

	// acknowledge is the value of a successful TURN_ON or TURN_OFF.
	acknowledge = "OK"
)

// Model is the XWS module model.
type Model int

const (
	// ModelXWS30 is the XWS-30 module.
	ModelXWS30 Model = iota
	// ModelXWS65 is the XWS-65 module.
	ModelXWS65
)

// String returns the device id of the model.
func (m Model) String() string {
	switch m {
	case ModelXWS30:
		return "XWS_30"
	case ModelXWS65:
		return "XWS_65"
	}
	return fmt.Sprintf("Model(%d)", int(m))
}

// faultCatalog returns the fault names the model uses.
func (m Model) faultCatalog() *GXFaultCatalog {
	if m == ModelXWS65 {
		return DefaultFaultCatalog
	}
	return FaultCodeCatalog
}

// Status is the operating state of the module.
type Status int

const (
	// StatusIdle means that the module is ready for operations.
	StatusIdle Status = iota
	// StatusStarting means that the laser is starting.
	StatusStarting
	// StatusIgnition means that plasma is triggered.
	StatusIgnition
	// StatusPlasmaOn means that plasma is on.
	StatusPlasmaOn
	// StatusError means that the module has faults. See GetError.
	StatusError
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "IDLE"
	case StatusStarting:
		return "STARTING"
	case StatusIgnition:
		return "IGNITION"
	case StatusPlasmaOn:
		return "PLASMA_ON"
	case StatusError:
		return "ERROR"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// TemperatureTarget selects the measured temperature.
type TemperatureTarget int

const (
	// TemperatureLaser is the laser temperature.
	TemperatureLaser TemperatureTarget = iota
	// TemperatureHead is the optical head temperature.
	TemperatureHead
)

// String implements fmt.Stringer.
func (t TemperatureTarget) String() string {
	switch t {
	case TemperatureLaser:
		return "Laser"
	case TemperatureHead:
		return "Head"
	}
	return fmt.Sprintf("TemperatureTarget(%d)", int(t))
}

// GXXwsDevice controls one XWS illumination module.
//
// A device uses either a polling or an event driven transport. The
// transport is selected when the device is created.
type GXXwsDevice struct {
	model     Model
	transport deviceTransport

	// Serializes commands.
	exec sync.Mutex

	mu              sync.Mutex
	responseLength  int
	waitTime        time.Duration
	errorSettleTime time.Duration
	catalog         *GXFaultCatalog
	faultWord       uint32
	log             *slog.Logger
	p               *message.Printer
}

func newDevice(model Model, transport deviceTransport) *GXXwsDevice {
	return &GXXwsDevice{
		model:           model,
		transport:       transport,
		responseLength:  DefaultResponseLength,
		waitTime:        DefaultWaitTime,
		errorSettleTime: DefaultErrorSettleTime,
		catalog:         model.faultCatalog(),
		log:             slog.New(slog.DiscardHandler),
		p:               newPrinter(defaultLanguage),
	}
}

// NewPollingDevice creates a device that uses a polling transport.
func NewPollingDevice(model Model, transport LineTransport) *GXXwsDevice {
	return newDevice(model, &pollingTransport{t: transport, sleep: time.Sleep})
}

// NewEventDevice creates a device that uses an event driven transport.
func NewEventDevice(model Model, transport CommandTransport) *GXXwsDevice {
	return newDevice(model, &eventTransport{t: transport})
}

// Id returns the device id.
func (d *GXXwsDevice) Id() string {
	return d.model.String()
}

// Model returns the device model.
func (d *GXXwsDevice) Model() Model {
	return d.model
}

// SetLogger sets the logger. Nil disables logging.
func (d *GXXwsDevice) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	d.mu.Lock()
	d.log = logger
	d.mu.Unlock()
}

// Localize messages for the specified language.
func (d *GXXwsDevice) Localize(tag language.Tag) {
	d.mu.Lock()
	d.p = newPrinter(tag)
	d.mu.Unlock()
}

// ResponseLength returns the reply length that is read in polling mode.
func (d *GXXwsDevice) ResponseLength() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.responseLength
}

// SetResponseLength sets the reply length that is read in polling mode.
func (d *GXXwsDevice) SetResponseLength(value int) {
	d.mu.Lock()
	d.responseLength = value
	d.mu.Unlock()
}

// WaitTime returns the settle time in polling mode and the reply wait time in
// event driven mode.
func (d *GXXwsDevice) WaitTime() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.waitTime
}

// SetWaitTime sets the settle time in polling mode and the reply wait time in
// event driven mode.
func (d *GXXwsDevice) SetWaitTime(value time.Duration) {
	d.mu.Lock()
	d.waitTime = value
	d.mu.Unlock()
}

// ErrorSettleTime returns the settle time of GetError in polling mode.
func (d *GXXwsDevice) ErrorSettleTime() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.errorSettleTime
}

// SetErrorSettleTime sets the settle time of GetError in polling mode.
func (d *GXXwsDevice) SetErrorSettleTime(value time.Duration) {
	d.mu.Lock()
	d.errorSettleTime = value
	d.mu.Unlock()
}

// FaultCatalog returns the catalog that GetError uses.
func (d *GXXwsDevice) FaultCatalog() *GXFaultCatalog {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.catalog
}

// SetFaultCatalog sets the catalog that GetError uses. Nil restores the
// catalog of the model.
func (d *GXXwsDevice) SetFaultCatalog(catalog *GXFaultCatalog) {
	if catalog == nil {
		catalog = d.model.faultCatalog()
	}
	d.mu.Lock()
	d.catalog = catalog
	d.mu.Unlock()
}

// FaultWord returns the fault word that GetError received last.
func (d *GXXwsDevice) FaultWord() uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.faultWord
}

// IsOpen returns true if the transport is open.
func (d *GXXwsDevice) IsOpen() bool {
	return d.transport.isOpen()
}

func (d *GXXwsDevice) logger() *slog.Logger {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.log.With(slog.String("device", d.model.String()))
}

func (d *GXXwsDevice) printer() *message.Printer {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.p
}

// ConnectServer configures and opens the transport. The connection string
// is portName,baudRate,dataBits,stopBits,parity. Nothing is done if the
// transport is already open.
func (d *GXXwsDevice) ConnectServer(connectionString string) error {
	if d.transport.isOpen() {
		return nil
	}
	settings, err := ParseConnectionString(connectionString)
	if err != nil {
		return &DeviceError{
			Code:    ErrorCodeConnection,
			Message: d.printer().Sprintf("msg.connection_string"),
			Err:     err,
		}
	}
	log := d.logger()
	if !d.transport.configure(settings) {
		return nil
	}
	if err = d.transport.open(); err != nil {
		log.Error("connect failed", slog.String("port", settings.Port), slog.Any("error", err))
		return err
	}
	log.Info("connected", slog.String("port", settings.Port), slog.String("session", d.transport.session()))
	return nil
}

// DisconnectServer closes the transport if it is open.
func (d *GXXwsDevice) DisconnectServer() error {
	if !d.transport.isOpen() {
		return nil
	}
	session := d.transport.session()
	if err := d.transport.close(); err != nil {
		return err
	}
	d.logger().Info("disconnected", slog.String("session", session))
	return nil
}

// newRequest returns a request that waits for any reply of the function.
func (d *GXXwsDevice) newRequest(function string, settle time.Duration) request {
	d.mu.Lock()
	defer d.mu.Unlock()
	expect, _ := PartialCommand(function)
	return request{
		function: function,
		settle:   settle,
		expect:   expect,
		wait:     d.waitTime,
		length:   d.responseLength,
	}
}

// execute sends the request and returns the reply.
//
// Timeouts are returned as they are. Other failures are returned as a
// *DeviceError.
func (d *GXXwsDevice) execute(req request) (reply, error) {
	p := d.printer()
	log := d.logger().With(slog.String("function", req.function))
	if !d.transport.isOpen() {
		return reply{}, &DeviceError{
			Code:    ErrorCodeCommunicationClosed,
			Message: p.Sprintf("msg.communication_closed"),
		}
	}
	log = log.With(slog.String("session", d.transport.session()))
	log.Debug("command")

	d.exec.Lock()
	ret, err := d.transport.execute(req)
	d.exec.Unlock()
	if err != nil {
		if errors.Is(err, ErrTimeout) {
			log.Warn("command timed out", slog.Any("error", err))
			return reply{}, err
		}
		var de *DeviceError
		if errors.As(err, &de) {
			switch de.Code {
			case ErrorCodeNoResponse:
				de.Message = p.Sprintf("msg.no_response")
			case ErrorCodeDecode:
				de.Message = p.Sprintf("msg.decode_failed", req.function, de.Response)
			}
		} else {
			de = &DeviceError{Code: ErrorCodeExecuteCommand, Err: err}
		}
		log.Error("command failed", slog.Any("error", de))
		return reply{}, de
	}
	log.LogAttrs(context.Background(), slog.LevelDebug, "reply", slog.String("data", ret.raw))
	return ret, nil
}

// decodeError returns the error for a reply that can't be decoded.
func (d *GXXwsDevice) decodeError(function string, ret reply, err error) error {
	return &DeviceError{
		Code:     ErrorCodeDecode,
		Message:  d.printer().Sprintf("msg.decode_failed", function, ret.raw),
		Response: ret.raw,
		Err:      err,
	}
}

// turn sends TURN_ON or TURN_OFF and checks that the device acknowledges it.
func (d *GXXwsDevice) turn(function string) error {
	req := d.newRequest(function, d.WaitTime())
	req.expect, _ = NewGXCommand(function, acknowledge)
	ret, err := d.execute(req)
	if err != nil {
		return err
	}
	if ret.value != acknowledge {
		return &DeviceError{
			Code:     ErrorCodeNotOK,
			Message:  d.printer().Sprintf("msg.response_not_ok"),
			Response: ret.raw,
		}
	}
	return nil
}

// TurnOn turns the light source on.
func (d *GXXwsDevice) TurnOn() error {
	return d.turn(functionTurnOn)
}

// TurnOff turns the light source off.
func (d *GXXwsDevice) TurnOff() error {
	return d.turn(functionTurnOff)
}

// GetBrightness returns the laser current. Decimals are truncated.
func (d *GXXwsDevice) GetBrightness() (int, error) {
	ret, err := d.execute(d.newRequest(functionLaserCur, d.WaitTime()))
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseFloat(ret.value, 64)
	if err != nil {
		return 0, d.decodeError(functionLaserCur, ret, err)
	}
	return int(value), nil
}

// SetBrightness is not supported by the device.
func (d *GXXwsDevice) SetBrightness(value int) error {
	return fmt.Errorf("SetBrightness(%d): %w", value, ErrNotSupported)
}

// GetUpTime returns the operating time in hours.
// The device replies H hours M minutes.
func (d *GXXwsDevice) GetUpTime() (float64, error) {
	ret, err := d.execute(d.newRequest(functionUptime, d.WaitTime()))
	if err != nil {
		return 0, err
	}
	hours, err := parseUpTime(ret.value)
	if err != nil {
		return 0, d.decodeError(functionUptime, ret, err)
	}
	return hours, nil
}

func parseUpTime(value string) (float64, error) {
	fields := strings.Fields(value)
	if len(fields) < 3 {
		return 0, fmt.Errorf("%w: uptime %q", ErrInvalidFormat, value)
	}
	hours, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, err
	}
	minutes, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return 0, err
	}
	return hours + minutes/60, nil
}

// GetTemperature returns the temperature of the target.
func (d *GXXwsDevice) GetTemperature(target TemperatureTarget) (float64, error) {
	var function string
	switch target {
	case TemperatureLaser:
		function = functionLaserTemp
	case TemperatureHead:
		function = functionHeadTemp
	default:
		return 0, fmt.Errorf("%s: %w", d.printer().Sprintf("msg.target_not_supported", target), ErrNotSupported)
	}
	ret, err := d.execute(d.newRequest(function, d.WaitTime()))
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseFloat(ret.value, 64)
	if err != nil {
		return 0, d.decodeError(function, ret, err)
	}
	return value, nil
}

// GetStatus returns the operating state.
func (d *GXXwsDevice) GetStatus() (Status, error) {
	ret, err := d.execute(d.newRequest(functionStatus, d.WaitTime()))
	if err != nil {
		return 0, err
	}
	value, err := strconv.Atoi(ret.value)
	if err != nil {
		return 0, d.decodeError(functionStatus, ret, err)
	}
	if value < int(StatusIdle) || value > int(StatusError) {
		return 0, d.decodeError(functionStatus, ret, fmt.Errorf("%w: status %d", ErrInvalidFormat, value))
	}
	return Status(value), nil
}

// GetError returns the names of the active faults. NoFaults is returned if
// there are none.
func (d *GXXwsDevice) GetError() ([]string, error) {
	ret, err := d.execute(d.newRequest(functionError, d.ErrorSettleTime()))
	if err != nil {
		return nil, err
	}
	value := strings.TrimPrefix(strings.TrimPrefix(ret.value, "0x"), "0X")
	word, err := strconv.ParseUint(value, 16, 32)
	if err != nil {
		return nil, d.decodeError(functionError, ret, err)
	}
	d.mu.Lock()
	d.faultWord = uint32(word)
	catalog := d.catalog
	d.mu.Unlock()
	return catalog.Decode(uint32(word)), nil
}
