package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Gurux/gxcommon-go"
	"github.com/Gurux/gxxws-go"
	"golang.org/x/text/language"
)

var (
	port     = flag.String("S", "", "Port name")
	baudRate = flag.Int("b", 115200, "Baud rate")
	dataBits = flag.Int("d", 8, "DataBits (5, 6, 7, 8)")
	stopBits = flag.String("s", "One", "StopBits (One, Two)")
	parity   = flag.String("p", "None", "Parity (None, Odd, Even, Mark, Space)")
	model    = flag.String("m", "XWS_65", "Device model (XWS_30, XWS_65)")
	command  = flag.String("c", "status", "Command (on, off, status, error, brightness, uptime, laser, head)")
	events   = flag.Bool("e", false, "Use the event driven transport.")
	t        = flag.String("t", "", "Trace level.")
	w        = flag.Int("w", 5000, "WaitTime in milliseconds.")
	capture  = flag.String("capture", "", "Write sent and received commands to the file. Requires -e.")
	lang     = flag.String("lang", "", "Used language.")
	v        = flag.Bool("v", false, "Verbose logging.")
)

type transport interface {
	SetTrace(traceLevel gxcommon.TraceLevel)
	SetOnTrace(value gxxws.TraceEventHandler)
	SetOnMediaStateChange(value gxxws.MediaStateHandler)
	Localize(tag language.Tag)
}

func main() {
	flag.Parse()
	if *port == "" {
		flag.PrintDefaults()
		return
	}
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		var de *gxxws.DeviceError
		if errors.As(err, &de) && de.Code == gxxws.ErrorCodeExecuteCommand {
			printPortNames(os.Stderr)
		}
		os.Exit(1)
	}
}

func printPortNames(w io.Writer) {
	if ret, err := gxxws.GetPortNames(); err == nil {
		fmt.Fprintln(w, "Available serial ports: "+strings.Join(ret, ","))
	}
}

// connect opens the device and lists the available ports if it fails.
func connect(device *gxxws.GXXwsDevice, cs string, w io.Writer) error {
	if err := device.ConnectServer(cs); err != nil {
		printPortNames(w)
		return err
	}
	return nil
}

func run() error {
	m := gxxws.ModelXWS65
	switch *model {
	case "XWS_30":
		m = gxxws.ModelXWS30
	case "XWS_65":
	default:
		return fmt.Errorf("unknown model %s", *model)
	}
	cs := fmt.Sprintf("%s,%d,%d,%s,%s", *port, *baudRate, *dataBits, *stopBits, *parity)
	settings, err := gxxws.ParseConnectionString(cs)
	if err != nil {
		return err
	}

	channel := gxxws.NewGXSerialChannel(settings)
	channel.SetOnError(func(err error) {
		fmt.Fprintln(os.Stderr, "reader error:", err)
	})
	var device *gxxws.GXXwsDevice
	var media transport
	if *events {
		p := gxxws.NewGXComPort(*model, channel, settings)
		if *capture != "" {
			f, err := os.Create(*capture)
			if err != nil {
				return err
			}
			defer f.Close()
			r := gxxws.NewGXCommandRecorder(f)
			r.Attach(p)
			defer r.Detach()
		}
		device = gxxws.NewEventDevice(m, p)
		media = p
	} else {
		p := gxxws.NewGXSerialPort(*model, channel, settings)
		device = gxxws.NewPollingDevice(m, p)
		media = p
	}
	device.SetWaitTime(time.Duration(*w) * time.Millisecond)

	if *lang != "" {
		tag, err := language.Parse(*lang)
		if err != nil {
			return fmt.Errorf("error parsing language: %w", err)
		}
		media.Localize(tag)
		device.Localize(tag)
	}
	level := slog.LevelInfo
	if *v {
		level = slog.LevelDebug
	}
	device.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	media.SetOnMediaStateChange(func(sender string, e gxcommon.MediaStateEventArgs) {
		fmt.Printf("Media state change : %s\n", e.State().String())
	})
	media.SetOnTrace(func(sender string, e gxcommon.TraceEventArgs) {
		fmt.Printf("Trace: %s\n", e.String())
	})
	if *t != "" {
		tl, err := gxcommon.TraceLevelParse(*t)
		if err != nil {
			return err
		}
		media.SetTrace(tl)
	}

	if err := connect(device, cs, os.Stderr); err != nil {
		return err
	}
	//Close the connection.
	defer func() {
		if err := device.DisconnectServer(); err != nil {
			fmt.Fprintln(os.Stderr, "close failed:", err)
		}
	}()
	fmt.Printf("Device: %s\n", device.Id())
	return execute(device, *command)
}

func execute(device *gxxws.GXXwsDevice, command string) error {
	switch command {
	case "on":
		return device.TurnOn()
	case "off":
		return device.TurnOff()
	case "status":
		status, err := device.GetStatus()
		if err != nil {
			return err
		}
		fmt.Printf("Status: %s\n", status)
	case "error":
		faults, err := device.GetError()
		if err != nil {
			return err
		}
		fmt.Printf("Faults (0x%06X): %s\n", device.FaultWord(), strings.Join(faults, ", "))
	case "brightness":
		value, err := device.GetBrightness()
		if err != nil {
			return err
		}
		fmt.Printf("Brightness: %d\n", value)
	case "uptime":
		hours, err := device.GetUpTime()
		if err != nil {
			return err
		}
		fmt.Printf("Uptime: %.2f hours\n", hours)
	case "laser", "head":
		target := gxxws.TemperatureLaser
		if command == "head" {
			target = gxxws.TemperatureHead
		}
		value, err := device.GetTemperature(target)
		if err != nil {
			return err
		}
		fmt.Printf("%s temperature: %.2f\n", target, value)
	default:
		return fmt.Errorf("unknown command %s", command)
	}
	return nil
}
