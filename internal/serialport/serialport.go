// Package serialport implements the device contract on top of go.bug.st/serial.
package serialport

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"

	"serial-plotter/internal/device"
)

// maxLineBytes bounds the partial-line buffer; longer runs without a newline
// are treated as noise and dropped.
const maxLineBytes = 4096

// Opener opens serial ports as 8N1 at the requested baud rate.
type Opener struct{}

var _ device.Opener = Opener{}

// Open opens the named port. readTimeout bounds each underlying read so the
// caller can observe a stop request even when the device is silent.
func (Opener) Open(name string, baud int, readTimeout time.Duration) (device.Conn, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", name)
	}

	if err := p.SetReadTimeout(readTimeout); err != nil {
		_ = p.Close()
		return nil, errors.Wrap(err, "set read timeout")
	}

	return NewConn(p), nil
}

// Conn assembles newline-terminated lines from a byte stream.
type Conn struct {
	port    io.ReadCloser
	buf     []byte
	partial []byte

	closeOnce sync.Once
	closeErr  error
}

// NewConn wraps a port whose Read returns (0, nil) when its read timeout expires.
func NewConn(port io.ReadCloser) *Conn {
	return &Conn{
		port: port,
		buf:  make([]byte, 1024),
	}
}

// ReadLine returns the next complete line with "\r\n" stripped, invalid UTF-8
// dropped and surrounding whitespace trimmed. Partial data survives timeouts.
func (c *Conn) ReadLine() (string, error) {
	for {
		if line, ok := c.takeLine(); ok {
			return line, nil
		}

		n, err := c.port.Read(c.buf)
		if n > 0 {
			c.partial = append(c.partial, c.buf[:n]...)
			if len(c.partial) > maxLineBytes && bytes.IndexByte(c.partial, '\n') < 0 {
				c.partial = c.partial[:0]
			}
		}
		if err != nil {
			return "", errors.Wrap(err, "read")
		}
		if n == 0 {
			return "", device.ErrTimeout
		}
	}
}

func (c *Conn) takeLine() (string, bool) {
	idx := bytes.IndexByte(c.partial, '\n')
	if idx < 0 {
		return "", false
	}
	raw := string(c.partial[:idx])
	c.partial = c.partial[idx+1:]
	return strings.TrimSpace(strings.ToValidUTF8(raw, "")), true
}

// Close closes the port once; later calls return the first result.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.port.Close()
	})
	return c.closeErr
}

// Enumerator lists serial ports present on the system.
type Enumerator struct{}

var _ device.Enumerator = Enumerator{}

// Ports returns the detected port names.
func (Enumerator) Ports() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, errors.Wrap(err, "list ports")
	}
	return ports, nil
}

// PortInfo is a human-readable description of one port.
type PortInfo struct {
	Name    string
	USB     bool
	VID     string
	PID     string
	Serial  string
	Product string
}

func (p PortInfo) String() string {
	if !p.USB {
		return p.Name
	}
	s := fmt.Sprintf("%s USB VID:PID=%s:%s", p.Name, p.VID, p.PID)
	if p.Serial != "" {
		s += " SER=" + p.Serial
	}
	if p.Product != "" {
		s += " (" + p.Product + ")"
	}
	return s
}

// DetailedPorts returns ports with USB metadata where the platform provides it.
func DetailedPorts() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, errors.Wrap(err, "list detailed ports")
	}

	infos := make([]PortInfo, 0, len(details))
	for _, d := range details {
		infos = append(infos, PortInfo{
			Name:    d.Name,
			USB:     d.IsUSB,
			VID:     d.VID,
			PID:     d.PID,
			Serial:  d.SerialNumber,
			Product: d.Product,
		})
	}
	return infos, nil
}
