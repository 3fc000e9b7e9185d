package uart

import (
	"time"

	"github.com/tarm/serial"
)

// SerialPort is a real POSIX serial-port-backed Port, used by
// cmd/pspstub when talking to actual SCP hardware over a USB-UART
// adapter rather than the in-process register backend. Grounded on
// seedhammer/seedhammer's use of github.com/tarm/serial for its own
// board bring-up tooling.
type SerialPort struct {
	port    *serial.Port
	pending []byte
}

// OpenSerialPort opens device at the stub's fixed line configuration
// (115200 8N1) with a short read timeout so Available/Read
// never block the caller indefinitely — the blocking/poll contract is
// proto/pdu's Parser's job, not the transport's.
func OpenSerialPort(device string) (*SerialPort, error) {
	cfg := &serial.Config{
		Name:        device,
		Baud:        Default115200_8N1.BaudRate,
		Size:        8,
		StopBits:    serial.Stop1,
		Parity:      serial.ParityNone,
		ReadTimeout: 10 * time.Millisecond,
	}
	p, err := serial.OpenPort(cfg)
	if err != nil {
		return nil, err
	}
	return &SerialPort{port: p}, nil
}

func (s *SerialPort) Write(p []byte) (int, error) { return s.port.Write(p) }

// Available reports how many bytes are ready, buffering them internally
// until Read drains them. tarm/serial exposes no peek/FIONREAD call, so
// this performs the probe read itself (bounded by OpenSerialPort's short
// ReadTimeout) and stashes whatever comes back; a timed-out probe with
// nothing to show reports 0, letting the parser's poll loop yield the
// CPU instead of busy-spinning on Read.
func (s *SerialPort) Available() (int, error) {
	if len(s.pending) > 0 {
		return len(s.pending), nil
	}
	buf := make([]byte, 64)
	n, err := s.port.Read(buf)
	if err != nil {
		return 0, err
	}
	s.pending = buf[:n]
	return n, nil
}

func (s *SerialPort) Read(p []byte) (int, error) {
	if len(s.pending) == 0 {
		return s.port.Read(p)
	}
	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

// Close releases the underlying OS file descriptor.
func (s *SerialPort) Close() error { return s.port.Close() }
