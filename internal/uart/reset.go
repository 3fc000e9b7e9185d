package uart

import (
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// ResetLine drives a GPIO pin wired to the SCP's reset input, used by the
// host-side bring-up tool (cmd/pspstub reset) to force a cold boot before
// reconnecting over the serial transport. Grounded on periph.io/x/host's
// ftdi-spi.go bus/conn initialization pattern: call host.Init() once,
// then look a named pin up through gpioreg.
type ResetLine struct {
	pin gpio.PinIO
}

// OpenResetLine initializes the periph.io host drivers and binds to the
// named GPIO pin (e.g. "GPIO17").
func OpenResetLine(pinName string) (*ResetLine, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	pin := gpioreg.ByName(pinName)
	if pin == nil {
		return nil, errUnknownPin(pinName)
	}
	if err := pin.Out(gpio.High); err != nil {
		return nil, err
	}
	return &ResetLine{pin: pin}, nil
}

// Pulse drives the reset line low for d, then releases it high again,
// matching an active-low reset input.
func (r *ResetLine) Pulse(d time.Duration) error {
	if err := r.pin.Out(gpio.Low); err != nil {
		return err
	}
	time.Sleep(d)
	return r.pin.Out(gpio.High)
}

type errUnknownPin string

func (e errUnknownPin) Error() string { return "uart: unknown GPIO pin " + string(e) }
