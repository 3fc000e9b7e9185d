package session

import (
	"github.com/sirupsen/logrus"

	"github.com/M0rdr3d/psp-apps/internal/logpump"
	"github.com/M0rdr3d/psp-apps/internal/mapwin"
	"github.com/M0rdr3d/psp-apps/internal/timekeeper"
	"github.com/M0rdr3d/psp-apps/internal/uart"
	"github.com/M0rdr3d/psp-apps/proto/pdu"
)

// Bootstrap runs the cold-boot sequence: sentinel-initialize
// both mapping tables, map the x86 UART physical base with MMIO memtype,
// construct the generic UART over that register backend at 115200 8N1,
// start the timekeeper, and bind the logger's flush hook. Any failure
// here is fatal and the caller should not enter Run: timer and
// allocator initialization failures at boot terminate before entering
// the dispatch loop.
func Bootstrap(log *logrus.Logger) (*StubState, error) {
	s := &StubState{
		Log:      log,
		X86:      mapwin.NewX86Window(),
		SMN:      mapwin.NewSmnWindow(),
		CCDCount: 1, // number of detected CCD units; only unit 0 is populated today
	}

	regs, err := uart.NewX86RegisterUART(s.X86)
	if err != nil {
		return nil, err
	}
	generic, err := uart.NewGeneric(regs, uart.Default115200_8N1)
	if err != nil {
		return nil, err
	}
	s.port = generic

	s.Timer = timekeeper.Init()

	s.Framer = pdu.NewFramer(s.port)
	s.Parser = pdu.NewParser(s.port, s.now, s.CCDCount)

	s.hook = logpump.NewHook()
	s.hook.SetSender(func(payload []byte) {
		_ = s.Framer.Send(0, 0, pdu.TagNotifyLogMsg, payload, s.Timer.Millies())
	})
	log.AddHook(s.hook)

	return s, nil
}

// BootstrapOverPort is Bootstrap's test/tooling-facing twin: it skips the
// x86-register UART entirely and drives the session over an arbitrary
// uart.Port (e.g. uart.MemUART in tests, or uart.SerialPort in
// cmd/pspstub when talking to real hardware over USB rather than the
// in-process register window).
func BootstrapOverPort(log *logrus.Logger, port uart.Port) *StubState {
	s := &StubState{
		Log:      log,
		X86:      mapwin.NewX86Window(),
		SMN:      mapwin.NewSmnWindow(),
		CCDCount: 1,
		port:     port,
		Timer:    timekeeper.New(zeroCounter{}),
	}
	s.Framer = pdu.NewFramer(s.port)
	s.Parser = pdu.NewParser(s.port, s.now, s.CCDCount)

	s.hook = logpump.NewHook()
	s.hook.SetSender(func(payload []byte) {
		_ = s.Framer.Send(0, 0, pdu.TagNotifyLogMsg, payload, s.Timer.Millies())
	})
	log.AddHook(s.hook)

	return s
}

// zeroCounter is a Counter that never advances, used when no real 100MHz
// register is available (tests, host tooling): timestamps are still
// monotonic (always 0 then whatever handle() accumulates from a fixed
// delta of 0), they just don't track wall-clock time.
type zeroCounter struct{}

func (zeroCounter) Read() uint32 { return 0 }
