// Package session implements the stub's cold-boot sequence and its two
// run phases — beacon-until-connected and connected dispatch. StubState
// is the single process-wide mutable structure every handler operates
// on, owned by the bootstrap function and passed by reference, avoiding
// hidden globals so test doubles can be substituted — the same
// discipline rcornwell/S370's emu/sys_channel dispatch loop follows by
// threading one *System through every device call instead of reaching
// for package-level state.
package session

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/M0rdr3d/psp-apps/internal/logpump"
	"github.com/M0rdr3d/psp-apps/internal/mapwin"
	"github.com/M0rdr3d/psp-apps/internal/timekeeper"
	"github.com/M0rdr3d/psp-apps/internal/uart"
	"github.com/M0rdr3d/psp-apps/proto/pdu"
)

const (
	// ScratchSize is the size of the scratch staging region advertised
	// to the peer at connect.
	ScratchSize = 16 * 1024

	beaconInterval = 1000 * time.Millisecond
)

// StubState is the stub's entire mutable state. Nothing in this module
// keeps state outside of a StubState value.
type StubState struct {
	Log  *logrus.Logger
	hook *logpump.Hook

	X86 *mapwin.X86Window
	SMN *mapwin.SmnWindow

	Timer *timekeeper.Timekeeper

	port   uart.Port
	Framer *pdu.Framer
	Parser *pdu.Parser

	Connected   bool
	CCDCount    uint16
	BeaconsSent uint32

	scratch [ScratchSize]byte
}

// now returns the stub's monotonic time source for use by pdu.Parser.
// It is a thin wrapper so Parser never has to know about the
// timekeeper's millisecond accumulator; the parser's own receive-timeout
// bound only ever needs wall-clock deltas, which time.Now already gives
// it safely.
func (s *StubState) now() time.Time { return time.Now() }
