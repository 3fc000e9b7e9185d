package uart

import "bytes"

// MemUART is an in-memory Port double used by proto/pdu and
// internal/session tests: writes accumulate in Out, and bytes queued in
// In become available to Read/Available, with no real hardware or
// serial port involved.
type MemUART struct {
	In  bytes.Buffer
	Out bytes.Buffer
}

// NewMemUART returns an empty in-memory port.
func NewMemUART() *MemUART { return &MemUART{} }

// Feed queues bytes for a future Read/Available, simulating bytes
// arriving from the peer.
func (m *MemUART) Feed(p []byte) { m.In.Write(p) }

func (m *MemUART) Write(p []byte) (int, error) { return m.Out.Write(p) }

func (m *MemUART) Available() (int, error) { return m.In.Len(), nil }

func (m *MemUART) Read(p []byte) (int, error) { return m.In.Read(p) }
