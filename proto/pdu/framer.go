package pdu

import "io"

// Writer is the transport-side capability the framer needs: blocking,
// byte-exact writes. internal/uart.Port satisfies this.
type Writer interface {
	io.Writer
}

// Framer builds and emits outgoing PDUs. It
// owns the strictly monotonic outgoing counter; nothing else in this
// module is allowed to bump it.
type Framer struct {
	w        Writer
	pdusSent uint32
}

// NewFramer wraps w for sending framed PDUs.
func NewFramer(w Writer) *Framer {
	return &Framer{w: w}
}

// ResetCounter sets the outgoing counter back to zero so the very next
// Send carries counter 1 — used immediately before emitting a CONNECT
// response, restarting the per-session counter sequence at the handshake.
func (f *Framer) ResetCounter() { f.pdusSent = 0 }

// Send builds a PDU with the given status code, unit id, tag, and
// payload, stamps it with the current millisecond timestamp, and writes
// header + payload + footer to the transport in one go. Any write error
// is returned verbatim; no partial-frame recovery is attempted.
func (f *Framer) Send(rc int32, unitID uint16, tag Tag, payload []byte, millies uint64) error {
	f.pdusSent++

	h := Header{
		Magic:      MagicScpToExtStart,
		PayloadLen: uint32(len(payload)),
		Counter:    f.pdusSent,
		Tag:        tag,
		UnitID:     unitID,
		RCReq:      rc,
		TsMillies:  uint32(millies),
	}

	hdrBuf := make([]byte, HeaderSize)
	PutHeader(hdrBuf, h)

	checksum := Checksum(hdrBuf, payload)
	ftr := Footer{Checksum: checksum, Magic: MagicScpToExtEnd}
	ftrBuf := make([]byte, FooterSize)
	PutFooter(ftrBuf, ftr)

	if _, err := f.w.Write(hdrBuf); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := f.w.Write(payload); err != nil {
			return err
		}
	}
	if _, err := f.w.Write(ftrBuf); err != nil {
		return err
	}
	return nil
}

// Counter returns the most recently assigned outgoing counter value,
// mainly for tests asserting counter monotonicity.
func (f *Framer) Counter() uint32 { return f.pdusSent }
