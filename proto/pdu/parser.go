package pdu

import (
	"runtime"
	"time"
)

// Reader is the transport-side capability the parser needs: how many
// bytes are ready without blocking, and a non-blocking best-effort read
// of up to len(buf) bytes. internal/uart.Port satisfies this.
type Reader interface {
	Available() (int, error)
	Read(buf []byte) (int, error)
}

// recvState is the parser's internal state: HDR -> PAYLOAD -> FOOTER -> HDR,
// or HDR -> DISCARD -> HDR when a header is rejected.
type recvState int

const (
	stateHdr recvState = iota
	statePayload
	stateFooter
	stateDiscard
)

// Indefinite is passed to Receive to wait with no time bound, used by the
// session's connected-phase dispatch loop.
const Indefinite time.Duration = -1

// Parsed is a successfully validated, fully received PDU.
type Parsed struct {
	Header  Header
	Payload []byte
}

// Parser is the PDU receive state machine. It
// holds the single receive buffer and the next-expected-counter
// invariant; a caller drives it by repeatedly calling Receive, typically
// from the session's beacon wait or connected dispatch loop.
type Parser struct {
	r   Reader
	now func() time.Time

	state recvState
	buf   []byte
	off   int
	left  int

	recvNext uint32
	ccdCount uint16

	hdr     Header
	payload []byte
}

// NewParser constructs a Parser reading from r. nowFn supplies the
// current time for the timeout bound; production code passes time.Now,
// tests can inject a fake clock.
func NewParser(r Reader, nowFn func() time.Time, ccdCount uint16) *Parser {
	p := &Parser{
		r:        r,
		now:      nowFn,
		buf:      make([]byte, MaxPduSize),
		ccdCount: ccdCount,
		recvNext: 1,
	}
	p.resetToHeader()
	return p
}

func (p *Parser) resetToHeader() {
	p.state = stateHdr
	p.off = 0
	p.left = HeaderSize
}

// Receive pumps the transport until either a fully validated PDU is
// assembled, or bound elapses with no completed PDU ("try again",
// returned as (nil, nil) so callers can distinguish "try later" from a
// hard error). Passing Indefinite waits with no time bound, matching the
// connected phase's "receive PDUs with indefinite wait".
//
// The "elapsed >= bound" predicate is used, with a wrap-safe duration
// comparison via the injected clock's Time.Sub rather than the original source's
// precedence-confused sum of start and current time.
func (p *Parser) Receive(bound time.Duration) (*Parsed, error) {
	start := p.now()
	for {
		if bound >= 0 && p.now().Sub(start) >= bound {
			return nil, nil
		}

		avail, err := p.r.Available()
		if err != nil {
			return nil, err
		}
		if avail > 0 {
			n := avail
			if n > p.left {
				n = p.left
			}
			read, err := p.r.Read(p.buf[p.off : p.off+n])
			if err != nil {
				return nil, err
			}
			p.off += read
			p.left -= read
		} else {
			// Nothing to read yet; yield the host CPU rather than
			// spinning it at 100%. On the real SCP there is no OS
			// scheduler to yield to, so this has no protocol
			// significance — it only keeps a hosted build of this
			// stub civil to share a machine with.
			runtime.Gosched()
		}

		if p.left != 0 {
			continue
		}

		parsed, ok := p.stepComplete()
		if ok {
			if parsed != nil {
				return parsed, nil
			}
			// State advanced (HDR->PAYLOAD or PAYLOAD->FOOTER);
			// keep pumping within the same bound.
			continue
		}
		// Validation failed: the rejected PDU's remaining bytes are
		// being skipped or the parser is back at HDR; keep waiting
		// silently.
	}
}

// stepComplete processes a just-completed state. The bool return is true
// when the state machine made forward progress (either advanced to the
// next state, or validated and returned a finished PDU); it is false
// when a malformed PDU was rejected (its remaining bytes are then
// skipped) or a skip finished and the state reset to HDR.
func (p *Parser) stepComplete() (*Parsed, bool) {
	switch p.state {
	case stateHdr:
		return p.completeHeader()
	case statePayload:
		p.payload = append([]byte(nil), p.buf[:p.hdr.PayloadLen]...)
		p.state = stateFooter
		p.off = 0
		p.left = FooterSize
		return nil, true
	case stateFooter:
		return p.completeFooter()
	case stateDiscard:
		p.resetToHeader()
		return nil, false
	default:
		p.resetToHeader()
		return nil, false
	}
}

func (p *Parser) completeHeader() (*Parsed, bool) {
	h := GetHeader(p.buf[:HeaderSize])

	valid := h.Magic == MagicExtToScpStart &&
		h.PayloadLen <= MaxPayloadSize &&
		h.Tag.IsRequest() &&
		h.Counter == p.recvNext &&
		h.UnitID < p.ccdCount

	if !valid {
		if h.PayloadLen <= MaxPayloadSize {
			// Skip the rejected PDU's payload and footer so the next
			// header is read from the start of the following PDU.
			p.state = stateDiscard
			p.off = 0
			p.left = int(h.PayloadLen) + FooterSize
			return nil, false
		}
		p.resetToHeader()
		return nil, false
	}

	p.hdr = h
	p.off = 0
	if h.PayloadLen > 0 {
		p.state = statePayload
		p.left = int(h.PayloadLen)
	} else {
		p.payload = nil
		p.state = stateFooter
		p.left = FooterSize
	}
	return nil, true
}

func (p *Parser) completeFooter() (*Parsed, bool) {
	ftr := GetFooter(p.buf[:FooterSize])

	hdrBuf := make([]byte, HeaderSize)
	PutHeader(hdrBuf, p.hdr)
	payload := p.payload
	if payload == nil {
		payload = []byte{}
	}

	if Checksum(hdrBuf, payload) != ftr.Checksum || ftr.Magic != MagicExtToScpEnd {
		p.resetToHeader()
		return nil, false
	}

	p.recvNext++
	parsed := &Parsed{Header: p.hdr, Payload: payload}
	p.resetToHeader()
	return parsed, true
}
