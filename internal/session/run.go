package session

import (
	"github.com/M0rdr3d/psp-apps/internal/addrspace"
	"github.com/M0rdr3d/psp-apps/internal/stuberr"
	"github.com/M0rdr3d/psp-apps/proto/pdu"
)

// Run drives the stub through the beacon phase and then the connected
// dispatch phase indefinitely. It returns only
// on a fatal error (a UART send failure in the connected loop) — the
// caller is expected to treat that as terminal, matching "the stub then
// spins forever" on real hardware (this Go build simply stops rather
// than literally busy-looping, which would serve no purpose off real
// silicon).
func Run(s *StubState) error {
	for !s.Connected {
		if err := beaconOnce(s); err != nil {
			return err
		}
	}
	for {
		if err := dispatchOnce(s); err != nil {
			return err
		}
	}
}

// beaconOnce emits one beacon and waits up to 1000ms for a CONNECT
// request, completing the connect handshake if one arrives.
func beaconOnce(s *StubState) error {
	s.BeaconsSent++
	if err := s.Framer.Send(0, 0, pdu.TagNotifyBeacon, beaconPayload(s.BeaconsSent), s.Timer.Millies()); err != nil {
		return err
	}

	parsed, err := s.Parser.Receive(beaconInterval)
	if err != nil {
		return err
	}
	if parsed == nil {
		return nil // timed out, no PDU yet — beacon again
	}
	if parsed.Header.Tag != pdu.TagReqConnect {
		s.Log.WithField("tag", parsed.Header.Tag).Warn("unexpected PDU before connect, ignoring")
		return nil
	}

	// Setting cPdusSent = 0 immediately before sending guarantees the
	// connect response carries counter 1, restarting the per-session
	// counter sequence at the handshake.
	s.Framer.ResetCounter()
	if err := s.Framer.Send(0, 0, pdu.TagRespConnect, s.connectResponsePayload(), s.Timer.Millies()); err != nil {
		return err
	}
	s.Connected = true
	return nil
}

// dispatchOnce receives one PDU with an indefinite wait and dispatches it
// by tag to the matching address-space proxy, sending exactly one
// response.
func dispatchOnce(s *StubState) error {
	parsed, err := s.Parser.Receive(pdu.Indefinite)
	if err != nil {
		return err
	}
	if parsed == nil {
		return nil
	}

	result := dispatch(s, parsed.Header.Tag, parsed.Payload)
	return s.Framer.Send(result.RC, 0, addrspace.ResponseTag(parsed.Header.Tag), result.Payload, s.Timer.Millies())
}

func dispatch(s *StubState, tag pdu.Tag, payload []byte) addrspace.Result {
	switch tag {
	case pdu.TagReqConnect:
		// A second CONNECT while already connected is accepted and
		// simply re-acknowledged, keeping the single
		// "exactly one response per request" invariant without
		// resetting any session state.
		return addrspace.Result{RC: int32(stuberr.Success), Payload: s.connectResponsePayload()}
	case pdu.TagReqMemRead:
		return addrspace.SRAM(payload, false)
	case pdu.TagReqMemWrite:
		return addrspace.SRAM(payload, true)
	case pdu.TagReqMmioRead:
		return addrspace.MMIO(payload, false)
	case pdu.TagReqMmioWrite:
		return addrspace.MMIO(payload, true)
	case pdu.TagReqSmnRead:
		return addrspace.SMN(s.SMN, payload, false)
	case pdu.TagReqSmnWrite:
		return addrspace.SMN(s.SMN, payload, true)
	case pdu.TagReqX86MemRead:
		return addrspace.X86Mem(s.X86, payload, false)
	case pdu.TagReqX86MemWrite:
		return addrspace.X86Mem(s.X86, payload, true)
	case pdu.TagReqX86MmioRead:
		return addrspace.X86MMIO(s.X86, payload, false)
	case pdu.TagReqX86MmioWrite:
		return addrspace.X86MMIO(s.X86, payload, true)
	default:
		return addrspace.Result{RC: int32(stuberr.InvalidState)}
	}
}
