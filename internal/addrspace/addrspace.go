// Package addrspace implements the five request/response address-space
// proxies: local SRAM, local MMIO, SMN, x86 memory, and x86 MMIO. Each
// proxy executes one request payload
// and returns the response tag and payload bytes to send; mapping
// lifetime (map before access, unmap before returning on every path,
// including error responses) is handled entirely inside each proxy so
// the session dispatcher never has to reason about it.
//
// Grounded directly on the original C pspStubPduProcess*Xfer handlers,
// generalized into one function per proxy operating over a small shared
// Request/Result shape, the way rcornwell/S370's emu/device backends are
// dispatched to by a single central channel (emu/sys_channel) using a
// uniform read/write contract.
package addrspace

import (
	"encoding/binary"

	"github.com/M0rdr3d/psp-apps/internal/hwreg"
	"github.com/M0rdr3d/psp-apps/internal/mapwin"
	"github.com/M0rdr3d/psp-apps/internal/stuberr"
	"github.com/M0rdr3d/psp-apps/proto/pdu"
)

// Request is the common shape of every address-space transfer request
// payload: a target address, a length, and — for writes — the
// bytes to write appended after the fixed header.
type Request struct {
	Addr  uint64
	Len   uint32
	Write []byte // nil for reads
}

// Result is what a proxy hands back to the session dispatcher to frame
// as a response PDU.
type Result struct {
	RC      int32
	Payload []byte
}

func ok(payload []byte) Result { return Result{RC: int32(stuberr.Success), Payload: payload} }

func fail(err error) Result {
	return Result{RC: int32(stuberr.CodeOf(err)), Payload: nil}
}

// parseRequest decodes the common {u64 addr, u32 len, ...} request
// payload shape.
func parseRequest(payload []byte) (Request, error) {
	if len(payload) < 12 {
		return Request{}, stuberr.New(stuberr.InvalidParameter, "short transfer request payload")
	}
	addr := binary.LittleEndian.Uint64(payload[0:8])
	length := binary.LittleEndian.Uint32(payload[8:12])
	return Request{Addr: addr, Len: length, Write: payload[12:]}, nil
}

// SRAM implements PSP_MEM_READ/WRITE: an unconstrained bulk memcpy to or
// from the raw local address, with no width restriction.
func SRAM(payload []byte, write bool) Result {
	req, err := parseRequest(payload)
	if err != nil {
		return fail(err)
	}
	dst := hwreg.Addr(req.Addr)
	if write {
		if uint32(len(req.Write)) < req.Len {
			return fail(stuberr.New(stuberr.InvalidParameter, "short write payload"))
		}
		hwreg.CopyTo(dst, req.Write[:req.Len])
		return ok(nil)
	}
	buf := make([]byte, req.Len)
	hwreg.CopyFrom(buf, dst)
	return ok(buf)
}

// MMIO implements PSP_MMIO_READ/WRITE: a single width-exact hardware
// access of the raw local address, width constrained to {1,2,4,8}.
func MMIO(payload []byte, write bool) Result {
	req, err := parseRequest(payload)
	if err != nil {
		return fail(err)
	}
	if !hwreg.IsSupportedWidth(req.Len) {
		return fail(stuberr.New(stuberr.InvalidParameter, "unsupported MMIO width %d", req.Len))
	}
	addr := hwreg.Addr(req.Addr)
	if write {
		if err := hwreg.Store(addr, req.Len, req.Write); err != nil {
			return fail(err)
		}
		return ok(nil)
	}
	buf := make([]byte, req.Len)
	if err := hwreg.Load(addr, req.Len, buf); err != nil {
		return fail(err)
	}
	return ok(buf)
}

// SMN implements PSP_SMN_READ/WRITE: map the SMN base through the SMN
// allocator, perform a width-exact access, unmap — on map failure the
// precise mapping error is returned as a response with empty payload
// rather than surfacing as a transport-level exception.
func SMN(window *mapwin.SmnWindow, payload []byte, write bool) Result {
	req, err := parseRequest(payload)
	if err != nil {
		return fail(err)
	}
	if !hwreg.IsSupportedWidth(req.Len) {
		return fail(stuberr.New(stuberr.InvalidParameter, "unsupported SMN width %d", req.Len))
	}

	local, err := window.Map(uint32(req.Addr))
	if err != nil {
		return fail(err)
	}
	defer window.Unmap(local) //nolint:errcheck

	if write {
		if err := hwreg.Store(local, req.Len, req.Write); err != nil {
			return fail(err)
		}
		return ok(nil)
	}
	buf := make([]byte, req.Len)
	if err := hwreg.Load(local, req.Len, buf); err != nil {
		return fail(err)
	}
	return ok(buf)
}

// X86Mem implements PSP_X86_MEM_READ/WRITE: map with memtype Normal, bulk
// memcpy, unmap.
func X86Mem(window *mapwin.X86Window, payload []byte, write bool) Result {
	req, err := parseRequest(payload)
	if err != nil {
		return fail(err)
	}

	local, err := window.Map(req.Addr, mapwin.MemTypeNormal)
	if err != nil {
		return fail(err)
	}
	defer window.Unmap(local) //nolint:errcheck

	if write {
		if uint32(len(req.Write)) < req.Len {
			return fail(stuberr.New(stuberr.InvalidParameter, "short write payload"))
		}
		hwreg.CopyTo(local, req.Write[:req.Len])
		return ok(nil)
	}
	buf := make([]byte, req.Len)
	hwreg.CopyFrom(buf, local)
	return ok(buf)
}

// X86MMIO implements PSP_X86_MMIO_READ/WRITE: map — with memtype Normal,
// matching the original source's apparent quirk, kept here rather than
// silently "fixed" — then a width-exact access, then unmap.
func X86MMIO(window *mapwin.X86Window, payload []byte, write bool) Result {
	req, err := parseRequest(payload)
	if err != nil {
		return fail(err)
	}
	if !hwreg.IsSupportedWidth(req.Len) {
		return fail(stuberr.New(stuberr.InvalidParameter, "unsupported x86 MMIO width %d", req.Len))
	}

	local, err := window.Map(req.Addr, mapwin.MemTypeNormal)
	if err != nil {
		return fail(err)
	}
	defer window.Unmap(local) //nolint:errcheck

	if write {
		if err := hwreg.Store(local, req.Len, req.Write); err != nil {
			return fail(err)
		}
		return ok(nil)
	}
	buf := make([]byte, req.Len)
	if err := hwreg.Load(local, req.Len, buf); err != nil {
		return fail(err)
	}
	return ok(buf)
}

// ResponseTag returns the response tag matching a transfer request tag,
// distinguishing read from write the same way every proxy above does.
func ResponseTag(reqTag pdu.Tag) pdu.Tag { return reqTag.Response() }
