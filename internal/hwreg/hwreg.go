// Package hwreg provides the small set of volatile, width-exact register
// accessors every hardware-facing package in this module builds on.
//
// The SCP's peripherals care about access width: a 4-byte load where the
// device expects two 2-byte loads is observably different hardware
// behaviour, not just a style choice. Every helper here issues exactly
// one load or store of the requested width and never decomposes or
// combines adjacent accesses, mirroring the original stub's
// pspStubMmioAccess() switch.
package hwreg

import (
	"unsafe"

	"github.com/M0rdr3d/psp-apps/internal/stuberr"
)

// Addr is a local (SCP) virtual/physical address as seen by this process.
// It is always a raw integer, never a Go pointer, because the life of a
// hardware mapping is controlled by mapwin, not by the garbage collector.
type Addr uintptr

// Read32 reads one 32-bit register, volatile, single access.
//
//go:nosplit
func Read32(addr Addr) uint32 {
	return *(*uint32)(unsafe.Pointer(addr)) //nolint:gosec
}

// Write32 writes one 32-bit register, volatile, single access.
//
//go:nosplit
func Write32(addr Addr, v uint32) {
	*(*uint32)(unsafe.Pointer(addr)) = v //nolint:gosec
}

// Load reads width bytes (1/2/4/8) from addr into a freshly sized byte
// slice, volatile and single-width. Used by the width-constrained proxies
// (MMIO, SMN, x86 MMIO) to stage a response payload on the stack-sized
// scratch the caller provides.
//
//go:nosplit
func Load(addr Addr, width uint32, out []byte) error {
	if len(out) < int(width) {
		return stuberr.New(stuberr.InvalidState, "short output buffer for width %d", width)
	}
	switch width {
	case 1:
		out[0] = *(*uint8)(unsafe.Pointer(addr)) //nolint:gosec
	case 2:
		*(*uint16)(unsafe.Pointer(&out[0])) = *(*uint16)(unsafe.Pointer(addr)) //nolint:gosec
	case 4:
		*(*uint32)(unsafe.Pointer(&out[0])) = *(*uint32)(unsafe.Pointer(addr)) //nolint:gosec
	case 8:
		*(*uint64)(unsafe.Pointer(&out[0])) = *(*uint64)(unsafe.Pointer(addr)) //nolint:gosec
	default:
		return stuberr.New(stuberr.InvalidState, "unsupported access width %d", width)
	}
	return nil
}

// Store writes width bytes (1/2/4/8) from in to addr, volatile and
// single-width.
//
//go:nosplit
func Store(addr Addr, width uint32, in []byte) error {
	if len(in) < int(width) {
		return stuberr.New(stuberr.InvalidState, "short input buffer for width %d", width)
	}
	switch width {
	case 1:
		*(*uint8)(unsafe.Pointer(addr)) = in[0] //nolint:gosec
	case 2:
		*(*uint16)(unsafe.Pointer(addr)) = *(*uint16)(unsafe.Pointer(&in[0])) //nolint:gosec
	case 4:
		*(*uint32)(unsafe.Pointer(addr)) = *(*uint32)(unsafe.Pointer(&in[0])) //nolint:gosec
	case 8:
		*(*uint64)(unsafe.Pointer(addr)) = *(*uint64)(unsafe.Pointer(&in[0])) //nolint:gosec
	default:
		return stuberr.New(stuberr.InvalidState, "unsupported access width %d", width)
	}
	return nil
}

// CopyTo bulk-copies src into the local address space starting at dst,
// unconstrained by access width (used by the SRAM and x86-memory
// proxies, which have no width requirement).
func CopyTo(dst Addr, src []byte) {
	if len(src) == 0 {
		return
	}
	out := unsafe.Slice((*byte)(unsafe.Pointer(dst)), len(src)) //nolint:gosec
	copy(out, src)
}

// CopyFrom bulk-copies len(dst) bytes from the local address space
// starting at src into dst.
func CopyFrom(dst []byte, src Addr) {
	if len(dst) == 0 {
		return
	}
	in := unsafe.Slice((*byte)(unsafe.Pointer(src)), len(dst)) //nolint:gosec
	copy(dst, in)
}

// IsSupportedWidth reports whether w is one of the widths the hardware
// proxies may use for a single access.
func IsSupportedWidth(w uint32) bool {
	switch w {
	case 1, 2, 4, 8:
		return true
	default:
		return false
	}
}

// RegisterAccessor is the narrow control-register read/write capability
// mapwin's allocators program slots through. Splitting it out from the
// package-level Read32/Write32 lets the allocators' slot-selection logic
// run against a fake in tests instead of issuing real volatile accesses
// against physical control-register addresses that only exist on actual
// SCP silicon.
type RegisterAccessor interface {
	Read32(addr Addr) uint32
	Write32(addr Addr, v uint32)
}

// Hardware is the live RegisterAccessor, backed directly by Read32/Write32.
type Hardware struct{}

func (Hardware) Read32(addr Addr) uint32     { return Read32(addr) }
func (Hardware) Write32(addr Addr, v uint32) { Write32(addr, v) }
