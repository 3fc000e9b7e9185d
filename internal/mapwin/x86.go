// Package mapwin implements the two reference-counted hardware mapping
// window allocators the stub uses to reach outside its own local address
// space: a 15-slot, 64 MiB-granular window into host x86 physical memory,
// and a 32-slot, 1 MiB-granular window into the SoC-internal SMN bus.
//
// Both allocators share the same contract (Map/Unmap, first-match linear
// probe over a fixed slot table); they are kept as
// two concrete types rather than one generic one because their control
// register layouts differ enough (four 32-bit words vs. one packed
// half-word per slot pair) that a shared abstraction would hide more than
// it would save.
package mapwin

import (
	"github.com/M0rdr3d/psp-apps/internal/hwreg"
	"github.com/M0rdr3d/psp-apps/internal/stuberr"
)

// MemType is the x86 mapping memory-type tag programmed into the slot
// control registers.
type MemType uint32

const (
	// MemTypeNormal marks a mapping as regular cacheable memory.
	MemTypeNormal MemType = 4
	// MemTypeMMIO marks a mapping as device/MMIO space.
	MemTypeMMIO MemType = 6
)

const (
	x86SlotCount  = 15
	x86WindowSize = 64 * 1024 * 1024 // 64 MiB granularity
	x86LocalBase  = hwreg.Addr(0x04000000)

	x86CtrlBase = 0x03230000 // 4 words (16 bytes) per slot
	x86MaskBase = 0x032303e0
	x86AttrBase = 0x032304d8

	// nilX86Addr is the sentinel meaning "this slot is unused". It is all
	// ones, which no 64 MiB-aligned base can equal, so the sentinel never
	// aliases a live mapping (base 0 is an ordinary mapping).
	nilX86Addr = ^uint64(0)
)

type x86Slot struct {
	base    uint64
	memType MemType
	refs    uint32
}

// X86Window is the x86-physical-address mapping allocator.
type X86Window struct {
	slots [x86SlotCount]x86Slot
	regs  hwreg.RegisterAccessor
}

// NewX86Window returns an allocator with all slots sentinel/empty, backed
// by the live hardware register accessor.
func NewX86Window() *X86Window {
	return NewX86WindowWithAccessor(hwreg.Hardware{})
}

// NewX86WindowWithAccessor is NewX86Window's test-facing twin: it lets
// callers substitute a fake RegisterAccessor so slot-selection and
// refcounting logic can be exercised without touching real control
// registers.
func NewX86WindowWithAccessor(regs hwreg.RegisterAccessor) *X86Window {
	w := &X86Window{regs: regs}
	for i := range w.slots {
		w.slots[i].base = nilX86Addr
	}
	return w
}

// Map finds or creates a slot backing the 64 MiB-aligned window
// containing addr with the given memory type, programs the slot's
// control registers on first use, and returns the local pointer
// corresponding to addr within that window.
func (w *X86Window) Map(addr uint64, memType MemType) (hwreg.Addr, error) {
	base := addr &^ (x86WindowSize - 1)
	offset := addr - base

	idx := -1
	for i := range w.slots {
		s := &w.slots[i]
		empty := s.base == nilX86Addr && s.refs == 0
		match := s.base == base && s.memType == memType
		if empty || match {
			idx = i
			break
		}
	}
	if idx == -1 {
		return 0, stuberr.New(stuberr.InvalidState, "no free x86 mapping slot for base %#x", base)
	}

	s := &w.slots[idx]
	if s.base == nilX86Addr {
		s.base = base
		s.memType = memType
		w.programSlot(idx, base, memType)
	}
	s.refs++

	return x86LocalBase + hwreg.Addr(idx)*x86WindowSize + hwreg.Addr(offset), nil
}

// Unmap releases one reference to the mapping backing local. On the last
// release the slot's control registers are cleared and the slot becomes
// available for reuse.
func (w *X86Window) Unmap(local hwreg.Addr) error {
	if local < x86LocalBase {
		return stuberr.New(stuberr.InvalidState, "address %#x below x86 window", local)
	}
	rel := uint64(local - x86LocalBase)
	idx := int(rel / x86WindowSize)
	if idx < 0 || idx >= x86SlotCount {
		return stuberr.New(stuberr.InvalidState, "address %#x outside x86 window", local)
	}

	s := &w.slots[idx]
	if s.refs == 0 {
		return stuberr.New(stuberr.InvalidState, "x86 slot %d already unmapped", idx)
	}
	s.refs--
	if s.refs == 0 {
		w.clearSlot(idx)
		s.base = nilX86Addr
		s.memType = 0
	}
	return nil
}

func (w *X86Window) programSlot(idx int, base uint64, memType MemType) {
	slotAddr := hwreg.Addr(x86CtrlBase + idx*16)
	w.regs.Write32(slotAddr, uint32((base>>32)<<6)|uint32((base>>26)&0x3f))
	w.regs.Write32(slotAddr+4, 0x12) // reserved literal required by the hardware
	w.regs.Write32(slotAddr+8, uint32(memType))
	w.regs.Write32(slotAddr+12, uint32(memType))
	w.regs.Write32(hwreg.Addr(x86MaskBase+idx*4), 0xFFFFFFFF)
	w.regs.Write32(hwreg.Addr(x86AttrBase+idx*4), 0xC0000000)
}

func (w *X86Window) clearSlot(idx int) {
	slotAddr := hwreg.Addr(x86CtrlBase + idx*16)
	w.regs.Write32(slotAddr, 0)
	w.regs.Write32(slotAddr+4, 0)
	w.regs.Write32(slotAddr+8, 0)
	w.regs.Write32(slotAddr+12, 0)
	w.regs.Write32(hwreg.Addr(x86AttrBase+idx*4), 0)
	w.regs.Write32(hwreg.Addr(x86MaskBase+idx*4), 0xFFFFFFFF)
}
