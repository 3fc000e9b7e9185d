package mapwin

import (
	"github.com/M0rdr3d/psp-apps/internal/hwreg"
	"github.com/M0rdr3d/psp-apps/internal/stuberr"
)

const (
	smnSlotCount  = 32
	smnWindowSize = 1024 * 1024 // 1 MiB granularity
	smnLocalBase  = hwreg.Addr(0x01000000)
	smnCtrlBase   = 0x03220000

	// smnNilBase is the "unused slot" sentinel, which means a
	// legitimate mapping at SMN base 0 cannot be represented; treated as
	// unsupported and documented rather than worked around.
	smnNilBase = 0
)

type smnSlot struct {
	base uint32 // 1 MiB-aligned SMN base, 0 == free
	refs uint32
}

// SmnWindow is the SMN-bus mapping allocator.
// Slots are paired two-to-a-register: even slots occupy the low 16 bits
// of the control word, odd slots the high 16 bits.
type SmnWindow struct {
	slots [smnSlotCount]smnSlot
	regs  hwreg.RegisterAccessor
}

// NewSmnWindow returns an allocator with all slots free, backed by the
// live hardware register accessor.
func NewSmnWindow() *SmnWindow {
	return NewSmnWindowWithAccessor(hwreg.Hardware{})
}

// NewSmnWindowWithAccessor is NewSmnWindow's test-facing twin; see
// NewX86WindowWithAccessor.
func NewSmnWindowWithAccessor(regs hwreg.RegisterAccessor) *SmnWindow {
	return &SmnWindow{regs: regs}
}

// Map finds or creates a slot backing the 1 MiB-aligned window containing
// addr and returns the local pointer for addr within that window.
func (w *SmnWindow) Map(addr uint32) (hwreg.Addr, error) {
	base := addr &^ (smnWindowSize - 1)
	offset := addr - base

	idx := -1
	for i := range w.slots {
		s := &w.slots[i]
		empty := s.base == smnNilBase && s.refs == 0
		match := s.base == base && s.base != smnNilBase
		if empty || match {
			idx = i
			break
		}
	}
	if idx == -1 {
		return 0, stuberr.New(stuberr.InvalidState, "no free SMN mapping slot for base %#x", base)
	}

	s := &w.slots[idx]
	if s.base == smnNilBase {
		s.base = base
		w.programSlot(idx, base)
	}
	s.refs++

	return smnLocalBase + hwreg.Addr(idx)*smnWindowSize + hwreg.Addr(offset), nil
}

// Unmap releases one reference to the mapping backing local.
func (w *SmnWindow) Unmap(local hwreg.Addr) error {
	if local < smnLocalBase {
		return stuberr.New(stuberr.InvalidState, "address %#x below SMN window", local)
	}
	rel := uint64(local - smnLocalBase)
	idx := int(rel / smnWindowSize)
	if idx < 0 || idx >= smnSlotCount {
		return stuberr.New(stuberr.InvalidState, "address %#x outside SMN window", local)
	}

	s := &w.slots[idx]
	if s.refs == 0 {
		return stuberr.New(stuberr.InvalidState, "SMN slot %d already unmapped", idx)
	}
	s.refs--
	if s.refs == 0 {
		w.clearSlot(idx)
		s.base = smnNilBase
	}
	return nil
}

// programSlot read-modify-writes the shared control register for the
// slot pair, ORing in this slot's half.
func (w *SmnWindow) programSlot(idx int, base uint32) {
	reg := hwreg.Addr(smnCtrlBase + (idx/2)*4)
	half := base >> 20
	cur := w.regs.Read32(reg)
	if idx%2 == 0 {
		w.regs.Write32(reg, cur|half)
	} else {
		w.regs.Write32(reg, cur|(half<<16))
	}
}

// clearSlot AND-masks out this slot's half of the shared control
// register, leaving the paired slot's half untouched.
func (w *SmnWindow) clearSlot(idx int) {
	reg := hwreg.Addr(smnCtrlBase + (idx/2)*4)
	cur := w.regs.Read32(reg)
	if idx%2 == 0 {
		w.regs.Write32(reg, cur&0xFFFF0000)
	} else {
		w.regs.Write32(reg, cur&0x0000FFFF)
	}
}
