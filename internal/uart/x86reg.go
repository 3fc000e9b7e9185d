package uart

import (
	"github.com/M0rdr3d/psp-apps/internal/hwreg"
	"github.com/M0rdr3d/psp-apps/internal/mapwin"
	"github.com/M0rdr3d/psp-apps/internal/stuberr"
)

// X86UartPhysBase is the x86 physical address of the SoC's legacy UART.
const X86UartPhysBase uint64 = 0xFFFDFC0003F8

// X86RegisterUART is the concrete device-I/O backend for the x86 legacy
// UART, mapped through the x86 window allocator. It implements
// RegisterIO by issuing exactly one volatile byte access per call,
// translated directly from the original pspStubX86UartRegRead/Write.
type X86RegisterUART struct {
	window *mapwin.X86Window
	base   hwreg.Addr
}

// NewX86RegisterUART maps the UART's physical base with MMIO memtype and
// returns a ready RegisterIO. The caller owns the returned mapping's
// lifetime and should Close it on shutdown (the stub itself never does,
// since the mapping lives for the process lifetime once connected).
func NewX86RegisterUART(window *mapwin.X86Window) (*X86RegisterUART, error) {
	local, err := window.Map(X86UartPhysBase, mapwin.MemTypeMMIO)
	if err != nil {
		return nil, err
	}
	return &X86RegisterUART{window: window, base: local}, nil
}

// Close releases the UART's mapping.
func (u *X86RegisterUART) Close() error {
	return u.window.Unmap(u.base)
}

// ReadReg reads exactly one byte from the UART register at offset.
func (u *X86RegisterUART) ReadReg(offset uint32) (byte, error) {
	buf := make([]byte, 1)
	if err := hwreg.Load(u.base+hwreg.Addr(offset), 1, buf); err != nil {
		return 0, stuberr.New(stuberr.InvalidState, "uart register read: %w", err)
	}
	return buf[0], nil
}

// WriteReg writes exactly one byte to the UART register at offset.
func (u *X86RegisterUART) WriteReg(offset uint32, v byte) error {
	if err := hwreg.Store(u.base+hwreg.Addr(offset), 1, []byte{v}); err != nil {
		return stuberr.New(stuberr.InvalidState, "uart register write: %w", err)
	}
	return nil
}
