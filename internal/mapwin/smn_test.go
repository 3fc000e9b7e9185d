package mapwin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/M0rdr3d/psp-apps/internal/hwreg"
)

func TestSmnMapReuse(t *testing.T) {
	regs := newFakeRegs()
	w := NewSmnWindowWithAccessor(regs)

	first, err := w.Map(0x04000000)
	require.NoError(t, err)
	writesAfterFirst := regs.writeCount

	second, err := w.Map(0x04000000)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, writesAfterFirst, regs.writeCount)
	assert.Equal(t, uint32(2), w.slots[0].refs)

	require.NoError(t, w.Unmap(first))
	require.NoError(t, w.Unmap(second))
	assert.Equal(t, uint32(0), w.slots[0].base)
}

// TestSmnMapExhaustion is spec scenario 3 ("SMN mapping exhaustion"):
// the first 32 distinct bases succeed, the 33rd fails with
// INVALID_STATE, and none of the held slots are disturbed by the
// failed attempt.
func TestSmnMapExhaustion(t *testing.T) {
	regs := newFakeRegs()
	w := NewSmnWindowWithAccessor(regs)

	for i := 0; i < smnSlotCount; i++ {
		_, err := w.Map(uint32(i) * smnWindowSize)
		require.NoError(t, err, "slot %d should still be available", i)
	}

	before := w.slots
	_, err := w.Map(uint32(smnSlotCount) * smnWindowSize)
	require.Error(t, err)
	assert.Equal(t, before, w.slots)
}

// TestSmnSlotPairingSharesControlRegister verifies two adjacent slots
// pack into one 32-bit control register, low half then high half, and
// that clearing one half leaves the other intact.
func TestSmnSlotPairingSharesControlRegister(t *testing.T) {
	regs := newFakeRegs()
	w := NewSmnWindowWithAccessor(regs)

	lowLocal, err := w.Map(0x00100000) // slot 0, low half
	require.NoError(t, err)
	highLocal, err := w.Map(0x00200000) // slot 1, high half
	require.NoError(t, err)
	assert.NotEqual(t, lowLocal, highLocal)

	reg := hwreg.Addr(smnCtrlBase)
	cur := regs.values[reg]
	assert.Equal(t, uint32(0x00100000)>>20, cur&0xFFFF, "low slot half")
	assert.Equal(t, uint32(0x00200000)>>20, (cur>>16)&0xFFFF, "high slot half")

	require.NoError(t, w.Unmap(lowLocal))
	cur = regs.values[reg]
	assert.Equal(t, uint32(0), cur&0xFFFF, "clearing the low slot must not touch the high half")
	assert.Equal(t, uint32(0x00200000)>>20, (cur>>16)&0xFFFF)
}
