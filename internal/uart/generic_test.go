package uart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRegisterIO is a minimal 16550-shaped RegisterIO double: THR writes
// append to tx, and rx is drained FIFO-style by RBR reads. The
// transmitter is modeled as always-empty (lsrTHREmpty set) so Write never
// blocks in tests.
type fakeRegisterIO struct {
	tx []byte
	rx []byte
}

func (f *fakeRegisterIO) ReadReg(offset uint32) (byte, error) {
	switch offset {
	case regLSR:
		lsr := byte(lsrTHREmpty)
		if len(f.rx) > 0 {
			lsr |= lsrDataReady
		}
		return lsr, nil
	case regRBR:
		b := f.rx[0]
		f.rx = f.rx[1:]
		return b, nil
	default:
		return 0, nil
	}
}

func (f *fakeRegisterIO) WriteReg(offset uint32, v byte) error {
	if offset == regTHR {
		f.tx = append(f.tx, v)
	}
	return nil
}

func newTestGeneric(t *testing.T) (*Generic, *fakeRegisterIO) {
	t.Helper()
	regs := &fakeRegisterIO{}
	g, err := NewGeneric(regs, Default115200_8N1)
	require.NoError(t, err)
	return g, regs
}

func TestGenericWriteDrivesTHR(t *testing.T) {
	g, regs := newTestGeneric(t)
	n, err := g.Write([]byte("hi"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte("hi"), regs.tx)
}

func TestGenericAvailableAndRead(t *testing.T) {
	g, regs := newTestGeneric(t)
	avail, err := g.Available()
	require.NoError(t, err)
	assert.Equal(t, 0, avail)

	regs.rx = []byte{0xAA, 0xBB}
	avail, err = g.Available()
	require.NoError(t, err)
	assert.Equal(t, 1, avail)

	buf := make([]byte, 4)
	n, err := g.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{0xAA, 0xBB}, buf[:n])
}

func TestNewGenericRejectsUnsupportedLineConfig(t *testing.T) {
	_, err := NewGeneric(&fakeRegisterIO{}, LineConfig{DataBits: 7, StopBits: 1, Parity: "N"})
	assert.Error(t, err)
}
