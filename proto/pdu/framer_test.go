package pdu_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/M0rdr3d/psp-apps/internal/uart"
	"github.com/M0rdr3d/psp-apps/proto/pdu"
)

// TestSendCounterMonotonic verifies counter monotonicity —
// across a run of Sends, and the restart-at-1 behavior after ResetCounter.
func TestSendCounterMonotonic(t *testing.T) {
	port := uart.NewMemUART()
	f := pdu.NewFramer(port)

	for i := 0; i < 3; i++ {
		require.NoError(t, f.Send(0, 0, pdu.TagNotifyBeacon, nil, 0))
	}
	assert.Equal(t, uint32(3), f.Counter())

	f.ResetCounter()
	require.NoError(t, f.Send(0, 0, pdu.TagRespConnect, []byte("ok"), 0))
	assert.Equal(t, uint32(1), f.Counter(), "the first send after ResetCounter must carry counter 1")
}

func TestSendThenParseRoundTrip(t *testing.T) {
	port := uart.NewMemUART()
	f := pdu.NewFramer(port)

	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	require.NoError(t, f.Send(0, 1, pdu.TagRespMemRead, payload, 777))

	wire := port.Out.Bytes()
	require.Len(t, wire, pdu.HeaderSize+len(payload)+pdu.FooterSize)

	hdr := pdu.GetHeader(wire[:pdu.HeaderSize])
	assert.Equal(t, pdu.MagicScpToExtStart, hdr.Magic)
	assert.Equal(t, uint32(len(payload)), hdr.PayloadLen)
	assert.Equal(t, uint32(1), hdr.Counter)
	assert.Equal(t, pdu.TagRespMemRead, hdr.Tag)
	assert.Equal(t, uint16(1), hdr.UnitID)
	assert.Equal(t, uint32(777), hdr.TsMillies)

	gotPayload := wire[pdu.HeaderSize : pdu.HeaderSize+len(payload)]
	assert.Equal(t, payload, gotPayload)

	ftr := pdu.GetFooter(wire[pdu.HeaderSize+len(payload):])
	assert.Equal(t, pdu.MagicScpToExtEnd, ftr.Magic)

	var rawSum uint32
	for _, b := range wire[:pdu.HeaderSize+len(payload)] {
		rawSum += uint32(b)
	}
	assert.Equal(t, uint32(0), rawSum+ftr.Checksum)
}
