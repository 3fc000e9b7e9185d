package pdu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{
		Magic:      MagicExtToScpStart,
		PayloadLen: 16,
		Counter:    42,
		Tag:        TagReqMemWrite,
		UnitID:     1,
		RCReq:      -2,
		TsMillies:  123456,
	}
	buf := make([]byte, HeaderSize)
	PutHeader(buf, h)
	assert.Equal(t, h, GetHeader(buf))
}

func TestFooterRoundTrip(t *testing.T) {
	f := Footer{Checksum: 0xDEADBEEF, Magic: MagicExtToScpEnd}
	buf := make([]byte, FooterSize)
	PutFooter(buf, f)
	assert.Equal(t, f, GetFooter(buf))
}

// TestChecksumIdentity verifies the checksum identity: the sum of
// every header and payload byte, plus the checksum itself, is 0 mod 2^32.
func TestChecksumIdentity(t *testing.T) {
	header := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	payload := []byte{0xAA, 0xBB, 0xCC}

	checksum := Checksum(header, payload)

	var sum uint32
	for _, b := range header {
		sum += uint32(b)
	}
	for _, b := range payload {
		sum += uint32(b)
	}
	sum += checksum
	assert.Equal(t, uint32(0), sum)
}

func TestChecksumEmptyPayload(t *testing.T) {
	header := make([]byte, HeaderSize)
	checksum := Checksum(header, nil)
	assert.Equal(t, uint32(0), checksum, "an all-zero header with no payload checksums to zero")
}

func TestTagIsRequest(t *testing.T) {
	assert.True(t, TagReqConnect.IsRequest())
	assert.True(t, TagReqX86MmioWrite.IsRequest())
	assert.False(t, TagInvalid.IsRequest())
	assert.False(t, TagRespConnect.IsRequest())
	assert.False(t, TagNotifyBeacon.IsRequest())
}

func TestTagResponse(t *testing.T) {
	assert.Equal(t, TagRespConnect, TagReqConnect.Response())
	assert.Equal(t, TagRespX86MmioWrite, TagReqX86MmioWrite.Response())
}
