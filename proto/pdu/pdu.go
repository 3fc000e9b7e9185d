// Package pdu implements the checksum-protected binary PDU framing that
// carries every request, response, and notification between the stub and
// its peer. It is one self-contained package per
// protocol concern, with its own constants and wire-layout banner, kept
// free of any dependency on the session or address-space packages above
// it.
package pdu

import "encoding/binary"

// Magic constants. EXT->SCP and SCP->EXT pairs are distinct so a
// direction confusion can never be mistaken for a valid frame.
const (
	MagicExtToScpStart uint32 = 0x53505845 // "EXPS" — EXT->SCP start
	MagicExtToScpEnd   uint32 = 0x45505845 // "EXPE" — EXT->SCP end
	MagicScpToExtStart uint32 = 0x53504558 // "XEPS" — SCP->EXT start
	MagicScpToExtEnd   uint32 = 0x45504558 // "XEPE" — SCP->EXT end
)

// Tag enumerates the request/response/notification PDU kinds.
// Request tags are contiguous starting at 1; each has a matching response
// tag offset by respTagOffset.
type Tag uint16

const (
	TagInvalid Tag = 0

	TagReqConnect      Tag = 1
	TagReqMemRead      Tag = 2
	TagReqMemWrite     Tag = 3
	TagReqMmioRead     Tag = 4
	TagReqMmioWrite    Tag = 5
	TagReqSmnRead      Tag = 6
	TagReqSmnWrite     Tag = 7
	TagReqX86MemRead   Tag = 8
	TagReqX86MemWrite  Tag = 9
	TagReqX86MmioRead  Tag = 10
	TagReqX86MmioWrite Tag = 11

	reqTagFirst = TagReqConnect
	reqTagLast  = TagReqX86MmioWrite

	respTagOffset = 0x100

	TagRespConnect      Tag = TagReqConnect + respTagOffset
	TagRespMemRead      Tag = TagReqMemRead + respTagOffset
	TagRespMemWrite     Tag = TagReqMemWrite + respTagOffset
	TagRespMmioRead     Tag = TagReqMmioRead + respTagOffset
	TagRespMmioWrite    Tag = TagReqMmioWrite + respTagOffset
	TagRespSmnRead      Tag = TagReqSmnRead + respTagOffset
	TagRespSmnWrite     Tag = TagReqSmnWrite + respTagOffset
	TagRespX86MemRead   Tag = TagReqX86MemRead + respTagOffset
	TagRespX86MemWrite  Tag = TagReqX86MemWrite + respTagOffset
	TagRespX86MmioRead  Tag = TagReqX86MmioRead + respTagOffset
	TagRespX86MmioWrite Tag = TagReqX86MmioWrite + respTagOffset

	// Notifications live in their own range, never validated as a
	// received request tag.
	TagNotifyBeacon Tag = 0x200
	TagNotifyLogMsg Tag = 0x201
)

// IsRequest reports whether tag falls in the contiguous request range.
func (t Tag) IsRequest() bool { return t >= reqTagFirst && t <= reqTagLast }

// Response returns the response tag matching a request tag.
func (t Tag) Response() Tag { return t + respTagOffset }

const (
	// HeaderSize is the wire size of Header in bytes. The protocol
	// description's stated "20 bytes" undercounts its own field table
	// (magic, length, counter, tag, unit id, status, timestamp sum to 24),
	// and leaves the exact layout to the implementer as long as the
	// checksum is computed over the header as actually laid out. This
	// implementation keeps every listed field, including the timestamp,
	// in the header proper.
	HeaderSize = 24
	// FooterSize is the wire size of Footer in bytes.
	FooterSize = 8
	// MaxPduSize is the maximum total wire size of one PDU.
	MaxPduSize = 4096
	// MaxPayloadSize is the largest payload that still fits within
	// MaxPduSize alongside a header and footer.
	MaxPayloadSize = MaxPduSize - HeaderSize - FooterSize
)

// Header is the fixed 24-byte PDU header, wire order little-endian.
type Header struct {
	Magic      uint32
	PayloadLen uint32
	Counter    uint32
	Tag        Tag
	UnitID     uint16
	RCReq      int32
	TsMillies  uint32
}

// Footer is the fixed 8-byte PDU footer.
type Footer struct {
	Checksum uint32
	Magic    uint32
}

// PutHeader writes h into buf[0:HeaderSize] in wire order.
func PutHeader(buf []byte, h Header) {
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], h.PayloadLen)
	binary.LittleEndian.PutUint32(buf[8:12], h.Counter)
	binary.LittleEndian.PutUint16(buf[12:14], uint16(h.Tag))
	binary.LittleEndian.PutUint16(buf[14:16], h.UnitID)
	binary.LittleEndian.PutUint32(buf[16:20], uint32(h.RCReq))
	binary.LittleEndian.PutUint32(buf[20:24], h.TsMillies)
}

// GetHeader reads a Header out of buf[0:HeaderSize].
func GetHeader(buf []byte) Header {
	return Header{
		Magic:      binary.LittleEndian.Uint32(buf[0:4]),
		PayloadLen: binary.LittleEndian.Uint32(buf[4:8]),
		Counter:    binary.LittleEndian.Uint32(buf[8:12]),
		Tag:        Tag(binary.LittleEndian.Uint16(buf[12:14])),
		UnitID:     binary.LittleEndian.Uint16(buf[14:16]),
		RCReq:      int32(binary.LittleEndian.Uint32(buf[16:20])),
		TsMillies:  binary.LittleEndian.Uint32(buf[20:24]),
	}
}

// PutFooter writes f into buf[0:FooterSize] in wire order.
func PutFooter(buf []byte, f Footer) {
	binary.LittleEndian.PutUint32(buf[0:4], f.Checksum)
	binary.LittleEndian.PutUint32(buf[4:8], f.Magic)
}

// GetFooter reads a Footer out of buf[0:FooterSize].
func GetFooter(buf []byte) Footer {
	return Footer{
		Checksum: binary.LittleEndian.Uint32(buf[0:4]),
		Magic:    binary.LittleEndian.Uint32(buf[4:8]),
	}
}

// Checksum computes the two's-complement value such that the unsigned
// sum of every byte in header and payload, plus the checksum itself,
// equals zero modulo 2^32.
func Checksum(header, payload []byte) uint32 {
	var sum uint32
	for _, b := range header {
		sum += uint32(b)
	}
	for _, b := range payload {
		sum += uint32(b)
	}
	return (0xFFFFFFFF - sum) + 1
}
