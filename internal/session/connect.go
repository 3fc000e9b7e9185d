package session

import (
	"encoding/binary"
	"unsafe"

	"github.com/M0rdr3d/psp-apps/proto/pdu"
)

// connectResponsePayload encodes the CONNECT response body:
// max PDU size, scratch size, scratch address, socket count, and CCDs
// per socket.
func (s *StubState) connectResponsePayload() []byte {
	buf := make([]byte, 4+4+8+4+4)
	binary.LittleEndian.PutUint32(buf[0:4], pdu.MaxPduSize)
	binary.LittleEndian.PutUint32(buf[4:8], ScratchSize)
	binary.LittleEndian.PutUint64(buf[8:16], uint64(s.scratchAddr()))
	binary.LittleEndian.PutUint32(buf[16:20], 1) // sockets
	binary.LittleEndian.PutUint32(buf[20:24], uint32(s.CCDCount))
	return buf
}

// scratchAddr returns the stable local address of the scratch region.
// Because scratch is a fixed-size array embedded directly in StubState,
// its address never changes for the lifetime of the process.
func (s *StubState) scratchAddr() uintptr {
	return uintptr(unsafe.Pointer(&s.scratch[0])) //nolint:gosec
}

// beaconPayload encodes the running beacon counter.
func beaconPayload(count uint32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, count)
	return buf
}
