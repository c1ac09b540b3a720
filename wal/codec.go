package wal

import "encoding/binary"

const (
	magic       uint32 = 0x56495857 // "VIXW"
	version     uint16 = 1
	headerSize         = 4 + 2 + 1 + 1 + 8 + 4 + 4 + 4 + 8
)

type header struct {
	magic         uint32
	version       uint16
	recType       uint8
	reserved      uint8
	tsMs          int64
	idLen         uint32
	payloadLen    uint32
	errorLen      uint32
	nextRetryAtMs int64
}

// marshal encodes rec as a complete frame: fixed header followed by
// id, payload, and error bytes in that order.
func marshal(rec Record) []byte {
	id := []byte(rec.ID)
	errBytes := []byte(rec.Error)

	buf := make([]byte, headerSize+len(id)+len(rec.Payload)+len(errBytes))

	binary.LittleEndian.PutUint32(buf[0:4], magic)
	binary.LittleEndian.PutUint16(buf[4:6], version)
	buf[6] = byte(rec.Type)
	buf[7] = 0
	binary.LittleEndian.PutUint64(buf[8:16], uint64(rec.TsMs))
	binary.LittleEndian.PutUint32(buf[16:20], uint32(len(id)))
	binary.LittleEndian.PutUint32(buf[20:24], uint32(len(rec.Payload)))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(len(errBytes)))
	binary.LittleEndian.PutUint64(buf[28:36], uint64(rec.NextRetryAtMs))

	off := headerSize
	off += copy(buf[off:], id)
	off += copy(buf[off:], rec.Payload)
	copy(buf[off:], errBytes)

	return buf
}

// unmarshalHeader decodes the fixed-size frame header from buf, which
// must be exactly headerSize bytes. ok is false when magic or version
// do not match, signalling end-of-valid-log to the caller.
func unmarshalHeader(buf []byte) (h header, ok bool) {
	h.magic = binary.LittleEndian.Uint32(buf[0:4])
	h.version = binary.LittleEndian.Uint16(buf[4:6])
	h.recType = buf[6]
	h.reserved = buf[7]
	h.tsMs = int64(binary.LittleEndian.Uint64(buf[8:16]))
	h.idLen = binary.LittleEndian.Uint32(buf[16:20])
	h.payloadLen = binary.LittleEndian.Uint32(buf[20:24])
	h.errorLen = binary.LittleEndian.Uint32(buf[24:28])
	h.nextRetryAtMs = int64(binary.LittleEndian.Uint64(buf[28:36]))

	if h.magic != magic || h.version != version {
		return header{}, false
	}

	return h, true
}
