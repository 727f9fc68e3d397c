package kv

import "encoding/binary"

// All multi-byte integer keys are encoded big-endian so that numeric order
// coincides with byte-lexicographic order, which is the only order bbolt
// guarantees.

// PutUint16 appends the big-endian encoding of v to dst.
func PutUint16(dst []byte, v uint16) []byte {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	return append(dst, buf[:]...)
}

// PutUint32 appends the big-endian encoding of v to dst.
func PutUint32(dst []byte, v uint32) []byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	return append(dst, buf[:]...)
}

// PutUint64 appends the big-endian encoding of v to dst.
func PutUint64(dst []byte, v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return append(dst, buf[:]...)
}

// Uint16 decodes a big-endian uint16 from the front of b.
func Uint16(b []byte) uint16 { return binary.BigEndian.Uint16(b) }

// Uint32 decodes a big-endian uint32 from the front of b.
func Uint32(b []byte) uint32 { return binary.BigEndian.Uint32(b) }

// Uint64 decodes a big-endian uint64 from the front of b.
func Uint64(b []byte) uint64 { return binary.BigEndian.Uint64(b) }

// PrefixString appends a length-prefixed string to dst: a big-endian
// uint16 length followed by the raw bytes. Used whenever a variable-length
// string is embedded ahead of more key bytes, so the boundary is
// unambiguous under lexicographic comparison.
func PrefixString(dst []byte, s string) []byte {
	dst = PutUint16(dst, uint16(len(s)))
	return append(dst, s...)
}
