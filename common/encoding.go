package common

import (
	"math"

	"github.com/squareup/tdcodec/errors"
)

// All multi-byte values on the Teradata wire are little-endian, regardless of the host architecture.
// Readers take a buffer and an offset and return the value together with the offset just past it; they do no bounds
// checking of their own, callers check with CheckAvailable first.

func AppendUint8ToBuffer(buffer []byte, v uint8) []byte {
	return append(buffer, v)
}

func AppendInt8ToBuffer(buffer []byte, v int8) []byte {
	return append(buffer, byte(v))
}

func AppendUint16ToBufferLE(buffer []byte, v uint16) []byte {
	return append(buffer, byte(v), byte(v>>8))
}

func AppendInt16ToBufferLE(buffer []byte, v int16) []byte {
	return AppendUint16ToBufferLE(buffer, uint16(v))
}

func AppendUint32ToBufferLE(buffer []byte, v uint32) []byte {
	return append(buffer, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func AppendInt32ToBufferLE(buffer []byte, v int32) []byte {
	return AppendUint32ToBufferLE(buffer, uint32(v))
}

func AppendUint64ToBufferLE(buffer []byte, v uint64) []byte {
	return append(buffer, byte(v), byte(v>>8), byte(v>>16), byte(v>>24), byte(v>>32),
		byte(v>>40), byte(v>>48), byte(v>>56))
}

func AppendInt64ToBufferLE(buffer []byte, v int64) []byte {
	return AppendUint64ToBufferLE(buffer, uint64(v))
}

func AppendFloat64ToBufferLE(buffer []byte, value float64) []byte {
	return AppendUint64ToBufferLE(buffer, math.Float64bits(value))
}

// AppendStringToBufferLE writes a u16 length followed by the bytes of value.
func AppendStringToBufferLE(buffer []byte, value string) []byte {
	buffer = AppendUint16ToBufferLE(buffer, uint16(len(value)))
	return append(buffer, value...)
}

// AppendBytesToBufferLE writes a u16 length followed by value.
func AppendBytesToBufferLE(buffer []byte, value []byte) []byte {
	buffer = AppendUint16ToBufferLE(buffer, uint16(len(value)))
	return append(buffer, value...)
}

// AppendPadding appends n copies of pad.
func AppendPadding(buffer []byte, pad byte, n int) []byte {
	for i := 0; i < n; i++ {
		buffer = append(buffer, pad)
	}
	return buffer
}

// PutUint16LE overwrites two bytes at offset and returns the number of bytes written.
func PutUint16LE(buffer []byte, offset int, v uint16) int {
	buffer[offset] = byte(v)
	buffer[offset+1] = byte(v >> 8)
	return 2
}

func ReadUint8FromBuffer(buffer []byte, offset int) (uint8, int) {
	return buffer[offset], offset + 1
}

func ReadInt8FromBuffer(buffer []byte, offset int) (int8, int) {
	return int8(buffer[offset]), offset + 1
}

func ReadUint16FromBufferLE(buffer []byte, offset int) (uint16, int) {
	return uint16(buffer[offset]) | uint16(buffer[offset+1])<<8, offset + 2
}

func ReadInt16FromBufferLE(buffer []byte, offset int) (int16, int) {
	u, off := ReadUint16FromBufferLE(buffer, offset)
	return int16(u), off
}

func ReadUint32FromBufferLE(buffer []byte, offset int) (uint32, int) {
	b := buffer[offset : offset+4]
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, offset + 4
}

func ReadInt32FromBufferLE(buffer []byte, offset int) (int32, int) {
	u, off := ReadUint32FromBufferLE(buffer, offset)
	return int32(u), off
}

func ReadUint64FromBufferLE(buffer []byte, offset int) (uint64, int) {
	b := buffer[offset : offset+8]
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v, offset + 8
}

func ReadInt64FromBufferLE(buffer []byte, offset int) (int64, int) {
	u, off := ReadUint64FromBufferLE(buffer, offset)
	return int64(u), off
}

func ReadFloat64FromBufferLE(buffer []byte, offset int) (val float64, off int) {
	var u uint64
	u, offset = ReadUint64FromBufferLE(buffer, offset)
	return math.Float64frombits(u), offset
}

// ReadStringFromBufferLE reads a u16 length and then that many bytes. A zero length gives the empty string.
// The returned string is a copy and does not alias buffer.
func ReadStringFromBufferLE(buffer []byte, offset int) (val string, off int) {
	lu, offset := ReadUint16FromBufferLE(buffer, offset)
	l := int(lu)
	if l == 0 {
		return "", offset
	}
	str := string(buffer[offset : offset+l])
	return str, offset + l
}

// ReadBytesFromBufferLE reads a u16 length and then that many bytes, copied out of buffer.
func ReadBytesFromBufferLE(buffer []byte, offset int) (val []byte, off int) {
	lu, offset := ReadUint16FromBufferLE(buffer, offset)
	l := int(lu)
	b := make([]byte, l)
	copy(b, buffer[offset:offset+l])
	return b, offset + l
}

// CheckAvailable returns a MalformedBuffer error if fewer than n bytes remain in buffer after offset.
func CheckAvailable(buffer []byte, offset int, n int, what string) error {
	if n < 0 || offset < 0 || offset+n > len(buffer) {
		return errors.NewMalformedBufferError("%s needs %d bytes at offset %d, buffer length is %d", what, n, offset, len(buffer))
	}
	return nil
}
