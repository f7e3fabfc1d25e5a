package fast

import (
	"encoding/binary"
	"errors"
)

// buffer.go provides the bounds-checked byte buffer that backs a character
// header.
//
// Unlike the stream Reader/Writer in stream.go, a Buffer is random access:
// fields are addressed by absolute byte (or bit) offset. The buffer only grows
// through Append/AppendZeros, which are used while the buffer is being
// populated from a file. Every positional write is checked against the current
// length and fails instead of growing the buffer.
//
// All multi-byte values are little-endian.

var (
	// ErrOutOfRange is returned when a read or write touches bytes beyond Len().
	ErrOutOfRange = errors.New("buffer access out of range")
	// ErrBadWidth is returned for integer widths outside 1..8 bytes or bit
	// counts beyond the large read path.
	ErrBadWidth = errors.New("unsupported field width")
)

const (
	// smallReadBits is the widest value the 32-bit window can return for any
	// starting bit inside a byte (32 - 7 shift bits, rounded down to a byte).
	smallReadBits = 24
	// largeReadBits is the same bound for the 64-bit window.
	largeReadBits = 56
)

// Buffer is an owned, growable byte sequence with bounds-checked access.
type Buffer struct {
	buf []byte
}

// NewBuffer returns an empty buffer with the given capacity hint.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{buf: make([]byte, 0, capacity)}
}

// Len returns the number of bytes currently held.
func (b *Buffer) Len() int {
	return len(b.buf)
}

// Bytes returns the underlying bytes. Callers must not modify or retain the
// slice past the next mutation.
func (b *Buffer) Bytes() []byte {
	return b.buf
}

// Clone returns a deep copy backed by a separate array.
func (b *Buffer) Clone() *Buffer {
	cp := make([]byte, len(b.buf), cap(b.buf))
	copy(cp, b.buf)
	return &Buffer{buf: cp}
}

// Append grows the buffer by p.
func (b *Buffer) Append(p []byte) {
	b.buf = append(b.buf, p...)
}

// AppendZeros grows the buffer by n zero bytes.
func (b *Buffer) AppendZeros(n int) {
	for i := 0; i < n; i++ {
		b.buf = append(b.buf, 0)
	}
}

// Reset drops all content but keeps the allocation.
func (b *Buffer) Reset() {
	b.buf = b.buf[:0]
}

func (b *Buffer) inRange(off, n int) bool {
	return off >= 0 && n >= 0 && off+n <= len(b.buf)
}

// ReadBits extracts bitCount bits starting at absolute bit position bitPos
// (bit 0 is the least significant bit of byte 0).
//
// Counts up to 24 bits are served from a 32-bit window, counts up to 56 bits
// from a 64-bit window. Window bytes beyond the end of the buffer are treated
// as zero, so a value ending on the final byte is read without touching memory
// past it.
func (b *Buffer) ReadBits(bitPos, bitCount int) (uint64, error) {
	if bitCount == 0 {
		return 0, nil
	}
	if bitCount < 0 || bitCount > largeReadBits {
		return 0, ErrBadWidth
	}
	if bitPos < 0 || bitPos+bitCount > len(b.buf)*8 {
		return 0, ErrOutOfRange
	}
	start := bitPos / 8
	shift := uint(bitPos % 8)
	mask := uint64(1)<<uint(bitCount) - 1

	if bitCount <= smallReadBits {
		var window [4]byte
		copy(window[:], b.buf[start:])
		v := binary.LittleEndian.Uint32(window[:])
		return (uint64(v) >> shift) & mask, nil
	}
	var window [8]byte
	copy(window[:], b.buf[start:])
	v := binary.LittleEndian.Uint64(window[:])
	return (v >> shift) & mask, nil
}

// ReadUint reads a little-endian unsigned integer of width bytes.
func (b *Buffer) ReadUint(off, width int) (uint64, error) {
	if width < 1 || width > 8 {
		return 0, ErrBadWidth
	}
	if !b.inRange(off, width) {
		return 0, ErrOutOfRange
	}
	var v uint64
	for i := width - 1; i >= 0; i-- {
		v = v<<8 | uint64(b.buf[off+i])
	}
	return v, nil
}

// ReadBytes returns a copy of n bytes at off.
func (b *Buffer) ReadBytes(off, n int) ([]byte, error) {
	if !b.inRange(off, n) {
		return nil, ErrOutOfRange
	}
	out := make([]byte, n)
	copy(out, b.buf[off:off+n])
	return out, nil
}

// WriteUint stores the low width bytes of v at off, little-endian.
func (b *Buffer) WriteUint(off, width int, v uint64) error {
	if width < 1 || width > 8 {
		return ErrBadWidth
	}
	if !b.inRange(off, width) {
		return ErrOutOfRange
	}
	for i := 0; i < width; i++ {
		b.buf[off+i] = byte(v)
		v >>= 8
	}
	return nil
}

// WriteBytes copies p to off.
func (b *Buffer) WriteBytes(off int, p []byte) error {
	if !b.inRange(off, len(p)) {
		return ErrOutOfRange
	}
	copy(b.buf[off:], p)
	return nil
}

// Fill sets n bytes at off to v.
func (b *Buffer) Fill(off, n int, v byte) error {
	if !b.inRange(off, n) {
		return ErrOutOfRange
	}
	for i := off; i < off+n; i++ {
		b.buf[i] = v
	}
	return nil
}
