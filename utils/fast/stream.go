package fast

import "errors"

// stream.go provides the sequential side of the package: an append-only Writer
// used as the byte sink handed to section codecs while a save image is being
// assembled, and a cursor Reader used by those codecs to consume their segment.
//
// The Reader never panics on truncated input; it reports ErrShortRead and
// leaves the cursor where it was, so a section codec can turn a short file into
// its own error kind.

// ErrShortRead is returned when fewer bytes remain than were requested.
var ErrShortRead = errors.New("unexpected end of data")

type Reader struct {
	// buf is the underlying data source.
	buf []byte
	// offset tracks the current reading position (cursor).
	offset int
}

type Writer struct {
	// buf is the accumulating byte slice.
	buf []byte
}

// NewReader creates a Reader to consume the provided byte slice.
func NewReader(bb []byte) *Reader {
	return &Reader{
		buf:    bb,
		offset: 0,
	}
}

// NewWriter creates a Writer that appends to the provided initial slice.
// Often called with `make([]byte, 0, capacity)` to pre-allocate memory.
func NewWriter(bb []byte) *Writer {
	return &Writer{
		buf: bb,
	}
}

// WriteByte appends a single byte to the buffer.
func (b *Writer) WriteByte(v byte) {
	b.buf = append(b.buf, v)
}

// Write appends a slice of bytes (bulk write) to the buffer.
func (b *Writer) Write(v []byte) {
	b.buf = append(b.buf, v...)
}

// WriteUint16 appends v little-endian.
func (b *Writer) WriteUint16(v uint16) {
	b.buf = append(b.buf, byte(v), byte(v>>8))
}

// WriteUint32 appends v little-endian.
func (b *Writer) WriteUint32(v uint32) {
	b.buf = append(b.buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

// Len returns the number of bytes written so far.
func (b *Writer) Len() int {
	return len(b.buf)
}

// Bytes returns the accumulated content of the Writer.
func (b *Writer) Bytes() []byte {
	return b.buf
}

// Read consumes the next n bytes and returns a copy of them.
func (b *Reader) Read(n int) ([]byte, error) {
	if n < 0 || b.offset+n > len(b.buf) {
		return nil, ErrShortRead
	}
	res := make([]byte, n)
	copy(res, b.buf[b.offset:b.offset+n])
	b.offset += n
	return res, nil
}

// ReadByte consumes and returns a single byte.
func (b *Reader) ReadByte() (byte, error) {
	if b.offset >= len(b.buf) {
		return 0, ErrShortRead
	}
	res := b.buf[b.offset]
	b.offset++
	return res, nil
}

// ReadUint16 consumes a little-endian uint16.
func (b *Reader) ReadUint16() (uint16, error) {
	if b.offset+2 > len(b.buf) {
		return 0, ErrShortRead
	}
	v := uint16(b.buf[b.offset]) | uint16(b.buf[b.offset+1])<<8
	b.offset += 2
	return v, nil
}

// ReadUint32 consumes a little-endian uint32.
func (b *Reader) ReadUint32() (uint32, error) {
	if b.offset+4 > len(b.buf) {
		return 0, ErrShortRead
	}
	v := uint32(b.buf[b.offset]) |
		uint32(b.buf[b.offset+1])<<8 |
		uint32(b.buf[b.offset+2])<<16 |
		uint32(b.buf[b.offset+3])<<24
	b.offset += 4
	return v, nil
}

// Expect consumes len(marker) bytes and reports whether they equal marker.
// On mismatch or short input the cursor is not moved.
func (b *Reader) Expect(marker string) bool {
	if b.offset+len(marker) > len(b.buf) {
		return false
	}
	if string(b.buf[b.offset:b.offset+len(marker)]) != marker {
		return false
	}
	b.offset += len(marker)
	return true
}

// Position returns the current cursor index of the Reader.
func (b *Reader) Position() int {
	return b.offset
}

// Remaining returns the number of unread bytes.
func (b *Reader) Remaining() int {
	return len(b.buf) - b.offset
}

// Rest returns the unread bytes without copying or advancing.
func (b *Reader) Rest() []byte {
	return b.buf[b.offset:]
}

// Empty checks if the Reader has reached the end of the buffer.
func (b *Reader) Empty() bool {
	return len(b.buf) == b.offset
}
