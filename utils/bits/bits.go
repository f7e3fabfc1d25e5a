package bits

import "errors"

// This package implements the LSB-first bit stream used by the character
// attribute list: each attribute is a 9-bit id followed by a value whose width
// depends on the id, packed back to back with no byte alignment.
//
// Bits are filled from the least significant bit of each byte upwards, and a
// value's low bits are written first. The final partial byte is zero padded.

// ErrEndOfStream is returned when a read asks for more bits than remain.
var ErrEndOfStream = errors.New("bit stream exhausted")

// MaxWidth is the widest value a single Read or Write handles.
const MaxWidth = 64

type (
	// Array is a container for the underlying byte slice that holds the bitstream.
	Array struct {
		Bytes []byte
	}

	// Writer appends variable numbers of bits to an Array.
	Writer struct {
		*Array
		bitOffset int // 0-7: index of the next bit to write in Bytes[last]
	}

	// Reader consumes variable numbers of bits from an Array.
	Reader struct {
		*Array
		byteOffset int
		bitOffset  int
	}
)

// NewWriter creates a new bitstream writer pointing to the given array.
func NewWriter(arr *Array) *Writer {
	return &Writer{
		Array: arr,
	}
}

// NewReader creates a new bitstream reader pointing to the given array.
func NewReader(arr *Array) *Reader {
	return &Reader{
		Array: arr,
	}
}

func lowBits(v uint64, n int) uint64 {
	if n >= 64 {
		return v
	}
	return v & (uint64(1)<<uint(n) - 1)
}

// Write appends the lowest n bits of v.
func (a *Writer) Write(n int, v uint64) {
	v = lowBits(v, n)
	for n > 0 {
		if a.bitOffset == 0 {
			a.Bytes = append(a.Bytes, 0)
		}
		free := 8 - a.bitOffset
		chunk := n
		if chunk > free {
			chunk = free
		}
		a.Bytes[len(a.Bytes)-1] |= byte(lowBits(v, chunk) << uint(a.bitOffset))
		v >>= uint(chunk)
		n -= chunk
		a.bitOffset = (a.bitOffset + chunk) % 8
	}
}

// BitLen returns the number of bits written so far.
func (a *Writer) BitLen() int {
	if a.bitOffset == 0 {
		return len(a.Bytes) * 8
	}
	return (len(a.Bytes)-1)*8 + a.bitOffset
}

// Read extracts n bits and advances the cursor. On ErrEndOfStream the cursor
// is left untouched.
func (a *Reader) Read(n int) (uint64, error) {
	if n == 0 {
		return 0, nil
	}
	if n < 0 || n > MaxWidth {
		return 0, ErrEndOfStream
	}
	if n > a.NonReadBits() {
		return 0, ErrEndOfStream
	}
	var v uint64
	got := 0
	for got < n {
		free := 8 - a.bitOffset
		chunk := n - got
		if chunk > free {
			chunk = free
		}
		part := lowBits(uint64(a.Bytes[a.byteOffset])>>uint(a.bitOffset), chunk)
		v |= part << uint(got)
		got += chunk
		a.bitOffset += chunk
		if a.bitOffset == 8 {
			a.bitOffset = 0
			a.byteOffset++
		}
	}
	return v, nil
}

// View returns the next n bits without advancing the cursor.
func (a *Reader) View(n int) (uint64, error) {
	cp := *a
	return cp.Read(n)
}

// Align skips the unread bits of a partially consumed byte and returns them.
func (a *Reader) Align() uint64 {
	if a.bitOffset == 0 {
		return 0
	}
	pad, _ := a.Read(8 - a.bitOffset)
	return pad
}

// ConsumedBytes returns the number of bytes touched so far, counting a
// partially read byte as consumed.
func (a *Reader) ConsumedBytes() int {
	if a.bitOffset == 0 {
		return a.byteOffset
	}
	return a.byteOffset + 1
}

// NonReadBytes returns the number of full unconsumed bytes remaining in the buffer.
func (a *Reader) NonReadBytes() int {
	return len(a.Bytes) - a.byteOffset
}

// NonReadBits calculates the total number of individual unread bits remaining.
func (a *Reader) NonReadBits() int {
	return a.NonReadBytes()*8 - a.bitOffset
}
