package bits

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testWord represents a single value to write and read from the bit array.
type testWord struct {
	bits int
	v    uint64
}

// bytesToFit calculates the minimum number of bytes required to store a given number of bits.
func bytesToFit(bits int) int {
	if bits%8 == 0 {
		return bits / 8
	}
	return bits/8 + 1
}

// genTestWords generates random words shaped like attribute records: widths
// anywhere from 1 to maxBits.
func genTestWords(r *rand.Rand, maxCount int, maxBits int) []testWord {
	count := r.Intn(maxCount)
	words := make([]testWord, count)
	for i := range words {
		if maxBits == 1 {
			words[i].bits = 1
		} else {
			words[i].bits = 1 + r.Intn(maxBits-1)
		}
		words[i].v = r.Uint64() & (uint64(1)<<uint(words[i].bits) - 1)
	}
	return words
}

// testBitArray writes all words, checks the byte length, reads them back and
// checks the remaining-bit bookkeeping and the EOF behaviour.
func testBitArray(t *testing.T, words []testWord, name string) {
	arr := Array{make([]byte, 0, 100)}
	writer := NewWriter(&arr)
	reader := NewReader(&arr)

	totalBitsWritten := 0
	for _, w := range words {
		writer.Write(w.bits, w.v)
		totalBitsWritten += w.bits
	}
	assert.EqualValuesf(t, bytesToFit(totalBitsWritten), len(arr.Bytes), "%s: byte length mismatch", name)
	assert.Equalf(t, totalBitsWritten, writer.BitLen(), "%s: BitLen mismatch", name)

	totalBitsRead := 0
	for _, w := range words {
		remainingBits := bytesToFit(totalBitsWritten)*8 - totalBitsRead
		assert.EqualValuesf(t, remainingBits, reader.NonReadBits(), "%s: NonReadBits mismatch before read", name)

		v, err := reader.Read(w.bits)
		require.NoErrorf(t, err, "%s: read failed", name)
		assert.EqualValuesf(t, w.v, v, "%s: read value mismatch", name)
		totalBitsRead += w.bits
	}

	_, err := reader.Read(reader.NonReadBits() + 1)
	assert.ErrorIsf(t, err, ErrEndOfStream, "%s: reading past the end must fail", name)

	// Padding bits in the last byte are always zero.
	zero, err := reader.Read(reader.NonReadBits())
	require.NoError(t, err)
	assert.EqualValuesf(t, uint64(0), zero, "%s: padding bits must be zero", name)
	assert.Equalf(t, 0, reader.NonReadBits(), "%s: should have 0 bits left", name)
}

func TestBitArrayEmpty(t *testing.T) {
	testBitArray(t, []testWord{}, "empty")
}

func TestBitArraySingleBits(t *testing.T) {
	testBitArray(t, []testWord{{1, 0}}, "b0")
	testBitArray(t, []testWord{{1, 1}}, "b1")
}

// TestBitArrayAttributeShape writes the id/value pairs of a small attribute
// list (9-bit ids, 10/21/7/32-bit values) followed by the 0x1FF terminator.
func TestBitArrayAttributeShape(t *testing.T) {
	testBitArray(t, []testWord{
		{9, 0}, {10, 30},
		{9, 6}, {21, 55 << 8},
		{9, 12}, {7, 42},
		{9, 13}, {32, 0xFFFFFFFF},
		{9, 0x1FF},
	}, "attributes")
}

func TestBitArrayRand8(t *testing.T) {
	r := rand.New(rand.NewSource(0))
	for i := 0; i < 50; i++ {
		testBitArray(t, genTestWords(r, 100, 8), fmt.Sprintf("8 bits, case#%d", i))
	}
}

func TestBitArrayRand32(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		testBitArray(t, genTestWords(r, 50, 32), fmt.Sprintf("32 bits, case#%d", i))
	}
}

func TestBitArrayRand64(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for i := 0; i < 20; i++ {
		testBitArray(t, genTestWords(r, 20, 64), fmt.Sprintf("64 bits, case#%d", i))
	}
}

func TestWriterMasksHighBits(t *testing.T) {
	arr := Array{}
	w := NewWriter(&arr)
	w.Write(3, 0xFF)
	w.Write(5, 0)
	require.Equal(t, []byte{0x07}, arr.Bytes)
}

func TestReaderViewAndAlign(t *testing.T) {
	arr := Array{Bytes: []byte{0xAA, 0x55}}
	reader := NewReader(&arr)

	v, err := reader.View(8)
	require.NoError(t, err)
	assert.EqualValues(t, 0xAA, v)
	assert.Equal(t, 16, reader.NonReadBits(), "View must not consume bits")

	v, err = reader.Read(3)
	require.NoError(t, err)
	assert.EqualValues(t, 0x2, v)
	assert.Equal(t, 1, reader.ConsumedBytes())

	pad := reader.Align()
	assert.EqualValues(t, 0xAA>>3, pad)
	assert.Equal(t, 8, reader.NonReadBits())
	assert.Equal(t, 1, reader.ConsumedBytes())
}
