package checksum

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reference is the signed-integer formulation of the scan.
func reference(image []byte, off int) uint32 {
	var sum int32
	for i, b := range image {
		if i >= off && i < off+4 {
			b = 0
		}
		var carry int32
		if sum < 0 {
			carry = 1
		}
		sum = sum<<1 + int32(b) + carry
	}
	return uint32(sum)
}

func TestSmallVectors(t *testing.T) {
	var s State
	s.Update([]byte{1, 2})
	assert.EqualValues(t, 4, s.Sum())

	s.Reset()
	s.Update([]byte{0xFF})
	assert.EqualValues(t, 0xFF, s.Sum())

	// 32 shifts push the first byte through the sign bit; the carry folds it
	// back into the bottom.
	s.Reset()
	s.Update([]byte{0x80})
	s.UpdateZeros(24)
	assert.EqualValues(t, 0x80000000, s.Sum())
	s.UpdateZeros(1)
	assert.EqualValues(t, 0x00000001, s.Sum())
}

func TestMatchesReference(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		image := make([]byte, 335+r.Intn(2000))
		r.Read(image)
		assert.Equal(t, reference(image, 12), Compute(image, 12), "case %d", i)
	}
}

// TestSplitScan checks that extending one State across segment boundaries is
// the same as scanning the concatenated image.
func TestSplitScan(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	header := make([]byte, 335)
	acts := make([]byte, 430)
	stats := make([]byte, 70)
	items := make([]byte, 900)
	for _, p := range [][]byte{header, acts, stats, items} {
		r.Read(p)
	}

	var s State
	s.UpdateMasked(header, 12, 4)
	s.Update(acts)
	s.Update(stats)
	s.Update(items)

	image := append(append(append(append([]byte{}, header...), acts...), stats...), items...)
	require.Equal(t, Compute(image, 12), s.Sum())
}

func TestChecksumFieldIgnored(t *testing.T) {
	image := make([]byte, 64)
	for i := range image {
		image[i] = byte(i)
	}
	before := Compute(image, 12)
	image[12], image[13], image[14], image[15] = 0x4D, 0x3C, 0x2B, 0x1A
	assert.Equal(t, before, Compute(image, 12))
}
