package fast

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestBuffer_Integration verifies append-then-access on a header-sized buffer.
func TestBuffer_Integration(t *testing.T) {
	b := NewBuffer(16)
	b.Append([]byte{0x55, 0xAA, 0x55, 0xAA})
	b.AppendZeros(12)
	require.Equal(t, 16, b.Len())

	magic, err := b.ReadUint(0, 4)
	require.NoError(t, err)
	require.EqualValues(t, 0xAA55AA55, magic)

	require.NoError(t, b.WriteUint(4, 4, 0x60))
	v, err := b.ReadUint(4, 4)
	require.NoError(t, err)
	require.EqualValues(t, 0x60, v)

	require.NoError(t, b.WriteBytes(8, []byte{1, 2, 3}))
	got, err := b.ReadBytes(8, 3)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, got)

	// ReadBytes hands out a copy.
	got[0] = 9
	again, _ := b.ReadBytes(8, 1)
	require.Equal(t, []byte{1}, again)
}

func TestBuffer_WritesNeverGrow(t *testing.T) {
	b := NewBuffer(0)
	b.AppendZeros(8)

	require.ErrorIs(t, b.WriteUint(6, 4, 1), ErrOutOfRange)
	require.ErrorIs(t, b.WriteBytes(7, []byte{1, 2}), ErrOutOfRange)
	require.ErrorIs(t, b.Fill(0, 9, 0xFF), ErrOutOfRange)
	require.ErrorIs(t, b.WriteUint(0, 9, 1), ErrBadWidth)
	require.Equal(t, 8, b.Len())

	_, err := b.ReadUint(5, 4)
	require.ErrorIs(t, err, ErrOutOfRange)
	_, err = b.ReadBytes(-1, 1)
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestBuffer_ReadBits(t *testing.T) {
	b := NewBuffer(0)
	b.Append([]byte{0xF0, 0xFF, 0x0F, 0x81, 0x00, 0x00, 0x00, 0xC0})

	t.Run("small path", func(t *testing.T) {
		v, err := b.ReadBits(4, 16)
		require.NoError(t, err)
		require.EqualValues(t, 0xFFFF, v)

		v, err = b.ReadBits(24, 8)
		require.NoError(t, err)
		require.EqualValues(t, 0x81, v)
	})

	t.Run("large path", func(t *testing.T) {
		v, err := b.ReadBits(4, 32)
		require.NoError(t, err)
		require.EqualValues(t, 0x0810FFFF, v)

		v, err = b.ReadBits(7, 56)
		require.NoError(t, err)
		require.EqualValues(t, uint64(0xC0000000810FFFF0)>>7&(uint64(1)<<56-1), v)
	})

	t.Run("ends on last byte", func(t *testing.T) {
		v, err := b.ReadBits(62, 2)
		require.NoError(t, err)
		require.EqualValues(t, 0x3, v)

		v, err = b.ReadBits(40, 24)
		require.NoError(t, err)
		require.EqualValues(t, 0xC00000, v)
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := b.ReadBits(60, 5)
		require.ErrorIs(t, err, ErrOutOfRange)
		_, err = b.ReadBits(0, 57)
		require.ErrorIs(t, err, ErrBadWidth)
	})
}

func TestBuffer_Clone(t *testing.T) {
	b := NewBuffer(4)
	b.Append([]byte{1, 2, 3, 4})
	cp := b.Clone()
	require.NoError(t, cp.WriteUint(0, 1, 9))
	require.Equal(t, []byte{1, 2, 3, 4}, b.Bytes())
	require.Equal(t, []byte{9, 2, 3, 4}, cp.Bytes())
}
