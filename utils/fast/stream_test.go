package fast

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestStream_Integration verifies that data written via Writer is correctly
// retrieved via Reader.
func TestStream_Integration(t *testing.T) {
	const N = 100
	var (
		w         *Writer
		extraData = []byte{0, 0, 0xFF, 9, 0}
	)

	t.Run("Writer", func(t *testing.T) {
		require := require.New(t)

		w = NewWriter(make([]byte, 0, N/2))
		for i := byte(0); i < N; i++ {
			w.WriteByte(i)
		}
		require.Equal(N, w.Len())

		w.Write(extraData)
		w.WriteUint16(0x0201)
		w.WriteUint32(0x06050403)
		require.Equal(N+len(extraData)+6, len(w.Bytes()))
	})

	t.Run("Reader", func(t *testing.T) {
		require := require.New(t)

		r := NewReader(w.Bytes())
		require.False(r.Empty())
		require.Equal(0, r.Position())

		for exp := byte(0); exp < N; exp++ {
			got, err := r.ReadByte()
			require.NoError(err)
			require.Equal(exp, got, "ReadByte mismatch at index %d", exp)
		}
		require.Equal(N, r.Position())

		got, err := r.Read(len(extraData))
		require.NoError(err)
		require.Equal(extraData, got)

		u16, err := r.ReadUint16()
		require.NoError(err)
		require.EqualValues(0x0201, u16)
		u32, err := r.ReadUint32()
		require.NoError(err)
		require.EqualValues(0x06050403, u32)

		require.True(r.Empty())
		require.Equal(0, r.Remaining())
	})
}

func TestStream_Boundaries(t *testing.T) {
	t.Run("Empty Buffer", func(t *testing.T) {
		r := NewReader([]byte{})
		require.True(t, r.Empty())
		_, err := r.ReadByte()
		require.ErrorIs(t, err, ErrShortRead)
		_, err = r.ReadUint32()
		require.ErrorIs(t, err, ErrShortRead)
	})

	t.Run("Short read keeps cursor", func(t *testing.T) {
		r := NewReader([]byte{1, 2, 3})
		_, err := r.Read(4)
		require.ErrorIs(t, err, ErrShortRead)
		require.Equal(t, 0, r.Position())
	})

	t.Run("Expect", func(t *testing.T) {
		r := NewReader([]byte("Woo!xy"))
		require.False(t, r.Expect("WS"))
		require.Equal(t, 0, r.Position())
		require.True(t, r.Expect("Woo!"))
		require.Equal(t, []byte("xy"), r.Rest())
		require.False(t, r.Expect("xyz"))
	})

	t.Run("Read returns a copy", func(t *testing.T) {
		src := []byte{1, 2}
		r := NewReader(src)
		got, err := r.Read(2)
		require.NoError(t, err)
		got[0] = 7
		require.Equal(t, byte(1), src[0])
	})

	t.Run("Write to nil buffer", func(t *testing.T) {
		w := NewWriter(nil)
		w.WriteByte(0xAA)
		require.Equal(t, []byte{0xAA}, w.Bytes())
	})
}

// Benchmark compares the stream writer against bytes.Buffer.
func Benchmark(b *testing.B) {
	b.Run("Write", func(b *testing.B) {
		b.Run("Std", func(b *testing.B) {
			w := bytes.NewBuffer(make([]byte, 0, b.N))
			for i := 0; i < b.N; i++ {
				w.WriteByte(byte(i))
			}
			require.Equal(b, b.N, len(w.Bytes()))
		})
		b.Run("Fast", func(b *testing.B) {
			w := NewWriter(make([]byte, 0, b.N))
			for i := 0; i < b.N; i++ {
				w.WriteByte(byte(i))
			}
			require.Equal(b, b.N, len(w.Bytes()))
		})
	})

	b.Run("Read", func(b *testing.B) {
		src := make([]byte, 1000)
		rand.Read(src)

		b.Run("Fast", func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				r := NewReader(src)
				for j := 0; j < len(src); j++ {
					_, _ = r.ReadByte()
				}
			}
		})
	})
}
