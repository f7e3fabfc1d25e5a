package acts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/d2s-asset/checksum"
	"github.com/rony4d/d2s-asset/format"
	"github.com/rony4d/d2s-asset/sections"
	"github.com/rony4d/d2s-asset/utils/fast"
)

var ctx110 = sections.Context{Version: format.V110, Expansion: true}

func TestNewRoundTrip(t *testing.T) {
	a := New(ctx110)
	require.Equal(t, Size, a.Size())

	w := fast.NewWriter(nil)
	require.NoError(t, a.Write(w))
	tail := append(w.Bytes(), []byte("gf...")...)

	var b Acts
	n, err := b.Read(ctx110, tail)
	require.NoError(t, err)
	assert.Equal(t, Size, n)
	assert.False(t, b.Corrected(), "a fresh segment needs no repair")
	assert.Equal(t, a.Bytes(), b.Bytes())
	assert.True(t, b.Waypoint(0, 0))
	assert.False(t, b.Waypoint(1, 0))
}

func TestReadDoesNotRetainTail(t *testing.T) {
	w := fast.NewWriter(nil)
	require.NoError(t, New(ctx110).Write(w))
	tail := w.Bytes()

	var a Acts
	_, err := a.Read(ctx110, tail)
	require.NoError(t, err)
	tail[20] = 0xEE
	assert.NotEqual(t, byte(0xEE), a.Bytes()[20])
}

func TestReadErrors(t *testing.T) {
	var a Acts
	_, err := a.Read(ctx110, []byte("Wo"))
	require.ErrorIs(t, err, sections.ErrMissingMarker)

	good := New(ctx110).Bytes()
	_, err = a.Read(ctx110, good[:Size-1])
	require.ErrorIs(t, err, sections.ErrTruncated)

	broken := append([]byte(nil), good...)
	broken[waypointsOffset] = 'X'
	_, err = a.Read(ctx110, broken)
	require.ErrorIs(t, err, sections.ErrMissingMarker)

	broken = append([]byte(nil), good...)
	broken[npcOffset+1] = 'X'
	_, err = a.Read(ctx110, broken)
	require.ErrorIs(t, err, sections.ErrMissingMarker)
}

func TestAutoCorrection(t *testing.T) {
	raw := New(ctx110).Bytes()
	raw[waypointBlockStart+waypointBitsOffset] = 0 // town waypoint missing
	raw[waypointBlockStart+waypointBlockSize] = 0  // nightmare block header broken

	var a Acts
	_, err := a.Read(ctx110, raw)
	require.NoError(t, err)
	assert.True(t, a.Corrected())
	assert.True(t, a.Waypoint(0, 0))
	assert.Equal(t, New(ctx110).Bytes(), a.Bytes())
}

func TestLegacySegment(t *testing.T) {
	ctx := sections.Context{Version: format.V108}
	tail := append([]byte("Woo!\x01\x02\x03"), []byte("gf\x00\x00")...)

	var a Acts
	n, err := a.Read(ctx, tail)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Equal(t, []byte("Woo!\x01\x02\x03"), a.Bytes())

	_, err = a.Read(ctx, []byte("Woo!\x00\x00"))
	require.ErrorIs(t, err, sections.ErrTruncated)

	require.Error(t, a.SetWaypoint(0, 1, true))
}

func TestWaypoints(t *testing.T) {
	a := New(ctx110)
	require.NoError(t, a.SetWaypoint(2, 38, true))
	assert.True(t, a.Waypoint(2, 38))
	require.NoError(t, a.SetWaypoint(2, 38, false))
	assert.False(t, a.Waypoint(2, 38))

	require.Error(t, a.SetWaypoint(3, 0, true))
	require.Error(t, a.SetWaypoint(0, NumWaypoints, true))
}

func TestContributeChecksum(t *testing.T) {
	a := New(ctx110)
	var s, ref checksum.State
	a.ContributeChecksum(&s)
	ref.Update(a.Bytes())
	assert.Equal(t, ref.Sum(), s.Sum())
}
