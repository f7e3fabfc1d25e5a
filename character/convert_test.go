package character

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/d2s-asset/format"
	"github.com/rony4d/d2s-asset/sections/stats"
)

func TestConvertWithinLongHeader(t *testing.T) {
	r := newCharacter(t, format.V110, Barbarian)
	require.NoError(t, r.SetLadder(true))
	require.NoError(t, r.SetStat(stats.Experience, 123456))
	require.NoError(t, r.SetDifficultyLastPlayed(Nightmare, 1))
	require.NoError(t, r.SetMercenary(Mercenary{Seed: 99, Type: 5}))
	require.NoError(t, r.SetMapID(0xCAFE))

	out, err := r.ConvertTo(format.V109)
	require.NoError(t, err)
	assert.Equal(t, format.V110, r.Version())
	assert.True(t, r.IsLadder())

	assert.Equal(t, format.V109, out.Version())
	assert.True(t, out.IsOpen())
	assert.False(t, out.IsLadder())
	assert.True(t, out.IsExpansion())
	assert.Equal(t, "Tester", out.Name())
	assert.Equal(t, Barbarian, out.Class())
	assert.EqualValues(t, 123456, out.Stat(stats.Experience))
	assert.EqualValues(t, 0xCAFE, out.MapID())
	diff, act := out.DifficultyLastPlayed()
	assert.Equal(t, Nightmare, diff)
	assert.Equal(t, 1, act)
	m, _ := out.Mercenary()
	assert.EqualValues(t, 99, m.Seed)

	// the two records share nothing
	require.NoError(t, out.SetWaypoint(Hell, 3, true))
	assert.False(t, r.Waypoint(Hell, 3))

	image, err := out.Serialize()
	require.NoError(t, err)
	back := New(WithLogger(quietLogger()), WithStrictChecksum(true))
	require.NoError(t, back.Load(image, ""))
}

func TestConvertResurrectedMovesName(t *testing.T) {
	r := newCharacter(t, format.V100R, Amazon)
	out, err := r.ConvertTo(format.V140)
	require.NoError(t, err)
	assert.Equal(t, "Tester", out.Name())
	d, _ := out.descriptor(format.FieldName)
	assert.Equal(t, 267, d.Offset)
}

func TestConvertClassicDropsExpansion(t *testing.T) {
	r := newCharacter(t, format.V107, Druid)
	out, err := r.ConvertTo(format.V108)
	require.NoError(t, err)
	assert.False(t, out.IsExpansion())
	assert.Equal(t, DefaultClass, out.Class())
}

func TestConvertRejects(t *testing.T) {
	r := newCharacter(t, format.V110, Amazon)

	_, err := r.ConvertTo(format.V108)
	require.ErrorIs(t, err, ErrCrossesHeaderBoundary)
	assert.Equal(t, UnsupportedVersion, KindOf(err))

	_, err = r.ConvertTo(format.V100R)
	assert.Equal(t, InvalidItemInventory, KindOf(err))

	_, err = r.ConvertTo(format.Version(42))
	assert.Equal(t, UnsupportedVersion, KindOf(err))

	_, err = New().ConvertTo(format.V110)
	require.ErrorIs(t, err, ErrNotOpen)
}
