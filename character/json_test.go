package character

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/d2s-asset/format"
	"github.com/rony4d/d2s-asset/sections/stats"
)

func decorated(t *testing.T, v format.Version) *Record {
	r := newCharacter(t, v, Sorceress)
	require.NoError(t, r.SetDifficultyLastPlayed(Nightmare, 2))
	require.NoError(t, r.SetAssignedSkill(2, 54))
	require.NoError(t, r.SetSkill(RightSkill, 36))
	require.NoError(t, r.SetMapID(77))
	if v.LongHeader() {
		require.NoError(t, r.SetStat(stats.Gold, 4321))
		require.NoError(t, r.SetStat(stats.Level, 30))
		require.NoError(t, r.SetClassSkill(0, 20))
		require.NoError(t, r.SetMercenary(Mercenary{Seed: 12, NameID: 3, Type: 9, Experience: 1000}))
		require.NoError(t, r.SetCreated(1500000000))
	}
	if v.HasD2RAppearance() {
		require.NoError(t, r.SetD2RAppearance(0, AppearanceSlot{Code: "cap", Tint: 1}))
		require.NoError(t, r.SetD2RAppearance(1, AppearanceSlot{Code: "hax ", Quality: 4}))
	}
	return r
}

func TestJSONRoundTrip(t *testing.T) {
	for _, shape := range []Shape{ShapeCompact, ShapeFull} {
		for _, v := range format.Versions() {
			t.Run(shape.String()+"/"+v.String(), func(t *testing.T) {
				r := decorated(t, v)
				image := serialize(t, r)

				data, err := r.ToJSON(shape)
				require.NoError(t, err)
				got, err := DetectShape(data)
				require.NoError(t, err)
				assert.Equal(t, shape, got)

				back := New(WithLogger(quietLogger()))
				require.NoError(t, back.FromJSON(data))
				assert.Equal(t, r.snapshot(), back.snapshot())
				assert.Equal(t, image, serialize(t, back))
				if v.HasD2RAppearance() {
					for i := 0; i < NumAppearanceSlots; i++ {
						want, err := r.D2RAppearance(i)
						require.NoError(t, err)
						got, err := back.D2RAppearance(i)
						require.NoError(t, err)
						assert.Equal(t, want, got, "slot %d", i)
					}
				}
			})
		}
	}
}

func TestJSONCompactKeys(t *testing.T) {
	r := decorated(t, format.V110)
	data, err := r.ToJSON(ShapeCompact)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	header := doc["header"].(map[string]interface{})
	assert.Equal(t, "Sorceress", header["class"])
	assert.Equal(t, "aa55aa55", header["identifier"])
	assert.Equal(t, true, header["status"].(map[string]interface{})["expansion"])
	attrs := doc["attributes"].(map[string]interface{})
	assert.EqualValues(t, 4321, attrs["gold"])
	skills := doc["skills"].([]interface{})
	assert.Equal(t, "Fire Bolt", skills[0].(map[string]interface{})["name"])
}

func TestJSONFullKeys(t *testing.T) {
	r := decorated(t, format.V140)
	data, err := r.ToJSON(ShapeFull)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	header := doc["Header"].(map[string]interface{})
	assert.EqualValues(t, 1, header["ClassId"])
	assert.Equal(t, "Slayer", header["TitleName"])
	assert.Equal(t, true, header["IsExpansion"])
	right := header["RightSkill"].(map[string]interface{})
	assert.Equal(t, "Fire Bolt", right["Name"])
	slots := header["D2RAppearance"].([]interface{})
	assert.Len(t, slots, NumAppearanceSlots)
	assert.Equal(t, "cap", slots[0].(map[string]interface{})["Code"])
	assert.Equal(t, "hax ", slots[1].(map[string]interface{})["Code"])

	attrs := doc["Attributes"].([]interface{})
	first := attrs[0].(map[string]interface{})
	assert.Equal(t, "strength", first["Name"])
}

func TestJSONKeepsAttributeOrder(t *testing.T) {
	r := newCharacter(t, format.V110, Amazon)
	data, err := r.ToJSON(ShapeFull)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	attrs := doc["Attributes"].([]interface{})
	// move level to the front; the full shape keeps the given order
	reordered := append([]interface{}{attrs[len(attrs)-1]}, attrs[:len(attrs)-1]...)
	doc["Attributes"] = reordered
	edited, err := json.Marshal(doc)
	require.NoError(t, err)

	back := New(WithLogger(quietLogger()))
	require.NoError(t, back.FromJSON(edited))
	order := back.Stats()
	assert.Equal(t, stats.ID(uint16(reordered[0].(map[string]interface{})["Id"].(float64))), order[0])
}

func TestJSONErrors(t *testing.T) {
	r := New(WithLogger(quietLogger()))
	_, err := r.ToJSON(ShapeCompact)
	require.ErrorIs(t, err, ErrNotOpen)

	for _, bad := range []string{
		`not json`,
		`{"nothing": 1}`,
		`{"header": {"identifier": "00000000"}}`,
		`{"Header": {"Magic": "0xaa55aa55", "VersionId": 16}}`,
	} {
		err := r.FromJSON([]byte(bad))
		assert.Equal(t, InvalidHeader, KindOf(err), bad)
		assert.False(t, r.IsOpen())
	}

	// a stats list that cannot be encoded
	src := newCharacter(t, format.V110, Amazon)
	data, err := src.ToJSON(ShapeCompact)
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	doc["attributes"].(map[string]interface{})["level"] = 1000
	edited, _ := json.Marshal(doc)
	err = r.FromJSON(edited)
	assert.Equal(t, InvalidCharStats, KindOf(err))

	_, err = ParseShape("fancy")
	require.Error(t, err)
}
