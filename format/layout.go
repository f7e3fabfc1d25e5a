package format

// Field names a version-sensitive region of the fixed header.
type Field uint8

const (
	FieldMagic Field = iota
	FieldVersion
	FieldFileSize
	FieldChecksum
	FieldWeaponSet
	FieldName
	FieldStatus
	FieldTitle
	FieldClass
	FieldLevel
	FieldCreated
	FieldLastPlayed
	FieldAssignedSkills
	FieldLeftSkill
	FieldRightSkill
	FieldLeftSwapSkill
	FieldRightSwapSkill
	FieldAppearance
	FieldDifficulty
	FieldMapID
	FieldMercDead
	FieldMercSeed
	FieldMercName
	FieldMercType
	FieldMercExp
	FieldD2RAppearance

	numFields
)

var fieldNames = [numFields]string{
	"magic", "version", "file size", "checksum", "weapon set", "name",
	"status", "title", "class", "level", "created", "last played",
	"assigned skills", "left skill", "right skill", "left swap skill",
	"right swap skill", "appearance", "difficulty", "map id", "merc dead",
	"merc seed", "merc name", "merc type", "merc experience",
	"d2r appearance",
}

func (f Field) String() string {
	if f < numFields {
		return fieldNames[f]
	}
	return "unknown field"
}

// Descriptor locates a field inside the header.
//
// Width is the size of one element in bytes. Count is the number of
// consecutive elements (1 for scalars, 16 for the hotkey slots, 3 for the
// per-difficulty bytes). Default, when set, is the byte image of a freshly
// created field and is exactly Size() bytes long.
type Descriptor struct {
	Offset  int
	Width   int
	Count   int
	Default []byte
}

// Size returns the total number of bytes the field occupies.
func (d Descriptor) Size() int {
	return d.Width * d.Count
}

// End returns the first offset past the field.
func (d Descriptor) End() int {
	return d.Offset + d.Size()
}

// ElementOffset returns the offset of element i.
func (d Descriptor) ElementOffset(i int) int {
	return d.Offset + i*d.Width
}

// MaxValue returns the largest value one element can hold.
func (d Descriptor) MaxValue() uint64 {
	if d.Width >= 8 {
		return ^uint64(0)
	}
	return uint64(1)<<uint(8*d.Width) - 1
}

// Filler is a constant byte sequence the game client expects at a fixed
// offset. It is written on every save and never read back.
type Filler struct {
	Offset int
	Bytes  []byte
}

const (
	// ShortHeaderSize is the header length before v1.09.
	ShortHeaderSize = 130
	// LongHeaderSize is the header length from v1.09 onwards.
	LongHeaderSize = 335
	// NumSkillHotkeys is the number of assignable hotkey slots.
	NumSkillHotkeys = 16
	// NameSize is the on-disk name field length including the NUL padding.
	NameSize = 16
	// AppearanceSize is the classic character-select appearance block.
	AppearanceSize = 32
	// D2RAppearanceSize is the Resurrected appearance extension.
	D2RAppearanceSize = 48
)

type fieldRow struct {
	field Field
	since Version
	desc  Descriptor
}

type fillerRow struct {
	since Version
	until Version // inclusive; VUnknown means open ended
	fill  Filler
}

func repeat(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}

func scalar(off, width int) Descriptor {
	return Descriptor{Offset: off, Width: width, Count: 1}
}

// fieldRows is the normative layout table. For each field the row with the
// greatest "since" not newer than the requested version applies; a field with
// no applicable row does not exist in that version.
var fieldRows = []fieldRow{
	{FieldMagic, V100, Descriptor{Offset: 0, Width: 4, Count: 1, Default: []byte{0x55, 0xAA, 0x55, 0xAA}}},
	{FieldVersion, V100, scalar(4, 4)},

	{FieldFileSize, V109, scalar(8, 4)},
	{FieldChecksum, V109, scalar(12, 4)},

	{FieldWeaponSet, V100, scalar(26, 1)},
	{FieldWeaponSet, V109, scalar(16, 4)},

	{FieldName, V100, scalar(8, NameSize)},
	{FieldName, V109, scalar(20, NameSize)},
	{FieldName, V120, scalar(267, NameSize)},

	{FieldStatus, V100, scalar(24, 1)},
	{FieldStatus, V109, scalar(36, 1)},
	{FieldTitle, V100, scalar(25, 1)},
	{FieldTitle, V109, scalar(37, 1)},
	{FieldClass, V100, scalar(34, 1)},
	{FieldClass, V109, scalar(40, 1)},
	{FieldLevel, V100, Descriptor{Offset: 36, Width: 1, Count: 1, Default: []byte{1}}},
	{FieldLevel, V109, Descriptor{Offset: 43, Width: 1, Count: 1, Default: []byte{1}}},

	{FieldCreated, V109, scalar(44, 4)},
	{FieldLastPlayed, V109, scalar(48, 4)},

	{FieldAssignedSkills, V100, Descriptor{Offset: 70, Width: 1, Count: NumSkillHotkeys, Default: repeat(0xFF, NumSkillHotkeys)}},
	{FieldAssignedSkills, V109, Descriptor{Offset: 56, Width: 4, Count: NumSkillHotkeys, Default: repeat(0xFF, 4*NumSkillHotkeys)}},

	{FieldLeftSkill, V100, scalar(86, 1)},
	{FieldLeftSkill, V109, scalar(120, 4)},
	{FieldRightSkill, V100, scalar(87, 1)},
	{FieldRightSkill, V109, scalar(124, 4)},
	{FieldLeftSwapSkill, V109, scalar(128, 4)},
	{FieldRightSwapSkill, V109, scalar(132, 4)},

	{FieldAppearance, V100, Descriptor{Offset: 38, Width: AppearanceSize, Count: 1, Default: repeat(0xFF, AppearanceSize)}},
	{FieldAppearance, V109, Descriptor{Offset: 136, Width: AppearanceSize, Count: 1, Default: repeat(0xFF, AppearanceSize)}},

	{FieldDifficulty, V100, scalar(88, 1)},
	{FieldDifficulty, V109, Descriptor{Offset: 168, Width: 1, Count: 3, Default: []byte{0x80, 0, 0}}},

	{FieldMapID, V100, scalar(126, 4)},
	{FieldMapID, V109, scalar(171, 4)},

	{FieldMercDead, V109, scalar(177, 2)},
	{FieldMercSeed, V109, scalar(179, 4)},
	{FieldMercName, V109, scalar(183, 2)},
	{FieldMercType, V109, scalar(185, 2)},
	{FieldMercExp, V109, scalar(187, 4)},

	{FieldD2RAppearance, V100R, scalar(219, D2RAppearanceSize)},
}

var fillerRows = []fillerRow{
	{V100, V108, Filler{Offset: 35, Bytes: []byte{0x10}}},
	{V100, V108, Filler{Offset: 37, Bytes: []byte{0x1E}}},
	{V109, VUnknown, Filler{Offset: 41, Bytes: []byte{0x10, 0x1E}}},
	{V109, VUnknown, Filler{Offset: 52, Bytes: []byte{0xFF, 0xFF, 0xFF, 0xFF}}},
	// The pre-v1.2 name slot is blanked once the name moves to offset 267.
	{V120, VUnknown, Filler{Offset: 20, Bytes: make([]byte, NameSize)}},
}

// Layout is the resolved field table for one revision.
type Layout struct {
	version    Version
	headerSize int
	fields     [numFields]Descriptor
	present    [numFields]bool
	fillers    []Filler
}

// layouts caches one resolved table per revision; the table is immutable.
var layouts = buildLayouts()

func buildLayouts() map[Version]*Layout {
	out := make(map[Version]*Layout, len(versionTable))
	for _, info := range versionTable {
		out[info.version] = resolve(info.version)
	}
	return out
}

func resolve(v Version) *Layout {
	l := &Layout{version: v, headerSize: ShortHeaderSize}
	if v.LongHeader() {
		l.headerSize = LongHeaderSize
	}
	var since [numFields]Version
	for _, row := range fieldRows {
		if row.since > v {
			continue
		}
		if l.present[row.field] && row.since < since[row.field] {
			continue
		}
		l.fields[row.field] = row.desc
		l.present[row.field] = true
		since[row.field] = row.since
	}
	for _, row := range fillerRows {
		if row.since > v || (row.until != VUnknown && v > row.until) {
			continue
		}
		l.fillers = append(l.fillers, row.fill)
	}
	return l
}

// LayoutFor returns the field table for v, or nil for an unknown revision.
func LayoutFor(v Version) *Layout {
	return layouts[v]
}

// Version returns the revision this layout describes.
func (l *Layout) Version() Version {
	return l.version
}

// HeaderSize returns the fixed header length in bytes.
func (l *Layout) HeaderSize() int {
	return l.headerSize
}

// Field returns the descriptor for f and whether f exists in this revision.
func (l *Layout) Field(f Field) (Descriptor, bool) {
	if f >= numFields || !l.present[f] {
		return Descriptor{}, false
	}
	return l.fields[f], true
}

// Has reports whether f exists in this revision.
func (l *Layout) Has(f Field) bool {
	_, ok := l.Field(f)
	return ok
}

// Fillers returns the constant byte sequences for this revision.
func (l *Layout) Fillers() []Filler {
	return l.fillers
}

// Fields returns every field present in this revision, in Field order.
func (l *Layout) Fields() []Field {
	out := make([]Field, 0, numFields)
	for f := Field(0); f < numFields; f++ {
		if l.present[f] {
			out = append(out, f)
		}
	}
	return out
}
