// Package stats holds the attribute and skill segment.
//
// From v1.09 the segment is "gf" followed by a bit-packed list of
// (9-bit id, value) pairs terminated by id 0x1FF and padded to a whole byte,
// then "if" and one byte per class skill. Older files keep the segment as an
// opaque run up to the items marker.
package stats

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rony4d/d2s-asset/checksum"
	"github.com/rony4d/d2s-asset/format"
	"github.com/rony4d/d2s-asset/sections"
	"github.com/rony4d/d2s-asset/utils/bits"
	"github.com/rony4d/d2s-asset/utils/fast"
)

// ID identifies an attribute.
type ID uint16

const (
	Strength ID = iota
	Energy
	Dexterity
	Vitality
	UnusedStats
	UnusedSkillPoints
	CurrentHP
	MaxHP
	CurrentMana
	MaxMana
	CurrentStamina
	MaxStamina
	Level
	Experience
	Gold
	StashedGold

	numIDs
)

const (
	idWidth    = 9
	terminator = 0x1FF

	// NumSkills is the number of skill bytes that follow the "if" marker.
	NumSkills = 30
)

var (
	// ErrUnknownStat is returned for an attribute id without a known width.
	ErrUnknownStat = errors.New("unknown attribute id")
	// ErrValueTooWide is returned when a value does not fit its attribute.
	ErrValueTooWide = errors.New("attribute value out of range")
	// ErrNotDecoded is returned by accessors on a segment kept raw.
	ErrNotDecoded = errors.New("attributes are not decoded for this version")
)

var widths = [numIDs]int{10, 10, 10, 10, 10, 8, 21, 21, 21, 21, 21, 21, 7, 32, 25, 25}

var names = [numIDs]string{
	"strength", "energy", "dexterity", "vitality",
	"unused_stats", "unused_skill_points",
	"current_hp", "max_hp", "current_mana", "max_mana",
	"current_stamina", "max_stamina",
	"level", "experience", "gold", "stashed_gold",
}

// Width returns the encoded bit width of id, or 0 if id is unknown.
func (id ID) Width() int {
	if id >= numIDs {
		return 0
	}
	return widths[id]
}

// Max returns the largest value id can hold.
func (id ID) Max() uint64 {
	w := id.Width()
	if w == 0 {
		return 0
	}
	return uint64(1)<<uint(w) - 1
}

func (id ID) String() string {
	if id >= numIDs {
		return fmt.Sprintf("stat_%d", uint16(id))
	}
	return names[id]
}

// ParseID resolves an attribute by its snake_case name.
func ParseID(name string) (ID, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range names {
		if n == name {
			return ID(i), nil
		}
	}
	return 0, fmt.Errorf("%q: %w", name, ErrUnknownStat)
}

// IDs returns every known attribute in id order.
func IDs() []ID {
	out := make([]ID, numIDs)
	for i := range out {
		out[i] = ID(i)
	}
	return out
}

type attribute struct {
	id    ID
	value uint64
}

// Stats is the decoded stats segment.
type Stats struct {
	version format.Version
	attrs   []attribute
	skills  [NumSkills]byte
	raw     []byte // pre-1.09 only
}

var _ sections.Segment = (*Stats)(nil)

// New returns the segment of a freshly created level 1 character.
func New(ctx sections.Context) *Stats {
	s := &Stats{version: ctx.Version}
	if !ctx.Version.LongHeader() {
		s.raw = []byte(sections.StatsMarker)
		return s
	}
	s.attrs = []attribute{{id: Level, value: 1}}
	return s
}

// Decoded reports whether attributes are addressable.
func (s *Stats) Decoded() bool {
	return s.raw == nil
}

// Read implements sections.Segment.
func (s *Stats) Read(ctx sections.Context, tail []byte) (int, error) {
	s.version = ctx.Version
	s.attrs, s.raw, s.skills = nil, nil, [NumSkills]byte{}

	if len(tail) < len(sections.StatsMarker) || string(tail[:2]) != sections.StatsMarker {
		return 0, fmt.Errorf("stats: %w", sections.ErrMissingMarker)
	}
	if !ctx.Version.LongHeader() {
		end := sections.IndexMarker(tail, sections.ItemsMarker, len(sections.StatsMarker))
		if end < 0 {
			return 0, fmt.Errorf("stats: %w", sections.ErrTruncated)
		}
		s.raw = append([]byte(nil), tail[:end]...)
		return end, nil
	}

	body := tail[len(sections.StatsMarker):]
	r := bits.NewReader(&bits.Array{Bytes: body})
	for {
		id, err := r.Read(idWidth)
		if err != nil {
			return 0, fmt.Errorf("stats: %w", sections.ErrTruncated)
		}
		if id == terminator {
			break
		}
		w := ID(id).Width()
		if w == 0 {
			return 0, fmt.Errorf("id %d: %w", id, ErrUnknownStat)
		}
		v, err := r.Read(w)
		if err != nil {
			return 0, fmt.Errorf("stats %s: %w", ID(id), sections.ErrTruncated)
		}
		s.attrs = append(s.attrs, attribute{id: ID(id), value: v})
	}
	r.Align()
	n := len(sections.StatsMarker) + r.ConsumedBytes()

	rd := fast.NewReader(tail[n:])
	if !rd.Expect(sections.SkillsMarker) {
		return 0, fmt.Errorf("skills: %w", sections.ErrMissingMarker)
	}
	sk, err := rd.Read(NumSkills)
	if err != nil {
		return 0, fmt.Errorf("skills: %w", sections.ErrTruncated)
	}
	copy(s.skills[:], sk)
	return n + rd.Position(), nil
}

// Write implements sections.Segment.
func (s *Stats) Write(w *fast.Writer) error {
	if !s.Decoded() {
		w.Write(s.raw)
		return nil
	}
	w.Write(s.encode())
	return nil
}

func (s *Stats) encode() []byte {
	arr := &bits.Array{Bytes: make([]byte, 0, 64)}
	bw := bits.NewWriter(arr)
	for _, a := range s.attrs {
		bw.Write(idWidth, uint64(a.id))
		bw.Write(a.id.Width(), a.value)
	}
	bw.Write(idWidth, terminator)

	out := make([]byte, 0, 2+len(arr.Bytes)+2+NumSkills)
	out = append(out, sections.StatsMarker...)
	out = append(out, arr.Bytes...)
	out = append(out, sections.SkillsMarker...)
	return append(out, s.skills[:]...)
}

// Size implements sections.Segment.
func (s *Stats) Size() int {
	if !s.Decoded() {
		return len(s.raw)
	}
	bitLen := idWidth
	for _, a := range s.attrs {
		bitLen += idWidth + a.id.Width()
	}
	return 2 + (bitLen+7)/8 + 2 + NumSkills
}

// ContributeChecksum implements sections.Segment.
func (s *Stats) ContributeChecksum(cs *checksum.State) {
	if !s.Decoded() {
		cs.Update(s.raw)
		return
	}
	cs.Update(s.encode())
}

// Bytes returns the encoded segment.
func (s *Stats) Bytes() []byte {
	if !s.Decoded() {
		return append([]byte(nil), s.raw...)
	}
	return s.encode()
}

// Get returns the value of id; absent attributes read zero.
func (s *Stats) Get(id ID) uint64 {
	for _, a := range s.attrs {
		if a.id == id {
			return a.value
		}
	}
	return 0
}

// Has reports whether id is present in the list.
func (s *Stats) Has(id ID) bool {
	for _, a := range s.attrs {
		if a.id == id {
			return true
		}
	}
	return false
}

// Set stores v for id. Existing attributes keep their position; new ones are
// inserted in id order. Zero removes the attribute, as the game does.
func (s *Stats) Set(id ID, v uint64) error {
	if !s.Decoded() {
		return ErrNotDecoded
	}
	if id.Width() == 0 {
		return fmt.Errorf("id %d: %w", uint16(id), ErrUnknownStat)
	}
	if v > id.Max() {
		return fmt.Errorf("%s=%d: %w", id, v, ErrValueTooWide)
	}
	for i, a := range s.attrs {
		if a.id != id {
			continue
		}
		if v == 0 {
			s.attrs = append(s.attrs[:i], s.attrs[i+1:]...)
		} else {
			s.attrs[i].value = v
		}
		return nil
	}
	if v == 0 {
		return nil
	}
	i := sort.Search(len(s.attrs), func(i int) bool { return s.attrs[i].id > id })
	s.attrs = append(s.attrs, attribute{})
	copy(s.attrs[i+1:], s.attrs[i:])
	s.attrs[i] = attribute{id: id, value: v}
	return nil
}

// Append adds id after the existing attributes. It is used to rebuild a list
// in a given file order; an id may appear only once.
func (s *Stats) Append(id ID, v uint64) error {
	if !s.Decoded() {
		return ErrNotDecoded
	}
	if id.Width() == 0 {
		return fmt.Errorf("id %d: %w", uint16(id), ErrUnknownStat)
	}
	if v > id.Max() {
		return fmt.Errorf("%s=%d: %w", id, v, ErrValueTooWide)
	}
	if s.Has(id) {
		return fmt.Errorf("%s appears twice", id)
	}
	s.attrs = append(s.attrs, attribute{id: id, value: v})
	return nil
}

// Clear removes every attribute and skill point.
func (s *Stats) Clear() {
	s.attrs = nil
	s.skills = [NumSkills]byte{}
}

// Level returns the character level held in the attribute list, or 0 when the
// segment is not decoded.
func (s *Stats) Level() uint8 {
	return uint8(s.Get(Level))
}

// All returns the present attributes keyed by id. Use Order for the file
// order.
func (s *Stats) All() map[ID]uint64 {
	out := make(map[ID]uint64, len(s.attrs))
	for _, a := range s.attrs {
		out[a.id] = a.value
	}
	return out
}

// Order returns the ids in file order.
func (s *Stats) Order() []ID {
	out := make([]ID, len(s.attrs))
	for i, a := range s.attrs {
		out[i] = a.id
	}
	return out
}

// Skill returns the points invested in class skill i.
func (s *Stats) Skill(i int) (byte, error) {
	if !s.Decoded() {
		return 0, ErrNotDecoded
	}
	if i < 0 || i >= NumSkills {
		return 0, fmt.Errorf("skill %d out of range", i)
	}
	return s.skills[i], nil
}

// SetSkill stores the points invested in class skill i.
func (s *Stats) SetSkill(i int, v byte) error {
	if !s.Decoded() {
		return ErrNotDecoded
	}
	if i < 0 || i >= NumSkills {
		return fmt.Errorf("skill %d out of range", i)
	}
	s.skills[i] = v
	return nil
}

// Skills returns a copy of all skill bytes.
func (s *Stats) Skills() [NumSkills]byte {
	return s.skills
}

// Compatible reports whether a segment read at from can be written into a
// file of version to.
func Compatible(from, to format.Version) bool {
	return from.LongHeader() == to.LongHeader()
}
