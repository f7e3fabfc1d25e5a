package character

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rony4d/d2s-asset/format"
	"github.com/rony4d/d2s-asset/sections/stats"
)

// Shape selects a JSON layout.
type Shape int

const (
	// ShapeCompact uses short snake_case keys under "header".
	ShapeCompact Shape = iota
	// ShapeFull uses PascalCase keys under "Header" and spells out raw values
	// next to their names.
	ShapeFull
)

func (s Shape) String() string {
	switch s {
	case ShapeCompact:
		return "compact"
	case ShapeFull:
		return "full"
	}
	return fmt.Sprintf("shape(%d)", int(s))
}

// ParseShape resolves a shape by its String form.
func ParseShape(s string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "compact", "":
		return ShapeCompact, nil
	case "full":
		return ShapeFull, nil
	}
	return 0, fmt.Errorf("unknown json shape %q", s)
}

type attributeValue struct {
	id    stats.ID
	value uint64
}

// snapshot is the shape-neutral view both JSON layouts are built from.
// Optional pointers and nil slices mark fields the version lacks.
type snapshot struct {
	Version        format.Version
	FileSize       *uint32
	Checksum       *uint32
	WeaponSet      uint32
	Name           string
	Status         uint8
	Title          uint8
	Class          Class
	Level          uint8
	Created        *uint32
	LastPlayed     *uint32
	AssignedSkills []uint32
	LeftSkill      uint32
	RightSkill     uint32
	LeftSwapSkill  *uint32
	RightSwapSkill *uint32
	Appearance     []byte
	D2RAppearance  []byte
	Difficulty     []byte
	MapID          uint32
	Mercenary      *Mercenary

	Attributes  []attributeValue // nil when the stats segment is kept raw
	ClassSkills []byte
	StatsRaw    []byte
	Acts        []byte
	Items       []byte
}

func optional(l *format.Layout, f format.Field, v uint32) *uint32 {
	if !l.Has(f) {
		return nil
	}
	return &v
}

func (r *Record) snapshot() *snapshot {
	s := &snapshot{
		Version:        r.version,
		FileSize:       optional(r.layout, format.FieldFileSize, r.FileSize()),
		Checksum:       optional(r.layout, format.FieldChecksum, r.ChecksumBytes()),
		WeaponSet:      r.WeaponSet(),
		Name:           r.Name(),
		Status:         r.Status(),
		Title:          r.Title(),
		Class:          r.Class(),
		Level:          r.Level(),
		Created:        optional(r.layout, format.FieldCreated, r.Created()),
		LastPlayed:     optional(r.layout, format.FieldLastPlayed, r.LastPlayed()),
		AssignedSkills: r.AssignedSkills(),
		LeftSkill:      r.Skill(LeftSkill),
		RightSkill:     r.Skill(RightSkill),
		LeftSwapSkill:  optional(r.layout, format.FieldLeftSwapSkill, r.Skill(LeftSwapSkill)),
		RightSwapSkill: optional(r.layout, format.FieldRightSwapSkill, r.Skill(RightSwapSkill)),
		Appearance:     r.Appearance(),
		D2RAppearance:  r.getBytes(format.FieldD2RAppearance),
		Difficulty:     r.DifficultyLastPlayedBytes(),
		MapID:          r.MapID(),
		Acts:           r.acts.Bytes(),
		Items:          r.items.Bytes(),
	}
	if m, ok := r.Mercenary(); ok {
		s.Mercenary = &m
	}
	if r.stats.Decoded() {
		s.Attributes = []attributeValue{}
		for _, id := range r.stats.Order() {
			s.Attributes = append(s.Attributes, attributeValue{id: id, value: r.stats.Get(id)})
		}
		sk := r.stats.Skills()
		s.ClassSkills = common.CopyBytes(sk[:])
	} else {
		s.StatsRaw = r.stats.Bytes()
	}
	return s
}

// restore replaces the record with the character described by s. Values
// are written as given; the status bits are then normalized for the version.
func (r *Record) restore(s *snapshot) (ErrorKind, error) {
	if r.state != stateClosed {
		r.Close()
	}
	if !s.Version.Valid() {
		return UnsupportedVersion, fmt.Errorf("%d: %w", s.Version, format.ErrUnknownVersion)
	}
	if err := r.initHeader(s.Version); err != nil {
		return InvalidHeader, err
	}
	r.state = stateHeaderRead

	raw, err := encodeName(s.Name, s.Version)
	if err != nil {
		return InvalidHeader, err
	}
	if !s.Class.Valid() {
		return InvalidHeader, fmt.Errorf("class %d: %w", uint8(s.Class), ErrValueOutOfRange)
	}
	if len(s.AssignedSkills) != format.NumSkillHotkeys {
		return InvalidHeader, fmt.Errorf("%d assigned skills, want %d: %w", len(s.AssignedSkills), format.NumSkillHotkeys, ErrValueOutOfRange)
	}

	type write struct {
		f format.Field
		v uint64
	}
	writes := []write{
		{format.FieldWeaponSet, uint64(s.WeaponSet)},
		{format.FieldStatus, uint64(s.Status)},
		{format.FieldTitle, uint64(s.Title)},
		{format.FieldClass, uint64(s.Class)},
		{format.FieldLevel, uint64(s.Level)},
		{format.FieldLeftSkill, uint64(s.LeftSkill)},
		{format.FieldRightSkill, uint64(s.RightSkill)},
		{format.FieldMapID, uint64(s.MapID)},
	}
	for f, p := range map[format.Field]*uint32{
		format.FieldFileSize:       s.FileSize,
		format.FieldChecksum:       s.Checksum,
		format.FieldCreated:        s.Created,
		format.FieldLastPlayed:     s.LastPlayed,
		format.FieldLeftSwapSkill:  s.LeftSwapSkill,
		format.FieldRightSwapSkill: s.RightSwapSkill,
	} {
		if p != nil && r.layout.Has(f) {
			writes = append(writes, write{f, uint64(*p)})
		}
	}
	for _, w := range writes {
		if err := r.setUint(w.f, 0, w.v); err != nil {
			return InvalidHeader, err
		}
	}
	for i, v := range s.AssignedSkills {
		if err := r.setUint(format.FieldAssignedSkills, i, uint64(v)); err != nil {
			return InvalidHeader, err
		}
	}
	for f, p := range map[format.Field][]byte{
		format.FieldName:          raw,
		format.FieldAppearance:    s.Appearance,
		format.FieldDifficulty:    s.Difficulty,
		format.FieldD2RAppearance: s.D2RAppearance,
	} {
		if p == nil || !r.layout.Has(f) {
			continue
		}
		if err := r.setBytes(f, p); err != nil {
			return InvalidHeader, err
		}
	}
	if s.Mercenary != nil && r.layout.Has(format.FieldMercSeed) {
		if err := r.writeMercenary(*s.Mercenary); err != nil {
			return InvalidHeader, err
		}
	}
	r.normalizeStatus()
	if r.Class().ExpansionOnly() && !r.IsExpansion() {
		return InvalidHeader, fmt.Errorf("%s: %w", r.Class(), ErrExpansionClass)
	}
	r.state = stateBasicInfoRead

	statsBytes, err := r.buildStats(s)
	if err != nil {
		return InvalidCharStats, err
	}
	tail := common.CopyBytes(s.Acts)
	tail = append(tail, statsBytes...)
	tail = append(tail, s.Items...)
	if kind, err := r.readSegments(tail); err != nil {
		return kind, err
	}
	r.state = stateOpen
	return NoError, nil
}

// buildStats encodes the attribute list of s for the record's version.
func (r *Record) buildStats(s *snapshot) ([]byte, error) {
	if !r.version.LongHeader() {
		if s.StatsRaw == nil {
			return nil, fmt.Errorf("missing raw stats for %s", r.version)
		}
		return s.StatsRaw, nil
	}
	st := stats.New(r.context())
	st.Clear()
	for _, a := range s.Attributes {
		if err := st.Append(a.id, a.value); err != nil {
			return nil, err
		}
	}
	if len(s.ClassSkills) > stats.NumSkills {
		return nil, fmt.Errorf("%d class skills: %w", len(s.ClassSkills), ErrValueOutOfRange)
	}
	for i, v := range s.ClassSkills {
		if err := st.SetSkill(i, v); err != nil {
			return nil, err
		}
	}
	return st.Bytes(), nil
}

// ToJSON renders the character in the given shape.
func (r *Record) ToJSON(shape Shape) ([]byte, error) {
	if err := r.requireOpen(); err != nil {
		return nil, err
	}
	s := r.snapshot()
	var doc interface{}
	switch shape {
	case ShapeCompact:
		doc = r.compactFrom(s)
	case ShapeFull:
		doc = r.fullFrom(s)
	default:
		return nil, fmt.Errorf("unknown json shape %d", int(shape))
	}
	return json.MarshalIndent(doc, "", "  ")
}

// DetectShape reports which layout data uses, by its top-level header key.
func DetectShape(data []byte) (Shape, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return 0, err
	}
	if _, ok := top["header"]; ok {
		return ShapeCompact, nil
	}
	if _, ok := top["Header"]; ok {
		return ShapeFull, nil
	}
	return 0, fmt.Errorf("no header object")
}

// FromJSON replaces the record with the character in data, in either shape.
func (r *Record) FromJSON(data []byte) error {
	r.lastErr = nil
	path := r.path
	shape, err := DetectShape(data)
	if err != nil {
		r.Close()
		return r.fail(InvalidHeader, path, err)
	}
	var s *snapshot
	switch shape {
	case ShapeCompact:
		var doc compactDoc
		if err = json.Unmarshal(data, &doc); err == nil {
			s, err = r.compactTo(&doc)
		}
	case ShapeFull:
		var doc fullDoc
		if err = json.Unmarshal(data, &doc); err == nil {
			s, err = r.fullTo(&doc)
		}
	}
	if err != nil {
		r.Close()
		return r.fail(InvalidHeader, path, err)
	}
	if kind, err := r.restore(s); err != nil {
		r.Close()
		return r.fail(kind, path, err)
	}
	r.path = path
	return nil
}

// OpenJSON reads a character from a JSON file. The record has no binary
// path afterwards; save it with SaveAsD2S.
func (r *Record) OpenJSON(path string) error {
	r.lastErr = nil
	if r.state != stateClosed {
		r.Close()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return r.fail(CannotOpenFile, path, err)
	}
	if err := r.FromJSON(data); err != nil {
		if e, ok := err.(*Error); ok {
			e.Path = path
		}
		return err
	}
	return nil
}
