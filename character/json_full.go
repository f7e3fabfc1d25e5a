package character

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/rony4d/d2s-asset/format"
	"github.com/rony4d/d2s-asset/sections/stats"
)

type fullDoc struct {
	Header     fullHeader      `json:"Header"`
	Attributes []fullAttribute `json:"Attributes,omitempty"`
	Skills     []fullSkill     `json:"Skills,omitempty"`
	StatsRaw   hexutil.Bytes   `json:"StatsRaw,omitempty"`
	Acts       hexutil.Bytes   `json:"Acts"`
	Items      fullItems       `json:"Items"`
}

type fullHeader struct {
	Magic          hexutil.Uint64  `json:"Magic"`
	Version        string          `json:"Version"`
	VersionID      uint32          `json:"VersionId"`
	FileSize       *uint32         `json:"FileSize,omitempty"`
	Checksum       *hexutil.Uint64 `json:"Checksum,omitempty"`
	WeaponSet      uint32          `json:"WeaponSet"`
	Name           string          `json:"Name"`
	Status         uint8           `json:"Status"`
	IsHardcore     bool            `json:"IsHardcore"`
	IsDead         bool            `json:"IsDead"`
	IsExpansion    bool            `json:"IsExpansion"`
	IsLadder       bool            `json:"IsLadder"`
	Title          uint8           `json:"Title"`
	TitleName      string          `json:"TitleName,omitempty"`
	ClassID        uint8           `json:"ClassId"`
	Class          string          `json:"Class"`
	Level          uint8           `json:"Level"`
	Created        *uint32         `json:"Created,omitempty"`
	LastPlayed     *uint32         `json:"LastPlayed,omitempty"`
	AssignedSkills []fullSkillRef  `json:"AssignedSkills"`
	LeftSkill      fullSkillRef    `json:"LeftSkill"`
	RightSkill     fullSkillRef    `json:"RightSkill"`
	LeftSwapSkill  *fullSkillRef   `json:"LeftSwapSkill,omitempty"`
	RightSwapSkill *fullSkillRef   `json:"RightSwapSkill,omitempty"`
	Appearance     hexutil.Bytes   `json:"Appearance"`
	D2RAppearance  []fullSlot      `json:"D2RAppearance,omitempty"`
	Difficulty     hexutil.Bytes   `json:"Difficulty"`
	MapID          uint32          `json:"MapId"`
	Mercenary      *fullMerc       `json:"Mercenary,omitempty"`
}

type fullSkillRef struct {
	ID   uint32 `json:"Id"`
	Name string `json:"Name,omitempty"`
}

type fullSlot struct {
	Code     string        `json:"Code"`
	ItemName string        `json:"ItemName,omitempty"`
	Tint     uint8         `json:"Tint"`
	Quality  uint8         `json:"Quality"`
	Extra    hexutil.Bytes `json:"Extra"`
}

type fullMerc struct {
	Dead       bool   `json:"Dead"`
	Seed       uint32 `json:"Seed"`
	NameID     uint16 `json:"NameId"`
	Type       uint16 `json:"Type"`
	Experience uint32 `json:"Experience"`
}

type fullAttribute struct {
	ID    uint16 `json:"Id"`
	Name  string `json:"Name"`
	Value uint64 `json:"Value"`
}

type fullSkill struct {
	Index  int    `json:"Index"`
	ID     uint32 `json:"Id"`
	Name   string `json:"Name,omitempty"`
	Points uint8  `json:"Points"`
}

type fullItems struct {
	Count int           `json:"Count"`
	Data  hexutil.Bytes `json:"Data"`
}

func (r *Record) skillRef(id uint32) fullSkillRef {
	return fullSkillRef{ID: id, Name: r.ref.SkillName(id)}
}

func (r *Record) fullFrom(s *snapshot) *fullDoc {
	h := fullHeader{
		Magic:       hexutil.Uint64(format.Magic),
		Version:     s.Version.String(),
		VersionID:   s.Version.Raw(),
		FileSize:    s.FileSize,
		WeaponSet:   s.WeaponSet,
		Name:        s.Name,
		Status:      s.Status,
		IsHardcore:  s.Status&StatusHardcore != 0,
		IsDead:      s.Status&StatusDied != 0,
		IsExpansion: s.Status&StatusExpansion != 0,
		IsLadder:    s.Status&StatusLadder != 0,
		Title:       s.Title,
		TitleName:   r.TitleName(),
		ClassID:     uint8(s.Class),
		Class:       r.ClassName(),
		Level:       s.Level,
		Created:     s.Created,
		LastPlayed:  s.LastPlayed,
		LeftSkill:   r.skillRef(s.LeftSkill),
		RightSkill:  r.skillRef(s.RightSkill),
		Appearance:  s.Appearance,
		Difficulty:  s.Difficulty,
		MapID:       s.MapID,
	}
	if s.Checksum != nil {
		c := hexutil.Uint64(*s.Checksum)
		h.Checksum = &c
	}
	for _, id := range s.AssignedSkills {
		h.AssignedSkills = append(h.AssignedSkills, r.skillRef(id))
	}
	if s.LeftSwapSkill != nil {
		ref := r.skillRef(*s.LeftSwapSkill)
		h.LeftSwapSkill = &ref
	}
	if s.RightSwapSkill != nil {
		ref := r.skillRef(*s.RightSwapSkill)
		h.RightSwapSkill = &ref
	}
	if s.D2RAppearance != nil {
		for i := 0; i < NumAppearanceSlots; i++ {
			slot, err := r.D2RAppearance(i)
			if err != nil {
				break
			}
			h.D2RAppearance = append(h.D2RAppearance, fullSlot{
				Code:     slot.Code,
				ItemName: r.ref.ItemName(slot.Code),
				Tint:     slot.Tint,
				Quality:  slot.Quality,
				Extra:    slot.Extra[:],
			})
		}
	}
	if m := s.Mercenary; m != nil {
		h.Mercenary = &fullMerc{
			Dead:       m.Dead,
			Seed:       m.Seed,
			NameID:     m.NameID,
			Type:       m.Type,
			Experience: m.Experience,
		}
	}

	doc := &fullDoc{
		Header:   h,
		StatsRaw: s.StatsRaw,
		Acts:     s.Acts,
		Items:    fullItems{Count: r.ItemCount(), Data: s.Items},
	}
	for _, a := range s.Attributes {
		doc.Attributes = append(doc.Attributes, fullAttribute{ID: uint16(a.id), Name: a.id.String(), Value: a.value})
	}
	cls, _ := r.ref.Class(uint8(s.Class))
	for i, points := range s.ClassSkills {
		sk := fullSkill{Index: i, Points: points}
		if cls != nil {
			sk.ID = cls.FirstSkill + uint32(i)
			sk.Name = cls.SkillName(i)
		}
		doc.Skills = append(doc.Skills, sk)
	}
	return doc
}

func (r *Record) fullTo(doc *fullDoc) (*snapshot, error) {
	h := &doc.Header
	if uint32(h.Magic) != format.Magic {
		return nil, fmt.Errorf("bad magic %#x", uint64(h.Magic))
	}
	v, err := format.FromRaw(h.VersionID)
	if err != nil {
		return nil, err
	}
	s := &snapshot{
		Version:    v,
		FileSize:   h.FileSize,
		WeaponSet:  h.WeaponSet,
		Name:       h.Name,
		Status:     h.Status,
		Title:      h.Title,
		Class:      Class(h.ClassID),
		Level:      h.Level,
		Created:    h.Created,
		LastPlayed: h.LastPlayed,
		LeftSkill:  h.LeftSkill.ID,
		RightSkill: h.RightSkill.ID,
		Appearance: h.Appearance,
		Difficulty: h.Difficulty,
		MapID:      h.MapID,
		StatsRaw:   doc.StatsRaw,
		Acts:       doc.Acts,
		Items:      doc.Items.Data,
	}
	if h.Checksum != nil {
		c := uint32(*h.Checksum)
		s.Checksum = &c
	}
	for _, ref := range h.AssignedSkills {
		s.AssignedSkills = append(s.AssignedSkills, ref.ID)
	}
	if h.LeftSwapSkill != nil {
		id := h.LeftSwapSkill.ID
		s.LeftSwapSkill = &id
	}
	if h.RightSwapSkill != nil {
		id := h.RightSwapSkill.ID
		s.RightSwapSkill = &id
	}
	if h.D2RAppearance != nil {
		if s.D2RAppearance, err = packSlots(h.D2RAppearance); err != nil {
			return nil, err
		}
	}
	if m := h.Mercenary; m != nil {
		s.Mercenary = &Mercenary{
			Dead:       m.Dead,
			Seed:       m.Seed,
			NameID:     m.NameID,
			Type:       m.Type,
			Experience: m.Experience,
		}
	}
	if v.LongHeader() {
		s.Attributes = make([]attributeValue, 0, len(doc.Attributes))
		for _, a := range doc.Attributes {
			s.Attributes = append(s.Attributes, attributeValue{id: stats.ID(a.ID), value: a.Value})
		}
		s.ClassSkills = make([]byte, 0, len(doc.Skills))
		for i, sk := range doc.Skills {
			if sk.Index != i {
				return nil, fmt.Errorf("skill index %d at position %d", sk.Index, i)
			}
			s.ClassSkills = append(s.ClassSkills, sk.Points)
		}
	}
	return s, nil
}

func packSlots(slots []fullSlot) ([]byte, error) {
	if len(slots) != NumAppearanceSlots {
		return nil, fmt.Errorf("%d appearance slots, want %d: %w", len(slots), NumAppearanceSlots, ErrValueOutOfRange)
	}
	out := make([]byte, 0, format.D2RAppearanceSize)
	for _, sl := range slots {
		code := []byte(sl.Code)
		if len(code) > 4 || len(sl.Extra) > 2 {
			return nil, fmt.Errorf("appearance slot %q: %w", sl.Code, ErrValueOutOfRange)
		}
		p := make([]byte, appearanceSlotSize)
		copy(p, code)
		p[4], p[5] = sl.Tint, sl.Quality
		copy(p[6:], sl.Extra)
		out = append(out, p...)
	}
	return out, nil
}
