package character

import (
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/rony4d/d2s-asset/format"
	"github.com/rony4d/d2s-asset/sections/stats"
)

type compactDoc struct {
	Header     compactHeader     `json:"header"`
	Attributes map[string]uint64 `json:"attributes,omitempty"`
	Skills     []compactSkill    `json:"skills,omitempty"`
	StatsRaw   hexutil.Bytes     `json:"stats_raw,omitempty"`
	Acts       hexutil.Bytes     `json:"acts"`
	Items      compactItems      `json:"items"`
}

type compactHeader struct {
	Identifier     string          `json:"identifier"`
	Version        uint32          `json:"version"`
	Filesize       *uint32         `json:"filesize,omitempty"`
	Checksum       *hexutil.Uint64 `json:"checksum,omitempty"`
	ActiveArms     uint32          `json:"active_arms"`
	Name           string          `json:"name"`
	Status         compactStatus   `json:"status"`
	Progression    uint8           `json:"progression"`
	Class          string          `json:"class"`
	Level          uint8           `json:"level"`
	Created        *uint32         `json:"created,omitempty"`
	LastPlayed     *uint32         `json:"last_played,omitempty"`
	AssignedSkills []uint32        `json:"assigned_skills"`
	LeftSkill      uint32          `json:"left_skill"`
	RightSkill     uint32          `json:"right_skill"`
	LeftSwapSkill  *uint32         `json:"left_swap_skill,omitempty"`
	RightSwapSkill *uint32         `json:"right_swap_skill,omitempty"`
	MenuAppearance hexutil.Bytes   `json:"menu_appearance"`
	D2RAppearance  hexutil.Bytes   `json:"d2r_appearance,omitempty"`
	Difficulty     hexutil.Bytes   `json:"difficulty"`
	MapID          uint32          `json:"map_id"`
	Mercenary      *compactMerc    `json:"mercenary,omitempty"`
}

type compactStatus struct {
	Expansion bool  `json:"expansion"`
	Died      bool  `json:"died"`
	Hardcore  bool  `json:"hardcore"`
	Ladder    bool  `json:"ladder"`
	Other     uint8 `json:"other,omitempty"`
}

type compactMerc struct {
	Dead       bool   `json:"dead"`
	ID         uint32 `json:"id"`
	NameID     uint16 `json:"name_id"`
	Type       uint16 `json:"type"`
	Experience uint32 `json:"experience"`
}

type compactSkill struct {
	ID     uint32 `json:"id"`
	Name   string `json:"name,omitempty"`
	Points uint8  `json:"points"`
}

type compactItems struct {
	Count int           `json:"count"`
	Data  hexutil.Bytes `json:"data"`
}

const knownStatus = StatusHardcore | StatusDied | StatusExpansion | StatusLadder

func (r *Record) compactFrom(s *snapshot) *compactDoc {
	doc := &compactDoc{
		Header: compactHeader{
			Identifier:  fmt.Sprintf("%08x", format.Magic),
			Version:     s.Version.Raw(),
			Filesize:    s.FileSize,
			ActiveArms:  s.WeaponSet,
			Name:        s.Name,
			Progression: s.Title,
			Class:       r.ClassName(),
			Level:       s.Level,
			Status: compactStatus{
				Expansion: s.Status&StatusExpansion != 0,
				Died:      s.Status&StatusDied != 0,
				Hardcore:  s.Status&StatusHardcore != 0,
				Ladder:    s.Status&StatusLadder != 0,
				Other:     s.Status &^ knownStatus,
			},
			Created:        s.Created,
			LastPlayed:     s.LastPlayed,
			AssignedSkills: s.AssignedSkills,
			LeftSkill:      s.LeftSkill,
			RightSkill:     s.RightSkill,
			LeftSwapSkill:  s.LeftSwapSkill,
			RightSwapSkill: s.RightSwapSkill,
			MenuAppearance: s.Appearance,
			D2RAppearance:  s.D2RAppearance,
			Difficulty:     s.Difficulty,
			MapID:          s.MapID,
		},
		StatsRaw: s.StatsRaw,
		Acts:     s.Acts,
		Items:    compactItems{Count: r.ItemCount(), Data: s.Items},
	}
	if s.Checksum != nil {
		c := hexutil.Uint64(*s.Checksum)
		doc.Header.Checksum = &c
	}
	if m := s.Mercenary; m != nil {
		doc.Header.Mercenary = &compactMerc{
			Dead:       m.Dead,
			ID:         m.Seed,
			NameID:     m.NameID,
			Type:       m.Type,
			Experience: m.Experience,
		}
	}
	if s.Attributes != nil {
		doc.Attributes = make(map[string]uint64, len(s.Attributes))
		for _, a := range s.Attributes {
			doc.Attributes[a.id.String()] = a.value
		}
	}
	cls, _ := r.ref.Class(uint8(s.Class))
	for i, points := range s.ClassSkills {
		sk := compactSkill{Points: points}
		if cls != nil {
			sk.ID = cls.FirstSkill + uint32(i)
			sk.Name = cls.SkillName(i)
		} else {
			sk.ID = uint32(i)
		}
		doc.Skills = append(doc.Skills, sk)
	}
	return doc
}

func (r *Record) compactTo(doc *compactDoc) (*snapshot, error) {
	h := &doc.Header
	if h.Identifier != fmt.Sprintf("%08x", format.Magic) {
		return nil, fmt.Errorf("bad identifier %q", h.Identifier)
	}
	v, err := format.FromRaw(h.Version)
	if err != nil {
		return nil, err
	}
	class, err := r.parseClassName(h.Class)
	if err != nil {
		return nil, err
	}

	status := h.Status.Other &^ knownStatus
	for bit, on := range map[uint8]bool{
		StatusExpansion: h.Status.Expansion,
		StatusDied:      h.Status.Died,
		StatusHardcore:  h.Status.Hardcore,
		StatusLadder:    h.Status.Ladder,
	} {
		if on {
			status |= bit
		}
	}

	s := &snapshot{
		Version:        v,
		FileSize:       h.Filesize,
		WeaponSet:      h.ActiveArms,
		Name:           h.Name,
		Status:         status,
		Title:          h.Progression,
		Class:          class,
		Level:          h.Level,
		Created:        h.Created,
		LastPlayed:     h.LastPlayed,
		AssignedSkills: h.AssignedSkills,
		LeftSkill:      h.LeftSkill,
		RightSkill:     h.RightSkill,
		LeftSwapSkill:  h.LeftSwapSkill,
		RightSwapSkill: h.RightSwapSkill,
		Appearance:     h.MenuAppearance,
		D2RAppearance:  h.D2RAppearance,
		Difficulty:     h.Difficulty,
		MapID:          h.MapID,
		StatsRaw:       doc.StatsRaw,
		Acts:           doc.Acts,
		Items:          doc.Items.Data,
	}
	if h.Checksum != nil {
		c := uint32(*h.Checksum)
		s.Checksum = &c
	}
	if m := h.Mercenary; m != nil {
		s.Mercenary = &Mercenary{
			Dead:       m.Dead,
			Seed:       m.ID,
			NameID:     m.NameID,
			Type:       m.Type,
			Experience: m.Experience,
		}
	}
	if v.LongHeader() {
		// the game writes attributes in id order
		s.Attributes = []attributeValue{}
		for name, value := range doc.Attributes {
			id, err := stats.ParseID(name)
			if err != nil {
				return nil, err
			}
			s.Attributes = append(s.Attributes, attributeValue{id: id, value: value})
		}
		sort.Slice(s.Attributes, func(i, j int) bool { return s.Attributes[i].id < s.Attributes[j].id })
		s.ClassSkills = make([]byte, 0, len(doc.Skills))
		for _, sk := range doc.Skills {
			s.ClassSkills = append(s.ClassSkills, sk.Points)
		}
	}
	return s, nil
}

// parseClassName resolves a class through the reference tables first, then
// by the built-in names and ids.
func (r *Record) parseClassName(name string) (Class, error) {
	if c, ok := r.ref.ClassByName(name); ok {
		return Class(c.ID), nil
	}
	return ParseClass(name)
}
