// Package refdata provides the game reference tables a character record
// consults for display names and for the defaults of new characters.
package refdata

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Source is the lookup interface injected into character records.
type Source interface {
	// Class returns the class with the given id.
	Class(id uint8) (*Class, bool)
	// ClassByName resolves a class by case-insensitive name.
	ClassByName(name string) (*Class, bool)
	// SkillName returns the name of a global skill id, or "" if unknown.
	SkillName(id uint32) string
	// Title returns the honorific for a title value, or "" for none.
	Title(expansion, hardcore, female bool, title uint8) string
	// ItemName returns the name of a 3 or 4 character item code.
	ItemName(code string) string
}

// Class holds the static data of a character class.
type Class struct {
	ID         uint8    `yaml:"id"`
	Name       string   `yaml:"name"`
	Female     bool     `yaml:"female"`
	Expansion  bool     `yaml:"expansion"`
	Strength   uint16   `yaml:"strength"`
	Dexterity  uint16   `yaml:"dexterity"`
	Vitality   uint16   `yaml:"vitality"`
	Energy     uint16   `yaml:"energy"`
	Life       uint16   `yaml:"life"`
	Mana       uint16   `yaml:"mana"`
	Stamina    uint16   `yaml:"stamina"`
	FirstSkill uint32   `yaml:"first_skill"`
	Skills     []string `yaml:"skills"`
}

// SkillName returns the name of class skill i.
func (c *Class) SkillName(i int) string {
	if i < 0 || i >= len(c.Skills) {
		return ""
	}
	return c.Skills[i]
}

type titleRow struct {
	Expansion bool   `yaml:"expansion"`
	Hardcore  bool   `yaml:"hardcore"`
	From      uint8  `yaml:"from"`
	Male      string `yaml:"male"`
	Female    string `yaml:"female"`
}

type tablesFile struct {
	GeneralSkills []string          `yaml:"general_skills"`
	Classes       []Class           `yaml:"classes"`
	Titles        []titleRow        `yaml:"titles"`
	Items         map[string]string `yaml:"items"`
}

// Tables is the YAML-backed Source.
type Tables struct {
	general []string
	classes map[uint8]*Class
	byName  map[string]*Class
	skills  map[uint32]string
	titles  []titleRow
	items   map[string]string
}

var _ Source = (*Tables)(nil)

//go:embed data/tables.yaml
var defaultTables []byte

var (
	defaultOnce sync.Once
	defaultSrc  *Tables
)

// Default returns the embedded tables. It panics if they are malformed, which
// the package tests rule out.
func Default() *Tables {
	defaultOnce.Do(func() {
		t, err := Parse(defaultTables)
		if err != nil {
			panic(fmt.Sprintf("refdata: embedded tables: %v", err))
		}
		defaultSrc = t
	})
	return defaultSrc
}

// LoadFile loads tables from a YAML file in the embedded format.
func LoadFile(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read refdata: %w", err)
	}
	return Parse(data)
}

// Parse builds tables from YAML.
func Parse(data []byte) (*Tables, error) {
	var f tablesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse refdata: %w", err)
	}
	t := &Tables{
		general: f.GeneralSkills,
		classes: make(map[uint8]*Class, len(f.Classes)),
		byName:  make(map[string]*Class, len(f.Classes)),
		skills:  make(map[uint32]string),
		titles:  f.Titles,
		items:   f.Items,
	}
	for i, name := range f.GeneralSkills {
		t.skills[uint32(i)] = name
	}
	for i := range f.Classes {
		c := &f.Classes[i]
		if _, dup := t.classes[c.ID]; dup {
			return nil, fmt.Errorf("parse refdata: duplicate class id %d", c.ID)
		}
		t.classes[c.ID] = c
		t.byName[strings.ToLower(c.Name)] = c
		for j, name := range c.Skills {
			t.skills[c.FirstSkill+uint32(j)] = name
		}
	}
	sort.SliceStable(t.titles, func(i, j int) bool { return t.titles[i].From < t.titles[j].From })
	if t.items == nil {
		t.items = map[string]string{}
	}
	return t, nil
}

// Class implements Source.
func (t *Tables) Class(id uint8) (*Class, bool) {
	c, ok := t.classes[id]
	return c, ok
}

// ClassByName implements Source.
func (t *Tables) ClassByName(name string) (*Class, bool) {
	c, ok := t.byName[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// Classes returns all classes ordered by id.
func (t *Tables) Classes() []*Class {
	out := make([]*Class, 0, len(t.classes))
	for _, c := range t.classes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SkillName implements Source.
func (t *Tables) SkillName(id uint32) string {
	return t.skills[id]
}

// Title implements Source.
func (t *Tables) Title(expansion, hardcore, female bool, title uint8) string {
	name := ""
	for _, row := range t.titles {
		if row.Expansion != expansion || row.Hardcore != hardcore || row.From > title {
			continue
		}
		name = row.Male
		if female {
			name = row.Female
		}
	}
	return name
}

// ItemName implements Source.
func (t *Tables) ItemName(code string) string {
	return t.items[strings.ToLower(strings.TrimSpace(code))]
}
