// Package format describes the on-disk layout of a character file for every
// known format revision.
//
// This package provides:
//   - The ordered Version enum and the raw version tag boundary table
//   - Capability predicates ("does this revision have a checksum?")
//   - The per-version field table (offset, width, element count, default bytes)
//   - The fixed filler byte sequences each revision expects on disk
//
// All offset and width decisions are expressed as "since version X" rows, so
// supporting a new revision means adding rows to the table rather than
// branching in every accessor.
package format

import (
	"errors"
	"fmt"
	"strings"
)

// Version is a known format revision. The order of the constants is the
// chronological order of the revisions; comparisons such as v >= V109 are the
// way capability checks are expressed.
type Version uint8

const (
	// VUnknown is returned for raw tags older than the first known revision.
	VUnknown Version = iota
	// V100 covers v1.00 through v1.06.
	V100
	// V107 covers v1.07 and the expansion set v1.08.
	V107
	// V108 is the classic-only v1.08.
	V108
	// V109 introduced the long header, checksum and file size.
	V109
	// V110 covers v1.10 through v1.14d.
	V110
	// V100R is the Resurrected baseline (UTF-8 names, extended appearance).
	V100R
	// V120 moved the name to the end of the header.
	V120
	// V140 is the newest known revision.
	V140
)

// LatestVersion is the revision new characters are created with by default.
const LatestVersion = V140

// Magic is the 4-byte identifier at offset 0 of every character file.
const Magic uint32 = 0xAA55AA55

// ErrUnknownVersion is returned when a raw version tag or a version name does
// not map to any known revision.
var ErrUnknownVersion = errors.New("unknown character file version")

type versionInfo struct {
	version Version
	raw     uint32
	name    string
}

// versionTable is ordered by raw tag; FromRaw picks the last entry whose raw
// value does not exceed the input.
var versionTable = []versionInfo{
	{V100, 0x47, "v1.00"},
	{V107, 0x57, "v1.07"},
	{V108, 0x59, "v1.08"},
	{V109, 0x5C, "v1.09"},
	{V110, 0x60, "v1.10"},
	{V100R, 0x61, "v1.0.x-R"},
	{V120, 0x62, "v1.2.x-R"},
	{V140, 0x63, "v1.4.x-R"},
}

// FromRaw maps the raw version tag stored at offset 4 to a revision.
func FromRaw(raw uint32) (Version, error) {
	v := VUnknown
	for _, info := range versionTable {
		if raw < info.raw {
			break
		}
		v = info.version
	}
	if v == VUnknown {
		return VUnknown, fmt.Errorf("%w: raw tag 0x%X", ErrUnknownVersion, raw)
	}
	return v, nil
}

// ParseVersion accepts either a revision name ("v1.10", "v110") or a raw tag
// ("0x60", "96").
func ParseVersion(s string) (Version, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, info := range versionTable {
		name := strings.ToLower(info.name)
		if s == name || s == strings.ReplaceAll(name, ".", "") || s == info.version.ident() {
			return info.version, nil
		}
	}
	var raw uint32
	if _, err := fmt.Sscan(s, &raw); err == nil {
		return FromRaw(raw)
	}
	return VUnknown, fmt.Errorf("%w: %q", ErrUnknownVersion, s)
}

// Versions returns all known revisions, oldest first.
func Versions() []Version {
	out := make([]Version, 0, len(versionTable))
	for _, info := range versionTable {
		out = append(out, info.version)
	}
	return out
}

func (v Version) info() (versionInfo, bool) {
	for _, info := range versionTable {
		if info.version == v {
			return info, true
		}
	}
	return versionInfo{}, false
}

func (v Version) ident() string {
	switch v {
	case V100:
		return "v100"
	case V107:
		return "v107"
	case V108:
		return "v108"
	case V109:
		return "v109"
	case V110:
		return "v110"
	case V100R:
		return "v100r"
	case V120:
		return "v120"
	case V140:
		return "v140"
	}
	return "unknown"
}

// Raw returns the canonical raw tag written to disk for v.
func (v Version) Raw() uint32 {
	info, _ := v.info()
	return info.raw
}

// Valid reports whether v is a known revision.
func (v Version) Valid() bool {
	_, ok := v.info()
	return ok
}

func (v Version) String() string {
	if info, ok := v.info(); ok {
		return info.name
	}
	return "unknown"
}

// LongHeader reports whether v uses the 335-byte header.
func (v Version) LongHeader() bool { return v >= V109 }

// HasChecksum reports whether the checksum and file size fields exist.
func (v Version) HasChecksum() bool { return v >= V109 }

// HasTimestamps reports whether the created/last-played fields exist.
func (v Version) HasTimestamps() bool { return v >= V109 }

// HasSwapSkills reports whether the weapon-swap skill fields exist.
func (v Version) HasSwapSkills() bool { return v >= V109 }

// HasMercenary reports whether the hireling block exists in the header.
func (v Version) HasMercenary() bool { return v >= V109 }

// SupportsExpansion reports whether the expansion status bit is legal.
// The classic-only v1.08 release never carried expansion characters.
func (v Version) SupportsExpansion() bool { return v >= V107 && v != V108 }

// SupportsLadder reports whether the ladder status bit is legal.
func (v Version) SupportsLadder() bool { return v >= V110 }

// UTF8Names reports whether names are stored as UTF-8.
func (v Version) UTF8Names() bool { return v >= V100R }

// HasD2RAppearance reports whether the 48-byte appearance extension exists.
func (v Version) HasD2RAppearance() bool { return v >= V100R }

// D2RItems reports whether the item list uses the Resurrected bit layout.
func (v Version) D2RItems() bool { return v >= V100R }
