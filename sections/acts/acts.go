// Package acts holds the quest, waypoint and NPC-introduction segment that
// directly follows the character header.
//
// From v1.09 the segment has a fixed size of 430 bytes made of three marked
// blocks:
//
//	"Woo!" u32 version u16 size   3 x 96 quest bytes        (298 bytes)
//	"WS"   u32 version u16 size   3 x 24 waypoint bytes     (80 bytes)
//	"w4"   u16 size               48 NPC bytes              (52 bytes)
//
// Older files are kept as an opaque run from "Woo!" up to the stats marker.
package acts

import (
	"encoding/binary"
	"fmt"

	"github.com/rony4d/d2s-asset/checksum"
	"github.com/rony4d/d2s-asset/format"
	"github.com/rony4d/d2s-asset/sections"
	"github.com/rony4d/d2s-asset/utils/fast"
)

const (
	questsSize    = 298
	waypointsSize = 80
	npcSize       = 52

	// Size is the segment length from v1.09 onwards.
	Size = questsSize + waypointsSize + npcSize

	questsVersion    = 6
	waypointsVersion = 1

	waypointsOffset = questsSize
	npcOffset       = questsSize + waypointsSize

	// per-difficulty waypoint block: 2 header bytes + 5 bit-field bytes + 17 reserved
	waypointBlockSize  = 24
	waypointBlockStart = waypointsOffset + 8
	waypointBitsOffset = 2

	// NumWaypoints is the number of waypoints per difficulty.
	NumWaypoints = 39
	// NumDifficulties is the number of difficulty levels.
	NumDifficulties = 3
)

var waypointBlockHeader = [2]byte{0x02, 0x01}

// Acts is the decoded acts segment. The zero value is empty and must be
// populated by Read or New before use.
type Acts struct {
	version   format.Version
	raw       []byte
	corrected bool
}

var _ sections.Segment = (*Acts)(nil)

// New returns the segment of a freshly created character.
func New(ctx sections.Context) *Acts {
	a := &Acts{version: ctx.Version}
	w := fast.NewWriter(make([]byte, 0, Size))

	w.Write([]byte(sections.QuestsMarker))
	w.WriteUint32(questsVersion)
	w.WriteUint16(questsSize)
	w.Write(make([]byte, questsSize-10))
	if !ctx.Version.LongHeader() {
		a.raw = w.Bytes()
		return a
	}

	w.Write([]byte(sections.WaypointsMarker))
	w.WriteUint32(waypointsVersion)
	w.WriteUint16(waypointsSize)
	for d := 0; d < NumDifficulties; d++ {
		block := make([]byte, waypointBlockSize)
		copy(block, waypointBlockHeader[:])
		if d == 0 {
			block[waypointBitsOffset] = 0x01
		}
		w.Write(block)
	}

	w.Write([]byte(sections.NPCMarker))
	w.WriteUint16(npcSize)
	w.Write(make([]byte, npcSize-4))

	a.raw = w.Bytes()
	return a
}

// Read implements sections.Segment.
func (a *Acts) Read(ctx sections.Context, tail []byte) (int, error) {
	a.version = ctx.Version
	a.corrected = false
	if len(tail) < len(sections.QuestsMarker) || string(tail[:4]) != sections.QuestsMarker {
		return 0, fmt.Errorf("quests: %w", sections.ErrMissingMarker)
	}

	if !ctx.Version.LongHeader() {
		end := sections.IndexMarker(tail, sections.StatsMarker, len(sections.QuestsMarker))
		if end < 0 {
			return 0, fmt.Errorf("quests: %w", sections.ErrTruncated)
		}
		a.raw = append([]byte(nil), tail[:end]...)
		return end, nil
	}

	if len(tail) < Size {
		return 0, fmt.Errorf("acts need %d bytes, have %d: %w", Size, len(tail), sections.ErrTruncated)
	}
	if string(tail[waypointsOffset:waypointsOffset+2]) != sections.WaypointsMarker {
		return 0, fmt.Errorf("waypoints: %w", sections.ErrMissingMarker)
	}
	if string(tail[npcOffset:npcOffset+2]) != sections.NPCMarker {
		return 0, fmt.Errorf("npc: %w", sections.ErrMissingMarker)
	}
	a.raw = append([]byte(nil), tail[:Size]...)
	a.correct()
	return Size, nil
}

// correct repairs the block headers and the normal-difficulty town waypoint,
// which the game always expects to be present.
func (a *Acts) correct() {
	fix16 := func(off int, want uint16) {
		if binary.LittleEndian.Uint16(a.raw[off:]) != want {
			binary.LittleEndian.PutUint16(a.raw[off:], want)
			a.corrected = true
		}
	}
	fix32 := func(off int, want uint32) {
		if binary.LittleEndian.Uint32(a.raw[off:]) != want {
			binary.LittleEndian.PutUint32(a.raw[off:], want)
			a.corrected = true
		}
	}
	fix32(4, questsVersion)
	fix16(8, questsSize)
	fix32(waypointsOffset+2, waypointsVersion)
	fix16(waypointsOffset+6, waypointsSize)
	fix16(npcOffset+2, npcSize)

	for d := 0; d < NumDifficulties; d++ {
		off := waypointBlockStart + d*waypointBlockSize
		if a.raw[off] != waypointBlockHeader[0] || a.raw[off+1] != waypointBlockHeader[1] {
			a.raw[off], a.raw[off+1] = waypointBlockHeader[0], waypointBlockHeader[1]
			a.corrected = true
		}
	}
	if a.raw[waypointBlockStart+waypointBitsOffset]&0x01 == 0 {
		a.raw[waypointBlockStart+waypointBitsOffset] |= 0x01
		a.corrected = true
	}
}

// Corrected reports whether Read had to repair the segment. The repair is
// persisted on the next save.
func (a *Acts) Corrected() bool {
	return a.corrected
}

// Write implements sections.Segment.
func (a *Acts) Write(w *fast.Writer) error {
	if len(a.raw) == 0 {
		return fmt.Errorf("acts: %w", sections.ErrTruncated)
	}
	w.Write(a.raw)
	return nil
}

// Size implements sections.Segment.
func (a *Acts) Size() int {
	return len(a.raw)
}

// ContributeChecksum implements sections.Segment.
func (a *Acts) ContributeChecksum(s *checksum.State) {
	s.Update(a.raw)
}

// Bytes returns a copy of the encoded segment.
func (a *Acts) Bytes() []byte {
	return append([]byte(nil), a.raw...)
}

// Compatible reports whether a segment read at from can be written unchanged
// into a file of version to.
func Compatible(from, to format.Version) bool {
	return from.LongHeader() == to.LongHeader()
}

func (a *Acts) waypointBit(difficulty, index int) (int, byte, error) {
	if !a.version.LongHeader() {
		return 0, 0, fmt.Errorf("waypoints are not addressable before %s", format.V109)
	}
	if difficulty < 0 || difficulty >= NumDifficulties {
		return 0, 0, fmt.Errorf("difficulty %d out of range", difficulty)
	}
	if index < 0 || index >= NumWaypoints {
		return 0, 0, fmt.Errorf("waypoint %d out of range", index)
	}
	off := waypointBlockStart + difficulty*waypointBlockSize + waypointBitsOffset + index/8
	return off, byte(1) << uint(index%8), nil
}

// Waypoint reports whether waypoint index is active in the given difficulty.
func (a *Acts) Waypoint(difficulty, index int) bool {
	off, mask, err := a.waypointBit(difficulty, index)
	if err != nil {
		return false
	}
	return a.raw[off]&mask != 0
}

// SetWaypoint activates or clears a waypoint.
func (a *Acts) SetWaypoint(difficulty, index int, active bool) error {
	off, mask, err := a.waypointBit(difficulty, index)
	if err != nil {
		return err
	}
	if active {
		a.raw[off] |= mask
	} else {
		a.raw[off] &^= mask
	}
	return nil
}
