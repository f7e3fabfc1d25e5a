// Package items keeps the item lists that run from the first "JM" marker to
// the end of the file. Item bits are not decoded; the segment is carried
// byte for byte.
package items

import (
	"encoding/binary"
	"fmt"

	"github.com/rony4d/d2s-asset/checksum"
	"github.com/rony4d/d2s-asset/format"
	"github.com/rony4d/d2s-asset/sections"
	"github.com/rony4d/d2s-asset/utils/fast"
)

const (
	mercMarker  = "jf"
	golemMarker = "kf"
)

// Items is the raw item segment.
type Items struct {
	version format.Version
	raw     []byte
}

var _ sections.Segment = (*Items)(nil)

// New returns empty player and corpse lists, plus the empty mercenary and
// golem trailer for expansion characters.
func New(ctx sections.Context) *Items {
	w := fast.NewWriter(make([]byte, 0, 16))
	w.Write([]byte(sections.ItemsMarker))
	w.WriteUint16(0)
	w.Write([]byte(sections.ItemsMarker))
	w.WriteUint16(0)
	if ctx.Expansion {
		w.Write([]byte(mercMarker))
		w.Write([]byte(golemMarker))
		w.WriteByte(0)
	}
	return &Items{version: ctx.Version, raw: w.Bytes()}
}

// Read implements sections.Segment. The segment extends to the end of tail.
func (it *Items) Read(ctx sections.Context, tail []byte) (int, error) {
	it.version = ctx.Version
	if len(tail) < len(sections.ItemsMarker) || string(tail[:2]) != sections.ItemsMarker {
		return 0, fmt.Errorf("items: %w", sections.ErrMissingMarker)
	}
	if len(tail) < 4 {
		return 0, fmt.Errorf("items: %w", sections.ErrTruncated)
	}
	it.raw = append([]byte(nil), tail...)
	return len(tail), nil
}

// Write implements sections.Segment.
func (it *Items) Write(w *fast.Writer) error {
	if len(it.raw) == 0 {
		return fmt.Errorf("items: %w", sections.ErrTruncated)
	}
	w.Write(it.raw)
	return nil
}

// Size implements sections.Segment.
func (it *Items) Size() int {
	return len(it.raw)
}

// ContributeChecksum implements sections.Segment.
func (it *Items) ContributeChecksum(s *checksum.State) {
	s.Update(it.raw)
}

// Bytes returns a copy of the encoded segment.
func (it *Items) Bytes() []byte {
	return append([]byte(nil), it.raw...)
}

// SetBytes replaces the segment with p, which must start with the items marker.
func (it *Items) SetBytes(p []byte) error {
	if len(p) < 4 || string(p[:2]) != sections.ItemsMarker {
		return fmt.Errorf("items: %w", sections.ErrMissingMarker)
	}
	it.raw = append([]byte(nil), p...)
	return nil
}

// Count returns the number of top-level items in the player list.
func (it *Items) Count() int {
	if len(it.raw) < 4 {
		return 0
	}
	return int(binary.LittleEndian.Uint16(it.raw[2:]))
}

// Compatible reports whether items read at from can be carried unchanged into
// a file of version to. The item bit layout changed with the resurrected
// releases.
func Compatible(from, to format.Version) bool {
	return from.D2RItems() == to.D2RItems()
}
