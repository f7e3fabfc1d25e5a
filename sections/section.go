// Package sections defines the contract between a character record and the
// codecs that own the variable-length segments following the fixed header.
//
// A character file is the header followed by three segments in a fixed
// order: quests/waypoints/NPC intros ("acts"), attributes and skills
// ("stats"), and the item lists ("items"). The record never looks inside a
// segment; it hands each codec the unread tail of the file, learns how many
// bytes were consumed, and later asks it to append its encoding to the output
// image and to extend the running checksum.
package sections

import (
	"bytes"
	"errors"

	"github.com/rony4d/d2s-asset/checksum"
	"github.com/rony4d/d2s-asset/format"
	"github.com/rony4d/d2s-asset/utils/fast"
)

// Segment markers as they appear on disk.
const (
	QuestsMarker    = "Woo!"
	WaypointsMarker = "WS"
	NPCMarker       = "w4"
	StatsMarker     = "gf"
	SkillsMarker    = "if"
	ItemsMarker     = "JM"
)

var (
	// ErrMissingMarker is returned when a segment does not start with its marker.
	ErrMissingMarker = errors.New("segment marker not found")
	// ErrTruncated is returned when the file ends inside a segment.
	ErrTruncated = errors.New("segment truncated")
)

// Context carries the header facts a segment codec may depend on.
type Context struct {
	Version   format.Version
	Expansion bool
}

// Segment is implemented by the acts, stats and items codecs.
type Segment interface {
	// Read decodes the segment at the start of tail and returns the number of
	// bytes consumed. Implementations copy what they keep; tail must not be
	// retained after the call.
	Read(ctx Context, tail []byte) (int, error)
	// Write appends the encoded segment to w.
	Write(w *fast.Writer) error
	// Size returns the encoded length in bytes.
	Size() int
	// ContributeChecksum extends the running checksum with the encoded bytes.
	ContributeChecksum(s *checksum.State)
}

// IndexMarker returns the offset of the first occurrence of marker in p at or
// after from, or -1.
func IndexMarker(p []byte, marker string, from int) int {
	if from > len(p) {
		return -1
	}
	i := bytes.Index(p[from:], []byte(marker))
	if i < 0 {
		return -1
	}
	return from + i
}
