package character

import (
	"fmt"

	"github.com/rony4d/d2s-asset/format"
)

// Every header accessor goes through these four helpers: the descriptor comes
// from the record's layout and the value lives in the header buffer.

func (r *Record) descriptor(f format.Field) (format.Descriptor, bool) {
	if r.layout == nil {
		return format.Descriptor{}, false
	}
	return r.layout.Field(f)
}

// getUint reads element i of f. Absent fields read zero.
func (r *Record) getUint(f format.Field, i int) uint64 {
	d, ok := r.descriptor(f)
	if !ok || i < 0 || i >= d.Count || d.Width > 8 {
		return 0
	}
	v, err := r.header.ReadUint(d.ElementOffset(i), d.Width)
	if err != nil {
		return 0
	}
	return v
}

// setUint writes element i of f.
func (r *Record) setUint(f format.Field, i int, v uint64) error {
	d, ok := r.descriptor(f)
	if !ok {
		return fmt.Errorf("%s: %w", f, ErrFieldNotPresent)
	}
	if i < 0 || i >= d.Count {
		return fmt.Errorf("%s[%d]: %w", f, i, ErrValueOutOfRange)
	}
	if v > d.MaxValue() {
		return fmt.Errorf("%s=%d: %w", f, v, ErrValueOutOfRange)
	}
	return r.header.WriteUint(d.ElementOffset(i), d.Width, v)
}

// getBytes returns a copy of the whole field.
func (r *Record) getBytes(f format.Field) []byte {
	d, ok := r.descriptor(f)
	if !ok {
		return nil
	}
	p, err := r.header.ReadBytes(d.Offset, d.Size())
	if err != nil {
		return nil
	}
	return p
}

// setBytes overwrites the field with p, zero padding a shorter value.
func (r *Record) setBytes(f format.Field, p []byte) error {
	d, ok := r.descriptor(f)
	if !ok {
		return fmt.Errorf("%s: %w", f, ErrFieldNotPresent)
	}
	if len(p) > d.Size() {
		return fmt.Errorf("%s: %d bytes exceed %d: %w", f, len(p), d.Size(), ErrValueOutOfRange)
	}
	padded := make([]byte, d.Size())
	copy(padded, p)
	return r.header.WriteBytes(d.Offset, padded)
}

// writeDefaults stamps every field default and filler of the layout.
func (r *Record) writeDefaults() error {
	for _, f := range r.layout.Fields() {
		d, _ := r.layout.Field(f)
		if d.Default == nil {
			continue
		}
		if err := r.header.WriteBytes(d.Offset, d.Default); err != nil {
			return err
		}
	}
	return r.writeFillers()
}

func (r *Record) writeFillers() error {
	for _, fill := range r.layout.Fillers() {
		if err := r.header.WriteBytes(fill.Offset, fill.Bytes); err != nil {
			return err
		}
	}
	return nil
}
