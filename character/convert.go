package character

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rony4d/d2s-asset/format"
	"github.com/rony4d/d2s-asset/sections/acts"
	"github.com/rony4d/d2s-asset/sections/items"
	"github.com/rony4d/d2s-asset/sections/stats"
)

// ErrCrossesHeaderBoundary is returned when a conversion would change between
// the short and the long header layouts.
var ErrCrossesHeaderBoundary = errors.New("conversion between short and long headers is not supported")

// ConvertTo returns a separate record holding the character re-laid for
// version v. The receiver is not modified and shares no buffers with the
// result.
func (r *Record) ConvertTo(v format.Version) (*Record, error) {
	if err := r.requireOpen(); err != nil {
		return nil, err
	}
	if !v.Valid() {
		return nil, r.fail(UnsupportedVersion, r.path, fmt.Errorf("%d: %w", v, format.ErrUnknownVersion))
	}
	if v.LongHeader() != r.version.LongHeader() {
		return nil, r.fail(UnsupportedVersion, r.path, fmt.Errorf("%s to %s: %w", r.version, v, ErrCrossesHeaderBoundary))
	}
	if !items.Compatible(r.version, v) || !acts.Compatible(r.version, v) || !stats.Compatible(r.version, v) {
		return nil, r.fail(InvalidItemInventory, r.path, fmt.Errorf("items from %s cannot be stored in %s", r.version, v))
	}

	out := New(r.options()...)
	if err := out.initHeader(v); err != nil {
		return nil, err
	}

	for _, f := range out.layout.Fields() {
		switch f {
		case format.FieldMagic, format.FieldVersion, format.FieldFileSize, format.FieldChecksum, format.FieldName:
			continue
		}
		src, ok := r.descriptor(f)
		if !ok {
			continue
		}
		dst, _ := out.layout.Field(f)
		if src.Size() != dst.Size() {
			continue
		}
		p, err := r.header.ReadBytes(src.Offset, src.Size())
		if err != nil {
			return nil, err
		}
		if err := out.header.WriteBytes(dst.Offset, p); err != nil {
			return nil, err
		}
	}

	raw, err := encodeName(r.Name(), v)
	if err != nil {
		return nil, r.fail(InvalidHeader, r.path, err)
	}
	_ = out.setBytes(format.FieldName, raw)

	out.state = stateOpen
	out.normalizeStatus()

	tail := common.CopyBytes(r.acts.Bytes())
	tail = append(tail, r.stats.Bytes()...)
	tail = append(tail, r.items.Bytes()...)
	if kind, err := out.readSegments(tail); err != nil {
		return nil, r.fail(kind, r.path, err)
	}
	out.state = stateOpen
	out.syncLevel()
	return out, nil
}
