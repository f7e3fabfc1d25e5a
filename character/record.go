// Package character reads, edits and writes character save files.
//
// A Record owns the fixed header as a byte buffer and holds the three
// segments that follow it (acts, stats, items) through their codecs. Every
// accessor reads and writes the header buffer directly; derived fields such
// as the title, the status bits and the display level are kept consistent by
// the setters.
package character

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/rony4d/d2s-asset/checksum"
	"github.com/rony4d/d2s-asset/format"
	"github.com/rony4d/d2s-asset/refdata"
	"github.com/rony4d/d2s-asset/sections"
	"github.com/rony4d/d2s-asset/sections/acts"
	"github.com/rony4d/d2s-asset/sections/items"
	"github.com/rony4d/d2s-asset/sections/stats"
	"github.com/rony4d/d2s-asset/utils/fast"
)

// MinStartPos is the smallest input that can hold the version-independent
// part of the header.
const MinStartPos = 48

type state int

const (
	stateClosed state = iota
	stateHeaderRead
	stateBasicInfoRead
	stateActsRead
	stateStatsRead
	stateOpen
)

func (s state) String() string {
	switch s {
	case stateClosed:
		return "closed"
	case stateHeaderRead:
		return "header read"
	case stateBasicInfoRead:
		return "basic info read"
	case stateActsRead:
		return "acts read"
	case stateStatsRead:
		return "stats read"
	case stateOpen:
		return "open"
	}
	return "unknown"
}

// Record is an in-memory character.
type Record struct {
	header  *fast.Buffer
	layout  *format.Layout
	version format.Version

	acts  *acts.Acts
	stats *stats.Stats
	items *items.Items

	path    string
	state   state
	lastErr *Error

	ref    refdata.Source
	log    logrus.FieldLogger
	strict bool
}

// Option configures a Record.
type Option func(*Record)

// WithReference injects the reference tables used for names and defaults.
func WithReference(src refdata.Source) Option {
	return func(r *Record) {
		if src != nil {
			r.ref = src
		}
	}
}

// WithLogger sets the logger for warnings about recoverable conditions.
func WithLogger(log logrus.FieldLogger) Option {
	return func(r *Record) {
		if log != nil {
			r.log = log
		}
	}
}

// WithStrictChecksum turns a checksum mismatch on open into a failure.
func WithStrictChecksum(strict bool) Option {
	return func(r *Record) {
		r.strict = strict
	}
}

// New returns a closed record.
func New(opts ...Option) *Record {
	r := &Record{
		ref: refdata.Default(),
		log: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Record) options() []Option {
	return []Option{WithReference(r.ref), WithLogger(r.log), WithStrictChecksum(r.strict)}
}

// IsOpen reports whether the record holds a character.
func (r *Record) IsOpen() bool {
	return r.state == stateOpen
}

// Path returns the file the record was opened from or last saved to.
func (r *Record) Path() string {
	return r.path
}

// Version returns the file revision.
func (r *Record) Version() format.Version {
	return r.version
}

// Reference returns the injected reference tables.
func (r *Record) Reference() refdata.Source {
	return r.ref
}

// LastError returns the error recorded by the last open or save, or nil.
func (r *Record) LastError() *Error {
	return r.lastErr
}

func (r *Record) fail(kind ErrorKind, path string, err error) *Error {
	e := newError(kind, path, err)
	r.lastErr = e
	return e
}

// Close drops the character and all owned buffers.
func (r *Record) Close() {
	r.header = nil
	r.layout = nil
	r.version = format.VUnknown
	r.acts, r.stats, r.items = nil, nil, nil
	r.path = ""
	r.state = stateClosed
}

func (r *Record) context() sections.Context {
	return sections.Context{Version: r.version, Expansion: r.IsExpansion()}
}

// Create replaces the record with a new level 1 character of class c.
func (r *Record) Create(v format.Version, c Class) error {
	r.lastErr = nil
	if r.state != stateClosed {
		r.Close()
	}
	if !v.Valid() {
		return r.fail(UnsupportedVersion, "", fmt.Errorf("%d: %w", v, format.ErrUnknownVersion))
	}
	if c >= numClasses {
		return r.fail(InvalidHeader, "", fmt.Errorf("class %d: %w", c, ErrValueOutOfRange))
	}
	if c.ExpansionOnly() && !v.SupportsExpansion() {
		return r.fail(InvalidHeader, "", fmt.Errorf("%s: %w", c, ErrExpansionClass))
	}

	if err := r.initHeader(v); err != nil {
		r.Close()
		return r.fail(InvalidHeader, "", err)
	}
	if v.SupportsExpansion() {
		r.setStatusBit(StatusExpansion, true)
	}
	_ = r.setUint(format.FieldClass, 0, uint64(c))

	ctx := r.context()
	r.acts = acts.New(ctx)
	r.stats = stats.New(ctx)
	r.items = items.New(ctx)
	if cls, ok := r.ref.Class(uint8(c)); ok && r.stats.Decoded() {
		base := []struct {
			id stats.ID
			v  uint64
		}{
			{stats.Strength, uint64(cls.Strength)},
			{stats.Energy, uint64(cls.Energy)},
			{stats.Dexterity, uint64(cls.Dexterity)},
			{stats.Vitality, uint64(cls.Vitality)},
			// life, mana and stamina are stored with 8 fraction bits
			{stats.CurrentHP, uint64(cls.Life) << 8},
			{stats.MaxHP, uint64(cls.Life) << 8},
			{stats.CurrentMana, uint64(cls.Mana) << 8},
			{stats.MaxMana, uint64(cls.Mana) << 8},
			{stats.CurrentStamina, uint64(cls.Stamina) << 8},
			{stats.MaxStamina, uint64(cls.Stamina) << 8},
		}
		for _, b := range base {
			if err := r.stats.Set(b.id, b.v); err != nil {
				r.Close()
				return r.fail(InvalidCharStats, "", err)
			}
		}
	}
	r.state = stateOpen
	r.syncLevel()
	return nil
}

// Open reads the character file at path. A record that is already open is
// closed first.
func (r *Record) Open(path string) error {
	r.lastErr = nil
	if r.state != stateClosed {
		r.Close()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return r.fail(CannotOpenFile, path, err)
	}
	return r.Load(data, path)
}

// Load reads a character from an in-memory image. path is used for error
// messages and as the name fallback; it may be empty.
func (r *Record) Load(data []byte, path string) error {
	r.lastErr = nil
	if r.state != stateClosed {
		r.Close()
	}
	r.path = path
	if kind, err := r.read(data); err != nil {
		r.Close()
		return r.fail(kind, path, err)
	}
	r.state = stateOpen

	if r.version.HasChecksum() {
		d, _ := r.descriptor(format.FieldChecksum)
		stored := r.ChecksumBytes()
		computed := checksum.Compute(data, d.Offset)
		if stored != computed && !r.acts.Corrected() {
			err := fmt.Errorf("stored %#08x, computed %#08x", stored, computed)
			if r.strict {
				r.Close()
				return r.fail(InvalidChecksum, path, err)
			}
			r.fail(InvalidChecksum, path, err)
			r.log.WithFields(logrus.Fields{
				"path":     path,
				"stored":   fmt.Sprintf("%#08x", stored),
				"computed": fmt.Sprintf("%#08x", computed),
			}).Warn("Character checksum mismatch")
		}
	}
	if r.acts.Corrected() {
		r.log.WithField("path", path).Info("Quest data corrected, changes apply on next save")
	}
	return nil
}

// read walks the state machine up to the items segment and returns the kind
// of the step that failed.
func (r *Record) read(data []byte) (ErrorKind, error) {
	if len(data) < MinStartPos {
		return InvalidHeader, fmt.Errorf("%d bytes is shorter than %d", len(data), MinStartPos)
	}
	head := fast.NewBuffer(format.LongHeaderSize)
	head.Append(data[:MinStartPos])
	magic, _ := head.ReadUint(0, 4)
	if uint32(magic) != format.Magic {
		return InvalidHeader, fmt.Errorf("bad magic %#08x", magic)
	}
	raw, _ := head.ReadUint(4, 4)
	v, err := format.FromRaw(uint32(raw))
	if err != nil {
		return InvalidHeader, err
	}
	r.version = v
	r.layout = format.LayoutFor(v)
	r.state = stateHeaderRead

	size := r.layout.HeaderSize()
	if len(data) < size {
		return InvalidActsInfo, fmt.Errorf("%d bytes is shorter than the %d byte header", len(data), size)
	}
	head.Append(data[MinStartPos:size])
	r.header = head
	if err := r.repairName(); err != nil {
		return InvalidHeader, err
	}
	r.state = stateBasicInfoRead

	if kind, err := r.readSegments(data[size:]); err != nil {
		return kind, err
	}
	return NoError, nil
}

// initHeader replaces the header with a default one for v.
func (r *Record) initHeader(v format.Version) error {
	r.version = v
	r.layout = format.LayoutFor(v)
	r.header = fast.NewBuffer(r.layout.HeaderSize())
	r.header.AppendZeros(r.layout.HeaderSize())
	if err := r.writeDefaults(); err != nil {
		return err
	}
	return r.setUint(format.FieldVersion, 0, uint64(v.Raw()))
}

// readSegments decodes acts, stats and items from the bytes after the header.
// Each codec copies what it keeps, so tail may be reused by the caller.
func (r *Record) readSegments(tail []byte) (ErrorKind, error) {
	ctx := r.context()

	r.acts = new(acts.Acts)
	n, err := r.acts.Read(ctx, tail)
	if err != nil {
		return InvalidActsInfo, err
	}
	tail = tail[n:]
	r.state = stateActsRead

	r.stats = new(stats.Stats)
	n, err = r.stats.Read(ctx, tail)
	if err != nil {
		return InvalidCharStats, err
	}
	tail = tail[n:]
	r.state = stateStatsRead
	r.syncLevel()

	r.items = new(items.Items)
	if _, err := r.items.Read(ctx, tail); err != nil {
		return InvalidItemInventory, err
	}
	return NoError, nil
}

// syncLevel mirrors the stats level into the header's display level.
func (r *Record) syncLevel() {
	if r.stats == nil || !r.stats.Decoded() {
		return
	}
	if lvl := r.stats.Level(); lvl != 0 {
		_ = r.setUint(format.FieldLevel, 0, uint64(lvl))
	}
}

// computeChecksum scans the header with its checksum field zeroed, then
// extends the same scan with each segment in file order.
func (r *Record) computeChecksum() uint32 {
	d, ok := r.descriptor(format.FieldChecksum)
	if !ok {
		return 0
	}
	var s checksum.State
	s.UpdateMasked(r.header.Bytes(), d.Offset, d.Size())
	for _, seg := range r.segments() {
		seg.ContributeChecksum(&s)
	}
	return s.Sum()
}

func (r *Record) segments() []sections.Segment {
	return []sections.Segment{r.acts, r.stats, r.items}
}

// VerifyChecksum reports whether the stored checksum matches the image.
// Versions without a checksum always verify.
func (r *Record) VerifyChecksum() bool {
	if r.state != stateOpen || !r.version.HasChecksum() {
		return true
	}
	return r.ChecksumBytes() == r.computeChecksum()
}

// Serialize returns the complete file image. The fillers, file size and
// checksum are brought up to date in the header first.
func (r *Record) Serialize() ([]byte, error) {
	if r.state != stateOpen {
		return nil, ErrNotOpen
	}
	if err := r.writeFillers(); err != nil {
		return nil, err
	}
	total := r.header.Len()
	for _, seg := range r.segments() {
		total += seg.Size()
	}
	if r.layout.Has(format.FieldFileSize) {
		if err := r.setUint(format.FieldFileSize, 0, uint64(total)); err != nil {
			return nil, err
		}
	}
	if r.version.HasChecksum() {
		if err := r.setUint(format.FieldChecksum, 0, uint64(r.computeChecksum())); err != nil {
			return nil, err
		}
	}

	w := fast.NewWriter(make([]byte, 0, total))
	w.Write(r.header.Bytes())
	for _, seg := range r.segments() {
		if err := seg.Write(w); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

// ActsCorrected reports whether the quest data was repaired on open.
func (r *Record) ActsCorrected() bool {
	return r.acts != nil && r.acts.Corrected()
}
