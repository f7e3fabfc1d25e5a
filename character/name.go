package character

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/rony4d/d2s-asset/format"
)

const (
	minNameLen = 2
	maxNameLen = format.NameSize - 1
)

func isSeparator(r rune) bool {
	return r == '-' || r == '_'
}

func isNameLetter(r rune, unicodeNames bool) bool {
	if unicodeNames {
		return unicode.IsLetter(r)
	}
	return r < utf8.RuneSelf && unicode.IsLetter(r)
}

// ValidName reports whether name passes the game's legality filter: 2 to 15
// letters starting with a letter, with at most one '-' or '_' that is not the
// last character. Before the resurrected releases only ASCII letters are
// allowed.
func ValidName(name string, unicodeNames bool) bool {
	n := utf8.RuneCountInString(name)
	if n < minNameLen || n > maxNameLen {
		return false
	}
	seps := 0
	for i, r := range []rune(name) {
		switch {
		case isNameLetter(r, unicodeNames):
		case isSeparator(r) && i > 0 && i < n-1:
			seps++
		default:
			return false
		}
	}
	return seps <= 1
}

// SanitizeName drops every character the legality filter rejects and
// returns the result, or "" if nothing legal remains.
func SanitizeName(s string, unicodeNames bool) string {
	var out []rune
	sep := false
	for _, r := range s {
		switch {
		case isNameLetter(r, unicodeNames):
			out = append(out, r)
		case isSeparator(r) && !sep && len(out) > 0:
			out = append(out, r)
			sep = true
		}
		if len(out) == maxNameLen {
			break
		}
	}
	for len(out) > 0 && isSeparator(out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	name := string(out)
	if !ValidName(name, unicodeNames) {
		return ""
	}
	return name
}

// decodeName turns the NUL padded field into a string. ok is false when the
// bytes are not valid in the version's encoding.
func decodeName(raw []byte, v format.Version) (string, bool) {
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	if v.UTF8Names() {
		if !utf8.Valid(raw) {
			return "", false
		}
		return string(raw), true
	}
	s, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return "", false
	}
	return string(s), true
}

func encodeName(name string, v format.Version) ([]byte, error) {
	var raw []byte
	if v.UTF8Names() {
		raw = []byte(name)
	} else {
		enc, err := charmap.Windows1252.NewEncoder().Bytes([]byte(name))
		if err != nil {
			return nil, fmt.Errorf("%q: %w", name, ErrInvalidName)
		}
		raw = enc
	}
	if len(raw) > maxNameLen {
		return nil, fmt.Errorf("%q is %d bytes encoded: %w", name, len(raw), ErrInvalidName)
	}
	return raw, nil
}

// Name returns the character name.
func (r *Record) Name() string {
	s, _ := decodeName(r.getBytes(format.FieldName), r.version)
	return s
}

// SetName validates and stores the character name. It does not rename the
// file on disk.
func (r *Record) SetName(name string) error {
	if err := r.requireOpen(); err != nil {
		return err
	}
	if !ValidName(name, r.version.UTF8Names()) {
		return fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	raw, err := encodeName(name, r.version)
	if err != nil {
		return err
	}
	return r.setBytes(format.FieldName, raw)
}

// nameFromPath derives a legal name from a file's base name.
func nameFromPath(path string, unicodeNames bool) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return SanitizeName(base, unicodeNames)
}

// repairName replaces a name whose bytes fail to decode with one derived from
// the file name.
func (r *Record) repairName() error {
	if _, ok := decodeName(r.getBytes(format.FieldName), r.version); ok {
		return nil
	}
	name := nameFromPath(r.path, r.version.UTF8Names())
	if name == "" {
		return fmt.Errorf("undecodable name and no usable file name: %w", ErrInvalidName)
	}
	raw, err := encodeName(name, r.version)
	if err != nil {
		return err
	}
	r.log.WithField("name", name).Warn("Character name is not valid, using the file name")
	return r.setBytes(format.FieldName, raw)
}
