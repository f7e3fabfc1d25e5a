package character

import (
	"errors"
	"fmt"
)

// ErrorKind is the stable code a record reports for a failed operation.
type ErrorKind int

const (
	NoError ErrorKind = iota
	InvalidHeader
	CannotOpenFile
	InvalidChecksum
	InvalidActsInfo
	InvalidCharStats
	InvalidItemInventory
	FileRenameError
	AuxFileRenameError
	UnsupportedVersion
)

var kindNames = map[ErrorKind]string{
	NoError:              "no error",
	InvalidHeader:        "invalid header",
	CannotOpenFile:       "cannot open file",
	InvalidChecksum:      "invalid checksum",
	InvalidActsInfo:      "invalid acts info",
	InvalidCharStats:     "invalid character stats",
	InvalidItemInventory: "invalid item inventory",
	FileRenameError:      "file rename error",
	AuxFileRenameError:   "auxiliary file rename error",
	UnsupportedVersion:   "unsupported version",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("error kind %d", int(k))
}

// Error carries a kind together with the cause.
type Error struct {
	Kind ErrorKind
	Path string
	Err  error
}

func newError(kind ErrorKind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Path != "" {
		msg = e.Path + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, so callers can test with
// errors.Is(err, &character.Error{Kind: character.InvalidChecksum}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind carried by err, or NoError.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return NoError
}

var (
	// ErrNotOpen is returned by mutators and savers on a closed record.
	ErrNotOpen = errors.New("character is not open")
	// ErrFieldNotPresent is returned when writing a field the version lacks.
	ErrFieldNotPresent = errors.New("field not present in this version")
	// ErrValueOutOfRange is returned when a value does not fit its field.
	ErrValueOutOfRange = errors.New("value out of range")
	// ErrExpansionClass is returned when an expansion-only class is set on a
	// classic character.
	ErrExpansionClass = errors.New("class requires an expansion character")
	// ErrExpansionAct is returned when act V is set on a classic character.
	ErrExpansionAct = errors.New("act V requires an expansion character")
	// ErrExpansionUnsupported is returned when enabling expansion on a
	// version that has none.
	ErrExpansionUnsupported = errors.New("version does not support expansion characters")
	// ErrLadderUnsupported is returned when enabling ladder before v1.10.
	ErrLadderUnsupported = errors.New("version does not support ladder characters")
	// ErrHardcoreDead is returned when marking a hardcore character as died.
	ErrHardcoreDead = errors.New("hardcore characters cannot carry the died flag")
	// ErrInvalidName is returned for names that fail the legality filter.
	ErrInvalidName = errors.New("invalid character name")
)
