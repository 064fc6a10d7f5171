package aspr

import (
	"errors"
	"fmt"
)

// ErrEmptyFile is wrapped by an *Error of kind KindEmptyFile when a data file has
// no header row.
var ErrEmptyFile = errors.New("aspr: data file is empty")

type ErrorKind int

const (
	KindIO ErrorKind = iota + 1
	KindParse
	KindEmptyFile
)

func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindParse:
		return "parse"
	case KindEmptyFile:
		return "empty file"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is returned by every dataset operation. Path names the file or archive
// member, Line is set for parse errors.
type Error struct {
	Kind ErrorKind
	Path string
	Line int
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindEmptyFile:
		return fmt.Sprintf("aspr: data file is empty: %s", e.Path)
	case KindParse:
		if e.Line > 0 {
			return fmt.Sprintf("aspr: parse error in %s line %d: %v", e.Path, e.Line, e.Err)
		}
		return fmt.Sprintf("aspr: parse error in %s: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("aspr: io error on %s: %v", e.Path, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func ioError(path string, err error) error {
	return &Error{Kind: KindIO, Path: path, Err: err}
}
