package sig

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownTag reports a tag byte outside the vocabulary.
	ErrUnknownTag = errors.New("unknown tag")
	// ErrTruncated reports a declared length that runs past the blob.
	ErrTruncated = errors.New("truncated blob")
	// ErrDanglingReference reports an index with no corresponding entry.
	ErrDanglingReference = errors.New("dangling reference")
	// ErrMalformed reports a structurally invalid payload: wrong literal
	// width, a reference to an entry of the wrong kind, trailing bytes.
	ErrMalformed = errors.New("malformed entry")
)

// DecodeError locates a decode failure within the blob.
type DecodeError struct {
	Index  int // entry index, -1 for the framing header
	Offset int // byte offset of the failing entry
	Tag    Tag
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("decode signature: %v", e.Err)
	}
	return fmt.Sprintf("decode signature: entry %d (%s at offset %d): %v", e.Index, e.Tag, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
