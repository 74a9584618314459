// SPDX-License-Identifier: MIT

package splinter

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorCode identifies why Parse or ParseStrict rejected a blob.
type ErrorCode uint8

const (
	// ErrBadMagic means the leading or trailing magic bytes did not match.
	ErrBadMagic ErrorCode = iota
	// ErrTruncated means a length or offset pointed outside the backing slice.
	ErrTruncated
	// ErrInvalidClassTag means a tag's low bits named a class that is not
	// legal in that position (e.g. Tree on a Block).
	ErrInvalidClassTag
	// ErrInvalidCardinality means a stored cardinality was zero, exceeded
	// the class's capacity, or was inconsistent with the payload it framed.
	ErrInvalidCardinality
	// ErrUnalignedOffset means an offset-width selector named a width the
	// codec does not define.
	ErrUnalignedOffset
)

func (c ErrorCode) String() string {
	switch c {
	case ErrBadMagic:
		return "bad magic"
	case ErrTruncated:
		return "truncated"
	case ErrInvalidClassTag:
		return "invalid class tag"
	case ErrInvalidCardinality:
		return "invalid cardinality"
	case ErrUnalignedOffset:
		return "unaligned offset"
	default:
		return "unknown parse error"
	}
}

// ParseError reports a well-formedness problem discovered by Parse or
// ParseStrict. Offset is the byte position, relative to the start of the
// blob, where the problem was detected.
type ParseError struct {
	Code   ErrorCode
	Offset uint32
	cause  error
}

func (e *ParseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("splinter: %s at offset %d: %v", e.Code, e.Offset, e.cause)
	}
	return fmt.Sprintf("splinter: %s at offset %d", e.Code, e.Offset)
}

func (e *ParseError) Unwrap() error { return e.cause }

// Is lets callers write errors.Is(err, &splinter.ParseError{Code: splinter.ErrBadMagic}).
func (e *ParseError) Is(target error) bool {
	t, ok := target.(*ParseError)
	return ok && e.Code == t.Code
}

func wrapOffset(err error, offset uint32) error {
	if pe, ok := err.(*ParseError); ok {
		cp := *pe
		cp.Offset = offset
		return &cp
	}
	return &ParseError{Code: ErrTruncated, Offset: offset, cause: errors.WithStack(err)}
}

var errTruncatedPayload = &ParseError{Code: ErrTruncated}

// LogicError marks a violated internal invariant: a defect in splinter
// itself, never a consequence of malformed input. It is only ever raised
// by panic, on a container already known to be well-formed.
type LogicError struct {
	Msg string
}

func (e *LogicError) Error() string { return "splinter: logic error: " + e.Msg }
