// Package base holds the small set of types shared by every package in this
// module: the error-kind taxonomy and the debug-assertion switch.
package base

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
)

// Kind classifies a failure the way §7 of the design groups them: validation
// and state failures are normal, recoverable return values; I/O, resource,
// and corruption failures abort the operation that produced them.
type Kind int

const (
	// KindValidation covers bad keys, bad lengths, wrong handle mode, bad
	// callbacks — caller mistakes discovered before any I/O happens.
	KindValidation Kind = iota
	// KindIO covers open/create/seek/read/write/rename/mmap failures.
	KindIO
	// KindState covers key-not-found and scan-stopped: normal negative
	// outcomes, not failures of the operation itself.
	KindState
	// KindResource covers out-of-memory and out-of-temporary-space.
	KindResource
	// KindCorruption covers a decoded structure that fails an integrity
	// check (for example the posting-blob trailer checksum).
	KindCorruption
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindIO:
		return "io"
	case KindState:
		return "state"
	case KindResource:
		return "resource"
	case KindCorruption:
		return "corruption"
	default:
		return "unknown"
	}
}

type kindMarker struct{ kind Kind }

func (m kindMarker) Error() string { return m.kind.String() }

var sentinels = map[Kind]error{
	KindValidation: kindMarker{KindValidation},
	KindIO:         kindMarker{KindIO},
	KindState:      kindMarker{KindState},
	KindResource:   kindMarker{KindResource},
	KindCorruption: kindMarker{KindCorruption},
}

// NotFound is the sentinel returned by dict.Reader.Get for an absent key. It
// is a KindState failure: a normal negative result, never logged as an
// error by a well-behaved caller.
var NotFound = errors.Mark(errors.New("base: key not found"), sentinels[KindState])

// StopIteration is returned by a Scan callback to request early
// termination; it is not itself surfaced as the Scan error.
var StopIteration = errors.New("base: stop iteration")

// Errorf constructs an error of the given kind, annotated with redact-safe
// context the way the teacher's sstable package builds corruption errors
// (base.CorruptionErrorf) and the dictionary's C original logs operation,
// path and offset alongside every failure.
func Errorf(kind Kind, format string, args ...interface{}) error {
	err := errors.Newf(format, args...)
	return errors.Mark(err, sentinels[kind])
}

// Wrapf wraps an underlying error with additional redact-safe context while
// preserving its kind tag (if any was already present) or attaching kind.
func Wrapf(kind Kind, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	wrapped := errors.Wrapf(err, format, args...)
	return errors.Mark(wrapped, sentinels[kind])
}

// Is reports whether err carries the given Kind marker.
func Is(err error, kind Kind) bool {
	return errors.Is(err, sentinels[kind])
}

// SafeOp redacts an operation name for structured logs — operation names
// are static program constants, never user data, so they are always safe.
func SafeOp(op string) redact.SafeString {
	return redact.SafeString(op)
}
