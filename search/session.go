// Package search provides the thin session object spec.md §6 calls for: a
// handle bundling an index path, its resolved language facilities, and
// version information, plus the worker pool that dispatches independent
// queries above the single-threaded core (spec.md §5's "parallelism is
// extracted above"). It also restores two features the spec.md
// distillation dropped from
// _examples/original_source/src/search/keydict.h and language.h:
// DocumentKeyDict (external key -> internal doc id) and LanguageRegistry
// (language code -> tokenizer/stemmer/stoplist triple).
package search

import (
	"github.com/fschiettecatte/mpscore/codec"
	"github.com/fschiettecatte/mpscore/internal/base"
)

// Version is a major.minor.patch triple, written into the sidecar info
// file. A reader refuses to open an index whose major.minor does not
// match its own, per spec.md §6.
type Version struct {
	Major, Minor, Patch uint32
}

// Compatible reports whether other may read an index built with v: their
// major and minor components must match exactly (patch is informational).
func (v Version) Compatible(other Version) bool {
	return v.Major == other.Major && v.Minor == other.Minor
}

// CurrentVersion is the version this build of the core writes into every
// new index's info file.
var CurrentVersion = Version{Major: 1, Minor: 0, Patch: 0}

// Info is the sidecar info file's contents: everything a session needs to
// reopen an index without re-deriving it from the caller, per spec.md §6's
// "thin session object" line.
type Info struct {
	IndexPath     string
	LanguageCode  string
	Tokenizer     string
	Stemmer       string
	Stoplist      string
	MinTermLength uint32
	MaxTermLength uint32
	Version       Version
}

// EncodeInfo serializes info with the same codec primitives used
// everywhere else in this repo (SPEC_FULL.md §6's expansion: "no separate
// serialization format introduced").
func EncodeInfo(info Info) []byte {
	c := codec.NewCursor(nil)
	encodeString(c, info.LanguageCode)
	encodeString(c, info.Tokenizer)
	encodeString(c, info.Stemmer)
	encodeString(c, info.Stoplist)
	codec.EncodeVarintUint32(c, info.MinTermLength)
	codec.EncodeVarintUint32(c, info.MaxTermLength)
	codec.EncodeFixedUint32(c, info.Version.Major, 4)
	codec.EncodeFixedUint32(c, info.Version.Minor, 4)
	codec.EncodeFixedUint32(c, info.Version.Patch, 4)
	return c.Buf
}

// DecodeInfo reverses EncodeInfo. IndexPath is not itself persisted (it is
// supplied by the caller opening the index, matching how a moved index
// directory should still open).
func DecodeInfo(data []byte) (Info, error) {
	c := codec.NewCursor(data)
	var info Info
	var err error
	if info.LanguageCode, err = decodeString(c); err != nil {
		return Info{}, err
	}
	if info.Tokenizer, err = decodeString(c); err != nil {
		return Info{}, err
	}
	if info.Stemmer, err = decodeString(c); err != nil {
		return Info{}, err
	}
	if info.Stoplist, err = decodeString(c); err != nil {
		return Info{}, err
	}
	if info.MinTermLength, err = codec.DecodeVarintUint32(c); err != nil {
		return Info{}, err
	}
	if info.MaxTermLength, err = codec.DecodeVarintUint32(c); err != nil {
		return Info{}, err
	}
	if info.Version.Major, err = codec.DecodeFixedUint32(c, 4); err != nil {
		return Info{}, err
	}
	if info.Version.Minor, err = codec.DecodeFixedUint32(c, 4); err != nil {
		return Info{}, err
	}
	if info.Version.Patch, err = codec.DecodeFixedUint32(c, 4); err != nil {
		return Info{}, err
	}
	return info, nil
}

func encodeString(c *codec.Cursor, s string) {
	codec.EncodeVarintUint32(c, uint32(len(s)))
	codec.EncodeBytes(c, []byte(s))
}

func decodeString(c *codec.Cursor) (string, error) {
	n, err := codec.DecodeVarintUint32(c)
	if err != nil {
		return "", err
	}
	b, err := codec.DecodeBytes(c, int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Session holds everything spec.md §6 lists for the "thin session
// object": index path, language code, tokenizer/stemmer/stoplist names,
// min/max term lengths, and version, all carried in its Info. It holds no
// DocumentKeyDict or LanguageRegistry handle; callers open those
// separately.
type Session struct {
	Info Info
}

// Open validates that a stored Info is readable by this build: spec.md §6
// requires the major.minor to match exactly.
func Open(stored Info) (*Session, error) {
	if !CurrentVersion.Compatible(stored.Version) {
		return nil, base.Errorf(base.KindState, "search: index version %d.%d.%d is incompatible with reader version %d.%d.%d",
			stored.Version.Major, stored.Version.Minor, stored.Version.Patch,
			CurrentVersion.Major, CurrentVersion.Minor, CurrentVersion.Patch)
	}
	return &Session{Info: stored}, nil
}
