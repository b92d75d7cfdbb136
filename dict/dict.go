// Package dict implements the prefix-compressed two-level dictionary: a
// persistent, ordered, on-disk key → value-blob map, write-once and then
// read-many via a memory mapping. See spec.md §3 (file layout) and §4.2
// (algorithms). Grounded on _examples/original_source/src/utils/dict.c (the
// on-disk layout and write algorithm) and on the teacher's
// sstable/table.go (the write-once/read-many reader/writer split, the
// footer/header eager-load idiom, and the binary-search-over-a-sparse-index
// shape of the super block).
package dict

import (
	"bytes"
)

const (
	// KeyMaximumLength excludes the terminating NUL, matching
	// UTL_DICT_KEY_MAXIMUM_LENGTH in dict.c.
	KeyMaximumLength = 1023

	// KeyBlockEntryMaximumCount is the number of entries a key block holds
	// before it is flushed, matching UTL_DICT_KEY_BLOCK_ENTRY_MAXIMUM_COUNT.
	KeyBlockEntryMaximumCount = 250

	headerKeyLengthSize      = 2
	headerSuperBlockSize     = 8
	headerSuperBlockCountLen = 4
	headerLength             = headerKeyLengthSize + headerSuperBlockSize + headerSuperBlockCountLen

	superBlockBlockIDSize = 8
)

// MinKey and MaxKey are the sentinel keys framing every dictionary (ASCII
// 0x20 and 0xFF 0xFF respectively), added implicitly by Create and Close.
var (
	MinKey = []byte{0x20}
	MaxKey = []byte{0xFF, 0xFF}
)

func isMaxKey(k []byte) bool { return bytes.Equal(k, MaxKey) }
func isMinKey(k []byte) bool { return bytes.Equal(k, MinKey) }
