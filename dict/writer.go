package dict

import (
	"os"

	"github.com/fschiettecatte/mpscore/codec"
	"github.com/fschiettecatte/mpscore/internal/base"
)

// superBlockEntry mirrors a super-block entry before it is serialized: the
// first key of a key block plus that block's file offset (filled in once
// the block is flushed).
type superBlockEntry struct {
	key    []byte
	offset uint64
}

// Writer builds a dictionary file by a strictly-ascending sequence of Add
// calls, exactly mirroring utlDictWrite in dict.c: a mutable current key
// block (buffer + entry count + saved last key) and a mutable super block
// (array of first-key/offset pairs).
type Writer struct {
	path string
	f    *os.File

	keyLength int // excludes terminating NUL, i.e. the configured maximum

	keyBlock    []byte
	keyCount    int
	savedKey    []byte
	hasSavedKey bool

	superBlock []superBlockEntry

	offset    int64 // current write offset into f
	closed    bool
	failed    bool
	totalKeys int // real keys added, excluding the two sentinels
}

// Create opens path for writing and immediately adds the minimum sentinel,
// per dict.c's iUtlDictCreate. keyMaxLength bounds the length of any key
// later passed to Add (excluding MaxKey/MinKey, which are exempt).
func Create(path string, keyMaxLength int) (*Writer, error) {
	if keyMaxLength <= 0 || keyMaxLength > KeyMaximumLength {
		return nil, base.Errorf(base.KindValidation, "dict: invalid key length %d", keyMaxLength)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, base.Wrapf(base.KindIO, err, "dict: create %q", path)
	}
	if _, err := f.Seek(headerLength, 0); err != nil {
		f.Close()
		os.Remove(path)
		return nil, base.Wrapf(base.KindIO, err, "dict: seek past header in %q", path)
	}
	w := &Writer{
		path:      path,
		f:         f,
		keyLength: keyMaxLength,
		offset:    headerLength,
	}
	if err := w.add(MinKey, nil); err != nil {
		w.abort()
		return nil, err
	}
	return w, nil
}

// Add appends a key/value pair. Keys must arrive in strictly ascending
// lexicographic order; an out-of-order or duplicate key is InvalidKey and
// flushes nothing (invariant 4 in spec.md §8).
func (w *Writer) Add(key, value []byte) error {
	if w.closed || w.failed {
		return base.Errorf(base.KindValidation, "dict: add called on closed or failed writer")
	}
	if len(key) == 0 || len(key) > w.keyLength {
		return base.Errorf(base.KindValidation, "dict: invalid key length %d", len(key))
	}
	if w.hasSavedKey && compareKeys(key, w.savedKey) <= 0 {
		return base.Errorf(base.KindValidation, "dict: key %q is not strictly greater than previous key %q", key, w.savedKey)
	}
	return w.add(key, value)
}

func compareKeys(a, b []byte) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

func (w *Writer) add(key, value []byte) error {
	// Step 1: extend the super block if the current key block is empty.
	if w.keyCount == 0 {
		w.superBlock = append(w.superBlock, superBlockEntry{key: append([]byte(nil), key...)})
	}

	// Step 2: compute the shared prefix length against the saved key and
	// append the compressed entry.
	shared := 0
	for shared < len(key) && shared < len(w.savedKey) && key[shared] == w.savedKey[shared] {
		shared++
	}
	suffix := key[shared:]

	c := codec.NewCursor(w.keyBlock)
	codec.EncodeVarintUint32(c, uint32(shared))
	codec.EncodeBytes(c, suffix)
	codec.EncodeBytes(c, []byte{0}) // NUL terminator
	codec.EncodeVarintUint32(c, uint32(len(value)))
	if len(value) > 0 {
		codec.EncodeBytes(c, value)
	}
	w.keyBlock = c.Buf

	w.savedKey = append(w.savedKey[:0], key...)
	w.hasSavedKey = true
	w.keyCount++
	if !isMaxKey(key) && !isMinKey(key) {
		w.totalKeys++
	}

	// Step 3: flush the block if it is full or this was the maximum
	// sentinel.
	last := isMaxKey(key)
	if w.keyCount >= KeyBlockEntryMaximumCount || last {
		if err := w.flushKeyBlock(); err != nil {
			w.failed = true
			return err
		}
	}

	// Step 4: on the maximum sentinel, write the super block and header.
	if last {
		if err := w.writeSuperBlockAndHeader(); err != nil {
			w.failed = true
			return err
		}
	}
	return nil
}

func (w *Writer) flushKeyBlock() error {
	blockOffset := w.offset

	lenBuf := codec.NewCursor(nil)
	codec.EncodeVarintUint32(lenBuf, uint32(len(w.keyBlock)))

	n1, err := w.f.Write(lenBuf.Buf)
	if err != nil {
		return base.Wrapf(base.KindIO, err, "dict: write key block length to %q", w.path)
	}
	n2, err := w.f.Write(w.keyBlock)
	if err != nil {
		return base.Wrapf(base.KindIO, err, "dict: write key block to %q", w.path)
	}
	w.offset += int64(n1 + n2)

	if len(w.superBlock) == 0 {
		return base.Errorf(base.KindValidation, "dict: flush with empty super block")
	}
	w.superBlock[len(w.superBlock)-1].offset = uint64(blockOffset)

	w.keyBlock = w.keyBlock[:0]
	w.keyCount = 0
	w.savedKey = w.savedKey[:0]
	w.hasSavedKey = false
	return nil
}

func (w *Writer) writeSuperBlockAndHeader() error {
	sb := codec.NewCursor(nil)
	for _, e := range w.superBlock {
		padded := make([]byte, w.keyLength+1)
		copy(padded, e.key)
		codec.EncodeBytes(sb, padded)
		codec.EncodeFixedUint64(sb, e.offset, superBlockIDSize)
	}
	superBlockOffset := w.offset
	n, err := w.f.Write(sb.Buf)
	if err != nil {
		return base.Wrapf(base.KindIO, err, "dict: write super block to %q", w.path)
	}
	w.offset += int64(n)

	hdr := codec.NewCursor(nil)
	codec.EncodeFixedUint32(hdr, uint32(w.keyLength+1), headerKeyLengthSize)
	codec.EncodeFixedUint64(hdr, uint64(superBlockOffset), headerSuperBlockSize)
	codec.EncodeFixedUint32(hdr, uint32(len(w.superBlock)), headerSuperBlockCountLen)

	if _, err := w.f.Seek(0, 0); err != nil {
		return base.Wrapf(base.KindIO, err, "dict: seek to header in %q", w.path)
	}
	if _, err := w.f.Write(hdr.Buf); err != nil {
		return base.Wrapf(base.KindIO, err, "dict: write header to %q", w.path)
	}
	return nil
}

const superBlockIDSize = superBlockBlockIDSize

// Close adds the maximum sentinel (if not already failed), flushes the
// final super block and header, and closes the underlying file. On error
// the partial file is removed, per spec.md §4.2's failure semantics.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.failed {
		w.f.Close()
		os.Remove(w.path)
		return base.Errorf(base.KindIO, "dict: close called after a prior write failure")
	}
	if err := w.add(MaxKey, nil); err != nil {
		w.f.Close()
		os.Remove(w.path)
		return err
	}
	if err := w.f.Close(); err != nil {
		os.Remove(w.path)
		return base.Wrapf(base.KindIO, err, "dict: close %q", w.path)
	}
	return nil
}

// Abort discards the in-progress build and removes the partial file,
// per spec.md §4.4's "Abort is always safe" and §6 scenario S6.
func (w *Writer) Abort() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.abort()
}

func (w *Writer) abort() error {
	w.f.Close()
	return os.Remove(w.path)
}

// EntryCount returns the number of real keys added so far (excluding the
// two sentinels), for tests and diagnostics.
func (w *Writer) EntryCount() int {
	return w.totalKeys
}
