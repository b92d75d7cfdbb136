package dict

import (
	"bytes"
	"errors"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/fschiettecatte/mpscore/codec"
	"github.com/fschiettecatte/mpscore/internal/base"
)

// OpenOptions configures a Reader. The zero value enables both the bloom
// filter and the hot-term cache with their default sizing.
type OpenOptions struct {
	DisableBloomFilter bool
	// HotTermCacheSize bounds the number of Get results cached; 0 selects
	// the default (4096), a negative value disables the cache.
	HotTermCacheSize int
}

const defaultHotTermCacheSize = 4096

// Reader opens a dictionary file built by Writer for read-only lookups,
// sharable by any number of concurrent goroutines (the dictionary is
// immutable once closed, per spec.md §5).
type Reader struct {
	mapped *mappedFile

	keyLength              int // includes terminating NUL
	superBlockOffset       int64
	superBlockEntryCount   int
	superBlockEntryLength  int
	superBlock             []byte // slice of mapped.data at superBlockOffset

	filter *bloom.BloomFilter
	cache  *hotTermCache
}

// Open memory-maps path and parses its header and super block.
func Open(path string, opts OpenOptions) (*Reader, error) {
	m, err := mapFileReadOnly(path)
	if err != nil {
		return nil, err
	}

	hdr := codec.NewCursor(m.data[:headerLength])
	keyLen, err := codec.DecodeFixedUint32(hdr, headerKeyLengthSize)
	if err != nil {
		m.Close()
		return nil, err
	}
	superOffset, err := codec.DecodeFixedUint64(hdr, headerSuperBlockSize)
	if err != nil {
		m.Close()
		return nil, err
	}
	superCount, err := codec.DecodeFixedUint32(hdr, headerSuperBlockCountLen)
	if err != nil {
		m.Close()
		return nil, err
	}

	r := &Reader{
		mapped:                m,
		keyLength:             int(keyLen),
		superBlockOffset:      int64(superOffset),
		superBlockEntryCount:  int(superCount),
		superBlockEntryLength: int(keyLen) + superBlockBlockIDSize,
	}

	if r.superBlockOffset < 0 || int(r.superBlockOffset)+r.superBlockEntryCount*r.superBlockEntryLength > len(m.data) {
		m.Close()
		return nil, base.Errorf(base.KindCorruption, "dict: super block extends past end of file")
	}
	r.superBlock = m.data[r.superBlockOffset:]

	cacheSize := opts.HotTermCacheSize
	if cacheSize == 0 {
		cacheSize = defaultHotTermCacheSize
	}
	if cacheSize > 0 {
		r.cache = newHotTermCache(cacheSize)
	}

	if !opts.DisableBloomFilter {
		keys, err := r.collectAllRealKeys()
		if err != nil {
			m.Close()
			return nil, err
		}
		r.filter = buildNegativeFilter(keys)
	}

	return r, nil
}

// Close unmaps the underlying file.
func (r *Reader) Close() error {
	return r.mapped.Close()
}

// EntryCount returns the number of real keys in the dictionary, excluding
// the two sentinels — used by invariant 5 in spec.md §8.
func (r *Reader) EntryCount() int {
	n := 0
	for i := 0; i < r.superBlockEntryCount; i++ {
		// Each super-block entry roots one key block; count its real keys
		// by walking it. This is O(n) but only used by tests/diagnostics.
		n += r.countRealKeysInBlock(i)
	}
	return n
}

// collectAllRealKeys walks every key block and returns a copy of every
// real key (sentinels excluded), for the bloom filter built at Open time.
// A key block commonly holds up to 250 entries (spec.md §3), so building
// the filter from super-block entries alone — the first key of each block
// — would miss every non-leading key and turn ordinary Get calls into
// false NotFound results (SPEC_FULL.md §4.2 requires the filter cover
// "every real key").
func (r *Reader) collectAllRealKeys() ([][]byte, error) {
	var keys [][]byte
	for i := 0; i < r.superBlockEntryCount; i++ {
		offset, err := r.keyBlockOffsetAt(i)
		if err != nil {
			return nil, err
		}
		err = r.walkKeyBlock(offset, func(key, value []byte) (bool, error) {
			if !isMinKey(key) && !isMaxKey(key) {
				keys = append(keys, append([]byte(nil), key...))
			}
			return false, nil
		})
		if err != nil {
			return nil, err
		}
	}
	return keys, nil
}

func (r *Reader) countRealKeysInBlock(superIdx int) int {
	offset, err := r.keyBlockOffsetAt(superIdx)
	if err != nil {
		return 0
	}
	n := 0
	_ = r.walkKeyBlock(offset, func(key, value []byte) (stop bool, err error) {
		if !isMinKey(key) && !isMaxKey(key) {
			n++
		}
		return false, nil
	})
	return n
}

// superBlockEntryAt returns the raw (unpadded-trimmed) key and the byte
// offset within the super block of the i'th entry.
func (r *Reader) superBlockEntryAt(i int) ([]byte, int) {
	start := i * r.superBlockEntryLength
	padded := r.superBlock[start : start+r.keyLength]
	// The key is NUL-padded to keyLength; trim at the first NUL.
	if idx := bytes.IndexByte(padded, 0); idx >= 0 {
		return padded[:idx], start
	}
	return padded, start
}

func (r *Reader) keyBlockOffsetAt(i int) (int64, error) {
	start := i * r.superBlockEntryLength
	c := codec.NewCursor(r.superBlock[start+r.keyLength : start+r.superBlockEntryLength])
	off, err := codec.DecodeFixedUint64(c, superBlockBlockIDSize)
	if err != nil {
		return 0, err
	}
	return int64(off), nil
}

// superBlockSearch performs the half-open binary search described in
// spec.md §4.2: find the largest entry whose key is <= target. Returns
// -1 if target is below every super-block entry (including below MinKey,
// which should never happen for a well-formed dictionary since MinKey is
// always first).
func (r *Reader) superBlockSearch(target []byte) int {
	low, high := 0, r.superBlockEntryCount
	if high == 0 {
		return -1
	}
	first, _ := r.superBlockEntryAt(0)
	if compareKeys(target, first) < 0 {
		return -1
	}
	for low+1 < high {
		mid := (low + high) / 2
		midKey, _ := r.superBlockEntryAt(mid)
		if compareKeys(midKey, target) <= 0 {
			low = mid
		} else {
			high = mid
		}
	}
	return low
}

// Get looks up key and returns its value bytes (a slice into the memory
// mapping, or into the hot-term cache's copy on a cache hit — valid only
// while the Reader stays open) or base.NotFound.
func (r *Reader) Get(key []byte) ([]byte, error) {
	if len(key) == 0 || len(key) > r.keyLength-1 {
		return nil, base.Errorf(base.KindValidation, "dict: invalid key length %d", len(key))
	}
	if v, ok := r.cache.get(key); ok {
		return v, nil
	}
	if r.filter != nil && !r.filter.Test(key) {
		return nil, base.NotFound
	}

	idx := r.superBlockSearch(key)
	if idx < 0 {
		return nil, base.NotFound
	}
	offset, err := r.keyBlockOffsetAt(idx)
	if err != nil {
		return nil, err
	}

	var found []byte
	matched := false
	err = r.walkKeyBlock(offset, func(k, v []byte) (bool, error) {
		cmp := compareKeys(k, key)
		if cmp == 0 {
			found = v
			matched = true
			return true, nil
		}
		if cmp > 0 {
			return true, nil // passed where key would be; absent
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, base.NotFound
	}
	r.cache.put(key, found)
	return found, nil
}

// ScanFunc is invoked once per key in ascending order during Scan; it
// returns stop=true to terminate iteration early.
type ScanFunc func(key, value []byte) (stop bool, err error)

// Scan streams every key >= startKey in ascending order. If startKey is
// nil, iteration begins at the first real key. Per spec.md §4.2, the
// super-block search locates the starting key block and then key blocks
// are walked sequentially (they are contiguous in the file).
func (r *Reader) Scan(startKey []byte, cb ScanFunc) error {
	target := startKey
	if target == nil {
		target = MinKey
	}
	idx := r.superBlockSearch(target)
	if idx < 0 {
		idx = 0
	}
	for i := idx; i < r.superBlockEntryCount; i++ {
		offset, err := r.keyBlockOffsetAt(i)
		if err != nil {
			return err
		}
		stop := false
		err = r.walkKeyBlock(offset, func(k, v []byte) (bool, error) {
			if isMinKey(k) {
				return false, nil
			}
			if isMaxKey(k) {
				stop = true
				return true, nil
			}
			if compareKeys(k, target) < 0 {
				return false, nil
			}
			s, err := cb(k, v)
			if errors.Is(err, base.StopIteration) {
				stop = true
				return true, nil
			}
			if err != nil {
				return true, err
			}
			if s {
				stop = true
				return true, nil
			}
			return false, nil
		})
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
	return nil
}

// walkKeyBlock decodes entries of the key block at the given file offset,
// rebuilding each key from the first shared-prefix-length bytes of the
// previous key plus the entry's stored suffix (the per-entry reconstruction
// dict.c's iUtlDictGetKeyBlockEntryData performs), invoking cb for each
// until it returns stop or the block is exhausted.
func (r *Reader) walkKeyBlock(offset int64, cb func(key, value []byte) (stop bool, err error)) error {
	c := codec.NewCursor(r.mapped.data[offset:])
	blockLen, err := codec.DecodeVarintUint32(c)
	if err != nil {
		return err
	}
	end := c.Pos + int(blockLen)
	if end > len(c.Buf) {
		return base.Errorf(base.KindCorruption, "dict: key block at offset %d overruns file", offset)
	}

	savedKey := make([]byte, 0, r.keyLength)
	for c.Pos < end {
		shared, err := codec.DecodeVarintUint32(c)
		if err != nil {
			return err
		}
		if int(shared) > len(savedKey) {
			return base.Errorf(base.KindCorruption, "dict: shared prefix length %d exceeds saved key length %d", shared, len(savedKey))
		}
		nulIdx := bytes.IndexByte(c.Buf[c.Pos:], 0)
		if nulIdx < 0 {
			return base.Errorf(base.KindCorruption, "dict: key suffix missing NUL terminator at offset %d", offset)
		}
		suffix := c.Buf[c.Pos : c.Pos+nulIdx]
		c.Pos += nulIdx + 1

		key := append(append(savedKey[:int(shared):int(shared)], suffix...))
		savedKey = append(savedKey[:0], key...)

		valueLen, err := codec.DecodeVarintUint32(c)
		if err != nil {
			return err
		}
		var value []byte
		if valueLen > 0 {
			value, err = codec.DecodeBytes(c, int(valueLen))
			if err != nil {
				return err
			}
		}

		stop, err := cb(key, value)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
	return nil
}
