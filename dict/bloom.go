package dict

import (
	"github.com/bits-and-blooms/bloom/v3"
)

// buildNegativeFilter builds a bloom filter over every real key in the
// dictionary (the sentinels excluded), grounded on the bloom filter
// FlashLog's sst.diskSSTWriter builds over its data-block keys
// (bloom.NewWithEstimates + Add/Test). A Get() that misses the filter can
// skip the super-block search and key-block walk entirely; this is purely
// an acceleration; the filter is optional and never sit between the caller
// and a definitive answer.
func buildNegativeFilter(keys [][]byte) *bloom.BloomFilter {
	n := uint(len(keys))
	if n == 0 {
		n = 1
	}
	f := bloom.NewWithEstimates(n, 0.01)
	for _, k := range keys {
		f.Add(k)
	}
	return f
}
