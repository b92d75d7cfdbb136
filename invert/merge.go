package invert

import (
	"bytes"
	"container/heap"
	"os"

	"github.com/fschiettecatte/mpscore/codec"
	"github.com/fschiettecatte/mpscore/dict"
	"github.com/fschiettecatte/mpscore/internal/base"
	"github.com/fschiettecatte/mpscore/posting"
)

// mergeRuns performs the multi-way merge spec.md §4.4 protocol item 4
// describes: by term ascending, then doc_id, then position, across every
// run file, building the final dictionary (term -> {doc_count, occ_count,
// offset, length}) and posting file as it goes.
func mergeRuns(runPaths []string, dictPath, postingPath string) error {
	readers := make([]*runReader, 0, len(runPaths))
	defer func() {
		for _, r := range readers {
			r.close()
		}
	}()
	for _, p := range runPaths {
		r, err := openRunReader(p)
		if err != nil {
			return err
		}
		readers = append(readers, r)
	}

	dw, err := dict.Create(dictPath, dict.KeyMaximumLength)
	if err != nil {
		return err
	}
	pf, err := os.Create(postingPath)
	if err != nil {
		dw.Abort()
		return base.Wrapf(base.KindIO, err, "invert: create posting file %q", postingPath)
	}
	defer pf.Close()

	h := &termHeap{}
	for idx, r := range readers {
		entry, ok, err := r.peek()
		if err != nil {
			dw.Abort()
			return err
		}
		if ok {
			heap.Push(h, heapItem{term: entry.term, readerIdx: idx})
		}
	}
	heap.Init(h)

	var offset int64
	for h.Len() > 0 {
		top := (*h)[0].term
		var termType uint32
		var postings []posting.Posting

		for h.Len() > 0 && bytes.Equal((*h)[0].term, top) {
			item := heap.Pop(h).(heapItem)
			r := readers[item.readerIdx]
			entry, _, err := r.peek()
			if err != nil {
				dw.Abort()
				return err
			}
			termType = entry.termType
			postings = append(postings, entry.postings...)
			r.advance()

			next, ok, err := r.peek()
			if err != nil {
				dw.Abort()
				return err
			}
			if ok {
				heap.Push(h, heapItem{term: next.term, readerIdx: item.readerIdx})
			}
		}

		posting.SortByDocID(postings)
		list := posting.New(termType, false, postings)
		blob := posting.EncodeBlob(list)

		if _, err := pf.Write(blob); err != nil {
			dw.Abort()
			return base.Wrapf(base.KindIO, err, "invert: write posting blob")
		}

		value := encodeDictValue(uint32(list.DocumentCount()), uint32(len(postings)), uint64(offset), uint64(len(blob)))
		if err := dw.Add(top, value); err != nil {
			dw.Abort()
			return err
		}
		offset += int64(len(blob))
	}

	if err := dw.Close(); err != nil {
		return err
	}
	if err := pf.Sync(); err != nil {
		return base.Wrapf(base.KindIO, err, "invert: sync posting file")
	}
	return nil
}

// encodeDictValue packs the dictionary value blob: doc count, occurrence
// count, posting-blob offset, posting-blob length.
func encodeDictValue(docCount, occCount uint32, offset, length uint64) []byte {
	c := codec.NewCursor(nil)
	codec.EncodeFixedUint32(c, docCount, dictValueDocCountWidth)
	codec.EncodeFixedUint32(c, occCount, dictValueOccCountWidth)
	codec.EncodeFixedUint64(c, offset, dictValueOffsetWidth)
	codec.EncodeFixedUint64(c, length, dictValueLengthWidth)
	return c.Buf
}

// DecodeDictValue reverses encodeDictValue, exposed for readers (package
// search) that need to locate a term's posting blob.
func DecodeDictValue(value []byte) (docCount, occCount uint32, offset, length uint64, err error) {
	c := codec.NewCursor(value)
	if docCount, err = codec.DecodeFixedUint32(c, dictValueDocCountWidth); err != nil {
		return
	}
	if occCount, err = codec.DecodeFixedUint32(c, dictValueOccCountWidth); err != nil {
		return
	}
	if offset, err = codec.DecodeFixedUint64(c, dictValueOffsetWidth); err != nil {
		return
	}
	length, err = codec.DecodeFixedUint64(c, dictValueLengthWidth)
	return
}

type heapItem struct {
	term      []byte
	readerIdx int
}

// termHeap orders pending run cursors by their current term, lexically —
// the "by term ascending" half of spec.md §4.4's merge order. Ties
// (multiple runs at the same term) are drained together by the caller.
type termHeap []heapItem

func (h termHeap) Len() int { return len(h) }
func (h termHeap) Less(i, j int) bool {
	return bytes.Compare(h[i].term, h[j].term) < 0
}
func (h termHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *termHeap) Push(x interface{}) {
	*h = append(*h, x.(heapItem))
}
func (h *termHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
