package invert

import (
	"io"
	"os"

	"github.com/fschiettecatte/mpscore/codec"
	"github.com/fschiettecatte/mpscore/internal/base"
	"github.com/fschiettecatte/mpscore/posting"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/s2"
)

// A run file is a sequence of independently compressed blocks, each
// prefixed by a 1-byte compression id, then its compressed length as a
// fixed uint64, then its uncompressed length as a fixed uint64, per
// SPEC_FULL.md §4.4's
// expansion. Within a decompressed block, entries are a repeated
// (term, termType, postings) triple: varint term length, term bytes,
// fixed uint32 termType, varint posting count, then one fixed
// (docID uint32, position uint32, weight float32) per posting.
const (
	runBlockHeaderWidth = 8
)

type runWriter struct {
	f             *os.File
	compression   RunCompression
	entriesPerBlock int

	pending      *codec.Cursor
	pendingCount int
}

func createRunWriter(path string, compression RunCompression, entriesPerBlock int) (*runWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, base.Wrapf(base.KindIO, err, "invert: create run file %q", path)
	}
	return &runWriter{
		f:               f,
		compression:     compression,
		entriesPerBlock: entriesPerBlock,
		pending:         codec.NewCursor(nil),
	}, nil
}

func (w *runWriter) writeEntry(term []byte, termType uint32, postings []posting.Posting) error {
	codec.EncodeVarintUint32(w.pending, uint32(len(term)))
	codec.EncodeBytes(w.pending, term)
	codec.EncodeFixedUint32(w.pending, termType, 4)
	codec.EncodeVarintUint32(w.pending, uint32(len(postings)))
	for _, p := range postings {
		codec.EncodeFixedUint32(w.pending, p.DocID, 4)
		codec.EncodeFixedUint32(w.pending, p.Position, 4)
		codec.EncodeFloat32(w.pending, p.Weight)
	}
	w.pendingCount++
	if w.pendingCount >= w.entriesPerBlock {
		return w.flush()
	}
	return nil
}

func (w *runWriter) flush() error {
	if w.pendingCount == 0 {
		return nil
	}
	raw := w.pending.Buf
	var compressed []byte
	switch w.compression {
	case CompressionS2:
		compressed = s2.Encode(nil, raw)
	default:
		compressed = snappy.Encode(nil, raw)
	}

	hdr := codec.NewCursor(nil)
	codec.EncodeFixedUint32(hdr, uint32(w.compression), 1)
	codec.EncodeFixedUint64(hdr, uint64(len(compressed)), runBlockHeaderWidth)
	codec.EncodeFixedUint64(hdr, uint64(len(raw)), runBlockHeaderWidth)
	if _, err := w.f.Write(hdr.Buf); err != nil {
		return base.Wrapf(base.KindIO, err, "invert: write run block header")
	}
	if _, err := w.f.Write(compressed); err != nil {
		return base.Wrapf(base.KindIO, err, "invert: write run block body")
	}

	w.pending = codec.NewCursor(nil)
	w.pendingCount = 0
	return nil
}

func (w *runWriter) close() error {
	if err := w.flush(); err != nil {
		w.f.Close()
		return err
	}
	if err := w.f.Close(); err != nil {
		return base.Wrapf(base.KindIO, err, "invert: close run file")
	}
	return nil
}

func (w *runWriter) abort() {
	w.f.Close()
}

// runEntry is one decoded (term, termType, postings) triple from a run
// file, used by the merge step.
type runEntry struct {
	term     []byte
	termType uint32
	postings []posting.Posting
}

// runReader streams entries out of a run file written by runWriter, one
// block at a time, so the merge step never holds more than one
// decompressed block of any given run in memory at once.
type runReader struct {
	f       *os.File
	queue   []runEntry
	qpos    int
	exhausted bool
}

func openRunReader(path string) (*runReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, base.Wrapf(base.KindIO, err, "invert: open run file %q", path)
	}
	return &runReader{f: f}, nil
}

// peek returns the next undelivered entry without consuming it, or
// (nil, false) if the run is exhausted.
func (r *runReader) peek() (*runEntry, bool, error) {
	if r.qpos < len(r.queue) {
		return &r.queue[r.qpos], true, nil
	}
	if r.exhausted {
		return nil, false, nil
	}
	if err := r.fillBlock(); err != nil {
		return nil, false, err
	}
	if r.qpos < len(r.queue) {
		return &r.queue[r.qpos], true, nil
	}
	return nil, false, nil
}

func (r *runReader) advance() {
	r.qpos++
}

func (r *runReader) fillBlock() error {
	hdrBuf := make([]byte, 1+2*runBlockHeaderWidth)
	n, err := io.ReadFull(r.f, hdrBuf)
	if err == io.EOF || (err == io.ErrUnexpectedEOF && n == 0) {
		r.exhausted = true
		return nil
	}
	if err != nil {
		return base.Wrapf(base.KindIO, err, "invert: read run block header")
	}
	hdr := codec.NewCursor(hdrBuf)
	compression, err := codec.DecodeFixedUint32(hdr, 1)
	if err != nil {
		return err
	}
	compLen, err := codec.DecodeFixedUint64(hdr, runBlockHeaderWidth)
	if err != nil {
		return err
	}
	rawLen, err := codec.DecodeFixedUint64(hdr, runBlockHeaderWidth)
	if err != nil {
		return err
	}

	compressed := make([]byte, compLen)
	if _, err := io.ReadFull(r.f, compressed); err != nil {
		return base.Wrapf(base.KindIO, err, "invert: read run block body")
	}
	raw := make([]byte, 0, rawLen)
	var decodeErr error
	if RunCompression(compression) == CompressionS2 {
		raw, decodeErr = s2.Decode(raw[:cap(raw)], compressed)
	} else {
		raw, decodeErr = snappy.Decode(raw[:cap(raw)], compressed)
	}
	if decodeErr != nil {
		return base.Wrapf(base.KindCorruption, decodeErr, "invert: decompress run block")
	}

	c := codec.NewCursor(raw)
	r.queue = r.queue[:0]
	r.qpos = 0
	for c.Pos < len(c.Buf) {
		termLen, err := codec.DecodeVarintUint32(c)
		if err != nil {
			return err
		}
		term, err := codec.DecodeBytes(c, int(termLen))
		if err != nil {
			return err
		}
		termType, err := codec.DecodeFixedUint32(c, 4)
		if err != nil {
			return err
		}
		count, err := codec.DecodeVarintUint32(c)
		if err != nil {
			return err
		}
		postings := make([]posting.Posting, count)
		for i := range postings {
			docID, err := codec.DecodeFixedUint32(c, 4)
			if err != nil {
				return err
			}
			pos, err := codec.DecodeFixedUint32(c, 4)
			if err != nil {
				return err
			}
			w, err := codec.DecodeFloat32(c)
			if err != nil {
				return err
			}
			postings[i] = posting.Posting{DocID: docID, Position: pos, Weight: w}
		}
		r.queue = append(r.queue, runEntry{term: append([]byte(nil), term...), termType: termType, postings: postings})
	}
	return nil
}

func (r *runReader) close() error {
	return r.f.Close()
}
