package posting

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/fschiettecatte/mpscore/codec"
	"github.com/fschiettecatte/mpscore/internal/base"
)

// trailerSize is the width of the xxhash.Sum64 trailer SPEC_FULL.md §3
// adds to the posting blob spec.md §6 defines: "an 8-byte little-endian
// xxhash.Sum64 of the blob's bytes ... written immediately after the
// records."
const trailerSize = 8

// EncodeBlob packs l into the wire format located by a dictionary value:
// a fixed header (term type, doc count, occurrence count) followed by
// packed posting records with doc ids delta-encoded as varints within the
// blob, positions delta-encoded within a document, and weights as 32-bit
// fixed-width floats — then the xxhash trailer.
func EncodeBlob(l *List) []byte {
	c := codec.NewCursor(nil)
	codec.EncodeFixedUint32(c, l.TermType, 4)
	codec.EncodeFixedUint32(c, uint32(l.DocumentCount()), 4)
	codec.EncodeFixedUint32(c, uint32(len(l.Postings)), 4)

	var prevDoc, prevPos uint32
	for i, p := range l.Postings {
		if i == 0 || p.DocID != l.Postings[i-1].DocID {
			codec.EncodeVarintUint32(c, p.DocID-prevDoc)
			prevDoc = p.DocID
			prevPos = 0
			codec.EncodeVarintUint32(c, p.Position-prevPos)
		} else {
			codec.EncodeVarintUint32(c, 0)
			codec.EncodeVarintUint32(c, p.Position-prevPos)
		}
		prevPos = p.Position
		codec.EncodeFloat32(c, p.Weight)
	}

	sum := xxhash.Sum64(c.Buf)
	trailer := make([]byte, trailerSize)
	binary.LittleEndian.PutUint64(trailer, sum)
	return append(c.Buf, trailer...)
}

// DecodeBlob reverses EncodeBlob, verifying the trailer checksum and
// returning a Corruption error on mismatch (spec.md §7 / SPEC_FULL.md §7).
func DecodeBlob(data []byte) (*List, error) {
	if len(data) < trailerSize {
		return nil, base.Errorf(base.KindCorruption, "posting: blob shorter than trailer (%d bytes)", len(data))
	}
	body := data[:len(data)-trailerSize]
	trailer := data[len(data)-trailerSize:]
	want := binary.LittleEndian.Uint64(trailer)
	if got := xxhash.Sum64(body); got != want {
		return nil, base.Errorf(base.KindCorruption, "posting: blob trailer checksum mismatch (want %x, got %x)", want, got)
	}

	c := codec.NewCursor(body)
	termType, err := codec.DecodeFixedUint32(c, 4)
	if err != nil {
		return nil, err
	}
	docCount, err := codec.DecodeFixedUint32(c, 4)
	if err != nil {
		return nil, err
	}
	occCount, err := codec.DecodeFixedUint32(c, 4)
	if err != nil {
		return nil, err
	}
	_ = docCount

	postings := make([]Posting, 0, occCount)
	var curDoc, curPos uint32
	first := true
	for i := uint32(0); i < occCount; i++ {
		docDelta, err := codec.DecodeVarintUint32(c)
		if err != nil {
			return nil, err
		}
		posDelta, err := codec.DecodeVarintUint32(c)
		if err != nil {
			return nil, err
		}
		weight, err := codec.DecodeFloat32(c)
		if err != nil {
			return nil, err
		}
		if first || docDelta != 0 {
			curDoc += docDelta
			curPos = posDelta
		} else {
			curPos += posDelta
		}
		first = false
		postings = append(postings, Posting{DocID: curDoc, Position: curPos, Weight: weight})
	}

	return New(termType, false, postings), nil
}
