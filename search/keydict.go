package search

import (
	"github.com/fschiettecatte/mpscore/codec"
	"github.com/fschiettecatte/mpscore/dict"
	"github.com/fschiettecatte/mpscore/internal/base"
)

func isNotFound(err error) bool { return base.Is(err, base.KindState) }

// DocumentKeyDict maps a document's external key (an application-supplied
// string) to its internal document id, restored from
// _examples/original_source/src/search/keydict.h
// (iSrchKeyDictGenerate/iSrchKeyDictLookup). spec.md's distillation dropped
// this second, smaller dictionary; it is built on the same package dict as
// the term dictionary, since it is, after all, just another ordered
// string-to-value-blob map.
type DocumentKeyDict struct {
	w *dict.Writer
}

// NewDocumentKeyDictWriter opens path for an append-only build run
// alongside the term dictionary (iSrchKeyDictGenerate). keys must be added
// in strictly ascending order, matching the key-dictionary's own build
// discipline (dict.Writer.Add's invariant).
func NewDocumentKeyDictWriter(path string) (*DocumentKeyDict, error) {
	w, err := dict.Create(path, dict.KeyMaximumLength)
	if err != nil {
		return nil, err
	}
	return &DocumentKeyDict{w: w}, nil
}

// Add records one (external key -> document id) mapping.
func (d *DocumentKeyDict) Add(key []byte, docID uint32) error {
	c := codec.NewCursor(nil)
	codec.EncodeFixedUint32(c, docID, 4)
	return d.w.Add(key, c.Buf)
}

// Close finalizes the key dictionary file.
func (d *DocumentKeyDict) Close() error { return d.w.Close() }

// Abort discards the in-progress build.
func (d *DocumentKeyDict) Abort() error { return d.w.Abort() }

// DocumentKeyDictReader resolves external keys to document ids
// (iSrchKeyDictLookup).
type DocumentKeyDictReader struct {
	r *dict.Reader
}

// OpenDocumentKeyDict memory-maps a key dictionary built by
// NewDocumentKeyDictWriter.
func OpenDocumentKeyDict(path string) (*DocumentKeyDictReader, error) {
	r, err := dict.Open(path, dict.OpenOptions{})
	if err != nil {
		return nil, err
	}
	return &DocumentKeyDictReader{r: r}, nil
}

// Lookup resolves an external document key to its internal document id.
func (d *DocumentKeyDictReader) Lookup(key []byte) (docID uint32, found bool, err error) {
	v, err := d.r.Get(key)
	if err != nil {
		if isNotFound(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	c := codec.NewCursor(v)
	id, err := codec.DecodeFixedUint32(c, 4)
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// Close unmaps the underlying dictionary file.
func (d *DocumentKeyDictReader) Close() error { return d.r.Close() }
