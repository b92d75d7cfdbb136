// Package invert implements the streaming index builder described in
// spec.md §4.4, grounded on
// _examples/original_source/src/search/invert.h (iSrchInvertInit/
// AddTerm/Finish/Abort) for the protocol shape and on the teacher's
// sstable writer for the general "accumulate, spill, merge" build
// discipline. Terms are accumulated in an in-memory trie; once the
// accumulated size crosses a memory budget the trie is spilled to a
// compressed run file on disk and reset; Finish performs one final spill
// and a multi-way merge of every run into the final dictionary and
// posting file.
package invert

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fschiettecatte/mpscore/internal/base"
	"github.com/fschiettecatte/mpscore/posting"
	"github.com/fschiettecatte/mpscore/trie"
)

// approxPostingBytes estimates the in-memory footprint of one accumulated
// posting (docID + position + weight plus Go slice/struct overhead) for
// memory-budget accounting; it need not be exact, only monotonic.
const approxPostingBytes = 32

// RunCompression selects the codec used for spill-run blocks (SPEC_FULL.md
// §4.4's expansion): spec.md never pins a byte layout for this internal,
// never-persisted-long-term structure, so any codec the merge step can
// also decompress is conforming.
type RunCompression int

const (
	// CompressionSnappy uses golang/snappy (the default).
	CompressionSnappy RunCompression = iota
	// CompressionS2 uses klauspost/compress/s2.
	CompressionS2
)

// Options configures an Inverter, matching spec.md §4.4's init protocol
// item 1 parameter list.
type Options struct {
	Index             string
	Language          string
	Tokenizer         string
	Stemmer           string
	Stoplist          string
	MemoryBudgetBytes int
	MinTermLength     int
	MaxTermLength     int
	TempDir           string
	RunCompression    RunCompression
	// RunEntriesPerBlock bounds how many terms' postings are grouped into
	// one compressed run-file block; 0 selects a default of 4096.
	RunEntriesPerBlock int
}

type termAccum struct {
	termType uint32
	postings []posting.Posting
}

// Inverter accumulates (doc_id, term, position) triples and produces a
// term dictionary plus posting file. Not safe for concurrent use — spec.md
// §5 specifies the inverter is single-threaded per index build.
type Inverter struct {
	opts Options

	trie        *trie.Trie[termAccum]
	approxBytes int

	runFiles []string
	finished bool
	aborted  bool
}

// Init allocates a new Inverter's in-memory state, mirroring
// iSrchInvertInit.
func Init(opts Options) (*Inverter, error) {
	if opts.MinTermLength < 0 || opts.MaxTermLength < opts.MinTermLength {
		return nil, base.Errorf(base.KindValidation, "invert: invalid term length bounds [%d,%d]", opts.MinTermLength, opts.MaxTermLength)
	}
	if opts.TempDir == "" {
		return nil, base.Errorf(base.KindValidation, "invert: empty temporary directory path")
	}
	if opts.RunEntriesPerBlock <= 0 {
		opts.RunEntriesPerBlock = 4096
	}
	if err := os.MkdirAll(opts.TempDir, 0o755); err != nil {
		return nil, base.Wrapf(base.KindIO, err, "invert: create temp dir %q", opts.TempDir)
	}
	return &Inverter{opts: opts, trie: trie.New[termAccum](0)}, nil
}

// AddTerm records one token occurrence, per spec.md §4.4 protocol item 2.
// Terms outside [MinTermLength, MaxTermLength] are silently dropped.
// fieldID and fieldOptions are accepted for interface fidelity with the
// original collaborator contract but are not otherwise interpreted by the
// core; fieldType seeds the posting list's TermType the first time a term
// is seen.
func (inv *Inverter) AddTerm(docID uint32, term []byte, position, fieldID, fieldType, fieldOptions uint32) error {
	if inv.finished || inv.aborted {
		return base.Errorf(base.KindValidation, "invert: AddTerm called after Finish/Abort")
	}
	_ = fieldID
	_ = fieldOptions
	if len(term) < inv.opts.MinTermLength || len(term) > inv.opts.MaxTermLength {
		return nil
	}

	slot, created := inv.trie.Add(term)
	if created {
		slot.termType = fieldType
	}
	slot.postings = append(slot.postings, posting.Posting{DocID: docID, Position: position, Weight: 1})
	inv.approxBytes += approxPostingBytes

	if inv.approxBytes >= inv.opts.MemoryBudgetBytes && inv.opts.MemoryBudgetBytes > 0 {
		return inv.spill()
	}
	return nil
}

// spill walks the trie in term order, writes each term's sorted postings
// to a new run file, and resets the in-memory state, per spec.md §4.4
// protocol item 3.
func (inv *Inverter) spill() error {
	if inv.trie.Len() == 0 {
		return nil
	}
	path := filepath.Join(inv.opts.TempDir, fmt.Sprintf("run-%04d.tmp", len(inv.runFiles)))
	w, err := createRunWriter(path, inv.opts.RunCompression, inv.opts.RunEntriesPerBlock)
	if err != nil {
		return err
	}

	var walkErr error
	inv.trie.Walk(func(key []byte, value *termAccum) bool {
		posting.SortByDocID(value.postings)
		if err := w.writeEntry(key, value.termType, value.postings); err != nil {
			walkErr = err
			return false
		}
		return true
	})
	if walkErr != nil {
		w.abort()
		return walkErr
	}
	if err := w.close(); err != nil {
		return err
	}

	inv.runFiles = append(inv.runFiles, path)
	inv.trie = trie.New[termAccum](0)
	inv.approxBytes = 0
	return nil
}

// Finish spills any remaining in-memory state, merges every run file into
// the final dictionary and posting file, and removes the temporary runs,
// per spec.md §4.4 protocol item 4.
func (inv *Inverter) Finish(dictPath, postingPath string) error {
	if inv.finished || inv.aborted {
		return base.Errorf(base.KindValidation, "invert: Finish called after Finish/Abort")
	}
	if err := inv.spill(); err != nil {
		inv.cleanupRuns()
		return err
	}
	inv.finished = true

	if err := mergeRuns(inv.runFiles, dictPath, postingPath); err != nil {
		inv.cleanupRuns()
		_ = os.Remove(dictPath)
		_ = os.Remove(postingPath)
		return err
	}
	inv.cleanupRuns()
	return nil
}

// Abort discards all temporary files and in-memory state, with no durable
// effect, per spec.md §4.4 protocol item 5. Always safe to call, including
// after a failed AddTerm or spill.
func (inv *Inverter) Abort() error {
	inv.aborted = true
	inv.trie = nil
	inv.cleanupRuns()
	return nil
}

func (inv *Inverter) cleanupRuns() {
	for _, p := range inv.runFiles {
		_ = os.Remove(p)
	}
	inv.runFiles = nil
}

// Field widths of a packed dictionary value, in order: doc count,
// occurrence count, posting-blob offset, posting-blob length.
const (
	dictValueDocCountWidth = 4
	dictValueOccCountWidth = 4
	dictValueOffsetWidth   = 8
	dictValueLengthWidth   = 8
)
