// Package posting implements posting lists and the Boolean/proximity merge
// operators that combine them, grounded on
// _examples/original_source/src/search/posting.h (struct srchPosting,
// struct srchPostingsList, and the iSrchPostingMergeSrchPostingsLists*
// family) and spec.md §4.5. A posting list is an array of (doc_id,
// position, weight) records sorted by (doc_id, position); operators borrow
// their inputs and return a freshly allocated list, never mutating either
// side, matching the ownership rule in spec.md §5.
package posting

import (
	"github.com/fschiettecatte/mpscore/internal/base"
	"golang.org/x/exp/slices"
)

// Mode selects how a merge operator treats the Required flag of its
// inputs during soft-Boolean evaluation, per spec.md §4.5's "Mode
// semantics" note. It has no C counterpart by name; posting.h encodes it
// as the untyped uiSrchPostingBooleanOperationID constants
// SRCH_POSTING_BOOLEAN_OPERATION_{STRICT,RELAXED}_ID.
type Mode int

const (
	// Strict treats a missing required input as a hard filter.
	Strict Mode = iota
	// Relaxed treats required as a ranking preference only.
	Relaxed
)

// Posting is one (document, position, weight) occurrence of a term,
// mirroring struct srchPosting.
type Posting struct {
	DocID    uint32
	Position uint32
	Weight   float32
}

// List is a posting list for one term: a sorted array of Posting plus the
// header counts carried alongside it on disk, mirroring struct
// srchPostingsList. TermCount and DocumentCount are derived, not
// independently settable, to keep them from drifting out of sync with
// Postings the way a hand-maintained C struct field can.
type List struct {
	TermType uint32
	Required bool
	Postings []Posting
}

// New builds a List from already-sorted postings; TermCount and
// DocumentCount are then derived from them on demand. It does not itself
// sort or validate; call Validate for that.
func New(termType uint32, required bool, postings []Posting) *List {
	return &List{TermType: termType, Required: required, Postings: postings}
}

// TermCount is the number of occurrences (srchPostingsList.uiTermCount).
func (l *List) TermCount() int { return len(l.Postings) }

// DocumentCount is the number of distinct documents the term occurs in
// (srchPostingsList.uiDocumentCount).
func (l *List) DocumentCount() int {
	n := 0
	for i := range l.Postings {
		if i == 0 || l.Postings[i].DocID != l.Postings[i-1].DocID {
			n++
		}
	}
	return n
}

// Validate checks that Postings is sorted by (doc_id, position) ascending,
// the invariant every merge operator assumes of its inputs
// (iSrchPostingCheckSrchPostingsList).
func (l *List) Validate() error {
	for i := 1; i < len(l.Postings); i++ {
		a, b := l.Postings[i-1], l.Postings[i]
		if b.DocID < a.DocID || (b.DocID == a.DocID && b.Position < a.Position) {
			return base.Errorf(base.KindValidation, "posting: postings not sorted by (doc_id, position) at index %d", i)
		}
	}
	return nil
}

// SortByDocID sorts postings by ascending document id, the auxiliary
// quicksort spec.md §4.5 calls out for results (e.g. a proximity merge)
// that are not naturally produced in document order
// (iSrchPostingSortDocumentIDAsc).
func SortByDocID(postings []Posting) {
	slices.SortFunc(postings, func(a, b Posting) int {
		if a.DocID != b.DocID {
			if a.DocID < b.DocID {
				return -1
			}
			return 1
		}
		switch {
		case a.Position < b.Position:
			return -1
		case a.Position > b.Position:
			return 1
		default:
			return 0
		}
	})
}

// docRun returns the half-open range [start, end) of ps sharing ps[start]'s
// doc id; ps must be sorted by doc id. Used by every merge to walk inputs
// one document at a time.
func docRun(ps []Posting, start int) (docID uint32, end int) {
	docID = ps[start].DocID
	end = start + 1
	for end < len(ps) && ps[end].DocID == docID {
		end++
	}
	return docID, end
}

// mergePositions merges two postings runs for the same document: when
// positions collide the weights are summed into one record, otherwise
// records are interleaved in position order, per spec.md §4.5's OR rule
// ("weights are summed ... when positions collide, otherwise
// interleaved").
func mergePositions(a, b []Posting) []Posting {
	out := make([]Posting, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Position == b[j].Position:
			out = append(out, Posting{DocID: a[i].DocID, Position: a[i].Position, Weight: a[i].Weight + b[j].Weight})
			i++
			j++
		case a[i].Position < b[j].Position:
			out = append(out, a[i])
			i++
		default:
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

type unionEntry struct {
	docID   uint32
	merged  []Posting
	inA     bool
	inB     bool
}

// unionRuns walks a and b together by document, producing one entry per
// document present in either side with its merged postings and a flag for
// which side(s) contributed it. Shared by OR and IOR, which differ only in
// how they post-process this union (spec.md §4.5: "IOR... like OR but...").
func unionRuns(a, b []Posting) []unionEntry {
	var entries []unionEntry
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case j >= len(b) || (i < len(a) && a[i].DocID < b[j].DocID):
			doc, end := docRun(a, i)
			entries = append(entries, unionEntry{docID: doc, merged: append([]Posting(nil), a[i:end]...), inA: true})
			i = end
		case i >= len(a) || b[j].DocID < a[i].DocID:
			doc, end := docRun(b, j)
			entries = append(entries, unionEntry{docID: doc, merged: append([]Posting(nil), b[j:end]...), inB: true})
			j = end
		default:
			docA, endA := docRun(a, i)
			_, endB := docRun(b, j)
			entries = append(entries, unionEntry{docID: docA, merged: mergePositions(a[i:endA], b[j:endB]), inA: true, inB: true})
			i, j = endA, endB
		}
	}
	return entries
}

func flatten(entries []unionEntry) []Posting {
	out := make([]Posting, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.merged...)
	}
	return out
}

// OR computes the union of a and b by document (spec.md §4.5 "OR"). In
// Strict mode a document required by one side but absent from it is
// dropped even though it is present in the other (required acts as a hard
// filter); in Relaxed mode the union passes through unfiltered, since
// required is only a ranking preference.
func OR(a, b *List, mode Mode) *List {
	entries := unionRuns(a.Postings, b.Postings)
	if mode == Strict {
		filtered := entries[:0]
		for _, e := range entries {
			if a.Required && !e.inA {
				continue
			}
			if b.Required && !e.inB {
				continue
			}
			filtered = append(filtered, e)
		}
		entries = filtered
	}
	return New(a.TermType, a.Required || b.Required, flatten(entries))
}

// IOR computes the inclusive-or ("should") union: like OR, but never
// applies required-based filtering — documents absent from every required
// input are still emitted (spec.md §4.5). The result is never itself
// marked required, since IOR's purpose is to loosen, not propagate, the
// required constraint.
func IOR(a, b *List, mode Mode) *List {
	entries := unionRuns(a.Postings, b.Postings)
	return New(a.TermType, false, flatten(entries))
}

// XOR computes the symmetric difference by document: postings for
// documents present in exactly one side pass through unchanged.
func XOR(a, b *List, mode Mode) *List {
	entries := unionRuns(a.Postings, b.Postings)
	var out []Posting
	for _, e := range entries {
		if e.inA != e.inB {
			out = append(out, e.merged...)
		}
	}
	return New(a.TermType, a.Required || b.Required, out)
}

// AND computes the intersection by document: a matched document yields a
// single posting carrying the summed weight of every occurrence on both
// sides, at the first position in a's run (spec.md §4.5, S5: AND sums
// weights across the whole matched document rather than merging
// position-by-position the way OR does).
func AND(a, b *List, mode Mode) *List {
	var out []Posting
	i, j := 0, 0
	for i < len(a.Postings) && j < len(b.Postings) {
		ai, bi := a.Postings[i].DocID, b.Postings[j].DocID
		switch {
		case ai < bi:
			_, end := docRun(a.Postings, i)
			i = end
		case bi < ai:
			_, end := docRun(b.Postings, j)
			j = end
		default:
			endA, endB := indexAfterRun(a.Postings, i), indexAfterRun(b.Postings, j)
			runA, runB := a.Postings[i:endA], b.Postings[j:endB]
			var weight float32
			for _, p := range runA {
				weight += p.Weight
			}
			for _, p := range runB {
				weight += p.Weight
			}
			out = append(out, Posting{DocID: ai, Position: runA[0].Position, Weight: weight})
			i, j = endA, endB
		}
	}
	return New(a.TermType, a.Required || b.Required, out)
}

func indexAfterRun(ps []Posting, start int) int {
	_, end := docRun(ps, start)
	return end
}

// NOT returns postings from a for documents absent from b, weights
// unchanged from a.
func NOT(a, b *List, mode Mode) *List {
	var out []Posting
	i, j := 0, 0
	for i < len(a.Postings) {
		docA, endA := docRun(a.Postings, i)
		for j < len(b.Postings) && b.Postings[j].DocID < docA {
			j = indexAfterRun(b.Postings, j)
		}
		if j >= len(b.Postings) || b.Postings[j].DocID != docA {
			out = append(out, a.Postings[i:endA]...)
		}
		i = endA
	}
	return New(a.TermType, a.Required, out)
}

// ADJ finds documents containing an adjacency: at least one posting pair
// (p_a, p_b) with p_b.Position - p_a.Position == distance. Emits the
// a-side posting with weight a.weight + b.weight (spec.md §4.5 "ADJ").
func ADJ(a, b *List, distance int, mode Mode) *List {
	var out []Posting
	i, j := 0, 0
	for i < len(a.Postings) && j < len(b.Postings) {
		docA, endA := docRun(a.Postings, i)
		docB, endB := docRun(b.Postings, j)
		switch {
		case docA < docB:
			i = endA
		case docB < docA:
			j = endB
		default:
			out = append(out, adjacencyMatches(a.Postings[i:endA], b.Postings[j:endB], distance, false)...)
			i, j = endA, endB
		}
	}
	return New(a.TermType, a.Required || b.Required, out)
}

// NEAR finds documents containing a proximity match: |p_b.Position -
// p_a.Position| <= distance, additionally requiring p_a.Position <=
// p_b.Position when ordered is true (spec.md §4.5 "NEAR").
func NEAR(a, b *List, distance int, ordered bool, mode Mode) *List {
	var out []Posting
	i, j := 0, 0
	for i < len(a.Postings) && j < len(b.Postings) {
		docA, endA := docRun(a.Postings, i)
		docB, endB := docRun(b.Postings, j)
		switch {
		case docA < docB:
			i = endA
		case docB < docA:
			j = endB
		default:
			out = append(out, nearMatches(a.Postings[i:endA], b.Postings[j:endB], distance, ordered)...)
			i, j = endA, endB
		}
	}
	return New(a.TermType, a.Required || b.Required, out)
}

// adjacencyMatches and nearMatches keep one sub-cursor (j) within the
// current document's b-side run, per spec.md §4.5's "Algorithmic notes":
// both runs are already position-sorted within the document, and since
// the qualifying b-side position only increases as pa advances (distance
// is fixed), j is advanced forward from wherever the previous a-side
// posting left it rather than rescanning runB from the start each time.
func adjacencyMatches(runA, runB []Posting, distance int, _ bool) []Posting {
	var out []Posting
	j := 0
	for _, pa := range runA {
		target := int64(pa.Position) + int64(distance)
		for j < len(runB) && int64(runB[j].Position) < target {
			j++
		}
		if j < len(runB) && int64(runB[j].Position) == target {
			out = append(out, Posting{DocID: pa.DocID, Position: pa.Position, Weight: pa.Weight + runB[j].Weight})
		}
	}
	return out
}

func nearMatches(runA, runB []Posting, distance int, ordered bool) []Posting {
	var out []Posting
	j := 0
	for _, pa := range runA {
		lowerBound := int64(pa.Position) - int64(distance)
		if ordered {
			lowerBound = int64(pa.Position)
		}
		for j < len(runB) && int64(runB[j].Position) < lowerBound {
			j++
		}
		upperBound := int64(pa.Position) + int64(distance)
		if j < len(runB) && int64(runB[j].Position) <= upperBound {
			out = append(out, Posting{DocID: pa.DocID, Position: pa.Position, Weight: pa.Weight + runB[j].Weight})
		}
	}
	return out
}
