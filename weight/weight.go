// Package weight implements dense per-document weight vectors and their
// Boolean set algebra, grounded on
// _examples/original_source/src/search/weight.h (struct srchWeight and the
// iSrchWeightMerge{XOR,OR,AND,NOT} family) and spec.md §4.6. A Weight is a
// float32 slot per document id; a zero slot means the document is absent
// from the set the Weight represents.
package weight

import "github.com/fschiettecatte/mpscore/internal/base"

// Weight is a dense, by-document-id vector of scores, mirroring struct
// srchWeight. Mapped reports whether Values is backed by a read-only
// memory mapping (srchWeight.bMappedAllocationFlag) rather than an owned
// slice — operators never mutate a Mapped Weight's Values in place.
type Weight struct {
	Values []float32
	Mapped bool
}

// New wraps values as an owned Weight.
func New(values []float32) *Weight {
	return &Weight{Values: values}
}

// NewMapped wraps values (backed by a memory mapping) as a Weight that
// operators must treat as read-only input.
func NewMapped(values []float32) *Weight {
	return &Weight{Values: values, Mapped: true}
}

// Len returns the number of document slots.
func (w *Weight) Len() int { return len(w.Values) }

func checkSameLength(a, b *Weight) error {
	if len(a.Values) != len(b.Values) {
		return base.Errorf(base.KindValidation, "weight: length mismatch %d vs %d", len(a.Values), len(b.Values))
	}
	return nil
}

// AND intersects two weight vectors: a document survives only if present
// (nonzero) on both sides, with its score the smaller of the two.
func AND(a, b *Weight) (*Weight, error) {
	if err := checkSameLength(a, b); err != nil {
		return nil, err
	}
	out := make([]float32, len(a.Values))
	for i := range out {
		if a.Values[i] != 0 && b.Values[i] != 0 {
			out[i] = min32(a.Values[i], b.Values[i])
		}
	}
	return New(out), nil
}

// OR unions two weight vectors: a document present on either side keeps a
// nonzero score, the sum of both sides' contributions.
func OR(a, b *Weight) (*Weight, error) {
	if err := checkSameLength(a, b); err != nil {
		return nil, err
	}
	out := make([]float32, len(a.Values))
	for i := range out {
		out[i] = a.Values[i] + b.Values[i]
	}
	return New(out), nil
}

// XOR keeps a document's score only if it is present on exactly one side.
func XOR(a, b *Weight) (*Weight, error) {
	if err := checkSameLength(a, b); err != nil {
		return nil, err
	}
	out := make([]float32, len(a.Values))
	for i := range out {
		switch {
		case a.Values[i] != 0 && b.Values[i] == 0:
			out[i] = a.Values[i]
		case a.Values[i] == 0 && b.Values[i] != 0:
			out[i] = b.Values[i]
		}
	}
	return New(out), nil
}

// NOT keeps a's score for documents absent from b, zeroing the rest.
func NOT(a, b *Weight) (*Weight, error) {
	if err := checkSameLength(a, b); err != nil {
		return nil, err
	}
	out := make([]float32, len(a.Values))
	for i := range out {
		if b.Values[i] == 0 {
			out[i] = a.Values[i]
		}
	}
	return New(out), nil
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
