package posting_test

import (
	"testing"

	"github.com/fschiettecatte/mpscore/posting"
	"github.com/stretchr/testify/require"
)

func p(doc, pos uint32, w float32) posting.Posting {
	return posting.Posting{DocID: doc, Position: pos, Weight: w}
}

func TestValidateRejectsOutOfOrder(t *testing.T) {
	l := posting.New(0, false, []posting.Posting{p(2, 0, 1), p(1, 0, 1)})
	require.Error(t, l.Validate())
}

func TestDocumentCount(t *testing.T) {
	l := posting.New(0, false, []posting.Posting{p(1, 0, 1), p(1, 1, 1), p(2, 0, 1)})
	require.Equal(t, 3, l.TermCount())
	require.Equal(t, 2, l.DocumentCount())
}

func TestOR(t *testing.T) {
	a := posting.New(0, false, []posting.Posting{p(1, 0, 1), p(3, 0, 1)})
	b := posting.New(0, false, []posting.Posting{p(2, 0, 1), p(3, 0, 2)})
	out := posting.OR(a, b, posting.Relaxed)
	require.Equal(t, []posting.Posting{p(1, 0, 1), p(2, 0, 1), p(3, 0, 3)}, out.Postings)
}

func TestORStrictDropsMissingRequired(t *testing.T) {
	a := posting.New(0, true, []posting.Posting{p(1, 0, 1), p(3, 0, 1)})
	b := posting.New(0, false, []posting.Posting{p(2, 0, 1), p(3, 0, 2)})
	out := posting.OR(a, b, posting.Strict)
	// doc 2 is absent from required side a, so it is dropped in Strict mode.
	require.Equal(t, []posting.Posting{p(1, 0, 1), p(3, 0, 3)}, out.Postings)
}

func TestIORNeverFilters(t *testing.T) {
	a := posting.New(0, true, []posting.Posting{p(1, 0, 1)})
	b := posting.New(0, false, []posting.Posting{p(2, 0, 1)})
	out := posting.IOR(a, b, posting.Strict)
	require.Equal(t, []posting.Posting{p(1, 0, 1), p(2, 0, 1)}, out.Postings)
	require.False(t, out.Required)
}

func TestXOR(t *testing.T) {
	a := posting.New(0, false, []posting.Posting{p(1, 0, 1), p(2, 0, 1)})
	b := posting.New(0, false, []posting.Posting{p(2, 0, 1), p(3, 0, 1)})
	out := posting.XOR(a, b, posting.Relaxed)
	require.Equal(t, []posting.Posting{p(1, 0, 1), p(3, 0, 1)}, out.Postings)
}

func TestAND(t *testing.T) {
	a := posting.New(0, false, []posting.Posting{p(1, 0, 1), p(2, 0, 1), p(2, 1, 1)})
	b := posting.New(0, false, []posting.Posting{p(2, 1, 2), p(3, 0, 1)})
	out := posting.AND(a, b, posting.Relaxed)
	require.Equal(t, []posting.Posting{p(2, 0, 4)}, out.Postings)
}

func TestNOT(t *testing.T) {
	a := posting.New(0, false, []posting.Posting{p(1, 0, 1), p(2, 0, 1), p(3, 0, 1)})
	b := posting.New(0, false, []posting.Posting{p(2, 0, 1)})
	out := posting.NOT(a, b, posting.Relaxed)
	require.Equal(t, []posting.Posting{p(1, 0, 1), p(3, 0, 1)}, out.Postings)
}

func TestADJ(t *testing.T) {
	a := posting.New(0, false, []posting.Posting{p(1, 5, 1)})
	b := posting.New(0, false, []posting.Posting{p(1, 6, 1), p(1, 9, 1)})
	out := posting.ADJ(a, b, 1, posting.Relaxed)
	require.Equal(t, []posting.Posting{p(1, 5, 2)}, out.Postings)
}

func TestADJNoMatch(t *testing.T) {
	a := posting.New(0, false, []posting.Posting{p(1, 5, 1)})
	b := posting.New(0, false, []posting.Posting{p(1, 9, 1)})
	out := posting.ADJ(a, b, 1, posting.Relaxed)
	require.Empty(t, out.Postings)
}

func TestNEARUnordered(t *testing.T) {
	a := posting.New(0, false, []posting.Posting{p(1, 10, 1)})
	b := posting.New(0, false, []posting.Posting{p(1, 8, 1)})
	out := posting.NEAR(a, b, 3, false, posting.Relaxed)
	require.Equal(t, []posting.Posting{p(1, 10, 2)}, out.Postings)
}

func TestNEAROrderedRejectsReversed(t *testing.T) {
	a := posting.New(0, false, []posting.Posting{p(1, 10, 1)})
	b := posting.New(0, false, []posting.Posting{p(1, 8, 1)})
	out := posting.NEAR(a, b, 3, true, posting.Relaxed)
	require.Empty(t, out.Postings)
}

func TestSortByDocID(t *testing.T) {
	ps := []posting.Posting{p(3, 0, 1), p(1, 2, 1), p(1, 0, 1)}
	posting.SortByDocID(ps)
	require.Equal(t, []posting.Posting{p(1, 0, 1), p(1, 2, 1), p(3, 0, 1)}, ps)
}
