package posting_test

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/datadriven"
	"github.com/fschiettecatte/mpscore/posting"
)

// parseList reads one "doc,pos,weight doc,pos,weight ..." line into a List.
func parseList(t *testing.T, line string) *posting.List {
	t.Helper()
	var ps []posting.Posting
	for _, tok := range strings.Fields(line) {
		parts := strings.Split(tok, ",")
		if len(parts) != 3 {
			t.Fatalf("bad posting token %q", tok)
		}
		doc, err := strconv.ParseUint(parts[0], 10, 32)
		if err != nil {
			t.Fatal(err)
		}
		pos, err := strconv.ParseUint(parts[1], 10, 32)
		if err != nil {
			t.Fatal(err)
		}
		w, err := strconv.ParseFloat(parts[2], 32)
		if err != nil {
			t.Fatal(err)
		}
		ps = append(ps, posting.Posting{DocID: uint32(doc), Position: uint32(pos), Weight: float32(w)})
	}
	return posting.New(0, false, ps)
}

func formatList(l *posting.List) string {
	var b strings.Builder
	for _, p := range l.Postings {
		fmt.Fprintf(&b, "%d,%d,%g\n", p.DocID, p.Position, p.Weight)
	}
	if b.Len() == 0 {
		return "(empty)\n"
	}
	return b.String()
}

// TestMergeScenarios runs the posting merge scenarios (spec.md §8, S5) as
// datadriven golden files, the way the teacher pack's own data_test.go
// drives DB operations from testdata scripts.
func TestMergeScenarios(t *testing.T) {
	datadriven.RunTest(t, "testdata/merge", func(t *testing.T, td *datadriven.TestData) string {
		lines := strings.Split(td.Input, "\n")
		if len(lines) != 2 {
			t.Fatalf("expected two input lines (a, b), got %d", len(lines))
		}
		a := parseList(t, lines[0])
		b := parseList(t, lines[1])

		switch td.Cmd {
		case "or":
			return formatList(posting.OR(a, b, posting.Relaxed))
		case "and":
			return formatList(posting.AND(a, b, posting.Relaxed))
		case "adj":
			var d int
			td.ScanArgs(t, "distance", &d)
			return formatList(posting.ADJ(a, b, d, posting.Relaxed))
		default:
			t.Fatalf("unknown command %q", td.Cmd)
			return ""
		}
	})
}

// TestBlobTrailerMatchesXxhash pins the posting blob trailer's checksum
// algorithm: an 8-byte little-endian xxhash.Sum64 of the header-plus-records
// bytes, the [EXPANSION] trailer SPEC_FULL.md §3 adds over spec.md's blob
// layout.
func TestBlobTrailerMatchesXxhash(t *testing.T) {
	l := parseList(t, "1,1,1.0 3,2,1.0")
	data := posting.EncodeBlob(l)
	body := data[:len(data)-8]
	want := xxhash.Sum64(body)
	got := binary.LittleEndian.Uint64(data[len(data)-8:])
	if got != want {
		t.Fatalf("trailer checksum mismatch: want %x, got %x", want, got)
	}
}
