package ikigai

import (
	"reflect"
	"testing"
)

func cand(statement string, overall float64) Candidate {
	return Candidate{Ikigai: statement, OverallCompatibility: overall}
}

func TestMerge_FirstOccurrenceWins(t *testing.T) {
	t.Parallel()

	existing := []Candidate{cand("Teach what you know.", 80)}
	incoming := []Candidate{
		cand("Teach what you know.", 95), // duplicate statement, new numbers
		cand("Grow food for neighbors.", 70),
	}

	got := Merge(existing, incoming)
	want := []Candidate{
		cand("Teach what you know.", 80),
		cand("Grow food for neighbors.", 70),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected merge result: got=%+v want=%+v", got, want)
	}
}

func TestMerge_Idempotent(t *testing.T) {
	t.Parallel()

	in := []Candidate{cand("One.", 1), cand("Two.", 2)}
	once := Merge(nil, in)
	twice := Merge(once, in)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("merge not idempotent: once=%+v twice=%+v", once, twice)
	}
}

func TestMerge_NilExisting(t *testing.T) {
	t.Parallel()

	in := []Candidate{cand("Solo.", 50)}
	got := Merge(nil, in)
	if !reflect.DeepEqual(got, in) {
		t.Fatalf("unexpected result: got=%+v want=%+v", got, in)
	}
}

func TestMerge_TrimsWhitespaceForDedup(t *testing.T) {
	t.Parallel()

	got := Merge(
		[]Candidate{cand("Padded.", 10)},
		[]Candidate{cand("  Padded.  ", 99)},
	)
	if len(got) != 1 {
		t.Fatalf("expected whitespace variants to dedup, got %d entries", len(got))
	}
	if got[0].OverallCompatibility != 10 {
		t.Fatalf("first occurrence should win: %+v", got[0])
	}
}
