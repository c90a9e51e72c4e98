package ikigai

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

const sampleRecord = `1. Help others heal.
- Passion & Profession: 80%
- Profession & Vocation: 70%
- Vocation & Mission: 90%
- Passion & Mission: 85%
- Overall Compatibility: 81.5%
`

func TestExtract_SingleRecord(t *testing.T) {
	t.Parallel()

	got := Extract(sampleRecord)
	want := []Candidate{{
		Ikigai:               "Help others heal.",
		Passion:              80,
		Profession:           70,
		Vocation:             90,
		Mission:              85,
		OverallCompatibility: 81.5,
	}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected candidates: got=%+v want=%+v", got, want)
	}
}

func TestExtract_Empty(t *testing.T) {
	t.Parallel()

	for _, text := range []string{"", "no records here", "1. A statement with no bullets"} {
		if got := Extract(text); len(got) != 0 {
			t.Fatalf("expected no candidates for %q, got %+v", text, got)
		}
	}
}

func TestExtract_MultipleRecordsInOrder(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	for i := 1; i <= 3; i++ {
		fmt.Fprintf(&b, "%d. Statement number %d.\n", i, i)
		fmt.Fprintf(&b, "- Passion & Profession: %d%%\n", 10*i)
		fmt.Fprintf(&b, "- Profession & Vocation: %d%%\n", 10*i+1)
		fmt.Fprintf(&b, "- Vocation & Mission: %d%%\n", 10*i+2)
		fmt.Fprintf(&b, "- Passion & Mission: %d%%\n", 10*i+3)
		fmt.Fprintf(&b, "- Overall Compatibility: %d%%\n\n", 10*i+4)
	}

	got := Extract(b.String())
	if len(got) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(got))
	}
	for i, c := range got {
		wantStatement := fmt.Sprintf("Statement number %d.", i+1)
		if c.Ikigai != wantStatement {
			t.Fatalf("candidate %d out of order: got=%q want=%q", i, c.Ikigai, wantStatement)
		}
		if c.Passion != float64(10*(i+1)) {
			t.Fatalf("candidate %d Passion: got=%v want=%v", i, c.Passion, 10*(i+1))
		}
	}
}

// The first bullet fills Passion, the second Profession, and so on; the
// stored document format depends on that positional mapping.
func TestExtract_PositionalFieldMapping(t *testing.T) {
	t.Parallel()

	text := "1. Mapped.\n" +
		"- Passion & Profession: 1%\n" +
		"- Profession & Vocation: 2%\n" +
		"- Vocation & Mission: 3%\n" +
		"- Passion & Mission: 4%\n" +
		"- Overall Compatibility: 5%\n"
	got := Extract(text)
	if len(got) != 1 {
		t.Fatalf("expected one candidate, got %d", len(got))
	}
	c := got[0]
	if c.Passion != 1 || c.Profession != 2 || c.Vocation != 3 || c.Mission != 4 || c.OverallCompatibility != 5 {
		t.Fatalf("positional mapping broken: %+v", c)
	}
}

func TestExtract_SkipsTrailingPartialRecord(t *testing.T) {
	t.Parallel()

	partial := sampleRecord + "\n2. A statement still streaming.\n- Passion & Profession: 60%\n- Profession & Vo"
	got := Extract(partial)
	if len(got) != 1 {
		t.Fatalf("expected only the complete record, got %d", len(got))
	}
	if got[0].Ikigai != "Help others heal." {
		t.Fatalf("wrong record extracted: %q", got[0].Ikigai)
	}
}

// Feeding successively longer prefixes of the same text must never shrink
// the result, mirroring how the streaming consumer re-extracts the whole
// buffer after every delta.
func TestExtract_PrefixMonotonic(t *testing.T) {
	t.Parallel()

	full := sampleRecord + "\n2. A second purpose.\n" +
		"- Passion & Profession: 50%\n" +
		"- Profession & Vocation: 55%\n" +
		"- Vocation & Mission: 60%\n" +
		"- Passion & Mission: 65%\n" +
		"- Overall Compatibility: 57.5%\n"

	prev := 0
	for i := 0; i <= len(full); i++ {
		n := len(Extract(full[:i]))
		if n < prev {
			t.Fatalf("candidate count shrank at prefix %d: %d -> %d", i, prev, n)
		}
		prev = n
	}
	if prev != 2 {
		t.Fatalf("expected 2 candidates on the full text, got %d", prev)
	}
}

func TestExtract_DecimalPercentages(t *testing.T) {
	t.Parallel()

	text := "1. Decimals everywhere.\n" +
		"- Passion & Profession: 80.25%\n" +
		"- Profession & Vocation: 70.5%\n" +
		"- Vocation & Mission: 90.0%\n" +
		"- Passion & Mission: 85.75%\n" +
		"- Overall Compatibility: 81.625%\n"
	got := Extract(text)
	if len(got) != 1 {
		t.Fatalf("expected one candidate, got %d", len(got))
	}
	if got[0].Passion != 80.25 || got[0].OverallCompatibility != 81.625 {
		t.Fatalf("decimal parsing broken: %+v", got[0])
	}
}
