package wizard

import (
	"testing"

	"github.com/brown2020/ikigaifinder/internal/catalog"
)

// fillStep answers every question on the step at index with a single value.
func fillStep(t *testing.T, s State, index int) State {
	t.Helper()
	answers := make(map[string][]string)
	for _, q := range s.Steps[index].Questions {
		answers[q.ID] = []string{"answer for " + q.ID}
	}
	next, fieldErrs, err := SubmitStep(s, index, answers)
	if err != nil {
		t.Fatalf("SubmitStep(%d) error: %v", index, err)
	}
	if len(fieldErrs) > 0 {
		t.Fatalf("SubmitStep(%d) field errors: %+v", index, fieldErrs)
	}
	return next
}

func TestNewState(t *testing.T) {
	t.Parallel()

	s := NewState()
	if s.CurrentStep != 0 {
		t.Fatalf("fresh state should start at step 0, got %d", s.CurrentStep)
	}
	if len(s.Steps) != catalog.StepCount() {
		t.Fatalf("fresh state should carry the full catalog: got %d want %d", len(s.Steps), catalog.StepCount())
	}
}

func TestSubmitStep_AdvancesOnValidAnswers(t *testing.T) {
	t.Parallel()

	s := fillStep(t, NewState(), 0)
	if s.CurrentStep != 1 {
		t.Fatalf("expected advance to step 1, got %d", s.CurrentStep)
	}
}

func TestSubmitStep_RequiredValidation(t *testing.T) {
	t.Parallel()

	s := NewState()
	next, fieldErrs, err := SubmitStep(s, 0, map[string][]string{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fieldErrs) != len(s.Steps[0].Questions) {
		t.Fatalf("expected one field error per required question, got %d", len(fieldErrs))
	}
	if next.CurrentStep != 0 {
		t.Fatalf("invalid submit must not advance, got step %d", next.CurrentStep)
	}
}

func TestSubmitStep_OutOfRange(t *testing.T) {
	t.Parallel()

	if _, _, err := SubmitStep(NewState(), 99, nil); err == nil {
		t.Fatal("expected error for out-of-range step")
	}
	if _, _, err := SubmitStep(NewState(), -1, nil); err == nil {
		t.Fatal("expected error for negative step")
	}
}

func TestSubmitStep_PartialPayloadKeepsOldAnswers(t *testing.T) {
	t.Parallel()

	s := fillStep(t, NewState(), 0)

	// resubmit step 0 touching only the first question
	first := s.Steps[0].Questions[0].ID
	next, fieldErrs, err := SubmitStep(s, 0, map[string][]string{first: {"changed"}})
	if err != nil || len(fieldErrs) > 0 {
		t.Fatalf("resubmit failed: err=%v fieldErrs=%+v", err, fieldErrs)
	}
	for _, q := range next.Steps[0].Questions[1:] {
		if len(q.Answer) == 0 {
			t.Fatalf("partial submit wiped answer for %q", q.ID)
		}
	}
	if next.Steps[0].Questions[0].Answer[0] != "changed" {
		t.Fatalf("submitted answer not applied")
	}
}

func TestSubmitStep_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	before := NewState()
	answers := make(map[string][]string)
	for _, q := range before.Steps[0].Questions {
		answers[q.ID] = []string{"fresh"}
	}
	next, _, err := SubmitStep(before, 0, answers)
	if err != nil {
		t.Fatalf("SubmitStep: %v", err)
	}

	for _, q := range before.Steps[0].Questions {
		if len(q.Answer) != 0 {
			t.Fatalf("input state mutated: %q got %v", q.ID, q.Answer)
		}
	}
	if !AnswersChanged(before, next) {
		t.Fatal("change detection must see the new answers against the old state")
	}
}

func TestBack(t *testing.T) {
	t.Parallel()

	s := fillStep(t, NewState(), 0)
	s = Back(s)
	if s.CurrentStep != 0 {
		t.Fatalf("expected step 0 after back, got %d", s.CurrentStep)
	}
	s = Back(s)
	if s.CurrentStep != 0 {
		t.Fatalf("back at step 0 must stay at 0, got %d", s.CurrentStep)
	}
}

func TestCanJump(t *testing.T) {
	t.Parallel()

	s := fillStep(t, NewState(), 0) // now on step 1

	cases := []struct {
		name   string
		target int
		want   bool
	}{
		{"backward", 0, true},
		{"current", 1, true},
		{"forward unanswered", 2, false},
		{"out of range", 99, false},
		{"negative", -1, false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := CanJump(s, tc.target); got != tc.want {
				t.Fatalf("CanJump(%d): got=%v want=%v", tc.target, got, tc.want)
			}
		})
	}
}

func TestJumpTo_ForwardOntoAnsweredStep(t *testing.T) {
	t.Parallel()

	s := NewState()
	for i := 0; i < len(s.Steps); i++ {
		s = fillStep(t, s, i)
	}
	s, err := JumpTo(s, 0)
	if err != nil {
		t.Fatalf("backward jump failed: %v", err)
	}

	// forward jump allowed because the target step is fully answered
	s, err = JumpTo(s, 3)
	if err != nil {
		t.Fatalf("forward jump onto answered step failed: %v", err)
	}
	if s.CurrentStep != 3 {
		t.Fatalf("expected step 3, got %d", s.CurrentStep)
	}
}

func TestComplete(t *testing.T) {
	t.Parallel()

	s := NewState()
	if Complete(s) {
		t.Fatal("fresh state must not be complete")
	}
	for i := 0; i < len(s.Steps); i++ {
		s = fillStep(t, s, i)
	}
	if !Complete(s) {
		t.Fatal("fully answered state should be complete")
	}
}

func TestAnswersChanged_FirstValueComparison(t *testing.T) {
	t.Parallel()

	base := NewState()
	for i := 0; i < len(base.Steps); i++ {
		base = fillStep(t, base, i)
	}

	same := base
	if AnswersChanged(base, same) {
		t.Fatal("identical states must not count as changed")
	}

	// changing a secondary value keeps the first element intact
	reordered := Normalize(base)
	q := &reordered.Steps[0].Questions[0]
	q.Answer = append([]string{q.Answer[0]}, "extra tag")
	if AnswersChanged(base, reordered) {
		t.Fatal("appending a secondary value must not invalidate")
	}

	// changing the leading value does
	edited := Normalize(base)
	edited.Steps[0].Questions[0].Answer = []string{"something new"}
	if !AnswersChanged(base, edited) {
		t.Fatal("editing the first value must invalidate")
	}
}

func TestNormalize_ClampsAndKeepsAnswers(t *testing.T) {
	t.Parallel()

	s := fillStep(t, NewState(), 0)
	s.CurrentStep = 42

	n := Normalize(s)
	if n.CurrentStep != len(n.Steps)-1 {
		t.Fatalf("current step not clamped: got %d", n.CurrentStep)
	}
	for _, q := range n.Steps[0].Questions {
		if len(q.Answer) == 0 {
			t.Fatalf("normalize dropped answer for %q", q.ID)
		}
	}
}
