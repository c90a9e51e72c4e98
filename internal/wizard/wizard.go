// Package wizard holds the pure questionnaire state machine. It knows
// nothing about HTTP or storage; services feed it answers and persist the
// resulting state.
package wizard

import (
	"fmt"

	"github.com/brown2020/ikigaifinder/internal/catalog"
)

// State is the persisted wizard position: the catalog steps with answers
// attached, plus the index of the step the user is on.
type State struct {
	CurrentStep int                    `json:"currentStep"`
	Steps       []catalog.QuestionStep `json:"steps"`
}

// NewState returns a fresh state on step 0 with the full catalog and no
// answers.
func NewState() State {
	return State{CurrentStep: 0, Steps: catalog.Steps()}
}

// Normalize reconciles a stored state with the current catalog: new
// questions appear unanswered, removed ones drop their answers, and the
// current step is clamped into range. Stored states survive catalog edits
// this way.
func Normalize(s State) State {
	saved := make(map[string][]string)
	for _, step := range s.Steps {
		for _, q := range step.Questions {
			if len(q.Answer) > 0 {
				saved[q.ID] = q.Answer
			}
		}
	}

	out := NewState()
	for i := range out.Steps {
		for j := range out.Steps[i].Questions {
			if a, ok := saved[out.Steps[i].Questions[j].ID]; ok {
				out.Steps[i].Questions[j].Answer = a
			}
		}
	}

	out.CurrentStep = s.CurrentStep
	if out.CurrentStep < 0 {
		out.CurrentStep = 0
	}
	if max := len(out.Steps) - 1; out.CurrentStep > max {
		out.CurrentStep = max
	}
	return out
}

// SubmitStep validates answers for the step at index and, when valid,
// merges them question-by-question and advances to the next step. Answers
// for questions not present in the submission are kept, so a partial
// client payload never wipes earlier input on the same step.
func SubmitStep(s State, index int, answers map[string][]string) (State, []catalog.FieldError, error) {
	if index < 0 || index >= len(s.Steps) {
		return s, nil, fmt.Errorf("step %d out of range", index)
	}

	step := s.Steps[index]
	merged := make(map[string][]string, len(step.Questions))
	for _, q := range step.Questions {
		if a, ok := answers[q.ID]; ok {
			merged[q.ID] = a
		} else {
			merged[q.ID] = q.Answer
		}
	}

	if errs := catalog.ValidateStep(step, merged); len(errs) > 0 {
		return s, errs, nil
	}

	// Copy before writing: the caller's state shares our backing array, and
	// it must keep the pre-submit answers so change detection can compare.
	steps := make([]catalog.QuestionStep, len(s.Steps))
	copy(steps, s.Steps)
	questions := make([]catalog.Question, len(steps[index].Questions))
	copy(questions, steps[index].Questions)
	steps[index].Questions = questions
	s.Steps = steps

	for j := range questions {
		questions[j].Answer = merged[questions[j].ID]
	}
	if index == s.CurrentStep && s.CurrentStep < len(s.Steps)-1 {
		s.CurrentStep++
	}
	return s, nil, nil
}

// Back moves one step toward the start. Answers stay untouched.
func Back(s State) State {
	if s.CurrentStep > 0 {
		s.CurrentStep--
	}
	return s
}

// CanJump reports whether the user may move directly to target: backward
// (and same-step) jumps are always allowed, forward jumps only onto a step
// that is already fully answered.
func CanJump(s State, target int) bool {
	if target < 0 || target >= len(s.Steps) {
		return false
	}
	if target <= s.CurrentStep {
		return true
	}
	return catalog.StepComplete(s.Steps[target])
}

// JumpTo moves to target when CanJump allows it.
func JumpTo(s State, target int) (State, error) {
	if !CanJump(s, target) {
		return s, fmt.Errorf("cannot jump to step %d", target)
	}
	s.CurrentStep = target
	return s, nil
}

// Complete reports whether every step is fully answered, i.e. the wizard
// may hand off to generation.
func Complete(s State) bool {
	for _, step := range s.Steps {
		if !catalog.StepComplete(step) {
			return false
		}
	}
	return true
}

// AnswersChanged compares two states question-by-question on the first
// answer value only. Generated candidates are keyed off this comparison:
// reordering tags or editing secondary values does not invalidate them,
// changing a leading answer does.
func AnswersChanged(prev, next State) bool {
	prevFirst := firstAnswers(prev)
	nextFirst := firstAnswers(next)
	if len(prevFirst) != len(nextFirst) {
		return true
	}
	for id, v := range nextFirst {
		if prevFirst[id] != v {
			return true
		}
	}
	return false
}

func firstAnswers(s State) map[string]string {
	out := make(map[string]string)
	for _, step := range s.Steps {
		for _, q := range step.Questions {
			if len(q.Answer) > 0 {
				out[q.ID] = q.Answer[0]
			}
		}
	}
	return out
}
